package main

import (
	"fmt"
	"os"

	"financeos/engine/cmd/ask"
	"financeos/engine/cmd/digest"
	"financeos/engine/cmd/importcsv"
	"financeos/engine/cmd/parse"
	"financeos/engine/cmd/root"
)

func init() {
	root.Init()

	root.Cmd.AddCommand(parse.Cmd)
	root.Cmd.AddCommand(importcsv.Cmd)
	root.Cmd.AddCommand(ask.Cmd)
	root.Cmd.AddCommand(digest.Cmd)
}

func main() {
	if err := root.Cmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
