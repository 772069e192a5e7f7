package models

import "time"

// Role identifies the author of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	// RoleSummary marks a turn produced by compaction: it replaces a
	// contiguous prefix of older turns with one condensed summary.
	RoleSummary Role = "system-summary"
)

// ConversationTurn is one dialogue message in a user's bounded memory
// window. Turns are ordered by creation time and append-only except for
// compaction, which replaces a prefix with a summary turn.
type ConversationTurn struct {
	ID      string    `json:"id"`
	UserID  string    `json:"user_id"`
	Role    Role      `json:"role"`
	Content string    `json:"content"`
	Tokens  int       `json:"tokens"`
	Created time.Time `json:"created"`

	// ReplacedTokens is set only on summary turns: the token count of the
	// turns the summary pre-consumed.
	ReplacedTokens int `json:"replaced_tokens,omitempty"`
}

// IsSummary reports whether the turn was produced by compaction.
func (t ConversationTurn) IsSummary() bool {
	return t.Role == RoleSummary
}

// MemoryState is the explicit per-user dialogue state, serializable so a
// restart does not lose conversational context.
type MemoryState string

const (
	MemoryActive     MemoryState = "ACTIVE"
	MemoryOverBudget MemoryState = "OVER_BUDGET"
)
