package composer

import "financeos/engine/internal/models"

// tonePreset adapts the composed prompt and the degraded-mode answer to the
// user's communication style.
type tonePreset struct {
	instruction string
	fallback    string
}

var tonePresets = map[models.CommunicationStyle]tonePreset{
	models.StyleCasual: {
		instruction: "Відповідай дружньо і неформально, як товариш. Емодзі доречні, канцеляризми ні.",
		fallback:    "Ой, щось я завис 😅 Спробуй ще раз за хвилинку!",
	},
	models.StyleBalanced: {
		instruction: "Відповідай тепло, але по суті. Коротко, без зайвої води.",
		fallback:    "Не вдалося сформувати відповідь вчасно. Спробуйте, будь ласка, ще раз за хвилину.",
	},
	models.StyleFormal: {
		instruction: "Відповідай стримано та офіційно. Без емодзі та фамільярності.",
		fallback:    "На жаль, відповідь не була сформована вчасно. Повторіть запит пізніше.",
	},
}

// toneFor resolves the preset, defaulting to balanced for unknown styles.
func toneFor(style models.CommunicationStyle) tonePreset {
	if preset, ok := tonePresets[style]; ok {
		return preset
	}
	return tonePresets[models.StyleBalanced]
}
