package views

import (
	"strings"
	"unicode/utf8"
)

// sanitizeForTerminal removes codepoints that break tcell/tview rendering:
// skin tone modifiers, zero width joiners, variation selectors and control
// characters other than newline and tab. Emoji sequences collapse to their
// base character, which renders as a single 2-cell glyph.
func sanitizeForTerminal(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if !isProblematicRune(r) {
			b.WriteRune(r)
		}
		i += size
	}
	return b.String()
}

func isProblematicRune(r rune) bool {
	switch {
	// Skin tone modifiers.
	case r >= 0x1F3FB && r <= 0x1F3FF:
		return true
	// Zero Width Joiner.
	case r == 0x200D:
		return true
	// Variation Selectors.
	case r >= 0xFE00 && r <= 0xFE0F:
		return true
	// Variation Selectors Supplement.
	case r >= 0xE0100 && r <= 0xE01EF:
		return true
	// C0 controls and DEL, except newline and tab.
	case r < 0x20 && r != '\n' && r != '\t', r == 0x7F:
		return true
	case r == utf8.RuneError:
		return true
	default:
		return false
	}
}

// clean sanitizes s and escapes tview color tags.
func clean(s string) string {
	return escape(sanitizeForTerminal(s))
}
