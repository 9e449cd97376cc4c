package commands

import "unicode"

// Tokenize splits a raw command line into argument tokens.
//
// Whitespace outside quotes separates tokens. Single and double quotes group
// text, and inside either kind a backslash takes the next character
// literally. Outside quotes a backslash is an ordinary character so Windows
// paths survive. An unterminated quote runs to the end of the input. A quoted
// empty string ('' or "") yields an empty token.
func Tokenize(raw string) []string {
	var (
		tokens  []string
		current []rune
		inToken bool
		quote   rune
		escaped bool
	)

	flush := func() {
		if inToken {
			tokens = append(tokens, string(current))
		}
		current = current[:0]
		inToken = false
	}

	for _, r := range raw {
		switch {
		case escaped:
			current = append(current, r)
			escaped = false
		case quote != 0:
			switch r {
			case '\\':
				escaped = true
			case quote:
				quote = 0
			default:
				current = append(current, r)
			}
		case r == '\'' || r == '"':
			quote = r
			inToken = true
		case unicode.IsSpace(r):
			flush()
		default:
			current = append(current, r)
			inToken = true
		}
	}
	flush()

	return tokens
}
