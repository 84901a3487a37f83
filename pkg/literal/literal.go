package literal

import "strings"

var keywords = map[string]string{
	"True":  "true",
	"False": "false",
	"None":  "null",
}

// ToJSON rewrites a Python literal into text a JSON5 decoder accepts.
// Single-quoted strings become double-quoted, bare True/False/None become
// true/false/null and "#" comments are dropped. Text inside strings is kept.
func ToJSON(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	var quote byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch quote {
		case '"':
			b.WriteByte(c)
			switch c {
			case '\\':
				if i+1 < len(s) {
					i++
					b.WriteByte(s[i])
				}
			case '"':
				quote = 0
			}
			continue
		case '\'':
			switch c {
			case '\\':
				if i+1 < len(s) {
					i++
					if s[i] == '\'' {
						b.WriteByte('\'')
					} else {
						b.WriteByte('\\')
						b.WriteByte(s[i])
					}
				}
			case '"':
				b.WriteString(`\"`)
			case '\'':
				b.WriteByte('"')
				quote = 0
			default:
				b.WriteByte(c)
			}
			continue
		}

		switch {
		case c == '"':
			quote = c
			b.WriteByte(c)
		case c == '\'':
			quote = c
			b.WriteByte('"')
		case c == '#':
			for i < len(s) && s[i] != '\n' {
				i++
			}
			if i < len(s) {
				b.WriteByte('\n')
			}
		case isIdentStart(c):
			j := i
			for j < len(s) && isIdentPart(s[j]) {
				j++
			}
			word := s[i:j]
			if lit, ok := keywords[word]; ok {
				word = lit
			}
			b.WriteString(word)
			i = j - 1
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}
