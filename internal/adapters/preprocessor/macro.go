package preprocessor

import (
	"slices"
	"strings"

	"go.trai.ch/openge/internal/core/domain"
)

// expandMacros performs textual macro expansion of text. Names in active are not
// expanded again, which stops self-referencing macros.
func expandMacros(text string, defines map[string]*domain.DefineDirective, active []string) string {
	var b strings.Builder
	for i := 0; i < len(text); {
		c := text[i]
		switch {
		case c == '"' || c == '\'':
			j := skipLiteral(text, i)
			b.WriteString(text[i:j])
			i = j
		case c >= '0' && c <= '9':
			j := i + 1
			for j < len(text) && (isIdentPart(text[j]) || text[j] == '.') {
				j++
			}
			b.WriteString(text[i:j])
			i = j
		case isIdentStart(c):
			name := leadingIdentifier(text[i:])
			j := i + len(name)
			def, ok := defines[name]
			if !ok || slices.Contains(active, name) {
				b.WriteString(name)
				i = j
				continue
			}
			nested := slices.Concat(active, []string{name})
			if !def.IsFunction {
				b.WriteString(expandMacros(def.Expansion, defines, nested))
				i = j
				continue
			}
			args, end, ok := parseArguments(text, j)
			if !ok {
				b.WriteString(name)
				i = j
				continue
			}
			b.WriteString(expandMacros(substitute(def, args, defines, active), defines, nested))
			i = end
		default:
			b.WriteByte(c)
			i++
		}
	}
	return b.String()
}

// substitute replaces the parameters of a function-like macro in its body.
// Operands of # and ## use the argument text as written; other occurrences use
// the expanded argument.
func substitute(def *domain.DefineDirective, args []string, defines map[string]*domain.DefineDirective, active []string) string {
	argument := func(name string) (string, bool) {
		for i, p := range def.Parameters {
			switch {
			case p == "..." && name == "__VA_ARGS__":
				if i < len(args) {
					return strings.TrimSpace(strings.Join(args[i:], ",")), true
				}
				return "", true
			case p == name:
				if i < len(args) {
					return strings.TrimSpace(args[i]), true
				}
				return "", true
			}
		}
		return "", false
	}

	body := def.Expansion
	var out []byte
	joined := false
	for i := 0; i < len(body); {
		c := body[i]
		switch {
		case c == '#' && i+1 < len(body) && body[i+1] == '#':
			out = trimTrailingSpace(out)
			i = skipSpace(body, i+2)
			joined = true
			continue
		case c == '#':
			j := skipSpace(body, i+1)
			name := leadingIdentifier(body[j:])
			if arg, ok := argument(name); ok && name != "" {
				out = append(out, '"')
				out = append(out, arg...)
				out = append(out, '"')
				i = j + len(name)
			} else {
				out = append(out, c)
				i++
			}
		case c == '"' || c == '\'':
			j := skipLiteral(body, i)
			out = append(out, body[i:j]...)
			i = j
		case isIdentStart(c):
			name := leadingIdentifier(body[i:])
			j := i + len(name)
			arg, ok := argument(name)
			switch {
			case !ok:
				out = append(out, name...)
			case joined || strings.HasPrefix(body[skipSpace(body, j):], "##"):
				out = append(out, arg...)
			default:
				out = append(out, expandMacros(arg, defines, active)...)
			}
			i = j
		default:
			out = append(out, c)
			i++
		}
		joined = false
	}
	return string(out)
}

// parseArguments reads a parenthesised argument list starting at or after
// whitespace from text[i:]. It returns the raw arguments and the index after ')'.
func parseArguments(text string, i int) ([]string, int, bool) {
	i = skipSpace(text, i)
	if i >= len(text) || text[i] != '(' {
		return nil, 0, false
	}

	var args []string
	depth := 0
	start := i + 1
	for j := i; j < len(text); j++ {
		switch text[j] {
		case '"', '\'':
			j = skipLiteral(text, j) - 1
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				args = append(args, text[start:j])
				return args, j + 1, true
			}
		case ',':
			if depth == 1 {
				args = append(args, text[start:j])
				start = j + 1
			}
		}
	}
	return nil, 0, false
}

// skipLiteral returns the index just past the string or character literal at text[i].
func skipLiteral(text string, i int) int {
	quote := text[i]
	for j := i + 1; j < len(text); j++ {
		switch text[j] {
		case '\\':
			j++
		case quote:
			return j + 1
		}
	}
	return len(text)
}

func skipSpace(text string, i int) int {
	for i < len(text) && (text[i] == ' ' || text[i] == '\t') {
		i++
	}
	return i
}

func trimTrailingSpace(b []byte) []byte {
	for len(b) > 0 && (b[len(b)-1] == ' ' || b[len(b)-1] == '\t') {
		b = b[:len(b)-1]
	}
	return b
}
