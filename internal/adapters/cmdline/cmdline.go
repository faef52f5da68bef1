// Package cmdline splits and joins command lines using the rules of the
// Microsoft C runtime, which is what build sets produced for MSVC and clang-cl expect.
package cmdline

import "strings"

// Split tokenizes a command line.
//
// Whitespace outside quotes separates tokens. A double quote toggles quoting and
// is removed. Backslashes are literal unless they precede a double quote: 2n
// backslashes followed by a quote produce n backslashes and toggle quoting, while
// 2n+1 backslashes followed by a quote produce n backslashes and a literal quote.
// An unterminated quote is closed by the end of the input.
func Split(commandLine string) []string {
	var (
		args    []string
		cur     strings.Builder
		inQuote bool
		inToken bool
	)

	for i := 0; i < len(commandLine); i++ {
		c := commandLine[i]
		switch {
		case c == '\\':
			n := 0
			for i < len(commandLine) && commandLine[i] == '\\' {
				n++
				i++
			}
			inToken = true
			if i < len(commandLine) && commandLine[i] == '"' {
				cur.WriteString(strings.Repeat(`\`, n/2))
				if n%2 == 1 {
					cur.WriteByte('"')
				} else {
					inQuote = !inQuote
				}
			} else {
				cur.WriteString(strings.Repeat(`\`, n))
				i--
			}
		case c == '"':
			inToken = true
			inQuote = !inQuote
		case (c == ' ' || c == '\t' || c == '\n' || c == '\r') && !inQuote:
			if inToken {
				args = append(args, cur.String())
				cur.Reset()
				inToken = false
			}
		default:
			inToken = true
			cur.WriteByte(c)
		}
	}

	if inToken {
		args = append(args, cur.String())
	}
	return args
}

// Join quotes each argument as needed and joins them with single spaces,
// such that Split(Join(args)) returns args.
func Join(args []string) string {
	var b strings.Builder
	for i, arg := range args {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(Quote(arg))
	}
	return b.String()
}

// Quote returns arg in a form Split reads back as a single token.
func Quote(arg string) string {
	if arg != "" && !strings.ContainsAny(arg, " \t\n\r\"") {
		return arg
	}

	var b strings.Builder
	b.WriteByte('"')
	backslashes := 0
	for i := 0; i < len(arg); i++ {
		c := arg[i]
		switch c {
		case '\\':
			backslashes++
			continue
		case '"':
			b.WriteString(strings.Repeat(`\`, backslashes*2+1))
			b.WriteByte('"')
		default:
			b.WriteString(strings.Repeat(`\`, backslashes))
			b.WriteByte(c)
		}
		backslashes = 0
	}
	b.WriteString(strings.Repeat(`\`, backslashes*2))
	b.WriteByte('"')
	return b.String()
}
