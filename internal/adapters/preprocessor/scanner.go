// Package preprocessor scans C and C++ sources for preprocessor directives,
// caches the scan results and resolves transitive include closures.
package preprocessor

import (
	"os"
	"strings"

	"go.trai.ch/openge/internal/core/domain"
	"go.trai.ch/zerr"
)

const compiledPlatformHeaderMacro = "COMPILED_PLATFORM_HEADER"

// node is a mutable directive tree node used while scanning.
type node struct {
	kind      domain.DirectiveKind
	line      int
	directive domain.Directive
	condition string
	body      []*node
	alt       *node
}

type scanState struct {
	root  []*node
	stack []*node
}

// Scan extracts the directive tree of a source file. It never fails: directives it
// cannot interpret are kept as opaque entries.
func Scan(lines []string) *domain.ScanResult {
	s := &scanState{}

	var (
		buf        strings.Builder
		start      int
		continuing bool
		inComment  bool
	)
	for i, raw := range lines {
		var text string
		text, inComment = stripComments(strings.TrimSuffix(raw, "\r"), inComment)

		if !continuing {
			trimmed := strings.TrimLeft(text, " \t")
			if !strings.HasPrefix(trimmed, "#") {
				continue
			}
			buf.Reset()
			start = i + 1
			text = trimmed
		}

		if t := strings.TrimRight(text, " \t"); strings.HasSuffix(t, `\`) {
			buf.WriteString(t[:len(t)-1])
			buf.WriteByte(' ')
			continuing = true
			continue
		}

		buf.WriteString(text)
		continuing = false
		s.directive(start, strings.TrimSpace(buf.String()))
	}
	if continuing {
		s.directive(start, strings.TrimSpace(buf.String()))
	}

	return s.result()
}

// scanPath reads and scans the file at path.
func scanPath(path string) (*domain.ScanResult, error) {
	//nolint:gosec // path is a source file requested by the build
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to read source file"), "path", path)
	}
	return Scan(strings.Split(string(data), "\n")), nil
}

func (s *scanState) directive(line int, text string) {
	keyword, rest := splitKeyword(strings.TrimLeft(text[1:], " \t"))
	rest = strings.TrimSpace(rest)

	switch keyword {
	case "include":
		s.include(line, text, rest)
	case "define":
		s.define(line, text, rest)
	case "undef":
		name := leadingIdentifier(rest)
		if name == "" {
			s.opaque(line, text)
			return
		}
		s.add(&node{kind: domain.DirectiveUndef, directive: domain.Directive{
			Kind:  domain.DirectiveUndef,
			Line:  line,
			Undef: name,
		}})
	case "if", "ifdef", "ifndef":
		if rest == "" {
			// The block still needs opening so its #endif closes it and not
			// the enclosing one.
			s.opaque(line, text)
			s.open(&node{kind: domain.DirectiveBlock, line: line})
			return
		}
		condition := rest
		switch keyword {
		case "ifdef":
			condition = "defined(" + rest + ")"
		case "ifndef":
			condition = "!defined(" + rest + ")"
		}
		s.open(&node{kind: domain.DirectiveIf, line: line, condition: condition})
	case "elif":
		top := s.top()
		if top == nil || top.kind != domain.DirectiveIf {
			s.opaque(line, text)
			return
		}
		next := &node{kind: domain.DirectiveIf, line: line, condition: rest}
		if rest == "" {
			next = &node{kind: domain.DirectiveBlock, line: line}
		}
		top.alt = next
		s.stack[len(s.stack)-1] = next
		if rest == "" {
			s.opaque(line, text)
		}
	case "else":
		top := s.top()
		if top == nil || top.kind != domain.DirectiveIf {
			s.opaque(line, text)
			return
		}
		next := &node{kind: domain.DirectiveBlock, line: line}
		top.alt = next
		s.stack[len(s.stack)-1] = next
	case "endif":
		if len(s.stack) == 0 {
			s.opaque(line, text)
			return
		}
		s.stack = s.stack[:len(s.stack)-1]
	}
}

func (s *scanState) include(line int, text, operand string) {
	var inc domain.IncludeDirective
	switch {
	case strings.HasPrefix(operand, `"`):
		end := strings.IndexByte(operand[1:], '"')
		if end <= 0 {
			s.opaque(line, text)
			return
		}
		inc = domain.IncludeDirective{Kind: domain.IncludeQuoted, Path: operand[1 : end+1]}
	case strings.HasPrefix(operand, "<"):
		end := strings.IndexByte(operand, '>')
		if end <= 1 {
			s.opaque(line, text)
			return
		}
		inc = domain.IncludeDirective{Kind: domain.IncludeSystem, Path: operand[1:end]}
	case leadingIdentifier(operand) != "":
		inc = domain.IncludeDirective{Kind: domain.IncludeExpansion, Path: operand}
	default:
		s.opaque(line, text)
		return
	}

	s.add(&node{kind: domain.DirectiveInclude, directive: domain.Directive{
		Kind:    domain.DirectiveInclude,
		Line:    line,
		Include: &inc,
	}})
}

func (s *scanState) define(line int, text, operand string) {
	name := leadingIdentifier(operand)
	if name == "" {
		s.opaque(line, text)
		return
	}

	def := domain.DefineDirective{Identifier: name}
	after := operand[len(name):]
	if strings.HasPrefix(after, "(") {
		end := strings.IndexByte(after, ')')
		if end < 0 {
			s.opaque(line, text)
			return
		}
		params, ok := parseParameters(after[1:end])
		if !ok {
			s.opaque(line, text)
			return
		}
		def.IsFunction = true
		def.Parameters = params
		after = after[end+1:]
	}
	def.Expansion = strings.TrimSpace(after)

	s.add(&node{kind: domain.DirectiveDefine, directive: domain.Directive{
		Kind:   domain.DirectiveDefine,
		Line:   line,
		Define: &def,
	}})
}

func (s *scanState) opaque(line int, text string) {
	s.add(&node{kind: domain.DirectiveOpaque, directive: domain.Directive{
		Kind:   domain.DirectiveOpaque,
		Line:   line,
		Opaque: text,
	}})
}

func (s *scanState) top() *node {
	if len(s.stack) == 0 {
		return nil
	}
	return s.stack[len(s.stack)-1]
}

func (s *scanState) add(n *node) {
	if top := s.top(); top != nil {
		top.body = append(top.body, n)
		return
	}
	s.root = append(s.root, n)
}

func (s *scanState) open(n *node) {
	s.add(n)
	s.stack = append(s.stack, n)
}

func (s *scanState) result() *domain.ScanResult {
	res := &domain.ScanResult{Directives: buildDirectives(s.root)}

	seen := make(map[string]struct{})
	appendOnce := func(list []string, kind, value string) []string {
		key := kind + "\x00" + value
		if _, ok := seen[key]; ok {
			return list
		}
		seen[key] = struct{}{}
		return append(list, value)
	}

	var walk func(ds []domain.Directive)
	walk = func(ds []domain.Directive) {
		for i := range ds {
			d := &ds[i]
			switch d.Kind {
			case domain.DirectiveInclude:
				switch d.Include.Kind {
				case domain.IncludeQuoted:
					res.Includes = appendOnce(res.Includes, "q", d.Include.Path)
				case domain.IncludeSystem:
					res.SystemIncludes = appendOnce(res.SystemIncludes, "s", d.Include.Path)
				case domain.IncludeExpansion:
					if operand, ok := compiledPlatformHeaderOperand(d.Include.Path); ok {
						res.CompiledPlatformHeaderIncludes = appendOnce(res.CompiledPlatformHeaderIncludes, "p", operand)
					}
				}
			case domain.DirectiveIf:
				res.Conditions = appendOnce(res.Conditions, "c", d.If.Condition)
				walk(d.If.Body)
				if d.If.Else != nil {
					walk([]domain.Directive{*d.If.Else})
				}
			case domain.DirectiveBlock:
				walk(d.Block)
			}
		}
	}
	walk(res.Directives)

	return res
}

// buildDirectives freezes the tree, dropping conditionals that contain nothing.
func buildDirectives(nodes []*node) []domain.Directive {
	var out []domain.Directive
	for _, n := range nodes {
		if d, ok := n.build(); ok {
			out = append(out, d)
		}
	}
	return out
}

func (n *node) build() (domain.Directive, bool) {
	switch n.kind {
	case domain.DirectiveIf:
		body := buildDirectives(n.body)
		var alt *domain.Directive
		if n.alt != nil {
			if d, ok := n.alt.build(); ok {
				alt = &d
			}
		}
		if len(body) == 0 && alt == nil {
			return domain.Directive{}, false
		}
		return domain.Directive{
			Kind: domain.DirectiveIf,
			Line: n.line,
			If:   &domain.IfDirective{Condition: n.condition, Body: body, Else: alt},
		}, true
	case domain.DirectiveBlock:
		body := buildDirectives(n.body)
		if len(body) == 0 {
			return domain.Directive{}, false
		}
		return domain.Directive{Kind: domain.DirectiveBlock, Line: n.line, Block: body}, true
	default:
		return n.directive, true
	}
}

// stripComments removes // and /* */ comments from a line. inComment reports
// whether the line starts inside a block comment; the returned flag reports
// whether it ends inside one.
func stripComments(line string, inComment bool) (string, bool) {
	if !inComment && !strings.Contains(line, "/") {
		return line, false
	}

	var b strings.Builder
	var quote byte
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case inComment:
			if c == '*' && i+1 < len(line) && line[i+1] == '/' {
				inComment = false
				i++
				b.WriteByte(' ')
			}
		case quote != 0:
			b.WriteByte(c)
			if c == '\\' && i+1 < len(line) {
				i++
				b.WriteByte(line[i])
			} else if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
			b.WriteByte(c)
		case c == '/' && i+1 < len(line) && line[i+1] == '/':
			return b.String(), false
		case c == '/' && i+1 < len(line) && line[i+1] == '*':
			inComment = true
			i++
		default:
			b.WriteByte(c)
		}
	}
	return b.String(), inComment
}

func splitKeyword(s string) (string, string) {
	i := 0
	for i < len(s) && s[i] >= 'a' && s[i] <= 'z' {
		i++
	}
	return s[:i], s[i:]
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

func leadingIdentifier(s string) string {
	if s == "" || !isIdentStart(s[0]) {
		return ""
	}
	i := 1
	for i < len(s) && isIdentPart(s[i]) {
		i++
	}
	return s[:i]
}

func parseParameters(list string) ([]string, bool) {
	if strings.TrimSpace(list) == "" {
		return nil, true
	}
	parts := strings.Split(list, ",")
	params := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "..." && leadingIdentifier(p) != p {
			return nil, false
		}
		params = append(params, p)
	}
	return params, true
}

// compiledPlatformHeaderOperand returns X for COMPILED_PLATFORM_HEADER(X).
func compiledPlatformHeaderOperand(text string) (string, bool) {
	rest, ok := strings.CutPrefix(text, compiledPlatformHeaderMacro)
	if !ok {
		return "", false
	}
	rest = strings.TrimSpace(rest)
	if !strings.HasPrefix(rest, "(") || !strings.HasSuffix(rest, ")") {
		return "", false
	}
	operand := strings.TrimSpace(rest[1 : len(rest)-1])
	return operand, operand != ""
}
