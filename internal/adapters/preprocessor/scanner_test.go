package preprocessor_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/openge/internal/adapters/preprocessor"
	"go.trai.ch/openge/internal/core/domain"
)

func TestScan_Golden(t *testing.T) {
	tests := []struct {
		name       string
		lines      []string
		goldenName string
	}{
		{
			name: "defines and includes",
			lines: []string{
				`#include "include.h"`,
				`#include <system.h>`,
				`#define PREPROCESSOR_TO_STRING(x) PREPROCESSOR_TO_STRING_INNER(x)`,
				`#define PREPROCESSOR_TO_STRING_INNER(x) #x`,
				`#define PREPROCESSOR_JOIN(x, y) PREPROCESSOR_JOIN_INNER(x, y)`,
				`#define PREPROCESSOR_JOIN_INNER(x, y) x##y`,
				`#define PLATFORM_HEADER_NAME Windows`,
				`#define COMPILED_PLATFORM_HEADER(Suffix) PREPROCESSOR_TO_STRING(PREPROCESSOR_JOIN(PLATFORM_HEADER_NAME, Suffix))`,
				`#include COMPILED_PLATFORM_HEADER(Test)`,
			},
			goldenName: "scan_platform_header",
		},
		{
			name: "nested conditionals",
			lines: []string{
				`#ifndef GUARD_H`,
				`#define GUARD_H`,
				`#if PLATFORM_WINDOWS`,
				`#include "Windows/WindowsPlatform.h"`,
				`#elif PLATFORM_LINUX == 1`,
				`#include "Linux/LinuxPlatform.h"`,
				`#else`,
				`#error "unsupported"`,
				`#endif`,
				`#ifdef UNUSED`,
				`#pragma once`,
				`#endif`,
				`/* #include "commented.h" */`,
				`#include "after.h" // trailing`,
				`#endif`,
				`#endif`,
			},
			goldenName: "scan_conditionals",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := preprocessor.Scan(tt.lines)

			data, err := json.MarshalIndent(res, "", "  ")
			require.NoError(t, err)

			g := goldie.New(t)
			g.Assert(t, tt.goldenName, data)
		})
	}
}

func TestScan_DirectiveCount(t *testing.T) {
	res := preprocessor.Scan([]string{
		`#include "include.h"`,
		`#include <system.h>`,
		`#define A 1`,
		`#define B(x) x`,
		`#undef A`,
	})

	require.Len(t, res.Directives, 5)
	assert.Equal(t, domain.DirectiveUndef, res.Directives[4].Kind)
	assert.Equal(t, "A", res.Directives[4].Undef)
	assert.Equal(t, []string{"include.h"}, res.Includes)
	assert.Equal(t, []string{"system.h"}, res.SystemIncludes)
}

func TestScan_NestedIf(t *testing.T) {
	res := preprocessor.Scan([]string{
		"#ifndef ABC",
		"#if 1",
		"#include <system.h>",
		"#endif",
		"#endif",
	})

	require.Len(t, res.Directives, 1)
	outer := res.Directives[0]
	require.Equal(t, domain.DirectiveIf, outer.Kind)
	assert.Equal(t, "!defined(ABC)", outer.If.Condition)
	require.Len(t, outer.If.Body, 1)
	assert.Equal(t, "1", outer.If.Body[0].If.Condition)
	assert.Equal(t, []string{"!defined(ABC)", "1"}, res.Conditions)
}

func TestScan_Continuations(t *testing.T) {
	res := preprocessor.Scan([]string{
		`#define LONG_MACRO(a, b) \`,
		`    ((a) + \`,
		`     (b))`,
		`#include \`,
		`    "split.h"`,
	})

	require.Len(t, res.Directives, 2)
	def := res.Directives[0].Define
	require.NotNil(t, def)
	assert.Equal(t, "LONG_MACRO", def.Identifier)
	assert.Equal(t, []string{"a", "b"}, def.Parameters)
	assert.Equal(t, "((a) + (b))", strings.Join(strings.Fields(def.Expansion), " "))
	assert.Equal(t, 1, res.Directives[0].Line)
	assert.Equal(t, 4, res.Directives[1].Line)
	assert.Equal(t, []string{"split.h"}, res.Includes)
}

func TestScan_BlockComments(t *testing.T) {
	res := preprocessor.Scan([]string{
		`/*`,
		`#include "hidden.h"`,
		`*/ #include "visible.h"`,
		`#include /* inline */ "inline.h"`,
		`const char* s = "/* not a comment";`,
		`#include "last.h"`,
	})

	assert.Equal(t, []string{"visible.h", "inline.h", "last.h"}, res.Includes)
}

func TestScan_WhitespaceAfterHash(t *testing.T) {
	res := preprocessor.Scan([]string{
		"  #  include \"spaced.h\"",
		"\t#\tdefine TABBED 1",
		"#include\"tight.h\"",
	})

	assert.Equal(t, []string{"spaced.h", "tight.h"}, res.Includes)
	require.Len(t, res.Directives, 3)
	assert.Equal(t, "TABBED", res.Directives[1].Define.Identifier)
}

func TestScan_Malformed(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{name: "endif without if", line: "#endif"},
		{name: "else without if", line: "#else"},
		{name: "elif without if", line: "#elif X"},
		{name: "include without operand", line: "#include"},
		{name: "unterminated quoted include", line: `#include "broken.h`},
		{name: "empty system include", line: "#include <>"},
		{name: "define without name", line: "#define 1abc"},
		{name: "define with bad parameters", line: "#define F(1) x"},
		{name: "undef without name", line: "#undef"},
		{name: "if without condition", line: "#if"},
		{name: "ifdef without name", line: "#ifdef"},
		{name: "ifndef without name", line: "#ifndef"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := preprocessor.Scan([]string{tt.line})

			require.Len(t, res.Directives, 1)
			assert.Equal(t, domain.DirectiveOpaque, res.Directives[0].Kind)
			assert.Equal(t, tt.line, res.Directives[0].Opaque)
			assert.Equal(t, 1, res.Directives[0].Line)
		})
	}
}

func TestScan_UnterminatedConditional(t *testing.T) {
	res := preprocessor.Scan([]string{
		"#if defined(FOO)",
		`#include "foo.h"`,
	})

	require.Len(t, res.Directives, 1)
	assert.Equal(t, "defined(FOO)", res.Directives[0].If.Condition)
	assert.Equal(t, []string{"foo.h"}, res.Includes)
}

func TestScan_EmptyCondition(t *testing.T) {
	t.Run("if", func(t *testing.T) {
		res := preprocessor.Scan([]string{
			"#if",
			`#include "a.h"`,
			"#endif",
			`#include "b.h"`,
		})

		require.Len(t, res.Directives, 3)
		assert.Equal(t, domain.Directive{Kind: domain.DirectiveOpaque, Line: 1, Opaque: "#if"}, res.Directives[0])
		assert.Equal(t, domain.DirectiveBlock, res.Directives[1].Kind)
		require.Len(t, res.Directives[1].Block, 1)
		assert.Equal(t, "a.h", res.Directives[1].Block[0].Include.Path)
		assert.Equal(t, domain.DirectiveInclude, res.Directives[2].Kind, "the #endif closes the block of the empty #if")
		assert.Equal(t, []string{"a.h", "b.h"}, res.Includes)
		assert.Empty(t, res.Conditions)
	})

	t.Run("elif", func(t *testing.T) {
		res := preprocessor.Scan([]string{
			"#if A",
			`#include "a.h"`,
			"#elif",
			`#include "b.h"`,
			"#endif",
		})

		require.Len(t, res.Directives, 1)
		ifd := res.Directives[0].If
		assert.Equal(t, "A", ifd.Condition)
		require.NotNil(t, ifd.Else)
		assert.Equal(t, domain.DirectiveBlock, ifd.Else.Kind)
		require.Len(t, ifd.Else.Block, 2)
		assert.Equal(t, domain.Directive{Kind: domain.DirectiveOpaque, Line: 3, Opaque: "#elif"}, ifd.Else.Block[0])
		assert.Equal(t, []string{"A"}, res.Conditions)
	})
}

func TestScan_ElseAfterElse(t *testing.T) {
	res := preprocessor.Scan([]string{
		"#if A",
		`#include "a.h"`,
		"#else",
		`#include "b.h"`,
		"#else",
		`#include "c.h"`,
		"#endif",
	})

	require.Len(t, res.Directives, 1)
	ifd := res.Directives[0].If
	require.NotNil(t, ifd.Else)
	assert.Equal(t, domain.DirectiveBlock, ifd.Else.Kind)
	require.Len(t, ifd.Else.Block, 3)
	assert.Equal(t, domain.DirectiveOpaque, ifd.Else.Block[1].Kind)
	assert.Equal(t, "#else", ifd.Else.Block[1].Opaque)
}

func TestScan_IgnoresOtherDirectives(t *testing.T) {
	res := preprocessor.Scan([]string{
		"#pragma once",
		"#line 10",
		`#error "nope"`,
		"int main() { return 0; }",
	})

	assert.Empty(t, res.Directives)
	assert.Empty(t, res.Includes)
}
