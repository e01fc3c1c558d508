// Package testcase reads end-to-end compiler test cases from Markdown.
//
// Each case starts with a heading "Test: <name>" and is followed by fenced
// code blocks. The fence language says what the block holds:
//
//	mila         the program (required, once)
//	input        what readln reads
//	output       what writeln prints
//	diagnostics  one expected diagnostic per line, matched as a substring
//	ir           lines that must appear in the printed module
//
// Any other text in the document is ignored.
package testcase

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Fence is the language tag of a code block.
type Fence string

// Known fences.
const (
	FenceSource      Fence = "mila"
	FenceInput       Fence = "input"
	FenceOutput      Fence = "output"
	FenceDiagnostics Fence = "diagnostics"
	FenceIR          Fence = "ir"
)

const headingPrefix = "Test: "

// TestCase is one case of a document.
type TestCase struct {
	Name string
	Line int // Line of the heading.

	Source      string
	Input       string
	Output      string
	HasOutput   bool // An output fence was given, possibly empty.
	Diagnostics []string
	IR          []string
}

// ReadFile extracts the cases of the Markdown file at path.
func ReadFile(path string) ([]TestCase, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read test file: %w", err)
	}
	cases, err := Extract(buf)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cases, nil
}

// Extract parses a Markdown document and returns its cases in order.
func Extract(source []byte) ([]TestCase, error) {
	doc := goldmark.New().Parser().Parse(text.NewReader(source))

	var (
		cases []TestCase
		cur   *TestCase
	)
	finish := func() error {
		if cur == nil {
			return nil
		}
		if cur.Source == "" {
			return fmt.Errorf("line %d: test %q has no %s fence", cur.Line, cur.Name, FenceSource)
		}
		cases = append(cases, *cur)
		return nil
	}

	err := ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch n := node.(type) {
		case *ast.Heading:
			title := headingText(n, source)
			if !strings.HasPrefix(title, headingPrefix) {
				return ast.WalkSkipChildren, nil
			}
			if err := finish(); err != nil {
				return ast.WalkStop, err
			}
			cur = &TestCase{Name: strings.TrimPrefix(title, headingPrefix), Line: lineOf(n, source)}
			return ast.WalkSkipChildren, nil

		case *ast.FencedCodeBlock:
			lang := Fence(n.Language(source))
			line := lineOf(n, source)
			if cur == nil {
				if lang == "" {
					return ast.WalkContinue, nil
				}
				return ast.WalkStop, fmt.Errorf("line %d: %q fence outside of a test", line, lang)
			}
			if err := cur.add(lang, blockContent(n, source)); err != nil {
				return ast.WalkStop, fmt.Errorf("line %d: test %q: %w", line, cur.Name, err)
			}
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, err
	}
	if err := finish(); err != nil {
		return nil, err
	}
	return cases, nil
}

func (tc *TestCase) add(lang Fence, content string) error {
	switch lang {
	case FenceSource:
		if tc.Source != "" {
			return fmt.Errorf("duplicate %s fence", lang)
		}
		tc.Source = content
	case FenceInput:
		tc.Input += content
	case FenceOutput:
		if tc.HasOutput {
			return fmt.Errorf("duplicate %s fence", lang)
		}
		tc.Output, tc.HasOutput = content, true
	case FenceDiagnostics:
		tc.Diagnostics = append(tc.Diagnostics, lines(content)...)
	case FenceIR:
		tc.IR = append(tc.IR, lines(content)...)
	case "":
		// Plain code blocks are commentary.
	default:
		return fmt.Errorf("unknown fence %q", lang)
	}
	return nil
}

// lines splits content into its non-blank lines, trimmed.
func lines(content string) []string {
	var out []string
	for _, l := range strings.Split(content, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}

func headingText(n ast.Node, source []byte) string {
	var buf bytes.Buffer
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if t, ok := c.(*ast.Text); ok && entering {
			buf.Write(t.Segment.Value(source))
		}
		return ast.WalkContinue, nil
	})
	return buf.String()
}

func blockContent(n *ast.FencedCodeBlock, source []byte) string {
	var buf bytes.Buffer
	for i := 0; i < n.Lines().Len(); i++ {
		seg := n.Lines().At(i)
		buf.Write(seg.Value(source))
	}
	return buf.String()
}

// lineOf returns the 1-based line a node starts on. Headings report the
// line of their text.
func lineOf(n ast.Node, source []byte) int {
	if n.Lines().Len() == 0 {
		return 0
	}
	return bytes.Count(source[:n.Lines().At(0).Start], []byte("\n")) + 1
}
