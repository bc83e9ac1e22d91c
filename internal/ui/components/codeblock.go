// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strconv"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	chromaStyles "github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/gentor/internal/ui/styles"
)

// =============================================================================
// CODE BLOCK RENDERER
// =============================================================================

// Chroma resolves both of these to non-nil fallbacks for unknown names.
var (
	ansiPalette   = chromaStyles.Get("monokai")
	ansiFormatter = formatters.Get("terminal256")
)

// CodeBlock renders one fenced code block from an assistant reply: syntax
// highlighting, a line number gutter, a language badge and a rounded frame.
type CodeBlock struct {
	Language string
	Code     string
	MaxWidth int
}

// NewCodeBlock creates a code block. An empty language means the lexer is
// picked by content analysis.
func NewCodeBlock(language, code string) CodeBlock {
	return CodeBlock{
		Language: language,
		Code:     code,
		MaxWidth: 80,
	}
}

// SetMaxWidth caps the rendered width, frame included.
func (c *CodeBlock) SetMaxWidth(width int) {
	c.MaxWidth = width
}

// Render produces the framed, highlighted block.
func (c CodeBlock) Render() string {
	src := strings.TrimSpace(c.Code)
	lines := strings.Split(highlight(src, c.Language), "\n")

	gutter := lipgloss.NewStyle().
		Foreground(styles.TextMuted).
		Width(gutterWidth(len(lines))).
		Align(lipgloss.Right).
		MarginRight(1)

	var body strings.Builder
	if c.Language != "" {
		body.WriteString(langBadge(c.Language))
		body.WriteString("\n")
	}
	for i, line := range lines {
		if i > 0 {
			body.WriteString("\n")
		}
		body.WriteString(gutter.Render(strconv.Itoa(i + 1)))
		// chroma already colored the line; no further styling on top.
		body.WriteString(line)
	}

	width := c.MaxWidth - 4
	if width < 20 {
		width = 20
	}

	return lipgloss.NewStyle().
		Background(styles.SurfaceDim).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(styles.Overlay).
		Padding(1, 2).
		MaxWidth(width).
		Render(body.String())
}

// langBadge renders the language tag shown above the code.
func langBadge(lang string) string {
	return lipgloss.NewStyle().
		Foreground(styles.TextMuted).
		Background(styles.OverlayDim).
		Padding(0, 1).
		Bold(true).
		Render(lang)
}

// gutterWidth sizes the line number column to the block's line count, with
// a floor of two columns so single-digit blocks stay aligned.
func gutterWidth(lines int) int {
	w := len(strconv.Itoa(lines))
	if w < 2 {
		w = 2
	}
	return w
}

// highlight runs source through chroma's 256-color terminal formatter.
// Lexer resolution order: declared language, content analysis, plain text.
// On tokenizer or formatter failure the source comes back unchanged.
func highlight(src, lang string) string {
	lexer := lexers.Get(lang)
	if lexer == nil {
		lexer = lexers.Analyse(src)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}

	it, err := chroma.Coalesce(lexer).Tokenise(nil, src)
	if err != nil {
		return src
	}

	var out strings.Builder
	if err := ansiFormatter.Format(&out, ansiPalette, it); err != nil {
		return src
	}
	return out.String()
}
