// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/gentor/internal/commands"
	"github.com/jeranaias/gentor/internal/transcript"
	"github.com/jeranaias/gentor/internal/ui/components"
	"github.com/jeranaias/gentor/internal/ui/styles"
	"github.com/jeranaias/gentor/internal/util"
)

// =============================================================================
// MAIN VIEW
// =============================================================================

// View renders the chat screen: header, transcript viewport, notice row,
// input line and status bar, stacked top to bottom.
func (m Model) View() string {
	if !m.ready {
		return "\n  Starting gentor..."
	}
	if m.showHelp {
		return m.renderHelpOverlay()
	}

	header := m.headerView()
	notice := m.renderNotice()
	input := m.input.View()
	status := m.statusBar.View()

	// The viewport was sized at the last resize; if chrome heights drifted
	// since then, force the body back into the space that remains so the
	// status bar never scrolls off screen.
	fixed := lipgloss.Height(header) + 1 + lipgloss.Height(input) + lipgloss.Height(status)
	avail := m.height - fixed
	if avail < 1 {
		avail = 1
	}

	body := m.viewport.View()
	if lipgloss.Height(body) != avail {
		body = lipgloss.NewStyle().
			Height(avail).
			MaxHeight(avail).
			Width(m.width).
			Render(body)
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, body, notice, input, status)
}

// headerView picks the header variant for the terminal height. Short
// terminals get the one-line header so the transcript keeps its room.
func (m Model) headerView() string {
	if m.height < 16 {
		return m.header.ViewCompact()
	}
	return m.header.View()
}

// =============================================================================
// TRANSCRIPT RENDERING
// =============================================================================

// renderTranscript renders the whole conversation for the viewport. An
// empty transcript shows the welcome banner instead.
func (m Model) renderTranscript() string {
	msgs := m.ctrl.Transcript().Snapshot()
	if len(msgs) == 0 && !m.thinking.IsActive() {
		return m.welcome.View()
	}

	var b strings.Builder
	for _, msg := range msgs {
		var rendered string
		switch msg.Role {
		case transcript.RoleUser:
			rendered = m.renderUserMessage(msg)
		case transcript.RoleAssistant:
			rendered = m.renderAssistantMessage(msg)
		default:
			continue
		}
		if rendered == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(rendered)
	}

	if m.thinking.IsActive() {
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(m.thinking.View())
	}

	return b.String()
}

// renderUserMessage renders a right-aligned user bubble.
func (m Model) renderUserMessage(msg transcript.Message) string {
	maxW := m.contentWidth()
	wrapW := maxW - 6
	if wrapW < 10 {
		wrapW = 10
	}

	bubble := m.theme.UserBubble.MaxWidth(maxW).Render(util.WrapWidth(msg.Content, wrapW))

	pad := m.viewport.Width - lipgloss.Width(bubble) - 2
	if pad < 0 {
		pad = 0
	}
	return lipgloss.NewStyle().MarginLeft(pad).Render(bubble)
}

// renderAssistantMessage renders one assistant message. While streaming
// the raw text shows with highlighted code fences and a cursor; once the
// message finalizes it renders through glamour, cached by sequence number.
func (m Model) renderAssistantMessage(msg transcript.Message) string {
	streaming := msg.Status == transcript.StatusStreaming
	if msg.Content == "" && !streaming && msg.Annotation == "" {
		return ""
	}

	maxW := m.contentWidth()
	var body string
	if streaming {
		body = m.renderStreamingContent(msg.Content, maxW)
	} else {
		body = m.finalizedBody(msg)
	}

	var parts []string
	if body != "" {
		parts = append(parts, body)
	}

	switch msg.Status {
	case transcript.StatusCancelled:
		parts = append(parts, m.theme.WarningStyle.Render("⚠ "+msg.Annotation))
	case transcript.StatusError:
		parts = append(parts, m.theme.ErrorStyle.Render("✗ "+msg.Annotation))
	case transcript.StatusCompleted:
		if msg.Stats != nil {
			parts = append(parts, m.theme.StatsLabel.Render("  "+msg.Stats.Format()))
		}
	}

	return strings.Join(parts, "\n")
}

// renderStreamingContent renders in-flight assistant text with a blinking
// cursor. Completed code fences get syntax highlighting even before the
// message finalizes.
func (m Model) renderStreamingContent(content string, maxW int) string {
	cursor := lipgloss.NewStyle().Foreground(styles.Purple).Blink(true).Render("▌")
	if content == "" {
		return cursor
	}
	return m.renderWithCodeBlocks(content, maxW) + cursor
}

// finalizedBody returns the glamour render of a finalized message, served
// from the cache when the width hasn't changed since it was rendered.
func (m Model) finalizedBody(msg transcript.Message) string {
	if msg.Content == "" {
		return ""
	}
	if cached, ok := m.mdCache[msg.Seq]; ok {
		return cached
	}
	rendered := strings.TrimRight(m.markdown.Render(msg.Content), "\n")
	m.mdCache[msg.Seq] = rendered
	return rendered
}

// renderWithCodeBlocks splits streamed content on code fences and renders
// each fenced block through the highlighting code block component. An
// unclosed trailing fence still renders as code so a long streamed block
// is readable while it grows.
func (m Model) renderWithCodeBlocks(content string, maxW int) string {
	wrapW := maxW - 4
	if wrapW < 10 {
		wrapW = 10
	}

	if !strings.Contains(content, "```") {
		return util.WrapWidth(content, wrapW)
	}

	var parts []string
	var textLines []string
	var codeLines []string
	var language string
	inCode := false

	flushText := func() {
		if len(textLines) == 0 {
			return
		}
		text := strings.Join(textLines, "\n")
		if strings.TrimSpace(text) != "" {
			parts = append(parts, util.WrapWidth(text, wrapW))
		}
		textLines = nil
	}
	flushCode := func() {
		cb := components.NewCodeBlock(language, strings.Join(codeLines, "\n"))
		cb.SetMaxWidth(maxW)
		parts = append(parts, cb.Render())
		codeLines = nil
		language = ""
	}

	for _, line := range strings.Split(content, "\n") {
		switch {
		case strings.HasPrefix(line, "```"):
			if inCode {
				flushText()
				flushCode()
				inCode = false
			} else {
				flushText()
				language = strings.TrimSpace(strings.TrimPrefix(line, "```"))
				inCode = true
			}
		case inCode:
			codeLines = append(codeLines, line)
		default:
			textLines = append(textLines, line)
		}
	}

	flushText()
	if inCode && len(codeLines) > 0 {
		flushCode()
	}

	return strings.Join(parts, "\n")
}

// =============================================================================
// NOTICE ROW
// =============================================================================

// renderNotice renders the one-line notice row. It always occupies exactly
// one line so the layout never shifts when a notice appears.
func (m Model) renderNotice() string {
	if m.notice == "" {
		return " "
	}
	text := util.TruncateWidth(m.notice, m.width-4)
	switch m.noticeLevel {
	case NoticeError:
		return components.InlineError(text)
	case NoticeWarning:
		return components.InlineWarning(text)
	case NoticeSuccess:
		return components.InlineSuccess(text)
	default:
		return components.InlineInfo(text)
	}
}

// =============================================================================
// HELP OVERLAY
// =============================================================================

// renderHelpOverlay renders the /help screen: every slash command with its
// usage, then the key bindings, centered in a box.
func (m Model) renderHelpOverlay() string {
	const usageCol = 24

	var b strings.Builder
	b.WriteString(m.theme.EditorTitle.Render("gentor help"))
	b.WriteString("\n\n")

	b.WriteString(m.theme.SectionTitle.Render("Commands"))
	b.WriteString("\n")
	for _, e := range commands.HelpEntries() {
		desc := e.Description
		if len(e.Aliases) > 0 {
			desc += m.theme.EditorHelp.Render(fmt.Sprintf("  (%s)", strings.Join(e.Aliases, ", ")))
		}
		b.WriteString(fmt.Sprintf("  %s %s\n",
			m.theme.ShortcutKey.Render(util.PadWidth(e.Usage, usageCol)),
			m.theme.ShortcutDesc.Render(desc)))
	}

	b.WriteString("\n")
	b.WriteString(m.theme.SectionTitle.Render("Keys"))
	b.WriteString("\n")
	for _, group := range m.keys.FullHelp() {
		for _, binding := range group {
			h := binding.Help()
			b.WriteString(fmt.Sprintf("  %s %s\n",
				m.theme.ShortcutKey.Render(util.PadWidth(h.Key, usageCol)),
				m.theme.ShortcutDesc.Render(h.Desc)))
		}
	}

	b.WriteString("\n")
	b.WriteString(m.theme.EditorHelp.Render("press any key to close"))

	box := m.theme.EditorBox.Render(b.String())
	return m.centerOverlay(box)
}

// centerOverlay places a box in the middle of the screen.
func (m Model) centerOverlay(box string) string {
	left := (m.width - lipgloss.Width(box)) / 2
	top := (m.height - lipgloss.Height(box)) / 2
	if left < 0 {
		left = 0
	}
	if top < 0 {
		top = 0
	}
	return lipgloss.NewStyle().MarginLeft(left).MarginTop(top).Render(box)
}
