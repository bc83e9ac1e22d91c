// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"regexp"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/gentor/internal/transcript"
)

// ansiRE matches SGR color sequences the syntax highlighter interleaves
// with code text.
var ansiRE = regexp.MustCompile("\x1b\\[[0-9;]*m")

// stripANSI removes color escapes so assertions see the plain text.
func stripANSI(s string) string {
	return ansiRE.ReplaceAllString(s, "")
}

// =============================================================================
// TRANSCRIPT RENDERING
// =============================================================================

func TestRenderTranscriptShowsWelcomeWhenEmpty(t *testing.T) {
	m := newTestModel(t, "http://127.0.0.1:9")

	out := m.renderTranscript()
	if !strings.Contains(out, "Gentor ready!") {
		t.Error("empty transcript should render the welcome banner")
	}
}

func TestRenderTranscriptShowsMessages(t *testing.T) {
	m := newTestModel(t, "http://127.0.0.1:9")
	tr := m.ctrl.Transcript()
	tr.Append(transcript.RoleUser, "what is a goroutine?")
	tr.Append(transcript.RoleAssistant, "A goroutine is a lightweight thread.")

	out := m.renderTranscript()
	if !strings.Contains(out, "what is a goroutine?") {
		t.Error("user message missing from the transcript render")
	}
	if !strings.Contains(out, "lightweight thread") {
		t.Error("assistant message missing from the transcript render")
	}
	if strings.Contains(out, "Gentor ready!") {
		t.Error("welcome banner should leave once messages exist")
	}
}

func TestRenderAssistantAnnotations(t *testing.T) {
	m := newTestModel(t, "http://127.0.0.1:9")
	tr := m.ctrl.Transcript()

	tr.Append(transcript.RoleUser, "q")
	if _, err := tr.AppendStreaming(transcript.RoleAssistant); err != nil {
		t.Fatalf("AppendStreaming: %v", err)
	}
	if err := tr.ExtendLast(transcript.RoleAssistant, "part"); err != nil {
		t.Fatalf("ExtendLast: %v", err)
	}
	if err := tr.FinalizeLast(transcript.RoleAssistant, transcript.StatusCancelled, "interrupted", nil); err != nil {
		t.Fatalf("FinalizeLast: %v", err)
	}

	out := m.renderTranscript()
	if !strings.Contains(out, "interrupted") {
		t.Error("cancelled message should carry its annotation")
	}
	if !strings.Contains(out, "part") {
		t.Error("partial content should render for a cancelled message")
	}
}

func TestFinalizedBodyIsCached(t *testing.T) {
	m := newTestModel(t, "http://127.0.0.1:9")
	msg := transcript.Message{
		Seq:     7,
		Role:    transcript.RoleAssistant,
		Content: "plain **bold** text",
		Status:  transcript.StatusCompleted,
	}

	first := m.finalizedBody(msg)
	if first == "" {
		t.Fatal("finalized body should render")
	}
	if _, ok := m.mdCache[7]; !ok {
		t.Fatal("render should be cached by sequence number")
	}

	// A cache hit must serve the stored render verbatim.
	m.mdCache[7] = "sentinel"
	if got := m.finalizedBody(msg); got != "sentinel" {
		t.Errorf("expected the cached render, got %q", got)
	}
}

func TestResizeDropsRenderCache(t *testing.T) {
	m := newTestModel(t, "http://127.0.0.1:9")
	m.mdCache[1] = "stale"

	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	m = next.(Model)

	if len(m.mdCache) != 0 {
		t.Error("resize should invalidate width-dependent renders")
	}
}

// =============================================================================
// CODE FENCES
// =============================================================================

func TestRenderWithCodeBlocksSplitsFences(t *testing.T) {
	m := newTestModel(t, "http://127.0.0.1:9")
	content := "before\n```go\nfmt.Println(42)\n```\nafter"

	out := stripANSI(m.renderWithCodeBlocks(content, 80))
	if !strings.Contains(out, "before") || !strings.Contains(out, "after") {
		t.Error("prose around a fence should survive")
	}
	if !strings.Contains(out, "fmt.Println(42)") {
		t.Error("fenced code should render")
	}
	if strings.Contains(out, "```") {
		t.Error("fence markers should not leak into the render")
	}
}

func TestRenderWithCodeBlocksUnclosedFence(t *testing.T) {
	m := newTestModel(t, "http://127.0.0.1:9")
	content := "```python\nx = 1"

	out := stripANSI(m.renderWithCodeBlocks(content, 80))
	if !strings.Contains(out, "x = 1") {
		t.Error("an unclosed fence should still render its code")
	}
}

func TestRenderStreamingContentCursorOnly(t *testing.T) {
	m := newTestModel(t, "http://127.0.0.1:9")

	out := m.renderStreamingContent("", 80)
	if out == "" {
		t.Error("an empty streaming message should still show the cursor")
	}
}

// =============================================================================
// CHROME
// =============================================================================

func TestRenderNoticeIsAlwaysOneLine(t *testing.T) {
	m := newTestModel(t, "http://127.0.0.1:9")

	if h := lipgloss.Height(m.renderNotice()); h != 1 {
		t.Errorf("empty notice row height = %d, want 1", h)
	}

	m.setNotice(NoticeError, strings.Repeat("a very long failure description ", 20))
	if h := lipgloss.Height(m.renderNotice()); h != 1 {
		t.Errorf("long notice row height = %d, want 1", h)
	}
}

func TestHeaderCompactOnShortTerminals(t *testing.T) {
	m := newTestModel(t, "http://127.0.0.1:9")

	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 12})
	m = next.(Model)
	if h := lipgloss.Height(m.headerView()); h != 1 {
		t.Errorf("short terminal header height = %d, want 1", h)
	}

	next, _ = m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	m = next.(Model)
	if h := lipgloss.Height(m.headerView()); h <= 1 {
		t.Error("tall terminal should get the full header box")
	}
}

func TestViewStacksChrome(t *testing.T) {
	m := newTestModel(t, "http://127.0.0.1:9")

	view := m.View()
	if view == "" {
		t.Fatal("view should render")
	}
	if !strings.Contains(view, ">") {
		t.Error("input prompt missing from the view")
	}
}

func TestHelpOverlayListsKeysAndCommands(t *testing.T) {
	m := newTestModel(t, "http://127.0.0.1:9")
	m.showHelp = true

	view := m.View()
	for _, want := range []string{"/set", "/clear", "/exit", "Esc", "Enter"} {
		if !strings.Contains(view, want) {
			t.Errorf("help overlay missing %q", want)
		}
	}
}
