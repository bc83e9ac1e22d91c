// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/gentor/internal/llm"
	"github.com/jeranaias/gentor/internal/session"
	"github.com/jeranaias/gentor/internal/transcript"
	"github.com/jeranaias/gentor/internal/ui/components"
	"github.com/jeranaias/gentor/internal/ui/styles"
)

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the chat view. It renders the transcript, the input line, the
// notice row and the status bar, and routes every piece of input through
// the session controller. The controller is the single writer of the
// transcript; the model only reads snapshots and decides when to redraw.
type Model struct {
	ctrl  *session.Controller
	theme *styles.Theme
	keys  KeyMap

	width  int
	height int
	ready  bool

	viewport  viewport.Model
	input     *components.InputArea
	statusBar *components.StatusBar
	header    *components.Header
	welcome   components.Welcome
	markdown  *components.Markdown
	thinking  components.ThinkingIndicator

	// buffer batches streamed deltas; activeID names the stream whose
	// events are live. Events carrying any other ID are stale.
	buffer   *StreamingBuffer
	activeID string

	notice      string
	noticeLevel NoticeLevel
	showHelp    bool

	// lastFault keeps the most recent conversation sequencing fault so the
	// shell can print a trail on exit. Faults also show in the notice row.
	lastFault error

	// mdCache holds finalized markdown renders keyed by message sequence
	// number. Dropped whenever the width changes or the history clears.
	mdCache map[uint64]string
}

// New creates the chat view bound to a session controller.
func New(ctrl *session.Controller, theme *styles.Theme, version string) Model {
	welcome := components.NewWelcome()
	welcome.SetVersion(version)

	m := Model{
		ctrl:      ctrl,
		theme:     theme,
		keys:      DefaultKeyMap(),
		input:     components.NewInputArea(theme),
		statusBar: components.NewStatusBar(theme),
		header:    components.NewHeader(),
		welcome:   welcome,
		markdown:  components.NewMarkdown(),
		thinking:  components.NewThinkingIndicator(),
		buffer:    NewStreamingBuffer(),
		mdCache:   make(map[uint64]string),
	}
	m.syncStatus()
	return m
}

// Init starts the input cursor blink.
func (m Model) Init() tea.Cmd {
	return m.input.Focus()
}

// =============================================================================
// UPDATE
// =============================================================================

// Update handles one Bubble Tea message.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case StreamEventMsg:
		cmd := m.handleStreamEvent(msg)
		return m, cmd

	case StreamTickMsg:
		cmd := m.handleStreamTick(msg)
		return m, cmd

	case EditorClosedMsg:
		if msg.Saved {
			m.setNotice(NoticeSuccess, "settings saved")
		} else {
			m.setNotice(NoticeInfo, "settings unchanged")
		}
		m.syncStatus()
		return m, m.applyReplays(msg.Replays)

	case SettingsPersistedMsg:
		if msg.Err != nil {
			m.setNotice(NoticeWarning, fmt.Sprintf("settings not saved: %v", msg.Err))
		}
		m.syncStatus()
		return m, nil

	case SettingsReloadedMsg:
		m.setNotice(NoticeInfo, "settings reloaded from disk")
		m.syncStatus()
		return m, nil

	case WatcherErrorMsg:
		m.setNotice(NoticeWarning, fmt.Sprintf("settings watcher: %v", msg.Err))
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.thinking, cmd = m.thinking.Update(msg)
		return m, cmd
	}

	// Everything else feeds the input line and the viewport, which keeps
	// cursor blinks and mouse wheel events working.
	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if cmd != nil {
		cmds = append(cmds, cmd)
	}
	m.viewport, cmd = m.viewport.Update(msg)
	if cmd != nil {
		cmds = append(cmds, cmd)
	}
	if len(cmds) == 0 {
		return m, nil
	}
	return m, tea.Batch(cmds...)
}

// =============================================================================
// KEY HANDLING
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// The force quit chord works in every state, including mid-stream.
	if key.Matches(msg, m.keys.ForceQuit) {
		m.ctrl.Shutdown()
		return m, tea.Quit
	}

	if m.showHelp {
		// Any key dismisses the overlay.
		m.showHelp = false
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		if m.activeID != "" {
			m.interrupt()
			return m, nil
		}
		m.ctrl.Shutdown()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Interrupt):
		if m.activeID != "" {
			m.interrupt()
		}
		return m, nil

	case key.Matches(msg, m.keys.Clear):
		return m, m.submitLine("/clear")

	case key.Matches(msg, m.keys.Submit):
		line := m.input.Value()
		m.input.Reset()
		return m, m.submitLine(line)

	case key.Matches(msg, m.keys.ScrollUp):
		m.viewport.LineUp(1)
		return m, nil

	case key.Matches(msg, m.keys.ScrollDown):
		m.viewport.LineDown(1)
		return m, nil

	case key.Matches(msg, m.keys.PageUp):
		m.viewport.ViewUp()
		return m, nil

	case key.Matches(msg, m.keys.PageDown):
		m.viewport.ViewDown()
		return m, nil

	case key.Matches(msg, m.keys.Top):
		m.viewport.GotoTop()
		return m, nil

	case key.Matches(msg, m.keys.Bottom):
		m.viewport.GotoBottom()
		return m, nil
	}

	// Everything else is typing.
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// interrupt asks the controller to cancel the turn in flight. The stream
// settles through its terminal event, not here.
func (m *Model) interrupt() {
	if m.ctrl.Interrupt() {
		m.setNotice(NoticeInfo, "interrupt requested")
		m.syncStatus()
	}
}

// =============================================================================
// INPUT SUBMISSION
// =============================================================================

// submitLine routes one line through the controller and applies whatever
// came back. Blank lines never reach the controller.
func (m *Model) submitLine(line string) tea.Cmd {
	if strings.TrimSpace(line) == "" {
		return nil
	}
	m.clearNotice()
	out := m.ctrl.Submit(line)
	cmd := m.applyOutcome(out)
	m.syncStatus()
	return cmd
}

// applyOutcome translates one controller outcome into view changes. Shared
// by the direct submit path and queue replay, so a replayed line behaves
// exactly like a typed one.
func (m *Model) applyOutcome(out session.Outcome) tea.Cmd {
	switch out.Kind {
	case session.OutcomeTurnStarted:
		return m.adoptTurn(out.Handle)

	case session.OutcomeTurnFailed:
		// The transcript holds the user line and the failed placeholder.
		m.refreshTranscript(true)
		m.setNotice(NoticeError, out.Notice)

	case session.OutcomeQueued:
		m.setNotice(NoticeInfo, fmt.Sprintf("queued, %d waiting", out.Queued))

	case session.OutcomeEditorOpened:
		return openEditorCmd(out)

	case session.OutcomeOptionSet:
		m.setNotice(NoticeSuccess, out.Notice)
		return m.persistCmd()

	case session.OutcomeOptionRejected:
		m.setNotice(NoticeError, out.Notice)

	case session.OutcomeCleared:
		m.mdCache = make(map[uint64]string)
		m.refreshTranscript(false)
		m.setNotice(NoticeInfo, out.Notice)

	case session.OutcomeHelp:
		m.showHelp = true

	case session.OutcomeExit:
		return tea.Quit

	case session.OutcomeUnknown:
		m.setNotice(NoticeWarning, out.Notice)

	case session.OutcomeFault:
		m.lastFault = out.Err
		m.refreshTranscript(true)
		m.setNotice(NoticeError, out.Notice)
	}
	return nil
}

// applyReplays applies the outcomes of queued lines drained by the
// controller. At most one of them starts a turn.
func (m *Model) applyReplays(replays session.Replays) tea.Cmd {
	var cmds []tea.Cmd
	for _, r := range replays {
		if cmd := m.applyOutcome(r.Outcome); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	if len(cmds) == 0 {
		return nil
	}
	return tea.Batch(cmds...)
}

// persistCmd schedules the settings write as a command. The file I/O runs
// on the command's goroutine, never inside Update.
func (m *Model) persistCmd() tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		return SettingsPersistedMsg{Err: ctrl.PersistSettings()}
	}
}

// =============================================================================
// STREAMING
// =============================================================================

// adoptTurn makes a freshly started stream the live one: remembers its ID,
// drops leftovers from any earlier stream, starts the thinking indicator
// and asks the shell to pump events.
func (m *Model) adoptTurn(h *llm.StreamHandle) tea.Cmd {
	m.activeID = h.ID()
	m.buffer.Reset()

	st := m.ctrl.GetStatus()
	m.thinking.SetDetail(st.Model)
	thinkCmd := m.thinking.Start()
	m.input.SetStreaming(true)

	m.refreshTranscript(true)
	m.syncStatus()
	return tea.Batch(pumpRequestCmd(h), streamTickCmd(m.activeID), thinkCmd)
}

// handleStreamEvent applies one pumped event. Deltas land in the
// transcript immediately and in the render buffer for the next tick; a
// terminal event settles the turn and replays the queue.
func (m *Model) handleStreamEvent(msg StreamEventMsg) tea.Cmd {
	if msg.HandleID != m.activeID {
		// Stale event from a finished or superseded stream.
		return nil
	}

	res := m.ctrl.HandleEvent(msg.HandleID, msg.Event)
	if res.Err != nil {
		m.lastFault = res.Err
		m.setNotice(NoticeError, res.Err.Error())
	}

	if res.Applied {
		if m.thinking.IsActive() {
			m.thinking.Stop()
		}
		m.buffer.Write(msg.Event.Delta)
	}

	if !res.Finished {
		return nil
	}

	// Terminal event. Render whatever is still buffered, then settle.
	m.buffer.ForceFlush()
	m.thinking.Stop()
	m.input.SetStreaming(false)
	m.activeID = ""
	m.refreshTranscript(true)

	switch res.Status {
	case transcript.StatusCancelled:
		m.setNotice(NoticeWarning, "response interrupted")
	case transcript.StatusError:
		m.setNotice(NoticeError, res.Notice)
	}
	m.syncStatus()
	return m.applyReplays(res.Replays)
}

// handleStreamTick redraws if deltas accumulated and reschedules itself.
// Ticks stamped with a stale handle ID belong to a finished or superseded
// chain and die here.
func (m *Model) handleStreamTick(msg StreamTickMsg) tea.Cmd {
	if m.activeID == "" || msg.HandleID != m.activeID {
		return nil
	}
	if _, ok := m.buffer.Flush(); ok {
		// Follow the tail only while the user is already there, so
		// scrolling back during a stream stays put.
		m.refreshTranscript(m.viewport.AtBottom())
	}
	return streamTickCmd(m.activeID)
}

// pumpRequestCmd asks the program shell to drain the handle's events.
func pumpRequestCmd(h *llm.StreamHandle) tea.Cmd {
	return func() tea.Msg {
		return PumpRequestMsg{Handle: h}
	}
}

// openEditorCmd asks the program shell to raise the settings editor.
func openEditorCmd(out session.Outcome) tea.Cmd {
	return func() tea.Msg {
		return OpenEditorMsg{Settings: out.Settings}
	}
}

// =============================================================================
// LAYOUT
// =============================================================================

func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.theme.SetSize(msg.Width, msg.Height)

	m.header.SetWidth(msg.Width)
	m.statusBar.SetWidth(msg.Width)
	m.input.SetWidth(msg.Width)
	m.markdown.SetWidth(m.contentWidth())

	// Cached markdown renders are wrapped for the old width.
	m.mdCache = make(map[uint64]string)

	// Measure the fixed rows at the new width; the viewport gets the rest.
	headerHeight := lipgloss.Height(m.headerView())
	inputHeight := lipgloss.Height(m.input.View())
	statusHeight := lipgloss.Height(m.statusBar.View())
	const noticeHeight = 1

	vpHeight := m.height - headerHeight - noticeHeight - inputHeight - statusHeight
	if vpHeight < 1 {
		vpHeight = 1
	}
	vpWidth := m.width
	if vpWidth < 1 {
		vpWidth = 1
	}

	if !m.ready {
		m.viewport = viewport.New(vpWidth, vpHeight)
		m.ready = true
	} else {
		m.viewport.Width = vpWidth
		m.viewport.Height = vpHeight
	}
	m.welcome.SetSize(vpWidth, vpHeight)

	m.refreshTranscript(m.activeID != "")

	var vpCmd tea.Cmd
	m.viewport, vpCmd = m.viewport.Update(msg)
	return m, vpCmd
}

// contentWidth is the usable width for message content inside the
// viewport, leaving room for bubble borders and margins.
func (m Model) contentWidth() int {
	w := m.width - 6
	if w < 20 {
		w = 20
	}
	return w
}

// =============================================================================
// STATE SYNC
// =============================================================================

// refreshTranscript re-renders the conversation into the viewport.
func (m *Model) refreshTranscript(follow bool) {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderTranscript())
	if follow {
		m.viewport.GotoBottom()
	}
}

// syncStatus pushes the controller's status snapshot into the chrome.
func (m *Model) syncStatus() {
	st := m.ctrl.GetStatus()
	m.statusBar.SetModel(st.Provider, st.Model)
	m.statusBar.SetQueued(st.Queued)
	m.statusBar.SetUnsaved(st.Unsaved)
	m.statusBar.SetLastTurn(st.LastTurn)
	m.statusBar.SetStatus(statusFor(st))
	m.header.SetModel(st.Provider, st.Model)
	m.welcome.SetModel(st.Provider, st.Model)
}

// statusFor maps session states onto status bar badges. A failed last
// turn shows as Error while the session is at rest, until the next turn
// starts or the history is cleared.
func statusFor(st session.Status) components.Status {
	switch st.State {
	case session.StateAppending, session.StateStreaming:
		return components.StatusStreaming
	case session.StateCancelling:
		return components.StatusCancelling
	case session.StateEditingSettings:
		return components.StatusEditing
	case session.StateShuttingDown:
		return components.StatusClosing
	default:
		if st.Failed {
			return components.StatusError
		}
		return components.StatusReady
	}
}

// =============================================================================
// NOTICES
// =============================================================================

func (m *Model) setNotice(level NoticeLevel, text string) {
	m.notice = text
	m.noticeLevel = level
}

func (m *Model) clearNotice() {
	m.notice = ""
	m.noticeLevel = NoticeInfo
}

// Streaming reports whether a stream is currently live in the view.
func (m Model) Streaming() bool {
	return m.activeID != ""
}

// LastFault returns the most recent conversation sequencing fault, or nil.
func (m Model) LastFault() error {
	return m.lastFault
}
