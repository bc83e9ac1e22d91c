// gentor - an interactive terminal chat agent for OpenAI-compatible and
// Ollama endpoints.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"errors"
	"log"
	"os"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/jeranaias/gentor/internal/config"
	"github.com/jeranaias/gentor/internal/llm"
	"github.com/jeranaias/gentor/internal/session"
	"github.com/jeranaias/gentor/internal/transcript"
	"github.com/jeranaias/gentor/internal/ui/chat"
	"github.com/jeranaias/gentor/internal/ui/components"
	"github.com/jeranaias/gentor/internal/ui/settings"
	"github.com/jeranaias/gentor/internal/ui/styles"
)

// Version is set at build time.
var Version = "0.1.0"

// Global program reference for the stream pump and watcher callbacks.
var (
	programRef *tea.Program
	programMu  sync.Mutex
)

func main() {
	os.Exit(run())
}

// run wires the session together and drives the program. Exit code 0 is a
// user-requested exit; 1 is a startup or teardown failure.
func run() int {
	log.SetFlags(0)
	log.SetPrefix("gentor: ")

	// A full-screen program is useless on a pipe.
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		log.Print("stdin and stdout must be a terminal")
		return 1
	}
	width, height, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		log.Printf("cannot size terminal: %v", err)
		return 1
	}

	// A broken settings file is not fatal: the store falls back to
	// defaults and the problem is shown in a dismissible panel once the
	// screen is up.
	store, err := config.Open(".")
	var errorBox components.ErrorDisplay
	if err != nil {
		var cerr *config.ConfigError
		if !errors.As(err, &cerr) {
			log.Printf("cannot load settings: %v", err)
			return 1
		}
		errorBox = components.ConfigLoadError(cerr.Path, cerr.Err.Error())
		errorBox.SetSize(width, height)
	}

	ctrl := session.NewController(transcript.New(), store)
	defer ctrl.Shutdown()

	theme := styles.NewTheme()
	app := &App{
		ctrl:     ctrl,
		theme:    theme,
		chat:     chat.New(ctrl, theme, Version),
		errorBox: errorBox,
		width:    width,
		height:   height,
	}

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion())

	programMu.Lock()
	programRef = p
	programMu.Unlock()

	// Hot reload is opt-in and checked once at startup; toggling
	// watch_config mid-session takes effect on the next start.
	if store.Get().WatchConfig {
		watcher, werr := config.NewWatcher(store, 0, sendReload, sendWatcherError)
		if werr == nil {
			werr = watcher.Watch()
		}
		if werr != nil {
			log.Printf("settings watcher disabled: %v", werr)
		} else {
			defer watcher.Close()
		}
	}

	if _, err := p.Run(); err != nil {
		log.Printf("terminal session failed: %v", err)
		return 1
	}
	// A sequencing fault was already shown in the notice row; leave a trail
	// on stderr too now that the alt screen is gone.
	if fault := app.chat.LastFault(); fault != nil {
		log.Printf("conversation state fault: %v", fault)
	}
	return 0
}

// sendReload forwards a reloaded settings snapshot into the event loop.
func sendReload(cfg config.Settings) {
	send(chat.SettingsReloadedMsg{Settings: cfg})
}

// sendWatcherError forwards a settings watcher failure into the event loop.
func sendWatcherError(err error) {
	send(chat.WatcherErrorMsg{Err: err})
}

// send delivers a message to the running program, if any.
func send(msg tea.Msg) {
	programMu.Lock()
	p := programRef
	programMu.Unlock()
	if p != nil {
		p.Send(msg)
	}
}

// =============================================================================
// APPLICATION MODEL
// =============================================================================

// App is the top-level Bubble Tea model. It owns the chat view and raises
// the settings editor overlay on top of it. Stream pumping is handled here
// because the shell owns the program reference the pump sends through.
type App struct {
	ctrl  *session.Controller
	theme *styles.Theme

	chat    chat.Model
	editor  settings.Editor
	editing bool

	// errorBox is the startup configuration panel. It covers the screen
	// until dismissed; the session underneath runs on defaults.
	errorBox components.ErrorDisplay

	width  int
	height int
}

// Init starts the chat view.
func (a *App) Init() tea.Cmd {
	return a.chat.Init()
}

// Update routes messages between the chat view, the editor overlay and the
// session controller.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.errorBox.SetSize(msg.Width, msg.Height)
		if a.editing {
			a.editor.SetSize(msg.Width, msg.Height)
		}
		return a, a.forwardChat(msg)

	case chat.PumpRequestMsg:
		return a, pumpCmd(msg.Handle)

	case chat.OpenEditorMsg:
		editor := settings.New(a.theme, msg.Settings)
		editor.SetSize(a.width, a.height)
		a.editor = editor
		a.editing = true
		return a, a.editor.Init()

	case settings.SaveRequestedMsg:
		res := a.ctrl.CommitEdits(msg.Edits)
		if !res.Closed {
			// Validation failed: the editor stays open with the
			// offending fields marked.
			a.editor.SetError(res.Err)
			return a, nil
		}
		a.editing = false
		closed := a.forwardChat(chat.EditorClosedMsg{
			Saved:   res.Saved,
			Replays: res.Replays,
		})
		if !res.Saved {
			return a, closed
		}
		return a, tea.Batch(closed, a.persistSettings())

	case settings.CancelledMsg:
		return a, a.closeEditorWithoutSaving()

	case tea.KeyMsg:
		if a.errorBox.IsVisible() {
			switch msg.String() {
			case "ctrl+c", "ctrl+q":
				a.ctrl.Shutdown()
				return a, tea.Quit
			}
			a.errorBox, _ = a.errorBox.Update(msg)
			return a, nil
		}
		if a.editing {
			switch msg.String() {
			case "ctrl+q":
				a.ctrl.Shutdown()
				return a, tea.Quit
			case "ctrl+c":
				return a, a.closeEditorWithoutSaving()
			}
			var cmd tea.Cmd
			a.editor, cmd = a.editor.Update(msg)
			return a, cmd
		}
		return a, a.forwardChat(msg)
	}

	// Everything else, stream events and ticks included, flows to the
	// chat view even while the editor is up.
	return a, a.forwardChat(msg)
}

// View renders the startup error panel or the editor overlay when one is
// up, the chat otherwise.
func (a *App) View() string {
	if a.errorBox.IsVisible() {
		return a.errorBox.View()
	}
	if a.editing {
		return a.editor.View()
	}
	return a.chat.View()
}

// forwardChat runs one message through the chat view.
func (a *App) forwardChat(msg tea.Msg) tea.Cmd {
	next, cmd := a.chat.Update(msg)
	a.chat = next.(chat.Model)
	return cmd
}

// closeEditorWithoutSaving drops the staged edits and hands any lines
// queued during editing back to the chat view.
func (a *App) closeEditorWithoutSaving() tea.Cmd {
	res := a.ctrl.CancelEdit()
	a.editing = false
	return a.forwardChat(chat.EditorClosedMsg{Replays: res.Replays})
}

// persistSettings writes the committed snapshot from a command, keeping
// the file I/O off the update loop. The result lands back in the chat
// view as a notice.
func (a *App) persistSettings() tea.Cmd {
	return func() tea.Msg {
		return chat.SettingsPersistedMsg{Err: a.ctrl.PersistSettings()}
	}
}

// =============================================================================
// STREAM PUMP
// =============================================================================

// pumpCmd drains a stream handle into the program. Bubble Tea runs the
// command on its own goroutine, so the Update loop never blocks on the
// network. The pump dies with the handle: the events channel closes after
// the terminal event.
func pumpCmd(h *llm.StreamHandle) tea.Cmd {
	return func() tea.Msg {
		for ev := range h.Events() {
			programMu.Lock()
			p := programRef
			programMu.Unlock()
			if p == nil {
				return nil
			}
			p.Send(chat.StreamEventMsg{HandleID: h.ID(), Event: ev})
		}
		return nil
	}
}
