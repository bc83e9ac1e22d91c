// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/gentor/internal/ui/styles"
)

// ReadyBanner is the greeting shown before the first message is sent.
const ReadyBanner = "🧠 Gentor ready! Type your message or '/setting' to edit config."

// =============================================================================
// WELCOME BANNER
// =============================================================================

// Welcome fills the transcript viewport while the conversation is empty: a
// logo, the ready greeting, the active provider and model, and quick start
// tips. Sections drop off as the terminal shrinks; the greeting survives
// every tier.
type Welcome struct {
	version   string
	provider  string
	modelName string

	width  int
	height int
}

// NewWelcome creates the banner with placeholder identity; the first status
// sync replaces it.
func NewWelcome() Welcome {
	return Welcome{
		version:   "dev",
		provider:  "openai",
		modelName: "gpt-4o-mini",
	}
}

// SetVersion sets the version string.
func (w *Welcome) SetVersion(version string) {
	w.version = version
}

// SetModel sets the provider and model names.
func (w *Welcome) SetModel(provider, model string) {
	w.provider = provider
	w.modelName = model
}

// SetSize updates the dimensions.
func (w *Welcome) SetSize(width, height int) {
	w.width = width
	w.height = height
}

// Init implements tea.Model.
func (w Welcome) Init() tea.Cmd {
	return nil
}

// Update tracks terminal resizes.
func (w Welcome) Update(msg tea.Msg) (Welcome, tea.Cmd) {
	if size, ok := msg.(tea.WindowSizeMsg); ok {
		w.width = size.Width
		w.height = size.Height
	}
	return w, nil
}

// View renders the banner centered in the available area. Before the first
// resize it assumes 80x24.
func (w Welcome) View() string {
	width, height := w.width, w.height
	if width == 0 {
		width = 80
	}
	if height == 0 {
		height = 24
	}

	// Sections for the space at hand. The ladder drops the quick start
	// first, then the model summary, then the full logo.
	avail := height - 4 // double border plus default padding
	gap := "\n"
	var sections []string
	switch {
	case avail >= 20:
		gap = "\n\n"
		sections = []string{w.logo(), w.greeting(), w.modelSummary(), w.quickStart()}
	case avail >= 15:
		sections = []string{w.logo(), w.greeting(), w.modelSummary(), w.quickStart()}
	case avail >= 9:
		sections = []string{w.logoCompact(), w.greeting(), w.modelLine()}
	default:
		sections = []string{w.logoCompact(), w.greeting()}
	}
	content := strings.Join(sections, gap)

	boxWidth := width - 8
	if boxWidth > 62 {
		boxWidth = 62
	}
	if boxWidth < 40 {
		boxWidth = 40
	}
	if boxWidth > width-4 {
		boxWidth = width - 4
	}
	hpad := 4
	if width < 70 {
		hpad = 2
	}

	box := w.frame(boxWidth, 1, hpad).Render(content)
	if lipgloss.Height(box) > height {
		// Drop the vertical padding rather than a visible section.
		box = w.frame(boxWidth, 0, hpad).Render(content)
	}

	// A box taller than the screen pins to the top so the logo and the
	// greeting stay visible.
	vAlign := lipgloss.Center
	if lipgloss.Height(box) >= height {
		vAlign = lipgloss.Top
	}
	return lipgloss.Place(width, height, lipgloss.Center, vAlign, box)
}

func (w Welcome) frame(width, vpad, hpad int) lipgloss.Style {
	return lipgloss.NewStyle().
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(styles.Purple).
		Padding(vpad, hpad).
		Width(width).
		Align(lipgloss.Center)
}

// =============================================================================
// SECTIONS
// =============================================================================

var logoStyle = lipgloss.NewStyle().Foreground(styles.Cyan).Bold(true)

// logo is the six-line ASCII banner; narrow terminals get the compact one.
func (w Welcome) logo() string {
	if w.width < 60 {
		return w.logoCompact()
	}
	return logoStyle.Render(`  ____  _____  _   _  _____   ___   ____
 / ___|| ____|| \ | ||_   _| / _ \ |  _ \
| |  _ |  _|  |  \| |  | |  | | | || |_) |
| |_| || |___ | |\  |  | |  | |_| ||  _ <
 \____||_____||_| \_|  |_|   \___/ |_| \_\
                                          `)
}

// logoCompact is a three-line box, or one line when even that won't fit.
func (w Welcome) logoCompact() string {
	if w.width < 40 {
		return logoStyle.Render("gentor - Terminal Chat Agent")
	}
	return logoStyle.Render(`+--------------------+
|       gentor       |
+--------------------+`)
}

func (w Welcome) greeting() string {
	return lipgloss.NewStyle().
		Foreground(styles.TextPrimary).
		Render(ReadyBanner)
}

// modelSummary renders provider, model and version on three lines.
func (w Welcome) modelSummary() string {
	label := lipgloss.NewStyle().Foreground(styles.TextSecondary).Width(10)
	value := lipgloss.NewStyle().Foreground(styles.Cyan).Bold(true)
	version := lipgloss.NewStyle().Foreground(styles.TextMuted).Italic(true)

	return lipgloss.JoinVertical(lipgloss.Left,
		label.Render("Provider: ")+value.Render(strings.ToUpper(w.provider)),
		label.Render("Model:    ")+value.Render(w.modelName),
		version.Render("gentor v"+w.version),
	)
}

// modelLine is the one-line summary for tight layouts.
func (w Welcome) modelLine() string {
	value := lipgloss.NewStyle().Foreground(styles.Cyan).Bold(true)
	return value.Render(strings.ToUpper(w.provider)) + " | " + w.modelName
}

func (w Welcome) quickStart() string {
	title := lipgloss.NewStyle().Foreground(styles.TextSecondary).Bold(true)
	bullet := lipgloss.NewStyle().Foreground(styles.Cyan).Bold(true)
	tip := lipgloss.NewStyle().Foreground(styles.TextSecondary)

	lines := []string{title.Render("Quick Start:")}
	for _, t := range []string{
		" Type a message and press Enter",
		" Use /help to see all commands",
		" Use /setting to edit configuration",
		" Press Esc to stop a streaming reply",
	} {
		lines = append(lines, bullet.Render("-")+tip.Render(t))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
