package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/cargodot/cargodot/pkg/cargo"
)

var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorValue)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorMuted)
)

// resolveRootSpec decides the root package when no --root was given.
// Manifests with a [package] section need nothing: the resolver falls
// back to the manifest name. Virtual workspace manifests have no
// package of their own, so the lockfile's root candidates stand in: a
// single candidate is used directly, several prompt for a choice when
// running interactively.
func (c *CLI) resolveRootSpec(m *cargo.Manifest, lock *cargo.Lockfile) (string, error) {
	if m.Name != "" {
		return "", nil
	}
	candidates := lock.RootCandidates()
	switch len(candidates) {
	case 0:
		return "", nil
	case 1:
		p := candidates[0]
		c.Logger.Debugf("using workspace root %s v%s", p.Name, p.Version)
		return rootSpec(p), nil
	}
	if !isatty.IsTerminal(os.Stdout.Fd()) {
		names := make([]string, len(candidates))
		for i, p := range candidates {
			names[i] = p.Name
		}
		return "", fmt.Errorf("workspace has several root candidates (%s), select one with --root",
			strings.Join(names, ", "))
	}
	return pickRootPackage(candidates)
}

// pickRootPackage runs the interactive picker and returns the chosen
// package as a name@version spec.
func pickRootPackage(candidates []cargo.Package) (string, error) {
	model, err := tea.NewProgram(newRootPicker(candidates)).Run()
	if err != nil {
		return "", fmt.Errorf("root selection: %w", err)
	}
	m, ok := model.(rootPickerModel)
	if !ok || m.selected == nil {
		return "", errors.New("no root package selected")
	}
	return rootSpec(*m.selected), nil
}

// rootSpec formats a package as the "name@version" form --root accepts.
func rootSpec(p cargo.Package) string {
	return p.Name + "@" + p.Version
}

// =============================================================================
// rootPickerModel - Interactive root package selection
// =============================================================================

// rootPickerModel is the bubbletea model for selecting the root package
// of a workspace lockfile.
type rootPickerModel struct {
	candidates []cargo.Package
	cursor     int
	selected   *cargo.Package
}

// newRootPicker creates a new root picker model.
func newRootPicker(candidates []cargo.Package) rootPickerModel {
	return rootPickerModel{candidates: candidates}
}

func (m rootPickerModel) Init() tea.Cmd {
	return nil
}

func (m rootPickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.candidates)-1 {
				m.cursor++
			}
		case "enter":
			m.selected = &m.candidates[m.cursor]
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m rootPickerModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Root Package"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("j/k move · enter select · q cancel"))
	b.WriteString("\n\n")

	for i, p := range m.candidates {
		cursor := "  "
		if i == m.cursor {
			cursor = "> "
		}

		line := fmt.Sprintf("%s%-30s  %s", cursor, p.Name, listDimStyle.Render("v"+p.Version))

		if i == m.cursor {
			b.WriteString(listSelectedStyle.Render(line))
		} else {
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}

	return b.String()
}
