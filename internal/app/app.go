package app

import (
	"fmt"
	"os"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/utntracker/internal/router"
	"github.com/abhisek/utntracker/internal/screen"
	"github.com/abhisek/utntracker/internal/screens/curriculum"
	"github.com/abhisek/utntracker/internal/screens/history"
	"github.com/abhisek/utntracker/internal/screens/welcome"
	"github.com/abhisek/utntracker/internal/tracker"
	"github.com/abhisek/utntracker/internal/ui/layout"
)

// Options configures the TUI.
type Options struct {
	// Events enables the history screen when set.
	Events history.EventSource
	// SkipWelcome opens the board directly.
	SkipWelcome bool
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router *router.Router
	width  int
	height int
}

// newAppModel creates a new AppModel showing the welcome screen, then the board.
func newAppModel(svc *tracker.Service, opts Options) AppModel {
	boardFactory := func() screen.Screen {
		return curriculum.New(svc, opts.Events)
	}
	var first screen.Screen
	if opts.SkipWelcome {
		first = boardFactory()
	} else {
		first = welcome.New(svc, boardFactory)
	}
	return AppModel{
		router: router.New(first),
	}
}

func (m AppModel) Init() tea.Cmd {
	return m.router.Active().Init()
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if m.router.Depth() > 1 {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
			return m, nil
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}

	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	active := m.router.Active()
	title := ""
	summary := ""
	if active != nil {
		title = active.Title()
		if sp, ok := active.(screen.SummaryProvider); ok {
			summary = sp.Summary()
		}
	}

	header := layout.RenderHeader(title, summary, m.width)

	var footerHints []layout.KeyHint
	if kp, ok := active.(screen.KeyHintProvider); ok {
		footerHints = kp.KeyHints()
	} else if m.router.Depth() > 1 {
		footerHints = []layout.KeyHint{
			{Key: "Esc", Description: "Volver"},
			{Key: "Ctrl+C", Description: "Salir"},
		}
	} else {
		footerHints = []layout.KeyHint{
			{Key: "Ctrl+C", Description: "Salir"},
		}
	}

	footer := layout.RenderFooter(footerHints, m.width)

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := max(m.height-headerHeight-footerHeight, 0)

	content := m.router.View(m.width, contentHeight)
	frame := layout.RenderFrame(header, content, footer, m.width, m.height)

	v.SetContent(frame)
	return v
}

// Run starts the Bubble Tea program.
func Run(svc *tracker.Service, opts Options) error {
	p := tea.NewProgram(newAppModel(svc, opts))
	_, err := p.Run()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}
