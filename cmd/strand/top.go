package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/strandlabs/strand/channel"
	"github.com/strandlabs/strand/handle"
	"github.com/strandlabs/strand/sched"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	handleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	refStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

var topCmd = &cobra.Command{
	Use:   "top",
	Short: "Interactively inspect a live handle table",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			return fmt.Errorf("top requires a terminal")
		}
		cfg, err := loadConfig(configPath)
		if err != nil {
			return err
		}
		m := newTopModel(cfg)
		_, err = tea.NewProgram(m).Run()
		return err
	},
}

type topModel struct {
	rt     *sched.Runtime
	table  *handle.Table
	cfg    config
	input  textinput.Model
	result string
	failed bool
}

func newTopModel(cfg config) *topModel {
	rt := sched.New()
	table := handle.New(rt, handle.WithLimit(cfg.TableLimit))

	ti := textinput.New()
	ti.Placeholder = "make | dup <h> | close <h> | quit"
	ti.Focus()

	return &topModel{
		rt:    rt,
		table: table,
		cfg:   cfg,
		input: ti,
	}
}

func (m *topModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *topModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			cmdline := strings.TrimSpace(m.input.Value())
			m.input.SetValue("")
			if cmdline == "quit" || cmdline == "q" {
				return m, tea.Quit
			}
			m.exec(cmdline)
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// exec runs one inspector command against the table.
func (m *topModel) exec(cmdline string) {
	fields := strings.Fields(cmdline)
	if len(fields) == 0 {
		return
	}
	m.failed = false

	switch fields[0] {
	case "make":
		h, err := channel.New(m.table, m.rt, m.cfg.ChannelCap)
		if err != nil {
			m.fail(err)
			return
		}
		m.result = fmt.Sprintf("allocated handle %d", h)
	case "dup", "close":
		if len(fields) != 2 {
			m.fail(fmt.Errorf("usage: %s <handle>", fields[0]))
			return
		}
		n, err := strconv.Atoi(fields[1])
		if err != nil {
			m.fail(fmt.Errorf("bad handle %q", fields[1]))
			return
		}
		h := handle.Handle(n)
		if fields[0] == "dup" {
			h2, err := m.table.Dup(h)
			if err != nil {
				m.fail(err)
				return
			}
			m.result = fmt.Sprintf("duplicated %d -> %d", h, h2)
		} else {
			if err := m.table.Close(h); err != nil {
				m.fail(err)
				return
			}
			m.result = fmt.Sprintf("closed handle %d", h)
		}
	default:
		m.fail(fmt.Errorf("unknown command %q", fields[0]))
	}
}

func (m *topModel) fail(err error) {
	m.failed = true
	m.result = err.Error()
}

func (m *topModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("strand handle table"))
	fmt.Fprintf(&b, "  %d in use / %d slots\n\n", m.table.Len(), m.table.Cap())

	if m.table.Len() == 0 {
		b.WriteString(helpStyle.Render("  (empty)"))
		b.WriteByte('\n')
	}
	m.table.Each(func(h handle.Handle, obj handle.Object) bool {
		refs, _ := m.table.Refs(h)
		fmt.Fprintf(&b, "  %s  %s  %T\n",
			handleStyle.Render(fmt.Sprintf("h=%-4d", h)),
			refStyle.Render(fmt.Sprintf("refs=%-3d", refs)),
			obj)
		return true
	})

	b.WriteByte('\n')
	if m.result != "" {
		if m.failed {
			b.WriteString(errorStyle.Render(m.result))
		} else {
			b.WriteString(resultStyle.Render(m.result))
		}
		b.WriteByte('\n')
	}

	b.WriteByte('\n')
	b.WriteString(m.input.View())
	b.WriteByte('\n')
	b.WriteString(helpStyle.Render("enter a command, esc to quit"))
	b.WriteByte('\n')

	return b.String()
}
