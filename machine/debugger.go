package machine

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/davecgh/go-spew/spew"

	"otto/inst"
)

// cyclesPerTick bounds how much a free-running machine executes between
// frames so the UI stays responsive.
const cyclesPerTick = 256

type model struct {
	mach    *Machine
	running bool // free-run mode (r), as opposed to single stepping

	prevPC inst.Address

	borderStyle  lipgloss.Style
	labelStyle   lipgloss.Style
	addressStyle lipgloss.Style
	valueStyle   lipgloss.Style
	accentStyle  lipgloss.Style
	textStyle    lipgloss.Style
	errorStyle   lipgloss.Style
}

type tickMsg struct{}

func tick() tea.Cmd {
	return tea.Tick(time.Millisecond*16, func(time.Time) tea.Msg { return tickMsg{} })
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit

		case " ", "j":
			m.running = false
			m.prevPC = m.mach.PC()
			m.mach.RunCycle()

		case "r":
			m.running = !m.running
			if m.running {
				return m, tick()
			}
		}

	case tickMsg:
		if !m.running {
			return m, nil
		}
		m.prevPC = m.mach.PC()
		for i := 0; i < cyclesPerTick; i++ {
			if !m.mach.Running() {
				m.running = false
				break
			}
			m.mach.RunCycle()
		}
		if m.running {
			return m, tick()
		}
	}
	return m, nil
}

// memoryRow renders 16 bytes starting at base, bracketing the PC cell.
func (m model) memoryRow(base inst.Address) string {
	mem := m.mach.Memory()
	s := m.addressStyle.Render(fmt.Sprintf("%04x", base)) + " | "
	for i := inst.Address(0); i < 16; i++ {
		b := mem.Read8(base + i)
		cell := fmt.Sprintf(" %02x  ", b)
		if base+i == m.mach.PC() {
			cell = m.accentStyle.Render(fmt.Sprintf("[%02x] ", b))
		}
		s += cell
	}
	return s
}

func (m model) memoryPane() string {
	rows := []string{m.labelStyle.Render("memory")}

	pcRow := m.mach.PC() &^ 0xf
	spRow := m.mach.Registers().SP &^ 0xf
	seen := map[inst.Address]bool{}
	for _, base := range []inst.Address{
		pcRow - 16, pcRow, pcRow + 16, pcRow + 32,
		spRow - 16, spRow,
	} {
		base &^= 0xf
		if seen[base] {
			continue
		}
		seen[base] = true
		rows = append(rows, m.memoryRow(base))
	}
	return strings.Join(rows, "\n")
}

func (m model) registerPane() string {
	reg := m.mach.Registers()
	flags := m.mach.Flags()

	row := func(name string, value any) string {
		return m.labelStyle.Render(name) + " " + m.valueStyle.Render(fmt.Sprintf("%v", value))
	}

	flagMarks := ""
	for _, f := range []bool{flags.Sign, flags.Zero, flags.AuxCarry, flags.Parity, flags.Carry} {
		if f {
			flagMarks += "/ "
		} else {
			flagMarks += ". "
		}
	}

	lines := []string{
		m.labelStyle.Render("registers"),
		row("PC:", fmt.Sprintf("%04x (%04x)", m.mach.PC(), m.prevPC)),
		row("SP:", fmt.Sprintf("%04x", reg.SP)),
		row(" A:", fmt.Sprintf("%02x", reg.A)),
		row("BC:", fmt.Sprintf("%02x%02x", reg.B, reg.C)),
		row("DE:", fmt.Sprintf("%02x%02x", reg.D, reg.E)),
		row("HL:", fmt.Sprintf("%02x%02x", reg.H, reg.L)),
		m.labelStyle.Render("S Z A P C"),
		m.textStyle.Render(flagMarks),
	}

	if reason, halted := m.mach.HaltReason(); halted {
		lines = append(lines, m.errorStyle.Render("halted: "+reason.String()))
	} else if m.running {
		lines = append(lines, m.accentStyle.Render("running"))
	}

	return strings.Join(lines, "\n")
}

func (m model) stdoutPane() string {
	out := m.mach.Stdout()
	// show the tail; the full buffer lands on the real stdout at exit
	const max = 512
	if len(out) > max {
		out = out[len(out)-max:]
	}
	return m.labelStyle.Render("stdout") + "\n" + m.textStyle.Render(string(out))
}

func (m model) nextPane() string {
	label := m.labelStyle.Render("next")
	next, ok := m.mach.Load()
	if !ok {
		return label + "\n" + m.errorStyle.Render("??")
	}
	return label + "\n" +
		m.valueStyle.Render(next.String()) + "\n" +
		m.textStyle.Render(spew.Sdump(next))
}

func (m model) View() string {
	return lipgloss.JoinVertical(
		lipgloss.Left,
		lipgloss.JoinHorizontal(
			lipgloss.Top,
			m.memoryPane(),
			"   ",
			m.registerPane(),
		),
		"",
		lipgloss.JoinHorizontal(lipgloss.Top, m.nextPane(), "   ", m.stdoutPane()),
		"",
		m.borderStyle.Render("space/j step · r run/pause · q quit"),
	)
}

// Debug opens an interactive TUI over the machine: memory, register and
// stdout panes, single stepping and free running. The machine must already
// have its program loaded.
func (m *Machine) Debug(theme Theme) error {
	if err := theme.validate(); err != nil {
		return err
	}
	_, err := tea.NewProgram(model{
		mach:         m,
		prevPC:       m.pc,
		borderStyle:  lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Border)),
		labelStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Dim)).Bold(true),
		addressStyle: lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Address)),
		valueStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Value)),
		accentStyle:  lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Accent)),
		textStyle:    lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Text)),
		errorStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Error)),
	}).Run()
	return err
}
