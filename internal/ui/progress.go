package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Status is the state of one tracked item.
type Status uint8

const (
	StatusQueued Status = iota
	StatusWorking
	StatusDone
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusQueued:
		return "queued"
	case StatusWorking:
		return "working"
	case StatusDone:
		return "done"
	case StatusError:
		return "error"
	default:
		return ""
	}
}

// Event reports progress of one item, for example one stress worker.
type Event struct {
	Item   string
	Status Status
	Done   int
	Total  int
	Note   string
}

type progressModel struct {
	title   string
	events  <-chan Event
	spinner spinner.Model
	prog    progress.Model
	items   []item
	index   map[string]int
	width   int
	done    bool
}

type item struct {
	name   string
	status Status
	done   int
	total  int
	note   string
}

type eventMsg Event
type doneMsg struct{}

// NewProgressModel returns a Bubble Tea model that renders per-item progress
// until events is closed.
func NewProgressModel(title string, names []string, events <-chan Event) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 76

	items := make([]item, 0, len(names))
	index := make(map[string]int, len(names))
	for i, name := range names {
		items = append(items, item{name: name})
		index[name] = i
	}
	return &progressModel{
		title:   title,
		events:  events,
		spinner: sp,
		prog:    prog,
		items:   items,
		index:   index,
		width:   80,
	}
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listenForEvent())
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		cmd := m.applyEvent(Event(msg))
		return m, tea.Batch(cmd, m.listenForEvent())
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.prog.Width = msg.Width - 4
		}
		return m, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	case progress.FrameMsg:
		pm, cmd := m.prog.Update(msg)
		m.prog = pm.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *progressModel) View() string {
	if len(m.items) == 0 {
		return ""
	}
	header := m.title
	if m.done {
		header = "done: " + header
	} else {
		header = m.spinner.View() + " " + header
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n\n")

	nameWidth := max(m.width-40, 20)
	for _, it := range m.items {
		status := statusStyle(it.status).Render(fmt.Sprintf("%8s", it.status))
		counts := ""
		if it.total > 0 {
			counts = fmt.Sprintf("%d/%d", it.done, it.total)
		}
		line := fmt.Sprintf("  %s %-*s %12s", status, nameWidth, Truncate(it.name, nameWidth), counts)
		if it.note != "" {
			line += "  " + dimStyle.Render(it.note)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.done {
		b.WriteString(m.prog.ViewAs(1.0))
	} else {
		b.WriteString(m.prog.View())
	}
	b.WriteString("\n")
	return b.String()
}

func (m *progressModel) listenForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(ev)
	}
}

func (m *progressModel) applyEvent(ev Event) tea.Cmd {
	idx, ok := m.index[ev.Item]
	if !ok {
		return nil
	}
	it := &m.items[idx]
	it.status = ev.Status
	it.done, it.total = ev.Done, ev.Total
	if ev.Note != "" {
		it.note = ev.Note
	}
	return m.prog.SetPercent(m.fraction())
}

// fraction is the mean completion over all items.
func (m *progressModel) fraction() float64 {
	if len(m.items) == 0 {
		return 0
	}
	sum := 0.0
	for _, it := range m.items {
		switch {
		case it.status == StatusDone || it.status == StatusError:
			sum++
		case it.total > 0:
			sum += float64(it.done) / float64(it.total)
		}
	}
	return sum / float64(len(m.items))
}
