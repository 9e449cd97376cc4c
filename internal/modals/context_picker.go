package modals

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/renato0307/kdesk/internal/keyboard"
	"github.com/renato0307/kdesk/internal/kubeconfig"
	"github.com/renato0307/kdesk/internal/ui"
)

const (
	pickerWidth     = 72
	minPickerHeight = 10
)

type contextItem struct {
	context  kubeconfig.Context
	selected bool
}

func (i contextItem) FilterValue() string { return i.context.Name }

func (i contextItem) Title() string {
	if i.selected {
		return i.context.Name + " (current)"
	}
	return i.context.Name
}

func (i contextItem) Description() string {
	ns := i.context.Namespace
	if ns == "" {
		ns = "default"
	}
	if i.context.ClusterName == "" {
		return fmt.Sprintf("namespace %s", ns)
	}
	return fmt.Sprintf("%s · namespace %s", i.context.ClusterName, ns)
}

// ContextPicker is a filterable list of contexts run as its own program.
// After the program ends, Chosen reports the picked context.
type ContextPicker struct {
	list   list.Model
	keys   *keyboard.Keys
	style  lipgloss.Style
	width  int
	height int

	chosen    string
	cancelled bool
}

// NewContextPicker creates a picker with the selected context highlighted
func NewContextPicker(contexts []kubeconfig.Context, selected string, theme *ui.Theme) *ContextPicker {
	items := make([]list.Item, len(contexts))
	cursor := 0
	for i, c := range contexts {
		items[i] = contextItem{context: c, selected: c.Name == selected}
		if c.Name == selected {
			cursor = i
		}
	}

	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(theme.Primary).
		BorderForeground(theme.Primary)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		Foreground(theme.Secondary).
		BorderForeground(theme.Primary)

	l := list.New(items, delegate, 0, 0)
	l.Title = "Select Context"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.Styles.Title = theme.Title

	m := &ContextPicker{
		list: l,
		keys: keyboard.GetKeys(),
		style: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Padding(1, 2),
	}
	m.SetSize(pickerWidth, 0)
	m.list.Select(cursor)
	return m
}

func (m *ContextPicker) Init() tea.Cmd {
	return nil
}

func (m *ContextPicker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		// while typing a filter, keys belong to the list
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch msg.String() {
		case m.keys.Select:
			if item, ok := m.list.SelectedItem().(contextItem); ok {
				m.chosen = item.context.Name
				return m, tea.Quit
			}
		case m.keys.Quit:
			m.cancelled = true
			return m, tea.Quit
		case m.keys.Back:
			if m.list.FilterState() == list.FilterApplied {
				break
			}
			m.cancelled = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *ContextPicker) View() string {
	return m.style.Width(pickerWidth).Height(m.pickerHeight()).Render(m.list.View())
}

// SetSize fits the picker to the terminal
func (m *ContextPicker) SetSize(width, height int) {
	m.width = width
	m.height = height

	// List size = picker size - border and padding
	m.list.SetSize(pickerWidth-6, m.pickerHeight()-4)
}

// pickerHeight uses 80% of the terminal height
func (m *ContextPicker) pickerHeight() int {
	height := int(float64(m.height) * 0.8)
	if height < minPickerHeight {
		height = minPickerHeight
	}
	return height
}

// Chosen returns the picked context name, or false when the user cancelled
func (m *ContextPicker) Chosen() (string, bool) {
	if m.cancelled || m.chosen == "" {
		return "", false
	}
	return m.chosen, true
}
