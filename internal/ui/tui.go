// Package ui provides the interactive terminal interface: an add form,
// filter selectors, and a task list that can be reordered with the mouse.
package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/nibzard/tasklist-go/internal/filter"
	"github.com/nibzard/tasklist-go/internal/output"
	"github.com/nibzard/tasklist-go/internal/todo"
	"github.com/nibzard/tasklist-go/internal/utils"
)

// Options configures the TUI.
type Options struct {
	// Categories offered by the form and the category filter.
	Categories []todo.Category
	// Priority and Category preselected in the form.
	Priority todo.Priority
	Category todo.Category
	// Criteria is the initial filter.
	Criteria filter.Criteria
	// PersistOrder writes reorders back to the store.
	PersistOrder bool
	Logger       *log.Logger
}

// Run starts the TUI and blocks until the user quits or ctx is done.
func Run(ctx context.Context, store *todo.Store, opts Options) error {
	if !utils.IsTTY(os.Stdout) {
		return fmt.Errorf("tui requires a TTY")
	}
	model := New(store, opts)
	program := tea.NewProgram(model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)
	_, err := program.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

type focus int

const (
	focusList focus = iota
	focusForm
)

// Model is the TUI controller. All view state lives here.
type Model struct {
	store  *todo.Store
	logger *log.Logger
	styles styles
	keys   listKeys
	form   formKeys
	help   help.Model
	input  textinput.Model

	categories   []todo.Category
	priority     todo.Priority
	category     todo.Category
	criteria     filter.Criteria
	persistOrder bool

	// rows are the visible tasks in display order. Reorders without
	// PersistOrder only change this slice.
	rows   []todo.Task
	cursor int
	focus  focus
	drag   dragState

	status    string
	statusErr bool
}

// New builds a model and loads the first view.
func New(store *todo.Store, opts Options) *Model {
	ti := textinput.New()
	ti.Placeholder = "What needs doing?"
	ti.Prompt = "+ "
	ti.CharLimit = 256
	ti.Width = 48

	categories := opts.Categories
	if len(categories) == 0 {
		categories = todo.DefaultCategories()
	}
	priority := opts.Priority
	if !priority.Valid() {
		priority = todo.PriorityMedium
	}
	category := opts.Category
	if category == "" {
		category = categories[0]
	}
	criteria := opts.Criteria
	if criteria == (filter.Criteria{}) {
		criteria = filter.Default()
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	m := &Model{
		store:        store,
		logger:       logger,
		styles:       defaultStyles(),
		keys:         defaultListKeys(),
		form:         defaultFormKeys(),
		help:         help.New(),
		input:        ti,
		categories:   categories,
		priority:     priority,
		category:     category,
		criteria:     criteria,
		persistOrder: opts.PersistOrder,
	}
	m.reload()
	if len(m.rows) == 0 {
		m.focusForm()
	}
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	if m.focus == focusForm {
		return textinput.Blink
	}
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		if w := msg.Width - 10; w > 10 {
			m.input.Width = w
		}
		return m, nil
	case tea.KeyMsg:
		if m.focus == focusForm {
			return m.updateForm(msg)
		}
		return m.updateList(msg)
	case tea.MouseMsg:
		m.updateMouse(msg)
		return m, nil
	}

	if m.focus == focusForm {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.form.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.form.Submit):
		m.submit()
		return m, nil
	case key.Matches(msg, m.form.CyclePriority):
		m.priority = todo.Priority(utils.Cycle(priorityValues(), string(m.priority), 1))
		return m, nil
	case key.Matches(msg, m.form.CycleCategory):
		m.category = todo.Category(utils.Cycle(categoryValues(m.categories), string(m.category), 1))
		return m, nil
	case key.Matches(msg, m.form.Leave):
		m.focusList()
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Add):
		return m, m.focusForm()
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.MoveUp):
		m.shift(-1)
	case key.Matches(msg, m.keys.MoveDown):
		m.shift(1)
	case key.Matches(msg, m.keys.Toggle):
		if t, ok := m.current(); ok {
			m.toggle(t.ID)
		}
	case key.Matches(msg, m.keys.Delete):
		if t, ok := m.current(); ok {
			m.remove(t.ID)
		}
	case key.Matches(msg, m.keys.FilterPriority):
		m.criteria.Priority = utils.Cycle(append([]string{filter.All}, priorityValues()...), m.criteria.Priority, 1)
		m.reload()
	case key.Matches(msg, m.keys.FilterCategory):
		m.criteria.Category = utils.Cycle(append([]string{filter.All}, categoryValues(m.categories)...), m.criteria.Category, 1)
		m.reload()
	case key.Matches(msg, m.keys.FilterStatus):
		m.criteria.Status = filter.Status(utils.Cycle(statusValues(), string(m.criteria.Status), 1))
		m.reload()
	case key.Matches(msg, m.keys.ResetFilter):
		m.criteria = filter.Default()
		m.reload()
	case key.Matches(msg, m.keys.Reload):
		m.reload()
		m.setStatus("Reloaded")
	}
	return m, nil
}

func (m *Model) updateMouse(msg tea.MouseMsg) {
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return
		}
		layout := m.layout()
		idx := rowAt(layout.boxes, msg.Y)
		if idx < 0 {
			return
		}
		m.cursor = idx
		id := m.rows[idx].ID
		switch {
		case msg.X >= layout.checkStart && msg.X < layout.checkEnd:
			m.toggle(id)
		case msg.X >= layout.deleteStart[idx] && msg.X < layout.deleteStart[idx]+lipgloss.Width(deleteLabel):
			m.remove(id)
		default:
			m.drag = dragState{active: true, id: id, start: idx}
		}
	case tea.MouseActionMotion:
		if !m.drag.active {
			return
		}
		from := todo.IndexOf(m.rows, m.drag.id)
		if from < 0 {
			m.drag = dragState{}
			return
		}
		before := dropBefore(m.layout().boxes, from, msg.Y)
		m.rows, m.cursor = moveRow(m.rows, from, before)
	case tea.MouseActionRelease:
		if !m.drag.active {
			return
		}
		d := m.drag
		m.drag = dragState{}
		if idx := todo.IndexOf(m.rows, d.id); idx >= 0 && idx != d.start {
			m.dropped(idx)
		}
	}
}

// shift moves the cursor row by delta positions.
func (m *Model) shift(delta int) {
	from := m.cursor
	to := from + delta
	if from < 0 || from >= len(m.rows) || to < 0 || to >= len(m.rows) {
		return
	}
	before := to
	if delta > 0 {
		before = to + 1
		if before >= len(m.rows) {
			before = -1
		}
	}
	m.rows, m.cursor = moveRow(m.rows, from, before)
	m.dropped(m.cursor)
}

// dropped finishes a reorder that left the row at idx.
func (m *Model) dropped(idx int) {
	task := m.rows[idx]
	if !m.persistOrder {
		m.setStatus(fmt.Sprintf("Moved %q", task.Text))
		return
	}
	beforeID := ""
	if idx+1 < len(m.rows) {
		beforeID = m.rows[idx+1].ID
	}
	if err := m.store.Move(task.ID, beforeID); err != nil {
		m.fail("move", err)
		m.reload()
		return
	}
	m.logger.Debug("moved task", "id", task.ID, "before", beforeID)
	m.reload()
	m.setStatus(fmt.Sprintf("Moved %q", task.Text))
}

func (m *Model) submit() {
	task, err := m.store.Add(m.input.Value(), m.priority, m.category)
	if errors.Is(err, todo.ErrEmptyText) {
		return
	}
	if err != nil {
		m.fail("add", err)
		return
	}
	m.input.SetValue("")
	m.reload()
	if idx := todo.IndexOf(m.rows, task.ID); idx >= 0 {
		m.cursor = idx
	}
	m.setStatus(fmt.Sprintf("Added %q", task.Text))
}

func (m *Model) toggle(id string) {
	task, err := m.store.Toggle(id)
	if err != nil {
		m.fail("toggle", err)
		m.reload()
		return
	}
	m.reload()
	state := "active"
	if task.Completed {
		state = "completed"
	}
	m.setStatus(fmt.Sprintf("Marked %q %s", task.Text, state))
}

func (m *Model) remove(id string) {
	task, err := m.store.Delete(id)
	if err != nil {
		m.fail("delete", err)
		m.reload()
		return
	}
	m.reload()
	m.setStatus(fmt.Sprintf("Deleted %q", task.Text))
}

// reload re-reads the collection and rebuilds the filtered view. Any
// session-only order is discarded. The cursor follows its task when it is
// still visible.
func (m *Model) reload() {
	var selected string
	if t, ok := m.current(); ok {
		selected = t.ID
	}

	tasks, err := m.store.List()
	if err != nil {
		m.fail("load", err)
		tasks = nil
	}
	m.rows = filter.Apply(tasks, m.criteria)
	m.drag = dragState{}

	if idx := todo.IndexOf(m.rows, selected); selected != "" && idx >= 0 {
		m.cursor = idx
	}
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *Model) current() (todo.Task, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return todo.Task{}, false
	}
	return m.rows[m.cursor], true
}

func (m *Model) focusForm() tea.Cmd {
	m.focus = focusForm
	return m.input.Focus()
}

func (m *Model) focusList() {
	m.focus = focusList
	m.input.Blur()
}

func (m *Model) setStatus(s string) {
	m.status = s
	m.statusErr = false
}

func (m *Model) fail(op string, err error) {
	m.logger.Error("operation failed", "op", op, "err", err)
	m.status = fmt.Sprintf("%s failed: %v", op, err)
	m.statusErr = true
}

// View implements tea.Model.
func (m *Model) View() string {
	header := m.headerView()
	rows, _ := m.renderRows()
	list := output.EmptyMessage
	if len(rows) > 0 {
		list = strings.Join(rows, "\n")
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, list, m.footerView())
}

func (m *Model) headerView() string {
	s := m.styles
	title := s.title.Render("Tasks") + "  " + s.subtle.Render(m.countLine())

	formLine := m.input.View()
	selectors := fmt.Sprintf("%s %s  %s %s",
		s.label.Render("priority:"), s.priorityStyle(m.priority).Render(string(m.priority)),
		s.label.Render("category:"), s.category.Render(string(m.category)))
	if m.focus == focusForm {
		selectors += "  " + s.subtle.Render("(ctrl+p / ctrl+t to change)")
	}

	filters := fmt.Sprintf("%s %s  %s %s  %s %s",
		s.label.Render("[p]riority"), s.selector.Render(orAll(m.criteria.Priority)),
		s.label.Render("[c]ategory"), s.selector.Render(orAll(m.criteria.Category)),
		s.label.Render("[s]tatus"), s.selector.Render(orAll(string(m.criteria.Status))))

	return lipgloss.JoinVertical(lipgloss.Left, title, "", formLine, selectors, "", filters, "")
}

func (m *Model) footerView() string {
	var status string
	switch {
	case m.status == "":
		status = ""
	case m.statusErr:
		status = m.styles.errorText.Render(m.status)
	default:
		status = m.styles.status.Render(m.status)
	}
	var helpView string
	if m.focus == focusForm {
		helpView = m.help.View(m.form)
	} else {
		helpView = m.help.View(m.keys)
	}
	return lipgloss.JoinVertical(lipgloss.Left, "", status, helpView)
}

func (m *Model) countLine() string {
	if m.criteria.IsAll() {
		return output.Summary(m.rows)
	}
	return output.Summary(m.rows) + " shown"
}

// renderRows renders each visible row and returns, per row, the column
// where its delete marker starts.
func (m *Model) renderRows() ([]string, []int) {
	s := m.styles
	rows := make([]string, len(m.rows))
	deleteStart := make([]int, len(m.rows))
	for i, t := range m.rows {
		dragging := m.drag.active && t.ID == m.drag.id

		prefix := "  "
		switch {
		case dragging:
			prefix = s.cursor.Render("≡ ")
		case i == m.cursor && m.focus == focusList:
			prefix = s.cursor.Render("▸ ")
		}

		check := "[ ]"
		text := s.text.Render(t.Text)
		if t.Completed {
			check = "[x]"
			text = s.done.Render(t.Text)
		}
		body := fmt.Sprintf("%s %s  %s  %s", check, text,
			s.priorityStyle(t.Priority).Render(string(t.Priority)),
			s.category.Render("#"+string(t.Category)))
		if dragging {
			body = s.dragging.Render(body)
		}

		line := prefix + body + "  "
		deleteStart[i] = lipgloss.Width(line)
		rows[i] = line + s.deleteMark.Render(deleteLabel)
	}
	return rows, deleteStart
}

// deleteLabel is the clickable delete marker at the end of each row.
const deleteLabel = "[del]"

// screenLayout locates the rows on screen for mouse handling.
type screenLayout struct {
	boxes       []rowBox
	checkStart  int
	checkEnd    int
	deleteStart []int
}

func (m *Model) layout() screenLayout {
	rows, deleteStart := m.renderRows()
	top := lipgloss.Height(m.headerView())
	boxes := make([]rowBox, len(rows))
	for i, r := range rows {
		h := lipgloss.Height(r)
		boxes[i] = rowBox{top: top, height: h}
		top += h
	}
	return screenLayout{
		boxes:       boxes,
		checkStart:  2,
		checkEnd:    2 + len("[ ]"),
		deleteStart: deleteStart,
	}
}

func priorityValues() []string {
	values := make([]string, 0, 3)
	for _, p := range todo.Priorities() {
		values = append(values, string(p))
	}
	return values
}

func categoryValues(categories []todo.Category) []string {
	values := make([]string, 0, len(categories))
	for _, c := range categories {
		values = append(values, string(c))
	}
	return values
}

func statusValues() []string {
	values := make([]string, 0, 3)
	for _, st := range filter.Statuses() {
		values = append(values, string(st))
	}
	return values
}

func orAll(s string) string {
	if s == "" {
		return filter.All
	}
	return s
}
