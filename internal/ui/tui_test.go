package ui

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/go-cmp/cmp"

	"github.com/nibzard/tasklist-go/internal/filter"
	"github.com/nibzard/tasklist-go/internal/kv"
	"github.com/nibzard/tasklist-go/internal/storage"
	"github.com/nibzard/tasklist-go/internal/todo"
)

func counterIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("task-%04d", n)
	}
}

// newStore returns a store over an in-memory blob seeded with one
// medium/work task per text.
func newStore(t *testing.T, texts ...string) *todo.Store {
	t.Helper()
	a, err := storage.New(kv.NewMemory())
	if err != nil {
		t.Fatalf("storage.New failed: %v", err)
	}
	s := todo.NewStore(a, todo.WithIDGenerator(counterIDs()))
	for _, text := range texts {
		if _, err := s.Add(text, todo.PriorityMedium, todo.CategoryWork); err != nil {
			t.Fatalf("seed Add failed: %v", err)
		}
	}
	return s
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func send(m *Model, msgs ...tea.Msg) {
	for _, msg := range msgs {
		m.Update(msg)
	}
}

func rowTexts(m *Model) []string {
	out := make([]string, len(m.rows))
	for i, t := range m.rows {
		out[i] = t.Text
	}
	return out
}

func storedTexts(t *testing.T, s *todo.Store) []string {
	t.Helper()
	tasks, err := s.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	out := make([]string, len(tasks))
	for i, task := range tasks {
		out[i] = task.Text
	}
	return out
}

func TestAddThroughForm(t *testing.T) {
	store := newStore(t)
	m := New(store, Options{})

	if m.focus != focusForm {
		t.Fatal("empty list should start with the form focused")
	}
	if !strings.Contains(m.View(), "No tasks.") {
		t.Errorf("empty view should say so:\n%s", m.View())
	}

	send(m,
		runes("Buy milk"),
		tea.KeyMsg{Type: tea.KeyCtrlP}, // medium -> high
		tea.KeyMsg{Type: tea.KeyCtrlT}, // work -> personal
		tea.KeyMsg{Type: tea.KeyEnter},
	)

	tasks, _ := store.List()
	if len(tasks) != 1 {
		t.Fatalf("stored tasks: got %d, want 1", len(tasks))
	}
	want := todo.Task{ID: "task-0001", Text: "Buy milk", Priority: todo.PriorityHigh, Category: todo.CategoryPersonal}
	if diff := cmp.Diff(want, tasks[0]); diff != "" {
		t.Errorf("added task mismatch (-want +got):\n%s", diff)
	}
	if m.input.Value() != "" {
		t.Errorf("input not cleared: %q", m.input.Value())
	}
	if !strings.Contains(m.View(), "Buy milk") {
		t.Errorf("view does not show the new task:\n%s", m.View())
	}
}

func TestEmptyAddIsIgnored(t *testing.T) {
	store := newStore(t)
	m := New(store, Options{})
	send(m, runes("   "), tea.KeyMsg{Type: tea.KeyEnter})

	if got := storedTexts(t, store); len(got) != 0 {
		t.Errorf("blank add stored %v", got)
	}
	if m.status != "" || m.statusErr {
		t.Errorf("blank add should be silent, status=%q", m.status)
	}
}

func TestToggleAndDeleteKeys(t *testing.T) {
	store := newStore(t, "A", "B", "C")
	m := New(store, Options{})
	if m.focus != focusList {
		t.Fatal("non-empty list should start with the list focused")
	}

	send(m, runes("j"), runes("x"))
	tasks, _ := store.List()
	if tasks[0].Completed || !tasks[1].Completed || tasks[2].Completed {
		t.Errorf("toggle hit the wrong row: %+v", tasks)
	}
	if m.cursor != 1 {
		t.Errorf("cursor should stay on the toggled task, got %d", m.cursor)
	}

	send(m, runes("d"))
	if diff := cmp.Diff([]string{"A", "C"}, storedTexts(t, store)); diff != "" {
		t.Errorf("after delete (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"A", "C"}, rowTexts(m)); diff != "" {
		t.Errorf("rows after delete (-want +got):\n%s", diff)
	}
}

func TestDuplicateTextTogglesOnlyOneRow(t *testing.T) {
	store := newStore(t, "same", "same")
	m := New(store, Options{})
	send(m, runes("x"))

	tasks, _ := store.List()
	if !tasks[0].Completed || tasks[1].Completed {
		t.Errorf("expected only the first duplicate toggled: %+v", tasks)
	}
}

func TestFilterKeysRerender(t *testing.T) {
	store := newStore(t, "A", "B", "C")
	m := New(store, Options{})
	send(m, runes("j"), runes("x")) // complete B

	send(m, runes("s")) // status: all -> active
	if m.criteria.Status != filter.StatusActive {
		t.Fatalf("status filter: got %q", m.criteria.Status)
	}
	if diff := cmp.Diff([]string{"A", "C"}, rowTexts(m)); diff != "" {
		t.Errorf("active rows (-want +got):\n%s", diff)
	}

	send(m, runes("x")) // complete the row under the cursor; it leaves the active view
	if len(m.rows) != 1 {
		t.Errorf("completed task should disappear from the active view, rows=%v", rowTexts(m))
	}

	send(m, runes("0"))
	if !m.criteria.IsAll() || len(m.rows) != 3 {
		t.Errorf("reset filter: criteria=%s rows=%v", m.criteria, rowTexts(m))
	}

	send(m, runes("p")) // priority: all -> low
	if m.criteria.Priority != "low" || len(m.rows) != 0 {
		t.Errorf("priority filter: criteria=%s rows=%v", m.criteria, rowTexts(m))
	}
}

func TestInitialCriteria(t *testing.T) {
	store := newStore(t, "A")
	if _, err := store.Add("B", todo.PriorityHigh, todo.CategoryPersonal); err != nil {
		t.Fatal(err)
	}
	m := New(store, Options{Criteria: filter.Criteria{Priority: "high", Category: filter.All, Status: filter.StatusAll}})
	if diff := cmp.Diff([]string{"B"}, rowTexts(m)); diff != "" {
		t.Errorf("initial rows (-want +got):\n%s", diff)
	}
}

func TestKeyboardMoveIsSessionOnly(t *testing.T) {
	store := newStore(t, "A", "B", "C")
	m := New(store, Options{})

	send(m, runes("J"))
	if diff := cmp.Diff([]string{"B", "A", "C"}, rowTexts(m)); diff != "" {
		t.Errorf("rows after move (-want +got):\n%s", diff)
	}
	if m.cursor != 1 {
		t.Errorf("cursor should follow the moved row, got %d", m.cursor)
	}
	if diff := cmp.Diff([]string{"A", "B", "C"}, storedTexts(t, store)); diff != "" {
		t.Errorf("session move reached the store (-want +got):\n%s", diff)
	}

	send(m, runes("r"))
	if diff := cmp.Diff([]string{"A", "B", "C"}, rowTexts(m)); diff != "" {
		t.Errorf("reload should restore stored order (-want +got):\n%s", diff)
	}
}

func TestKeyboardMovePersists(t *testing.T) {
	store := newStore(t, "A", "B", "C")
	m := New(store, Options{PersistOrder: true})

	send(m, runes("j"), runes("j"), tea.KeyMsg{Type: tea.KeyShiftUp})
	want := []string{"A", "C", "B"}
	if diff := cmp.Diff(want, rowTexts(m)); diff != "" {
		t.Errorf("rows (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want, storedTexts(t, store)); diff != "" {
		t.Errorf("stored order (-want +got):\n%s", diff)
	}

	send(m, runes("J"), runes("J")) // already last: second move is a no-op
	if diff := cmp.Diff([]string{"A", "B", "C"}, storedTexts(t, store)); diff != "" {
		t.Errorf("stored order after moving down (-want +got):\n%s", diff)
	}
}

func mouse(action tea.MouseAction, button tea.MouseButton, x, y int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Action: action, Button: button}
}

func TestMouseDragReorders(t *testing.T) {
	for _, persist := range []bool{false, true} {
		t.Run(fmt.Sprintf("persist=%v", persist), func(t *testing.T) {
			store := newStore(t, "A", "B", "C")
			m := New(store, Options{PersistOrder: persist})

			boxes := m.layout().boxes
			send(m, mouse(tea.MouseActionPress, tea.MouseButtonLeft, 8, boxes[0].top))
			if !m.drag.active {
				t.Fatal("press on a row should start a drag")
			}
			if !strings.Contains(m.View(), "≡") {
				t.Error("dragged row should carry the drag marker")
			}

			send(m, mouse(tea.MouseActionMotion, tea.MouseButtonLeft, 8, m.layout().boxes[1].top))
			if diff := cmp.Diff([]string{"B", "A", "C"}, rowTexts(m)); diff != "" {
				t.Errorf("after first motion (-want +got):\n%s", diff)
			}
			send(m, mouse(tea.MouseActionMotion, tea.MouseButtonLeft, 8, m.layout().boxes[2].top+5))
			if diff := cmp.Diff([]string{"B", "C", "A"}, rowTexts(m)); diff != "" {
				t.Errorf("after second motion (-want +got):\n%s", diff)
			}

			send(m, mouse(tea.MouseActionRelease, tea.MouseButtonNone, 8, m.layout().boxes[2].top+5))
			if m.drag.active {
				t.Error("release should end the drag")
			}

			wantStored := []string{"A", "B", "C"}
			if persist {
				wantStored = []string{"B", "C", "A"}
			}
			if diff := cmp.Diff(wantStored, storedTexts(t, store)); diff != "" {
				t.Errorf("stored order (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff([]string{"B", "C", "A"}, rowTexts(m)); diff != "" {
				t.Errorf("rows after drop (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMouseRowActions(t *testing.T) {
	store := newStore(t, "A", "B")
	m := New(store, Options{})

	layout := m.layout()
	send(m, mouse(tea.MouseActionPress, tea.MouseButtonLeft, layout.checkStart+1, layout.boxes[1].top))
	tasks, _ := store.List()
	if !tasks[1].Completed {
		t.Errorf("click on the check box should complete the row: %+v", tasks)
	}
	if m.drag.active {
		t.Error("check box click should not start a drag")
	}

	layout = m.layout()
	past := layout.deleteStart[0] + lipgloss.Width(deleteLabel) + 30
	send(m, mouse(tea.MouseActionPress, tea.MouseButtonLeft, past, layout.boxes[0].top))
	if diff := cmp.Diff([]string{"A", "B"}, storedTexts(t, store)); diff != "" {
		t.Errorf("click right of the delete marker (-want +got):\n%s", diff)
	}
	if !m.drag.active {
		t.Error("click right of the delete marker should start a drag")
	}
	send(m, mouse(tea.MouseActionRelease, tea.MouseButtonLeft, past, layout.boxes[0].top))
	if diff := cmp.Diff([]string{"A", "B"}, rowTexts(m)); diff != "" {
		t.Errorf("rows after release in place (-want +got):\n%s", diff)
	}

	send(m, mouse(tea.MouseActionPress, tea.MouseButtonLeft, layout.deleteStart[0]+len(deleteLabel)-1, layout.boxes[0].top))
	if diff := cmp.Diff([]string{"B"}, storedTexts(t, store)); diff != "" {
		t.Errorf("click on delete (-want +got):\n%s", diff)
	}

	send(m, mouse(tea.MouseActionPress, tea.MouseButtonLeft, 8, 0))
	if m.drag.active {
		t.Error("press outside the list should not start a drag")
	}
}

type failingRepo struct {
	tasks []todo.Task
}

func (r *failingRepo) Load() []todo.Task { return todo.Clone(r.tasks) }

func (r *failingRepo) Save([]todo.Task) error { return errors.New("disk full") }

func TestSaveFailureShowsInStatus(t *testing.T) {
	repo := &failingRepo{tasks: []todo.Task{{ID: "t1", Text: "A", Priority: todo.PriorityLow, Category: todo.CategoryWork}}}
	m := New(todo.NewStore(repo), Options{})

	send(m, runes("x"))
	if !m.statusErr || !strings.Contains(m.status, "disk full") {
		t.Errorf("status: %q (err=%v)", m.status, m.statusErr)
	}
	if !strings.Contains(m.View(), "disk full") {
		t.Error("error not rendered in the view")
	}
	if len(m.rows) != 1 || m.rows[0].Completed {
		t.Errorf("failed toggle should leave the row unchanged: %+v", m.rows)
	}
}

func TestQuitAndHelp(t *testing.T) {
	m := New(newStore(t, "A"), Options{})

	send(m, runes("?"))
	if !m.help.ShowAll {
		t.Error("? should expand help")
	}

	_, cmd := m.Update(runes("q"))
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}

	// In the form, q is text.
	send(m, runes("a"), runes("q"))
	if m.input.Value() != "q" {
		t.Errorf("form input: got %q, want q", m.input.Value())
	}
}
