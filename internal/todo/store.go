package todo

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// minPrefixLen is the shortest id prefix Resolve accepts.
const minPrefixLen = 4

// Repository persists a whole task collection.
type Repository interface {
	// Load returns the stored collection. It never fails; unreadable
	// data is reported as an empty collection.
	Load() []Task
	// Save replaces the stored collection.
	Save(tasks []Task) error
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithIDGenerator overrides the id generator (tests use a counter).
func WithIDGenerator(gen func() string) StoreOption {
	return func(s *Store) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// WithLogger sets the logger used for operation traces.
func WithLogger(logger *log.Logger) StoreOption {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Store exposes task operations over a Repository.
type Store struct {
	repo   Repository
	newID  func() string
	logger *log.Logger
	mu     sync.Mutex
}

// NewStore returns a Store backed by repo.
func NewStore(repo Repository, opts ...StoreOption) *Store {
	s := &Store{
		repo:   repo,
		newID:  uuid.NewString,
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// load reads the collection and assigns ids to records that lack one.
// An upgraded collection is saved immediately so ids stay stable.
func (s *Store) load() ([]Task, error) {
	tasks := s.repo.Load()
	upgraded := 0
	for i := range tasks {
		if tasks[i].ID == "" {
			tasks[i].ID = s.newID()
			upgraded++
		}
	}
	if upgraded > 0 {
		s.logger.Info("assigned ids to stored tasks", "count", upgraded)
		if err := s.save(tasks); err != nil {
			return nil, err
		}
	}
	return tasks, nil
}

func (s *Store) save(tasks []Task) error {
	if err := s.repo.Save(tasks); err != nil {
		return fmt.Errorf("save tasks: %w", err)
	}
	return nil
}

// Add appends a new, not completed task. Text is trimmed; empty text
// returns ErrEmptyText and leaves the collection untouched.
func (s *Store) Add(text string, priority Priority, category Category) (Task, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Task{}, ErrEmptyText
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.load()
	if err != nil {
		return Task{}, err
	}
	task := Task{
		ID:        s.newID(),
		Text:      text,
		Priority:  priority,
		Category:  category,
		Completed: false,
	}
	tasks = append(tasks, task)
	if err := s.save(tasks); err != nil {
		return Task{}, err
	}
	s.logger.Debug("task added", "op", "add", "id", task.ID)
	return task, nil
}

// Toggle flips the completion flag of the task with id.
func (s *Store) Toggle(id string) (Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.load()
	if err != nil {
		return Task{}, err
	}
	i := IndexOf(tasks, id)
	if i < 0 {
		return Task{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	tasks[i].Completed = !tasks[i].Completed
	if err := s.save(tasks); err != nil {
		return Task{}, err
	}
	s.logger.Debug("task toggled", "op", "toggle", "id", id, "completed", tasks[i].Completed)
	return tasks[i], nil
}

// Delete removes the task with id and returns it.
func (s *Store) Delete(id string) (Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.load()
	if err != nil {
		return Task{}, err
	}
	i := IndexOf(tasks, id)
	if i < 0 {
		return Task{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	removed := tasks[i]
	tasks = append(tasks[:i], tasks[i+1:]...)
	if err := s.save(tasks); err != nil {
		return Task{}, err
	}
	s.logger.Debug("task deleted", "op", "delete", "id", id)
	return removed, nil
}

// ToggleText flips completion on every task whose text equals text
// exactly. It returns how many tasks changed; zero matches save nothing.
func (s *Store) ToggleText(text string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.load()
	if err != nil {
		return 0, err
	}
	n := 0
	for i := range tasks {
		if tasks[i].Text == text {
			tasks[i].Completed = !tasks[i].Completed
			n++
		}
	}
	if n == 0 {
		return 0, nil
	}
	if err := s.save(tasks); err != nil {
		return 0, err
	}
	s.logger.Debug("tasks toggled by text", "op", "toggle_text", "count", n)
	return n, nil
}

// DeleteText removes every task whose text equals text exactly and
// returns how many were removed.
func (s *Store) DeleteText(text string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.load()
	if err != nil {
		return 0, err
	}
	kept := tasks[:0]
	for _, t := range tasks {
		if t.Text != text {
			kept = append(kept, t)
		}
	}
	n := len(tasks) - len(kept)
	if n == 0 {
		return 0, nil
	}
	if err := s.save(kept); err != nil {
		return 0, err
	}
	s.logger.Debug("tasks deleted by text", "op", "delete_text", "count", n)
	return n, nil
}

// List returns the stored collection in storage order.
func (s *Store) List() ([]Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Move reinserts the task with id immediately before beforeID, or at the
// end when beforeID is empty.
func (s *Store) Move(id, beforeID string) error {
	if id == beforeID {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.load()
	if err != nil {
		return err
	}
	from := IndexOf(tasks, id)
	if from < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if beforeID != "" && IndexOf(tasks, beforeID) < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, beforeID)
	}

	moved := tasks[from]
	rest := make([]Task, 0, len(tasks))
	rest = append(rest, tasks[:from]...)
	rest = append(rest, tasks[from+1:]...)

	to := len(rest)
	if beforeID != "" {
		to = IndexOf(rest, beforeID)
	}
	out := make([]Task, 0, len(tasks))
	out = append(out, rest[:to]...)
	out = append(out, moved)
	out = append(out, rest[to:]...)

	if err := s.save(out); err != nil {
		return err
	}
	s.logger.Debug("task moved", "op", "move", "id", id, "before", beforeID)
	return nil
}

// Resolve finds a task by exact id or by a unique id prefix of at least
// four characters.
func (s *Store) Resolve(ref string) (Task, error) {
	ref = strings.TrimSpace(ref)
	tasks, err := s.List()
	if err != nil {
		return Task{}, err
	}
	for _, t := range tasks {
		if t.ID == ref {
			return t, nil
		}
	}
	if len(ref) >= minPrefixLen {
		var matches []Task
		for _, t := range tasks {
			if strings.HasPrefix(t.ID, ref) {
				matches = append(matches, t)
			}
		}
		if len(matches) == 1 {
			return matches[0], nil
		}
		if len(matches) > 1 {
			return Task{}, fmt.Errorf("%w: %s matches %d tasks", ErrAmbiguous, ref, len(matches))
		}
	}
	return Task{}, fmt.Errorf("%w: %s", ErrNotFound, ref)
}
