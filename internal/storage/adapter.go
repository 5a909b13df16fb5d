// Package storage reads and writes the task collection as a single JSON
// blob under one key of a kv.Store.
package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/nibzard/tasklist-go/internal/kv"
	"github.com/nibzard/tasklist-go/internal/todo"
)

// DefaultKey is the key the collection is stored under.
const DefaultKey = "tasks"

// unreadableSuffix names the key that receives a copy of a blob that could
// not be read, before the next save overwrites it.
const unreadableSuffix = ".unreadable"

// Option configures an Adapter.
type Option func(*Adapter)

// WithKey stores the collection under key instead of DefaultKey.
func WithKey(key string) Option {
	return func(a *Adapter) {
		if key != "" {
			a.key = key
		}
	}
}

// WithLogger sets the logger used to report unreadable blobs.
func WithLogger(logger *log.Logger) Option {
	return func(a *Adapter) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// Adapter implements todo.Repository over a kv.Store.
type Adapter struct {
	kv     kv.Store
	key    string
	schema *jsonschema.Schema
	logger *log.Logger
}

var _ todo.Repository = (*Adapter)(nil)

// New returns an adapter over store. It fails only if the key is unusable
// or the embedded schema does not compile.
func New(store kv.Store, opts ...Option) (*Adapter, error) {
	a := &Adapter{
		kv:     store,
		key:    DefaultKey,
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(a)
	}
	if err := kv.ValidateKey(a.key); err != nil {
		return nil, err
	}
	schema, err := compileSchema()
	if err != nil {
		return nil, err
	}
	a.schema = schema
	return a, nil
}

// Key returns the key the collection is stored under.
func (a *Adapter) Key() string {
	return a.key
}

// Load returns the stored collection. Absent, unreadable, malformed, or
// schema-violating data yields an empty collection; it never fails.
func (a *Adapter) Load() []todo.Task {
	raw, ok, err := a.kv.Get(a.key)
	if err != nil {
		a.logger.Warn("read task blob failed, using empty collection", "key", a.key, "err", err)
		return []todo.Task{}
	}
	if !ok {
		return []todo.Task{}
	}

	tasks, problems := a.decode(raw)
	if len(problems) > 0 {
		a.logger.Warn("task blob unreadable, using empty collection",
			"key", a.key, "bytes", len(raw), "err", problems[0])
		a.preserve(raw)
		return []todo.Task{}
	}
	return tasks
}

// Save overwrites the stored blob with tasks.
func (a *Adapter) Save(tasks []todo.Task) error {
	if tasks == nil {
		tasks = []todo.Task{}
	}
	data, err := json.MarshalIndent(tasks, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal tasks: %w", err)
	}
	data = append(data, '\n')
	return a.kv.Set(a.key, data)
}

// decode parses and validates raw. A JSON null counts as an empty
// collection, matching an absent key.
func (a *Adapter) decode(raw []byte) ([]todo.Task, []error) {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, []error{fmt.Errorf("parse tasks: %w", err)}
	}
	if doc == nil {
		return []todo.Task{}, nil
	}
	if errs := validate(a.schema, doc); len(errs) > 0 {
		return nil, errs
	}
	var tasks []todo.Task
	if err := json.Unmarshal(raw, &tasks); err != nil {
		return nil, []error{fmt.Errorf("decode tasks: %w", err)}
	}
	if tasks == nil {
		tasks = []todo.Task{}
	}
	return tasks, nil
}

// maxBackups bounds the numbered copies kept of unreadable blobs.
const maxBackups = 100

// preserve copies an unreadable blob aside so a later save does not destroy
// the only copy. Each distinct blob gets its own key: <key>.unreadable, then
// <key>.unreadable.1, <key>.unreadable.2 and so on.
func (a *Adapter) preserve(raw []byte) {
	for n := 0; n < maxBackups; n++ {
		backup := a.key + unreadableSuffix
		if n > 0 {
			backup = fmt.Sprintf("%s.%d", backup, n)
		}
		if kv.ValidateKey(backup) != nil {
			return
		}
		old, exists, err := a.kv.Get(backup)
		if err != nil {
			a.logger.Warn("could not check unreadable task blob copy", "key", backup, "err", err)
			return
		}
		if exists {
			if bytes.Equal(old, raw) {
				return
			}
			continue
		}
		if err := a.kv.Set(backup, raw); err != nil {
			a.logger.Warn("could not keep unreadable task blob", "key", backup, "err", err)
			return
		}
		a.logger.Info("kept a copy of the unreadable task blob", "key", backup)
		return
	}
	a.logger.Warn("too many unreadable task blob copies, not keeping another", "key", a.key)
}

// Report summarizes the state of the stored blob.
type Report struct {
	Key        string
	Exists     bool
	Bytes      int
	ReadErr    error
	ParseErr   error
	Problems   []error
	Tasks      int
	MissingIDs int
}

// OK reports whether Load would return the stored tasks unchanged.
func (r Report) OK() bool {
	return r.ReadErr == nil && r.ParseErr == nil && len(r.Problems) == 0
}

// Inspect reads the blob without side effects and reports what Load would
// make of it.
func (a *Adapter) Inspect() Report {
	r := Report{Key: a.key}
	raw, ok, err := a.kv.Get(a.key)
	if err != nil {
		r.ReadErr = err
		return r
	}
	if !ok {
		return r
	}
	r.Exists = true
	r.Bytes = len(raw)

	tasks, problems := a.decode(raw)
	if len(problems) > 0 {
		var ve *ValidationError
		if errors.As(problems[0], &ve) {
			r.Problems = problems
		} else {
			r.ParseErr = problems[0]
		}
		return r
	}
	r.Tasks = len(tasks)
	for _, t := range tasks {
		if t.ID == "" {
			r.MissingIDs++
		}
	}
	return r
}
