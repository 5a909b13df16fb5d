// Package shell implements the interactive line shell: plain lines add
// tasks and slash commands manage them.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/chzyer/readline"

	"github.com/nibzard/tasklist-go/internal/filter"
	"github.com/nibzard/tasklist-go/internal/output"
	"github.com/nibzard/tasklist-go/internal/todo"
)

// Prompt is shown before each input line.
const Prompt = "tasklist> "

// Options configures a Shell.
type Options struct {
	// Priority and Category are used for plain-line adds.
	Priority todo.Priority
	Category todo.Category
	// Categories feed tab completion.
	Categories []todo.Category
	// Criteria is the initial /ls filter.
	Criteria filter.Criteria
	// HistoryFile keeps input history between sessions. Empty disables it.
	HistoryFile string
	Logger      *log.Logger
}

// Shell holds the session state of one shell.
type Shell struct {
	store    *todo.Store
	out      io.Writer
	logger   *log.Logger
	priority todo.Priority
	category todo.Category
	criteria filter.Criteria

	categories  []todo.Category
	historyFile string
	commands    map[string]*command
}

type command struct {
	name        string
	usage       string
	description string
	run         func(s *Shell, args []string) (bool, error)
}

// New returns a shell writing to out.
func New(store *todo.Store, out io.Writer, opts Options) *Shell {
	s := &Shell{
		store:       store,
		out:         out,
		logger:      opts.Logger,
		priority:    opts.Priority,
		category:    opts.Category,
		criteria:    opts.Criteria,
		categories:  opts.Categories,
		historyFile: opts.HistoryFile,
	}
	if s.logger == nil {
		s.logger = log.New(io.Discard)
	}
	if !s.priority.Valid() {
		s.priority = todo.PriorityMedium
	}
	if len(s.categories) == 0 {
		s.categories = todo.DefaultCategories()
	}
	if s.category == "" {
		s.category = s.categories[0]
	}
	if s.criteria == (filter.Criteria{}) {
		s.criteria = filter.Default()
	}
	s.register()
	return s
}

func (s *Shell) register() {
	s.commands = make(map[string]*command)
	for _, c := range []*command{
		{"/add", "/add <priority> <category> <text...>", "Add a task", (*Shell).cmdAdd},
		{"/done", "/done <ref>", "Toggle a task between active and completed", (*Shell).cmdDone},
		{"/rm", "/rm <ref>", "Delete a task", (*Shell).cmdRemove},
		{"/ls", "/ls", "List tasks matching the current filter", (*Shell).cmdList},
		{"/filter", "/filter [<priority> [<category> [<status>]]]", "Set the filter, or reset it with no arguments", (*Shell).cmdFilter},
		{"/mv", "/mv <ref> [<before-ref>]", "Move a task before another, or to the end", (*Shell).cmdMove},
		{"/help", "/help", "Show available commands", (*Shell).cmdHelp},
		{"/quit", "/quit", "Exit the shell", (*Shell).cmdQuit},
		{"/exit", "/exit", "Exit the shell", (*Shell).cmdQuit},
	} {
		s.commands[c.name] = c
	}
}

// Criteria returns the current filter.
func (s *Shell) Criteria() filter.Criteria {
	return s.criteria
}

// Execute runs one input line. It reports whether the shell should exit.
func (s *Shell) Execute(line string) (bool, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return false, nil
	}
	if !strings.HasPrefix(line, "/") {
		return false, s.add(line, s.priority, s.category)
	}

	parts := strings.Fields(line)
	name := strings.ToLower(parts[0])
	c, ok := s.commands[name]
	if !ok {
		return false, fmt.Errorf("unknown command: %s (try /help)", name)
	}
	return c.run(s, parts[1:])
}

func (s *Shell) add(text string, priority todo.Priority, category todo.Category) error {
	task, err := s.store.Add(text, priority, category)
	if errors.Is(err, todo.ErrEmptyText) {
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Added %s  %s\n", task.ShortID(), task.Text)
	return nil
}

func (s *Shell) cmdAdd(args []string) (bool, error) {
	if len(args) < 3 {
		return false, s.usage("/add")
	}
	priority, err := todo.ParsePriority(args[0])
	if err != nil {
		return false, err
	}
	category, err := todo.ParseCategory(args[1])
	if err != nil {
		return false, err
	}
	return false, s.add(strings.Join(args[2:], " "), priority, category)
}

func (s *Shell) cmdDone(args []string) (bool, error) {
	if len(args) != 1 {
		return false, s.usage("/done")
	}
	ref, err := s.store.Resolve(args[0])
	if err != nil {
		return false, err
	}
	task, err := s.store.Toggle(ref.ID)
	if err != nil {
		return false, err
	}
	verb := "Reopened"
	if task.Completed {
		verb = "Completed"
	}
	fmt.Fprintf(s.out, "%s %s  %s\n", verb, task.ShortID(), task.Text)
	return false, nil
}

func (s *Shell) cmdRemove(args []string) (bool, error) {
	if len(args) != 1 {
		return false, s.usage("/rm")
	}
	ref, err := s.store.Resolve(args[0])
	if err != nil {
		return false, err
	}
	task, err := s.store.Delete(ref.ID)
	if err != nil {
		return false, err
	}
	fmt.Fprintf(s.out, "Deleted %s  %s\n", task.ShortID(), task.Text)
	return false, nil
}

func (s *Shell) cmdList(args []string) (bool, error) {
	if len(args) != 0 {
		return false, s.usage("/ls")
	}
	tasks, err := s.store.List()
	if err != nil {
		return false, err
	}
	visible := filter.Apply(tasks, s.criteria)
	if !s.criteria.IsAll() {
		fmt.Fprintf(s.out, "  filter: %s\n", s.criteria)
	}
	if err := output.Write(s.out, visible, output.FormatText); err != nil {
		return false, err
	}
	fmt.Fprintf(s.out, "  %s\n", output.Summary(visible))
	return false, nil
}

func (s *Shell) cmdFilter(args []string) (bool, error) {
	if len(args) > 3 {
		return false, s.usage("/filter")
	}
	sel := make([]string, 3)
	copy(sel, args)
	crit, err := filter.Parse(sel[0], sel[1], sel[2])
	if err != nil {
		return false, err
	}
	s.criteria = crit
	fmt.Fprintf(s.out, "Filter: %s\n", crit)
	return false, nil
}

func (s *Shell) cmdMove(args []string) (bool, error) {
	if len(args) < 1 || len(args) > 2 {
		return false, s.usage("/mv")
	}
	task, err := s.store.Resolve(args[0])
	if err != nil {
		return false, err
	}
	beforeID := ""
	where := "to the end"
	if len(args) == 2 {
		before, err := s.store.Resolve(args[1])
		if err != nil {
			return false, err
		}
		beforeID = before.ID
		where = "before " + before.ShortID()
	}
	if err := s.store.Move(task.ID, beforeID); err != nil {
		return false, err
	}
	fmt.Fprintf(s.out, "Moved %s %s\n", task.ShortID(), where)
	return false, nil
}

func (s *Shell) cmdHelp([]string) (bool, error) {
	names := make([]string, 0, len(s.commands))
	for name := range s.commands {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(s.out, "Available commands:")
	for _, name := range names {
		c := s.commands[name]
		fmt.Fprintf(s.out, "  %-46s %s\n", c.usage, c.description)
	}
	fmt.Fprintln(s.out, "Any other line adds a task with the default priority and category.")
	fmt.Fprintln(s.out, "A <ref> is a task id or a unique prefix of at least four characters.")
	return false, nil
}

func (s *Shell) cmdQuit([]string) (bool, error) {
	fmt.Fprintln(s.out, "Bye.")
	return true, nil
}

func (s *Shell) usage(name string) error {
	return fmt.Errorf("usage: %s", s.commands[name].usage)
}

// completer offers command names and, where they apply, priorities,
// categories, and statuses.
func (s *Shell) completer() *readline.PrefixCompleter {
	priorities := make([]readline.PrefixCompleterInterface, 0, 3)
	for _, p := range todo.Priorities() {
		categories := make([]readline.PrefixCompleterInterface, 0, len(s.categories))
		for _, c := range s.categories {
			categories = append(categories, readline.PcItem(string(c)))
		}
		priorities = append(priorities, readline.PcItem(string(p), categories...))
	}

	statuses := make([]readline.PrefixCompleterInterface, 0, 3)
	for _, st := range filter.Statuses() {
		statuses = append(statuses, readline.PcItem(string(st)))
	}
	filterCategories := []readline.PrefixCompleterInterface{readline.PcItem(filter.All, statuses...)}
	for _, c := range s.categories {
		filterCategories = append(filterCategories, readline.PcItem(string(c), statuses...))
	}
	filterPriorities := []readline.PrefixCompleterInterface{readline.PcItem(filter.All, filterCategories...)}
	for _, p := range todo.Priorities() {
		filterPriorities = append(filterPriorities, readline.PcItem(string(p), filterCategories...))
	}

	items := make([]readline.PrefixCompleterInterface, 0, len(s.commands))
	names := make([]string, 0, len(s.commands))
	for name := range s.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		switch name {
		case "/add":
			items = append(items, readline.PcItem(name, priorities...))
		case "/filter":
			items = append(items, readline.PcItem(name, filterPriorities...))
		default:
			items = append(items, readline.PcItem(name))
		}
	}
	return readline.NewPrefixCompleter(items...)
}

// lineReader is the part of *readline.Instance the loop uses.
type lineReader interface {
	Readline() (string, error)
	Close() error
}

// Run reads lines from the terminal until /quit, end of input, or ctx is
// done.
func (s *Shell) Run(ctx context.Context) error {
	if s.historyFile != "" {
		if err := os.MkdirAll(filepath.Dir(s.historyFile), 0o755); err != nil {
			return fmt.Errorf("create history directory: %w", err)
		}
	}
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          Prompt,
		HistoryFile:     s.historyFile,
		AutoComplete:    s.completer(),
		InterruptPrompt: "^C",
		EOFPrompt:       "/quit",
		Stdout:          s.out,
	})
	if err != nil {
		return fmt.Errorf("start shell: %w", err)
	}
	fmt.Fprintln(s.out, "Type a task to add it, or /help for commands.")
	return s.loop(ctx, rl)
}

func (s *Shell) loop(ctx context.Context, rl lineReader) error {
	var once sync.Once
	closeReader := func() { once.Do(func() { rl.Close() }) }
	defer closeReader()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			closeReader()
		case <-done:
		}
	}()

	for {
		line, err := rl.Readline()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		switch {
		case errors.Is(err, readline.ErrInterrupt):
			if line == "" {
				return nil
			}
			continue
		case errors.Is(err, io.EOF):
			return nil
		case err != nil:
			return err
		}

		quit, err := s.Execute(line)
		if err != nil {
			s.logger.Debug("shell command failed", "line", line, "err", err)
			fmt.Fprintf(s.out, "Error: %v\n", err)
		}
		if quit {
			return nil
		}
	}
}
