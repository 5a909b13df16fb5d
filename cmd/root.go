// Package cmd implements the CLI command structure for tasklist.
package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/nibzard/tasklist-go/internal/config"
	"github.com/nibzard/tasklist-go/internal/filter"
	"github.com/nibzard/tasklist-go/internal/kv"
	"github.com/nibzard/tasklist-go/internal/logging"
	"github.com/nibzard/tasklist-go/internal/output"
	"github.com/nibzard/tasklist-go/internal/shell"
	"github.com/nibzard/tasklist-go/internal/storage"
	"github.com/nibzard/tasklist-go/internal/todo"
	"github.com/nibzard/tasklist-go/internal/ui"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Run executes the tasklist CLI.
func Run(ctx context.Context, args []string) error {
	return run(ctx, args, os.Stdout, os.Stderr)
}

// app carries what every subcommand needs.
type app struct {
	ws     *config.WithSources
	cfg    *config.Config
	stdout io.Writer
	stderr io.Writer
	logger *log.Logger
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	// Create a flag set for global options
	fs := flag.NewFlagSet("tasklist", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		printUsage(fs, stderr)
	}
	help := fs.Bool("help", false, "Show help")
	fs.BoolVar(help, "h", false, "Show help")
	showVersion := fs.Bool("version", false, "Show version")
	fs.BoolVar(showVersion, "v", false, "Show version")

	// Global flags
	ws, err := config.LoadWithSources(fs, args)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if *help {
		printUsage(fs, stdout)
		return nil
	}
	if *showVersion {
		return versionCommand(stdout)
	}

	opts, err := logging.ParseOptions(ws.Config.LogLevel, ws.Config.LogFormat)
	if err != nil {
		return err
	}
	opts.ReportTimestamp = ws.Config.LogTimestamps
	a := &app{
		ws:     ws,
		cfg:    ws.Config,
		stdout: stdout,
		stderr: stderr,
		logger: logging.New(stderr, opts),
	}
	for _, w := range ws.Warnings {
		a.logger.Warn(w)
	}

	// Determine the subcommand
	// If no args or first arg is a flag, use "ls" as default
	subcommand := "ls"
	remainingArgs := fs.Args()
	if len(remainingArgs) > 0 && !strings.HasPrefix(remainingArgs[0], "-") {
		subcommand = remainingArgs[0]
		remainingArgs = remainingArgs[1:]
	}

	switch subcommand {
	case "add":
		return a.addCommand(remainingArgs)
	case "done":
		return a.doneCommand(remainingArgs)
	case "rm":
		return a.rmCommand(remainingArgs)
	case "ls":
		return a.lsCommand(remainingArgs)
	case "mv":
		return a.mvCommand(remainingArgs)
	case "tui":
		return a.tuiCommand(ctx, remainingArgs)
	case "shell":
		return a.shellCommand(ctx, remainingArgs)
	case "doctor":
		return a.doctorCommand(remainingArgs)
	case "config":
		return a.configCommand(remainingArgs)
	case "logs":
		return a.logsCommand(ctx, remainingArgs)
	case "version":
		return versionCommand(stdout)
	case "help":
		printUsage(fs, stdout)
		return nil
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n", subcommand)
		printUsage(fs, stderr)
		return fmt.Errorf("unknown command: %s", subcommand)
	}
}

// openStore opens the task store configured by the data dir and key.
func (a *app) openStore() (*todo.Store, error) {
	dir, err := kv.OpenDir(a.cfg.DataDir)
	if err != nil {
		return nil, err
	}
	adapter, err := storage.New(dir, storage.WithKey(a.cfg.StoreKey), storage.WithLogger(a.logger))
	if err != nil {
		return nil, err
	}
	return todo.NewStore(adapter, todo.WithLogger(a.logger)), nil
}

func (a *app) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet("tasklist "+name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	return fs
}

// addCommand appends a task.
func (a *app) addCommand(args []string) error {
	fs := a.flagSet("add")
	priority := fs.String("p", a.cfg.DefaultPriority, "Priority (low|medium|high)")
	category := fs.String("c", a.cfg.DefaultCategory, "Category")
	if err := fs.Parse(args); err != nil {
		return err
	}

	p, err := todo.ParsePriority(*priority)
	if err != nil {
		return err
	}
	c, err := todo.ParseCategory(*category)
	if err != nil {
		return err
	}

	store, err := a.openStore()
	if err != nil {
		return err
	}
	task, err := store.Add(strings.Join(fs.Args(), " "), p, c)
	if errors.Is(err, todo.ErrEmptyText) {
		return fmt.Errorf("usage: tasklist add [-p priority] [-c category] <text...>: %w", err)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Added %s  %s\n", task.ShortID(), task.Text)
	return nil
}

// doneCommand toggles completion by reference, or by exact text with -text.
func (a *app) doneCommand(args []string) error {
	fs := a.flagSet("done")
	byText := fs.Bool("text", false, "Match tasks by exact text instead of id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return fmt.Errorf("usage: tasklist done [-text] <ref|text>")
	}

	store, err := a.openStore()
	if err != nil {
		return err
	}
	if *byText {
		text := strings.Join(fs.Args(), " ")
		n, err := store.ToggleText(text)
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("%w: %q", todo.ErrNotFound, text)
		}
		fmt.Fprintf(a.stdout, "Toggled %s\n", plural(n, "task"))
		return nil
	}

	if fs.NArg() != 1 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args()[1:])
	}
	ref, err := store.Resolve(fs.Arg(0))
	if err != nil {
		return err
	}
	task, err := store.Toggle(ref.ID)
	if err != nil {
		return err
	}
	verb := "Reopened"
	if task.Completed {
		verb = "Completed"
	}
	fmt.Fprintf(a.stdout, "%s %s  %s\n", verb, task.ShortID(), task.Text)
	return nil
}

// rmCommand deletes by reference, or by exact text with -text.
func (a *app) rmCommand(args []string) error {
	fs := a.flagSet("rm")
	byText := fs.Bool("text", false, "Match tasks by exact text instead of id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return fmt.Errorf("usage: tasklist rm [-text] <ref|text>")
	}

	store, err := a.openStore()
	if err != nil {
		return err
	}
	if *byText {
		text := strings.Join(fs.Args(), " ")
		n, err := store.DeleteText(text)
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("%w: %q", todo.ErrNotFound, text)
		}
		fmt.Fprintf(a.stdout, "Deleted %s\n", plural(n, "task"))
		return nil
	}

	if fs.NArg() != 1 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args()[1:])
	}
	ref, err := store.Resolve(fs.Arg(0))
	if err != nil {
		return err
	}
	task, err := store.Delete(ref.ID)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Deleted %s  %s\n", task.ShortID(), task.Text)
	return nil
}

// lsCommand lists tasks in collection order through the filter.
func (a *app) lsCommand(args []string) error {
	fs := a.flagSet("ls")
	priority := fs.String("priority", a.cfg.Filter.Priority, "Filter by priority (all|low|medium|high)")
	category := fs.String("category", a.cfg.Filter.Category, "Filter by category (all or a category name)")
	status := fs.String("status", a.cfg.Filter.Status, "Filter by status (all|active|completed)")
	format := fs.String("format", string(output.FormatText), "Output format (text|json|yaml)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	crit, err := filter.Parse(*priority, *category, *status)
	if err != nil {
		return err
	}
	f, err := output.ParseFormat(*format)
	if err != nil {
		return err
	}

	store, err := a.openStore()
	if err != nil {
		return err
	}
	tasks, err := store.List()
	if err != nil {
		return err
	}
	visible := filter.Apply(tasks, crit)
	if err := output.Write(a.stdout, visible, f); err != nil {
		return err
	}
	if f == output.FormatText && len(visible) > 0 {
		fmt.Fprintf(a.stdout, "\n  %s\n", output.Summary(visible))
	}
	return nil
}

// mvCommand moves a task before another, or to the end.
func (a *app) mvCommand(args []string) error {
	fs := a.flagSet("mv")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 || fs.NArg() > 2 {
		return fmt.Errorf("usage: tasklist mv <ref> [<before-ref>]")
	}

	store, err := a.openStore()
	if err != nil {
		return err
	}
	task, err := store.Resolve(fs.Arg(0))
	if err != nil {
		return err
	}
	beforeID := ""
	where := "to the end"
	if fs.NArg() == 2 {
		before, err := store.Resolve(fs.Arg(1))
		if err != nil {
			return err
		}
		beforeID = before.ID
		where = "before " + before.ShortID()
	}
	if err := store.Move(task.ID, beforeID); err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Moved %s %s\n", task.ShortID(), where)
	return nil
}

// tuiCommand launches the TUI. It logs to the log file because the
// terminal belongs to the UI.
func (a *app) tuiCommand(ctx context.Context, args []string) error {
	fs := a.flagSet("tui")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	logFile, err := logging.OpenFile(a.cfg.LogDir)
	if err != nil {
		return err
	}
	defer logFile.Close()
	opts, err := logging.ParseOptions(a.cfg.LogLevel, a.cfg.LogFormat)
	if err != nil {
		return err
	}
	opts.ReportTimestamp = true
	a.logger = logging.New(logFile, opts)

	store, err := a.openStore()
	if err != nil {
		return err
	}
	a.logger.Info("tui started", "data_dir", a.cfg.DataDir, "key", a.cfg.StoreKey)
	return ui.Run(ctx, store, ui.Options{
		Categories:   a.cfg.CategoryList(),
		Priority:     a.cfg.Priority(),
		Category:     a.cfg.Category(),
		Criteria:     a.cfg.Criteria(),
		PersistOrder: a.cfg.PersistOrder,
		Logger:       a.logger,
	})
}

// shellCommand starts the interactive line shell.
func (a *app) shellCommand(ctx context.Context, args []string) error {
	fs := a.flagSet("shell")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	store, err := a.openStore()
	if err != nil {
		return err
	}
	sh := shell.New(store, a.stdout, shell.Options{
		Priority:    a.cfg.Priority(),
		Category:    a.cfg.Category(),
		Categories:  a.cfg.CategoryList(),
		Criteria:    a.cfg.Criteria(),
		HistoryFile: a.cfg.HistoryFile(),
		Logger:      a.logger,
	})
	return sh.Run(ctx)
}

// doctorCommand checks config, data directory, store blob, and log directory.
func (a *app) doctorCommand(args []string) error {
	fs := a.flagSet("doctor")
	verbose := fs.Bool("v", false, "Verbose output")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	w := a.stdout
	fmt.Fprintln(w, "Tasklist Doctor")
	fmt.Fprintln(w, "===============")
	fmt.Fprintln(w)

	allOK := true

	// Config
	fmt.Fprintln(w, "Config:")
	if len(a.ws.Files) == 0 {
		fmt.Fprintln(w, "  ✅ No config file (using defaults)")
	}
	for _, f := range a.ws.Files {
		fmt.Fprintf(w, "  ✅ %s\n", f)
	}
	for _, warn := range a.ws.Warnings {
		fmt.Fprintf(w, "  ⚠️  %s\n", warn)
	}
	if *verbose {
		fmt.Fprintf(w, "  Categories: %s\n", strings.Join(a.cfg.Categories, ", "))
		fmt.Fprintf(w, "  Defaults: %s / %s\n", a.cfg.DefaultPriority, a.cfg.DefaultCategory)
	}
	fmt.Fprintln(w)

	// Data directory
	fmt.Fprintf(w, "Data directory: %s\n", a.cfg.DataDir)
	dataOK := true
	if info, err := os.Stat(a.cfg.DataDir); err != nil {
		if os.IsNotExist(err) {
			fmt.Fprintln(w, "  ⚠️  Not found (will be created on first add)")
		} else {
			fmt.Fprintf(w, "  ❌ Error: %v\n", err)
			allOK = false
		}
		dataOK = false
	} else if !info.IsDir() {
		fmt.Fprintln(w, "  ❌ Error: path is not a directory")
		allOK = false
		dataOK = false
	} else {
		fmt.Fprintln(w, "  ✅ OK")
	}
	fmt.Fprintln(w)

	// Store blob
	if dataOK {
		if !a.checkStore(w, *verbose) {
			allOK = false
		}
		fmt.Fprintln(w)
	}

	// Log directory
	fmt.Fprintf(w, "Log directory: %s\n", a.cfg.LogDir)
	if _, err := os.Stat(a.cfg.LogDir); err != nil {
		if os.IsNotExist(err) {
			fmt.Fprintln(w, "  ⚠️  Not found (will be created by tui)")
		} else {
			fmt.Fprintf(w, "  ❌ Error: %v\n", err)
			allOK = false
		}
	} else {
		fmt.Fprintln(w, "  ✅ OK")
	}
	fmt.Fprintln(w)

	if allOK {
		fmt.Fprintln(w, "✅ All checks passed!")
		return nil
	}
	fmt.Fprintln(w, "⚠️  Some checks failed. Stored tasks may not load.")
	return fmt.Errorf("doctor checks failed")
}

// checkStore reports on the stored blob without modifying it.
func (a *app) checkStore(w io.Writer, verbose bool) bool {
	dir, err := kv.OpenDir(a.cfg.DataDir)
	if err != nil {
		fmt.Fprintf(w, "Task store: %s\n  ❌ Error: %v\n", a.cfg.StoreKey, err)
		return false
	}
	adapter, err := storage.New(dir, storage.WithKey(a.cfg.StoreKey), storage.WithLogger(logging.Discard()))
	if err != nil {
		fmt.Fprintf(w, "Task store: %s\n  ❌ Error: %v\n", a.cfg.StoreKey, err)
		return false
	}

	fmt.Fprintf(w, "Task store: %s\n", dir.Path(a.cfg.StoreKey))
	r := adapter.Inspect()
	switch {
	case r.ReadErr != nil:
		fmt.Fprintf(w, "  ❌ Read error: %v\n", r.ReadErr)
	case !r.Exists:
		fmt.Fprintln(w, "  ⚠️  Not found (starts empty)")
	case r.ParseErr != nil:
		fmt.Fprintf(w, "  ❌ Not valid JSON: %v\n", r.ParseErr)
		fmt.Fprintln(w, "     Loading will start from an empty list and keep a copy of this file.")
	case len(r.Problems) > 0:
		fmt.Fprintln(w, "  ❌ Validation failed:")
		for _, p := range r.Problems {
			fmt.Fprintf(w, "     - %v\n", p)
		}
		fmt.Fprintln(w, "     Loading will start from an empty list and keep a copy of this file.")
	default:
		fmt.Fprintf(w, "  ✅ Valid (%s, %d bytes)\n", plural(r.Tasks, "task"), r.Bytes)
		if r.MissingIDs > 0 {
			fmt.Fprintf(w, "  ⚠️  %s without ids (assigned on next load)\n", plural(r.MissingIDs, "task"))
		}
	}
	// Load has no side effects on a valid blob.
	if verbose && r.OK() && r.Exists {
		for _, t := range adapter.Load() {
			fmt.Fprintln(w, "  "+output.FormatTask(t))
		}
	}
	return r.OK()
}

// configCommand prints the effective configuration and where each value
// came from.
func (a *app) configCommand(args []string) error {
	fs := a.flagSet("config")
	example := fs.Bool("example", false, "Print an example config file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	if *example {
		fmt.Fprint(a.stdout, config.ExampleConfig())
		return nil
	}

	if f := a.ws.ActiveFile(); f != "" {
		fmt.Fprintf(a.stdout, "# config file: %s\n", f)
	} else {
		fmt.Fprintln(a.stdout, "# config file: none")
	}
	for _, field := range config.Fields() {
		fmt.Fprintf(a.stdout, "%-17s = %-30s (%s)\n", field, a.ws.Value(field), a.ws.Sources[field])
	}
	return nil
}

// logsCommand prints the TUI log file.
func (a *app) logsCommand(ctx context.Context, args []string) error {
	fs := a.flagSet("logs")
	follow := fs.Bool("f", false, "Follow the log (like tail -f)")
	fs.BoolVar(follow, "follow", false, "Follow the log (like tail -f)")
	n := fs.Int("n", 0, "Number of lines to show (0 = all)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	path := logging.Path(a.cfg.LogDir)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Fprintln(a.stdout, "No log file found.")
		return nil
	}
	err := logging.TailLog(ctx, a.stdout, path, *n, *follow)
	if *follow && errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// versionCommand prints version information.
func versionCommand(w io.Writer) error {
	fmt.Fprintf(w, "tasklist version %s\n", Version)
	return nil
}

// printUsage prints the usage message.
func printUsage(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintln(w, "Tasklist - a local task list with priorities and categories")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  tasklist [global options] [command] [options]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  ls              List tasks (default command)")
	fmt.Fprintln(w, "  add <text...>   Add a task")
	fmt.Fprintln(w, "  done <ref>      Toggle a task between active and completed")
	fmt.Fprintln(w, "  rm <ref>        Delete a task")
	fmt.Fprintln(w, "  mv <ref> [<before-ref>]")
	fmt.Fprintln(w, "                  Move a task before another, or to the end")
	fmt.Fprintln(w, "  tui             Launch the terminal UI")
	fmt.Fprintln(w, "  shell           Start the interactive shell")
	fmt.Fprintln(w, "  doctor          Check config and the stored task list")
	fmt.Fprintln(w, "  config          Show the effective configuration")
	fmt.Fprintln(w, "  logs            Print the TUI log file")
	fmt.Fprintln(w, "  version         Show version information")
	fmt.Fprintln(w, "  help            Show this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "A <ref> is a task id or a unique prefix of at least four characters.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Global Options:")
	fs.SetOutput(w)
	fs.PrintDefaults()
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Add Options:")
	fmt.Fprintln(w, "  -p string     Priority (low|medium|high)")
	fmt.Fprintln(w, "  -c string     Category")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Done / Rm Options:")
	fmt.Fprintln(w, "  -text         Match tasks by exact text instead of id")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Ls Options:")
	fmt.Fprintln(w, "  -priority string   Filter by priority (all|low|medium|high)")
	fmt.Fprintln(w, "  -category string   Filter by category")
	fmt.Fprintln(w, "  -status string     Filter by status (all|active|completed)")
	fmt.Fprintln(w, "  -format string     Output format (text|json|yaml)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Logs Options:")
	fmt.Fprintln(w, "  -f, -follow   Follow the log")
	fmt.Fprintln(w, "  -n int        Number of lines to show (0 = all)")
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
