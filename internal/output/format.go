// Package output renders task sequences for the CLI and the shell.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"github.com/nibzard/tasklist-go/internal/todo"
)

// Format selects how tasks are written.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// EmptyMessage is printed by the text format for an empty sequence.
const EmptyMessage = "  No tasks."

// ParseFormat parses text, json, or yaml. Empty means text.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatText, nil
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	case "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unknown format %q, must be one of: text, json, yaml", s)
}

// Write renders tasks to w in the given format.
func Write(w io.Writer, tasks []todo.Task, format Format) error {
	if tasks == nil {
		tasks = []todo.Task{}
	}
	switch format {
	case FormatText, "":
		return writeText(w, tasks)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(tasks)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(tasks); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("unknown format %q", format)
}

// textStyles colours task lines. The renderer is bound to the destination
// writer so nothing is coloured when it is not a terminal.
type textStyles struct {
	priority map[todo.Priority]lipgloss.Style
	category lipgloss.Style
	done     lipgloss.Style
	id       lipgloss.Style
}

func newTextStyles(w io.Writer) textStyles {
	r := lipgloss.NewRenderer(w)
	return textStyles{
		priority: map[todo.Priority]lipgloss.Style{
			todo.PriorityHigh:   r.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
			todo.PriorityMedium: r.NewStyle().Foreground(lipgloss.Color("11")),
			todo.PriorityLow:    r.NewStyle().Foreground(lipgloss.Color("10")),
		},
		category: r.NewStyle().Foreground(lipgloss.Color("12")),
		done:     r.NewStyle().Faint(true).Strikethrough(true),
		id:       r.NewStyle().Faint(true),
	}
}

func writeText(w io.Writer, tasks []todo.Task) error {
	if len(tasks) == 0 {
		_, err := fmt.Fprintln(w, EmptyMessage)
		return err
	}
	st := newTextStyles(w)
	for _, t := range tasks {
		if _, err := fmt.Fprintln(w, formatLine(st, t)); err != nil {
			return err
		}
	}
	return nil
}

// FormatTask returns the plain text line for t.
// Format: "  [x] {ID8}  {PRIORITY}  {CATEGORY}  {TEXT}"
func FormatTask(t todo.Task) string {
	return formatLine(newTextStyles(io.Discard), t)
}

func formatLine(st textStyles, t todo.Task) string {
	mark := "[ ]"
	text := normalizeText(t.Text)
	if t.Completed {
		mark = "[x]"
		text = st.done.Render(text)
	}
	prio := string(t.Priority)
	if s, ok := st.priority[t.Priority]; ok {
		prio = s.Render(prio)
	}
	return fmt.Sprintf("  %s %s  %s  %s  %s",
		mark, st.id.Render(t.ShortID()), prio, st.category.Render(string(t.Category)), text)
}

// normalizeText keeps a task on one line.
func normalizeText(text string) string {
	text = strings.ReplaceAll(text, "\r", " ")
	return strings.ReplaceAll(text, "\n", " ")
}

// Summary returns a short count line such as "3 tasks, 1 completed".
func Summary(tasks []todo.Task) string {
	done := 0
	for _, t := range tasks {
		if t.Completed {
			done++
		}
	}
	noun := "tasks"
	if len(tasks) == 1 {
		noun = "task"
	}
	return fmt.Sprintf("%d %s, %d completed", len(tasks), noun, done)
}
