package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nibzard/tasklist-go/internal/todo"
)

type styles struct {
	title      lipgloss.Style
	subtle     lipgloss.Style
	selector   lipgloss.Style
	label      lipgloss.Style
	cursor     lipgloss.Style
	text       lipgloss.Style
	done       lipgloss.Style
	dragging   lipgloss.Style
	category   lipgloss.Style
	deleteMark lipgloss.Style
	status     lipgloss.Style
	errorText  lipgloss.Style
	priority   map[todo.Priority]lipgloss.Style
}

func defaultStyles() styles {
	return styles{
		title:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF")),
		subtle:     lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")),
		selector:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFFFFF")),
		label:      lipgloss.NewStyle().Foreground(lipgloss.Color("#AAAAAA")),
		cursor:     lipgloss.NewStyle().Foreground(lipgloss.Color("#5B8DEF")).Bold(true),
		text:       lipgloss.NewStyle(),
		done:       lipgloss.NewStyle().Strikethrough(true).Foreground(lipgloss.Color("#666666")),
		dragging:   lipgloss.NewStyle().Faint(true).Italic(true),
		category:   lipgloss.NewStyle().Foreground(lipgloss.Color("#7FB4CA")),
		deleteMark: lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")),
		status:     lipgloss.NewStyle().Foreground(lipgloss.Color("#AAAAAA")),
		errorText:  lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true),
		priority: map[todo.Priority]lipgloss.Style{
			todo.PriorityHigh:   lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true),
			todo.PriorityMedium: lipgloss.NewStyle().Foreground(lipgloss.Color("#E6C07B")),
			todo.PriorityLow:    lipgloss.NewStyle().Foreground(lipgloss.Color("#98C379")),
		},
	}
}

func (s styles) priorityStyle(p todo.Priority) lipgloss.Style {
	if st, ok := s.priority[p]; ok {
		return st
	}
	return s.text
}
