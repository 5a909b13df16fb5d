package ui

import (
	"math"

	"github.com/nibzard/tasklist-go/internal/todo"
)

// rowBox is the vertical extent of one rendered row in screen lines.
type rowBox struct {
	top    int
	height int
}

// dragState tracks a mouse drag in progress.
type dragState struct {
	active bool
	id     string
	// start is the row index when the drag began.
	start int
}

// dropBefore returns the index of the row the dragged row should be
// inserted before when the pointer is on line y: the row whose vertical
// centre is the nearest one below the pointer. It returns -1 when no
// centre lies below the pointer, meaning the dragged row goes last. The
// dragged row itself is never a candidate.
//
// Positions are compared in half lines. The pointer is taken at the top
// edge of its cell while it is above the dragged row and at the bottom
// edge once it is below, so a row moves as soon as the pointer enters a
// neighbour in either direction.
func dropBefore(boxes []rowBox, dragged, y int) int {
	pointer := 2 * y
	if dragged >= 0 && dragged < len(boxes) {
		if b := boxes[dragged]; y >= b.top+b.height {
			pointer = 2*y + 2
		}
	}

	best, bestOffset := -1, math.MinInt
	for i, b := range boxes {
		if i == dragged {
			continue
		}
		offset := pointer - (2*b.top + b.height)
		if offset < 0 && offset > bestOffset {
			best, bestOffset = i, offset
		}
	}
	return best
}

// moveRow moves rows[from] so that it sits immediately before the row
// currently at index before, or last when before is -1. It returns the
// reordered slice and the new index of the moved row.
func moveRow(rows []todo.Task, from, before int) ([]todo.Task, int) {
	if from < 0 || from >= len(rows) || before == from {
		return rows, from
	}
	moved := rows[from]
	out := make([]todo.Task, 0, len(rows))
	out = append(out, rows[:from]...)
	out = append(out, rows[from+1:]...)

	if before < 0 || before > len(rows) {
		return append(out, moved), len(out)
	}
	if before > from {
		before--
	}
	out = append(out[:before], append([]todo.Task{moved}, out[before:]...)...)
	return out, before
}

// rowAt returns the index of the row covering line y, or -1.
func rowAt(boxes []rowBox, y int) int {
	for i, b := range boxes {
		if y >= b.top && y < b.top+b.height {
			return i
		}
	}
	return -1
}
