package filter

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/nibzard/tasklist-go/internal/todo"
)

func sample() []todo.Task {
	return []todo.Task{
		{ID: "1", Text: "Buy milk", Priority: todo.PriorityHigh, Category: todo.CategoryPersonal},
		{ID: "2", Text: "Write report", Priority: todo.PriorityMedium, Category: todo.CategoryWork, Completed: true},
		{ID: "3", Text: "Ship release", Priority: todo.PriorityHigh, Category: todo.CategoryWork},
		{ID: "4", Text: "Call mom", Priority: todo.PriorityLow, Category: todo.CategoryPersonal, Completed: true},
		{ID: "5", Text: "Fix bug", Priority: todo.PriorityHigh, Category: todo.CategoryWork, Completed: true},
	}
}

func ids(tasks []todo.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.ID)
	}
	return out
}

func TestApply(t *testing.T) {
	tests := []struct {
		name string
		c    Criteria
		want []string
	}{
		{"all", Default(), []string{"1", "2", "3", "4", "5"}},
		{"zero value", Criteria{}, []string{"1", "2", "3", "4", "5"}},
		{"high", Criteria{Priority: "high", Category: All, Status: StatusAll}, []string{"1", "3", "5"}},
		{"high active", Criteria{Priority: "high", Category: All, Status: StatusActive}, []string{"1", "3"}},
		{"work completed", Criteria{Priority: All, Category: "work", Status: StatusCompleted}, []string{"2", "5"}},
		{"low work", Criteria{Priority: "low", Category: "work", Status: StatusAll}, []string{}},
		{"unknown category", Criteria{Priority: All, Category: "errands", Status: StatusAll}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(Apply(sample(), tt.c))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Apply(%s) mismatch (-want +got):\n%s", tt.c, diff)
			}
		})
	}
}

func TestApplyAllIsIdentity(t *testing.T) {
	in := sample()
	got := Apply(in, Default())
	if diff := cmp.Diff(in, got); diff != "" {
		t.Errorf("all/all/all changed the sequence (-want +got):\n%s", diff)
	}
}

func TestApplyIsSubsequence(t *testing.T) {
	in := sample()
	c := Criteria{Priority: "high", Category: All, Status: StatusActive}
	got := Apply(in, c)

	j := 0
	for _, task := range in {
		if j < len(got) && task == got[j] {
			j++
		}
	}
	if j != len(got) {
		t.Fatalf("result is not an ordered subsequence of the input: %v", ids(got))
	}
	for _, task := range got {
		if task.Priority != todo.PriorityHigh || task.Completed {
			t.Errorf("unexpected task in result: %+v", task)
		}
	}
}

func TestApplyDoesNotMutate(t *testing.T) {
	in := sample()
	before := todo.Clone(in)
	out := Apply(in, Default())
	out[0].Text = "changed"
	if diff := cmp.Diff(before, in); diff != "" {
		t.Errorf("input modified (-want +got):\n%s", diff)
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name                       string
		priority, category, status string
		want                       Criteria
		wantErr                    bool
	}{
		{"empty", "", "", "", Default(), false},
		{"explicit all", "all", "all", "all", Default(), false},
		{"mixed case", "HIGH", "Work", "Active", Criteria{Priority: "high", Category: "work", Status: StatusActive}, false},
		{"free category", "all", "errands", "completed", Criteria{Priority: All, Category: "errands", Status: StatusCompleted}, false},
		{"bad priority", "urgent", "", "", Criteria{}, true},
		{"bad status", "", "", "done", Criteria{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.priority, tt.category, tt.status)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse: err=%v, wantErr=%v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Parse: got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestIsAllAndString(t *testing.T) {
	if !Default().IsAll() || !(Criteria{}).IsAll() {
		t.Error("default criteria should match everything")
	}
	c := Criteria{Priority: "low", Category: All, Status: StatusAll}
	if c.IsAll() {
		t.Error("priority=low reported as all")
	}
	if got, want := c.String(), "priority=low category=all status=all"; got != want {
		t.Errorf("String: got %q, want %q", got, want)
	}
}

func TestCategoryMatchIgnoresCase(t *testing.T) {
	in := []todo.Task{
		{ID: "1", Text: "legacy", Priority: todo.PriorityLow, Category: "Work"},
		{ID: "2", Text: "new", Priority: todo.PriorityLow, Category: todo.CategoryWork},
		{ID: "3", Text: "other", Priority: todo.PriorityLow, Category: "Personal"},
	}
	c, err := Parse("", "Work", "")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if diff := cmp.Diff([]string{"1", "2"}, ids(Apply(in, c))); diff != "" {
		t.Errorf("Apply(%s) mismatch (-want +got):\n%s", c, diff)
	}
}
