package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"

	"github.com/nibzard/tasklist-go/internal/todo"
)

func sample() []todo.Task {
	return []todo.Task{
		{ID: "5f0c8a52-3d4e-4a57-9a0e-0f4c1f8e2b11", Text: "Buy milk", Priority: todo.PriorityHigh, Category: todo.CategoryPersonal},
		{ID: "0a1b2c3d-0000-4000-8000-000000000000", Text: "Write\nreport", Priority: todo.PriorityMedium, Category: todo.CategoryWork, Completed: true},
	}
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, sample(), FormatText); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	want := "  [ ] 5f0c8a52  high  personal  Buy milk\n" +
		"  [x] 0a1b2c3d  medium  work  Write report\n"
	if got := buf.String(); got != want {
		t.Errorf("text output:\ngot  %q\nwant %q", got, want)
	}
}

func TestWriteTextEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, nil, FormatText); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if got := buf.String(); got != EmptyMessage+"\n" {
		t.Errorf("got %q, want %q", got, EmptyMessage+"\n")
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, sample(), FormatJSON); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	var got []todo.Task
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	if diff := cmp.Diff(sample(), got); diff != "" {
		t.Errorf("JSON mismatch (-want +got):\n%s", diff)
	}

	buf.Reset()
	if err := Write(&buf, nil, FormatJSON); err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(buf.String()); got != "[]" {
		t.Errorf("empty JSON: got %q, want []", got)
	}
}

func TestWriteYAML(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, sample(), FormatYAML); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if !strings.Contains(buf.String(), "priority: high") {
		t.Errorf("unexpected YAML:\n%s", buf.String())
	}
	var got []todo.Task
	if err := yaml.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not YAML: %v", err)
	}
	if diff := cmp.Diff(sample(), got); diff != "" {
		t.Errorf("YAML mismatch (-want +got):\n%s", diff)
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatText, false},
		{"TEXT", FormatText, false},
		{"json", FormatJSON, false},
		{"yml", FormatYAML, false},
		{"csv", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat(%q): err=%v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q): got %q, want %q", tt.in, got, tt.want)
			}
		})
	}
	if err := Write(&bytes.Buffer{}, nil, Format("csv")); err == nil {
		t.Error("Write with unknown format: expected error")
	}
}

func TestSummary(t *testing.T) {
	if got := Summary(sample()); got != "2 tasks, 1 completed" {
		t.Errorf("Summary: got %q", got)
	}
	if got := Summary(sample()[:1]); got != "1 task, 0 completed" {
		t.Errorf("Summary: got %q", got)
	}
}
