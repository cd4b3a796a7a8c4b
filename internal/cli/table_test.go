package cli

import (
	"strings"
	"testing"
)

func TestTableRender(t *testing.T) {
	table := NewTable([]string{"Algorithm", "Score"})
	table.AddRow([]string{"kmeans", "0.920"})
	table.AddRow([]string{"gmm", "0.875"})

	out := table.Render()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("rendered %d lines, want 4 (header, separator, two rows)", len(lines))
	}
	if !strings.HasPrefix(lines[0], "Algorithm") {
		t.Errorf("header line = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "---------") {
		t.Errorf("separator line = %q", lines[1])
	}
	if !strings.Contains(lines[2], "kmeans") || !strings.Contains(lines[2], "0.920") {
		t.Errorf("row line = %q", lines[2])
	}
}

func TestTableColumnAlignment(t *testing.T) {
	table := NewTable([]string{"A", "B"})
	table.AddRow([]string{"longer-cell", "x"})
	table.AddRow([]string{"y", "z"})

	lines := strings.Split(strings.TrimRight(table.Render(), "\n"), "\n")
	// The second column starts at the same offset on every row.
	offset := strings.Index(lines[2], "x")
	if strings.Index(lines[3], "z") != offset {
		t.Errorf("misaligned columns:\n%s", table.Render())
	}
}

func TestTableAddRowPadsShortRows(t *testing.T) {
	table := NewTable([]string{"Name", "Note"})
	table.AddRow([]string{"only-name"})

	if len(table.rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(table.rows))
	}
	if len(table.rows[0]) != 2 {
		t.Errorf("row cells = %d, want 2 (padded)", len(table.rows[0]))
	}
	if table.rows[0][1] != "" {
		t.Errorf("padded cell = %q, want empty", table.rows[0][1])
	}
}

func TestTableRenderEmpty(t *testing.T) {
	if out := NewTable(nil).Render(); out != "" {
		t.Errorf("Render() on empty table = %q, want empty string", out)
	}
}
