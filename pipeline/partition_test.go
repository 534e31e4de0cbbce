package pipeline

import (
	"os"
	"path/filepath"
	"testing"
)

func readPartitionFile(t *testing.T, dir, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		t.Fatalf("reading %s: %v", name, err)
	}
	return string(data)
}

func TestPartitionerWritesOneFilePerKey(t *testing.T) {
	dir := t.TempDir()
	p := NewPartitioner(dir, 0, []string{"a", "b"})

	if err := p.Write("red", []string{"1", "2"}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := p.Write("blue", []string{"3", "4"}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := p.Write("red", []string{"5", "6"}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	red := readPartitionFile(t, dir, "red.csv")
	if red != "a,b\n1,2\n5,6\n" {
		t.Errorf("red.csv = %q", red)
	}
	blue := readPartitionFile(t, dir, "blue.csv")
	if blue != "a,b\n3,4\n" {
		t.Errorf("blue.csv = %q", blue)
	}
}

func TestPartitionerEvictsLeastRecentlyUsed(t *testing.T) {
	dir := t.TempDir()
	p := NewPartitioner(dir, 1, nil)

	if err := p.Write("a", []string{"1"}); err != nil {
		t.Fatalf("Write a: %v", err)
	}
	if err := p.Write("b", []string{"2"}); err != nil {
		t.Fatalf("Write b: %v", err)
	}
	// "a" was evicted when "b" opened; writing to it again must reopen
	// in append mode rather than fail.
	if err := p.Write("a", []string{"3"}); err != nil {
		t.Fatalf("Write a again: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if got := readPartitionFile(t, dir, "a.csv"); got != "1\n3\n" {
		t.Errorf("a.csv = %q, want the pre-eviction row followed by the row appended after reopening (reopen-after-eviction is append-only, documented as non-atomic)", got)
	}
	if got := readPartitionFile(t, dir, "b.csv"); got != "2\n" {
		t.Errorf("b.csv = %q", got)
	}
}

func TestSanitizeFileNameReplacesUnsafeBytes(t *testing.T) {
	got := sanitizeFileName("a/b:c?d")
	want := "a_b_c_d"
	if got != want {
		t.Errorf("sanitizeFileName = %q, want %q", got, want)
	}
}

func TestAssignFileNameDisambiguatesCaseInsensitiveCollision(t *testing.T) {
	p := NewPartitioner(t.TempDir(), 0, nil)

	first := p.assignFileName("Red")
	second := p.assignFileName("red")
	if first == second {
		t.Fatalf("expected distinct file names for distinct keys, got %q twice", first)
	}
	if second != "red_1" {
		t.Errorf("assignFileName(\"red\") = %q, want %q", second, "red_1")
	}

	// Re-querying the same key returns the same assigned name.
	again := p.assignFileName("Red")
	if again != first {
		t.Errorf("assignFileName(\"Red\") second call = %q, want %q", again, first)
	}
}

func TestPartitionerWithoutHeader(t *testing.T) {
	dir := t.TempDir()
	p := NewPartitioner(dir, 0, nil)
	if err := p.Write("x", []string{"1", "2"}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if got := readPartitionFile(t, dir, "x.csv"); got != "1,2\n" {
		t.Errorf("x.csv = %q", got)
	}
}
