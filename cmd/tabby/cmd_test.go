package main

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTempInput(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "in.csv")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("writing temp input: %v", err)
	}
	return path
}

func tempOutputPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "out.csv")
}

func readOutput(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	return string(data)
}

func TestCmdSelectProjectsColumns(t *testing.T) {
	in := writeTempInput(t, "a,b,c\n1,2,3\n4,5,6\n")
	out := tempOutputPath(t)

	err := cmdSelect([]string{"-input", in, "-output", out, "-no-config", "-select", "c,a"})
	if err != nil {
		t.Fatalf("cmdSelect: %v", err)
	}
	got := readOutput(t, out)
	want := "c,a\n3,1\n6,4\n"
	if got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestCmdFilterKeepsTruthyRows(t *testing.T) {
	in := writeTempInput(t, "a,b\n1,2\n5,6\n")
	out := tempOutputPath(t)

	err := cmdFilter([]string{"-input", in, "-output", out, "-no-config", "-expr", "a > 2"})
	if err != nil {
		t.Fatalf("cmdFilter: %v", err)
	}
	got := readOutput(t, out)
	want := "a,b\n5,6\n"
	if got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestCmdExplodeSplitsColumn(t *testing.T) {
	in := writeTempInput(t, "id,tags\n1,a|b|c\n2,x\n")
	out := tempOutputPath(t)

	err := cmdExplode([]string{"-input", in, "-output", out, "-no-config", "-column", "tags", "-sep", "|"})
	if err != nil {
		t.Fatalf("cmdExplode: %v", err)
	}
	got := readOutput(t, out)
	want := "id,tags\n1,a\n1,b\n1,c\n2,x\n"
	if got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestCmdImplodeJoinsGroup(t *testing.T) {
	in := writeTempInput(t, "id,tag\n1,a\n1,b\n2,x\n1,c\n")
	out := tempOutputPath(t)

	err := cmdImplode([]string{"-input", in, "-output", out, "-no-config", "-by", "id", "-column", "tag", "-sep", "|"})
	if err != nil {
		t.Fatalf("cmdImplode: %v", err)
	}
	got := readOutput(t, out)
	want := "id,tag\n1,a|b|c\n2,x\n"
	if got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestCmdDedupKeepsFirstOccurrence(t *testing.T) {
	in := writeTempInput(t, "a,b\n1,x\n1,y\n2,z\n")
	out := tempOutputPath(t)

	err := cmdDedup([]string{"-input", in, "-output", out, "-no-config", "-by", "a"})
	if err != nil {
		t.Fatalf("cmdDedup: %v", err)
	}
	got := readOutput(t, out)
	want := "a,b\n1,x\n2,z\n"
	if got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestCmdSortOrdersByExpression(t *testing.T) {
	in := writeTempInput(t, "a\n3\n1\n2\n")
	out := tempOutputPath(t)

	err := cmdSort([]string{"-input", in, "-output", out, "-no-config", "-expr", "a"})
	if err != nil {
		t.Fatalf("cmdSort: %v", err)
	}
	got := readOutput(t, out)
	want := "a\n1\n2\n3\n"
	if got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestCmdTopKeepsLargestK(t *testing.T) {
	in := writeTempInput(t, "a\n3\n1\n5\n2\n")
	out := tempOutputPath(t)

	err := cmdTop([]string{"-input", in, "-output", out, "-no-config", "-expr", "a", "-k", "2"})
	if err != nil {
		t.Fatalf("cmdTop: %v", err)
	}
	got := readOutput(t, out)
	want := "a\n5\n3\n"
	if got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestCmdClusterAnnotatesComponents(t *testing.T) {
	in := writeTempInput(t, "src,dst\na,b\nb,c\nx,y\n")
	out := tempOutputPath(t)

	err := cmdCluster([]string{"-input", in, "-output", out, "-no-config", "-from", "src", "-to", "dst"})
	if err != nil {
		t.Fatalf("cmdCluster: %v", err)
	}
	got := readOutput(t, out)
	if got == "" {
		t.Fatalf("expected non-empty output")
	}
}

func TestCmdFrequencyCountsValues(t *testing.T) {
	in := writeTempInput(t, "a\nx\ny\nx\nx\n")
	out := tempOutputPath(t)

	err := cmdFrequency([]string{"-input", in, "-output", out, "-no-config", "-column", "a"})
	if err != nil {
		t.Fatalf("cmdFrequency: %v", err)
	}
	got := readOutput(t, out)
	if got == "" {
		t.Fatalf("expected non-empty output")
	}
}

func TestCmdPartitionWritesPerKeyFiles(t *testing.T) {
	in := writeTempInput(t, "group,value\nred,1\nblue,2\nred,3\n")
	outDir := t.TempDir()

	err := cmdPartition([]string{"-input", in, "-no-config", "-by", "group", "-output-dir", outDir})
	if err != nil {
		t.Fatalf("cmdPartition: %v", err)
	}
	red, err := os.ReadFile(filepath.Join(outDir, "red.csv"))
	if err != nil {
		t.Fatalf("reading red.csv: %v", err)
	}
	if string(red) != "group,value\nred,1\nred,3\n" {
		t.Errorf("red.csv = %q", red)
	}
}
