package cmd

import (
	"bytes"
	"reflect"
	"strings"
	"testing"
)

func Test_normalizeTables(t *testing.T) {
	cases := []struct {
		in   []string
		want []string
	}{
		{nil, nil},
		{[]string{}, nil},
		{[]string{" ", ""}, nil},
		{[]string{"Users", " CARDS "}, []string{"users", "cards"}},
		{[]string{"card_progress"}, []string{"card_progress"}},
	}
	for _, c := range cases {
		got := normalizeTables(c.in)
		if !reflect.DeepEqual(got, c.want) {
			t.Fatalf("%v -> got %v want %v", c.in, got, c.want)
		}
	}
}

func Test_defaultExportFilename(t *testing.T) {
	plain := defaultExportFilename(false)
	if !strings.HasPrefix(plain, "learning-matan-backup-") || !strings.HasSuffix(plain, ".jsonl") {
		t.Fatalf("unexpected filename %q", plain)
	}
	gz := defaultExportFilename(true)
	if !strings.HasSuffix(gz, ".jsonl.gz") {
		t.Fatalf("unexpected gzip filename %q", gz)
	}
}

func Test_cliProgress(t *testing.T) {
	var buf bytes.Buffer
	p := newCLIProgress(&buf)

	p.StartTable("cards", 2)
	p.Increment("cards", 1)
	p.Increment("cards", -1) // ignored
	p.Increment("cards", 1)
	p.FinishTable("cards")

	out := buf.String()
	if !strings.Contains(out, "exporting cards (2 rows)") {
		t.Fatalf("missing start line: %q", out)
	}
	if !strings.Contains(out, "finished cards (2/2 rows)") {
		t.Fatalf("missing finish line: %q", out)
	}
}
