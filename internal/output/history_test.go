package output

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/searchmeter/searchmeter/internal/statistic"
)

func TestNewRunID(t *testing.T) {
	a := NewRunID()
	b := NewRunID()
	if len(a) != 26 {
		t.Fatalf("unexpected run ID length %d: %s", len(a), a)
	}
	if a == b {
		t.Fatalf("run IDs should be unique, got %s twice", a)
	}
}

func TestAppendHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.jsonl")

	first := HistoryEntry{
		RunID:     NewRunID(),
		StartedAt: time.Now().UTC(),
		SearchURL: "http://localhost:8983/solr/select",
		TargetQPM: 600,
		Stats:     statistic.Stats{Total: 10, Successes: 10},
	}
	second := first
	second.RunID = NewRunID()
	second.Stats = statistic.Stats{Total: 20, Successes: 18, Failures: 2}

	if err := AppendHistory(path, first); err != nil {
		t.Fatalf("AppendHistory failed: %v", err)
	}
	if err := AppendHistory(path, second); err != nil {
		t.Fatalf("second AppendHistory failed: %v", err)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("opening history file: %v", err)
	}
	defer file.Close()

	var entries []HistoryEntry
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var entry HistoryEntry
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			t.Fatalf("history line is not valid JSON: %v", err)
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("scanning history file: %v", err)
	}

	if len(entries) != 2 {
		t.Fatalf("expected 2 history lines, got %d", len(entries))
	}
	if entries[0].RunID != first.RunID || entries[1].RunID != second.RunID {
		t.Fatal("history entries out of order")
	}
	if entries[1].Stats.Failures != 2 {
		t.Fatalf("stats not preserved: %+v", entries[1].Stats)
	}
}
