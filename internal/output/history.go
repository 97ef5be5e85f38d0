package output

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/gofrs/flock"
	"github.com/oklog/ulid/v2"

	"github.com/searchmeter/searchmeter/internal/statistic"
)

// HistoryEntry is one run summary appended to the history file.
type HistoryEntry struct {
	RunID      string          `json:"run_id"`
	StartedAt  time.Time       `json:"started_at"`
	SearchURL  string          `json:"search_url"`
	TargetQPM  int             `json:"target_qpm"`
	Stats      statistic.Stats `json:"stats"`
}

// NewRunID returns a fresh ULID for identifying a test run.
func NewRunID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
}

// AppendHistory appends the entry as one JSON line to path. The file is
// guarded with an advisory lock so concurrent invocations sharing a history
// file do not interleave lines.
func AppendHistory(path string, entry HistoryEntry) error {
	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("lock history file: %w", err)
	}
	defer lock.Unlock()

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open history file: %w", err)
	}
	defer file.Close()

	line, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode history entry: %w", err)
	}
	line = append(line, '\n')
	if _, err := file.Write(line); err != nil {
		return fmt.Errorf("write history entry: %w", err)
	}
	return nil
}
