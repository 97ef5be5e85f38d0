package querysource

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func TestNextQueryReturnsPoolMember(t *testing.T) {
	source := New([]string{"alpha", "beta", "gamma"}, nil, nil, 42)
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		query, err := source.NextQuery()
		if err != nil {
			t.Fatalf("next query failed: %v", err)
		}
		switch query {
		case "alpha", "beta", "gamma":
			seen[query] = true
		default:
			t.Fatalf("unknown query %q", query)
		}
	}
	if len(seen) < 2 {
		t.Fatalf("selection not random enough: %v", seen)
	}
}

func TestEmptyPoolsFail(t *testing.T) {
	source := New(nil, nil, nil, 1)
	if _, err := source.NextQuery(); !errors.Is(err, ErrEmptyPool) {
		t.Fatalf("expected ErrEmptyPool for queries, got %v", err)
	}
	if _, err := source.NextFilterQuery(); !errors.Is(err, ErrEmptyPool) {
		t.Fatalf("expected ErrEmptyPool for filters, got %v", err)
	}
	if _, err := source.NextFacetField(); !errors.Is(err, ErrEmptyPool) {
		t.Fatalf("expected ErrEmptyPool for facet fields, got %v", err)
	}
}

func TestConcurrentSelection(t *testing.T) {
	source := New([]string{"a", "b"}, []string{"f"}, []string{"cat"}, 7)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				if _, err := source.NextQuery(); err != nil {
					t.Errorf("next query failed: %v", err)
					return
				}
				if _, err := source.NextFilterQuery(); err != nil {
					t.Errorf("next filter failed: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestLoadFiles(t *testing.T) {
	dir := t.TempDir()
	queriesPath := filepath.Join(dir, "queries.txt")
	content := "ipod\n\n# a comment\nvideo AND camera\n  trimmed  \n"
	if err := os.WriteFile(queriesPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	source, err := LoadFiles(queriesPath, "", "")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if source.QueryCount() != 3 {
		t.Fatalf("expected 3 queries, got %d", source.QueryCount())
	}
	if source.FilterQueryCount() != 0 {
		t.Fatalf("expected empty filter pool, got %d", source.FilterQueryCount())
	}
}

func TestLoadFilesMissingFile(t *testing.T) {
	if _, err := LoadFiles(filepath.Join(t.TempDir(), "nope.txt"), "", ""); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	poolsPath := filepath.Join(dir, "pools.yaml")
	content := `queries:
  - ipod
  - video
filter_queries:
  - "inStock:true"
facet_fields:
  - cat
`
	if err := os.WriteFile(poolsPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	source, err := LoadYAML(poolsPath)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if source.QueryCount() != 2 || source.FilterQueryCount() != 1 || source.FacetFieldCount() != 1 {
		t.Fatalf("unexpected pool sizes: %d/%d/%d",
			source.QueryCount(), source.FilterQueryCount(), source.FacetFieldCount())
	}
	field, err := source.NextFacetField()
	if err != nil || field != "cat" {
		t.Fatalf("facet field wrong: %q %v", field, err)
	}
}

func TestLoadYAMLRejectsBadFile(t *testing.T) {
	dir := t.TempDir()
	poolsPath := filepath.Join(dir, "pools.yaml")
	if err := os.WriteFile(poolsPath, []byte("queries: {not: a list}"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, err := LoadYAML(poolsPath); err == nil {
		t.Fatalf("expected parse error")
	}
}
