package querysource

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// poolsFile is the YAML shape of a combined pools file.
type poolsFile struct {
	Queries       []string `yaml:"queries"`
	FilterQueries []string `yaml:"filter_queries"`
	FacetFields   []string `yaml:"facet_fields"`
}

// LoadFiles builds a Source from up to three line-oriented text files, one
// entry per line. Blank lines and lines starting with '#' are skipped.
// An empty path leaves the corresponding pool empty.
func LoadFiles(queriesPath, filtersPath, facetFieldsPath string) (*Source, error) {
	queries, err := readLines(queriesPath)
	if err != nil {
		return nil, fmt.Errorf("load queries: %w", err)
	}
	filters, err := readLines(filtersPath)
	if err != nil {
		return nil, fmt.Errorf("load filter queries: %w", err)
	}
	facetFields, err := readLines(facetFieldsPath)
	if err != nil {
		return nil, fmt.Errorf("load facet fields: %w", err)
	}
	return New(queries, filters, facetFields, time.Now().UnixNano()), nil
}

// LoadYAML builds a Source from a single YAML pools file with queries,
// filter_queries and facet_fields lists.
func LoadYAML(path string) (*Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load pools file: %w", err)
	}
	var pools poolsFile
	if err := yaml.Unmarshal(data, &pools); err != nil {
		return nil, fmt.Errorf("parse pools file: %w", err)
	}
	return New(pools.Queries, pools.FilterQueries, pools.FacetFields, time.Now().UnixNano()), nil
}

func readLines(path string) ([]string, error) {
	if path == "" {
		return nil, nil
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}
