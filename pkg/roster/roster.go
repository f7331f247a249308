// Package roster parses the user roster file driving batch harvests.
package roster

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Entry is one harvest target: a display name and a numeric user ID.
// The name doubles as the per-user folder name under the output root.
type Entry struct {
	Name string
	UID  int64
}

// ParseEntry parses a single "name:uid" pair
func ParseEntry(s string) (Entry, error) {
	idx := strings.LastIndex(s, ":")
	if idx < 0 {
		return Entry{}, fmt.Errorf("invalid entry %q: expected name:uid", s)
	}

	name := strings.TrimSpace(s[:idx])
	if name == "" {
		return Entry{}, fmt.Errorf("invalid entry %q: empty name", s)
	}

	uid, err := strconv.ParseInt(strings.TrimSpace(s[idx+1:]), 10, 64)
	if err != nil {
		return Entry{}, fmt.Errorf("invalid entry %q: uid is not numeric", s)
	}

	return Entry{Name: name, UID: uid}, nil
}

// Load reads a roster file, one name:uid entry per line. Blank lines and
// lines starting with '#' are skipped.
func Load(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open roster file: %w", err)
	}
	defer f.Close()

	var entries []Entry

	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		entry, err := ParseEntry(line)
		if err != nil {
			return nil, fmt.Errorf("roster line %d: %w", lineNo, err)
		}
		entries = append(entries, entry)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read roster file: %w", err)
	}

	return entries, nil
}
