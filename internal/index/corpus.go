package index

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// Entry is one line of the tagged description corpus. The first token of
// Text is the book identifier and the remainder is its description.
type Entry struct {
	Text string
}

// Identifier parses the leading book identifier, ignoring quote characters
func (e Entry) Identifier() (int64, error) {
	fields := strings.Fields(strings.Trim(e.Text, `"`))
	if len(fields) == 0 {
		return 0, fmt.Errorf("empty corpus entry")
	}
	token := strings.Trim(fields[0], `"`)
	id, err := strconv.ParseInt(token, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid identifier %q: %w", token, err)
	}
	return id, nil
}

// ReadCorpus splits the corpus file into one entry per non-blank line
func ReadCorpus(path string) ([]Entry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open corpus file: %w", err)
	}
	defer file.Close()

	var entries []Entry
	scanner := bufio.NewScanner(file)

	// descriptions can run long
	const maxCapacity = 1024 * 1024
	scanner.Buffer(make([]byte, 64*1024), maxCapacity)

	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		entries = append(entries, Entry{Text: line})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading corpus: %w", err)
	}

	slog.Info("Corpus loaded", "path", path, "entries", len(entries))
	return entries, nil
}
