package indexer

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"

	"github.com/Adithya-Monish-Kumar-K/concurrent-search-engine/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/concurrent-search-engine/pkg/metrics"
)

const maxLineSize = 16 * 1024 * 1024

// Adder receives the parsed words of one document.
type Adder interface {
	AddAll(words []string, location string)
}

// Build indexes every text file under root into idx on the calling
// goroutine. A file that cannot be read is logged and skipped.
func Build(root string, idx Adder, m *metrics.Metrics) error {
	logger := slog.Default().With("component", "indexer")
	paths, err := FindTextFiles(root)
	if err != nil {
		return err
	}
	indexed := 0
	for _, path := range paths {
		if err := IndexFile(path, idx); err != nil {
			logger.Warn("skipping unreadable file", "path", path, "error", err)
			continue
		}
		m.DocIndexed()
		indexed++
	}
	logger.Info("index built", "root", root, "files", len(paths), "indexed", indexed)
	return nil
}

// IndexFile parses path line by line and adds its words to idx under the
// path itself as location. Positions run on across lines.
func IndexFile(path string, idx Adder) error {
	words, err := ReadWords(path)
	if err != nil {
		return err
	}
	idx.AddAll(words, path)
	return nil
}

// ReadWords returns the cleaned, unstemmed words of the file at path.
func ReadWords(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var words []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		words = append(words, tokenizer.Parse(scanner.Text())...)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return words, nil
}
