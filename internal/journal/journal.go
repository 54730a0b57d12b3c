// Package journal stores one preference record per line in an append-only
// JSONL file. The same file doubles as the resume checkpoint.
package journal

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/lehigh-university-libraries/imgprefs/internal/judgment"
)

// Record is a single journal line
type Record struct {
	Image      string              `json:"image"`
	Model      string              `json:"model"`
	Preference judgment.Preference `json:"preference"`
}

// Writer appends records to a journal file
type Writer struct {
	file *os.File
}

// Open opens path for appending, creating it and its parent directories.
// Existing content is never truncated.
func Open(path string) (*Writer, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}

	return &Writer{file: file}, nil
}

// Append writes one record and syncs it to disk before returning.
func (w *Writer) Append(record Record) error {
	line, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode record for %s: %w", record.Image, err)
	}
	line = append(line, '\n')

	if _, err := w.file.Write(line); err != nil {
		return fmt.Errorf("failed to write record for %s: %w", record.Image, err)
	}
	if err := w.file.Sync(); err != nil {
		return fmt.Errorf("failed to sync journal: %w", err)
	}
	return nil
}

// Close closes the underlying file
func (w *Writer) Close() error {
	return w.file.Close()
}

// LoadProcessed returns the image identifiers already present in the journal
// at path. A missing journal yields an empty set; unreadable lines are skipped.
func LoadProcessed(path string) (map[string]struct{}, error) {
	processed := make(map[string]struct{})

	file, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return processed, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	defer file.Close()

	err = scan(file, func(lineNum int, line []byte) {
		var record struct {
			Image interface{} `json:"image"`
		}
		if err := json.Unmarshal(line, &record); err != nil {
			slog.Debug("Ignoring malformed journal line", "line", lineNum, "err", err)
			return
		}
		image, ok := record.Image.(string)
		if !ok {
			slog.Debug("Ignoring journal line without image", "line", lineNum)
			return
		}
		processed[image] = struct{}{}
	})
	if err != nil {
		return nil, err
	}

	return processed, nil
}

// ReadAll returns every well-formed record in the journal, in file order.
func ReadAll(path string) ([]Record, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	defer file.Close()

	var records []Record
	skipped := 0
	err = scan(file, func(lineNum int, line []byte) {
		var record Record
		if err := json.Unmarshal(line, &record); err != nil || record.Image == "" {
			skipped++
			slog.Debug("Ignoring malformed journal line", "line", lineNum, "err", err)
			return
		}
		records = append(records, record)
	})
	if err != nil {
		return nil, err
	}

	if skipped > 0 {
		slog.Warn("Skipped malformed journal lines", "path", path, "count", skipped)
	}
	return records, nil
}

// scan calls fn for every non-empty line. Lines have no length limit so a
// corrupt oversized line is handed to fn like any other malformed line.
func scan(r io.Reader, fn func(lineNum int, line []byte)) error {
	reader := bufio.NewReader(r)

	lineNum := 0
	for {
		line, err := reader.ReadBytes('\n')
		if len(line) > 0 {
			lineNum++
			line = bytes.TrimRight(line, "\r\n")
			if len(line) > 0 {
				fn(lineNum, line)
			}
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("error reading journal: %w", err)
		}
	}
}
