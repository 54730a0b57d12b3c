package report

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/parquet-go/parquet-go"

	"github.com/lehigh-university-libraries/imgprefs/internal/journal"
)

// Row is the Parquet layout of a journal record. Preference keeps its JSON
// spelling; Numeric tells integer labels from string labels.
type Row struct {
	Image      string `parquet:"image"`
	Model      string `parquet:"model"`
	Preference string `parquet:"preference"`
	Numeric    bool   `parquet:"numeric"`
	Sentinel   bool   `parquet:"sentinel"`
}

// ToRows converts journal records to Parquet rows
func ToRows(records []journal.Record) []Row {
	rows := make([]Row, 0, len(records))
	for _, r := range records {
		rows = append(rows, Row{
			Image:      r.Image,
			Model:      r.Model,
			Preference: r.Preference.String(),
			Numeric:    r.Preference.IsNumber(),
			Sentinel:   r.Preference.IsSentinel(),
		})
	}
	return rows
}

// WriteParquet writes the records to a Parquet file at path
func WriteParquet(path string, records []journal.Record) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create parquet file: %w", err)
	}
	defer file.Close()

	writer := parquet.NewGenericWriter[Row](file)
	if _, err := writer.Write(ToRows(records)); err != nil {
		return fmt.Errorf("failed to write parquet rows: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close parquet writer: %w", err)
	}

	slog.Info("Wrote parquet file", "path", path, "rows", len(records))
	return file.Close()
}

// ReadParquet reads rows back from a Parquet file written by WriteParquet
func ReadParquet(path string) ([]Row, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	pf, err := parquet.OpenFile(file, info.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet: %w", err)
	}

	reader := parquet.NewGenericReader[Row](pf)
	defer reader.Close()

	rows := make([]Row, pf.NumRows())
	n, err := reader.Read(rows)
	if n == len(rows) {
		return rows, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read parquet rows: %w", err)
	}
	return rows[:n], nil
}
