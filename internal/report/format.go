package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Write renders a summary in the given format (text, json, csv or yaml)
func Write(w io.Writer, summary *Summary, format string) error {
	switch format {
	case "text":
		return writeText(w, summary)
	case "json":
		return writeJSON(w, summary)
	case "csv":
		return writeCSV(w, summary)
	case "yaml":
		return writeYAML(w, summary)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

func writeText(w io.Writer, summary *Summary) error {
	fmt.Fprintln(w, "========================================")
	fmt.Fprintln(w, "Preference Journal Report")
	fmt.Fprintln(w, "========================================")
	fmt.Fprintf(w, "Journal:            %s\n", summary.Journal)
	fmt.Fprintf(w, "Records:            %d\n", summary.Records)
	fmt.Fprintf(w, "Distinct Images:    %d\n", summary.Images)
	fmt.Fprintf(w, "Skipped by Policy:  %d\n", summary.Skipped)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Models:")
	for _, c := range summary.Models {
		fmt.Fprintf(w, "  %s: %d\n", c.Name, c.Count)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Labels:")
	for _, c := range summary.Labels {
		fmt.Fprintf(w, "  %s: %d (%.2f%%)\n", c.Name, c.Count, percent(c.Count, summary.Records))
	}

	if len(summary.Duplicates) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Duplicate Images (%d):\n", len(summary.Duplicates))
		for _, image := range summary.Duplicates {
			fmt.Fprintf(w, "  %s\n", image)
		}
	}
	_, err := fmt.Fprintln(w, "========================================")
	return err
}

func writeJSON(w io.Writer, summary *Summary) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(summary)
}

func writeCSV(w io.Writer, summary *Summary) error {
	writer := csv.NewWriter(w)

	if err := writer.Write([]string{"label", "count", "percent"}); err != nil {
		return err
	}
	for _, c := range summary.Labels {
		row := []string{
			c.Name,
			strconv.Itoa(c.Count),
			fmt.Sprintf("%.2f", percent(c.Count, summary.Records)),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func writeYAML(w io.Writer, summary *Summary) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(summary); err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}
	return encoder.Close()
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}
