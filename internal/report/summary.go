package report

import (
	"sort"

	"github.com/lehigh-university-libraries/imgprefs/internal/journal"
)

// SkippedLabel is the report label for the sentinel preference.
const SkippedLabel = "skipped"

// Count is a label or model with its number of records
type Count struct {
	Name  string `json:"name" yaml:"name"`
	Count int    `json:"count" yaml:"count"`
}

// Summary describes the contents of a journal
type Summary struct {
	Journal    string   `json:"journal" yaml:"journal"`
	Records    int      `json:"records" yaml:"records"`
	Images     int      `json:"images" yaml:"images"`
	Skipped    int      `json:"skipped" yaml:"skipped"`
	Models     []Count  `json:"models" yaml:"models"`
	Labels     []Count  `json:"labels" yaml:"labels"`
	Duplicates []string `json:"duplicates,omitempty" yaml:"duplicates,omitempty"`
}

// Summarize counts records per model and per label. Images recorded more than
// once are listed as duplicates.
func Summarize(path string, records []journal.Record) *Summary {
	summary := &Summary{
		Journal: path,
		Records: len(records),
	}

	models := make(map[string]int)
	labels := make(map[string]int)
	seen := make(map[string]int)

	for _, record := range records {
		models[record.Model]++
		seen[record.Image]++

		if record.Preference.IsSentinel() {
			summary.Skipped++
			labels[SkippedLabel]++
			continue
		}
		labels[record.Preference.String()]++
	}

	summary.Images = len(seen)
	summary.Models = sortedCounts(models)
	summary.Labels = sortedCounts(labels)

	for image, n := range seen {
		if n > 1 {
			summary.Duplicates = append(summary.Duplicates, image)
		}
	}
	sort.Strings(summary.Duplicates)

	return summary
}

// sortedCounts orders by count descending, then name.
func sortedCounts(m map[string]int) []Count {
	counts := make([]Count, 0, len(m))
	for name, n := range m {
		counts = append(counts, Count{Name: name, Count: n})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].Name < counts[j].Name
	})
	return counts
}
