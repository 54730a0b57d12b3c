// Package judgment turns free-form model output into a preference label.
package judgment

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	// ErrNotJSON is returned when no JSON object can be recovered from a response.
	ErrNotJSON = errors.New("response is not a JSON object")
	// ErrMissingPreference is returned when the object has no usable preference field.
	ErrMissingPreference = errors.New("missing preference in response")
)

// Sentinel is recorded for images that are intentionally not evaluated.
const Sentinel = -1

// Preference is either a string label or an integer label.
type Preference struct {
	label   string
	number  int
	numeric bool
}

// Label returns a string preference.
func Label(s string) Preference {
	return Preference{label: s}
}

// Number returns an integer preference.
func Number(n int) Preference {
	return Preference{number: n, numeric: true}
}

// Skipped returns the sentinel preference.
func Skipped() Preference {
	return Number(Sentinel)
}

// IsNumber reports whether the preference is an integer.
func (p Preference) IsNumber() bool { return p.numeric }

// IsSentinel reports whether the preference is the sentinel value.
func (p Preference) IsSentinel() bool { return p.numeric && p.number == Sentinel }

func (p Preference) String() string {
	if p.numeric {
		return strconv.Itoa(p.number)
	}
	return p.label
}

func (p Preference) MarshalJSON() ([]byte, error) {
	if p.numeric {
		return json.Marshal(p.number)
	}
	return json.Marshal(p.label)
}

func (p *Preference) UnmarshalJSON(data []byte) error {
	var v interface{}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return err
	}
	pref, err := fromValue(v)
	if err != nil {
		return err
	}
	*p = pref
	return nil
}

// ExtractObject pulls a JSON object out of a model response. Code fences and
// prose around the object are discarded.
func ExtractObject(text string) (map[string]interface{}, error) {
	stripped := strings.TrimSpace(text)

	if strings.HasPrefix(stripped, "```") {
		lines := strings.Split(stripped, "\n")
		if len(lines) > 0 && strings.HasPrefix(lines[0], "```") {
			lines = lines[1:]
		}
		if len(lines) > 0 && strings.HasPrefix(strings.TrimSpace(lines[len(lines)-1]), "```") {
			lines = lines[:len(lines)-1]
		}
		stripped = strings.TrimSpace(strings.Join(lines, "\n"))
	}

	start := strings.Index(stripped, "{")
	end := strings.LastIndex(stripped, "}")
	if start == -1 || end == -1 || end < start {
		return nil, ErrNotJSON
	}
	stripped = stripped[start : end+1]

	var obj map[string]interface{}
	dec := json.NewDecoder(strings.NewReader(stripped))
	dec.UseNumber()
	if err := dec.Decode(&obj); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotJSON, err)
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: trailing data after object", ErrNotJSON)
	}
	return obj, nil
}

// PreferenceFrom reads the preference field of a parsed response.
func PreferenceFrom(obj map[string]interface{}) (Preference, error) {
	v, ok := obj["preference"]
	if !ok {
		return Preference{}, ErrMissingPreference
	}
	return fromValue(v)
}

// Parse extracts the preference from a raw model response.
func Parse(text string) (Preference, error) {
	obj, err := ExtractObject(text)
	if err != nil {
		return Preference{}, err
	}
	return PreferenceFrom(obj)
}

// fromValue keeps strings (trimmed) and truncates numbers to integers.
func fromValue(v interface{}) (Preference, error) {
	switch val := v.(type) {
	case string:
		return Label(strings.TrimSpace(val)), nil
	case json.Number:
		if n, err := val.Int64(); err == nil {
			return Number(int(n)), nil
		}
		f, err := val.Float64()
		if err != nil {
			return Preference{}, fmt.Errorf("%w: %v", ErrMissingPreference, err)
		}
		return fromFloat(f)
	case float64:
		return fromFloat(val)
	default:
		return Preference{}, fmt.Errorf("%w: unexpected type %T", ErrMissingPreference, v)
	}
}

// fromFloat rejects values that do not fit in an int64.
func fromFloat(f float64) (Preference, error) {
	if f >= math.MaxInt64 || f < math.MinInt64 {
		return Preference{}, fmt.Errorf("%w: %g out of range", ErrMissingPreference, f)
	}
	return Number(int(f)), nil
}
