// Package skiplist resolves the set of images that bypass the model and are
// recorded with the sentinel preference.
package skiplist

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Version is the newest list document version Load understands.
const Version = 1

// Document is the structured form of a skip list file.
type Document struct {
	Version int      `json:"version" yaml:"version"`
	Images  []string `json:"images" yaml:"images"`
}

// Policy is a resolved skip list for one image root.
type Policy struct {
	relative map[string]struct{}
	names    map[string]struct{}
}

// Empty returns a policy that matches nothing.
func Empty() *Policy {
	return &Policy{
		relative: make(map[string]struct{}),
		names:    make(map[string]struct{}),
	}
}

// Matches reports whether an image identifier is covered by the policy,
// either exactly or by bare file name.
func (p *Policy) Matches(id string) bool {
	if p == nil {
		return false
	}
	if _, ok := p.relative[id]; ok {
		return true
	}
	_, ok := p.names[baseName(id)]
	return ok
}

// Len returns the number of resolved entries.
func (p *Policy) Len() int {
	if p == nil {
		return 0
	}
	return len(p.relative) + len(p.names)
}

// Resolve expresses each entry relative to root. Relative entries are first
// anchored at anchor. Entries outside root are kept as bare file names.
func Resolve(root, anchor string, entries []string) (*Policy, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve image root: %w", err)
	}
	absAnchor, err := filepath.Abs(anchor)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve skip list anchor: %w", err)
	}

	policy := Empty()
	for _, entry := range entries {
		candidate := filepath.FromSlash(entry)
		if !filepath.IsAbs(candidate) {
			candidate = filepath.Join(absAnchor, candidate)
		}
		candidate = filepath.Clean(candidate)

		rel, err := filepath.Rel(absRoot, candidate)
		if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			policy.names[filepath.Base(candidate)] = struct{}{}
			continue
		}
		policy.relative[filepath.ToSlash(rel)] = struct{}{}
	}
	return policy, nil
}

// Load reads the entries of a skip list file. .json and .yaml/.yml files hold
// either a bare list of paths or a versioned Document; anything else is one
// path per line with # comments.
func Load(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read skip list: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return decode(data, json.Unmarshal)
	case ".yaml", ".yml":
		return decode(data, yaml.Unmarshal)
	default:
		return parseLines(data)
	}
}

// LoadPolicy loads and resolves a skip list. Any failure degrades to an empty
// policy with a warning. An empty path disables the policy.
func LoadPolicy(path, root, anchor string) *Policy {
	if path == "" {
		return Empty()
	}
	if anchor == "" {
		anchor = filepath.Dir(path)
	}

	entries, err := Load(path)
	if err != nil {
		slog.Warn("Unable to load skip list, proceeding without skips", "path", path, "err", err)
		return Empty()
	}

	policy, err := Resolve(root, anchor, entries)
	if err != nil {
		slog.Warn("Unable to resolve skip list, proceeding without skips", "path", path, "err", err)
		return Empty()
	}

	slog.Info("Loaded skip list", "path", path, "entries", len(entries), "resolved", policy.Len())
	return policy
}

func decode(data []byte, unmarshal func([]byte, interface{}) error) ([]string, error) {
	trimmed := bytes.TrimSpace(data)
	var list []string
	if err := unmarshal(trimmed, &list); err == nil {
		return list, nil
	}

	var doc Document
	if err := unmarshal(trimmed, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse skip list: %w", err)
	}
	if doc.Version > Version || doc.Version < 0 {
		return nil, fmt.Errorf("unsupported skip list version %d", doc.Version)
	}
	return doc.Images, nil
}

func parseLines(data []byte) ([]string, error) {
	var entries []string
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		entries = append(entries, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read skip list: %w", err)
	}
	return entries, nil
}

func baseName(id string) string {
	if i := strings.LastIndex(id, "/"); i >= 0 {
		return id[i+1:]
	}
	return id
}
