// Package department resolves complaint categories to the department responsible for them.
package department

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed departments.yaml
var defaultTable []byte

// ErrInvalidTable is returned when a routing table fails validation.
var ErrInvalidTable = errors.New("invalid department table")

// Entry groups the categories routed to one department.
type Entry struct {
	Name       string   `yaml:"name"`
	Categories []string `yaml:"categories"`
}

// Table is the on-disk shape of a routing table.
type Table struct {
	Default     string  `yaml:"default"`
	Departments []Entry `yaml:"departments"`
}

// Lookup maps a category label to a department name.
// Resolve is total: unknown categories map to the default department.
// A Lookup is immutable and safe for concurrent use.
type Lookup struct {
	byCategory        map[string]string
	defaultDepartment string
	departments       []string
}

// Default returns the built-in routing table.
func Default() *Lookup {
	l, err := Parse(defaultTable)
	if err != nil {
		panic(fmt.Sprintf("embedded department table: %v", err))
	}
	return l
}

// Load reads a routing table from a YAML file.
func Load(path string) (*Lookup, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read department table: %w", err)
	}
	l, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return l, nil
}

// Parse decodes and validates a YAML routing table.
func Parse(data []byte) (*Lookup, error) {
	var table Table
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&table); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTable, err)
	}
	return New(table)
}

// New builds a Lookup from an in-memory table.
func New(table Table) (*Lookup, error) {
	def := strings.TrimSpace(table.Default)
	if def == "" {
		return nil, fmt.Errorf("%w: default department is empty", ErrInvalidTable)
	}

	l := &Lookup{
		byCategory:        make(map[string]string),
		defaultDepartment: def,
	}

	seen := map[string]bool{def: true}
	l.departments = append(l.departments, def)

	for i, entry := range table.Departments {
		name := strings.TrimSpace(entry.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: department at index %d has no name", ErrInvalidTable, i)
		}
		if !seen[name] {
			seen[name] = true
			l.departments = append(l.departments, name)
		}
		for _, category := range entry.Categories {
			if category == "" {
				return nil, fmt.Errorf("%w: empty category under %q", ErrInvalidTable, name)
			}
			if existing, ok := l.byCategory[category]; ok && existing != name {
				return nil, fmt.Errorf("%w: category %q mapped to both %q and %q",
					ErrInvalidTable, category, existing, name)
			}
			l.byCategory[category] = name
		}
	}

	return l, nil
}

// Resolve returns the department for category, or the default department.
// Matching is exact.
func (l *Lookup) Resolve(category string) string {
	if dept, ok := l.byCategory[category]; ok {
		return dept
	}
	return l.defaultDepartment
}

// DefaultDepartment returns the department used for unmatched categories.
func (l *Lookup) DefaultDepartment() string {
	return l.defaultDepartment
}

// Categories returns every explicitly mapped category, sorted.
func (l *Lookup) Categories() []string {
	out := make([]string, 0, len(l.byCategory))
	for category := range l.byCategory {
		out = append(out, category)
	}
	sort.Strings(out)
	return out
}

// Departments returns department names in table order, default first.
func (l *Lookup) Departments() []string {
	out := make([]string, len(l.departments))
	copy(out, l.departments)
	return out
}
