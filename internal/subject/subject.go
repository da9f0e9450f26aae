package subject

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Subject is a public figure paired with the page their quotations are read from.
type Subject struct {
	Name string `yaml:"name" json:"name"`
	URL  string `yaml:"url" json:"url"`
}

// ErrUnknown is returned when a lookup names a subject that is not in the table.
var ErrUnknown = errors.New("unknown subject")

// Table is an ordered, immutable set of subjects. The order is the order the
// selector lists them in.
type Table struct {
	entries []Subject
	byName  map[string]int
}

// Default returns the reference subject table.
func Default() Table {
	t, _ := NewTable([]Subject{
		{Name: "Steve Jobs (蘋果創辦人)", URL: "https://en.wikiquote.org/wiki/Steve_Jobs"},
		{Name: "Elon Musk (特斯拉執行長)", URL: "https://en.wikiquote.org/wiki/Elon_Musk"},
		{Name: "Taylor Swift (流行樂天后)", URL: "https://en.wikiquote.org/wiki/Taylor_Swift"},
		{Name: "Bill Gates (微軟創辦人)", URL: "https://en.wikiquote.org/wiki/Bill_Gates"},
	})
	return t
}

// NewTable validates entries and builds a table. Names must be unique and
// non-empty, and every URL must be absolute http(s).
func NewTable(entries []Subject) (Table, error) {
	if len(entries) == 0 {
		return Table{}, errors.New("subject table is empty")
	}
	t := Table{
		entries: make([]Subject, 0, len(entries)),
		byName:  make(map[string]int, len(entries)),
	}
	for i, s := range entries {
		s.Name = strings.TrimSpace(s.Name)
		s.URL = strings.TrimSpace(s.URL)
		if s.Name == "" {
			return Table{}, fmt.Errorf("subject %d: empty name", i)
		}
		if _, dup := t.byName[s.Name]; dup {
			return Table{}, fmt.Errorf("subject %q: duplicate name", s.Name)
		}
		u, err := url.Parse(s.URL)
		if err != nil {
			return Table{}, fmt.Errorf("subject %q: parse url: %w", s.Name, err)
		}
		scheme := strings.ToLower(u.Scheme)
		if (scheme != "http" && scheme != "https") || u.Host == "" {
			return Table{}, fmt.Errorf("subject %q: unsupported url %q", s.Name, s.URL)
		}
		t.byName[s.Name] = len(t.entries)
		t.entries = append(t.entries, s)
	}
	return t, nil
}

// All returns a copy of the entries in table order.
func (t Table) All() []Subject {
	return append([]Subject(nil), t.entries...)
}

func (t Table) Len() int { return len(t.entries) }

// At returns the i-th subject in table order.
func (t Table) At(i int) Subject { return t.entries[i] }

// Lookup finds a subject by exact display name, falling back to a
// case-insensitive prefix match so "steve jobs" finds "Steve Jobs (蘋果創辦人)".
// A prefix shared by several subjects is an error rather than a guess.
func (t Table) Lookup(name string) (Subject, error) {
	name = strings.TrimSpace(name)
	if i, ok := t.byName[name]; ok {
		return t.entries[i], nil
	}
	lower := strings.ToLower(name)
	if lower == "" {
		return Subject{}, fmt.Errorf("%w: %q", ErrUnknown, name)
	}
	var matches []Subject
	for _, s := range t.entries {
		if strings.HasPrefix(strings.ToLower(s.Name), lower) {
			matches = append(matches, s)
		}
	}
	switch len(matches) {
	case 0:
		return Subject{}, fmt.Errorf("%w: %q", ErrUnknown, name)
	case 1:
		return matches[0], nil
	}
	names := make([]string, len(matches))
	for i, s := range matches {
		names[i] = s.Name
	}
	return Subject{}, fmt.Errorf("%w: %q is ambiguous (%s)", ErrUnknown, name, strings.Join(names, ", "))
}
