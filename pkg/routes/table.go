// Package routes holds the declarative page route table: a tree of path to
// view mappings with per-route access metadata, matched first-match in
// declaration order.
package routes

import (
	"errors"
	"fmt"

	"github.com/aussiebroadwan/lingua/pkg/guard"
)

var (
	ErrBadPattern      = errors.New("routes: bad path pattern")
	ErrNoCatchAll      = errors.New("routes: no catch-all route")
	ErrCatchAllNotLast = errors.New("routes: catch-all route must be the last entry")
	ErrDuplicateName   = errors.New("routes: duplicate route name")
	ErrMissingView     = errors.New("routes: leaf route has no view")
)

// Route is one declared route. Children paths are relative to the parent
// unless they start with /.
type Route struct {
	Path     string     `yaml:"path" json:"path"`
	Name     string     `yaml:"name,omitempty" json:"name,omitempty"`
	View     string     `yaml:"view,omitempty" json:"view,omitempty"`
	Meta     guard.Meta `yaml:"meta,omitempty" json:"meta,omitempty"`
	Children []Route    `yaml:"children,omitempty" json:"children,omitempty"`
}

// Entry is a flattened, matchable route record.
type Entry struct {
	Name     string
	Path     string // full path pattern
	View     string
	Meta     guard.Meta
	Chain    []guard.Meta // root first, this record last
	catchAll bool
	pattern  pattern
}

// Match is the result of resolving a request path.
type Match struct {
	Entry  Entry
	Path   string
	Params map[string]string
}

// Target converts the match into a guard target.
func (m Match) Target() guard.Target {
	return guard.Target{Path: m.Path, Chain: m.Entry.Chain}
}

// Table is an immutable compiled route table.
type Table struct {
	entries []Entry
}

// Compile validates a route tree and flattens it into a Table.
func Compile(routes []Route) (*Table, error) {
	if len(routes) == 0 {
		return nil, ErrNoCatchAll
	}

	t := &Table{}
	names := make(map[string]struct{})
	for _, r := range routes {
		if err := t.flatten(r, "", nil, names); err != nil {
			return nil, err
		}
	}

	catchAllAt := -1
	for i, r := range routes {
		if p, err := parsePattern(r.Path); err == nil && p.isCatchAll() {
			catchAllAt = i
			break
		}
	}
	switch {
	case catchAllAt < 0:
		return nil, ErrNoCatchAll
	case catchAllAt != len(routes)-1:
		return nil, fmt.Errorf("%w: %q at position %d of %d",
			ErrCatchAllNotLast, routes[catchAllAt].Path, catchAllAt+1, len(routes))
	}

	return t, nil
}

func (t *Table) flatten(r Route, parent string, chain []guard.Meta, names map[string]struct{}) error {
	full := r.Path
	if parent != "" {
		full = joinPath(parent, r.Path)
	}

	p, err := parsePattern(full)
	if err != nil {
		return err
	}

	if r.Name != "" {
		if _, dup := names[r.Name]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateName, r.Name)
		}
		names[r.Name] = struct{}{}
	}

	own := make([]guard.Meta, len(chain), len(chain)+1)
	copy(own, chain)
	own = append(own, r.Meta)

	if len(r.Children) == 0 && r.View == "" {
		return fmt.Errorf("%w: %q", ErrMissingView, full)
	}

	if r.View != "" {
		t.entries = append(t.entries, Entry{
			Name:     r.Name,
			Path:     full,
			View:     r.View,
			Meta:     r.Meta,
			Chain:    own,
			catchAll: p.isCatchAll(),
			pattern:  p,
		})
	}

	for _, c := range r.Children {
		if err := t.flatten(c, full, own, names); err != nil {
			return err
		}
	}
	return nil
}

// Match returns the first entry, in declaration order, matching path.
func (t *Table) Match(path string) (Match, bool) {
	for _, e := range t.entries {
		if params, ok := e.pattern.match(path); ok {
			return Match{Entry: e, Path: path, Params: params}, true
		}
	}
	return Match{}, false
}

// Entries returns the flattened records in match order.
func (t *Table) Entries() []Entry {
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Views returns the distinct view names referenced by the table.
func (t *Table) Views() []string {
	seen := make(map[string]struct{}, len(t.entries))
	var out []string
	for _, e := range t.entries {
		if _, ok := seen[e.View]; ok {
			continue
		}
		seen[e.View] = struct{}{}
		out = append(out, e.View)
	}
	return out
}

// IsCatchAll reports whether the entry matches every path.
func (e Entry) IsCatchAll() bool { return e.catchAll }
