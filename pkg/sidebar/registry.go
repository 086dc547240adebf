package sidebar

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrEmptyName is returned when a sidebar is defined without a name.
	ErrEmptyName = errors.New("sidebar name must not be empty")

	// ErrDuplicateName is returned when a sidebar name is defined twice.
	ErrDuplicateName = errors.New("sidebar already defined")

	// ErrNotFound is returned when a sidebar or document is not in the registry.
	ErrNotFound = errors.New("not found")
)

// Provider returns the registry to serve. The registry itself is a Provider;
// reloading sources return the most recently loaded one.
type Provider interface {
	Registry() *Registry
}

// Registry is a named collection of sidebars. It is populated once and then
// only read, so it is safe to share between goroutines after construction.
type Registry struct {
	sidebars map[string][]Entry
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{sidebars: make(map[string][]Entry)}
}

// Define registers the entries under name. The entries are copied, so
// later changes to the caller's slice do not affect the registry.
func (r *Registry) Define(name string, entries ...Entry) error {
	if name == "" {
		return ErrEmptyName
	}

	if r.sidebars == nil {
		r.sidebars = make(map[string][]Entry)
	}

	if _, ok := r.sidebars[name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateName, name)
	}

	r.sidebars[name] = cloneEntries(entries)
	if r.sidebars[name] == nil {
		r.sidebars[name] = []Entry{}
	}

	return nil
}

// MustDefine is like Define but panics on error. It is meant for
// registries written as Go literals.
func (r *Registry) MustDefine(name string, entries ...Entry) *Registry {
	if err := r.Define(name, entries...); err != nil {
		panic(err)
	}
	return r
}

// Export returns a copy of every sidebar keyed by name. Calling it twice
// yields equal values.
func (r *Registry) Export() map[string][]Entry {
	out := make(map[string][]Entry, len(r.sidebars))
	for name, entries := range r.sidebars {
		out[name] = cloneEntries(entries)
	}
	return out
}

// Sidebar returns a copy of the named sidebar.
func (r *Registry) Sidebar(name string) ([]Entry, bool) {
	entries, ok := r.sidebars[name]
	if !ok {
		return nil, false
	}
	return cloneEntries(entries), true
}

// Names returns the sidebar names in lexical order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.sidebars))
	for name := range r.sidebars {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of sidebars.
func (r *Registry) Len() int {
	return len(r.sidebars)
}

// Registry implements Provider.
func (r *Registry) Registry() *Registry {
	return r
}

// Neighbors returns the documents before and after docID in the reading
// order of the named sidebar. An empty string means there is no neighbor
// on that side.
func (r *Registry) Neighbors(name, docID string) (prev, next string, err error) {
	entries, ok := r.sidebars[name]
	if !ok {
		return "", "", fmt.Errorf("sidebar %q: %w", name, ErrNotFound)
	}

	ids := DocIDs(entries)
	for i, id := range ids {
		if id != docID {
			continue
		}
		if i > 0 {
			prev = ids[i-1]
		}
		if i < len(ids)-1 {
			next = ids[i+1]
		}
		return prev, next, nil
	}

	return "", "", fmt.Errorf("doc %q in sidebar %q: %w", docID, name, ErrNotFound)
}
