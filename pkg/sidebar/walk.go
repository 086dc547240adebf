package sidebar

import "errors"

// SkipCategory can be returned by a WalkFunc to skip the children of the
// category being visited.
var SkipCategory = errors.New("skip category")

// WalkFunc is called for every entry. Path holds the labels of the
// enclosing categories, outermost first.
type WalkFunc func(path []string, e Entry) error

// Walk visits entries depth-first in display order. Returning an error
// other than SkipCategory stops the walk and returns that error.
func Walk(entries []Entry, fn WalkFunc) error {
	return walk(nil, entries, fn)
}

func walk(path []string, entries []Entry, fn WalkFunc) error {
	for _, e := range entries {
		err := fn(path, e)
		if errors.Is(err, SkipCategory) {
			continue
		}
		if err != nil {
			return err
		}

		if e.IsCategory() {
			// full slice expression so siblings never share a backing array
			child := append(path[:len(path):len(path)], e.Label)
			if err := walk(child, e.Items, fn); err != nil {
				return err
			}
		}
	}
	return nil
}

// DocIDs returns every document identifier in reading order.
func DocIDs(entries []Entry) []string {
	ids := []string{}
	_ = Walk(entries, func(_ []string, e Entry) error {
		if e.IsDoc() {
			ids = append(ids, e.ID)
		}
		return nil
	})
	return ids
}

// Duplicate names a category label that appears more than once among
// siblings.
type Duplicate struct {
	Sidebar string
	Path    []string
	Label   string
}

// Duplicates reports sibling categories sharing a label. Such trees are
// valid but usually a mistake.
func Duplicates(r *Registry) []Duplicate {
	var out []Duplicate
	for _, name := range r.Names() {
		out = append(out, duplicates(name, nil, r.sidebars[name])...)
	}
	return out
}

func duplicates(name string, path []string, entries []Entry) []Duplicate {
	var out []Duplicate
	seen := make(map[string]bool)
	for _, e := range entries {
		if !e.IsCategory() {
			continue
		}
		if seen[e.Label] {
			out = append(out, Duplicate{Sidebar: name, Path: path, Label: e.Label})
		}
		seen[e.Label] = true
		out = append(out, duplicates(name, append(path[:len(path):len(path)], e.Label), e.Items)...)
	}
	return out
}
