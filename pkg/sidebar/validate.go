package sidebar

import (
	"errors"
	"fmt"
	"strings"
)

// MaxDepth is the deepest category nesting accepted by Validate.
const MaxDepth = 32

var (
	// ErrEmptyDocID is reported for a document reference without identifier.
	ErrEmptyDocID = errors.New("document id must not be empty")

	// ErrEmptyLabel is reported for a category without label.
	ErrEmptyLabel = errors.New("category label must not be empty")

	// ErrEmptyCategory is reported for a category without items.
	ErrEmptyCategory = errors.New("category must contain at least one item")

	// ErrTooDeep is reported when categories nest deeper than MaxDepth.
	ErrTooDeep = fmt.Errorf("categories nested deeper than %d levels", MaxDepth)

	// ErrUnknownKind is reported for an entry whose Kind is neither doc nor category.
	ErrUnknownKind = errors.New("unknown entry kind")
)

// ValidationError locates a structural problem in a sidebar.
type ValidationError struct {
	// Sidebar is the name of the sidebar containing the problem.
	Sidebar string

	// Path is the index path from the sidebar root, e.g. "[2].items[1]".
	Path string

	// Err is one of the sentinel errors above.
	Err error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("sidebar %q at %s: %v", e.Sidebar, e.Path, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Validate checks every sidebar in the registry and returns all problems
// joined together, or nil.
func Validate(r *Registry) error {
	var errs []error
	for _, name := range r.Names() {
		errs = append(errs, validateEntries(name, "", r.sidebars[name], 1)...)
	}
	return errors.Join(errs...)
}

// ValidateEntries checks a single sidebar tree.
func ValidateEntries(name string, entries []Entry) error {
	if name == "" {
		return ErrEmptyName
	}
	return errors.Join(validateEntries(name, "", entries, 1)...)
}

func validateEntries(name, prefix string, entries []Entry, depth int) []error {
	var errs []error
	fail := func(path string, err error) {
		errs = append(errs, &ValidationError{Sidebar: name, Path: path, Err: err})
	}

	for i, e := range entries {
		path := fmt.Sprintf("%s[%d]", prefix, i)

		switch e.Kind {
		case KindDoc:
			if strings.TrimSpace(e.ID) == "" {
				fail(path, ErrEmptyDocID)
			}
		case KindCategory:
			if depth > MaxDepth {
				fail(path, ErrTooDeep)
				continue
			}
			if strings.TrimSpace(e.Label) == "" {
				fail(path+".label", ErrEmptyLabel)
			}
			if len(e.Items) == 0 {
				fail(path+".items", ErrEmptyCategory)
				continue
			}
			errs = append(errs, validateEntries(name, path+".items", e.Items, depth+1)...)
		default:
			fail(path, ErrUnknownKind)
		}
	}

	return errs
}
