package sidebar

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nested(depth int) Entry {
	e := Doc("leaf")
	for i := 0; i < depth; i++ {
		e = Category("level", e)
	}
	return e
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		entries  []Entry
		wantErrs []error
		wantPath []string
	}{
		{
			name:    "valid tree",
			entries: sample().Export()["docs"],
		},
		{
			name:     "empty doc id",
			entries:  []Entry{Doc("intro"), Doc("")},
			wantErrs: []error{ErrEmptyDocID},
			wantPath: []string{"[1]"},
		},
		{
			name:     "blank doc id",
			entries:  []Entry{Doc("  ")},
			wantErrs: []error{ErrEmptyDocID},
			wantPath: []string{"[0]"},
		},
		{
			name:     "empty category",
			entries:  []Entry{Category("Guides")},
			wantErrs: []error{ErrEmptyCategory},
			wantPath: []string{"[0].items"},
		},
		{
			name:     "empty label",
			entries:  []Entry{Category("", Doc("a"))},
			wantErrs: []error{ErrEmptyLabel},
			wantPath: []string{"[0].label"},
		},
		{
			name:     "nested problems are all reported",
			entries:  []Entry{Category("Guides", Doc(""), Category("Deep"))},
			wantErrs: []error{ErrEmptyDocID, ErrEmptyCategory},
			wantPath: []string{"[0].items[0]", "[0].items[1].items"},
		},
		{
			name:     "unknown kind",
			entries:  []Entry{{Kind: Kind(7)}},
			wantErrs: []error{ErrUnknownKind},
			wantPath: []string{"[0]"},
		},
		{
			name:    "deepest allowed nesting",
			entries: []Entry{nested(MaxDepth)},
		},
		{
			name:     "too deep",
			entries:  []Entry{nested(MaxDepth + 1)},
			wantErrs: []error{ErrTooDeep},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEntries("docs", tt.entries)
			if len(tt.wantErrs) == 0 {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			for _, want := range tt.wantErrs {
				assert.ErrorIs(t, err, want)
			}
			for _, path := range tt.wantPath {
				assert.Contains(t, err.Error(), path)
			}
		})
	}
}

func TestValidateRegistry(t *testing.T) {
	r := New().
		MustDefine("good", Doc("intro")).
		MustDefine("bad", Category("Empty"))

	err := Validate(r)
	require.Error(t, err)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "bad", verr.Sidebar)
	assert.Equal(t, "[0].items", verr.Path)
	assert.ErrorIs(t, verr, ErrEmptyCategory)
	assert.True(t, strings.HasPrefix(verr.Error(), `sidebar "bad" at [0].items`))
}

func TestValidateEntriesEmptyName(t *testing.T) {
	assert.ErrorIs(t, ValidateEntries("", []Entry{Doc("a")}), ErrEmptyName)
}

func TestDuplicates(t *testing.T) {
	r := New().MustDefine("docs",
		Category("Guides", Doc("a")),
		Category("Guides", Doc("b")),
		Category("Reference",
			Category("API", Doc("c")),
			Category("API", Doc("d")),
		),
	)

	dups := Duplicates(r)
	require.Len(t, dups, 2)
	assert.Equal(t, Duplicate{Sidebar: "docs", Label: "Guides"}, dups[0])
	assert.Equal(t, Duplicate{Sidebar: "docs", Path: []string{"Reference"}, Label: "API"}, dups[1])

	// duplicates are a warning, not a validation failure
	assert.NoError(t, Validate(r))
}
