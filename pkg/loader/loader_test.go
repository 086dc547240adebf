package loader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/enclava/sidebars/pkg/sidebar"
	"github.com/enclava/sidebars/pkg/site"
)

func TestLoadFormats(t *testing.T) {
	want := site.Registry().Export()

	for _, path := range []string{
		"testdata/sidebars.json",
		"testdata/sidebars.yaml",
		"testdata/sidebars.toml",
	} {
		t.Run(path, func(t *testing.T) {
			r, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, want, r.Export())
		})
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		wantErr  error
		contains string
	}{
		{name: "unsupported extension", path: "testdata/sidebars.ini", wantErr: ErrUnsupportedFormat},
		{name: "missing file", path: "testdata/missing.yaml", contains: "failed to read sidebars"},
		{name: "malformed json", path: "testdata/malformed.json", contains: "failed to parse JSON"},
		{name: "schema violation", path: "testdata/invalid.yaml", contains: "schema validation failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.path)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			if tt.contains != "" {
				assert.Contains(t, err.Error(), tt.contains)
			}
		})
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		format  Format
		want    map[string][]sidebar.Entry
		wantErr bool
	}{
		{
			name:   "several sidebars",
			data:   `{"api": ["api/intro"], "docs": ["intro", {"type": "doc", "id": "faq", "label": "FAQ"}]}`,
			format: FormatJSON,
			want: map[string][]sidebar.Entry{
				"api":  {sidebar.Doc("api/intro")},
				"docs": {sidebar.Doc("intro"), sidebar.LabeledDoc("faq", "FAQ")},
			},
		},
		{
			name:   "empty yaml document",
			data:   "",
			format: FormatYAML,
			want:   map[string][]sidebar.Entry{},
		},
		{
			name:   "collapsed category in toml",
			data:   `docs = [{ type = "category", label = "Guides", collapsed = true, items = ["a"] }]`,
			format: FormatTOML,
			want: map[string][]sidebar.Entry{
				"docs": {sidebar.Category("Guides", sidebar.Doc("a")).With(sidebar.Collapsed())},
			},
		},
		{
			name:    "empty doc id",
			data:    "docs: ['']",
			format:  FormatYAML,
			wantErr: true,
		},
		{
			name:    "yaml with non-string keys",
			data:    "1: [intro]\n? [a]\n: [b]\n",
			format:  FormatYAML,
			wantErr: true,
		},
		{
			name:    "sidebar defined twice in json",
			data:    `{"docs": ["a"], "docs": ["b"]}`,
			format:  FormatJSON,
			wantErr: true,
		},
		{
			name:    "trailing data after json object",
			data:    `{"docs": ["a"]} {"other": 42} trailing garbage`,
			format:  FormatJSON,
			wantErr: true,
		},
		{
			name:    "invalid toml",
			data:    "docs = [",
			format:  FormatTOML,
			wantErr: true,
		},
		{
			name:    "unknown format",
			data:    "{}",
			format:  Format("xml"),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := Parse([]byte(tt.data), tt.format)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, r.Export())
		})
	}
}

func TestParseTooDeep(t *testing.T) {
	data := `"leaf"`
	for i := 0; i <= sidebar.MaxDepth; i++ {
		data = `{"type": "category", "label": "level", "items": [` + data + `]}`
	}

	_, err := Parse([]byte(`{"docs": [`+data+`]}`), FormatJSON)
	assert.ErrorIs(t, err, sidebar.ErrTooDeep)
}

func TestFormatOf(t *testing.T) {
	tests := map[string]Format{
		"sidebars.json": FormatJSON,
		"sidebars.YAML": FormatYAML,
		"sidebars.yml":  FormatYAML,
		"a/b/c.toml":    FormatTOML,
	}

	for path, want := range tests {
		got, err := FormatOf(path)
		require.NoError(t, err, path)
		assert.Equal(t, want, got, path)
	}

	_, err := FormatOf("sidebars.ts")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestParseJSONDuplicateName(t *testing.T) {
	_, err := Parse([]byte(`{"docs": ["a"], "api": ["x"], "docs": ["b"]}`), FormatJSON)
	require.Error(t, err)
	assert.ErrorIs(t, err, sidebar.ErrDuplicateName)
	assert.Contains(t, err.Error(), `"docs"`)
}

func TestParseJSONDuplicateLabelsAreNotNames(t *testing.T) {
	// repeated keys below the top level belong to items, not sidebar names
	r, err := Parse([]byte(`{"docs": [{"type": "category", "label": "A", "items": ["a"]}, {"type": "category", "label": "A", "items": ["b"]}]}`), FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, []string{"docs"}, r.Names())
}
