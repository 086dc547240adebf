package sidebar

// Kind identifies which variant an Entry holds.
type Kind int

const (
	// KindDoc is a reference to a document known to the site framework.
	KindDoc Kind = iota

	// KindCategory is a labeled group of child entries.
	KindCategory
)

// String returns the wire name of the kind.
func (k Kind) String() string {
	switch k {
	case KindDoc:
		return typeDoc
	case KindCategory:
		return typeCategory
	default:
		return "unknown"
	}
}

// Entry represents an individual node in a sidebar, which is either a
// document reference or a category containing further entries.
type Entry struct {
	// Kind selects the variant.
	Kind Kind

	// ID is the document identifier. Only set for KindDoc.
	ID string

	// Label is the category title, or an optional display override for a doc.
	Label string

	// Collapsible controls whether a category can be folded. Nil leaves
	// the decision to the site framework.
	Collapsible *bool

	// Collapsed controls whether a category starts folded. Nil leaves
	// the decision to the site framework.
	Collapsed *bool

	// Items are the children of a category, in display order.
	Items []Entry
}

// CategoryOption adjusts a category created with Category.
type CategoryOption func(*Entry)

// Doc returns a reference to the document with the given identifier.
func Doc(id string) Entry {
	return Entry{Kind: KindDoc, ID: id}
}

// LabeledDoc returns a document reference whose sidebar label overrides
// the document title.
func LabeledDoc(id, label string) Entry {
	return Entry{Kind: KindDoc, ID: id, Label: label}
}

// Category returns a labeled group of entries.
func Category(label string, items ...Entry) Entry {
	return Entry{Kind: KindCategory, Label: label, Items: items}
}

// With applies category options and returns the modified copy.
func (e Entry) With(opts ...CategoryOption) Entry {
	for _, opt := range opts {
		opt(&e)
	}
	return e
}

// Collapsed starts the category folded.
func Collapsed() CategoryOption {
	return func(e *Entry) { e.Collapsed = boolPtr(true) }
}

// Expanded starts the category unfolded.
func Expanded() CategoryOption {
	return func(e *Entry) { e.Collapsed = boolPtr(false) }
}

// NotCollapsible keeps the category permanently unfolded.
func NotCollapsible() CategoryOption {
	return func(e *Entry) { e.Collapsible = boolPtr(false) }
}

// IsDoc reports whether the entry is a document reference.
func (e Entry) IsDoc() bool { return e.Kind == KindDoc }

// IsCategory reports whether the entry is a category.
func (e Entry) IsCategory() bool { return e.Kind == KindCategory }

// Clone returns a deep copy of the entry.
func (e Entry) Clone() Entry {
	out := e
	if e.Collapsible != nil {
		out.Collapsible = boolPtr(*e.Collapsible)
	}
	if e.Collapsed != nil {
		out.Collapsed = boolPtr(*e.Collapsed)
	}
	out.Items = cloneEntries(e.Items)
	return out
}

func cloneEntries(in []Entry) []Entry {
	if in == nil {
		return nil
	}
	out := make([]Entry, len(in))
	for i := range in {
		out[i] = in[i].Clone()
	}
	return out
}

func boolPtr(b bool) *bool { return &b }
