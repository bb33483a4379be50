package document

// Section is one entry in a document outline, derived from heading blocks.
type Section struct {
	// Title is the heading text.
	Title string `json:"title"`

	// Page is the 1-based page the heading appears on.
	Page int `json:"page"`

	// Level is the heading depth, 1 for top-level sections.
	Level int `json:"level"`

	// Blocks counts the paragraph blocks between this heading and the next.
	Blocks int `json:"blocks"`

	// Children are nested subsections.
	Children []Section `json:"children,omitempty"`
}

// Outline is the heading hierarchy of a document.
type Outline struct {
	Sections []Section `json:"sections"`
}

// Empty reports whether the outline has no sections.
func (o Outline) Empty() bool { return len(o.Sections) == 0 }

// SectionCount returns the total number of sections, including nested ones.
func (o Outline) SectionCount() int {
	var count func(s []Section) int
	count = func(s []Section) int {
		n := len(s)
		for _, sec := range s {
			n += count(sec.Children)
		}
		return n
	}
	return count(o.Sections)
}
