package types

// ClassTree is one class identity across a contiguous run of versions.
// Elements[i] belongs to version Offset+i. A zero tree means unmapped.
type ClassTree struct {
	Offset   int
	Elements []*ClassMapping
}

func (t ClassTree) Size() int {
	return len(t.Elements)
}

func (t ClassTree) Empty() bool {
	return len(t.Elements) == 0
}

// End is the exclusive upper version index.
func (t ClassTree) End() int {
	return t.Offset + len(t.Elements)
}

func (t ClassTree) Covers(version int) bool {
	return version >= t.Offset && version < t.End()
}

func (t ClassTree) At(version int) (*ClassMapping, bool) {
	if !t.Covers(version) {
		return nil, false
	}
	return t.Elements[version-t.Offset], true
}

// Originals lists the obfuscated name of every element.
func (t ClassTree) Originals() []string {
	out := make([]string, 0, len(t.Elements))
	for _, element := range t.Elements {
		out = append(out, element.Original)
	}
	return out
}

// MemberTree is one field or method identity across a contiguous run of
// versions, nested inside the range of its owning class tree.
type MemberTree struct {
	Kind     MemberKind
	Offset   int
	Elements []*MemberMapping
	Owners   []*ClassMapping
}

func (t MemberTree) Size() int {
	return len(t.Elements)
}

func (t MemberTree) Empty() bool {
	return len(t.Elements) == 0
}

func (t MemberTree) End() int {
	return t.Offset + len(t.Elements)
}

func (t MemberTree) Covers(version int) bool {
	return version >= t.Offset && version < t.End()
}

func (t MemberTree) At(version int) (*MemberMapping, bool) {
	if !t.Covers(version) {
		return nil, false
	}
	return t.Elements[version-t.Offset], true
}

func (t MemberTree) Originals() []string {
	out := make([]string, 0, len(t.Elements))
	for _, element := range t.Elements {
		out = append(out, element.Original)
	}
	return out
}

// ClassLineage joins the non-overlapping trees of a multi-root
// resolution in ascending version order.
type ClassLineage struct {
	Segments []ClassTree
}

func (l ClassLineage) Empty() bool {
	return len(l.Segments) == 0
}

// Size counts covered versions across all segments.
func (l ClassLineage) Size() int {
	total := 0
	for _, segment := range l.Segments {
		total += segment.Size()
	}
	return total
}

func (l ClassLineage) Offset() int {
	if len(l.Segments) == 0 {
		return 0
	}
	return l.Segments[0].Offset
}

func (l ClassLineage) End() int {
	if len(l.Segments) == 0 {
		return 0
	}
	return l.Segments[len(l.Segments)-1].End()
}

func (l ClassLineage) At(version int) (*ClassMapping, bool) {
	for _, segment := range l.Segments {
		if element, ok := segment.At(version); ok {
			return element, true
		}
	}
	return nil, false
}

type MemberLineage struct {
	Segments []MemberTree
}

func (l MemberLineage) Empty() bool {
	return len(l.Segments) == 0
}

func (l MemberLineage) Size() int {
	total := 0
	for _, segment := range l.Segments {
		total += segment.Size()
	}
	return total
}

func (l MemberLineage) Offset() int {
	if len(l.Segments) == 0 {
		return 0
	}
	return l.Segments[0].Offset
}

func (l MemberLineage) End() int {
	if len(l.Segments) == 0 {
		return 0
	}
	return l.Segments[len(l.Segments)-1].End()
}

func (l MemberLineage) At(version int) (*MemberMapping, bool) {
	for _, segment := range l.Segments {
		if element, ok := segment.At(version); ok {
			return element, true
		}
	}
	return nil, false
}
