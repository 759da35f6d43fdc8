package schema

import (
	"strconv"
	"strings"

	"github.com/alfredjeanlab/synth/internal/errkit"
)

// SegmentKind tags one step of a Path.
type SegmentKind int

const (
	SegField SegmentKind = iota
	SegContent
	SegIndex
)

// Segment is one dotted step after the collection name: a field name, the
// literal "content" (descend into an array's element generator), or an
// integer index.
type Segment struct {
	Kind  SegmentKind
	Name  string
	Index int
}

func (s Segment) String() string {
	switch s.Kind {
	case SegContent:
		return "content"
	case SegIndex:
		return strconv.Itoa(s.Index)
	default:
		return s.Name
	}
}

// Path is a parsed "@Collection.seg.seg..." reference, per spec.md §3/§6.
type Path struct {
	Collection string
	Segments   []Segment
	Raw        string
}

func (p Path) String() string { return p.Raw }

// Key renders the path without its leading "@", suitable as a registry
// lookup key into the namespace's flat node table.
func (p Path) Key() string {
	var b strings.Builder
	b.WriteString(p.Collection)
	for _, s := range p.Segments {
		b.WriteByte('.')
		b.WriteString(s.String())
	}
	return b.String()
}

// IsSameAsRef reports whether s is shorthand for a same_as node: any string
// beginning with "@" wherever a generator is expected (spec.md §6).
func IsSameAsRef(s string) bool {
	return strings.HasPrefix(s, "@")
}

// ParsePath parses the reference grammar
// "@<Collection>(.<segment>)+" where each segment is a field name, the
// literal "content", or an integer index.
func ParsePath(raw string) (Path, error) {
	if !strings.HasPrefix(raw, "@") {
		return Path{}, errkit.Configuration("", "reference %q must start with '@'", raw)
	}
	body := raw[1:]
	parts := strings.Split(body, ".")
	if len(parts) < 2 || parts[0] == "" {
		return Path{}, errkit.Configuration("", "reference %q must be @Collection.segment...", raw)
	}

	p := Path{Collection: parts[0], Raw: raw}
	for _, part := range parts[1:] {
		if part == "" {
			return Path{}, errkit.Configuration("", "reference %q has an empty segment", raw)
		}
		if part == "content" {
			p.Segments = append(p.Segments, Segment{Kind: SegContent})
			continue
		}
		if n, err := strconv.Atoi(part); err == nil {
			p.Segments = append(p.Segments, Segment{Kind: SegIndex, Index: n})
			continue
		}
		p.Segments = append(p.Segments, Segment{Kind: SegField, Name: part})
	}
	return p, nil
}
