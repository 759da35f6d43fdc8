// Package schema parses the JSON-shaped schema document tree (spec.md §6)
// into a closed tagged variant of generator nodes (spec.md §9's preferred
// re-architecture), each dispatched by a single discriminator instead of
// dynamic dispatch.
package schema

import "time"

// Kind discriminates a Node's variant.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindDateTime
	KindObject
	KindArray
	KindOneOf
	KindSameAs
)

// Node is one generator in the tree. Exactly one of the variant-specific
// fields matching Kind is populated.
type Node struct {
	Kind Kind
	// Path is this node's dotted diagnostic path, e.g. "users.email".
	Path string

	// Optional, when non-nil, wraps this node to emit Null with the given
	// probability instead of delegating (spec.md §4.2). Resolved convention:
	// the probability is of Null, per SPEC_FULL.md §3.
	Optional *float64
	// Unique marks that this node's outputs must be pairwise distinct over
	// the run (spec.md §4.2).
	Unique bool

	Bool     *BoolNode
	Number   *NumberNode
	String   *StringNode
	DateTime *DateTimeNode
	Object   *ObjectNode
	Array    *ArrayNode
	OneOf    *OneOfNode
	SameAs   *SameAsNode
}

// BoolNode is a Bernoulli draw.
type BoolNode struct {
	Frequency float64
}

// NumberSubtype bounds the realized numeric range and integer-ness.
type NumberSubtype string

const (
	SubtypeI32 NumberSubtype = "i32"
	SubtypeI64 NumberSubtype = "i64"
	SubtypeU32 NumberSubtype = "u32"
	SubtypeU64 NumberSubtype = "u64"
	SubtypeF32 NumberSubtype = "f32"
	SubtypeF64 NumberSubtype = "f64"
)

// IsInteger reports whether the subtype renders without a fractional part.
func (s NumberSubtype) IsInteger() bool {
	switch s {
	case SubtypeI32, SubtypeI64, SubtypeU32, SubtypeU64:
		return true
	}
	return false
}

// Max returns the subtype's maximum representable value, used to detect
// Id-counter overflow (spec.md §4.1).
func (s NumberSubtype) Max() int64 {
	switch s {
	case SubtypeI32:
		return 1<<31 - 1
	case SubtypeU32:
		return 1<<32 - 1
	default:
		return 1<<63 - 1
	}
}

// NumberVariant discriminates how a NumberNode produces its value.
type NumberVariant int

const (
	NumberRange NumberVariant = iota
	NumberConstant
	NumberID
	NumberDistribution
)

type NumberNode struct {
	Subtype NumberSubtype
	Variant NumberVariant

	// NumberRange
	Low, High   float64
	Step        float64
	IncludeHigh bool

	// NumberConstant
	Constant float64

	// NumberID
	StartAt int64

	// NumberDistribution
	DistKind string // "normal" | "uniform"
	Mean     float64
	StdDev   float64
}

// StringVariant discriminates how a StringNode produces its value.
type StringVariant int

const (
	StringPattern StringVariant = iota
	StringFaker
	StringCategorical
	StringUUID
	StringFormat
	StringSerialized
)

type StringNode struct {
	Variant StringVariant

	Pattern *Pattern

	FakerGenerator string
	FakerLocale    string
	FakerArgs      map[string]string

	CategoricalWeights []WeightedString

	// StringFormat
	FormatTemplate string
	FormatChildren map[string]*Node

	// StringSerialized
	SerializedInner    *Node
	SerializedEncoding string // "json"; any other encoding fails when produced
}

type WeightedString struct {
	Value  string
	Weight float64
}

// DateTimeSubtype controls the Go time layout semantics.
type DateTimeSubtype string

const (
	SubtypeNaiveDate     DateTimeSubtype = "naive_date"
	SubtypeNaiveDateTime DateTimeSubtype = "naive_date_time"
	SubtypeZonedDateTime DateTimeSubtype = "date_time"
)

type DateTimeNode struct {
	Format  string
	Begin   time.Time
	End     time.Time
	Subtype DateTimeSubtype
}

type FieldNode struct {
	Name string
	Node *Node
}

type ObjectNode struct {
	Fields []FieldNode
}

type ArrayNode struct {
	Length  *Node
	Content *Node
}

type WeightedNode struct {
	Weight float64
	Node   *Node
}

type OneOfNode struct {
	Variants []WeightedNode
}

// Cardinality estimates the number of distinct values n can produce, and
// reports whether the estimate is a hard bound (rather than "effectively
// unbounded", the default for kinds this doesn't special-case). Used by the
// unique modifier's load-time feasibility pre-check (spec.md §9's
// "Uniqueness memory growth" design note, option (a)).
func (n *Node) Cardinality() (count int64, bounded bool) {
	switch n.Kind {
	case KindBool:
		return 2, true
	case KindNumber:
		if n.Number.Variant == NumberRange && n.Number.Subtype.IsInteger() {
			step := n.Number.Step
			if step <= 0 {
				step = 1
			}
			// The same step count produceNumber draws from.
			count := int64((n.Number.High-n.Number.Low)/step) + 1
			if !n.Number.IncludeHigh {
				count--
			}
			if count < 1 {
				count = 1
			}
			return count, true
		}
		return 0, false
	case KindString:
		switch n.String.Variant {
		case StringCategorical:
			return int64(len(n.String.CategoricalWeights)), true
		case StringPattern:
			return n.String.Pattern.Cardinality(), true
		default:
			return 0, false
		}
	case KindOneOf:
		var total int64
		for _, v := range n.OneOf.Variants {
			sub, ok := v.Node.Cardinality()
			if !ok {
				return 0, false
			}
			total += sub
		}
		return total, true
	default:
		return 0, false
	}
}

// SameAsNode references another node by dotted path. Target is resolved
// by the namespace package once every collection has been parsed.
type SameAsNode struct {
	Ref    string
	Target Path
	// Resolved points at the referenced Node after namespace-level
	// resolution (internal/namespace); nil until then.
	Resolved *Node
}
