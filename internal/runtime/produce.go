package runtime

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/alfredjeanlab/synth/internal/errkit"
	"github.com/alfredjeanlab/synth/internal/faker"
	"github.com/alfredjeanlab/synth/internal/randsrc"
	"github.com/alfredjeanlab/synth/internal/schema"
	"github.com/alfredjeanlab/synth/internal/value"
)

// ProduceRecord evaluates root (a collection's top-level object node) into
// one record, clearing the same-record scratch state left by the previous
// record first. Same-collection same_as references only ever see values
// produced since the last ProduceRecord call (spec.md §4.3's same-record
// resolution mode).
func ProduceRecord(inv *Invocation, src *randsrc.Source, root *schema.Node) (value.Value, error) {
	inv.beginRecord()
	return Produce(inv, src, root)
}

// Produce evaluates n into a Value, applying its optional/unique modifiers
// around the variant-specific generation in produceVariant (spec.md §4.2),
// then records the result under n.Path so a same-collection same_as
// elsewhere in this record can read it directly.
func Produce(inv *Invocation, src *randsrc.Source, n *schema.Node) (value.Value, error) {
	v, err := produceUnique(inv, src, n)
	if err != nil {
		return value.Value{}, err
	}
	inv.record[n.Path] = v
	return v, nil
}

func produceUnique(inv *Invocation, src *randsrc.Source, n *schema.Node) (value.Value, error) {
	if !n.Unique {
		return produceBase(inv, src, n)
	}

	seen := inv.seenSet(n.Path)
	for attempt := 0; attempt < maxUniqueAttempts; attempt++ {
		v, err := produceBase(inv, src, n)
		if err != nil {
			return value.Value{}, err
		}
		k := value.Key(v)
		if !seen[k] {
			seen[k] = true
			return v, nil
		}
	}
	return value.Value{}, errkit.Uniqueness(n.Path, maxUniqueAttempts)
}

// produceBase applies the optional modifier and then dispatches on Kind.
// When Optional is set, the Null-or-value draw is taken first, before any
// delegation; a Null outcome returns without evaluating the node, so the
// node's own draws are taken only when it produces a value.
func produceBase(inv *Invocation, src *randsrc.Source, n *schema.Node) (value.Value, error) {
	if n.Optional != nil {
		isNull := src.Bool(*n.Optional)
		if isNull {
			return value.Null, nil
		}
	}
	return produceVariant(inv, src, n)
}

func produceVariant(inv *Invocation, src *randsrc.Source, n *schema.Node) (value.Value, error) {
	switch n.Kind {
	case schema.KindNull:
		return value.Null, nil
	case schema.KindBool:
		return value.NewBool(src.Bool(n.Bool.Frequency)), nil
	case schema.KindNumber:
		return produceNumber(inv, src, n)
	case schema.KindString:
		return produceString(inv, src, n)
	case schema.KindDateTime:
		return produceDateTime(src, n)
	case schema.KindObject:
		return produceObject(inv, src, n)
	case schema.KindArray:
		return produceArray(inv, src, n)
	case schema.KindOneOf:
		return produceOneOf(inv, src, n)
	case schema.KindSameAs:
		return produceSameAs(inv, src, n)
	default:
		return value.Value{}, errkit.Generation(n.Path, nil, "unhandled node kind")
	}
}

func produceNumber(inv *Invocation, src *randsrc.Source, n *schema.Node) (value.Value, error) {
	num := n.Number
	var f float64
	switch num.Variant {
	case schema.NumberRange:
		if num.Subtype.IsInteger() {
			steps := int64((num.High-num.Low)/num.Step) + 1
			if !num.IncludeHigh {
				steps--
			}
			if steps < 1 {
				steps = 1
			}
			k := src.IntRange(0, steps)
			f = num.Low + float64(k)*num.Step
		} else {
			span := num.High - num.Low
			f = num.Low + src.Float64()*span
		}
	case schema.NumberConstant:
		f = num.Constant
		if num.Subtype.IsInteger() && f != math.Trunc(f) {
			return value.Value{}, errkit.Generation(n.Path, nil, "constant %v is not an integer but subtype is %s", f, num.Subtype)
		}
	case schema.NumberID:
		id := inv.nextID(n.Path, num.StartAt)
		if id > num.Subtype.Max() {
			return value.Value{}, errkit.Overflow(n.Path)
		}
		f = float64(id)
	case schema.NumberDistribution:
		if num.DistKind == "normal" {
			f = src.Normal(num.Mean, num.StdDev)
			if num.High > num.Low {
				f = math.Min(math.Max(f, num.Low), num.High)
			}
		} else {
			f = num.Low + src.Float64()*(num.High-num.Low)
		}
	}
	if num.Subtype.IsInteger() {
		return value.NewInt(int64(f)), nil
	}
	return value.NewFloat(f), nil
}

func produceString(inv *Invocation, src *randsrc.Source, n *schema.Node) (value.Value, error) {
	s := n.String
	switch s.Variant {
	case schema.StringPattern:
		return value.NewString(s.Pattern.Generate(src)), nil
	case schema.StringFaker:
		out, err := faker.Generate(src, n.Path, s.FakerGenerator, s.FakerLocale, s.FakerArgs)
		if err != nil {
			return value.Value{}, err
		}
		return value.NewString(out), nil
	case schema.StringCategorical:
		return value.NewString(pickWeightedString(src, s.CategoricalWeights)), nil
	case schema.StringUUID:
		id, err := uuid.NewRandomFromReader(src.AsReader())
		if err != nil {
			return value.Value{}, errkit.Generation(n.Path, err, "generating uuid")
		}
		return value.NewString(id.String()), nil
	case schema.StringFormat:
		return produceFormat(inv, src, n)
	case schema.StringSerialized:
		return produceSerialized(inv, src, n)
	default:
		return value.Value{}, errkit.Generation(n.Path, nil, "unhandled string variant")
	}
}

func pickWeightedString(src *randsrc.Source, weights []schema.WeightedString) string {
	var total float64
	for _, w := range weights {
		total += w.Weight
	}
	roll := src.Float64() * total
	for _, w := range weights {
		if roll < w.Weight {
			return w.Value
		}
		roll -= w.Weight
	}
	return weights[len(weights)-1].Value
}

func produceFormat(inv *Invocation, src *randsrc.Source, n *schema.Node) (value.Value, error) {
	s := n.String
	out := s.FormatTemplate
	for name, child := range s.FormatChildren {
		v, err := Produce(inv, src.Split(name), child)
		if err != nil {
			return value.Value{}, err
		}
		out = strings.ReplaceAll(out, "{"+name+"}", displayString(v))
	}
	return value.NewString(out), nil
}

func produceSerialized(inv *Invocation, src *randsrc.Source, n *schema.Node) (value.Value, error) {
	s := n.String
	inner, err := Produce(inv, src.Split("serialized"), s.SerializedInner)
	if err != nil {
		return value.Value{}, err
	}
	switch s.SerializedEncoding {
	case "json", "":
		return value.NewString(string(value.JSON(inner))), nil
	default:
		return value.Value{}, errkit.Configuration(n.Path, "unsupported serialized encoding %q", s.SerializedEncoding)
	}
}

func produceDateTime(src *randsrc.Source, n *schema.Node) (value.Value, error) {
	dt := n.DateTime
	span := dt.End.Sub(dt.Begin)
	offset := time.Duration(src.Float64() * float64(span))
	t := dt.Begin.Add(offset)
	if dt.Subtype == schema.SubtypeNaiveDate {
		t = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	}
	return value.NewDateTime(t, dt.Format), nil
}

func produceObject(inv *Invocation, src *randsrc.Source, n *schema.Node) (value.Value, error) {
	fields := n.Object.Fields
	order, err := sameRecordFieldOrder(rootCollection(n.Path), fields)
	if err != nil {
		return value.Value{}, err
	}

	values := make([]value.Value, len(fields))
	for _, idx := range order {
		f := fields[idx]
		v, err := Produce(inv, src.Split(f.Name), f.Node)
		if err != nil {
			return value.Value{}, err
		}
		values[idx] = v
	}

	out := make([]value.Field, len(fields))
	for i, f := range fields {
		out[i] = value.Field{Name: f.Name, Value: values[i]}
	}
	return value.NewObject(out), nil
}

// rootCollection returns the collection name a dotted node path belongs to:
// its segment before the first '.', or the whole path if it has none (a
// collection root itself).
func rootCollection(path string) string {
	if i := strings.IndexByte(path, '.'); i >= 0 {
		return path[:i]
	}
	return path
}

// sameRecordFieldOrder returns fields' indices in an order where every
// field that a sibling's subtree same_as-references (within collection) is
// evaluated first, so produceSameAs's same-record lookup always finds its
// target already in Invocation.record. Declared (lexicographic) order is
// used wherever no dependency forces otherwise.
func sameRecordFieldOrder(collection string, fields []schema.FieldNode) ([]int, error) {
	deps := make(map[int][]int)
	for i, f := range fields {
		for _, target := range sameCollectionTargets(collection, f.Node) {
			for j, sibling := range fields {
				if j != i && pathContains(sibling.Node.Path, target) {
					deps[i] = append(deps[i], j)
				}
			}
		}
	}

	order := make([]int, 0, len(fields))
	state := make([]int, len(fields)) // 0 unvisited, 1 visiting, 2 done
	var visit func(i int) error
	visit = func(i int) error {
		switch state[i] {
		case 2:
			return nil
		case 1:
			return errkit.Configuration(fields[i].Node.Path, "same_as reference cycle among sibling fields")
		}
		state[i] = 1
		for _, dep := range deps[i] {
			if err := visit(dep); err != nil {
				return err
			}
		}
		state[i] = 2
		order = append(order, i)
		return nil
	}
	for i := range fields {
		if err := visit(i); err != nil {
			return nil, err
		}
	}
	return order, nil
}

// sameCollectionTargets walks n's subtree collecting the target path of
// every same_as node that references collection (its own collection).
func sameCollectionTargets(collection string, n *schema.Node) []string {
	var out []string
	var walk func(n *schema.Node)
	walk = func(n *schema.Node) {
		if n == nil {
			return
		}
		switch n.Kind {
		case schema.KindSameAs:
			if n.SameAs.Target.Collection == collection {
				out = append(out, n.SameAs.Target.Key())
			}
		case schema.KindObject:
			for _, f := range n.Object.Fields {
				walk(f.Node)
			}
		case schema.KindArray:
			walk(n.Array.Length)
			walk(n.Array.Content)
		case schema.KindOneOf:
			for _, v := range n.OneOf.Variants {
				walk(v.Node)
			}
		case schema.KindString:
			if n.String.Variant == schema.StringFormat {
				for _, child := range n.String.FormatChildren {
					walk(child)
				}
			}
			if n.String.Variant == schema.StringSerialized {
				walk(n.String.SerializedInner)
			}
		}
	}
	walk(n)
	return out
}

// pathContains reports whether target is root itself or a descendant of it
// in the dotted-path tree.
func pathContains(root, target string) bool {
	return root == target || strings.HasPrefix(target, root+".")
}

func produceArray(inv *Invocation, src *randsrc.Source, n *schema.Node) (value.Value, error) {
	lengthVal, err := Produce(inv, src.Split("length"), n.Array.Length)
	if err != nil {
		return value.Value{}, err
	}
	if lengthVal.Kind != value.KindNumber {
		return value.Value{}, errkit.Generation(n.Path, nil, "array length generator did not produce a number")
	}
	if lengthVal.Number != math.Trunc(lengthVal.Number) {
		return value.Value{}, errkit.Generation(n.Path, nil, "array length %v is not an integer", lengthVal.Number)
	}
	if lengthVal.Number < 0 {
		return value.Value{}, errkit.Generation(n.Path, nil, "array length %v is negative", lengthVal.Number)
	}
	length := int(lengthVal.Number)
	if length > MaxArrayLength {
		return value.Value{}, errkit.Generation(n.Path, nil, "array length %d exceeds the %d element bound", length, MaxArrayLength)
	}

	elems := make([]value.Value, length)
	for i := 0; i < length; i++ {
		v, err := Produce(inv, src.Child(i), n.Array.Content)
		if err != nil {
			return value.Value{}, err
		}
		elems[i] = v
	}
	return value.NewArray(elems), nil
}

func produceOneOf(inv *Invocation, src *randsrc.Source, n *schema.Node) (value.Value, error) {
	variants := n.OneOf.Variants
	var total float64
	for _, v := range variants {
		total += v.Weight
	}
	roll := src.Float64() * total
	for i, v := range variants {
		if roll < v.Weight || i == len(variants)-1 {
			return Produce(inv, src.Split("one_of"), v.Node)
		}
		roll -= v.Weight
	}
	return value.Value{}, errkit.Generation(n.Path, nil, "one_of failed to select a variant")
}

func produceSameAs(inv *Invocation, src *randsrc.Source, n *schema.Node) (value.Value, error) {
	target := n.SameAs.Resolved
	if target == nil {
		return value.Value{}, errkit.Configuration(n.Path, "reference %q was never resolved", n.SameAs.Ref)
	}

	// Same-record mode (spec.md §4.3): a reference into the referrer's own
	// collection reads a sibling already produced for the current record,
	// never a pool sampled from some other (earlier or later) record.
	if n.SameAs.Target.Collection == rootCollection(n.Path) {
		v, ok := inv.record[target.Path]
		if !ok {
			return value.Value{}, errkit.Generation(n.Path, nil, "same-record reference %q has not been produced yet; move it earlier among its siblings", n.SameAs.Ref)
		}
		return v, nil
	}

	// Precomputed mode: target is a different, already fully-generated
	// collection; sample from its cached value pool.
	v, ok := inv.samplePool(src, target, n.Path, n.Unique)
	if !ok {
		return value.Value{}, errkit.Generation(n.Path, nil, "no generated values available for reference %q", n.SameAs.Ref)
	}
	return v, nil
}

// displayString renders v as the token substituted into a string.format
// template. Non-string kinds use a plain, locale-independent rendering.
func displayString(v value.Value) string {
	switch v.Kind {
	case value.KindString:
		return v.Str
	case value.KindBool:
		if v.Bool {
			return "true"
		}
		return "false"
	case value.KindNumber:
		if v.Int {
			return strconv.FormatInt(int64(v.Number), 10)
		}
		return strconv.FormatFloat(v.Number, 'f', -1, 64)
	case value.KindDateTime:
		return v.Time.Format(v.TimeForm)
	case value.KindNull:
		return ""
	default:
		return string(value.JSON(v))
	}
}
