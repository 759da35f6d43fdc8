package schema

import (
	"fmt"
	"sort"
	"time"

	"github.com/alfredjeanlab/synth/internal/errkit"
)

// reservedKeys are object keys that are never treated as field names when
// parsing a "type": "object" node (spec.md §6: "one field per key").
var reservedKeys = map[string]bool{
	"type": true, "optional": true, "unique": true,
}

// ParseNode compiles one JSON-shaped document node (as produced by
// encoding/json's map[string]any decoding) into a generator Node, tagging
// every node with its dotted diagnostic path.
func ParseNode(raw any, path string) (*Node, error) {
	if s, ok := raw.(string); ok && IsSameAsRef(s) {
		return parseSameAsShorthand(s, path)
	}

	doc, ok := raw.(map[string]any)
	if !ok {
		return nil, errkit.Configuration(path, "expected a generator object or \"@...\" reference, got %T", raw)
	}

	typeName, ok := doc["type"].(string)
	if !ok {
		return nil, errkit.Configuration(path, "missing required \"type\" field")
	}

	n := &Node{Path: path}
	if err := applyModifiers(n, doc, path); err != nil {
		return nil, err
	}

	var err error
	switch typeName {
	case "null":
		n.Kind = KindNull
	case "bool":
		n.Kind = KindBool
		n.Bool, err = parseBool(doc, path)
	case "number":
		n.Kind = KindNumber
		n.Number, err = parseNumber(doc, path)
	case "string":
		n.Kind = KindString
		n.String, err = parseString(doc, path)
	case "date_time":
		n.Kind = KindDateTime
		n.DateTime, err = parseDateTime(doc, path)
	case "object":
		n.Kind = KindObject
		n.Object, err = parseObject(doc, path)
	case "array":
		n.Kind = KindArray
		n.Array, err = parseArray(doc, path)
	case "one_of":
		n.Kind = KindOneOf
		n.OneOf, err = parseOneOf(doc, path)
	case "same_as":
		n.Kind = KindSameAs
		n.SameAs, err = parseSameAs(doc, path)
	default:
		return nil, errkit.Configuration(path, "unrecognized type %q", typeName)
	}
	if err != nil {
		return nil, err
	}
	return n, nil
}

func parseSameAsShorthand(raw, path string) (*Node, error) {
	p, err := ParsePath(raw)
	if err != nil {
		return nil, err
	}
	return &Node{
		Kind:   KindSameAs,
		Path:   path,
		SameAs: &SameAsNode{Ref: raw, Target: p},
	}, nil
}

func applyModifiers(n *Node, doc map[string]any, path string) error {
	if raw, ok := doc["optional"]; ok {
		switch v := raw.(type) {
		case bool:
			if v {
				p := 0.5
				n.Optional = &p
			}
		case float64:
			p := v
			n.Optional = &p
		default:
			return errkit.Configuration(path, "\"optional\" must be a bool or a number")
		}
	}
	if raw, ok := doc["unique"]; ok {
		v, ok := raw.(bool)
		if !ok {
			return errkit.Configuration(path, "\"unique\" must be a bool")
		}
		n.Unique = v
	}
	return nil
}

func parseBool(doc map[string]any, path string) (*BoolNode, error) {
	freq := 0.5
	if raw, ok := doc["frequency"]; ok {
		f, ok := raw.(float64)
		if !ok {
			return nil, errkit.Configuration(path, "\"frequency\" must be a number")
		}
		freq = f
	}
	return &BoolNode{Frequency: freq}, nil
}

func parseNumber(doc map[string]any, path string) (*NumberNode, error) {
	subtype := SubtypeI64
	if raw, ok := doc["subtype"].(string); ok {
		subtype = NumberSubtype(raw)
	}
	n := &NumberNode{Subtype: subtype}

	switch {
	case doc["range"] != nil:
		rg, ok := doc["range"].(map[string]any)
		if !ok {
			return nil, errkit.Configuration(path, "\"range\" must be an object")
		}
		n.Variant = NumberRange
		n.Low, _ = rg["low"].(float64)
		n.High, _ = rg["high"].(float64)
		n.Step, _ = rg["step"].(float64)
		if n.Step == 0 {
			n.Step = 1
		}
		n.IncludeHigh, _ = rg["include_high"].(bool)
		if n.Low == n.High && !n.IncludeHigh {
			return nil, errkit.Configuration(path, "range with low == high requires include_high = true")
		}
	case doc["constant"] != nil:
		c, ok := doc["constant"].(float64)
		if !ok {
			return nil, errkit.Configuration(path, "\"constant\" must be a number")
		}
		n.Variant = NumberConstant
		n.Constant = c
	case doc["id"] != nil:
		n.Variant = NumberID
		n.StartAt = 1
		if idDoc, ok := doc["id"].(map[string]any); ok {
			if sa, ok := idDoc["start_at"].(float64); ok {
				n.StartAt = int64(sa)
			}
		}
	case doc["distribution"] != nil:
		dist, ok := doc["distribution"].(map[string]any)
		if !ok {
			return nil, errkit.Configuration(path, "\"distribution\" must be an object")
		}
		n.Variant = NumberDistribution
		n.DistKind, _ = dist["kind"].(string)
		if n.DistKind == "" {
			n.DistKind = "uniform"
		}
		n.Mean, _ = dist["mean"].(float64)
		n.StdDev, _ = dist["std_dev"].(float64)
		n.Low, _ = dist["low"].(float64)
		n.High, _ = dist["high"].(float64)
	default:
		return nil, errkit.Configuration(path, "number node requires one of range/constant/id/distribution")
	}
	return n, nil
}

func parseString(doc map[string]any, path string) (*StringNode, error) {
	n := &StringNode{}
	switch {
	case doc["pattern"] != nil:
		pat, ok := doc["pattern"].(string)
		if !ok {
			return nil, errkit.Configuration(path, "\"pattern\" must be a string")
		}
		compiled, err := CompilePattern(pat)
		if err != nil {
			return nil, err
		}
		n.Variant = StringPattern
		n.Pattern = compiled
	case doc["faker"] != nil:
		f, ok := doc["faker"].(map[string]any)
		if !ok {
			return nil, errkit.Configuration(path, "\"faker\" must be an object")
		}
		n.Variant = StringFaker
		n.FakerGenerator, _ = f["generator"].(string)
		n.FakerLocale, _ = f["locale"].(string)
		if n.FakerGenerator == "" {
			return nil, errkit.Configuration(path, "\"faker.generator\" is required")
		}
		if args, ok := f["args"].(map[string]any); ok {
			n.FakerArgs = make(map[string]string, len(args))
			for k, v := range args {
				n.FakerArgs[k] = fmt.Sprintf("%v", v)
			}
		}
	case doc["categorical"] != nil:
		cat, ok := doc["categorical"].(map[string]any)
		if !ok {
			return nil, errkit.Configuration(path, "\"categorical\" must be an object of value -> weight")
		}
		n.Variant = StringCategorical
		keys := make([]string, 0, len(cat))
		for k := range cat {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			w, _ := cat[k].(float64)
			n.CategoricalWeights = append(n.CategoricalWeights, WeightedString{Value: k, Weight: w})
		}
	case doc["uuid"] != nil:
		n.Variant = StringUUID
	case doc["format"] != nil:
		f, ok := doc["format"].(map[string]any)
		if !ok {
			return nil, errkit.Configuration(path, "\"format\" must be an object")
		}
		n.Variant = StringFormat
		n.FormatTemplate, _ = f["template"].(string)
		if values, ok := f["values"].(map[string]any); ok {
			n.FormatChildren = make(map[string]*Node, len(values))
			for k, v := range values {
				child, err := ParseNode(v, path+".format."+k)
				if err != nil {
					return nil, err
				}
				n.FormatChildren[k] = child
			}
		}
	case doc["serialized"] != nil:
		s, ok := doc["serialized"].(map[string]any)
		if !ok {
			return nil, errkit.Configuration(path, "\"serialized\" must be an object")
		}
		inner, err := ParseNode(s["content"], path+".serialized")
		if err != nil {
			return nil, err
		}
		n.Variant = StringSerialized
		n.SerializedInner = inner
		n.SerializedEncoding, _ = s["encoding"].(string)
		if n.SerializedEncoding == "" {
			n.SerializedEncoding = "json"
		}
	default:
		return nil, errkit.Configuration(path, "string node requires one of pattern/faker/categorical/uuid/format/serialized")
	}
	return n, nil
}

func parseDateTime(doc map[string]any, path string) (*DateTimeNode, error) {
	format, ok := doc["format"].(string)
	if !ok || format == "" {
		return nil, errkit.Configuration(path, "\"format\" is required")
	}
	n := &DateTimeNode{Format: format, Begin: time.Unix(0, 0).UTC(), End: time.Now().UTC()}

	if raw, ok := doc["subtype"].(string); ok {
		n.Subtype = DateTimeSubtype(raw)
	} else {
		n.Subtype = SubtypeNaiveDateTime
	}
	if raw, ok := doc["begin"].(string); ok {
		t, err := time.Parse(format, raw)
		if err != nil {
			return nil, errkit.Configuration(path, "\"begin\" %q does not match format %q: %v", raw, format, err)
		}
		n.Begin = t
	}
	if raw, ok := doc["end"].(string); ok {
		t, err := time.Parse(format, raw)
		if err != nil {
			return nil, errkit.Configuration(path, "\"end\" %q does not match format %q: %v", raw, format, err)
		}
		n.End = t
	}
	if !n.End.After(n.Begin) {
		return nil, errkit.Configuration(path, "\"end\" must be after \"begin\"")
	}
	return n, nil
}

func parseObject(doc map[string]any, path string) (*ObjectNode, error) {
	var names []string
	for k := range doc {
		if reservedKeys[k] {
			continue
		}
		names = append(names, k)
	}
	if len(names) == 0 {
		return nil, errkit.Configuration(path, "object node declares no fields")
	}
	// Field keys are sorted here only to give output a deterministic
	// default order; encoding/json's map decoding does not preserve source
	// order. The evaluation order actually used at runtime is decided by
	// runtime.produceObject, which reorders same-collection same_as
	// dependencies ahead of their referrers regardless of this sort.
	sort.Strings(names)

	obj := &ObjectNode{}
	for _, name := range names {
		child, err := ParseNode(doc[name], path+"."+name)
		if err != nil {
			return nil, err
		}
		obj.Fields = append(obj.Fields, FieldNode{Name: name, Node: child})
	}
	return obj, nil
}

func parseArray(doc map[string]any, path string) (*ArrayNode, error) {
	lengthRaw, ok := doc["length"]
	if !ok {
		return nil, errkit.Configuration(path, "\"length\" is required")
	}
	contentRaw, ok := doc["content"]
	if !ok {
		return nil, errkit.Configuration(path, "\"content\" is required")
	}
	length, err := ParseNode(lengthRaw, path+".length")
	if err != nil {
		return nil, err
	}
	if length.Kind != KindNumber && length.Kind != KindSameAs {
		return nil, errkit.Configuration(path, "\"length\" must be a number-kind generator")
	}
	content, err := ParseNode(contentRaw, path+".content")
	if err != nil {
		return nil, err
	}
	return &ArrayNode{Length: length, Content: content}, nil
}

func parseOneOf(doc map[string]any, path string) (*OneOfNode, error) {
	variants, ok := doc["variants"].([]any)
	if !ok || len(variants) == 0 {
		return nil, errkit.Configuration(path, "\"variants\" must be a non-empty array")
	}
	var total float64
	n := &OneOfNode{}
	for i, raw := range variants {
		v, ok := raw.(map[string]any)
		if !ok {
			return nil, errkit.Configuration(path, "variant %d must be an object", i)
		}
		weight := 1.0
		if w, ok := v["weight"].(float64); ok {
			weight = w
		}
		child, err := ParseNode(v, fmt.Sprintf("%s.variants[%d]", path, i))
		if err != nil {
			return nil, err
		}
		total += weight
		n.Variants = append(n.Variants, WeightedNode{Weight: weight, Node: child})
	}
	if total <= 0 {
		return nil, errkit.Configuration(path, "one_of has zero total weight")
	}
	return n, nil
}

func parseSameAs(doc map[string]any, path string) (*SameAsNode, error) {
	ref, ok := doc["ref"].(string)
	if !ok || ref == "" {
		return nil, errkit.Configuration(path, "\"ref\" is required")
	}
	p, err := ParsePath(ref)
	if err != nil {
		return nil, err
	}
	return &SameAsNode{Ref: ref, Target: p}, nil
}
