package schema

import "testing"

func TestParseNodeBool(t *testing.T) {
	n, err := ParseNode(map[string]any{"type": "bool", "frequency": 0.25}, "flag")
	if err != nil {
		t.Fatalf("ParseNode: %v", err)
	}
	if n.Kind != KindBool || n.Bool.Frequency != 0.25 {
		t.Fatalf("got %+v", n)
	}
}

func TestParseNodeObjectSortsFields(t *testing.T) {
	doc := map[string]any{
		"type": "object",
		"zeta": map[string]any{"type": "null"},
		"alpha": map[string]any{
			"type":  "number",
			"range": map[string]any{"low": 0.0, "high": 1.0, "include_high": true},
		},
		"unique": true,
	}
	n, err := ParseNode(doc, "rec")
	if err != nil {
		t.Fatalf("ParseNode: %v", err)
	}
	if n.Kind != KindObject {
		t.Fatalf("kind = %v", n.Kind)
	}
	if len(n.Object.Fields) != 2 {
		t.Fatalf("fields = %d, want 2 (unique must not be treated as a field)", len(n.Object.Fields))
	}
	if n.Object.Fields[0].Name != "alpha" || n.Object.Fields[1].Name != "zeta" {
		t.Fatalf("field order = %s, %s; want lexicographic", n.Object.Fields[0].Name, n.Object.Fields[1].Name)
	}
}

func TestParseNodeSameAsShorthand(t *testing.T) {
	n, err := ParseNode("@users.id", "orders.user_id")
	if err != nil {
		t.Fatalf("ParseNode: %v", err)
	}
	if n.Kind != KindSameAs {
		t.Fatalf("kind = %v, want KindSameAs", n.Kind)
	}
	if n.SameAs.Target.Collection != "users" {
		t.Fatalf("target collection = %q", n.SameAs.Target.Collection)
	}
}

func TestParseNodeSameAsLongForm(t *testing.T) {
	doc := map[string]any{"type": "same_as", "ref": "@users.address.city"}
	n, err := ParseNode(doc, "shipments.city")
	if err != nil {
		t.Fatalf("ParseNode: %v", err)
	}
	if n.SameAs.Target.Key() != "users.address.city" {
		t.Fatalf("target key = %q", n.SameAs.Target.Key())
	}
}

func TestParseNodeStringVariants(t *testing.T) {
	cases := []struct {
		name string
		doc  map[string]any
		want StringVariant
	}{
		{"pattern", map[string]any{"type": "string", "pattern": "[a-z]{3,5}"}, StringPattern},
		{"faker", map[string]any{"type": "string", "faker": map[string]any{"generator": "safe_email"}}, StringFaker},
		{"categorical", map[string]any{"type": "string", "categorical": map[string]any{"red": 1.0, "blue": 2.0}}, StringCategorical},
		{"uuid", map[string]any{"type": "string", "uuid": true}, StringUUID},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			n, err := ParseNode(c.doc, "field")
			if err != nil {
				t.Fatalf("ParseNode: %v", err)
			}
			if n.String.Variant != c.want {
				t.Fatalf("variant = %v, want %v", n.String.Variant, c.want)
			}
		})
	}
}

func TestParseNodeNumberRangeRejectsDegenerateBounds(t *testing.T) {
	doc := map[string]any{
		"type":  "number",
		"range": map[string]any{"low": 5.0, "high": 5.0},
	}
	if _, err := ParseNode(doc, "n"); err == nil {
		t.Fatal("expected an error for low == high without include_high")
	}
}

func TestParseNodeArrayRequiresLengthAndContent(t *testing.T) {
	doc := map[string]any{
		"type":   "array",
		"length": map[string]any{"type": "number", "constant": 3.0},
	}
	if _, err := ParseNode(doc, "tags"); err == nil {
		t.Fatal("expected an error for a missing \"content\" key")
	}
}

func TestParseNodeOneOfWeights(t *testing.T) {
	doc := map[string]any{
		"type": "one_of",
		"variants": []any{
			map[string]any{"weight": 3.0, "type": "null"},
			map[string]any{"type": "bool"},
		},
	}
	n, err := ParseNode(doc, "maybe")
	if err != nil {
		t.Fatalf("ParseNode: %v", err)
	}
	if len(n.OneOf.Variants) != 2 {
		t.Fatalf("variants = %d, want 2", len(n.OneOf.Variants))
	}
	if n.OneOf.Variants[0].Weight != 3 || n.OneOf.Variants[1].Weight != 1 {
		t.Fatalf("weights = %v, %v; want 3, 1 (default)", n.OneOf.Variants[0].Weight, n.OneOf.Variants[1].Weight)
	}
}

func TestParseNodeOptionalModifier(t *testing.T) {
	n, err := ParseNode(map[string]any{"type": "null", "optional": 0.3}, "n")
	if err != nil {
		t.Fatalf("ParseNode: %v", err)
	}
	if n.Optional == nil || *n.Optional != 0.3 {
		t.Fatalf("optional = %v, want 0.3", n.Optional)
	}
}

func TestParseNodeRejectsUnknownType(t *testing.T) {
	if _, err := ParseNode(map[string]any{"type": "bogus"}, "n"); err == nil {
		t.Fatal("expected an error for an unrecognized type")
	}
}
