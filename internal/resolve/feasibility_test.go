package resolve

import (
	"testing"

	"github.com/alfredjeanlab/synth/internal/errkit"
	"github.com/alfredjeanlab/synth/internal/namespace"
)

func TestCheckFeasibilityRejectsOverboundUnique(t *testing.T) {
	fsys := mapFS(map[string]string{
		"flags.json": `{"type": "object", "flag": {"type": "bool", "unique": true}}`,
	})
	ns, err := namespace.Load(fsys)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	err = CheckFeasibility(ns, map[string]int{"flags": 5})
	if err == nil {
		t.Fatal("expected an error: a unique bool cannot satisfy 5 records")
	}
}

func TestCheckFeasibilityAllowsSufficientCardinality(t *testing.T) {
	fsys := mapFS(map[string]string{
		"colors.json": `{"type": "object", "name": {
			"type": "string",
			"categorical": {"red": 1, "green": 1, "blue": 1},
			"unique": true
		}}`,
	})
	ns, err := namespace.Load(fsys)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if err := CheckFeasibility(ns, map[string]int{"colors": 3}); err != nil {
		t.Fatalf("CheckFeasibility: %v", err)
	}
}

func TestCheckFeasibilityIgnoresUnboundedNodes(t *testing.T) {
	fsys := mapFS(map[string]string{
		"users.json": `{"type": "object", "email": {"type": "string", "faker": {"generator": "email"}, "unique": true}}`,
	})
	ns, err := namespace.Load(fsys)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if err := CheckFeasibility(ns, map[string]int{"users": 1_000_000}); err != nil {
		t.Fatalf("CheckFeasibility: %v", err)
	}
}

// A cardinality-2 unique pattern targeting a collection of 10 used to only
// surface as a runtime UniquenessExhausted on the 3rd value; CheckFeasibility
// now catches it eagerly, before generation opens a sink.
func TestCheckFeasibilityRejectsPatternBelowTargetSize(t *testing.T) {
	fsys := mapFS(map[string]string{
		"codes.json": `{"type": "object", "code": {"type": "string", "unique": true, "pattern": "[a-b]{1}"}}`,
	})
	ns, err := namespace.Load(fsys)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	err = CheckFeasibility(ns, map[string]int{"codes": 10})
	if err == nil {
		t.Fatal("expected an error: a 2-value pattern cannot satisfy 10 unique records")
	}
	e, ok := errkit.As(err)
	if !ok {
		t.Fatalf("error %v is not a tagged *errkit.Error", err)
	}
	if e.Kind != errkit.KindConfiguration {
		t.Fatalf("Kind = %v, want %v", e.Kind, errkit.KindConfiguration)
	}
}
