package resolve

import (
	"github.com/alfredjeanlab/synth/internal/errkit"
	"github.com/alfredjeanlab/synth/internal/namespace"
	"github.com/alfredjeanlab/synth/internal/schema"
)

// CheckFeasibility rejects, at load time, any unique-marked node whose
// statically-bounded cardinality cannot possibly satisfy the collection's
// planned size — rather than letting the run discover this later as a
// runtime UniquenessExhausted (spec.md §9's "Uniqueness memory growth" note,
// option (a)). sizes maps collection name to its planned record count; a
// collection absent from sizes is skipped (size not yet known).
func CheckFeasibility(ns *namespace.Namespace, sizes map[string]int) error {
	for name, size := range sizes {
		root, ok := ns.Roots[name]
		if !ok || size <= 0 {
			continue
		}
		if err := checkNode(name, size, root); err != nil {
			return err
		}
	}
	return nil
}

func checkNode(collection string, size int, n *schema.Node) error {
	if n == nil {
		return nil
	}
	if n.Unique {
		if count, bounded := n.Cardinality(); bounded && count < int64(size) {
			return errkit.Configuration(n.Path,
				"unique node can produce at most %d distinct value(s), but %d are requested", count, size)
		}
	}
	switch n.Kind {
	case schema.KindObject:
		for _, f := range n.Object.Fields {
			if err := checkNode(collection, size, f.Node); err != nil {
				return err
			}
		}
	case schema.KindArray:
		if err := checkNode(collection, size, n.Array.Content); err != nil {
			return err
		}
	case schema.KindOneOf:
		for _, v := range n.OneOf.Variants {
			if err := checkNode(collection, size, v.Node); err != nil {
				return err
			}
		}
	}
	return nil
}
