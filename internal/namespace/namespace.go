// Package namespace loads every collection's schema document, builds the
// flat dotted-path registry spec.md §4.4 describes, and resolves same_as
// references against it.
package namespace

import (
	"encoding/json"
	"io/fs"
	"sort"
	"strings"

	"github.com/alfredjeanlab/synth/internal/errkit"
	"github.com/alfredjeanlab/synth/internal/schema"
)

// Namespace is the loaded, reference-resolved set of collection schemas for
// one run.
type Namespace struct {
	// Names lists collections in the order they were loaded (lexicographic
	// by file name), independent of any later dependency ordering.
	Names []string
	// Roots maps a collection name to its top-level (always object) node.
	Roots map[string]*schema.Node
	// registry maps every addressable dotted path, across every collection,
	// to the node at that path.
	registry map[string]*schema.Node
}

// Load reads every "*.json" file directly under fsys's root, one per
// collection named after its file stem, parses each into a generator tree,
// and resolves same_as references across the whole namespace.
func Load(fsys fs.FS) (*Namespace, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, errkit.Configuration("", "reading schema directory: %v", err)
	}

	ns := &Namespace{
		Roots:    make(map[string]*schema.Node),
		registry: make(map[string]*schema.Node),
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), ".json")
		raw, err := fs.ReadFile(fsys, entry.Name())
		if err != nil {
			return nil, errkit.Configuration(name, "reading %s: %v", entry.Name(), err)
		}
		var doc any
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, errkit.Configuration(name, "parsing %s: %v", entry.Name(), err)
		}
		root, err := schema.ParseNode(doc, name)
		if err != nil {
			return nil, err
		}
		if root.Kind != schema.KindObject {
			return nil, errkit.Configuration(name, "collection schema must be a \"type\": \"object\" document")
		}
		ns.Names = append(ns.Names, name)
		ns.Roots[name] = root
		registerPaths(ns.registry, root)
	}
	sort.Strings(ns.Names)

	if err := ns.resolveSameAs(); err != nil {
		return nil, err
	}
	return ns, nil
}

// registerPaths indexes n and every node reachable from it by its dotted
// path, so that same_as references can be looked up regardless of depth.
func registerPaths(registry map[string]*schema.Node, n *schema.Node) {
	if n == nil {
		return
	}
	registry[n.Path] = n
	switch n.Kind {
	case schema.KindObject:
		for _, f := range n.Object.Fields {
			registerPaths(registry, f.Node)
		}
	case schema.KindArray:
		registerPaths(registry, n.Array.Length)
		registerPaths(registry, n.Array.Content)
	case schema.KindOneOf:
		for _, v := range n.OneOf.Variants {
			registerPaths(registry, v.Node)
		}
	case schema.KindString:
		if n.String.Variant == schema.StringFormat {
			for _, child := range n.String.FormatChildren {
				registerPaths(registry, child)
			}
		}
		if n.String.Variant == schema.StringSerialized {
			registerPaths(registry, n.String.SerializedInner)
		}
	}
}

// resolveSameAs fills in Resolved on every SameAsNode reachable from any
// collection root, reporting a dangling reference as a configuration error.
func (ns *Namespace) resolveSameAs() error {
	for _, name := range ns.Names {
		if err := ns.resolveNode(ns.Roots[name]); err != nil {
			return err
		}
	}
	return nil
}

func (ns *Namespace) resolveNode(n *schema.Node) error {
	if n == nil {
		return nil
	}
	switch n.Kind {
	case schema.KindSameAs:
		target, ok := ns.registry[n.SameAs.Target.Key()]
		if !ok {
			return errkit.Configuration(n.Path, "dangling reference %q", n.SameAs.Ref)
		}
		if _, ok := ns.Roots[n.SameAs.Target.Collection]; !ok {
			return errkit.Configuration(n.Path, "reference %q names an unknown collection", n.SameAs.Ref)
		}
		n.SameAs.Resolved = target
	case schema.KindObject:
		for _, f := range n.Object.Fields {
			if err := ns.resolveNode(f.Node); err != nil {
				return err
			}
		}
	case schema.KindArray:
		if err := ns.resolveNode(n.Array.Length); err != nil {
			return err
		}
		if err := ns.resolveNode(n.Array.Content); err != nil {
			return err
		}
	case schema.KindOneOf:
		for _, v := range n.OneOf.Variants {
			if err := ns.resolveNode(v.Node); err != nil {
				return err
			}
		}
	case schema.KindString:
		if n.String.Variant == schema.StringFormat {
			for _, child := range n.String.FormatChildren {
				if err := ns.resolveNode(child); err != nil {
					return err
				}
			}
		}
		if n.String.Variant == schema.StringSerialized {
			if err := ns.resolveNode(n.String.SerializedInner); err != nil {
				return err
			}
		}
	}
	return nil
}

// ReferencedCollections returns the set of collection names that n (and
// everything reachable from it) targets via same_as, excluding self
// references. Used by the resolver to build the collection dependency
// graph (spec.md §4.3).
func ReferencedCollections(n *schema.Node, self string, out map[string]bool) {
	if n == nil {
		return
	}
	switch n.Kind {
	case schema.KindSameAs:
		if n.SameAs.Target.Collection != self {
			out[n.SameAs.Target.Collection] = true
		}
	case schema.KindObject:
		for _, f := range n.Object.Fields {
			ReferencedCollections(f.Node, self, out)
		}
	case schema.KindArray:
		ReferencedCollections(n.Array.Length, self, out)
		ReferencedCollections(n.Array.Content, self, out)
	case schema.KindOneOf:
		for _, v := range n.OneOf.Variants {
			ReferencedCollections(v.Node, self, out)
		}
	case schema.KindString:
		if n.String.Variant == schema.StringFormat {
			for _, child := range n.String.FormatChildren {
				ReferencedCollections(child, self, out)
			}
		}
		if n.String.Variant == schema.StringSerialized {
			ReferencedCollections(n.String.SerializedInner, self, out)
		}
	}
}
