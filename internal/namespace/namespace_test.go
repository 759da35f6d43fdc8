package namespace

import (
	"testing"
	"testing/fstest"
)

func mapFS(files map[string]string) fstest.MapFS {
	out := make(fstest.MapFS, len(files))
	for name, content := range files {
		out[name] = &fstest.MapFile{Data: []byte(content)}
	}
	return out
}

func TestLoadResolvesSameAs(t *testing.T) {
	fsys := mapFS(map[string]string{
		"users.json": `{
			"type": "object",
			"id": {"type": "number", "id": {}},
			"email": {"type": "string", "faker": {"generator": "safe_email"}}
		}`,
		"orders.json": `{
			"type": "object",
			"user_id": "@users.id"
		}`,
	})

	ns, err := Load(fsys)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(ns.Names) != 2 {
		t.Fatalf("names = %v", ns.Names)
	}
	userID := ns.Roots["orders"].Object.Fields[0].Node
	if userID.SameAs.Resolved == nil {
		t.Fatal("orders.user_id was not resolved")
	}
	if userID.SameAs.Resolved.Path != "users.id" {
		t.Fatalf("resolved path = %q, want users.id", userID.SameAs.Resolved.Path)
	}
}

func TestLoadRejectsDanglingReference(t *testing.T) {
	fsys := mapFS(map[string]string{
		"orders.json": `{"type": "object", "user_id": "@users.id"}`,
	})
	if _, err := Load(fsys); err == nil {
		t.Fatal("expected a dangling reference error")
	}
}

func TestReferencedCollections(t *testing.T) {
	fsys := mapFS(map[string]string{
		"users.json":  `{"type": "object", "id": {"type": "number", "id": {}}}`,
		"orders.json": `{"type": "object", "user_id": "@users.id", "self_note": "@orders.user_id"}`,
	})
	ns, err := Load(fsys)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	out := map[string]bool{}
	ReferencedCollections(ns.Roots["orders"], "orders", out)
	if !out["users"] {
		t.Fatal("expected orders to reference users")
	}
	if out["orders"] {
		t.Fatal("self reference must be excluded")
	}
}
