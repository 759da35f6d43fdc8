package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

func TestRunValidateAcceptsWellFormedNamespace(t *testing.T) {
	dir := t.TempDir()
	writeSchema(t, dir, "users.json", `{"type": "object", "id": {"type": "number", "id": {}}}`)
	writeSchema(t, dir, "orders.json", `{"type": "object", "user_id": "@users.id"}`)

	root := &cobra.Command{Use: "synth"}
	root.AddCommand(validateCmd)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"validate", dir})

	if err := root.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.Contains(out.String(), "ok: 2 collection(s)") {
		t.Fatalf("output = %q", out.String())
	}
}

func TestRunValidateRejectsCycle(t *testing.T) {
	dir := t.TempDir()
	writeSchema(t, dir, "a.json", `{"type": "object", "id": {"type": "number", "id": {}}, "b_ref": "@b.id"}`)
	writeSchema(t, dir, "b.json", `{"type": "object", "id": {"type": "number", "id": {}}, "a_ref": "@a.id"}`)

	root := &cobra.Command{Use: "synth"}
	root.AddCommand(validateCmd)
	root.SetArgs([]string{"validate", dir})
	root.SetOut(&bytes.Buffer{})

	if err := root.Execute(); err == nil {
		t.Fatal("expected a cycle error")
	}
}

func TestRunValidateCatchesInfeasibleUniqueGivenSize(t *testing.T) {
	dir := t.TempDir()
	writeSchema(t, dir, "flags.json", `{"type": "object", "flag": {"type": "bool", "unique": true}}`)

	root := &cobra.Command{Use: "synth"}
	root.AddCommand(validateCmd)
	root.SetArgs([]string{"validate", dir, "--size", "10"})
	root.SetOut(&bytes.Buffer{})

	if err := root.Execute(); err == nil {
		t.Fatal("expected a feasibility error: a unique bool cannot satisfy 10 records")
	}
}
