package driver

import (
	"context"
	"sync"
	"testing"
	"testing/fstest"

	"github.com/alfredjeanlab/synth/internal/events"
	"github.com/alfredjeanlab/synth/internal/namespace"
	"github.com/alfredjeanlab/synth/internal/value"
)

type recordingPublisher struct {
	mu     sync.Mutex
	topics []string
}

func (p *recordingPublisher) Publish(_ context.Context, topic string, _ any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topics = append(p.topics, topic)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

type recordingSink struct {
	order   []string
	records map[string][]value.Value
	began   map[string]bool
	ended   map[string]bool
}

func newRecordingSink() *recordingSink {
	return &recordingSink{
		records: make(map[string][]value.Value),
		began:   make(map[string]bool),
		ended:   make(map[string]bool),
	}
}

func (s *recordingSink) Begin(_ context.Context, collection string) error {
	s.order = append(s.order, collection)
	s.began[collection] = true
	return nil
}

func (s *recordingSink) Write(_ context.Context, collection string, record value.Value) error {
	s.records[collection] = append(s.records[collection], record)
	return nil
}

func (s *recordingSink) End(_ context.Context, collection string) error {
	s.ended[collection] = true
	return nil
}

func (s *recordingSink) Commit(_ context.Context) error { return nil }

func (s *recordingSink) Close() error { return nil }

func mapFS(files map[string]string) fstest.MapFS {
	out := make(fstest.MapFS, len(files))
	for name, content := range files {
		out[name] = &fstest.MapFile{Data: []byte(content)}
	}
	return out
}

func TestRunGeneratesInDependencyOrderWithPlannedSizes(t *testing.T) {
	fsys := mapFS(map[string]string{
		"users.json":  `{"type": "object", "id": {"type": "number", "id": {}}}`,
		"orders.json": `{"type": "object", "user_id": "@users.id"}`,
	})
	ns, err := namespace.Load(fsys)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	s := newRecordingSink()
	plan := Plan{Sizes: map[string]int{"users": 5, "orders": 3}}
	if err := Run(context.Background(), ns, plan, 1, s); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(s.records["users"]) != 5 {
		t.Fatalf("users records = %d, want 5", len(s.records["users"]))
	}
	if len(s.records["orders"]) != 3 {
		t.Fatalf("orders records = %d, want 3", len(s.records["orders"]))
	}

	userIdx, orderIdx := -1, -1
	for i, name := range s.order {
		if name == "users" {
			userIdx = i
		}
		if name == "orders" {
			orderIdx = i
		}
	}
	if userIdx >= orderIdx {
		t.Fatalf("order = %v, want users before orders", s.order)
	}
}

func TestRunResolvesCrossCollectionSameAsToASubsetOfGeneratedIds(t *testing.T) {
	fsys := mapFS(map[string]string{
		"users.json": `{"type": "object", "id": {"type": "number", "id": {"start_at": 1}}}`,
		"posts.json": `{"type": "object", "author_id": "@users.id"}`,
	})
	ns, err := namespace.Load(fsys)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	s := newRecordingSink()
	plan := Plan{Sizes: map[string]int{"users": 2, "posts": 5}}
	if err := Run(context.Background(), ns, plan, 3, s); err != nil {
		t.Fatalf("Run: %v", err)
	}

	valid := map[float64]bool{1: true, 2: true}
	posts := s.records["posts"]
	if len(posts) != 5 {
		t.Fatalf("got %d posts, want 5", len(posts))
	}
	for i, rec := range posts {
		authorID, ok := rec.Get("author_id")
		if !ok {
			t.Fatalf("post %d: missing author_id", i)
		}
		if !valid[authorID.Number] {
			t.Fatalf("post %d: author_id = %v, want one of {1,2}", i, authorID.Number)
		}
	}
}

func TestRunWithEventsPublishesRunAndCollectionLifecycle(t *testing.T) {
	fsys := mapFS(map[string]string{
		"widgets.json": `{"type": "object", "id": {"type": "number", "id": {}}}`,
	})
	ns, err := namespace.Load(fsys)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	s := newRecordingSink()
	pub := &recordingPublisher{}
	plan := Plan{Sizes: map[string]int{"widgets": 2}}
	if err := RunWithEvents(context.Background(), ns, plan, 1, s, pub); err != nil {
		t.Fatalf("RunWithEvents: %v", err)
	}

	want := []string{
		events.TopicRunStarted,
		events.TopicCollectionStarted,
		events.TopicCollectionDone,
		events.TopicRunDone,
	}
	if len(pub.topics) != len(want) {
		t.Fatalf("topics = %v, want %v", pub.topics, want)
	}
	for i, topic := range want {
		if pub.topics[i] != topic {
			t.Errorf("topics[%d] = %q, want %q", i, pub.topics[i], topic)
		}
	}
}

func TestRunResolvesSameCollectionSameAsFromCurrentRecord(t *testing.T) {
	fsys := mapFS(map[string]string{
		"users.json": `{
			"type": "object",
			"email": {"type": "string", "faker": {"generator": "safe_email"}},
			"email_echo": "@users.email"
		}`,
	})
	ns, err := namespace.Load(fsys)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	s := newRecordingSink()
	plan := Plan{Sizes: map[string]int{"users": 5}}
	if err := Run(context.Background(), ns, plan, 7, s); err != nil {
		t.Fatalf("Run: %v", err)
	}

	records := s.records["users"]
	if len(records) != 5 {
		t.Fatalf("got %d records, want 5", len(records))
	}
	for i, rec := range records {
		email, ok := rec.Get("email")
		if !ok {
			t.Fatalf("record %d: missing email", i)
		}
		echo, ok := rec.Get("email_echo")
		if !ok {
			t.Fatalf("record %d: missing email_echo", i)
		}
		if echo.Str != email.Str {
			// Every record's own email, not the previous record's (the
			// symptom of falling back to pool sampling) or an empty pool
			// error on the first record.
			t.Fatalf("record %d: email_echo = %q, want %q", i, echo.Str, email.Str)
		}
	}
}

func TestRunEmitsSequentialIdsAndDistinctUniqueEmails(t *testing.T) {
	fsys := mapFS(map[string]string{
		"users.json": `{
			"type": "object",
			"id": {"type": "number", "id": {"start_at": 1}},
			"email": {"type": "string", "unique": true, "faker": {"generator": "safe_email"}}
		}`,
	})
	ns, err := namespace.Load(fsys)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	s := newRecordingSink()
	plan := Plan{Sizes: map[string]int{"users": 3}}
	if err := Run(context.Background(), ns, plan, 0, s); err != nil {
		t.Fatalf("Run: %v", err)
	}

	records := s.records["users"]
	if len(records) != 3 {
		t.Fatalf("got %d records, want 3", len(records))
	}
	seen := make(map[string]bool, 3)
	for i, rec := range records {
		id, ok := rec.Get("id")
		if !ok {
			t.Fatalf("record %d: missing id", i)
		}
		if id.Number != float64(i+1) {
			t.Fatalf("record %d: id = %v, want %v", i, id.Number, i+1)
		}
		email, ok := rec.Get("email")
		if !ok {
			t.Fatalf("record %d: missing email", i)
		}
		if seen[email.Str] {
			t.Fatalf("record %d: email %q duplicates an earlier record", i, email.Str)
		}
		seen[email.Str] = true
	}
}

func TestRunOfZeroRecordsEmitsAnEmptyCollection(t *testing.T) {
	fsys := mapFS(map[string]string{
		"users.json": `{
			"type": "object",
			"id": {"type": "number", "id": {"start_at": 1}},
			"email": {"type": "string", "unique": true, "faker": {"generator": "safe_email"}}
		}`,
	})
	ns, err := namespace.Load(fsys)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	s := newRecordingSink()
	plan := Plan{Sizes: map[string]int{"users": 0}}
	if err := Run(context.Background(), ns, plan, 0, s); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if n := len(s.records["users"]); n != 0 {
		t.Fatalf("got %d records, want 0", n)
	}
	if !s.began["users"] || !s.ended["users"] {
		t.Fatal("expected the empty collection to still Begin and End")
	}
}

func TestRunRespectsCancellation(t *testing.T) {
	fsys := mapFS(map[string]string{
		"widgets.json": `{"type": "object", "id": {"type": "number", "id": {}}}`,
	})
	ns, err := namespace.Load(fsys)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := newRecordingSink()
	err = Run(ctx, ns, Plan{Default: 10}, 1, s)
	if err == nil {
		t.Fatal("expected a cancellation error")
	}
}
