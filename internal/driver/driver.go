// Package driver walks a resolved namespace in dependency order, generating
// each collection's records and writing them to a Sink (spec.md §4.5).
package driver

import (
	"context"
	"time"

	"github.com/alfredjeanlab/synth/internal/errkit"
	"github.com/alfredjeanlab/synth/internal/events"
	"github.com/alfredjeanlab/synth/internal/namespace"
	"github.com/alfredjeanlab/synth/internal/randsrc"
	"github.com/alfredjeanlab/synth/internal/resolve"
	"github.com/alfredjeanlab/synth/internal/runtime"
	"github.com/alfredjeanlab/synth/internal/sink"
)

// Plan pins down how many records to generate for each named collection.
// Collections absent from Sizes fall back to Default.
type Plan struct {
	Sizes   map[string]int
	Default int
}

func (p Plan) sizeOf(collection string) int {
	if n, ok := p.Sizes[collection]; ok {
		return n
	}
	return p.Default
}

// Distribute turns a single global --size into a Plan covering every
// collection in names. Collection roots are always Object nodes (namespace
// enforces this), so none carries a top-level length hint to weight the
// split by; per spec.md §4.5's fallback, the total is split evenly, with
// any remainder handed to the lexicographically-first collections so the
// sum always equals total exactly.
func Distribute(names []string, total int) Plan {
	plan := Plan{Sizes: make(map[string]int, len(names))}
	if len(names) == 0 {
		return plan
	}
	base := total / len(names)
	remainder := total % len(names)
	for i, name := range names {
		n := base
		if i < remainder {
			n++
		}
		plan.Sizes[name] = n
	}
	return plan
}

// Run generates every collection in ns in dependency order, writes each
// record to s, and calls s.Commit once every collection has reached End,
// checking ctx for cancellation between records. Progress events are
// discarded; use RunWithEvents to observe a run in flight.
func Run(ctx context.Context, ns *namespace.Namespace, plan Plan, seed uint64, s sink.Sink) error {
	return RunWithEvents(ctx, ns, plan, seed, s, &events.NoopPublisher{})
}

// RunWithEvents behaves like Run, additionally publishing RunStarted,
// CollectionStarted, CollectionDone, and RunDone/RunFailed events to pub —
// e.g. a NATS-backed Publisher so an operator can watch a long run without
// tailing the sink itself.
func RunWithEvents(ctx context.Context, ns *namespace.Namespace, plan Plan, seed uint64, s sink.Sink, pub events.Publisher) error {
	order, err := resolve.Order(ns)
	if err != nil {
		return err
	}
	sizes := make(map[string]int, len(order))
	for _, name := range order {
		sizes[name] = plan.sizeOf(name)
	}
	if err := resolve.CheckFeasibility(ns, sizes); err != nil {
		return err
	}

	_ = pub.Publish(ctx, events.TopicRunStarted, events.RunStarted{Seed: seed, Collections: order})

	inv := runtime.NewInvocation(time.Now().UTC())
	root := randsrc.New(seed)

	for _, name := range order {
		if err := ctx.Err(); err != nil {
			failErr := errkit.Canceled()
			publishFailure(ctx, pub, failErr)
			return failErr
		}
		if err := generateCollection(ctx, inv, root, ns, name, sizes[name], s, pub); err != nil {
			publishFailure(ctx, pub, err)
			return err
		}
	}

	if err := s.Commit(ctx); err != nil {
		commitErr := wrapSink("", err)
		publishFailure(ctx, pub, commitErr)
		return commitErr
	}

	_ = pub.Publish(ctx, events.TopicRunDone, events.RunDone{Collections: len(order)})
	return nil
}

func publishFailure(ctx context.Context, pub events.Publisher, err error) {
	failed := events.RunFailed{Msg: err.Error()}
	if e, ok := errkit.As(err); ok {
		failed.Kind = string(e.Kind)
		failed.Path = e.Path
	}
	_ = pub.Publish(ctx, events.TopicRunFailed, failed)
}

func generateCollection(ctx context.Context, inv *runtime.Invocation, root *randsrc.Source, ns *namespace.Namespace, name string, count int, s sink.Sink, pub events.Publisher) error {
	node := ns.Roots[name]
	collectionSrc := root.Split(name)

	if err := s.Begin(ctx, name); err != nil {
		return wrapSink(name, err)
	}
	_ = pub.Publish(ctx, events.TopicCollectionStarted, events.CollectionStarted{Collection: name, Target: count})

	for i := 0; i < count; i++ {
		if err := ctx.Err(); err != nil {
			return errkit.Canceled()
		}
		recordSrc := collectionSrc.Child(i)
		v, err := runtime.ProduceRecord(inv, recordSrc, node)
		if err != nil {
			return err
		}
		inv.CollectPools(node, v)
		if err := s.Write(ctx, name, v); err != nil {
			return wrapSink(name, err)
		}
	}

	if err := s.End(ctx, name); err != nil {
		return wrapSink(name, err)
	}
	_ = pub.Publish(ctx, events.TopicCollectionDone, events.CollectionDone{Collection: name, Count: count})
	return nil
}

// wrapSink attaches Kind/path to a raw sink error, unless it is already a
// tagged *errkit.Error (the SQL/S3/NATS adapters already wrap their own
// failures).
func wrapSink(path string, err error) error {
	if _, ok := errkit.As(err); ok {
		return err
	}
	return errkit.Sink(path, err)
}
