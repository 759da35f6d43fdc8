// Package sink defines the output adapter interface spec.md §4.6 describes
// and a scheme-based registry for selecting one from a destination URI.
package sink

import (
	"context"
	"net/url"

	"github.com/alfredjeanlab/synth/internal/errkit"
	"github.com/alfredjeanlab/synth/internal/value"
)

// Sink receives one collection's generated records in order. Begin/End
// bracket a single collection so sinks that batch or transact (SQL, S3's
// one-object-per-collection NDJSON) know where a collection starts and ends;
// Write is called once per record. Commit is called exactly once, after
// every collection has reached End successfully, so a sink that defers all
// output until the whole run is known-good (the stdout sink's single JSON
// object keyed by collection name) has a place to flush it.
type Sink interface {
	Begin(ctx context.Context, collection string) error
	Write(ctx context.Context, collection string, record value.Value) error
	End(ctx context.Context, collection string) error
	Commit(ctx context.Context) error
	// Close flushes and releases any resources held across collections
	// (DB connections, S3 clients, NATS connections).
	Close() error
}

// Opener constructs a Sink from a parsed destination URI.
type Opener func(ctx context.Context, u *url.URL) (Sink, error)

var openers = map[string]Opener{}

// Register adds an Opener for the given URI scheme. Adapters call this from
// an init() so importing the adapter package is enough to make it available.
func Register(scheme string, open Opener) {
	openers[scheme] = open
}

// Open parses dest and dispatches to the Opener registered for its scheme.
// "stdout" (no "://" required) is special-cased to the stdout sink.
func Open(ctx context.Context, dest string) (Sink, error) {
	if dest == "" || dest == "stdout" {
		dest = "stdout://"
	}
	u, err := url.Parse(dest)
	if err != nil {
		return nil, errkit.Configuration("", "parsing destination %q: %v", dest, err)
	}
	open, ok := openers[u.Scheme]
	if !ok {
		return nil, errkit.Configuration("", "unrecognized destination scheme %q", u.Scheme)
	}
	return open(ctx, u)
}
