package sink

import (
	"bytes"
	"context"
	"io"
	"net/url"
	"os"
	"strconv"
	"sync"

	"github.com/alfredjeanlab/synth/internal/value"
)

func init() {
	Register("stdout", func(_ context.Context, _ *url.URL) (Sink, error) {
		return NewStdout(os.Stdout), nil
	})
}

// stdoutSink buffers every collection's records in memory and writes them
// as a single JSON object, keyed by collection name, on Commit.
type stdoutSink struct {
	w io.Writer

	mu      sync.Mutex
	order   []string
	records map[string][]value.Value
}

// NewStdout wraps w (typically os.Stdout) as a Sink.
func NewStdout(w io.Writer) Sink {
	return &stdoutSink{w: w, records: make(map[string][]value.Value)}
}

func (s *stdoutSink) Begin(_ context.Context, collection string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[collection]; !ok {
		s.order = append(s.order, collection)
		s.records[collection] = nil
	}
	return nil
}

func (s *stdoutSink) Write(_ context.Context, collection string, record value.Value) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[collection] = append(s.records[collection], record)
	return nil
}

func (s *stdoutSink) End(context.Context, string) error { return nil }

// Commit renders the accumulated collections as {"<collection>": [...], ...}
// and writes it once, rather than streaming partial output a failed run
// would leave truncated.
func (s *stdoutSink) Commit(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range s.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(strconv.Quote(name))
		buf.WriteByte(':')
		buf.WriteByte('[')
		for j, record := range s.records[name] {
			if j > 0 {
				buf.WriteByte(',')
			}
			buf.Write(value.JSON(record))
		}
		buf.WriteByte(']')
	}
	buf.WriteByte('}')
	buf.WriteByte('\n')

	_, err := s.w.Write(buf.Bytes())
	return err
}

func (s *stdoutSink) Close() error { return nil }
