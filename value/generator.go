package value

import (
	"context"
	"strings"
	"sync"
)

// genMessage is one yielded value plus the channel the consumer acks on.
// The producer stays suspended until the ack arrives, so at most one yield
// is in flight.
type genMessage struct {
	value  Value
	resume chan struct{}
}

type genResult struct {
	value Value
	err   error
}

// GeneratorBody is the producer: it runs on its own goroutine and calls
// yield for every produced value.
type GeneratorBody func(ctx context.Context, yield func(context.Context, Value) error) (Value, error)

// Generator is a single-pass cursor over a suspended producer. It is not
// restartable: once exhausted it stays exhausted.
type Generator struct {
	Name string

	body GeneratorBody

	once     sync.Once
	messages chan genMessage
	complete chan genResult

	mu       sync.Mutex
	cancel   context.CancelFunc
	done     bool
	finalVal Value
	finalErr error
}

func NewGenerator(name string, body GeneratorBody) *Generator {
	return &Generator{
		Name:     name,
		body:     body,
		messages: make(chan genMessage),
		complete: make(chan genResult, 1),
	}
}

func (g *Generator) Type() ValueType { return GENERATOR_VALUE }
func (g *Generator) Inspect() string {
	name := g.Name
	if name == "" {
		name = "<anonymous>"
	}
	return "<generator " + name + ">"
}

// start launches the producer goroutine on first use. The producer runs
// under its own cancelable context so an abandoned generator can be shut
// down instead of staying suspended forever.
func (g *Generator) start(ctx context.Context) {
	g.once.Do(func() {
		pctx, cancel := context.WithCancel(ctx)
		g.mu.Lock()
		g.cancel = cancel
		g.mu.Unlock()

		yield := func(yctx context.Context, v Value) error {
			resume := make(chan struct{})
			select {
			case g.messages <- genMessage{value: v, resume: resume}:
			case <-yctx.Done():
				return Errorf(Cancelled, "generator cancelled")
			}
			select {
			case <-resume:
				return nil
			case <-yctx.Done():
				return Errorf(Cancelled, "generator cancelled")
			}
		}
		go func() {
			val, err := g.body(pctx, yield)
			g.complete <- genResult{value: val, err: err}
			close(g.messages)
			cancel()
		}()
	})
}

// Close abandons a partially consumed generator: the suspended producer is
// cancelled so its goroutine exits, and every later Next reports exhaustion.
// Closing an unstarted or exhausted generator is a no-op.
func (g *Generator) Close() {
	g.mu.Lock()
	cancel := g.cancel
	g.done = true
	g.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Next resumes the producer and waits for its next yield. The second result
// is false once the producer has completed; the error carries a producer
// failure or cancellation.
func (g *Generator) Next(ctx context.Context) (Value, bool, error) {
	g.mu.Lock()
	if g.done {
		err := g.finalErr
		g.mu.Unlock()
		return nil, false, err
	}
	g.mu.Unlock()

	g.start(ctx)

	select {
	case msg, ok := <-g.messages:
		if !ok {
			res := <-g.complete
			g.mu.Lock()
			g.done = true
			g.finalVal = res.value
			g.finalErr = res.err
			g.mu.Unlock()
			return nil, false, res.err
		}
		close(msg.resume)
		return msg.value, true, nil
	case <-ctx.Done():
		return nil, false, Errorf(Cancelled, "generator consumer cancelled")
	}
}

// ReturnValue reports the producer's final value once exhausted.
func (g *Generator) ReturnValue() (Value, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.done || g.finalVal == nil {
		return nil, false
	}
	return g.finalVal, true
}

// StreamIterator is a cursor over string chunks arriving from a native
// source. Unlike Generator the consumer does not suspend the producer; the
// channel buffers chunks as they arrive. Accumulated content, completion
// and the final result value are observable as attributes.
type StreamIterator struct {
	Name string

	chunks chan streamChunk

	mu      sync.Mutex
	content strings.Builder
	done    bool
	result  Value
}

type streamChunk struct {
	text  string
	final bool
	value Value
	err   error
}

func NewStreamIterator(name string) *StreamIterator {
	return &StreamIterator{
		Name:   name,
		chunks: make(chan streamChunk, 16),
	}
}

func (s *StreamIterator) Type() ValueType { return STREAM_VALUE }
func (s *StreamIterator) Inspect() string { return "<stream " + s.Name + ">" }

// Push delivers one chunk from the producing native.
func (s *StreamIterator) Push(text string) {
	s.chunks <- streamChunk{text: text}
}

// Finish closes the stream with a final result value.
func (s *StreamIterator) Finish(result Value) {
	s.chunks <- streamChunk{final: true, value: result}
	close(s.chunks)
}

// Fail closes the stream with an error that the consumer will observe.
func (s *StreamIterator) Fail(err error) {
	s.chunks <- streamChunk{final: true, err: err}
	close(s.chunks)
}

// Next blocks for the next chunk. ok is false once the stream completed.
func (s *StreamIterator) Next(ctx context.Context) (string, bool, error) {
	select {
	case chunk, open := <-s.chunks:
		if !open {
			return "", false, nil
		}
		if chunk.final {
			s.mu.Lock()
			s.done = true
			if chunk.value != nil {
				s.result = chunk.value
			}
			s.mu.Unlock()
			return "", false, chunk.err
		}
		s.mu.Lock()
		s.content.WriteString(chunk.text)
		s.mu.Unlock()
		return chunk.text, true, nil
	case <-ctx.Done():
		return "", false, Errorf(Cancelled, "stream consumer cancelled")
	}
}

func (s *StreamIterator) Content() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.content.String()
}

func (s *StreamIterator) Done() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}

func (s *StreamIterator) Result() Value {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil {
		return NONE
	}
	return s.result
}
