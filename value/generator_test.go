package value

import (
	"context"
	"testing"
	"time"
)

func TestGeneratorYieldsInOrder(t *testing.T) {
	g := NewGenerator("counter", func(ctx context.Context, yield func(context.Context, Value) error) (Value, error) {
		for i := int64(0); i < 3; i++ {
			if err := yield(ctx, &Int{Value: i}); err != nil {
				return nil, err
			}
		}
		return NONE, nil
	})

	ctx := context.Background()
	for want := int64(0); want < 3; want++ {
		v, ok, err := g.Next(ctx)
		if err != nil || !ok {
			t.Fatalf("next: ok=%t err=%v", ok, err)
		}
		if v.(*Int).Value != want {
			t.Errorf("yielded %s, want %d", v.Inspect(), want)
		}
	}

	_, ok, err := g.Next(ctx)
	if ok || err != nil {
		t.Fatalf("exhausted generator: ok=%t err=%v", ok, err)
	}
}

func TestGeneratorNotRestartable(t *testing.T) {
	g := NewGenerator("once", func(ctx context.Context, yield func(context.Context, Value) error) (Value, error) {
		_ = yield(ctx, &Int{Value: 1})
		return NONE, nil
	})

	ctx := context.Background()
	g.Next(ctx)
	g.Next(ctx)

	// every further Next stays exhausted
	for i := 0; i < 2; i++ {
		_, ok, err := g.Next(ctx)
		if ok || err != nil {
			t.Fatalf("restart attempt %d: ok=%t err=%v", i, ok, err)
		}
	}
}

func TestGeneratorProducerError(t *testing.T) {
	g := NewGenerator("boom", func(ctx context.Context, yield func(context.Context, Value) error) (Value, error) {
		if err := yield(ctx, &Int{Value: 1}); err != nil {
			return nil, err
		}
		return nil, Errorf(ValueError, "producer failed")
	})

	ctx := context.Background()
	if _, ok, _ := g.Next(ctx); !ok {
		t.Fatalf("first next should yield")
	}
	_, ok, err := g.Next(ctx)
	if ok {
		t.Fatalf("expected completion")
	}
	e, isErr := err.(*Error)
	if !isErr || e.Kind != ValueError {
		t.Errorf("producer error = %v", err)
	}
}

func TestGeneratorConsumerCancellation(t *testing.T) {
	started := make(chan struct{})
	g := NewGenerator("slow", func(ctx context.Context, yield func(context.Context, Value) error) (Value, error) {
		close(started)
		<-ctx.Done()
		return NONE, Errorf(Cancelled, "generator cancelled")
	})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()

	_, ok, err := g.Next(ctx)
	if ok {
		t.Fatalf("cancelled next yielded a value")
	}
	e, isErr := err.(*Error)
	if !isErr || e.Kind != Cancelled {
		t.Errorf("cancellation error = %v", err)
	}
}

func TestGeneratorCloseStopsProducer(t *testing.T) {
	exited := make(chan struct{})
	g := NewGenerator("infinite", func(ctx context.Context, yield func(context.Context, Value) error) (Value, error) {
		defer close(exited)
		for i := int64(0); ; i++ {
			if err := yield(ctx, &Int{Value: i}); err != nil {
				return nil, err
			}
		}
	})

	ctx := context.Background()
	if _, ok, err := g.Next(ctx); !ok || err != nil {
		t.Fatalf("first next: ok=%t err=%v", ok, err)
	}

	g.Close()
	select {
	case <-exited:
	case <-time.After(time.Second):
		t.Fatal("producer still suspended after close")
	}

	if _, ok, err := g.Next(ctx); ok || err != nil {
		t.Errorf("closed generator: ok=%t err=%v", ok, err)
	}
}

func TestGeneratorCloseBeforeStart(t *testing.T) {
	g := NewGenerator("unused", func(ctx context.Context, yield func(context.Context, Value) error) (Value, error) {
		t.Error("producer ran for a closed generator")
		return NONE, nil
	})
	g.Close()
	if _, ok, err := g.Next(context.Background()); ok || err != nil {
		t.Errorf("next after close: ok=%t err=%v", ok, err)
	}
}

func TestStreamIteratorAccumulatesContent(t *testing.T) {
	s := NewStreamIterator("chunks")
	go func() {
		s.Push("hello ")
		s.Push("world")
		s.Finish(&String{Value: "final"})
	}()

	ctx := context.Background()
	var got string
	for {
		chunk, ok, err := s.Next(ctx)
		if err != nil {
			t.Fatalf("next: %v", err)
		}
		if !ok {
			break
		}
		got += chunk
	}

	if got != "hello world" {
		t.Errorf("chunks = %q", got)
	}
	if s.Content() != "hello world" {
		t.Errorf("content = %q", s.Content())
	}
	if !s.Done() {
		t.Errorf("stream not done")
	}
	if s.Result().(*String).Value != "final" {
		t.Errorf("result = %s", s.Result().Inspect())
	}
}
