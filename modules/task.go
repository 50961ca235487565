package modules

import (
	"context"
	"sync"

	"github.com/alexchoi0/blueprint-engine-sub002/value"
)

var (
	taskFutures       = map[int64]*future[value.Value]{}
	taskNextID  int64 = 1
	taskMutex   sync.Mutex
)

func nextTaskID() int64 {
	taskMutex.Lock()
	defer taskMutex.Unlock()
	id := taskNextID
	taskNextID++
	return id
}

// Task spawns callables onto their own goroutines and hands scripts an
// opaque handle to await later. Spawned work inherits the caller's ambient
// permissions through the captured context.
func Task() Module {
	return Module{
		"spawn": native("spawn", taskSpawn),
		"await": native("await", taskAwait),
		"all":   native("all", taskAll),
	}
}

func taskSpawn(ctx context.Context, args []value.Value, _ map[string]value.Value) (value.Value, error) {
	if len(args) < 1 {
		return nil, value.Errorf(value.ArgumentError, "spawn() expects a callable")
	}
	fn, err := unpackCallable("spawn", "fn", args[0])
	if err != nil {
		return nil, err
	}
	applier, ok := value.ApplierFrom(ctx)
	if !ok {
		return nil, value.Errorf(value.TypeError, "spawn() is not available here")
	}
	fnArgs := args[1:]

	fut := newFuture(func() (value.Value, error) {
		return applier.Apply(ctx, fn, fnArgs, nil)
	})

	id := nextTaskID()
	taskMutex.Lock()
	taskFutures[id] = fut
	taskMutex.Unlock()
	return &value.Int{Value: id}, nil
}

func taskByHandle(id int64) (*future[value.Value], bool) {
	taskMutex.Lock()
	defer taskMutex.Unlock()
	f, ok := taskFutures[id]
	return f, ok
}

func taskAwait(ctx context.Context, args []value.Value, _ map[string]value.Value) (value.Value, error) {
	if err := wantArgCount("await", args, 1, 1); err != nil {
		return nil, err
	}
	id, err := unpackInt("await", "handle", args[0])
	if err != nil {
		return nil, err
	}
	fut, ok := taskByHandle(id)
	if !ok {
		return nil, value.Errorf(value.ValueError, "await(): unknown task handle %d", id)
	}

	v, aerr := fut.Await(ctx)
	if aerr != nil {
		if ctx.Err() != nil {
			return nil, value.Errorf(value.Cancelled, "await interrupted")
		}
		return nil, value.FromGoError(aerr, value.TypeError)
	}

	taskMutex.Lock()
	delete(taskFutures, id)
	taskMutex.Unlock()
	return v, nil
}

func taskAll(ctx context.Context, args []value.Value, _ map[string]value.Value) (value.Value, error) {
	if err := wantArgCount("all", args, 1, 1); err != nil {
		return nil, err
	}
	handles, err := unpackList("all", "handles", args[0])
	if err != nil {
		return nil, err
	}

	elements := handles.Snapshot()
	out := make([]value.Value, len(elements))
	for i, h := range elements {
		id, ierr := unpackInt("all", "handle", h)
		if ierr != nil {
			return nil, ierr
		}
		fut, ok := taskByHandle(id)
		if !ok {
			return nil, value.Errorf(value.ValueError, "all(): unknown task handle %d", id)
		}
		v, aerr := fut.Await(ctx)
		if aerr != nil {
			if ctx.Err() != nil {
				return nil, value.Errorf(value.Cancelled, "await interrupted")
			}
			return nil, value.FromGoError(aerr, value.TypeError)
		}
		out[i] = v
		taskMutex.Lock()
		delete(taskFutures, id)
		taskMutex.Unlock()
	}
	return value.NewList(out), nil
}
