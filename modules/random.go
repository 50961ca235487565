package modules

import (
	"context"
	"math/rand"

	"github.com/alexchoi0/blueprint-engine-sub002/value"
)

func Random() Module {
	return Module{
		"random":  native("random", randomRandom),
		"randint": native("randint", randomRandint),
		"choice":  native("choice", randomChoice),
		"shuffle": native("shuffle", randomShuffle),
	}
}

func randomRandom(_ context.Context, args []value.Value, _ map[string]value.Value) (value.Value, error) {
	if err := wantArgCount("random", args, 0, 0); err != nil {
		return nil, err
	}
	return &value.Float{Value: rand.Float64()}, nil
}

func randomRandint(_ context.Context, args []value.Value, _ map[string]value.Value) (value.Value, error) {
	if err := wantArgCount("randint", args, 2, 2); err != nil {
		return nil, err
	}
	lo, err := unpackInt("randint", "low", args[0])
	if err != nil {
		return nil, err
	}
	hi, err := unpackInt("randint", "high", args[1])
	if err != nil {
		return nil, err
	}
	if hi < lo {
		return nil, value.Errorf(value.ValueError, "randint() requires low <= high")
	}
	// inclusive on both ends
	return &value.Int{Value: lo + rand.Int63n(hi-lo+1)}, nil
}

func randomChoice(_ context.Context, args []value.Value, _ map[string]value.Value) (value.Value, error) {
	if err := wantArgCount("choice", args, 1, 1); err != nil {
		return nil, err
	}
	list, err := unpackList("choice", "values", args[0])
	if err != nil {
		return nil, err
	}
	elements := list.Snapshot()
	if len(elements) == 0 {
		return nil, value.Errorf(value.ValueError, "choice() of an empty list")
	}
	return elements[rand.Intn(len(elements))], nil
}

func randomShuffle(_ context.Context, args []value.Value, _ map[string]value.Value) (value.Value, error) {
	if err := wantArgCount("shuffle", args, 1, 1); err != nil {
		return nil, err
	}
	list, err := unpackList("shuffle", "values", args[0])
	if err != nil {
		return nil, err
	}
	elements := list.Snapshot()
	rand.Shuffle(len(elements), func(i, j int) {
		elements[i], elements[j] = elements[j], elements[i]
	})
	list.Replace(elements)
	return value.NONE, nil
}
