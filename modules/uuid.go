package modules

import (
	"context"

	"github.com/google/uuid"

	"github.com/alexchoi0/blueprint-engine-sub002/value"
)

func UUID() Module {
	return Module{
		"uuid4": native("uuid4", uuidV4),
		"uuid7": native("uuid7", uuidV7),
	}
}

func uuidV4(_ context.Context, args []value.Value, _ map[string]value.Value) (value.Value, error) {
	if err := wantArgCount("uuid4", args, 0, 0); err != nil {
		return nil, err
	}
	return &value.String{Value: uuid.NewString()}, nil
}

func uuidV7(_ context.Context, args []value.Value, _ map[string]value.Value) (value.Value, error) {
	if err := wantArgCount("uuid7", args, 0, 0); err != nil {
		return nil, err
	}
	id, err := uuid.NewV7()
	if err != nil {
		return nil, value.Errorf(value.IOError, "uuid7() failed: %s", err)
	}
	return &value.String{Value: id.String()}, nil
}
