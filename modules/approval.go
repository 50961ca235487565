package modules

import (
	"context"

	"github.com/alexchoi0/blueprint-engine-sub002/perm"
	"github.com/alexchoi0/blueprint-engine-sub002/value"
)

// Approval lets scripts pause on an explicit human confirmation, routed
// through the same ambient prompt the permission system uses.
func Approval() Module {
	return Module{
		"request": native("request", approvalRequest),
	}
}

func approvalRequest(ctx context.Context, args []value.Value, _ map[string]value.Value) (value.Value, error) {
	if err := wantArgCount("request", args, 1, 1); err != nil {
		return nil, err
	}
	message, err := unpackString("request", "message", args[0])
	if err != nil {
		return nil, err
	}
	approved, aerr := perm.RequestApproval(ctx, message)
	if aerr != nil {
		return nil, value.FromGoError(aerr, value.IOError)
	}
	return value.NativeBool(approved), nil
}
