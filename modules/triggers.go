package modules

import (
	"context"
	"time"

	"github.com/alexchoi0/blueprint-engine-sub002/value"
)

// Triggers yields tick generators for polling-style scripts.
func Triggers() Module {
	return Module{
		"interval": native("interval", triggerInterval),
		"timeout":  native("timeout", triggerTimeout),
	}
}

// interval(seconds, count=n) yields an incrementing tick every period;
// without count it ticks until the consumer stops or is cancelled.
func triggerInterval(_ context.Context, args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	if err := wantArgCount("interval", args, 1, 1); err != nil {
		return nil, err
	}
	seconds, err := unpackNumber("interval", "seconds", args[0])
	if err != nil {
		return nil, err
	}
	if seconds <= 0 {
		return nil, value.Errorf(value.ValueError, "interval() period must be positive")
	}
	count := int64(-1)
	if c, ok := optKwarg(kwargs, "count"); ok {
		count, err = unpackInt("interval", "count", c)
		if err != nil {
			return nil, err
		}
		if count < 0 {
			return nil, value.Errorf(value.ValueError, "interval() count must not be negative")
		}
	}
	period := time.Duration(seconds * float64(time.Second))

	return value.NewGenerator("interval", func(ctx context.Context, yield func(context.Context, value.Value) error) (value.Value, error) {
		ticker := time.NewTicker(period)
		defer ticker.Stop()
		for tick := int64(0); count < 0 || tick < count; tick++ {
			select {
			case <-ticker.C:
				if yerr := yield(ctx, &value.Int{Value: tick}); yerr != nil {
					return nil, yerr
				}
			case <-ctx.Done():
				return nil, value.Errorf(value.Cancelled, "interval cancelled")
			}
		}
		return value.NONE, nil
	}), nil
}

// timeout(seconds) yields exactly once after the delay.
func triggerTimeout(_ context.Context, args []value.Value, _ map[string]value.Value) (value.Value, error) {
	if err := wantArgCount("timeout", args, 1, 1); err != nil {
		return nil, err
	}
	seconds, err := unpackNumber("timeout", "seconds", args[0])
	if err != nil {
		return nil, err
	}
	if seconds < 0 {
		return nil, value.Errorf(value.ValueError, "timeout() duration must not be negative")
	}
	delay := time.Duration(seconds * float64(time.Second))

	return value.NewGenerator("timeout", func(ctx context.Context, yield func(context.Context, value.Value) error) (value.Value, error) {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-timer.C:
			if yerr := yield(ctx, value.NONE); yerr != nil {
				return nil, yerr
			}
			return value.NONE, nil
		case <-ctx.Done():
			return nil, value.Errorf(value.Cancelled, "timeout cancelled")
		}
	}), nil
}
