package value

import (
	"fmt"
)

// HttpResponse is the read-only projection of an HTTP exchange handed to
// scripts. Headers keys are lower-cased on construction.
type HttpResponse struct {
	Status  int
	Body    string
	Headers *Dict
}

func (r *HttpResponse) Type() ValueType { return HTTP_RESPONSE_VALUE }
func (r *HttpResponse) Inspect() string {
	return fmt.Sprintf("<http_response status=%d len=%d>", r.Status, len(r.Body))
}

// GetAttr exposes status/body/headers as attributes.
func (r *HttpResponse) GetAttr(name string) (Value, bool) {
	switch name {
	case "status":
		return &Int{Value: int64(r.Status)}, true
	case "body":
		return &String{Value: r.Body}, true
	case "headers":
		if r.Headers == nil {
			return NewDict(), true
		}
		return r.Headers, true
	}
	return nil, false
}

// ProcessResult is the outcome of a finished subprocess.
type ProcessResult struct {
	Code   int
	Stdout string
	Stderr string
}

func (p *ProcessResult) Type() ValueType { return PROCESS_RESULT_VALUE }
func (p *ProcessResult) Inspect() string {
	return fmt.Sprintf("<process_result code=%d>", p.Code)
}

func (p *ProcessResult) GetAttr(name string) (Value, bool) {
	switch name {
	case "code":
		return &Int{Value: int64(p.Code)}, true
	case "stdout":
		return &String{Value: p.Stdout}, true
	case "stderr":
		return &String{Value: p.Stderr}, true
	case "success":
		return NativeBool(p.Code == 0), true
	}
	return nil, false
}
