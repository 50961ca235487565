package modules

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/alexchoi0/blueprint-engine-sub002/perm"
	"github.com/alexchoi0/blueprint-engine-sub002/value"
)

var httpClient = &http.Client{Timeout: 60 * time.Second}

func HTTP() Module {
	return Module{
		"get":     native("get", httpGet),
		"post":    native("post", httpPost),
		"request": native("request", httpRequest),
	}
}

func httpGet(ctx context.Context, args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	if err := wantArgCount("get", args, 1, 1); err != nil {
		return nil, err
	}
	url, err := unpackString("get", "url", args[0])
	if err != nil {
		return nil, err
	}
	return doRequest(ctx, "GET", url, "", kwargs)
}

func httpPost(ctx context.Context, args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	if err := wantArgCount("post", args, 1, 2); err != nil {
		return nil, err
	}
	url, err := unpackString("post", "url", args[0])
	if err != nil {
		return nil, err
	}
	body := ""
	if len(args) == 2 {
		body, err = unpackString("post", "body", args[1])
		if err != nil {
			return nil, err
		}
	}
	return doRequest(ctx, "POST", url, body, kwargs)
}

func httpRequest(ctx context.Context, args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	if err := wantArgCount("request", args, 2, 3); err != nil {
		return nil, err
	}
	method, err := unpackString("request", "method", args[0])
	if err != nil {
		return nil, err
	}
	url, err := unpackString("request", "url", args[1])
	if err != nil {
		return nil, err
	}
	body := ""
	if len(args) == 3 {
		body, err = unpackString("request", "body", args[2])
		if err != nil {
			return nil, err
		}
	}
	return doRequest(ctx, strings.ToUpper(method), url, body, kwargs)
}

func doRequest(ctx context.Context, method, url, body string, kwargs map[string]value.Value) (value.Value, error) {
	if perr := perm.CheckHTTP(ctx, url); perr != nil {
		return nil, perr
	}

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, rerr := http.NewRequestWithContext(ctx, method, url, reader)
	if rerr != nil {
		return nil, value.Errorf(value.HTTPError, "invalid request: %s", rerr)
	}

	if headers, ok := optKwarg(kwargs, "headers"); ok {
		headerDict, derr := unpackDict("request", "headers", headers)
		if derr != nil {
			return nil, derr
		}
		for _, pair := range headerDict.Pairs() {
			k, kok := pair.Key.(*value.String)
			v, vok := pair.Value.(*value.String)
			if !kok || !vok {
				return nil, value.Errorf(value.TypeError, "headers must map strings to strings")
			}
			req.Header.Set(k.Value, v.Value)
		}
	}

	resp, derr := httpClient.Do(req)
	if derr != nil {
		if ctx.Err() != nil {
			return nil, value.Errorf(value.Cancelled, "request cancelled")
		}
		return nil, value.Errorf(value.HTTPError, "request failed: %s", derr)
	}
	defer resp.Body.Close()

	data, berr := io.ReadAll(resp.Body)
	if berr != nil {
		return nil, value.Errorf(value.HTTPError, "reading response failed: %s", berr)
	}

	headers := value.NewDict()
	for k, vs := range resp.Header {
		headers.Set(&value.String{Value: strings.ToLower(k)}, &value.String{Value: strings.Join(vs, ", ")})
	}

	return &value.HttpResponse{
		Status:  resp.StatusCode,
		Body:    string(data),
		Headers: headers,
	}, nil
}
