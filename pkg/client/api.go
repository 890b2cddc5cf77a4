package client

import (
	"context"
	"encoding/json"
	"strconv"
)

// API is the set of operations offered by the WIU API. Client talks to the
// remote service directly; CachingClient wraps another API and adds
// read-through caching.
//
//go:generate mockgen -source=./api.go -destination=./mock/api.go -package=mock
type API interface {
	// Servers lists the edge servers jobs can be submitted from.
	Servers(ctx context.Context) ([]Server, error)

	// Submit queues a job testing uri from each of servers and returns its ID.
	// options carries test-specific settings and is passed through as is.
	Submit(ctx context.Context, uri string, servers, tests []string, options map[string]any) (string, error)

	// SubmitRaw decodes a JSON job request and submits it.
	SubmitRaw(ctx context.Context, raw []byte) (string, error)

	// Retrieve fetches the current state of a job.
	Retrieve(ctx context.Context, id string) (JobResult, error)
}

// Server is a single server descriptor as returned by the sources endpoint.
// Its shape is owned by the API and left undecoded.
type Server = json.RawMessage

// JobRequest is the body posted to the jobs endpoint.
type JobRequest struct {
	URI     string         `json:"uri"`
	Sources []string       `json:"sources"`
	Tests   []string       `json:"tests"`
	Options map[string]any `json:"options"`
}

// JobResult is the full job payload returned by the jobs endpoint. See the
// WIU API documentation for its content.
type JobResult map[string]any

// InProgress reports whether response.in_progress is set. A missing flag
// means the job is complete.
func (j JobResult) InProgress() bool {
	resp, ok := j["response"].(map[string]any)
	if !ok {
		return false
	}
	return truthy(resp["in_progress"])
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0
	case json.Number:
		f, err := strconv.ParseFloat(string(t), 64)
		return err == nil && f != 0
	case string:
		return t != "" && t != "0"
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	default:
		return true
	}
}
