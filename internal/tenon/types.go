package tenon

import (
	"encoding/json"
	"time"
)

// DefaultEndpoint is the production Tenon.io API.
const DefaultEndpoint = "http://beta.tenon.io/api/"

// Config is fixed at construction and never mutated afterwards.
type Config struct {
	Key      string
	Endpoint string        // defaults to DefaultEndpoint
	Timeout  time.Duration // 0 keeps the transport default
}

// Options are extra form fields forwarded verbatim (e.g. "level": "AA").
type Options map[string]string

// Result is the decoded response body. Only "status" and "message" are
// interpreted; everything else is passed through.
type Result map[string]any

// Status returns the service status field truncated to an int, or 0 when
// absent or non-numeric. Use it for display; success is decided by ok.
func (r Result) Status() int {
	switch v := r["status"].(type) {
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0
		}
		return int(f)
	case float64:
		return int(v)
	}
	return 0
}

// ok reports whether status is numerically exactly 200.
func (r Result) ok() bool {
	switch v := r["status"].(type) {
	case json.Number:
		f, err := v.Float64()
		return err == nil && f == 200
	case float64:
		return v == 200
	}
	return false
}

// Kind selects which request shape a check uses.
type Kind int

const (
	KindAuto Kind = iota
	KindURL
	KindSrc
	KindFragment
)

func (k Kind) String() string {
	switch k {
	case KindURL:
		return "url"
	case KindSrc:
		return "src"
	case KindFragment:
		return "fragment"
	default:
		return "auto"
	}
}

// ParseKind maps "auto", "url", "src" and "fragment" to a Kind.
func ParseKind(s string) (Kind, bool) {
	switch s {
	case "", "auto":
		return KindAuto, true
	case "url":
		return KindURL, true
	case "src":
		return KindSrc, true
	case "fragment":
		return KindFragment, true
	}
	return KindAuto, false
}
