package broker

import (
	"strings"

	"github.com/google/cel-go/cel"
	"github.com/valyala/fastjson"
)

// Filter wraps a compiled CEL program evaluated against a relayed payload's
// fields. When disabled, Eval always returns true. The broker stays a pure
// byte-level relay for unfiltered subscribers: parsing happens only when at
// least one subscription in a broadcast carries a filter.
type Filter struct {
	prog    cel.Program
	enabled bool
}

// NewFilter compiles expr. An empty expression yields a disabled filter.
//
// Available variables mirror the payload fields: type, severity, message,
// producer_uuid (strings), timestamp, activity_uuid, seq_id, parent_uuid
// (ints), plus text (the raw payload) and size (its byte length).
func NewFilter(expr string) (Filter, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return Filter{enabled: false}, nil
	}
	env, err := cel.NewEnv(
		cel.Variable("type", cel.StringType),
		cel.Variable("severity", cel.StringType),
		cel.Variable("message", cel.StringType),
		cel.Variable("producer_uuid", cel.StringType),
		cel.Variable("timestamp", cel.IntType),
		cel.Variable("activity_uuid", cel.IntType),
		cel.Variable("seq_id", cel.IntType),
		cel.Variable("parent_uuid", cel.IntType),
		cel.Variable("text", cel.StringType),
		cel.Variable("size", cel.IntType),
	)
	if err != nil {
		return Filter{}, err
	}
	ast, iss := env.Parse(expr)
	if iss != nil && iss.Err() != nil {
		return Filter{}, iss.Err()
	}
	checked, iss2 := env.Check(ast)
	if iss2 != nil && iss2.Err() != nil {
		return Filter{}, iss2.Err()
	}
	prog, err := env.Program(checked)
	if err != nil {
		return Filter{}, err
	}
	return Filter{prog: prog, enabled: true}, nil
}

// payloadFields holds the once-per-broadcast parse shared by every filtered
// subscription. A nil value means the payload was not valid JSON; filters
// then suppress delivery while unfiltered subscribers still receive the raw
// bytes.
type payloadFields struct {
	raw []byte
	v   *fastjson.Value
}

func parsePayload(raw []byte) *payloadFields {
	var p fastjson.Parser
	v, err := p.ParseBytes(raw)
	if err != nil {
		return &payloadFields{raw: raw}
	}
	return &payloadFields{raw: raw, v: v}
}

// Eval evaluates the compiled expression against the parsed payload. When
// disabled, returns true. Evaluation errors and unparsable payloads count as
// non-matches.
func (f Filter) Eval(p *payloadFields) bool {
	if !f.enabled {
		return true
	}
	if p == nil || p.v == nil {
		return false
	}
	out, _, err := f.prog.Eval(map[string]any{
		"type":          string(p.v.GetStringBytes("type")),
		"severity":      string(p.v.GetStringBytes("severity")),
		"message":       string(p.v.GetStringBytes("message")),
		"producer_uuid": string(p.v.GetStringBytes("producer_uuid")),
		"timestamp":     int64(p.v.GetUint64("timestamp")),
		"activity_uuid": int64(p.v.GetUint64("activity_uuid")),
		"seq_id":        int64(p.v.GetUint64("seq_id")),
		"parent_uuid":   int64(p.v.GetUint64("parent_uuid")),
		"text":          string(p.raw),
		"size":          int64(len(p.raw)),
	})
	if err != nil {
		return false
	}
	b, ok := out.Value().(bool)
	return ok && b
}
