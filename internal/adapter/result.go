package adapter

import "encoding/json"

// Result is the normalized outcome of one operation: either a set of success
// fields or a single error message, never both.
type Result struct {
	fields map[string]any
	errMsg string
	failed bool
}

// Succeed returns a success-shaped result. A nil map is treated as empty.
func Succeed(fields map[string]any) Result {
	if fields == nil {
		fields = map[string]any{}
	}
	return Result{fields: fields}
}

// Fail returns an error-shaped result.
func Fail(msg string) Result {
	return Result{errMsg: msg, failed: true}
}

func (r Result) Failed() bool { return r.failed }

// Error returns the failure message, or "" for a success.
func (r Result) Error() string { return r.errMsg }

// Field returns a single success field.
func (r Result) Field(key string) (any, bool) {
	if r.failed {
		return nil, false
	}
	v, ok := r.fields[key]
	return v, ok
}

// Map renders the result in the host's flat shape: the success fields, or
// {"error": message}.
func (r Result) Map() map[string]any {
	if r.failed {
		return map[string]any{"error": r.errMsg}
	}
	out := make(map[string]any, len(r.fields))
	for k, v := range r.fields {
		out[k] = v
	}
	return out
}

func (r Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Map())
}

// LockState is the tagged outcome of a registrar-lock lookup.
type LockState int

const (
	LockFailed LockState = iota
	LockLocked
	LockUnlocked
)

func (s LockState) String() string {
	switch s {
	case LockLocked:
		return "locked"
	case LockUnlocked:
		return "unlocked"
	default:
		return "failed"
	}
}

type LockResult struct {
	State   LockState
	Message string
}

func (r LockResult) Failed() bool { return r.State == LockFailed }

// Result adapts the lock outcome to the common result shape.
func (r LockResult) Result() Result {
	if r.Failed() {
		return Fail(r.Message)
	}
	return Succeed(map[string]any{"lockstatus": r.State.String()})
}
