package host

import (
	"fmt"
	"strconv"
	"strings"
)

// Params is the untyped parameter map the host passes to every operation.
// Accessors never panic on missing or oddly typed values.
type Params map[string]any

// String returns the value for key as a string; missing keys yield "".
func (p Params) String(key string) string {
	v, ok := p[key]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

// Bool reports whether the value for key is truthy the way the host treats
// flags: true, non-zero numbers, and non-empty strings other than "0" and
// "false"/"off"/"no".
func (p Params) Bool(key string) bool {
	v, ok := p[key]
	if !ok || v == nil {
		return false
	}
	switch t := v.(type) {
	case bool:
		return t
	case int:
		return t != 0
	case int64:
		return t != 0
	case float64:
		return t != 0
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "", "0", "false", "off", "no":
			return false
		default:
			return true
		}
	default:
		return true
	}
}

// ParseAssignments turns key=value arguments into Params. Values stay strings.
func ParseAssignments(args []string) (Params, error) {
	p := Params{}
	for _, a := range args {
		k, v, ok := strings.Cut(a, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid parameter %q (want key=value)", a)
		}
		p[k] = v
	}
	return p, nil
}

// Merge copies other into p, overwriting existing keys.
func (p Params) Merge(other Params) Params {
	if p == nil {
		p = Params{}
	}
	for k, v := range other {
		p[k] = v
	}
	return p
}
