package service

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Params is the flat parameter mapping a query is built from. Values are scalars or string lists.
// Every query gets its own Params; nothing is shared between invocations.
type Params map[string]any

// String returns the parameter as a string, or "" when unset
func (p Params) String(key string) string {
	switch v := p[key].(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case []string:
		return strings.Join(v, ",")
	default:
		return fmt.Sprint(v)
	}
}

// Bool returns the parameter as a flag; strings like "true" and "1" count as set
func (p Params) Bool(key string) bool {
	switch v := p[key].(type) {
	case bool:
		return v
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		return err == nil && b
	default:
		return false
	}
}

// Strings returns the parameter as a list; a comma separated string is split
func (p Params) Strings(key string) []string {
	var raw []string
	switch v := p[key].(type) {
	case []string:
		raw = v
	case string:
		raw = strings.Split(v, ",")
	}

	var out []string
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// validate rejects parameter names the query does not know
func (p Params) validate(query string, allowed []string) error {
	known := make(map[string]bool, len(allowed))
	for _, a := range allowed {
		known[a] = true
	}

	var unknown []string
	for k := range p {
		if !known[k] {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return fmt.Errorf("%s: unknown parameters %s: %w", query, strings.Join(unknown, ", "), ErrInvalidParams)
	}
	return nil
}

// requireOne checks that at least one of the keys is set
func (p Params) requireOne(query string, keys ...string) error {
	for _, k := range keys {
		if p.String(k) != "" {
			return nil
		}
	}
	return fmt.Errorf("%s: one of %s is required: %w", query, strings.Join(keys, ", "), ErrInvalidParams)
}
