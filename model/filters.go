package model

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// Filters is the flat set of query-string filters sent to a listing endpoint
type Filters map[string]string

// Clone returns an independent copy so partitions never share a filter map
func (f Filters) Clone() Filters {
	out := make(Filters, len(f)+2)
	for k, v := range f {
		out[k] = v
	}
	return out
}

// With returns a copy of the filters with key set to value
func (f Filters) With(key, value string) Filters {
	out := f.Clone()
	out[key] = value
	return out
}

// Without returns a copy of the filters with the given keys removed
func (f Filters) Without(keys ...string) Filters {
	out := f.Clone()
	for _, k := range keys {
		delete(out, k)
	}
	return out
}

// Page returns a copy of the filters addressing one limit/offset window
func (f Filters) Page(limit, offset int) Filters {
	out := f.Clone()
	out["limit"] = strconv.Itoa(limit)
	out["offset"] = strconv.Itoa(offset)
	return out
}

// Values converts the filters into url.Values, skipping empty values
func (f Filters) Values() url.Values {
	v := url.Values{}
	for k, val := range f {
		if val == "" {
			continue
		}
		v.Set(k, val)
	}
	return v
}

// String renders the filters in a stable order, used when logging a failing request
func (f Filters) String() string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+f[k])
	}
	return strings.Join(parts, "&")
}
