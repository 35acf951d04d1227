package service

import (
	"context"
	"errors"
	"iter"
	"slices"
	"strings"
	"sync"

	"github.com/ortelius/griffon/model"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

var errBoom = errors.New("boom")

// fakeRegistry is an in-memory component registry that records how it was called
type fakeRegistry struct {
	name       string
	components []model.Component
	sources    map[string][]model.Component // by the purl they provide
	upstreams  map[string][]model.Component // by the purl they are upstream of
	versions   map[string]model.ProductVersion
	streams    []model.ProductStream

	count       func(model.Filters) (int, bool) // overrides the reported count when ok
	failOffset  map[int]bool
	failRelated bool

	mu          sync.Mutex
	calls       map[string]int
	countCalls  []model.Filters
	pageOffsets []int
	listMax     map[string]int // relation -> maxResults
}

func newFakeRegistry(name string, comps ...model.Component) *fakeRegistry {
	return &fakeRegistry{
		name:       name,
		components: comps,
		sources:    map[string][]model.Component{},
		upstreams:  map[string][]model.Component{},
		versions:   map[string]model.ProductVersion{},
		failOffset: map[int]bool{},
		calls:      map[string]int{},
		listMax:    map[string]int{},
	}
}

func (f *fakeRegistry) record(op string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[op]++
}

func (f *fakeRegistry) called(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeRegistry) matching(filters model.Filters) []model.Component {
	if p := filters["provides"]; p != "" {
		return f.sources[p]
	}
	if p := filters["upstreams"]; p != "" {
		return f.upstreams[p]
	}

	var out []model.Component
	for _, c := range f.components {
		if v := filters["name"]; v != "" && c.Name != v {
			continue
		}
		if v := filters["re_name"]; v != "" && !strings.Contains(c.Name, v) {
			continue
		}
		if v := filters["purl"]; v != "" && c.Purl != v {
			continue
		}
		if v := filters["namespace"]; v != "" && c.Namespace != v {
			continue
		}
		if v := filters["related_url"]; v != "" && !strings.Contains(c.RelatedURL, v) {
			continue
		}
		if v := filters["ofuri"]; v != "" && !slices.ContainsFunc(c.ProductStreams, func(ps model.ProductRef) bool { return ps.Ofuri == v }) {
			continue
		}
		out = append(out, c)
	}
	return out
}

func (f *fakeRegistry) Name() string { return f.name }

func (f *fakeRegistry) CountComponents(_ context.Context, filters model.Filters) (int, error) {
	f.record("CountComponents")
	f.mu.Lock()
	f.countCalls = append(f.countCalls, filters.Clone())
	f.mu.Unlock()

	if f.count != nil {
		if n, ok := f.count(filters); ok {
			return n, nil
		}
	}
	return len(f.matching(filters)), nil
}

func (f *fakeRegistry) ComponentsPage(_ context.Context, filters model.Filters, limit, offset int) ([]model.Component, error) {
	f.record("ComponentsPage")
	f.mu.Lock()
	f.pageOffsets = append(f.pageOffsets, offset)
	fail := f.failOffset[offset]
	f.mu.Unlock()
	if fail {
		return nil, errBoom
	}

	all := f.matching(filters)
	if offset >= len(all) {
		return nil, nil
	}
	return all[offset:min(offset+limit, len(all))], nil
}

func (f *fakeRegistry) ListComponents(_ context.Context, filters model.Filters, maxResults int) iter.Seq2[model.Component, error] {
	f.record("ListComponents")
	relation := "components"
	switch {
	case filters["provides"] != "":
		relation = "sources"
	case filters["upstreams"] != "":
		relation = "upstream_components"
	}
	f.mu.Lock()
	f.listMax[relation] = maxResults
	f.mu.Unlock()

	return func(yield func(model.Component, error) bool) {
		if f.failRelated && relation != "components" {
			yield(model.Component{}, errBoom)
			return
		}
		for i, c := range f.matching(filters) {
			if maxResults > 0 && i >= maxResults {
				return
			}
			if !yield(c, nil) {
				return
			}
		}
	}
}

func (f *fakeRegistry) ComponentByPurl(_ context.Context, purl string) (model.Component, error) {
	f.record("ComponentByPurl")
	for _, c := range f.components {
		if c.Purl == purl {
			return c, nil
		}
	}
	return model.Component{}, model.ErrNotFound
}

func (f *fakeRegistry) ComponentByUUID(_ context.Context, id string) (model.Component, error) {
	f.record("ComponentByUUID")
	for _, c := range f.components {
		if c.UUID == id {
			return c, nil
		}
	}
	return model.Component{}, model.ErrNotFound
}

func (f *fakeRegistry) ProductVersionByName(_ context.Context, name string) (model.ProductVersion, error) {
	f.record("ProductVersionByName")
	if pv, ok := f.versions[name]; ok {
		return pv, nil
	}
	return model.ProductVersion{}, model.ErrNotFound
}

func (f *fakeRegistry) ProductStream(_ context.Context, ofuri, name string) (model.ProductStream, error) {
	f.record("ProductStream")
	for _, ps := range f.streams {
		if (ofuri != "" && ps.Ofuri == ofuri) || (ofuri == "" && ps.Name == name) {
			return ps, nil
		}
	}
	return model.ProductStream{}, model.ErrNotFound
}

func (f *fakeRegistry) ComponentLink(c model.Component) string {
	return "https://" + f.name + ".test/components/" + c.UUID
}

// fakeIncidents is an in-memory incident database
type fakeIncidents struct {
	flaws       []model.Flaw
	affects     []model.Affect
	failModules map[string]bool
	failFlaws   map[string]int // remaining failed lookups per flaw id

	mu    sync.Mutex
	calls map[string]int
}

func newFakeIncidents(flaws ...model.Flaw) *fakeIncidents {
	f := &fakeIncidents{flaws: flaws, failModules: map[string]bool{}, failFlaws: map[string]int{}, calls: map[string]int{}}
	for _, flaw := range flaws {
		f.affects = append(f.affects, flaw.Affects...)
	}
	return f
}

func (f *fakeIncidents) record(op string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[op]++
}

func (f *fakeIncidents) called(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeIncidents) FlawByCVE(_ context.Context, cveID string) (model.Flaw, error) {
	f.record("FlawByCVE")
	for _, flaw := range f.flaws {
		if flaw.CveID == cveID {
			return flaw, nil
		}
	}
	return model.Flaw{}, model.ErrNotFound
}

func (f *fakeIncidents) Flaw(_ context.Context, id string) (model.Flaw, error) {
	f.record("Flaw")
	f.mu.Lock()
	if f.failFlaws[id] > 0 {
		f.failFlaws[id]--
		f.mu.Unlock()
		return model.Flaw{}, errBoom
	}
	f.mu.Unlock()
	for _, flaw := range f.flaws {
		if flaw.UUID == id || flaw.CveID == id {
			return flaw, nil
		}
	}
	return model.Flaw{}, model.ErrNotFound
}

func (f *fakeIncidents) ListAffects(_ context.Context, filters model.Filters, _ int) iter.Seq2[model.Affect, error] {
	f.record("ListAffects")
	return func(yield func(model.Affect, error) bool) {
		if f.failModules[filters["ps_module"]] {
			yield(model.Affect{}, errBoom)
			return
		}
		for _, a := range f.affects {
			if !matches(filters["ps_module"], a.PsModule) ||
				!matches(filters["ps_component"], a.PsComponent) ||
				!matches(filters["affectedness"], a.Affectedness) ||
				!matches(filters["resolution"], a.Resolution) ||
				!matches(filters["impact"], a.Impact) {
				continue
			}
			if !yield(a, nil) {
				return
			}
		}
	}
}

func (f *fakeIncidents) FlawLink(flaw model.Flaw) string {
	return "https://incidents.test/flaws/" + flaw.CveID
}

func observedDeps(reg, community *fakeRegistry, inc *fakeIncidents) (Deps, *observer.ObservedLogs) {
	core, logs := observer.New(zap.WarnLevel)
	d := Deps{Logger: zap.New(core), Workers: 4}
	if reg != nil {
		d.Registry = reg
	}
	if community != nil {
		d.Community = community
	}
	if inc != nil {
		d.Incidents = inc
	}
	return d, logs
}

func active(b bool) *bool { return &b }
