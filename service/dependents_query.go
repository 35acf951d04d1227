package service

import (
	"context"
	"fmt"

	"github.com/ortelius/griffon/model"
	"github.com/ortelius/griffon/util"
	"go.uber.org/zap"
)

var dependentsParams = []string{
	"component_name", "purl", "strict_name_search", "namespace",
	"search_latest", "search_related_url", "search_all", "search_all_roots", "search_upstreams",
	"search_community", "no_community", "filter_rh_naming", "dedupe",
	"include_inactive_product_streams", "include_product_streams_excluded_components",
}

// searchMode is one strategy for finding components that contain the target
type searchMode string

const (
	modeLatest     searchMode = "latest"
	modeRelatedURL searchMode = "related_url"
	modeAll        searchMode = "all"
	modeAllRoots   searchMode = "all_roots"
	modeUpstreams  searchMode = "upstreams"
)

// modeFlags lists the modes in the order they run, keyed by the parameter enabling them
var modeFlags = []struct {
	param string
	mode  searchMode
}{
	{"search_latest", modeLatest},
	{"search_related_url", modeRelatedURL},
	{"search_all", modeAll},
	{"search_all_roots", modeAllRoots},
	{"search_upstreams", modeUpstreams},
}

// DependentsQuery finds the products and components that contain a component
type DependentsQuery struct {
	deps   Deps
	params Params
}

// NewDependentsQuery takes a component_name or purl plus search mode flags
func NewDependentsQuery(deps Deps, params Params) (*DependentsQuery, error) {
	const name = "component-dependents"
	if err := params.validate(name, dependentsParams); err != nil {
		return nil, err
	}
	if err := params.requireOne(name, "component_name", "purl"); err != nil {
		return nil, err
	}
	if purl := params.String("purl"); purl != "" && !util.IsPURL(purl) {
		return nil, fmt.Errorf("%s: malformed purl %q: %w", name, purl, ErrInvalidParams)
	}
	return &DependentsQuery{deps: deps.withDefaults(), params: params}, nil
}

// Execute implements Query
func (q *DependentsQuery) Execute(ctx context.Context) (any, error) {
	return q.Run(ctx)
}

// modes returns the enabled search modes; latest when none is set
func (q *DependentsQuery) modes() []searchMode {
	var modes []searchMode
	for _, f := range modeFlags {
		if q.params.Bool(f.param) {
			modes = append(modes, f.mode)
		}
	}
	if len(modes) == 0 {
		modes = []searchMode{modeLatest}
	}
	return modes
}

// targetName is the component name, taken from the purl when only a purl was given
func (q *DependentsQuery) targetName() string {
	if name := q.params.String("component_name"); name != "" {
		return name
	}
	if p, err := util.ParsePURL(q.params.String("purl")); err == nil {
		return p.Name
	}
	return ""
}

// registries are the primary registry plus the community one when requested
func (q *DependentsQuery) registries() []ComponentRegistry {
	regs := []ComponentRegistry{q.deps.Registry}
	if !q.params.Bool("search_community") || q.params.Bool("no_community") {
		return regs
	}
	if q.deps.Community == nil {
		q.deps.Logger.Warn("community registry not configured, searching the primary registry only")
		return regs
	}
	return append(regs, q.deps.Community)
}

// filters returns the registry filters for one mode. The second result is false when the mode
// cannot run for the given parameters.
func (q *DependentsQuery) filters(mode searchMode) (model.Filters, bool) {
	name := q.params.String("component_name")
	base := model.Filters{
		"namespace":      q.params.String("namespace"),
		"include_fields": componentFields,
	}
	switch {
	case name == "":
		base["provides"] = q.params.String("purl")
	case q.params.Bool("strict_name_search"):
		base["name"] = name
	default:
		base["re_name"] = name
	}

	switch mode {
	case modeLatest:
		return base.With("latest_components_by_streams", "True").With("root_components", "True"), true
	case modeRelatedURL:
		if name == "" {
			return nil, false
		}
		return base.Without("name", "re_name").
			With("related_url", name).
			With("latest_components_by_streams", "True"), true
	case modeAll:
		return base, true
	case modeAllRoots:
		return base.With("root_components", "True"), true
	case modeUpstreams:
		return base.With("namespace", model.NamespaceUpstream), true
	}
	return nil, false
}

// Run executes every enabled mode against every selected registry and concatenates the results
func (q *DependentsQuery) Run(ctx context.Context) ([]model.DependentRecord, error) {
	if err := q.deps.requireRegistry(); err != nil {
		return nil, err
	}

	records := []model.DependentRecord{}
	for _, reg := range q.registries() {
		for _, mode := range q.modes() {
			filters, ok := q.filters(mode)
			if !ok {
				q.deps.Logger.Warn("search mode needs a component name, skipping", zap.String("mode", string(mode)))
				continue
			}

			label := reg.Name() + "/" + string(mode)
			hits, err := countAndFetch(ctx, q.deps, reg, label, filters)
			if err != nil {
				q.deps.Logger.Warn("search mode failed", zap.String("partition", label), zap.String("filters", filters.String()), zap.Error(err))
				continue
			}

			for _, c := range enrichAll(ctx, q.deps, reg, hits) {
				records = append(records, model.DependentRecord{Component: c, SearchMode: string(mode), Registry: reg.Name()})
			}
		}
	}

	target := q.targetName()
	if q.params.Bool("filter_rh_naming") && target != "" {
		records = filterNamed(target, records, func(r model.DependentRecord) string { return r.Name })
	}
	for i := range records {
		records[i].ProductStreams = q.pruneStreams(records[i].ProductStreams, records[i].Name, target)
	}
	if q.params.Bool("dedupe") {
		records = dedupeRecords(records)
	}
	return records, nil
}

// pruneStreams drops inactive streams, and streams excluding the component or the search target,
// unless asked to keep them
func (q *DependentsQuery) pruneStreams(streams []model.ProductRef, names ...string) []model.ProductRef {
	keepInactive := q.params.Bool("include_inactive_product_streams")
	keepExcluding := q.params.Bool("include_product_streams_excluded_components")
	if streams == nil || (keepInactive && keepExcluding) {
		return streams
	}

	kept := make([]model.ProductRef, 0, len(streams))
	for _, ps := range streams {
		if !keepInactive && !ps.IsActive() {
			continue
		}
		if !keepExcluding && excludesAny(ps, names) {
			continue
		}
		kept = append(kept, ps)
	}
	return kept
}

func excludesAny(ps model.ProductRef, names []string) bool {
	for _, name := range names {
		if name != "" && ps.Excludes(name) {
			return true
		}
	}
	return false
}

// dedupeRecords keeps the first record of each purl across modes and registries
func dedupeRecords(records []model.DependentRecord) []model.DependentRecord {
	seen := make(map[string]bool, len(records))
	out := make([]model.DependentRecord, 0, len(records))
	for _, r := range records {
		if seen[r.Purl] {
			continue
		}
		seen[r.Purl] = true
		out = append(out, r)
	}
	return out
}
