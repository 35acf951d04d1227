package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ortelius/griffon/model"
	"github.com/ortelius/griffon/util"
	"go.uber.org/zap"
)

var componentCVEsParams = []string{
	"purl", "component_name",
	"affect_affectedness", "affect_resolution", "affect_impact",
	"flaw_state", "flaw_resolution", "flaw_impact",
}

// ComponentCVEsQuery lists the flaws affecting a component, one record per affect
type ComponentCVEsQuery struct {
	deps   Deps
	params Params
}

// NewComponentCVEsQuery takes a purl (or component UUID) or a component_name
func NewComponentCVEsQuery(deps Deps, params Params) (*ComponentCVEsQuery, error) {
	const name = "component-cves"
	if err := params.validate(name, componentCVEsParams); err != nil {
		return nil, err
	}
	if err := params.requireOne(name, "purl", "component_name"); err != nil {
		return nil, err
	}
	return &ComponentCVEsQuery{deps: deps.withDefaults(), params: params}, nil
}

// Execute implements Query
func (q *ComponentCVEsQuery) Execute(ctx context.Context) (any, error) {
	return q.Run(ctx)
}

// Run resolves the component, then fans out over its product versions listing matching affects
func (q *ComponentCVEsQuery) Run(ctx context.Context) ([]model.AffectRecord, error) {
	if err := errors.Join(q.deps.requireRegistry(), q.deps.requireIncidents()); err != nil {
		return nil, err
	}

	comps, err := q.resolve(ctx)
	if err != nil {
		return nil, err
	}

	componentName := q.params.String("component_name")
	var pvNames []string
	for _, c := range comps {
		if componentName == "" {
			componentName = c.Name
		}
		pvNames = append(pvNames, c.ProductVersionNames()...)
	}
	pvNames = util.DedupeStrings(pvNames)

	records := []model.AffectRecord{}
	if len(pvNames) == 0 {
		return records, nil
	}

	base := model.Filters{
		"ps_component": componentName,
		"affectedness": q.params.String("affect_affectedness"),
		"resolution":   q.params.String("affect_resolution"),
		"impact":       q.params.String("affect_impact"),
	}
	parts := make([]partition, 0, len(pvNames))
	for _, pv := range pvNames {
		parts = append(parts, partition{Name: pv, Filters: base.With("ps_module", pv)})
	}

	var single *model.Component
	if len(comps) == 1 {
		single = &comps[0]
	}
	flaws := &flawCache{incidents: q.deps.Incidents, entries: map[string]*flawEntry{}}

	found, _ := fanOut(ctx, q.deps.Logger, q.deps.Workers, parts, func(ctx context.Context, p partition) ([]model.AffectRecord, error) {
		var out []model.AffectRecord
		for affect, err := range q.deps.Incidents.ListAffects(ctx, p.Filters, 0) {
			if err != nil {
				return nil, err
			}
			flaw, err := flaws.get(ctx, affect.Flaw)
			if err != nil {
				q.deps.Logger.Warn("flaw lookup failed, skipping affect",
					zap.String("affect", affect.UUID), zap.String("flaw", affect.Flaw), zap.Error(err))
				continue
			}
			if !q.keepFlaw(flaw) {
				continue
			}

			rec := model.NewAffectRecord(flaw, affect)
			rec.FlawLink = q.deps.Incidents.FlawLink(flaw)
			if single != nil {
				rec.ComponentPurl = single.Purl
				rec.ComponentLink = q.deps.Registry.ComponentLink(*single)
				rec.ProductVersionLink = productVersionLink(*single, affect.PsModule)
			}
			out = append(out, rec)
		}
		return out, nil
	})
	return append(records, found...), nil
}

// resolve finds the component by purl or UUID, or the latest root components carrying the name
func (q *ComponentCVEsQuery) resolve(ctx context.Context) ([]model.Component, error) {
	if id := q.params.String("purl"); id != "" {
		var (
			c   model.Component
			err error
		)
		if util.IsUUID(id) {
			c, err = q.deps.Registry.ComponentByUUID(ctx, id)
		} else {
			c, err = q.deps.Registry.ComponentByPurl(ctx, id)
		}
		if err != nil {
			return nil, err
		}
		return []model.Component{c}, nil
	}

	name := q.params.String("component_name")
	filters := model.Filters{
		"name":                         name,
		"latest_components_by_streams": "True",
		"root_components":              "True",
		"include_fields":               componentFields,
	}
	var comps []model.Component
	for c, err := range q.deps.Registry.ListComponents(ctx, filters, maxResults) {
		if err != nil {
			return nil, err
		}
		comps = append(comps, c)
	}
	if len(comps) == 0 {
		return nil, fmt.Errorf("component %s: %w", name, model.ErrNotFound)
	}
	q.deps.Logger.Debug("resolved component", zap.String("name", name), zap.Int("components", len(comps)))
	return comps, nil
}

func (q *ComponentCVEsQuery) keepFlaw(f model.Flaw) bool {
	return matches(q.params.String("flaw_state"), f.State) &&
		matches(q.params.String("flaw_resolution"), f.Resolution) &&
		matches(q.params.String("flaw_impact"), f.Impact)
}

func matches(want, got string) bool {
	return want == "" || want == got
}

func productVersionLink(c model.Component, name string) string {
	for _, pv := range c.ProductVersions {
		if pv.Name == name {
			return pv.Link
		}
	}
	return ""
}

// flawCache fetches each flaw once per query run, even when partitions ask concurrently.
// Failed lookups are not kept, so a later caller tries again.
type flawCache struct {
	incidents IncidentDatabase

	mu      sync.Mutex
	entries map[string]*flawEntry
}

type flawEntry struct {
	mu     sync.Mutex
	loaded bool
	flaw   model.Flaw
}

func (c *flawCache) get(ctx context.Context, id string) (model.Flaw, error) {
	c.mu.Lock()
	e, ok := c.entries[id]
	if !ok {
		e = &flawEntry{}
		c.entries[id] = e
	}
	c.mu.Unlock()

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.loaded {
		return e.flaw, nil
	}
	flaw, err := c.incidents.Flaw(ctx, id)
	if err != nil {
		return model.Flaw{}, err
	}
	e.flaw, e.loaded = flaw, true
	return flaw, nil
}
