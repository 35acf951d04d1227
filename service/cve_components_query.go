package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/ortelius/griffon/model"
	"github.com/ortelius/griffon/util"
	"go.uber.org/zap"
)

var cveComponentsParams = []string{"cve_id", "include_inactive_product_streams"}

// CVEComponentsQuery lists the registry components named by a flaw's affects
type CVEComponentsQuery struct {
	deps   Deps
	params Params
}

// NewCVEComponentsQuery takes a cve_id (or flaw UUID)
func NewCVEComponentsQuery(deps Deps, params Params) (*CVEComponentsQuery, error) {
	const name = "cve-components"
	if err := params.validate(name, cveComponentsParams); err != nil {
		return nil, err
	}
	if err := params.requireOne(name, "cve_id"); err != nil {
		return nil, err
	}
	return &CVEComponentsQuery{deps: deps.withDefaults(), params: params}, nil
}

// Execute implements Query
func (q *CVEComponentsQuery) Execute(ctx context.Context) (any, error) {
	return q.Run(ctx)
}

// Run resolves every affect's product version, then fans out one partition per
// (component, product stream) pair. Results are unique by purl and sorted by name, newest version first.
func (q *CVEComponentsQuery) Run(ctx context.Context) ([]model.Component, error) {
	if err := errors.Join(q.deps.requireRegistry(), q.deps.requireIncidents()); err != nil {
		return nil, err
	}

	flaw, err := lookupFlaw(ctx, q.deps.Incidents, q.params.String("cve_id"))
	if err != nil {
		return nil, err
	}

	versions := q.productVersions(ctx, flaw.ProductVersionNames())

	includeInactive := q.params.Bool("include_inactive_product_streams")
	seen := map[string]bool{}
	var parts []partition
	for _, affect := range flaw.Affects {
		pv, ok := versions[affect.PsModule]
		if !ok || affect.PsComponent == "" {
			continue
		}
		for _, ps := range pv.ProductStreams {
			if !includeInactive && !ps.IsActive() {
				continue
			}
			key := affect.PsComponent + "@" + ps.Ofuri
			if seen[key] {
				continue
			}
			seen[key] = true
			parts = append(parts, partition{
				Name: key,
				Filters: model.Filters{
					"name":           affect.PsComponent,
					"ofuri":          ps.Ofuri,
					"include_fields": componentFields,
				},
			})
		}
	}

	found, _ := fanOut(ctx, q.deps.Logger, q.deps.Workers, parts, func(ctx context.Context, p partition) ([]model.Component, error) {
		var out []model.Component
		for c, err := range q.deps.Registry.ListComponents(ctx, p.Filters, maxResults) {
			if err != nil {
				return nil, err
			}
			out = append(out, c)
		}
		return out, nil
	})

	comps := dedupeByPurl(found)
	sort.SliceStable(comps, func(i, j int) bool {
		if comps[i].Name != comps[j].Name {
			return comps[i].Name < comps[j].Name
		}
		return util.CompareVersions(comps[i].Version, comps[j].Version) > 0
	})
	return comps, nil
}

// productVersions resolves the named product versions concurrently. Unknown names are logged and skipped.
func (q *CVEComponentsQuery) productVersions(ctx context.Context, names []string) map[string]model.ProductVersion {
	parts := make([]partition, 0, len(names))
	for _, n := range names {
		parts = append(parts, partition{Name: n, Filters: model.Filters{"name": n}})
	}

	resolved, _ := fanOut(ctx, q.deps.Logger, q.deps.Workers, parts, func(ctx context.Context, p partition) ([]model.ProductVersion, error) {
		pv, err := q.deps.Registry.ProductVersionByName(ctx, p.Name)
		if err != nil {
			return nil, fmt.Errorf("skipping product version: %w", err)
		}
		return []model.ProductVersion{pv}, nil
	})
	q.deps.Logger.Debug("resolved product versions", zap.Int("requested", len(names)), zap.Int("resolved", len(resolved)))

	out := make(map[string]model.ProductVersion, len(resolved))
	for _, pv := range resolved {
		out[pv.Name] = pv
	}
	return out
}

// lookupFlaw accepts a CVE id or a flaw UUID
func lookupFlaw(ctx context.Context, incidents IncidentDatabase, id string) (model.Flaw, error) {
	if util.IsUUID(id) {
		f, err := incidents.Flaw(ctx, id)
		if err != nil {
			return model.Flaw{}, fmt.Errorf("flaw %s: %w", id, err)
		}
		return f, nil
	}
	return incidents.FlawByCVE(ctx, id)
}

// dedupeByPurl keeps the first occurrence of each purl
func dedupeByPurl(comps []model.Component) []model.Component {
	seen := make(map[string]bool, len(comps))
	out := make([]model.Component, 0, len(comps))
	for _, c := range comps {
		if seen[c.Purl] {
			continue
		}
		seen[c.Purl] = true
		out = append(out, c)
	}
	return out
}
