package service

import (
	"context"

	"github.com/ortelius/griffon/model"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// enrich fills the sources and upstream components of a first-party component.
// Other namespaces are returned untouched. A failed sub-fetch leaves its field empty.
func enrich(ctx context.Context, reg ComponentRegistry, logger *zap.Logger, c model.Component) model.Component {
	if !c.IsRedHat() {
		return c
	}
	c.Sources = related(ctx, reg, logger, c.Purl, "sources", model.Filters{"provides": c.Purl, "include_fields": refFields})
	c.UpstreamComponents = related(ctx, reg, logger, c.Purl, "upstream_components", model.Filters{"upstreams": c.Purl, "include_fields": refFields})
	return c
}

func related(ctx context.Context, reg ComponentRegistry, logger *zap.Logger, purl, relation string, filters model.Filters) []model.ComponentRef {
	refs := []model.ComponentRef{}

	count, err := reg.CountComponents(ctx, filters)
	if err != nil {
		logger.Warn("enrichment failed", zap.String("purl", purl), zap.String("relation", relation), zap.Error(err))
		return refs
	}

	for comp, err := range reg.ListComponents(ctx, filters, resultCap(count)) {
		if err != nil {
			logger.Warn("enrichment failed",
				zap.String("purl", purl),
				zap.String("relation", relation),
				zap.Int("count", count),
				zap.Error(err))
			return []model.ComponentRef{}
		}
		refs = append(refs, comp.Ref())
	}
	return refs
}

// enrichAll enriches components concurrently and keeps their input order
func enrichAll(ctx context.Context, d Deps, reg ComponentRegistry, comps []model.Component) []model.Component {
	out := make([]model.Component, len(comps))

	var g errgroup.Group
	g.SetLimit(poolSize(d.Workers, len(comps)))
	for i, c := range comps {
		g.Go(func() error {
			out[i] = enrich(ctx, reg, d.Logger, c)
			return nil
		})
	}
	_ = g.Wait()
	return out
}
