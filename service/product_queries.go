package service

import (
	"context"
	"sort"

	"github.com/ortelius/griffon/model"
)

// ProductSummaryQuery resolves a product stream by ofuri or name
type ProductSummaryQuery struct {
	deps   Deps
	params Params
}

// NewProductSummaryQuery takes an ofuri or a product stream name
func NewProductSummaryQuery(deps Deps, params Params) (*ProductSummaryQuery, error) {
	const name = "product-summary"
	if err := params.validate(name, []string{"ofuri", "name"}); err != nil {
		return nil, err
	}
	if err := params.requireOne(name, "ofuri", "name"); err != nil {
		return nil, err
	}
	return &ProductSummaryQuery{deps: deps.withDefaults(), params: params}, nil
}

// Execute implements Query
func (q *ProductSummaryQuery) Execute(ctx context.Context) (any, error) {
	return q.Run(ctx)
}

// Run looks the stream up
func (q *ProductSummaryQuery) Run(ctx context.Context) (model.ProductStream, error) {
	if err := q.deps.requireRegistry(); err != nil {
		return model.ProductStream{}, err
	}
	return q.deps.Registry.ProductStream(ctx, q.params.String("ofuri"), q.params.String("name"))
}

// ProductManifestQuery lists the root components shipped in a product stream
type ProductManifestQuery struct {
	deps   Deps
	params Params
}

// NewProductManifestQuery takes the stream ofuri
func NewProductManifestQuery(deps Deps, params Params) (*ProductManifestQuery, error) {
	const name = "product-manifest"
	if err := params.validate(name, []string{"ofuri"}); err != nil {
		return nil, err
	}
	if err := params.requireOne(name, "ofuri"); err != nil {
		return nil, err
	}
	return &ProductManifestQuery{deps: deps.withDefaults(), params: params}, nil
}

// Execute implements Query
func (q *ProductManifestQuery) Execute(ctx context.Context) (any, error) {
	return q.Run(ctx)
}

// Run counts the stream's root components and fetches them in parallel windows, sorted by purl
func (q *ProductManifestQuery) Run(ctx context.Context) ([]model.Component, error) {
	if err := q.deps.requireRegistry(); err != nil {
		return nil, err
	}

	ofuri := q.params.String("ofuri")
	filters := model.Filters{
		"ofuri":           ofuri,
		"root_components": "True",
		"include_fields":  componentFields,
	}
	found, err := countAndFetch(ctx, q.deps, q.deps.Registry, ofuri, filters)
	if err != nil {
		return nil, err
	}

	comps := dedupeByPurl(found)
	sort.Slice(comps, func(i, j int) bool { return comps[i].Purl < comps[j].Purl })
	return comps, nil
}
