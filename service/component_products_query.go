package service

import (
	"context"

	"github.com/ortelius/griffon/model"
	"github.com/ortelius/griffon/util"
)

// ComponentProductsQuery reports which products, versions, streams, variants and channels contain a component
type ComponentProductsQuery struct {
	deps   Deps
	params Params
}

// NewComponentProductsQuery takes a purl or a component uuid
func NewComponentProductsQuery(deps Deps, params Params) (*ComponentProductsQuery, error) {
	const name = "component-products"
	if err := params.validate(name, []string{"purl", "uuid"}); err != nil {
		return nil, err
	}
	if err := params.requireOne(name, "purl", "uuid"); err != nil {
		return nil, err
	}
	return &ComponentProductsQuery{deps: deps.withDefaults(), params: params}, nil
}

// Execute implements Query
func (q *ComponentProductsQuery) Execute(ctx context.Context) (any, error) {
	return q.Run(ctx)
}

// Run performs a single lookup and returns the membership lists as the registry reported them
func (q *ComponentProductsQuery) Run(ctx context.Context) (model.ComponentProducts, error) {
	if err := q.deps.requireRegistry(); err != nil {
		return model.ComponentProducts{}, err
	}

	var (
		c   model.Component
		err error
	)
	id := util.FirstNonEmpty(q.params.String("uuid"), q.params.String("purl"))
	if util.IsUUID(id) {
		c, err = q.deps.Registry.ComponentByUUID(ctx, id)
	} else {
		c, err = q.deps.Registry.ComponentByPurl(ctx, id)
	}
	if err != nil {
		return model.ComponentProducts{}, err
	}

	return model.ComponentProducts{
		Purl:            c.Purl,
		Name:            c.Name,
		Products:        orEmpty(c.Products),
		ProductVersions: orEmpty(c.ProductVersions),
		ProductStreams:  orEmpty(c.ProductStreams),
		ProductVariants: orEmpty(c.ProductVariants),
		Channels:        orEmpty(c.Channels),
	}, nil
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
