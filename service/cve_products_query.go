package service

import (
	"context"
	"sort"

	"github.com/ortelius/griffon/model"
)

// CVEProductVersionsQuery lists the product versions a flaw's affects refer to
type CVEProductVersionsQuery struct {
	deps   Deps
	params Params
}

// NewCVEProductVersionsQuery takes a cve_id (or flaw UUID)
func NewCVEProductVersionsQuery(deps Deps, params Params) (*CVEProductVersionsQuery, error) {
	const name = "cve-product-versions"
	if err := params.validate(name, []string{"cve_id"}); err != nil {
		return nil, err
	}
	if err := params.requireOne(name, "cve_id"); err != nil {
		return nil, err
	}
	return &CVEProductVersionsQuery{deps: deps.withDefaults(), params: params}, nil
}

// Execute implements Query
func (q *CVEProductVersionsQuery) Execute(ctx context.Context) (any, error) {
	return q.Run(ctx)
}

// Run returns the sorted distinct ps_module values of the flaw
func (q *CVEProductVersionsQuery) Run(ctx context.Context) (model.CVEProductVersions, error) {
	if err := q.deps.requireIncidents(); err != nil {
		return model.CVEProductVersions{}, err
	}

	flaw, err := lookupFlaw(ctx, q.deps.Incidents, q.params.String("cve_id"))
	if err != nil {
		return model.CVEProductVersions{}, err
	}

	names := append([]string{}, flaw.ProductVersionNames()...)
	sort.Strings(names)
	return model.CVEProductVersions{CveID: flaw.CveID, ProductVersions: names}, nil
}
