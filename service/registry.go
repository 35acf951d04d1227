package service

import "sort"

// Constructor builds a query from its dependencies and parameters
type Constructor func(deps Deps, params Params) (Query, error)

// Registry maps the CLI name of each query to its constructor
var Registry = map[string]Constructor{
	"component-cves": func(d Deps, p Params) (Query, error) {
		q, err := NewComponentCVEsQuery(d, p)
		if err != nil {
			return nil, err
		}
		return q, nil
	},
	"cve-components": func(d Deps, p Params) (Query, error) {
		q, err := NewCVEComponentsQuery(d, p)
		if err != nil {
			return nil, err
		}
		return q, nil
	},
	"cve-product-versions": func(d Deps, p Params) (Query, error) {
		q, err := NewCVEProductVersionsQuery(d, p)
		if err != nil {
			return nil, err
		}
		return q, nil
	},
	"component-products": func(d Deps, p Params) (Query, error) {
		q, err := NewComponentProductsQuery(d, p)
		if err != nil {
			return nil, err
		}
		return q, nil
	},
	"component-dependents": func(d Deps, p Params) (Query, error) {
		q, err := NewDependentsQuery(d, p)
		if err != nil {
			return nil, err
		}
		return q, nil
	},
	"product-summary": func(d Deps, p Params) (Query, error) {
		q, err := NewProductSummaryQuery(d, p)
		if err != nil {
			return nil, err
		}
		return q, nil
	},
	"product-manifest": func(d Deps, p Params) (Query, error) {
		q, err := NewProductManifestQuery(d, p)
		if err != nil {
			return nil, err
		}
		return q, nil
	},
}

// Names returns the registered query names in sorted order
func Names() []string {
	names := make([]string, 0, len(Registry))
	for name := range Registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
