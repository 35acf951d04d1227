package session

import (
	"context"
	"fmt"
	"iter"
	"net/url"

	"github.com/ortelius/griffon/model"
)

const (
	componentsPath      = "/api/v1/components"
	productVersionsPath = "/api/v1/product_versions"
	productStreamsPath  = "/api/v1/product_streams"
)

// Registry adapts a registry session (primary or community) to canonical model records
type Registry struct {
	client *Client
}

// NewRegistry wraps a client bound to a component registry
func NewRegistry(c *Client) *Registry {
	return &Registry{client: c}
}

// Name identifies the registry in output records
func (r *Registry) Name() string {
	return string(r.client.Service())
}

// CountComponents returns how many components match the filters
func (r *Registry) CountComponents(ctx context.Context, filters model.Filters) (int, error) {
	return Count(ctx, r.client, componentsPath, filters)
}

// ComponentsPage fetches a single limit/offset window of matching components
func (r *Registry) ComponentsPage(ctx context.Context, filters model.Filters, limit, offset int) ([]model.Component, error) {
	page, err := FetchPage[model.Component](ctx, r.client, componentsPath, filters, limit, offset)
	if err != nil {
		return nil, err
	}
	return page.Results, nil
}

// ListComponents lazily pages through matching components
func (r *Registry) ListComponents(ctx context.Context, filters model.Filters, maxResults int) iter.Seq2[model.Component, error] {
	return Paginate[model.Component](ctx, r.client, componentsPath, filters, maxResults)
}

// ComponentByPurl looks up the single component identified by purl
func (r *Registry) ComponentByPurl(ctx context.Context, purl string) (model.Component, error) {
	page, err := FetchPage[model.Component](ctx, r.client, componentsPath, model.Filters{"purl": purl}, 1, 0)
	if err != nil {
		return model.Component{}, err
	}
	if len(page.Results) == 0 {
		return model.Component{}, fmt.Errorf("component %s: %w", purl, model.ErrNotFound)
	}
	return page.Results[0], nil
}

// ComponentByUUID fetches a component by its registry UUID
func (r *Registry) ComponentByUUID(ctx context.Context, id string) (model.Component, error) {
	var c model.Component
	if err := r.client.GetJSON(ctx, componentsPath+"/"+url.PathEscape(id), nil, &c); err != nil {
		return model.Component{}, fmt.Errorf("component %s: %w", id, err)
	}
	return c, nil
}

// ProductVersionByName resolves a product version (an affect's ps_module) by name
func (r *Registry) ProductVersionByName(ctx context.Context, name string) (model.ProductVersion, error) {
	page, err := FetchPage[model.ProductVersion](ctx, r.client, productVersionsPath, model.Filters{"name": name}, 1, 0)
	if err != nil {
		return model.ProductVersion{}, err
	}
	if len(page.Results) == 0 {
		return model.ProductVersion{}, fmt.Errorf("product version %s: %w", name, model.ErrNotFound)
	}
	return page.Results[0], nil
}

// ProductStream resolves a product stream by ofuri, or by name when ofuri is empty
func (r *Registry) ProductStream(ctx context.Context, ofuri, name string) (model.ProductStream, error) {
	filters := model.Filters{"ofuri": ofuri}
	key := ofuri
	if ofuri == "" {
		filters = model.Filters{"name": name}
		key = name
	}
	page, err := FetchPage[model.ProductStream](ctx, r.client, productStreamsPath, filters, 1, 0)
	if err != nil {
		return model.ProductStream{}, err
	}
	if len(page.Results) == 0 {
		return model.ProductStream{}, fmt.Errorf("product stream %s: %w", key, model.ErrNotFound)
	}
	return page.Results[0], nil
}

// ComponentLink is the registry URL of a component
func (r *Registry) ComponentLink(c model.Component) string {
	if c.Link != "" {
		return c.Link
	}
	if c.UUID != "" {
		return r.client.URL(componentsPath + "/" + c.UUID)
	}
	return r.client.URL(componentsPath + "?purl=" + url.QueryEscape(c.Purl))
}
