// Package service implements griffon's cross-service aggregation queries. Each query combines paginated,
// concurrent lookups against the component registries and the incident database and returns plain
// model records ready for output.
package service

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"github.com/ortelius/griffon/model"
	"go.uber.org/zap"
)

var (
	// ErrInvalidParams is returned when a query gets an unknown or missing parameter
	ErrInvalidParams = errors.New("invalid parameters")

	// ErrServiceMissing is returned when a query needs a service that was not configured
	ErrServiceMissing = errors.New("required service not configured")
)

// ComponentRegistry is the read surface of a component registry (primary or community)
type ComponentRegistry interface {
	Name() string
	CountComponents(ctx context.Context, filters model.Filters) (int, error)
	ComponentsPage(ctx context.Context, filters model.Filters, limit, offset int) ([]model.Component, error)
	ListComponents(ctx context.Context, filters model.Filters, maxResults int) iter.Seq2[model.Component, error]
	ComponentByPurl(ctx context.Context, purl string) (model.Component, error)
	ComponentByUUID(ctx context.Context, id string) (model.Component, error)
	ProductVersionByName(ctx context.Context, name string) (model.ProductVersion, error)
	ProductStream(ctx context.Context, ofuri, name string) (model.ProductStream, error)
	ComponentLink(c model.Component) string
}

// IncidentDatabase is the read surface of the incident database
type IncidentDatabase interface {
	FlawByCVE(ctx context.Context, cveID string) (model.Flaw, error)
	Flaw(ctx context.Context, id string) (model.Flaw, error)
	ListAffects(ctx context.Context, filters model.Filters, maxResults int) iter.Seq2[model.Affect, error]
	FlawLink(f model.Flaw) string
}

// Deps are the sessions and settings a query runs with. Community may be nil.
type Deps struct {
	Registry  ComponentRegistry
	Community ComponentRegistry
	Incidents IncidentDatabase
	Logger    *zap.Logger
	Workers   int
}

// Query is implemented by every aggregation query
type Query interface {
	Execute(ctx context.Context) (any, error)
}

func (d Deps) withDefaults() Deps {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Workers < 1 {
		d.Workers = 1
	}
	return d
}

func (d Deps) requireRegistry() error {
	if d.Registry == nil {
		return fmt.Errorf("component registry: %w", ErrServiceMissing)
	}
	return nil
}

func (d Deps) requireIncidents() error {
	if d.Incidents == nil {
		return fmt.Errorf("incident database: %w", ErrServiceMissing)
	}
	return nil
}

const (
	// maxResults caps any single fetch
	maxResults = 10000
	// degradedMaxResults caps fetches whose reported count is above maxResults
	degradedMaxResults = 5000
	// windowSize is the width of one offset window when a known total is split across workers
	windowSize = 100
)

// resultCap trades completeness for latency on very large result sets
func resultCap(count int) int {
	if count > maxResults {
		return degradedMaxResults
	}
	return maxResults
}

const componentFields = "uuid,purl,type,name,version,release,arch,namespace,nvr,related_url,link,upstreams," +
	"products,product_versions,product_streams,product_variants,channels"

const refFields = "purl,name,version,namespace"
