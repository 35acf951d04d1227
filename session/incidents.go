package session

import (
	"context"
	"fmt"
	"iter"
	"net/url"

	"github.com/ortelius/griffon/model"
)

const (
	flawsPath   = "/osidb/api/v1/flaws"
	affectsPath = "/osidb/api/v1/affects"
)

// Incidents adapts an incident database session to canonical model records
type Incidents struct {
	client *Client
}

// NewIncidents wraps a client bound to the incident database
func NewIncidents(c *Client) *Incidents {
	return &Incidents{client: c}
}

// FlawByCVE resolves the flaw carrying cveID, with its affects embedded
func (i *Incidents) FlawByCVE(ctx context.Context, cveID string) (model.Flaw, error) {
	page, err := FetchPage[model.Flaw](ctx, i.client, flawsPath, model.Filters{"cve_id": cveID, "include_fields": flawFields}, 1, 0)
	if err != nil {
		return model.Flaw{}, err
	}
	if len(page.Results) == 0 {
		return model.Flaw{}, fmt.Errorf("flaw %s: %w", cveID, model.ErrNotFound)
	}
	return page.Results[0], nil
}

// Flaw fetches a flaw by UUID or CVE ID
func (i *Incidents) Flaw(ctx context.Context, id string) (model.Flaw, error) {
	var f model.Flaw
	if err := i.client.GetJSON(ctx, flawsPath+"/"+url.PathEscape(id), model.Filters{"include_fields": flawFields}, &f); err != nil {
		return model.Flaw{}, fmt.Errorf("flaw %s: %w", id, err)
	}
	return f, nil
}

// ListAffects lazily pages through affects matching the filters
func (i *Incidents) ListAffects(ctx context.Context, filters model.Filters, maxResults int) iter.Seq2[model.Affect, error] {
	return Paginate[model.Affect](ctx, i.client, affectsPath, filters, maxResults)
}

// FlawLink is the incident database URL of a flaw
func (i *Incidents) FlawLink(f model.Flaw) string {
	id := f.CveID
	if id == "" {
		id = f.UUID
	}
	return i.client.URL(flawsPath + "/" + id)
}

const flawFields = "uuid,cve_id,state,resolution,impact,title,description,affects"
