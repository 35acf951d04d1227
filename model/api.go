// Package model - output records assembled by the aggregation queries
package model

// Page is the listing envelope returned by every paginated endpoint
type Page[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// HasNext reports whether the service advertised another page
func (p Page[T]) HasNext() bool {
	return p.Next != nil && *p.Next != ""
}

// AffectRecord is one affect flattened together with its parent flaw
type AffectRecord struct {
	CveID              string `json:"cve_id"`
	FlawUUID           string `json:"flaw_uuid"`
	Title              string `json:"title"`
	FlawState          string `json:"flaw_state"`
	FlawResolution     string `json:"flaw_resolution"`
	FlawImpact         string `json:"flaw_impact"`
	AffectUUID         string `json:"affect_uuid"`
	PsModule           string `json:"ps_module"`
	PsComponent        string `json:"ps_component"`
	Affectedness       string `json:"affectedness"`
	Resolution         string `json:"resolution"`
	Impact             string `json:"impact"`
	ComponentPurl      string `json:"component_purl,omitempty"`
	FlawLink           string `json:"flaw_link,omitempty"`
	ComponentLink      string `json:"component_link,omitempty"`
	ProductVersionLink string `json:"product_version_link,omitempty"`
}

// NewAffectRecord flattens an affect and the flaw it belongs to
func NewAffectRecord(flaw Flaw, affect Affect) AffectRecord {
	return AffectRecord{
		CveID:          flaw.CveID,
		FlawUUID:       flaw.UUID,
		Title:          flaw.Title,
		FlawState:      flaw.State,
		FlawResolution: flaw.Resolution,
		FlawImpact:     flaw.Impact,
		AffectUUID:     affect.UUID,
		PsModule:       affect.PsModule,
		PsComponent:    affect.PsComponent,
		Affectedness:   affect.Affectedness,
		Resolution:     affect.Resolution,
		Impact:         affect.Impact,
	}
}

// DependentRecord is a component found by a dependents search, labelled with how it was found
type DependentRecord struct {
	Component
	SearchMode string `json:"search_mode"`
	Registry   string `json:"registry"`
}

// ComponentProducts is the product membership of a single component
type ComponentProducts struct {
	Purl            string       `json:"purl"`
	Name            string       `json:"name"`
	Products        []ProductRef `json:"products"`
	ProductVersions []ProductRef `json:"product_versions"`
	ProductStreams  []ProductRef `json:"product_streams"`
	ProductVariants []ProductRef `json:"product_variants"`
	Channels        []ProductRef `json:"channels"`
}

// CVEProductVersions lists the product versions referenced by a flaw's affects
type CVEProductVersions struct {
	CveID           string   `json:"cve_id"`
	ProductVersions []string `json:"product_versions"`
}
