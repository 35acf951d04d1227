// Package model - product hierarchy records (products, versions, streams, variants, channels)
package model

// ProductRef is a membership entry embedded in a component record. The registry uses the same shape for
// products, product versions, product streams, product variants and channels.
type ProductRef struct {
	Name              string   `json:"name"`
	Ofuri             string   `json:"ofuri,omitempty"`
	UUID              string   `json:"uuid,omitempty"`
	Link              string   `json:"link,omitempty"`
	Active            *bool    `json:"active,omitempty"`
	ExcludeComponents []string `json:"exclude_components,omitempty"`
}

// IsActive treats a missing active flag as active
func (p ProductRef) IsActive() bool {
	return p.Active == nil || *p.Active
}

// Excludes reports whether the stream explicitly excludes the named component
func (p ProductRef) Excludes(componentName string) bool {
	for _, name := range p.ExcludeComponents {
		if name == componentName {
			return true
		}
	}
	return false
}

// ProductVersion is a product version as returned by the registry
type ProductVersion struct {
	UUID           string       `json:"uuid,omitempty"`
	Ofuri          string       `json:"ofuri,omitempty"`
	Name           string       `json:"name"`
	Description    string       `json:"description,omitempty"`
	Products       []ProductRef `json:"products,omitempty"`
	ProductStreams []ProductRef `json:"product_streams,omitempty"`
}

// ProductStream is a continuously maintained release line
type ProductStream struct {
	UUID              string       `json:"uuid,omitempty"`
	Ofuri             string       `json:"ofuri"`
	Name              string       `json:"name"`
	Link              string       `json:"link,omitempty"`
	Active            bool         `json:"active"`
	CPE               string       `json:"cpe,omitempty"`
	ExcludeComponents []string     `json:"exclude_components,omitempty"`
	Products          []ProductRef `json:"products,omitempty"`
	ProductVersions   []ProductRef `json:"product_versions,omitempty"`
	ProductVariants   []ProductRef `json:"product_variants,omitempty"`
	Channels          []ProductRef `json:"channels,omitempty"`
	ManifestLink      string       `json:"manifest,omitempty"`
}
