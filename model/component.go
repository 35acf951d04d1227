// Package model defines the transient views of registry and incident database records used by griffon,
// including components, products, flaws and affects.
package model

// NamespaceRedHat marks first-party builds in the component registry.
const NamespaceRedHat = "REDHAT"

// NamespaceUpstream marks components describing an upstream open-source project.
const NamespaceUpstream = "UPSTREAM"

// Component is a software component as tracked by the component registry
type Component struct {
	Purl       string `json:"purl"`
	UUID       string `json:"uuid,omitempty"`
	Link       string `json:"link,omitempty"`
	Name       string `json:"name"`
	Type       string `json:"type,omitempty"`
	Version    string `json:"version,omitempty"`
	Release    string `json:"release,omitempty"`
	Arch       string `json:"arch,omitempty"`
	Namespace  string `json:"namespace,omitempty"`
	NVR        string `json:"nvr,omitempty"`
	RelatedURL string `json:"related_url,omitempty"`

	// Upstreams holds the purls of the components this one originates from
	Upstreams []string `json:"upstreams,omitempty"`

	Products        []ProductRef `json:"products,omitempty"`
	ProductVersions []ProductRef `json:"product_versions,omitempty"`
	ProductStreams  []ProductRef `json:"product_streams,omitempty"`
	ProductVariants []ProductRef `json:"product_variants,omitempty"`
	Channels        []ProductRef `json:"channels,omitempty"`

	// Sources and UpstreamComponents are only populated by enrichment
	Sources            []ComponentRef `json:"sources,omitempty"`
	UpstreamComponents []ComponentRef `json:"upstream_components,omitempty"`
}

// ComponentRef is the trimmed form of a component used inside other records
type ComponentRef struct {
	Purl      string `json:"purl"`
	Name      string `json:"name,omitempty"`
	Version   string `json:"version,omitempty"`
	Namespace string `json:"namespace,omitempty"`
}

// Ref returns the trimmed reference form of the component
func (c Component) Ref() ComponentRef {
	return ComponentRef{
		Purl:      c.Purl,
		Name:      c.Name,
		Version:   c.Version,
		Namespace: c.Namespace,
	}
}

// IsRedHat reports whether the component is a first-party build
func (c Component) IsRedHat() bool {
	return c.Namespace == NamespaceRedHat
}

// ProductVersionNames returns the distinct product version names the component belongs to,
// in the order the registry listed them
func (c Component) ProductVersionNames() []string {
	seen := make(map[string]bool, len(c.ProductVersions))
	names := make([]string, 0, len(c.ProductVersions))
	for _, pv := range c.ProductVersions {
		if pv.Name == "" || seen[pv.Name] {
			continue
		}
		seen[pv.Name] = true
		names = append(names, pv.Name)
	}
	return names
}
