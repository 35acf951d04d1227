// Package model - incident database records
package model

// Flaw is a vulnerability record in the incident database
type Flaw struct {
	UUID        string   `json:"uuid"`
	CveID       string   `json:"cve_id"`
	State       string   `json:"state,omitempty"`
	Resolution  string   `json:"resolution,omitempty"`
	Impact      string   `json:"impact,omitempty"`
	Title       string   `json:"title,omitempty"`
	Description string   `json:"description,omitempty"`
	Affects     []Affect `json:"affects,omitempty"`
}

// Affect joins a flaw to a (product version, component name) pair
type Affect struct {
	UUID         string `json:"uuid"`
	Flaw         string `json:"flaw"`
	PsModule     string `json:"ps_module"`
	PsComponent  string `json:"ps_component"`
	Affectedness string `json:"affectedness,omitempty"`
	Resolution   string `json:"resolution,omitempty"`
	Impact       string `json:"impact,omitempty"`
}

// ProductVersionNames returns the distinct ps_module values referenced by the flaw's affects
func (f Flaw) ProductVersionNames() []string {
	seen := make(map[string]bool, len(f.Affects))
	var names []string
	for _, a := range f.Affects {
		if a.PsModule == "" || seen[a.PsModule] {
			continue
		}
		seen[a.PsModule] = true
		names = append(names, a.PsModule)
	}
	return names
}
