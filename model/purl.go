package model

// PURL is a parsed package URL with its canonical string forms
type PURL struct {
	Purl      string `json:"purl"` // canonical form without qualifiers or subpath
	Base      string `json:"base"` // canonical form without version
	Type      string `json:"type"`
	Namespace string `json:"namespace,omitempty"`
	Name      string `json:"name"`
	Version   string `json:"version,omitempty"`
	ObjType   string `json:"objtype"`
}

// NewPURL creates a new PURL instance
func NewPURL() *PURL {
	return &PURL{
		ObjType: "PURL",
	}
}
