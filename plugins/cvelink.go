package plugins

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

var cvePattern = regexp.MustCompile(`^CVE-\d{4}-\d{4,}$`)

// CVELink is the set of places a CVE can be looked up
type CVELink struct {
	CveID        string `json:"cve_id"`
	IncidentLink string `json:"incident_link,omitempty"`
	PublicLink   string `json:"public_link"`
	NVDLink      string `json:"nvd_link"`
}

// CVELinkPlugin prints lookup links for CVE identifiers
type CVELinkPlugin struct {
	IncidentURL string
}

// Name implements Plugin
func (CVELinkPlugin) Name() string { return "cve-link" }

// Description implements Plugin
func (CVELinkPlugin) Description() string {
	return "Print incident database and public links for CVE IDs"
}

// Run validates each CVE id and builds its links
func (p CVELinkPlugin) Run(_ context.Context, args []string) (any, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("%w: at least one CVE id is required", ErrInvalidArgs)
	}

	out := make([]CVELink, 0, len(args))
	for _, arg := range args {
		id := strings.ToUpper(strings.TrimSpace(arg))
		if !cvePattern.MatchString(id) {
			return nil, fmt.Errorf("%w: %q is not a CVE id", ErrInvalidArgs, arg)
		}

		link := CVELink{
			CveID:      id,
			PublicLink: "https://access.redhat.com/security/cve/" + id,
			NVDLink:    "https://nvd.nist.gov/vuln/detail/" + id,
		}
		if p.IncidentURL != "" {
			link.IncidentLink = strings.TrimRight(p.IncidentURL, "/") + "/osidb/api/v1/flaws/" + id
		}
		out = append(out, link)
	}
	return out, nil
}
