package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParamsGetters(t *testing.T) {
	p := Params{
		"component_name": "  openssl ",
		"dedupe":         true,
		"search_all":     "true",
		"no_community":   "nope",
		"streams":        "a, b,,c",
		"list":           []string{"x", " ", "y"},
		"count":          3,
	}

	assert.Equal(t, "openssl", p.String("component_name"))
	assert.Equal(t, "3", p.String("count"))
	assert.Equal(t, "", p.String("missing"))
	assert.True(t, p.Bool("dedupe"))
	assert.True(t, p.Bool("search_all"))
	assert.False(t, p.Bool("no_community"))
	assert.False(t, p.Bool("missing"))
	assert.Equal(t, []string{"a", "b", "c"}, p.Strings("streams"))
	assert.Equal(t, []string{"x", "y"}, p.Strings("list"))
}

func TestParamsValidate(t *testing.T) {
	p := Params{"cve_id": "CVE-2023-0001", "bogus": 1, "also_bogus": true}
	err := p.validate("cve-components", cveComponentsParams)
	assert.ErrorIs(t, err, ErrInvalidParams)
	assert.Contains(t, err.Error(), "also_bogus, bogus")

	assert.NoError(t, Params{"cve_id": "x"}.validate("cve-components", cveComponentsParams))
}

func TestParamsRequireOne(t *testing.T) {
	assert.ErrorIs(t, Params{}.requireOne("q", "purl", "uuid"), ErrInvalidParams)
	assert.NoError(t, Params{"uuid": "u"}.requireOne("q", "purl", "uuid"))
}

func TestQueryRegistry(t *testing.T) {
	assert.Equal(t, []string{
		"component-cves",
		"component-dependents",
		"component-products",
		"cve-components",
		"cve-product-versions",
		"product-manifest",
		"product-summary",
	}, Names())

	for _, name := range Names() {
		q, err := Registry[name](Deps{}, Params{})
		assert.ErrorIs(t, err, ErrInvalidParams, name)
		assert.Nil(t, q, name)
	}
}
