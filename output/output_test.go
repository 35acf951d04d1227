package output

import (
	"bytes"
	"testing"

	"github.com/ortelius/griffon/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func records() []model.AffectRecord {
	return []model.AffectRecord{
		{CveID: "CVE-2023-0001", PsModule: "rhel-9", PsComponent: "openssl", Affectedness: "AFFECTED"},
		{CveID: "CVE-2023-0002", PsModule: "rhel-8", PsComponent: "openssl"},
	}
}

func TestRenderJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, JSON, model.CVEProductVersions{CveID: "CVE-2023-0001", ProductVersions: []string{"rhel-9"}}))
	assert.Equal(t, "{\n  \"cve_id\": \"CVE-2023-0001\",\n  \"product_versions\": [\n    \"rhel-9\"\n  ]\n}\n", buf.String())

	buf.Reset()
	require.NoError(t, Render(&buf, "", []string{}))
	assert.Equal(t, "[]\n", buf.String())
}

func TestRenderYAMLUsesJSONFieldNames(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, YAML, records()))

	out := buf.String()
	assert.Contains(t, out, "- affect_uuid: \"\"\n")
	assert.Contains(t, out, "  affectedness: AFFECTED\n")
	assert.Contains(t, out, "  cve_id: CVE-2023-0001\n")
	assert.Contains(t, out, "  ps_module: rhel-8\n")
	assert.NotContains(t, out, "psmodule")
}

func TestRenderTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, Table, records()))

	out := buf.String()
	assert.Contains(t, out, "CVE ID")
	assert.Contains(t, out, "PS MODULE")
	assert.Contains(t, out, "CVE-2023-0002")
	assert.Contains(t, out, "rhel-9")
}

func TestRenderTableSkipsNestedFields(t *testing.T) {
	c := model.Component{
		Purl: "pkg:rpm/redhat/bash@5.1", Name: "bash",
		ProductStreams: []model.ProductRef{{Name: "rhel-9.2.0"}},
	}
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, Table, c))

	out := buf.String()
	assert.Contains(t, out, "PURL")
	assert.Contains(t, out, "pkg:rpm/redhat/bash@5.1")
	assert.NotContains(t, out, "PRODUCT STREAMS")
	assert.NotContains(t, out, "rhel-9.2.0")
}

func TestRenderTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, Table, []model.Component{}))
	assert.Equal(t, "No results\n", buf.String())
}

func TestRenderUnknownFormat(t *testing.T) {
	err := Render(&bytes.Buffer{}, "xml", records())
	assert.ErrorIs(t, err, ErrUnknownFormat)
}
