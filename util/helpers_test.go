package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanPURL(t *testing.T) {
	cleaned, err := CleanPURL("pkg:rpm/redhat/openssl@3.0.7-18.el9?arch=x86_64#sub")
	require.NoError(t, err)
	assert.Equal(t, "pkg:rpm/redhat/openssl@3.0.7-18.el9", cleaned)

	_, err = CleanPURL("not a purl")
	assert.Error(t, err)
}

func TestGetBasePURL(t *testing.T) {
	base, err := GetBasePURL("pkg:rpm/redhat/openssl@3.0.7-18.el9?arch=src")
	require.NoError(t, err)
	assert.Equal(t, "pkg:rpm/redhat/openssl", base)
}

func TestDescribePURL(t *testing.T) {
	p, err := DescribePURL("pkg:npm/%40babel/core@7.22.5")
	require.NoError(t, err)
	assert.Equal(t, "npm", p.Type)
	assert.Equal(t, "@babel", p.Namespace)
	assert.Equal(t, "core", p.Name)
	assert.Equal(t, "7.22.5", p.Version)
	assert.Equal(t, "PURL", p.ObjType)
}

func TestIsPURLAndUUID(t *testing.T) {
	assert.True(t, IsPURL("pkg:rpm/redhat/curl@7.76.1"))
	assert.False(t, IsPURL("curl"))
	assert.True(t, IsUUID("0b4a7b1e-6a44-4d4f-9e38-8b1e3f0a2c11"))
	assert.False(t, IsUUID("CVE-2023-1234"))
}

func TestCompareVersions(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"1.2.3", "1.2.4", -1},
		{"2.0.0", "1.9.9", 1},
		{"1.0.0", "1.0.0", 0},
		{"3.0.7-18.el9", "3.0.7-9.el9", 1},
		{"1.1.1k", "1.1.1k", 0},
		{"2.34", "2.34.1", -1},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, CompareVersions(tc.a, tc.b), "%s vs %s", tc.a, tc.b)
	}
}

func TestDedupeStrings(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, DedupeStrings([]string{"a", "b", "a", "c", "b"}))
	assert.Empty(t, DedupeStrings(nil))
}

func TestFirstNonEmpty(t *testing.T) {
	assert.Equal(t, "x", FirstNonEmpty("", "  ", "x", "y"))
	assert.Equal(t, "", FirstNonEmpty())
}
