// Package util provides small helpers shared by the griffon CLI, sessions and queries.
package util

import (
	"os"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/google/uuid"
	"github.com/ortelius/griffon/model"
	"github.com/package-url/packageurl-go"
)

// GetEnvDefault is a convenience function for handling env vars
func GetEnvDefault(key, defVal string) string {
	val, ex := os.LookupEnv(key) // get the env var
	if !ex {                     // not found return default
		return defVal
	}
	return val // return value for env var
}

// IsEmpty checks if a string is empty or contains only whitespace
func IsEmpty(s string) bool {
	return len(strings.TrimSpace(s)) == 0
}

// IsNotEmpty checks if a string is not empty
func IsNotEmpty(s string) bool {
	return !IsEmpty(s)
}

// Contains checks if a string slice contains an item
func Contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

// FirstNonEmpty returns the first value that is not blank
func FirstNonEmpty(values ...string) string {
	for _, v := range values {
		if IsNotEmpty(v) {
			return v
		}
	}
	return ""
}

// IsUUID reports whether s is a UUID, which the services accept in place of a purl or CVE ID
func IsUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

// IsPURL reports whether s parses as a package URL
func IsPURL(s string) bool {
	if !strings.HasPrefix(s, "pkg:") {
		return false
	}
	_, err := packageurl.FromString(s)
	return err == nil
}

// CleanPURL removes qualifiers (after ?) and subpath (after #) to create canonical PURL
func CleanPURL(purlStr string) (string, error) {
	parsed, err := packageurl.FromString(purlStr)
	if err != nil {
		return "", err
	}

	cleaned := packageurl.PackageURL{
		Type:      parsed.Type,
		Namespace: parsed.Namespace,
		Name:      parsed.Name,
		Version:   parsed.Version,
	}

	return strings.ToLower(cleaned.ToString()), nil
}

// GetBasePURL removes the version component from a PURL to create a base package identifier
// Example: pkg:rpm/redhat/openssl@3.0.7-18.el9 -> pkg:rpm/redhat/openssl
func GetBasePURL(purlStr string) (string, error) {
	parsed, err := packageurl.FromString(purlStr)
	if err != nil {
		return "", err
	}

	base := packageurl.PackageURL{
		Type:      parsed.Type,
		Namespace: parsed.Namespace,
		Name:      parsed.Name,
	}

	return strings.ToLower(base.ToString()), nil
}

// ParsePURL parses a PURL string and returns the parsed PackageURL
func ParsePURL(purlStr string) (*packageurl.PackageURL, error) {
	parsed, err := packageurl.FromString(purlStr)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

// DescribePURL parses a purl into the model view carrying both canonical forms
func DescribePURL(purlStr string) (*model.PURL, error) {
	parsed, err := ParsePURL(purlStr)
	if err != nil {
		return nil, err
	}
	cleaned, err := CleanPURL(purlStr)
	if err != nil {
		return nil, err
	}
	base, err := GetBasePURL(purlStr)
	if err != nil {
		return nil, err
	}

	p := model.NewPURL()
	p.Purl = cleaned
	p.Base = base
	p.Type = parsed.Type
	p.Namespace = parsed.Namespace
	p.Name = parsed.Name
	p.Version = parsed.Version
	return p, nil
}

// CompareVersions orders two component versions. Semantic versions are compared as such; anything else
// (rpm style versions mostly) falls back to comparing dot separated segments, numerically where possible.
func CompareVersions(a, b string) int {
	va, errA := semver.NewVersion(a)
	vb, errB := semver.NewVersion(b)
	if errA == nil && errB == nil {
		return va.Compare(vb)
	}
	return compareSegments(a, b)
}

func compareSegments(a, b string) int {
	split := func(r rune) bool { return r == '.' || r == '-' || r == '_' || r == '+' || r == '~' }
	as := strings.FieldsFunc(a, split)
	bs := strings.FieldsFunc(b, split)

	for i := 0; i < len(as) && i < len(bs); i++ {
		na, errA := strconv.Atoi(as[i])
		nb, errB := strconv.Atoi(bs[i])
		switch {
		case errA == nil && errB == nil:
			if na != nb {
				if na < nb {
					return -1
				}
				return 1
			}
		case as[i] != bs[i]:
			if as[i] < bs[i] {
				return -1
			}
			return 1
		}
	}

	switch {
	case len(as) < len(bs):
		return -1
	case len(as) > len(bs):
		return 1
	}
	return 0
}

// DedupeStrings drops repeated values while keeping first-seen order
func DedupeStrings(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
