package service

import (
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/ortelius/griffon/model"
	"github.com/stretchr/testify/assert"
)

func TestMatchRHNaming(t *testing.T) {
	cases := []struct {
		name      string
		candidate string
		index     int
		ok        bool
	}{
		{"gcc", "gcc", 0, true},
		{"gcc", "devtoolset-12-gcc", 0, true},
		{"gcc", "gcc-toolset-13-gcc", 0, true},
		{"gcc", "mingw64-gcc", 0, true},
		{"gcc", "mingw-gcc", 0, true},
		{"python", "rh-python38-python", 0, true},
		{"OpenSSL", "openssl", 0, true},
		{"openssl", "compat-openssl10", 1, true},
		{"openssl", "compat-openssl11-1.1.1k", 1, true},
		{"kernel", "kernel-rt", 2, true},
		{"qemu", "qemu-kvm", 3, true},
		{"qemu", "qemu-kvm-rhev", 3, true},
		{"qemu", "qemu-kvm-ma", 3, true},
		{"webkit", "webkit2gtk3", 4, true},
		{"webkitgtk", "webkitgtk4", 4, true},
		{"python", "python3.11", 4, true},
		{"openssl", "openssl-devel", -1, false},
		{"openssl", "libopenssl", -1, false},
		{"qemu", "qemu-kvm-other", -1, false},
		{"c++", "c++", 0, true},
		{"c++", "cxx", -1, false},
	}
	for _, tc := range cases {
		t.Run(tc.name+"/"+tc.candidate, func(t *testing.T) {
			idx, ok := MatchRHNaming(tc.name, tc.candidate)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.index, idx)
		})
	}
}

func TestFilterRHNaming(t *testing.T) {
	comps := []model.Component{
		{Name: "qemu-kvm"}, {Name: "qemu-img"}, {Name: "qemu"}, {Name: "libvirt"}, {Name: "qemu-kvm-rhev"},
	}
	kept := FilterRHNaming("qemu", comps)
	assert.Equal(t, []model.Component{{Name: "qemu-kvm"}, {Name: "qemu"}, {Name: "qemu-kvm-rhev"}}, kept)

	assert.Empty(t, FilterRHNaming("qemu", nil))
}

func TestNamingProperties(t *testing.T) {
	properties := gopter.NewProperties(gopter.DefaultTestParameters())

	conventions := []string{
		"%s",
		"devtoolset-9-%s",
		"gcc-toolset-12-%s",
		"mingw32-%s",
		"rh-ruby30-%s",
		"compat-%s",
		"compat-%s1.0-2",
		"%s-rt",
		"%s-kvm",
		"%s-kvm-rhev",
		"%s2",
		"%s3.11",
		"%sgtk4",
	}

	properties.Property("known renames are kept", prop.ForAll(
		func(name string, i int) bool {
			candidate := fmt.Sprintf(conventions[i], name)
			_, ok := MatchRHNaming(name, candidate)
			return ok
		},
		gen.Identifier(),
		gen.IntRange(0, len(conventions)-1),
	))

	properties.Property("unrelated suffixes are dropped", prop.ForAll(
		func(name string) bool {
			_, ok := MatchRHNaming(name, name+"-devel")
			return !ok
		},
		gen.Identifier(),
	))

	properties.Property("kept entries match and dropped entries do not", prop.ForAll(
		func(name string, others []string) bool {
			comps := make([]model.Component, 0, len(others))
			for _, o := range others {
				comps = append(comps, model.Component{Name: o})
			}
			kept := FilterRHNaming(name, comps)

			keptNames := map[string]int{}
			for _, c := range kept {
				if _, ok := MatchRHNaming(name, c.Name); !ok {
					return false
				}
				keptNames[c.Name]++
			}
			for _, c := range comps {
				_, ok := MatchRHNaming(name, c.Name)
				if ok && keptNames[c.Name] == 0 {
					return false
				}
			}
			return true
		},
		gen.Identifier(),
		gen.SliceOf(gen.Identifier()),
	))

	properties.TestingRun(t)
}
