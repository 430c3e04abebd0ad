package services

import (
	"testing"

	"gsc-exporter/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePropertyDomain(t *testing.T) {
	p, err := ParseProperty("sc-domain:example.com", SuffixHeuristicResolver{})
	require.NoError(t, err)
	assert.Equal(t, models.DomainProperty, p.Kind)
	assert.Equal(t, "example.com", p.Host)
	assert.Equal(t, "example.com", p.RootDomain)
	assert.Equal(t, 0, p.SortOrder)
	assert.Empty(t, p.Subdomain)
}

func TestParsePropertyURLPrefix(t *testing.T) {
	p, err := ParseProperty("https://www.example.com/", SuffixHeuristicResolver{})
	require.NoError(t, err)
	assert.Equal(t, models.URLPrefixProperty, p.Kind)
	assert.Equal(t, "www.example.com", p.Host)
	assert.Equal(t, "example.com", p.RootDomain)
	assert.Equal(t, 1, p.SortOrder)

	p, err = ParseProperty("https://blog.example.com/", SuffixHeuristicResolver{})
	require.NoError(t, err)
	assert.Equal(t, 2, p.SortOrder)
	assert.Equal(t, "blog", p.Subdomain)
}

func TestParsePropertyRejectsMalformed(t *testing.T) {
	for _, raw := range []string{"", "sc-domain:", "not a url at all", "https://"} {
		_, err := ParseProperty(raw, SuffixHeuristicResolver{})
		assert.Error(t, err, "expected %q to be rejected", raw)
	}
}

func TestRootDomainHeuristic(t *testing.T) {
	r := SuffixHeuristicResolver{}
	cases := []struct {
		host string
		want string
	}{
		{"example.com", "example.com"},
		{"www.example.com", "example.com"},
		{"blog.example.com", "example.com"},
		{"www.example.co.uk", "example.co.uk"},
		{"shop.example.com.au", "example.com.au"},
		{"a.b.example.org", "example.org"},
		{"example.co", "example.co"},
		// Third-from-last label of 2 chars or fewer keeps two labels.
		// A known limitation of the heuristic, not a defect.
		{"www.ab.co.uk", "co.uk"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, r.RootDomain(tc.host), "host %s", tc.host)
	}
}

func TestSortPropertiesHierarchy(t *testing.T) {
	raw := []string{
		"https://blog.example.com/",
		"https://www.example.com/",
		"sc-domain:example.com",
		"https://www.acme.org/",
	}
	props, errs := ParseProperties(raw, SuffixHeuristicResolver{})
	require.Empty(t, errs)

	got := make([]string, len(props))
	for i, p := range props {
		got[i] = p.Raw
	}
	// acme.org groups before example.com; within example.com the
	// domain property leads, then www, then other subdomains.
	assert.Equal(t, []string{
		"https://www.acme.org/",
		"sc-domain:example.com",
		"https://www.example.com/",
		"https://blog.example.com/",
	}, got)
}

func TestSortPropertiesIdempotentAndStable(t *testing.T) {
	raw := []string{
		"sc-domain:example.com",
		"https://a.example.com/",
		"https://b.example.com/",
		"https://a.example.com/path/",
	}
	props, errs := ParseProperties(raw, SuffixHeuristicResolver{})
	require.Empty(t, errs)

	once := append([]models.Property{}, props...)
	SortProperties(props)
	assert.Equal(t, once, props, "sorting a sorted list must not change it")

	// The two a.example.com prefixes have equal keys; stable sort
	// keeps their input order.
	assert.Equal(t, "https://a.example.com/", props[1].Raw)
	assert.Equal(t, "https://a.example.com/path/", props[2].Raw)
}

func TestDirAndFileNames(t *testing.T) {
	p, err := ParseProperty("https://www.example.com/", SuffixHeuristicResolver{})
	require.NoError(t, err)
	assert.Equal(t, "example.com", p.DirName())
	assert.Equal(t, "example-com", p.FileSlug())

	p, err = ParseProperty("sc-domain:shop.example.co.uk", SuffixHeuristicResolver{})
	require.NoError(t, err)
	assert.Equal(t, "shop.example.co.uk", p.DirName())
	assert.Equal(t, "shop-example-co-uk", p.FileSlug())
}
