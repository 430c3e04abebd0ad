package models

import "strings"

// PropertyKind distinguishes the two Search Console property formats.
type PropertyKind int

const (
	// DomainProperty covers every protocol and subdomain of a host
	// (input form "sc-domain:example.com").
	DomainProperty PropertyKind = iota
	// URLPrefixProperty covers one exact URL prefix
	// (input form "https://www.example.com/").
	URLPrefixProperty
)

func (k PropertyKind) String() string {
	if k == DomainProperty {
		return "domain"
	}
	return "url-prefix"
}

// Property is a parsed, normalized Search Console property identifier.
// Built once at pipeline start and read-only afterwards.
type Property struct {
	Raw        string
	Kind       PropertyKind
	Host       string // hostname; for domain properties the bare domain
	RootDomain string
	SortOrder  int    // 0 domain property, 1 www prefix, 2 other subdomain
	Subdomain  string // first host label, only set when SortOrder == 2
}

// DirName returns the filesystem directory name used for this
// property's output, the hostname with any leading "www." removed.
func (p Property) DirName() string {
	return strings.TrimPrefix(p.Host, "www.")
}

// FileSlug returns a filename-safe form of DirName with dots replaced
// by dashes, matching the report file naming scheme.
func (p Property) FileSlug() string {
	return strings.ReplaceAll(p.DirName(), ".", "-")
}

// CacheSlug returns a filename-safe form of the full raw identifier.
// Unlike FileSlug it keeps the scheme and the sc-domain: prefix, so a
// domain property and the prefix properties on the same host never
// share a slug.
func (p Property) CacheSlug() string {
	repl := strings.NewReplacer("://", "-", ":", "-", "/", "-", ".", "-")
	return strings.Trim(repl.Replace(strings.ToLower(p.Raw)), "-")
}
