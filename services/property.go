package services

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"gsc-exporter/models"
)

const domainPropertyPrefix = "sc-domain:"

// RootDomainResolver derives the registrable root domain from a
// hostname. Pluggable so the default heuristic can be swapped for a
// full public-suffix-list lookup without touching sorting.
type RootDomainResolver interface {
	RootDomain(host string) string
}

// SuffixHeuristicResolver keeps the last three host labels when the
// second-to-last is a known second-level suffix (co.uk, com.au and
// friends), otherwise the last two. It is a heuristic: unlisted ccTLD
// compositions will be misgrouped, and callers tolerate that.
type SuffixHeuristicResolver struct{}

var secondLevelSuffixes = map[string]bool{
	"co": true, "com": true, "org": true, "net": true, "gov": true, "edu": true,
}

// RootDomain implements RootDomainResolver.
func (SuffixHeuristicResolver) RootDomain(host string) string {
	parts := strings.Split(host, ".")
	if len(parts) > 2 && secondLevelSuffixes[parts[len(parts)-2]] && len(parts[len(parts)-3]) > 2 {
		return strings.Join(parts[len(parts)-3:], ".")
	}
	if len(parts) > 2 {
		return strings.Join(parts[len(parts)-2:], ".")
	}
	return host
}

// ParseProperty normalizes a raw property string into a Property.
// Accepts "sc-domain:<host>" and fully-qualified URLs.
func ParseProperty(raw string, resolver RootDomainResolver) (models.Property, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return models.Property{}, fmt.Errorf("empty property identifier")
	}

	if strings.HasPrefix(raw, domainPropertyPrefix) {
		host := strings.ToLower(strings.TrimPrefix(raw, domainPropertyPrefix))
		if host == "" {
			return models.Property{}, fmt.Errorf("domain property %q has no hostname", raw)
		}
		return models.Property{
			Raw:        raw,
			Kind:       models.DomainProperty,
			Host:       host,
			RootDomain: host,
			SortOrder:  0,
		}, nil
	}

	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return models.Property{}, fmt.Errorf("property %q is neither a domain property nor a valid URL", raw)
	}
	host := strings.ToLower(u.Hostname())

	p := models.Property{
		Raw:        raw,
		Kind:       models.URLPrefixProperty,
		Host:       host,
		RootDomain: resolver.RootDomain(host),
	}
	if strings.HasPrefix(host, "www.") {
		p.SortOrder = 1
	} else {
		p.SortOrder = 2
		p.Subdomain = strings.Split(host, ".")[0]
	}
	return p, nil
}

// ParseProperties parses and sorts a batch of raw property strings.
// Unparseable entries are reported back; the rest are kept.
func ParseProperties(raw []string, resolver RootDomainResolver) ([]models.Property, []error) {
	var props []models.Property
	var errs []error
	for _, r := range raw {
		p, err := ParseProperty(r, resolver)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		props = append(props, p)
	}
	SortProperties(props)
	return props, errs
}

// SortProperties orders properties by root domain, then by precedence
// (domain property, www prefix, other subdomains alphabetically). The
// sort is stable, so duplicates and equal keys keep their input order.
func SortProperties(props []models.Property) {
	sort.SliceStable(props, func(i, j int) bool {
		a, b := props[i], props[j]
		if a.RootDomain != b.RootDomain {
			return a.RootDomain < b.RootDomain
		}
		if a.SortOrder != b.SortOrder {
			return a.SortOrder < b.SortOrder
		}
		return a.Subdomain < b.Subdomain
	})
}
