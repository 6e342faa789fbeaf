package core

import (
	"domverify/internal/shared"
	"domverify/internal/types"
)

// DomainCollector extracts the web domains a package manifest declares.
type DomainCollector struct{}

func NewDomainCollector() DomainCollector {
	return DomainCollector{}
}

// CollectWebDomains returns every host of every intent filter that handles
// web URIs, whether or not the filter asks for verification. These are the
// domains a user may select the package for.
func (c DomainCollector) CollectWebDomains(pkg *types.PackageManifest) []string {
	return c.collect(pkg, false)
}

// CollectAutoVerifyDomains returns the hosts of web filters marked
// auto_verify. These are the domains the verification agent is asked about.
func (c DomainCollector) CollectAutoVerifyDomains(pkg *types.PackageManifest) []string {
	return c.collect(pkg, true)
}

func (c DomainCollector) collect(pkg *types.PackageManifest, autoVerifyOnly bool) []string {
	if pkg == nil {
		return []string{}
	}
	var hosts []string
	for _, activity := range pkg.Activities {
		for _, filter := range activity.IntentFilters {
			if autoVerifyOnly && !filter.AutoVerify {
				continue
			}
			if !handlesWebURIs(filter) {
				continue
			}
			hosts = append(hosts, filter.Hosts...)
		}
	}
	return shared.NormalizeDomains(hosts)
}

func handlesWebURIs(filter types.IntentFilter) bool {
	if !contains(filter.Actions, types.ActionView) {
		return false
	}
	if !contains(filter.Categories, types.CategoryBrowsable) || !contains(filter.Categories, types.CategoryDefault) {
		return false
	}
	if len(filter.Schemes) == 0 || len(filter.Hosts) == 0 {
		return false
	}
	for _, scheme := range filter.Schemes {
		if scheme != types.SchemeHTTP && scheme != types.SchemeHTTPS {
			return false
		}
	}
	return true
}

func contains(values []string, want string) bool {
	for _, value := range values {
		if value == want {
			return true
		}
	}
	return false
}
