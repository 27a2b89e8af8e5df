package sfmc

import (
	"fmt"

	"github.com/mparkin/sfmc-go/pkg/config"
)

const (
	authURLTemplate = "https://%s.auth.marketingcloudapis.com"
	restURLTemplate = "https://%s.rest.marketingcloudapis.com"
	soapURLTemplate = "https://%s.soap.marketingcloudapis.com"
)

// Endpoints holds the three base service URLs for a tenant, all derived from
// the same subdomain. Immutable once computed.
type Endpoints struct {
	AuthBaseURL string
	RestBaseURL string
	SoapBaseURL string
}

// EndpointsForTenant derives the base service URLs from a tenant subdomain.
func EndpointsForTenant(subdomain string) Endpoints {
	return Endpoints{
		AuthBaseURL: fmt.Sprintf(authURLTemplate, subdomain),
		RestBaseURL: fmt.Sprintf(restURLTemplate, subdomain),
		SoapBaseURL: fmt.Sprintf(soapURLTemplate, subdomain),
	}
}

// endpointsFor derives the tenant endpoints, honoring explicit base URI
// overrides from the configuration.
func endpointsFor(cfg *config.Config) Endpoints {
	eps := EndpointsForTenant(cfg.TenantSubdomain)
	if cfg.AuthBaseURI != "" {
		eps.AuthBaseURL = cfg.AuthBaseURI
	}
	if cfg.RestBaseURI != "" {
		eps.RestBaseURL = cfg.RestBaseURI
	}
	if cfg.SoapBaseURI != "" {
		eps.SoapBaseURL = cfg.SoapBaseURI
	}
	return eps
}
