package driver

import "github.com/jacobsenj/canto-fal/pkg/config"

// cdnDomain serves previews of every tenant
const cdnDomain = "*.cloudfront.net"

// ImageSourceDomains lists the hosts images of the configured storages are loaded from
func ImageSourceDomains(configs []*config.DriverConfig) []string {
	if len(configs) == 0 {
		return nil
	}

	seen := map[string]bool{}
	var domains []string
	for _, cfg := range configs {
		domain := cfg.TenantDomain()
		if cfg.CantoName == "" || cfg.CantoDomain == "" || seen[domain] {
			continue
		}
		seen[domain] = true
		domains = append(domains, domain)
	}
	return append(domains, cdnDomain)
}
