package revalidate

import (
	"context"
	"strings"
	"sync"

	"github.com/smallbiznis/campaignhub/internal/config"
)

// Notifier tells the hosting platform that cached pages for a site are stale.
// Implementations swallow every failure; callers never observe an error.
type Notifier interface {
	Notify(ctx context.Context, hostname, resourceID, slug string)
}

// Target is one hostname to revalidate and the site identifier used in its paths.
type Target struct {
	Hostname   string
	ResourceID string
}

// SubdomainTarget addresses a site under the platform root domain.
func SubdomainTarget(cfg config.RevalidateConfig, subdomain string) Target {
	return Target{
		Hostname:   scheme(cfg) + "://" + subdomain + "." + strings.TrimSpace(cfg.RootDomain),
		ResourceID: subdomain,
	}
}

// CustomDomainTarget addresses a site served from its own domain.
func CustomDomainTarget(cfg config.RevalidateConfig, customDomain string) Target {
	return Target{
		Hostname:   scheme(cfg) + "://" + customDomain,
		ResourceID: customDomain,
	}
}

// Targets builds one target for each non-empty host value.
func Targets(cfg config.RevalidateConfig, subdomain, customDomain string) []Target {
	var targets []Target
	if subdomain != "" {
		targets = append(targets, SubdomainTarget(cfg, subdomain))
	}
	if customDomain != "" {
		targets = append(targets, CustomDomainTarget(cfg, customDomain))
	}
	return targets
}

// Paths lists the page paths invalidated for a slug on a site.
func Paths(resourceID, slug string) []string {
	return []string{
		"/_apps/" + resourceID + "/" + slug,
		"/_apps/" + resourceID,
	}
}

// NotifyAll notifies every target concurrently and returns once all have finished.
func NotifyAll(ctx context.Context, n Notifier, slug string, targets ...Target) {
	if n == nil || len(targets) == 0 {
		return
	}

	var wg sync.WaitGroup
	for _, target := range targets {
		wg.Add(1)
		go func(t Target) {
			defer wg.Done()
			n.Notify(ctx, t.Hostname, t.ResourceID, slug)
		}(target)
	}
	wg.Wait()
}

func scheme(cfg config.RevalidateConfig) string {
	s := strings.ToLower(strings.TrimSpace(cfg.Scheme))
	if s == "" {
		return "https"
	}
	return s
}
