package provider

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/leadgen-cli/internal/model"
	"github.com/sells-group/leadgen-cli/pkg/googlesearch"
)

// googleQueryCap bounds the title×location grid so one run cannot burn
// the whole Custom Search daily quota.
const googleQueryCap = 3

// GoogleAdapter discovers LinkedIn profile URLs with Google Custom
// Search, then hands them to the Enricher for scraping. Whether results
// come back scored depends on the enricher's oracle.
type GoogleAdapter struct {
	search   googlesearch.Client
	enricher *Enricher
	limiter  *rate.Limiter
}

// NewGoogleAdapter creates the adapter.
func NewGoogleAdapter(search googlesearch.Client, enricher *Enricher) *GoogleAdapter {
	return &GoogleAdapter{
		search:   search,
		enricher: enricher,
		// Custom Search allows 100 queries/day on the free tier; pace
		// gently so bursts of batch runs share it.
		limiter: rate.NewLimiter(rate.Every(time.Second), 1),
	}
}

// Name implements SearchAdapter.
func (g *GoogleAdapter) Name() string { return string(model.MethodGoogle) }

// Scored implements SearchAdapter.
func (g *GoogleAdapter) Scored() bool { return g.enricher.Scored() }

// Search implements SearchAdapter.
func (g *GoogleAdapter) Search(ctx context.Context, q model.Query, em Emitter) ([]model.LeadProfile, error) {
	em.Emit(model.EventSearchStarted, "Searching Google for LinkedIn profiles", map[string]any{
		"method": g.Name(),
	})

	urls := g.discover(ctx, q)
	em.Emit(model.EventProfilesFound, fmt.Sprintf("Found %d profile URLs", len(urls)), map[string]any{
		"count": len(urls),
	})
	if len(urls) == 0 {
		return nil, nil
	}

	return g.enricher.Enrich(ctx, urls, em), nil
}

// discover runs the title×location query grid and returns deduplicated
// profile URLs, capped at the query limit.
func (g *GoogleAdapter) discover(ctx context.Context, q model.Query) []string {
	titles := capSlice(q.JobTitles, googleQueryCap)
	locations := capSlice(q.Locations, googleQueryCap)

	seen := make(map[string]struct{})
	var urls []string
	for _, title := range titles {
		for _, loc := range locations {
			if q.Limit > 0 && len(urls) >= q.Limit {
				return urls
			}
			if err := g.limiter.Wait(ctx); err != nil {
				return urls
			}

			query := fmt.Sprintf("site:linkedin.com/in %q %q", title, loc)
			items, err := g.search.Search(ctx, query, 10)
			if err != nil {
				if errors.Is(err, googlesearch.ErrQuotaExceeded) {
					zap.L().Warn("google search quota exhausted, stopping discovery")
					return urls
				}
				zap.L().Warn("google search query failed", zap.String("query", query), zap.Error(err))
				continue
			}

			for _, item := range items {
				u := canonicalProfileURL(item.Link)
				if u == "" {
					continue
				}
				if _, dup := seen[u]; dup {
					continue
				}
				seen[u] = struct{}{}
				urls = append(urls, u)
				if q.Limit > 0 && len(urls) >= q.Limit {
					return urls
				}
			}
		}
	}
	return urls
}

// canonicalProfileURL strips query params and fragments from a LinkedIn
// profile link and rejects anything that is not a /in/ profile.
func canonicalProfileURL(link string) string {
	u, err := url.Parse(link)
	if err != nil {
		return ""
	}
	if !strings.Contains(u.Host, "linkedin.com") || !strings.HasPrefix(u.Path, "/in/") {
		return ""
	}
	u.RawQuery = ""
	u.Fragment = ""
	return strings.TrimSuffix(u.String(), "/")
}

func capSlice(s []string, n int) []string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
