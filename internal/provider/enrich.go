package provider

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/leadgen-cli/internal/credential"
	"github.com/sells-group/leadgen-cli/internal/model"
	"github.com/sells-group/leadgen-cli/internal/scoring"
	"github.com/sells-group/leadgen-cli/pkg/apify"
)

// enrichActorID is the Apify actor that scrapes full LinkedIn profiles
// from a batch of profile URLs.
const enrichActorID = "dev_fusion~linkedin-profile-scraper"

// defaultEnrichBatchSize bounds how many profile URLs go into one actor
// run. Larger batches risk the actor's own timeout.
const defaultEnrichBatchSize = 10

// Enricher turns bare LinkedIn profile URLs into full lead profiles via
// the profile-scraper actor. When an Oracle is attached each profile is
// scored as soon as it is enriched, which lets the Google path return
// fully scored leads in a single pass.
type Enricher struct {
	client    apify.Client
	pool      *credential.Pool
	oracle    scoring.Oracle
	limiter   *rate.Limiter
	batchSize int
}

// EnricherOption tunes an Enricher.
type EnricherOption func(*Enricher)

// WithBatchSize overrides how many profile URLs each actor run carries.
// Values <= 0 keep the default.
func WithBatchSize(n int) EnricherOption {
	return func(e *Enricher) {
		if n > 0 {
			e.batchSize = n
		}
	}
}

// NewEnricher creates an enricher. oracle may be nil, in which case
// profiles come back unscored.
func NewEnricher(client apify.Client, pool *credential.Pool, oracle scoring.Oracle, opts ...EnricherOption) *Enricher {
	e := &Enricher{
		client:    client,
		pool:      pool,
		oracle:    oracle,
		batchSize: defaultEnrichBatchSize,
		// One batch every two seconds keeps the actor account under its
		// concurrent-run ceiling.
		limiter: rate.NewLimiter(rate.Every(2*time.Second), 1),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Scored reports whether enriched profiles carry ICP scores.
func (e *Enricher) Scored() bool { return e.oracle != nil }

// Enrich scrapes the given profile URLs in batches and returns the
// enriched leads. Batches that fail after exhausting every credential are
// skipped; the rest of the run continues.
func (e *Enricher) Enrich(ctx context.Context, urls []string, em Emitter) []model.LeadProfile {
	if len(urls) == 0 {
		return nil
	}
	em.Emit(model.EventEnrichmentStarted, fmt.Sprintf("Enriching %d profiles", len(urls)), map[string]any{
		"total": len(urls),
	})

	leads := make([]model.LeadProfile, 0, len(urls))
	done := 0
	for start := 0; start < len(urls); start += e.batchSize {
		end := start + e.batchSize
		if end > len(urls) {
			end = len(urls)
		}
		batch := urls[start:end]

		if err := e.limiter.Wait(ctx); err != nil {
			break
		}

		records := runWithRotation(ctx, e.pool, "linkedin_enrich", func(ctx context.Context, token string) ([]model.RawProfile, CallStatus) {
			body, status, err := e.client.RunSync(ctx, token, enrichActorID, map[string]any{
				"profileUrls": batch,
			})
			if cs := ClassifyHTTP(status, err, 200, 201); cs != StatusOK {
				return nil, cs
			}
			recs, outcome, err := Normalize(body)
			if err != nil {
				zap.L().Warn("enrichment response did not decode", zap.Error(err))
				return nil, StatusMalformed
			}
			switch outcome {
			case OutcomeSoftExhausted:
				return nil, StatusRateLimited
			case OutcomeEmpty:
				return nil, StatusEmpty
			default:
				return recs, StatusOK
			}
		})

		for _, rec := range records {
			lead := mapLinkedInProfile(rec)
			if lead.LinkedInURL == "" {
				continue
			}
			if e.oracle != nil {
				e.scoreLead(ctx, &lead)
			}
			leads = append(leads, lead)
			em.Emit(model.EventProfileEnriched, fmt.Sprintf("Enriched %s", lead.FullName), map[string]any{
				"linkedin_url": lead.LinkedInURL,
			})
		}

		done += len(batch)
		em.Emit(model.EventEnrichmentProgress, fmt.Sprintf("Processed %d of %d profiles", done, len(urls)), map[string]any{
			"done":  done,
			"total": len(urls),
		})
	}

	em.Emit(model.EventEnrichmentDone, fmt.Sprintf("Enrichment finished with %d profiles", len(leads)), map[string]any{
		"count": len(leads),
	})
	return leads
}

func (e *Enricher) scoreLead(ctx context.Context, lead *model.LeadProfile) {
	res, err := e.oracle.Score(ctx, *lead)
	if err != nil {
		zap.L().Warn("scoring failed during enrichment, recording neutral score",
			zap.String("linkedin_url", lead.LinkedInURL),
			zap.Error(err),
		)
		res = scoring.Neutral("scoring unavailable: " + err.Error())
	}
	lead.ApplyScore(res)
}

// mapLinkedInProfile converts one profile-scraper record into the
// canonical profile. The scraper's field names differ from Apollo's.
func mapLinkedInProfile(rec model.RawProfile) model.LeadProfile {
	p := model.LeadProfile{
		LinkedInURL: firstNonEmpty(rawString(rec, "linkedinUrl"), rawString(rec, "profileUrl"), rawString(rec, "url")),
		FullName:    rawString(rec, "fullName"),
		FirstName:   rawString(rec, "firstName"),
		LastName:    rawString(rec, "lastName"),
		Headline:    rawString(rec, "headline"),
		About:       rawString(rec, "about"),
		Email:       rawString(rec, "email"),
		PhotoURL:    rawString(rec, "profilePic"),
		JobTitle:    rawString(rec, "jobTitle"),

		CompanyName:        rawString(rec, "companyName"),
		CompanyWebsite:     rawString(rec, "companyWebsite"),
		CompanyLinkedIn:    rawString(rec, "companyLinkedin"),
		CompanyIndustry:    rawString(rec, "companyIndustry"),
		CompanySize:        rawString(rec, "companySize"),
		CompanyFoundedYear: rawInt(rec, "companyFoundedIn"),

		Source:    string(model.MethodGoogle),
		ScrapedAt: time.Now().UTC(),
	}
	if p.FullName == "" {
		p.FullName = strings.TrimSpace(p.FirstName + " " + p.LastName)
	}

	p.Location = rawString(rec, "addressWithCountry")
	if p.Location == "" {
		p.Location = rawString(rec, "location")
	}
	p.City, p.State, p.Country = parseLocation(p.Location)

	if months := rawInt(rec, "totalExperienceInMonths"); months > 0 {
		p.WorkExperienceMonths = months
	}
	return p
}

// parseLocation splits a free-form location string into city, state, and
// country. Two-part strings are ambiguous: a short second token reads as
// a state abbreviation, anything longer as a country.
func parseLocation(loc string) (city, state, country string) {
	parts := strings.Split(loc, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	switch len(parts) {
	case 0:
		return "", "", ""
	case 1:
		return parts[0], "", ""
	case 2:
		if len(parts[1]) <= 3 {
			return parts[0], parts[1], ""
		}
		return parts[0], "", parts[1]
	default:
		return parts[0], parts[1], parts[len(parts)-1]
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
