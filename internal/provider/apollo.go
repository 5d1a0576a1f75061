package provider

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/leadgen-cli/internal/credential"
	"github.com/sells-group/leadgen-cli/internal/model"
	"github.com/sells-group/leadgen-cli/pkg/apify"
)

// apolloActorID is the Apify actor that scrapes Apollo.io people search
// results from a search URL.
const apolloActorID = "iJcISG5H8FJUSRoVA"

// defaultEmployeeRanges targets the small-to-mid company bands Apollo
// understands when a query does not specify its own.
var defaultEmployeeRanges = []string{"1,10", "11,20", "21,50", "51,100", "101,200"}

// ApolloAdapter searches Apollo.io through the Apify actor. Profiles come
// back with verified emails and company firmographics but no ICP scores,
// so the orchestrator runs the scoring phase afterwards.
type ApolloAdapter struct {
	client apify.Client
	pool   *credential.Pool
}

// NewApolloAdapter creates the adapter.
func NewApolloAdapter(client apify.Client, pool *credential.Pool) *ApolloAdapter {
	return &ApolloAdapter{client: client, pool: pool}
}

// Name implements SearchAdapter.
func (a *ApolloAdapter) Name() string { return string(model.MethodApollo) }

// Scored implements SearchAdapter. Apollo results are unscored.
func (a *ApolloAdapter) Scored() bool { return false }

// Search implements SearchAdapter.
func (a *ApolloAdapter) Search(ctx context.Context, q model.Query, em Emitter) ([]model.LeadProfile, error) {
	searchURL := buildApolloURL(q)
	em.Emit(model.EventSearchStarted, "Searching Apollo for matching prospects", map[string]any{
		"method": a.Name(),
	})

	payload := map[string]any{
		"contact_email_exclude_catch_all": true,
		"contact_email_status_v2":         []string{"verified"},
		"include_email":                   true,
		"max_result":                      q.Limit,
		"url":                             searchURL,
	}

	records := runWithRotation(ctx, a.pool, "apollo_search", func(ctx context.Context, token string) ([]model.RawProfile, CallStatus) {
		body, status, err := a.client.RunSync(ctx, token, apolloActorID, payload)
		// The actor returns dataset items on 400 as well as 200/201.
		if cs := ClassifyHTTP(status, err, 200, 201, 400); cs != StatusOK {
			return nil, cs
		}
		recs, outcome, err := Normalize(body)
		if err != nil {
			zap.L().Warn("apollo response did not decode", zap.Error(err))
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

	leads := make([]model.LeadProfile, 0, len(records))
	for _, rec := range records {
		leads = append(leads, mapApolloProfile(rec))
	}
	em.Emit(model.EventProfilesFound, fmt.Sprintf("Found %d prospects", len(leads)), map[string]any{
		"count": len(leads),
	})
	return leads, nil
}

// buildApolloURL assembles an Apollo people-search URL from the query. The
// actor takes the same URL a human would paste from the Apollo UI.
func buildApolloURL(q model.Query) string {
	params := url.Values{}
	params.Set("page", "1")
	params.Set("sortByField", "recommendations_score")
	params.Set("sortAscending", "false")
	for _, t := range q.JobTitles {
		params.Add("personTitles[]", t)
	}
	for _, l := range q.Locations {
		params.Add("personLocations[]", l)
	}
	for _, ind := range q.Industries {
		params.Add("qOrganizationKeywordTags[]", ind)
	}
	ranges := q.CompanySizes
	if len(ranges) == 0 {
		ranges = defaultEmployeeRanges
	}
	for _, r := range ranges {
		params.Add("organizationNumEmployeesRanges[]", r)
	}
	return "https://app.apollo.io/#/people?" + params.Encode()
}

// mapApolloProfile converts one Apollo record into the canonical profile.
func mapApolloProfile(rec model.RawProfile) model.LeadProfile {
	org := rawMap(rec, "organization")

	p := model.LeadProfile{
		LinkedInURL: rawString(rec, "linkedin_url"),
		FullName:    rawString(rec, "name"),
		FirstName:   rawString(rec, "first_name"),
		LastName:    rawString(rec, "last_name"),
		Headline:    rawString(rec, "headline"),
		Email:       rawString(rec, "email"),
		EmailStatus: rawString(rec, "email_status"),
		PhotoURL:    rawString(rec, "photo_url"),
		JobTitle:    rawString(rec, "title"),
		Seniority:   rawString(rec, "seniority"),
		Departments: rawStrings(rec, "departments"),
		Functions:   rawStrings(rec, "functions"),
		City:        rawString(rec, "city"),
		State:       rawString(rec, "state"),
		Country:     rawString(rec, "country"),

		CompanyName:        rawString(org, "name"),
		CompanyWebsite:     rawString(org, "website_url"),
		CompanyLinkedIn:    rawString(org, "linkedin_url"),
		CompanyPhone:       rawString(org, "phone"),
		CompanyIndustry:    rawString(org, "industry"),
		CompanyDomain:      rawString(org, "primary_domain"),
		CompanyFoundedYear: rawInt(org, "founded_year"),

		Source:    string(model.MethodApollo),
		ScrapedAt: time.Now().UTC(),
	}
	if n := rawInt(org, "estimated_num_employees"); n > 0 {
		p.CompanySize = fmt.Sprintf("%d", n)
	}
	p.Location = joinLocation(p.City, p.State, p.Country)
	p.WorkExperienceMonths = employmentMonths(rec)
	return p
}

// employmentMonths totals the months across the record's employment
// history. Entries without an end date count up to now.
func employmentMonths(rec model.RawProfile) int {
	history, ok := rec["employment_history"].([]any)
	if !ok {
		return 0
	}
	total := 0
	for _, item := range history {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		start := parseApolloDate(rawString(entry, "start_date"))
		if start.IsZero() {
			continue
		}
		end := parseApolloDate(rawString(entry, "end_date"))
		if end.IsZero() {
			end = time.Now().UTC()
		}
		if months := monthsBetween(start, end); months > 0 {
			total += months
		}
	}
	return total
}

func parseApolloDate(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{"2006-01-02", "2006-01", "2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func monthsBetween(start, end time.Time) int {
	return (end.Year()-start.Year())*12 + int(end.Month()) - int(start.Month())
}

func joinLocation(parts ...string) string {
	nonEmpty := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, ", ")
}
