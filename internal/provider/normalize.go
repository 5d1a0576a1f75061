package provider

import (
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/leadgen-cli/internal/model"
)

// Outcome tags a normalized provider response.
type Outcome int

const (
	// OutcomeOK means the response contained at least one record.
	OutcomeOK Outcome = iota
	// OutcomeEmpty means a well-formed response with nothing in it.
	OutcomeEmpty
	// OutcomeSoftExhausted means the provider reported quota exhaustion
	// inside a 2xx body. Treated like a rate limit by the rotation loop.
	OutcomeSoftExhausted
)

// softExhaustionPhrase is the known fragment Apify actors embed in a
// single-element dataset when the account's daily run quota is spent.
const softExhaustionPhrase = "exhausted their daily run limit"

// Normalize collapses the response shapes providers actually return,
// a bare list, {"data": [...]}, or {"items": [...]}, into one record
// slice. Malformed bodies return an error so the caller can classify the
// attempt and rotate.
func Normalize(raw json.RawMessage) ([]model.RawProfile, Outcome, error) {
	var records []model.RawProfile
	if err := json.Unmarshal(raw, &records); err != nil {
		// Not a bare list; try the wrapped forms.
		var wrapped struct {
			Data  []model.RawProfile `json:"data"`
			Items []model.RawProfile `json:"items"`
		}
		if err := json.Unmarshal(raw, &wrapped); err != nil {
			return nil, OutcomeEmpty, eris.Wrap(err, "provider: unexpected response shape")
		}
		switch {
		case wrapped.Data != nil:
			records = wrapped.Data
		case wrapped.Items != nil:
			records = wrapped.Items
		default:
			return nil, OutcomeEmpty, eris.New("provider: response is neither a list nor a data/items wrapper")
		}
	}

	if len(records) == 0 {
		return nil, OutcomeEmpty, nil
	}
	if len(records) == 1 && isSoftExhaustion(records[0]) {
		return nil, OutcomeSoftExhausted, nil
	}
	return records, OutcomeOK, nil
}

func isSoftExhaustion(record model.RawProfile) bool {
	msg, _ := record["message"].(string)
	return strings.Contains(msg, softExhaustionPhrase)
}
