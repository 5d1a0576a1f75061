package provider

import (
	"context"
	"errors"
	"net"
	"net/http"

	"go.uber.org/zap"

	"github.com/sells-group/leadgen-cli/internal/credential"
	"github.com/sells-group/leadgen-cli/internal/model"
)

// CallStatus classifies one provider attempt.
type CallStatus int

const (
	// StatusOK: records in hand.
	StatusOK CallStatus = iota
	// StatusEmpty: well-formed response, no records. Retried with the
	// next credential; some keys see data others don't.
	StatusEmpty
	// StatusRateLimited: HTTP 429 or soft exhaustion. Credential is done
	// for the day.
	StatusRateLimited
	// StatusAuthFailed: HTTP 401/403. Credential unusable until reset.
	StatusAuthFailed
	// StatusTimeout: the call expired. Rotate without marking.
	StatusTimeout
	// StatusMalformed: undecodable body. Rotate without marking.
	StatusMalformed
	// StatusServerError: 5xx or transport failure. Rotate without marking.
	StatusServerError
)

// marksExhausted reports whether the status burns the credential.
func (s CallStatus) marksExhausted() bool {
	return s == StatusRateLimited || s == StatusAuthFailed
}

// ClassifyHTTP maps a transport error or HTTP status onto a CallStatus.
// okStatuses lists the codes the caller treats as potentially carrying
// data (the Apollo actor returns datasets on 400).
func ClassifyHTTP(status int, err error, okStatuses ...int) CallStatus {
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return StatusTimeout
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return StatusTimeout
		}
		return StatusServerError
	}

	for _, ok := range okStatuses {
		if status == ok {
			return StatusOK
		}
	}
	switch {
	case status == http.StatusTooManyRequests:
		return StatusRateLimited
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return StatusAuthFailed
	default:
		return StatusServerError
	}
}

// attemptFn performs one provider call with the given token and returns
// the records plus the attempt's classification.
type attemptFn func(ctx context.Context, token string) ([]model.RawProfile, CallStatus)

// runWithRotation drives the acquire→call→classify loop, trying up to
// pool-size credentials. Rate-limit and auth failures burn the current
// credential; timeouts, malformed bodies, and server errors just rotate.
// Exhausting every attempt yields nil, never an error: the pipeline
// continues with whatever other phases collected.
func runWithRotation(ctx context.Context, pool *credential.Pool, operation string, call attemptFn) []model.RawProfile {
	log := zap.L().With(zap.String("operation", operation))

	attempts := pool.Size()
	for attempt := 0; attempt < attempts; attempt++ {
		if ctx.Err() != nil {
			return nil
		}

		cred := pool.Acquire()
		if cred == nil {
			log.Warn("no credentials available, degrading to empty result")
			return nil
		}

		records, status := call(ctx, cred.Token)
		if status == StatusOK {
			return records
		}

		if status.marksExhausted() {
			pool.MarkExhausted(cred)
		}
		log.Warn("provider attempt failed, rotating credential",
			zap.Int("attempt", attempt+1),
			zap.Int("max_attempts", attempts),
			zap.Int("status", int(status)),
		)
	}

	log.Warn("all credentials failed, degrading to empty result")
	return nil
}
