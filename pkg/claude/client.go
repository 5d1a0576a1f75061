// Package claude is a minimal Anthropic messages client used by the AI
// scoring oracle. It wraps the official SDK behind a single-call interface
// so scorers can be tested against a fake.
package claude

import (
	"context"
	"errors"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rotisserie/eris"

	"github.com/sells-group/leadgen-cli/internal/resilience"
)

// Client completes a single user prompt and returns the text response.
type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// Request describes one completion call.
type Request struct {
	Model       string
	MaxTokens   int64
	Prompt      string
	Temperature *float64
}

type sdkClient struct {
	client sdk.Client
}

// NewClient creates a client backed by anthropic-sdk-go.
func NewClient(apiKey string) Client {
	return &sdkClient{
		client: sdk.NewClient(
			option.WithAPIKey(apiKey),
		),
	}
}

func (c *sdkClient) Complete(ctx context.Context, req Request) (string, error) {
	params := sdk.MessageNewParams{
		Model:     sdk.Model(req.Model),
		MaxTokens: req.MaxTokens,
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(req.Prompt)),
		},
	}
	if req.Temperature != nil {
		params.Temperature = sdk.Float(*req.Temperature)
	}

	msg, err := c.client.Messages.New(ctx, params)
	if err != nil {
		wrapped := eris.Wrap(err, "claude: create message")
		var apierr *sdk.Error
		if errors.As(err, &apierr) && resilience.IsTransientHTTPStatus(apierr.StatusCode) {
			return "", resilience.NewTransientError(wrapped, apierr.StatusCode)
		}
		return "", wrapped
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	return sb.String(), nil
}
