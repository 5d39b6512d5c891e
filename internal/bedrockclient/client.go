// Package bedrockclient wraps Amazon Bedrock's InvokeModel API behind the
// narrow shape both the classifier (C3) and the narration adapter (C9)
// need: a bounded, strict-JSON, temperature-0 text completion. Both
// components share one client so credential resolution and timeout
// enforcement live in a single place.
package bedrockclient

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
)

// Client issues bounded, JSON-mode completions against a Bedrock model.
type Client struct {
	runtime   *bedrockruntime.Client
	modelID   string
	configured bool
}

// Config describes how to reach Bedrock and which model to call.
type Config struct {
	Region  string
	ModelID string
}

// New builds a Client from the default AWS credential chain. If no
// credentials are resolvable, Configured() reports false and callers
// should fall back to a template-only path rather than erroring, matching
// §4.9's dev-without-network story.
func New(ctx context.Context, cfg Config) (*Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return &Client{modelID: cfg.ModelID, configured: false}, nil
	}
	_, credErr := awsCfg.Credentials.Retrieve(ctx)
	if credErr != nil {
		return &Client{modelID: cfg.ModelID, configured: false}, nil
	}
	return &Client{
		runtime: bedrockruntime.NewFromConfig(awsCfg, func(o *bedrockruntime.Options) {
			o.RetryMaxAttempts = 1
		}),
		modelID:    cfg.ModelID,
		configured: true,
	}, nil
}

// Configured reports whether real AWS credentials were found.
func (c *Client) Configured() bool {
	return c != nil && c.configured
}

// Unconfigured returns a Client that always reports Configured() == false,
// for offline callers (previewctl validate/check, tests) that must never
// attempt a network call.
func Unconfigured() *Client {
	return &Client{configured: false}
}

// anthropicMessage is the Anthropic Messages API envelope Bedrock expects
// in InvokeModel's request body for Claude models.
type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	AnthropicVersion string              `json:"anthropic_version"`
	MaxTokens        int                 `json:"max_tokens"`
	Temperature      float64             `json:"temperature"`
	System           string              `json:"system,omitempty"`
	Messages         []anthropicMessage  `json:"messages"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// CompleteJSON sends a temperature-0, bounded-token-budget request and
// returns the model's raw text output. Callers own JSON parsing and
// sanitization of that output — this client only owns transport.
func (c *Client) CompleteJSON(ctx context.Context, systemPrompt, userPrompt string, maxTokens int, timeout time.Duration) (string, error) {
	if !c.Configured() {
		return "", ErrUnconfigured
	}

	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	body, err := json.Marshal(anthropicRequest{
		AnthropicVersion: "bedrock-2023-05-31",
		MaxTokens:        maxTokens,
		Temperature:      0,
		System:           systemPrompt,
		Messages:         []anthropicMessage{{Role: "user", Content: userPrompt}},
	})
	if err != nil {
		return "", fmt.Errorf("bedrockclient: marshal request: %w", err)
	}

	out, err := c.runtime.InvokeModel(callCtx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(c.modelID),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        body,
	})
	if err != nil {
		return "", fmt.Errorf("bedrockclient: invoke model: %w", err)
	}

	var resp anthropicResponse
	if err := json.Unmarshal(out.Body, &resp); err != nil {
		return "", fmt.Errorf("bedrockclient: parse response body: %w", err)
	}
	if len(resp.Content) == 0 {
		return "", fmt.Errorf("bedrockclient: empty response content")
	}
	return resp.Content[0].Text, nil
}

// ErrUnconfigured is returned by CompleteJSON when the client has no
// resolvable AWS credentials.
var ErrUnconfigured = fmt.Errorf("bedrockclient: no AWS credentials configured")
