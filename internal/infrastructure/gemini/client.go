package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/gdugdh24/recapp-backend/internal/config"
	"github.com/gdugdh24/recapp-backend/internal/domain"
)

var ErrEmptyResponse = errors.New("gemini returned no content")

type contentGenerator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// GeminiClient writes short workout-buddy summaries for a pair of profiles.
type GeminiClient struct {
	client  *genai.Client
	model   contentGenerator
	timeout time.Duration
}

func NewGeminiClient(ctx context.Context, cfg config.GeminiConfig) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	model := client.GenerativeModel(cfg.Model)
	model.SetTemperature(0.4)
	model.SetMaxOutputTokens(120)

	return &GeminiClient{
		client:  client,
		model:   model,
		timeout: cfg.Timeout,
	}, nil
}

func (c *GeminiClient) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}

// ExplainMatch returns a one or two sentence summary of why two users would
// train well together. Callers fall back to a template on error.
func (c *GeminiClient) ExplainMatch(ctx context.Context, me, other *domain.Profile, e *domain.MatchExplanation) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	resp, err := c.model.GenerateContent(ctx, genai.Text(buildMatchPrompt(me, other, e)))
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	text := extractText(resp)
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

func buildMatchPrompt(me, other *domain.Profile, e *domain.MatchExplanation) string {
	common := "none"
	if len(e.CommonSports) > 0 {
		common = strings.Join(e.CommonSports, ", ")
	}
	return fmt.Sprintf(`
		Two college students are being matched as workout partners.
		Student A: gym level %s, goal %q, sports %s.
		Student B (%s): gym level %s, goal %q, sports %s.
		Shared sports: %s. Age difference: %d years. Compatibility score: %d/100.

		Task: Write a short, friendly explanation (1-2 sentences) addressed to Student A
		of why Student B could be a good workout buddy.
		Output: Just the explanation text.
	`,
		e.GymLevels[0], e.WorkoutGoals[0], strings.Join(me.Sports, ", "),
		firstName(other.FullName), e.GymLevels[1], e.WorkoutGoals[1], strings.Join(other.Sports, ", "),
		common, e.AgeDifference, e.CompatibilityScore,
	)
}

func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}
	return strings.TrimSpace(sb.String())
}

func firstName(full string) string {
	fields := strings.Fields(full)
	if len(fields) == 0 {
		return "your match"
	}
	return fields[0]
}
