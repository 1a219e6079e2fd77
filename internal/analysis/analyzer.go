// Package analysis sends normalized text to a generative model and parses the
// structured credibility report it returns. The model is treated as a black
// box invoked at most once per request; there is no retry policy here.
package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/hyperjump/credo/internal/models"
	"github.com/hyperjump/credo/pkg/utils"
)

const textPlaceholder = "{{ARTICLE_TEXT}}"

const promptTemplate = `You are an expert misinformation and propaganda analyst. Your task is to analyze the following text for manipulative language, logical fallacies, emotional triggers, and signs of bias.

Based on the text provided below, perform a detailed analysis and return your findings as a JSON object with the following exact structure:
{
  "credibility_score": <An integer score from 0 (completely untrustworthy) to 100 (highly credible)>,
  "summary_of_claims": "<A neutral, one-sentence summary of the main claims made in the text>",
  "analysis": {
    "overall_assessment": "<A brief, overall assessment of the text's credibility and tone.>",
    "manipulative_techniques": [
      {
        "technique": "<The name of the manipulative technique found (e.g., 'Emotional Appeal', 'Sensationalism & Hype', 'Weak Appeal to Authority', 'Logical Fallacy')>",
        "explanation": "<A brief explanation of how this technique is being used in the text.>",
        "flagged_quote": "<The exact quote from the text that demonstrates this technique.>"
      }
    ]
  }
}

Analyze the following text:
--- TEXT START ---
` + textPlaceholder + `
--- TEXT END ---`

// Analyzer produces credibility reports for normalized text.
type Analyzer struct {
	client  Client
	model   string
	timeout time.Duration
	logger  *zap.Logger
}

// NewAnalyzer returns an Analyzer calling model through client. timeout bounds
// each call; zero means no bound beyond the caller's context.
func NewAnalyzer(client Client, model string, timeout time.Duration, logger *zap.Logger) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{client: client, model: model, timeout: timeout, logger: logger}
}

// Analyze asks the model for a credibility report on text. It returns the
// parsed report and the raw JSON reply for persistence. A reply that is not
// valid report JSON is an error carrying a snippet of the raw output.
func (a *Analyzer) Analyze(ctx context.Context, text string) (*models.Report, []byte, error) {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	a.logger.Debug("requesting credibility analysis", zap.Int("text_chars", len(text)))
	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: buildPrompt(text)},
		},
	})
	if err != nil {
		return nil, nil, fmt.Errorf("analysis model call: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, nil, errors.New("analysis model returned no choices")
	}

	raw := stripFences(strings.TrimSpace(resp.Choices[0].Message.Content))
	var report models.Report
	if err := json.Unmarshal([]byte(raw), &report); err != nil {
		a.logger.Error("could not parse analysis reply",
			zap.Error(err), zap.String("raw", utils.Truncate(raw, 500)))
		return nil, nil, fmt.Errorf("parse analysis reply (%s): %w", utils.Truncate(raw, 200), err)
	}
	return &report, []byte(raw), nil
}

func buildPrompt(text string) string {
	return strings.ReplaceAll(promptTemplate, textPlaceholder, text)
}

// stripFences removes a markdown code fence around the reply. Some backends
// wrap their output even when JSON mode is requested.
func stripFences(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
