package oracle

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const defaultGeminiModel = "gemini-1.5-flash"

// Gemini consults the Gemini API to pick among near-tied candidate slots.
type Gemini struct {
	client *genai.Client
	model  *genai.GenerativeModel
	logger *slog.Logger
}

// NewGemini creates a Gemini-backed oracle. An empty modelName selects the
// default model.
func NewGemini(ctx context.Context, logger *slog.Logger, apiKey, modelName string) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is empty")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("unable to create gemini client: %w", err)
	}
	if modelName == "" {
		modelName = defaultGeminiModel
	}
	return &Gemini{
		client: client,
		model:  client.GenerativeModel(modelName),
		logger: logger,
	}, nil
}

// Close releases the underlying API client.
func (g *Gemini) Close() error {
	return g.client.Close()
}

// SelectAmongCandidates asks the model to pick one of the ranked summaries and
// parses its answer into an index.
func (g *Gemini) SelectAmongCandidates(ctx context.Context, summaries []string, negotiationContext string) (int, error) {
	if len(summaries) == 0 {
		return 0, fmt.Errorf("no candidates to select among")
	}

	prompt := buildSelectionPrompt(summaries, negotiationContext)
	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return 0, fmt.Errorf("gemini generation failed: %w", err)
	}

	var answer strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if txt, ok := part.(genai.Text); ok {
				answer.WriteString(string(txt))
			}
		}
	}

	index, err := ParseSelection(answer.String(), len(summaries))
	if err != nil {
		return 0, err
	}
	g.logger.Debug("Oracle selected candidate", "index", index)
	return index, nil
}

func buildSelectionPrompt(summaries []string, negotiationContext string) string {
	var b strings.Builder
	b.WriteString("You are a meeting negotiator. Select the best meeting time for these participants.\n\n")
	if negotiationContext != "" {
		b.WriteString("Participants:\n")
		b.WriteString(negotiationContext)
		b.WriteString("\n\n")
	}
	b.WriteString("Available options (ranked by score):\n")
	for _, s := range summaries {
		b.WriteString(s)
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "\nConsider timezone fairness, individual preferences, and overall consensus.\nRespond with just the number (0-%d) of your selected option.\n", len(summaries)-1)
	return b.String()
}
