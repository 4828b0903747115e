package triage

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GenAISummarizer summarizes a crash report with a Gemini model. It is
// entirely optional: constructing one requires an API key resolved from
// wherever the caller's configuration sources it (e.g. cloudglue's Secret
// Manager client), and nothing in the engine requires it to be wired up.
type GenAISummarizer struct {
	client *genai.Client
	model  string
}

// NewGenAISummarizer dials the Gemini API with apiKey.
func NewGenAISummarizer(ctx context.Context, apiKey, model string) (*GenAISummarizer, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("triage: genai client: %w", err)
	}
	if model == "" {
		model = "gemini-1.5-flash"
	}
	return &GenAISummarizer{client: client, model: model}, nil
}

// Summarize implements Summarizer.
func (s *GenAISummarizer) Summarize(ctx context.Context, r Report) (string, error) {
	gm := s.client.GenerativeModel(s.model)
	prompt := fmt.Sprintf(
		"In one sentence, describe the likely cause of this kernel fuzzer crash.\nBacktrace:\n%s\nProgram diff from last good run:\n%s\n",
		joinLines(r.Demangled), r.ProgDiff,
	)
	resp, err := gm.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("triage: generate content: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("triage: empty response")
	}
	part := resp.Candidates[0].Content.Parts[0]
	if text, ok := part.(genai.Text); ok {
		return string(text), nil
	}
	return fmt.Sprintf("%v", part), nil
}

// Close releases the underlying client.
func (s *GenAISummarizer) Close() error {
	return s.client.Close()
}

func joinLines(lines []string) string {
	out := ""
	for i, l := range lines {
		if i > 0 {
			out += "\n"
		}
		out += l
	}
	return out
}
