// Package copyright looks up copyright information for a song through the
// Gemini API. The call is treated as an opaque external dependency: no
// retry policy, and failures propagate to the handler which surfaces them
// to the user.
package copyright

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.0-flash"

// LookupInput identifies the song whose copyright status is requested.
type LookupInput struct {
	Title    string `json:"title"`
	Composer string `json:"composer"`
	Lyricist string `json:"lyricist"`
	Arranger string `json:"arranger"`
}

// LookupResult carries the generated summary.
type LookupResult struct {
	Summary string `json:"summary"`
}

// Service wraps a Gemini client bound to one model.
type Service struct {
	client *genai.Client
	model  string
}

// New builds a Service. The API key is required; the model falls back to
// DefaultModel when empty.
func New(ctx context.Context, apiKey, model string) (*Service, error) {
	if apiKey == "" {
		return nil, errors.New("copyright: API key is required")
	}
	if model == "" {
		model = DefaultModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("copyright: create client: %w", err)
	}
	return &Service{client: client, model: model}, nil
}

// Lookup asks the model for a copyright summary of the song.
func (s *Service) Lookup(ctx context.Context, in LookupInput) (LookupResult, error) {
	resp, err := s.client.Models.GenerateContent(ctx, s.model,
		genai.Text(Prompt(in)), nil)
	if err != nil {
		return LookupResult{}, fmt.Errorf("copyright: generate: %w", err)
	}
	summary := strings.TrimSpace(resp.Text())
	if summary == "" {
		return LookupResult{}, errors.New("copyright: model returned no text")
	}
	return LookupResult{Summary: summary}, nil
}

// Prompt renders the lookup prompt for the given song.
func Prompt(in LookupInput) string {
	return fmt.Sprintf(`You are an expert in music copyright law. Please provide a summary of the copyright information for the following song, including the copyright holder, any relevant licensing information, and any other important details related to the copyright of the song.

Song Title: %s
Composer: %s
Lyricist: %s
Arranger: %s`, in.Title, in.Composer, in.Lyricist, in.Arranger)
}
