package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/SandhanuDulmeth/Health-Triage/internal/config"
	"github.com/SandhanuDulmeth/Health-Triage/internal/domain"
)

// GeminiClient issues one generateContent call per submitted turn. The
// system instruction and sampling temperature are fixed; only the history
// (and an optional location hint) varies between calls. There are no
// retries and no token streaming — the whole reply is awaited.
type GeminiClient struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

func NewGeminiClient(apiKey, model string) *GeminiClient {
	return &GeminiClient{
		apiKey:     apiKey,
		model:      model,
		baseURL:    "https://generativelanguage.googleapis.com/v1beta",
		httpClient: &http.Client{Timeout: config.RequestTimeout},
	}
}

type generationConfig struct {
	Temperature float64 `json:"temperature"`
}

type generateRequest struct {
	SystemInstruction *Content         `json:"system_instruction,omitempty"`
	Contents          []Content        `json:"contents"`
	GenerationConfig  generationConfig `json:"generationConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		GroundingMetadata struct {
			GroundingChunks []struct {
				Web struct {
					URI   string `json:"uri"`
					Title string `json:"title"`
				} `json:"web"`
			} `json:"groundingChunks"`
		} `json:"groundingMetadata"`
	} `json:"candidates"`
	UsageMetadata struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
	} `json:"usageMetadata"`
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Analyze sends the full conversation and returns the reply text plus any
// grounding citations. Every transport or provider error collapses into
// domain.ErrAnalysisUnavailable; the underlying detail is logged, never
// surfaced to the user.
func (c *GeminiClient) Analyze(ctx context.Context, history []domain.ChatMessage, hint *domain.LocationHint) (*domain.AnalysisResult, error) {
	instruction := config.SystemInstruction
	if hint != nil {
		instruction += fmt.Sprintf("\n\nUser's approximate location: %.4f, %.4f. Use it only to suggest locally appropriate care options.", hint.Latitude, hint.Longitude)
	}

	genReq := generateRequest{
		SystemInstruction: &Content{Parts: []Part{{Text: instruction}}},
		Contents:          FormatHistory(history),
		GenerationConfig:  generationConfig{Temperature: config.AnalysisTemperature},
	}

	payload, err := json.Marshal(genReq)
	if err != nil {
		slog.Error("marshal analysis request", "error", err)
		return nil, domain.ErrAnalysisUnavailable
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(payload))
	if err != nil {
		slog.Error("create analysis request", "error", err)
		return nil, domain.ErrAnalysisUnavailable
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.Error("analysis request failed", "error", err)
		return nil, domain.ErrAnalysisUnavailable
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		slog.Error("read analysis response", "error", err)
		return nil, domain.ErrAnalysisUnavailable
	}

	var genResp generateResponse
	if err := json.Unmarshal(body, &genResp); err != nil {
		slog.Error("parse analysis response", "error", err, "status", resp.StatusCode)
		return nil, domain.ErrAnalysisUnavailable
	}

	if resp.StatusCode != http.StatusOK {
		slog.Error("analysis provider error",
			"status", resp.StatusCode,
			"code", genResp.Error.Code,
			"message", genResp.Error.Message,
		)
		return nil, domain.ErrAnalysisUnavailable
	}

	if len(genResp.Candidates) == 0 {
		slog.Error("analysis returned no candidates")
		return nil, domain.ErrAnalysisUnavailable
	}

	var text string
	for _, p := range genResp.Candidates[0].Content.Parts {
		text += p.Text
	}
	if text == "" {
		slog.Error("analysis returned empty reply")
		return nil, domain.ErrAnalysisUnavailable
	}

	var chunks []domain.GroundingChunk
	for _, gc := range genResp.Candidates[0].GroundingMetadata.GroundingChunks {
		if gc.Web.URI == "" {
			continue
		}
		chunks = append(chunks, domain.GroundingChunk{
			URI:   gc.Web.URI,
			Title: gc.Web.Title,
		})
	}

	return &domain.AnalysisResult{
		Text:            text,
		GroundingChunks: chunks,
		Usage: domain.Usage{
			PromptTokens:     genResp.UsageMetadata.PromptTokenCount,
			CompletionTokens: genResp.UsageMetadata.CandidatesTokenCount,
		},
	}, nil
}
