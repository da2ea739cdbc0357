package service

import (
	"context"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/SandhanuDulmeth/Health-Triage/internal/config"
	"github.com/SandhanuDulmeth/Health-Triage/internal/domain"
)

// GroundingResolver fills in missing citation titles by fetching the cited
// page. Strictly best-effort: any fetch or parse failure leaves the chunk
// as the provider returned it.
type GroundingResolver struct {
	httpClient *http.Client
}

func NewGroundingResolver() *GroundingResolver {
	return &GroundingResolver{
		httpClient: &http.Client{Timeout: config.GroundingFetchTimeout},
	}
}

func (r *GroundingResolver) ResolveTitles(ctx context.Context, chunks []domain.GroundingChunk) []domain.GroundingChunk {
	for i, chunk := range chunks {
		if chunk.Title != "" || chunk.URI == "" {
			continue
		}
		if title := r.fetchTitle(ctx, chunk.URI); title != "" {
			chunks[i].Title = title
		}
	}
	return chunks
}

func (r *GroundingResolver) fetchTitle(ctx context.Context, uri string) string {
	req, err := http.NewRequestWithContext(ctx, "GET", uri, nil)
	if err != nil {
		return ""
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}
