package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"chatbot-admin-console/internal/config"
	"chatbot-admin-console/internal/logger"
	"chatbot-admin-console/models"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/time/rate"
)

// ScanClient talks to the external website scraper/content-extraction
// engine. The engine itself is an opaque HTTP collaborator; this client only
// shapes its output into suggestion lists.
type ScanClient struct {
	baseURL     string
	httpClient  *http.Client
	breaker     *gobreaker.CircuitBreaker
	rateLimiter *rate.Limiter
	minConf     float64
}

type scanEngineRequest struct {
	URL string `json:"url"`
}

type scanEngineResponse struct {
	Data  models.WebsiteImportData `json:"data"`
	Error string                   `json:"error,omitempty"`
}

func NewScanClient(cfg *config.Config) *ScanClient {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "ScanEngine",
		MaxRequests: 5,
		Interval:    10 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("Circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
		},
	})

	return &ScanClient{
		baseURL: cfg.ScanEngineURL,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.EngineTimeout) * time.Second,
		},
		breaker: breaker,
		// Scans are heavyweight on the engine side; keep the request rate low.
		rateLimiter: rate.NewLimiter(rate.Limit(0.5), 2),
		minConf:     cfg.SuggestionMinConfidence,
	}
}

// Extract runs a scan of the given URL and returns confidence-filtered
// suggestions. Items below the confidence threshold arrive deselected.
func (sc *ScanClient) Extract(ctx context.Context, siteURL string) (*models.WebsiteImportData, error) {
	tracer := otel.Tracer("scan-client")
	ctx, span := tracer.Start(ctx, "scan_engine.extract")
	defer span.End()
	span.SetAttributes(attribute.String("scan.url", siteURL))

	if err := sc.rateLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	result, err := sc.breaker.Execute(func() (interface{}, error) {
		body, err := json.Marshal(scanEngineRequest{URL: siteURL})
		if err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, sc.baseURL+"/v1/extract", bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := sc.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		raw, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
		if err != nil {
			return nil, err
		}

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("scan engine returned %d: %s", resp.StatusCode, truncate(string(raw), 200))
		}

		var engineResp scanEngineResponse
		if err := json.Unmarshal(raw, &engineResp); err != nil {
			return nil, fmt.Errorf("invalid scan engine response: %w", err)
		}
		if engineResp.Error != "" {
			return nil, fmt.Errorf("scan engine error: %s", engineResp.Error)
		}

		return &engineResp.Data, nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	data := result.(*models.WebsiteImportData)
	FilterSuggestions(data, sc.minConf)

	span.SetAttributes(
		attribute.Int("scan.pages", data.PagesScanned),
		attribute.Int("scan.services", len(data.Services)),
		attribute.Int("scan.faqs", len(data.FAQs)),
	)
	return data, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
