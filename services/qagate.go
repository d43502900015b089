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
)

// QAGateClient calls the external configuration validation service. A bot
// draft can only go live after this gate reports passed=true.
type QAGateClient struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
}

type qaGateRequest struct {
	BotID        string                 `json:"bot_id"`
	SystemPrompt string                 `json:"system_prompt"`
	Profile      models.BusinessProfile `json:"profile"`
	Rules        models.RuleSet         `json:"rules"`
	FAQs         []models.FAQ           `json:"faqs"`
}

type qaGateResponse struct {
	Passed   bool     `json:"passed"`
	Warnings []string `json:"warnings"`
	Errors   []string `json:"errors"`
	Report   string   `json:"report"`
}

func NewQAGateClient(cfg *config.Config) *QAGateClient {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "QAGate",
		MaxRequests: 5,
		Interval:    10 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("Circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
		},
	})

	return &QAGateClient{
		baseURL: cfg.QAGateURL,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.EngineTimeout) * time.Second,
		},
		breaker: breaker,
	}
}

// Validate runs the QA gate against the bot's current configuration. A
// transport or engine failure returns an error and must not be treated as a
// failed run; only a well-formed response counts as a verdict.
func (qc *QAGateClient) Validate(ctx context.Context, bot *models.Bot) (*models.QAResults, error) {
	tracer := otel.Tracer("qa-gate-client")
	ctx, span := tracer.Start(ctx, "qa_gate.validate")
	defer span.End()
	span.SetAttributes(attribute.String("bot.id", bot.ID.Hex()))

	result, err := qc.breaker.Execute(func() (interface{}, error) {
		body, err := json.Marshal(qaGateRequest{
			BotID:        bot.ID.Hex(),
			SystemPrompt: bot.SystemPrompt,
			Profile:      bot.Profile,
			Rules:        bot.Rules,
			FAQs:         bot.FAQs,
		})
		if err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, qc.baseURL+"/v1/validate", bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := qc.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if err != nil {
			return nil, err
		}

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("qa gate returned %d: %s", resp.StatusCode, truncate(string(raw), 200))
		}

		var gateResp qaGateResponse
		if err := json.Unmarshal(raw, &gateResp); err != nil {
			return nil, fmt.Errorf("invalid qa gate response: %w", err)
		}

		return &gateResp, nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	gateResp := result.(*qaGateResponse)
	span.SetAttributes(attribute.Bool("qa.passed", gateResp.Passed))

	return &models.QAResults{
		Passed:   gateResp.Passed,
		Warnings: gateResp.Warnings,
		Errors:   gateResp.Errors,
		Report:   gateResp.Report,
		RanAt:    time.Now(),
	}, nil
}
