package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"chatbot-admin-console/internal/logger"
	"chatbot-admin-console/models"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"

	genai "github.com/google/generative-ai-go/genai"
)

// PromptDrafter turns a bot's business profile into a system prompt for the
// downstream chat engine. When no API key is configured it falls back to a
// deterministic template so onboarding never blocks on the model.
type PromptDrafter struct {
	client      *genai.Client
	breaker     *gobreaker.CircuitBreaker
	rateLimiter *rate.Limiter
}

func NewPromptDrafter(apiKey string) (*PromptDrafter, error) {
	if apiKey == "" {
		return &PromptDrafter{}, nil
	}

	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "GeminiAPI",
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

	return &PromptDrafter{
		client:      client,
		breaker:     breaker,
		rateLimiter: rate.NewLimiter(rate.Limit(9.0/60.0), 2),
	}, nil
}

// DraftSystemPrompt produces the system prompt for a bot. Model failures
// degrade to the template rather than bubbling up.
func (pd *PromptDrafter) DraftSystemPrompt(ctx context.Context, bot *models.Bot) string {
	tracer := otel.Tracer("prompt-drafter")
	ctx, span := tracer.Start(ctx, "ai.draft_system_prompt")
	defer span.End()
	span.SetAttributes(attribute.String("bot.id", bot.ID.Hex()))

	if pd.client == nil {
		span.SetAttributes(attribute.Bool("ai.template_fallback", true))
		return TemplateSystemPrompt(bot)
	}

	prompt, err := pd.generate(ctx, bot)
	if err != nil {
		span.RecordError(err)
		logger.Warn("System prompt generation failed, using template", "bot_id", bot.ID.Hex(), "error", err)
		return TemplateSystemPrompt(bot)
	}
	return prompt
}

func (pd *PromptDrafter) generate(ctx context.Context, bot *models.Bot) (string, error) {
	if err := pd.rateLimiter.Wait(ctx); err != nil {
		return "", err
	}

	result, err := pd.breaker.Execute(func() (interface{}, error) {
		model := pd.client.GenerativeModel("gemini-2.0-flash")
		model.SetTemperature(0.4)
		model.SetMaxOutputTokens(1024)

		resp, err := model.GenerateContent(ctx, genai.Text(buildDraftingPrompt(bot)))
		if err != nil {
			return nil, err
		}

		if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
			return nil, errors.New("empty response from model")
		}

		var sb strings.Builder
		for _, part := range resp.Candidates[0].Content.Parts {
			if text, ok := part.(genai.Text); ok {
				sb.WriteString(string(text))
			}
		}

		out := strings.TrimSpace(sb.String())
		if out == "" {
			return nil, errors.New("model returned no text")
		}
		return out, nil
	})
	if err != nil {
		return "", err
	}

	return result.(string), nil
}

func buildDraftingPrompt(bot *models.Bot) string {
	var sb strings.Builder
	sb.WriteString("Write a system prompt for a customer-facing assistant of the following business. ")
	sb.WriteString("The assistant answers questions about services, hours, and policies, collects leads, and books appointments. ")
	sb.WriteString("It must stay on allowed topics, never invent prices, and hand off to a human for anything it cannot answer.\n\n")

	fmt.Fprintf(&sb, "Business: %s (%s)\n", bot.Profile.BusinessName, bot.Profile.BusinessType)
	if len(bot.Profile.Services) > 0 {
		fmt.Fprintf(&sb, "Services: %s\n", strings.Join(bot.Profile.Services, ", "))
	}
	if len(bot.Rules.AllowedTopics) > 0 {
		fmt.Fprintf(&sb, "Allowed topics: %s\n", strings.Join(bot.Rules.AllowedTopics, ", "))
	}
	if len(bot.Rules.BlockedTopics) > 0 {
		fmt.Fprintf(&sb, "Blocked topics: %s\n", strings.Join(bot.Rules.BlockedTopics, ", "))
	}
	if bot.Profile.BookingURL != "" {
		fmt.Fprintf(&sb, "Booking link: %s\n", bot.Profile.BookingURL)
	}

	sb.WriteString("\nReturn only the system prompt text.")
	return sb.String()
}

// TemplateSystemPrompt is the deterministic fallback used when the model is
// unavailable or unconfigured.
func TemplateSystemPrompt(bot *models.Bot) string {
	var sb strings.Builder

	name := bot.Profile.BusinessName
	if name == "" {
		name = bot.Name
	}

	fmt.Fprintf(&sb, "You are the virtual assistant for %s", name)
	if bot.Profile.BusinessType != "" {
		fmt.Fprintf(&sb, ", a %s", bot.Profile.BusinessType)
	}
	sb.WriteString(". Answer questions about the business using only the information provided. ")
	sb.WriteString("If you do not know an answer, say so and offer to take the visitor's contact details.\n")

	if len(bot.Profile.Services) > 0 {
		fmt.Fprintf(&sb, "\nServices offered: %s.\n", strings.Join(bot.Profile.Services, ", "))
	}
	if bot.Profile.Phone != "" || bot.Profile.Email != "" {
		fmt.Fprintf(&sb, "Contact: %s %s\n", bot.Profile.Phone, bot.Profile.Email)
	}
	if bot.Profile.BookingURL != "" {
		fmt.Fprintf(&sb, "For bookings, direct visitors to: %s\n", bot.Profile.BookingURL)
	}
	if len(bot.Rules.BlockedTopics) > 0 {
		fmt.Fprintf(&sb, "Never discuss: %s.\n", strings.Join(bot.Rules.BlockedTopics, ", "))
	}
	if bot.Rules.CrisisResponse != "" {
		fmt.Fprintf(&sb, "If a visitor appears to be in crisis, respond with: %s\n", bot.Rules.CrisisResponse)
	}

	return sb.String()
}
