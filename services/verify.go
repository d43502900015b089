package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"
)

// EmbedCheckResult reports whether the widget snippet is present on a
// client's page after go-live.
type EmbedCheckResult struct {
	URL       string    `json:"url"`
	Installed bool      `json:"installed"`
	Snippet   string    `json:"snippet,omitempty"`
	CheckedAt time.Time `json:"checked_at"`
}

// EmbedVerifier fetches a page and inspects it for the widget script or
// iframe carrying the bot's identifier.
type EmbedVerifier struct {
	widgetBaseURL string
	httpClient    *http.Client
}

func NewEmbedVerifier(widgetBaseURL string, timeout time.Duration) *EmbedVerifier {
	return &EmbedVerifier{
		widgetBaseURL: widgetBaseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Verify fetches pageURL and looks for the embed snippet referencing botID.
// Non-UTF8 pages are decoded before parsing.
func (ev *EmbedVerifier) Verify(ctx context.Context, pageURL, botID string) (*EmbedCheckResult, error) {
	result := &EmbedCheckResult{URL: pageURL, CheckedAt: time.Now()}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "chatbot-admin-console/1.0 (embed check)")

	resp, err := ev.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("page returned %d", resp.StatusCode)
	}

	reader, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(reader)
	if err != nil {
		return nil, err
	}

	doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		src, _ := s.Attr("src")
		dataBot, _ := s.Attr("data-bot-id")
		if strings.HasPrefix(src, ev.widgetBaseURL) && dataBot == botID {
			result.Installed = true
			result.Snippet, _ = goquery.OuterHtml(s)
			return false
		}
		return true
	})

	if !result.Installed {
		doc.Find("iframe").EachWithBreak(func(_ int, s *goquery.Selection) bool {
			src, _ := s.Attr("src")
			if strings.HasPrefix(src, ev.widgetBaseURL) && strings.Contains(src, botID) {
				result.Installed = true
				result.Snippet, _ = goquery.OuterHtml(s)
				return false
			}
			return true
		})
	}

	return result, nil
}
