// Package telegram renders harvest summaries and posts them to a chat via
// the bot API.
package telegram

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"ArticlesHarvester/internal/domain"
	"ArticlesHarvester/internal/ports"
)

const defaultAPIBaseURL = "https://api.telegram.org"

// Notifier posts harvest summaries to a Telegram chat.
type Notifier struct {
	botToken string
	chatID   string
	baseURL  string
	client   *http.Client
}

var _ ports.Notifier = (*Notifier)(nil)

// NewNotifier registers bot token and chat identifier.
func NewNotifier(botToken, chatID string) *Notifier {
	return &Notifier{
		botToken: botToken,
		chatID:   chatID,
		baseURL:  defaultAPIBaseURL,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

// PublishSummary renders the run as a plain-text digest and posts it.
func (n *Notifier) PublishSummary(ctx context.Context, result *domain.RunResult, elapsed time.Duration) error {
	if n.botToken == "" || n.chatID == "" || n.client == nil {
		return fmt.Errorf("telegram notifier misconfigured")
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", n.baseURL, n.botToken)
	form := url.Values{}
	form.Set("chat_id", n.chatID)
	form.Set("text", formatSummary(result, elapsed))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram error: %s", resp.Status)
	}

	return nil
}

// formatSummary renders totals plus per-source counts. Records() is sorted,
// so the source order is stable across runs.
func formatSummary(result *domain.RunResult, elapsed time.Duration) string {
	perSource := map[string]int{}
	var order []string
	withPDF := 0
	for _, record := range result.Records() {
		if perSource[record.Source] == 0 {
			order = append(order, record.Source)
		}
		perSource[record.Source]++
		if record.PDFPath != "" {
			withPDF++
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Harvest %s: %d articles, %d PDFs, %d warnings in %s\n",
		result.Status, result.Len(), withPDF, len(result.Warnings), elapsed.Round(time.Second))
	for _, source := range order {
		fmt.Fprintf(&b, "- %s: %d\n", source, perSource[source])
	}
	return b.String()
}
