// package telegram delivers notifications through the Telegram Bot API.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/thornwolf/navigram/internal/shared"
)

const (
	defaultAPIURL  = "https://api.telegram.org"
	defaultTimeout = 15 * time.Second
)

// Sender posts messages to a single configured chat.
type Sender struct {
	apiURL     string
	token      string
	chatID     string
	httpClient *http.Client
	logger     *log.Logger
}

// NewSender creates a Sender from the Telegram section of the config.
func NewSender(cfg shared.TelegramConfig, client *http.Client, logger *log.Logger) *Sender {
	apiURL := cfg.APIURL
	if apiURL == "" {
		apiURL = defaultAPIURL
	}
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &Sender{
		apiURL:     strings.TrimRight(apiURL, "/"),
		token:      cfg.Token,
		chatID:     cfg.ChatID,
		httpClient: client,
		logger:     logger,
	}
}

type sendMessageRequest struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

// Send posts an HTML-formatted message to the configured chat. Transport
// failures and non-2xx statuses wrap [shared.ErrNetwork]; delivery trouble
// is never fatal to a check run.
func (s *Sender) Send(ctx context.Context, text string) error {
	if s.token == "" || s.chatID == "" {
		return fmt.Errorf("%w: telegram token or chat ID", shared.ErrMissingCredentials)
	}

	payload, err := json.Marshal(sendMessageRequest{
		ChatID:    s.chatID,
		Text:      text,
		ParseMode: "HTML",
	})
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", s.apiURL, s.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: sendMessage status %d", shared.ErrNetwork, resp.StatusCode)
	}

	s.logger.Debug("notification sent", "chars", len(text))
	return nil
}
