package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/CreativeUnicorns/usersettings"
)

// DefaultTelegramAPI is the Bot API base URL.
const DefaultTelegramAPI = "https://api.telegram.org"

// TelegramNotifier posts registrations to a Telegram log channel via sendMessage.
type TelegramNotifier struct {
	httpClient *http.Client
	baseURL    string
	token      string
	chatID     int64
}

// TelegramOption configures a TelegramNotifier.
type TelegramOption func(*TelegramNotifier)

// WithHTTPClient replaces the default client (10s timeout).
func WithHTTPClient(c *http.Client) TelegramOption {
	return func(n *TelegramNotifier) {
		n.httpClient = c
	}
}

// WithBaseURL points the notifier at another Bot API server.
func WithBaseURL(u string) TelegramOption {
	return func(n *TelegramNotifier) {
		n.baseURL = strings.TrimRight(u, "/")
	}
}

// NewTelegramNotifier returns a notifier sending as the bot with token to chatID.
func NewTelegramNotifier(token string, chatID int64, opts ...TelegramOption) *TelegramNotifier {
	n := &TelegramNotifier{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    DefaultTelegramAPI,
		token:      token,
		chatID:     chatID,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

type tgResponse struct {
	Ok          bool   `json:"ok"`
	ErrorCode   int    `json:"error_code,omitempty"`
	Description string `json:"description,omitempty"`
}

func (n *TelegramNotifier) NotifyNewUser(ctx context.Context, reg usersettings.Registration) error {
	params := url.Values{
		"chat_id":                  {strconv.FormatInt(n.chatID, 10)},
		"text":                     {FormatNewUser(reg)},
		"parse_mode":               {"HTML"},
		"disable_web_page_preview": {"true"},
	}
	if err := n.sendMessage(ctx, params); err != nil {
		return fmt.Errorf("telegram: sendMessage: %w", err)
	}
	return nil
}

func (n *TelegramNotifier) sendMessage(ctx context.Context, params url.Values) error {
	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", n.baseURL, n.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(params.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var result tgResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("decode response (status %d): %w", resp.StatusCode, err)
	}
	if !result.Ok {
		return fmt.Errorf("telegram API error %d: %s", result.ErrorCode, result.Description)
	}
	return nil
}
