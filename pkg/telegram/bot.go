package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.telegram.org"

// Bot is the Telegram Bot API client.
type Bot struct {
	token      string
	apiURL     string
	fileURL    string
	httpClient *http.Client
}

// NewBot creates a new Telegram Bot client with the given token.
func NewBot(token string) *Bot {
	b := &Bot{
		token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	b.SetBaseURL(defaultBaseURL)
	return b
}

// SetBaseURL points both the method and the file endpoints at another host.
// Used by tests and by self-hosted Bot API servers.
func (b *Bot) SetBaseURL(base string) {
	base = strings.TrimRight(base, "/")
	b.apiURL = fmt.Sprintf("%s/bot%s", base, b.token)
	b.fileURL = fmt.Sprintf("%s/file/bot%s", base, b.token)
}

// SetWebhook registers the webhook URL with Telegram.
func (b *Bot) SetWebhook(ctx context.Context, webhookURL string) error {
	var apiResp APIResponse
	if err := b.call(ctx, "setWebhook", map[string]string{"url": webhookURL}, &apiResp); err != nil {
		return fmt.Errorf("failed to set webhook: %w", err)
	}
	if !apiResp.OK {
		return fmt.Errorf("telegram setWebhook failed: %s", apiResp.Description)
	}
	return nil
}

// SendMessage sends a plain text message to a Telegram chat.
func (b *Bot) SendMessage(ctx context.Context, chatID int64, text string) error {
	return b.SendMessageWithMode(ctx, chatID, text, "")
}

// SendMessageWithMode sends a message with optional parse mode (e.g. "Markdown").
func (b *Bot) SendMessageWithMode(ctx context.Context, chatID int64, text string, parseMode string) error {
	payload := SendMessageRequest{
		ChatID:    chatID,
		Text:      text,
		ParseMode: parseMode,
	}
	if err := b.call(ctx, "sendMessage", payload, nil); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

// GetFileURL resolves a file id (voice note, audio, document) to a download URL.
// The URL embeds the bot token and must not be logged.
func (b *Bot) GetFileURL(ctx context.Context, fileID string) (string, error) {
	if fileID == "" {
		return "", fmt.Errorf("telegram getFile: empty file id")
	}

	var apiResp struct {
		APIResponse
		Result File `json:"result"`
	}
	if err := b.call(ctx, "getFile", map[string]string{"file_id": fileID}, &apiResp); err != nil {
		return "", fmt.Errorf("failed to get file: %w", err)
	}
	if !apiResp.OK {
		return "", fmt.Errorf("telegram getFile failed: %s", apiResp.Description)
	}
	if apiResp.Result.FilePath == "" {
		return "", fmt.Errorf("telegram getFile: file %s has no path", fileID)
	}

	return b.fileURL + "/" + (&url.URL{Path: apiResp.Result.FilePath}).EscapedPath(), nil
}

// call posts a JSON payload to a Bot API method and decodes the reply into out.
// A nil out only checks the HTTP status.
func (b *Bot) call(ctx context.Context, method string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf("%s/%s", b.apiURL, method), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s response: %w", method, err)
	}

	if out == nil {
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("telegram %s API error %d: %s", method, resp.StatusCode, string(raw))
		}
		return nil
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s response (status %d): %w", method, resp.StatusCode, err)
	}
	return nil
}
