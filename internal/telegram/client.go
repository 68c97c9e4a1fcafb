package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Client инкапсулирует HTTP-взаимодействие с Telegram Bot API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient создаёт клиент Bot API для указанного токена.
// Пустой apiURL означает штатный https://api.telegram.org.
func NewClient(token, apiURL string) *Client {
	if apiURL == "" {
		apiURL = "https://api.telegram.org"
	}
	return &Client{
		baseURL: apiURL + "/bot" + token,
		httpClient: &http.Client{
			// getUpdates держится открытым на время long poll
			Timeout: 60 * time.Second,
		},
	}
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result"`
	Description string          `json:"description,omitempty"`
	ErrorCode   int             `json:"error_code,omitempty"`
}

func (c *Client) call(ctx context.Context, method string, params any, result any) error {
	body, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("encode params: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+method, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	var api apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&api); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if !api.OK {
		return fmt.Errorf("telegram: %s (code %d)", api.Description, api.ErrorCode)
	}
	if result != nil {
		if err := json.Unmarshal(api.Result, result); err != nil {
			return fmt.Errorf("decode result: %w", err)
		}
	}
	return nil
}

// SendMessage отправляет текстовое сообщение и возвращает его идентификатор.
func (c *Client) SendMessage(ctx context.Context, p SendMessageParams) (int, error) {
	var msg Message
	if err := c.call(ctx, "sendMessage", p, &msg); err != nil {
		return 0, err
	}
	return msg.MessageID, nil
}

// SendPhoto отправляет фото по URL и возвращает идентификатор сообщения.
func (c *Client) SendPhoto(ctx context.Context, p SendPhotoParams) (int, error) {
	var msg Message
	if err := c.call(ctx, "sendPhoto", p, &msg); err != nil {
		return 0, err
	}
	return msg.MessageID, nil
}

// SendLocation отправляет точку на карте и возвращает идентификатор сообщения.
func (c *Client) SendLocation(ctx context.Context, p SendLocationParams) (int, error) {
	var msg Message
	if err := c.call(ctx, "sendLocation", p, &msg); err != nil {
		return 0, err
	}
	return msg.MessageID, nil
}

// EditMessageText правит текст и клавиатуру ранее отправленного сообщения.
func (c *Client) EditMessageText(ctx context.Context, p EditMessageTextParams) error {
	return c.call(ctx, "editMessageText", p, nil)
}

// EditMessageReplyMarkup заменяет клавиатуру сообщения. markup == nil убирает её.
func (c *Client) EditMessageReplyMarkup(ctx context.Context, chatID int64, messageID int, markup *InlineKeyboardMarkup) error {
	params := struct {
		ChatID      int64                 `json:"chat_id"`
		MessageID   int                   `json:"message_id"`
		ReplyMarkup *InlineKeyboardMarkup `json:"reply_markup,omitempty"`
	}{chatID, messageID, markup}
	return c.call(ctx, "editMessageReplyMarkup", params, nil)
}

// DeleteMessage удаляет сообщение чата.
func (c *Client) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	params := struct {
		ChatID    int64 `json:"chat_id"`
		MessageID int   `json:"message_id"`
	}{chatID, messageID}
	return c.call(ctx, "deleteMessage", params, nil)
}

// AnswerCallbackQuery подтверждает нажатие инлайн-кнопки.
// Непустой text показывается пользователю всплывающим уведомлением.
func (c *Client) AnswerCallbackQuery(ctx context.Context, callbackID, text string) error {
	params := struct {
		CallbackQueryID string `json:"callback_query_id"`
		Text            string `json:"text,omitempty"`
	}{callbackID, text}
	return c.call(ctx, "answerCallbackQuery", params, nil)
}

// GetUpdates выполняет long poll входящих событий начиная с offset.
func (c *Client) GetUpdates(ctx context.Context, offset int64, timeoutSec int) ([]Update, error) {
	params := struct {
		Offset  int64 `json:"offset"`
		Timeout int   `json:"timeout"`
	}{offset, timeoutSec}

	var updates []Update
	if err := c.call(ctx, "getUpdates", params, &updates); err != nil {
		return nil, err
	}
	return updates, nil
}

// SetWebhook регистрирует URL вебхука. Пустой url снимает вебхук.
func (c *Client) SetWebhook(ctx context.Context, url, secret string) error {
	params := struct {
		URL         string `json:"url"`
		SecretToken string `json:"secret_token,omitempty"`
	}{url, secret}
	return c.call(ctx, "setWebhook", params, nil)
}
