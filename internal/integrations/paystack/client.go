package paystack

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Client клиент Paystack API
type Client struct {
	baseURL     string
	secretKey   string
	callbackURL string
	httpClient  *http.Client
	log         Logger
}

// NewClient создает новый экземпляр клиента Paystack
func NewClient(baseURL, secretKey, callbackURL string, timeout time.Duration, log Logger) *Client {
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		secretKey:   secretKey,
		callbackURL: callbackURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// Enabled true, если клиент может обращаться к API
func (c *Client) Enabled() bool {
	return c != nil && c.secretKey != ""
}

// InitializeTransaction создает checkout-сессию и возвращает ссылку на оплату
func (c *Client) InitializeTransaction(ctx context.Context, in InitializeRequest) (*InitializeResponse, error) {
	if !c.Enabled() {
		return nil, ErrNotConfigured
	}
	if in.CallbackURL == "" {
		in.CallbackURL = c.callbackURL
	}

	body, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to encode request: %v", ErrInternal, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/transaction/initialize", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.secretKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to execute request: %v", ErrInternal, err)
	}
	defer resp.Body.Close()

	// Обработка статус-кодов
	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(raw))
	}

	// Парсим ответ
	var out envelope
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", ErrInvalidResponse, err)
	}
	if !out.Status || out.Data == nil || out.Data.AuthorizationURL == "" {
		return nil, fmt.Errorf("%w: %s", ErrInvalidResponse, out.Message)
	}

	return out.Data, nil
}

// InitializeWithGracefulDegradation создает checkout-сессию с graceful degradation
// Любая ошибка провайдера превращается в ErrServiceDegraded: бронирование уже создано и остается в силе
func (c *Client) InitializeWithGracefulDegradation(ctx context.Context, in InitializeRequest) (*InitializeResponse, error) {
	c.log.Info("Initializing Paystack checkout for reference=%s amount=%d %s", in.Reference, in.Amount, in.Currency)

	out, err := c.InitializeTransaction(ctx, in)
	if err != nil {
		if errors.Is(err, ErrNotConfigured) {
			c.log.Warn("Paystack secret key is not configured, skipping checkout for reference=%s", in.Reference)
		} else {
			c.log.Error("Paystack unavailable, applying graceful degradation for reference=%s: %v", in.Reference, err)
		}
		return nil, fmt.Errorf("%w: reference=%s, error=%v", ErrServiceDegraded, in.Reference, err)
	}

	c.log.Info("Paystack checkout initialized for reference=%s", in.Reference)
	return out, nil
}
