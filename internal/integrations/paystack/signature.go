package paystack

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

// Verifier проверяет подпись вебхуков
type Verifier struct {
	secret []byte
}

// NewVerifier создает проверку подписи по секретному ключу
func NewVerifier(secretKey string) *Verifier {
	return &Verifier{secret: []byte(secretKey)}
}

// Verify сравнивает HMAC-SHA512 (hex) сырого тела с подписью из заголовка
// Пустой секрет отклоняет любой вебхук
func (v *Verifier) Verify(signature string, rawBody []byte) error {
	if len(v.secret) == 0 {
		return ErrNotConfigured
	}
	if signature == "" || len(rawBody) == 0 {
		return ErrInvalidSignature
	}

	expected, err := hex.DecodeString(strings.TrimSpace(signature))
	if err != nil {
		return ErrInvalidSignature
	}

	mac := hmac.New(sha512.New, v.secret)
	mac.Write(rawBody)
	if !hmac.Equal(mac.Sum(nil), expected) {
		return ErrInvalidSignature
	}
	return nil
}

// Sign возвращает подпись тела (для тестов и локальной отладки вебхуков)
func (v *Verifier) Sign(rawBody []byte) string {
	mac := hmac.New(sha512.New, v.secret)
	mac.Write(rawBody)
	return hex.EncodeToString(mac.Sum(nil))
}

// ParseEvent разбирает тело вебхука, вызывать только после Verify
func ParseEvent(rawBody []byte) (*Event, error) {
	var event Event
	if err := json.Unmarshal(rawBody, &event); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if event.Event == "" {
		return nil, fmt.Errorf("%w: event type is missing", ErrMalformedEvent)
	}
	return &event, nil
}
