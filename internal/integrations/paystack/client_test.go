package paystack

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func TestInitializeTransaction(t *testing.T) {
	var got InitializeRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/transaction/initialize", r.URL.Path)
		assert.Equal(t, "Bearer sk_test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":true,"message":"ok","data":{"authorization_url":"https://checkout.paystack.com/x","access_code":"x","reference":"book_abc"}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", "sk_test", "https://app/callback", time.Second, nopLogger{})
	out, err := c.InitializeTransaction(context.Background(), InitializeRequest{
		Email: "a@b.c", Amount: 3000, Currency: "GHS", Reference: "book_abc",
	})
	require.NoError(t, err)

	assert.Equal(t, "https://checkout.paystack.com/x", out.AuthorizationURL)
	assert.Equal(t, "https://app/callback", got.CallbackURL)
	assert.Equal(t, int64(3000), got.Amount)
}

func TestInitializeWithGracefulDegradation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "sk_test", "", time.Second, nopLogger{})
	_, err := c.InitializeWithGracefulDegradation(context.Background(), InitializeRequest{Reference: "book_abc"})
	assert.ErrorIs(t, err, ErrServiceDegraded)

	disabled := NewClient(srv.URL, "", "", time.Second, nopLogger{})
	assert.False(t, disabled.Enabled())
	_, err = disabled.InitializeWithGracefulDegradation(context.Background(), InitializeRequest{Reference: "book_abc"})
	assert.ErrorIs(t, err, ErrServiceDegraded)
}
