package paystack_webhook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-MarketplaceBooking/internal/integrations/paystack"
	reconcilePayment "github.com/m04kA/SMC-MarketplaceBooking/internal/usecase/reconcile_payment"
)

type fakeUseCase struct {
	got *reconcilePayment.Request
	err error
}

func (f *fakeUseCase) Execute(_ context.Context, req *reconcilePayment.Request) (*reconcilePayment.Response, error) {
	f.got = req
	if f.err != nil {
		return nil, f.err
	}
	return &reconcilePayment.Response{
		Event:     paystack.EventChargeSuccess,
		Reference: "dep_abc",
		Outcome:   reconcilePayment.OutcomeConfirmed,
	}, nil
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

const payload = `{"event":"charge.success","data":{"reference":"dep_abc","amount":3000}}`

func post(h *Handler, body, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/paystack/webhook", strings.NewReader(body))
	if signature != "" {
		req.Header.Set(paystack.SignatureHeader, signature)
	}
	rec := httptest.NewRecorder()
	h.Handle(rec, req)
	return rec
}

func TestHandle_PassesRawBodyAndSignature(t *testing.T) {
	uc := &fakeUseCase{}
	rec := post(NewHandler(uc, nopLogger{}), payload, "sig")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "sig", uc.got.Signature)
	assert.Equal(t, payload, string(uc.got.RawBody))

	var body WebhookResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Received)
	assert.Equal(t, reconcilePayment.OutcomeConfirmed, body.Outcome)
}

func TestHandle_EmptyBody(t *testing.T) {
	uc := &fakeUseCase{}
	rec := post(NewHandler(uc, nopLogger{}), "", "sig")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Nil(t, uc.got)
}

func TestHandle_Errors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{name: "bad signature", err: reconcilePayment.ErrInvalidSignature, status: http.StatusUnauthorized},
		{name: "malformed", err: reconcilePayment.ErrMalformedEvent, status: http.StatusBadRequest},
		{name: "internal is retried", err: reconcilePayment.ErrInternal, status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(NewHandler(&fakeUseCase{err: tt.err}, nopLogger{}), payload, "sig")
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}
