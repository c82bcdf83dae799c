package paystack

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifier(t *testing.T) {
	body := []byte(`{"event":"charge.success","data":{"reference":"book_abc","amount":3000}}`)
	v := NewVerifier("sk_test_secret")
	signature := v.Sign(body)

	assert.NoError(t, v.Verify(signature, body))
	assert.ErrorIs(t, v.Verify(signature, []byte(`{"event":"charge.success"}`)), ErrInvalidSignature)
	assert.ErrorIs(t, v.Verify("", body), ErrInvalidSignature)
	assert.ErrorIs(t, v.Verify("not-hex", body), ErrInvalidSignature)
	assert.ErrorIs(t, NewVerifier("other").Verify(signature, body), ErrInvalidSignature)
}

func TestVerifier_EmptySecretRejectsEverything(t *testing.T) {
	body := []byte(`{"event":"charge.success"}`)
	v := NewVerifier("")
	assert.ErrorIs(t, v.Verify(v.Sign(body), body), ErrNotConfigured)
}

func TestParseEvent(t *testing.T) {
	event, err := ParseEvent([]byte(`{"event":"charge.success","data":{"reference":"book_abc","amount":3000,"currency":"ghs","channel":"mobile_money"}}`))
	require.NoError(t, err)

	assert.True(t, event.IsSuccess())
	assert.False(t, event.IsFailure())
	require.NotNil(t, event.Data.Amount)
	assert.Equal(t, int64(3000), *event.Data.Amount)
	assert.Equal(t, "GHS", event.Data.NormalizedCurrency("USD"))
	assert.Equal(t, "mobile_money", *event.Data.Channel)

	reversed, err := ParseEvent([]byte(`{"event":"charge.reversed","data":{"reference":"book_abc"}}`))
	require.NoError(t, err)
	assert.True(t, reversed.IsFailure())
	assert.Equal(t, "GHS", reversed.Data.NormalizedCurrency("ghs"))

	_, err = ParseEvent([]byte(`{"data":{}}`))
	assert.ErrorIs(t, err, ErrMalformedEvent)

	_, err = ParseEvent([]byte(`not json`))
	assert.ErrorIs(t, err, ErrMalformedEvent)
}

func TestChannelsFor(t *testing.T) {
	assert.Equal(t, []string{"mobile_money", "card"}, ChannelsFor("ghs"))
	assert.Nil(t, ChannelsFor("NGN"))
}
