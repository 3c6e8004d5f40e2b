package main

import (
	"bytes"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestNewResultView(t *testing.T) {
	expiry := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	v := newResultView(Credentials{
		UserID:      "999",
		Token:       LongLivedToken{Token: oauth2.Token{AccessToken: "LONG", TokenType: "bearer", Expiry: expiry}},
		Permissions: []string{"scope_a", "scope_b"},
	})

	assert.Equal(t, "999", v.UserID)
	assert.Equal(t, "LONG", v.Token)
	assert.Equal(t, "scope_a, scope_b", v.Permissions)
	assert.Equal(t, "Sun, 01 Mar 2026 12:00:00 UTC", v.Expiry)
}

func TestRenderResult_NoExpiry(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, renderResult(&buf, newResultView(Credentials{UserID: "1", Token: LongLivedToken{Token: oauth2.Token{AccessToken: "LONG"}}})))
	assert.NotContains(t, buf.String(), "Expires:")
}

func TestRenderError_EscapesPayload(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, renderError(&buf, errorView{Title: "Token Exchange Failed", Payload: `{"error_message":"<b>bad</b>"}`}))
	assert.Contains(t, buf.String(), "&lt;b&gt;bad&lt;/b&gt;")
}

func TestErrorViewFor(t *testing.T) {
	tests := []struct {
		err    error
		title  string
		status int
	}{
		{&ExchangeError{Kind: ErrAuthorizationDenied, Payload: "access_denied"}, "Authorization Denied", http.StatusBadRequest},
		{exchangeError(ErrMissingAuthorizationCode, ""), "Error: No code received", http.StatusBadRequest},
		{exchangeError(ErrInvalidState, "state missing"), "Invalid State", http.StatusBadRequest},
		{exchangeError(ErrShortLivedExchangeFailed, "{}"), "Token Exchange Failed", http.StatusBadGateway},
		{exchangeError(ErrLongLivedExchangeFailed, "{}"), "Long-Lived Exchange Failed", http.StatusBadGateway},
		{errors.New("boom"), "Unexpected Error", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			view, status := errorViewFor(tt.err)
			assert.Equal(t, tt.title, view.Title)
			assert.Equal(t, tt.status, status)
		})
	}
}

func TestExchangeError_Message(t *testing.T) {
	err := &ExchangeError{Kind: ErrAuthorizationDenied, Payload: "access_denied", Description: "user said no"}
	assert.Equal(t, "authorization denied: access_denied: user said no", err.Error())
	assert.Equal(t, "no authorization code received", exchangeError(ErrMissingAuthorizationCode, "").Error())
	assert.True(t, errors.Is(err, ErrAuthorizationDenied))
}
