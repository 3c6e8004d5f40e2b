package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
	"golang.org/x/oauth2"
)

// maxResponseBytes caps how much of an upstream body is read.
const maxResponseBytes = 1 << 20

type ClientCredentials struct {
	ClientID     string
	ClientSecret string
}

type Endpoints struct {
	OAuth        oauth2.Endpoint
	LongLivedURL string
}

// ShortLivedToken is the result of the code exchange. It is valid for
// about an hour and never leaves the callback request.
type ShortLivedToken struct {
	AccessToken string
	UserID      string
	Permissions []string
}

// LongLivedToken is valid for about 60 days. Expiry is zero when the
// platform did not report expires_in.
type LongLivedToken struct {
	oauth2.Token
}

// Credentials is what the operator gets to see after a successful flow.
type Credentials struct {
	UserID      string
	Token       LongLivedToken
	Permissions []string
}

// TokenExchanger performs the two step Instagram token exchange. It holds
// no per-request state and is safe for concurrent use.
type TokenExchanger struct {
	creds       ClientCredentials
	redirectURI string
	endpoints   Endpoints
	httpClient  *http.Client
	log         logrus.FieldLogger
	now         func() time.Time
}

func NewTokenExchanger(creds ClientCredentials, redirectURI string, endpoints Endpoints, client *http.Client, log logrus.FieldLogger) *TokenExchanger {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}

	return &TokenExchanger{
		creds:       creds,
		redirectURI: redirectURI,
		endpoints:   endpoints,
		httpClient:  client,
		log:         log,
		now:         time.Now,
	}
}

// HandleCallback runs the whole flow for one browser callback:
//
// AwaitingCode -> ExchangingShortLived -> ExchangingLongLived -> Complete
//
// Any failure ends the flow; nothing is retried and no partial
// credentials are returned.
func (e *TokenExchanger) HandleCallback(ctx context.Context, code, errCode, errDescription string) (Credentials, error) {
	if errCode != "" {
		return Credentials{}, &ExchangeError{
			Kind:        ErrAuthorizationDenied,
			Payload:     errCode,
			Description: errDescription,
		}
	}
	if code == "" {
		return Credentials{}, exchangeError(ErrMissingAuthorizationCode, "")
	}

	e.log.Debug("Exchanging authorization code for short-lived token")

	short, err := e.ExchangeCodeForShortLivedToken(ctx, code)
	if err != nil {
		return Credentials{}, err
	}

	e.log.WithField("user_id", short.UserID).Debug("Exchanging short-lived token for long-lived token")

	long, err := e.ExchangeShortLivedForLongLived(ctx, short.AccessToken)
	if err != nil {
		return Credentials{}, err
	}

	return Credentials{
		UserID:      short.UserID,
		Token:       long,
		Permissions: short.Permissions,
	}, nil
}

// ExchangeCodeForShortLivedToken posts the authorization code to the token
// endpoint. The redirect URI sent must equal the one used on /login.
func (e *TokenExchanger) ExchangeCodeForShortLivedToken(ctx context.Context, code string) (ShortLivedToken, error) {
	if code == "" {
		return ShortLivedToken{}, exchangeError(ErrMissingAuthorizationCode, "")
	}

	form := url.Values{}
	form.Set("client_id", e.creds.ClientID)
	form.Set("client_secret", e.creds.ClientSecret)
	form.Set("grant_type", "authorization_code")
	form.Set("redirect_uri", e.redirectURI)
	form.Set("code", code)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoints.OAuth.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return ShortLivedToken{}, exchangeError(ErrShortLivedExchangeFailed, fmt.Sprintf("build token request: %v", err))
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	body, ok, err := e.do(req)
	if err != nil {
		return ShortLivedToken{}, exchangeError(ErrShortLivedExchangeFailed, err.Error())
	}

	root := gjson.ParseBytes(body)
	if !ok || root.Get("error_type").Exists() || root.Get("error").Exists() || root.Get("error_message").Exists() {
		return ShortLivedToken{}, exchangeError(ErrShortLivedExchangeFailed, string(body))
	}

	fields := tokenFields(root)
	accessToken := fields.Get("access_token").String()
	if accessToken == "" {
		return ShortLivedToken{}, exchangeError(ErrShortLivedExchangeFailed, string(body))
	}

	return ShortLivedToken{
		AccessToken: accessToken,
		UserID:      idString(fields.Get("user_id")),
		Permissions: parsePermissions(fields.Get("permissions")),
	}, nil
}

// ExchangeShortLivedForLongLived trades a short-lived token for a token
// valid for about 60 days.
func (e *TokenExchanger) ExchangeShortLivedForLongLived(ctx context.Context, shortLivedToken string) (LongLivedToken, error) {
	u, err := url.Parse(e.endpoints.LongLivedURL)
	if err != nil {
		return LongLivedToken{}, exchangeError(ErrLongLivedExchangeFailed, fmt.Sprintf("parse long-lived url: %v", err))
	}

	query := u.Query()
	query.Set("grant_type", "ig_exchange_token")
	query.Set("client_secret", e.creds.ClientSecret)
	query.Set("access_token", shortLivedToken)
	u.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return LongLivedToken{}, exchangeError(ErrLongLivedExchangeFailed, fmt.Sprintf("build long-lived request: %v", err))
	}
	req.Header.Set("Accept", "application/json")

	body, ok, err := e.do(req)
	if err != nil {
		return LongLivedToken{}, exchangeError(ErrLongLivedExchangeFailed, err.Error())
	}

	root := gjson.ParseBytes(body)
	if !ok || root.Get("error").Exists() {
		return LongLivedToken{}, exchangeError(ErrLongLivedExchangeFailed, string(body))
	}

	accessToken := root.Get("access_token").String()
	if accessToken == "" {
		return LongLivedToken{}, exchangeError(ErrLongLivedExchangeFailed, string(body))
	}

	token := LongLivedToken{Token: oauth2.Token{
		AccessToken: accessToken,
		TokenType:   root.Get("token_type").String(),
	}}
	if secs := root.Get("expires_in").Int(); secs > 0 {
		token.Expiry = e.now().Add(time.Duration(secs) * time.Second)
	}

	return token, nil
}

// do sends req and returns the body. ok is false when the status is not
// 2xx or the body is not JSON; the body is still returned for display.
func (e *TokenExchanger) do(req *http.Request) (body []byte, ok bool, err error) {
	resp, err := e.httpClient.Do(req)
	if err != nil {
		// url.Error repeats the full URL, secrets in the query included.
		var uerr *url.Error
		if errors.As(err, &uerr) {
			err = uerr.Err
		}
		return nil, false, fmt.Errorf("request to %s: %w", req.URL.Host, err)
	}
	defer resp.Body.Close()

	body, err = io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, false, fmt.Errorf("read response: %w", err)
	}

	ok = resp.StatusCode >= 200 && resp.StatusCode <= 299 && gjson.ValidBytes(body)

	return body, ok, nil
}

// tokenFields returns the object holding the token fields. Newer Instagram
// responses wrap them as {"data":[{...}]}.
func tokenFields(root gjson.Result) gjson.Result {
	if first := root.Get("data.0"); first.IsObject() {
		return first
	}
	return root
}

// idString keeps numeric ids exactly as sent; they do not fit a float64.
func idString(r gjson.Result) string {
	if r.Type == gjson.Number {
		return r.Raw
	}
	return r.String()
}

// parsePermissions accepts either a JSON array of scope names or a comma
// separated string.
func parsePermissions(r gjson.Result) []string {
	var raw []string
	switch {
	case r.IsArray():
		for _, v := range r.Array() {
			raw = append(raw, v.String())
		}
	case r.Type == gjson.String:
		raw = strings.Split(r.Str, ",")
	}

	perms := make([]string, 0, len(raw))
	for _, p := range raw {
		if p = strings.TrimSpace(p); p != "" {
			perms = append(perms, p)
		}
	}

	return perms
}
