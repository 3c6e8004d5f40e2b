package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// Flow:
//
// 1. / -> login page with a link to /login
// 2. /login -> redirect to Instagram's authorize url with client_id, redirect_uri, scope (and a signed state when configured)
// 3. /auth/callback -> exchange the code for a short-lived token (POST), then that for a long-lived token (GET) -> show user id, token and permissions
func main() {
	cfg, err := LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	logger := newLogger(cfg.Environment, cfg.LogLevel)

	exchanger := NewTokenExchanger(
		cfg.ClientCredentials(),
		cfg.RedirectURI(),
		cfg.Endpoints(),
		&http.Client{Timeout: cfg.HTTPTimeout},
		logger,
	)

	srv := NewServer(cfg, exchanger, NewStateSigner(cfg.StateSigningKey), logger)

	addr := fmt.Sprintf(":%d", cfg.Port)

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.WithField("redirect_uri", cfg.RedirectURI()).Infof("Listening on %s", addr)

	if err := httpServer.ListenAndServe(); err != nil {
		logger.Fatalf("Failed to start http server: %v", err)
	}
}
