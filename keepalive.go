package main

import (
	"net/http"
	"time"
)

// StartKeepAlive serves a tiny health endpoint so the hosting platform's
// uptime pinger keeps the process alive. Runs in the background; a bind
// failure is logged but does not stop the bot.
func StartKeepAlive(addr string) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		GetLogger().Info().Str("addr", addr).Msg("keep-alive server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			GetLogger().Error().Err(err).Msg("keep-alive server stopped")
		}
	}()
}
