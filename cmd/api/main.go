/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package main

import (
    "context"
    "errors"
    "net/http"
    "os"
    "os/signal"
    "strings"
    "syscall"
    "time"

    "github.com/dt-jamiem/delivery-planning-tracker/internal/app"
    "github.com/dt-jamiem/delivery-planning-tracker/internal/config"
    httpapi "github.com/dt-jamiem/delivery-planning-tracker/internal/http"
    "github.com/dt-jamiem/delivery-planning-tracker/internal/jobs"
    "github.com/dt-jamiem/delivery-planning-tracker/internal/logger"
)

func main() {
    cfg := config.Load()
    log := logger.New(cfg)
    ctx, cancel := context.WithCancel(context.Background())
    defer cancel()

    rt, err := app.Wire(ctx, cfg, log)
    if err != nil { log.Fatal().Err(err).Msg("startup failed") }
    defer rt.Close()

    router := httpapi.NewRouter(cfg, log, rt.Service)

    // Register Telegram webhook only if PUBLIC_BASE_URL is HTTPS
    if rt.Telegram != nil && cfg.TelegramWebhookSecret != "" && strings.HasPrefix(strings.ToLower(cfg.PublicBaseURL), "https://") {
        go func(){
            ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second); defer cancel()
            webhookURL := strings.TrimRight(cfg.PublicBaseURL, "/") + "/telegram/webhook"
            if err := rt.Telegram.SetWebhook(ctx, webhookURL, cfg.TelegramWebhookSecret); err != nil {
                log.Error().Err(err).Str("url", webhookURL).Msg("telegram setWebhook failed")
            } else {
                log.Info().Str("url", webhookURL).Msg("telegram setWebhook ok")
            }
        }()
    }

    var lock jobs.Locker
    if rt.Repo != nil { lock = rt.Repo }
    cron, err := jobs.NewCron(cfg, log, rt.Service, lock)
    if err != nil { log.Fatal().Err(err).Msg("cron setup failed") }
    cron.Start()
    defer cron.Stop()

    srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router, ReadHeaderTimeout: 10 * time.Second}
    errCh := make(chan error, 1)
    go func() { errCh <- srv.ListenAndServe() }()
    log.Info().Str("addr", cfg.HTTPAddr).Msg("http listening")

    sigCh := make(chan os.Signal, 1)
    signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

    select {
    case <-sigCh:
        log.Info().Msg("shutting down...")
    case err := <-errCh:
        if err != nil && !errors.Is(err, http.ErrServerClosed) { log.Error().Err(err).Msg("http server error") }
    }

    shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
    defer stop()
    if err := srv.Shutdown(shutdownCtx); err != nil { log.Error().Err(err).Msg("http shutdown failed") }
}
