/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package http

import (
    "context"
    "errors"
    "net/http"
    "strconv"
    "time"

    "github.com/dt-jamiem/delivery-planning-tracker/internal/capacity"
    "github.com/dt-jamiem/delivery-planning-tracker/internal/config"
    "github.com/dt-jamiem/delivery-planning-tracker/internal/repo"
    "github.com/dt-jamiem/delivery-planning-tracker/internal/services"
    "github.com/gin-gonic/gin"
    "github.com/rs/zerolog"
)

// fetchFailedMessage is the error text dashboards match on.
const fetchFailedMessage = "Failed to fetch capacity planning data"

type service interface {
    BuildReport(ctx context.Context, days int) (capacity.Report, error)
    Insights(ctx context.Context, days int) (services.Insight, error)
    RunScheduledDigest(ctx context.Context) error
    HandleCommand(ctx context.Context, chatID int64, text string) error
    GetLastRun(ctx context.Context) (*repo.LastRun, error)
}

type Handlers struct {
    cfg config.Config
    log zerolog.Logger
    svc service
    // background work outlives the request
    bg func(func(ctx context.Context))
}

func NewHandlers(cfg config.Config, log zerolog.Logger, svc service) *Handlers {
    h := &Handlers{cfg: cfg, log: log, svc: svc}
    h.bg = func(fn func(ctx context.Context)) {
        go func() {
            ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute); defer cancel()
            fn(ctx)
        }()
    }
    return h
}

// days reads ?days=N; missing, malformed or non-positive values fall back.
func (h *Handlers) days(c *gin.Context) int {
    def := h.cfg.DefaultPeriodDays
    if def <= 0 { def = capacity.DefaultPeriodDays }
    n, err := strconv.Atoi(c.Query("days"))
    if err != nil || n <= 0 { return def }
    return n
}

func (h *Handlers) Health(c *gin.Context) {
    c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Capacity planning API is running"})
}

func (h *Handlers) Healthz(c *gin.Context) {
    c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handlers) CapacityPlanning(c *gin.Context) {
    r, err := h.svc.BuildReport(c.Request.Context(), h.days(c))
    if err != nil {
        c.JSON(http.StatusInternalServerError, gin.H{"error": fetchFailedMessage, "details": err.Error()})
        return
    }
    c.JSON(http.StatusOK, r)
}

func (h *Handlers) Insights(c *gin.Context) {
    in, err := h.svc.Insights(c.Request.Context(), h.days(c))
    switch {
    case errors.Is(err, services.ErrLLMDisabled):
        c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
    case errors.Is(err, services.ErrFetch):
        c.JSON(http.StatusInternalServerError, gin.H{"error": fetchFailedMessage, "details": err.Error()})
    case err != nil:
        c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
    default:
        c.JSON(http.StatusOK, in)
    }
}

func (h *Handlers) LastRun(c *gin.Context) {
    lr, err := h.svc.GetLastRun(c.Request.Context())
    if errors.Is(err, services.ErrNoStore) || errors.Is(err, repo.ErrNoRuns) {
        c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
        return
    }
    if err != nil {
        c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
        return
    }
    c.JSON(http.StatusOK, lr)
}

func (h *Handlers) RunNow(c *gin.Context) {
    h.bg(func(ctx context.Context) {
        if err := h.svc.RunScheduledDigest(ctx); err != nil { h.log.Error().Err(err).Msg("manual digest failed") }
    })
    c.JSON(http.StatusAccepted, gin.H{"status": "queued"})
}

func (h *Handlers) TelegramWebhook(c *gin.Context) {
    secret := h.cfg.TelegramWebhookSecret
    headerSecret := c.GetHeader("X-Telegram-Bot-Api-Secret-Token")
    pathSecret := c.Param("secret")
    // Accept either header secret (preferred) or path secret
    if secret == "" || (headerSecret != secret && pathSecret != secret) {
        c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
        return
    }

    var upd struct {
        Message *struct {
            Chat struct { ID int64 `json:"id"` } `json:"chat"`
            Text string `json:"text"`
        } `json:"message"`
    }
    if err := c.ShouldBindJSON(&upd); err == nil && upd.Message != nil && h.chatAllowed(upd.Message.Chat.ID) {
        chatID, text := upd.Message.Chat.ID, upd.Message.Text
        h.bg(func(ctx context.Context) {
            if err := h.svc.HandleCommand(ctx, chatID, text); err != nil {
                h.log.Error().Err(err).Int64("chat", chatID).Msg("telegram command failed")
            }
        })
    }
    c.JSON(http.StatusOK, gin.H{"ok": true})
}

// chatAllowed accepts only configured chats when any are configured.
func (h *Handlers) chatAllowed(id int64) bool {
    if len(h.cfg.TelegramChatIDs) == 0 { return true }
    for _, x := range h.cfg.TelegramChatIDs {
        if x == id { return true }
    }
    return false
}
