/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package app

import (
    "context"
    "fmt"

    "github.com/dt-jamiem/delivery-planning-tracker/internal/adapters/jira"
    "github.com/dt-jamiem/delivery-planning-tracker/internal/adapters/openai"
    "github.com/dt-jamiem/delivery-planning-tracker/internal/adapters/telegram"
    "github.com/dt-jamiem/delivery-planning-tracker/internal/config"
    "github.com/dt-jamiem/delivery-planning-tracker/internal/repo"
    "github.com/dt-jamiem/delivery-planning-tracker/internal/services"
    "github.com/rs/zerolog"
)

// Runtime is the wired service plus the optional pieces the API process
// needs directly.
type Runtime struct {
    Service  *services.Service
    Repo     *repo.Repository
    Telegram *telegram.Client
    db       *repo.DB
}

func (r *Runtime) Close() {
    if r.db != nil { r.db.Close() }
}

// Wire builds adapters and the report service. The database, LLM and
// Telegram are each optional and only wired when configured.
func Wire(ctx context.Context, cfg config.Config, log zerolog.Logger) (*Runtime, error) {
    policy, err := config.LoadPolicy(cfg.RosterFile)
    if err != nil { return nil, err }

    rt := &Runtime{}
    var store services.RunStore
    if cfg.DBDSN != "" {
        db, err := repo.Open(ctx, cfg.DBDSN, log)
        if err != nil { return nil, fmt.Errorf("open database: %w", err) }
        rt.db = db
        rt.Repo = repo.NewRepository(db, log)
        if err := rt.Repo.EnsureSchema(ctx); err != nil {
            db.Close()
            return nil, fmt.Errorf("ensure schema: %w", err)
        }
        store = rt.Repo
    }

    var llm services.LLM
    if oc := openai.NewClient(cfg, log); oc.Enabled() { llm = oc }

    var tg services.Notifier
    if tc := telegram.NewClient(cfg, log); tc.Enabled() {
        rt.Telegram = tc
        tg = tc
    }

    rt.Service = services.New(cfg, log, policy, jira.NewClient(cfg, log), llm, tg, store)
    log.Info().Bool("db", store != nil).Bool("llm", llm != nil).Bool("telegram", tg != nil).
        Int("teams", len(policy.Roster)).Msg("service wired")
    return rt, nil
}
