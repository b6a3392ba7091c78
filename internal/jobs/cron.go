/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package jobs

import (
    "context"
    "fmt"
    "time"

    "github.com/dt-jamiem/delivery-planning-tracker/internal/config"
    "github.com/robfig/cron/v3"
    "github.com/rs/zerolog"
)

const digestLockKey int64 = 5317001

type service interface { RunScheduledDigest(ctx context.Context) error }

// Locker is satisfied by *repo.Repository; nil runs every tick unguarded.
type Locker interface {
    TryAdvisoryLock(ctx context.Context, key int64) (bool, error)
    AdvisoryUnlock(ctx context.Context, key int64) error
}

type Cron struct {
    cfg     config.Config
    log     zerolog.Logger
    svc     service
    lock    Locker
    c       *cron.Cron
    timeout time.Duration
}

func NewCron(cfg config.Config, log zerolog.Logger, svc service, lock Locker) (*Cron, error) {
    loc, err := time.LoadLocation(cfg.TZ)
    if err != nil { loc = time.UTC }
    c := cron.New(cron.WithLocation(loc), cron.WithParser(cron.NewParser(cron.Minute|cron.Hour|cron.Dom|cron.Month|cron.Dow)))
    cr := &Cron{cfg: cfg, log: log, svc: svc, lock: lock, c: c, timeout: 5 * time.Minute}
    if _, err := c.AddFunc(cfg.DigestCron, cr.digest); err != nil {
        return nil, fmt.Errorf("digest schedule %q: %w", cfg.DigestCron, err)
    }
    return cr, nil
}

func (cr *Cron) Start(){ cr.c.Start() }

// Stop waits for a running digest to finish.
func (cr *Cron) Stop(){ <-cr.c.Stop().Done() }

func (cr *Cron) digest(){
    ctx, cancel := context.WithTimeout(context.Background(), cr.timeout); defer cancel()
    if cr.lock != nil {
        ok, err := cr.lock.TryAdvisoryLock(ctx, digestLockKey)
        if err != nil { cr.log.Error().Err(err).Msg("cron: lock error"); return }
        if !ok { cr.log.Info().Msg("cron: already running elsewhere"); return }
        defer func(){ _ = cr.lock.AdvisoryUnlock(context.Background(), digestLockKey) }()
    }
    cr.log.Info().Msg("cron: capacity digest")
    if err := cr.svc.RunScheduledDigest(ctx); err != nil { cr.log.Error().Err(err).Msg("cron: digest failed") }
}
