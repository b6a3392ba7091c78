/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package services

import (
    "context"
    "errors"
    "fmt"
    "sort"
    "sync"
    "time"

    "github.com/dt-jamiem/delivery-planning-tracker/internal/capacity"
    "github.com/dt-jamiem/delivery-planning-tracker/internal/config"
    "github.com/dt-jamiem/delivery-planning-tracker/internal/domain"
    "github.com/dt-jamiem/delivery-planning-tracker/internal/repo"
    "github.com/google/uuid"
    "github.com/rs/zerolog"
    "github.com/samber/lo"
)

var (
    // ErrFetch wraps failures of the primary ticket queries.
    ErrFetch       = errors.New("failed to fetch capacity planning data")
    ErrNoStore     = errors.New("run history is not configured")
    ErrLLMDisabled = errors.New("llm is not configured")
)

type JiraClient interface {
    SearchAll(ctx context.Context, jql string, limit int) ([]domain.Ticket, error)
    IssuesByKeys(ctx context.Context, keys []string) ([]domain.Ticket, error)
}

type LLM interface {
    SummarizeCapacity(ctx context.Context, payload any) (string, error)
}

type Notifier interface {
    SendPlain(ctx context.Context, chatID int64, text string) error
    SendMarkdownV2(ctx context.Context, chatID int64, text string) error
}

// RunStore records report runs; *repo.Repository satisfies it.
type RunStore interface {
    StartReportRun(ctx context.Context, runID, trigger string, periodDays int) (int64, error)
    FinishReportRun(ctx context.Context, id int64, ticketsFetched int, success bool, errStr string, summary any) error
    GetLastRun(ctx context.Context) (*repo.LastRun, error)
}

type Service struct {
    cfg    config.Config
    log    zerolog.Logger
    policy capacity.Policy
    jira   JiraClient
    llm    LLM
    tg     Notifier
    store  RunStore
    now    func() time.Time
}

// New wires the service. llm, tg and store may be nil.
func New(cfg config.Config, log zerolog.Logger, policy capacity.Policy, jira JiraClient, llm LLM, tg Notifier, store RunStore) *Service {
    return &Service{cfg: cfg, log: log, policy: policy, jira: jira, llm: llm, tg: tg, store: store, now: time.Now}
}

func (s *Service) Policy() capacity.Policy { return s.policy }

func (s *Service) periodDays(days int) int {
    if days > 0 { return days }
    if s.cfg.DefaultPeriodDays > 0 { return s.cfg.DefaultPeriodDays }
    return capacity.DefaultPeriodDays
}

// BuildReport fetches the ticket snapshot for the last days and computes the
// capacity report.
func (s *Service) BuildReport(ctx context.Context, days int) (capacity.Report, error) {
    return s.buildReport(ctx, s.periodDays(days), "api")
}

func (s *Service) buildReport(ctx context.Context, days int, trigger string) (capacity.Report, error) {
    runID := uuid.NewString()
    log := s.log.With().Str("run_id", runID).Str("trigger", trigger).Int("days", days).Logger()
    started := time.Now()

    var storeID int64
    if s.store != nil {
        id, err := s.store.StartReportRun(ctx, runID, trigger, days)
        if err != nil { log.Error().Err(err).Msg("start report run failed") } else { storeID = id }
    }

    now := s.now()
    tickets, open, err := s.fetchSnapshot(ctx, days, now)
    var report capacity.Report
    if err == nil {
        epics := s.fetchEpics(ctx, log, open)
        roadmap, rerr := s.jira.SearchAll(ctx, s.cfg.JiraRoadmapJQL, s.cfg.JiraRoadmapMax)
        if rerr != nil {
            log.Warn().Err(rerr).Msg("roadmap fetch failed, continuing without initiatives")
            roadmap = nil
        }
        report = s.policy.ComputeCapacityReport(capacity.Input{
            Tickets: tickets, Epics: epics, Roadmap: roadmap, PeriodDays: days, Now: now,
        })
    }

    if storeID != 0 {
        var summary any
        errStr := ""
        if err != nil { errStr = err.Error() } else { summary = report.Summary }
        // the request context may already be gone
        fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
        if ferr := s.store.FinishReportRun(fctx, storeID, len(tickets), err == nil, errStr, summary); ferr != nil {
            log.Error().Err(ferr).Msg("finish report run failed")
        }
        cancel()
    }
    if err != nil {
        log.Error().Err(err).Msg("report failed")
        return capacity.Report{}, err
    }
    logCapacity(log, report)
    log.Info().Int("tickets", len(tickets)).Int("open", report.Summary.TotalOpenTickets).
        Dur("took", time.Since(started)).Msg("report built")
    return report, nil
}

// logCapacity writes one line per roster team, by name.
func logCapacity(log zerolog.Logger, r capacity.Report) {
    names := lo.Keys(r.TeamCapacity)
    sort.Strings(names)
    for _, name := range names {
        m := r.TeamCapacity[name]
        log.Info().Str("team", name).Int("engineers", m.Engineers).
            Int("available_hours", m.AvailableCapacityHours).Int("workload_hours", m.WorkloadHours).
            Int("open", m.OpenTickets).Int("utilization_pct", m.UtilizationPercent).
            Msg("team capacity")
    }
}

type query struct {
    name string
    jql  string
}

// fetchSnapshot runs the open, created and resolved queries concurrently and
// returns their union deduplicated by key, plus the open tickets.
func (s *Service) fetchSnapshot(ctx context.Context, days int, now time.Time) ([]domain.Ticket, []domain.Ticket, error) {
    since := now.UTC().AddDate(0, 0, -days).Format("2006-01-02")
    base := s.cfg.JiraBaseJQL
    queries := []query{
        {"open", fmt.Sprintf(`%s AND statusCategory NOT IN (Done) ORDER BY created DESC`, base)},
        {"created", fmt.Sprintf(`%s AND created >= "%s" ORDER BY created DESC`, base, since)},
        {"resolved", fmt.Sprintf(`%s AND statusCategory IN (Done) AND resolutiondate >= "%s" ORDER BY resolutiondate DESC`, base, since)},
    }

    workers := s.cfg.MaxConcurrency
    if workers <= 0 { workers = 1 }
    sem := make(chan struct{}, workers)
    results := make([][]domain.Ticket, len(queries))
    errs := make([]error, len(queries))
    var wg sync.WaitGroup
    for i, q := range queries {
        wg.Add(1)
        go func(i int, q query) {
            defer wg.Done()
            sem <- struct{}{}
            defer func() { <-sem }()
            got, err := s.jira.SearchAll(ctx, q.jql, s.cfg.JiraMaxResults)
            if err != nil { errs[i] = fmt.Errorf("%w: %s tickets: %w", ErrFetch, q.name, err); return }
            results[i] = got
            s.log.Debug().Str("query", q.name).Int("count", len(got)).Msg("jira query done")
        }(i, q)
    }
    wg.Wait()
    if err := errors.Join(errs...); err != nil { return nil, nil, err }

    all := lo.UniqBy(lo.Flatten(results), func(t domain.Ticket) string { return t.Key })
    return all, results[0], nil
}

// fetchEpics loads the parents of open tickets. Failures only cost the
// initiative lookup through epics, so they are logged and swallowed.
func (s *Service) fetchEpics(ctx context.Context, log zerolog.Logger, open []domain.Ticket) []domain.Ticket {
    keys := lo.Uniq(lo.FilterMap(open, func(t domain.Ticket, _ int) (string, bool) {
        k := t.ParentKey()
        return k, k != ""
    }))
    if len(keys) == 0 { return nil }
    epics, err := s.jira.IssuesByKeys(ctx, keys)
    if err != nil { log.Warn().Err(err).Int("keys", len(keys)).Int("fetched", len(epics)).Msg("epic fetch incomplete") }
    return epics
}

func (s *Service) GetLastRun(ctx context.Context) (*repo.LastRun, error) {
    if s.store == nil { return nil, ErrNoStore }
    return s.store.GetLastRun(ctx)
}
