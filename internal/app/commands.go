/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package app

import (
    "context"
    "encoding/json"
    "fmt"
    "io"
    "os"
    "sort"
    "text/tabwriter"

    "github.com/dt-jamiem/delivery-planning-tracker/internal/capacity"
    "github.com/dt-jamiem/delivery-planning-tracker/internal/config"
    "github.com/dt-jamiem/delivery-planning-tracker/internal/logger"
    "github.com/rs/zerolog"
)

type reporter interface {
    BuildReport(ctx context.Context, days int) (capacity.Report, error)
}

var reporterFactory = func(ctx context.Context, cfg config.Config, log zerolog.Logger) (reporter, func(), error) {
    rt, err := Wire(ctx, cfg, log)
    if err != nil { return nil, nil, err }
    return rt.Service, rt.Close, nil
}

func loadConfig() (config.Config, zerolog.Logger) {
    cfg := config.Load()
    if verbose { cfg.LogLevel = "debug" } else if os.Getenv("LOG_LEVEL") == "" { cfg.LogLevel = "warn" }
    return cfg, logger.New(cfg)
}

func handleReport(ctx context.Context, days int, asJSON bool, w io.Writer) error {
    if ctx == nil { ctx = context.Background() }
    cfg, log := loadConfig()
    svc, closeFn, err := reporterFactory(ctx, cfg, log)
    if err != nil { return err }
    defer closeFn()

    r, err := svc.BuildReport(ctx, days)
    if err != nil { return err }
    if asJSON {
        enc := json.NewEncoder(w)
        enc.SetIndent("", "  ")
        return enc.Encode(r)
    }
    return printReport(w, r)
}

func printReport(w io.Writer, r capacity.Report) error {
    s := r.Summary
    fmt.Fprintf(w, "Period: %d days (%d working days, %dh/day)\n", s.Period, s.WorkingDays, s.HoursPerDay)
    fmt.Fprintf(w, "Open %d | Created %d | Resolved %d | Velocity %d/week | Avg resolution %dd\n\n",
        s.TotalOpenTickets, s.TicketsCreated, s.TicketsResolved, s.Velocity, s.AvgResolutionTime)

    tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
    fmt.Fprintln(tw, "TEAM\tENGINEERS\tAVAILABLE\tWORKLOAD\tUTILIZATION\tOPEN")
    for _, name := range sortedTeams(r.TeamCapacity) {
        m := r.TeamCapacity[name]
        fmt.Fprintf(tw, "%s\t%d\t%dh\t%dh\t%d%%\t%d\n", name, m.Engineers, m.AvailableCapacityHours, m.WorkloadHours, m.UtilizationPercent, m.OpenTickets)
    }
    if err := tw.Flush(); err != nil { return err }

    fmt.Fprintln(w)
    tw = tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
    fmt.Fprintln(tw, "BUCKET\tGROUP\tTICKETS\tHOURS")
    for _, b := range []struct {
        name   string
        groups []capacity.Group
    }{{"BAU", r.ParentGrouping.BAU}, {"Deliver", r.ParentGrouping.Deliver}, {"Improve", r.ParentGrouping.Improve}} {
        for _, g := range b.groups {
            fmt.Fprintf(tw, "%s\t%s\t%d\t%dh\n", b.name, g.Name, g.Tickets, g.TotalHours)
        }
    }
    return tw.Flush()
}

func handleRoster(days int, w io.Writer) error {
    cfg, _ := loadConfig()
    p, err := config.LoadPolicy(cfg.RosterFile)
    if err != nil { return err }
    if days <= 0 { days = cfg.DefaultPeriodDays }
    if days <= 0 { days = capacity.DefaultPeriodDays }
    workingDays := capacity.WorkingDays(days)
    metrics := capacity.ComputeCapacity(p.Roster, workingDays, p.HoursPerDay, capacity.Workload{})

    fmt.Fprintf(w, "Roster for %d days (%d working days, %dh/day)\n", days, workingDays, p.HoursPerDay)
    tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
    fmt.Fprintln(tw, "TEAM\tENGINEERS\tAVAILABLE\tMEMBERS")
    for _, t := range p.Roster {
        fmt.Fprintf(tw, "%s\t%d\t%dh\t%d\n", t.Name, t.Engineers, metrics[t.Name].AvailableCapacityHours, len(t.Members))
    }
    return tw.Flush()
}

func sortedTeams(m map[string]capacity.CapacityMetric) []string {
    names := make([]string, 0, len(m))
    for n := range m { names = append(names, n) }
    sort.Strings(names)
    return names
}
