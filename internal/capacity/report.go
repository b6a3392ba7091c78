/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package capacity

import (
    "math"
    "time"

    "github.com/dt-jamiem/delivery-planning-tracker/internal/domain"
    "github.com/samber/lo"
)

const DefaultPeriodDays = 30

// Input is the ticket snapshot for one report. Tickets is the deduplicated
// union of open, recently created and recently resolved tickets.
type Input struct {
    Tickets    []domain.Ticket
    Epics      []domain.Ticket
    Roadmap    []domain.Ticket
    PeriodDays int
    Now        time.Time
}

type Summary struct {
    TotalOpenTickets      int `json:"totalOpenTickets"`
    TicketsCreated        int `json:"ticketsCreated"`
    TicketsResolved       int `json:"ticketsResolved"`
    AvgResolutionTime     int `json:"avgResolutionTime"`
    Velocity              int `json:"velocity"`
    Period                int `json:"period"`
    WorkingDays           int `json:"workingDays"`
    HoursPerDay           int `json:"hoursPerDay"`
    AvgWeeklyEffortChange int `json:"avgWeeklyEffortChange"`
}

type Report struct {
    Summary          Summary                   `json:"summary"`
    TeamCapacity     map[string]CapacityMetric `json:"teamCapacity"`
    AssigneeWorkload []WorkloadBucket          `json:"assigneeWorkload"`
    TicketFlow       []FlowPoint               `json:"ticketFlow"`
    EffortTrend      []EffortWeek              `json:"effortTrend"`
    ParentGrouping   Buckets                   `json:"parentGrouping"`
}

// Partition splits a snapshot into open tickets and those created or
// resolved on or after the period's cutoff day.
func Partition(tickets []domain.Ticket, periodDays int, now time.Time) (open, created, resolved []domain.Ticket) {
    cutoff := dateKey(utcDay(now).AddDate(0, 0, -periodDays))
    open = lo.Filter(tickets, func(t domain.Ticket, _ int) bool { return !t.IsDone() })
    created = lo.Filter(tickets, func(t domain.Ticket, _ int) bool {
        return !t.Created.IsZero() && ticketDay(t.Created) >= cutoff
    })
    resolved = lo.Filter(tickets, func(t domain.Ticket, _ int) bool {
        return t.IsDone() && t.Resolved != nil && ticketDay(*t.Resolved) >= cutoff
    })
    return open, created, resolved
}

// ComputeCapacityReport runs the full pipeline with the default policy.
func ComputeCapacityReport(in Input) Report { return DefaultPolicy().ComputeCapacityReport(in) }

func (p Policy) ComputeCapacityReport(in Input) Report {
    days := in.PeriodDays
    if days <= 0 { days = DefaultPeriodDays }
    now := in.Now
    if now.IsZero() { now = time.Now() }

    open, created, resolved := Partition(in.Tickets, days, now)

    workload := p.Aggregate(open, now)
    workingDays := WorkingDays(days)
    idx := p.BuildInitiativeIndex(in.Epics, open)
    trend, avgChange := p.EffortTrend(created, resolved, days, now)

    return Report{
        Summary: Summary{
            TotalOpenTickets:      len(open),
            TicketsCreated:        len(created),
            TicketsResolved:       len(resolved),
            AvgResolutionTime:     avgResolutionDays(resolved),
            Velocity:              Velocity(len(resolved), days),
            Period:                days,
            WorkingDays:           workingDays,
            HoursPerDay:           p.HoursPerDay,
            AvgWeeklyEffortChange: avgChange,
        },
        TeamCapacity:     ComputeCapacity(p.Roster, workingDays, p.HoursPerDay, workload),
        AssigneeWorkload: workload.Teams,
        TicketFlow:       TicketFlow(created, resolved, days, now),
        EffortTrend:      trend,
        ParentGrouping:   p.BuildHierarchy(open, idx, in.Roadmap),
    }
}

func avgResolutionDays(resolved []domain.Ticket) int {
    total, n := 0, 0
    for _, t := range resolved {
        if t.Created.IsZero() || t.Resolved == nil { continue }
        total += int(math.Floor(t.Resolved.Sub(t.Created).Hours() / 24))
        n++
    }
    if n == 0 { return 0 }
    return roundHalfUp(float64(total) / float64(n))
}
