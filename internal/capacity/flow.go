/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package capacity

import (
    "time"

    "github.com/dt-jamiem/delivery-planning-tracker/internal/domain"
)

const dateKeyLayout = "2006-01-02"

type FlowPoint struct {
    Date     string `json:"date"`
    Created  int    `json:"created"`
    Resolved int    `json:"resolved"`
}

type EffortWeek struct {
    Label           string `json:"label"`
    WeekStart       string `json:"weekStart"`
    WeekEnd         string `json:"weekEnd"`
    EffortAdded     int    `json:"effortAdded"`
    EffortRemoved   int    `json:"effortRemoved"`
    NetEffortChange int    `json:"netEffortChange"`
    TicketsCreated  int    `json:"ticketsCreated"`
    TicketsResolved int    `json:"ticketsResolved"`
}

func dateKey(t time.Time) string { return t.UTC().Format(dateKeyLayout) }

// ticketDay is the calendar date of a Jira timestamp in the offset Jira sent
// it with, not the UTC date.
func ticketDay(t time.Time) string { return t.Format(dateKeyLayout) }

func utcDay(t time.Time) time.Time {
    u := t.UTC()
    return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// TicketFlow counts tickets created and resolved on each day of the period
// ending today (UTC), oldest day first. Tickets count on their own calendar
// date.
func TicketFlow(created, resolved []domain.Ticket, periodDays int, now time.Time) []FlowPoint {
    if periodDays <= 0 { return []FlowPoint{} }
    today := utcDay(now)
    points := make([]FlowPoint, periodDays)
    index := make(map[string]int, periodDays)
    for i := 0; i < periodDays; i++ {
        key := dateKey(today.AddDate(0, 0, -(periodDays - 1 - i)))
        points[i] = FlowPoint{Date: key}
        index[key] = i
    }
    for _, t := range created {
        if i, ok := index[ticketDay(t.Created)]; ok { points[i].Created++ }
    }
    for _, t := range resolved {
        if t.Resolved == nil { continue }
        if i, ok := index[ticketDay(*t.Resolved)]; ok { points[i].Resolved++ }
    }
    return points
}

func weeksIn(periodDays int) int {
    if periodDays <= 0 { return 0 }
    return (periodDays + 6) / 7
}

// Velocity is resolved tickets per week of the period.
func Velocity(resolved, periodDays int) int {
    weeks := weeksIn(periodDays)
    if weeks == 0 { return 0 }
    return roundHalfUp(float64(resolved) / float64(weeks))
}

// EffortTrend buckets planned effort of created and resolved tickets into
// seven-day windows ending today, oldest first, and returns the mean net
// change per window.
func (p Policy) EffortTrend(created, resolved []domain.Ticket, periodDays int, now time.Time) ([]EffortWeek, int) {
    weeks := weeksIn(periodDays)
    if weeks == 0 { return []EffortWeek{}, 0 }

    today := utcDay(now)
    out := make([]EffortWeek, weeks)
    bounds := make([][2]string, weeks)
    for w := 0; w < weeks; w++ {
        end := today.AddDate(0, 0, -7*(weeks-1-w))
        start := end.AddDate(0, 0, -6)
        bounds[w] = [2]string{dateKey(start), dateKey(end)}
        out[w] = EffortWeek{
            Label:     start.Format("Jan 02") + " - " + end.Format("Jan 02"),
            WeekStart: bounds[w][0],
            WeekEnd:   bounds[w][1],
        }
    }
    find := func(key string) int {
        for w, b := range bounds {
            if key >= b[0] && key <= b[1] { return w }
        }
        return -1
    }

    for _, t := range created {
        if w := find(ticketDay(t.Created)); w >= 0 {
            out[w].TicketsCreated++
            out[w].EffortAdded += secondsToHours(p.plannedSeconds(t))
        }
    }
    for _, t := range resolved {
        if t.Resolved == nil { continue }
        if w := find(ticketDay(*t.Resolved)); w >= 0 {
            out[w].TicketsResolved++
            out[w].EffortRemoved += secondsToHours(p.plannedSeconds(t))
        }
    }

    sum := 0
    for i := range out {
        out[i].NetEffortChange = out[i].EffortAdded - out[i].EffortRemoved
        sum += out[i].NetEffortChange
    }
    return out, roundHalfUp(float64(sum) / float64(weeks))
}
