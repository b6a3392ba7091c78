/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package capacity

import (
    "github.com/dt-jamiem/delivery-planning-tracker/internal/domain"
    "github.com/samber/lo"
)

// InferEstimateSeconds returns the default effort for an unestimated ticket.
// Tickets that already carry an original estimate get 0 so callers never
// count them twice.
func (p Policy) InferEstimateSeconds(t domain.Ticket) int64 {
    if t.HasEstimate() { return 0 }
    return p.policyEstimate(t, t.StatusCategory)
}

func (p Policy) policyEstimate(t domain.Ticket, status string) int64 {
    software := t.Type == domain.TypeStory || t.Type == domain.TypeTask
    requests := t.Project == p.RequestsProject
    if !software && !requests { return 0 }

    higher := requests && t.RequestType != "" && lo.Contains(p.HigherComplexityRequestTypes, t.RequestType)

    // A higher-complexity request keeps its request tier even when the
    // service desk files it as a Task.
    var hours int64
    switch status {
    case domain.StatusToDo:
        switch {
        case higher: hours = 6
        case software: hours = 8
        default: hours = 4
        }
    case domain.StatusInProgress:
        switch {
        case higher: hours = 3
        case software: hours = 4
        default: hours = 2
        }
    }
    return hours * secondsPerHour
}

// plannedSeconds is the effort a ticket represented while open: its explicit
// estimate, or the "To Do" default for its kind.
func (p Policy) plannedSeconds(t domain.Ticket) int64 {
    if t.HasEstimate() { return t.OriginalEstimate }
    return p.policyEstimate(t, domain.StatusToDo)
}
