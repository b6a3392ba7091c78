/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package capacity

import "github.com/dt-jamiem/delivery-planning-tracker/internal/domain"

type CapacityMetric struct {
    Engineers              int      `json:"engineers"`
    Members                []string `json:"members"`
    AvailableCapacityHours int      `json:"availableCapacityHours"`
    WorkloadHours          int      `json:"workloadHours"`
    UtilizationPercent     int      `json:"utilizationPercent"`
    OpenTickets            int      `json:"openTickets"`
    EstimateHours          int      `json:"estimateHours"`
    DefaultHours           int      `json:"defaultHours"`
}

// WorkingDays approximates weekdays in a period as 5/7 of calendar days.
func WorkingDays(periodDays int) int {
    if periodDays <= 0 { return 0 }
    return periodDays * 5 / 7
}

// ComputeCapacity reports one metric per roster team. Teams without open
// work report zero workload.
func ComputeCapacity(roster []domain.Team, workingDays, hoursPerDay int, w Workload) map[string]CapacityMetric {
    out := make(map[string]CapacityMetric, len(roster))
    for _, team := range roster {
        m := CapacityMetric{
            Engineers:              team.Engineers,
            Members:                append([]string{}, team.Members...),
            AvailableCapacityHours: team.Engineers * workingDays * hoursPerDay,
        }
        if b, ok := w.Team(team.Name); ok {
            m.WorkloadHours = b.TotalHours
            m.OpenTickets = b.OpenTickets
            m.EstimateHours = b.EstimateHours
            m.DefaultHours = b.DefaultHours
            if m.AvailableCapacityHours > 0 {
                m.UtilizationPercent = roundHalfUp(float64(m.WorkloadHours) / float64(m.AvailableCapacityHours) * 100)
            }
        }
        out[team.Name] = m
    }
    return out
}
