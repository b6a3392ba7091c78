/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */

// Package capacity turns a snapshot of Jira tickets into the capacity
// planning report: inferred estimates, team workload, the initiative/epic
// grouping tree and utilization/flow metrics. Everything here is pure; the
// caller supplies the tickets and the clock.
package capacity

import "github.com/dt-jamiem/delivery-planning-tracker/internal/domain"

const (
    UnassignedAssignee = "Unassigned"
    OtherTeam          = "Other"
    NoPriority         = "None"

    secondsPerHour = 3600
)

// Family is one of the project buckets used when a ticket has no initiative.
type Family struct {
    // Prefix is the label prefix used during grouping, e.g. "INFRA".
    Prefix string `yaml:"prefix"`
    // Project is the Jira project key; empty for the catch-all family.
    Project string `yaml:"project"`
    // Team is the default team for tickets of this family.
    Team string `yaml:"team"`
    // Rollup is the display name of the family's top-level node.
    Rollup string `yaml:"rollup"`
}

type Policy struct {
    RequestsProject string `yaml:"requests_project"`
    RoadmapProject  string `yaml:"roadmap_project"`

    HigherComplexityRequestTypes []string          `yaml:"higher_complexity_request_types"`
    InitiativeTypes              []string          `yaml:"initiative_types"`
    ImproveTypes                 []string          `yaml:"improve_types"`
    AssigneeOverrides            map[string]string `yaml:"assignee_overrides"`

    // Requests is the internal-requests family; Families are the rest, in
    // rollup order. The last family with an empty Project is the catch-all.
    Requests Family   `yaml:"requests"`
    Families []Family `yaml:"families"`

    HoursPerDay int           `yaml:"hours_per_day"`
    Roster      []domain.Team `yaml:"teams"`
}

func DefaultPolicy() Policy {
    return Policy{
        RequestsProject: "DTI",
        RoadmapProject:  "TR",
        HigherComplexityRequestTypes: []string{
            "Build or Deployment Issues",
            "Connectivity Issue",
            "Branch Request",
        },
        InitiativeTypes: []string{"Deliver", "Delivery", "Initiative", "Improve"},
        ImproveTypes:    []string{"Deliver", "Delivery", "Initiative", "Improve"},
        AssigneeOverrides: map[string]string{
            "Garvin Wong":  "DBA",
            "Adrian Mazur": "DBA",
        },
        Requests: Family{Prefix: "DTI", Project: "DTI", Rollup: "DTI Requests"},
        Families: []Family{
            {Prefix: "INFRA", Project: "INFRA", Team: "Technology Operations", Rollup: "Technology Operations"},
            {Prefix: "DevOps", Project: "DevOps", Team: "DevOps", Rollup: "DevOps"},
            {Prefix: "Other", Team: OtherTeam, Rollup: OtherTeam},
        },
        HoursPerDay: 6,
        Roster: []domain.Team{
            {Name: "DBA", Engineers: 2, Members: []string{"Garvin Wong", "Adrian Mazur"}},
            {Name: "DevOps", Engineers: 6, Members: []string{"Andrew Sumner", "Phill Dellow", "Vakhtangi Mestvirishvili", "Sundaresan Thandvan", "Robert Higgins", "Alex Eastlake"}},
            {Name: "Technology Operations", Engineers: 4, Members: []string{"Mark Fairmaid", "Ann Winston", "Suresh Kaniyappa", "Graham Wilson"}},
            {Name: "Private Cloud", Engineers: 2, Members: []string{"Keith Wijey-Wardna", "Mike Cave"}},
        },
    }
}

// familyFor returns the family a non-requests project belongs to.
func (p Policy) familyFor(project string) Family {
    for _, f := range p.Families {
        if f.Project != "" && f.Project == project { return f }
    }
    for _, f := range p.Families {
        if f.Project == "" { return f }
    }
    return Family{Prefix: OtherTeam, Team: OtherTeam, Rollup: OtherTeam}
}
