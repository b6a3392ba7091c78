/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package domain

import "time"

const (
    StatusToDo       = "To Do"
    StatusInProgress = "In Progress"
    StatusDone       = "Done"

    TypeEpic  = "Epic"
    TypeStory = "Story"
    TypeTask  = "Task"
)

type Ticket struct {
    Key            string
    Summary        string
    Project        string
    Type           string
    StatusCategory string
    Assignee       string
    Priority       string
    Created        time.Time
    Resolved       *time.Time
    // OriginalEstimate is in seconds; zero means the ticket was never estimated.
    OriginalEstimate int64
    Team             TeamField
    RequestType      string
    Parent           *ParentRef
    Links            []IssueLink
}

func (t Ticket) HasEstimate() bool { return t.OriginalEstimate > 0 }
func (t Ticket) IsEpic() bool      { return t.Type == TypeEpic }
func (t Ticket) IsDone() bool      { return t.StatusCategory == StatusDone }

func (t Ticket) ParentKey() string {
    if t.Parent == nil { return "" }
    return t.Parent.Key
}

type ParentRef struct {
    Key     string
    Summary string
}

type IssueLink struct {
    Key     string
    Summary string
    Type    string
    Project string
}

type TeamFieldKind int

const (
    TeamAbsent TeamFieldKind = iota
    TeamStructured
    TeamRaw
)

// TeamField is the Jira "Team" custom field, which arrives either as an
// object carrying a name or as a bare string depending on the project.
type TeamField struct {
    Kind TeamFieldKind
    Name string
}

func StructuredTeam(name string) TeamField { return TeamField{Kind: TeamStructured, Name: name} }
func RawTeam(name string) TeamField        { return TeamField{Kind: TeamRaw, Name: name} }

// Resolve returns the team name when the field carries a non-empty one.
func (f TeamField) Resolve() (string, bool) {
    switch f.Kind {
    case TeamStructured, TeamRaw:
        if f.Name != "" { return f.Name, true }
    }
    return "", false
}

// Team is a statically configured delivery team used for capacity.
type Team struct {
    Name      string   `yaml:"name" json:"name"`
    Engineers int      `yaml:"engineers" json:"engineers"`
    Members   []string `yaml:"members" json:"members"`
}
