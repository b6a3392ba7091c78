/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package capacity

import (
    "math"
    "sort"
    "time"

    "github.com/dt-jamiem/delivery-planning-tracker/internal/domain"
)

// WorkloadBucket is the open-ticket workload of a team or of one assignee
// within a team.
type WorkloadBucket struct {
    Name                string           `json:"name"`
    OpenTickets         int              `json:"openTickets"`
    ByPriority          map[string]int   `json:"byPriority"`
    OldestTicket        int              `json:"oldestTicket"`
    AvgAge              int              `json:"avgAge"`
    TicketsWithEstimate int              `json:"ticketsWithEstimate"`
    TicketsWithDefault  int              `json:"ticketsWithDefault"`
    EstimateHours       int              `json:"estimateHours"`
    DefaultHours        int              `json:"defaultHours"`
    TotalHours          int              `json:"totalHours"`
    IsTeam              bool             `json:"isTeam,omitempty"`
    IsAssignee          bool             `json:"isAssignee,omitempty"`
    Children            []WorkloadBucket `json:"children,omitempty"`
}

// Workload holds team buckets sorted by total hours, each carrying its
// assignees as children.
type Workload struct {
    Teams []WorkloadBucket
}

// Team returns the bucket for a team name.
func (w Workload) Team(name string) (WorkloadBucket, bool) {
    for _, t := range w.Teams {
        if t.Name == name { return t, true }
    }
    return WorkloadBucket{}, false
}

type bucketAcc struct {
    name            string
    open            int
    byPriority      map[string]int
    oldest          int
    ageSum          int
    withEstimate    int
    withDefault     int
    estimateSeconds int64
    defaultSeconds  int64
}

func newBucketAcc(name string) *bucketAcc {
    return &bucketAcc{name: name, byPriority: map[string]int{}}
}

func (a *bucketAcc) add(age int, priority string, estimate, inferred int64) {
    a.open++
    a.byPriority[priority]++
    a.ageSum += age
    if age > a.oldest { a.oldest = age }
    switch {
    case estimate > 0:
        a.estimateSeconds += estimate
        a.withEstimate++
    case inferred > 0:
        a.defaultSeconds += inferred
        a.withDefault++
    }
}

func (a *bucketAcc) bucket() WorkloadBucket {
    b := WorkloadBucket{
        Name:                a.name,
        OpenTickets:         a.open,
        ByPriority:          a.byPriority,
        OldestTicket:        a.oldest,
        TicketsWithEstimate: a.withEstimate,
        TicketsWithDefault:  a.withDefault,
        EstimateHours:       secondsToHours(a.estimateSeconds),
        DefaultHours:        secondsToHours(a.defaultSeconds),
    }
    if a.open > 0 { b.AvgAge = roundHalfUp(float64(a.ageSum) / float64(a.open)) }
    b.TotalHours = b.EstimateHours + b.DefaultHours
    return b
}

type teamAcc struct {
    bucketAcc
    assignees map[string]*bucketAcc
    order     []string
}

// Aggregate folds open tickets into per-team and per-assignee workload.
// Epics are skipped.
func (p Policy) Aggregate(tickets []domain.Ticket, now time.Time) Workload {
    teams := map[string]*teamAcc{}
    var order []string

    for _, t := range tickets {
        if t.IsEpic() { continue }
        teamName := p.ClassifyTeam(t)
        who := assigneeName(t)

        team, ok := teams[teamName]
        if !ok {
            team = &teamAcc{bucketAcc: *newBucketAcc(teamName), assignees: map[string]*bucketAcc{}}
            teams[teamName] = team
            order = append(order, teamName)
        }
        person, ok := team.assignees[who]
        if !ok {
            person = newBucketAcc(who)
            team.assignees[who] = person
            team.order = append(team.order, who)
        }

        age := ageDays(t.Created, now)
        priority := t.Priority
        if priority == "" { priority = NoPriority }
        inferred := p.InferEstimateSeconds(t)

        team.add(age, priority, t.OriginalEstimate, inferred)
        person.add(age, priority, t.OriginalEstimate, inferred)
    }

    out := Workload{Teams: make([]WorkloadBucket, 0, len(order))}
    for _, name := range order {
        acc := teams[name]
        tb := acc.bucket()
        tb.IsTeam = true
        tb.Children = make([]WorkloadBucket, 0, len(acc.order))
        for _, who := range acc.order {
            ab := acc.assignees[who].bucket()
            ab.IsAssignee = true
            tb.Children = append(tb.Children, ab)
        }
        sortWorkload(tb.Children)
        out.Teams = append(out.Teams, tb)
    }
    sortWorkload(out.Teams)
    return out
}

func sortWorkload(b []WorkloadBucket) {
    sort.SliceStable(b, func(i, j int) bool {
        if b[i].TotalHours != b[j].TotalHours { return b[i].TotalHours > b[j].TotalHours }
        return b[i].OpenTickets > b[j].OpenTickets
    })
}

func ageDays(created, now time.Time) int {
    if created.IsZero() { return 0 }
    return int(math.Floor(now.Sub(created).Hours() / 24))
}

func secondsToHours(s int64) int { return roundHalfUp(float64(s) / secondsPerHour) }

// roundHalfUp rounds .5 toward positive infinity, which keeps negative
// deltas consistent with the dashboard's rounding.
func roundHalfUp(v float64) int { return int(math.Floor(v + 0.5)) }
