/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package services

import (
    "context"
    "fmt"
    "regexp"
    "sort"
    "strings"

    "github.com/dt-jamiem/delivery-planning-tracker/internal/capacity"
)

var (
    emailRe    = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+`)
    urlRe      = regexp.MustCompile(`https?://[^\s]+`)
    tokenRe    = regexp.MustCompile(`(?i)\b(?:token|secret|password|apikey|api_key|bearer)[:=\s]+[A-Za-z0-9\-\._~+/]{8,}\b`)
    jiraUserRe = regexp.MustCompile(`\bJIRAUSER\d+\b`)
)

type Insight struct {
    PeriodDays int    `json:"periodDays"`
    Text       string `json:"insights"`
}

type groupLine struct {
    Bucket     string `json:"bucket"`
    Name       string `json:"name"`
    Tickets    int    `json:"tickets"`
    TotalHours int    `json:"totalHours"`
}

type insightPayload struct {
    Summary          capacity.Summary                   `json:"summary"`
    TeamCapacity     map[string]capacity.CapacityMetric `json:"teamCapacity"`
    AssigneeWorkload []capacity.WorkloadBucket          `json:"assigneeWorkload"`
    EffortTrend      []capacity.EffortWeek              `json:"effortTrend"`
    Groups           []groupLine                        `json:"groups"`
}

// Insights builds the report and asks the LLM for a briefing. Only aliased
// names leave the process.
func (s *Service) Insights(ctx context.Context, days int) (Insight, error) {
    if s.llm == nil { return Insight{}, ErrLLMDisabled }
    days = s.periodDays(days)
    report, err := s.buildReport(ctx, days, "insights")
    if err != nil { return Insight{}, err }
    payload := redactReport(report, s.policy)
    text, err := s.llm.SummarizeCapacity(ctx, payload)
    if err != nil { return Insight{}, fmt.Errorf("llm summary: %w", err) }
    return Insight{PeriodDays: days, Text: text}, nil
}

// aliaser hands out stable "memberNN" aliases in first-seen order.
type aliaser struct {
    alias map[string]string
    order []string
}

func (a *aliaser) of(name string) string {
    name = strings.TrimSpace(name)
    if name == "" || name == capacity.UnassignedAssignee { return name }
    if v, ok := a.alias[name]; ok { return v }
    v := fmt.Sprintf("member%02d", len(a.order)+1)
    a.alias[name] = v
    a.order = append(a.order, name)
    return v
}

// scrub masks contact details and secrets, then known names. Longer names go
// first so "Ann Winston" wins over a bare "Ann".
func (a *aliaser) scrub(s string) string {
    s = emailRe.ReplaceAllString(s, "<email>")
    s = urlRe.ReplaceAllString(s, "<url>")
    s = tokenRe.ReplaceAllString(s, "<secret>")
    s = jiraUserRe.ReplaceAllString(s, "<user>")
    names := append([]string(nil), a.order...)
    sort.SliceStable(names, func(i, j int) bool { return len(names[i]) > len(names[j]) })
    for _, n := range names {
        re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(n) + `\b`)
        s = re.ReplaceAllString(s, a.alias[n])
    }
    return s
}

func redactReport(r capacity.Report, p capacity.Policy) insightPayload {
    a := &aliaser{alias: map[string]string{}}
    for _, t := range p.Roster {
        for _, m := range t.Members { a.of(m) }
    }
    for _, t := range r.AssigneeWorkload {
        for _, c := range t.Children { a.of(c.Name) }
    }

    out := insightPayload{
        Summary:      r.Summary,
        TeamCapacity: make(map[string]capacity.CapacityMetric, len(r.TeamCapacity)),
        EffortTrend:  r.EffortTrend,
    }
    for name, m := range r.TeamCapacity {
        members := make([]string, 0, len(m.Members))
        for _, x := range m.Members { members = append(members, a.of(x)) }
        m.Members = members
        out.TeamCapacity[name] = m
    }
    for _, t := range r.AssigneeWorkload {
        children := make([]capacity.WorkloadBucket, 0, len(t.Children))
        for _, c := range t.Children {
            c.Name = a.of(c.Name)
            children = append(children, c)
        }
        t.Children = children
        out.AssigneeWorkload = append(out.AssigneeWorkload, t)
    }
    add := func(bucket string, gs []capacity.Group) {
        for _, g := range gs {
            out.Groups = append(out.Groups, groupLine{Bucket: bucket, Name: a.scrub(g.Name), Tickets: g.Tickets, TotalHours: g.TotalHours})
        }
    }
    add("bau", r.ParentGrouping.BAU)
    add("deliver", r.ParentGrouping.Deliver)
    add("improve", r.ParentGrouping.Improve)
    return out
}
