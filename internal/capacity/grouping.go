/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package capacity

import (
    "sort"
    "strings"

    "github.com/dt-jamiem/delivery-planning-tracker/internal/domain"
    "github.com/samber/lo"
)

const (
    GroupEpic         = "Epic"
    GroupIssueType    = "Issue Type"
    GroupProjectGroup = "Project Group"
    GroupTeam         = "Team"
    GroupInitiative   = "Initiative"

    teamLabelInfix = "-Team: "
)

// Group is a node of the work breakdown tree. Non-leaf totals always equal
// the sum of their children.
type Group struct {
    Key           string  `json:"key"`
    Name          string  `json:"name"`
    Type          string  `json:"type"`
    ParentGroup   string  `json:"parentGroup,omitempty"`
    Tickets       int     `json:"tickets"`
    EstimateHours int     `json:"estimateHours"`
    DefaultHours  int     `json:"defaultHours"`
    TotalHours    int     `json:"totalHours"`
    Children      []Group `json:"children,omitempty"`
}

// Buckets is the breakdown split into routine requests, delivery work and
// improvement/initiative work.
type Buckets struct {
    BAU     []Group `json:"bau"`
    Deliver []Group `json:"deliver"`
    Improve []Group `json:"improve"`
}

// BuildHierarchy runs the grouping passes over the open tickets.
func (p Policy) BuildHierarchy(tickets []domain.Ticket, idx InitiativeIndex, roadmap []domain.Ticket) Buckets {
    nodes := p.buildLeaves(tickets, idx)
    nodes = reparent(nodes)
    nodes = p.rollupTeams(nodes)
    nodes = overlayInitiatives(nodes, roadmap)
    return p.bucketize(nodes)
}

type leafPlan struct {
    key, name, typ, parent string
}

func epicName(t domain.Ticket) string {
    summary := t.Parent.Summary
    if summary == "" { summary = "Unknown" }
    return t.Parent.Key + ": " + summary
}

func epicLeaf(t domain.Ticket, parent string) leafPlan {
    return leafPlan{key: t.Parent.Key, name: epicName(t), typ: GroupEpic, parent: parent}
}

func (p Policy) leafFor(t domain.Ticket, idx InitiativeIndex) leafPlan {
    if ini, ok := idx.Lookup(t.ParentKey()); ok {
        return epicLeaf(t, ini.Label())
    }
    if ini, ok := p.FindInitiative(t); ok {
        if t.Parent != nil { return epicLeaf(t, ini.Label()) }
        return leafPlan{key: t.Key, name: t.Key + ": " + t.Summary, typ: t.Type, parent: ini.Label()}
    }

    var prefix, team, keyPrefix string
    if t.Project == p.RequestsProject {
        prefix, team, keyPrefix = p.Requests.Prefix, p.ClassifyTeam(t), p.Requests.Prefix
    } else {
        f := p.familyFor(t.Project)
        prefix, team, keyPrefix = f.Prefix, f.Team, f.Prefix
        if f.Project == "" { keyPrefix = t.Project }
    }
    label := prefix + teamLabelInfix + team
    if t.Parent != nil { return epicLeaf(t, label) }
    return leafPlan{key: keyPrefix + "-" + t.Type, name: keyPrefix + ": " + t.Type, typ: GroupIssueType, parent: label}
}

// buildLeaves places every non-epic ticket in exactly one leaf group, in
// first-seen order. Hours are rounded per ticket.
func (p Policy) buildLeaves(tickets []domain.Ticket, idx InitiativeIndex) []Group {
    pos := map[string]int{}
    var leaves []Group
    for _, t := range tickets {
        if t.IsEpic() { continue }
        plan := p.leafFor(t, idx)
        i, ok := pos[plan.key]
        if !ok {
            i = len(leaves)
            pos[plan.key] = i
            leaves = append(leaves, Group{Key: plan.key, Name: plan.name, Type: plan.typ, ParentGroup: plan.parent})
        }
        g := &leaves[i]
        g.Tickets++
        if t.HasEstimate() {
            g.EstimateHours += secondsToHours(t.OriginalEstimate)
        } else if d := p.InferEstimateSeconds(t); d > 0 {
            g.DefaultHours += secondsToHours(d)
        }
        g.TotalHours = g.EstimateHours + g.DefaultHours
    }
    return leaves
}

// rollup wraps children in a new node whose totals are their sums.
func rollup(key, name, typ string, children []Group) Group {
    return Group{
        Key: key, Name: name, Type: typ, Children: children,
        Tickets:       lo.SumBy(children, func(c Group) int { return c.Tickets }),
        EstimateHours: lo.SumBy(children, func(c Group) int { return c.EstimateHours }),
        DefaultHours:  lo.SumBy(children, func(c Group) int { return c.DefaultHours }),
        TotalHours:    lo.SumBy(children, func(c Group) int { return c.TotalHours }),
    }
}

func sortByHours(g []Group) {
    sort.SliceStable(g, func(i, j int) bool { return g[i].TotalHours > g[j].TotalHours })
}

// reparent lifts unlabelled groups to the top level and wraps siblings that
// share a parent label in a "Project Group" node.
func reparent(leaves []Group) []Group {
    var top []Group
    var labels []string
    byLabel := map[string][]Group{}
    for _, g := range leaves {
        if g.ParentGroup == "" {
            top = append(top, g)
            continue
        }
        if _, ok := byLabel[g.ParentGroup]; !ok { labels = append(labels, g.ParentGroup) }
        byLabel[g.ParentGroup] = append(byLabel[g.ParentGroup], g)
    }
    for _, label := range labels {
        children := byLabel[label]
        sortByHours(children)
        top = append(top, rollup(label, label, GroupProjectGroup, children))
    }
    return top
}

// rollupTeams replaces the "<family>-Team: <team>" nodes of each family with a
// single family node holding the teams as children.
func (p Policy) rollupTeams(nodes []Group) []Group {
    families := append([]Family{p.Requests}, p.Families...)
    out := append([]Group(nil), nodes...)
    for _, f := range families {
        marker := f.Prefix + teamLabelInfix
        var rest, teams []Group
        for _, g := range out {
            if strings.HasPrefix(g.Key, marker) {
                g.Name = strings.TrimPrefix(g.Name, marker)
                g.Type = GroupTeam
                teams = append(teams, g)
                continue
            }
            rest = append(rest, g)
        }
        if len(teams) == 0 { continue }
        sortByHours(teams)
        out = append(rest, rollup(f.Rollup, f.Rollup, GroupProjectGroup, teams))
    }
    return out
}

// overlayInitiatives stamps each roadmap item's own issue type onto the
// matching top-level node, or appends an empty node for it.
func overlayInitiatives(nodes []Group, roadmap []domain.Ticket) []Group {
    out := append([]Group(nil), nodes...)
    for _, item := range roadmap {
        name := item.Key + ": " + item.Summary
        typ := item.Type
        if typ == "" { typ = GroupInitiative }
        found := false
        for i := range out {
            if out[i].Name == name || out[i].Key == item.Key {
                out[i].Type = typ
                found = true
                break
            }
        }
        if !found { out = append(out, Group{Key: item.Key, Name: name, Type: typ}) }
    }
    return out
}

func (p Policy) isImprove(g Group) bool {
    if lo.Contains(p.ImproveTypes, g.Type) { return true }
    return lo.ContainsBy(g.Children, func(c Group) bool { return lo.Contains(p.ImproveTypes, c.Type) })
}

// bucketize drops intermediate "Issue Type" nodes and partitions the rest.
func (p Policy) bucketize(nodes []Group) Buckets {
    b := Buckets{BAU: []Group{}, Deliver: []Group{}, Improve: []Group{}}
    for _, g := range nodes {
        switch {
        case g.Type == GroupIssueType:
            continue
        case g.Key == p.Requests.Rollup || g.Name == p.Requests.Rollup:
            b.BAU = append(b.BAU, g)
        case p.isImprove(g):
            b.Improve = append(b.Improve, g)
        default:
            b.Deliver = append(b.Deliver, g)
        }
    }
    sortByHours(b.BAU)
    sortByHours(b.Deliver)
    sortByHours(b.Improve)
    return b
}
