/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package capacity

import (
    "github.com/dt-jamiem/delivery-planning-tracker/internal/domain"
    "github.com/samber/lo"
)

// Initiative is a roadmap item a ticket or epic links to.
type Initiative struct {
    Key     string `json:"key"`
    Summary string `json:"summary"`
}

// Label is the display name used for the initiative's group.
func (i Initiative) Label() string { return i.Key + ": " + i.Summary }

// FindInitiative returns the first link pointing at an initiative-bearing
// roadmap item, in link order.
func (p Policy) FindInitiative(t domain.Ticket) (Initiative, bool) {
    for _, l := range t.Links {
        if l.Project == p.RoadmapProject && lo.Contains(p.InitiativeTypes, l.Type) {
            return Initiative{Key: l.Key, Summary: l.Summary}, true
        }
    }
    return Initiative{}, false
}

// InitiativeIndex maps epic keys to the initiative they roll up to. It lives
// for one report computation.
type InitiativeIndex map[string]Initiative

// BuildInitiativeIndex seeds the index from the fetched epics, then lets
// child tickets resolve epics that could not be resolved directly. The first
// child to resolve an epic wins.
func (p Policy) BuildInitiativeIndex(epics, tickets []domain.Ticket) InitiativeIndex {
    idx := InitiativeIndex{}
    for _, e := range epics {
        if ini, ok := p.FindInitiative(e); ok { idx[e.Key] = ini }
    }
    for _, t := range tickets {
        parent := t.ParentKey()
        if parent == "" { continue }
        if _, ok := idx[parent]; ok { continue }
        if ini, ok := p.FindInitiative(t); ok { idx[parent] = ini }
    }
    return idx
}

// Lookup returns the initiative cached for an epic key.
func (idx InitiativeIndex) Lookup(epicKey string) (Initiative, bool) {
    if epicKey == "" { return Initiative{}, false }
    ini, ok := idx[epicKey]
    return ini, ok
}
