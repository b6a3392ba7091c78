/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package capacity

import "github.com/dt-jamiem/delivery-planning-tracker/internal/domain"

// ClassifyTeam resolves the single team a ticket is counted under.
func (p Policy) ClassifyTeam(t domain.Ticket) string {
    if name, ok := t.Team.Resolve(); ok { return name }

    if t.Project == p.RequestsProject {
        if team, ok := p.AssigneeOverrides[t.Assignee]; ok && t.Assignee != "" { return team }
        return OtherTeam
    }

    f := p.familyFor(t.Project)
    if f.Team == "" { return OtherTeam }
    return f.Team
}

func assigneeName(t domain.Ticket) string {
    if t.Assignee == "" { return UnassignedAssignee }
    return t.Assignee
}
