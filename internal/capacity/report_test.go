package capacity

import (
    "testing"
    "time"

    "github.com/dt-jamiem/delivery-planning-tracker/internal/domain"
)

func TestComputeCapacityScenario(t *testing.T) {
    roster := []domain.Team{{Name: "DBA", Engineers: 2, Members: []string{"A", "B"}}}
    workingDays := WorkingDays(7)
    if workingDays != 5 { t.Fatalf("working days %d", workingDays) }

    w := Workload{Teams: []WorkloadBucket{{Name: "DBA", OpenTickets: 4, EstimateHours: 30, DefaultHours: 15, TotalHours: 45}}}
    m := ComputeCapacity(roster, workingDays, 6, w)["DBA"]
    if m.AvailableCapacityHours != 60 || m.WorkloadHours != 45 || m.UtilizationPercent != 75 {
        t.Fatalf("unexpected metric %+v", m)
    }
    if m.OpenTickets != 4 || m.Engineers != 2 || len(m.Members) != 2 { t.Fatalf("unexpected metric %+v", m) }
}

func TestComputeCapacityMissingAndZero(t *testing.T) {
    roster := []domain.Team{{Name: "Private Cloud", Engineers: 2}, {Name: "Ghost", Engineers: 0}}
    w := Workload{Teams: []WorkloadBucket{{Name: "Ghost", TotalHours: 10}}}
    got := ComputeCapacity(roster, 20, 6, w)
    if pc := got["Private Cloud"]; pc.WorkloadHours != 0 || pc.UtilizationPercent != 0 || pc.AvailableCapacityHours != 240 {
        t.Fatalf("unexpected %+v", pc)
    }
    if g := got["Ghost"]; g.AvailableCapacityHours != 0 || g.UtilizationPercent != 0 || g.WorkloadHours != 10 {
        t.Fatalf("unexpected %+v", g)
    }
}

func TestTicketFlowAndVelocity(t *testing.T) {
    resolvedAt := daysAgo(2)
    created := []domain.Ticket{
        {Key: "A", Created: testNow},
        {Key: "B", Created: daysAgo(2)},
        {Key: "C", Created: daysAgo(30)},
    }
    resolved := []domain.Ticket{{Key: "B", Resolved: &resolvedAt}}
    flow := TicketFlow(created, resolved, 7, testNow)
    if len(flow) != 7 { t.Fatalf("expected 7 days, got %d", len(flow)) }
    if flow[0].Date != "2026-10-11" || flow[6].Date != "2026-10-17" { t.Fatalf("unexpected range %s..%s", flow[0].Date, flow[6].Date) }
    if flow[6].Created != 1 || flow[4].Created != 1 || flow[4].Resolved != 1 { t.Fatalf("unexpected flow %+v", flow) }

    if v := Velocity(10, 30); v != 2 { t.Fatalf("velocity %d", v) }
    if v := Velocity(3, 7); v != 3 { t.Fatalf("velocity %d", v) }
    if v := Velocity(3, 0); v != 0 { t.Fatalf("velocity %d", v) }
}

func TestEffortTrend(t *testing.T) {
    p := DefaultPolicy()
    r1 := daysAgo(1)
    created := []domain.Ticket{
        {Key: "S-1", Project: "INFRA", Type: "Story", Created: daysAgo(1)},
        {Key: "S-2", Project: "INFRA", Type: "Bug", Created: daysAgo(9), OriginalEstimate: 5 * 3600},
    }
    resolved := []domain.Ticket{
        {Key: "S-3", Project: "DTI", Type: "Service Request", StatusCategory: "Done", Created: daysAgo(20), Resolved: &r1},
    }
    weeks, avg := p.EffortTrend(created, resolved, 14, testNow)
    if len(weeks) != 2 { t.Fatalf("expected 2 weeks, got %d", len(weeks)) }
    older, latest := weeks[0], weeks[1]
    if latest.WeekStart != "2026-10-11" || latest.WeekEnd != "2026-10-17" || latest.Label != "Oct 11 - Oct 17" {
        t.Fatalf("unexpected latest window %+v", latest)
    }
    if latest.EffortAdded != 8 || latest.EffortRemoved != 4 || latest.NetEffortChange != 4 || latest.TicketsResolved != 1 {
        t.Fatalf("unexpected latest week %+v", latest)
    }
    if older.EffortAdded != 5 || older.NetEffortChange != 5 || older.TicketsCreated != 1 {
        t.Fatalf("unexpected older week %+v", older)
    }
    // (4 + 5) / 2 = 4.5 rounds up
    if avg != 5 { t.Fatalf("avg change %d", avg) }
}

func TestComputeCapacityReport(t *testing.T) {
    resolved := testNow.Add(-48 * time.Hour)
    tickets := []domain.Ticket{
        {Key: "INFRA-1", Project: "INFRA", Type: "Task", StatusCategory: "To Do", Assignee: "Mark Fairmaid", Created: daysAgo(3)},
        {Key: "INFRA-2", Project: "INFRA", Type: "Task", StatusCategory: "In Progress", Assignee: "Ann Winston", Created: daysAgo(40), OriginalEstimate: 10 * 3600},
        {Key: "INFRA-3", Project: "INFRA", Type: "Task", StatusCategory: "Done", Created: daysAgo(6), Resolved: &resolved},
        {Key: "DTI-1", Project: "DTI", Type: "Service Request", StatusCategory: "To Do", Assignee: "Garvin Wong", Created: daysAgo(100)},
    }
    r := DefaultPolicy().ComputeCapacityReport(Input{Tickets: tickets, PeriodDays: 7, Now: testNow})

    s := r.Summary
    if s.TotalOpenTickets != 3 || s.TicketsCreated != 2 || s.TicketsResolved != 1 {
        t.Fatalf("unexpected counts %+v", s)
    }
    if s.AvgResolutionTime != 4 || s.Velocity != 1 || s.WorkingDays != 5 || s.HoursPerDay != 6 || s.Period != 7 {
        t.Fatalf("unexpected summary %+v", s)
    }

    ops := r.TeamCapacity["Technology Operations"]
    if ops.WorkloadHours != 18 || ops.AvailableCapacityHours != 120 || ops.UtilizationPercent != 15 {
        t.Fatalf("unexpected ops capacity %+v", ops)
    }
    if dba := r.TeamCapacity["DBA"]; dba.WorkloadHours != 4 || dba.UtilizationPercent != 7 {
        t.Fatalf("unexpected dba capacity %+v", dba)
    }
    if len(r.TeamCapacity) != 4 { t.Fatalf("expected one metric per roster team, got %d", len(r.TeamCapacity)) }
    if len(r.TicketFlow) != 7 || len(r.EffortTrend) != 1 { t.Fatalf("unexpected trend sizes %d %d", len(r.TicketFlow), len(r.EffortTrend)) }
    if len(r.ParentGrouping.BAU) != 1 || r.ParentGrouping.BAU[0].Tickets != 1 {
        t.Fatalf("unexpected bau %+v", r.ParentGrouping.BAU)
    }
}

func TestDayBucketsUseTicketDate(t *testing.T) {
    east := time.FixedZone("+1000", 10*60*60)
    west := time.FixedZone("-0500", -5*60*60)
    lateResolve := time.Date(2026, 10, 16, 22, 0, 0, 0, west) // 03:00 on the 17th in UTC
    tickets := []domain.Ticket{
        {Key: "A", StatusCategory: "To Do", Created: time.Date(2026, 10, 17, 1, 0, 0, 0, east)},
        {Key: "B", StatusCategory: "Done", Created: time.Date(2026, 10, 10, 23, 30, 0, 0, west), Resolved: &lateResolve},
        {Key: "C", StatusCategory: "To Do", Created: time.Date(2026, 10, 9, 23, 30, 0, 0, west)}, // 2026-10-10 in UTC
    }

    _, created, resolved := Partition(tickets, 7, testNow)
    if len(created) != 2 || created[0].Key != "A" || created[1].Key != "B" {
        t.Fatalf("cutoff 2026-10-10 keeps A and B and drops C by their own dates, got %+v", created)
    }

    flow := TicketFlow(created, resolved, 7, testNow)
    byDay := map[string]FlowPoint{}
    for _, p := range flow { byDay[p.Date] = p }
    if byDay["2026-10-17"].Created != 1 || byDay["2026-10-16"].Created != 0 {
        t.Fatalf("A belongs to 2026-10-17, got %+v", flow)
    }
    if byDay["2026-10-16"].Resolved != 1 || byDay["2026-10-17"].Resolved != 0 {
        t.Fatalf("B resolved on 2026-10-16, got %+v", flow)
    }
}
