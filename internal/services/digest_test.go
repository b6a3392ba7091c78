package services

import (
    "strings"
    "testing"

    "github.com/dt-jamiem/delivery-planning-tracker/internal/capacity"
)

func TestChunkTextKeepsLinesTogether(t *testing.T) {
    got := chunkText("aaaa\nbbbb\ncc", 9)
    if len(got) != 2 || got[0] != "aaaa\nbbbb" || got[1] != "cc" { t.Fatalf("unexpected chunks %q", got) }

    got = chunkText("abcdefghij", 4)
    if len(got) != 3 || got[2] != "ij" { t.Fatalf("long line not hard split: %q", got) }

    got = chunkText("ééé\nü", 3)
    if len(got) != 2 || got[0] != "ééé" { t.Fatalf("chunking must count runes: %q", got) }

    if got := chunkText("", 10); len(got) != 1 || got[0] != "" { t.Fatalf("unexpected %q", got) }
}

func TestEscapeMarkdownV2(t *testing.T) {
    if got := escapeMarkdownV2("a_b (75%) - 1.5!"); got != `a\_b \(75%\) \- 1\.5\!` { t.Fatalf("unexpected %q", got) }
}

func TestRenderDigestOrdersByUtilization(t *testing.T) {
    r := capacity.Report{
        Summary: capacity.Summary{Period: 7, WorkingDays: 5, HoursPerDay: 6, AvgWeeklyEffortChange: -3},
        TeamCapacity: map[string]capacity.CapacityMetric{
            "DBA":    {UtilizationPercent: 120, WorkloadHours: 72, AvailableCapacityHours: 60},
            "DevOps": {UtilizationPercent: 40},
        },
    }
    out := renderDigest(r)
    dba, devops := strings.Index(out, "DBA"), strings.Index(out, "DevOps")
    if dba < 0 || devops < 0 || dba > devops { t.Fatalf("teams not ordered by utilization:\n%s", out) }
    if !strings.Contains(out, "over capacity") || !strings.Contains(out, `\-3h`) { t.Fatalf("unexpected digest:\n%s", out) }
}
