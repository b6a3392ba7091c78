package capacity

import (
    "testing"

    "github.com/dt-jamiem/delivery-planning-tracker/internal/domain"
)

func trLink(key, typ, summary string) domain.IssueLink {
    return domain.IssueLink{Key: key, Type: typ, Summary: summary, Project: "TR"}
}

func TestFindInitiativeFirstQualifyingLinkWins(t *testing.T) {
    p := DefaultPolicy()
    tk := domain.Ticket{Key: "INFRA-1", Links: []domain.IssueLink{
        {Key: "INFRA-9", Type: "Initiative", Project: "INFRA"},
        trLink("TR-2", "Idea", "not initiative-bearing"),
        trLink("TR-3", "Improve", "Patch cadence"),
        trLink("TR-4", "Initiative", "Later"),
    }}
    ini, ok := p.FindInitiative(tk)
    if !ok { t.Fatal("expected initiative") }
    if ini.Key != "TR-3" || ini.Summary != "Patch cadence" {
        t.Fatalf("unexpected initiative %+v", ini)
    }
    if ini.Label() != "TR-3: Patch cadence" { t.Fatalf("label %q", ini.Label()) }
}

func TestFindInitiativeNoLinks(t *testing.T) {
    if _, ok := DefaultPolicy().FindInitiative(domain.Ticket{Key: "X-1"}); ok {
        t.Fatal("expected none")
    }
}

func TestBuildInitiativeIndex(t *testing.T) {
    p := DefaultPolicy()
    epics := []domain.Ticket{
        {Key: "INFRA-10", Type: "Epic", Links: []domain.IssueLink{trLink("TR-1", "Initiative", "Cloud exit")}},
        {Key: "INFRA-20", Type: "Epic"},
    }
    tickets := []domain.Ticket{
        // epic already resolved directly; child link must not override it
        {Key: "INFRA-11", Parent: &domain.ParentRef{Key: "INFRA-10"}, Links: []domain.IssueLink{trLink("TR-9", "Deliver", "Other")}},
        {Key: "INFRA-21", Parent: &domain.ParentRef{Key: "INFRA-20"}},
        {Key: "INFRA-22", Parent: &domain.ParentRef{Key: "INFRA-20"}, Links: []domain.IssueLink{trLink("TR-5", "Deliver", "Observability")}},
        {Key: "INFRA-23", Parent: &domain.ParentRef{Key: "INFRA-20"}, Links: []domain.IssueLink{trLink("TR-6", "Deliver", "Too late")}},
        {Key: "INFRA-30", Links: []domain.IssueLink{trLink("TR-7", "Initiative", "Orphan")}},
    }
    idx := p.BuildInitiativeIndex(epics, tickets)
    if got, _ := idx.Lookup("INFRA-10"); got.Key != "TR-1" {
        t.Fatalf("INFRA-10 resolved to %+v", got)
    }
    if got, _ := idx.Lookup("INFRA-20"); got.Key != "TR-5" {
        t.Fatalf("INFRA-20 resolved to %+v", got)
    }
    if len(idx) != 2 { t.Fatalf("unexpected index size %d: %v", len(idx), idx) }
    if _, ok := idx.Lookup(""); ok { t.Fatal("empty key must not resolve") }
}
