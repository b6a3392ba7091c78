/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package jira

import (
    "bytes"
    "encoding/json"
    "fmt"
    "strings"
    "time"

    "github.com/dt-jamiem/delivery-planning-tracker/internal/domain"
)

type Issue struct {
    Key    string          `json:"key"`
    Fields json.RawMessage `json:"fields"`
}

type named struct {
    Name string `json:"name"`
}

type linkedIssue struct {
    Key    string `json:"key"`
    Fields struct {
        Summary   string `json:"summary"`
        IssueType named  `json:"issuetype"`
    } `json:"fields"`
}

type stdFields struct {
    Summary string `json:"summary"`
    Status  struct {
        Category named `json:"statusCategory"`
    } `json:"status"`
    Assignee *struct {
        DisplayName string `json:"displayName"`
    } `json:"assignee"`
    Created              string  `json:"created"`
    ResolutionDate       *string `json:"resolutiondate"`
    TimeOriginalEstimate *int64  `json:"timeoriginalestimate"`
    Priority             *named  `json:"priority"`
    IssueType            named   `json:"issuetype"`
    Project              struct {
        Key string `json:"key"`
    } `json:"project"`
    Parent *struct {
        Key    string `json:"key"`
        Fields struct {
            Summary string `json:"summary"`
        } `json:"fields"`
    } `json:"parent"`
    IssueLinks []struct {
        Inward  *linkedIssue `json:"inwardIssue"`
        Outward *linkedIssue `json:"outwardIssue"`
    } `json:"issuelinks"`
}

// Decoder maps raw search results onto domain tickets. The custom field ids
// differ between Jira instances.
type Decoder struct {
    TeamField        string
    RequestTypeField string
}

func (d Decoder) Decode(is Issue) (domain.Ticket, error) {
    t := domain.Ticket{Key: is.Key}
    if len(is.Fields) == 0 { return t, fmt.Errorf("issue %s: no fields", is.Key) }
    var f stdFields
    if err := json.Unmarshal(is.Fields, &f); err != nil { return t, fmt.Errorf("issue %s: %w", is.Key, err) }
    var custom map[string]json.RawMessage
    if err := json.Unmarshal(is.Fields, &custom); err != nil { return t, fmt.Errorf("issue %s: %w", is.Key, err) }

    t.Summary = f.Summary
    t.Project = f.Project.Key
    if t.Project == "" { t.Project = projectOf(is.Key) }
    t.Type = f.IssueType.Name
    t.StatusCategory = f.Status.Category.Name
    if f.Assignee != nil { t.Assignee = f.Assignee.DisplayName }
    if f.Priority != nil { t.Priority = f.Priority.Name }
    if ts, ok := parseTime(f.Created); ok { t.Created = ts }
    if f.ResolutionDate != nil {
        if ts, ok := parseTime(*f.ResolutionDate); ok { t.Resolved = &ts }
    }
    if f.TimeOriginalEstimate != nil && *f.TimeOriginalEstimate > 0 { t.OriginalEstimate = *f.TimeOriginalEstimate }
    if f.Parent != nil && f.Parent.Key != "" {
        t.Parent = &domain.ParentRef{Key: f.Parent.Key, Summary: f.Parent.Fields.Summary}
    }
    for _, l := range f.IssueLinks {
        li := l.Outward
        if li == nil { li = l.Inward }
        if li == nil || li.Key == "" { continue }
        t.Links = append(t.Links, domain.IssueLink{
            Key:     li.Key,
            Summary: li.Fields.Summary,
            Type:    li.Fields.IssueType.Name,
            Project: projectOf(li.Key),
        })
    }
    if d.TeamField != "" { t.Team = decodeTeam(custom[d.TeamField]) }
    if d.RequestTypeField != "" { t.RequestType = decodeRequestType(custom[d.RequestTypeField]) }
    return t, nil
}

// decodeTeam accepts both shapes of the team field: {"name": ...} or "...".
func decodeTeam(raw json.RawMessage) domain.TeamField {
    raw = bytes.TrimSpace(raw)
    if len(raw) == 0 || bytes.Equal(raw, []byte("null")) { return domain.TeamField{} }
    switch raw[0] {
    case '{':
        var n named
        if err := json.Unmarshal(raw, &n); err == nil { return domain.StructuredTeam(n.Name) }
    case '"':
        var s string
        if err := json.Unmarshal(raw, &s); err == nil { return domain.RawTeam(s) }
    }
    return domain.TeamField{}
}

func decodeRequestType(raw json.RawMessage) string {
    if len(raw) == 0 { return "" }
    var v struct {
        RequestType *named `json:"requestType"`
    }
    if err := json.Unmarshal(raw, &v); err != nil || v.RequestType == nil { return "" }
    return v.RequestType.Name
}

func projectOf(key string) string {
    if i := strings.LastIndex(key, "-"); i > 0 { return key[:i] }
    return ""
}

// parseTime keeps the offset Jira sent; day bucketing uses its date part.
func parseTime(s string) (time.Time, bool) {
    if s == "" { return time.Time{}, false }
    layouts := []string{
        "2006-01-02T15:04:05.000-0700",
        "2006-01-02T15:04:05-0700",
        time.RFC3339Nano,
        time.RFC3339,
        "2006-01-02",
    }
    for _, l := range layouts {
        if ts, err := time.Parse(l, s); err == nil { return ts, true }
    }
    return time.Time{}, false
}
