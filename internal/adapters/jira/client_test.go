package jira

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "io"
    "net/http"
    "strings"
    "testing"
    "time"

    "github.com/dt-jamiem/delivery-planning-tracker/internal/config"
    "github.com/rs/zerolog"
)

type roundTripFunc func(*http.Request) *http.Response

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
    return f(req), nil
}

func jsonResponse(status int, body string) *http.Response {
    return &http.Response{
        StatusCode: status,
        Body:       io.NopCloser(strings.NewReader(body)),
        Header:     make(http.Header),
    }
}

func newTestClient(rt roundTripFunc) *Client {
    c := NewClient(config.Config{
        JiraBaseURL:          "https://jira.example.com/",
        JiraEmail:            "bot@example.com",
        JiraAPIToken:         "secret",
        JiraPageSize:         2,
        JiraTeamField:        "customfield_10001",
        JiraRequestTypeField: "customfield_10010",
    }, zerolog.Nop())
    c.http.Transport = rt
    c.backoff = func(int) time.Duration { return 0 }
    return c
}

func readSearch(t *testing.T, req *http.Request) searchRequest {
    t.Helper()
    var body searchRequest
    if err := json.NewDecoder(req.Body).Decode(&body); err != nil { t.Fatalf("decode body: %v", err) }
    return body
}

func TestSearchAllFollowsPageTokens(t *testing.T) {
    calls := 0
    c := newTestClient(func(req *http.Request) *http.Response {
        calls++
        if req.Method != http.MethodPost || req.URL.Path != searchPath {
            t.Fatalf("unexpected request: %s %s", req.Method, req.URL.Path)
        }
        if user, _, ok := req.BasicAuth(); !ok || user != "bot@example.com" { t.Fatalf("missing basic auth") }
        body := readSearch(t, req)
        switch body.NextPageToken {
        case "":
            return jsonResponse(http.StatusOK, `{"issues":[{"key":"INFRA-1","fields":{}},{"key":"INFRA-2","fields":{}}],"nextPageToken":"p2","isLast":false}`)
        case "p2":
            return jsonResponse(http.StatusOK, `{"issues":[{"key":"INFRA-3","fields":{}}],"isLast":true}`)
        }
        t.Fatalf("unexpected token %q", body.NextPageToken)
        return nil
    })
    got, err := c.SearchAll(context.Background(), "project = INFRA", 0)
    if err != nil { t.Fatalf("SearchAll failed: %v", err) }
    if len(got) != 3 || calls != 2 { t.Fatalf("expected 3 issues in 2 calls, got %d in %d", len(got), calls) }
    if got[2].Key != "INFRA-3" || got[2].Project != "INFRA" { t.Fatalf("unexpected ticket %+v", got[2]) }
}

func TestSearchAllStopsAtLimit(t *testing.T) {
    calls := 0
    c := newTestClient(func(req *http.Request) *http.Response {
        calls++
        body := readSearch(t, req)
        if body.MaxResults > 2 { t.Fatalf("page size %d", body.MaxResults) }
        return jsonResponse(http.StatusOK, `{"issues":[{"key":"A-1","fields":{}},{"key":"A-2","fields":{}}],"nextPageToken":"more","isLast":false}`)
    })
    got, err := c.SearchAll(context.Background(), "project = A", 3)
    if err != nil { t.Fatalf("SearchAll failed: %v", err) }
    if len(got) != 3 || calls != 2 { t.Fatalf("expected 3 issues in 2 calls, got %d in %d", len(got), calls) }
}

func TestDoJSONRetriesServerErrors(t *testing.T) {
    calls := 0
    c := newTestClient(func(req *http.Request) *http.Response {
        calls++
        if calls < 3 { return jsonResponse(http.StatusTooManyRequests, "slow down") }
        return jsonResponse(http.StatusOK, `{"issues":[],"isLast":true}`)
    })
    if _, err := c.SearchAll(context.Background(), "x", 0); err != nil { t.Fatalf("expected success after retry: %v", err) }
    if calls != 3 { t.Fatalf("expected 3 attempts, got %d", calls) }
}

func TestDoJSONDoesNotRetryClientErrors(t *testing.T) {
    calls := 0
    c := newTestClient(func(req *http.Request) *http.Response {
        calls++
        return jsonResponse(http.StatusBadRequest, "bad jql")
    })
    _, err := c.SearchAll(context.Background(), "x", 0)
    var serr *StatusError
    if !errors.As(err, &serr) || serr.Status != http.StatusBadRequest { t.Fatalf("expected status error, got %v", err) }
    if calls != 1 { t.Fatalf("expected a single attempt, got %d", calls) }
}

func TestIssuesByKeysBatchesAndJoinsErrors(t *testing.T) {
    keys := make([]string, 0, 205)
    for i := 1; i <= 205; i++ { keys = append(keys, fmt.Sprintf("EP-%d", i)) }
    batch := 0
    c := newTestClient(func(req *http.Request) *http.Response {
        body := readSearch(t, req)
        if !strings.HasPrefix(body.JQL, "key IN (") { t.Fatalf("unexpected jql %s", body.JQL) }
        batch++
        if batch == 2 { return jsonResponse(http.StatusBadRequest, "nope") }
        return jsonResponse(http.StatusOK, `{"issues":[{"key":"EP-1","fields":{"issuetype":{"name":"Epic"}}}],"isLast":true}`)
    })
    got, err := c.IssuesByKeys(context.Background(), keys)
    if batch != 3 { t.Fatalf("expected 3 batches, got %d", batch) }
    if err == nil { t.Fatal("expected joined error for failed batch") }
    if len(got) != 2 { t.Fatalf("expected results from surviving batches, got %d", len(got)) }
}

func TestDecodeMapsFields(t *testing.T) {
    raw := `{
        "summary": "Rotate certs",
        "status": {"statusCategory": {"name": "In Progress"}},
        "assignee": {"displayName": "Ann Winston"},
        "created": "2026-10-01T09:30:00.000+0100",
        "resolutiondate": null,
        "timeoriginalestimate": 7200,
        "priority": {"name": "High"},
        "issuetype": {"name": "Task"},
        "project": {"key": "INFRA"},
        "parent": {"key": "INFRA-50", "fields": {"summary": "Certs epic"}},
        "issuelinks": [
            {"outwardIssue": {"key": "TR-4", "fields": {"summary": "Zero trust", "issuetype": {"name": "Initiative"}}}},
            {"inwardIssue": {"key": "DTI-9", "fields": {"summary": "Ask", "issuetype": {"name": "Service Request"}}}}
        ],
        "customfield_10001": {"name": "Private Cloud"},
        "customfield_10010": {"requestType": {"name": "Branch Request"}}
    }`
    d := Decoder{TeamField: "customfield_10001", RequestTypeField: "customfield_10010"}
    tk, err := d.Decode(Issue{Key: "INFRA-7", Fields: json.RawMessage(raw)})
    if err != nil { t.Fatalf("decode: %v", err) }
    if tk.StatusCategory != "In Progress" || tk.Assignee != "Ann Winston" || tk.Priority != "High" || tk.OriginalEstimate != 7200 {
        t.Fatalf("unexpected ticket %+v", tk)
    }
    if !tk.Created.Equal(time.Date(2026, 10, 1, 8, 30, 0, 0, time.UTC)) || tk.Resolved != nil { t.Fatalf("unexpected dates %v %v", tk.Created, tk.Resolved) }
    if tk.ParentKey() != "INFRA-50" || tk.Parent.Summary != "Certs epic" { t.Fatalf("unexpected parent %+v", tk.Parent) }
    if len(tk.Links) != 2 || tk.Links[0].Project != "TR" || tk.Links[0].Type != "Initiative" || tk.Links[1].Project != "DTI" {
        t.Fatalf("unexpected links %+v", tk.Links)
    }
    if name, ok := tk.Team.Resolve(); !ok || name != "Private Cloud" { t.Fatalf("unexpected team %+v", tk.Team) }
    if tk.RequestType != "Branch Request" { t.Fatalf("unexpected request type %q", tk.RequestType) }
}

func TestDecodeTeamShapes(t *testing.T) {
    cases := map[string]struct {
        raw  string
        name string
        ok   bool
    }{
        "object": {`{"name":"DBA"}`, "DBA", true},
        "string": {`"DevOps"`, "DevOps", true},
        "null":   {`null`, "", false},
        "empty":  {`""`, "", false},
        "array":  {`[1]`, "", false},
    }
    for name, tc := range cases {
        t.Run(name, func(t *testing.T) {
            got, ok := decodeTeam(json.RawMessage(tc.raw)).Resolve()
            if got != tc.name || ok != tc.ok { t.Fatalf("got %q %v", got, ok) }
        })
    }
}

func TestDecodeKeepsJiraOffset(t *testing.T) {
    d := Decoder{}
    tk, err := d.Decode(Issue{Key: "INFRA-8", Fields: json.RawMessage(`{"created": "2026-10-17T01:00:00.000+1000"}`)})
    if err != nil { t.Fatalf("decode: %v", err) }
    if got := tk.Created.Format("2006-01-02"); got != "2026-10-17" { t.Fatalf("expected Jira's own date, got %s", got) }
    if !tk.Created.Equal(time.Date(2026, 10, 16, 15, 0, 0, 0, time.UTC)) { t.Fatalf("unexpected instant %v", tk.Created) }
}
