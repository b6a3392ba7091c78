/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package jira

import (
    "bytes"
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "io"
    "net/http"
    "strings"
    "time"

    "github.com/dt-jamiem/delivery-planning-tracker/internal/config"
    "github.com/dt-jamiem/delivery-planning-tracker/internal/domain"
    "github.com/rs/zerolog"
    "github.com/samber/lo"
)

const (
    searchPath   = "/rest/api/3/search/jql"
    keyBatchSize = 100
    maxAttempts  = 3
)

// StatusError is returned for non-2xx responses after retries are exhausted.
type StatusError struct {
    Status int
    Body   string
}

func (e *StatusError) Error() string {
    return fmt.Sprintf("jira api status=%d body=%s", e.Status, e.Body)
}

type Client struct {
    baseURL  string
    token    string
    user     string
    pass     string
    http     *http.Client
    log      zerolog.Logger
    pageSize int
    decoder  Decoder
    backoff  func(attempt int) time.Duration
}

func NewClient(cfg config.Config, log zerolog.Logger) *Client {
    pageSize := cfg.JiraPageSize
    if pageSize <= 0 { pageSize = 50 }
    return &Client{
        baseURL:  cfg.JiraBaseURL,
        token:    cfg.JiraPAT,
        user:     cfg.JiraEmail,
        pass:     cfg.JiraAPIToken,
        http:     &http.Client{Timeout: cfg.HTTPTimeout},
        log:      log.With().Str("component", "jira").Logger(),
        pageSize: pageSize,
        decoder:  Decoder{TeamField: cfg.JiraTeamField, RequestTypeField: cfg.JiraRequestTypeField},
        backoff:  func(attempt int) time.Duration { return time.Duration(300*(1<<attempt)) * time.Millisecond },
    }
}

// Fields is the field list requested on every search.
func (c *Client) Fields() []string {
    f := []string{
        "summary", "status", "assignee", "created", "updated", "issuetype", "priority",
        "resolutiondate", "timeoriginalestimate", "project", "parent", "issuelinks",
    }
    if c.decoder.TeamField != "" { f = append(f, c.decoder.TeamField) }
    if c.decoder.RequestTypeField != "" { f = append(f, c.decoder.RequestTypeField) }
    return f
}

func (c *Client) apiURL(path string) string {
    return strings.TrimRight(c.baseURL, "/") + path
}

func (c *Client) doJSON(ctx context.Context, method, u string, body any, out any) error {
    if c.baseURL == "" { return errors.New("jira: empty baseURL") }
    var payload []byte
    if body != nil {
        b, err := json.Marshal(body)
        if err != nil { return err }
        payload = b
    }
    var lastErr error
    for attempt := 0; attempt < maxAttempts; attempt++ {
        if attempt > 0 {
            select {
            case <-ctx.Done():
                return ctx.Err()
            case <-time.After(c.backoff(attempt - 1)):
            }
        }
        var r io.Reader
        if payload != nil { r = bytes.NewReader(payload) }
        req, err := http.NewRequestWithContext(ctx, method, u, r)
        if err != nil { return err }
        req.Header.Set("Accept", "application/json")
        if payload != nil { req.Header.Set("Content-Type", "application/json") }
        if c.token != "" {
            req.Header.Set("Authorization", "Bearer "+c.token)
        } else if c.user != "" && c.pass != "" {
            req.SetBasicAuth(c.user, c.pass)
        }
        resp, err := c.http.Do(req)
        if err != nil {
            if ctx.Err() != nil { return ctx.Err() }
            lastErr = err
            continue
        }
        retry, err := decodeResponse(resp, out)
        if err == nil { return nil }
        if !retry { return err }
        lastErr = err
        c.log.Warn().Err(err).Int("attempt", attempt+1).Msg("jira request failed, retrying")
    }
    return lastErr
}

func decodeResponse(resp *http.Response, out any) (bool, error) {
    defer resp.Body.Close()
    if resp.StatusCode >= 300 {
        b, _ := io.ReadAll(resp.Body)
        serr := &StatusError{Status: resp.StatusCode, Body: strings.TrimSpace(string(b))}
        return resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500, serr
    }
    if out == nil { return false, nil }
    if err := json.NewDecoder(resp.Body).Decode(out); err != nil { return false, fmt.Errorf("jira: decode response: %w", err) }
    return false, nil
}

type searchRequest struct {
    JQL           string   `json:"jql"`
    MaxResults    int      `json:"maxResults"`
    Fields        []string `json:"fields"`
    NextPageToken string   `json:"nextPageToken,omitempty"`
}

// Page is one page of the token-paginated search endpoint.
type Page struct {
    Issues        []Issue `json:"issues"`
    NextPageToken string  `json:"nextPageToken"`
    IsLast        bool    `json:"isLast"`
}

func (c *Client) SearchPage(ctx context.Context, jql string, fields []string, max int, token string) (Page, error) {
    var p Page
    if jql == "" { return p, errors.New("jira: empty jql") }
    body := searchRequest{JQL: jql, MaxResults: max, Fields: fields, NextPageToken: token}
    err := c.doJSON(ctx, http.MethodPost, c.apiURL(searchPath), body, &p)
    return p, err
}

// SearchAll follows nextPageToken until the last page or until limit issues
// have been read. A limit <= 0 means no cap.
func (c *Client) SearchAll(ctx context.Context, jql string, limit int) ([]domain.Ticket, error) {
    fields := c.Fields()
    var out []domain.Ticket
    token := ""
    for {
        size := c.pageSize
        if limit > 0 && limit-len(out) < size { size = limit - len(out) }
        page, err := c.SearchPage(ctx, jql, fields, size, token)
        if err != nil { return out, err }
        for _, is := range page.Issues {
            t, err := c.decoder.Decode(is)
            if err != nil {
                c.log.Warn().Err(err).Str("key", is.Key).Msg("skip undecodable issue")
                continue
            }
            out = append(out, t)
        }
        c.log.Debug().Int("fetched", len(out)).Str("jql", jql).Msg("jira page")
        if page.IsLast || page.NextPageToken == "" || len(page.Issues) == 0 { break }
        if limit > 0 && len(out) >= limit { break }
        token = page.NextPageToken
    }
    if limit > 0 && len(out) > limit { out = out[:limit] }
    return out, nil
}

// IssuesByKeys looks keys up in batches of 100. A failed batch does not stop
// the others; their errors are joined into the returned error.
func (c *Client) IssuesByKeys(ctx context.Context, keys []string) ([]domain.Ticket, error) {
    keys = lo.Uniq(lo.Compact(keys))
    var out []domain.Ticket
    var errs []error
    for _, batch := range lo.Chunk(keys, keyBatchSize) {
        jql := "key IN (" + strings.Join(batch, ",") + ")"
        got, err := c.SearchAll(ctx, jql, len(batch))
        if err != nil {
            errs = append(errs, fmt.Errorf("jira: keys %s..%s: %w", batch[0], batch[len(batch)-1], err))
            continue
        }
        out = append(out, got...)
    }
    return out, errors.Join(errs...)
}
