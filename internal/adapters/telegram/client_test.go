package telegram

import (
    "context"
    "encoding/json"
    "io"
    "net/http"
    "strings"
    "testing"

    "github.com/dt-jamiem/delivery-planning-tracker/internal/config"
    "github.com/rs/zerolog"
)

type roundTripFunc func(*http.Request) *http.Response

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
    return f(req), nil
}

func jsonResponse(status int, body string) *http.Response {
    return &http.Response{StatusCode: status, Body: io.NopCloser(strings.NewReader(body)), Header: make(http.Header)}
}

func TestSendMarkdownV2(t *testing.T) {
    c := NewClient(config.Config{TelegramToken: "tok"}, zerolog.Nop())
    c.http.Transport = roundTripFunc(func(req *http.Request) *http.Response {
        if req.URL.Path != "/bottok/sendMessage" { t.Fatalf("unexpected path %s", req.URL.Path) }
        var body map[string]any
        if err := json.NewDecoder(req.Body).Decode(&body); err != nil { t.Fatal(err) }
        if body["parse_mode"] != "MarkdownV2" || body["chat_id"] != float64(42) || body["text"] != "hi" {
            t.Fatalf("unexpected body %v", body)
        }
        return jsonResponse(http.StatusOK, `{"ok":true}`)
    })
    if err := c.SendMarkdownV2(context.Background(), 42, "hi"); err != nil { t.Fatalf("send failed: %v", err) }
}

func TestSendErrors(t *testing.T) {
    c := NewClient(config.Config{TelegramToken: "tok"}, zerolog.Nop())
    c.http.Transport = roundTripFunc(func(req *http.Request) *http.Response {
        return jsonResponse(http.StatusBadRequest, `{"ok":false,"description":"can't parse entities"}`)
    })
    if err := c.SendPlain(context.Background(), 42, "x"); err == nil || !strings.Contains(err.Error(), "parse entities") {
        t.Fatalf("expected api error, got %v", err)
    }
    if err := c.SendPlain(context.Background(), 0, "x"); err == nil { t.Fatal("expected missing chat error") }
    if NewClient(config.Config{}, zerolog.Nop()).Enabled() { t.Fatal("client without token must be disabled") }
}
