/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package openai

import (
    "context"
    "encoding/json"
    "errors"
    "strings"

    "github.com/dt-jamiem/delivery-planning-tracker/internal/config"
    openai "github.com/openai/openai-go/v2"
    "github.com/openai/openai-go/v2/option"
    "github.com/openai/openai-go/v2/shared"
    "github.com/rs/zerolog"
)

const capacityPrompt = "You are a delivery manager's assistant. Given a team capacity report " +
    "(utilization per team, workload per assignee alias, ticket flow and effort trend), write a short " +
    "plain-text briefing: overloaded teams, growing backlogs, and two or three concrete suggestions. " +
    "Refer to people only by the aliases given."

type Client struct {
    key   string
    model string
    cli   openai.Client
    log   zerolog.Logger
}

func NewClient(cfg config.Config, log zerolog.Logger) *Client {
    model := cfg.OpenAIModel
    if strings.TrimSpace(model) == "" { model = "gpt-4.1-mini" }
    cli := openai.NewClient(option.WithAPIKey(cfg.OpenAIKey), option.WithRequestTimeout(cfg.OpenAITimeout))
    return &Client{key: cfg.OpenAIKey, model: model, cli: cli, log: log}
}

// Enabled reports whether an API key is configured.
func (c *Client) Enabled() bool { return strings.TrimSpace(c.key) != "" }

// SummarizeCapacity asks the model for a briefing on an already redacted report.
func (c *Client) SummarizeCapacity(ctx context.Context, payload any) (string, error) {
    if !c.Enabled() { return "", errors.New("openai: missing key") }
    b, err := json.Marshal(payload)
    if err != nil { return "", err }
    c.log.Info().Str("model", c.model).Int("bytes", len(b)).Msg("openai SummarizeCapacity call")
    params := openai.ChatCompletionNewParams{
        Model: shared.ChatModel(c.model),
        Messages: []openai.ChatCompletionMessageParamUnion{
            openai.SystemMessage(capacityPrompt),
            openai.UserMessage(string(b)),
        },
    }
    resp, err := c.cli.Chat.Completions.New(ctx, params)
    if err != nil { return "", err }
    if len(resp.Choices) == 0 { return "", errors.New("openai: no choices") }
    return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
