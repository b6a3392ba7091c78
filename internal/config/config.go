/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package config

import (
    "encoding/json"
    "log"
    "os"
    "strconv"
    "strings"
    "time"
)

// Requests (DTI) tickets count only when their Atlassian team is one of the
// roster teams. Other Jira sites override JIRA_BASE_JQL.
const (
    defaultBaseJQL    = `(Project IN (DEVOPS, TechOps, "Technology Group", "Technology Roadmap") OR (Project = DTI AND "Team[Team]" IN (01c3b859-1307-41e3-8a88-24c701dd1713, 9888ca76-8551-47b3-813f-4bf5df9e9762, 9b7aba3a-a76b-46b8-8a3b-658baad7c1a3, a092fa48-f541-4358-90b8-ba6caccceb72)))`
    defaultRoadmapJQL = `Project = TR ORDER BY created DESC`
)

type Config struct {
    AppEnv   string
    LogLevel string
    TZ       string
    HTTPAddr string

    DBDSN string

    PublicBaseURL string

    JiraBaseURL          string
    JiraEmail            string
    JiraAPIToken         string
    JiraPAT              string
    JiraBaseJQL          string
    JiraRoadmapJQL       string
    JiraTeamField        string
    JiraRequestTypeField string
    JiraFieldsFile       string
    JiraFieldMap         map[string]string // name -> id
    JiraPageSize         int
    JiraMaxResults       int
    JiraRoadmapMax       int

    OpenAIKey     string
    OpenAIModel   string
    OpenAITimeout time.Duration

    TelegramToken         string
    TelegramWebhookSecret string
    TelegramChatIDs       []int64

    DigestCron        string
    DigestDays        int
    DefaultPeriodDays int
    MaxConcurrency    int
    HTTPTimeout       time.Duration

    RosterFile string
}

func getenv(key, def string) string {
    v := os.Getenv(key)
    if v == "" { return def }
    return v
}

func atoi(key string, def int) int {
    v := os.Getenv(key)
    if v == "" { return def }
    i, err := strconv.Atoi(v)
    if err != nil { return def }
    return i
}

func dur(key string, def time.Duration) time.Duration {
    v := os.Getenv(key)
    if v == "" { return def }
    d, err := time.ParseDuration(v)
    if err != nil { return def }
    return d
}

func parseInt64s(csv string) []int64 {
    if csv == "" { return nil }
    parts := strings.Split(csv, ",")
    out := make([]int64, 0, len(parts))
    for _, p := range parts {
        p = strings.TrimSpace(p)
        if p == "" { continue }
        n, err := strconv.ParseInt(p, 10, 64)
        if err == nil { out = append(out, n) }
    }
    return out
}

func Load() Config {
    cfg := Config{
        AppEnv:   getenv("APP_ENV", "dev"),
        LogLevel: getenv("LOG_LEVEL", "info"),
        TZ:       getenv("APP_TZ", "Europe/London"),
        HTTPAddr: getenv("HTTP_ADDR", ":5000"),

        DBDSN: getenv("DB_DSN", ""),

        PublicBaseURL: getenv("PUBLIC_BASE_URL", "http://localhost:5000"),

        JiraBaseURL:          getenv("JIRA_BASE_URL", getenv("JIRA_URL", "")),
        JiraEmail:            getenv("JIRA_EMAIL", ""),
        JiraAPIToken:         getenv("JIRA_API_TOKEN", ""),
        JiraPAT:              getenv("JIRA_PAT", ""),
        JiraBaseJQL:          getenv("JIRA_BASE_JQL", defaultBaseJQL),
        JiraRoadmapJQL:       getenv("JIRA_ROADMAP_JQL", defaultRoadmapJQL),
        JiraTeamField:        getenv("JIRA_TEAM_FIELD", "customfield_10001"),
        JiraRequestTypeField: getenv("JIRA_REQUEST_TYPE_FIELD", "customfield_10010"),
        JiraFieldsFile:       getenv("JIRA_FIELDS_FILE", "config/jira_fields.json"),
        JiraPageSize:         atoi("JIRA_PAGE_SIZE", 50),
        JiraMaxResults:       atoi("JIRA_MAX_RESULTS", 5000),
        JiraRoadmapMax:       atoi("JIRA_ROADMAP_MAX", 200),

        OpenAIKey:     getenv("OPENAI_API_KEY", ""),
        OpenAIModel:   getenv("OPENAI_MODEL", "gpt-4.1-mini"),
        OpenAITimeout: dur("OPENAI_TIMEOUT", 30*time.Second),

        TelegramToken:         getenv("TELEGRAM_BOT_TOKEN", ""),
        TelegramWebhookSecret: getenv("TELEGRAM_WEBHOOK_SECRET", ""),
        TelegramChatIDs:       parseInt64s(getenv("TELEGRAM_CHAT_IDS", "")),

        DigestCron:        getenv("DIGEST_CRON", "0 9 * * MON"),
        DigestDays:        atoi("DIGEST_DAYS", 7),
        DefaultPeriodDays: atoi("DEFAULT_PERIOD_DAYS", 30),
        MaxConcurrency:    atoi("MAX_CONCURRENCY", 3),
        HTTPTimeout:       dur("HTTP_TIMEOUT", 30*time.Second),

        RosterFile: getenv("ROSTER_FILE", "config/roster.yaml"),
    }

    if loc, err := time.LoadLocation(cfg.TZ); err == nil {
        time.Local = loc
    } else {
        log.Printf("warning: cannot load TZ %s: %v", cfg.TZ, err)
    }

    // Optional name->id map exported from /rest/api/3/field; lets the team
    // and request type fields follow the instance's own custom field ids.
    if m := loadFieldMap(cfg.JiraFieldsFile); len(m) > 0 {
        cfg.JiraFieldMap = m
        if id, ok := m["Team"]; ok && os.Getenv("JIRA_TEAM_FIELD") == "" { cfg.JiraTeamField = id }
        if id, ok := m["Request Type"]; ok && os.Getenv("JIRA_REQUEST_TYPE_FIELD") == "" { cfg.JiraRequestTypeField = id }
    }
    return cfg
}

func loadFieldMap(path string) map[string]string {
    data, err := os.ReadFile(path)
    if err != nil { return nil }
    type fieldDef struct { ID string `json:"id"`; Name string `json:"name"` }
    var arr []fieldDef
    if err := json.Unmarshal(data, &arr); err != nil { return nil }
    m := map[string]string{}
    for _, f := range arr {
        n := strings.TrimSpace(f.Name)
        if n != "" && f.ID != "" { m[n] = f.ID }
    }
    return m
}
