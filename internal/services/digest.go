/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package services

import (
    "context"
    "errors"
    "fmt"
    "sort"
    "strconv"
    "strings"

    "github.com/dt-jamiem/delivery-planning-tracker/internal/capacity"
)

const (
    telegramChunk  = 3800
    digestTopTeams = 5
    maxCommandDays = 365
)

var mdV2Replacer = strings.NewReplacer(
    "_", "\\_", "*", "\\*", "[", "\\[", "]", "\\]", "(", "\\(", ")", "\\)", "~", "\\~", "`", "\\`",
    ">", "\\>", "#", "\\#", "+", "\\+", "-", "\\-", "=", "\\=", "|", "\\|", "{", "\\{", "}", "\\}",
    ".", "\\.", "!", "\\!",
)

func escapeMarkdownV2(s string) string { return mdV2Replacer.Replace(s) }

// RunScheduledDigest builds the digest-period report and posts it to every
// configured chat.
func (s *Service) RunScheduledDigest(ctx context.Context) error {
    days := s.cfg.DigestDays
    if days <= 0 { days = 7 }
    report, err := s.buildReport(ctx, days, "digest")
    if err != nil { return err }
    if s.tg == nil || len(s.cfg.TelegramChatIDs) == 0 {
        s.log.Warn().Msg("digest built but no telegram chats configured")
        return nil
    }
    text := renderDigest(report)
    var errs []error
    for _, chat := range s.cfg.TelegramChatIDs {
        if err := s.send(ctx, chat, text); err != nil {
            s.log.Error().Err(err).Int64("chat", chat).Msg("telegram send failed")
            errs = append(errs, err)
        }
    }
    return errors.Join(errs...)
}

func (s *Service) send(ctx context.Context, chatID int64, text string) error {
    for _, part := range chunkText(text, telegramChunk) {
        if err := s.tg.SendMarkdownV2(ctx, chatID, part); err != nil { return err }
    }
    return nil
}

// HandleCommand answers a bot command from chatID. Unknown text is ignored.
func (s *Service) HandleCommand(ctx context.Context, chatID int64, text string) error {
    if chatID == 0 || s.tg == nil { return nil }
    fields := strings.Fields(strings.TrimSpace(text))
    if len(fields) == 0 { return nil }
    cmd := fields[0]
    if i := strings.Index(cmd, "@"); i > 0 { cmd = cmd[:i] }
    switch cmd {
    case "/start", "/help":
        return s.tg.SendMarkdownV2(ctx, chatID, helpText())
    case "/capacity":
        days := s.cfg.DigestDays
        if len(fields) > 1 {
            d, ok := parseDays(fields[1])
            if !ok { return s.tg.SendPlain(ctx, chatID, "Usage: /capacity 7d or /capacity 30d") }
            days = d
        }
        report, err := s.buildReport(ctx, s.periodDays(days), "telegram")
        if err != nil { return s.tg.SendPlain(ctx, chatID, "Could not build the capacity report, try again later.") }
        return s.send(ctx, chatID, renderDigest(report))
    }
    return nil
}

// parseDays accepts "7d" or "7".
func parseDays(arg string) (int, bool) {
    n, err := strconv.Atoi(strings.TrimSuffix(strings.ToLower(arg), "d"))
    if err != nil || n <= 0 || n > maxCommandDays { return 0, false }
    return n, true
}

func helpText() string {
    return escapeMarkdownV2("Capacity Planning Bot") + "\n" +
        escapeMarkdownV2("Team utilization and workload from Jira.") + "\n\n" +
        escapeMarkdownV2("Commands:") + "\n" +
        escapeMarkdownV2("/capacity 7d - report for the last 7 days") + "\n" +
        escapeMarkdownV2("/capacity 30d - report for the last 30 days") + "\n" +
        escapeMarkdownV2("/help - this message")
}

type teamLine struct {
    name string
    m    capacity.CapacityMetric
}

func renderDigest(r capacity.Report) string {
    sm := r.Summary
    b := &strings.Builder{}
    fmt.Fprintf(b, "*%s*\n", escapeMarkdownV2("Capacity digest"))
    fmt.Fprintf(b, "%s\n\n", escapeMarkdownV2(fmt.Sprintf("Last %d days (%d working days, %dh/day)", sm.Period, sm.WorkingDays, sm.HoursPerDay)))
    fmt.Fprintf(b, "%s\n", escapeMarkdownV2(fmt.Sprintf("Open: %d | Created: %d | Resolved: %d", sm.TotalOpenTickets, sm.TicketsCreated, sm.TicketsResolved)))
    fmt.Fprintf(b, "%s\n", escapeMarkdownV2(fmt.Sprintf("Velocity: %d/week | Avg resolution: %dd", sm.Velocity, sm.AvgResolutionTime)))
    fmt.Fprintf(b, "%s\n\n", escapeMarkdownV2(fmt.Sprintf("Avg weekly effort change: %+dh", sm.AvgWeeklyEffortChange)))

    lines := make([]teamLine, 0, len(r.TeamCapacity))
    for name, m := range r.TeamCapacity { lines = append(lines, teamLine{name, m}) }
    sort.Slice(lines, func(i, j int) bool {
        if lines[i].m.UtilizationPercent != lines[j].m.UtilizationPercent {
            return lines[i].m.UtilizationPercent > lines[j].m.UtilizationPercent
        }
        return lines[i].name < lines[j].name
    })
    if len(lines) > 0 {
        fmt.Fprintf(b, "*%s*\n", escapeMarkdownV2("Utilization"))
        for _, l := range lines {
            flag := ""
            if l.m.UtilizationPercent >= 100 { flag = " (over capacity)" }
            fmt.Fprintf(b, "%s\n", escapeMarkdownV2(fmt.Sprintf("- %s: %d%% (%dh of %dh, %d open)%s",
                l.name, l.m.UtilizationPercent, l.m.WorkloadHours, l.m.AvailableCapacityHours, l.m.OpenTickets, flag)))
        }
        b.WriteString("\n")
    }

    if len(r.AssigneeWorkload) > 0 {
        fmt.Fprintf(b, "*%s*\n", escapeMarkdownV2("Workload by team"))
        top := r.AssigneeWorkload
        if len(top) > digestTopTeams { top = top[:digestTopTeams] }
        for _, t := range top {
            fmt.Fprintf(b, "%s\n", escapeMarkdownV2(fmt.Sprintf("- %s: %dh across %d tickets, oldest %dd",
                t.Name, t.TotalHours, t.OpenTickets, t.OldestTicket)))
        }
    }
    return strings.TrimRight(b.String(), "\n")
}

// chunkText splits text into chunks of up to max runes, breaking on line
// boundaries where possible.
func chunkText(s string, max int) []string {
    if max <= 0 { return []string{s} }
    var chunks []string
    cur := strings.Builder{}
    curlen := 0
    flush := func() {
        if curlen > 0 { chunks = append(chunks, cur.String()); cur.Reset(); curlen = 0 }
    }
    for _, ln := range strings.Split(s, "\n") {
        r := []rune(ln)
        if len(r) > max {
            flush()
            for i := 0; i < len(r); i += max {
                chunks = append(chunks, string(r[i:min(i+max, len(r))]))
            }
            continue
        }
        extra := len(r)
        if curlen > 0 { extra++ }
        if curlen > 0 && curlen+extra > max { flush(); extra = len(r) }
        if curlen > 0 { cur.WriteByte('\n') }
        cur.WriteString(ln)
        curlen += extra
    }
    flush()
    if len(chunks) == 0 { chunks = []string{""} }
    return chunks
}
