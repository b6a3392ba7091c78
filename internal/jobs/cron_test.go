package jobs

import (
    "context"
    "errors"
    "testing"

    "github.com/dt-jamiem/delivery-planning-tracker/internal/config"
    "github.com/rs/zerolog"
)

type countingService struct{ runs int }

func (s *countingService) RunScheduledDigest(ctx context.Context) error {
    if _, ok := ctx.Deadline(); !ok { return errors.New("digest must run with a deadline") }
    s.runs++
    return nil
}

type fakeLock struct {
    free     bool
    err      error
    unlocked int
}

func (l *fakeLock) TryAdvisoryLock(ctx context.Context, key int64) (bool, error) { return l.free, l.err }
func (l *fakeLock) AdvisoryUnlock(ctx context.Context, key int64) error         { l.unlocked++; return nil }

func newTestCron(t *testing.T, svc service, lock Locker) *Cron {
    t.Helper()
    cr, err := NewCron(config.Config{TZ: "Europe/London", DigestCron: "0 9 * * MON"}, zerolog.Nop(), svc, lock)
    if err != nil { t.Fatalf("NewCron: %v", err) }
    return cr
}

func TestDigestRunsUnderLock(t *testing.T) {
    svc, lock := &countingService{}, &fakeLock{free: true}
    newTestCron(t, svc, lock).digest()
    if svc.runs != 1 || lock.unlocked != 1 { t.Fatalf("runs=%d unlocked=%d", svc.runs, lock.unlocked) }
}

func TestDigestSkipsWhenLockHeld(t *testing.T) {
    svc := &countingService{}
    newTestCron(t, svc, &fakeLock{free: false}).digest()
    newTestCron(t, svc, &fakeLock{err: errors.New("db down")}).digest()
    if svc.runs != 0 { t.Fatalf("digest ran %d times without the lock", svc.runs) }
}

func TestDigestWithoutLocker(t *testing.T) {
    svc := &countingService{}
    newTestCron(t, svc, nil).digest()
    if svc.runs != 1 { t.Fatalf("runs=%d", svc.runs) }
}

func TestNewCronRejectsBadSchedule(t *testing.T) {
    if _, err := NewCron(config.Config{DigestCron: "every monday"}, zerolog.Nop(), &countingService{}, nil); err == nil {
        t.Fatal("expected schedule error")
    }
}
