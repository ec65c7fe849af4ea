package retention

import (
	"testing"
	"time"
)

func TestNextCronDuration_ValidExpression(t *testing.T) {
	// "0 3 * * *" = daily at 03:00. Duration should be positive and < 24h.
	d := nextCronDuration("0 3 * * *")
	if d <= 0 {
		t.Fatalf("expected positive duration, got %v", d)
	}
	if d > 24*time.Hour {
		t.Fatalf("expected duration < 24h, got %v", d)
	}
}

func TestNextCronDuration_InvalidExpression(t *testing.T) {
	d := nextCronDuration("not a cron expr")
	if d != 0 {
		t.Fatalf("expected 0 for invalid expression, got %v", d)
	}
}

func TestValidCron(t *testing.T) {
	if !ValidCron("*/5 * * * *") {
		t.Fatal("*/5 * * * * should parse")
	}
	if ValidCron("0 3 * *") {
		t.Fatal("four-field expression should not parse")
	}
}

func TestNewScheduler_Validation(t *testing.T) {
	db := openTestDB(t)
	sweeper := newTestSweeper(t, db, newStubRemover())

	if _, err := NewScheduler(SchedulerOpts{Sweeper: sweeper, Cron: "bogus"}); err == nil {
		t.Fatal("expected error for invalid cron expression")
	}
	if _, err := NewScheduler(SchedulerOpts{Cron: "0 3 * * *"}); err == nil {
		t.Fatal("expected error for missing sweeper")
	}
	if _, err := NewScheduler(SchedulerOpts{Sweeper: sweeper, Cron: "0 3 * * *"}); err != nil {
		t.Fatalf("valid opts rejected: %v", err)
	}
}
