package cache

import (
	"testing"
	"time"
)

func TestReportKeyEmbedsVersionAndRange(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 10, 23, 59, 59, 0, time.UTC)

	key := reportKey("cafe@campus.edu", 3, "sales", start, end)
	expected := "reports:cafe@campus.edu:v3:sales:20260301:20260310"
	if key != expected {
		t.Fatalf("expected %s, got %s", expected, key)
	}
}

func TestReportKeyChangesWithVersion(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 10, 23, 59, 59, 0, time.UTC)

	before := reportKey("cafe@campus.edu", 1, "daily", start, end)
	after := reportKey("cafe@campus.edu", 2, "daily", start, end)
	if before == after {
		t.Fatal("expected a version bump to produce a different key")
	}
}

func TestVersionKey(t *testing.T) {
	if got := versionKey("cafe@campus.edu"); got != "reports:ver:cafe@campus.edu" {
		t.Fatalf("unexpected version key: %s", got)
	}
}
