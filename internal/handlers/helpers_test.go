package handlers

import (
	"testing"
	"time"
)

func TestParseDateRangeExplicit(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

	start, end, err := parseDateRange("2026-03-01", "2026-03-10", now)
	if err != nil {
		t.Fatalf("parseDateRange returned error: %v", err)
	}

	if !start.Equal(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected start: %v", start)
	}
	if !end.Equal(time.Date(2026, 3, 10, 23, 59, 59, 0, time.UTC)) {
		t.Fatalf("expected end of day inclusive, got %v", end)
	}
}

func TestParseDateRangeDefaultsToTrailingThirtyDays(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

	start, end, err := parseDateRange("", "", now)
	if err != nil {
		t.Fatalf("parseDateRange returned error: %v", err)
	}

	if !end.Equal(time.Date(2026, 3, 15, 23, 59, 59, 0, time.UTC)) {
		t.Fatalf("expected end of today, got %v", end)
	}
	if end.Sub(start) < 30*24*time.Hour {
		t.Fatalf("expected at least a 30 day window, got %v", end.Sub(start))
	}
}

func TestParseDateRangeDefaultStartsAtLocalMidnight(t *testing.T) {
	zone := time.FixedZone("UTC+11", 11*3600)
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, zone)

	start, _, err := parseDateRange("", "", now)
	if err != nil {
		t.Fatalf("parseDateRange returned error: %v", err)
	}

	if start.Hour() != 0 || start.Minute() != 0 {
		t.Fatalf("expected start at local midnight, got %v", start)
	}
	if start.Location() != zone {
		t.Fatalf("expected start in the caller's location, got %v", start.Location())
	}
}

func TestParseDateRangeRejectsReversedRange(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

	if _, _, err := parseDateRange("2026-03-10", "2026-03-01", now); err == nil {
		t.Fatal("expected error when end precedes start")
	}
}

func TestParseDateRangeRejectsBadFormat(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

	if _, _, err := parseDateRange("03/01/2026", "", now); err == nil {
		t.Fatal("expected error for bad start format")
	}
	if _, _, err := parseDateRange("", "yesterday", now); err == nil {
		t.Fatal("expected error for bad end format")
	}
}

func TestParsePaginationParamsDefaults(t *testing.T) {
	page, limit, err := parsePaginationParams("", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page != 1 || limit != 20 {
		t.Fatalf("expected defaults page=1 limit=20, got page=%d limit=%d", page, limit)
	}
}

func TestParsePaginationParamsBounds(t *testing.T) {
	if _, _, err := parsePaginationParams("0", ""); err == nil {
		t.Fatal("expected error for page 0")
	}
	if _, _, err := parsePaginationParams("", "101"); err == nil {
		t.Fatal("expected error for limit above 100")
	}
	if _, _, err := parsePaginationParams("abc", ""); err == nil {
		t.Fatal("expected error for non-numeric page")
	}

	page, limit, err := parsePaginationParams("3", "50")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page != 3 || limit != 50 {
		t.Fatalf("expected page=3 limit=50, got page=%d limit=%d", page, limit)
	}
}

func TestLowerCamel(t *testing.T) {
	if got := lowerCamel("VendorEmail"); got != "vendorEmail" {
		t.Fatalf("expected vendorEmail, got %s", got)
	}
	if got := lowerCamel(""); got != "" {
		t.Fatalf("expected empty string to pass through, got %q", got)
	}
}
