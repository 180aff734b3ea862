package repository

import (
	"testing"
	"time"
)

func TestMonthlyPrefix(t *testing.T) {
	cases := []struct {
		prefix string
		at     time.Time
		want   string
	}{
		{"ORD", time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC), "ORD-202608-"},
		{"PR", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), "PR-202601-"},
		{"OT", time.Date(2026, 12, 31, 23, 59, 59, 0, time.UTC), "OT-202612-"},
		{"REQ", time.Date(2027, 2, 5, 8, 30, 0, 0, time.UTC), "REQ-202702-"},
	}
	for _, tc := range cases {
		if got := MonthlyPrefix(tc.prefix, tc.at); got != tc.want {
			t.Fatalf("MonthlyPrefix(%s, %v) = %q, want %q", tc.prefix, tc.at, got, tc.want)
		}
	}
}

func TestNextInSequence(t *testing.T) {
	cases := []struct {
		prefix string
		last   string
		want   string
	}{
		// Fresh month starts at 0001.
		{"ORD-202608-", "", "ORD-202608-0001"},
		{"ORD-202608-", "ORD-202608-0001", "ORD-202608-0002"},
		{"ORD-202608-", "ORD-202608-0099", "ORD-202608-0100"},
		{"ORD-202608-", "ORD-202608-9999", "ORD-202608-10000"},
		// A previous month's max never leaks into the new month because
		// callers query by the new prefix; an unparsable tail restarts.
		{"PR-202609-", "PR-202609-garbage", "PR-202609-0001"},
	}
	for _, tc := range cases {
		if got := NextInSequence(tc.prefix, tc.last); got != tc.want {
			t.Fatalf("NextInSequence(%q, %q) = %q, want %q", tc.prefix, tc.last, got, tc.want)
		}
	}
}
