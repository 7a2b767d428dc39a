package core

import (
	"testing"
	"time"
)

func TestMonthsEnding(t *testing.T) {
	tests := []struct {
		name string
		ref  time.Time
		n    int
		want []string
	}{
		{
			name: "single month",
			ref:  time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
			n:    1,
			want: []string{"2026-03"},
		},
		{
			name: "rolls into prior year",
			ref:  time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
			n:    4,
			want: []string{"2025-11", "2025-12", "2026-01", "2026-02"},
		},
		{
			name: "full year",
			ref:  time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC),
			n:    12,
			want: []string{
				"2025-01", "2025-02", "2025-03", "2025-04", "2025-05", "2025-06",
				"2025-07", "2025-08", "2025-09", "2025-10", "2025-11", "2025-12",
			},
		},
		{
			name: "n below one",
			ref:  time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
			n:    0,
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MonthsEnding(tt.ref, tt.n)
			if len(got) != len(tt.want) {
				t.Fatalf("MonthsEnding() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("MonthsEnding()[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestParseMonthKey(t *testing.T) {
	tests := []struct {
		key     string
		year    int
		month   int
		wantErr bool
	}{
		{"2026-01", 2026, 1, false},
		{"1999-12", 1999, 12, false},
		{"2026-13", 0, 0, true},
		{"2026-00", 0, 0, true},
		{"2026-1", 0, 0, true},
		{"2026/01", 0, 0, true},
		{"garbage", 0, 0, true},
		{"", 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			y, m, err := ParseMonthKey(tt.key)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseMonthKey(%q) error = %v, wantErr %v", tt.key, err, tt.wantErr)
			}
			if err == nil && (y != tt.year || m != tt.month) {
				t.Fatalf("ParseMonthKey(%q) = %d, %d, want %d, %d", tt.key, y, m, tt.year, tt.month)
			}
		})
	}
}

func TestDaysInMonth(t *testing.T) {
	cases := []struct {
		year, month, want int
	}{
		{2024, 2, 29}, // leap year
		{2025, 2, 28},
		{2025, 4, 30},
		{2025, 12, 31},
	}
	for _, tc := range cases {
		if got := DaysInMonth(tc.year, tc.month); got != tc.want {
			t.Fatalf("DaysInMonth(%d, %d) = %d, want %d", tc.year, tc.month, got, tc.want)
		}
	}
}
