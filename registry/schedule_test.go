package registry

import (
	"testing"
)

func TestGenerateSchedule(t *testing.T) {
	tests := []struct {
		name      string
		startDate string
		endDate   string
		wantLen   int
		wantErr   bool
		firstDay  string
		firstDate string
		lastDate  string
	}{
		{
			name:      "three day trip",
			startDate: "2026-09-01",
			endDate:   "2026-09-03",
			wantLen:   3,
			firstDay:  "Day 1",
			firstDate: "9/1",
			lastDate:  "9/3",
		},
		{
			name:      "single day trip",
			startDate: "2026-12-24",
			endDate:   "2026-12-24",
			wantLen:   1,
			firstDay:  "Day 1",
			firstDate: "12/24",
			lastDate:  "12/24",
		},
		{
			name:      "spans a month boundary",
			startDate: "2026-01-30",
			endDate:   "2026-02-02",
			wantLen:   4,
			firstDay:  "Day 1",
			firstDate: "1/30",
			lastDate:  "2/2",
		},
		{
			name:      "range longer than the cap is truncated",
			startDate: "2026-01-01",
			endDate:   "2026-12-31",
			wantLen:   maxScheduleDays,
			firstDay:  "Day 1",
			firstDate: "1/1",
			lastDate:  "3/1",
		},
		{
			name:      "inverted range",
			startDate: "2026-09-03",
			endDate:   "2026-09-01",
			wantErr:   true,
		},
		{
			name:      "unparseable start date",
			startDate: "next tuesday",
			endDate:   "2026-09-03",
			wantErr:   true,
		},
		{
			name:      "empty dates",
			startDate: "",
			endDate:   "",
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			days, err := GenerateSchedule(tt.startDate, tt.endDate)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected an error, got %d days", len(days))
				}
				return
			}
			if err != nil {
				t.Fatalf("GenerateSchedule failed: %v", err)
			}
			if len(days) != tt.wantLen {
				t.Fatalf("got %d days, want %d", len(days), tt.wantLen)
			}
			if days[0].Day != tt.firstDay {
				t.Errorf("first day label = %q, want %q", days[0].Day, tt.firstDay)
			}
			if days[0].Date != tt.firstDate {
				t.Errorf("first date = %q, want %q", days[0].Date, tt.firstDate)
			}
			if last := days[len(days)-1].Date; last != tt.lastDate {
				t.Errorf("last date = %q, want %q", last, tt.lastDate)
			}
			for i, d := range days {
				if len(d.Events) != 0 {
					t.Errorf("day %d should start with no events", i+1)
				}
			}
		})
	}
}
