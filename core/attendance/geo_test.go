package attendance

import (
	"math"
	"testing"
	"time"
)

func TestDistanceMeters(t *testing.T) {
	school := Location{Latitude: 18.5204, Longitude: 73.8567}

	tests := []struct {
		name string
		a, b Location
		want float64
		tol  float64
	}{
		{name: "same point", a: school, b: school, want: 0, tol: 0.001},
		{
			name: "100m north",
			a:    school,
			b:    Location{Latitude: 18.5204 + 0.0009, Longitude: 73.8567},
			want: 100, tol: 2,
		},
		{
			name: "one degree of latitude",
			a:    Location{Latitude: 0, Longitude: 0},
			b:    Location{Latitude: 1, Longitude: 0},
			want: 111195, tol: 50,
		},
		{
			name: "across town",
			a:    school,
			b:    Location{Latitude: 18.5304, Longitude: 73.8667},
			want: 1532, tol: 20,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DistanceMeters(tt.a, tt.b)
			if math.Abs(got-tt.want) > tt.tol {
				t.Errorf("DistanceMeters() = %.2f, want %.2f (±%.2f)", got, tt.want, tt.tol)
			}
			// symmetric
			if rev := DistanceMeters(tt.b, tt.a); math.Abs(rev-got) > 0.001 {
				t.Errorf("DistanceMeters() not symmetric: %.4f vs %.4f", got, rev)
			}
		})
	}
}

func TestDayBounds(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	tests := []struct {
		name string
		t    time.Time
		want time.Time
	}{
		{
			name: "midday utc",
			t:    time.Date(2026, 3, 14, 12, 30, 0, 0, time.UTC),
			want: time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "midnight stays",
			t:    time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
			want: time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "local time normalized to utc day",
			t:    time.Date(2026, 3, 15, 2, 0, 0, 0, loc), // 2026-03-14T20:30Z
			want: time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := DayBounds(tt.t)
			if !start.Equal(tt.want) {
				t.Errorf("DayBounds() start = %v, want %v", start, tt.want)
			}
			if !end.Equal(tt.want.Add(24 * time.Hour)) {
				t.Errorf("DayBounds() end = %v, want %v", end, tt.want.Add(24*time.Hour))
			}
		})
	}
}
