package diary

import (
	"testing"
	"time"
)

func TestEntry_Expired(t *testing.T) {
	now := time.Now().UTC()
	tests := []struct {
		name string
		e    Entry
		want bool
	}{
		{name: "future expiry", e: Entry{ExpiresAt: now.Add(time.Hour)}, want: false},
		{name: "exactly now", e: Entry{ExpiresAt: now}, want: false},
		{name: "past expiry", e: Entry{ExpiresAt: now.Add(-time.Minute)}, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.e.Expired(now); got != tt.want {
				t.Errorf("Expired() = %v, want %v", got, tt.want)
			}
		})
	}
}
