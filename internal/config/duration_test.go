package config

import (
	"testing"
	"time"
)

func TestParseDurationField(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		raw     string
		want    time.Duration
		wantErr bool
	}{
		{"empty means unset", "", 0, false},
		{"whitespace means unset", "  ", 0, false},
		{"seconds", "540s", 540 * time.Second, false},
		{"minutes", "5m", 5 * time.Minute, false},
		{"compound", "1m30s", 90 * time.Second, false},
		{"negative rejected", "-3s", 0, true},
		{"bare number rejected", "30", 0, true},
		{"garbage rejected", "soon", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDurationField("watch.interval", tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("want error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("err = %v", err)
			}
			if got != tt.want {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseDurationOrDefault(t *testing.T) {
	t.Parallel()
	got, err := ParseDurationOrDefault("watch.interval", "", 5*time.Minute)
	if err != nil {
		t.Fatalf("err = %v", err)
	}
	if got != 5*time.Minute {
		t.Fatalf("got %v, want default", got)
	}

	got, err = ParseDurationOrDefault("watch.interval", "10m", 5*time.Minute)
	if err != nil {
		t.Fatalf("err = %v", err)
	}
	if got != 10*time.Minute {
		t.Fatalf("got %v, want explicit value", got)
	}

	if _, err := ParseDurationOrDefault("watch.interval", "nope", time.Second); err == nil {
		t.Fatal("want error for invalid duration")
	}
}
