package news

import (
	"reflect"
	"testing"
	"time"

	"github.com/newthinker/marketmind/internal/core"
)

func TestNormalizeKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Apple Beats Estimates!", "apple beats estimates"},
		{"  apple   beats estimates.  ", "apple beats estimates"},
		{"Tesla's Q3: deliveries up 10%", "teslas q3 deliveries up 10"},
		{"one two three four five six seven eight nine ten eleven", "one two three four five six seven eight nine ten"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeKey(tt.in); got != tt.want {
			t.Errorf("NormalizeKey(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDedup_CollapsesCaseAndPunctuation(t *testing.T) {
	in := []core.Headline{
		{Title: "Apple beats estimates", Source: "Reuters"},
		{Title: "APPLE BEATS ESTIMATES!!! ", Source: "Bloomberg"},
		{Title: "Apple misses estimates", Source: "CNBC"},
	}

	out := Dedup(in)

	if len(out) != 2 {
		t.Fatalf("expected 2 headlines, got %d", len(out))
	}
	if out[0].Source != "Reuters" {
		t.Errorf("expected first occurrence kept, got %s", out[0].Source)
	}
	if out[1].Title != "Apple misses estimates" {
		t.Errorf("unexpected second headline %q", out[1].Title)
	}
}

func TestDedup_Idempotent(t *testing.T) {
	in := []core.Headline{
		{Title: "a b c"},
		{Title: "A, B, C."},
		{Title: "d e f"},
		{Title: "one two three four five six seven eight nine ten alpha"},
		{Title: "one two three four five six seven eight nine ten beta"},
	}

	once := Dedup(in)
	twice := Dedup(once)

	if !reflect.DeepEqual(once, twice) {
		t.Errorf("expected dedup to be idempotent, got %v then %v", once, twice)
	}
	if len(once) != 3 {
		t.Errorf("expected 3 headlines, got %d", len(once))
	}
}

func TestParseTimestamp(t *testing.T) {
	now := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
	want := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

	tests := []string{
		"Mon, 15 Jan 2024 10:00:00 +0000",
		"Mon, 15 Jan 2024 10:00:00 GMT",
		"Mon, 15 Jan 2024 11:00:00 +0100",
		"15 Jan 2024 10:00:00 GMT",
		"15 Jan 2024 10:00:00 +0000",
		"2024-01-15T10:00:00Z",
		"2024-01-15T12:00:00+02:00",
		"2024-01-15T12:00:00+0200",
		"2024-01-15T05:00:00.000-0500",
	}
	for _, raw := range tests {
		if got := ParseTimestamp(raw, now); !want.Equal(got) {
			t.Errorf("ParseTimestamp(%q) = %v, want %v", raw, got, want)
		}
	}

	for _, raw := range []string{"", "yesterday-ish"} {
		if got := ParseTimestamp(raw, now); !got.Equal(now) {
			t.Errorf("ParseTimestamp(%q) = %v, want now", raw, got)
		}
	}
}

func TestRelativeLabel(t *testing.T) {
	now := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		ago  time.Duration
		want string
	}{
		{-time.Hour, "Just now"},
		{30 * time.Second, "Just now"},
		{5 * time.Minute, "5m ago"},
		{3*time.Hour + 20*time.Minute, "3h ago"},
		{50 * time.Hour, "2d ago"},
		{10 * 24 * time.Hour, "Jan 05, 2024"},
	}
	for _, tt := range tests {
		if got := RelativeLabel(now.Add(-tt.ago), now); got != tt.want {
			t.Errorf("RelativeLabel(-%v) = %q, want %q", tt.ago, got, tt.want)
		}
	}
}
