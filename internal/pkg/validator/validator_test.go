package validator

import (
	"testing"
	"time"

	"github.com/cmlabs-hris/gia-attendance-backend-go/internal/pkg/clock"
)

func TestIsEmpty(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"", true},
		{"   ", true},
		{"abc", false},
		{" abc ", false},
	}
	for _, c := range cases {
		got := IsEmpty(c.input)
		if got != c.want {
			t.Errorf("IsEmpty(%q) = %v, want %v", c.input, got, c.want)
		}
	}
}

func TestIsValidMonth(t *testing.T) {
	got, ok := IsValidMonth("2025-03")
	if !ok || got.Month() != time.March || got.Year() != 2025 {
		t.Errorf("IsValidMonth(2025-03) = %v, %v", got, ok)
	}
	for _, bad := range []string{"2025-13", "2025/03", "", "2025-03-01"} {
		if _, ok := IsValidMonth(bad); ok {
			t.Errorf("IsValidMonth(%q) = true, want false", bad)
		}
	}
}

func TestIsValidTimeOfDay(t *testing.T) {
	got, ok := IsValidTimeOfDay("07:30")
	if !ok || got != clock.New(7, 30) {
		t.Errorf("IsValidTimeOfDay(07:30) = %v, %v", got, ok)
	}
	if _, ok := IsValidTimeOfDay("7.30am"); ok {
		t.Errorf("IsValidTimeOfDay(7.30am) = true, want false")
	}
}

func TestParseWeekday(t *testing.T) {
	cases := []struct {
		input string
		want  time.Weekday
		ok    bool
	}{
		{"Monday", time.Monday, true},
		{" saturday ", time.Saturday, true},
		{"SUNDAY", time.Sunday, true},
		{"mon", 0, false},
	}
	for _, c := range cases {
		got, ok := ParseWeekday(c.input)
		if ok != c.ok || (ok && got != c.want) {
			t.Errorf("ParseWeekday(%q) = %v, %v; want %v, %v", c.input, got, ok, c.want, c.ok)
		}
	}
}

func TestValidationErrors_Err(t *testing.T) {
	var errs ValidationErrors
	if errs.Err() != nil {
		t.Errorf("empty ValidationErrors.Err() should be nil")
	}
	errs.Add("day", "invalid")
	if errs.Err() == nil || errs.Error() != "day: invalid" {
		t.Errorf("unexpected error %v", errs.Err())
	}
}
