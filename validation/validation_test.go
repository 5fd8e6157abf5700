package validation

import (
	"math"
	"testing"
	"time"
)

func TestRequiredAndOneOf(t *testing.T) {
	v := make(Violations)
	Required("name", "  ", v)
	OneOf("kind", "boat", []string{"equipment", "tool"}, v)
	OneOf("status", "", []string{"active"}, v)
	if v["name"] != "required" || v["kind"] != "invalid_choice" {
		t.Fatalf("unexpected violations: %#v", v)
	}
	if _, ok := v["status"]; ok {
		t.Fatalf("empty value must be left to Required")
	}
}

func TestIsNIT(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"900.123.456-7", true},
		{"900123456", true},
		{"12345678", false},
		{"12345678901", false},
		{"90012345A", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := IsNIT(tt.in); got != tt.want {
				t.Errorf("IsNIT(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestIsPhoneAndEmail(t *testing.T) {
	if !IsPhone("+57 3001234567") || !IsPhone("3001234567") {
		t.Fatalf("expected valid Colombian mobile numbers")
	}
	if IsPhone("6041234567") {
		t.Fatalf("landline must be rejected")
	}
	if !IsEmail("ops@rentals.co") || IsEmail("ops@rentals") {
		t.Fatalf("email check mismatch")
	}
}

func TestPriceAndDateRange(t *testing.T) {
	v := make(Violations)
	Price("a", -1, v)
	Price("b", math.Inf(1), v)
	Price("c", 0, v)
	if v["a"] == "" || v["b"] == "" || v["c"] != "" {
		t.Fatalf("unexpected price violations: %#v", v)
	}
	start := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, -1)
	DateRange("end_date", &start, &end, v)
	if v["end_date"] != "end_before_start" {
		t.Fatalf("expected date range violation")
	}
}
