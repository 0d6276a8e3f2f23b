package util

import (
	"encoding/json"
	"hr_training_backend/internal/model"
	"math"
	"testing"
	"time"
)

func TestToInt(t *testing.T) {
	cases := []struct {
		in   interface{}
		want int
		ok   bool
	}{
		{42, 42, true},
		{int64(7), 7, true},
		{float64(12.6), 13, true},
		{float32(2.4), 2, true},
		{json.Number("30"), 30, true},
		{json.Number("abc"), 0, false},
		{"30", 0, false},
		{nil, 0, false},
		{float64(1e300), 0, false},
		{-1e300, 0, false},
		{math.NaN(), 0, false},
		{math.Inf(1), 0, false},
		{json.Number("1e300"), 0, false},
		{float64(MaxTrainingMinutes), MaxTrainingMinutes, true},
	}
	for _, c := range cases {
		got, ok := ToInt(c.in)
		if got != c.want || ok != c.ok {
			t.Fatalf("ToInt(%v): want=%d,%v got=%d,%v", c.in, c.want, c.ok, got, ok)
		}
	}
}

func TestAddMinutesSaturates(t *testing.T) {
	if got := AddMinutes(10, 5); got != 15 {
		t.Fatalf("AddMinutes: want=15 got=%d", got)
	}
	if got := AddMinutes(10, -5); got != 10 {
		t.Fatalf("negative minutes must be ignored: got=%d", got)
	}
	if got := AddMinutes(MaxTrainingMinutes-1, 5); got != MaxTrainingMinutes {
		t.Fatalf("AddMinutes overflow: want=%d got=%d", MaxTrainingMinutes, got)
	}
}

func TestFormatISO(t *testing.T) {
	if FormatISO(nil) != nil {
		t.Fatalf("nil time must format to nil")
	}
	loc := time.FixedZone("CST", 8*3600)
	ts := time.Date(2025, 3, 10, 17, 0, 0, 0, loc)
	got := FormatISO(&ts)
	if got == nil || *got != "2025-03-10T09:00:00Z" {
		t.Fatalf("FormatISO: got=%v", got)
	}
	if ISO(ts) != "2025-03-10T09:00:00Z" {
		t.Fatalf("ISO: got=%s", ISO(ts))
	}
}

func TestIsTrainingQRCode(t *testing.T) {
	valid := []string{"TRN-ABCD1234", "TRN-00000000"}
	invalid := []string{"", "TRN-abcd1234", "TRN-ABC123", "XYZ-ABCD1234", "TRN-ABCD12345"}
	for _, code := range valid {
		if !IsTrainingQRCode(code) {
			t.Fatalf("%q should be valid", code)
		}
	}
	for _, code := range invalid {
		if IsTrainingQRCode(code) {
			t.Fatalf("%q should be invalid", code)
		}
	}
}

func TestJWTRoundTrip(t *testing.T) {
	emp := &model.Employee{Email: "ann@example.com", Role: model.RoleHR}
	emp.ID = "emp-1"

	token, err := GenerateJWT(emp, "secret", time.Hour)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	claims, err := ParseJWT(token, "secret")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.EmployeeID != "emp-1" || claims.Role != model.RoleHR || claims.Email != emp.Email {
		t.Fatalf("claims: got=%+v", claims)
	}

	if _, err := ParseJWT(token, "other"); err == nil {
		t.Fatalf("expected error for wrong secret")
	}

	expired, err := GenerateJWT(emp, "secret", -time.Minute)
	if err != nil {
		t.Fatalf("generate expired: %v", err)
	}
	if _, err := ParseJWT(expired, "secret"); err == nil {
		t.Fatalf("expected error for expired token")
	}
}
