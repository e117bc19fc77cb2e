package utils

import (
	"regexp"
	"testing"
	"time"
)

func TestNewClaimNumberFormat(t *testing.T) {
	now := time.Date(2026, 3, 10, 8, 0, 0, 0, time.Local)
	pattern := regexp.MustCompile(`^KLM-2026-\d{4}$`)
	for i := 0; i < 50; i++ {
		if got := NewClaimNumber(now); !pattern.MatchString(got) {
			t.Fatalf("format nomor klaim salah: %s", got)
		}
	}
}

func TestNewVerificationIDFormat(t *testing.T) {
	now := time.Date(2026, 3, 10, 8, 0, 0, 0, time.Local)
	pattern := regexp.MustCompile(`^VER-\d+-\d{3}$`)
	for i := 0; i < 50; i++ {
		if got := NewVerificationID(now); !pattern.MatchString(got) {
			t.Fatalf("format ID verifikasi salah: %s", got)
		}
	}
}

func TestParseTimestamp(t *testing.T) {
	valid := []string{
		"2026-08-15T10:00:00Z",
		"2026-08-15T10:00:00.123Z",
		"2026-08-15 10:00:00",
		"2026-08-15",
	}
	for _, s := range valid {
		if _, ok := ParseTimestamp(s); !ok {
			t.Errorf("%q harus bisa diparse", s)
		}
	}

	invalid := []string{"", "   ", "bukan tanggal", "15/08/2026", "99-99-99"}
	for _, s := range invalid {
		if _, ok := ParseTimestamp(s); ok {
			t.Errorf("%q tidak boleh bisa diparse", s)
		}
	}
}
