package phone_test

import (
	"reflect"
	"testing"

	"github.com/waveleap/broadcast-backend/internal/phone"
)

func TestCandidates(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want []string
	}{
		{"ten digits gets country code", "9876543210", []string{"919876543210"}},
		{"eleven with leading zero", "09876543210", []string{"919876543210"}},
		{"twelve with country code kept as is", "919876543210", []string{"919876543210"}},
		{"thirteen with zero and country code", "0919876543210", []string{"919876543210"}},
		{"formatting stripped before rules", "+91 98765-43210", []string{"919876543210"}},
		{"short number falls through with prefix added", "12345", []string{"12345", "9112345"}},
		{"long number falls through", "98765432101234", []string{"98765432101234", "9198765432101234"}},
		{"fallthrough already prefixed", "9198765432101", []string{"9198765432101"}},
		{"eleven without leading zero falls through", "98765432109", []string{"98765432109", "9198765432109"}},
		{"empty input still produces a candidate", "", []string{"", "91"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := phone.Candidates(tc.raw)
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("Candidates(%q) = %v, want %v", tc.raw, got, tc.want)
			}
		})
	}
}

func TestCandidatesAlwaysNonEmpty(t *testing.T) {
	inputs := []string{"", "abc", "1", "99999999999999999999", "0", "91"}
	for _, raw := range inputs {
		if got := phone.Candidates(raw); len(got) == 0 {
			t.Errorf("Candidates(%q) produced no candidates", raw)
		}
	}
}

func TestNormalizedLengthInvariant(t *testing.T) {
	// every raw input of the recognized shapes yields a candidate of length 11-13
	shaped := []string{"9876543210", "09876543210", "919876543210", "0919876543210"}
	for _, raw := range shaped {
		found := false
		for _, c := range phone.Candidates(raw) {
			if len(c) >= 11 && len(c) <= 13 {
				found = true
			}
		}
		if !found {
			t.Errorf("Candidates(%q) has no candidate of length 11-13", raw)
		}
	}
}

func TestIsPlausible(t *testing.T) {
	cases := []struct {
		raw  string
		want bool
	}{
		{"9876543210", true},
		{"09876543210", true},
		{"919876543210", true},
		{"12345", true}, // "9112345" is 7 digits
		{"1", false},
		{"", false},
		{"98765432101234567890", false},
	}

	for _, tc := range cases {
		if got := phone.IsPlausible(tc.raw); got != tc.want {
			t.Errorf("IsPlausible(%q) = %v, want %v", tc.raw, got, tc.want)
		}
	}
}
