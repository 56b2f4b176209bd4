package token

import (
	"regexp"
	"testing"
)

func TestNew_Length(t *testing.T) {
	for i := 0; i < 100; i++ {
		s, err := New()
		if err != nil {
			t.Fatalf("iteration %d: unexpected error: %v", i, err)
		}
		if len(s) != 24 {
			t.Fatalf("iteration %d: len = %d, want 24 (token=%q)", i, len(s), s)
		}
	}
}

func TestNew_URLSafe(t *testing.T) {
	re := regexp.MustCompile(`^[0-9A-Za-z_-]+$`)
	for i := 0; i < 100; i++ {
		s, err := New()
		if err != nil {
			t.Fatalf("iteration %d: unexpected error: %v", i, err)
		}
		if !re.MatchString(s) {
			t.Fatalf("iteration %d: token %q contains non URL-safe characters", i, s)
		}
	}
}

func TestNew_Uniqueness(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		s, err := New()
		if err != nil {
			t.Fatalf("iteration %d: unexpected error: %v", i, err)
		}
		if seen[s] {
			t.Fatalf("duplicate token %q at iteration %d", s, i)
		}
		seen[s] = true
	}
}
