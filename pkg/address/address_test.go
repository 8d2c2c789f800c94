package address

import (
	"errors"
	"testing"
)

func TestValidatePattern(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		wantErr error
	}{
		{"root", "/", nil},
		{"simple", "/test", nil},
		{"nested", "/synth/1/freq", nil},
		{"wildcards", "/synth/*/fr?q", nil},
		{"char set", "/ch/[1-4]/gain", nil},
		{"negated set", "/ch/[!5-8]", nil},
		{"string list", "/mixer/{left,right}/level", nil},
		{"empty", "", ErrEmpty},
		{"no slash", "test", ErrNoLeadingSlash},
		{"space", "/a b", ErrInvalidChar},
		{"hash", "/a#b", ErrInvalidChar},
		{"comma outside braces", "/a,b", ErrInvalidChar},
		{"unterminated set", "/a[bc", ErrUnbalanced},
		{"unterminated list", "/a{b,c", ErrUnbalanced},
		{"stray close", "/a]", ErrUnbalanced},
		{"nested list", "/a{b{c}}", ErrInvalidChar},
		{"slash in set", "/a[b/c]", ErrInvalidChar},
		{"control char", "/a\x01", ErrInvalidChar},
		{"non ascii", "/caf\xc3\xa9", ErrInvalidChar},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePattern(tt.pattern)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("ValidatePattern(%q) = %v, want nil", tt.pattern, err)
				}
				if !IsValidPattern(tt.pattern) {
					t.Errorf("IsValidPattern(%q) = false", tt.pattern)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidatePattern(%q) = %v, want %v", tt.pattern, err, tt.wantErr)
			}
			if IsValidPattern(tt.pattern) {
				t.Errorf("IsValidPattern(%q) = true", tt.pattern)
			}
		})
	}
}

func TestIsValidAddress(t *testing.T) {
	if !IsValidAddress("/synth/1/freq") {
		t.Error("plain address should be valid")
	}
	if IsValidAddress("/synth/*/freq") {
		t.Error("wildcard address should not be a method address")
	}
	if IsValidAddress("synth") {
		t.Error("address without slash should be invalid")
	}
}
