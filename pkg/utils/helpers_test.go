package utils

import (
	"strings"
	"testing"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash := HashPassword("hunter22")

	if !strings.HasPrefix(hash, "$argon2id$") {
		t.Fatalf("unexpected hash format: %s", hash)
	}
	if !VerifyPassword("hunter22", hash) {
		t.Error("correct password was rejected")
	}
	if VerifyPassword("hunter23", hash) {
		t.Error("wrong password was accepted")
	}
}

func TestHashPasswordSalts(t *testing.T) {
	if HashPassword("same") == HashPassword("same") {
		t.Error("two hashes of the same password are identical")
	}
}

func TestVerifyPasswordMalformedHash(t *testing.T) {
	if VerifyPassword("anything", "not-a-hash") {
		t.Error("malformed hash was accepted")
	}
}

func TestGenerateRandomString(t *testing.T) {
	s := GenerateRandomString(32)
	if len(s) != 32 {
		t.Errorf("length = %d, want 32", len(s))
	}
	if s == GenerateRandomString(32) {
		t.Error("two generated strings are identical")
	}
}

func TestGenerateRandomHex(t *testing.T) {
	s := GenerateRandomHex(8)
	if len(s) != 8 {
		t.Fatalf("length = %d, want 8", len(s))
	}
	for _, r := range s {
		if !strings.ContainsRune("0123456789ABCDEF", r) {
			t.Errorf("unexpected character %q", r)
		}
	}
}
