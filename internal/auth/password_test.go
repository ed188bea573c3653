package auth

import (
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func newTestPasswordService() *PasswordService {
	return NewPasswordServiceForTest(bcrypt.MinCost)
}

// =========================================================================
// Hash / Verify TESTS
// =========================================================================

func TestHash_OutputLooksBcrypt(t *testing.T) {
	ps := newTestPasswordService()

	hash, err := ps.Hash("Str0ng!Pass")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if !strings.HasPrefix(hash, "$2") {
		t.Errorf("Hash() does not look like a bcrypt hash: %q", hash)
	}
}

func TestHash_SaltedPerCall(t *testing.T) {
	ps := newTestPasswordService()

	hash1, _ := ps.Hash("same-password")
	hash2, _ := ps.Hash("same-password")

	if hash1 == hash2 {
		t.Error("Hash() produced identical hashes for the same password")
	}
}

func TestHash_RejectsOver72Bytes(t *testing.T) {
	ps := newTestPasswordService()

	if _, err := ps.Hash(strings.Repeat("a", 73)); err == nil {
		t.Error("Hash() should reject passwords longer than 72 bytes")
	}
}

func TestVerify(t *testing.T) {
	ps := newTestPasswordService()
	hash, _ := ps.Hash("Corr3ct!horse")

	if err := ps.Verify(hash, "Corr3ct!horse"); err != nil {
		t.Errorf("Verify() with correct password error = %v", err)
	}

	err := ps.Verify(hash, "wrong")
	if !errors.Is(err, ErrInvalidPassword) {
		t.Errorf("Verify() with wrong password error = %v, want ErrInvalidPassword", err)
	}

	if err := ps.Verify("not-a-hash", "anything"); err == nil || errors.Is(err, ErrInvalidPassword) {
		t.Errorf("Verify() with malformed hash error = %v, want a non-mismatch error", err)
	}
}

// =========================================================================
// POLICY TESTS
// =========================================================================

func TestPolicyViolations(t *testing.T) {
	tests := []struct {
		name string
		pw   string
		want []string
	}{
		{"strong", "Athl3tix!", nil},
		{"too short", "Ab1!", []string{"at least 8 characters"}},
		{"no upper", "athl3tix!", []string{"one uppercase letter"}},
		{"no lower", "ATHL3TIX!", []string{"one lowercase letter"}},
		{"no digit", "Athletix!", []string{"one number"}},
		{"no special", "Athl3tix9", []string{"one special character"}},
		{"empty", "", []string{
			"at least 8 characters", "one uppercase letter", "one lowercase letter",
			"one number", "one special character",
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PolicyViolations(tt.pw)
			if strings.Join(got, "|") != strings.Join(tt.want, "|") {
				t.Errorf("PolicyViolations(%q) = %v, want %v", tt.pw, got, tt.want)
			}
		})
	}
}
