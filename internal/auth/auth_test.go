package auth

import (
	"testing"
	"time"

	"github.com/minetrack/plodsync/internal/common"
)

func TestGenerateAndParse_Success(t *testing.T) {
	t.Parallel()

	secret := []byte("super-secret")

	tok, err := GenerateToken("user-123", "admin", secret, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}

	claims, err := ParseToken(tok, secret)
	if err != nil {
		t.Fatalf("ParseToken error: %v", err)
	}
	if claims.UserID != "user-123" {
		t.Fatalf("userID mismatch: got %q want %q", claims.UserID, "user-123")
	}
	if claims.Role != "admin" {
		t.Fatalf("role mismatch: got %q want %q", claims.Role, "admin")
	}
}

func TestParseToken_Expired(t *testing.T) {
	t.Parallel()

	secret := []byte("secret")

	tok, err := GenerateToken("u1", "operator", secret, -1*time.Second)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}

	_, err = ParseToken(tok, secret)
	if err != common.ErrTokenExpired {
		t.Fatalf("expected common.ErrTokenExpired, got %v", err)
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := GenerateToken("u2", "operator", []byte("right-secret"), time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}

	_, err = ParseToken(tok, []byte("wrong-secret"))
	if err != common.ErrInvalidToken {
		t.Fatalf("expected common.ErrInvalidToken, got %v", err)
	}
}

func TestParseToken_MalformedString(t *testing.T) {
	t.Parallel()

	_, err := ParseToken("not.a.jwt", []byte("k"))
	if err != common.ErrInvalidToken {
		t.Fatalf("expected common.ErrInvalidToken, got %v", err)
	}
}

func TestHashAndVerifyPIN(t *testing.T) {
	t.Parallel()

	hash, err := HashPIN("4812")
	if err != nil {
		t.Fatalf("HashPIN error: %v", err)
	}
	if hash == "4812" {
		t.Fatal("PIN stored in the clear")
	}

	if err := VerifyPIN(hash, "4812"); err != nil {
		t.Fatalf("VerifyPIN error: %v", err)
	}
	if err := VerifyPIN(hash, "0000"); err != common.ErrInvalidPIN {
		t.Fatalf("expected common.ErrInvalidPIN, got %v", err)
	}
	if err := VerifyPIN("", "4812"); err != common.ErrInvalidPIN {
		t.Fatalf("expected common.ErrInvalidPIN for empty hash, got %v", err)
	}
}

func TestHashPIN_RejectsWeakInput(t *testing.T) {
	t.Parallel()

	for _, pin := range []string{"", "12", "123", "12a4", "pin!"} {
		if _, err := HashPIN(pin); err != common.ErrInvalidPIN {
			t.Fatalf("HashPIN(%q): expected common.ErrInvalidPIN, got %v", pin, err)
		}
	}
}
