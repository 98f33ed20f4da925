package utils

import (
	"strings"
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	tok, err := GenerateToken("secret", "usr_1", "ann@x.io", "admin", time.Now(), time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	claims, err := ParseToken("secret", tok)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if claims.UID != "usr_1" || claims.Email != "ann@x.io" || claims.Role != "admin" {
		t.Fatalf("claims = %+v", claims)
	}
}

func TestParseTokenRejects(t *testing.T) {
	expired, _ := GenerateToken("secret", "usr_1", "a@x.io", "member", time.Now().Add(-2*time.Hour), time.Hour)
	wrongKey, _ := GenerateToken("other", "usr_1", "a@x.io", "member", time.Now(), time.Hour)

	for name, tok := range map[string]string{
		"expired":   expired,
		"wrong key": wrongKey,
		"garbage":   "not.a.token",
	} {
		if _, err := ParseToken("secret", tok); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestNewUID(t *testing.T) {
	uid := NewUID("reg")
	if !strings.HasPrefix(uid, "reg_") || len(uid) != len("reg_")+12 {
		t.Fatalf("NewUID = %q", uid)
	}
	if NewUID("reg") == uid {
		t.Fatal("NewUID returned the same value twice")
	}
}
