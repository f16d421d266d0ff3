package auth

import (
	"testing"
	"time"

	"github.com/spec-kit/ticket-desk/internal/clock"
	"github.com/spec-kit/ticket-desk/internal/domain"
)

var epoch = time.Date(2026, time.October, 15, 12, 0, 0, 0, time.UTC)

func testUser() domain.User {
	return domain.User{ID: "1", Name: "John Doe", Email: "john.doe@example.com", Role: domain.UserRoleAdmin}
}

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", 30, clock.Fake(epoch))

	token, expiresAt, err := tm.GenerateToken(testUser())
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if !expiresAt.Equal(epoch.Add(30 * time.Minute)) {
		t.Fatalf("expiresAt = %v", expiresAt)
	}

	claims, err := tm.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if claims.Subject != "1" || claims.Role != domain.UserRoleAdmin {
		t.Fatalf("claims = %+v", claims)
	}
}

func TestTokenExpiresWithClock(t *testing.T) {
	clk := clock.Fake(epoch)
	tm := NewTokenManager("secret", 30, clk)
	token, _, err := tm.GenerateToken(testUser())
	if err != nil {
		t.Fatal(err)
	}

	clk.Advance(29 * time.Minute)
	if _, err := tm.ParseToken(token); err != nil {
		t.Fatalf("token rejected before expiry: %v", err)
	}
	clk.Advance(2 * time.Minute)
	if _, err := tm.ParseToken(token); err == nil {
		t.Fatal("expired token accepted")
	}
}

func TestTokenRejectsOtherSecret(t *testing.T) {
	clk := clock.Fake(epoch)
	token, _, err := NewTokenManager("one", 30, clk).GenerateToken(testUser())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := NewTokenManager("two", 30, clk).ParseToken(token); err == nil {
		t.Fatal("token signed with another secret accepted")
	}
	if _, err := NewTokenManager("one", 30, clk).ParseToken("not-a-token"); err == nil {
		t.Fatal("garbage accepted")
	}
}
