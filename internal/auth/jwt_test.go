package auth

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

func TestGenerateAndParseToken(t *testing.T) {
	userID := bson.NewObjectID()
	secret := "test-secret"

	token, err := GenerateToken(userID, "staff", "dana@example.com", secret, time.Hour)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := ParseToken(token, secret)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserID != userID {
		t.Fatalf("user id = %s, want %s", claims.UserID.Hex(), userID.Hex())
	}
	if claims.Role != "staff" || claims.Email != "dana@example.com" {
		t.Fatalf("claims = %+v", claims)
	}
}

func TestParseTokenRejections(t *testing.T) {
	userID := bson.NewObjectID()

	t.Run("wrong secret", func(t *testing.T) {
		token, err := GenerateToken(userID, "staff", "a@b.c", "right", time.Hour)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := ParseToken(token, "wrong"); err == nil {
			t.Fatal("expected signature mismatch")
		}
	})

	t.Run("expired", func(t *testing.T) {
		token, err := GenerateToken(userID, "staff", "a@b.c", "s", -time.Minute)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := ParseToken(token, "s"); err == nil {
			t.Fatal("expected expiry rejection")
		}
	})

	t.Run("garbage", func(t *testing.T) {
		if _, err := ParseToken("not.a.token", "s"); err == nil {
			t.Fatal("expected parse failure")
		}
	})
}
