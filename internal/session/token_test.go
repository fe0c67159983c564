package session

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret"

func signToken(t *testing.T, claims jwt.MapClaims, secret string) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}
	return s
}

func TestDecodeUnverified(t *testing.T) {
	token := signToken(t, jwt.MapClaims{"sub": "7", "email": "a@b.c"}, "whatever")

	claims, err := Decoder{}.Decode(token)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if claims["email"] != "a@b.c" {
		t.Errorf("email claim = %v", claims["email"])
	}
}

func TestDecodeMalformed(t *testing.T) {
	for _, tok := range []string{"", "abc", "a.b", "a.!!!.c"} {
		if _, err := (Decoder{}).Decode(tok); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Decode(%q) error = %v, want ErrInvalidToken", tok, err)
		}
	}
}

func TestDecodeVerified(t *testing.T) {
	good := signToken(t, jwt.MapClaims{"sub": "1"}, testSecret)
	bad := signToken(t, jwt.MapClaims{"sub": "1"}, "other")

	d := Decoder{Secret: testSecret}
	if _, err := d.Decode(good); err != nil {
		t.Errorf("Decode(good) error: %v", err)
	}
	if _, err := d.Decode(bad); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Decode(bad) error = %v, want ErrInvalidToken", err)
	}
}

func TestDecodeVerifiedIgnoresExpiry(t *testing.T) {
	token := signToken(t, jwt.MapClaims{"exp": time.Now().Add(-time.Hour).Unix()}, testSecret)
	if _, err := (Decoder{Secret: testSecret}).Decode(token); err != nil {
		t.Errorf("Decode() of expired token error: %v", err)
	}
}

func TestIsExpired(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)

	tests := []struct {
		name   string
		claims jwt.MapClaims
		want   bool
	}{
		{"nil claims", nil, true},
		{"no exp", jwt.MapClaims{"sub": "1"}, true},
		{"past", jwt.MapClaims{"exp": float64(now.Unix() - 1)}, true},
		{"same second", jwt.MapClaims{"exp": float64(now.Unix())}, false},
		{"future", jwt.MapClaims{"exp": float64(now.Unix() + 60)}, false},
		{"bad type", jwt.MapClaims{"exp": "soon"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsExpired(tt.claims, now); got != tt.want {
				t.Errorf("IsExpired() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCheck(t *testing.T) {
	now := time.Now()
	expired := signToken(t, jwt.MapClaims{"exp": now.Add(-time.Minute).Unix()}, testSecret)
	valid := signToken(t, jwt.MapClaims{"exp": now.Add(time.Minute).Unix()}, testSecret)

	if _, err := (Decoder{}).Check(expired, now); !errors.Is(err, ErrExpiredToken) {
		t.Errorf("Check(expired) error = %v, want ErrExpiredToken", err)
	}
	if _, err := (Decoder{}).Check(valid, now); err != nil {
		t.Errorf("Check(valid) error: %v", err)
	}
}

func TestUserFromClaims(t *testing.T) {
	tests := []struct {
		name     string
		claims   jwt.MapClaims
		fallback string
		wantID   string
		wantMail string
		wantProf bool
		wantPID  string
	}{
		{
			name:     "professor token",
			claims:   jwt.MapClaims{"sub": "u1", "email": "p@fiap.com", "isProfessor": true, "professorId": float64(12)},
			wantID:   "u1",
			wantMail: "p@fiap.com",
			wantProf: true,
			wantPID:  "12",
		},
		{
			name:     "id claim and fallback email",
			claims:   jwt.MapClaims{"id": float64(44)},
			fallback: "typed@fiap.com",
			wantID:   "44",
			wantMail: "typed@fiap.com",
		},
		{
			name:   "non bool professor flag",
			claims: jwt.MapClaims{"sub": "x", "isProfessor": "yes"},
			wantID: "x",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := UserFromClaims(tt.claims, tt.fallback)
			if u.ID != tt.wantID || u.Email != tt.wantMail || u.IsProfessor != tt.wantProf || string(u.ProfessorID) != tt.wantPID {
				t.Errorf("UserFromClaims() = %+v", u)
			}
		})
	}
}
