package token

import (
	"bytes"
	"errors"
	"log"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Kind discriminates what a token may be used for. The kind is embedded in
// the token itself so an access token can never pass where a refresh token
// is required, regardless of which secret signed it.
type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

// Token lifetimes are policy constants, not caller-supplied.
const (
	AccessTokenTTL  = 1 * time.Hour
	RefreshTokenTTL = 7 * 24 * time.Hour
)

const (
	Issuer   = "social-media-app"
	Audience = "social-media-users"
)

// Developer-only defaults. Config refuses to start in production without
// externally supplied secrets; these exist so local development works out
// of the box.
const (
	fallbackAccessSecret  = "fallback-secret-key-change-in-production"
	fallbackRefreshSecret = "fallback-refresh-secret"
)

var (
	ErrMalformed     = errors.New("token is malformed or has an invalid signature")
	ErrExpired       = errors.New("token has expired")
	ErrWrongIssuer   = errors.New("token issuer mismatch")
	ErrWrongAudience = errors.New("token audience mismatch")
	ErrWrongKind     = errors.New("token kind mismatch")
)

type Claims struct {
	UserID string `json:"id"`
	Type   string `json:"type"`
	jwt.RegisteredClaims
}

// Codec signs and verifies bearer tokens. Secrets are fixed at construction
// and never mutated afterwards.
type Codec struct {
	accessSecret  []byte
	refreshSecret []byte
}

func NewCodec(accessSecret, refreshSecret string) *Codec {
	if accessSecret == "" {
		log.Println("WARNING: no JWT secret configured, using development fallback. Set JWT_SECRET!")
		accessSecret = fallbackAccessSecret
	}

	if refreshSecret == "" {
		refreshSecret = accessSecret
		if refreshSecret == fallbackAccessSecret {
			log.Println("WARNING: refresh tokens are signed with the development fallback secret")
			refreshSecret = fallbackRefreshSecret
		}
	}

	return &Codec{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
	}
}

// Issue creates a signed token of the given kind for the subject id.
func (c *Codec) Issue(userID string, kind Kind) (string, error) {
	now := time.Now()

	expiry := AccessTokenTTL
	if kind == KindRefresh {
		expiry = RefreshTokenTTL
	}

	claims := &Claims{
		UserID: userID,
		Type:   string(kind),
		RegisteredClaims: jwt.RegisteredClaims{
			// Unique per token so two tokens minted within the same second
			// for the same subject still differ.
			ID:        uuid.New().String(),
			Issuer:    Issuer,
			Audience:  jwt.ClaimStrings{Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(c.secretFor(kind))
}

// Verify checks signature, expiry, issuer, audience and kind, and returns
// the embedded claims. The returned error is one of the package sentinels
// so callers can branch on failure kind.
func (c *Codec) Verify(tokenStr string, kind Kind) (*Claims, error) {
	claims := &Claims{}

	_, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return c.secretFor(kind), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithAudience(Audience),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpired
		case errors.Is(err, jwt.ErrTokenInvalidIssuer):
			return nil, ErrWrongIssuer
		case errors.Is(err, jwt.ErrTokenInvalidAudience):
			return nil, ErrWrongAudience
		default:
			// A token of the other kind signed with a distinct secret fails
			// the signature check here. Surface that as a kind mismatch, not
			// a malformed token, so callers see one failure mode for cross-use.
			if c.verifiesWithOtherSecret(tokenStr, kind) {
				return nil, ErrWrongKind
			}
			return nil, ErrMalformed
		}
	}

	if claims.Type != string(kind) {
		return nil, ErrWrongKind
	}

	return claims, nil
}

func (c *Codec) secretFor(kind Kind) []byte {
	if kind == KindRefresh {
		return c.refreshSecret
	}
	return c.accessSecret
}

func (c *Codec) verifiesWithOtherSecret(tokenStr string, kind Kind) bool {
	other := c.accessSecret
	if kind == KindAccess {
		other = c.refreshSecret
	}
	if bytes.Equal(other, c.secretFor(kind)) {
		return false
	}

	_, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return other, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithAudience(Audience),
	)
	return err == nil
}
