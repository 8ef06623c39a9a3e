package session

import (
	"errors"
	"time"

	"go-onboarding/internal/domain"
	onboardingerrors "go-onboarding/internal/onboarding/errors"
	"go-onboarding/internal/shared/clock"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const CookieName = "onboarding_session"

// Claims bind a session to one onboarding and to the invite that was current
// when the OTP was verified. Rotating the invite orphans the session.
type Claims struct {
	OnboardingID string `json:"oid"`
	InviteHash   string `json:"inv"`
	jwt.RegisteredClaims
}

// Cookie is what the transport layer needs to set the session cookie.
type Cookie struct {
	Name      string
	Value     string
	ExpiresAt time.Time
	MaxAge    int
}

type Issuer struct {
	secret []byte
	clock  clock.Clock
}

func NewIssuer(secret string, clk clock.Clock) (*Issuer, error) {
	if secret == "" {
		return nil, errors.New("session: secret is required")
	}
	return &Issuer{secret: []byte(secret), clock: clk}, nil
}

// Issue returns a session whose lifetime is the invite's remaining TTL.
func (i *Issuer) Issue(o *domain.Onboarding) (Cookie, error) {
	now := i.clock.Now()
	if !o.Invite.Present() || o.Invite.ExpiresAt == nil {
		return Cookie{}, onboardingerrors.ErrInviteNotFound
	}
	expiresAt := *o.Invite.ExpiresAt
	remaining := expiresAt.Sub(now)
	if remaining < time.Second {
		return Cookie{}, onboardingerrors.ErrInviteExpired
	}

	claims := Claims{
		OnboardingID: o.ID.String(),
		InviteHash:   *o.Invite.TokenHash,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   o.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return Cookie{}, err
	}

	return Cookie{
		Name:      CookieName,
		Value:     signed,
		ExpiresAt: expiresAt,
		MaxAge:    int(remaining / time.Second),
	}, nil
}

// Parse verifies signature and expiry. An expired session reads as an
// expired invite because the two share a deadline.
func (i *Issuer) Parse(token string) (*Claims, error) {
	if token == "" {
		return nil, onboardingerrors.ErrSessionInvalid
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.clock.Now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, onboardingerrors.ErrInviteExpired
		}
		return nil, onboardingerrors.ErrSessionInvalid
	}
	if !parsed.Valid || claims.OnboardingID == "" || claims.InviteHash == "" {
		return nil, onboardingerrors.ErrSessionInvalid
	}
	return claims, nil
}

func (c *Claims) OnboardingUUID() (uuid.UUID, error) {
	id, err := uuid.Parse(c.OnboardingID)
	if err != nil {
		return uuid.Nil, onboardingerrors.ErrSessionInvalid
	}
	return id, nil
}
