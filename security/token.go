package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/viper"
)

const (
	KindUser  = "user"
	KindAdmin = "admin"

	// Purpose claim carried only by password-reset tokens so a session
	// token can never be replayed as one
	PurposeReset = "password-reset"

	UserSessionTTL = 7 * 24 * time.Hour
	ResetTokenTTL  = 15 * time.Minute
)

var ErrInvalidToken = errors.New("invalid or expired token")

// Claims is the decoded shape of every token this service issues.
type Claims struct {
	SubjectID string
	Kind      string
	Purpose   string
}

// MakeSessionToken signs a long-lived token proving an authenticated
// identity of the given kind.
func MakeSessionToken(subjectID, kind string, ttl time.Duration) (string, error) {
	return makeToken(jwt.MapClaims{
		"sub":  subjectID,
		"kind": kind,
		"iat":  time.Now().Unix(),
		"exp":  time.Now().Add(ttl).Unix(),
	})
}

// MakeResetToken signs a short-lived token authorizing exactly one
// password change for the given user.
func MakeResetToken(subjectID string) (string, error) {
	return makeToken(jwt.MapClaims{
		"sub":     subjectID,
		"kind":    KindUser,
		"purpose": PurposeReset,
		"iat":     time.Now().Unix(),
		"exp":     time.Now().Add(ResetTokenTTL).Unix(),
	})
}

// ParseToken verifies the signature and expiry of a token and returns its
// claims. Any failure comes back as ErrInvalidToken, callers don't get to
// know why.
func ParseToken(tokenStr string) (*Claims, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %s", t.Method.Alg())
		}

		return []byte(viper.GetString("jwt.secret")), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return nil, ErrInvalidToken
	}

	kind, ok := claims["kind"].(string)
	if !ok {
		return nil, ErrInvalidToken
	}

	exp, ok := claims["exp"].(float64)
	if !ok || time.Now().Unix() >= int64(exp) {
		return nil, ErrInvalidToken
	}

	purpose, _ := claims["purpose"].(string)

	return &Claims{
		SubjectID: sub,
		Kind:      kind,
		Purpose:   purpose,
	}, nil
}

func makeToken(c jwt.MapClaims) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	return t.SignedString([]byte(viper.GetString("jwt.secret")))
}
