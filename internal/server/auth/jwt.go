// Package auth implements the token and credential primitives of the
// service: HS256 JWT issuance and verification with key rotation, and
// bcrypt password hashing.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/opavlenko/taskhub/internal/common"
)

// Token types carried in the "typ" claim.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// ExpiryLeeway is the clock-skew tolerance applied to expiry checks.
// It never applies to signature checks.
const ExpiryLeeway = 30 * time.Second

// Claims — the token payload: registered claims plus the token type.
// Subject is the user ID; refresh tokens also get a unique ID (jti)
// correlated with a row in the refresh token store.
type Claims struct {
	jwt.RegisteredClaims
	TokenType string `json:"typ"`
}

// Tokens mints and verifies the service's JWTs.
type Tokens struct {
	keys       KeySet
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewTokens(keys KeySet, accessTTL, refreshTTL time.Duration) *Tokens {
	return &Tokens{keys: keys, accessTTL: accessTTL, refreshTTL: refreshTTL}
}

// IssueAccess mints a short-lived access token for the given subject.
// Access tokens are stateless: nothing is persisted for them.
func (t *Tokens) IssueAccess(subject string) (string, error) {
	return t.sign(Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(t.accessTTL)),
		},
		TokenType: TokenTypeAccess,
	})
}

// IssueRefresh mints a refresh token for the subject and returns it together
// with its unique token ID and expiry. The caller must persist the token ID
// before handing the token out; issuance is not complete until it is stored.
func (t *Tokens) IssueRefresh(subject string) (token string, tokenID string, expiresAt time.Time, err error) {
	tokenID = uuid.NewString()
	expiresAt = time.Now().Add(t.refreshTTL)
	token, err = t.sign(Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        tokenID,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		TokenType: TokenTypeRefresh,
	})
	if err != nil {
		return "", "", time.Time{}, err
	}
	return token, tokenID, expiresAt, nil
}

// VerifyAccess checks signature, expiry (with leeway), and token type, and
// returns the subject. All failures map to the sentinel errors in common.
func (t *Tokens) VerifyAccess(token string) (string, error) {
	claims, err := t.parse(token, false)
	if err != nil {
		return "", err
	}
	if claims.TokenType != TokenTypeAccess {
		return "", common.ErrWrongTokenType
	}
	return claims.Subject, nil
}

// VerifyRefresh checks signature, expiry, and token type, and returns the
// subject and the token ID. It does not consult the refresh token store;
// that authoritative check belongs to the service layer.
func (t *Tokens) VerifyRefresh(token string) (subject, tokenID string, err error) {
	claims, err := t.parse(token, false)
	if err != nil {
		return "", "", err
	}
	if claims.TokenType != TokenTypeRefresh {
		return "", "", common.ErrWrongTokenType
	}
	return claims.Subject, claims.ID, nil
}

// RefreshClaims parses a refresh token without validating expiry, for
// operations like logout that must still work on an expired token. The
// signature and token type are always checked.
func (t *Tokens) RefreshClaims(token string) (*Claims, error) {
	claims, err := t.parse(token, true)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != TokenTypeRefresh {
		return nil, common.ErrWrongTokenType
	}
	return claims, nil
}

func (t *Tokens) sign(claims Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	token.Header["kid"] = t.keys.Current.ID

	signed, err := token.SignedString(t.keys.Current.Secret)
	if err != nil {
		return "", err
	}
	return signed, nil
}

func (t *Tokens) parse(tokenString string, skipExpiry bool) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(ExpiryLeeway),
	}
	if skipExpiry {
		opts = append(opts, jwt.WithoutClaimsValidation())
	}

	claims := &Claims{}
	token, err := jwt.NewParser(opts...).ParseWithClaims(tokenString, claims, func(tok *jwt.Token) (any, error) {
		kid, _ := tok.Header["kid"].(string)
		secret, ok := t.keys.lookup(kid)
		if !ok {
			return nil, common.ErrInvalidSignature
		}
		return secret, nil
	})
	if err != nil {
		return nil, mapJWTError(err)
	}
	if !token.Valid {
		return nil, common.ErrInvalidToken
	}
	return claims, nil
}

func mapJWTError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return common.ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, common.ErrInvalidSignature):
		return common.ErrInvalidSignature
	default:
		return common.ErrInvalidToken
	}
}
