package security

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type TokenType string

const (
	AccessToken  TokenType = "access"
	RefreshToken TokenType = "refresh"
)

var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("invalid token")
)

// Claims carries the user ID in the subject and the token kind in typ
type Claims struct {
	Type TokenType `json:"typ"`
	jwt.RegisteredClaims
}

// UserID parses the subject back into a user ID
func (c *Claims) UserID() (uint, error) {
	id, err := strconv.ParseUint(c.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w, bad subject", ErrTokenInvalid)
	}
	return uint(id), nil
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// Tokens issues and verifies HMAC signed JWTs
type Tokens struct {
	secret     []byte
	method     jwt.SigningMethod
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewTokens accepts HS256, HS384 and HS512
func NewTokens(secret, algorithm string, accessTTL, refreshTTL time.Duration) (*Tokens, error) {
	if secret == "" {
		return nil, errors.New("empty token secret")
	}

	method, ok := jwt.GetSigningMethod(algorithm).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("unsupported signing algorithm %q", algorithm)
	}

	return &Tokens{
		secret:     []byte(secret),
		method:     method,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}, nil
}

func (t *Tokens) sign(userID uint, typ TokenType, ttl time.Duration) (string, error) {
	now := t.now()

	c := Claims{
		Type: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	return jwt.NewWithClaims(t.method, c).SignedString(t.secret)
}

// Access issues a new access token for userID
func (t *Tokens) Access(userID uint) (string, error) {
	return t.sign(userID, AccessToken, t.accessTTL)
}

// Pair issues a fresh access and refresh token for userID
func (t *Tokens) Pair(userID uint) (*TokenPair, error) {
	access, err := t.sign(userID, AccessToken, t.accessTTL)
	if err != nil {
		return nil, err
	}

	refresh, err := t.sign(userID, RefreshToken, t.refreshTTL)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
	}, nil
}

// Verify checks the signature, the expiry and that the token is of the wanted
// type. It returns ErrTokenExpired or ErrTokenInvalid on failure.
func (t *Tokens) Verify(token string, want TokenType) (*Claims, error) {
	var c Claims

	_, err := jwt.ParseWithClaims(token, &c, func(*jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{t.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w, %w", ErrTokenInvalid, err)
	}

	if c.Type != want {
		return nil, fmt.Errorf("%w, expected %s token", ErrTokenInvalid, want)
	}

	if _, err := c.UserID(); err != nil {
		return nil, err
	}

	return &c, nil
}
