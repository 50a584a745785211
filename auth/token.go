package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc"
	"github.com/golang-jwt/jwt/v4"

	"boardkit/domain"
)

const defaultTokenTTL = 24 * time.Hour

var (
	errMissingAuthorization = errors.New("missing authorization header")
	errBadAuthorization     = errors.New("bad auth header")
)

// Issuer mints HS256 bearer tokens for locally authenticated users.
type Issuer struct {
	Secret   []byte
	Issuer   string
	Audience string
	TTL      time.Duration
}

// NewIssuer creates an Issuer with the default token lifetime.
func NewIssuer(secret []byte, issuer, audience string) *Issuer {
	return &Issuer{Secret: secret, Issuer: issuer, Audience: audience, TTL: defaultTokenTTL}
}

// Mint signs a token carrying the user identity and expiry.
func (i *Issuer) Mint(userID, email string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   userID,
		"email": email,
		"iat":   now.Unix(),
		"nbf":   now.Unix(),
		"exp":   now.Add(i.TTL).Unix(),
	}
	if i.Issuer != "" {
		claims["iss"] = i.Issuer
	}
	if i.Audience != "" {
		claims["aud"] = i.Audience
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.Secret)
}

// Verifier validates incoming bearer tokens. It runs in one of two modes:
// HS256 with a shared secret for locally minted tokens, or RS256 against a
// JWKS endpoint when tokens come from an external identity provider.
type Verifier struct {
	JWKS     *keyfunc.JWKS
	Secret   []byte
	Audience string
	Issuer   string

	parser *jwt.Parser
}

// NewVerifier creates an HS256 verifier sharing the issuer's secret.
func NewVerifier(secret []byte, audience, issuer string) *Verifier {
	return &Verifier{
		Secret:   secret,
		Audience: audience,
		Issuer:   issuer,
		parser:   jwt.NewParser(jwt.WithValidMethods([]string{"HS256"})),
	}
}

// NewJWKSVerifier creates an RS256 verifier backed by a JWKS key set.
func NewJWKSVerifier(jwks *keyfunc.JWKS, audience, issuer string) *Verifier {
	return &Verifier{
		JWKS:     jwks,
		Audience: audience,
		Issuer:   issuer,
		parser:   jwt.NewParser(jwt.WithValidMethods([]string{"RS256"})),
	}
}

// UserIDFromAuthHeader extracts the authenticated user identifier from an
// Authorization header value.
func (v *Verifier) UserIDFromAuthHeader(h string) (string, error) {
	token, err := bearerToken(h)
	if err != nil {
		return "", domain.AuthenticationError{Message: err.Error()}
	}
	userID, err := v.userIDFromToken(token)
	if err != nil {
		return "", domain.AuthenticationError{Message: err.Error()}
	}
	return userID, nil
}

func (v *Verifier) userIDFromToken(tokenStr string) (string, error) {
	var parsed *jwt.Token
	var err error
	if v.JWKS != nil {
		parsed, err = v.parser.Parse(tokenStr, v.JWKS.Keyfunc)
	} else {
		parsed, err = v.parser.Parse(tokenStr, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("invalid signing method")
			}
			return v.Secret, nil
		})
	}
	if err != nil {
		return "", err
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("invalid claims")
	}

	now := time.Now().Unix()
	if !claims.VerifyExpiresAt(now, true) {
		return "", errors.New("token expired")
	}
	if !claims.VerifyNotBefore(now, false) {
		return "", errors.New("token not valid yet")
	}
	if !claims.VerifyIssuedAt(now, false) {
		return "", errors.New("token used before issued")
	}
	if v.Audience != "" && !claims.VerifyAudience(v.Audience, false) {
		return "", errors.New("invalid audience")
	}
	if v.Issuer != "" && !claims.VerifyIssuer(v.Issuer, false) {
		return "", errors.New("invalid issuer")
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", errors.New("missing sub")
	}
	return sub, nil
}

// bearerToken strips the Bearer prefix and sanity-checks the JWT shape.
func bearerToken(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", errMissingAuthorization
	}
	token, ok := strings.CutPrefix(raw, "Bearer ")
	if !ok || token == "" {
		return "", errBadAuthorization
	}
	if strings.Count(token, ".") != 2 {
		return "", errBadAuthorization
	}
	return token, nil
}
