package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrInvalidClaims = errors.New("invalid claims")
)

// Session is the authenticated caller: a user acting inside an organization.
type Session struct {
	UserID               uuid.UUID
	ActiveOrganizationID uuid.UUID
}

type Claims struct {
	UserID               string `json:"user_id"`
	ActiveOrganizationID string `json:"active_organization_id"`
	jwt.RegisteredClaims
}

type JWTService struct {
	secret []byte
	issuer string
	expiry time.Duration
}

func NewJWTService(secret, issuer string, expiry time.Duration) *JWTService {
	return &JWTService{
		secret: []byte(secret),
		issuer: issuer,
		expiry: expiry,
	}
}

func (s *JWTService) GenerateToken(session Session) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:               session.UserID.String(),
		ActiveOrganizationID: session.ActiveOrganizationID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ParseToken validates the token and returns the session it carries.
// An id that parses but is not a uuid yields ErrInvalidClaims.
func (s *JWTService) ParseToken(tokenStr string) (*Session, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenStr, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, ErrInvalidClaims
	}
	orgID, err := uuid.Parse(claims.ActiveOrganizationID)
	if err != nil {
		return nil, ErrInvalidClaims
	}

	return &Session{UserID: userID, ActiveOrganizationID: orgID}, nil
}
