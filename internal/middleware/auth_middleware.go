package middleware

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"taskup/internal/auth"
	"taskup/internal/model"
	"taskup/internal/repository"
)

const (
	UserIDKey = "userID"
	OrgIDKey  = "organizationID"
	RoleKey   = "memberRole"
)

type TokenParser interface {
	ParseToken(token string) (*auth.Session, error)
}

type MemberLookup interface {
	Get(ctx context.Context, orgID, userID uuid.UUID) (*model.Member, error)
}

// JWTAuthMiddleware проверяет токен и членство пользователя в активной организации
func JWTAuthMiddleware(tokens TokenParser, members MemberLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header format must be Bearer {token}"})
			return
		}

		session, err := tokens.ParseToken(parts[1])
		if errors.Is(err, auth.ErrInvalidClaims) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid user ID in token"})
			return
		}
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		member, err := members.Get(c.Request.Context(), session.ActiveOrganizationID, session.UserID)
		if errors.Is(err, repository.ErrMemberNotFound) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "User is not a member of the active organization"})
			return
		}
		if err != nil {
			log.Printf("❌ Membership lookup failed: %v", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify membership"})
			return
		}

		c.Set(UserIDKey, session.UserID)
		c.Set(OrgIDKey, session.ActiveOrganizationID)
		c.Set(RoleKey, member.Role)
		c.Next()
	}
}

// SessionFrom достает данные сессии, сохраненные JWTAuthMiddleware
func SessionFrom(c *gin.Context) (auth.Session, model.MemberRole, bool) {
	userID, ok := c.Get(UserIDKey)
	if !ok {
		return auth.Session{}, "", false
	}
	orgID, ok := c.Get(OrgIDKey)
	if !ok {
		return auth.Session{}, "", false
	}
	role, _ := c.Get(RoleKey)

	uid, ok1 := userID.(uuid.UUID)
	oid, ok2 := orgID.(uuid.UUID)
	r, _ := role.(model.MemberRole)
	if !ok1 || !ok2 {
		return auth.Session{}, "", false
	}
	return auth.Session{UserID: uid, ActiveOrganizationID: oid}, r, true
}
