package middleware

import (
	"net/http"
	"strings"
	"time"

	"precast-erp/internal/model"
	"precast-erp/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Permission codes checked by RequirePermission.
const (
	PermReportsRead   = "reports.read"
	PermReportsWrite  = "reports.write"
	PermOrdersRead    = "orders.read"
	PermOrdersWrite   = "orders.write"
	PermStockRead     = "stock.read"
	PermStockWrite    = "stock.write"
	PermClientsRead   = "clients.read"
	PermClientsWrite  = "clients.write"
	PermCatalogRead   = "catalog.read"
	PermCatalogWrite  = "catalog.write"
	PermUsersRead     = "users.read"
	PermUsersWrite    = "users.write"
	PermAuditRead     = "audit.read"
	PermDashboardRead = "dashboard.read"
)

const tokenCookie = "access_token"

var allPermissions = []string{
	PermReportsRead, PermReportsWrite,
	PermOrdersRead, PermOrdersWrite,
	PermStockRead, PermStockWrite,
	PermClientsRead, PermClientsWrite,
	PermCatalogRead, PermCatalogWrite,
	PermUsersRead, PermUsersWrite,
	PermAuditRead, PermDashboardRead,
}

var floorPermissions = []string{PermReportsRead, PermReportsWrite, PermCatalogRead, PermStockRead}

var rolePermissions = map[string][]string{
	model.RoleAdmin:      allPermissions,
	model.RoleManager:    without(allPermissions, PermUsersWrite),
	model.RoleProduction: floorPermissions,
	model.RoleUser:       floorPermissions,
}

func without(perms []string, drop string) []string {
	out := make([]string, 0, len(perms))
	for _, p := range perms {
		if p != drop {
			out = append(out, p)
		}
	}
	return out
}

// PermissionsForRole returns the permission codes granted to role, used by /me.
func PermissionsForRole(role string) []string {
	perms := rolePermissions[role]
	out := make([]string, len(perms))
	copy(out, perms)
	return out
}

// HasPermission reports whether role grants perm.
func HasPermission(role, perm string) bool {
	for _, p := range rolePermissions[role] {
		if p == perm {
			return true
		}
	}
	return false
}

// Auth validates the JWT issued at login, read from the access_token cookie
// or an Authorization: Bearer header.
type Auth struct {
	secret       []byte
	secureCookie bool
}

// NewAuth builds the middleware. secureCookie switches the token cookie to
// SameSite=None; Secure for cross-origin deployments.
func NewAuth(secret string, secureCookie bool) *Auth {
	return &Auth{secret: []byte(secret), secureCookie: secureCookie}
}

// SetTokenCookie stores the access token as an HttpOnly cookie
func (a *Auth) SetTokenCookie(c *gin.Context, token string, ttl time.Duration) {
	a.sameSite(c)
	c.SetCookie(tokenCookie, token, int(ttl.Seconds()), "/", "", a.secureCookie, true)
}

// ClearTokenCookie removes the access token cookie
func (a *Auth) ClearTokenCookie(c *gin.Context) {
	a.sameSite(c)
	c.SetCookie(tokenCookie, "", -1, "/", "", a.secureCookie, true)
}

func (a *Auth) sameSite(c *gin.Context) {
	if a.secureCookie {
		c.SetSameSite(http.SameSiteNoneMode)
	} else {
		c.SetSameSite(http.SameSiteLaxMode)
	}
}

// Authenticate only checks that the caller holds a valid token.
func (a *Auth) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := a.authenticate(c); !ok {
			return
		}
		c.Next()
	}
}

// RequireRole validates the JWT token and checks if the user's role exists in the allowedRoles list
func (a *Auth) RequireRole(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole, ok := a.authenticate(c)
		if !ok {
			return
		}
		for _, role := range allowedRoles {
			if userRole == role {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Access denied: insufficient permissions"))
	}
}

// RequirePermission validates the JWT and checks the user's role grants every required permission.
func (a *Auth) RequirePermission(requiredPerms ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole, ok := a.authenticate(c)
		if !ok {
			return
		}
		for _, required := range requiredPerms {
			if !HasPermission(userRole, required) {
				c.AbortWithStatusJSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Access denied: missing permission '"+required+"'"))
				return
			}
		}
		c.Next()
	}
}

// authenticate parses the token and sets userID and userRole on the context.
// It aborts the request and returns false when the token is unusable.
func (a *Auth) authenticate(c *gin.Context) (string, bool) {
	tokenString, cookieErr := c.Cookie(tokenCookie)
	if cookieErr != nil || tokenString == "" {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Authorization is missing"))
			return "", false
		}
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid authorization format. Expected 'Bearer <token>'"))
			return "", false
		}
		tokenString = parts[1]
	}

	claims, err := ParseToken(tokenString, a.secret)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid token"))
		return "", false
	}

	userRole, ok := claims["role"].(string)
	if !ok || !model.IsValidRole(userRole) {
		c.AbortWithStatusJSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Role not found in token"))
		return "", false
	}

	c.Set("userID", claims["sub"])
	c.Set("userRole", userRole)
	return userRole, true
}

// ParseToken verifies an HMAC-signed token and returns its claims.
func ParseToken(tokenString string, secret []byte) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}
