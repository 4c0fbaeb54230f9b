package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"precast-erp/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret"

func signed(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("SignedString() error = %v", err)
	}
	return s
}

func newRouter(auth *Auth, perm string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/x", auth.RequirePermission(perm), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("userID")+"/"+c.GetString("userRole"))
	})
	return r
}

func TestRequirePermission(t *testing.T) {
	auth := NewAuth(testSecret, false)
	exp := time.Now().Add(time.Hour).Unix()

	tests := []struct {
		name   string
		perm   string
		header string
		want   int
	}{
		{"missing header", PermOrdersRead, "", http.StatusUnauthorized},
		{"bad format", PermOrdersRead, "Token abc", http.StatusUnauthorized},
		{"wrong secret", PermOrdersRead, "Bearer " + signed(t, "other", jwt.MapClaims{"sub": "u1", "role": "admin", "exp": exp}), http.StatusUnauthorized},
		{"expired", PermOrdersRead, "Bearer " + signed(t, testSecret, jwt.MapClaims{"sub": "u1", "role": "admin", "exp": time.Now().Add(-time.Hour).Unix()}), http.StatusUnauthorized},
		{"unknown role", PermReportsRead, "Bearer " + signed(t, testSecret, jwt.MapClaims{"sub": "u1", "role": "root", "exp": exp}), http.StatusForbidden},
		{"production lacks orders", PermOrdersRead, "Bearer " + signed(t, testSecret, jwt.MapClaims{"sub": "u1", "role": "production", "exp": exp}), http.StatusForbidden},
		{"production writes reports", PermReportsWrite, "Bearer " + signed(t, testSecret, jwt.MapClaims{"sub": "u1", "role": "production", "exp": exp}), http.StatusOK},
		{"manager reads orders", PermOrdersRead, "Bearer " + signed(t, testSecret, jwt.MapClaims{"sub": "u1", "role": "manager", "exp": exp}), http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/x", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			newRouter(auth, tt.perm).ServeHTTP(w, req)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d (body %s)", w.Code, tt.want, w.Body.String())
			}
		})
	}
}

func TestTokenFromCookie(t *testing.T) {
	auth := NewAuth(testSecret, false)
	token := signed(t, testSecret, jwt.MapClaims{"sub": "u7", "role": "admin", "exp": time.Now().Add(time.Hour).Unix()})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.AddCookie(&http.Cookie{Name: tokenCookie, Value: token})
	w := httptest.NewRecorder()
	newRouter(auth, PermUsersWrite).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if got := w.Body.String(); got != "u7/admin" {
		t.Errorf("context = %q, want u7/admin", got)
	}
}

func TestRolePermissions(t *testing.T) {
	if HasPermission(model.RoleManager, PermUsersWrite) {
		t.Error("manager must not manage users")
	}
	if !HasPermission(model.RoleManager, PermAuditRead) {
		t.Error("manager should read the audit log")
	}
	if HasPermission(model.RoleUser, PermStockWrite) {
		t.Error("user must not adjust stock")
	}
	if got := len(PermissionsForRole(model.RoleAdmin)); got != len(allPermissions) {
		t.Errorf("admin permissions = %d, want %d", got, len(allPermissions))
	}
	if got := PermissionsForRole("nobody"); len(got) != 0 {
		t.Errorf("unknown role permissions = %v, want none", got)
	}
}
