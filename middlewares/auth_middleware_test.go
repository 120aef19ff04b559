package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/GG-Muniz/FlavorLab-sub000/utils"
)

const testSecret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

func authRouter(secret string) *gin.Engine {
	r := gin.New()
	r.GET("/me", AuthMiddleware(secret, nil), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetUint("userID"), "email": c.GetString("email")})
	})
	return r
}

func get(r http.Handler, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthAcceptsUserIDClaim(t *testing.T) {
	tok, err := utils.GenerateJWT(testSecret, 42, "a@example.com")
	if err != nil {
		t.Fatal(err)
	}
	w := get(authRouter(testSecret), "Bearer "+tok)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	if body := w.Body.String(); body != `{"email":"a@example.com","user_id":42}` {
		t.Errorf("body = %s", body)
	}
}

func TestAuthRejects(t *testing.T) {
	good, _ := utils.GenerateJWT(testSecret, 1, "a@example.com")
	wrongKey, _ := utils.GenerateJWT("other-secret", 1, "a@example.com")
	expired, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"userId": 1,
		"exp":    time.Now().Add(-time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	noClaims, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))

	tests := []struct {
		name   string
		auth   string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"not bearer", "Basic " + good, http.StatusUnauthorized},
		{"garbage", "Bearer not-a-token", http.StatusUnauthorized},
		{"wrong key", "Bearer " + wrongKey, http.StatusUnauthorized},
		{"expired", "Bearer " + expired, http.StatusUnauthorized},
		{"no identity", "Bearer " + noClaims, http.StatusUnauthorized},
	}
	r := authRouter(testSecret)
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if w := get(r, tc.auth); w.Code != tc.status {
				t.Errorf("status = %d, want %d", w.Code, tc.status)
			}
		})
	}
}

func TestAuthWithoutSecret(t *testing.T) {
	tok, _ := utils.GenerateJWT(testSecret, 1, "")
	if w := get(authRouter(""), "Bearer "+tok); w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
}
