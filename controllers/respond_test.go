package controllers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/GG-Muniz/FlavorLab-sub000/config"
	"github.com/GG-Muniz/FlavorLab-sub000/services"
)

func init() {
	gin.SetMode(gin.TestMode)
	config.GetLogger().SetOutput(io.Discard)
}

func TestRespondError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", &services.ValidationError{Field: "calories", Reason: "too many"}, http.StatusBadRequest},
		{"wrapped not found", fmt.Errorf("meal %w", services.ErrNotFound), http.StatusNotFound},
		{"busy", services.ErrBusy, http.StatusConflict},
		{"other", errors.New("db down"), http.StatusInternalServerError},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			respondError(c, "Test", tc.err)
			if w.Code != tc.status {
				t.Errorf("status = %d, want %d", w.Code, tc.status)
			}
		})
	}
}

func TestIDParam(t *testing.T) {
	r := gin.New()
	r.GET("/meals/:logId", func(c *gin.Context) {
		id, ok := idParam(c, "logId")
		if !ok {
			return
		}
		c.String(http.StatusOK, "%d", id)
	})
	for path, want := range map[string]int{"/meals/12": 200, "/meals/0": 400, "/meals/abc": 400, "/meals/-3": 400} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != want {
			t.Errorf("%s: status = %d, want %d", path, w.Code, want)
		}
	}
}
