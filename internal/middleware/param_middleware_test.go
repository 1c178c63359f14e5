package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestExtractUintParam(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.GET("/courses/:id", ExtractUintParam("id", "courseID"), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"course_id": c.MustGet("courseID").(uint)})
	})

	tests := []struct {
		name string
		path string
		code int
	}{
		{"валидный id", "/courses/12", http.StatusOK},
		{"нечисловой id", "/courses/abc", http.StatusBadRequest},
		{"нулевой id", "/courses/0", http.StatusBadRequest},
		{"отрицательный id", "/courses/-5", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest("GET", tt.path, nil)
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.code, w.Code)
		})
	}
}
