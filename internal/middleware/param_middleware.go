package middleware

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// ExtractUintParam извлекает числовой параметр маршрута и кладет его
// в контекст Gin под ключом contextKey. Идентификаторы сущностей
// (курсы, викторины, файлы, участники) — uint, поэтому парсинг 32-битный;
// ноль отбрасывается: первичные ключи начинаются с единицы.
func ExtractUintParam(paramName, contextKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.Param(paramName)
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil || id == 0 {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"error": fmt.Sprintf("Invalid %s parameter", paramName),
			})
			return
		}
		c.Set(contextKey, uint(id))
		c.Next()
	}
}
