package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/startin-app/startin/pkg/errors"
	"github.com/startin-app/startin/pkg/response"
)

// Health returns a simple status payload useful for readiness checks. When a
// database handle is supplied its connectivity is probed too.
func Health(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if db != nil {
			sqlDB, err := db.DB()
			if err == nil {
				err = sqlDB.PingContext(requestContext(c))
			}
			if err != nil {
				response.Error(c, errors.New("UNHEALTHY", "database unreachable", http.StatusServiceUnavailable))
				return
			}
		}
		response.Success(c, http.StatusOK, "ok", gin.H{"status": "ok"})
	}
}
