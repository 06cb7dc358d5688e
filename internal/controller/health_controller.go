package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

type HealthController struct {
	DB    *gorm.DB
	Redis *redis.Client
}

func NewHealthController(db *gorm.DB, rdb *redis.Client) *HealthController {
	return &HealthController{DB: db, Redis: rdb}
}

// Check 서비스 상태 확인
// @Summary 헬스 체크
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func (ctl *HealthController) Check(c *gin.Context) {
	status := http.StatusOK
	checks := gin.H{"status": "ok"}

	if sqlDB, err := ctl.DB.DB(); err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
		checks["database"] = "down"
		checks["status"] = "degraded"
		status = http.StatusServiceUnavailable
	} else {
		checks["database"] = "up"
	}

	if ctl.Redis != nil {
		if err := ctl.Redis.Ping(c.Request.Context()).Err(); err != nil {
			checks["redis"] = "down"
		} else {
			checks["redis"] = "up"
		}
	}

	c.JSON(status, checks)
}
