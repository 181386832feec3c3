package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Health handles GET /healthz requests.
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
