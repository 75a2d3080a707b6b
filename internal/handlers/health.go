package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Health reports basic liveness. This engine keeps no persisted state, so
// there are no downstream dependencies to probe here (spec.md §5: no
// database, no message broker) beyond the process itself being up.
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
