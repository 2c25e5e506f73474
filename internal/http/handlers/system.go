package handlers

import (
	"database/sql"
	"net/http"

	"github.com/gin-gonic/gin"
)

type SystemHandler struct {
	DB *sql.DB
}

func (h SystemHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "rutabus backend en línea"})
}

func (h SystemHandler) DBCheck(c *gin.Context) {
	if h.DB == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "base de datos no conectada"})
		return
	}
	var count int
	if err := h.DB.QueryRowContext(c.Request.Context(), "SELECT COUNT(*) FROM routes").Scan(&count); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "fallo la consulta a la base de datos: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "conexión a base de datos OK", "routes_in_db": count})
}
