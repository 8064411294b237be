package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prognoz-ai/prognoz-go/internal/datagen"
)

// CatalogHandler serves the selector lists the dashboard renders.
type CatalogHandler struct{}

func NewCatalogHandler() *CatalogHandler {
	return &CatalogHandler{}
}

// GetRegions lists regions with curated apartment price levels.
func (h *CatalogHandler) GetRegions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"regions": datagen.AvailableRegions(),
		"rooms":   datagen.AvailableRoomOptions(),
	})
}

// GetLanguages lists programming languages with curated salary levels.
func (h *CatalogHandler) GetLanguages(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"languages": datagen.AvailableLanguages(),
	})
}
