package handlers

import (
	"net/http"

	"ecg-synth/internal/api/models"
	"ecg-synth/internal/preset"

	"github.com/gin-gonic/gin"
)

// ListPresets handles GET /api/v1/presets
func ListPresets(c *gin.Context) {
	all := preset.All()
	out := make([]models.PresetInfo, 0, len(all))
	for _, p := range all {
		out = append(out, models.PresetInfo{
			Name:        p.Name,
			Description: p.Description,
			Config:      p.Config(),
		})
	}
	c.JSON(http.StatusOK, gin.H{"presets": out})
}
