package handlers

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"ecg-synth/internal/api/models"
	"ecg-synth/internal/config"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ScenarioHandler lists the scenario YAML files shipped with the server
type ScenarioHandler struct {
	dir    string
	logger *zap.Logger
}

// NewScenarioHandler creates a scenario handler. An empty dir means ./examples/scenarios.
func NewScenarioHandler(dir string, logger *zap.Logger) *ScenarioHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if dir == "" {
		dir = filepath.Join("examples", "scenarios")
	}
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	return &ScenarioHandler{dir: dir, logger: logger}
}

// ListScenarios handles GET /api/v1/scenarios
func (h *ScenarioHandler) ListScenarios(c *gin.Context) {
	scenarios := []models.ScenarioInfo{}

	entries, err := os.ReadDir(h.dir)
	if err != nil {
		h.logger.Debug("scenario directory unreadable", zap.String("dir", h.dir), zap.Error(err))
		c.JSON(http.StatusOK, gin.H{"scenarios": scenarios})
		return
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(h.dir, entry.Name())
		cfg, err := config.Load(path)
		if err != nil {
			h.logger.Warn("skipping invalid scenario", zap.String("file", path), zap.Error(err))
			continue
		}
		scenarios = append(scenarios, models.ScenarioInfo{
			ID:     strings.TrimSuffix(entry.Name(), ".yaml"),
			Preset: cfg.Preset,
			File:   path,
		})
	}

	c.JSON(http.StatusOK, gin.H{"scenarios": scenarios})
}
