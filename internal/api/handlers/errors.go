package handlers

import (
	"errors"
	"net/http"

	"ecg-synth/internal/api/models"
	"ecg-synth/internal/model"

	"github.com/gin-gonic/gin"
)

func respondError(c *gin.Context, status int, code, message string, details map[string]interface{}) {
	c.JSON(status, models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// respondSimulationError maps configuration problems to 400 and everything else to 500.
func respondSimulationError(c *gin.Context, err error, details map[string]interface{}) {
	var cfgErr *model.ConfigurationError
	if errors.As(err, &cfgErr) {
		if details == nil {
			details = map[string]interface{}{}
		}
		details["field"] = cfgErr.Field
		respondError(c, http.StatusBadRequest, "INVALID_CONFIG", err.Error(), details)
		return
	}
	respondError(c, http.StatusInternalServerError, "SIMULATION_ERROR", err.Error(), details)
}

func respondStoreUnavailable(c *gin.Context) {
	respondError(c, http.StatusServiceUnavailable, "STORE_UNAVAILABLE", "Run storage is not configured on this server", nil)
}
