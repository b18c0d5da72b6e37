package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/verdano/plantcore/internal/actuator"
	"github.com/verdano/plantcore/internal/device"
)

// commandRequest is the body for manual actuation requests.
type commandRequest struct {
	Cmd string `json:"cmd"`
}

// handleSendCommand publishes a manual actuation command to a plant node.
// The plant must be registered; commands to unknown plants are rejected
// rather than published into the void.
func (s *Server) handleSendCommand(w http.ResponseWriter, r *http.Request) {
	plantID := chi.URLParam(r, "plantId")

	if s.dispatcher == nil {
		writeUnavailable(w, "actuation is not available")
		return
	}

	if _, err := s.registry.GetDevice(r.Context(), plantID); err != nil {
		if errors.Is(err, device.ErrDeviceNotFound) {
			writeNotFound(w, "plant not found: "+plantID)
			return
		}
		writeInternalError(w, "failed to get plant")
		return
	}

	var req commandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	cmd := actuator.Command(req.Cmd)
	if err := s.dispatcher.SendCommand(plantID, cmd); err != nil {
		switch {
		case errors.Is(err, actuator.ErrInvalidCommand):
			writeError(w, http.StatusBadRequest, ErrCodeValidation, "unknown command: "+req.Cmd)
		case errors.Is(err, actuator.ErrNotConnected):
			writeUnavailable(w, "broker connection is down")
		default:
			writeInternalError(w, "failed to send command")
		}
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]any{
		"plantId": plantID,
		"cmd":     cmd,
		"status":  "dispatched",
	})
}
