package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/verdano/plantcore/internal/device"
)

// handleListDevices returns all registered plant profiles.
func (s *Server) handleListDevices(w http.ResponseWriter, r *http.Request) {
	devices, err := s.registry.ListDevices(r.Context())
	if err != nil {
		writeInternalError(w, "failed to list plants")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"devices": devices, "count": len(devices)})
}

// handleGetDevice returns a single plant profile by ID.
func (s *Server) handleGetDevice(w http.ResponseWriter, r *http.Request) {
	plantID := chi.URLParam(r, "plantId")

	d, err := s.registry.GetDevice(r.Context(), plantID)
	if err != nil {
		if errors.Is(err, device.ErrDeviceNotFound) {
			writeNotFound(w, "plant not found: "+plantID)
			return
		}
		writeInternalError(w, "failed to get plant")
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// handleCreateDevice registers a new plant profile.
func (s *Server) handleCreateDevice(w http.ResponseWriter, r *http.Request) {
	var d device.PlantDevice
	if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	if err := s.registry.CreateDevice(r.Context(), &d); err != nil {
		switch {
		case errors.Is(err, device.ErrDeviceExists):
			writeConflict(w, "plant already registered: "+d.PlantID)
		case errors.Is(err, device.ErrInvalidPlantID), errors.Is(err, device.ErrInvalidThresholds):
			writeError(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
		default:
			writeInternalError(w, "failed to create plant")
		}
		return
	}

	writeJSON(w, http.StatusCreated, d)
}

// handleDeleteDevice removes a plant profile.
func (s *Server) handleDeleteDevice(w http.ResponseWriter, r *http.Request) {
	plantID := chi.URLParam(r, "plantId")

	if err := s.registry.DeleteDevice(r.Context(), plantID); err != nil {
		if errors.Is(err, device.ErrDeviceNotFound) {
			writeNotFound(w, "plant not found: "+plantID)
			return
		}
		writeInternalError(w, "failed to delete plant")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleUpdateThresholds replaces a plant's advisory bounds.
// Bounds omitted from the request body fall back to the configured defaults
// during advisory evaluation.
func (s *Server) handleUpdateThresholds(w http.ResponseWriter, r *http.Request) {
	plantID := chi.URLParam(r, "plantId")

	var thresholds device.Thresholds
	if err := json.NewDecoder(r.Body).Decode(&thresholds); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	d, err := s.registry.GetDevice(r.Context(), plantID)
	if err != nil {
		if errors.Is(err, device.ErrDeviceNotFound) {
			writeNotFound(w, "plant not found: "+plantID)
			return
		}
		writeInternalError(w, "failed to get plant")
		return
	}

	d.Thresholds = thresholds
	if err := s.registry.UpdateDevice(r.Context(), d); err != nil {
		if errors.Is(err, device.ErrInvalidThresholds) {
			writeError(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
			return
		}
		writeInternalError(w, "failed to update thresholds")
		return
	}

	writeJSON(w, http.StatusOK, d)
}

// handleGetLatest returns the plant's most recent reading from the in-memory
// cache. 404 until the first message arrives.
func (s *Server) handleGetLatest(w http.ResponseWriter, r *http.Request) {
	plantID := chi.URLParam(r, "plantId")

	if s.latest == nil {
		writeNotFound(w, "no reading received yet for plant: "+plantID)
		return
	}

	reading, ok := s.latest.Get(plantID)
	if !ok {
		writeNotFound(w, "no reading received yet for plant: "+plantID)
		return
	}
	writeJSON(w, http.StatusOK, reading)
}
