package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"love-letter/internal/database"
	"love-letter/internal/logging"
)

// ListTravelCountries returns the travel map, visited countries first.
func (h *Handlers) ListTravelCountries(w http.ResponseWriter, r *http.Request) {
	h.writeTravelCountries(w, r)
}

func (h *Handlers) writeTravelCountries(w http.ResponseWriter, r *http.Request) {
	countries, err := h.db.ListTravelCountries(r.Context())
	if err != nil {
		logging.Error("Failed to list travel countries: %v", err)
		writeJSONError(w, "failed to load travel map", http.StatusInternalServerError)
		return
	}
	if countries == nil {
		countries = []*database.TravelCountry{}
	}
	writeJSON(w, countries)
}

// ListCountryOptions returns the full country catalog for the picker.
func (h *Handlers) ListCountryOptions(w http.ResponseWriter, r *http.Request) {
	options, err := h.countries.All(r.Context())
	if err != nil {
		logging.Error("Failed to load country catalog: %v", err)
		writeJSONError(w, "country catalog is unavailable", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, options)
}

// AddTravelCountry adds a planned country by its ISO alpha-3 code.
func (h *Handlers) AddTravelCountry(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code string `json:"code"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if code == "" {
		writeJSONError(w, "a country code is required", http.StatusBadRequest)
		return
	}

	option, err := h.countries.FindByCode(r.Context(), code)
	if err != nil {
		logging.Error("Failed to resolve country %s: %v", code, err)
		writeJSONError(w, "country catalog is unavailable", http.StatusServiceUnavailable)
		return
	}
	if option == nil {
		writeJSONError(w, "unknown country code", http.StatusBadRequest)
		return
	}

	existing, err := h.db.GetTravelCountryByCode(r.Context(), code)
	if err != nil {
		logging.Error("Failed to check travel country %s: %v", code, err)
		writeJSONError(w, "failed to add country", http.StatusInternalServerError)
		return
	}
	if existing != nil {
		writeJSONError(w, "that country is already on the map", http.StatusConflict)
		return
	}

	country := &database.TravelCountry{
		ID:          uuid.NewString(),
		CountryCode: option.Code,
		CountryName: option.Name,
		CreatedAt:   time.Now().UTC(),
	}
	if err := h.db.InsertTravelCountry(r.Context(), country); err != nil {
		logging.Error("Failed to add travel country %s: %v", code, err)
		writeJSONError(w, "failed to add country", http.StatusInternalServerError)
		return
	}

	writeCreated(w, country)
}

// SetTravelCountryVisited flips the visited flag on a country.
func (h *Handlers) SetTravelCountryVisited(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req struct {
		Visited bool `json:"visited"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.db.SetTravelCountryVisited(r.Context(), id, req.Visited); err != nil {
		logging.Error("Failed to update travel country %s: %v", id, err)
		writeJSONError(w, "failed to update country", http.StatusInternalServerError)
		return
	}

	h.writeTravelCountries(w, r)
}

// DeleteTravelCountry removes a country from the map.
func (h *Handlers) DeleteTravelCountry(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.db.DeleteTravelCountry(r.Context(), id); err != nil {
		logging.Error("Failed to delete travel country %s: %v", id, err)
		writeJSONError(w, "failed to delete country", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]string{"status": "deleted"})
}
