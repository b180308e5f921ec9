package api

import (
	"fmt"
	"net/http"
	"strconv"
)

// handleIntelReports relays the upstream posts feed. Transport errors
// surface as 503 and upstream failures as 502; the upstream JSON is
// passed through inside the response envelope.
func (a *API) handleIntelReports(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 5)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var userID *int
	if raw := r.URL.Query().Get("user_id"); raw != "" {
		v, convErr := strconv.Atoi(raw)
		if convErr != nil {
			writeError(w, http.StatusBadRequest, "user_id must be an integer.")
			return
		}
		userID = &v
	}

	reports, err := a.intel.Reports(r.Context(), limit, userID)
	if err != nil {
		a.log.Warn("intel feed fetch failed", "error", err)
		writeIntelError(w, err, "")
		return
	}

	filters := map[string]any{"_limit": limit}
	if userID != nil {
		filters["userId"] = *userID
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":            fmt.Sprintf("Successfully fetched %d intel reports (posts) from external source", len(reports)),
		"source":             "JSONPlaceholder API (Simulated Intel Feed)",
		"filter_params_sent": filters,
		"reports":            reports,
	})
}

// handleIntelContact relays one upstream contact record. An upstream
// 404 becomes this API's own 404 with the requested id in the detail.
func (a *API) handleIntelContact(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Contact ID must be an integer.")
		return
	}

	contact, err := a.intel.Contact(r.Context(), id)
	if err != nil {
		a.log.Warn("intel contact fetch failed", "id", id, "error", err)
		writeIntelError(w, err,
			fmt.Sprintf("Contact with ID %d not found in external source.", id))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message":      fmt.Sprintf("Successfully fetched contact %d", id),
		"source":       "JSONPlaceholder API (Simulated Contact DB)",
		"contact_data": contact,
	})
}
