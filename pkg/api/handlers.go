package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/mail"
	"strconv"

	"github.com/batcomd/batcomd/pkg/roster"
	"github.com/batcomd/batcomd/pkg/tasks"
	"github.com/batcomd/batcomd/pkg/validation"
)

// maxBodySize caps request bodies. The API only ever receives small
// JSON documents.
const maxBodySize = 1 << 20

func (a *API) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Welcome to the Batcomputer API Interface. Try /batcave-display for HTML view.",
	})
}

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"uptime":  a.Uptime(),
		"version": a.cfg.Server.Version,
	})
}

func (a *API) handleStatus(w http.ResponseWriter, r *http.Request) {
	stock := a.catalog.InStockCount()
	total := a.catalog.Count()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":           fmt.Sprintf("%d/%d gadget types in stock.", stock, total),
		"gadgets_in_stock": stock,
	})
}

func (a *API) handleScanLocation(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Scanning location: " + titleCase(name),
	})
}

func (a *API) handleLocationDetails(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	minThreat, err := queryInt(r, "min_threat_level", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	title := titleCase(name)
	writeJSON(w, http.StatusOK, map[string]any{
		"location":          title,
		"filter_min_threat": minThreat,
		"data":              fmt.Sprintf("Intel report for %s with threat level > %d would go here.", title, minThreat),
	})
}

func (a *API) handleRogueCase(w http.ResponseWriter, r *http.Request) {
	caseID, err := strconv.ParseInt(r.PathValue("caseId"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Case ID must be an integer.")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"rogue":   titleCase(r.PathValue("rogue")),
		"case_id": caseID,
		"status":  "Case file found",
	})
}

func (a *API) handleSearchDatabase(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 10)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	keyword := r.URL.Query().Get("keyword")
	if keyword == "" {
		writeJSON(w, http.StatusOK, map[string]any{
			"message":       "Provide a 'keyword' query parameter to search the database.",
			"results_limit": limit,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"searching_for_keyword": keyword,
		"results_limit":         limit,
	})
}

func (a *API) handleGetGadget(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Gadget ID must be an integer.")
		return
	}

	gadget, err := a.catalog.Get(id)
	if err != nil {
		a.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"gadget_id": id,
		"status":    "Located in inventory",
		"details":   gadget,
	})
}

// handleCreateGadget validates a gadget spec and reports what would
// happen. The inventory itself is fixed, so nothing is ever stored.
func (a *API) handleCreateGadget(w http.ResponseWriter, r *http.Request) {
	body, ok := a.decodeBody(w, r, validation.GadgetSpecSchema)
	if !ok {
		return
	}
	name, _ := body["name"].(string)

	if a.catalog.NameExists(name) {
		writeError(w, http.StatusBadRequest,
			fmt.Sprintf("Gadget specification for '%s' already exists. Use PUT to update or choose a different name.", name))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message":       fmt.Sprintf("Gadget spec '%s' would be created (simulation).", name),
		"received_data": body,
	})
}

func (a *API) handleFilterGadgets(w http.ResponseWriter, r *http.Request) {
	minUtility, err := queryInt(r, "min_utility", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var maxUtility any = "No upper limit"
	if raw := r.URL.Query().Get("max_utility"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "max_utility must be an integer.")
			return
		}
		maxUtility = v
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"filtering_gadgets_by": map[string]any{
			"min_utility": minUtility,
			"max_utility": maxUtility,
		},
	})
}

func (a *API) handleCreateContact(w http.ResponseWriter, r *http.Request) {
	body, ok := a.decodeBody(w, r, validation.ContactSchema)
	if !ok {
		return
	}

	contact := roster.Contact{}
	contact.Name, _ = body["name"].(string)
	if aff, ok := body["affiliation"].(string); ok {
		contact.Affiliation = aff
	}
	if tl, ok := body["trust_level"].(float64); ok {
		contact.TrustLevel = int(tl)
	}

	stored, err := a.roster.Create(contact)
	if err != nil {
		a.writeDomainError(w, err)
		return
	}
	a.log.Info("contact created", "id", stored.ID, "name", stored.Name)
	writeJSON(w, http.StatusCreated, stored)
}

func (a *API) handleListContacts(w http.ResponseWriter, r *http.Request) {
	skip, err := queryInt(r, "skip", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	limit, err := queryInt(r, "limit", 100)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"total":    a.roster.Count(),
		"skip":     skip,
		"limit":    limit,
		"contacts": a.roster.Page(skip, limit),
	})
}

func (a *API) handleClearContacts(w http.ResponseWriter, r *http.Request) {
	a.roster.Clear()
	a.log.Info("contact roster cleared")
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleCurrentUser(w http.ResponseWriter, r *http.Request) {
	user, err := a.sessionUser()
	if err != nil {
		a.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (a *API) handleGCPDFiles(w http.ResponseWriter, r *http.Request) {
	identity, err := a.verifyAPIKey(r)
	if err != nil {
		a.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":     "Access granted to secure GCPD files.",
		"accessed_by": identity,
	})
}

func (a *API) handleControlPanel(w http.ResponseWriter, r *http.Request) {
	user, err := a.requireAdmin()
	if err != nil {
		a.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Welcome to the Batcave Control Panel, %s!", titleCase(user.Username)),
	})
}

func (a *API) handleLogActivity(w http.ResponseWriter, r *http.Request) {
	email := r.PathValue("email")
	if !looksLikeEmail(email) {
		writeError(w, http.StatusBadRequest, "Path parameter must be a valid email address.")
		return
	}

	activity := r.URL.Query().Get("activity_description")
	if activity == "" {
		activity = "Generic activity logged."
	}

	taskID, err := a.runner.Schedule("log-activity",
		tasks.LogActivity(a.cfg.Paths.LogDir, email, activity))
	if err != nil {
		a.writeDomainError(w, err)
		return
	}

	a.log.Debug("activity log task queued", "task_id", taskID, "email", email)
	writeJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Activity logging initiated for %s.", email),
	})
}

func (a *API) handleRequestIntelReport(w http.ResponseWriter, r *http.Request) {
	body, ok := a.decodeBody(w, r, validation.IntelReportSchema)
	if !ok {
		return
	}
	email, _ := body["recipient_email"].(string)
	name, _ := body["report_name"].(string)

	taskID, err := a.runner.Schedule("compile-intel-report",
		tasks.CompileIntelReport(name, email, a.cfg.Tasks.ReportDelay.Std()))
	if err != nil {
		a.writeDomainError(w, err)
		return
	}

	a.log.Debug("intel report task queued", "task_id", taskID, "report", name)
	writeJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Intel report '%s' compilation requested for %s. Alfred is on it.", name, email),
	})
}

// decodeBody reads, decodes, and validates a JSON request body. On
// failure it writes the error response and returns ok=false.
func (a *API) decodeBody(w http.ResponseWriter, r *http.Request, schema *validation.Schema) (map[string]any, bool) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read request body.")
		return nil, false
	}

	var body map[string]any
	if len(data) > 0 {
		if err := json.Unmarshal(data, &body); err != nil {
			writeError(w, http.StatusBadRequest, "Request body must be valid JSON.")
			return nil, false
		}
	}

	if result := schema.Validate(body); !result.Valid {
		writeError(w, http.StatusBadRequest, "Validation failed: "+result.Detail())
		return nil, false
	}
	return body, true
}

func looksLikeEmail(s string) bool {
	_, err := mail.ParseAddress(s)
	return err == nil
}

func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", name)
	}
	return v, nil
}
