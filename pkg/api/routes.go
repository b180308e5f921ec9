package api

import "net/http"

// registerRoutes wires every endpoint onto the mux using method and
// path patterns.
func (a *API) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", a.handleRoot)
	mux.HandleFunc("GET /health", a.handleHealth)
	mux.HandleFunc("GET /status", a.handleStatus)

	mux.HandleFunc("GET /locations/{name}", a.handleScanLocation)
	mux.HandleFunc("GET /locations/{name}/details", a.handleLocationDetails)
	mux.HandleFunc("GET /rogues/{rogue}/cases/{caseId}", a.handleRogueCase)
	mux.HandleFunc("GET /search-database", a.handleSearchDatabase)

	mux.HandleFunc("GET /gadgets/{id}", a.handleGetGadget)
	mux.HandleFunc("POST /gadgets", a.handleCreateGadget)
	mux.HandleFunc("GET /filter-gadgets", a.handleFilterGadgets)

	mux.HandleFunc("POST /contacts", a.handleCreateContact)
	mux.HandleFunc("GET /contacts", a.handleListContacts)
	mux.HandleFunc("DELETE /contacts", a.handleClearContacts)
	mux.HandleFunc("GET /contacts/me", a.handleCurrentUser)

	mux.HandleFunc("GET /gcpd-files", a.handleGCPDFiles)
	mux.HandleFunc("GET /batcave/control-panel", a.handleControlPanel)

	mux.HandleFunc("GET /intel/reports", a.handleIntelReports)
	mux.HandleFunc("GET /intel/contacts/{id}", a.handleIntelContact)

	mux.HandleFunc("POST /log-activity/{email}", a.handleLogActivity)
	mux.HandleFunc("POST /request-intel-report", a.handleRequestIntelReport)

	mux.HandleFunc("GET /batcave-display", a.handleBatcaveDisplay)
	mux.HandleFunc("GET /contacts-view", a.handleContactsView)

	fs := http.FileServer(http.Dir(a.cfg.Paths.StaticDir))
	mux.Handle("GET /static/", http.StripPrefix("/static/", fs))
}
