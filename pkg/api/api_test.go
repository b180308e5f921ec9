package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/batcomd/batcomd/pkg/config"
	"github.com/batcomd/batcomd/pkg/tasks"
)

func readActivityLog(t *testing.T, dir string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, tasks.ActivityLogFile))
	require.NoError(t, err)
	return string(data)
}

func newTestAPI(t *testing.T, mutate func(cfg *config.Config)) *API {
	t.Helper()
	cfg := config.Default()
	cfg.Paths.TemplatesDir = "../../web/templates"
	cfg.Paths.StaticDir = "../../web/static"
	cfg.Paths.LogDir = t.TempDir()
	cfg.Tasks.ReportDelay = config.Duration(0)
	if mutate != nil {
		mutate(cfg)
	}
	a := New(cfg)
	t.Cleanup(func() { a.Runner().Close() })
	return a
}

func do(t *testing.T, a *API, method, path string, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeMap(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m), "body: %s", rec.Body.String())
	return m
}

func TestRoot(t *testing.T) {
	a := newTestAPI(t, nil)
	rec := do(t, a, "GET", "/", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, decodeMap(t, rec)["message"], "Batcomputer API")
}

func TestStatus(t *testing.T) {
	a := newTestAPI(t, nil)
	rec := do(t, a, "GET", "/status", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeMap(t, rec)
	assert.Equal(t, "4/5 gadget types in stock.", body["status"])
	assert.Equal(t, float64(4), body["gadgets_in_stock"])
}

func TestScanLocation(t *testing.T) {
	a := newTestAPI(t, nil)
	rec := do(t, a, "GET", "/locations/arkham%20asylum", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Scanning location: Arkham Asylum", decodeMap(t, rec)["message"])
}

func TestLocationDetails(t *testing.T) {
	a := newTestAPI(t, nil)
	rec := do(t, a, "GET", "/locations/iceberg%20lounge/details?min_threat_level=3", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeMap(t, rec)
	assert.Equal(t, "Iceberg Lounge", body["location"])
	assert.Equal(t, float64(3), body["filter_min_threat"])

	rec = do(t, a, "GET", "/locations/docks/details?min_threat_level=high", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRogueCase(t *testing.T) {
	a := newTestAPI(t, nil)
	rec := do(t, a, "GET", "/rogues/mad%20hatter/cases/42", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeMap(t, rec)
	assert.Equal(t, "Mad Hatter", body["rogue"])
	assert.Equal(t, float64(42), body["case_id"])
	assert.Equal(t, "Case file found", body["status"])

	rec = do(t, a, "GET", "/rogues/joker/cases/not-a-number", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearchDatabase(t *testing.T) {
	a := newTestAPI(t, nil)

	rec := do(t, a, "GET", "/search-database", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeMap(t, rec)
	assert.Contains(t, body["message"], "keyword")
	assert.Equal(t, float64(10), body["results_limit"])

	rec = do(t, a, "GET", "/search-database?keyword=penguin&limit=3", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body = decodeMap(t, rec)
	assert.Equal(t, "penguin", body["searching_for_keyword"])
	assert.Equal(t, float64(3), body["results_limit"])
}

func TestGetGadget(t *testing.T) {
	a := newTestAPI(t, nil)

	rec := do(t, a, "GET", "/gadgets/1", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeMap(t, rec)
	assert.Equal(t, "Located in inventory", body["status"])
	details := body["details"].(map[string]any)
	assert.Equal(t, "Batarang", details["name"])
}

func TestGetGadgetNotFound(t *testing.T) {
	a := newTestAPI(t, nil)

	rec := do(t, a, "GET", "/gadgets/99", "", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	body := decodeMap(t, rec)
	assert.Contains(t, body["detail"], "99")
}

func TestGetGadgetBadID(t *testing.T) {
	a := newTestAPI(t, nil)
	rec := do(t, a, "GET", "/gadgets/batarang", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateGadgetSimulation(t *testing.T) {
	a := newTestAPI(t, nil)

	rec := do(t, a, "POST", "/gadgets", `{"name": "Freeze Ray", "in_stock": true}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeMap(t, rec)
	assert.Contains(t, body["message"], "simulation")

	// The fixed inventory never grows.
	rec = do(t, a, "GET", "/status", "", nil)
	assert.Equal(t, "4/5 gadget types in stock.", decodeMap(t, rec)["status"])
}

func TestCreateGadgetDuplicate(t *testing.T) {
	a := newTestAPI(t, nil)

	rec := do(t, a, "POST", "/gadgets", `{"name": "batarang", "in_stock": true}`, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeMap(t, rec)["detail"], "already exists")
}

func TestCreateGadgetInvalidBody(t *testing.T) {
	a := newTestAPI(t, nil)

	rec := do(t, a, "POST", "/gadgets", `{"name": "Freeze Ray"}`, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeMap(t, rec)["detail"], "Validation failed")

	rec = do(t, a, "POST", "/gadgets", `not json`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFilterGadgets(t *testing.T) {
	a := newTestAPI(t, nil)

	rec := do(t, a, "GET", "/filter-gadgets?min_utility=2", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	filters := decodeMap(t, rec)["filtering_gadgets_by"].(map[string]any)
	assert.Equal(t, float64(2), filters["min_utility"])
	assert.Equal(t, "No upper limit", filters["max_utility"])

	rec = do(t, a, "GET", "/filter-gadgets?min_utility=2&max_utility=8", "", nil)
	filters = decodeMap(t, rec)["filtering_gadgets_by"].(map[string]any)
	assert.Equal(t, float64(8), filters["max_utility"])
}

func TestCreateContactAssignsIDs(t *testing.T) {
	a := newTestAPI(t, nil)

	rec := do(t, a, "POST", "/contacts", `{"name": "Jim Gordon", "affiliation": "GCPD", "trust_level": 5}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	body := decodeMap(t, rec)
	assert.Equal(t, float64(1), body["id"])
	assert.Equal(t, "Jim Gordon", body["name"])

	rec = do(t, a, "POST", "/contacts", `{"name": "Alfred"}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	body = decodeMap(t, rec)
	assert.Equal(t, float64(2), body["id"])
	assert.Equal(t, float64(3), body["trust_level"], "default trust level")
}

func TestCreateContactDuplicate(t *testing.T) {
	a := newTestAPI(t, nil)

	rec := do(t, a, "POST", "/contacts", `{"name": "Gamora", "trust_level": 4}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, float64(1), decodeMap(t, rec)["id"])

	rec = do(t, a, "POST", "/contacts", `{"name": "gamora"}`, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeMap(t, rec)["detail"], "already exists")
}

func TestCreateContactValidation(t *testing.T) {
	a := newTestAPI(t, nil)

	rec := do(t, a, "POST", "/contacts", `{"affiliation": "GCPD"}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, a, "POST", "/contacts", `{"name": "Bane", "trust_level": 9}`, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeMap(t, rec)["detail"], "trust_level")
}

func TestListContactsPagination(t *testing.T) {
	a := newTestAPI(t, nil)
	for _, name := range []string{"Gordon", "Alfred", "Lucius"} {
		rec := do(t, a, "POST", "/contacts", `{"name": "`+name+`"}`, nil)
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := do(t, a, "GET", "/contacts?skip=1&limit=1", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeMap(t, rec)
	assert.Equal(t, float64(3), body["total"])
	contacts := body["contacts"].([]any)
	require.Len(t, contacts, 1)
	assert.Equal(t, "Alfred", contacts[0].(map[string]any)["name"])
}

func TestClearContactsResetsIDs(t *testing.T) {
	a := newTestAPI(t, nil)

	rec := do(t, a, "POST", "/contacts", `{"name": "Gordon"}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, a, "DELETE", "/contacts", "", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())

	// Same name is accepted again and ids restart at 1.
	rec = do(t, a, "POST", "/contacts", `{"name": "Gordon"}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, float64(1), decodeMap(t, rec)["id"])
}

func TestCurrentUser(t *testing.T) {
	a := newTestAPI(t, nil)

	rec := do(t, a, "GET", "/contacts/me", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeMap(t, rec)
	assert.Equal(t, "batman", body["username"])
	assert.Equal(t, true, body["is_active"])
}

func TestCurrentUserInactive(t *testing.T) {
	a := newTestAPI(t, func(cfg *config.Config) {
		cfg.Auth.CurrentUserInactive = true
	})

	rec := do(t, a, "GET", "/contacts/me", "", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeMap(t, rec)["detail"], "inactive")
}

func TestGCPDFilesAuthMatrix(t *testing.T) {
	a := newTestAPI(t, nil)

	// No key.
	rec := do(t, a, "GET", "/gcpd-files", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, decodeMap(t, rec)["detail"], "X-API-Key header missing")

	// Wrong key.
	rec = do(t, a, "GET", "/gcpd-files", "", map[string]string{"X-API-Key": "wrong-key"})
	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, decodeMap(t, rec)["detail"], "Invalid API Key")

	// Right key.
	rec = do(t, a, "GET", "/gcpd-files", "", map[string]string{"X-API-Key": "gcpd-secret-key-789"})
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeMap(t, rec)
	accessedBy := body["accessed_by"].(map[string]any)
	assert.Equal(t, "gcpd_officer_jim", accessedBy["user_id"])
	assert.Equal(t, []any{"read_cases"}, accessedBy["permissions"])
}

func TestControlPanel(t *testing.T) {
	a := newTestAPI(t, nil)

	rec := do(t, a, "GET", "/batcave/control-panel", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, decodeMap(t, rec)["message"], "Batcave Control Panel")
}

func TestControlPanelNonAdmin(t *testing.T) {
	a := newTestAPI(t, func(cfg *config.Config) {
		cfg.Auth.SessionUser = "robin"
	})

	rec := do(t, a, "GET", "/batcave/control-panel", "", nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, decodeMap(t, rec)["detail"], "Admin privileges required")
}

var processTimePattern = regexp.MustCompile(`^\d+\.\d{4}$`)

func TestResponseHeadersOnEveryResponse(t *testing.T) {
	a := newTestAPI(t, nil)

	paths := []struct {
		method string
		path   string
		status int
	}{
		{"GET", "/", http.StatusOK},
		{"GET", "/gadgets/99", http.StatusNotFound},
		{"GET", "/gcpd-files", http.StatusUnauthorized},
		{"DELETE", "/contacts", http.StatusNoContent},
	}
	for _, p := range paths {
		rec := do(t, a, p.method, p.path, "", nil)
		require.Equal(t, p.status, rec.Code, "%s %s", p.method, p.path)
		assert.Regexp(t, processTimePattern, rec.Header().Get("X-Process-Time"), "%s %s", p.method, p.path)
		assert.Equal(t, config.DefaultVersion, rec.Header().Get("X-API-Version"), "%s %s", p.method, p.path)
	}
}

func TestCORSAllowedOrigin(t *testing.T) {
	a := newTestAPI(t, nil)

	rec := do(t, a, "GET", "/status", "", map[string]string{"Origin": "http://localhost:8080"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "http://localhost:8080", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
	assert.Contains(t, rec.Header().Values("Vary"), "Origin")
}

func TestCORSNullOrigin(t *testing.T) {
	a := newTestAPI(t, nil)

	rec := do(t, a, "GET", "/status", "", map[string]string{"Origin": "null"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "null", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSDisallowedOrigin(t *testing.T) {
	a := newTestAPI(t, nil)

	// Plain request: processed, but no CORS grant.
	rec := do(t, a, "GET", "/status", "", map[string]string{"Origin": "http://evil.example"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))

	// Preflight: rejected outright.
	rec = do(t, a, "OPTIONS", "/status", "", map[string]string{
		"Origin":                        "http://evil.example",
		"Access-Control-Request-Method": "GET",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	a := newTestAPI(t, nil)

	rec := do(t, a, "OPTIONS", "/contacts", "", map[string]string{
		"Origin":                         "http://127.0.0.1:8080",
		"Access-Control-Request-Method":  "POST",
		"Access-Control-Request-Headers": "Content-Type, X-API-Key",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "http://127.0.0.1:8080", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "POST")
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "X-API-Key")
	// Preflights carry the stamp headers too.
	assert.Regexp(t, processTimePattern, rec.Header().Get("X-Process-Time"))
}

func TestIntelReports(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/posts", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("_limit"))
		_, _ = w.Write([]byte(`[{"userId":1,"id":1,"title":"alpha","body":"a"},{"userId":1,"id":2,"title":"beta","body":"b"}]`))
	}))
	defer upstream.Close()

	a := newTestAPI(t, func(cfg *config.Config) {
		cfg.Intel.BaseURL = upstream.URL
	})

	rec := do(t, a, "GET", "/intel/reports?limit=2", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeMap(t, rec)
	assert.Contains(t, body["message"], "fetched 2 intel reports")
	assert.Len(t, body["reports"].([]any), 2)
}

func TestIntelContactNotFound(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer upstream.Close()

	a := newTestAPI(t, func(cfg *config.Config) {
		cfg.Intel.BaseURL = upstream.URL
	})

	rec := do(t, a, "GET", "/intel/contacts/99", "", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, decodeMap(t, rec)["detail"], "99")
}

func TestIntelFeedUnreachable(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	upstream.Close()

	a := newTestAPI(t, func(cfg *config.Config) {
		cfg.Intel.BaseURL = upstream.URL
	})

	rec := do(t, a, "GET", "/intel/reports", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = do(t, a, "GET", "/intel/contacts/1", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestIntelFeedMalformedResponse(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{not json`))
	}))
	defer upstream.Close()

	a := newTestAPI(t, func(cfg *config.Config) {
		cfg.Intel.BaseURL = upstream.URL
	})

	rec := do(t, a, "GET", "/intel/reports", "", nil)
	require.Equal(t, http.StatusBadGateway, rec.Code)
	detail := decodeMap(t, rec)["detail"].(string)
	assert.Equal(t, "External intel feed returned malformed data.", detail)
	assert.NotContains(t, detail, "decode")
}

func TestIntelFeedUpstreamError(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer upstream.Close()

	a := newTestAPI(t, func(cfg *config.Config) {
		cfg.Intel.BaseURL = upstream.URL
	})

	rec := do(t, a, "GET", "/intel/contacts/1", "", nil)
	require.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, decodeMap(t, rec)["detail"], "500")
}

func TestLogActivitySchedulesTask(t *testing.T) {
	logDir := ""
	a := newTestAPI(t, func(cfg *config.Config) {
		logDir = cfg.Paths.LogDir
	})

	rec := do(t, a, "POST", "/log-activity/gordon@gcpd.gov?activity_description=Reviewed+case+files", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, decodeMap(t, rec)["message"], "Activity logging initiated for gordon@gcpd.gov")

	a.Runner().Flush()
	data := readActivityLog(t, logDir)
	assert.Contains(t, data, "User gordon@gcpd.gov activity: Reviewed case files")
}

func TestLogActivityBadEmail(t *testing.T) {
	a := newTestAPI(t, nil)

	rec := do(t, a, "POST", "/log-activity/not-an-email", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRequestIntelReport(t *testing.T) {
	a := newTestAPI(t, nil)

	rec := do(t, a, "POST", "/request-intel-report",
		`{"recipient_email": "gordon@gcpd.gov", "report_name": "arkham-census"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	msg := decodeMap(t, rec)["message"].(string)
	assert.Contains(t, msg, "arkham-census")
	assert.Contains(t, msg, "Alfred is on it")

	a.Runner().Flush()
}

func TestRequestIntelReportValidation(t *testing.T) {
	a := newTestAPI(t, nil)

	rec := do(t, a, "POST", "/request-intel-report", `{"recipient_email": "nope", "report_name": "x"}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBatcaveDisplay(t *testing.T) {
	a := newTestAPI(t, nil)

	rec := do(t, a, "GET", "/batcave-display", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	html := rec.Body.String()
	assert.Contains(t, html, "Welcome to the Batcave")
	assert.Contains(t, html, "Batarang")
	assert.Contains(t, html, "4/5 gadget types in stock.")
}

func TestContactsView(t *testing.T) {
	a := newTestAPI(t, nil)

	rec := do(t, a, "GET", "/contacts-view", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "No contacts found.")

	rec = do(t, a, "POST", "/contacts", `{"name": "Jim Gordon"}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, a, "GET", "/contacts-view", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Jim Gordon")
}

func TestViewMissingTemplate(t *testing.T) {
	a := newTestAPI(t, func(cfg *config.Config) {
		cfg.Paths.TemplatesDir = t.TempDir()
	})

	rec := do(t, a, "GET", "/batcave-display", "", nil)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, decodeMap(t, rec)["detail"], "index.html")
}

func TestStaticFiles(t *testing.T) {
	a := newTestAPI(t, nil)

	rec := do(t, a, "GET", "/static/style.css", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "font-family")
}
