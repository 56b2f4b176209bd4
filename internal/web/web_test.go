package web_test

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-telegram/bot"
	"go.uber.org/zap"

	"github.com/soletra/ig2tg/internal/config"
	"github.com/soletra/ig2tg/internal/geo"
	"github.com/soletra/ig2tg/internal/store"
	"github.com/soletra/ig2tg/internal/telegram"
	"github.com/soletra/ig2tg/internal/web"
)

const adminToken = "test-secret"

type env struct {
	router  *chi.Mux
	store   *store.SQLite
	tgCalls *[]string
}

func setup(t *testing.T) *env {
	t.Helper()

	st, err := store.OpenSQLite(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { st.Close() })

	var tgCalls []string
	fakeTG := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tgCalls = append(tgCalls, r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":true,"result":true,"description":"Webhook was set"}`))
	}))
	t.Cleanup(fakeTG.Close)

	tg, err := telegram.New("123:abc", "https://t.me/somechannel", bot.WithServerURL(fakeTG.URL))
	if err != nil {
		t.Fatal(err)
	}

	cfg := &config.Config{
		BotUsername: "trackerbot",
		ChannelURL:  "https://t.me/somechannel",
		BaseURL:     "https://clicks.example.com",
		AdminToken:  adminToken,
	}

	geoReader, _ := geo.Open("")
	adminHandler, err := web.NewAdminHandler(st, cfg, tg, geoReader, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}

	r := chi.NewRouter()
	adminHandler.RegisterRoutes(r)

	return &env{router: r, store: st, tgCalls: &tgCalls}
}

func (e *env) get(path string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, httptest.NewRequest("GET", path, nil))
	return rr
}

func (e *env) insert(t *testing.T, tok string, ts int64) {
	t.Helper()
	err := e.store.InsertClick(context.Background(), store.Click{
		Token: tok, TS: ts, IP: "203.0.113.9",
		UserAgent: "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1",
		Referrer:  "https://l.instagram.com/",
	})
	if err != nil {
		t.Fatal(err)
	}
}

// --- Auth ---

func TestAdmin_MissingToken(t *testing.T) {
	e := setup(t)
	for _, path := range []string{"/admin", "/admin/csv", "/admin/json", "/admin/set_webhook", "/admin/qr"} {
		if rr := e.get(path); rr.Code != http.StatusUnauthorized {
			t.Errorf("%s: status = %d, want 401", path, rr.Code)
		}
	}
}

func TestAdmin_WrongToken(t *testing.T) {
	e := setup(t)
	rr := e.get("/admin/csv?token=wrong")
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rr.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body["error"] != "unauthorized" {
		t.Errorf("error = %q, want generic message", body["error"])
	}
}

func TestAdmin_CorrectToken(t *testing.T) {
	e := setup(t)
	if rr := e.get("/admin/csv?token=" + adminToken); rr.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rr.Code)
	}
}

// --- CSV export ---

func TestCSV_HeaderAndColumnOrder(t *testing.T) {
	e := setup(t)
	e.insert(t, "tok1", 100)

	rr := e.get("/admin/csv?token=" + adminToken)
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("content type = %q, want text/csv", ct)
	}

	records, err := csv.NewReader(rr.Body).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	wantHeader := []string{"token", "ts", "ip", "user_agent", "referrer", "tg_user_id", "tg_username", "tg_first_name", "tg_last_name", "linked_ts"}
	if len(records) != 2 {
		t.Fatalf("records = %d, want header + 1 row", len(records))
	}
	for i, col := range wantHeader {
		if records[0][i] != col {
			t.Errorf("header[%d] = %q, want %q", i, records[0][i], col)
		}
	}
	row := records[1]
	if row[0] != "tok1" || row[1] != "100" || row[2] != "203.0.113.9" {
		t.Errorf("row = %v", row)
	}
	// Unlinked columns export as empty strings.
	for i := 5; i <= 9; i++ {
		if row[i] != "" {
			t.Errorf("row[%d] = %q, want empty", i, row[i])
		}
	}
}

func TestCSV_LinkedRow(t *testing.T) {
	e := setup(t)
	e.insert(t, "tok1", 100)
	err := e.store.LinkClick(context.Background(), "tok1", store.TGUser{ID: 42, Username: "alice", FirstName: "Alice", LastName: "A"})
	if err != nil {
		t.Fatal(err)
	}

	records, err := csv.NewReader(e.get("/admin/csv?token=" + adminToken).Body).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	row := records[1]
	if row[5] != "42" || row[6] != "alice" || row[7] != "Alice" || row[8] != "A" {
		t.Errorf("linked identity columns = %v", row[5:9])
	}
	if row[9] == "" {
		t.Error("linked_ts column should be set")
	}
}

func TestCSV_LimitCapsRows(t *testing.T) {
	e := setup(t)
	for i := int64(0); i < 5; i++ {
		e.insert(t, "tok"+string(rune('a'+i)), 100+i)
	}

	records, err := csv.NewReader(e.get("/admin/csv?token=" + adminToken + "&limit=2").Body).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 3 {
		t.Errorf("records = %d, want header + 2 rows", len(records))
	}
}

// --- JSON export ---

type jsonBody struct {
	Clicks []map[string]any `json:"clicks"`
	Total  int              `json:"total"`
}

func TestJSON_SortedNewestFirst(t *testing.T) {
	e := setup(t)
	e.insert(t, "old", 100)
	e.insert(t, "mid", 200)
	e.insert(t, "new", 300)

	rr := e.get("/admin/json?token=" + adminToken)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}

	var body jsonBody
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Total != 3 || len(body.Clicks) != 3 {
		t.Fatalf("total = %d, clicks = %d, want 3", body.Total, len(body.Clicks))
	}
	order := []string{"new", "mid", "old"}
	for i, want := range order {
		if body.Clicks[i]["token"] != want {
			t.Errorf("clicks[%d] = %v, want %q", i, body.Clicks[i]["token"], want)
		}
	}
}

func TestJSON_DerivedFields(t *testing.T) {
	e := setup(t)
	e.insert(t, "tok1", 100)

	var body jsonBody
	if err := json.NewDecoder(e.get("/admin/json?token=" + adminToken).Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	c := body.Clicks[0]
	if c["device"] != "mobile" {
		t.Errorf("device = %v, want mobile for iPhone UA", c["device"])
	}
	if c["country"] != "" {
		t.Errorf("country = %v, want empty without a GeoIP database", c["country"])
	}
	if c["tg_user_id"] != nil {
		t.Errorf("tg_user_id = %v, want null", c["tg_user_id"])
	}
}

func TestJSON_LimitCapsRows(t *testing.T) {
	e := setup(t)
	e.insert(t, "a", 100)
	e.insert(t, "b", 200)

	var body jsonBody
	if err := json.NewDecoder(e.get("/admin/json?token=" + adminToken + "&limit=1").Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Total != 1 {
		t.Errorf("total = %d, want 1", body.Total)
	}
}

// --- Dashboard ---

func TestDashboard_RendersPollingPage(t *testing.T) {
	e := setup(t)
	rr := e.get("/admin?token=" + adminToken)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	page := rr.Body.String()
	if !strings.Contains(page, "/admin/json?token=") {
		t.Error("dashboard should poll the JSON export")
	}
	if !strings.Contains(page, "setInterval") {
		t.Error("dashboard should refresh on an interval")
	}
}

// --- set_webhook ---

func TestSetWebhook_RegistersDeploymentURL(t *testing.T) {
	e := setup(t)
	rr := e.get("/admin/set_webhook?token=" + adminToken)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body = %s", rr.Code, rr.Body.String())
	}

	var body map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body["ok"] != true {
		t.Errorf("ok = %v, want true", body["ok"])
	}
	if body["url"] != "https://clicks.example.com/tg/webhook" {
		t.Errorf("url = %v", body["url"])
	}
	if len(*e.tgCalls) != 1 || !strings.HasSuffix((*e.tgCalls)[0], "/setWebhook") {
		t.Errorf("telegram calls = %v, want one setWebhook", *e.tgCalls)
	}
}

// --- QR ---

func TestQRCode_ReturnsPNG(t *testing.T) {
	e := setup(t)
	rr := e.get("/admin/qr?token=" + adminToken)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("content type = %q, want image/png", ct)
	}
	if rr.Body.Len() == 0 {
		t.Error("empty png body")
	}
}
