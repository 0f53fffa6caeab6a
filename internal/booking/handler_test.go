package booking

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/leadflow/pkg/logging"
)

func newTestRouter(t *testing.T) (http.Handler, *stubRecorder) {
	t.Helper()
	recorder := &stubRecorder{}
	svc, _ := newTestService(t, recorder)
	h := NewHandler(svc, logging.New("error"))
	page := NewPage(svc, logging.New("error"))

	r := chi.NewRouter()
	r.Get("/sites/{siteID}", h.DescribeSite)
	r.Get("/sites/{siteID}/contact", h.Contact)
	r.Post("/sites/{siteID}/bookings", h.OpenSession)
	r.Get("/sites/{siteID}/book", page.Show)
	r.Post("/sites/{siteID}/book", page.Submit)
	r.Get("/bookings/{sessionID}", h.GetSession)
	r.Patch("/bookings/{sessionID}/fields", h.UpdateFields)
	r.Post("/bookings/{sessionID}/submit", h.SubmitSession)
	r.Post("/bookings/{sessionID}/open", h.ReopenSession)
	r.Delete("/bookings/{sessionID}", h.CloseSession)
	return r, recorder
}

func do(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestHandler_FullBookingFlow(t *testing.T) {
	router, recorder := newTestRouter(t)

	rec := do(t, router, http.MethodPost, "/sites/swim/bookings", `{"program":"Elite Training"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "sess-1", body["id"])
	assert.Equal(t, "open", body["state"])
	assert.Equal(t, false, body["scroll_enabled"])
	assert.ElementsMatch(t, []any{"contact_name", "contact_phone", "contact_email"}, body["missing"])

	rec = do(t, router, http.MethodPatch, "/bookings/sess-1/fields", `{"field":"contact_name","value":"Asha"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, router, http.MethodPatch, "/bookings/sess-1/fields",
		`{"fields":{"contact_phone":"9999999999","contact-email":"a@x.com"}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	body = decodeBody(t, rec)
	assert.Empty(t, body["missing"])
	form := body["form"].(map[string]any)
	assert.Equal(t, "Asha", form["contact_name"])
	assert.Equal(t, "a@x.com", form["contact_email"])

	rec = do(t, router, http.MethodPost, "/bookings/sess-1/submit", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body = decodeBody(t, rec)
	link := body["url"].(string)
	assert.True(t, strings.HasPrefix(link, "https://api.whatsapp.com/send?phone=919008838001&text="))
	assert.Contains(t, body["message"], "*Parent/Guardian:* Asha")
	assert.Len(t, recorder.subs, 1)

	rec = do(t, router, http.MethodGet, "/bookings/sess-1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body = decodeBody(t, rec)
	assert.Equal(t, "closed", body["state"])
	assert.Equal(t, true, body["scroll_enabled"])
}

func TestHandler_SubmitBlocked(t *testing.T) {
	router, _ := newTestRouter(t)

	require.Equal(t, http.StatusCreated, do(t, router, http.MethodPost, "/sites/swim/bookings", `{"program":"Elite Training"}`).Code)
	do(t, router, http.MethodPatch, "/bookings/sess-1/fields", `{"fields":{"contact_phone":"9999999999","contact_email":"a@x.com"}}`)

	rec := do(t, router, http.MethodPost, "/bookings/sess-1/submit?redirect=1", "")
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, []any{"contact_name"}, body["missing"])

	rec = do(t, router, http.MethodGet, "/bookings/sess-1", "")
	assert.Equal(t, "open", decodeBody(t, rec)["state"])
}

func TestHandler_SubmitRedirect(t *testing.T) {
	router, _ := newTestRouter(t)

	do(t, router, http.MethodPost, "/sites/membership/bookings", `{"program":"Aqua Fitness","option":"10 CLASS"}`)
	do(t, router, http.MethodPatch, "/bookings/sess-1/fields",
		`{"fields":{"contact_name":"Asha","contact_phone":"9999999999","contact_email":"a@x.com"}}`)

	rec := do(t, router, http.MethodPost, "/bookings/sess-1/submit?redirect=1", "")
	require.Equal(t, http.StatusSeeOther, rec.Code)
	location := rec.Header().Get("Location")
	assert.True(t, strings.HasPrefix(location, "https://wa.me/919008838001?text="))

	u, err := url.Parse(location)
	require.NoError(t, err)
	assert.Contains(t, u.Query().Get("text"), "*Program:* Aqua Fitness (10 CLASS)")
}

func TestHandler_ErrorMapping(t *testing.T) {
	router, _ := newTestRouter(t)
	do(t, router, http.MethodPost, "/sites/contracting/bookings", "")

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"unknown site", http.MethodPost, "/sites/bakery/bookings", "", http.StatusNotFound},
		{"unknown session", http.MethodGet, "/bookings/nope", "", http.StatusNotFound},
		{"unknown field", http.MethodPatch, "/bookings/sess-1/fields", `{"field":"shoe_size","value":"9"}`, http.StatusBadRequest},
		{"disabled field", http.MethodPatch, "/bookings/sess-1/fields", `{"field":"age_group","value":"Adults"}`, http.StatusBadRequest},
		{"empty update", http.MethodPatch, "/bookings/sess-1/fields", `{}`, http.StatusBadRequest},
		{"bad json", http.MethodPatch, "/bookings/sess-1/fields", `{`, http.StatusBadRequest},
		{"bad open body", http.MethodPost, "/sites/swim/bookings", `[`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, router, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}
}

func TestHandler_CloseThenEdit(t *testing.T) {
	router, _ := newTestRouter(t)
	do(t, router, http.MethodPost, "/sites/swim/bookings", "")

	assert.Equal(t, http.StatusNoContent, do(t, router, http.MethodDelete, "/bookings/sess-1", "").Code)
	assert.Equal(t, http.StatusNoContent, do(t, router, http.MethodDelete, "/bookings/sess-1", "").Code)

	rec := do(t, router, http.MethodPatch, "/bookings/sess-1/fields", `{"field":"contact_name","value":"Asha"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, http.StatusConflict, do(t, router, http.MethodPost, "/bookings/sess-1/submit", "").Code)
}

func TestHandler_ReopenSession(t *testing.T) {
	router, recorder := newTestRouter(t)
	do(t, router, http.MethodPost, "/sites/swim/bookings", `{"program":"Elite Training"}`)
	do(t, router, http.MethodPatch, "/bookings/sess-1/fields", `{"fields":{"contact_name":"Asha","contact_phone":"9999999999","contact_email":"a@x.com"}}`)
	require.Equal(t, http.StatusOK, do(t, router, http.MethodPost, "/bookings/sess-1/submit", "").Code)

	rec := do(t, router, http.MethodPost, "/bookings/sess-1/open", `{"program":"Aqua Fitness","option":"8 CLASS"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decodeBody(t, rec)
	assert.Equal(t, "sess-1", body["id"])
	assert.Equal(t, "open", body["state"])
	form := body["form"].(map[string]any)
	assert.Equal(t, "Aqua Fitness", form["program"])
	assert.Empty(t, form["contact_name"])
	assert.Equal(t, "8 CLASS", body["context"].(map[string]any)["option"])
	assert.Contains(t, body["missing"], "contact_name")

	rec = do(t, router, http.MethodPatch, "/bookings/sess-1/fields", `{"fields":{"contact_name":"Ravi","contact_phone":"8888888888","contact_email":"r@x.com"}}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Equal(t, http.StatusOK, do(t, router, http.MethodPost, "/bookings/sess-1/submit", "").Code)
	require.Len(t, recorder.subs, 2)
	assert.Equal(t, "Aqua Fitness", recorder.subs[1].Form.Program)

	assert.Equal(t, http.StatusNotFound, do(t, router, http.MethodPost, "/bookings/missing/open", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, router, http.MethodPost, "/bookings/sess-1/open", `[`).Code)
}

func TestHandler_DescribeSite(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := do(t, router, http.MethodGet, "/sites/contracting", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp siteResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "wa.me", resp.LinkStyle)
	require.Len(t, resp.Fields, 5)
	assert.Equal(t, "program", resp.Fields[0].Name)
	assert.Equal(t, "Service", resp.Fields[0].Label)
	assert.True(t, resp.Fields[0].Required)
	assert.Equal(t, "contact_email", resp.Fields[3].Name)
	assert.False(t, resp.Fields[3].Required)
}

func TestHandler_Contact(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := do(t, router, http.MethodGet, "/sites/swim/contact", "")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "https://wa.me/919008838001", rec.Header().Get("Location"))

	assert.Equal(t, http.StatusNotFound, do(t, router, http.MethodGet, "/sites/nope/contact", "").Code)
}
