package booking

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postForm(t *testing.T, router http.Handler, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestPage_ShowPrefillsProgram(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := do(t, router, http.MethodGet, "/sites/swim/book?program=Elite+Training&option=20+CLASS", "")
	require.Equal(t, http.StatusOK, rec.Code)
	html := rec.Body.String()

	assert.Contains(t, html, `<option value="Elite Training" selected>`)
	assert.Contains(t, html, `<option value="Kids (4 to 14 years)" selected>`)
	assert.Contains(t, html, `name="option" value="20 CLASS"`)
	assert.Contains(t, html, `id="contact_email" name="contact_email" type="email" value="" required`)
	assert.Contains(t, html, `href="https://wa.me/919008838001"`)
	assert.NotContains(t, html, "form-error")
}

func TestPage_ShowOmitsDisabledFields(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := do(t, router, http.MethodGet, "/sites/contracting/book", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), `name="age_group"`)
	assert.Contains(t, rec.Body.String(), `id="contact_email" name="contact_email" type="email" value="">`)
}

func TestPage_SubmitRedirectsToDeepLink(t *testing.T) {
	router, recorder := newTestRouter(t)

	rec := postForm(t, router, "/sites/swim/book", url.Values{
		"program":       {"Elite Training"},
		"age_group":     {"Teens (15 to 18 years)"},
		"contact_name":  {"Asha"},
		"contact_phone": {"9999999999"},
		"contact_email": {"a@x.com"},
		"option":        {"10 CLASS"},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code)

	location, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "api.whatsapp.com", location.Host)
	text := location.Query().Get("text")
	assert.Contains(t, text, "*Program:* Elite Training\n")
	assert.NotContains(t, text, "10 CLASS")
	assert.Contains(t, text, "*Age Group:* Teens (15 to 18 years)")
	require.Len(t, recorder.subs, 1)
	assert.Equal(t, "10 CLASS", recorder.subs[0].Option)
}

func TestPage_SubmitBlockedRerenders(t *testing.T) {
	router, recorder := newTestRouter(t)

	rec := postForm(t, router, "/sites/swim/book", url.Values{
		"program":       {"Elite Training"},
		"contact_name":  {""},
		"contact_phone": {"9999999999"},
		"contact_email": {"a@x.com"},
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	html := rec.Body.String()
	assert.Contains(t, html, "form-error")
	assert.Contains(t, html, `class="field field-missing"`)
	assert.Contains(t, html, `value="9999999999"`)
	assert.Empty(t, recorder.subs)
}

func TestPage_UnknownSite(t *testing.T) {
	router, _ := newTestRouter(t)
	assert.Equal(t, http.StatusNotFound, do(t, router, http.MethodGet, "/sites/nope/book", "").Code)
	assert.Equal(t, http.StatusNotFound, postForm(t, router, "/sites/nope/book", url.Values{}).Code)
}
