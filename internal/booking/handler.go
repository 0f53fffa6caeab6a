package booking

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wolfman30/leadflow/internal/leads"
	"github.com/wolfman30/leadflow/pkg/logging"
)

// Handler serves the booking JSON API used by page invocation sites.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

type openRequest struct {
	Program string `json:"program"`
	Option  string `json:"option"`
}

type fieldsRequest struct {
	Field  *string           `json:"field"`
	Value  string            `json:"value"`
	Fields map[string]string `json:"fields"`
}

type sessionResponse struct {
	*Session
	Missing       []leads.Field `json:"missing"`
	ScrollEnabled bool          `json:"scroll_enabled"`
}

type submitResponse struct {
	URL     string `json:"url"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error   string        `json:"error"`
	Missing []leads.Field `json:"missing,omitempty"`
}

type fieldDescription struct {
	Name     string   `json:"name"`
	Label    string   `json:"label"`
	Required bool     `json:"required"`
	Default  string   `json:"default,omitempty"`
	Options  []string `json:"options,omitempty"`
}

type siteResponse struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	LinkStyle string             `json:"link_style"`
	Fields    []fieldDescription `json:"fields"`
}

// OpenSession handles POST /sites/{siteID}/bookings requests.
func (h *Handler) OpenSession(w http.ResponseWriter, r *http.Request) {
	var req openRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	inv := &leads.InvocationContext{Program: req.Program, Option: req.Option}
	sess, err := h.service.Open(r.Context(), chi.URLParam(r, "siteID"), inv)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeSession(w, http.StatusCreated, sess)
}

// ReopenSession handles POST /bookings/{sessionID}/open requests. The body
// carries the new invocation context, which replaces the previous one.
func (h *Handler) ReopenSession(w http.ResponseWriter, r *http.Request) {
	var req openRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	inv := &leads.InvocationContext{Program: req.Program, Option: req.Option}
	sess, err := h.service.Reopen(r.Context(), chi.URLParam(r, "sessionID"), inv)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeSession(w, http.StatusOK, sess)
}

// GetSession handles GET /bookings/{sessionID} requests.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := h.service.Get(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeSession(w, http.StatusOK, sess)
}

// UpdateFields handles PATCH /bookings/{sessionID}/fields requests. The body
// is either a single {"field", "value"} edit or a {"fields": {...}} map.
func (h *Handler) UpdateFields(w http.ResponseWriter, r *http.Request) {
	var req fieldsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	updates, err := req.updates()
	if err != nil {
		h.writeError(w, err)
		return
	}
	if len(updates) == 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "no fields to update"})
		return
	}
	sess, err := h.service.SetFields(r.Context(), chi.URLParam(r, "sessionID"), updates)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeSession(w, http.StatusOK, sess)
}

// SubmitSession handles POST /bookings/{sessionID}/submit requests. With
// ?redirect=1 the visitor is sent straight to the deep link.
func (h *Handler) SubmitSession(w http.ResponseWriter, r *http.Request) {
	var location string
	capture := RedirectFunc(func(_ context.Context, url string) error {
		location = url
		return nil
	})
	sub, err := h.service.Submit(r.Context(), chi.URLParam(r, "sessionID"), capture)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if wantsRedirect(r) {
		http.Redirect(w, r, location, http.StatusSeeOther)
		return
	}
	writeJSON(w, http.StatusOK, submitResponse{URL: sub.URL, Message: sub.Message})
}

// CloseSession handles DELETE /bookings/{sessionID} requests.
func (h *Handler) CloseSession(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Close(r.Context(), chi.URLParam(r, "sessionID")); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DescribeSite handles GET /sites/{siteID} requests.
func (h *Handler) DescribeSite(w http.ResponseWriter, r *http.Request) {
	site, err := h.service.Site(chi.URLParam(r, "siteID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	resp := siteResponse{
		ID:        site.ID,
		Name:      site.Name,
		LinkStyle: string(site.Links.Style()),
	}
	for _, f := range site.Variant.EnabledFields() {
		resp.Fields = append(resp.Fields, fieldDescription{
			Name:     f.String(),
			Label:    site.Variant.Label(f),
			Required: site.Variant.IsRequired(f),
			Default:  site.Variant.Defaults.Get(f),
			Options:  site.Variant.OptionsFor(f),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// Contact handles GET /sites/{siteID}/contact requests.
func (h *Handler) Contact(w http.ResponseWriter, r *http.Request) {
	link, err := h.service.ContactLink(chi.URLParam(r, "siteID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	http.Redirect(w, r, link, http.StatusFound)
}

func (req fieldsRequest) updates() ([]FieldUpdate, error) {
	var updates []FieldUpdate
	if req.Field != nil {
		f, err := leads.ParseField(*req.Field)
		if err != nil {
			return nil, err
		}
		updates = append(updates, FieldUpdate{Field: f, Value: req.Value})
	}
	if len(req.Fields) == 0 {
		return updates, nil
	}
	parsed := make(map[leads.Field]string, len(req.Fields))
	for name, value := range req.Fields {
		f, err := leads.ParseField(name)
		if err != nil {
			return nil, err
		}
		parsed[f] = value
	}
	for _, f := range leads.AllFields {
		if value, ok := parsed[f]; ok {
			updates = append(updates, FieldUpdate{Field: f, Value: value})
		}
	}
	return updates, nil
}

func (h *Handler) writeSession(w http.ResponseWriter, status int, sess *Session) {
	resp := sessionResponse{Session: sess, ScrollEnabled: !sess.ScrollLocked, Missing: []leads.Field{}}
	if sess.State == StateOpen {
		if site, err := h.service.Site(sess.SiteID); err == nil {
			if missing := leads.NewValidator(site.Variant).Missing(sess.Form); missing != nil {
				resp.Missing = missing
			}
		}
	}
	writeJSON(w, status, resp)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var verr *leads.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "required fields missing", Missing: verr.Missing})
	case errors.Is(err, leads.ErrUnknownField), errors.Is(err, leads.ErrFieldDisabled):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, ErrNotOpen), errors.Is(err, ErrSessionConflict):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	case errors.Is(err, ErrSessionNotFound), errors.Is(err, ErrUnknownSite):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	default:
		h.logger.Error("booking request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func wantsRedirect(r *http.Request) bool {
	switch r.URL.Query().Get("redirect") {
	case "1", "true", "yes":
		return true
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
