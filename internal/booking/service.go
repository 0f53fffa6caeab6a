package booking

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/wolfman30/leadflow/internal/leads"
	"github.com/wolfman30/leadflow/internal/observability/metrics"
	"github.com/wolfman30/leadflow/pkg/logging"
)

// LeadRecorder persists a completed submission. Failures never reach the visitor.
type LeadRecorder interface {
	Record(ctx context.Context, sub leads.Submission) (*leads.Lead, error)
}

// FieldUpdate is one field edit.
type FieldUpdate struct {
	Field leads.Field
	Value string
}

// ServiceConfig wires the booking service. Sites and Store are required.
type ServiceConfig struct {
	Sites    *Registry
	Store    SessionStore
	Recorder LeadRecorder
	Metrics  *metrics.BookingMetrics
	Tracer   trace.Tracer
	Logger   *logging.Logger
}

// Service runs booking flows across HTTP requests. Each call loads the
// session, rebuilds its flow, applies one operation and saves the result.
type Service struct {
	sites    *Registry
	store    SessionStore
	recorder LeadRecorder
	metrics  *metrics.BookingMetrics
	tracer   trace.Tracer
	logger   *logging.Logger
	now      func() time.Time
	newID    func() string
}

func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Sites == nil {
		return nil, errors.New("booking: site registry is required")
	}
	if cfg.Store == nil {
		return nil, errors.New("booking: session store is required")
	}
	if cfg.Tracer == nil {
		cfg.Tracer = otel.Tracer("leadflow.internal.booking")
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	return &Service{
		sites:    cfg.Sites,
		store:    cfg.Store,
		recorder: cfg.Recorder,
		metrics:  cfg.Metrics,
		tracer:   cfg.Tracer,
		logger:   cfg.Logger.WithComponent("booking"),
		now:      time.Now,
		newID:    uuid.NewString,
	}, nil
}

// Site resolves a configured site.
func (s *Service) Site(siteID string) (*Site, error) {
	return s.sites.Lookup(siteID)
}

// ContactLink returns the bare chat link of a site.
func (s *Service) ContactLink(siteID string) (string, error) {
	site, err := s.sites.Lookup(siteID)
	if err != nil {
		return "", err
	}
	return site.Links.ContactLink(), nil
}

// Open starts a new session with the form shown and prefilled from inv.
func (s *Service) Open(ctx context.Context, siteID string, inv *leads.InvocationContext) (*Session, error) {
	ctx, span := s.tracer.Start(ctx, "booking.open")
	defer span.End()
	span.SetAttributes(attribute.String("leadflow.site_id", siteID))

	site, err := s.sites.Lookup(siteID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	now := s.now().UTC()
	sess := &Session{ID: s.newID(), SiteID: site.ID, CreatedAt: now, UpdatedAt: now, Version: 1}
	flow, err := s.flowFor(site, sess, nil)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	flow.restore(sess)
	flow.Open(inv)
	flow.capture(sess)
	if err := s.store.Create(ctx, sess); err != nil {
		span.RecordError(err)
		return nil, err
	}

	s.metrics.ObserveOpen(site.ID, programLabel(site, inv))
	s.logger.Info("booking opened", "site_id", site.ID, "session_id", sess.ID, "program", invProgram(inv))
	return sess, nil
}

// Get returns a stored session.
func (s *Service) Get(ctx context.Context, sessionID string) (*Session, error) {
	return s.store.Get(ctx, sessionID)
}

// Reopen shows the form again for an existing session, re-initializing it
// from inv whatever state it was in.
func (s *Service) Reopen(ctx context.Context, sessionID string, inv *leads.InvocationContext) (*Session, error) {
	site, sess, err := s.update(ctx, sessionID, func(flow *Flow) error {
		flow.Open(inv)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveOpen(site.ID, programLabel(site, inv))
	s.logger.Info("booking reopened", "site_id", site.ID, "session_id", sess.ID, "program", invProgram(inv))
	return sess, nil
}

// SetFields applies edits in order. Nothing is saved when any edit fails.
func (s *Service) SetFields(ctx context.Context, sessionID string, updates []FieldUpdate) (*Session, error) {
	_, sess, err := s.update(ctx, sessionID, func(flow *Flow) error {
		for _, u := range updates {
			if err := flow.Set(u.Field, u.Value); err != nil {
				return err
			}
		}
		return nil
	})
	return sess, err
}

// Submit completes a session's form. A blocked submit returns a
// *leads.ValidationError and leaves the session open and unchanged. Of two
// racing submits only one succeeds; the other sees the closed session and
// gets ErrNotOpen. The redirect and lead recording run once, after the
// closed state is stored.
func (s *Service) Submit(ctx context.Context, sessionID string, redirector Redirector) (*Submission, error) {
	ctx, span := s.tracer.Start(ctx, "booking.submit")
	defer span.End()
	span.SetAttributes(attribute.String("leadflow.session_id", sessionID))

	started := s.now()
	var sub *Submission
	site, sess, err := s.update(ctx, sessionID, func(flow *Flow) error {
		out, err := flow.Submit(ctx)
		if err != nil {
			return err
		}
		sub = out
		return nil
	})
	if err != nil {
		siteID := ""
		if site != nil {
			siteID = site.ID
		}
		s.observeSubmitError(siteID, err)
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.String("leadflow.site_id", site.ID))

	if redirector != nil {
		if err := redirector.Redirect(ctx, sub.URL); err != nil {
			s.logger.Warn("booking redirect failed", "session_id", sess.ID, "error", err)
		}
	}
	if record := s.recordLead(site, sess.ID); record != nil {
		record(ctx, *sub)
	}

	s.metrics.ObserveSubmit(site.ID, "submitted")
	s.metrics.ObserveSubmitLatency(site.ID, s.now().Sub(started).Seconds())
	s.logger.Info("booking submitted", "site_id", site.ID, "session_id", sess.ID, "program", sub.Form.Program)
	return sub, nil
}

// SubmitForm runs a whole flow in one call, used by the server-rendered
// form. Only the fields present in values are applied over the defaults.
func (s *Service) SubmitForm(ctx context.Context, siteID string, inv *leads.InvocationContext, values map[leads.Field]string) (*Submission, error) {
	ctx, span := s.tracer.Start(ctx, "booking.submit_form")
	defer span.End()
	span.SetAttributes(attribute.String("leadflow.site_id", siteID))

	site, err := s.sites.Lookup(siteID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	sess := &Session{ID: s.newID(), SiteID: site.ID}
	flow, err := s.flowFor(site, sess, s.recordLead(site, sess.ID))
	if err != nil {
		return nil, err
	}
	flow.Open(inv)
	for _, f := range leads.AllFields {
		value, ok := values[f]
		if !ok || !site.Variant.IsEnabled(f) {
			continue
		}
		if err := flow.Set(f, value); err != nil {
			return nil, err
		}
	}

	sub, err := flow.Submit(ctx)
	if err != nil {
		s.observeSubmitError(site.ID, err)
		span.RecordError(err)
		return nil, err
	}
	s.metrics.ObserveSubmit(site.ID, "submitted")
	s.logger.Info("booking form submitted", "site_id", site.ID, "program", sub.Form.Program)
	return sub, nil
}

// Close dismisses a session's form. Closing a closed session is a no-op.
func (s *Service) Close(ctx context.Context, sessionID string) error {
	closed := false
	site, _, err := s.update(ctx, sessionID, func(flow *Flow) error {
		if flow.State() == StateClosed {
			return errSkipSave
		}
		flow.Close()
		closed = true
		return nil
	})
	if err != nil {
		return err
	}
	if closed {
		s.metrics.ObserveClose(site.ID)
	}
	return nil
}

func (s *Service) observeSubmitError(siteID string, err error) {
	if siteID == "" {
		return
	}
	if errors.Is(err, leads.ErrValidationBlocked) {
		s.metrics.ObserveSubmit(siteID, "blocked")
		return
	}
	s.metrics.ObserveSubmit(siteID, "error")
}

// update applies op to the session's flow as one atomic store update. op
// runs without redirector or submission callback, so a retried attempt has
// no visible effect. The returned site is set whenever the session resolved.
func (s *Service) update(ctx context.Context, sessionID string, op func(flow *Flow) error) (*Site, *Session, error) {
	var site *Site
	sess, err := s.store.Update(ctx, sessionID, func(sess *Session) error {
		resolved, err := s.sites.Lookup(sess.SiteID)
		if err != nil {
			return err
		}
		site = resolved
		flow, err := s.flowFor(resolved, sess, nil)
		if err != nil {
			return err
		}
		flow.restore(sess)
		if err := op(flow); err != nil {
			return err
		}
		flow.capture(sess)
		sess.UpdatedAt = s.now().UTC()
		return nil
	})
	if err != nil {
		return site, nil, err
	}
	return site, sess, nil
}

func (s *Service) flowFor(site *Site, sess *Session, onSubmit SubmitFunc) (*Flow, error) {
	return NewFlow(FlowConfig{
		Variant:   site.Variant,
		Formatter: site.Formatter,
		Links:     site.Links,
		Scroll:    NewPageScroll(sess.ScrollLocked),
		OnSubmit:  onSubmit,
		Logger:    s.logger,
	})
}

func (s *Service) recordLead(site *Site, sessionID string) SubmitFunc {
	if s.recorder == nil {
		return nil
	}
	return func(ctx context.Context, sub Submission) {
		_, err := s.recorder.Record(ctx, leads.Submission{
			SiteID:    site.ID,
			SiteName:  site.Name,
			SessionID: sessionID,
			Form:      sub.Form,
			Option:    sub.Context.Option,
			DeepLink:  sub.URL,
			Message:   sub.Message,
		})
		if err != nil {
			s.metrics.ObserveRecordFailure(site.ID)
			s.logger.Error("failed to record lead", "site_id", site.ID, "session_id", sessionID, "error", err)
		}
	}
}

func invProgram(inv *leads.InvocationContext) string {
	if inv == nil {
		return ""
	}
	return inv.Program
}

// programLabel bounds the metric label to the site's configured programs.
func programLabel(site *Site, inv *leads.InvocationContext) string {
	program := invProgram(inv)
	if program == "" {
		return ""
	}
	for _, option := range site.Variant.OptionsFor(leads.FieldProgram) {
		if option == program {
			return program
		}
	}
	return "other"
}
