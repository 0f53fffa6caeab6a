// Package booking runs the booking/consultation form lifecycle: opening the
// form from an invocation site, editing fields, and handing a completed form
// off to WhatsApp through a pre-filled deep link.
package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/wolfman30/leadflow/internal/leads"
	"github.com/wolfman30/leadflow/internal/messaging/deeplink"
	"github.com/wolfman30/leadflow/internal/messaging/templates"
	"github.com/wolfman30/leadflow/pkg/logging"
)

// ErrNotOpen is returned when an edit or submit arrives while the form is closed.
var ErrNotOpen = errors.New("booking: flow is not open")

// State is the lifecycle position of a flow.
type State int

const (
	StateClosed State = iota
	StateOpen
	StateSubmitting
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateSubmitting:
		return "submitting"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(b []byte) error {
	switch strings.ToLower(string(b)) {
	case "closed", "":
		*s = StateClosed
	case "open":
		*s = StateOpen
	case "submitting":
		*s = StateSubmitting
	default:
		return fmt.Errorf("booking: unknown state %q", string(b))
	}
	return nil
}

// Redirector hands the visitor over to the deep link. Delivery is not
// confirmed; the flow logs failures and carries on.
type Redirector interface {
	Redirect(ctx context.Context, url string) error
}

// RedirectFunc adapts a function to Redirector.
type RedirectFunc func(ctx context.Context, url string) error

func (f RedirectFunc) Redirect(ctx context.Context, url string) error {
	return f(ctx, url)
}

// SubmitFunc observes every successful submission. It runs after the
// redirect and before the form is reset.
type SubmitFunc func(ctx context.Context, sub Submission)

// Submission is the outcome of a successful submit.
type Submission struct {
	URL     string                  `json:"url"`
	Message string                  `json:"message"`
	Form    leads.FormData          `json:"form"`
	Context leads.InvocationContext `json:"context"`
}

// FlowConfig wires a flow's collaborators. Formatter and Links are required.
type FlowConfig struct {
	Variant    leads.Variant
	Formatter  *templates.Formatter
	Links      *deeplink.Builder
	Scroll     ScrollLock
	Redirector Redirector
	OnSubmit   SubmitFunc
	Logger     *logging.Logger
}

// Flow is one booking form instance. All methods are safe for concurrent use
// and are applied in a total order.
type Flow struct {
	mu         sync.Mutex
	state      State
	fields     *leads.FieldState
	validator  leads.Validator
	formatter  *templates.Formatter
	links      *deeplink.Builder
	scroll     ScrollLock
	redirector Redirector
	onSubmit   SubmitFunc
	invocation leads.InvocationContext
	logger     *logging.Logger
}

// NewFlow returns a closed flow with fields at their defaults.
func NewFlow(cfg FlowConfig) (*Flow, error) {
	if cfg.Formatter == nil {
		return nil, errors.New("booking: formatter is required")
	}
	if cfg.Links == nil {
		return nil, errors.New("booking: deep link builder is required")
	}
	if cfg.Scroll == nil {
		cfg.Scroll = NewPageScroll(false)
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	return &Flow{
		state:      StateClosed,
		fields:     leads.NewFieldState(cfg.Variant),
		validator:  leads.NewValidator(cfg.Variant),
		formatter:  cfg.Formatter,
		links:      cfg.Links,
		scroll:     cfg.Scroll,
		redirector: cfg.Redirector,
		onSubmit:   cfg.OnSubmit,
		logger:     cfg.Logger,
	}, nil
}

// Open shows the form from any state. Fields are re-initialized from the
// variant defaults and the invocation context, discarding earlier edits.
func (f *Flow) Open(ctx *leads.InvocationContext) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.fields.Initialize(ctx)
	f.invocation = leads.InvocationContext{}
	if ctx != nil {
		f.invocation = *ctx
	}
	f.scroll.Acquire()
	f.state = StateOpen
}

// Set edits one field of the open form.
func (f *Flow) Set(field leads.Field, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state != StateOpen {
		return ErrNotOpen
	}
	return f.fields.Set(field, value)
}

// Submit validates the form and, when complete, formats the message, builds
// the deep link, redirects, reports the submission and closes the form.
// A blocked submit returns a *leads.ValidationError and leaves the form open
// with every value intact.
func (f *Flow) Submit(ctx context.Context) (*Submission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state != StateOpen {
		return nil, ErrNotOpen
	}
	data := f.fields.Snapshot()
	if err := f.validator.Check(data); err != nil {
		return nil, err
	}

	f.state = StateSubmitting
	message, err := f.formatter.Format(data, f.invocation)
	if err != nil {
		f.state = StateOpen
		return nil, fmt.Errorf("booking: format message: %w", err)
	}
	sub := Submission{
		URL:     f.links.Build(message),
		Message: message,
		Form:    data,
		Context: f.invocation,
	}

	if f.redirector != nil {
		if err := f.redirector.Redirect(ctx, sub.URL); err != nil {
			f.logger.Warn("booking redirect failed", "error", err)
		}
	}
	if f.onSubmit != nil {
		f.onSubmit(ctx, sub)
	}

	f.fields.Reset()
	f.invocation = leads.InvocationContext{}
	f.scroll.Release()
	f.state = StateClosed
	return &sub, nil
}

// Close dismisses the form without submitting. Values are kept until the
// next Open re-initializes them.
func (f *Flow) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state == StateClosed {
		return
	}
	f.scroll.Release()
	f.state = StateClosed
}

// State returns the current lifecycle state.
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Form returns a copy of the current field values.
func (f *Flow) Form() leads.FormData {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fields.Snapshot()
}

// Missing lists the required fields that would block a submit right now.
func (f *Flow) Missing() []leads.Field {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.validator.Missing(f.fields.Snapshot())
}

// ScrollEnabled reports whether the page behind the form can scroll.
func (f *Flow) ScrollEnabled() bool {
	return f.scroll.Enabled()
}

// restore rehydrates a flow from a stored session.
func (f *Flow) restore(s *Session) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.state = s.State
	if f.state == StateSubmitting {
		f.state = StateOpen
	}
	f.fields.Restore(s.Form)
	f.invocation = s.Context
	if f.state == StateOpen {
		f.scroll.Acquire()
	} else {
		f.scroll.Release()
	}
}

// capture copies the flow state into s.
func (f *Flow) capture(s *Session) {
	f.mu.Lock()
	defer f.mu.Unlock()

	s.State = f.state
	s.Form = f.fields.Snapshot()
	s.Context = f.invocation
	s.ScrollLocked = !f.scroll.Enabled()
}
