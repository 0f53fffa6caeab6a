package leads

import (
	"context"
	"fmt"

	"github.com/wolfman30/leadflow/internal/notify"
	"github.com/wolfman30/leadflow/pkg/logging"
)

// Submission is what the booking flow hands to its submission callback.
type Submission struct {
	SiteID    string
	SiteName  string
	SessionID string
	Form      FormData
	Option    string
	DeepLink  string
	Message   string
}

// Recorder persists submitted leads and optionally emails the front desk.
type Recorder struct {
	repo     Repository
	notifier notify.EmailSender
	notifyTo string
	logger   *logging.Logger
}

// NewRecorder wires a recorder. notifier may be nil; notifyTo empty disables email.
func NewRecorder(repo Repository, notifier notify.EmailSender, notifyTo string, logger *logging.Logger) *Recorder {
	if repo == nil {
		panic("leads: repository required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Recorder{
		repo:     repo,
		notifier: notifier,
		notifyTo: notifyTo,
		logger:   logger,
	}
}

// Record stores the submission and sends the staff notification. A failed
// notification is logged and does not fail the call.
func (r *Recorder) Record(ctx context.Context, sub Submission) (*Lead, error) {
	lead, err := r.repo.Create(ctx, &CreateLeadRequest{
		SiteID:    sub.SiteID,
		SessionID: sub.SessionID,
		Form:      sub.Form,
		Option:    sub.Option,
		DeepLink:  sub.DeepLink,
	})
	if err != nil {
		return nil, fmt.Errorf("leads: record: %w", err)
	}

	r.logger.Info("lead recorded", "id", lead.ID, "site_id", lead.SiteID, "program", lead.Form.Program)

	if r.notifier != nil && r.notifyTo != "" {
		msg := notify.EmailMessage{
			To:      r.notifyTo,
			Subject: notificationSubject(sub),
			Body:    sub.Message,
		}
		if err := r.notifier.Send(ctx, msg); err != nil {
			r.logger.Warn("lead notification failed", "error", err, "lead_id", lead.ID)
		}
	}

	return lead, nil
}

func notificationSubject(sub Submission) string {
	site := sub.SiteName
	if site == "" {
		site = sub.SiteID
	}
	if sub.Form.Program == "" {
		return fmt.Sprintf("New %s lead: %s", site, sub.Form.ContactName)
	}
	return fmt.Sprintf("New %s lead: %s (%s)", site, sub.Form.ContactName, sub.Form.Program)
}
