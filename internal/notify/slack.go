// Package notify delivers budget alerts and digests to a Slack incoming webhook.
package notify

import (
	"context"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/solstice035/monzo-analysis/internal/transport"
	"github.com/solstice035/monzo-analysis/internal/types"
	"github.com/solstice035/monzo-analysis/pkg/budget"
)

// Slack posts messages to an incoming webhook. With no webhook configured every send
// is skipped without error.
type Slack struct {
	transport *transport.JSONTransport
	logger    types.Logger
}

// Options configures the Slack notifier
type Options struct {
	// WebhookURL is the incoming webhook; empty disables sending
	WebhookURL string

	// HTTPClient overrides the default client
	HTTPClient *http.Client

	// RetryConfig enables retries on transient failures
	RetryConfig *types.RetryConfig

	// Logger for debug logging
	Logger types.Logger
}

type message struct {
	Text   string   `json:"text"`
	Blocks []*Block `json:"blocks,omitempty"`
}

// NewSlack creates a Slack notifier
func NewSlack(opts *Options) *Slack {
	if opts == nil {
		opts = &Options{}
	}
	if opts.Logger == nil {
		opts.Logger = nopLogger{}
	}

	s := &Slack{logger: opts.Logger}
	if opts.WebhookURL == "" {
		return s
	}

	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 10 * time.Second}
	}
	s.transport = transport.NewJSONTransport(&transport.Options{
		BaseURL:     opts.WebhookURL,
		HTTPClient:  opts.HTTPClient,
		RetryConfig: opts.RetryConfig,
		Logger:      opts.Logger,
	})
	return s
}

// Enabled reports whether a webhook is configured
func (s *Slack) Enabled() bool {
	return s.transport != nil
}

// Send posts a plain text message
func (s *Slack) Send(ctx context.Context, text string) error {
	return s.post(ctx, &message{Text: text})
}

// SendBlocks posts a block message with text as the notification fallback
func (s *Slack) SendBlocks(ctx context.Context, blocks []*Block, text string) error {
	return s.post(ctx, &message{Text: text, Blocks: blocks})
}

func (s *Slack) post(ctx context.Context, msg *message) error {
	if !s.Enabled() {
		s.logger.Debug("Slack webhook not configured, skipping message")
		return nil
	}

	// Slack answers a plain "ok", so the body is not decoded
	if err := s.transport.Post(ctx, "", msg, nil); err != nil {
		return errors.Wrap(err, "failed to post slack message")
	}
	return nil
}

// NotifyBudgetAlerts sends an exceeded alert for every over status and a warning for every
// warning status. Other statuses are ignored. It returns the number of alerts sent and
// stops at the first failure.
func (s *Slack) NotifyBudgetAlerts(ctx context.Context, statuses []*budget.BudgetStatus) (int, error) {
	var sent int
	for _, st := range statuses {
		var text string
		switch st.Status {
		case budget.StatusOver:
			text = FormatBudgetExceeded(st)
		case budget.StatusWarning:
			text = FormatBudgetWarning(st)
		default:
			continue
		}

		if err := s.Send(ctx, text); err != nil {
			return sent, errors.Wrapf(err, "failed to send alert for %s", st.Category)
		}
		sent++
	}
	return sent, nil
}

// NotifySinkingFunds sends an alert for every sinking fund that is behind
func (s *Slack) NotifySinkingFunds(ctx context.Context, statuses []*budget.SinkingFundStatus) (int, error) {
	var sent int
	for _, st := range statuses {
		if st.OnTrack {
			continue
		}
		if err := s.Send(ctx, FormatSinkingFundBehind(st)); err != nil {
			return sent, errors.Wrapf(err, "failed to send sinking fund alert for %s", st.BudgetID)
		}
		sent++
	}
	return sent, nil
}

// NotifyDashboard posts the dashboard as a block message, one section per group
func (s *Slack) NotifyDashboard(ctx context.Context, d *budget.DashboardSummary) error {
	blocks := []*Block{
		HeaderBlock("Budget Dashboard"),
		SectionBlock(dashboardLine("Overall", d.TotalSpent, d.TotalBudget, d.OverallPercentage)),
		DividerBlock(),
	}
	for _, g := range d.Groups {
		name := g.Name
		if g.Icon != nil {
			name = *g.Icon + " " + name
		}
		blocks = append(blocks, SectionBlock(dashboardLine(name, g.TotalSpent, g.TotalAmount, g.Percentage)))
	}
	blocks = append(blocks, ContextBlock(
		d.PeriodStart.String()+" to "+d.PeriodEnd.String(),
		dayProgress(d.DaysElapsed, d.DaysInPeriod),
	))

	return s.SendBlocks(ctx, blocks, "Budget Dashboard")
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
