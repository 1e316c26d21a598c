package webhook

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/ccollicutt/connlog/pkg/config"
	"github.com/ccollicutt/connlog/pkg/insights"
	"github.com/ccollicutt/connlog/pkg/metrics"
)

// Dispatcher delivers reports to every configured webhook whose trigger matches.
// Delivery failures are logged, never returned.
type Dispatcher struct {
	client   *Client
	webhooks []config.WebhookConfig
	logger   *log.Logger
	metrics  *metrics.Metrics
}

// NewDispatcher creates a dispatcher. m may be nil.
func NewDispatcher(webhooks []config.WebhookConfig, logger *log.Logger, m *metrics.Metrics) *Dispatcher {
	return &Dispatcher{
		client:   NewClient(),
		webhooks: webhooks,
		logger:   logger.With("component", "webhook"),
		metrics:  m,
	}
}

// Dispatch sends report to the matching webhooks and returns how many succeeded.
func (d *Dispatcher) Dispatch(ctx context.Context, report *insights.Report) int {
	var sent int
	for _, wh := range d.webhooks {
		if !ShouldFire(wh.Trigger, report.HasResults()) {
			continue
		}

		resp := d.client.Send(ctx, report, SendOptions{
			URL:     wh.URL,
			Token:   wh.Token,
			Timeout: wh.Timeout,
		})

		name := wh.DisplayName()
		if resp.Success() {
			sent++
			d.record(name, "success")
			d.logger.Info("webhook sent", "webhook", name, "status", resp.StatusCode, "duration", resp.Duration)
		} else {
			d.record(name, "failure")
			d.logger.Error("webhook failed", "webhook", name, "err", resp.Error)
		}
	}
	return sent
}

func (d *Dispatcher) record(name, outcome string) {
	if d.metrics == nil {
		return
	}
	d.metrics.Webhooks.WithLabelValues(name, outcome).Inc()
}

// ShouldFire determines if a webhook should fire based on trigger and results.
func ShouldFire(trigger config.WebhookTrigger, hasResults bool) bool {
	switch trigger {
	case config.WebhookTriggerAlways:
		return true
	case config.WebhookTriggerNever:
		return false
	case config.WebhookTriggerOnResults:
		return hasResults
	default:
		return hasResults
	}
}
