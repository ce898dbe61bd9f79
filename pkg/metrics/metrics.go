package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Email send outcomes per category
	EmailsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "emails_total",
			Help: "Total number of email send attempts by category and outcome",
		},
		[]string{"category", "status"}, // status: sent, failed, cancelled
	)

	// Campaign batch runs
	CampaignRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campaign_runs_total",
			Help: "Total number of campaign batch runs",
		},
		[]string{"kind"}, // kind: automatic, weekly_digest, retry
	)

	// Unsubscribe token redemptions
	TokenRedemptionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "unsubscribe_redemptions_total",
			Help: "Total number of unsubscribe token redemption attempts",
		},
		[]string{"result"}, // result: success, invalid
	)
)

// RecordEmail increments the send-outcome counter.
func RecordEmail(category, status string) {
	EmailsTotal.WithLabelValues(category, status).Inc()
}

// RecordCampaignRun increments the batch-run counter.
func RecordCampaignRun(kind string) {
	CampaignRunsTotal.WithLabelValues(kind).Inc()
}

// RecordRedemption increments the redemption counter.
func RecordRedemption(result string) {
	TokenRedemptionsTotal.WithLabelValues(result).Inc()
}
