package cron

import (
	"context"

	"github.com/opositest/notification-service/internal/config"
	"github.com/opositest/notification-service/internal/jobs"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// StartEmailCronJobs wires the scheduled pipeline triggers: daily automatic
// campaign, weekly digest and daily token garbage collection.
func StartEmailCronJobs(campaignJob *jobs.CampaignJob, cleanupJob *jobs.TokenCleanupJob, cfg *config.Config) *cron.Cron {
	c := cron.New()

	c.AddFunc(cfg.CronSpecDailyCampaign, func() {
		if err := campaignJob.RunDailyCampaign(context.Background()); err != nil {
			logrus.WithError(err).Error("RunDailyCampaign failed")
		}
	})

	c.AddFunc(cfg.CronSpecWeeklyDigest, func() {
		if err := campaignJob.RunWeeklyDigest(context.Background()); err != nil {
			logrus.WithError(err).Error("RunWeeklyDigest failed")
		}
	})

	c.AddFunc(cfg.CronSpecTokenCleanup, func() {
		if err := cleanupJob.RunCleanup(context.Background()); err != nil {
			logrus.WithError(err).Error("Token cleanup failed")
		}
	})

	c.Start()
	return c
}
