package jobs

import (
	"context"
	"fmt"

	"github.com/opositest/notification-service/internal/services"
	"github.com/sirupsen/logrus"
)

// CampaignJob runs the scheduled campaign passes.
type CampaignJob struct {
	Campaign *services.CampaignService
}

// NewCampaignJob creates a new instance of CampaignJob
func NewCampaignJob(campaign *services.CampaignService) *CampaignJob {
	return &CampaignJob{Campaign: campaign}
}

// RunDailyCampaign executes the automatic inactivity/unmotivated run.
func (j *CampaignJob) RunDailyCampaign(ctx context.Context) error {
	result, err := j.Campaign.RunCampaign(ctx)
	if err != nil {
		return fmt.Errorf("daily campaign failed: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"batchID": result.BatchID,
		"total":   result.Total,
		"sent":    result.Sent,
		"failed":  result.Failed,
	}).Info("Daily campaign run completed")
	return nil
}

// RunWeeklyDigest executes the weekly problem-areas digest run.
func (j *CampaignJob) RunWeeklyDigest(ctx context.Context) error {
	result, err := j.Campaign.RunWeeklyDigest(ctx)
	if err != nil {
		return fmt.Errorf("weekly digest failed: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"batchID": result.BatchID,
		"total":   result.Total,
		"sent":    result.Sent,
		"failed":  result.Failed,
	}).Info("Weekly digest run completed")
	return nil
}
