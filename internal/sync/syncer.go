package sync

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"strava-notion-sync/internal/config"
	"strava-notion-sync/internal/metrics"
	"strava-notion-sync/internal/notion"
	"strava-notion-sync/internal/strava"
)

// doneStatus is the status a planned activity receives once a matching
// activity has been synced
const doneStatus = "Done"

// Syncer performs one sync pass from Strava to Notion
type Syncer struct {
	strava     *strava.Client
	notion     *notion.Client
	windowDays int
	logger     *slog.Logger
}

// New creates a new Syncer
func New(stravaClient *strava.Client, notionClient *notion.Client, cfg *config.Config) *Syncer {
	return &Syncer{
		strava:     stravaClient,
		notion:     notionClient,
		windowDays: cfg.SyncWindowDays,
		logger:     slog.Default(),
	}
}

// Run performs one full sync pass. It returns an error only for run-fatal
// failures (authentication, activity fetch); per-activity failures are
// logged and contained so the rest of the batch is still attempted.
func (s *Syncer) Run(ctx context.Context) error {
	start := time.Now()
	defer func() {
		metrics.RunDuration.Set(time.Since(start).Seconds())
	}()

	if err := s.strava.Authenticate(ctx); err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}

	after := time.Now().AddDate(0, 0, -s.windowDays)
	s.logger.Info("fetching activities", "since", after.Format(time.RFC3339))

	activities, err := s.strava.ListActivities(ctx, after)
	if err != nil {
		return err
	}
	metrics.ActivitiesFetchedTotal.Add(float64(len(activities)))

	if len(activities) == 0 {
		s.logger.Info("no new activities to sync")
		return nil
	}

	s.logger.Info("processing activities", "count", len(activities))

	var synced, skipped, failed int
	for _, activity := range activities {
		outcome := s.syncActivity(ctx, activity)
		metrics.ActivitiesProcessedTotal.WithLabelValues(outcome).Inc()

		switch outcome {
		case metrics.OutcomeSynced:
			synced++
		case metrics.OutcomeFailed:
			failed++
		default:
			skipped++
		}
	}

	s.logger.Info("sync complete", "synced", synced, "skipped", skipped, "failed", failed)
	return nil
}

// syncActivity processes a single activity and returns its outcome label.
// All errors are contained here: a failure is logged with the activity's
// Strava ID and sport type and never aborts the batch.
func (s *Syncer) syncActivity(ctx context.Context, activity strava.Activity) (outcome string) {
	sport := ClassifySport(activity)
	logger := s.logger.With("strava_id", activity.ID, "sport_type", string(sport))

	defer func() {
		if r := recover(); r != nil {
			logger.Error("panic while syncing activity", "panic", r)
			outcome = metrics.OutcomeFailed
		}
	}()

	if sport == SportOther {
		logger.Info("skipping unsupported activity type", "name", activity.Name, "raw_type", activity.SportType)
		return metrics.OutcomeUnsupportedType
	}

	exists, err := s.notion.ActivityExists(ctx, activity.ID)
	if err != nil {
		logger.Error("failed to check for existing activity", "error", err)
		return metrics.OutcomeFailed
	}
	if exists {
		logger.Info("skipping duplicate activity", "name", activity.Name)
		return metrics.OutcomeDuplicate
	}

	props := BuildProperties(activity, sport)
	pageID, err := s.notion.CreateActivity(ctx, props)
	if err != nil {
		logger.Error("failed to create activity", "name", activity.Name, "error", err)
		return metrics.OutcomeFailed
	}
	logger.Info("created activity", "name", activity.Name, "page_id", pageID)

	// From here on the record exists; linking failures leave it unlinked
	// but the activity still counts as synced. The next run will not see
	// it again, so these are logged rather than retried.
	plannedID, err := s.notion.FindPlanned(ctx, activity.StartDate, string(sport))
	if err != nil {
		logger.Error("failed to query planned activities", "error", err)
		return metrics.OutcomeSynced
	}
	if plannedID == "" {
		logger.Info("no matching planned activity", "date", activity.StartDate.Format("2006-01-02"))
		return metrics.OutcomeSynced
	}

	// Two independent updates; one can succeed while the other fails
	if err := s.notion.LinkToPlanned(ctx, pageID, plannedID); err != nil {
		logger.Error("failed to link planned activity", "planned_id", plannedID, "error", err)
		return metrics.OutcomeSynced
	}
	if err := s.notion.UpdatePlannedStatus(ctx, plannedID, doneStatus); err != nil {
		logger.Error("failed to mark planned activity done", "planned_id", plannedID, "error", err)
		return metrics.OutcomeSynced
	}

	metrics.PlannedActivitiesLinkedTotal.Inc()
	logger.Info("linked planned activity", "planned_id", plannedID)
	return metrics.OutcomeSynced
}
