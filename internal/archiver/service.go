// Package archiver archives tracker projects that have been idle longer than
// the retention window and reports the outcome once per run.
package archiver

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kandev/archiver/internal/common/config"
	"github.com/kandev/archiver/internal/common/logger"
	"github.com/kandev/archiver/internal/common/tracing"
	"github.com/kandev/archiver/internal/events"
	"github.com/kandev/archiver/internal/notifications"
	"github.com/kandev/archiver/internal/tracker"
)

// Notifier delivers the run summary. Delivery failures are reported in the
// result, never as an error.
type Notifier interface {
	Notify(ctx context.Context, text string) notifications.Result
}

// Service runs the archive pass.
type Service struct {
	client    tracker.Client
	notifier  Notifier
	publisher *events.Publisher
	cfg       config.ArchiveConfig
	exclude   map[string]struct{}
	logger    *logger.Logger
	now       func() time.Time
}

// NewService creates an archive service. publisher may be nil.
func NewService(client tracker.Client, notifier Notifier, publisher *events.Publisher, cfg config.ArchiveConfig, log *logger.Logger) *Service {
	exclude := make(map[string]struct{}, len(cfg.ExcludeKeys))
	for _, key := range cfg.ExcludeKeys {
		if key = strings.TrimSpace(key); key != "" {
			exclude[key] = struct{}{}
		}
	}
	if log == nil {
		log = logger.Default()
	}
	return &Service{
		client:    client,
		notifier:  notifier,
		publisher: publisher,
		cfg:       cfg,
		exclude:   exclude,
		logger:    log,
		now:       time.Now,
	}
}

// Cutoff returns now minus months calendar months. Day overflow normalises
// forward, so Aug 31 minus six months is Mar 3 in a non-leap year.
func Cutoff(now time.Time, months int) time.Time {
	return now.AddDate(0, -months, 0)
}

// Run lists projects, archives the stale ones in tracker order and sends
// exactly one summary. The first tracker error stops the run before any
// notification; the partial report is returned alongside it.
func (s *Service) Run(ctx context.Context) (report *Report, err error) {
	runID := uuid.New().String()
	ctx = logger.ContextWithRunID(ctx, runID)
	log := s.logger.WithContext(ctx)

	ctx, span := tracing.TraceRun(ctx, runID, s.cfg.RetentionMonths)
	report = &Report{RunID: runID}
	defer func() {
		tracing.EndRun(span, report.Checked, len(report.Archived), err)
	}()

	projects, err := s.client.ListProjects(ctx)
	if err != nil {
		return report, fmt.Errorf("list projects: %w", err)
	}

	report.Cutoff = Cutoff(s.now(), s.cfg.RetentionMonths)
	log.Info("starting archive run",
		zap.Int("projects", len(projects)),
		zap.Time("cutoff", report.Cutoff),
	)

	for _, project := range projects {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if err := s.processProject(ctx, log, report, project); err != nil {
			return report, err
		}
	}

	res := s.notifier.Notify(ctx, report.Message())
	log.Info("archive run completed",
		zap.Int("checked", report.Checked),
		zap.Int("skipped", report.Skipped),
		zap.Strings("archived", report.Archived),
		zap.Bool("notified", res.Delivered),
	)
	s.publisher.RunCompleted(ctx, runID, report.Cutoff, report.Checked, report.Archived)
	return report, nil
}

func (s *Service) processProject(ctx context.Context, log *logger.Logger, report *Report, project tracker.Project) error {
	key := project.Key
	if key == "" {
		log.Warn("skipping project without key", zap.String("project_id", project.ID))
		report.Skipped++
		return nil
	}
	plog := log.WithProject(key)

	lastUpdated, err := s.client.GetLastUpdated(ctx, key)
	if err != nil {
		return fmt.Errorf("get last updated %q: %w", key, err)
	}
	report.Checked++

	switch {
	case lastUpdated == nil:
		plog.Debug("no last updated timestamp, skipping")
		report.Skipped++
		return nil
	case !lastUpdated.Before(report.Cutoff):
		plog.Debug("project is active", zap.Time("last_updated", *lastUpdated))
		report.Skipped++
		return nil
	}

	if _, ok := s.exclude[key]; ok {
		plog.Info("project is stale but excluded", zap.Time("last_updated", *lastUpdated))
		report.Skipped++
		return nil
	}

	if err := s.client.ArchiveProject(ctx, key); err != nil {
		return fmt.Errorf("archive project %q: %w", key, err)
	}
	report.Archived = append(report.Archived, key)
	plog.Info("archived project", zap.Time("last_updated", *lastUpdated))
	s.publisher.ProjectArchived(ctx, report.RunID, key, *lastUpdated)
	return nil
}
