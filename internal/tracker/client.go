// Package tracker talks to the project-tracking service (Jira REST API v3).
package tracker

import (
	"context"
	"time"
)

// Client defines the tracker operations the archiver needs.
type Client interface {
	// ListProjects returns every project visible to the configured account,
	// in the order the tracker returns them.
	ListProjects(ctx context.Context) ([]Project, error)

	// GetLastUpdated returns the project's last activity time,
	// or nil when the tracker does not report one.
	GetLastUpdated(ctx context.Context, projectKey string) (*time.Time, error)

	// ArchiveProject moves the project to the archived status.
	ArchiveProject(ctx context.Context, projectKey string) error
}
