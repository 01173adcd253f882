package tracker

import (
	"context"
	"sync"
	"time"
)

// Call records one MockClient invocation.
type Call struct {
	Op  string
	Key string
}

// MockClient implements Client with in-memory data for tests and dry local runs.
type MockClient struct {
	mu          sync.Mutex
	projects    []Project
	lastUpdated map[string]*time.Time
	failures    map[Call]error
	calls       []Call
	archived    []string
}

// NewMockClient creates an empty MockClient.
func NewMockClient() *MockClient {
	return &MockClient{
		lastUpdated: make(map[string]*time.Time),
		failures:    make(map[Call]error),
	}
}

// AddProject appends a project. A nil lastUpdated makes the tracker report no activity date.
func (m *MockClient) AddProject(p Project, lastUpdated *time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.projects = append(m.projects, p)
	m.lastUpdated[p.Key] = lastUpdated
}

// FailOn makes the given operation fail with err. Key is ignored for list projects.
func (m *MockClient) FailOn(op, key string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[Call{Op: op, Key: key}] = err
}

// Calls returns every call made so far, in order.
func (m *MockClient) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Call, len(m.calls))
	copy(out, m.calls)
	return out
}

// Archived returns the keys passed to successful ArchiveProject calls, in order.
func (m *MockClient) Archived() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.archived))
	copy(out, m.archived)
	return out
}

func (m *MockClient) record(op, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, Call{Op: op, Key: key})
	return m.failures[Call{Op: op, Key: key}]
}

func (m *MockClient) ListProjects(_ context.Context) ([]Project, error) {
	if err := m.record(opListProjects, ""); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Project, len(m.projects))
	copy(out, m.projects)
	return out, nil
}

func (m *MockClient) GetLastUpdated(_ context.Context, projectKey string) (*time.Time, error) {
	if err := m.record(opGetLastUpdated, projectKey); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastUpdated[projectKey], nil
}

func (m *MockClient) ArchiveProject(_ context.Context, projectKey string) error {
	if err := m.record(opArchiveProject, projectKey); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.archived = append(m.archived, projectKey)
	return nil
}

// Operation names reported in Call.Op and accepted by FailOn.
const (
	OpListProjects   = opListProjects
	OpGetLastUpdated = opGetLastUpdated
	OpArchiveProject = opArchiveProject
)
