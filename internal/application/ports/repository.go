package ports

import (
	"context"

	"github.com/amirhosseinghanipour/taskboard/internal/domain"
)

// UserProjectStore owns all reads and writes against User aggregates.
// Each operation is atomic at the single-document level; there are no cross-document transactions.
type UserProjectStore interface {
	// ProvisionUser creates a user with a fresh id (create-if-absent) and returns the id.
	ProvisionUser(ctx context.Context) (string, error)
	// CreateProject appends a project to the user, creating the user when absent, and returns the updated summaries.
	CreateProject(ctx context.Context, userID, projectName string) ([]domain.ProjectSummary, error)
	ListProjects(ctx context.Context, userID string) ([]domain.ProjectSummary, error)
	// AddTask appends the task with a fresh id. When no user owns the project it is a no-op and returns (nil, nil).
	AddTask(ctx context.Context, userID, projectID string, task domain.Task) (*domain.Task, error)
	// UpdateTask replaces the task wholesale with {taskID, fields}. Omitted fields are dropped.
	// replaced is false when no task matched and the user is returned unmodified.
	UpdateTask(ctx context.Context, userID, projectID, taskID string, fields domain.Task) (user *domain.User, replaced bool, err error)
	// DeleteTasks removes the listed tasks from whichever user owns projectID and
	// reports how many were removed.
	DeleteTasks(ctx context.Context, projectID string, taskIDs []string) (project *domain.Project, removed int, err error)
	ListTasks(ctx context.Context, projectID string) ([]domain.Task, error)
	// DeleteProject removes the project; removed is false when the user did not own it.
	DeleteProject(ctx context.Context, userID, projectID string) (projects []domain.ProjectSummary, removed bool, err error)
	Ping(ctx context.Context) error
}
