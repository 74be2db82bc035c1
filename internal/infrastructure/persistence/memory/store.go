package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/amirhosseinghanipour/taskboard/internal/application/ports"
	"github.com/amirhosseinghanipour/taskboard/internal/domain"
	domerrors "github.com/amirhosseinghanipour/taskboard/internal/domain/errors"
)

// UserProjectStore is an in-memory UserProjectStore suitable for single-instance
// development and tests. Every operation holds the lock, so each is atomic.
type UserProjectStore struct {
	mu    sync.RWMutex
	users map[string]*domain.User
	order []string // insertion order; unscoped project lookups take the first owner
	newID func() string
}

// NewUserProjectStore returns an empty store.
func NewUserProjectStore() *UserProjectStore {
	return &UserProjectStore{
		users: make(map[string]*domain.User),
		newID: domain.NewID,
	}
}

func (s *UserProjectStore) Ping(ctx context.Context) error { return nil }

func (s *UserProjectStore) ProvisionUser(ctx context.Context) (string, error) {
	userID := s.newID()
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[userID]; !ok {
		s.insert(&domain.User{UserID: userID, Projects: []domain.Project{}})
	}
	return userID, nil
}

func (s *UserProjectStore) insert(u *domain.User) {
	s.users[u.UserID] = u
	s.order = append(s.order, u.UserID)
}

func (s *UserProjectStore) CreateProject(ctx context.Context, userID, projectName string) ([]domain.ProjectSummary, error) {
	project := domain.Project{ProjectID: s.newID(), ProjectName: projectName, Tasks: []domain.Task{}}
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		u = &domain.User{UserID: userID}
		s.insert(u)
	}
	u.Projects = append(u.Projects, project)
	return u.Summaries(), nil
}

func (s *UserProjectStore) ListProjects(ctx context.Context, userID string) ([]domain.ProjectSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[userID]
	if !ok {
		return nil, domerrors.ErrUserNotFound
	}
	return u.Summaries(), nil
}

func (s *UserProjectStore) AddTask(ctx context.Context, userID, projectID string, task domain.Task) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return nil, nil
	}
	p := u.Project(projectID)
	if p == nil {
		return nil, nil
	}
	task.ID = uuid.New().String()
	task = task.Clone()
	p.Tasks = append(p.Tasks, task)
	added := task.Clone()
	return &added, nil
}

// UpdateTask replaces every task with taskID in any of the user's projects, the
// same scoping the Mongo store applies.
func (s *UserProjectStore) UpdateTask(ctx context.Context, userID, projectID, taskID string, fields domain.Task) (*domain.User, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return nil, false, domerrors.ErrUserNotFound
	}
	if u.Project(projectID) == nil || !hasTask(u, taskID) {
		return u.Clone(), false, nil
	}
	replacement := fields.Clone()
	replacement.ID = taskID
	for i := range u.Projects {
		for j := range u.Projects[i].Tasks {
			if u.Projects[i].Tasks[j].ID == taskID {
				u.Projects[i].Tasks[j] = replacement.Clone()
			}
		}
	}
	return u.Clone(), true, nil
}

func hasTask(u *domain.User, taskID string) bool {
	for _, p := range u.Projects {
		for _, t := range p.Tasks {
			if t.ID == taskID {
				return true
			}
		}
	}
	return false
}

func (s *UserProjectStore) DeleteTasks(ctx context.Context, projectID string, taskIDs []string) (*domain.Project, int, error) {
	if len(taskIDs) == 0 {
		return nil, 0, domerrors.ErrInvalidRequest
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.ownedProject(projectID)
	if p == nil {
		return nil, 0, domerrors.ErrProjectNotFound
	}
	drop := make(map[string]struct{}, len(taskIDs))
	for _, id := range taskIDs {
		drop[id] = struct{}{}
	}
	kept := make([]domain.Task, 0, len(p.Tasks))
	for _, t := range p.Tasks {
		if _, ok := drop[t.ID]; !ok {
			kept = append(kept, t)
		}
	}
	removed := len(p.Tasks) - len(kept)
	p.Tasks = kept
	c := p.Clone()
	return &c, removed, nil
}

func (s *UserProjectStore) ListTasks(ctx context.Context, projectID string) ([]domain.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p := s.ownedProject(projectID)
	if p == nil {
		return nil, domerrors.ErrProjectNotFound
	}
	return p.Clone().Tasks, nil
}

// ownedProject finds projectID under the first user, in insertion order, who owns it.
func (s *UserProjectStore) ownedProject(projectID string) *domain.Project {
	for _, id := range s.order {
		if p := s.users[id].Project(projectID); p != nil {
			return p
		}
	}
	return nil
}

func (s *UserProjectStore) DeleteProject(ctx context.Context, userID, projectID string) ([]domain.ProjectSummary, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return nil, false, domerrors.ErrUserNotFound
	}
	before := len(u.Projects)
	kept := u.Projects[:0]
	for _, p := range u.Projects {
		if p.ProjectID != projectID {
			kept = append(kept, p)
		}
	}
	u.Projects = kept
	return u.Summaries(), len(kept) < before, nil
}

var _ ports.UserProjectStore = (*UserProjectStore)(nil)
