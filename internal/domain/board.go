package domain

import (
	"time"

	"github.com/google/uuid"
)

// NewID returns a fresh opaque identifier for users and projects.
func NewID() string { return uuid.New().String() }

// User is the aggregate root; projects and tasks are reached only through it.
type User struct {
	UserID   string    `json:"userId"`
	Projects []Project `json:"projects"`
}

// Project is owned by exactly one User. ProjectID is unique within that user only.
type Project struct {
	ProjectID   string `json:"projectId"`
	ProjectName string `json:"projectName"`
	Tasks       []Task `json:"tasks"`
}

// ProjectSummary is the field-masked view of a project (no tasks).
type ProjectSummary struct {
	ProjectID   string `json:"projectId"`
	ProjectName string `json:"projectName"`
}

// Task is owned by exactly one Project. ID is assigned by the store on insert.
// Empty fields are omitted so a wholesale-replaced task shows only what it carries.
type Task struct {
	ID            string     `json:"_id"`
	TaskName      string     `json:"taskName,omitempty"`
	DueDate       *time.Time `json:"dueDate,omitempty"`
	Priority      string     `json:"priority,omitempty"`
	Reminder      string     `json:"reminder,omitempty"`
	TaskCompleted bool       `json:"taskCompleted"`
}

// Summaries returns the id/name pairs of the user's projects, in order.
func (u *User) Summaries() []ProjectSummary {
	return Summarize(u.Projects)
}

// Project returns the first project with the given id, or nil.
func (u *User) Project(projectID string) *Project {
	for i := range u.Projects {
		if u.Projects[i].ProjectID == projectID {
			return &u.Projects[i]
		}
	}
	return nil
}

// Summarize maps projects to their id/name pairs. Never returns nil.
func Summarize(projects []Project) []ProjectSummary {
	out := make([]ProjectSummary, 0, len(projects))
	for _, p := range projects {
		out = append(out, ProjectSummary{ProjectID: p.ProjectID, ProjectName: p.ProjectName})
	}
	return out
}

// Clone returns a deep copy of the user.
func (u *User) Clone() *User {
	c := &User{UserID: u.UserID, Projects: make([]Project, len(u.Projects))}
	for i, p := range u.Projects {
		c.Projects[i] = p.Clone()
	}
	return c
}

// Clone returns a deep copy of the project.
func (p Project) Clone() Project {
	c := Project{ProjectID: p.ProjectID, ProjectName: p.ProjectName, Tasks: make([]Task, len(p.Tasks))}
	for i, t := range p.Tasks {
		c.Tasks[i] = t.Clone()
	}
	return c
}

// Clone returns a copy of the task that shares no pointers with t.
func (t Task) Clone() Task {
	if t.DueDate != nil {
		d := *t.DueDate
		t.DueDate = &d
	}
	return t
}
