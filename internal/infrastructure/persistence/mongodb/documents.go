package mongodb

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/amirhosseinghanipour/taskboard/internal/domain"
)

// userDocument is the stored shape of a User aggregate. Field names match the
// documents written by earlier deployments so existing collections decode as-is.
type userDocument struct {
	ID       primitive.ObjectID `bson:"_id,omitempty"`
	UserID   string             `bson:"userId"`
	Projects []projectDocument  `bson:"projects"`
}

type projectDocument struct {
	ProjectID   string         `bson:"projectId"`
	ProjectName string         `bson:"projectName"`
	Tasks       []taskDocument `bson:"tasks"`
}

// taskDocument keeps _id untyped: older documents carry ObjectIDs, replaced
// tasks may carry strings. Everything above this layer sees the string form.
type taskDocument struct {
	ID            interface{} `bson:"_id"`
	TaskName      string      `bson:"taskName,omitempty"`
	DueDate       *time.Time  `bson:"dueDate,omitempty"`
	Priority      string      `bson:"priority,omitempty"`
	Reminder      string      `bson:"reminder,omitempty"`
	TaskCompleted bool        `bson:"taskCompleted"`
}

func newTaskDocument(id interface{}, t domain.Task) taskDocument {
	return taskDocument{
		ID:            id,
		TaskName:      t.TaskName,
		DueDate:       t.DueDate,
		Priority:      t.Priority,
		Reminder:      t.Reminder,
		TaskCompleted: t.TaskCompleted,
	}
}

func (d userDocument) toDomain() *domain.User {
	u := &domain.User{UserID: d.UserID, Projects: make([]domain.Project, 0, len(d.Projects))}
	for _, p := range d.Projects {
		u.Projects = append(u.Projects, p.toDomain())
	}
	return u
}

func (d projectDocument) toDomain() domain.Project {
	p := domain.Project{ProjectID: d.ProjectID, ProjectName: d.ProjectName, Tasks: make([]domain.Task, 0, len(d.Tasks))}
	for _, t := range d.Tasks {
		p.Tasks = append(p.Tasks, t.toDomain())
	}
	return p
}

func (d taskDocument) toDomain() domain.Task {
	return domain.Task{
		ID:            stringifyID(d.ID),
		TaskName:      d.TaskName,
		DueDate:       d.DueDate,
		Priority:      d.Priority,
		Reminder:      d.Reminder,
		TaskCompleted: d.TaskCompleted,
	}
}

// stringifyID renders a stored identifier in its canonical string form.
func stringifyID(v interface{}) string {
	switch id := v.(type) {
	case nil:
		return ""
	case string:
		return id
	case primitive.ObjectID:
		return id.Hex()
	default:
		return fmt.Sprint(id)
	}
}

// storedTaskID is the representation written for a task id: an ObjectID when
// the string is one, the raw string otherwise.
func storedTaskID(id string) interface{} {
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		return oid
	}
	return id
}

// idCandidates lists every stored form the given ids may take, for use with $in.
func idCandidates(ids ...string) bson.A {
	out := make(bson.A, 0, 2*len(ids))
	for _, id := range ids {
		out = append(out, id)
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			out = append(out, oid)
		}
	}
	return out
}

// pullTasks removes from every project with projectID the tasks whose stored _id
// is one of ids, as the server-side $pull does, and returns how many it dropped.
func (d *userDocument) pullTasks(projectID string, ids bson.A) int {
	removed := 0
	for i := range d.Projects {
		p := &d.Projects[i]
		if p.ProjectID != projectID {
			continue
		}
		kept := make([]taskDocument, 0, len(p.Tasks))
		for _, t := range p.Tasks {
			if containsID(ids, t.ID) {
				removed++
				continue
			}
			kept = append(kept, t)
		}
		p.Tasks = kept
	}
	return removed
}

// pullProject drops projects with projectID and reports whether any was present.
func (d *userDocument) pullProject(projectID string) bool {
	kept := make([]projectDocument, 0, len(d.Projects))
	for _, p := range d.Projects {
		if p.ProjectID != projectID {
			kept = append(kept, p)
		}
	}
	removed := len(kept) < len(d.Projects)
	d.Projects = kept
	return removed
}

// containsID compares by BSON type and value, so "42" never equals 42.
func containsID(ids bson.A, v interface{}) bool {
	switch v.(type) {
	case string, primitive.ObjectID:
	default:
		return false
	}
	for _, id := range ids {
		if id == v {
			return true
		}
	}
	return false
}
