package mongodb

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/amirhosseinghanipour/taskboard/internal/domain"
	domerrors "github.com/amirhosseinghanipour/taskboard/internal/domain/errors"
)

// newTestStore connects to TASKBOARD_TEST_MONGO_URI, or skips.
func newTestStore(t *testing.T) *UserProjectStore {
	t.Helper()
	uri := os.Getenv("TASKBOARD_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("TASKBOARD_TEST_MONGO_URI not set")
	}
	ctx := context.Background()
	client, err := Connect(ctx, uri)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	db := "taskboard_test_" + domain.NewID()[:8]
	t.Cleanup(func() {
		_ = client.Database(db).Drop(context.Background())
		_ = client.Disconnect(context.Background())
	})
	s := NewUserProjectStore(client, db, "users", 5*time.Second)
	if err := s.EnsureIndexes(ctx); err != nil {
		t.Fatalf("indexes: %v", err)
	}
	return s
}

func TestIntegrationScenario(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	userID, err := s.ProvisionUser(ctx)
	if err != nil {
		t.Fatal(err)
	}
	projects, err := s.CreateProject(ctx, userID, "Home")
	if err != nil || len(projects) != 1 {
		t.Fatalf("CreateProject = %v, %v", projects, err)
	}
	p1 := projects[0].ProjectID

	due := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	added, err := s.AddTask(ctx, userID, p1, domain.Task{TaskName: "dishes", DueDate: &due, Priority: "high", Reminder: "1h"})
	if err != nil || added == nil {
		t.Fatalf("AddTask = %v, %v", added, err)
	}
	tasks, err := s.ListTasks(ctx, p1)
	if err != nil || len(tasks) != 1 || tasks[0].ID != added.ID || tasks[0].TaskCompleted {
		t.Fatalf("ListTasks = %+v, %v", tasks, err)
	}

	if _, replaced, err := s.UpdateTask(ctx, userID, p1, added.ID, domain.Task{TaskCompleted: true}); err != nil || !replaced {
		t.Fatalf("UpdateTask replaced=%v err=%v", replaced, err)
	}
	tasks, _ = s.ListTasks(ctx, p1)
	want := domain.Task{ID: added.ID, TaskCompleted: true}
	if len(tasks) != 1 || tasks[0] != want {
		t.Fatalf("after update tasks = %+v, want %+v", tasks, want)
	}

	project, removed, err := s.DeleteTasks(ctx, p1, []string{added.ID})
	if err != nil || removed != 1 || len(project.Tasks) != 0 {
		t.Fatalf("DeleteTasks = %+v, %d, %v", project, removed, err)
	}

	remaining, gone, err := s.DeleteProject(ctx, userID, p1)
	if err != nil || !gone || len(remaining) != 0 {
		t.Fatalf("DeleteProject = %v, %v, %v", remaining, gone, err)
	}
	if _, err := s.ListTasks(ctx, p1); !errors.Is(err, domerrors.ErrNotFound) {
		t.Errorf("ListTasks after delete: %v", err)
	}
}

func TestIntegrationCreateProjectCreatesUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	projects, err := s.CreateProject(ctx, "fresh-user", "Inbox")
	if err != nil || len(projects) != 1 || projects[0].ProjectName != "Inbox" {
		t.Fatalf("CreateProject = %v, %v", projects, err)
	}
	if _, err := s.ListProjects(ctx, "nobody"); !errors.Is(err, domerrors.ErrUserNotFound) {
		t.Errorf("ListProjects(nobody) = %v", err)
	}
}

func sampleTask(name string) domain.Task {
	due := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	return domain.Task{TaskName: name, DueDate: &due, Priority: "high", Reminder: "1h"}
}

// seedUser provisions a user with projects named names and returns their ids.
func seedUser(t *testing.T, s *UserProjectStore, names ...string) (string, []string) {
	t.Helper()
	ctx := context.Background()
	userID, err := s.ProvisionUser(ctx)
	if err != nil {
		t.Fatal(err)
	}
	var ids []string
	for _, name := range names {
		projects, err := s.CreateProject(ctx, userID, name)
		if err != nil {
			t.Fatal(err)
		}
		ids = append(ids, projects[len(projects)-1].ProjectID)
	}
	return userID, ids
}

func TestIntegrationAddTaskUnknownTargetIsNoop(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	userID, projects := seedUser(t, s, "Home")

	if added, err := s.AddTask(ctx, userID, "missing", sampleTask("x")); err != nil || added != nil {
		t.Errorf("unknown project: %v, %v", added, err)
	}
	if added, err := s.AddTask(ctx, "other-user", projects[0], sampleTask("x")); err != nil || added != nil {
		t.Errorf("unknown user: %v, %v", added, err)
	}
	if tasks, err := s.ListTasks(ctx, projects[0]); err != nil || len(tasks) != 0 {
		t.Errorf("ListTasks = %+v, %v", tasks, err)
	}
}

func TestIntegrationUpdateTaskMatchesAcrossProjects(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	userID, projects := seedUser(t, s, "Home", "Work")
	added, err := s.AddTask(ctx, userID, projects[1], sampleTask("report"))
	if err != nil || added == nil {
		t.Fatalf("AddTask = %v, %v", added, err)
	}

	// Addressed through the first project, the task in the second is still replaced.
	_, replaced, err := s.UpdateTask(ctx, userID, projects[0], added.ID, domain.Task{TaskName: "done"})
	if err != nil || !replaced {
		t.Fatalf("UpdateTask replaced=%v err=%v", replaced, err)
	}
	tasks, _ := s.ListTasks(ctx, projects[1])
	want := domain.Task{ID: added.ID, TaskName: "done"}
	if len(tasks) != 1 || tasks[0] != want {
		t.Errorf("tasks = %+v, want [%+v]", tasks, want)
	}
}

func TestIntegrationUpdateTaskNoMatch(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	userID, projects := seedUser(t, s, "Home")
	added, _ := s.AddTask(ctx, userID, projects[0], sampleTask("dishes"))

	user, replaced, err := s.UpdateTask(ctx, userID, projects[0], primitive.NewObjectID().Hex(), domain.Task{TaskCompleted: true})
	if err != nil || replaced {
		t.Fatalf("UpdateTask replaced=%v err=%v", replaced, err)
	}
	if got := user.Project(projects[0]).Tasks; len(got) != 1 || got[0].ID != added.ID || got[0].TaskName != "dishes" {
		t.Errorf("user modified: %+v", got)
	}
	if _, _, err := s.UpdateTask(ctx, "nobody", projects[0], added.ID, domain.Task{}); !errors.Is(err, domerrors.ErrUserNotFound) {
		t.Errorf("unknown user err = %v", err)
	}
}

func TestIntegrationDeleteTasks(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	userID, projects := seedUser(t, s, "Home", "Work")
	p1 := projects[0]
	a, _ := s.AddTask(ctx, userID, p1, sampleTask("a"))
	b, _ := s.AddTask(ctx, userID, p1, sampleTask("b"))
	c, _ := s.AddTask(ctx, userID, p1, sampleTask("c"))
	other, _ := s.AddTask(ctx, userID, projects[1], sampleTask("other"))

	project, removed, err := s.DeleteTasks(ctx, p1, []string{a.ID, b.ID, other.ID})
	if err != nil {
		t.Fatal(err)
	}
	if removed != 2 || len(project.Tasks) != 1 || project.Tasks[0].ID != c.ID {
		t.Errorf("DeleteTasks = %+v, removed %d", project.Tasks, removed)
	}
	if tasks, _ := s.ListTasks(ctx, p1); len(tasks) != 1 || tasks[0].ID != c.ID {
		t.Errorf("stored = %+v", tasks)
	}
	if tasks, _ := s.ListTasks(ctx, projects[1]); len(tasks) != 1 || tasks[0].ID != other.ID {
		t.Errorf("other project touched: %+v", tasks)
	}
	if _, removed, err := s.DeleteTasks(ctx, p1, []string{"unknown"}); err != nil || removed != 0 {
		t.Errorf("unknown id: removed %d, err %v", removed, err)
	}
}

func TestIntegrationNotFound(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	userID, projects := seedUser(t, s, "Home")

	if _, _, err := s.DeleteTasks(ctx, projects[0], nil); !errors.Is(err, domerrors.ErrInvalidRequest) {
		t.Errorf("nil ids err = %v", err)
	}
	if _, _, err := s.DeleteTasks(ctx, "missing", []string{"a"}); !errors.Is(err, domerrors.ErrProjectNotFound) {
		t.Errorf("DeleteTasks unknown project err = %v", err)
	}
	if _, err := s.ListTasks(ctx, "missing"); !errors.Is(err, domerrors.ErrProjectNotFound) {
		t.Errorf("ListTasks unknown project err = %v", err)
	}
	if _, _, err := s.DeleteProject(ctx, "nobody", projects[0]); !errors.Is(err, domerrors.ErrUserNotFound) {
		t.Errorf("DeleteProject unknown user err = %v", err)
	}
	remaining, removed, err := s.DeleteProject(ctx, userID, "missing")
	if err != nil || removed || len(remaining) != 1 {
		t.Errorf("DeleteProject unknown project = %v, %v, %v", remaining, removed, err)
	}
}
