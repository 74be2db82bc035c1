package mongodb

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/amirhosseinghanipour/taskboard/internal/application/ports"
	"github.com/amirhosseinghanipour/taskboard/internal/domain"
	domerrors "github.com/amirhosseinghanipour/taskboard/internal/domain/errors"
)

const defaultOpTimeout = 5 * time.Second

// UserProjectStore keeps one User document per user in a single collection.
// Mutations are single path-scoped operators ($push, $set with array filters, $pull),
// so concurrent writers to the same user never lose each other's updates.
type UserProjectStore struct {
	client    *mongo.Client
	coll      *mongo.Collection
	opTimeout time.Duration
}

// NewUserProjectStore binds the store to database.collection. opTimeout <= 0 uses 5s.
func NewUserProjectStore(client *mongo.Client, database, collection string, opTimeout time.Duration) *UserProjectStore {
	if opTimeout <= 0 {
		opTimeout = defaultOpTimeout
	}
	return &UserProjectStore{
		client:    client,
		coll:      client.Database(database).Collection(collection),
		opTimeout: opTimeout,
	}
}

// EnsureIndexes creates the unique userId index and the projectId lookup index.
func (s *UserProjectStore) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	_, err := s.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "userId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "projects.projectId", Value: 1}}},
	})
	return domerrors.Storage("create indexes", err)
}

func (s *UserProjectStore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.opTimeout)
}

func (s *UserProjectStore) Ping(ctx context.Context) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *UserProjectStore) ProvisionUser(ctx context.Context) (string, error) {
	userID := domain.NewID()
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	err := s.coll.FindOne(ctx, bson.M{"userId": userID}).Err()
	if err == nil {
		return userID, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return "", domerrors.Storage("find user", err)
	}
	_, err = s.coll.InsertOne(ctx, userDocument{UserID: userID, Projects: []projectDocument{}})
	if err != nil && !mongo.IsDuplicateKeyError(err) {
		return "", domerrors.Storage("insert user", err)
	}
	return userID, nil
}

func (s *UserProjectStore) CreateProject(ctx context.Context, userID, projectName string) ([]domain.ProjectSummary, error) {
	project := projectDocument{
		ProjectID:   domain.NewID(),
		ProjectName: projectName,
		Tasks:       []taskDocument{},
	}
	if err := s.appendProject(ctx, userID, project); err != nil {
		return nil, err
	}
	return s.ListProjects(ctx, userID)
}

// appendProject pushes onto an existing user, or inserts the user holding only
// this project. A duplicate key on insert means a concurrent request created
// the user first, so the push is retried once.
func (s *UserProjectStore) appendProject(ctx context.Context, userID string, project projectDocument) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	filter := bson.M{"userId": userID}
	push := bson.M{"$push": bson.M{"projects": project}}
	res, err := s.coll.UpdateOne(ctx, filter, push)
	if err != nil {
		return domerrors.Storage("push project", err)
	}
	if res.MatchedCount > 0 {
		return nil
	}
	_, err = s.coll.InsertOne(ctx, userDocument{UserID: userID, Projects: []projectDocument{project}})
	if err == nil {
		return nil
	}
	if !mongo.IsDuplicateKeyError(err) {
		return domerrors.Storage("insert user", err)
	}
	_, err = s.coll.UpdateOne(ctx, filter, push)
	return domerrors.Storage("push project", err)
}

func (s *UserProjectStore) ListProjects(ctx context.Context, userID string) ([]domain.ProjectSummary, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	opts := options.FindOne().SetProjection(bson.M{
		"_id":                  0,
		"projects.projectId":   1,
		"projects.projectName": 1,
	})
	var doc userDocument
	err := s.coll.FindOne(ctx, bson.M{"userId": userID}, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domerrors.ErrUserNotFound
	}
	if err != nil {
		return nil, domerrors.Storage("list projects", err)
	}
	return doc.toDomain().Summaries(), nil
}

func (s *UserProjectStore) AddTask(ctx context.Context, userID, projectID string, task domain.Task) (*domain.Task, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	doc := newTaskDocument(primitive.NewObjectID(), task)
	res, err := s.coll.UpdateOne(ctx,
		bson.M{"userId": userID, "projects.projectId": projectID},
		bson.M{"$push": bson.M{"projects.$.tasks": doc}},
	)
	if err != nil {
		return nil, domerrors.Storage("push task", err)
	}
	if res.MatchedCount == 0 {
		return nil, nil
	}
	added := doc.toDomain()
	return &added, nil
}

// UpdateTask matches the task id across every project of the user; projectID only
// gates the user lookup. Existing data relies on this, so it is kept as is.
func (s *UserProjectStore) UpdateTask(ctx context.Context, userID, projectID, taskID string, fields domain.Task) (*domain.User, bool, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	ids := idCandidates(taskID)
	filter := bson.M{
		"userId":             userID,
		"projects.projectId": projectID,
		"projects.tasks._id": bson.M{"$in": ids},
	}
	update := bson.M{"$set": bson.M{
		"projects.$[].tasks.$[task]": newTaskDocument(storedTaskID(taskID), fields),
	}}
	opts := options.FindOneAndUpdate().
		SetArrayFilters(options.ArrayFilters{Filters: []interface{}{
			bson.M{"task._id": bson.M{"$in": ids}},
		}}).
		SetReturnDocument(options.After)

	var doc userDocument
	err := s.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if err == nil {
		return doc.toDomain(), true, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, domerrors.Storage("update task", err)
	}
	err = s.coll.FindOne(ctx, bson.M{"userId": userID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, domerrors.ErrUserNotFound
	}
	if err != nil {
		return nil, false, domerrors.Storage("find user", err)
	}
	return doc.toDomain(), false, nil
}

// DeleteTasks reads the pre-image of the $pull and applies the same removal to
// it, which yields both the post-image and the number of tasks removed.
func (s *UserProjectStore) DeleteTasks(ctx context.Context, projectID string, taskIDs []string) (*domain.Project, int, error) {
	if len(taskIDs) == 0 {
		return nil, 0, domerrors.ErrInvalidRequest
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	ids := idCandidates(taskIDs...)
	update := bson.M{"$pull": bson.M{
		"projects.$[p].tasks": bson.M{"_id": bson.M{"$in": ids}},
	}}
	opts := options.FindOneAndUpdate().
		SetArrayFilters(options.ArrayFilters{Filters: []interface{}{
			bson.M{"p.projectId": projectID},
		}}).
		SetReturnDocument(options.Before)

	var doc userDocument
	err := s.coll.FindOneAndUpdate(ctx, bson.M{"projects.projectId": projectID}, update, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, 0, domerrors.ErrProjectNotFound
	}
	if err != nil {
		return nil, 0, domerrors.Storage("delete tasks", err)
	}
	removed := doc.pullTasks(projectID, ids)
	p := doc.toDomain().Project(projectID)
	if p == nil {
		return nil, 0, domerrors.ErrProjectNotFound
	}
	return p, removed, nil
}

func (s *UserProjectStore) ListTasks(ctx context.Context, projectID string) ([]domain.Task, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	opts := options.FindOne().SetProjection(bson.M{"_id": 0, "projects.$": 1})
	var doc userDocument
	err := s.coll.FindOne(ctx, bson.M{"projects.projectId": projectID}, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domerrors.ErrProjectNotFound
	}
	if err != nil {
		return nil, domerrors.Storage("list tasks", err)
	}
	p := doc.toDomain().Project(projectID)
	if p == nil {
		return nil, domerrors.ErrProjectNotFound
	}
	return p.Tasks, nil
}

func (s *UserProjectStore) DeleteProject(ctx context.Context, userID, projectID string) ([]domain.ProjectSummary, bool, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.Before)
	var doc userDocument
	err := s.coll.FindOneAndUpdate(ctx,
		bson.M{"userId": userID},
		bson.M{"$pull": bson.M{"projects": bson.M{"projectId": projectID}}},
		opts,
	).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, domerrors.ErrUserNotFound
	}
	if err != nil {
		return nil, false, domerrors.Storage("delete project", err)
	}
	removed := doc.pullProject(projectID)
	return doc.toDomain().Summaries(), removed, nil
}

// Ensure UserProjectStore implements ports.UserProjectStore.
var _ ports.UserProjectStore = (*UserProjectStore)(nil)
