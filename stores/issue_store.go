package stores

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"civicpulse-be/apperrors"
	"civicpulse-be/models"
)

// IssuePatch is a partial update of an issue. Nil fields are left untouched;
// set fields are written as a single $set document.
type IssuePatch struct {
	Status                  *models.IssueStatus
	Priority                *models.IssuePriority
	Area                    *string
	AssignedDepartment      *string
	EstimatedResolutionTime *string
	ResolutionNotes         *string
}

// IssueFilter narrows and pages an issue listing
type IssueFilter struct {
	Category string
	Status   string
	Area     string
	Search   string
	Sort     string // "newest" or "oldest"
	Page     int
	Limit    int
}

// CategoryCount is an analytics bucket keyed by category
type CategoryCount struct {
	Name  string `bson:"name" json:"name"`
	Value int64  `bson:"value" json:"value"`
}

// StatusCount is an analytics bucket keyed by status
type StatusCount struct {
	Status string `bson:"status" json:"status"`
	Count  int64  `bson:"count" json:"count"`
}

// IssueStore is the persistent collection of issues
type IssueStore interface {
	Insert(ctx context.Context, issue *models.Issue) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Issue, error)
	List(ctx context.Context, f IssueFilter) ([]models.Issue, int64, error)
	ListByReporter(ctx context.Context, reporter primitive.ObjectID) ([]models.Issue, error)
	ListUnresolved(ctx context.Context) ([]models.Issue, error)
	ListRecent(ctx context.Context, limit int) ([]models.Issue, error)
	Patch(ctx context.Context, id primitive.ObjectID, p IssuePatch) (*models.Issue, error)
	// PatchIfRevision applies p only when the stored revision still matches;
	// a lost race returns apperrors.ErrConflict.
	PatchIfRevision(ctx context.Context, id primitive.ObjectID, revision int64, p IssuePatch) (*models.Issue, error)
	CountByCategory(ctx context.Context) ([]CategoryCount, error)
	CountByStatus(ctx context.Context) ([]StatusCount, error)
	CountCreatedBetween(ctx context.Context, from, to time.Time) (int64, error)
}

// MongoIssueStore implements IssueStore on the "issues" collection
type MongoIssueStore struct {
	col *mongo.Collection
}

func NewMongoIssueStore(db *mongo.Database) *MongoIssueStore {
	return &MongoIssueStore{col: db.Collection("issues")}
}

func (s *MongoIssueStore) Insert(ctx context.Context, issue *models.Issue) error {
	if issue.ID.IsZero() {
		issue.ID = primitive.NewObjectID()
	}
	if _, err := s.col.InsertOne(ctx, issue); err != nil {
		return fmt.Errorf("insert issue: %w", err)
	}
	return nil
}

func (s *MongoIssueStore) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Issue, error) {
	var issue models.Issue
	err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&issue)
	if err == mongo.ErrNoDocuments {
		return nil, fmt.Errorf("issue %s: %w", id.Hex(), apperrors.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find issue: %w", err)
	}
	return &issue, nil
}

func (s *MongoIssueStore) List(ctx context.Context, f IssueFilter) ([]models.Issue, int64, error) {
	filter := bson.M{}

	if f.Category != "" && f.Category != "all" {
		filter["category"] = f.Category
	}
	if f.Status != "" && f.Status != "all" {
		filter["status"] = f.Status
	}
	if f.Area != "" && f.Area != "all" {
		filter["area"] = f.Area
	}
	if f.Search != "" {
		filter["$or"] = []bson.M{
			{"title": bson.M{"$regex": f.Search, "$options": "i"}},
			{"description": bson.M{"$regex": f.Search, "$options": "i"}},
		}
	}

	page := f.Page
	if page < 1 {
		page = 1
	}
	limit := f.Limit
	if limit < 1 || limit > 100 {
		limit = 10
	}
	skip := (page - 1) * limit

	var sortOptions bson.D
	switch f.Sort {
	case "oldest":
		sortOptions = bson.D{{Key: "createdAt", Value: 1}}
	default:
		sortOptions = bson.D{{Key: "createdAt", Value: -1}}
	}

	totalCount, err := s.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count issues: %w", err)
	}

	findOptions := options.Find().
		SetSort(sortOptions).
		SetSkip(int64(skip)).
		SetLimit(int64(limit))

	cursor, err := s.col.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, 0, fmt.Errorf("find issues: %w", err)
	}
	defer cursor.Close(ctx)

	issues := []models.Issue{}
	if err := cursor.All(ctx, &issues); err != nil {
		return nil, 0, fmt.Errorf("decode issues: %w", err)
	}
	return issues, totalCount, nil
}

func (s *MongoIssueStore) ListByReporter(ctx context.Context, reporter primitive.ObjectID) ([]models.Issue, error) {
	return s.find(ctx, bson.M{"reporter": reporter}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
}

func (s *MongoIssueStore) ListUnresolved(ctx context.Context) ([]models.Issue, error) {
	filter := bson.M{"status": bson.M{"$ne": models.Resolved}}
	return s.find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
}

func (s *MongoIssueStore) ListRecent(ctx context.Context, limit int) ([]models.Issue, error) {
	findOptions := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(int64(limit))
	return s.find(ctx, bson.M{}, findOptions)
}

func (s *MongoIssueStore) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Issue, error) {
	cursor, err := s.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find issues: %w", err)
	}
	defer cursor.Close(ctx)

	issues := []models.Issue{}
	if err := cursor.All(ctx, &issues); err != nil {
		return nil, fmt.Errorf("decode issues: %w", err)
	}
	return issues, nil
}

func (s *MongoIssueStore) Patch(ctx context.Context, id primitive.ObjectID, p IssuePatch) (*models.Issue, error) {
	return s.patch(ctx, bson.M{"_id": id}, id, p)
}

func (s *MongoIssueStore) PatchIfRevision(ctx context.Context, id primitive.ObjectID, revision int64, p IssuePatch) (*models.Issue, error) {
	return s.patch(ctx, bson.M{"_id": id, "revision": revision}, id, p)
}

func (s *MongoIssueStore) patch(ctx context.Context, filter bson.M, id primitive.ObjectID, p IssuePatch) (*models.Issue, error) {
	update := bson.M{
		"$set": p.setDoc(time.Now()),
		"$inc": bson.M{"revision": 1},
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated models.Issue
	err := s.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&updated)
	if err == mongo.ErrNoDocuments {
		// Distinguish a missing document from a lost revision race.
		if _, gerr := s.GetByID(ctx, id); gerr != nil {
			return nil, gerr
		}
		return nil, fmt.Errorf("issue %s revision changed: %w", id.Hex(), apperrors.ErrConflict)
	}
	if err != nil {
		return nil, fmt.Errorf("patch issue: %w", err)
	}
	return &updated, nil
}

func (p IssuePatch) setDoc(now time.Time) bson.M {
	set := bson.M{"updatedAt": now}
	if p.Status != nil {
		set["status"] = *p.Status
	}
	if p.Priority != nil {
		set["priority"] = *p.Priority
	}
	if p.Area != nil {
		set["area"] = *p.Area
	}
	if p.AssignedDepartment != nil {
		set["assignedDepartment"] = *p.AssignedDepartment
	}
	if p.EstimatedResolutionTime != nil {
		set["estimatedResolutionTime"] = *p.EstimatedResolutionTime
	}
	if p.ResolutionNotes != nil {
		set["resolutionNotes"] = *p.ResolutionNotes
	}
	return set
}

func (s *MongoIssueStore) CountByCategory(ctx context.Context) ([]CategoryCount, error) {
	pipeline := []bson.M{
		{
			"$group": bson.M{
				"_id":   "$category",
				"count": bson.M{"$sum": 1},
			},
		},
		{
			"$project": bson.M{
				"name":  "$_id",
				"value": "$count",
				"_id":   0,
			},
		},
	}

	cursor, err := s.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate categories: %w", err)
	}
	defer cursor.Close(ctx)

	counts := []CategoryCount{}
	if err := cursor.All(ctx, &counts); err != nil {
		return nil, fmt.Errorf("decode category counts: %w", err)
	}
	return counts, nil
}

func (s *MongoIssueStore) CountByStatus(ctx context.Context) ([]StatusCount, error) {
	pipeline := []bson.M{
		{
			"$group": bson.M{
				"_id":   "$status",
				"count": bson.M{"$sum": 1},
			},
		},
		{
			"$project": bson.M{
				"status": "$_id",
				"count":  1,
				"_id":    0,
			},
		},
	}

	cursor, err := s.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate statuses: %w", err)
	}
	defer cursor.Close(ctx)

	counts := []StatusCount{}
	if err := cursor.All(ctx, &counts); err != nil {
		return nil, fmt.Errorf("decode status counts: %w", err)
	}
	return counts, nil
}

func (s *MongoIssueStore) CountCreatedBetween(ctx context.Context, from, to time.Time) (int64, error) {
	count, err := s.col.CountDocuments(ctx, bson.M{
		"createdAt": bson.M{
			"$gte": from,
			"$lt":  to,
		},
	})
	if err != nil {
		return 0, fmt.Errorf("count issues: %w", err)
	}
	return count, nil
}
