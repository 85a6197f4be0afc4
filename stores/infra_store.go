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

// InfrastructurePatch is a partial update of an infrastructure project
type InfrastructurePatch struct {
	Name                *string
	Type                *models.InfrastructureType
	Description         *string
	Location            *models.Location
	Area                *string
	Status              *models.InfrastructureStatus
	Budget              *float64
	EstimatedCompletion *time.Time
	Contractor          *string
	Progress            *int
	Notes               *string
}

// InfrastructureStore is the persistent collection of infrastructure projects
type InfrastructureStore interface {
	Insert(ctx context.Context, project *models.Infrastructure) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Infrastructure, error)
	List(ctx context.Context) ([]models.Infrastructure, error)
	Patch(ctx context.Context, id primitive.ObjectID, p InfrastructurePatch) (*models.Infrastructure, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// MongoInfrastructureStore implements InfrastructureStore on the
// "infrastructure" collection
type MongoInfrastructureStore struct {
	col *mongo.Collection
}

func NewMongoInfrastructureStore(db *mongo.Database) *MongoInfrastructureStore {
	return &MongoInfrastructureStore{col: db.Collection("infrastructure")}
}

func (s *MongoInfrastructureStore) Insert(ctx context.Context, project *models.Infrastructure) error {
	if project.ID.IsZero() {
		project.ID = primitive.NewObjectID()
	}
	if _, err := s.col.InsertOne(ctx, project); err != nil {
		return fmt.Errorf("insert infrastructure project: %w", err)
	}
	return nil
}

func (s *MongoInfrastructureStore) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Infrastructure, error) {
	var project models.Infrastructure
	err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&project)
	if err == mongo.ErrNoDocuments {
		return nil, fmt.Errorf("infrastructure project %s: %w", id.Hex(), apperrors.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find infrastructure project: %w", err)
	}
	return &project, nil
}

func (s *MongoInfrastructureStore) List(ctx context.Context) ([]models.Infrastructure, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := s.col.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, fmt.Errorf("find infrastructure projects: %w", err)
	}
	defer cursor.Close(ctx)

	projects := []models.Infrastructure{}
	if err := cursor.All(ctx, &projects); err != nil {
		return nil, fmt.Errorf("decode infrastructure projects: %w", err)
	}
	return projects, nil
}

func (s *MongoInfrastructureStore) Patch(ctx context.Context, id primitive.ObjectID, p InfrastructurePatch) (*models.Infrastructure, error) {
	update := bson.M{"$set": p.setDoc(time.Now())}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated models.Infrastructure
	err := s.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&updated)
	if err == mongo.ErrNoDocuments {
		return nil, fmt.Errorf("infrastructure project %s: %w", id.Hex(), apperrors.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("patch infrastructure project: %w", err)
	}
	return &updated, nil
}

func (s *MongoInfrastructureStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := s.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete infrastructure project: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("infrastructure project %s: %w", id.Hex(), apperrors.ErrNotFound)
	}
	return nil
}

func (p InfrastructurePatch) setDoc(now time.Time) bson.M {
	set := bson.M{"updatedAt": now}
	if p.Name != nil {
		set["name"] = *p.Name
	}
	if p.Type != nil {
		set["type"] = *p.Type
	}
	if p.Description != nil {
		set["description"] = *p.Description
	}
	if p.Location != nil {
		set["location"] = *p.Location
	}
	if p.Area != nil {
		set["area"] = *p.Area
	}
	if p.Status != nil {
		set["status"] = *p.Status
	}
	if p.Budget != nil {
		set["budget"] = *p.Budget
	}
	if p.EstimatedCompletion != nil {
		set["estimatedCompletion"] = *p.EstimatedCompletion
	}
	if p.Contractor != nil {
		set["contractor"] = *p.Contractor
	}
	if p.Progress != nil {
		set["progress"] = *p.Progress
	}
	if p.Notes != nil {
		set["notes"] = *p.Notes
	}
	return set
}
