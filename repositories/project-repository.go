package repositories

import (
	"context"
	"fmt"

	"task-manager/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ProjectRepository struct {
	collection *mongo.Collection
}

func NewProjectRepository(collection *mongo.Collection) *ProjectRepository {
	return &ProjectRepository{collection: collection}
}

func (r *ProjectRepository) Insert(ctx context.Context, project *models.Project) error {
	result, err := r.collection.InsertOne(ctx, project)
	if err != nil {
		return fmt.Errorf("%w: failed to insert project: %v", models.ErrStorage, err)
	}
	project.ID = result.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *ProjectRepository) GetByID(ctx context.Context, projectID string) (*models.Project, error) {
	objectID, err := primitive.ObjectIDFromHex(projectID)
	if err != nil {
		return nil, models.ErrNotFound
	}

	var project models.Project
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&project)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("%w: failed to fetch project: %v", models.ErrStorage, err)
	}

	return &project, nil
}

// ListByAuthor returns the author's projects, most recently updated first.
func (r *ProjectRepository) ListByAuthor(ctx context.Context, authorID string) ([]models.Project, error) {
	opts := options.Find().SetSort(bson.M{"updatedAt": -1})
	cursor, err := r.collection.Find(ctx, bson.M{"authorId": authorID}, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list projects: %v", models.ErrStorage, err)
	}
	defer cursor.Close(ctx)

	var projects []models.Project
	if err = cursor.All(ctx, &projects); err != nil {
		return nil, fmt.Errorf("%w: failed to decode projects: %v", models.ErrStorage, err)
	}

	return projects, nil
}

// Save replaces the stored document with the given state. Callers must hold
// the per-project lock so the replace cannot clobber a concurrent mutation.
func (r *ProjectRepository) Save(ctx context.Context, project *models.Project) error {
	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": project.ID}, project)
	if err != nil {
		return fmt.Errorf("%w: failed to save project: %v", models.ErrStorage, err)
	}
	if result.MatchedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *ProjectRepository) Delete(ctx context.Context, projectID string) error {
	objectID, err := primitive.ObjectIDFromHex(projectID)
	if err != nil {
		return models.ErrNotFound
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("%w: failed to delete project: %v", models.ErrStorage, err)
	}
	if result.DeletedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}
