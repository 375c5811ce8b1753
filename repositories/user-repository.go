package repositories

import (
	"context"
	"fmt"
	"time"

	"task-manager/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type UserRepository struct {
	collection *mongo.Collection
}

func NewUserRepository(collection *mongo.Collection) *UserRepository {
	return &UserRepository{collection: collection}
}

func (r *UserRepository) GetByUUID(ctx context.Context, uuid string) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"uuid": uuid}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("%w: failed to fetch user: %v", models.ErrStorage, err)
	}
	return &user, nil
}

// FindOrCreate returns the existing user for the uuid or inserts a new one
// from the identity provider's attributes.
func (r *UserRepository) FindOrCreate(ctx context.Context, user *models.User) (*models.User, error) {
	existing, err := r.GetByUUID(ctx, user.UUID)
	if err == nil {
		return existing, nil
	}
	if err != models.ErrNotFound {
		return nil, err
	}

	if user.Role == "" {
		user.Role = "user"
	}
	user.CreatedAt = time.Now()
	result, err := r.collection.InsertOne(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to insert user: %v", models.ErrStorage, err)
	}
	user.ID = result.InsertedID.(primitive.ObjectID)
	return user, nil
}

// SearchByName matches users whose name starts with the given prefix,
// case-insensitively.
func (r *UserRepository) SearchByName(ctx context.Context, name string) ([]models.User, error) {
	filter := bson.M{"name": bson.M{"$regex": "^" + name, "$options": "i"}}
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to search users: %v", models.ErrStorage, err)
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err = cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("%w: failed to decode users: %v", models.ErrStorage, err)
	}
	return users, nil
}
