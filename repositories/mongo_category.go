package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/HSouheill/shop_backoffice/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type CategoryMongoRepository struct {
	collection *mongo.Collection
}

func NewCategoryRepository(db *mongo.Database) *CategoryMongoRepository {
	return &CategoryMongoRepository{collection: db.Collection("categories")}
}

func (r *CategoryMongoRepository) Create(ctx context.Context, category *models.Category) error {
	now := time.Now()
	if category.ID.IsZero() {
		category.ID = primitive.NewObjectID()
	}
	if category.Subcategories == nil {
		category.Subcategories = []models.Subcategory{}
	}
	if category.CreatedAt.IsZero() {
		category.CreatedAt = now
	}
	category.UpdatedAt = now
	_, err := r.collection.InsertOne(ctx, category)
	return err
}

func (r *CategoryMongoRepository) FindAll(ctx context.Context) ([]models.Category, error) {
	cursor, err := r.collection.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	categories := []models.Category{}
	if err := cursor.All(ctx, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *CategoryMongoRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Category, error) {
	var category models.Category
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&category)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *CategoryMongoRepository) ExistsByName(ctx context.Context, name string, exclude primitive.ObjectID) (bool, error) {
	filter := bson.M{"name": name}
	if !exclude.IsZero() {
		filter["_id"] = bson.M{"$ne": exclude}
	}
	count, err := r.collection.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	return count > 0, err
}

func (r *CategoryMongoRepository) Update(ctx context.Context, id primitive.ObjectID, patch models.CategoryPatch) (*models.Category, error) {
	set := bson.M{"updatedAt": time.Now()}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.Image != nil {
		set["image"] = *patch.Image
	}

	var updated models.Category
	err := r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *CategoryMongoRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// AddSubcategory appends to the embedded array with $push so concurrent
// writers to the same category do not overwrite each other.
func (r *CategoryMongoRepository) AddSubcategory(ctx context.Context, categoryID primitive.ObjectID, sub *models.Subcategory) error {
	if sub.ID.IsZero() {
		sub.ID = primitive.NewObjectID()
	}
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": categoryID},
		bson.M{
			"$push": bson.M{"subcategories": sub},
			"$set":  bson.M{"updatedAt": time.Now()},
		},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *CategoryMongoRepository) UpdateSubcategory(ctx context.Context, categoryID, subID primitive.ObjectID, patch models.SubcategoryPatch) (*models.Subcategory, error) {
	set := bson.M{"updatedAt": time.Now()}
	if patch.Name != nil {
		set["subcategories.$.name"] = *patch.Name
	}
	if patch.Description != nil {
		set["subcategories.$.description"] = *patch.Description
	}
	if patch.Image != nil {
		set["subcategories.$.image"] = *patch.Image
	}

	var updated models.Category
	err := r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": categoryID, "subcategories._id": subID},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	sub := updated.FindSubcategory(subID)
	if sub == nil {
		return nil, ErrNotFound
	}
	return sub, nil
}

func (r *CategoryMongoRepository) RemoveSubcategory(ctx context.Context, categoryID, subID primitive.ObjectID) error {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": categoryID, "subcategories._id": subID},
		bson.M{
			"$pull": bson.M{"subcategories": bson.M{"_id": subID}},
			"$set":  bson.M{"updatedAt": time.Now()},
		},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
