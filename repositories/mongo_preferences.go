package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/HSouheill/shop_backoffice/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type PreferencesMongoRepository struct {
	collection *mongo.Collection
}

func NewPreferencesRepository(db *mongo.Database) *PreferencesMongoRepository {
	return &PreferencesMongoRepository{collection: db.Collection("admin_preferences")}
}

func (r *PreferencesMongoRepository) Get(ctx context.Context, owner string) (*models.AdminPreferences, error) {
	var prefs models.AdminPreferences
	err := r.collection.FindOne(ctx, bson.M{"_id": owner}).Decode(&prefs)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &prefs, nil
}

func (r *PreferencesMongoRepository) Save(ctx context.Context, prefs *models.AdminPreferences) error {
	prefs.UpdatedAt = time.Now()
	_, err := r.collection.ReplaceOne(ctx,
		bson.M{"_id": prefs.Owner},
		prefs,
		options.Replace().SetUpsert(true),
	)
	return err
}
