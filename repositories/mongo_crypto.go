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

type CryptoPaymentMongoRepository struct {
	collection *mongo.Collection
}

func NewCryptoPaymentRepository(db *mongo.Database) *CryptoPaymentMongoRepository {
	return &CryptoPaymentMongoRepository{collection: db.Collection("crypto_payments")}
}

func (r *CryptoPaymentMongoRepository) Create(ctx context.Context, payment *models.CryptoPayment) error {
	if payment.ID.IsZero() {
		payment.ID = primitive.NewObjectID()
	}
	if payment.CreatedAt.IsZero() {
		payment.CreatedAt = time.Now()
	}
	payment.UpdatedAt = payment.CreatedAt
	_, err := r.collection.InsertOne(ctx, payment)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	return err
}

func (r *CryptoPaymentMongoRepository) FindAll(ctx context.Context) ([]models.CryptoPayment, error) {
	cursor, err := r.collection.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	payments := []models.CryptoPayment{}
	if err := cursor.All(ctx, &payments); err != nil {
		return nil, err
	}
	return payments, nil
}

func (r *CryptoPaymentMongoRepository) FindByTransactionID(ctx context.Context, transactionID string) (*models.CryptoPayment, error) {
	var payment models.CryptoPayment
	err := r.collection.FindOne(ctx, bson.M{"transactionId": transactionID}).Decode(&payment)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *CryptoPaymentMongoRepository) Transition(ctx context.Context, transactionID, from, to string, at time.Time) (bool, error) {
	set := bson.M{"status": to, "updatedAt": at}
	if to == models.CryptoStatusCompleted {
		set["completedAt"] = at
	}
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"transactionId": transactionID, "status": from},
		bson.M{"$set": set},
	)
	if err != nil {
		return false, err
	}
	return result.ModifiedCount > 0, nil
}

func (r *CryptoPaymentMongoRepository) ExpireStale(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.collection.UpdateMany(ctx,
		bson.M{"status": models.CryptoStatusPending, "expiresAt": bson.M{"$lt": now}},
		bson.M{"$set": bson.M{"status": models.CryptoStatusExpired, "updatedAt": now}},
	)
	if err != nil {
		return 0, err
	}
	return result.ModifiedCount, nil
}
