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

type TransactionMongoRepository struct {
	collection *mongo.Collection
}

func NewTransactionRepository(db *mongo.Database) *TransactionMongoRepository {
	return &TransactionMongoRepository{collection: db.Collection("transactions")}
}

func (r *TransactionMongoRepository) Create(ctx context.Context, tx *models.Transaction) error {
	now := time.Now()
	if tx.ID.IsZero() {
		tx.ID = primitive.NewObjectID()
	}
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = now
	}
	tx.UpdatedAt = now
	_, err := r.collection.InsertOne(ctx, tx)
	return err
}

func (r *TransactionMongoRepository) List(ctx context.Context, opts ListOptions) ([]models.Transaction, int64, error) {
	filter := listFilter(opts, "status", "paymentDetails.method", "user.name", "user.email", "user.phone")

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	cursor, err := r.collection.Find(ctx, filter, findOptions(opts))
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	transactions := []models.Transaction{}
	if err := cursor.All(ctx, &transactions); err != nil {
		return nil, 0, err
	}
	return transactions, total, nil
}

func (r *TransactionMongoRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Transaction, error) {
	var tx models.Transaction
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&tx)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

// Update applies the patch. The payment fields are written with dotted paths
// under paymentDetails so the rest of the sub-document is left untouched.
func (r *TransactionMongoRepository) Update(ctx context.Context, id primitive.ObjectID, patch models.TransactionPatch) (*models.Transaction, error) {
	set := bson.M{"updatedAt": time.Now()}
	if patch.Status != nil {
		set["status"] = *patch.Status
	}
	if patch.PaymentStatus != nil {
		set["paymentDetails.status"] = *patch.PaymentStatus
	}
	if patch.ShippingMethod != nil {
		set["shippingMethod"] = *patch.ShippingMethod
	}
	if patch.CardDetails != nil {
		set["paymentDetails.cardDetails"] = *patch.CardDetails
	}
	if patch.ReceiptURL != nil {
		set["paymentDetails.receiptUrl"] = *patch.ReceiptURL
	}

	var updated models.Transaction
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

func (r *TransactionMongoRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
