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

type PaymentMongoRepository struct {
	collection *mongo.Collection
}

func NewPaymentRepository(db *mongo.Database) *PaymentMongoRepository {
	return &PaymentMongoRepository{collection: db.Collection("payments")}
}

func (r *PaymentMongoRepository) Create(ctx context.Context, payment *models.Payment) error {
	now := time.Now()
	if payment.ID.IsZero() {
		payment.ID = primitive.NewObjectID()
	}
	if payment.CreatedAt.IsZero() {
		payment.CreatedAt = now
	}
	payment.UpdatedAt = now
	_, err := r.collection.InsertOne(ctx, payment)
	return err
}

func (r *PaymentMongoRepository) find(ctx context.Context, filter bson.M) ([]models.Payment, error) {
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	payments := []models.Payment{}
	if err := cursor.All(ctx, &payments); err != nil {
		return nil, err
	}
	return payments, nil
}

func (r *PaymentMongoRepository) FindAll(ctx context.Context, orderID string) ([]models.Payment, error) {
	filter := bson.M{}
	if orderID != "" {
		filter["orderId"] = orderID
	}
	return r.find(ctx, filter)
}

func (r *PaymentMongoRepository) FindByOrderIDs(ctx context.Context, orderIDs []string) ([]models.Payment, error) {
	if len(orderIDs) == 0 {
		return []models.Payment{}, nil
	}
	return r.find(ctx, bson.M{"orderId": bson.M{"$in": orderIDs}})
}

func (r *PaymentMongoRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Payment, error) {
	var payment models.Payment
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&payment)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *PaymentMongoRepository) Update(ctx context.Context, id primitive.ObjectID, patch models.PaymentPatch) (*models.Payment, error) {
	set := bson.M{"updatedAt": time.Now()}
	fields := map[string]*string{
		"paymentMethod":  patch.PaymentMethod,
		"mobileNumber":   patch.MobileNumber,
		"accountName":    patch.AccountName,
		"accountNumber":  patch.AccountNumber,
		"bankName":       patch.BankName,
		"cnic":           patch.CNIC,
		"transactionRef": patch.TransactionRef,
		"paymentProof":   patch.PaymentProof,
		"status":         patch.Status,
	}
	for key, value := range fields {
		if value != nil {
			set[key] = *value
		}
	}
	for key, value := range patch.Extra {
		set["extra."+key] = value
	}

	var updated models.Payment
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

func (r *PaymentMongoRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
