package repositories

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/HSouheill/shop_backoffice/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type OrderMongoRepository struct {
	collection *mongo.Collection
}

func NewOrderRepository(db *mongo.Database) *OrderMongoRepository {
	return &OrderMongoRepository{collection: db.Collection("orders")}
}

func (r *OrderMongoRepository) Create(ctx context.Context, order *models.Order) error {
	now := time.Now()
	if order.ID.IsZero() {
		order.ID = primitive.NewObjectID()
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	order.UpdatedAt = now
	_, err := r.collection.InsertOne(ctx, order)
	return err
}

// listFilter builds the query shared by Find and CountDocuments. The field
// paths differ per collection, so callers pass them in.
func listFilter(opts ListOptions, statusField, methodField string, searchFields ...string) bson.M {
	filter := bson.M{}
	if opts.Status != "" {
		filter[statusField] = opts.Status
	}
	if opts.PaymentMethod != "" {
		filter[methodField] = primitive.Regex{Pattern: "^" + regexp.QuoteMeta(opts.PaymentMethod) + "$", Options: "i"}
	}
	if opts.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(opts.Search), Options: "i"}
		var or bson.A
		for _, field := range searchFields {
			or = append(or, bson.M{field: pattern})
		}
		filter["$or"] = or
	}
	return filter
}

func findOptions(opts ListOptions) *options.FindOptions {
	findOpts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if opts.Limit > 0 {
		findOpts.SetSkip(opts.Skip()).SetLimit(opts.Limit)
	}
	return findOpts
}

func (r *OrderMongoRepository) List(ctx context.Context, opts ListOptions) ([]models.Order, int64, error) {
	filter := listFilter(opts, "status", "paymentMethod", "customer.name", "customer.email", "customer.phone")

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	cursor, err := r.collection.Find(ctx, filter, findOptions(opts))
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	orders := []models.Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *OrderMongoRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	var order models.Order
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&order)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *OrderMongoRepository) Update(ctx context.Context, id primitive.ObjectID, patch models.OrderPatch) (*models.Order, error) {
	set := bson.M{"updatedAt": time.Now()}
	if patch.Customer != nil {
		set["customer"] = *patch.Customer
	}
	if patch.Products != nil {
		recomputed := models.Order{Products: patch.Products}
		recomputed.ComputeTotals()
		set["products"] = recomputed.Products
		set["totalQuantity"] = recomputed.TotalQuantity
		set["grandTotal"] = recomputed.GrandTotal
	}
	if patch.ShippingMethod != nil {
		set["shippingMethod"] = *patch.ShippingMethod
	}
	if patch.PaymentMethod != nil {
		set["paymentMethod"] = *patch.PaymentMethod
	}
	if patch.PaymentStatus != nil {
		set["paymentStatus"] = *patch.PaymentStatus
	}
	if patch.Status != nil {
		set["status"] = *patch.Status
	}

	var updated models.Order
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

func (r *OrderMongoRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
