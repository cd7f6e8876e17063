package repositories

import (
	"context"
	"log"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// NewMongoStore wires every repository to collections of db.
func NewMongoStore(db *mongo.Database) *Store {
	return &Store{
		Categories:     NewCategoryRepository(db),
		Products:       NewProductRepository(db),
		Orders:         NewOrderRepository(db),
		Transactions:   NewTransactionRepository(db),
		Payments:       NewPaymentRepository(db),
		CryptoPayments: NewCryptoPaymentRepository(db),
		Preferences:    NewPreferencesRepository(db),
	}
}

// EnsureIndexes creates the indexes the repositories rely on. Failures are
// logged; the service still starts.
func EnsureIndexes(ctx context.Context, db *mongo.Database) {
	indexes := map[string][]mongo.IndexModel{
		"crypto_payments": {
			{Keys: bson.D{{Key: "transactionId", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "expiresAt", Value: 1}}},
		},
		// orderId is not unique; an order may have several payments.
		"payments":     {{Keys: bson.D{{Key: "orderId", Value: 1}}}},
		"orders":       {{Keys: bson.D{{Key: "createdAt", Value: -1}}}},
		"transactions": {{Keys: bson.D{{Key: "createdAt", Value: -1}}}},
		"categories":   {{Keys: bson.D{{Key: "name", Value: 1}}}},
	}

	for collName, models := range indexes {
		if _, err := db.Collection(collName).Indexes().CreateMany(ctx, models); err != nil {
			log.Printf("Error creating indexes for %s: %v", collName, err)
		}
	}
	log.Println("Database indexes setup complete")
}
