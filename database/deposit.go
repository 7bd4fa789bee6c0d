package database

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/stacksbridge/sbtc-bridge-api/database/models"
	"github.com/stacksbridge/sbtc-bridge-api/types"
)

// CreateDepositRecord stores an issued deposit address. A duplicate
// address is treated as already recorded, not as an error, so repeated
// writes for the same derivation are safe.
func (db *Database) CreateDepositRecord(ctx context.Context, record models.DepositRecord) error {
	collection := db.client.Database(db.databaseName).Collection("deposits")

	_, err := collection.InsertOne(ctx, record)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil
		}
		return fmt.Errorf("failed to create deposit record: %w", err)
	}

	return nil
}

// AttachDepositTxid links a funding transaction to its deposit address.
func (db *Database) AttachDepositTxid(ctx context.Context, address, txid string) error {
	collection := db.client.Database(db.databaseName).Collection("deposits")

	filter := bson.D{{Key: "address", Value: address}}
	update := bson.D{{Key: "$set", Value: bson.D{{Key: "txid", Value: txid}}}}

	result, err := collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to attach deposit txid: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("no deposit found with address %s", address)
	}

	return nil
}

// UpdateDepositStatus moves a deposit record to a new status by its
// funding txid.
func (db *Database) UpdateDepositStatus(ctx context.Context, txid string, status types.TxStatus) error {
	collection := db.client.Database(db.databaseName).Collection("deposits")

	filter := bson.D{{Key: "txid", Value: txid}}
	update := bson.D{{Key: "$set", Value: bson.D{{Key: "status", Value: status}}}}

	result, err := collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update deposit status: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("no deposit found with txid %s", txid)
	}

	return nil
}

// GetDepositByAddress fetches a single deposit record.
func (db *Database) GetDepositByAddress(ctx context.Context, address string) (*models.DepositRecord, error) {
	collection := db.client.Database(db.databaseName).Collection("deposits")

	var record models.DepositRecord
	if err := collection.FindOne(ctx, bson.D{{Key: "address", Value: address}}).Decode(&record); err != nil {
		return nil, fmt.Errorf("failed to get deposit by address: %w", err)
	}

	return &record, nil
}

// GetDepositsByStatus returns every deposit record in the given status,
// used by the confirmation poller.
func (db *Database) GetDepositsByStatus(ctx context.Context, status types.TxStatus) ([]models.DepositRecord, error) {
	collection := db.client.Database(db.databaseName).Collection("deposits")

	opts := options.Find().
		SetHint(bson.D{{Key: "status", Value: 1}}).
		SetBatchSize(1000)

	cursor, err := collection.Find(ctx, bson.D{{Key: "status", Value: status}}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to get deposits by status: %w", err)
	}
	defer cursor.Close(ctx)

	var records []models.DepositRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode deposits: %w", err)
	}

	return records, nil
}

// GetDeposits returns a page of deposit records, newest first.
func (db *Database) GetDeposits(ctx context.Context, filter models.Filter, page, pageSize int64) (*models.PaginatedResult, error) {
	collection := db.client.Database(db.databaseName).Collection("deposits")

	mongoFilter := buildFilter(filter)

	totalCount, err := collection.CountDocuments(ctx, mongoFilter)
	if err != nil {
		return nil, fmt.Errorf("failed to count deposits: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip((page - 1) * pageSize).
		SetLimit(pageSize)

	cursor, err := collection.Find(ctx, mongoFilter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to get deposits: %w", err)
	}
	defer cursor.Close(ctx)

	records := []models.DepositRecord{}
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode deposits: %w", err)
	}

	return &models.PaginatedResult{
		Items:      records,
		TotalCount: totalCount,
		Page:       page,
		PageSize:   pageSize,
	}, nil
}

func buildFilter(f models.Filter) bson.M {
	filter := bson.M{}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.Recipient != "" {
		filter["recipient"] = f.Recipient
	}
	if f.Address != "" {
		filter["address"] = f.Address
	}
	if f.Txid != "" {
		filter["txid"] = f.Txid
	}
	return filter
}
