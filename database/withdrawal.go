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

// CreateWithdrawalRecord stores a submitted withdrawal. A duplicate txid
// means the withdrawal is already recorded and is not an error.
func (db *Database) CreateWithdrawalRecord(ctx context.Context, record models.WithdrawalRecord) error {
	collection := db.client.Database(db.databaseName).Collection("withdrawals")

	_, err := collection.InsertOne(ctx, record)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil
		}
		return fmt.Errorf("failed to create withdrawal record: %w", err)
	}

	return nil
}

// UpdateWithdrawalStatus moves a withdrawal record to a new status.
func (db *Database) UpdateWithdrawalStatus(ctx context.Context, txid string, status types.TxStatus) error {
	collection := db.client.Database(db.databaseName).Collection("withdrawals")

	filter := bson.D{{Key: "txid", Value: txid}}
	update := bson.D{{Key: "$set", Value: bson.D{{Key: "status", Value: status}}}}

	result, err := collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update withdrawal status: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("no withdrawal found with txid %s", txid)
	}

	return nil
}

// GetWithdrawals returns a page of withdrawal records, newest first.
func (db *Database) GetWithdrawals(ctx context.Context, filter models.Filter, page, pageSize int64) (*models.PaginatedResult, error) {
	collection := db.client.Database(db.databaseName).Collection("withdrawals")

	mongoFilter := buildFilter(filter)

	totalCount, err := collection.CountDocuments(ctx, mongoFilter)
	if err != nil {
		return nil, fmt.Errorf("failed to count withdrawals: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip((page - 1) * pageSize).
		SetLimit(pageSize)

	cursor, err := collection.Find(ctx, mongoFilter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to get withdrawals: %w", err)
	}
	defer cursor.Close(ctx)

	records := []models.WithdrawalRecord{}
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode withdrawals: %w", err)
	}

	return &models.PaginatedResult{
		Items:      records,
		TotalCount: totalCount,
		Page:       page,
		PageSize:   pageSize,
	}, nil
}
