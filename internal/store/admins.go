package store

import (
	"context"
	"fmt"
	"time"

	"github.com/pickup-archive/pickups-api/internal/config"
	"github.com/pickup-archive/pickups-api/internal/metrics"
	"github.com/pickup-archive/pickups-api/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/sirupsen/logrus"
)

const (
	storeDynamo   = "dynamodb"
	usernameIndex = "username-index"
)

// DynamoAPI is the subset of the DynamoDB client the admin store calls.
type DynamoAPI interface {
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// NewDynamoClient builds a DynamoDB client from the default credential chain.
// A non-empty endpoint points it at dynamodb-local.
func NewDynamoClient(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*dynamodb.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.DynamoDB.Region),
	}
	if cfg.AWS.Profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(cfg.AWS.Profile))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.DynamoDB.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.DynamoDB.Endpoint)
		}
	})

	logger.WithFields(logrus.Fields{
		"region":     cfg.DynamoDB.Region,
		"table_name": cfg.DynamoDB.AdminsTableName,
		"endpoint":   cfg.DynamoDB.Endpoint,
	}).Info("DynamoDB client initialized")

	return client, nil
}

// AdminStore reads and writes the admin credential.
type AdminStore struct {
	client    DynamoAPI
	tableName string
}

func NewAdminStore(client DynamoAPI, tableName string) *AdminStore {
	return &AdminStore{client: client, tableName: tableName}
}

// GetByUsername looks the admin up through the username GSI.
func (s *AdminStore) GetByUsername(ctx context.Context, username string) (*models.Admin, error) {
	start := time.Now()

	result, err := s.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.tableName),
		IndexName:              aws.String(usernameIndex),
		KeyConditionExpression: aws.String("username = :username"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":username": &types.AttributeValueMemberS{Value: username},
		},
		Limit: aws.Int32(1),
	})
	if err != nil {
		metrics.RecordStoreOperation(storeDynamo, "get_admin", "failure", time.Since(start))
		return nil, fmt.Errorf("query failed: %w", err)
	}

	if len(result.Items) == 0 {
		metrics.RecordStoreOperation(storeDynamo, "get_admin", "not_found", time.Since(start))
		return nil, ErrNotFound
	}

	var admin models.Admin
	if err := attributevalue.UnmarshalMap(result.Items[0], &admin); err != nil {
		metrics.RecordStoreOperation(storeDynamo, "get_admin", "failure", time.Since(start))
		return nil, fmt.Errorf("unmarshal failed: %w", err)
	}

	metrics.RecordStoreOperation(storeDynamo, "get_admin", "success", time.Since(start))
	return &admin, nil
}

// Save writes the admin, replacing any previous item with the same id.
func (s *AdminStore) Save(ctx context.Context, admin *models.Admin) error {
	start := time.Now()

	item, err := attributevalue.MarshalMap(admin)
	if err != nil {
		return fmt.Errorf("marshal failed: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      item,
	})
	if err != nil {
		metrics.RecordStoreOperation(storeDynamo, "save_admin", "failure", time.Since(start))
		return fmt.Errorf("put item failed: %w", err)
	}

	metrics.RecordStoreOperation(storeDynamo, "save_admin", "success", time.Since(start))
	return nil
}
