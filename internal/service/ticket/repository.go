package ticket

import (
	"context"
	"errors"
	"strings"

	"faq-assist-backend/internal/database"
	"faq-assist-backend/internal/model"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

var ErrNotFound = errors.New("ticket repository: not found")

type Repository interface {
	PutServiceRequest(ctx context.Context, item model.ServiceRequestItem) error
	GetServiceRequest(ctx context.Context, requestID string) (model.ServiceRequestItem, error)
	ListServiceRequests(ctx context.Context) ([]model.ServiceRequestItem, error)
	DeleteServiceRequest(ctx context.Context, requestID string) error
}

type DynamoRepository struct {
	db *database.Database
}

func NewDynamoRepository(db *database.Database) Repository {
	return &DynamoRepository{db: db}
}

func (r *DynamoRepository) PutServiceRequest(ctx context.Context, item model.ServiceRequestItem) error {
	return r.db.Client.PutItem(ctx, model.ServiceRequestsTable, item)
}

func (r *DynamoRepository) GetServiceRequest(ctx context.Context, requestID string) (model.ServiceRequestItem, error) {
	var item model.ServiceRequestItem
	err := r.db.Client.GetItem(
		ctx,
		model.ServiceRequestsTable,
		map[string]types.AttributeValue{
			"requestId": &types.AttributeValueMemberS{Value: requestID},
		},
		&item,
	)
	if err != nil {
		if isNotFound(err) {
			return model.ServiceRequestItem{}, ErrNotFound
		}
		return model.ServiceRequestItem{}, err
	}
	return item, nil
}

func (r *DynamoRepository) ListServiceRequests(ctx context.Context) ([]model.ServiceRequestItem, error) {
	raw, err := r.db.Client.ScanAll(ctx, model.ServiceRequestsTable)
	if err != nil {
		return nil, err
	}

	items := make([]model.ServiceRequestItem, 0, len(raw))
	for _, attrs := range raw {
		var item model.ServiceRequestItem
		if err := attributevalue.UnmarshalMap(attrs, &item); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func (r *DynamoRepository) DeleteServiceRequest(ctx context.Context, requestID string) error {
	return r.db.Client.DeleteItem(
		ctx,
		model.ServiceRequestsTable,
		map[string]types.AttributeValue{
			"requestId": &types.AttributeValueMemberS{Value: requestID},
		},
	)
}

func isNotFound(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "item not found")
}
