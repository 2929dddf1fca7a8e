package archive

import (
	"context"
	"errors"
	"strings"

	"faq-assist-backend/internal/database"
	"faq-assist-backend/internal/model"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

var ErrNotFound = errors.New("archive repository: not found")

type Repository interface {
	PutArchivedSession(ctx context.Context, item model.ArchivedSessionItem) error
	GetArchivedSession(ctx context.Context, sessionID string) (model.ArchivedSessionItem, error)
	ListArchivedSessions(ctx context.Context) ([]model.ArchivedSessionItem, error)
	DeleteArchivedSession(ctx context.Context, sessionID string) error
}

type DynamoRepository struct {
	db *database.Database
}

func NewDynamoRepository(db *database.Database) Repository {
	return &DynamoRepository{db: db}
}

func (r *DynamoRepository) PutArchivedSession(ctx context.Context, item model.ArchivedSessionItem) error {
	return r.db.Client.PutItem(ctx, model.ArchivedSessionsTable, item)
}

func (r *DynamoRepository) GetArchivedSession(ctx context.Context, sessionID string) (model.ArchivedSessionItem, error) {
	var item model.ArchivedSessionItem
	err := r.db.Client.GetItem(
		ctx,
		model.ArchivedSessionsTable,
		map[string]types.AttributeValue{
			"sessionId": &types.AttributeValueMemberS{Value: sessionID},
		},
		&item,
	)
	if err != nil {
		if strings.Contains(err.Error(), "item not found") {
			return model.ArchivedSessionItem{}, ErrNotFound
		}
		return model.ArchivedSessionItem{}, err
	}
	return item, nil
}

func (r *DynamoRepository) ListArchivedSessions(ctx context.Context) ([]model.ArchivedSessionItem, error) {
	raw, err := r.db.Client.ScanAll(ctx, model.ArchivedSessionsTable)
	if err != nil {
		return nil, err
	}

	items := make([]model.ArchivedSessionItem, 0, len(raw))
	for _, attrs := range raw {
		var item model.ArchivedSessionItem
		if err := attributevalue.UnmarshalMap(attrs, &item); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func (r *DynamoRepository) DeleteArchivedSession(ctx context.Context, sessionID string) error {
	return r.db.Client.DeleteItem(
		ctx,
		model.ArchivedSessionsTable,
		map[string]types.AttributeValue{
			"sessionId": &types.AttributeValueMemberS{Value: sessionID},
		},
	)
}
