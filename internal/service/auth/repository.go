package auth

import (
	"context"
	"errors"
	"strings"

	"faq-assist-backend/internal/database"
	"faq-assist-backend/internal/model"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

var ErrNotFound = errors.New("auth repository: not found")

type Repository interface {
	CreateUser(ctx context.Context, user model.UserItem) error
	FindUserByEmail(ctx context.Context, email string, role string) (model.UserItem, error)
	GetUser(ctx context.Context, userID string) (model.UserItem, error)
}

type DynamoRepository struct {
	db *database.Database
}

func NewDynamoRepository(db *database.Database) Repository {
	return &DynamoRepository{db: db}
}

func (r *DynamoRepository) CreateUser(ctx context.Context, user model.UserItem) error {
	return r.db.Client.PutItem(ctx, model.UsersTable, user)
}

func (r *DynamoRepository) FindUserByEmail(ctx context.Context, email string, role string) (model.UserItem, error) {
	items, err := r.db.Client.ScanItems(
		ctx,
		model.UsersTable,
		"email = :email AND #role = :role",
		map[string]types.AttributeValue{
			":email": &types.AttributeValueMemberS{Value: email},
			":role":  &types.AttributeValueMemberS{Value: role},
		},
		map[string]string{"#role": "role"},
	)
	if err != nil {
		return model.UserItem{}, err
	}
	if len(items) == 0 {
		return model.UserItem{}, ErrNotFound
	}

	var user model.UserItem
	if err := attributevalue.UnmarshalMap(items[0], &user); err != nil {
		return model.UserItem{}, err
	}
	return user, nil
}

func (r *DynamoRepository) GetUser(ctx context.Context, userID string) (model.UserItem, error) {
	var user model.UserItem
	err := r.db.Client.GetItem(
		ctx,
		model.UsersTable,
		map[string]types.AttributeValue{
			"userId": &types.AttributeValueMemberS{Value: userID},
		},
		&user,
	)
	if err != nil {
		if strings.Contains(err.Error(), "item not found") {
			return model.UserItem{}, ErrNotFound
		}
		return model.UserItem{}, err
	}
	return user, nil
}
