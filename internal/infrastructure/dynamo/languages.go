package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/learnza/learnza-api/internal/domain"
)

// LanguageRepo provides typed DynamoDB operations for the languages table.
type LanguageRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewLanguageRepo(client *dynamodb.Client, tableName string) *LanguageRepo {
	return &LanguageRepo{client: client, tableName: tableName}
}

func (r *LanguageRepo) Put(ctx context.Context, l *domain.Language) error {
	item, err := attributevalue.MarshalMap(l)
	if err != nil {
		return fmt.Errorf("marshal language: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *LanguageRepo) GetByCode(ctx context.Context, code string) (*domain.Language, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String("code-index"),
		KeyConditionExpression:    aws.String("#c = :v"),
		ExpressionAttributeNames:  map[string]string{"#c": "code"},
		ExpressionAttributeValues: map[string]types.AttributeValue{":v": &types.AttributeValueMemberS{Value: code}},
		Limit:                     aws.Int32(1),
	})
	if err != nil {
		return nil, err
	}
	if len(out.Items) == 0 {
		return nil, fmt.Errorf("language %s: %w", code, domain.ErrNotFound)
	}
	var l domain.Language
	if err := attributevalue.UnmarshalMap(out.Items[0], &l); err != nil {
		return nil, err
	}
	return &l, nil
}

// List returns all enabled catalog languages.
func (r *LanguageRepo) List(ctx context.Context) ([]domain.Language, error) {
	out, err := r.client.Scan(ctx, &dynamodb.ScanInput{
		TableName:                aws.String(r.tableName),
		FilterExpression:         aws.String("#en = :t"),
		ExpressionAttributeNames: map[string]string{"#en": "enable"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":t": &types.AttributeValueMemberBOOL{Value: true},
		},
	})
	if err != nil {
		return nil, err
	}
	var langs []domain.Language
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &langs); err != nil {
		return nil, err
	}
	return langs, nil
}
