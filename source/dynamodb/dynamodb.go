// Package dynamodb provides a catalog source reading descriptor items from a
// DynamoDB table.
//
// Expected item shape:
//
//   - code (S, partition key)
//   - description (S)
//   - category (S)
//   - keywords (SS, optional)
//
// Create a compatible table with:
//
//	aws dynamodb create-table \
//	  --table-name audience-catalog \
//	  --attribute-definitions AttributeName=code,AttributeType=S \
//	  --key-schema AttributeName=code,KeyType=HASH \
//	  --billing-mode PAY_PER_REQUEST
package dynamodb

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/hupe1980/segmenta/source"
)

// Client is the subset of the DynamoDB API the source uses.
// *dynamodb.Client satisfies it; tests may substitute a fake.
type Client interface {
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// Source reads descriptor rows by scanning a DynamoDB table.
type Source struct {
	client Client
	table  string
}

// NewSource creates a Source for the given table.
func NewSource(client Client, table string) *Source {
	return &Source{client: client, table: table}
}

// NewFromDefaultConfig creates a Source using the default AWS credential and
// region chain.
func NewFromDefaultConfig(ctx context.Context, table string) (*Source, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return NewSource(dynamodb.NewFromConfig(cfg), table), nil
}

// Name implements source.Source.
func (s *Source) Name() string {
	return fmt.Sprintf("dynamodb://%s", s.table)
}

// Rows implements source.Source. The table is scanned page by page; item
// order within the table is not significant because the catalog builder
// dedups by code across the ordered source list, not within one source.
func (s *Source) Rows(ctx context.Context) ([]source.Row, error) {
	var rows []source.Row
	var startKey map[string]types.AttributeValue

	for {
		out, err := s.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:         aws.String(s.table),
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", s.Name(), err)
		}

		for _, item := range out.Items {
			row, err := itemToRow(item)
			if err != nil {
				return nil, fmt.Errorf("scan %s: %w", s.Name(), err)
			}
			rows = append(rows, row)
		}

		if len(out.LastEvaluatedKey) == 0 {
			break
		}
		startKey = out.LastEvaluatedKey
	}

	return rows, nil
}

func itemToRow(item map[string]types.AttributeValue) (source.Row, error) {
	code, err := stringAttr(item, "code")
	if err != nil {
		return source.Row{}, err
	}
	description, err := stringAttr(item, "description")
	if err != nil {
		return source.Row{}, err
	}
	category, err := stringAttr(item, "category")
	if err != nil {
		return source.Row{}, err
	}

	row := source.Row{
		Code:        code,
		Description: description,
		Category:    category,
	}

	if kw, ok := item["keywords"]; ok {
		ss, ok := kw.(*types.AttributeValueMemberSS)
		if !ok {
			return source.Row{}, fmt.Errorf("item %q: keywords must be a string set", code)
		}
		row.Keywords = append(row.Keywords, ss.Value...)
	}

	return row, nil
}

func stringAttr(item map[string]types.AttributeValue, name string) (string, error) {
	av, ok := item[name]
	if !ok {
		return "", fmt.Errorf("item missing attribute %q", name)
	}
	s, ok := av.(*types.AttributeValueMemberS)
	if !ok || s.Value == "" {
		return "", fmt.Errorf("attribute %q must be a non-empty string", name)
	}
	return s.Value, nil
}
