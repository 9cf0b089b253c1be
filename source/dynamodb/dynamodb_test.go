package dynamodb

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	pages []*dynamodb.ScanOutput
	calls int
}

func (f *fakeClient) Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	out := f.pages[f.calls]
	f.calls++
	return out, nil
}

func item(code, desc, category string, keywords ...string) map[string]types.AttributeValue {
	m := map[string]types.AttributeValue{
		"code":        &types.AttributeValueMemberS{Value: code},
		"description": &types.AttributeValueMemberS{Value: desc},
		"category":    &types.AttributeValueMemberS{Value: category},
	}
	if len(keywords) > 0 {
		m["keywords"] = &types.AttributeValueMemberSS{Value: keywords}
	}
	return m
}

func TestSourceRowsPaginates(t *testing.T) {
	client := &fakeClient{
		pages: []*dynamodb.ScanOutput{
			{
				Items: []map[string]types.AttributeValue{
					item("AGE_18_24", "Aged 18 to 24", "demographic", "age", "young"),
				},
				LastEvaluatedKey: map[string]types.AttributeValue{
					"code": &types.AttributeValueMemberS{Value: "AGE_18_24"},
				},
			},
			{
				Items: []map[string]types.AttributeValue{
					item("ENV_GREEN", "Sustainability minded consumers", "psychographic"),
				},
			},
		},
	}

	src := NewSource(client, "audience-catalog")
	assert.Equal(t, "dynamodb://audience-catalog", src.Name())

	rows, err := src.Rows(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 2, client.calls)
	assert.Equal(t, []string{"age", "young"}, rows[0].Keywords)
	assert.Equal(t, "ENV_GREEN", rows[1].Code)
}

func TestSourceRowsRejectsBadItem(t *testing.T) {
	client := &fakeClient{
		pages: []*dynamodb.ScanOutput{
			{
				Items: []map[string]types.AttributeValue{
					{"code": &types.AttributeValueMemberS{Value: "X"}},
				},
			},
		},
	}

	_, err := NewSource(client, "audience-catalog").Rows(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "description")
}
