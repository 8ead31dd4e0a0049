package db

import (
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbattribute"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"
	"github.com/jsphweid/topliner/config"
	"github.com/jsphweid/topliner/model"
	"github.com/pkg/errors"
	"golang.org/x/exp/slices"
)

// Store keeps render reports in a DynamoDB table keyed by "PK".
type Store struct {
	client dynamodbiface.DynamoDBAPI
	table  string
}

func NewStore(cfg config.DynamoConfig) (*Store, error) {
	endpoint := cfg.Endpoint
	sess, err := session.NewSession(&aws.Config{
		Region:   aws.String(cfg.Region),
		Endpoint: &endpoint,
	})
	if err != nil {
		return nil, errors.Wrap(err, "could not create a new DynamoDB session")
	}
	return NewStoreWithClient(dynamodb.New(sess), cfg.Table), nil
}

func NewStoreWithClient(client dynamodbiface.DynamoDBAPI, table string) *Store {
	return &Store{client: client, table: table}
}

func (s *Store) PutReport(r model.RenderReport) error {
	item, err := dynamodbattribute.MarshalMap(r)
	if err != nil {
		return errors.Wrap(err, "could not marshal render report")
	}
	_, err = s.client.PutItem(&dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      item,
	})
	if err != nil {
		return errors.Wrap(err, "error from DynamoDB")
	}
	return nil
}

// ListReports returns every stored report, oldest first.
func (s *Store) ListReports() ([]model.RenderReport, error) {
	var res []model.RenderReport
	var unmarshalErr error
	input := &dynamodb.ScanInput{TableName: aws.String(s.table)}
	err := s.client.ScanPages(input, func(page *dynamodb.ScanOutput, lastPage bool) bool {
		var reports []model.RenderReport
		if err := dynamodbattribute.UnmarshalListOfMaps(page.Items, &reports); err != nil {
			unmarshalErr = err
			return false
		}
		res = append(res, reports...)
		return true
	})
	if err != nil {
		return nil, errors.Wrap(err, "error from DynamoDB")
	}
	if unmarshalErr != nil {
		return nil, errors.Wrap(unmarshalErr, "could not unmarshal render reports")
	}

	slices.SortStableFunc(res, func(a, b model.RenderReport) bool {
		return a.CreatedAt.Before(b.CreatedAt)
	})
	return res, nil
}
