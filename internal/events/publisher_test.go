package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	apperrors "venture-match/internal/common/errors"
	"venture-match/internal/common/logger"
	"venture-match/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockSNSService struct {
	PublishFunc func(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

func (m *MockSNSService) Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	return m.PublishFunc(ctx, params, optFns...)
}

func testRecord() *models.MatchRecord {
	return &models.MatchRecord{
		ID:                "m-1",
		StartupID:         "s-1",
		InvestorID:        "i-1",
		MatchType:         models.DefaultMatchType,
		OverallScore:      84,
		ExpectedOutcome:   models.OutcomeHighProbabilityInvestment,
		RecommendedAction: models.ActionImmediateIntroduction,
		Status:            models.MatchStatusActive,
	}
}

func TestSNSPublisher_Publish(t *testing.T) {
	var captured *sns.PublishInput
	mock := &MockSNSService{
		PublishFunc: func(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
			captured = params
			return &sns.PublishOutput{MessageId: aws.String("msg-1")}, nil
		},
	}
	pub := NewSNSPublisherWithClient(mock, "arn:aws:sns:us-east-1:123456789012:matches", logger.NewTestLogger(t))
	at := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	err := pub.Publish(context.Background(), FromRecord(TypeMatchComputed, testRecord(), at))
	require.NoError(t, err)

	require.NotNil(t, captured)
	assert.Equal(t, "arn:aws:sns:us-east-1:123456789012:matches", aws.ToString(captured.TopicArn))
	assert.Equal(t, TypeMatchComputed, aws.ToString(captured.MessageAttributes["eventType"].StringValue))

	var body Event
	require.NoError(t, json.Unmarshal([]byte(aws.ToString(captured.Message)), &body))
	assert.Equal(t, "m-1", body.MatchID)
	assert.Equal(t, 84, body.OverallScore)
	assert.Equal(t, models.ActionImmediateIntroduction, body.RecommendedAction)
	assert.True(t, at.Equal(body.OccurredAt))
}

func TestSNSPublisher_Failure(t *testing.T) {
	mock := &MockSNSService{
		PublishFunc: func(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
			return nil, errors.New("SNS service unavailable")
		},
	}
	pub := NewSNSPublisherWithClient(mock, "arn", logger.NewNoOpLogger())

	err := pub.Publish(context.Background(), Event{Type: TypeMatchFeedback, MatchID: "m-1"})

	var stdErr *apperrors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, apperrors.ErrCodeEventPublishFailed, stdErr.Code)
	assert.Contains(t, stdErr.Details, "match.feedback")
	assert.True(t, stdErr.Retryable)
}

func TestNoopPublisher(t *testing.T) {
	var p Publisher = NoopPublisher{}
	assert.NoError(t, p.Publish(context.Background(), Event{Type: TypeMatchExpired}))
}
