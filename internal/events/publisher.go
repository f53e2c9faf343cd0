// internal/events/publisher.go
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	apperrors "venture-match/internal/common/errors"
	"venture-match/internal/common/logger"
	"venture-match/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
)

const (
	TypeMatchComputed = "match.computed"
	TypeMatchFeedback = "match.feedback"
	TypeMatchExpired  = "match.expired"
)

// Event is the message body published for downstream notification layers.
type Event struct {
	Type              string                   `json:"type"`
	MatchID           string                   `json:"matchId"`
	StartupID         string                   `json:"startupId"`
	InvestorID        string                   `json:"investorId"`
	MatchType         string                   `json:"matchType"`
	OverallScore      int                      `json:"overallScore,omitempty"`
	ExpectedOutcome   models.ExpectedOutcome   `json:"expectedOutcome,omitempty"`
	RecommendedAction models.RecommendedAction `json:"recommendedAction,omitempty"`
	Status            models.MatchStatus       `json:"status,omitempty"`
	Side              models.FeedbackSide      `json:"side,omitempty"`
	ActualOutcome     *models.ActualOutcome    `json:"actualOutcome,omitempty"`
	OccurredAt        time.Time                `json:"occurredAt"`
}

// FromRecord builds an event of the given type from a record snapshot.
func FromRecord(eventType string, rec *models.MatchRecord, at time.Time) Event {
	return Event{
		Type:              eventType,
		MatchID:           rec.ID,
		StartupID:         rec.StartupID,
		InvestorID:        rec.InvestorID,
		MatchType:         rec.MatchType,
		OverallScore:      rec.OverallScore,
		ExpectedOutcome:   rec.ExpectedOutcome,
		RecommendedAction: rec.RecommendedAction,
		Status:            rec.Status,
		ActualOutcome:     rec.ActualOutcome,
		OccurredAt:        at.UTC(),
	}
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// SNSService is the subset of the SNS client used here.
type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type SNSPublisher struct {
	client   SNSService
	topicARN string
	logger   logger.Logger
}

func NewSNSPublisher(ctx context.Context, region, topicARN, endpoint string, log logger.Logger) (*SNSPublisher, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	client := sns.NewFromConfig(awsCfg, func(o *sns.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})
	return NewSNSPublisherWithClient(client, topicARN, log), nil
}

func NewSNSPublisherWithClient(client SNSService, topicARN string, log logger.Logger) *SNSPublisher {
	return &SNSPublisher{
		client:   client,
		topicARN: topicARN,
		logger:   log.WithFields(map[string]interface{}{"component": "sns-publisher"}),
	}
}

func (p *SNSPublisher) Publish(ctx context.Context, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", event.Type, err)
	}

	out, err := p.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(p.topicARN),
		Message:  aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"eventType": {DataType: aws.String("String"), StringValue: aws.String(event.Type)},
			"matchType": {DataType: aws.String("String"), StringValue: aws.String(event.MatchType)},
		},
	})
	if err != nil {
		return apperrors.NewEventPublishFailedError(event.Type, err)
	}

	p.logger.Debug("event published", map[string]interface{}{
		"eventType": event.Type,
		"matchId":   event.MatchID,
		"messageId": aws.ToString(out.MessageId),
	})
	return nil
}

// NoopPublisher drops every event. Used when SNS is disabled.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, Event) error { return nil }
