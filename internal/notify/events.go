// Package notify announces committed pipeline results over SNS and SES.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	awsclient "valyntra-workers/internal/common/aws"
	"valyntra-workers/internal/common/errors"
	"valyntra-workers/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	snstypes "github.com/aws/aws-sdk-go-v2/service/sns/types"
)

const (
	EventsSinkName = "events"

	EventPipelineCompleted = "assessment.pipeline.completed"
)

type PipelineCompletedEvent struct {
	EventType          string    `json:"eventType"`
	CompanyID          string    `json:"companyId"`
	AssessmentID       string    `json:"assessmentId"`
	ScoreID            string    `json:"scoreId"`
	Overall            float64   `json:"overall"`
	Tier               string    `json:"tier"`
	OpportunityCount   int       `json:"opportunityCount"`
	MatchCount         int       `json:"matchCount"`
	TotalPipelineValue float64   `json:"totalPipelineValue"`
	OccurredAt         time.Time `json:"occurredAt"`
}

// EventPublisher publishes one event per committed run to an SNS topic.
type EventPublisher struct {
	client   awsclient.SNSAPI
	topicARN string
	now      func() time.Time
}

func NewEventPublisher(client awsclient.SNSAPI, topicARN string) *EventPublisher {
	return &EventPublisher{
		client:   client,
		topicARN: topicARN,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (p *EventPublisher) Name() string { return EventsSinkName }

func (p *EventPublisher) Deliver(ctx context.Context, _ models.Company, result models.PipelineResult) error {
	event := PipelineCompletedEvent{
		EventType:          EventPipelineCompleted,
		CompanyID:          result.CompanyID,
		AssessmentID:       result.AssessmentID,
		ScoreID:            result.Score.ID,
		Overall:            result.Score.Overall,
		Tier:               result.Score.Tier.String(),
		OpportunityCount:   len(result.Opportunities),
		MatchCount:         len(result.Matches),
		TotalPipelineValue: result.TotalPipelineValue(),
		OccurredAt:         p.now(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return errors.NewNotificationSendFailedError("sns", fmt.Errorf("encode event: %w", err))
	}

	_, err = p.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(p.topicARN),
		Message:  aws.String(string(payload)),
		MessageAttributes: map[string]snstypes.MessageAttributeValue{
			"eventType": {DataType: aws.String("String"), StringValue: aws.String(EventPipelineCompleted)},
			"tier":      {DataType: aws.String("String"), StringValue: aws.String(event.Tier)},
		},
	})
	if err != nil {
		return errors.NewNotificationSendFailedError("sns", err)
	}
	return nil
}
