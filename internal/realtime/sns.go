package realtime

import (
	"context"
	"encoding/json"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"

	"quickclean/internal/domain"
	applog "quickclean/internal/log"
)

// SNSSink mirrors booking events to an SNS topic for out-of-process
// consumers. Delivery is best effort.
type SNSSink struct {
	Client   *sns.Client
	TopicARN string
	Timeout  time.Duration
}

// NewSNSSink returns nil when topicARN is empty.
func NewSNSSink(ctx context.Context, region, topicARN string) (*SNSSink, error) {
	if topicARN == "" {
		return nil, nil
	}
	opts := []func(*config.LoadOptions) error{}
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return &SNSSink{Client: sns.NewFromConfig(cfg), TopicARN: topicARN, Timeout: 5 * time.Second}, nil
}

func (s *SNSSink) Publish(ev domain.BookingEvent) {
	if s == nil || s.Client == nil {
		return
	}
	go s.send(ev)
}

func (s *SNSSink) send(ev domain.BookingEvent) {
	body, err := json.Marshal(ev)
	if err != nil {
		applog.Error(nil, "sns.encode", err, nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.Timeout)
	defer cancel()
	_, err = s.Client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(s.TopicARN),
		Message:  aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"type": {DataType: aws.String("String"), StringValue: aws.String(ev.Type)},
		},
	})
	if err != nil {
		applog.Error(nil, "sns.publish", err, map[string]any{"booking_id": ev.BookingID, "type": ev.Type})
	}
}
