package tracking

import (
	"context"
	"encoding/json"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"github.com/freestuffdude5-ops/fitbites-backend-sub000/internal/ledger"
	"github.com/freestuffdude5-ops/fitbites-backend-sub000/internal/pkg/logger"
)

// Publisher is the SQS-backed Sink for multi-process deployments: the
// redirect servers publish clicks and a separate consumer writes the
// ledger.
type Publisher struct {
	client   *sqs.Client
	queueURL string
}

func NewPublisher(client *sqs.Client, queueURL string) *Publisher {
	return &Publisher{client: client, queueURL: queueURL}
}

func (p *Publisher) Dispatch(evt ledger.ClickEvent) {
	body, err := json.Marshal(evt)
	if err != nil {
		logger.Error("marshal click event", "error", err.Error())
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		_, err := p.client.SendMessage(ctx, &sqs.SendMessageInput{
			QueueUrl:    aws.String(p.queueURL),
			MessageBody: aws.String(string(body)),
		})
		if err != nil {
			logger.Error("publish click to SQS", "error", err.Error())
		}
	}()
}

// Close is a no-op; in-flight sends carry their own timeout.
func (p *Publisher) Close() {}
