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

// Consumer drains the click queue into the click ledger. Runs alongside the
// API server or as its own process.
type Consumer struct {
	sqsClient *sqs.Client
	queueURL  string
	clicks    ledger.ClickLedger
	done      chan struct{}
}

func NewConsumer(sqsClient *sqs.Client, queueURL string, clicks ledger.ClickLedger) *Consumer {
	return &Consumer{
		sqsClient: sqsClient,
		queueURL:  queueURL,
		clicks:    clicks,
		done:      make(chan struct{}),
	}
}

func (c *Consumer) Start(ctx context.Context) {
	logger.Info("click consumer started", "queue", c.queueURL)
	go c.poll(ctx)
}

func (c *Consumer) Stop() {
	close(c.done)
}

func (c *Consumer) poll(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.done:
			return
		default:
		}

		out, err := c.sqsClient.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
			QueueUrl:            aws.String(c.queueURL),
			MaxNumberOfMessages: 10,
			WaitTimeSeconds:     20,
		})
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Error("SQS receive", "error", err.Error())
			time.Sleep(5 * time.Second)
			continue
		}

		for _, msg := range out.Messages {
			var evt ledger.ClickEvent
			if err := json.Unmarshal([]byte(*msg.Body), &evt); err != nil {
				logger.Warn("SQS bad message", "error", err.Error())
				c.deleteMessage(ctx, msg.ReceiptHandle)
				continue
			}

			if err := c.clicks.AppendClick(ctx, evt); err != nil {
				logger.Error("record click", "link_id", evt.LinkID, "error", err.Error())
				continue
			}

			c.deleteMessage(ctx, msg.ReceiptHandle)
		}
	}
}

func (c *Consumer) deleteMessage(ctx context.Context, handle *string) {
	c.sqsClient.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(c.queueURL),
		ReceiptHandle: handle,
	})
}
