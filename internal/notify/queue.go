package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

// Job is one queued mail delivery. The template name travels with the
// message so the worker can label its metrics.
type Job struct {
	Template string       `json:"template"`
	Message  EmailMessage `json:"message"`
}

// QueuedJob is a Job pulled off a queue, with the receipt needed to ack it.
type QueuedJob struct {
	Job
	Receipt string
}

// Queue decouples mail producers from the delivery worker.
type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Dequeue(ctx context.Context, max int, wait time.Duration) ([]QueuedJob, error)
	Ack(ctx context.Context, receipt string) error
}

// MemoryQueue is a channel-backed Queue for tests and single-process
// deployments.
type MemoryQueue struct {
	jobs chan Job
}

// NewMemoryQueue creates a memory queue with the given buffer size.
func NewMemoryQueue(size int) *MemoryQueue {
	if size <= 0 {
		size = 256
	}
	return &MemoryQueue{jobs: make(chan Job, size)}
}

// Enqueue adds a job, failing fast when the buffer is full.
func (q *MemoryQueue) Enqueue(ctx context.Context, job Job) error {
	select {
	case q.jobs <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return fmt.Errorf("notify: memory queue full")
	}
}

// Dequeue returns up to max jobs, waiting at most wait for the first one.
func (q *MemoryQueue) Dequeue(ctx context.Context, max int, wait time.Duration) ([]QueuedJob, error) {
	timer := time.NewTimer(wait)
	defer timer.Stop()

	var out []QueuedJob
	select {
	case job := <-q.jobs:
		out = append(out, QueuedJob{Job: job})
	case <-timer.C:
		return nil, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	for len(out) < max {
		select {
		case job := <-q.jobs:
			out = append(out, QueuedJob{Job: job})
		default:
			return out, nil
		}
	}
	return out, nil
}

// Ack is a no-op; channel reads already consumed the job.
func (q *MemoryQueue) Ack(context.Context, string) error { return nil }

var _ Queue = (*MemoryQueue)(nil)

// SQSQueue implements Queue backed by AWS/LocalStack SQS.
type SQSQueue struct {
	client   *sqs.Client
	queueURL string
}

// NewSQSQueue creates a queue wrapper around the provided SQS client.
func NewSQSQueue(client *sqs.Client, queueURL string) *SQSQueue {
	if client == nil {
		panic("notify: SQS client cannot be nil")
	}
	if queueURL == "" {
		panic("notify: SQS queueURL cannot be empty")
	}
	return &SQSQueue{client: client, queueURL: queueURL}
}

// Enqueue sends the job as a JSON message body.
func (q *SQSQueue) Enqueue(ctx context.Context, job Job) error {
	body, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("notify: marshal mail job: %w", err)
	}
	_, err = q.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(q.queueURL),
		MessageBody: aws.String(string(body)),
	})
	if err != nil {
		return fmt.Errorf("notify: failed to send SQS message: %w", err)
	}
	return nil
}

// Dequeue long-polls SQS for up to max messages.
func (q *SQSQueue) Dequeue(ctx context.Context, max int, wait time.Duration) ([]QueuedJob, error) {
	output, err := q.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:            aws.String(q.queueURL),
		MaxNumberOfMessages: int32(max),
		WaitTimeSeconds:     int32(wait / time.Second),
	})
	if err != nil {
		return nil, fmt.Errorf("notify: failed to receive SQS messages: %w", err)
	}

	jobs := make([]QueuedJob, 0, len(output.Messages))
	for _, msg := range output.Messages {
		var job Job
		if err := json.Unmarshal([]byte(aws.ToString(msg.Body)), &job); err != nil {
			return nil, fmt.Errorf("notify: unmarshal mail job: %w", err)
		}
		jobs = append(jobs, QueuedJob{Job: job, Receipt: aws.ToString(msg.ReceiptHandle)})
	}
	return jobs, nil
}

// Ack deletes the message so it is not redelivered.
func (q *SQSQueue) Ack(ctx context.Context, receipt string) error {
	if receipt == "" {
		return nil
	}
	_, err := q.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(q.queueURL),
		ReceiptHandle: aws.String(receipt),
	})
	if err != nil {
		return fmt.Errorf("notify: failed to delete SQS message: %w", err)
	}
	return nil
}

var _ Queue = (*SQSQueue)(nil)
