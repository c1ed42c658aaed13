package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/fefu-lab-api/internal/forms"
	appErrors "github.com/noah-isme/fefu-lab-api/pkg/errors"
	"github.com/noah-isme/fefu-lab-api/pkg/jobs"
)

// FeedbackJobType identifies feedback delivery jobs on the queue.
const FeedbackJobType = "feedback.deliver"

// FeedbackMessage is the payload handed to the delivery queue.
type FeedbackMessage struct {
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Subject    string    `json:"subject"`
	Message    string    `json:"message"`
	ReceivedAt time.Time `json:"received_at"`
}

// FeedbackReceipt is the thank-you payload returned after a submission.
type FeedbackReceipt struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Message string `json:"message"`
}

type jobEnqueuer interface {
	Enqueue(job jobs.Job) error
}

// FeedbackService validates the contact form and queues it for delivery.
type FeedbackService struct {
	queue   jobEnqueuer
	metrics *MetricsService
	logger  *zap.Logger
	now     func() time.Time
}

// NewFeedbackService constructs a FeedbackService.
func NewFeedbackService(queue jobEnqueuer, metrics *MetricsService, logger *zap.Logger) *FeedbackService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FeedbackService{queue: queue, metrics: metrics, logger: logger, now: func() time.Time { return time.Now().UTC() }}
}

// Submit validates the form and hands it to the delivery queue.
func (s *FeedbackService) Submit(ctx context.Context, form *forms.FeedbackForm) (*FeedbackReceipt, error) {
	if err := form.Clean(); err != nil {
		return nil, err
	}

	job := jobs.Job{
		ID:   uuid.NewString(),
		Type: FeedbackJobType,
		Payload: FeedbackMessage{
			Name:       form.Name,
			Email:      form.Email,
			Subject:    form.Subject,
			Message:    form.Message,
			ReceivedAt: s.now(),
		},
	}
	if err := s.queue.Enqueue(job); err != nil {
		s.metrics.RecordFeedback("dropped")
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to queue feedback")
	}
	s.metrics.RecordFeedback("queued")
	s.logger.Info("feedback queued", zap.String("job_id", job.ID), zap.String("subject", form.Subject))

	return &FeedbackReceipt{
		ID:      job.ID,
		Name:    form.Name,
		Message: fmt.Sprintf("Спасибо, %s! Ваше сообщение отправлено.", form.Name),
	}, nil
}

// DeliverFeedback returns the queue handler for feedback jobs. Messages are
// written to the structured log, which is the delivery channel of this service.
func DeliverFeedback(logger *zap.Logger, metrics *MetricsService) jobs.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(ctx context.Context, job jobs.Job) error {
		msg, ok := job.Payload.(FeedbackMessage)
		if !ok {
			return errors.New("unexpected feedback payload")
		}
		logger.Info("feedback received",
			zap.String("job_id", job.ID),
			zap.String("name", msg.Name),
			zap.String("email", msg.Email),
			zap.String("subject", msg.Subject),
			zap.String("message", msg.Message),
			zap.Time("received_at", msg.ReceivedAt),
		)
		metrics.RecordFeedback("delivered")
		return nil
	}
}
