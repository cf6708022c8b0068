package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tkmproject/tkm-api/internal/dto"
	"github.com/tkmproject/tkm-api/pkg/jobs"
	"github.com/tkmproject/tkm-api/pkg/mailer"
)

type mailSender interface {
	Send(ctx context.Context, msg mailer.Message) error
}

// CopyMailService mails submitters a copy of what they sent. Delivery runs on
// a background queue so the submission response never waits on the mail API.
type CopyMailService struct {
	queue  *jobs.Queue[mailer.Message]
	logger *zap.Logger
}

// NewCopyMailService constructs the service around sender.
func NewCopyMailService(sender mailSender, logger *zap.Logger) *CopyMailService {
	if logger == nil {
		logger = zap.NewNop()
	}
	handler := func(ctx context.Context, job jobs.Job[mailer.Message]) error {
		return sender.Send(ctx, job.Payload)
	}
	return &CopyMailService{
		queue: jobs.NewQueue[mailer.Message]("copy-mail", handler, jobs.QueueConfig{
			Workers:    2,
			BufferSize: 64,
			MaxRetries: 2,
			Logger:     logger,
		}),
		logger: logger,
	}
}

// Start launches the delivery workers.
func (s *CopyMailService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the workers.
func (s *CopyMailService) Stop() {
	s.queue.Stop()
}

// SendCopy queues a copy of env for its submitter.
func (s *CopyMailService) SendCopy(env dto.Envelope) error {
	if env.ReplyTo == "" {
		return fmt.Errorf("copy mail: submitter address missing")
	}
	msg := CopyMessage(env)
	return s.queue.Enqueue(jobs.Job[mailer.Message]{ID: uuid.NewString(), Payload: msg})
}

// CopyMessage renders the plain-text copy of a submission.
func CopyMessage(env dto.Envelope) mailer.Message {
	var b strings.Builder
	b.WriteString("Thank you for contacting TKMProject. This is a copy of your submission.\n\n")
	for _, f := range env.Record {
		if f.Name == "sendCopy" {
			continue
		}
		fmt.Fprintf(&b, "%s: %s\n", f.Name, copyValue(f.Value))
	}
	if env.Attachment != nil {
		fmt.Fprintf(&b, "attachment: %s\n", env.Attachment.Filename)
	}

	return mailer.Message{
		ToName:    env.Name,
		ToAddress: env.ReplyTo,
		Subject:   "Copy of your " + strings.ToLower(env.Kind.SubmissionType()) + " submission",
		Text:      b.String(),
	}
}

func copyValue(v interface{}) string {
	switch val := v.(type) {
	case []string:
		return strings.Join(val, ", ")
	case bool:
		if val {
			return "yes"
		}
		return "no"
	default:
		return fmt.Sprint(val)
	}
}
