package notify

import (
	"context"
	"fmt"

	"openlms/course-app/internal/config"
	"openlms/course-app/internal/domain"

	sendgrid "github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// sendgridNotifier implements Notifier over the SendGrid mail API.
type sendgridNotifier struct {
	client *sendgrid.Client
	from   *mail.Email
}

// NewSendGridNotifier creates a Notifier that delivers notifications by email.
func NewSendGridNotifier(cfg config.NotifyConfig) Notifier {
	return &sendgridNotifier{
		client: sendgrid.NewSendClient(cfg.SendGridKey),
		from:   mail.NewEmail(cfg.FromName, cfg.FromEmail),
	}
}

func (n *sendgridNotifier) EnrollmentCreated(ctx context.Context, user *domain.User, course *domain.Course) error {
	subject := fmt.Sprintf("You are enrolled in %s", course.Title)
	body := fmt.Sprintf("<p>Hi %s,</p><p>Your enrollment in <strong>%s</strong> is active. Happy learning!</p>",
		user.FullName, course.Title)
	return n.send(ctx, user, subject, body)
}

func (n *sendgridNotifier) CourseCompleted(ctx context.Context, user *domain.User, course *domain.Course) error {
	subject := fmt.Sprintf("You completed %s", course.Title)
	body := fmt.Sprintf("<p>Congratulations %s!</p><p>You completed every lesson of <strong>%s</strong>. Your certificate is ready to download.</p>",
		user.FullName, course.Title)
	return n.send(ctx, user, subject, body)
}

func (n *sendgridNotifier) send(ctx context.Context, user *domain.User, subject, htmlBody string) error {
	to := mail.NewEmail(user.FullName, user.Email)
	message := mail.NewSingleEmail(n.from, subject, to, "", htmlBody)

	resp, err := n.client.SendWithContext(ctx, message)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid returned status %d", resp.StatusCode)
	}
	return nil
}
