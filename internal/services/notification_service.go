package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/miguelmartinez95/rest-api-project/internal/config"
	"github.com/miguelmartinez95/rest-api-project/internal/metrics"
	"github.com/miguelmartinez95/rest-api-project/internal/models"
	"github.com/miguelmartinez95/rest-api-project/internal/utils"
)

const notifyTimeout = 10 * time.Second

// NotificationService sends transactional email. Failures never roll back
// the operation that triggered them.
type NotificationService interface {
	SendWelcome(ctx context.Context, user *models.User) error
}

// mailSender is the part of *sendgrid.Client we use.
type mailSender interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

type notificationService struct {
	cfg    *config.Config
	client mailSender
}

// NewNotificationService returns a SendGrid-backed notifier, or a no-op
// one when no API key is configured.
func NewNotificationService(cfg *config.Config) NotificationService {
	if cfg.SendGridAPIKey == "" {
		utils.Logger.Warn("SENDGRID_API_KEY not set; welcome emails are disabled")
		return noopNotificationService{}
	}
	return &notificationService{
		cfg:    cfg,
		client: sendgrid.NewSendClient(cfg.SendGridAPIKey),
	}
}

func (s *notificationService) SendWelcome(ctx context.Context, user *models.User) error {
	if user.Email == "" {
		return nil
	}
	msg := s.welcomeMessage(user)

	resp, err := s.client.SendWithContext(ctx, msg)
	if err == nil && resp.StatusCode >= 400 {
		err = fmt.Errorf("sendgrid returned status %d: %s", resp.StatusCode, resp.Body)
	}
	if err != nil {
		metrics.Notifications.WithLabelValues("failed").Inc()
		utils.Logger.WithError(err).Errorf("Failed to send welcome email to user %d via SendGrid", user.ID)
		return err
	}
	metrics.Notifications.WithLabelValues("sent").Inc()
	return nil
}

func (s *notificationService) welcomeMessage(user *models.User) *mail.SGMailV3 {
	from := mail.NewEmail(s.cfg.OrganizationName, s.cfg.LDFlag_SendgridFromEmail)
	to := mail.NewEmail(user.Username, user.Email)
	subject := "Successfully signed up"
	plain := fmt.Sprintf("Hi %s! You have successfully signed up to the %s.", user.Username, s.cfg.OrganizationName)
	html := fmt.Sprintf("<p>Hi %s! You have successfully signed up to the %s.</p>", user.Username, s.cfg.OrganizationName)

	msg := mail.NewSingleEmail(from, subject, to, plain, html)
	if s.cfg.LDFlag_SendgridSandboxMode {
		ms := mail.NewMailSettings()
		ms.SetSandboxMode(mail.NewSetting(true))
		msg.MailSettings = ms
	}
	return msg
}

type noopNotificationService struct{}

func (noopNotificationService) SendWelcome(context.Context, *models.User) error {
	metrics.Notifications.WithLabelValues("skipped").Inc()
	return nil
}

// dispatch runs fn in the background after the triggering write has
// committed, bounded by notifyTimeout. Errors are already logged by the
// notifier; a panic is logged and swallowed.
func dispatch(fn func(ctx context.Context) error) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				utils.Logger.WithField("panic", r).Error("Post-commit hook panicked")
			}
		}()
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		_ = fn(ctx)
	}()
}
