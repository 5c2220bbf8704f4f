package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/rpupo63/portfolio-site-backend/config"
	"github.com/rpupo63/portfolio-site-backend/errs"
	"github.com/rpupo63/portfolio-site-backend/models"
	"github.com/rs/zerolog/log"
)

// Notification is a short message for the site owner
type Notification struct {
	Subject string
	Text    string
	HTML    string
}

// Channel delivers notifications to the owner, e.g. by email or SMS.
type Channel interface {
	Name() string
	Send(ctx context.Context, n Notification) error
}

// Notifier fans a notification out to every configured channel.
type Notifier struct {
	channels     []Channel
	dashboardURL string
}

func NewNotifier(dashboardURL string, channels ...Channel) *Notifier {
	return &Notifier{channels: channels, dashboardURL: strings.TrimSuffix(dashboardURL, "/")}
}

// NewNotifierFromConfig enables Resend email when RESEND_API_KEY and NOTIFY_EMAIL
// are set and Twilio SMS when TWILIO_ACCOUNT_SID and NOTIFY_PHONE are set.
func NewNotifierFromConfig(c config.Config) *Notifier {
	var channels []Channel

	if config.GetString(c, "RESEND_API_KEY", "") != "" && config.GetString(c, "NOTIFY_EMAIL", "") != "" {
		email, err := NewResendChannel(
			config.GetString(c, "RESEND_API_KEY", ""),
			config.GetString(c, "RESEND_FROM_EMAIL", ""),
			config.GetStrings(c, "NOTIFY_EMAIL"),
		)
		if err != nil {
			log.Warn().Err(err).Msg("Email notifications disabled")
		} else {
			channels = append(channels, email)
		}
	}

	if config.GetString(c, "TWILIO_ACCOUNT_SID", "") != "" && config.GetString(c, "NOTIFY_PHONE", "") != "" {
		sms, err := NewTwilioChannel(
			config.GetString(c, "TWILIO_ACCOUNT_SID", ""),
			config.GetString(c, "TWILIO_AUTH_TOKEN", ""),
			config.GetString(c, "TWILIO_FROM_NUMBER", ""),
			config.GetString(c, "NOTIFY_PHONE", ""),
		)
		if err != nil {
			log.Warn().Err(err).Msg("SMS notifications disabled")
		} else {
			channels = append(channels, sms)
		}
	}

	names := make([]string, 0, len(channels))
	for _, ch := range channels {
		names = append(names, ch.Name())
	}
	log.Info().Strs("channels", names).Msg("Owner notifications configured")

	return NewNotifier(config.GetString(c, "SITE_BASE_URL", ""), channels...)
}

func (n *Notifier) Enabled() bool {
	return n != nil && len(n.channels) > 0
}

// Notify sends to every channel, continuing past failures. The returned error
// lists each channel that failed.
func (n *Notifier) Notify(ctx context.Context, notification Notification) error {
	if !n.Enabled() {
		return nil
	}

	var failures []string
	var successes []string
	for _, ch := range n.channels {
		if err := ch.Send(ctx, notification); err != nil {
			log.Error().Err(err).Str("channel", ch.Name()).Msg("Failed to send notification")
			failures = append(failures, fmt.Sprintf("%s: %v", ch.Name(), err))
			continue
		}
		successes = append(successes, ch.Name())
	}

	if len(successes) > 0 {
		log.Info().Strs("channels", successes).Str("subject", notification.Subject).Msg("Sent notification")
	}
	if len(failures) > 0 {
		return fmt.Errorf("%w: %s", errs.ErrNotificationFailure, strings.Join(failures, "; "))
	}
	return nil
}

// NewMessageNotification describes a contact form submission.
func (n *Notifier) NewMessageNotification(msg *models.ContactMessage) Notification {
	text := fmt.Sprintf("New message from %s <%s>\nSubject: %s\n\n%s", msg.Name, msg.Email, msg.Subject, msg.Message)
	if link := n.link("/admin/messages"); link != "" {
		text += "\n\nView in dashboard: " + link
	}
	return Notification{
		Subject: "New contact message: " + msg.Subject,
		Text:    text,
		HTML:    textToHTML(text),
	}
}

// NewReviewNotification describes a review waiting for approval.
func (n *Notifier) NewReviewNotification(review *models.Review) Notification {
	text := fmt.Sprintf("%s left a %d star review awaiting approval:\n\n%s", review.Name, review.Rating, review.Content)
	if link := n.link("/admin/reviews"); link != "" {
		text += "\n\nModerate: " + link
	}
	return Notification{
		Subject: "New review from " + review.Name,
		Text:    text,
		HTML:    textToHTML(text),
	}
}

func (n *Notifier) link(path string) string {
	if n == nil || n.dashboardURL == "" {
		return ""
	}
	return n.dashboardURL + path
}

var htmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;", "\n", "<br>")

func textToHTML(text string) string {
	return "<p>" + htmlEscaper.Replace(text) + "</p>"
}
