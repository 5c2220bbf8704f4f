package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
)

const maxSMSLength = 320

type messageCreator interface {
	CreateMessage(params *openapi.CreateMessageParams) (*openapi.ApiV2010Message, error)
}

// TwilioChannel texts the subject line of notifications to the owner
type TwilioChannel struct {
	messages messageCreator
	from     string
	to       string
}

func NewTwilioChannel(accountSID, authToken, from, to string) (*TwilioChannel, error) {
	if accountSID == "" || authToken == "" {
		return nil, errors.New("TWILIO_ACCOUNT_SID and TWILIO_AUTH_TOKEN are required")
	}
	if from == "" || to == "" {
		return nil, errors.New("TWILIO_FROM_NUMBER and NOTIFY_PHONE are required")
	}
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &TwilioChannel{messages: client.Api, from: from, to: to}, nil
}

func (t *TwilioChannel) Name() string { return "sms" }

// Send ignores ctx: the Twilio client has no context-aware call.
func (t *TwilioChannel) Send(_ context.Context, n Notification) error {
	body := n.Subject
	if n.Text != "" {
		body = n.Subject + "\n" + n.Text
	}
	if runes := []rune(body); len(runes) > maxSMSLength {
		body = string(runes[:maxSMSLength-3]) + "..."
	}

	params := &openapi.CreateMessageParams{}
	params.SetTo(t.to)
	params.SetFrom(t.from)
	params.SetBody(body)

	if _, err := t.messages.CreateMessage(params); err != nil {
		return fmt.Errorf("twilio create message: %w", err)
	}
	return nil
}
