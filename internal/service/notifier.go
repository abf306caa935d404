package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/iliyamo/hotel-booking/internal/config"
	"github.com/iliyamo/hotel-booking/internal/queue"
)

// NewNotifier returns an SMS notifier when Twilio credentials are
// configured and a log-only notifier otherwise.
func NewNotifier(cfg config.NotifyConfig, log *slog.Logger) queue.Notifier {
	if !cfg.Enabled() {
		return LogNotifier{Log: log}
	}
	return &TwilioNotifier{
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: cfg.AccountSID,
			Password: cfg.AuthToken,
		}),
		from: cfg.FromNumber,
		log:  log,
	}
}

// TwilioNotifier sends SMS through the Twilio REST API.
type TwilioNotifier struct {
	client *twilio.RestClient
	from   string
	log    *slog.Logger
}

func (n *TwilioNotifier) Notify(_ context.Context, to, body string) error {
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(n.from)
	params.SetBody(body)

	resp, err := n.client.Api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("twilio create message: %w", err)
	}
	sid := ""
	if resp.Sid != nil {
		sid = *resp.Sid
	}
	n.log.Info("sms sent", "to", to, "sid", sid)
	return nil
}

// LogNotifier only records what would have been sent.
type LogNotifier struct {
	Log *slog.Logger
}

func (n LogNotifier) Notify(_ context.Context, to, body string) error {
	n.Log.Info("sms disabled, notification logged", "to", to, "body", body)
	return nil
}
