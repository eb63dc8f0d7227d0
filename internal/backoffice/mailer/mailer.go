package mailer

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/elmagroup/backoffice/pkg/slogx"
)

// Invitation is what an invite notification tells the recipient.
type Invitation struct {
	To        string
	Token     string
	RedeemURL string // base URL; the token is appended as ?token=
	ExpiresAt time.Time
}

// Link returns the redemption link, or "" when no RedeemURL is configured.
func (i Invitation) Link() string {
	if i.RedeemURL == "" {
		return ""
	}
	u, err := url.Parse(i.RedeemURL)
	if err != nil {
		return ""
	}
	q := u.Query()
	q.Set("token", i.Token)
	u.RawQuery = q.Encode()
	return u.String()
}

// Subject and Body render the notification text.
func (i Invitation) Subject() string { return "You have been invited to become an administrator" }

func (i Invitation) Body() string {
	body := "You have been invited to become an administrator of the ELMA back office.\n\n"
	if link := i.Link(); link != "" {
		body += fmt.Sprintf("Sign in and open the following link to accept:\n\n%s\n\n", link)
	} else {
		body += fmt.Sprintf("Sign in and redeem the following invitation token:\n\n%s\n\n", i.Token)
	}
	body += fmt.Sprintf("The invitation expires at %s and can only be used once.\n",
		i.ExpiresAt.UTC().Format(time.RFC1123))
	return body
}

// Mailer delivers invite notifications. Delivery is best-effort: callers
// log failures and carry on.
type Mailer interface {
	SendInvite(ctx context.Context, inv Invitation) error
}

// LogMailer is used when no SMTP host is configured. It records that a
// notification would have been sent without revealing the token.
type LogMailer struct{}

func (LogMailer) SendInvite(ctx context.Context, inv Invitation) error {
	slogx.FromContext(ctx).Info("invite notification not delivered: no SMTP host configured",
		slog.String("to", inv.To),
		slog.Time("expires_at", inv.ExpiresAt),
	)
	return nil
}
