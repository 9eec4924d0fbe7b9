// Package notify mails a summary of a finished batch.
package notify

import (
	"bidsniper/lib/telemetry"
	"context"
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"github.com/jordan-wright/email"
	"go.opentelemetry.io/otel/codes"
)

var tracer = telemetry.Tracer("bidsniper.lib.notify")

type SmtpConfig struct {
	Server       string   `json:"server"`
	Port         int      `json:"port"`
	EmailAddress string   `json:"email_address"`
	Password     string   `json:"password"`
	To           []string `json:"to"`
}

// Enabled reports whether enough is configured to send mail.
func (c SmtpConfig) Enabled() bool {
	return c.Server != "" && c.EmailAddress != ""
}

func (c SmtpConfig) recipients() []string {
	if len(c.To) > 0 {
		return c.To
	}
	return []string{c.EmailAddress}
}

// Result is how a single auction of the batch ended.
type Result struct {
	Auction  string
	Title    string
	BidPrice string
	Won      int
	// Error is empty when the auction ended without error.
	Error string
}

type Summary struct {
	Finished time.Time
	Wanted   int
	Won      int
	Results  []Result
}

func (s Summary) Subject() string {
	if s.Won > 0 {
		return fmt.Sprintf("bidsniper: won %d of %d", s.Won, s.Wanted)
	}
	return "bidsniper: nothing won"
}

func (s Summary) Body() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Batch finished %s, won %d of %d item(s).\n\n", s.Finished.Format(time.RFC1123), s.Won, s.Wanted)
	for _, r := range s.Results {
		fmt.Fprintf(&b, "%s", r.Auction)
		if r.Title != "" {
			fmt.Fprintf(&b, " %s", r.Title)
		}
		fmt.Fprintf(&b, "\n  max bid: %s\n", r.BidPrice)
		switch {
		case r.Error != "":
			fmt.Fprintf(&b, "  result: %s\n", r.Error)
		case r.Won > 0:
			fmt.Fprintf(&b, "  result: won %d\n", r.Won)
		default:
			b.WriteString("  result: not won\n")
		}
	}
	return b.String()
}

type sendFunc = func(mail *email.Email, addr string, auth smtp.Auth) error

func send(mail *email.Email, addr string, auth smtp.Auth) error {
	return mail.Send(addr, auth)
}

type Notifier struct {
	config SmtpConfig
	send   sendFunc
}

func NewNotifier(config SmtpConfig) Notifier {
	return Notifier{config: config, send: send}
}

func (n Notifier) Enabled() bool {
	return n.config.Enabled()
}

// Notify mails the summary, it does nothing when smtp is not configured.
func (n Notifier) Notify(ctx context.Context, summary Summary) error {
	if !n.Enabled() {
		return nil
	}
	_, span := tracer.Start(ctx, "Notify")
	defer span.End()

	mail := email.NewEmail()
	mail.From = fmt.Sprintf("bidsniper <%s>", n.config.EmailAddress)
	mail.To = n.config.recipients()
	mail.Subject = summary.Subject()
	mail.Text = []byte(summary.Body())

	addr := fmt.Sprintf("%s:%d", n.config.Server, n.config.Port)
	err := n.send(
		mail, addr,
		smtp.PlainAuth("", n.config.EmailAddress, n.config.Password, n.config.Server),
	)
	if err != nil && strings.Contains(err.Error(), "server doesn't support AUTH") {
		err = n.send(mail, addr, nil)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to send email")
		return err
	}
	return nil
}
