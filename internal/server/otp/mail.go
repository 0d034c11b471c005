package otp

import (
	"context"
	"crypto/tls"
	"fmt"

	"github.com/dmitrijs2005/pointgate/internal/logging"
	"github.com/dmitrijs2005/pointgate/internal/server/models"
	mail "github.com/go-mail/mail"
)

// AddressBook resolves a username to its e-mail address.
type AddressBook interface {
	Email(ctx context.Context, userName string) (string, error)
}

type AddressBookFunc func(ctx context.Context, userName string) (string, error)

func (f AddressBookFunc) Email(ctx context.Context, userName string) (string, error) {
	return f(ctx, userName)
}

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// mailSender is satisfied by *mail.Dialer.
type mailSender interface {
	DialAndSend(m ...*mail.Message) error
}

// MailDeliverer e-mails codes to the account's address.
type MailDeliverer struct {
	sender    mailSender
	from      string
	addresses AddressBook
	log       logging.Logger
}

func NewMailDeliverer(cfg SMTPConfig, addresses AddressBook, log logging.Logger) *MailDeliverer {
	d := mail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password)
	d.TLSConfig = &tls.Config{ServerName: cfg.Host}

	return &MailDeliverer{
		sender:    d,
		from:      cfg.From,
		addresses: addresses,
		log:       log.With("module", "otp-mail"),
	}
}

func (d *MailDeliverer) Deliver(ctx context.Context, c *models.Challenge) error {
	to, err := d.addresses.Email(ctx, c.UserName)
	if err != nil {
		return fmt.Errorf("lookup address: %w", err)
	}

	m := mail.NewMessage()
	m.SetHeader("From", d.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", "Your PointGate verification code")
	m.SetBody("text/plain", fmt.Sprintf(
		"Your code for %s is %s.\nIt expires at %s.\n",
		c.Purpose, c.Code, c.ExpiresAt.UTC().Format("2006-01-02 15:04:05 MST")))

	if err := d.sender.DialAndSend(m); err != nil {
		d.log.Error(ctx, "smtp send failed", "username", c.UserName, "error", err)
		return fmt.Errorf("smtp send: %w", err)
	}

	d.log.Debug(ctx, "code mailed", "username", c.UserName, "purpose", c.Purpose)
	return nil
}
