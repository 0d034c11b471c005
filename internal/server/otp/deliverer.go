package otp

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/dmitrijs2005/pointgate/internal/logging"
	"github.com/dmitrijs2005/pointgate/internal/server/models"
)

// Deliverer hands an issued code to its holder over an out-of-band channel.
type Deliverer interface {
	Deliver(ctx context.Context, c *models.Challenge) error
}

type DelivererFunc func(ctx context.Context, c *models.Challenge) error

func (f DelivererFunc) Deliver(ctx context.Context, c *models.Challenge) error {
	return f(ctx, c)
}

// LogDeliverer writes codes to the log. Development only.
type LogDeliverer struct {
	log logging.Logger
}

func NewLogDeliverer(log logging.Logger) *LogDeliverer {
	return &LogDeliverer{log: log.With("module", "otp-delivery")}
}

func (d *LogDeliverer) Deliver(ctx context.Context, c *models.Challenge) error {
	d.log.Info(ctx, "one-time code issued",
		"username", c.UserName, "purpose", c.Purpose, "code", c.Code, "expires_at", c.ExpiresAt)
	return nil
}

// WriterDeliverer prints codes for a local operator, e.g. on the console.
type WriterDeliverer struct {
	mu sync.Mutex
	w  io.Writer
}

func NewWriterDeliverer(w io.Writer) *WriterDeliverer {
	return &WriterDeliverer{w: w}
}

func (d *WriterDeliverer) Deliver(ctx context.Context, c *models.Challenge) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	_, err := fmt.Fprintf(d.w, "OTP code for %s (%s): %s, valid until %s\n",
		c.UserName, c.Purpose, c.Code, c.ExpiresAt.Format("15:04:05"))
	return err
}
