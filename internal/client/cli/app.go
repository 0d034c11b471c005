package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/dmitrijs2005/pointgate/internal/client/client"
	"github.com/dmitrijs2005/pointgate/internal/client/config"
	"github.com/dmitrijs2005/pointgate/internal/logging"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type App struct {
	config *config.Config
	api    client.Client
	logger logging.Logger
	reader *bufio.Reader
	out    io.Writer

	userName   string
	isAdmin    bool
	mustChange bool

	mu   sync.Mutex
	Mode Mode
}

// NewApp builds a console reading commands from in and writing to out.
func NewApp(c *config.Config, api client.Client, l logging.Logger, in io.Reader, out io.Writer) *App {
	return &App{
		config: c,
		api:    api,
		logger: l.With("module", "console"),
		reader: bufio.NewReader(in),
		out:    out,
	}
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.Mode != mode {
		a.Mode = mode
		a.logger.Info(context.Background(), "Switched mode", "mode", string(mode))
	}
}

func (a *App) mode() Mode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.Mode
}

// Run shows the prompt until the user exits or ctx is done.
func (a *App) Run(ctx context.Context) {
	defer a.api.Close()

	printlnFn("Welcome to PointGate console (type 'help' for commands)")

	if err := a.api.Ping(ctx); err != nil {
		a.setMode(ModeOffline)
	} else {
		a.setMode(ModeOnline)
	}

	go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)

	runREPL(ctx, a, a.getStatus, a.reader)
}

func (a *App) isLoggedIn() bool {
	return a.userName != ""
}

func (a *App) mustChangePassword() bool {
	return a.mustChange
}

func (a *App) getStatus() string {
	s := ""
	if a.userName != "" {
		s = a.userName + " "
		if a.isAdmin {
			s += "admin "
		}
	}
	if m := a.mode(); m != "" {
		s = s + string(m)
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
			err := a.api.Ping(pctx)
			cancel()

			if err != nil {
				a.setMode(ModeOffline)
			} else {
				a.setMode(ModeOnline)
			}

		case <-ctx.Done():
			return
		}
	}
}
