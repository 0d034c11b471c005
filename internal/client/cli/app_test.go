package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/pointgate/internal/api"
	"github.com/dmitrijs2005/pointgate/internal/logging"
)

func TestIsLoggedIn(t *testing.T) {
	app := &App{}
	if app.isLoggedIn() {
		t.Fatalf("expected isLoggedIn() == false without a user")
	}
	app.userName = "alice"
	if !app.isLoggedIn() {
		t.Fatalf("expected isLoggedIn() == true with a user")
	}
}

func TestSetMode_ChangesAndLogsOnce(t *testing.T) {
	var buf bytes.Buffer
	app := &App{logger: logging.New(&buf, "text", "info")}

	app.setMode(ModeOnline)
	if app.Mode != ModeOnline {
		t.Fatalf("expected mode to be %q, got %q", ModeOnline, app.Mode)
	}
	if got := buf.String(); got == "" {
		t.Fatalf("expected log output on mode change, got empty")
	}

	buf.Reset()

	app.setMode(ModeOnline)
	if got := buf.String(); got != "" {
		t.Fatalf("expected no log output when mode doesn't change, got: %q", got)
	}

	app.setMode(ModeOffline)
	if app.Mode != ModeOffline {
		t.Fatalf("expected mode to be %q, got %q", ModeOffline, app.Mode)
	}
	if got := buf.String(); !strings.Contains(got, "offline") {
		t.Fatalf("expected log output on mode change to offline, got %q", got)
	}
}

func TestGetStatus(t *testing.T) {
	tests := []struct {
		name string
		app  *App
		want string
	}{
		{name: "empty", app: &App{}, want: ""},
		{name: "mode only", app: &App{Mode: ModeOffline}, want: "(offline)"},
		{name: "user", app: &App{userName: "alice", Mode: ModeOnline}, want: "(alice online)"},
		{name: "admin", app: &App{userName: "root", isAdmin: true, Mode: ModeOnline}, want: "(root admin online)"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.app.getStatus(); got != tc.want {
				t.Fatalf("getStatus() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestStartOnlineStatusWatcher_GoesOffline(t *testing.T) {
	f := &fakeAPI{err: errors.New("down")}
	app := newTestApp(f)
	app.Mode = ModeOnline

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		app.StartOnlineStatusWatcher(ctx, 10*time.Millisecond)
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for app.mode() != ModeOffline {
		if time.Now().After(deadline) {
			t.Fatalf("watcher did not switch to offline")
		}
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	<-done
}

func TestRun_ExitsOnEOF(t *testing.T) {
	capturePrintln(t)
	f := &fakeAPI{loginResp: &api.LoginResponse{}}
	app := newTestApp(f)

	app.Run(context.Background())

	if app.mode() != ModeOnline {
		t.Fatalf("expected online mode after successful ping, got %q", app.mode())
	}
	if f.calls[len(f.calls)-1] != "close" {
		t.Fatalf("expected client to be closed, calls=%v", f.calls)
	}
}
