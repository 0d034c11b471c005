package server

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/dmitrijs2005/pointgate/internal/api"
	"github.com/dmitrijs2005/pointgate/internal/client/client"
	"github.com/dmitrijs2005/pointgate/internal/common"
	"github.com/dmitrijs2005/pointgate/internal/cryptox"
	"github.com/dmitrijs2005/pointgate/internal/logging"
	"github.com/dmitrijs2005/pointgate/internal/server/config"
	"github.com/dmitrijs2005/pointgate/internal/server/ledger"
	"github.com/dmitrijs2005/pointgate/internal/server/models"
	"github.com/dmitrijs2005/pointgate/internal/server/otp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/test/bufconn"
)

type codes struct {
	mu   sync.Mutex
	last map[string]string
}

func (c *codes) deliver(_ context.Context, ch *models.Challenge) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.last[ch.UserName] = ch.Code
	return nil
}

func (c *codes) get(user string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last[user]
}

func testConfig() *config.Config {
	c := &config.Config{}
	c.LoadDefaults()
	c.MetricsAddr = ""
	return c
}

var fastHasher = cryptox.NewArgon2Hasher(cryptox.Params{Time: 1, Memory: 8 * 1024, Threads: 1, SaltLen: 16, KeyLen: 32})

func newTestApp(t *testing.T) (*App, *codes) {
	t.Helper()
	box := &codes{last: map[string]string{}}
	app, err := NewApp(context.Background(), testConfig(),
		WithLogger(logging.Nop()),
		WithHasher(fastHasher),
		WithDeliverer(otp.DelivererFunc(box.deliver)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })
	return app, box
}

func connect(t *testing.T, app *App) *client.GRPCClient {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = app.Serve(ctx, lis)
	}()

	c, err := client.NewPointGateClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		c.Close()
		cancel()
		<-done
	})
	return c
}

func TestNewApp_RejectsInvalidConfig(t *testing.T) {
	c := testConfig()
	c.StorageDriver = "sqlite"

	_, err := NewApp(context.Background(), c, WithLogger(logging.Nop()))
	require.ErrorIs(t, err, common.ErrorInvalidInput)
}

func TestNewApp_RedisUnavailable(t *testing.T) {
	c := testConfig()
	c.ChallengeStore = config.ChallengeStoreRedis
	c.RedisAddr = "127.0.0.1:1"

	_, err := NewApp(context.Background(), c, WithLogger(logging.Nop()), WithHasher(fastHasher))
	require.Error(t, err)
}

func TestApp_EndToEnd(t *testing.T) {
	app, box := newTestApp(t)
	ctx := context.Background()

	admin := connect(t, app)
	resp, err := admin.Login(ctx, "admin", "admin123", "")
	require.NoError(t, err)
	require.True(t, resp.IsAdmin)

	user := connect(t, app)
	reg, err := user.Register(ctx, api.RegisterRequest{
		UserName: "alice",
		Password: "Alice-pass1",
		FullName: "Alice A",
		Email:    "alice@example.com",
	})
	require.NoError(t, err)

	amount := decimal.NewFromInt(40)
	ch, err := admin.RequestAdminCredit(ctx, reg.WalletID, amount)
	require.NoError(t, err)
	require.Equal(t, ledger.AdminCreditPurpose(reg.WalletID, amount), ch.Purpose)

	_, err = admin.AdminCredit(ctx, reg.WalletID, amount, box.get("admin"))
	require.NoError(t, err)

	_, err = user.Login(ctx, "alice", "Alice-pass1", "")
	require.NoError(t, err)

	w, err := user.Wallet(ctx, "")
	require.NoError(t, err)
	require.True(t, w.Balance.Equal(amount), "balance %s", w.Balance)

	bob, err := user.Register(ctx, api.RegisterRequest{
		UserName: "bob",
		Password: "Bob-pass1",
		FullName: "Bob B",
		Email:    "bob@example.com",
	})
	require.NoError(t, err)

	// A code issued for another purpose does not confirm a transfer.
	_, err = user.RequestChallenge(ctx, "alice", "profile")
	require.NoError(t, err)
	_, err = user.TransferPoints(ctx, api.TransferRequest{
		Sender:   reg.WalletID,
		Receiver: bob.WalletID,
		Amount:   decimal.NewFromInt(1),
		Code:     box.get("alice"),
	})
	require.ErrorIs(t, err, common.ErrChallengeMismatch)

	_, err = user.RequestChallenge(ctx, "alice", "transfer")
	require.NoError(t, err)
	tx, err := user.TransferPoints(ctx, api.TransferRequest{
		Sender:   reg.WalletID,
		Receiver: bob.WalletID,
		Amount:   decimal.NewFromInt(15),
		Code:     box.get("alice"),
	})
	require.NoError(t, err)
	require.Equal(t, string(models.StatusCompleted), tx.Status)

	w, err = user.Wallet(ctx, "")
	require.NoError(t, err)
	require.True(t, w.Balance.Equal(decimal.NewFromInt(25)), "balance %s", w.Balance)
}

func TestApp_OpsRouter(t *testing.T) {
	app, _ := newTestApp(t)
	h := app.opsRouter()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", rec.Body.String())

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/plain"), "content type %q", rec.Header().Get("Content-Type"))
}
