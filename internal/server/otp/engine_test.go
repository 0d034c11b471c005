package otp

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/pointgate/internal/common"
	"github.com/dmitrijs2005/pointgate/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Now()}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type captureDeliverer struct {
	mu   sync.Mutex
	sent []models.Challenge
}

func (d *captureDeliverer) Deliver(ctx context.Context, c *models.Challenge) error {
	d.mu.Lock()
	d.sent = append(d.sent, *c)
	d.mu.Unlock()
	return nil
}

type countingObserver struct {
	mu       sync.Mutex
	issued   map[string]int
	verified map[string]int
}

func newCountingObserver() *countingObserver {
	return &countingObserver{issued: map[string]int{}, verified: map[string]int{}}
}

func (o *countingObserver) ChallengeIssued(p string) {
	o.mu.Lock()
	o.issued[p]++
	o.mu.Unlock()
}

func (o *countingObserver) ChallengeVerified(outcome string) {
	o.mu.Lock()
	o.verified[outcome]++
	o.mu.Unlock()
}

func newTestEngine(t *testing.T) (*Engine, *fakeClock, *captureDeliverer) {
	t.Helper()
	clock := newFakeClock()
	d := &captureDeliverer{}
	e := NewEngine(NewMemoryStore(), d, WithClock(clock.Now))
	return e, clock, d
}

func TestEngine_IssueAndVerify(t *testing.T) {
	ctx := context.Background()
	e, clock, d := newTestEngine(t)

	c, err := e.Issue(ctx, "alice", "profile")
	require.NoError(t, err)
	assert.Len(t, c.Code, CodeLength)
	assert.Equal(t, clock.Now().Add(DefaultValidity), c.ExpiresAt)
	require.Len(t, d.sent, 1)
	assert.Equal(t, c.Code, d.sent[0].Code)

	require.NoError(t, e.Verify(ctx, "alice", c.Code))
}

func TestEngine_VerifyIsSingleUse(t *testing.T) {
	ctx := context.Background()
	e, _, _ := newTestEngine(t)

	c, err := e.Issue(ctx, "alice", "transfer")
	require.NoError(t, err)

	require.NoError(t, e.Verify(ctx, "alice", c.Code))
	err = e.Verify(ctx, "alice", c.Code)
	require.ErrorIs(t, err, common.ErrNoActiveChallenge)
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestEngine_NewChallengeReplacesOld(t *testing.T) {
	ctx := context.Background()
	e, _, _ := newTestEngine(t)

	var first, second *models.Challenge
	var err error
	// codes can collide; retry until they differ
	for {
		first, err = e.Issue(ctx, "alice", "transfer")
		require.NoError(t, err)
		second, err = e.Issue(ctx, "alice", "transfer")
		require.NoError(t, err)
		if first.Code != second.Code {
			break
		}
	}

	require.ErrorIs(t, e.Verify(ctx, "alice", first.Code), common.ErrChallengeMismatch)
	require.NoError(t, e.Verify(ctx, "alice", second.Code))
}

func TestEngine_MismatchKeepsChallenge(t *testing.T) {
	ctx := context.Background()
	e, _, _ := newTestEngine(t)

	c, err := e.Issue(ctx, "alice", "transfer")
	require.NoError(t, err)

	wrong := "000000"
	if c.Code == wrong {
		wrong = "111111"
	}
	require.ErrorIs(t, e.Verify(ctx, "alice", wrong), common.ErrChallengeMismatch)
	require.ErrorIs(t, e.Verify(ctx, "alice", wrong), common.ErrChallengeMismatch)
	require.NoError(t, e.Verify(ctx, "alice", c.Code))
}

func TestEngine_ExpiredIsReportedOnceThenGone(t *testing.T) {
	ctx := context.Background()
	e, clock, _ := newTestEngine(t)

	c, err := e.IssueFor(ctx, "alice", "transfer", time.Minute)
	require.NoError(t, err)

	clock.Advance(time.Minute) // now == expiresAt counts as expired
	require.ErrorIs(t, e.Verify(ctx, "alice", c.Code), common.ErrChallengeExpired)
	require.ErrorIs(t, e.Verify(ctx, "alice", c.Code), common.ErrNoActiveChallenge)
}

func TestEngine_ExpiredLongAgoIsStillReportedAsExpired(t *testing.T) {
	ctx := context.Background()
	e, clock, _ := newTestEngine(t)

	c, err := e.Issue(ctx, "alice", "transfer")
	require.NoError(t, err)
	clock.Advance(30 * 24 * time.Hour)

	require.ErrorIs(t, e.Verify(ctx, "alice", c.Code), common.ErrChallengeExpired)
	require.ErrorIs(t, e.Verify(ctx, "alice", c.Code), common.ErrNoActiveChallenge)
}

func TestEngine_ExpiredInRealTime(t *testing.T) {
	ctx := context.Background()
	e := NewEngine(NewMemoryStore(), &captureDeliverer{})

	c, err := e.IssueFor(ctx, "alice", "transfer", 20*time.Millisecond)
	require.NoError(t, err)
	time.Sleep(100 * time.Millisecond)

	require.ErrorIs(t, e.Verify(ctx, "alice", c.Code), common.ErrChallengeExpired)
}

func TestEngine_RetentionCapDropsUnverified(t *testing.T) {
	ctx := context.Background()
	e := NewEngine(NewMemoryStore(), &captureDeliverer{}, WithRetention(20*time.Millisecond))

	c, err := e.IssueFor(ctx, "alice", "transfer", 20*time.Millisecond)
	require.NoError(t, err)
	time.Sleep(100 * time.Millisecond)

	require.ErrorIs(t, e.Verify(ctx, "alice", c.Code), common.ErrNoActiveChallenge)
}

func TestEngine_ClockBehindRealTime(t *testing.T) {
	ctx := context.Background()
	past := time.Now().Add(-48 * time.Hour)
	e := NewEngine(NewMemoryStore(), &captureDeliverer{},
		WithClock(func() time.Time { return past }),
		WithRetention(time.Minute),
	)

	c, err := e.Issue(ctx, "alice", "transfer")
	require.NoError(t, err)
	time.Sleep(10 * time.Millisecond)

	require.NoError(t, e.Verify(ctx, "alice", c.Code))
}

func TestEngine_ExpiredWithWrongCode(t *testing.T) {
	ctx := context.Background()
	e, clock, _ := newTestEngine(t)

	c, err := e.Issue(ctx, "alice", "transfer")
	require.NoError(t, err)
	clock.Advance(6 * time.Minute)

	wrong := "000000"
	if c.Code == wrong {
		wrong = "111111"
	}
	require.ErrorIs(t, e.Verify(ctx, "alice", wrong), common.ErrChallengeExpired)
	require.ErrorIs(t, e.Verify(ctx, "alice", c.Code), common.ErrNoActiveChallenge)
}

func TestEngine_InputErrors(t *testing.T) {
	ctx := context.Background()
	e, _, _ := newTestEngine(t)

	require.ErrorIs(t, e.Verify(ctx, "alice", ""), common.ErrorInvalidInput)
	require.ErrorIs(t, e.Verify(ctx, "nobody", "123456"), common.ErrNoActiveChallenge)

	_, err := e.Issue(ctx, "", "x")
	require.ErrorIs(t, err, common.ErrorInvalidInput)
	_, err = e.IssueFor(ctx, "alice", "x", 0)
	require.ErrorIs(t, err, common.ErrorInvalidInput)
}

func TestEngine_UsersAreIndependent(t *testing.T) {
	ctx := context.Background()
	e, _, _ := newTestEngine(t)

	a, err := e.Issue(ctx, "alice", "x")
	require.NoError(t, err)
	b, err := e.Issue(ctx, "bob", "x")
	require.NoError(t, err)

	require.NoError(t, e.Verify(ctx, "bob", b.Code))
	require.NoError(t, e.Verify(ctx, "alice", a.Code))
}

func TestEngine_ConcurrentVerifyHasOneWinner(t *testing.T) {
	ctx := context.Background()
	e, _, _ := newTestEngine(t)

	c, err := e.Issue(ctx, "alice", "transfer")
	require.NoError(t, err)

	var ok int32
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if e.Verify(ctx, "alice", c.Code) == nil {
				atomic.AddInt32(&ok, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), ok)
}

func TestEngine_DeliveryFailure(t *testing.T) {
	boom := errors.New("smtp down")
	e := NewEngine(NewMemoryStore(), DelivererFunc(func(context.Context, *models.Challenge) error { return boom }))

	_, err := e.Issue(context.Background(), "alice", "x")
	require.ErrorIs(t, err, boom)
}

func TestEngine_Observer(t *testing.T) {
	ctx := context.Background()
	obs := newCountingObserver()
	clock := newFakeClock()
	e := NewEngine(NewMemoryStore(), &captureDeliverer{}, WithClock(clock.Now), WithObserver(obs))

	c, err := e.Issue(ctx, "alice", "transfer")
	require.NoError(t, err)
	_ = e.Verify(ctx, "alice", "")
	require.NoError(t, e.Verify(ctx, "alice", c.Code))
	_ = e.Verify(ctx, "alice", c.Code)

	assert.Equal(t, 1, obs.issued["transfer"])
	assert.Equal(t, 1, obs.verified[OutcomeOK])
	assert.Equal(t, 1, obs.verified[OutcomeMissing])
	assert.Equal(t, 1, obs.verified[OutcomeInvalid])
}

func TestEngine_TimeCodes(t *testing.T) {
	at := time.Unix(1111111111, 0)
	e := NewEngine(NewMemoryStore(), &captureDeliverer{}, WithClock(func() time.Time { return at }))

	code, err := e.TimeCode(rfcSecret)
	require.NoError(t, err)
	assert.Equal(t, "050471", code)
	require.NoError(t, e.VerifyTimeCode(rfcSecret, code))
	require.NoError(t, e.VerifyTimeCode(rfcSecret, code), "time-based codes are reusable")

	s, err := e.GenerateSecret(20)
	require.NoError(t, err)
	assert.Len(t, s, 20)
}

func TestEngine_SeparateStoresDoNotInterfere(t *testing.T) {
	ctx := context.Background()
	e1, _, _ := newTestEngine(t)
	e2, _, _ := newTestEngine(t)

	c, err := e1.Issue(ctx, "alice", "x")
	require.NoError(t, err)
	require.ErrorIs(t, e2.Verify(ctx, "alice", c.Code), common.ErrNoActiveChallenge)
	require.NoError(t, e1.Verify(ctx, "alice", c.Code))
}

func TestEngine_VerifyPurpose(t *testing.T) {
	ctx := context.Background()
	e, _, _ := newTestEngine(t)

	c, err := e.Issue(ctx, "alice", "profile")
	require.NoError(t, err)

	err = e.VerifyPurpose(ctx, "alice", "transfer", c.Code)
	require.ErrorIs(t, err, common.ErrChallengeMismatch)

	// the challenge survives a purpose mismatch
	require.NoError(t, e.VerifyPurpose(ctx, "alice", "profile", c.Code))

	require.ErrorIs(t, e.VerifyPurpose(ctx, "alice", "", "123456"), common.ErrorInvalidInput)
}
