package cli

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/pointgate/internal/api"
	"github.com/stretchr/testify/require"
)

func TestProfile_RegularUserSkipsTargetPrompt(t *testing.T) {
	capturePrintln(t)
	stubAnswers(t, "should-not-be-read")

	f := &fakeAPI{}
	app := newTestApp(f)
	app.userName = "alice"

	require.NoError(t, app.Profile(context.Background()))
	require.Equal(t, []string{"account"}, f.calls)
}

func TestUpdateProfile_RequestsCodeForTarget(t *testing.T) {
	out := capturePrintln(t)
	stubAnswers(t, "bob", "Bob B", "bob@example.com", "", "123123")

	f := &fakeAPI{}
	app := newTestApp(f)
	app.userName, app.isAdmin = "root", true

	require.NoError(t, app.UpdateProfile(context.Background()))
	require.Equal(t, "bob", f.challengeTarget)
	require.Equal(t, PurposeProfile, f.challengePurpose)
	require.Contains(t, out.String(), "Profile updated")
	require.Contains(t, out.String(), "bob@example.com")
}

func TestAddUser(t *testing.T) {
	out := capturePrintln(t)
	stubAnswers(t, "carol", "Carol C", "carol@example.com", "")

	f := &fakeAPI{registerResp: &api.RegisterResponse{
		Account:           api.Account{UserName: "carol"},
		WalletID:          "w-carol",
		TemporaryPassword: "Tmp-Password2",
	}}
	app := newTestApp(f)

	require.NoError(t, app.AddUser(context.Background()))
	require.Equal(t, []string{"register_by_admin"}, f.calls)
	require.Contains(t, out.String(), "Tmp-Password2")
}

func TestUsers(t *testing.T) {
	out := capturePrintln(t)
	app := newTestApp(&fakeAPI{})

	require.NoError(t, app.Users(context.Background()))
	require.Contains(t, out.String(), "2 account(s)")
}
