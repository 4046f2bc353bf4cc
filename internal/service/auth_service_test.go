package service

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fittrack/fitness-app/internal/repository/memory"
)

type sentMail struct {
	kind string
	to   string
	link string
}

type recordingMailer struct {
	enabled bool
	sent    []sentMail
}

func (m *recordingMailer) IsEnabled() bool { return m.enabled }

func (m *recordingMailer) SendVerification(_ context.Context, to, link string) error {
	m.sent = append(m.sent, sentMail{kind: "signup", to: to, link: link})
	return nil
}

func (m *recordingMailer) SendPasswordReset(_ context.Context, to, link string) error {
	m.sent = append(m.sent, sentMail{kind: "recovery", to: to, link: link})
	return nil
}

func newTestAuthService(mailer *recordingMailer) AuthService {
	return NewAuthService(memory.NewUserRepository(), mailer, nil, AuthConfig{
		Secret:  "test-secret",
		BaseURL: "https://fittrack.test/",
	}, nil)
}

func tokenFromLink(t *testing.T, link string) (string, string) {
	t.Helper()
	u, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, "/auth/confirm", u.Path)
	return u.Query().Get("token_hash"), u.Query().Get("type")
}

func TestRegisterAndLogin_MailDisabled(t *testing.T) {
	svc := newTestAuthService(&recordingMailer{})
	ctx := context.Background()

	user, err := svc.Register(ctx, " Jane@Example.com ", "secret123")
	require.NoError(t, err)
	assert.True(t, IsValidUserID(user.ID))
	assert.Equal(t, "jane@example.com", user.Email)
	assert.True(t, user.EmailVerified)
	assert.Empty(t, user.PasswordHash)

	token, loggedIn, err := svc.Login(ctx, "jane@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)

	identity, err := svc.Authenticate(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, identity.UserID)
	assert.NotEmpty(t, identity.TokenID)
}

func TestRegister_Validation(t *testing.T) {
	svc := newTestAuthService(&recordingMailer{})
	ctx := context.Background()

	_, err := svc.Register(ctx, "no-at-sign", "secret123")
	assert.ErrorIs(t, err, ErrValidationFailed)

	_, err = svc.Register(ctx, "a@b.c", "123")
	assert.ErrorIs(t, err, ErrWeakPassword)

	_, err = svc.Register(ctx, "a@b.c", "secret123")
	require.NoError(t, err)
	_, err = svc.Register(ctx, "A@B.C", "secret123")
	assert.ErrorIs(t, err, ErrUserAlreadyExists)
}

func TestLogin_WrongPassword(t *testing.T) {
	svc := newTestAuthService(&recordingMailer{})
	ctx := context.Background()
	_, err := svc.Register(ctx, "a@b.c", "secret123")
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "a@b.c", "nope-nope")
	assert.ErrorIs(t, err, ErrAuthenticationFailed)

	_, _, err = svc.Login(ctx, "missing@b.c", "secret123")
	assert.ErrorIs(t, err, ErrAuthenticationFailed)
}

func TestVerifyEmail_SignupFlow(t *testing.T) {
	mailer := &recordingMailer{enabled: true}
	svc := newTestAuthService(mailer)
	ctx := context.Background()

	user, err := svc.Register(ctx, "a@b.c", "secret123")
	require.NoError(t, err)
	assert.False(t, user.EmailVerified)

	_, _, err = svc.Login(ctx, "a@b.c", "secret123")
	assert.ErrorIs(t, err, ErrEmailNotVerified)

	require.Len(t, mailer.sent, 1)
	token, tokenType := tokenFromLink(t, mailer.sent[0].link)
	assert.Equal(t, TokenPurposeSignup, tokenType)

	// a mailed token is not an access token
	_, err = svc.Authenticate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, _, err = svc.VerifyEmail(ctx, token, TokenPurposeRecovery)
	assert.ErrorIs(t, err, ErrInvalidToken)

	access, verified, err := svc.VerifyEmail(ctx, token, TokenPurposeSignup)
	require.NoError(t, err)
	assert.True(t, verified.EmailVerified)
	_, err = svc.Authenticate(access)
	require.NoError(t, err)

	_, _, err = svc.VerifyEmail(ctx, token, TokenPurposeSignup)
	assert.ErrorIs(t, err, ErrInvalidToken, "links are single use")

	_, _, err = svc.Login(ctx, "a@b.c", "secret123")
	assert.NoError(t, err)
}

func TestPasswordRecoveryFlow(t *testing.T) {
	mailer := &recordingMailer{enabled: true}
	svc := newTestAuthService(mailer)
	ctx := context.Background()

	_, err := svc.Register(ctx, "a@b.c", "secret123")
	require.NoError(t, err)

	require.NoError(t, svc.RequestPasswordReset(ctx, "unknown@b.c"))
	require.Len(t, mailer.sent, 1, "unknown addresses get no mail")

	require.NoError(t, svc.RequestPasswordReset(ctx, "a@b.c"))
	require.Len(t, mailer.sent, 2)
	assert.Equal(t, "recovery", mailer.sent[1].kind)

	token, tokenType := tokenFromLink(t, mailer.sent[1].link)
	access, user, err := svc.VerifyEmail(ctx, token, tokenType)
	require.NoError(t, err)

	identity, err := svc.Authenticate(access)
	require.NoError(t, err)
	require.NoError(t, svc.UpdatePassword(ctx, identity.UserID, "brand-new-pass"))
	assert.ErrorIs(t, svc.UpdatePassword(ctx, user.ID, "x"), ErrWeakPassword)

	_, _, err = svc.Login(ctx, "a@b.c", "secret123")
	assert.ErrorIs(t, err, ErrAuthenticationFailed)
	_, _, err = svc.Login(ctx, "a@b.c", "brand-new-pass")
	assert.NoError(t, err)
}

func TestSignOut_RevokesToken(t *testing.T) {
	svc := newTestAuthService(&recordingMailer{})
	ctx := context.Background()
	_, err := svc.Register(ctx, "a@b.c", "secret123")
	require.NoError(t, err)
	token, _, err := svc.Login(ctx, "a@b.c", "secret123")
	require.NoError(t, err)

	identity, err := svc.Authenticate(token)
	require.NoError(t, err)
	require.NoError(t, svc.SignOut(ctx, *identity))

	_, err = svc.Authenticate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthenticate_RejectsForeignAndMalformedTokens(t *testing.T) {
	svc := newTestAuthService(&recordingMailer{})
	other := NewAuthService(memory.NewUserRepository(), nil, nil, AuthConfig{Secret: "another-secret"}, nil)
	ctx := context.Background()

	_, err := other.Register(ctx, "a@b.c", "secret123")
	require.NoError(t, err)
	foreign, _, err := other.Login(ctx, "a@b.c", "secret123")
	require.NoError(t, err)

	_, err = svc.Authenticate(foreign)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = svc.Authenticate("garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenBlocklist(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	blocklist := NewTokenBlocklist(0, func() time.Time { return now })

	blocklist.Revoke("expired", now.Add(-time.Minute))
	assert.False(t, blocklist.IsRevoked("expired"))

	blocklist.Revoke("live", now.Add(time.Hour))
	assert.True(t, blocklist.IsRevoked("live"))
	assert.False(t, blocklist.IsRevoked("other"))
}
