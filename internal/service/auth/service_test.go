package auth

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/machwork/identity/internal/domain/repository"
	"github.com/machwork/identity/internal/email"
	"github.com/machwork/identity/internal/jwt"
	"github.com/machwork/identity/internal/rbac"
	"github.com/machwork/identity/internal/security/password"
	"github.com/machwork/identity/internal/security/token"
	"github.com/machwork/identity/internal/security/totp"
)

// captureSender guarda el último correo y avisa por canal.
type captureSender struct {
	ch chan string // text body
}

func (s *captureSender) Send(_ context.Context, _, _, _, textBody string) error {
	select {
	case s.ch <- textBody:
	default:
	}
	return nil
}

// tokenFromBody extrae el token crudo del link del correo.
func tokenFromBody(t *testing.T, body string) string {
	t.Helper()
	i := strings.Index(body, "token=")
	require.GreaterOrEqual(t, i, 0, "no token in body: %s", body)
	rest := body[i+len("token="):]
	if j := strings.IndexAny(rest, " \n\t"); j >= 0 {
		rest = rest[:j]
	}
	raw, err := url.QueryUnescape(rest)
	require.NoError(t, err)
	return raw
}

type testEnv struct {
	svc         *Service
	users       *fakeUsers
	memberships *fakeMemberships
	actions     *fakeActionTokens
	refresh     *fakeRefreshTokens
	backup      *fakeBackupCodes
	atomic      *fakeAtomic
	mail        *captureSender
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	keys, err := jwt.GenerateKeyPair()
	require.NoError(t, err)
	issuer := jwt.NewIssuer(keys, "machwork", "machwork-api", 15*time.Minute, 720*time.Hour)
	verifier := jwt.NewVerifier(keys, "machwork", "machwork-api")

	env := &testEnv{
		users:       newFakeUsers(),
		memberships: newFakeMemberships(),
		actions:     newFakeActionTokens(),
		refresh:     newFakeRefreshTokens(),
		backup:      newFakeBackupCodes(),
		atomic:      &fakeAtomic{},
		mail:        &captureSender{ch: make(chan string, 4)},
	}
	env.svc = New(
		Repos{
			Users:         env.users,
			Memberships:   env.memberships,
			ActionTokens:  env.actions,
			RefreshTokens: env.refresh,
			BackupCodes:   env.backup,
			Atomic:        env.atomic,
		},
		issuer,
		verifier,
		rbac.NewResolver(env.memberships),
		email.NewMailer(env.mail, "http://localhost:3000"),
		nil,
		Config{
			Policy: password.Policy{MinLength: 12},
			// parámetros bajos para que la suite no tarde
			HashParams: password.Params{Memory: 1024, Time: 1, Parallelism: 1, KeyLen: 32},
		},
	)
	return env
}

func (e *testEnv) waitMail(t *testing.T) string {
	t.Helper()
	select {
	case body := <-e.mail.ch:
		return body
	case <-time.After(2 * time.Second):
		t.Fatal("no email sent")
		return ""
	}
}

const testPassword = "correct horse battery"

func (e *testEnv) register(t *testing.T, addr string) *repository.User {
	t.Helper()
	u, err := e.svc.Register(context.Background(), RegisterInput{
		Email:     addr,
		Password:  testPassword,
		FirstName: "Ada",
		LastName:  "Lovelace",
	})
	require.NoError(t, err)
	return u
}

func (e *testEnv) registerVerified(t *testing.T, addr string) *repository.User {
	t.Helper()
	u := e.register(t, addr)
	e.waitMail(t)
	now := time.Now().UTC()
	require.NoError(t, e.users.SetEmailVerified(context.Background(), u.ID, now))
	return u
}

func TestRegisterAndVerifyEmail(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	u := env.register(t, "Ada@Example.COM")
	require.Equal(t, "ada@example.com", u.Email)

	raw := tokenFromBody(t, env.waitMail(t))
	require.NoError(t, env.svc.VerifyEmail(ctx, raw))

	got, err := env.users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, got.EmailVerifiedAt)

	// segundo consumo del mismo token falla
	require.ErrorIs(t, env.svc.VerifyEmail(ctx, raw), ErrInvalidOrExpiredToken)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "ada@example.com")

	_, err := env.svc.Register(context.Background(), RegisterInput{
		Email:    "ADA@example.com",
		Password: testPassword,
	})
	require.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestRegisterWeakPassword(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.svc.Register(context.Background(), RegisterInput{
		Email:    "ada@example.com",
		Password: "short",
	})
	require.ErrorIs(t, err, ErrWeakPassword)
}

func TestLoginFlow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	u := env.register(t, "ada@example.com")

	// sin verificar: credenciales OK pero login rechazado
	_, err := env.svc.Login(ctx, LoginInput{Email: u.Email, Password: testPassword})
	require.ErrorIs(t, err, ErrEmailNotVerified)

	now := time.Now().UTC()
	require.NoError(t, env.users.SetEmailVerified(ctx, u.ID, now))

	pair, err := env.svc.Login(ctx, LoginInput{Email: "ADA@example.com", Password: testPassword})
	require.NoError(t, err)
	require.Equal(t, "bearer", pair.TokenType)
	require.Equal(t, 900, pair.ExpiresIn)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)

	// password incorrecto y email inexistente: mismo error
	_, err = env.svc.Login(ctx, LoginInput{Email: u.Email, Password: "wrong password!!"})
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = env.svc.Login(ctx, LoginInput{Email: "nobody@example.com", Password: testPassword})
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginResolvesPrimaryRole(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	u := env.registerVerified(t, "owner@example.com")
	env.memberships.primary[u.ID] = &repository.CompanyMembership{
		UserID: u.ID, CompanyID: "co-1", Role: "company_owner", IsPrimary: true,
	}

	pair, err := env.svc.Login(ctx, LoginInput{Email: u.Email, Password: testPassword})
	require.NoError(t, err)

	keysVerifier := env.svc.verifier
	claims, err := keysVerifier.ParseAccess(pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, "company_owner", claims.Role)
	require.Equal(t, "co-1", claims.CompanyID)

	// sin membresía: worker sin company
	u2 := env.registerVerified(t, "solo@example.com")
	pair2, err := env.svc.Login(ctx, LoginInput{Email: u2.Email, Password: testPassword})
	require.NoError(t, err)
	claims2, err := keysVerifier.ParseAccess(pair2.AccessToken)
	require.NoError(t, err)
	require.Equal(t, "worker", claims2.Role)
	require.Empty(t, claims2.CompanyID)
}

func TestRefreshRotation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	u := env.registerVerified(t, "ada@example.com")
	pair, err := env.svc.Login(ctx, LoginInput{Email: u.Email, Password: testPassword})
	require.NoError(t, err)

	second, err := env.svc.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	require.NotEqual(t, pair.RefreshToken, second.RefreshToken)

	// el refresh viejo quedó revocado: reuso falla siempre
	_, err = env.svc.Refresh(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, ErrInvalidOrExpiredToken)

	// el nuevo sigue vivo
	_, err = env.svc.Refresh(ctx, second.RefreshToken)
	require.NoError(t, err)
}

func TestRefreshJTIMismatchRevokesSessions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	u := env.registerVerified(t, "ada@example.com")
	pair, err := env.svc.Login(ctx, LoginInput{Email: u.Email, Password: testPassword})
	require.NoError(t, err)

	// desincronizar el registro persistido respecto del jti firmado
	env.refresh.mu.Lock()
	for _, rt := range env.refresh.byHash {
		rt.JTI = "desynced"
	}
	env.refresh.mu.Unlock()

	_, err = env.svc.Refresh(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, ErrTokenMismatch)

	// todas las sesiones del usuario quedaron revocadas
	env.refresh.mu.Lock()
	for _, rt := range env.refresh.byHash {
		if rt.UserID == u.ID {
			require.NotNil(t, rt.RevokedAt)
		}
	}
	env.refresh.mu.Unlock()
}

func TestRefreshGarbageToken(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.svc.Refresh(context.Background(), "garbage")
	require.ErrorIs(t, err, ErrInvalidOrExpiredToken)
}

func TestForgotAndResetPassword(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	u := env.registerVerified(t, "ada@example.com")
	pair, err := env.svc.Login(ctx, LoginInput{Email: u.Email, Password: testPassword})
	require.NoError(t, err)

	// email inexistente: misma respuesta, sin filtrar cuentas
	require.NoError(t, env.svc.ForgotPassword(ctx, "nobody@example.com"))

	require.NoError(t, env.svc.ForgotPassword(ctx, u.Email))
	raw := tokenFromBody(t, env.waitMail(t))

	const newPassword = "another long password"
	require.NoError(t, env.svc.ResetPassword(ctx, raw, newPassword))

	// el token es de un solo uso
	require.ErrorIs(t, env.svc.ResetPassword(ctx, raw, newPassword), ErrInvalidOrExpiredToken)

	// password viejo ya no sirve, el nuevo sí
	_, err = env.svc.Login(ctx, LoginInput{Email: u.Email, Password: testPassword})
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = env.svc.Login(ctx, LoginInput{Email: u.Email, Password: newPassword})
	require.NoError(t, err)

	// el reset corta todas las sesiones anteriores
	_, err = env.svc.Refresh(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, ErrInvalidOrExpiredToken)
}

func TestMFALifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	u := env.registerVerified(t, "ada@example.com")

	// confirm sin initiate
	err := env.svc.MFAConfirm(ctx, u.ID, "000000")
	require.ErrorIs(t, err, ErrMFANotInitiated)

	setup, err := env.svc.MFAInitiate(ctx, u.ID)
	require.NoError(t, err)
	require.NotEmpty(t, setup.Secret)
	require.Contains(t, setup.OTPAuthURL, "otpauth://totp/")
	require.Len(t, setup.BackupCodes, 8)
	codes := setup.BackupCodes

	secret, err := totp.DecodeSecret(setup.Secret)
	require.NoError(t, err)

	// código incorrecto no activa nada
	err = env.svc.MFAConfirm(ctx, u.ID, "000000")
	require.ErrorIs(t, err, ErrInvalidMFACode)

	require.NoError(t, env.svc.MFAConfirm(ctx, u.ID, totp.Code(secret, time.Now())))

	// initiate con MFA activo
	_, err = env.svc.MFAInitiate(ctx, u.ID)
	require.ErrorIs(t, err, ErrMFAAlreadyEnabled)

	// login sin código pide el segundo factor
	_, err = env.svc.Login(ctx, LoginInput{Email: u.Email, Password: testPassword})
	require.ErrorIs(t, err, ErrMFARequired)

	// login con TOTP
	pair, err := env.svc.Login(ctx, LoginInput{
		Email: u.Email, Password: testPassword, MFACode: totp.Code(secret, time.Now()),
	})
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)

	// login con backup code, una sola vez
	_, err = env.svc.Login(ctx, LoginInput{
		Email: u.Email, Password: testPassword, MFACode: codes[0],
	})
	require.NoError(t, err)
	_, err = env.svc.Login(ctx, LoginInput{
		Email: u.Email, Password: testPassword, MFACode: codes[0],
	})
	require.ErrorIs(t, err, ErrInvalidMFACode)

	// disable con TOTP
	require.NoError(t, env.svc.MFADisable(ctx, u.ID, totp.Code(secret, time.Now())))
	got, err := env.users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	require.False(t, got.MFAEnabled)
	require.Nil(t, got.MFASecret)

	// disable de nuevo
	require.ErrorIs(t, env.svc.MFADisable(ctx, u.ID, "whatever"), ErrMFANotEnabled)

	// y el login vuelve a ser de un factor
	_, err = env.svc.Login(ctx, LoginInput{Email: u.Email, Password: testPassword})
	require.NoError(t, err)
}

func TestMFAUsedBackupCodeHash(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	u := env.registerVerified(t, "ada@example.com")
	setup, err := env.svc.MFAInitiate(ctx, u.ID)
	require.NoError(t, err)
	secret, err := totp.DecodeSecret(setup.Secret)
	require.NoError(t, err)
	require.NoError(t, env.svc.MFAConfirm(ctx, u.ID, totp.Code(secret, time.Now())))
	codes := setup.BackupCodes

	// el almacén solo ve hashes, nunca los codes crudos
	env.backup.mu.Lock()
	pool := env.backup.codes[u.ID]
	for _, c := range codes {
		_, rawStored := pool[c]
		require.False(t, rawStored)
		_, hashStored := pool[token.SHA256Hex(c)]
		require.True(t, hashStored)
	}
	env.backup.mu.Unlock()
}

func TestListMembers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.registerVerified(t, "owner@example.com")
	outsider := env.registerVerified(t, "outsider@example.com")
	env.memberships.primary[owner.ID] = &repository.CompanyMembership{
		UserID: owner.ID, CompanyID: "co-1", Role: "company_owner", IsPrimary: true,
	}

	members, err := env.svc.ListMembers(ctx, owner.ID, rbac.RoleCompanyOwner, "co-1", "co-1")
	require.NoError(t, err)
	require.Len(t, members, 1)

	// un worker de otra company no puede listar
	_, err = env.svc.ListMembers(ctx, outsider.ID, rbac.RoleWorker, "co-2", "co-1")
	require.ErrorIs(t, err, ErrForbidden)

	// super_admin pasa sin membresía ni scope
	_, err = env.svc.ListMembers(ctx, outsider.ID, rbac.RoleSuperAdmin, "", "co-1")
	require.NoError(t, err)
}

func TestListMembersCompanyScopeMismatch(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	u := env.registerVerified(t, "owner@example.com")
	env.memberships.primary[u.ID] = &repository.CompanyMembership{
		UserID: u.ID, CompanyID: "co-2", Role: "company_owner", IsPrimary: true,
	}

	// membresía viva en co-2, pero el token dice co-1: no alcanza
	_, err := env.svc.ListMembers(ctx, u.ID, rbac.RoleCompanyOwner, "co-1", "co-2")
	require.ErrorIs(t, err, ErrForbidden)

	// con el scope correcto sí
	_, err = env.svc.ListMembers(ctx, u.ID, rbac.RoleCompanyOwner, "co-2", "co-2")
	require.NoError(t, err)
}

func TestVerifyAndResetRunInOneTransaction(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	u := env.register(t, "ada@example.com")
	verifyTok := tokenFromBody(t, env.waitMail(t))

	// consumo del token y marca del email comparten transacción
	require.Equal(t, 0, env.atomic.count())
	require.NoError(t, env.svc.VerifyEmail(ctx, verifyTok))
	require.Equal(t, 1, env.atomic.count())

	require.NoError(t, env.svc.ForgotPassword(ctx, u.Email))
	resetTok := tokenFromBody(t, env.waitMail(t))
	require.NoError(t, env.svc.ResetPassword(ctx, resetTok, "a whole new password"))
	require.Equal(t, 2, env.atomic.count())

	// un token inválido falla adentro de la tx sin efectos colaterales
	require.ErrorIs(t, env.svc.ResetPassword(ctx, resetTok, "a whole new password"), ErrInvalidOrExpiredToken)
	_, err := env.svc.Login(ctx, LoginInput{Email: u.Email, Password: "a whole new password"})
	require.NoError(t, err)
}
