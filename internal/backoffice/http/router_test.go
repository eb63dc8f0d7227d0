package http_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	bohttp "github.com/elmagroup/backoffice/internal/backoffice/http"
	"github.com/elmagroup/backoffice/internal/backoffice/mailer"
	"github.com/elmagroup/backoffice/internal/backoffice/metrics"
	"github.com/elmagroup/backoffice/internal/backoffice/service"
	"github.com/elmagroup/backoffice/internal/backoffice/store"
	"github.com/elmagroup/backoffice/internal/backoffice/store/drivers/sqlite"
	"github.com/elmagroup/backoffice/pkg/backofficesdk"
	"github.com/elmagroup/backoffice/pkg/cryptox"
	"github.com/elmagroup/backoffice/pkg/httpx"
	"github.com/elmagroup/backoffice/pkg/jwtx"
	"github.com/elmagroup/backoffice/pkg/slogx"
)

const (
	bootstrapToken = "bootstrap-secret"
	issuer         = "backoffice-test"
	gmPassword     = "general-manager-pw"
)

func TestMain(m *testing.M) {
	cryptox.SetPepper("http-test-pepper")

	// Every test client shares 127.0.0.1, so the strict profile would trip
	// after a handful of signups.
	httpx.StrictLimit = httpx.LenientLimit

	os.Exit(m.Run())
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []mailer.Invitation
	err  error
}

func (m *recordingMailer) SendInvite(_ context.Context, inv mailer.Invitation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, inv)
	return nil
}

type testEnv struct {
	srv    *httptest.Server
	client *backofficesdk.Client
	store  store.Store
	mail   *recordingMailer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	pemKey, err := cryptox.GenerateEd25519Key()
	require.NoError(t, err)
	signer, err := jwtx.NewSignerEdDSA("test-key", pemKey)
	require.NoError(t, err)
	keys := jwtx.NewKeySet()
	keys.AddSigner(signer)

	reg := prometheus.NewRegistry()
	m := metrics.New(reg, "backoffice")
	mail := &recordingMailer{}
	audit := &service.AuditLogger{Store: st, Metrics: m}

	router := bohttp.NewRouter(keys, jwtx.NewVerifierEdDSA(keys, issuer), "test", st, m, reg, slogx.Discard())
	router.UserService = &service.UserService{Store: st}
	router.SessionService = &service.SessionService{Store: st, Signer: signer, Issuer: issuer, Metrics: m}
	router.RolesService = &service.RolesService{Store: st, Audit: audit, Metrics: m}
	router.InviteService = &service.InviteService{
		Store: st, Audit: audit, Mailer: mail, Metrics: m,
		RedeemURL: "https://backoffice.elma.example/invites/redeem",
	}
	router.BootstrapService = &service.BootstrapService{Store: st, Audit: audit, Token: bootstrapToken}
	router.AuditLogger = audit
	router.ApplyRoutes()

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &testEnv{srv: srv, client: backofficesdk.NewClient(srv.URL), store: st, mail: mail}
}

// bootstrapGM creates the first general manager and logs them in.
func (e *testEnv) bootstrapGM(t *testing.T) *backofficesdk.Session {
	t.Helper()
	ctx := context.Background()

	_, err := e.client.Bootstrap(ctx, bootstrapToken, backofficesdk.BootstrapRequest{
		Username: "gm",
		Email:    "gm@elma.example",
		Password: gmPassword,
	})
	require.NoError(t, err)

	s, err := e.client.Login(ctx, "gm", gmPassword)
	require.NoError(t, err)
	return s
}

// signup registers a user without roles and logs them in.
func (e *testEnv) signup(t *testing.T, username string) *backofficesdk.Session {
	t.Helper()
	ctx := context.Background()

	_, err := e.client.Register(ctx, backofficesdk.RegisterRequest{
		Username: username,
		Email:    username + "@elma.example",
		Password: username + "-password",
	})
	require.NoError(t, err)

	s, err := e.client.Login(ctx, username, username+"-password")
	require.NoError(t, err)
	return s
}

func requireAPIError(t *testing.T, err error, status int, code string) {
	t.Helper()
	var apiErr *backofficesdk.APIError
	require.True(t, errors.As(err, &apiErr), "expected *APIError, got %v", err)
	require.Equal(t, status, apiErr.StatusCode)
	require.Equal(t, code, apiErr.Code)
}

func TestBootstrap(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	req := backofficesdk.BootstrapRequest{Username: "gm", Email: "gm@elma.example", Password: gmPassword}

	_, err := e.client.Bootstrap(ctx, "wrong", req)
	requireAPIError(t, err, http.StatusUnauthorized, backofficesdk.ErrorCodeUnauthorized)

	_, err = e.client.Bootstrap(ctx, "", req)
	requireAPIError(t, err, http.StatusUnauthorized, backofficesdk.ErrorCodeUnauthorized)

	resp, err := e.client.Bootstrap(ctx, bootstrapToken, req)
	require.NoError(t, err)
	require.NotEmpty(t, resp.UserID)

	_, err = e.client.Bootstrap(ctx, bootstrapToken, req)
	requireAPIError(t, err, http.StatusUnauthorized, backofficesdk.ErrorCodeUnauthorized)

	// Login by email, case-insensitive.
	s, err := e.client.Login(ctx, "GM@elma.example", gmPassword)
	require.NoError(t, err)
	require.Equal(t, resp.UserID, s.User.ID)

	me, err := s.Me(ctx)
	require.NoError(t, err)
	require.Equal(t, backofficesdk.RolesResponse{Admin: true, Manager: true, GeneralManager: true}, me.Roles)

	audit, err := s.AuditLog(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, 3, audit.Total)
	for _, entry := range audit.Entries {
		require.Equal(t, resp.UserID, entry.ActorID)
		require.Equal(t, resp.UserID, entry.SubjectID)
		require.Equal(t, "bootstrap", entry.Detail)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	e := newTestEnv(t)
	e.bootstrapGM(t)

	_, err := e.client.Login(context.Background(), "gm", "not-the-password")
	requireAPIError(t, err, http.StatusUnauthorized, backofficesdk.ErrorCodeUnauthorized)

	_, err = e.client.Login(context.Background(), "nobody", "whatever-pw")
	requireAPIError(t, err, http.StatusUnauthorized, backofficesdk.ErrorCodeUnauthorized)
}

func TestRegisterConflicts(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	e.signup(t, "bob")

	_, err := e.client.Register(ctx, backofficesdk.RegisterRequest{Username: "bob", Email: "other@elma.example", Password: "long-enough"})
	requireAPIError(t, err, http.StatusConflict, backofficesdk.ErrorCodeConflict)

	_, err = e.client.Register(ctx, backofficesdk.RegisterRequest{Username: "bobby", Email: "BOB@elma.example", Password: "long-enough"})
	requireAPIError(t, err, http.StatusConflict, backofficesdk.ErrorCodeConflict)

	_, err = e.client.Register(ctx, backofficesdk.RegisterRequest{Username: "carol", Email: "carol@elma.example", Password: "short"})
	requireAPIError(t, err, http.StatusBadRequest, backofficesdk.ErrorCodeInvalidRequest)
}

func TestAuthenticationRequired(t *testing.T) {
	e := newTestEnv(t)

	for _, path := range []string{"/v1/users/me", "/v1/users", "/v1/invites", "/v1/audit"} {
		resp, err := http.Get(e.srv.URL + path)
		require.NoError(t, err)
		_ = resp.Body.Close()
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)
		require.Contains(t, resp.Header.Get("WWW-Authenticate"), "Bearer", path)
	}
}

func TestRedeemInvite(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	gm := e.bootstrapGM(t)
	bob := e.signup(t, "bob")
	carol := e.signup(t, "carol")

	invite, err := gm.IssueInvite(ctx, 24)
	require.NoError(t, err)
	require.Len(t, invite.Token, 43)

	// Unknown token.
	_, err = bob.RedeemInvite(ctx, "not-a-real-token")
	requireAPIError(t, err, http.StatusNotFound, backofficesdk.ErrorCodeNotFound)

	res, err := bob.RedeemInvite(ctx, invite.Token)
	require.NoError(t, err)
	require.True(t, res.Admin)
	require.False(t, res.AlreadyAdmin)
	require.Equal(t, bob.User.ID, res.UserID)

	me, err := bob.Me(ctx)
	require.NoError(t, err)
	require.True(t, me.Roles.Admin)
	require.False(t, me.Roles.Manager)
	require.False(t, me.Roles.GeneralManager)

	// A consumed token is invalid for everyone.
	_, err = carol.RedeemInvite(ctx, invite.Token)
	requireAPIError(t, err, http.StatusBadRequest, backofficesdk.ErrorCodeInvalidToken)

	audit, err := gm.AuditLog(ctx, 1)
	require.NoError(t, err)
	latest := audit.Entries[0]
	require.Equal(t, "promote_admin", latest.Action)
	require.Equal(t, bob.User.ID, latest.ActorID)
	require.Equal(t, bob.User.ID, latest.SubjectID)

	invites, err := gm.ListInvites(ctx, 1)
	require.NoError(t, err)
	require.Len(t, invites.Invites, 1)
	require.Equal(t, "consumed", invites.Invites[0].State)
	require.Equal(t, bob.User.ID, invites.Invites[0].ConsumedBy)
}

func TestRedeemByAdminLeavesTokenActive(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	gm := e.bootstrapGM(t)

	invite, err := gm.IssueInvite(ctx, 24)
	require.NoError(t, err)

	res, err := gm.RedeemInvite(ctx, invite.Token)
	require.NoError(t, err)
	require.True(t, res.AlreadyAdmin)

	invites, err := gm.ListInvites(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, "active", invites.Invites[0].State)

	audit, err := gm.AuditLog(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, 3, audit.Total, "only the bootstrap entries")
}

func TestRedeemExpiredInvite(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	gm := e.bootstrapGM(t)
	bob := e.signup(t, "bob")

	invite, err := gm.IssueInvite(ctx, 0)
	require.NoError(t, err)

	_, err = bob.RedeemInvite(ctx, invite.Token)
	requireAPIError(t, err, http.StatusBadRequest, backofficesdk.ErrorCodeInvalidToken)

	_, err = gm.IssueInvite(ctx, 100000)
	requireAPIError(t, err, http.StatusBadRequest, backofficesdk.ErrorCodeInvalidRequest)
}

func TestConcurrentRedeemHasOneWinner(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	gm := e.bootstrapGM(t)

	invite, err := gm.IssueInvite(ctx, 24)
	require.NoError(t, err)

	sessions := []*backofficesdk.Session{e.signup(t, "bob"), e.signup(t, "carol"), e.signup(t, "dave")}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for _, s := range sessions {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.RedeemInvite(ctx, invite.Token)
			if err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
				return
			}
			if !backofficesdk.HasCode(err, backofficesdk.ErrorCodeInvalidToken) {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 1, wins)
}

func TestInviteEndpointsRequireGeneralManager(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	gm := e.bootstrapGM(t)
	bob := e.signup(t, "bob")

	_, err := bob.IssueInvite(ctx, 24)
	requireAPIError(t, err, http.StatusForbidden, backofficesdk.ErrorCodeForbidden)
	_, err = bob.ListInvites(ctx, 1)
	requireAPIError(t, err, http.StatusForbidden, backofficesdk.ErrorCodeForbidden)
	_, err = bob.SendInvite(ctx, "x@elma.example")
	requireAPIError(t, err, http.StatusForbidden, backofficesdk.ErrorCodeForbidden)
	_, err = bob.AuditLog(ctx, 1)
	requireAPIError(t, err, http.StatusForbidden, backofficesdk.ErrorCodeForbidden)

	// Admin alone is not enough.
	_, err = gm.SetRole(ctx, bob.User.ID, "admin", true)
	require.NoError(t, err)
	_, err = bob.IssueInvite(ctx, 24)
	requireAPIError(t, err, http.StatusForbidden, backofficesdk.ErrorCodeForbidden)

	// Roles are read per request: revoking general manager takes effect
	// while the session is still valid.
	_, err = gm.SetRole(ctx, bob.User.ID, "general_manager", true)
	require.NoError(t, err)
	_, err = bob.IssueInvite(ctx, 24)
	require.NoError(t, err)
	_, err = gm.SetRole(ctx, bob.User.ID, "general_manager", false)
	require.NoError(t, err)
	_, err = bob.IssueInvite(ctx, 24)
	requireAPIError(t, err, http.StatusForbidden, backofficesdk.ErrorCodeForbidden)
}

func TestSendInvite(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	gm := e.bootstrapGM(t)

	res, err := gm.SendInvite(ctx, "Editor@ELMA.example")
	require.NoError(t, err)
	require.True(t, res.Delivered)
	require.Len(t, e.mail.sent, 1)
	require.Equal(t, "editor@elma.example", e.mail.sent[0].To)
	require.True(t, strings.HasPrefix(e.mail.sent[0].Link(), "https://backoffice.elma.example/invites/redeem?token="))

	// The mailed token works.
	bob := e.signup(t, "bob")
	_, err = bob.RedeemInvite(ctx, e.mail.sent[0].Token)
	require.NoError(t, err)

	// Delivery failures do not fail the request.
	e.mail.err = errors.New("smtp down")
	res, err = gm.SendInvite(ctx, "other@elma.example")
	require.NoError(t, err)
	require.False(t, res.Delivered)

	invites, err := gm.ListInvites(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, 2, invites.Total)

	_, err = gm.SendInvite(ctx, "not an email")
	requireAPIError(t, err, http.StatusBadRequest, backofficesdk.ErrorCodeInvalidRequest)
}

func TestSetRole(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	gm := e.bootstrapGM(t)
	bob := e.signup(t, "bob")
	carol := e.signup(t, "carol")

	change, err := gm.SetRole(ctx, bob.User.ID, "admin", true)
	require.NoError(t, err)
	require.True(t, change.Changed)
	require.False(t, change.From)
	require.True(t, change.To)
	require.NotEmpty(t, change.AuditID)
	require.True(t, change.Roles.Admin)

	// Setting the same value again is a no-op.
	change, err = gm.SetRole(ctx, bob.User.ID, "admin", true)
	require.NoError(t, err)
	require.False(t, change.Changed)
	require.Empty(t, change.AuditID)

	// An admin manages managers...
	change, err = bob.SetRole(ctx, carol.User.ID, "manager", true)
	require.NoError(t, err)
	require.True(t, change.Roles.Manager)

	// ...but not general managers.
	_, err = bob.SetRole(ctx, carol.User.ID, "general_manager", true)
	requireAPIError(t, err, http.StatusForbidden, backofficesdk.ErrorCodeForbidden)

	// Nobody changes their own roles, not even to drop one.
	_, err = gm.SetRole(ctx, gm.User.ID, "admin", false)
	requireAPIError(t, err, http.StatusConflict, backofficesdk.ErrorCodeSelfModification)

	// Self-modification wins over an unknown role.
	_, err = gm.SetRole(ctx, gm.User.ID, "superuser", true)
	requireAPIError(t, err, http.StatusConflict, backofficesdk.ErrorCodeSelfModification)

	_, err = gm.SetRole(ctx, carol.User.ID, "superuser", true)
	requireAPIError(t, err, http.StatusBadRequest, backofficesdk.ErrorCodeInvalidRequest)

	_, err = gm.SetRole(ctx, "01HZZZZZZZZZZZZZZZZZZZZZZZ", "manager", true)
	requireAPIError(t, err, http.StatusNotFound, backofficesdk.ErrorCodeNotFound)

	// Aliases resolve to the canonical role.
	change, err = gm.SetRole(ctx, carol.User.ID, "gm", true)
	require.NoError(t, err)
	require.Equal(t, "general_manager", change.Role)
	require.True(t, change.Roles.GeneralManager)

	audit, err := gm.AuditLog(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, 3+3, audit.Total)
	require.Equal(t, "promote_general_manager", audit.Entries[0].Action)
	require.Equal(t, "General Manager status changed from false to true", audit.Entries[0].Detail)
}

func TestSetRoleRequiresGrant(t *testing.T) {
	e := newTestEnv(t)
	gm := e.bootstrapGM(t)
	bob := e.signup(t, "bob")

	req, err := http.NewRequest(http.MethodPost, e.srv.URL+"/v1/users/"+bob.User.ID+"/roles/admin",
		strings.NewReader(url.Values{"grant": {"maybe"}}.Encode()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+gm.Token())

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRoleEndpointsArePostOnly(t *testing.T) {
	e := newTestEnv(t)
	gm := e.bootstrapGM(t)

	for _, path := range []string{"/v1/users/x/roles/admin", "/v1/users/x/roles/admin/toggle", "/v1/admins/promote", "/v1/invites/redeem"} {
		req, err := http.NewRequest(http.MethodGet, e.srv.URL+path, nil)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+gm.Token())

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		_ = resp.Body.Close()
		require.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode, path)
	}
}

func TestToggleRole(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	gm := e.bootstrapGM(t)
	bob := e.signup(t, "bob")

	change, err := gm.ToggleRole(ctx, bob.User.ID, "manager")
	require.NoError(t, err)
	require.True(t, change.To)

	change, err = gm.ToggleRole(ctx, bob.User.ID, "manager")
	require.NoError(t, err)
	require.False(t, change.To)
	require.False(t, change.Roles.Manager)

	audit, err := gm.AuditLog(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, "demote_manager", audit.Entries[0].Action)
	require.Equal(t, "promote_manager", audit.Entries[1].Action)

	_, err = bob.ToggleRole(ctx, gm.User.ID, "admin")
	requireAPIError(t, err, http.StatusForbidden, backofficesdk.ErrorCodeForbidden)
}

func TestPromoteAdminByEmail(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	gm := e.bootstrapGM(t)
	bob := e.signup(t, "bob")

	change, err := gm.PromoteAdmin(ctx, "bob@elma.example")
	require.NoError(t, err)
	require.True(t, change.Changed)
	require.Equal(t, bob.User.ID, change.UserID)

	change, err = gm.PromoteAdmin(ctx, "bob@elma.example")
	require.NoError(t, err)
	require.False(t, change.Changed)

	_, err = gm.PromoteAdmin(ctx, "nobody@elma.example")
	requireAPIError(t, err, http.StatusNotFound, backofficesdk.ErrorCodeNotFound)

	_, err = gm.PromoteAdmin(ctx, "gm@elma.example")
	requireAPIError(t, err, http.StatusConflict, backofficesdk.ErrorCodeSelfModification)

	// bob is an admin but not a general manager.
	_, err = bob.PromoteAdmin(ctx, "gm@elma.example")
	requireAPIError(t, err, http.StatusForbidden, backofficesdk.ErrorCodeForbidden)
}

func TestListUsers(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	gm := e.bootstrapGM(t)
	bob := e.signup(t, "bob")
	e.signup(t, "carol")

	_, err := bob.ListUsers(ctx, 1)
	requireAPIError(t, err, http.StatusForbidden, backofficesdk.ErrorCodeForbidden)

	page, err := gm.ListUsers(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, 3, page.Total)
	require.Equal(t, service.UsersPerPage, page.PerPage)

	names := make([]string, 0, len(page.Users))
	for _, u := range page.Users {
		names = append(names, u.Username)
	}
	require.Equal(t, []string{"carol", "bob", "gm"}, names)
}

func TestUserAuditHistory(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	gm := e.bootstrapGM(t)
	bob := e.signup(t, "bob")
	carol := e.signup(t, "carol")

	_, err := gm.SetRole(ctx, bob.User.ID, "manager", true)
	require.NoError(t, err)
	_, err = gm.SetRole(ctx, bob.User.ID, "manager", false)
	require.NoError(t, err)
	_, err = gm.SetRole(ctx, carol.User.ID, "admin", true)
	require.NoError(t, err)

	history, err := gm.UserAudit(ctx, bob.User.ID)
	require.NoError(t, err)
	require.Equal(t, bob.User.ID, history.UserID)
	require.Len(t, history.Entries, 2)
	require.Equal(t, "demote_manager", history.Entries[0].Action)
	require.Equal(t, "promote_manager", history.Entries[1].Action)
	for _, entry := range history.Entries {
		require.Equal(t, bob.User.ID, entry.SubjectID)
		require.Equal(t, gm.User.ID, entry.ActorID)
	}

	_, err = gm.UserAudit(ctx, "no-such-user")
	requireAPIError(t, err, http.StatusNotFound, backofficesdk.ErrorCodeNotFound)

	// carol is an admin but not a general manager.
	_, err = carol.UserAudit(ctx, bob.User.ID)
	requireAPIError(t, err, http.StatusForbidden, backofficesdk.ErrorCodeForbidden)
}

func TestHealthAndMetrics(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	live, err := e.client.Liveness(ctx)
	require.NoError(t, err)
	require.Equal(t, "ok", live.Status)
	require.Equal(t, "test", live.Version)

	ready, err := e.client.Readiness(ctx)
	require.NoError(t, err)
	require.Equal(t, "ok", ready.Status)
	require.Equal(t, "ok", ready.Checks.Database)
	require.Equal(t, "ok", ready.Checks.Signer)

	resp, err := http.Get(e.srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), `http_requests_total{method="GET",path="GET /livez",service="backoffice",status="200"} 1`)
}

func TestReadinessDegradesWhenDatabaseIsDown(t *testing.T) {
	e := newTestEnv(t)
	require.NoError(t, e.store.Close())

	_, err := e.client.Readiness(context.Background())
	requireAPIError(t, err, http.StatusServiceUnavailable, backofficesdk.ErrorCodeServerError)
}

func TestResponsesAreNotCached(t *testing.T) {
	e := newTestEnv(t)

	resp, err := http.Get(e.srv.URL + "/livez")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, "no-store", resp.Header.Get("Cache-Control"))
	require.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}
