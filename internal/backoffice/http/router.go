package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/elmagroup/backoffice/internal/backoffice/domain"
	"github.com/elmagroup/backoffice/internal/backoffice/metrics"
	"github.com/elmagroup/backoffice/internal/backoffice/service"
	"github.com/elmagroup/backoffice/internal/backoffice/store"
	"github.com/elmagroup/backoffice/pkg/httpx"
	"github.com/elmagroup/backoffice/pkg/jwtx"
	"github.com/elmagroup/backoffice/pkg/slogx"

	_ "github.com/elmagroup/backoffice/api/backoffice" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware
	handler     http.Handler

	keys         *jwtx.KeySet
	verifier     jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	metrics      *metrics.Metrics
	gatherer     prometheus.Gatherer

	store            store.Store
	UserService      *service.UserService
	SessionService   *service.SessionService
	RolesService     *service.RolesService
	InviteService    *service.InviteService
	BootstrapService *service.BootstrapService
	AuditLogger      *service.AuditLogger
}

// NewRouter creates a router. m and gatherer may be nil, in which case
// requests are not measured and /metrics is not served.
func NewRouter(
	keys *jwtx.KeySet,
	verifier jwtx.Verifier,
	buildVersion string,
	st store.Store,
	m *metrics.Metrics,
	gatherer prometheus.Gatherer,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		keys:         keys,
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		metrics:      m,
		gatherer:     gatherer,
		logger:       logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

// ApplyRoutes registers every route. The services must be set first.
func (r *Router) ApplyRoutes() {
	r.registerAccounts()
	r.registerRoles()
	r.registerInvites()
	r.registerAudit()
	r.registerSystem()
	r.registerBootstrap()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())

	// The metrics middleware wraps the mux directly so the matched pattern
	// is visible to it after dispatch.
	r.handler = httpx.Chain(r.metrics.Middleware(r.Mux), r.middlewares...)
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title						ELMA Back Office API
//	@version					0.1.0
//	@description				Back-office privilege management: admin invitations, role changes and the audit log.
//	@description
//	@description				Session tokens are EdDSA-signed JWTs obtained from POST /v1/sessions.
//
//	@contact.name				ELMA Platform Team
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Session token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	h := r.handler
	if h == nil {
		h = httpx.Chain(r.metrics.Middleware(r.Mux), r.middlewares...)
	}
	h.ServeHTTP(w, req)
}

// authed is the chain shared by every authenticated route.
func (r *Router) authed(h http.Handler, mws ...httpx.Middleware) http.Handler {
	return httpx.Chain(h, append([]httpx.Middleware{httpx.AuthnMiddleware(r.verifier)}, mws...)...)
}

func (r *Router) registerAccounts() {
	users := &UsersHandler{UserService: r.UserService}
	sessions := &SessionHandler{SessionService: r.SessionService}

	// POST /users - strict rate limit by IP (public signup)
	r.Mux.Handle("POST /v1/users",
		httpx.Chain(http.HandlerFunc(users.HandleRegister),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// POST /sessions - strict limit by IP + login to slow password guessing
	r.Mux.Handle("POST /v1/sessions",
		httpx.Chain(sessions,
			httpx.RateLimitByIPAndFormField(httpx.StrictLimit, "login"),
		),
	)

	r.Mux.Handle("GET /v1/users/me",
		r.authed(http.HandlerFunc(users.HandleMe),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)

	r.Mux.Handle("GET /v1/users",
		r.authed(http.HandlerFunc(users.HandleList),
			RequireRole(r.store, domain.RoleAdmin),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerRoles() {
	h := &RolesHandler{RolesService: r.RolesService}

	// Actor privileges depend on the role being changed and are checked by
	// the service.
	r.Mux.Handle("POST /v1/users/{id}/roles/{role}",
		r.authed(http.HandlerFunc(h.HandleSet),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("POST /v1/users/{id}/roles/{role}/toggle",
		r.authed(http.HandlerFunc(h.HandleToggle),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)

	r.Mux.Handle("POST /v1/admins/promote",
		r.authed(http.HandlerFunc(h.HandlePromoteAdmin),
			RequireRole(r.store, domain.RoleGeneralManager),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerInvites() {
	h := &InvitesHandler{InviteService: r.InviteService}
	gm := RequireRole(r.store, domain.RoleGeneralManager)

	r.Mux.Handle("POST /v1/invites",
		r.authed(http.HandlerFunc(h.HandleIssue), gm,
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("GET /v1/invites",
		r.authed(http.HandlerFunc(h.HandleList), gm,
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("POST /v1/invites/send",
		r.authed(http.HandlerFunc(h.HandleSend), gm,
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)

	// POST /invites/redeem - strict limit by user (token guessing)
	r.Mux.Handle("POST /v1/invites/redeem",
		r.authed(http.HandlerFunc(h.HandleRedeem),
			httpx.RateLimitByUser(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerAudit() {
	h := &AuditHandler{Audit: r.AuditLogger}

	r.Mux.Handle("GET /v1/audit",
		r.authed(h,
			RequireRole(r.store, domain.RoleGeneralManager),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("GET /v1/users/{id}/audit",
		r.authed(http.HandlerFunc(h.HandleSubject),
			RequireRole(r.store, domain.RoleGeneralManager),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerBootstrap() {
	// POST /bootstrap - very strict rate limit by IP (one-time setup endpoint)
	r.Mux.Handle("POST /v1/bootstrap",
		httpx.Chain(&BootstrapHandler{BootstrapService: r.BootstrapService},
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.keys),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)

	if r.gatherer != nil {
		r.Mux.Handle("GET /metrics", promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{}))
	}
}
