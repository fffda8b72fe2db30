package httphandler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"

	"github.com/ericfisherdev/hastrava/internal/application"
	"github.com/ericfisherdev/hastrava/internal/domain/model"
	"github.com/ericfisherdev/hastrava/internal/domain/port/driven"
	"github.com/ericfisherdev/hastrava/internal/validation"
)

// Poller is the subset of the poll service used by the HTTP API.
type Poller interface {
	Snapshot() application.Snapshot
	Options(ctx context.Context) (model.Options, error)
	UpdateOptions(ctx context.Context, opts model.Options) (model.Options, error)
	Refresh(ctx context.Context) error
}

// Authenticator drives the Strava authorization code flow.
type Authenticator interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) error
}

// HealthReporter produces the readiness view.
type HealthReporter interface {
	Report(ctx context.Context) (application.HealthReport, error)
}

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 16

// Handler is the HTTP driving adapter that serves the REST API and the OAuth
// callback.
type Handler struct {
	poller   Poller
	auth     Authenticator
	health   HealthReporter
	validate *validator.Validate
	logger   *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(poller Poller, auth Authenticator, health HealthReporter, logger *slog.Logger) *Handler {
	return &Handler{
		poller:   poller,
		auth:     auth,
		health:   health,
		validate: validation.New(),
		logger:   logger,
	}
}

// NewServeMux creates an http.Handler with all routes registered and wrapped
// with request id, logging and recovery middleware.
func NewServeMux(h *Handler, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v1/health", h.Health)
	mux.HandleFunc("GET /api/v1/sensors", h.ListSensors)
	mux.HandleFunc("GET /api/v1/options", h.GetOptions)
	mux.HandleFunc("PUT /api/v1/options", h.UpdateOptions)
	mux.HandleFunc("POST /api/v1/refresh", h.Refresh)
	mux.HandleFunc("GET /auth/login", h.Login)
	mux.HandleFunc("GET /auth/callback", h.Callback)

	// Recovery innermost so panics are caught before logging. Tracing wraps
	// the request logger so its line carries the request span.
	wrapped := recoveryMiddleware(logger, mux)
	wrapped = requestIDPropagation(wrapped)
	wrapped = loggingMiddleware(logger)(wrapped)
	wrapped = tracingMiddleware(otel.Tracer(tracerName))(wrapped)
	wrapped = requestIDMiddleware(wrapped)

	return wrapped
}

// Health reports readiness, the linked account and the last sync outcome.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	report, err := h.health.Report(r.Context())
	if err != nil {
		h.log(r).ErrorContext(r.Context(), "failed to build health report", "error", err)
		writeError(w, http.StatusServiceUnavailable, "health unavailable")
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// ListSensors returns the sensor states published by the last sync.
func (h *Handler) ListSensors(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, toSensorsResponse(h.poller.Snapshot()))
}

// GetOptions returns the active options.
func (h *Handler) GetOptions(w http.ResponseWriter, r *http.Request) {
	opts, err := h.poller.Options(r.Context())
	if err != nil {
		h.log(r).ErrorContext(r.Context(), "failed to load options", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, toOptionsResponse(opts))
}

// UpdateOptions merges the request onto the active options and applies them
// through the poll loop.
func (h *Handler) UpdateOptions(w http.ResponseWriter, r *http.Request) {
	var req UpdateOptionsRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, describeValidation(err))
		return
	}

	current, err := h.poller.Options(r.Context())
	if err != nil {
		h.log(r).ErrorContext(r.Context(), "failed to load options", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	updated, err := h.poller.UpdateOptions(r.Context(), req.apply(current))
	if err != nil {
		h.log(r).ErrorContext(r.Context(), "failed to update options", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, toOptionsResponse(updated))
}

// Refresh runs a sync cycle immediately and waits for it to finish.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	if err := h.poller.Refresh(r.Context()); err != nil {
		status, msg := syncErrorStatus(err)
		h.log(r).WarnContext(r.Context(), "manual refresh failed", "error", err, "status", status)
		writeError(w, status, msg)
		return
	}

	snap := h.poller.Snapshot()
	writeJSON(w, http.StatusOK, RefreshResponse{
		Sensors:  len(snap.Sensors),
		LastSync: snap.LastSuccess.UTC().Format(time.RFC3339),
	})
}

// Login redirects the browser to the Strava authorization page.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	state := issueState(w, r)
	http.Redirect(w, r, h.auth.AuthCodeURL(state), http.StatusFound)
}

// Callback completes the authorization code flow and triggers a sync.
func (h *Handler) Callback(w http.ResponseWriter, r *http.Request) {
	if !validateState(w, r) {
		writeError(w, http.StatusBadRequest, "invalid or expired state, start again at /auth/login")
		return
	}

	q := r.URL.Query()
	if denied := q.Get("error"); denied != "" {
		writeError(w, http.StatusForbidden, "authorization denied: "+denied)
		return
	}

	code := q.Get("code")
	if code == "" {
		writeError(w, http.StatusBadRequest, "missing authorization code")
		return
	}

	if err := h.auth.Exchange(r.Context(), code); err != nil {
		h.log(r).ErrorContext(r.Context(), "authorization code exchange failed", "error", err)
		if errors.Is(err, driven.ErrMisconfigured) {
			writeError(w, http.StatusBadGateway, "strava rejected the client id or secret")
			return
		}
		writeError(w, http.StatusBadGateway, "authorization code exchange failed")
		return
	}

	h.log(r).InfoContext(r.Context(), "strava account linked")

	if err := h.poller.Refresh(r.Context()); err != nil {
		h.log(r).WarnContext(r.Context(), "sync after linking failed", "error", err)
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("Strava account linked. You can close this window.\n"))
}

// log returns the handler logger tagged with the request id.
func (h *Handler) log(r *http.Request) *slog.Logger {
	return h.logger.With("request_id", RequestID(r.Context()))
}

// syncErrorStatus maps a sync failure onto an HTTP status and client message.
func syncErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, driven.ErrNotAuthenticated), errors.Is(err, driven.ErrAuthExpired):
		return http.StatusConflict, "strava account not linked, visit /auth/login"
	case errors.Is(err, driven.ErrRateLimited):
		return http.StatusTooManyRequests, "strava rate limit reached"
	case errors.Is(err, driven.ErrUnavailable), errors.Is(err, driven.ErrUnauthorized):
		return http.StatusBadGateway, "strava unavailable"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "sync interrupted"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("unit_system must be one of [%s]", fe.Param()))
		case "len":
			msgs = append(msgs, fmt.Sprintf("kpis must have %s entries", fe.Param()))
		case validation.KPITag:
			msgs = append(msgs, fmt.Sprintf("unknown kpi %q", fe.Value()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %q validation", fe.Field(), fe.Tag()))
		}
	}
	return strings.Join(msgs, "; ")
}
