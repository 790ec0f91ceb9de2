package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/pricetracker/web/internal/loader"
	"github.com/pricetracker/web/internal/metrics"
	"github.com/pricetracker/web/internal/middleware"
	"github.com/pricetracker/web/internal/session"
)

// Page names used in logs and metrics
const (
	PageDashboard     = "dashboard"
	PageConfigs       = "dashboard/configs"
	PageProducts      = "dashboard/products"
	PageProductsAdd   = "dashboard/products/add"
	PagePasswordReset = "password-reset"
)

// UpstreamStatus reports whether the PriceTracker API was last seen up
type UpstreamStatus interface {
	Up() bool
}

// Handler serves page data produced by the loaders
type Handler struct {
	loader     *loader.Loader
	cookieName string
	log        *logrus.Logger
	upstream   UpstreamStatus
}

// NewHandler creates a new page handler
func NewHandler(l *loader.Loader, cookieName string, log *logrus.Logger) *Handler {
	return &Handler{loader: l, cookieName: cookieName, log: log}
}

type pageResponse struct {
	Layout *loader.LayoutData `json:"layout,omitempty"`
	Page   any                `json:"page"`
}

type errorResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

type dashboardLoad func(ctx context.Context, sess session.Session, parent loader.ParentFunc) (any, error)

// SetUpstream makes Healthz report the API reachability seen by status
func (h *Handler) SetUpstream(status UpstreamStatus) {
	h.upstream = status
}

// Routes registers every page on r
func (h *Handler) Routes(r *mux.Router) {
	r.HandleFunc("/healthz", h.Healthz).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	r.HandleFunc("/dashboard", h.Dashboard).Methods(http.MethodGet)
	r.HandleFunc("/dashboard/configs", h.Configs).Methods(http.MethodGet)
	r.HandleFunc("/dashboard/products", h.Products).Methods(http.MethodGet)
	r.HandleFunc("/dashboard/products/add", h.ProductsAdd).Methods(http.MethodGet)
	r.HandleFunc("/password-reset/{token}", h.PasswordReset).Methods(http.MethodGet)
}

// Dashboard serves the dashboard home page
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	h.dashboardPage(w, r, PageDashboard, func(ctx context.Context, _ session.Session, parent loader.ParentFunc) (any, error) {
		return h.loader.Dashboard(ctx, parent)
	})
}

// Configs serves the scraper configuration page
func (h *Handler) Configs(w http.ResponseWriter, r *http.Request) {
	h.dashboardPage(w, r, PageConfigs, func(ctx context.Context, sess session.Session, _ loader.ParentFunc) (any, error) {
		return h.loader.Configs(ctx, sess)
	})
}

// Products serves the tracked products list
func (h *Handler) Products(w http.ResponseWriter, r *http.Request) {
	h.dashboardPage(w, r, PageProducts, func(ctx context.Context, sess session.Session, parent loader.ParentFunc) (any, error) {
		return h.loader.Products(ctx, sess, parent)
	})
}

// ProductsAdd serves the add-product form
func (h *Handler) ProductsAdd(w http.ResponseWriter, r *http.Request) {
	h.dashboardPage(w, r, PageProductsAdd, func(ctx context.Context, _ session.Session, parent loader.ParentFunc) (any, error) {
		return h.loader.ProductsAdd(ctx, parent)
	})
}

// PasswordReset validates the token of a reset link. It sits outside the
// dashboard and has no layout.
func (h *Handler) PasswordReset(w http.ResponseWriter, r *http.Request) {
	sess := session.FromRequest(r, h.cookieName)
	data, err := h.loader.PasswordReset(r.Context(), sess, mux.Vars(r)["token"])
	if err != nil {
		h.fail(w, r, PagePasswordReset, err)
		return
	}
	h.respond(w, PagePasswordReset, pageResponse{Page: data})
}

// Healthz reports liveness. The upstream state is informational and never
// fails the check.
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	body := map[string]string{"status": "ok"}
	if h.upstream != nil {
		body["upstream"] = "down"
		if h.upstream.Up() {
			body["upstream"] = "up"
		}
	}
	writeJSON(w, http.StatusOK, body)
}

// dashboardPage runs the layout before the page loader and shares its
// result through the parent accessor.
func (h *Handler) dashboardPage(w http.ResponseWriter, r *http.Request, page string, load dashboardLoad) {
	sess := session.FromRequest(r, h.cookieName)
	parent := h.loader.Parent(sess)

	layout, err := parent(r.Context())
	if err != nil {
		h.fail(w, r, page, err)
		return
	}

	data, err := load(r.Context(), sess, parent)
	if err != nil {
		h.fail(w, r, page, err)
		return
	}
	h.respond(w, page, pageResponse{Layout: layout, Page: data})
}

func (h *Handler) respond(w http.ResponseWriter, page string, body pageResponse) {
	metrics.LoaderResults.WithLabelValues(page, metrics.OutcomeOK).Inc()
	writeJSON(w, http.StatusOK, body)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, page string, err error) {
	entry := h.log.WithFields(logrus.Fields{
		"req_id": middleware.GetRequestID(r.Context()),
		"page":   page,
	})

	var rd *loader.Redirect
	if errors.As(err, &rd) {
		metrics.LoaderResults.WithLabelValues(page, metrics.OutcomeRedirect).Inc()
		http.Redirect(w, r, rd.Location, rd.Status)
		return
	}

	metrics.LoaderResults.WithLabelValues(page, metrics.OutcomeError).Inc()

	var pe *loader.PageError
	if errors.As(err, &pe) {
		switch {
		case pe.Status >= http.StatusInternalServerError:
			entry.WithError(err).Error("Page load failed")
		case loader.IsUnauthorized(err):
			entry.WithError(err).Warn("Unauthorized page load")
		default:
			entry.WithError(err).Info("Page load refused")
		}
		writeJSON(w, pe.Status, errorResponse{Status: pe.Status, Message: pe.Message})
		return
	}

	entry.WithError(err).Error("Page load failed")
	writeJSON(w, http.StatusInternalServerError, errorResponse{
		Status:  http.StatusInternalServerError,
		Message: http.StatusText(http.StatusInternalServerError),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
