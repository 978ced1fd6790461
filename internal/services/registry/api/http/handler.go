package httpapi

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	registryv1 "github.com/Douglas360/smart-contracts/api/registry/v1"
	apperrors "github.com/Douglas360/smart-contracts/internal/platform/errors"
	"github.com/Douglas360/smart-contracts/internal/platform/errors/i18n"
	"github.com/Douglas360/smart-contracts/internal/platform/grpc/pagination"
	"github.com/Douglas360/smart-contracts/internal/services/registry/api/grpc/tokens"
	"github.com/Douglas360/smart-contracts/internal/services/registry/domain/registry"
	"github.com/Douglas360/smart-contracts/internal/services/registry/domain/token"
	"github.com/Douglas360/smart-contracts/internal/services/registry/feed"
	"github.com/Douglas360/smart-contracts/internal/services/registry/storage"
)

const (
	defaultEventsLimit = 50
	maxEventsLimit     = 200
)

// AnyOrigin in Config.AllowedOrigins admits websocket upgrades from every origin.
const AnyOrigin = "*"

// Config wires the HTTP surface to registry state.
type Config struct {
	Registry *registry.Registry
	Journal  storage.EventLog
	// Hub enables /v1/events/stream when set.
	Hub *feed.Hub
	// Metrics serves /metrics when set.
	Metrics http.Handler
	// AllowedOrigins lists origins allowed to open the event stream. Empty
	// allows same-origin requests only; AnyOrigin allows every origin.
	AllowedOrigins []string
}

type handler struct {
	cfg Config
}

// NewHandler returns the HTTP router.
func NewHandler(cfg Config) http.Handler {
	h := &handler{cfg: cfg}
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.health)
	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics)
	}
	r.Route("/v1", func(r chi.Router) {
		r.Get("/info", h.info)
		r.Get("/tokens/{id}", h.getToken)
		r.Get("/events", h.listEvents)
		if cfg.Hub != nil {
			r.Get("/events/stream", h.streamEvents)
		}
	})
	return r
}

func (h *handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) info(w http.ResponseWriter, _ *http.Request) {
	info := h.cfg.Registry.Info()
	writeJSON(w, http.StatusOK, registryv1.GetInfoResponse{
		Authority:  info.Authority.String(),
		NextID:     uint64(info.NextID),
		TokenCount: info.TokenCount,
		LastSeq:    info.LastSeq,
	})
}

func (h *handler) getToken(w http.ResponseWriter, r *http.Request) {
	id, err := token.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	tok, err := h.cfg.Registry.Token(id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, registryv1.GetTokenResponse{Token: tokens.TokenToWire(tok)})
}

func (h *handler) listEvents(w http.ResponseWriter, r *http.Request) {
	after, err := parseUintParam(r, "after")
	if err != nil {
		writeError(w, r, err)
		return
	}
	limit, err := parseUintParam(r, "limit")
	if err != nil {
		writeError(w, r, err)
		return
	}
	pageSize := pagination.ClampPageSize(int32(min(limit, maxEventsLimit)), pagination.PageSizeConfig{
		Default: defaultEventsLimit,
		Max:     maxEventsLimit,
	})
	events, err := h.cfg.Journal.ListEvents(r.Context(), after, pageSize)
	if err != nil {
		writeError(w, r, err)
		return
	}
	resp := registryv1.ListEventsResponse{Events: tokens.EventsToWire(events)}
	if len(events) > 0 {
		resp.NextAfterSeq = pagination.NextAfter(events[len(events)-1].Seq, len(events), pageSize)
	}
	writeJSON(w, http.StatusOK, resp)
}

func parseUintParam(r *http.Request, name string) (uint64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, token.InvalidArgument(name, "must be an unsigned integer")
	}
	return value, nil
}

type errorBody struct {
	Code     string            `json:"code"`
	Message  string            `json:"message"`
	Locale   string            `json:"locale"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	acceptLanguage := r.Header.Get("Accept-Language")
	domainErr, ok := apperrors.As(err)
	if !ok {
		log.Printf("%s %s: %v", r.Method, r.URL.Path, err)
		writeJSON(w, http.StatusInternalServerError, errorBody{
			Code:    string(apperrors.CodeUnknown),
			Message: http.StatusText(http.StatusInternalServerError),
			Locale:  i18n.ResolveLocale(acceptLanguage),
		})
		return
	}
	locale, message := domainErr.Localize(acceptLanguage)
	writeJSON(w, httpStatus(domainErr.Code), errorBody{
		Code:     string(domainErr.Code),
		Message:  message,
		Locale:   locale,
		Metadata: domainErr.Metadata,
	})
}

func httpStatus(code apperrors.Code) int {
	switch code {
	case apperrors.CodeNotFound:
		return http.StatusNotFound
	case apperrors.CodeInvalidArgument:
		return http.StatusBadRequest
	case apperrors.CodeUnauthorized:
		return http.StatusForbidden
	case apperrors.CodeUnauthenticated, apperrors.CodeCallerGrantInvalid, apperrors.CodeCallerGrantExpired:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("write response: %v", err)
	}
}
