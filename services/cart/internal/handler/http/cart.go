package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/volubiks-a11y/todyssc-volubiks.github.io/pkg/httputil"
	"github.com/volubiks-a11y/todyssc-volubiks.github.io/pkg/validator"
	"github.com/volubiks-a11y/todyssc-volubiks.github.io/services/cart/internal/service"
)

// maxBodyBytes bounds the size of an add-item request body.
const maxBodyBytes = 64 << 10

// DefaultHeartbeat is how often an idle event stream sends a keep-alive comment.
const DefaultHeartbeat = 25 * time.Second

// CartHandler handles HTTP requests for cart endpoints.
type CartHandler struct {
	service   *service.CartService
	logger    *slog.Logger
	heartbeat time.Duration
	stop      <-chan struct{}
}

// NewCartHandler creates a new cart HTTP handler. Open event streams end
// when stop is closed; a nil stop never fires.
func NewCartHandler(svc *service.CartService, logger *slog.Logger, heartbeat time.Duration, stop <-chan struct{}) *CartHandler {
	if heartbeat <= 0 {
		heartbeat = DefaultHeartbeat
	}
	return &CartHandler{
		service:   svc,
		logger:    logger,
		heartbeat: heartbeat,
		stop:      stop,
	}
}

// countResponse is the body of the count endpoint and of every stream event.
type countResponse struct {
	Count int `json:"count"`
}

// GetCart handles GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	cart, err := h.service.GetCart(r.Context(), cartIDFromContext(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: cart})
}

// AddItem handles POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var input service.AddItemInput
	if err := validator.DecodeAndValidate(r, &input); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	res, err := h.service.AddItem(r.Context(), cartIDFromContext(r.Context()), input)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: res})
}

// ClearCart handles DELETE /api/v1/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.service.ClearCart(r.Context(), cartIDFromContext(r.Context())); err != nil {
		h.writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Count handles GET /api/v1/cart/count
func (h *CartHandler) Count(w http.ResponseWriter, r *http.Request) {
	n, err := h.service.Count(r.Context(), cartIDFromContext(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: countResponse{Count: n}})
}

// Events handles GET /api/v1/cart/events. It streams the cart count as
// server-sent events: once on connect and again after every change.
func (h *CartHandler) Events(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	cartID := cartIDFromContext(ctx)

	// Subscribe before reading the count so no change between the two is lost.
	changes, cancel, err := h.service.Subscribe(ctx, cartID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	defer cancel()

	n, err := h.service.Count(ctx, cartID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	rc := http.NewResponseController(w)
	// The stream outlives the server's write timeout.
	_ = rc.SetWriteDeadline(time.Time{})

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	if err := writeCountEvent(w, rc, n); err != nil {
		return
	}

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-h.stop:
			return
		case change, ok := <-changes:
			if !ok {
				return
			}
			if err := writeCountEvent(w, rc, change.Count); err != nil {
				h.logger.DebugContext(ctx, "cart event stream closed",
					slog.String("cart_id", cartID),
					slog.String("error", err.Error()),
				)
				return
			}
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			if err := rc.Flush(); err != nil {
				return
			}
		}
	}
}

func writeCountEvent(w http.ResponseWriter, rc *http.ResponseController, count int) error {
	if _, err := fmt.Fprintf(w, "event: count\ndata: {\"count\":%d}\n\n", count); err != nil {
		return err
	}
	return rc.Flush()
}

func (h *CartHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var valErr *validator.ValidationError
	if errors.As(err, &valErr) {
		httputil.WriteValidationError(w, err)
		return
	}
	httputil.WriteError(w, r, err, h.logger)
}
