package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

const maxBodyBytes = 1 << 20

// Handler struct to encapsulate HTTP handling logic
type Handler struct {
	store     Store
	publisher EventPublisher
	page      *Page
	logger    *slog.Logger
}

func NewHandler(store Store, publisher EventPublisher, page *Page, logger *slog.Logger) *Handler {
	if publisher == nil {
		publisher = nopPublisher{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{store: store, publisher: publisher, page: page, logger: logger}
}

func RegisterRouters(mux *chi.Mux, handler *Handler, allowedOrigins []string) {
	mux.Use(middleware.RequestID)
	mux.Use(middleware.Logger)
	mux.Use(middleware.Recoverer)

	if len(allowedOrigins) > 0 {
		mux.Use(cors.Handler(cors.Options{
			AllowedOrigins: allowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))
	}

	mux.Get("/", handler.Index)
	mux.Handle("/static/*", handler.page.StaticHandler())

	mux.Get("/healthz", handler.Health)
	mux.Get("/readyz", handler.Ready)

	mux.Route("/api", func(api chi.Router) {
		api.Get("/expenses", handler.ListExpenses)
		api.Post("/expenses", handler.CreateExpense)
		api.Delete("/expenses/{id:[0-9]+}", handler.DeleteExpense)
	})
}

// Index renders the single page of the application.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.page.Render(w); err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to render index page", "error", err)
	}
}

func (h *Handler) ListExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := h.store.ListExpenses(r.Context())
	if err != nil {
		h.internalError(w, r, "list expenses", err)
		return
	}

	writeJSON(w, http.StatusOK, expenses)
}

func (h *Handler) CreateExpense(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	expense, err := decodeNewExpense(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Missing required fields: category and amount")
		return
	}

	id, err := h.store.CreateExpense(r.Context(), expense)
	if err != nil {
		h.internalError(w, r, "create expense", err)
		return
	}

	h.publish(r, ExpenseEvent{
		Type:      EventExpenseCreated,
		ExpenseID: id,
		Category:  expense.CategoryText(),
		Amount:    expense.AmountText(),
		Timestamp: time.Now().UTC(),
	})

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Expense added successfully",
		"id":      id,
	})
}

func (h *Handler) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	expenseID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		// Out of range for the key type, so it cannot exist.
		writeError(w, http.StatusNotFound, "Expense not found")
		return
	}

	err = h.store.DeleteExpense(r.Context(), expenseID)
	if errors.Is(err, ErrNotFound) {
		writeError(w, http.StatusNotFound, "Expense not found")
		return
	}
	if err != nil {
		h.internalError(w, r, "delete expense", err)
		return
	}

	h.publish(r, ExpenseEvent{
		Type:      EventExpenseDeleted,
		ExpenseID: expenseID,
		Timestamp: time.Now().UTC(),
	})

	writeJSON(w, http.StatusOK, map[string]string{"message": "Expense deleted successfully"})
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready reports whether the database accepts connections.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Ping(r.Context()); err != nil {
		h.logger.WarnContext(r.Context(), "Readiness check failed", "error", err)
		writeError(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// publish never fails the request; the write is already committed.
func (h *Handler) publish(r *http.Request, event ExpenseEvent) {
	if err := h.publisher.Publish(r.Context(), event); err != nil {
		h.logger.WarnContext(r.Context(), "Failed to publish expense event",
			"type", event.Type,
			"expense_id", event.ExpenseID,
			"error", err)
	}
}

func (h *Handler) internalError(w http.ResponseWriter, r *http.Request, op string, err error) {
	var connErr *ConnectionError
	h.logger.ErrorContext(r.Context(), "Request failed",
		"op", op,
		"connection_error", errors.As(err, &connErr),
		"request_id", middleware.GetReqID(r.Context()),
		"error", err)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

// writeJSON encodes before writing the header so an encoding failure is a
// 500 rather than a truncated body.
func writeJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
