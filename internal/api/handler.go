package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/punchamoorthee/bankstream/internal/domain"
	"github.com/punchamoorthee/bankstream/internal/models"
	"github.com/punchamoorthee/bankstream/internal/service"
	"github.com/punchamoorthee/bankstream/internal/store"
)

// Metrics
var (
	httpReqTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bank_http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "endpoint", "status"})

	httpLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "bank_http_request_duration_seconds",
		Help:    "Request latency",
		Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1},
	}, []string{"method", "endpoint"})
)

type commandFunc func(ctx context.Context, id uuid.UUID, amount domain.Money) (*domain.Account, error)

type debitFunc func(ctx context.Context, id uuid.UUID, amount domain.Money) (service.DebitResult, error)

type Handler struct {
	service *service.AccountService
}

func NewHandler(svc *service.AccountService) *Handler {
	return &Handler{service: svc}
}

// Routes mounts the command and query endpoints on the router.
func (h *Handler) Routes(r *mux.Router) {
	r.HandleFunc("/accounts", h.CreateAccount).Methods("POST")
	r.HandleFunc("/accounts/{id}", h.GetAccount).Methods("GET")
	r.HandleFunc("/accounts/{id}/overdraft-limit", h.SetOverdraftLimit).Methods("PUT")
	r.HandleFunc("/accounts/{id}/wire-transfer-limit", h.SetDailyWireTransferLimit).Methods("PUT")
	r.HandleFunc("/accounts/{id}/deposits", h.DepositCash).Methods("POST")
	r.HandleFunc("/accounts/{id}/checks", h.DepositCheck).Methods("POST")
	r.HandleFunc("/accounts/{id}/withdrawals", h.WithdrawCash).Methods("POST")
	r.HandleFunc("/accounts/{id}/transfers", h.TransferCash).Methods("POST")
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"}, "GET", "/health")
}

func (h *Handler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	const endpoint = "/accounts"
	timer := prometheus.NewTimer(httpLatency.WithLabelValues("POST", endpoint))
	defer timer.ObserveDuration()

	var req models.CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid JSON", "POST", endpoint)
		return
	}

	id := uuid.New()
	if req.ID != "" {
		parsed, err := uuid.Parse(req.ID)
		if err != nil {
			h.respondError(w, http.StatusUnprocessableEntity, "Invalid account id", "POST", endpoint)
			return
		}
		id = parsed
	}

	account, err := h.service.CreateAccount(r.Context(), id, req.CustomerName, req.Currency)
	if err != nil {
		if errors.Is(err, service.ErrAccountExists) {
			h.respondError(w, http.StatusConflict, "Account already exists", "POST", endpoint)
			return
		}
		h.respondServiceError(w, err, "POST", endpoint)
		return
	}
	h.respondJSON(w, http.StatusCreated, models.NewAccountResponse(account), "POST", endpoint)
}

func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
	const endpoint = "/accounts/{id}"

	id, ok := h.accountID(w, r, "GET", endpoint)
	if !ok {
		return
	}
	account, err := h.service.GetAccount(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, err, "GET", endpoint)
		return
	}
	h.respondJSON(w, http.StatusOK, models.NewAccountResponse(account), "GET", endpoint)
}

func (h *Handler) SetOverdraftLimit(w http.ResponseWriter, r *http.Request) {
	h.handleCommand(w, r, "PUT", "/accounts/{id}/overdraft-limit", http.StatusOK, h.service.SetOverdraftLimit)
}

func (h *Handler) SetDailyWireTransferLimit(w http.ResponseWriter, r *http.Request) {
	h.handleCommand(w, r, "PUT", "/accounts/{id}/wire-transfer-limit", http.StatusOK, h.service.SetDailyWireTransferLimit)
}

func (h *Handler) DepositCash(w http.ResponseWriter, r *http.Request) {
	h.handleCommand(w, r, "POST", "/accounts/{id}/deposits", http.StatusCreated, h.service.DepositCash)
}

func (h *Handler) DepositCheck(w http.ResponseWriter, r *http.Request) {
	h.handleCommand(w, r, "POST", "/accounts/{id}/checks", http.StatusCreated, h.service.DepositCheck)
}

func (h *Handler) WithdrawCash(w http.ResponseWriter, r *http.Request) {
	h.handleDebit(w, r, "/accounts/{id}/withdrawals", h.service.WithdrawCash)
}

func (h *Handler) TransferCash(w http.ResponseWriter, r *http.Request) {
	h.handleDebit(w, r, "/accounts/{id}/transfers", h.service.TransferCash)
}

func (h *Handler) handleCommand(w http.ResponseWriter, r *http.Request, method, endpoint string, successCode int, run commandFunc) {
	timer := prometheus.NewTimer(httpLatency.WithLabelValues(method, endpoint))
	defer timer.ObserveDuration()

	id, ok := h.accountID(w, r, method, endpoint)
	if !ok {
		return
	}
	amount, ok := h.amount(w, r, method, endpoint)
	if !ok {
		return
	}

	account, err := run(r.Context(), id, amount)
	if err != nil {
		h.respondServiceError(w, err, method, endpoint)
		return
	}
	h.respondJSON(w, successCode, models.NewAccountResponse(account), method, endpoint)
}

func (h *Handler) handleDebit(w http.ResponseWriter, r *http.Request, endpoint string, run debitFunc) {
	timer := prometheus.NewTimer(httpLatency.WithLabelValues("POST", endpoint))
	defer timer.ObserveDuration()

	id, ok := h.accountID(w, r, "POST", endpoint)
	if !ok {
		return
	}
	amount, ok := h.amount(w, r, "POST", endpoint)
	if !ok {
		return
	}

	result, err := run(r.Context(), id, amount)
	if err != nil {
		h.respondServiceError(w, err, "POST", endpoint)
		return
	}

	resp := models.DebitResponse{
		Status:  "accepted",
		Account: models.NewAccountResponse(result.Account),
	}
	code := http.StatusCreated
	if result.Rejected() {
		// A policy rejection is a recorded fact, not a transport failure.
		resp.Status = "rejected"
		resp.Reason = result.Approval.Reason()
		code = http.StatusOK
	}
	h.respondJSON(w, code, resp, "POST", endpoint)
}

// accountID parses the {id} path variable.
func (h *Handler) accountID(w http.ResponseWriter, r *http.Request, method, endpoint string) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		h.respondError(w, http.StatusUnprocessableEntity, "Invalid account id", method, endpoint)
		return uuid.Nil, false
	}
	return id, true
}

// amount decodes and validates the request body into a Money value.
func (h *Handler) amount(w http.ResponseWriter, r *http.Request, method, endpoint string) (domain.Money, bool) {
	var req models.AmountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid JSON", method, endpoint)
		return domain.Money{}, false
	}
	amount, err := domain.NewMoney(req.Amount, req.Currency)
	if err != nil {
		h.respondError(w, http.StatusUnprocessableEntity, err.Error(), method, endpoint)
		return domain.Money{}, false
	}
	return amount, true
}

func (h *Handler) respondServiceError(w http.ResponseWriter, err error, method, endpoint string) {
	switch {
	case errors.Is(err, service.ErrAccountNotFound):
		h.respondError(w, http.StatusNotFound, "Account not found", method, endpoint)
	case errors.Is(err, store.ErrConflict):
		h.respondError(w, http.StatusConflict, "Concurrent update, please retry", method, endpoint)
	case domain.IsValidation(err):
		h.respondError(w, http.StatusUnprocessableEntity, err.Error(), method, endpoint)
	default:
		h.respondError(w, http.StatusInternalServerError, "Internal Server Error", method, endpoint)
	}
}

// Helpers
func (h *Handler) respondJSON(w http.ResponseWriter, code int, payload interface{}, method, endpoint string) {
	httpReqTotal.WithLabelValues(method, endpoint, strconv.Itoa(code)).Inc()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(payload)
}

func (h *Handler) respondError(w http.ResponseWriter, code int, msg, method, endpoint string) {
	h.respondJSON(w, code, map[string]string{"error": msg}, method, endpoint)
}
