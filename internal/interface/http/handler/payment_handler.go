package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gigmile/payments-microservice/internal/application/service"
	"github.com/gigmile/payments-microservice/internal/domain"
	"github.com/gigmile/payments-microservice/internal/interface/http/dto"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// maxBodyBytes bounds the size of a payment request body.
const maxBodyBytes = 1 << 20

type PaymentHandler struct {
	paymentService *service.PaymentService
	logger         *zap.Logger
}

func NewPaymentHandler(paymentService *service.PaymentService, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		logger:         logger,
	}
}

// ListPayments returns the payments originated by the path user
func (h *PaymentHandler) ListPayments(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	payments, err := h.paymentService.ListPayments(r.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		h.respondServiceError(w, err)
		return
	}

	response := make([]dto.PaymentResponse, len(payments))
	for i, payment := range payments {
		response[i] = dto.PaymentResponseFromDomain(payment)
	}

	h.respondJSON(w, http.StatusOK, response)
}

// CreatePayment validates and stores a new payment
func (h *PaymentHandler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodePayment(w, r)
	if !ok {
		return
	}

	err := h.paymentService.CreatePayment(r.Context(), req.ToDomain())
	if err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			h.respondJSON(w, http.StatusBadRequest, dto.ErrorResponse{
				Error:   "validation failed",
				Message: verr.Message,
				Field:   verr.Field,
			})
			return
		}
		h.respondServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusCreated, dto.MessageResponse{
		Success: true,
		Message: "Payment created successfully.",
	})
}

// UpdatePayment replaces a payment owned by the path user
func (h *PaymentHandler) UpdatePayment(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	req, ok := h.decodePayment(w, r)
	if !ok {
		return
	}

	err := h.paymentService.UpdatePayment(r.Context(), userID, req.ToDomain())
	switch {
	case err == nil:
		h.respondJSON(w, http.StatusOK, dto.MessageResponse{
			Success: true,
			Message: "Payment updated successfully.",
		})
	case errors.Is(err, domain.ErrPaymentNotFound):
		h.respondError(w, http.StatusNotFound, "payment not found", nil)
	case errors.Is(err, domain.ErrForbidden):
		h.respondJSON(w, http.StatusForbidden, dto.ErrorResponse{
			Error:   "forbidden",
			Message: "You do not have permission to update this payment.",
		})
	default:
		h.respondServiceError(w, err)
	}
}

// DeletePayment removes one payment owned by the path user. The optional
// paymentId query parameter targets a specific payment.
func (h *PaymentHandler) DeletePayment(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	var paymentID int64
	if raw := r.URL.Query().Get("paymentId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			h.respondError(w, http.StatusBadRequest, "invalid paymentId", err)
			return
		}
		paymentID = id
	}

	err := h.paymentService.DeletePayment(r.Context(), userID, paymentID)
	switch {
	case err == nil:
		h.respondJSON(w, http.StatusOK, dto.MessageResponse{
			Success: true,
			Message: "Payment deleted successfully.",
		})
	case errors.Is(err, domain.ErrPaymentNotFound):
		h.respondError(w, http.StatusNotFound, "payment not found", nil)
	case errors.Is(err, domain.ErrForbidden):
		h.respondJSON(w, http.StatusForbidden, dto.ErrorResponse{
			Error:   "forbidden",
			Message: "You do not have permission to delete this payment.",
		})
	default:
		h.respondServiceError(w, err)
	}
}

// HealthCheck handles health check endpoint
func (h *PaymentHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

func (h *PaymentHandler) decodePayment(w http.ResponseWriter, r *http.Request) (*dto.PaymentRequest, bool) {
	var req dto.PaymentRequest

	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body", err)
		return nil, false
	}

	return &req, true
}

// respondServiceError maps upstream failures to 502/503 and anything else to
// a generic 500. The failure was already logged where it happened.
func (h *PaymentHandler) respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrServiceUnavailable):
		h.respondError(w, http.StatusServiceUnavailable, "users service unavailable", nil)
	case errors.Is(err, domain.ErrUpstreamFailure):
		h.respondError(w, http.StatusBadGateway, "users service request failed", nil)
	default:
		h.respondError(w, http.StatusInternalServerError, "internal server error", nil)
	}
}

func (h *PaymentHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Warn("failed to encode response", zap.Error(err))
	}
}

func (h *PaymentHandler) respondError(w http.ResponseWriter, status int, message string, err error) {
	response := dto.ErrorResponse{
		Error: message,
	}

	if err != nil {
		response.Message = err.Error()
	}

	h.respondJSON(w, status, response)
}
