package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"sportclub/internal/models"
	"sportclub/internal/service"
)

// ContributionHandler serves membership dues and received payments to
// administrators
type ContributionHandler struct {
	contributions *service.ContributionService
}

// NewContributionHandler creates a new contribution handler
func NewContributionHandler(contributions *service.ContributionService) *ContributionHandler {
	return &ContributionHandler{contributions: contributions}
}

type paymentRequest struct {
	ReceivedDate   *models.Date `json:"received_date"`
	VariableSymbol string       `json:"variable_symbol" validate:"required,max=20"`
	AmountMinor    int64        `json:"amount_minor" validate:"gt=0"`
	SenderName     string       `json:"sender_name" validate:"max=160"`
	Note           string       `json:"note" validate:"max=255"`
}

type billingStartRequest struct {
	Month *models.Date `json:"month"`
}

// contributionQuery reads ?q, ?sort and ?dir
func contributionQuery(r *http.Request) (string, string, bool) {
	q := r.URL.Query()
	return q.Get("q"), q.Get("sort"), q.Get("dir") == "desc"
}

// ListContributions returns the dues of every active membership
func (h *ContributionHandler) ListContributions(w http.ResponseWriter, r *http.Request) {
	search, sortBy, desc := contributionQuery(r)
	report, err := h.contributions.ListContributions(actorFrom(r), search, sortBy, desc)
	if err != nil {
		respondWithServiceError(w, "Error listing contributions", err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}

// ExportContributions downloads the dues report as an XLSX workbook
func (h *ContributionHandler) ExportContributions(w http.ResponseWriter, r *http.Request) {
	search, sortBy, desc := contributionQuery(r)

	var buf bytes.Buffer
	if err := h.contributions.ExportContributions(actorFrom(r), &buf, search, sortBy, desc); err != nil {
		respondWithServiceError(w, "Error exporting contributions", err)
		return
	}

	filename := fmt.Sprintf("contributions_%s.xlsx", time.Now().Format("20060102"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	w.Write(buf.Bytes())
}

// ListPayments returns received payments, newest first
func (h *ContributionHandler) ListPayments(w http.ResponseWriter, r *http.Request) {
	payments, err := h.contributions.ListPayments(actorFrom(r))
	if err != nil {
		respondWithServiceError(w, "Error listing payments", err)
		return
	}
	respondJSON(w, http.StatusOK, payments)
}

// RecordPayment stores a bank payment
func (h *ContributionHandler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	var req paymentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithServiceError(w, "", err)
		return
	}
	payment := &models.ReceivedPayment{
		VariableSymbol: req.VariableSymbol,
		AmountMinor:    req.AmountMinor,
		SenderName:     req.SenderName,
		Note:           req.Note,
	}
	if req.ReceivedDate != nil {
		payment.ReceivedDate = *req.ReceivedDate
	}
	if err := h.contributions.RecordPayment(actorFrom(r), payment); err != nil {
		respondWithServiceError(w, "Error recording payment", err)
		return
	}
	respondJSON(w, http.StatusCreated, payment)
}

// DeletePayment removes a payment
func (h *ContributionHandler) DeletePayment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondWithServiceError(w, "", err)
		return
	}
	if err := h.contributions.DeletePayment(actorFrom(r), id); err != nil {
		respondWithServiceError(w, "Error deleting payment", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetBillingStart overrides the month a membership's dues start; null resets it
func (h *ContributionHandler) SetBillingStart(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondWithServiceError(w, "", err)
		return
	}
	var req billingStartRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithServiceError(w, "", err)
		return
	}
	membership, err := h.contributions.SetBillingStart(actorFrom(r), id, req.Month)
	if err != nil {
		respondWithServiceError(w, "Error setting billing start", err)
		return
	}
	respondJSON(w, http.StatusOK, membership)
}
