package repository

import (
	"database/sql"
	"fmt"
	"time"

	"sportclub/internal/database"
	"sportclub/internal/models"
)

// PaymentRepository handles database operations for received payments
type PaymentRepository struct {
	db database.DBTX
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(db database.DBTX) *PaymentRepository {
	return &PaymentRepository{db: db}
}

const paymentColumns = "id, received_date, variable_symbol, amount_minor, sender_name, note, created_at"

func scanPayment(row rowScanner) (*models.ReceivedPayment, error) {
	p := &models.ReceivedPayment{}
	err := row.Scan(
		&p.ID,
		&p.ReceivedDate,
		&p.VariableSymbol,
		&p.AmountMinor,
		&p.SenderName,
		&p.Note,
		&p.CreatedAt,
	)
	return p, err
}

// CreatePayment inserts a payment and sets its ID
func (r *PaymentRepository) CreatePayment(p *models.ReceivedPayment) error {
	query := `
		INSERT INTO received_payments (received_date, variable_symbol, amount_minor, sender_name, note)
		VALUES (?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(query, p.ReceivedDate, p.VariableSymbol, p.AmountMinor, p.SenderName, p.Note)
	if err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}
	p.ID = id
	p.CreatedAt = time.Now()
	return nil
}

// GetPaymentByID retrieves a payment by ID
func (r *PaymentRepository) GetPaymentByID(id int64) (*models.ReceivedPayment, error) {
	p, err := scanPayment(r.db.QueryRow("SELECT "+paymentColumns+" FROM received_payments WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	return p, nil
}

// ListPayments returns every payment, newest first
func (r *PaymentRepository) ListPayments() ([]models.ReceivedPayment, error) {
	rows, err := r.db.Query("SELECT " + paymentColumns + " FROM received_payments ORDER BY received_date DESC, id DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to query payments: %w", err)
	}
	defer rows.Close()

	payments := []models.ReceivedPayment{}
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, *p)
	}
	return payments, rows.Err()
}

// DeletePayment removes a payment
func (r *PaymentRepository) DeletePayment(id int64) error {
	if _, err := r.db.Exec("DELETE FROM received_payments WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete payment: %w", err)
	}
	return nil
}
