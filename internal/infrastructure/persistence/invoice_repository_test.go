package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/paydesk/backend/internal/domain/invoicing"
	"github.com/paydesk/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newMockInvoiceRepository(t *testing.T) (*GormInvoiceRepository, sqlmock.Sqlmock, *sql.DB) {
	gormDB, mock, mockDB := newMockDB(t)
	return NewGormInvoiceRepository(gormDB), mock, mockDB
}

var invoiceColumns = []string{
	"id", "created_at", "updated_at", "number", "invoice_date", "due_date",
	"customer_id", "buyer_name", "buyer_address", "buyer_phone", "buyer_email",
	"items", "payments", "total", "amount_paid", "balance", "status", "notes", "terms",
}

func addInvoiceRow(rows *sqlmock.Rows, id uuid.UUID, customerID *uuid.UUID, number string, total, paid float64, status invoicing.PaymentStatus) {
	now := time.Now()
	rows.AddRow(
		id, now, now, number, now.Add(-24*time.Hour), now.Add(24*time.Hour),
		customerID, "Joel", "", "", "",
		`[{"id":"`+uuid.NewString()+`","description":"Work","quantity":"1","rate":"`+decimal.NewFromFloat(total).String()+`","amount":"`+decimal.NewFromFloat(total).String()+`"}]`,
		`[]`,
		decimal.NewFromFloat(total), decimal.NewFromFloat(paid), decimal.NewFromFloat(total-paid),
		status, "", "",
	)
}

func TestGormInvoiceRepository_FindByNumber(t *testing.T) {
	t.Run("finds invoice by number", func(t *testing.T) {
		repo, mock, mockDB := newMockInvoiceRepository(t)
		defer mockDB.Close()

		invoiceID := uuid.New()
		customerID := uuid.New()

		rows := sqlmock.NewRows(invoiceColumns)
		addInvoiceRow(rows, invoiceID, &customerID, "INV-2024-001", 3000, 0, invoicing.PaymentStatusUnpaid)

		mock.ExpectQuery(`SELECT \* FROM "invoices" WHERE number = \$1 ORDER BY .* LIMIT .*`).
			WithArgs("INV-2024-001", 1).
			WillReturnRows(rows)

		invoice, err := repo.FindByNumber(context.Background(), "INV-2024-001")

		require.NoError(t, err)
		require.NotNil(t, invoice)
		assert.Equal(t, "INV-2024-001", invoice.Number)
		assert.True(t, invoice.Balance.Equal(decimal.NewFromInt(3000)))
		require.Len(t, invoice.Items, 1)
		assert.Equal(t, "Work", invoice.Items[0].Description)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns ErrNotFound for unknown number", func(t *testing.T) {
		repo, mock, mockDB := newMockInvoiceRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT \* FROM "invoices" WHERE number = \$1 ORDER BY .* LIMIT .*`).
			WithArgs("INV-MISSING", 1).
			WillReturnError(gorm.ErrRecordNotFound)

		invoice, err := repo.FindByNumber(context.Background(), "INV-MISSING")

		assert.Nil(t, invoice)
		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormInvoiceRepository_FindUnpaidByCustomer(t *testing.T) {
	t.Run("excludes paid invoices and orders oldest first", func(t *testing.T) {
		repo, mock, mockDB := newMockInvoiceRepository(t)
		defer mockDB.Close()

		customerID := uuid.New()

		rows := sqlmock.NewRows(invoiceColumns)
		addInvoiceRow(rows, uuid.New(), &customerID, "INV-001", 3000, 0, invoicing.PaymentStatusUnpaid)
		addInvoiceRow(rows, uuid.New(), &customerID, "INV-002", 1500, 500, invoicing.PaymentStatusPartial)

		mock.ExpectQuery(`SELECT \* FROM "invoices" WHERE customer_id = \$1 AND status <> \$2 ORDER BY invoice_date ASC, created_at ASC`).
			WithArgs(customerID, invoicing.PaymentStatusPaid).
			WillReturnRows(rows)

		invoices, err := repo.FindUnpaidByCustomer(context.Background(), customerID)

		require.NoError(t, err)
		require.Len(t, invoices, 2)
		assert.Equal(t, "INV-001", invoices[0].Number)
		assert.Equal(t, "INV-002", invoices[1].Number)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns empty slice when nothing unpaid", func(t *testing.T) {
		repo, mock, mockDB := newMockInvoiceRepository(t)
		defer mockDB.Close()

		customerID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "invoices" WHERE customer_id = \$1 AND status <> \$2 ORDER BY invoice_date ASC, created_at ASC`).
			WithArgs(customerID, invoicing.PaymentStatusPaid).
			WillReturnRows(sqlmock.NewRows(invoiceColumns))

		invoices, err := repo.FindUnpaidByCustomer(context.Background(), customerID)

		require.NoError(t, err)
		assert.Empty(t, invoices)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormInvoiceRepository_ExistsByNumber(t *testing.T) {
	t.Run("returns true when number exists", func(t *testing.T) {
		repo, mock, mockDB := newMockInvoiceRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT count\(\*\) FROM "invoices" WHERE number = \$1`).
			WithArgs("INV-001").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		exists, err := repo.ExistsByNumber(context.Background(), "INV-001")

		require.NoError(t, err)
		assert.True(t, exists)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns false when number absent", func(t *testing.T) {
		repo, mock, mockDB := newMockInvoiceRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT count\(\*\) FROM "invoices" WHERE number = \$1`).
			WithArgs("INV-404").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

		exists, err := repo.ExistsByNumber(context.Background(), "INV-404")

		require.NoError(t, err)
		assert.False(t, exists)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
