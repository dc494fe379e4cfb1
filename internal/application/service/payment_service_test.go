package service_test

import (
	"context"
	"sync"
	"testing"

	"github.com/flightworks/aeroops-api/internal/application/service"
	"github.com/flightworks/aeroops-api/internal/domain/entity"
	"github.com/flightworks/aeroops-api/internal/domain/enum"
	"github.com/flightworks/aeroops-api/pkg/apperror"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newPendingInvoice creates a pending invoice totalling 250.19
func newPendingInvoice(t *testing.T, env *testEnv, memberID, staffID uuid.UUID) *entity.Invoice {
	t.Helper()

	result, err := env.invoices.CreateInvoice(context.Background(), staffID, &service.CreateInvoiceInput{
		UserID: memberID,
		Status: enum.InvoiceStatusPending,
		Items:  flightLineItems(),
	})
	require.NoError(t, err)
	return result.Invoice
}

func TestRecordPayment(t *testing.T) {
	ctx := context.Background()

	t.Run("partial payment keeps the invoice pending", func(t *testing.T) {
		env := newTestEnv(t)
		member := env.seedUser(t)
		staff := env.seedUser(t)
		inv := newPendingInvoice(t, env, member.ID, staff.ID)

		result, err := env.payments.RecordPayment(ctx, staff.ID, inv.ID, &service.RecordPaymentInput{
			Amount: 10000,
			Method: "cash",
		})
		require.NoError(t, err)

		assert.Equal(t, int64(10000), result.NewTotalPaid)
		assert.Equal(t, int64(15019), result.NewBalanceDue)
		assert.Equal(t, enum.InvoiceStatusPending, result.NewStatus)

		reloaded := env.reloadInvoice(t, inv.ID)
		assert.Equal(t, int64(10000), reloaded.TotalPaid)
		assert.Equal(t, int64(15019), reloaded.BalanceDue)
		assert.Nil(t, reloaded.PaidDate)
	})

	t.Run("final payment flips the invoice to paid", func(t *testing.T) {
		env := newTestEnv(t)
		member := env.seedUser(t)
		staff := env.seedUser(t)
		inv := newPendingInvoice(t, env, member.ID, staff.ID)

		_, err := env.payments.RecordPayment(ctx, staff.ID, inv.ID, &service.RecordPaymentInput{
			Amount: 10000,
			Method: "cash",
		})
		require.NoError(t, err)

		result, err := env.payments.RecordPayment(ctx, staff.ID, inv.ID, &service.RecordPaymentInput{
			Amount: 15019,
			Method: "bank_transfer",
		})
		require.NoError(t, err)

		assert.Equal(t, int64(0), result.NewBalanceDue)
		assert.Equal(t, enum.InvoiceStatusPaid, result.NewStatus)

		reloaded := env.reloadInvoice(t, inv.ID)
		assert.Equal(t, enum.InvoiceStatusPaid, reloaded.Status)
		assert.NotNil(t, reloaded.PaidDate)

		// Every payment carries its own financial debit entry
		var debits int64
		require.NoError(t, env.db.Model(&entity.LedgerEntry{}).
			Where("user_id = ? AND type = ? AND description LIKE ?",
				member.ID, enum.LedgerEntryDebit, "Payment received%").
			Count(&debits).Error)
		assert.Equal(t, int64(2), debits)
	})

	t.Run("overpayment is rejected, never clamped", func(t *testing.T) {
		env := newTestEnv(t)
		member := env.seedUser(t)
		staff := env.seedUser(t)
		inv := newPendingInvoice(t, env, member.ID, staff.ID)

		_, err := env.payments.RecordPayment(ctx, staff.ID, inv.ID, &service.RecordPaymentInput{
			Amount: 30000,
			Method: "cash",
		})
		require.Error(t, err)
		assert.True(t, apperror.IsStateConflict(err))
		assert.Contains(t, apperror.GetAppError(err).Message, "250.19")

		reloaded := env.reloadInvoice(t, inv.ID)
		assert.Equal(t, int64(0), reloaded.TotalPaid, "rejected payment leaves no trace")

		var payments int64
		require.NoError(t, env.db.Model(&entity.Payment{}).Where("invoice_id = ?", inv.ID).Count(&payments).Error)
		assert.Equal(t, int64(0), payments)
	})

	t.Run("terminal invoices reject payments", func(t *testing.T) {
		env := newTestEnv(t)
		member := env.seedUser(t)
		staff := env.seedUser(t)
		inv := newPendingInvoice(t, env, member.ID, staff.ID)

		_, err := env.invoices.UpdateStatus(ctx, staff.ID, inv.ID, enum.InvoiceStatusCancelled)
		require.NoError(t, err)

		_, err = env.payments.RecordPayment(ctx, staff.ID, inv.ID, &service.RecordPaymentInput{
			Amount: 1000,
			Method: "cash",
		})
		require.Error(t, err)
		assert.True(t, apperror.IsStateConflict(err))
	})

	t.Run("validates amount and method", func(t *testing.T) {
		env := newTestEnv(t)
		member := env.seedUser(t)
		staff := env.seedUser(t)
		inv := newPendingInvoice(t, env, member.ID, staff.ID)

		_, err := env.payments.RecordPayment(ctx, staff.ID, inv.ID, &service.RecordPaymentInput{
			Amount: 0,
			Method: "cash",
		})
		require.Error(t, err)

		_, err = env.payments.RecordPayment(ctx, staff.ID, inv.ID, &service.RecordPaymentInput{
			Amount: 1000,
		})
		require.Error(t, err)
	})

	t.Run("concurrent payments cannot overdraw the balance", func(t *testing.T) {
		env := newTestEnv(t)
		member := env.seedUser(t)
		staff := env.seedUser(t)
		inv := newPendingInvoice(t, env, member.ID, staff.ID)

		// Two payments of 150.00 against a 250.19 balance: exactly one can land
		var wg sync.WaitGroup
		errs := make([]error, 2)
		for i := 0; i < 2; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, errs[i] = env.payments.RecordPayment(ctx, staff.ID, inv.ID, &service.RecordPaymentInput{
					Amount: 15000,
					Method: "cash",
				})
			}(i)
		}
		wg.Wait()

		succeeded := 0
		for _, err := range errs {
			if err == nil {
				succeeded++
			} else {
				assert.True(t, apperror.IsStateConflict(err))
			}
		}
		assert.Equal(t, 1, succeeded)

		reloaded := env.reloadInvoice(t, inv.ID)
		assert.Equal(t, int64(15000), reloaded.TotalPaid)
		assert.LessOrEqual(t, reloaded.TotalPaid, reloaded.Total)
	})
}

func TestListPayments(t *testing.T) {
	ctx := context.Background()

	env := newTestEnv(t)
	member := env.seedUser(t)
	staff := env.seedUser(t)
	inv := newPendingInvoice(t, env, member.ID, staff.ID)

	_, err := env.payments.RecordPayment(ctx, staff.ID, inv.ID, &service.RecordPaymentInput{
		Amount:    5000,
		Method:    "cash",
		Reference: "receipt-17",
	})
	require.NoError(t, err)

	payments, err := env.payments.ListPayments(ctx, inv.ID)
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Equal(t, "receipt-17", payments[0].Reference)
	assert.NotEqual(t, uuid.Nil, payments[0].LedgerEntryID)

	_, err = env.payments.ListPayments(ctx, uuid.New())
	require.Error(t, err)
}
