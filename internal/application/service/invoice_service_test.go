package service_test

import (
	"context"
	"strings"
	"testing"

	"github.com/flightworks/aeroops-api/internal/application/service"
	"github.com/flightworks/aeroops-api/internal/domain/entity"
	"github.com/flightworks/aeroops-api/internal/domain/enum"
	"github.com/flightworks/aeroops-api/pkg/apperror"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateInvoice(t *testing.T) {
	ctx := context.Background()

	t.Run("draft invoice computes totals from items", func(t *testing.T) {
		env := newTestEnv(t)
		member := env.seedUser(t)
		staff := env.seedUser(t)

		result, err := env.invoices.CreateInvoice(ctx, staff.ID, &service.CreateInvoiceInput{
			UserID: member.ID,
			Status: enum.InvoiceStatusDraft,
			Items:  flightLineItems(),
		})
		require.NoError(t, err)

		inv := result.Invoice
		assert.Equal(t, enum.InvoiceStatusDraft, inv.Status)
		assert.True(t, strings.HasPrefix(inv.InvoiceNumber, "INV-"))
		// 1.3 * 167.35 = 217.56, tax 32.63
		assert.Equal(t, int64(21756), inv.SubTotal)
		assert.Equal(t, int64(3263), inv.TaxTotal)
		assert.Equal(t, int64(25019), inv.Total)
		assert.Equal(t, int64(25019), inv.BalanceDue)
		assert.Equal(t, int64(0), inv.TotalPaid)
		assert.Nil(t, inv.IssueDate, "draft invoices are not issued")
		assert.NotNil(t, inv.DueDate, "due date defaulted from billing config")
		require.Len(t, inv.Items, 1)
		assert.Equal(t, int64(25019), inv.Items[0].LineTotal)

		entries := env.ledgerEntriesFor(t, member.ID)
		require.Len(t, entries, 1)
		assert.Equal(t, enum.LedgerEntryAdjustment, entries[0].Type)
		assert.Equal(t, int64(25019), entries[0].Amount)
	})

	t.Run("pending invoice is issued and debited", func(t *testing.T) {
		env := newTestEnv(t)
		member := env.seedUser(t)
		staff := env.seedUser(t)

		result, err := env.invoices.CreateInvoice(ctx, staff.ID, &service.CreateInvoiceInput{
			UserID: member.ID,
			Status: enum.InvoiceStatusPending,
			Items:  flightLineItems(),
		})
		require.NoError(t, err)
		require.NotNil(t, result.LedgerEntryID)

		inv := env.reloadInvoice(t, result.Invoice.ID)
		assert.Equal(t, enum.InvoiceStatusPending, inv.Status)
		assert.NotNil(t, inv.IssueDate)

		entries := env.ledgerEntriesFor(t, member.ID)
		require.Len(t, entries, 2, "creation adjustment plus approval debit")
		assert.Equal(t, enum.LedgerEntryDebit, entries[1].Type)
		assert.Equal(t, int64(25019), entries[1].Amount)
	})

	t.Run("item tax rate overrides invoice rate", func(t *testing.T) {
		env := newTestEnv(t)
		member := env.seedUser(t)
		staff := env.seedUser(t)

		result, err := env.invoices.CreateInvoice(ctx, staff.ID, &service.CreateInvoiceInput{
			UserID:  member.ID,
			Status:  enum.InvoiceStatusDraft,
			TaxRate: decp(0.10),
			Items: []service.InvoiceItemInput{
				{Description: "Landing fee", Quantity: dec(1), UnitPrice: 2000, TaxRate: decp(0)},
				{Description: "Aircraft hire", Quantity: dec(1), UnitPrice: 10000},
			},
		})
		require.NoError(t, err)

		// 2000 at 0% plus 10000 at 10%
		assert.Equal(t, int64(12000), result.Invoice.SubTotal)
		assert.Equal(t, int64(1000), result.Invoice.TaxTotal)
		assert.Equal(t, int64(13000), result.Invoice.Total)
	})

	t.Run("rejects a second invoice for the same booking", func(t *testing.T) {
		env := newTestEnv(t)
		member := env.seedUser(t)
		staff := env.seedUser(t)
		booking := env.seedBooking(t, member.ID)

		_, err := env.invoices.CreateInvoice(ctx, staff.ID, &service.CreateInvoiceInput{
			UserID:    member.ID,
			BookingID: &booking.ID,
			Status:    enum.InvoiceStatusDraft,
			Items:     flightLineItems(),
		})
		require.NoError(t, err)

		_, err = env.invoices.CreateInvoice(ctx, staff.ID, &service.CreateInvoiceInput{
			UserID:    member.ID,
			BookingID: &booking.ID,
			Status:    enum.InvoiceStatusDraft,
			Items:     flightLineItems(),
		})
		require.Error(t, err)
		assert.True(t, apperror.IsStateConflict(err))
	})

	t.Run("rejects an unknown booking", func(t *testing.T) {
		env := newTestEnv(t)
		member := env.seedUser(t)
		staff := env.seedUser(t)
		bookingID := uuid.New()

		_, err := env.invoices.CreateInvoice(ctx, staff.ID, &service.CreateInvoiceInput{
			UserID:    member.ID,
			BookingID: &bookingID,
			Status:    enum.InvoiceStatusDraft,
			Items:     flightLineItems(),
		})
		require.Error(t, err)
		assert.Equal(t, 404, apperror.GetAppError(err).Code)
	})

	t.Run("rejects zero-total pending invoice", func(t *testing.T) {
		env := newTestEnv(t)
		member := env.seedUser(t)
		staff := env.seedUser(t)

		_, err := env.invoices.CreateInvoice(ctx, staff.ID, &service.CreateInvoiceInput{
			UserID: member.ID,
			Status: enum.InvoiceStatusPending,
			Items: []service.InvoiceItemInput{
				{Description: "Comped flight", Quantity: dec(1), UnitPrice: 0, TaxRate: decp(0)},
			},
		})
		require.Error(t, err)
		appErr := apperror.GetAppError(err)
		assert.Equal(t, 422, appErr.Code)
	})

	t.Run("rejects empty items and non-positive quantity", func(t *testing.T) {
		env := newTestEnv(t)
		member := env.seedUser(t)
		staff := env.seedUser(t)

		_, err := env.invoices.CreateInvoice(ctx, staff.ID, &service.CreateInvoiceInput{
			UserID: member.ID,
			Status: enum.InvoiceStatusDraft,
		})
		require.Error(t, err)

		_, err = env.invoices.CreateInvoice(ctx, staff.ID, &service.CreateInvoiceInput{
			UserID: member.ID,
			Status: enum.InvoiceStatusDraft,
			Items: []service.InvoiceItemInput{
				{Description: "Bad line", Quantity: dec(0), UnitPrice: 1000},
			},
		})
		require.Error(t, err)
	})

	t.Run("rejects unknown billed member", func(t *testing.T) {
		env := newTestEnv(t)
		staff := env.seedUser(t)

		_, err := env.invoices.CreateInvoice(ctx, staff.ID, &service.CreateInvoiceInput{
			UserID: uuid.New(),
			Status: enum.InvoiceStatusDraft,
			Items:  flightLineItems(),
		})
		require.Error(t, err)
		assert.Equal(t, 404, apperror.GetAppError(err).Code)
	})
}

func TestUpdateStatus(t *testing.T) {
	ctx := context.Background()

	newDraft := func(t *testing.T, env *testEnv, memberID, staffID uuid.UUID) *entity.Invoice {
		result, err := env.invoices.CreateInvoice(ctx, staffID, &service.CreateInvoiceInput{
			UserID: memberID,
			Status: enum.InvoiceStatusDraft,
			Items:  flightLineItems(),
		})
		require.NoError(t, err)
		return result.Invoice
	}

	t.Run("draft to pending debits the member once", func(t *testing.T) {
		env := newTestEnv(t)
		member := env.seedUser(t)
		staff := env.seedUser(t)
		inv := newDraft(t, env, member.ID, staff.ID)

		result, err := env.invoices.UpdateStatus(ctx, staff.ID, inv.ID, enum.InvoiceStatusPending)
		require.NoError(t, err)
		assert.Equal(t, enum.InvoiceStatusPending, result.Status)
		require.NotNil(t, result.LedgerEntryID)

		// Same-status request is an idempotent no-op
		again, err := env.invoices.UpdateStatus(ctx, staff.ID, inv.ID, enum.InvoiceStatusPending)
		require.NoError(t, err)
		assert.Equal(t, enum.InvoiceStatusPending, again.Status)
		assert.Nil(t, again.LedgerEntryID)

		var debits int64
		require.NoError(t, env.db.Model(&entity.LedgerEntry{}).
			Where("user_id = ? AND type = ?", member.ID, enum.LedgerEntryDebit).
			Count(&debits).Error)
		assert.Equal(t, int64(1), debits)
	})

	t.Run("draft payment does not suppress the approval debit", func(t *testing.T) {
		env := newTestEnv(t)
		member := env.seedUser(t)
		staff := env.seedUser(t)
		inv := newDraft(t, env, member.ID, staff.ID)

		// A deposit taken while the invoice is still draft writes its own
		// payment debit referencing the same invoice
		_, err := env.payments.RecordPayment(ctx, staff.ID, inv.ID, &service.RecordPaymentInput{
			Amount: 10000,
			Method: "cash",
		})
		require.NoError(t, err)

		result, err := env.invoices.UpdateStatus(ctx, staff.ID, inv.ID, enum.InvoiceStatusPending)
		require.NoError(t, err)
		require.NotNil(t, result.LedgerEntryID, "approval must still debit the full invoice total")

		approvals := 0
		for _, entry := range env.ledgerEntriesFor(t, member.ID) {
			if entry.Metadata[entity.LedgerMetaEvent] == entity.LedgerEventInvoiceApproved {
				approvals++
				assert.Equal(t, int64(25019), entry.Amount)
			}
		}
		assert.Equal(t, 1, approvals)
	})

	t.Run("paid cannot be set directly", func(t *testing.T) {
		env := newTestEnv(t)
		member := env.seedUser(t)
		staff := env.seedUser(t)
		inv := newDraft(t, env, member.ID, staff.ID)

		_, err := env.invoices.UpdateStatus(ctx, staff.ID, inv.ID, enum.InvoiceStatusPaid)
		require.Error(t, err)
		assert.True(t, apperror.IsStateConflict(err))
	})

	t.Run("cancel is allowed from draft and pending only", func(t *testing.T) {
		env := newTestEnv(t)
		member := env.seedUser(t)
		staff := env.seedUser(t)
		inv := newDraft(t, env, member.ID, staff.ID)

		result, err := env.invoices.UpdateStatus(ctx, staff.ID, inv.ID, enum.InvoiceStatusCancelled)
		require.NoError(t, err)
		assert.Equal(t, enum.InvoiceStatusCancelled, result.Status)

		// Cancelled is terminal
		_, err = env.invoices.UpdateStatus(ctx, staff.ID, inv.ID, enum.InvoiceStatusRefunded)
		require.Error(t, err)
		assert.True(t, apperror.IsStateConflict(err))
	})

	t.Run("refund requires paid", func(t *testing.T) {
		env := newTestEnv(t)
		member := env.seedUser(t)
		staff := env.seedUser(t)
		inv := newDraft(t, env, member.ID, staff.ID)

		_, err := env.invoices.UpdateStatus(ctx, staff.ID, inv.ID, enum.InvoiceStatusRefunded)
		require.Error(t, err)
		assert.True(t, apperror.IsStateConflict(err))

		_, err = env.invoices.UpdateStatus(ctx, staff.ID, inv.ID, enum.InvoiceStatusPending)
		require.NoError(t, err)
		_, err = env.payments.RecordPayment(ctx, staff.ID, inv.ID, &service.RecordPaymentInput{
			Amount: 25019,
			Method: "cash",
		})
		require.NoError(t, err)

		result, err := env.invoices.UpdateStatus(ctx, staff.ID, inv.ID, enum.InvoiceStatusRefunded)
		require.NoError(t, err)
		assert.Equal(t, enum.InvoiceStatusRefunded, result.Status)
	})
}

func TestReplaceAutoGeneratedItems(t *testing.T) {
	ctx := context.Background()

	t.Run("replaces auto items and preserves manual ones", func(t *testing.T) {
		env := newTestEnv(t)
		member := env.seedUser(t)
		staff := env.seedUser(t)

		result, err := env.invoices.CreateInvoice(ctx, staff.ID, &service.CreateInvoiceInput{
			UserID: member.ID,
			Status: enum.InvoiceStatusDraft,
			Items: []service.InvoiceItemInput{
				{Description: "Aircraft hire 1.0h", Origin: enum.ItemOriginAutoTimeCharge, Quantity: dec(1), UnitPrice: 16735},
				{Description: "Headset hire", Origin: enum.ItemOriginManual, Quantity: dec(1), UnitPrice: 1500},
			},
		})
		require.NoError(t, err)

		err = env.invoices.ReplaceAutoGeneratedItems(ctx, staff.ID, result.Invoice.ID, []service.InvoiceItemInput{
			{Description: "Aircraft hire 1.3h", Quantity: dec(1.3), UnitPrice: 16735},
		})
		require.NoError(t, err)

		reloaded, err := env.invoices.GetInvoice(ctx, result.Invoice.ID)
		require.NoError(t, err)
		require.Len(t, reloaded.Items, 2)

		descriptions := []string{reloaded.Items[0].Description, reloaded.Items[1].Description}
		assert.Contains(t, descriptions, "Headset hire")
		assert.Contains(t, descriptions, "Aircraft hire 1.3h")
		assert.NotContains(t, descriptions, "Aircraft hire 1.0h")

		// 21756 + 3263 (replaced line) + 1500 + 225 (manual line)
		assert.Equal(t, int64(26744), reloaded.Total)
	})

	t.Run("rejected once the invoice leaves draft", func(t *testing.T) {
		env := newTestEnv(t)
		member := env.seedUser(t)
		staff := env.seedUser(t)

		result, err := env.invoices.CreateInvoice(ctx, staff.ID, &service.CreateInvoiceInput{
			UserID: member.ID,
			Status: enum.InvoiceStatusPending,
			Items:  flightLineItems(),
		})
		require.NoError(t, err)

		err = env.invoices.ReplaceAutoGeneratedItems(ctx, staff.ID, result.Invoice.ID, flightLineItems())
		require.Error(t, err)
		assert.True(t, apperror.IsStateConflict(err))
	})
}
