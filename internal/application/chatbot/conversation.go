package chatbot

import (
	"context"
	"errors"
	"fmt"

	"github.com/paydesk/backend/internal/domain/invoicing"
	"github.com/paydesk/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Reply is what the conversation wants said back to the user. AskMethod
// tells the transport to offer the payment method options alongside the text.
type Reply struct {
	Text      string
	AskMethod bool
}

// Conversation drives the two-step payment recording dialogue: a free-text
// payment message parks a pending payment, the follow-up method selection
// applies it. State between the two steps lives in the PendingStore, keyed
// by chat session, with expiry handled by the store.
type Conversation struct {
	extractor Extractor
	planner   PaymentPlanner
	pending   PendingStore
	reference string
	logger    *zap.Logger
}

// NewConversation creates a new Conversation. The reference string is
// stamped onto every recorded payment (e.g. "Telegram Bot").
func NewConversation(extractor Extractor, planner PaymentPlanner, pending PendingStore, reference string, logger *zap.Logger) *Conversation {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Conversation{
		extractor: extractor,
		planner:   planner,
		pending:   pending,
		reference: reference,
		logger:    logger,
	}
}

// HandleMessage processes a free-text payment message for the given chat
// session. Every failure becomes a human-readable reply; nothing is thrown
// at the transport.
func (c *Conversation) HandleMessage(ctx context.Context, sessionKey, text string) Reply {
	extracted, err := c.extractor.Extract(ctx, text)
	if err != nil {
		c.logger.Warn("extraction failed", zap.String("session", sessionKey), zap.Error(err))
		return Reply{Text: fmt.Sprintf("❌ %s\n\nPlease use format: \"Customer Name paid Amount\"\nExample: \"Joel paid 3000\"", extractionMessage(err))}
	}

	plan, err := c.planner.Plan(ctx, extracted.CustomerName, extracted.Amount)
	if err != nil {
		var domainErr *shared.DomainError
		if errors.As(err, &domainErr) {
			switch domainErr.Code {
			case "CUSTOMER_NOT_FOUND":
				return Reply{Text: fmt.Sprintf("❌ Customer %q not found in the system.\n\nPlease check the name and try again.", extracted.CustomerName)}
			case "NO_UNPAID_INVOICES":
				return Reply{Text: fmt.Sprintf("✅ Customer %q found, but no unpaid invoices.\n\nAll invoices are already paid!", extracted.CustomerName)}
			}
		}
		c.logger.Error("payment planning failed", zap.String("session", sessionKey), zap.Error(err))
		return Reply{Text: "❌ An error occurred. Please try again."}
	}

	pending := PendingPayment{
		CustomerName:  plan.CustomerName,
		InvoiceNumber: plan.InvoiceNumber,
		Amount:        plan.Amount,
		Overpayment:   plan.Overpayment,
	}
	if err := c.pending.Put(ctx, sessionKey, pending); err != nil {
		c.logger.Error("failed to park pending payment", zap.String("session", sessionKey), zap.Error(err))
		return Reply{Text: "❌ An error occurred. Please try again."}
	}

	msg := fmt.Sprintf("💰 Payment Details:\n\n"+
		"👤 Customer: %s\n"+
		"💵 Amount: Rs. %s\n"+
		"📄 Invoice: %s\n"+
		"📊 Balance: Rs. %s\n",
		plan.CustomerName, plan.Amount.StringFixed(2), plan.InvoiceNumber, plan.Balance.StringFixed(2))
	if plan.Overpayment {
		msg += "\n⚠️ Amount exceeds the invoice balance; the overpayment will be kept on the invoice.\n"
	}
	msg += "\n💳 Please select payment method:"

	return Reply{Text: msg, AskMethod: true}
}

// HandleMethodSelection applies the pending payment for the session with
// the chosen method. The pending entry is cleared no matter how this turns
// out; a failed apply needs a fresh payment message, not a retry against
// stale state.
func (c *Conversation) HandleMethodSelection(ctx context.Context, sessionKey string, method invoicing.PaymentMethod) Reply {
	pending, err := c.pending.Get(ctx, sessionKey)
	if err != nil {
		c.logger.Error("pending lookup failed", zap.String("session", sessionKey), zap.Error(err))
		return Reply{Text: "❌ An error occurred. Please try again."}
	}
	if pending == nil {
		return Reply{Text: "❌ Payment session expired. Please send the payment message again."}
	}

	defer func() {
		if err := c.pending.Delete(ctx, sessionKey); err != nil {
			c.logger.Warn("failed to clear pending payment", zap.String("session", sessionKey), zap.Error(err))
		}
	}()

	if !method.IsValid() {
		return Reply{Text: "❌ Unknown payment method. Please send the payment message again."}
	}

	result, err := c.planner.Apply(ctx, pending.InvoiceNumber, pending.Amount, method, c.reference)
	if err != nil {
		c.logger.Error("payment apply failed",
			zap.String("session", sessionKey),
			zap.String("invoice", pending.InvoiceNumber),
			zap.Error(err))
		return Reply{Text: fmt.Sprintf("❌ Failed to record payment: %s", err.Error())}
	}

	return Reply{Text: formatRecorded(pending, result.Invoice.Total, result.Invoice.AmountPaid, result.Invoice.Balance, result.Invoice.Status, method)}
}

func formatRecorded(pending *PendingPayment, total, paid, balance decimal.Decimal, status string, method invoicing.PaymentMethod) string {
	statusEmoji := "⚠️"
	if status == invoicing.PaymentStatusPaid.String() {
		statusEmoji = "✅"
	}

	text := fmt.Sprintf("%s Payment Recorded!\n\n"+
		"👤 Customer: %s\n"+
		"💰 Amount: Rs. %s\n"+
		"💳 Method: %s\n\n"+
		"📄 Invoice: %s\n"+
		"💵 Invoice Total: Rs. %s\n"+
		"💳 Amount Paid: Rs. %s\n"+
		"📊 Balance: Rs. %s\n"+
		"📈 Status: %s\n\n",
		statusEmoji, pending.CustomerName, pending.Amount.StringFixed(2), method,
		pending.InvoiceNumber, total.StringFixed(2), paid.StringFixed(2), balance.StringFixed(2), status)

	switch {
	case pending.Overpayment:
		text += "⚠️ Payment exceeded the invoice balance; the excess stays on the invoice."
	case status == invoicing.PaymentStatusPaid.String():
		text += "🎉 Invoice fully paid!"
	default:
		text += "⏳ Partial payment recorded"
	}
	return text
}

func extractionMessage(err error) string {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Message
	}
	return "Could not understand the payment message."
}
