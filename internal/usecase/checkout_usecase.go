package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"storefront/internal/domain/model"
	"storefront/internal/domain/pricing"
	"storefront/internal/metrics"
	repo "storefront/internal/repository"
	"storefront/internal/validator"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type CheckoutConfig struct {
	Policy           pricing.Policy
	ConversionFactor decimal.Decimal
	SessionTTL       time.Duration
	CallbackURL      string
	// expected charge currency, empty accepts any
	Currency     string
	AppEmail     string
	CompanyEmail string
}

type CheckoutDeps struct {
	Tx        repo.TransactionManager
	Users     repo.UserRepository
	Carts     repo.CartRepository
	Discounts repo.DiscountRepository
	Sessions  repo.CheckoutSessionRepository
	Verified  repo.VerifiedTransactionRepository
	Receipts  repo.ReceiptRepository
	Gateway   PaymentGateway
	Notifier  Notifier
	IDs       IDGenerator
	Clock     Clock
	Logger    *zap.Logger
	Metrics   *metrics.Metrics
}

// CheckoutUsecase drives a checkout from the cart to a verified receipt.
//
// A checkout session row is the saga cursor: STAGED after initialize,
// VERIFYING once a gateway reference is being verified. The VERIFIED state is
// the commit of the verification transaction, which deletes the row and
// inserts the VerifiedTransaction marker together.
type CheckoutUsecase struct {
	d   CheckoutDeps
	cfg CheckoutConfig
	log *zap.Logger
}

func NewCheckoutUsecase(d CheckoutDeps, cfg CheckoutConfig) *CheckoutUsecase {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Metrics == nil {
		d.Metrics = metrics.NewNop()
	}
	if d.IDs == nil {
		d.IDs = UUIDGenerator{}
	}
	if d.Clock == nil {
		d.Clock = SystemClock{}
	}
	return &CheckoutUsecase{d: d, cfg: cfg, log: d.Logger.With(zap.String("component", "checkout"))}
}

type InitializeCheckoutInput struct {
	Shipping      model.ShippingDetails
	PaymentMethod string
}

type InitializeCheckoutOutput struct {
	CheckoutURL string            `json:"checkoutUrl"`
	SessionID   string            `json:"sessionId"`
	Pricing     pricing.Breakdown `json:"pricing"`
	AmountDue   int64             `json:"amountDue"`
	AmountMinor int64             `json:"amountMinor"`
}

type VerifyCheckoutOutput struct {
	ReceiptID       string `json:"receiptId"`
	AlreadyVerified bool   `json:"alreadyVerified"`
}

var errAlreadyVerified = errors.New("reference already verified")

func (u *CheckoutUsecase) InitializeCheckout(ctx context.Context, userID string, in InitializeCheckoutInput) (InitializeCheckoutOutput, error) {
	if userID == "" {
		return InitializeCheckoutOutput{}, UnauthorizedError()
	}
	shipping := normalizeShipping(in.Shipping)
	if err := validator.ValidateShipping(shipping); err != nil {
		return InitializeCheckoutOutput{}, ValidationError(ReasonInvalidInput, err.Error())
	}

	user, err := u.d.Users.FindByID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return InitializeCheckoutOutput{}, NotFoundError(ReasonNotFound, "user not found")
	}
	if err != nil {
		return InitializeCheckoutOutput{}, dbError(err)
	}
	if shipping.Email == "" {
		shipping.Email = user.Email
	}

	items, err := u.d.Carts.ListByUserID(ctx, userID)
	if err != nil {
		return InitializeCheckoutOutput{}, dbError(err)
	}
	if len(items) == 0 {
		u.d.Metrics.ObserveCheckout("initialize", "empty_cart")
		return InitializeCheckoutOutput{}, ValidationError(ReasonEmptyCart, "cart is empty")
	}
	lines := model.LinesFromItems(items)
	quote := u.cfg.Policy.Quote(lines)

	amountDue := quote.Total
	discountCode := ""
	percentage := decimal.Zero
	if user.HasDiscount() {
		check, err := checkDiscount(ctx, u.d.Discounts, user.DiscountCode, userID)
		if err != nil {
			return InitializeCheckoutOutput{}, err
		}
		if !check.Applicable {
			return InitializeCheckoutOutput{}, check.rejection()
		}
		discountCode = check.Discount.Code
		percentage = check.Discount.Percentage
		amountDue = pricing.ApplyDiscount(quote.Total, percentage)
	}
	amountMinor := pricing.ToMinorUnits(amountDue, u.cfg.ConversionFactor)

	now := u.d.Clock.Now()
	session := model.CheckoutSession{
		ID:                 u.d.IDs.NewID(),
		PayersID:           userID,
		Shipping:           shipping,
		PaymentMethod:      strings.TrimSpace(in.PaymentMethod),
		ItemNum:            model.CountItems(lines),
		Products:           lines,
		Subtotal:           quote.Subtotal,
		ShippingFee:        quote.Shipping,
		Tax:                quote.Tax,
		Total:              quote.Total,
		DiscountCode:       discountCode,
		DiscountPercentage: percentage,
		AmountDue:          amountDue,
		AmountMinor:        amountMinor,
		Status:             model.CheckoutStatusStaged,
		ExpiresAt:          now.Add(u.cfg.SessionTTL),
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := u.d.Sessions.Create(ctx, session); err != nil {
		return InitializeCheckoutOutput{}, dbError(err)
	}

	started := time.Now()
	res, err := u.d.Gateway.Initialize(ctx, GatewayInitRequest{
		Email:       shipping.Email,
		AmountMinor: amountMinor,
		SessionID:   session.ID,
		CallbackURL: u.cfg.CallbackURL,
		Currency:    u.cfg.Currency,
	})
	if err != nil {
		u.d.Metrics.ObserveGateway("initialize", "error", started)
		u.d.Metrics.ObserveCheckout("initialize", "gateway_error")
		u.log.Warn("gateway initialize failed",
			zap.String("user_id", userID),
			zap.String("session_id", session.ID),
			zap.Error(err),
		)
		// the STAGED row expires on its own
		return InitializeCheckoutOutput{}, GatewayError(ReasonGatewayUnavailable, "payment initialization failed", err)
	}
	u.d.Metrics.ObserveGateway("initialize", "ok", started)
	u.d.Metrics.ObserveCheckout("initialize", "ok")

	return InitializeCheckoutOutput{
		CheckoutURL: res.CheckoutURL,
		SessionID:   session.ID,
		Pricing:     quote,
		AmountDue:   amountDue,
		AmountMinor: amountMinor,
	}, nil
}

// VerifyCheckout turns a paid reference into a Transaction, a Receipt and an
// Order. It is safe to call any number of times for the same reference.
// userID is empty when the caller is the webhook or the reconciler.
func (u *CheckoutUsecase) VerifyCheckout(ctx context.Context, userID string, reference string) (VerifyCheckoutOutput, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return VerifyCheckoutOutput{}, ValidationError(ReasonInvalidInput, "reference is required")
	}

	if out, ok, err := u.alreadyVerified(ctx, userID, reference); err != nil || ok {
		return out, err
	}

	started := time.Now()
	v, err := u.d.Gateway.Verify(ctx, reference)
	if err != nil {
		u.d.Metrics.ObserveGateway("verify", "error", started)
		u.d.Metrics.ObserveCheckout("verify", "gateway_error")
		return VerifyCheckoutOutput{}, GatewayError(ReasonGatewayUnavailable, "payment verification failed", err)
	}
	u.d.Metrics.ObserveGateway("verify", "ok", started)
	if !v.Succeeded() {
		u.d.Metrics.ObserveCheckout("verify", "not_successful")
		return VerifyCheckoutOutput{}, GatewayError(ReasonPaymentNotSuccessful,
			fmt.Sprintf("payment status is %q", v.Status), nil)
	}

	session, err := u.findSession(ctx, userID, v)
	if err != nil {
		u.d.Metrics.ObserveCheckout("verify", "missing_session")
		return VerifyCheckoutOutput{}, err
	}
	if session.Status == model.CheckoutStatusVerifying && session.Reference != "" && session.Reference != reference {
		return VerifyCheckoutOutput{}, ConflictError(ReasonVerificationFailed, "checkout is being verified under another reference")
	}

	now := u.d.Clock.Now()
	if err := u.d.Sessions.MarkVerifying(ctx, session.ID, reference, now); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			// deleted by a concurrent winner
			if out, ok, err := u.alreadyVerified(ctx, userID, reference); err != nil || ok {
				return out, err
			}
			return VerifyCheckoutOutput{}, NotFoundError(ReasonStaleOrMissingInit, "checkout session not found")
		}
		return VerifyCheckoutOutput{}, dbError(err)
	}

	// the session stays VERIFYING under this reference for manual review
	if msg := u.chargeMismatch(session, v); msg != "" {
		u.d.Metrics.ObserveCheckout("verify", "amount_mismatch")
		u.log.Error("charge does not cover staged checkout",
			zap.String("user_id", session.PayersID),
			zap.String("reference", reference),
			zap.String("session_id", session.ID),
			zap.Int64("charged", v.ChargedAmountMinor),
			zap.Int64("staged", session.AmountMinor),
			zap.String("currency", v.Currency),
		)
		return VerifyCheckoutOutput{}, ConflictError(ReasonAmountMismatch, msg)
	}
	if v.ChargedAmountMinor > session.AmountMinor {
		u.log.Warn("charged amount exceeds staged amount",
			zap.String("reference", reference),
			zap.String("session_id", session.ID),
			zap.Int64("charged", v.ChargedAmountMinor),
			zap.Int64("staged", session.AmountMinor),
		)
	}

	receiptID, step, err := u.materialize(ctx, session, v, reference, now)
	if errors.Is(err, errAlreadyVerified) {
		u.d.Metrics.ObserveCheckout("verify", "duplicate")
		out, _, lookupErr := u.alreadyVerified(ctx, userID, reference)
		return out, lookupErr
	}
	if err != nil {
		u.d.Metrics.ObserveCheckout("verify", "consistency_error")
		u.log.Error("verification transaction failed",
			zap.String("user_id", session.PayersID),
			zap.String("reference", reference),
			zap.String("session_id", session.ID),
			zap.String("step", step),
			zap.Error(err),
		)
		return VerifyCheckoutOutput{}, ConsistencyError("could not record verified payment", err)
	}
	u.d.Metrics.ObserveCheckout("verify", "ok")

	u.notify(ctx, session, v)

	return VerifyCheckoutOutput{ReceiptID: receiptID}, nil
}

// chargeMismatch describes why a verified charge cannot pay for the session,
// or returns "".
func (u *CheckoutUsecase) chargeMismatch(s model.CheckoutSession, v GatewayVerification) string {
	if u.cfg.Currency != "" && v.Currency != "" && !strings.EqualFold(u.cfg.Currency, v.Currency) {
		return fmt.Sprintf("charged in %s, expected %s", v.Currency, u.cfg.Currency)
	}
	if v.ChargedAmountMinor < s.AmountMinor {
		return fmt.Sprintf("charged %d, expected %d", v.ChargedAmountMinor, s.AmountMinor)
	}
	return ""
}

// alreadyVerified looks up the marker for reference. A signed-in caller only
// sees a receipt it paid for.
func (u *CheckoutUsecase) alreadyVerified(ctx context.Context, userID string, reference string) (VerifyCheckoutOutput, bool, error) {
	vt, err := u.d.Verified.FindByReference(ctx, reference)
	if errors.Is(err, repo.ErrNotFound) {
		return VerifyCheckoutOutput{}, false, nil
	}
	if err != nil {
		return VerifyCheckoutOutput{}, false, dbError(err)
	}
	if userID != "" {
		rc, err := u.d.Receipts.FindByID(ctx, vt.ReceiptID)
		if err != nil && !errors.Is(err, repo.ErrNotFound) {
			return VerifyCheckoutOutput{}, false, dbError(err)
		}
		if err != nil || rc.PayersID != userID {
			return VerifyCheckoutOutput{}, false, NotFoundError(ReasonStaleOrMissingInit, "checkout session not found")
		}
	}
	return VerifyCheckoutOutput{ReceiptID: vt.ReceiptID, AlreadyVerified: true}, true, nil
}

// findSession prefers the session id echoed in the gateway metadata and falls
// back to the payer's latest session. Another user's session counts as missing.
func (u *CheckoutUsecase) findSession(ctx context.Context, userID string, v GatewayVerification) (model.CheckoutSession, error) {
	missing := NotFoundError(ReasonStaleOrMissingInit, "checkout session not found")

	var (
		s   model.CheckoutSession
		err error
	)
	if v.SessionID != "" {
		s, err = u.d.Sessions.FindByID(ctx, v.SessionID)
	} else {
		err = repo.ErrNotFound
	}
	if errors.Is(err, repo.ErrNotFound) && v.PayerEmail != "" {
		s, err = u.d.Sessions.FindLatestByEmail(ctx, v.PayerEmail)
	}
	if errors.Is(err, repo.ErrNotFound) {
		return model.CheckoutSession{}, missing
	}
	if err != nil {
		return model.CheckoutSession{}, dbError(err)
	}
	if userID != "" && s.PayersID != userID {
		return model.CheckoutSession{}, missing
	}
	return s, nil
}

// materialize runs the verification transaction. step names the write that
// failed, for the error log.
func (u *CheckoutUsecase) materialize(ctx context.Context, s model.CheckoutSession, v GatewayVerification, reference string, now time.Time) (string, string, error) {
	var (
		step          string
		transactionID = u.d.IDs.NewID()
		receiptID     = u.d.IDs.NewID()
		orderID       = u.d.IDs.NewID()
	)
	payerEmail := v.PayerEmail
	if payerEmail == "" {
		payerEmail = s.Shipping.Email
	}
	lines := []model.CartLine(s.Products)

	err := u.d.Tx.WithinTx(ctx, func(r repo.TxRepos) error {
		step = "record_verified"
		err := r.Verified().Create(ctx, model.VerifiedTransaction{
			Email:     payerEmail,
			Reference: reference,
			ReceiptID: receiptID,
		})
		if errors.Is(err, repo.ErrDuplicate) {
			return errAlreadyVerified
		}
		if err != nil {
			return err
		}

		step = "create_transaction"
		if err := r.Transactions().Create(ctx, model.Transaction{
			ID:            transactionID,
			PayersID:      s.PayersID,
			Reference:     reference,
			Shipping:      s.Shipping,
			PaymentMethod: s.PaymentMethod,
			ItemNum:       s.ItemNum,
			Status:        model.LedgerStatusCurrent,
			TotalAmount:   v.ChargedAmountMinor,
			Date:          now,
		}); err != nil {
			return err
		}

		step = "create_receipt"
		if err := r.Receipts().Create(ctx, model.Receipt{
			ID:            receiptID,
			PayersID:      s.PayersID,
			TransactionID: transactionID,
			Shipping:      s.Shipping,
			PaymentMethod: s.PaymentMethod,
			ItemNum:       s.ItemNum,
			Status:        model.LedgerStatusCurrent,
			TotalAmount:   v.ChargedAmountMinor,
			Products:      s.Products,
			Date:          now,
		}); err != nil {
			return err
		}

		step = "create_order"
		if err := r.Orders().Create(ctx, model.Order{
			ID:            orderID,
			PayersID:      s.PayersID,
			ReceiptID:     receiptID,
			Shipping:      s.Shipping,
			PaymentMethod: s.PaymentMethod,
			ItemNum:       s.ItemNum,
			TotalAmount:   v.ChargedAmountMinor,
			Products:      s.Products,
			Date:          now,
		}); err != nil {
			return err
		}

		step = "add_pending"
		if err := r.Purchases().AddPending(ctx, s.PayersID, orderID, lines); err != nil {
			return err
		}

		step = "clear_cart"
		if err := r.Carts().RemoveLines(ctx, s.PayersID, lines); err != nil {
			return err
		}

		if s.HasDiscount() {
			step = "commit_discount"
			res, err := CommitUsage(ctx, r, s.DiscountCode, s.PayersID)
			if err != nil {
				return err
			}
			if res.Recorded && !res.Counted {
				u.log.Error("discount used past its limit",
					zap.String("code", s.DiscountCode),
					zap.String("user_id", s.PayersID),
					zap.String("reference", reference),
				)
				after, _ := json.Marshal(map[string]string{"reference": reference, "user_id": s.PayersID})
				if err := r.AuditLogs().Create(ctx, model.AuditLog{
					Action:       model.AuditActionDiscountOversubscribed,
					ResourceType: model.AuditResourceDiscount,
					ResourceID:   s.DiscountCode,
					AfterJSON:    string(after),
					CreatedAt:    now,
				}); err != nil {
					return err
				}
			}
		}

		step = "delete_session"
		if err := r.Sessions().Delete(ctx, s.ID); err != nil {
			return err
		}

		step = "outbox"
		return r.Outbox().Insert(ctx, model.TopicCheckoutVerified, receiptID, CheckoutVerifiedEvent{
			Reference:     reference,
			TransactionID: transactionID,
			ReceiptID:     receiptID,
			OrderID:       orderID,
			PayersID:      s.PayersID,
			ItemNum:       s.ItemNum,
			TotalAmount:   v.ChargedAmountMinor,
			DiscountCode:  s.DiscountCode,
			VerifiedAt:    now,
		})
	})
	if err != nil {
		return "", step, err
	}
	return receiptID, step, nil
}

// notify mails the payer and the operator. Failures are logged and counted,
// the verified records stay.
func (u *CheckoutUsecase) notify(ctx context.Context, s model.CheckoutSession, v GatewayVerification) {
	payerEmail := v.PayerEmail
	if payerEmail == "" {
		payerEmail = s.Shipping.Email
	}

	msgs := []struct {
		recipient string
		msg       Message
	}{
		{"payer", PayerMessage(u.cfg.AppEmail, payerEmail)},
		{"operator", OperatorMessage(u.cfg.AppEmail, u.cfg.CompanyEmail, s.Shipping.Name, payerEmail)},
	}
	for _, m := range msgs {
		err := u.d.Notifier.Send(ctx, m.msg)
		u.d.Metrics.ObserveNotification(m.recipient, err == nil)
		if err != nil {
			u.log.Warn("notification failed",
				zap.String("recipient", m.recipient),
				zap.String("session_id", s.ID),
				zap.Error(err),
			)
		}
	}
}

func PayerMessage(from, to string) Message {
	return Message{
		From:    from,
		To:      to,
		Subject: "Payment for products",
		Body: "Your payment was received. Your products will be delivered within 15 days. " +
			"You can follow them in the pending section of your dashboard.",
	}
}

func OperatorMessage(from, to, name, email string) Message {
	return Message{
		From:    from,
		To:      to,
		Subject: "Transaction",
		Body:    fmt.Sprintf("User %s: %s has made payment for some products", name, email),
	}
}

func normalizeShipping(s model.ShippingDetails) model.ShippingDetails {
	s.Name = strings.TrimSpace(s.Name)
	s.Email = strings.ToLower(strings.TrimSpace(s.Email))
	s.Address = strings.TrimSpace(s.Address)
	s.PhoneNumber = strings.TrimSpace(s.PhoneNumber)
	s.City = strings.TrimSpace(s.City)
	s.State = strings.TrimSpace(s.State)
	s.PostalCode = strings.TrimSpace(s.PostalCode)
	return s
}
