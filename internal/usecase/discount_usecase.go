package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"github.com/shopspring/decimal"
)

// Discount ledger. Usage is only counted by CommitUsage, which runs inside the
// verification transaction.
type DiscountUsecase struct {
	tx        repo.TransactionManager
	users     repo.UserRepository
	discounts repo.DiscountRepository
	clock     Clock
}

// DI
func NewDiscountUsecase(tx repo.TransactionManager, users repo.UserRepository, discounts repo.DiscountRepository, clock Clock) *DiscountUsecase {
	return &DiscountUsecase{tx: tx, users: users, discounts: discounts, clock: clock}
}

type DiscountCheck struct {
	Applicable bool           `json:"applicable"`
	Reason     string         `json:"reason,omitempty"`
	Discount   model.Discount `json:"-"`
}

type ApplyDiscountOutput struct {
	Applied    bool            `json:"applied"`
	Code       string          `json:"code"`
	Percentage decimal.Decimal `json:"percentage"`
}

type CurrentDiscountOutput struct {
	Code       string          `json:"code"`
	Percentage decimal.Decimal `json:"percentage"`
	Active     bool            `json:"active"`
}

type CreateDiscountInput struct {
	Code       string
	Percentage decimal.Decimal
	Limit      int64
}

type CommitResult struct {
	// false when the user had already redeemed the code
	Recorded bool
	// false when the counter was already at the limit
	Counted bool
}

// Validate checks code for userID. An unknown code is not an error here, it
// comes back as Applicable=false with Reason NotFound.
func (u *DiscountUsecase) Validate(ctx context.Context, code string, userID string) (DiscountCheck, error) {
	return checkDiscount(ctx, u.discounts, code, userID)
}

func checkDiscount(ctx context.Context, discounts repo.DiscountRepository, code string, userID string) (DiscountCheck, error) {
	d, err := discounts.FindByCode(ctx, code)
	if errors.Is(err, repo.ErrNotFound) {
		return DiscountCheck{Reason: ReasonNotFound}, nil
	}
	if err != nil {
		return DiscountCheck{}, dbError(err)
	}

	used, err := discounts.HasRedeemed(ctx, code, userID)
	if err != nil {
		return DiscountCheck{}, dbError(err)
	}
	if used {
		return DiscountCheck{Reason: ReasonAlreadyUsed, Discount: d}, nil
	}
	if d.Exhausted() {
		return DiscountCheck{Reason: ReasonLimitReached, Discount: d}, nil
	}
	return DiscountCheck{Applicable: true, Discount: d}, nil
}

// rejection turns a failed check into the error returned to callers.
func (c DiscountCheck) rejection() error {
	switch c.Reason {
	case ReasonNotFound:
		return ValidationError(ReasonNotFound, "discount code not found")
	case ReasonAlreadyUsed:
		return ConflictError(ReasonAlreadyUsed, "discount code already used")
	case ReasonLimitReached:
		return ConflictError(ReasonLimitReached, "discount code usage limit reached")
	}
	return nil
}

// Apply attaches code to the user. The usage counter is left alone.
func (u *DiscountUsecase) Apply(ctx context.Context, userID string, code string) (ApplyDiscountOutput, error) {
	if userID == "" {
		return ApplyDiscountOutput{}, UnauthorizedError()
	}
	code = strings.TrimSpace(code)
	if code == "" || code == model.NoDiscountCode {
		return ApplyDiscountOutput{}, ValidationError(ReasonInvalidInput, "invalid discount code")
	}

	check, err := u.Validate(ctx, code, userID)
	if err != nil {
		return ApplyDiscountOutput{}, err
	}
	if !check.Applicable {
		return ApplyDiscountOutput{}, check.rejection()
	}

	if err := u.users.SetDiscountCode(ctx, userID, code); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ApplyDiscountOutput{}, NotFoundError(ReasonNotFound, "user not found")
		}
		return ApplyDiscountOutput{}, dbError(err)
	}

	return ApplyDiscountOutput{
		Applied:    true,
		Code:       check.Discount.Code,
		Percentage: check.Discount.Percentage,
	}, nil
}

// Reset detaches whatever code the user carries.
func (u *DiscountUsecase) Reset(ctx context.Context, userID string) error {
	if userID == "" {
		return UnauthorizedError()
	}
	if err := u.users.SetDiscountCode(ctx, userID, model.NoDiscountCode); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return NotFoundError(ReasonNotFound, "user not found")
		}
		return dbError(err)
	}
	return nil
}

// Current returns the code attached to the user and its percentage.
func (u *DiscountUsecase) Current(ctx context.Context, userID string) (CurrentDiscountOutput, error) {
	if userID == "" {
		return CurrentDiscountOutput{}, UnauthorizedError()
	}

	user, err := u.users.FindByID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return CurrentDiscountOutput{}, NotFoundError(ReasonNotFound, "user not found")
	}
	if err != nil {
		return CurrentDiscountOutput{}, dbError(err)
	}
	if !user.HasDiscount() {
		return CurrentDiscountOutput{Code: model.NoDiscountCode, Percentage: decimal.Zero}, nil
	}

	d, err := u.discounts.FindByCode(ctx, user.DiscountCode)
	if errors.Is(err, repo.ErrNotFound) {
		return CurrentDiscountOutput{Code: user.DiscountCode, Percentage: decimal.Zero}, nil
	}
	if err != nil {
		return CurrentDiscountOutput{}, dbError(err)
	}
	return CurrentDiscountOutput{Code: d.Code, Percentage: d.Percentage, Active: !d.Exhausted()}, nil
}

// Create adds a discount code and audits it.
func (u *DiscountUsecase) Create(ctx context.Context, actorID string, in CreateDiscountInput) (model.Discount, error) {
	code := strings.TrimSpace(in.Code)
	if code == "" || len(code) > 64 || code == model.NoDiscountCode {
		return model.Discount{}, ValidationError(ReasonInvalidInput, "invalid code")
	}
	if in.Percentage.IsNegative() || in.Percentage.GreaterThan(decimal.NewFromInt(100)) {
		return model.Discount{}, ValidationError(ReasonInvalidInput, "percentage must be between 0 and 100")
	}
	if in.Limit < 1 {
		return model.Discount{}, ValidationError(ReasonInvalidInput, "limit must be at least 1")
	}

	var created model.Discount
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		d, err := r.Discounts().Create(ctx, model.Discount{
			Code:       code,
			Percentage: in.Percentage,
			Limit:      in.Limit,
		})
		if errors.Is(err, repo.ErrDuplicate) {
			return ConflictError(ReasonDuplicateCode, "discount code already exists")
		}
		if err != nil {
			return dbError(err)
		}
		created = d

		after, _ := json.Marshal(d)
		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  actorID,
			Action:       model.AuditActionCreateDiscount,
			ResourceType: model.AuditResourceDiscount,
			ResourceID:   d.Code,
			AfterJSON:    string(after),
			CreatedAt:    u.clock.Now(),
		}); err != nil {
			return dbError(err)
		}
		return nil
	})
	if err != nil {
		return model.Discount{}, err
	}
	return created, nil
}

// CommitUsage records that userID used code. It must run on the repositories
// of the verification transaction.
//
// The counter only moves when a redemption row was actually inserted, and the
// increment is a single conditional UPDATE, so concurrent commits can never
// push current_use_count past usage_limit.
func CommitUsage(ctx context.Context, r repo.TxRepos, code string, userID string) (CommitResult, error) {
	var res CommitResult

	err := r.Discounts().RecordRedemption(ctx, code, userID)
	switch {
	case err == nil:
		res.Recorded = true
	case errors.Is(err, repo.ErrDuplicate):
	default:
		return CommitResult{}, err
	}

	if res.Recorded {
		counted, err := r.Discounts().IncrementUsageIfBelowLimit(ctx, code)
		if err != nil {
			return CommitResult{}, err
		}
		res.Counted = counted
	}

	if err := r.Users().SetDiscountCode(ctx, userID, model.NoDiscountCode); err != nil {
		return CommitResult{}, err
	}
	return res, nil
}

type DiscountDetail struct {
	Discount  model.Discount `json:"discount"`
	Redeemers []string       `json:"redeemers"`
}

// Detail is the operator view of a code: its counter and who redeemed it.
func (u *DiscountUsecase) Detail(ctx context.Context, code string) (DiscountDetail, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return DiscountDetail{}, ValidationError(ReasonInvalidInput, "code is required")
	}
	d, err := u.discounts.FindByCode(ctx, code)
	if errors.Is(err, repo.ErrNotFound) {
		return DiscountDetail{}, NotFoundError(ReasonNotFound, "discount code not found")
	}
	if err != nil {
		return DiscountDetail{}, dbError(err)
	}
	users, err := u.discounts.ListRedeemers(ctx, code)
	if err != nil {
		return DiscountDetail{}, dbError(err)
	}
	return DiscountDetail{Discount: d, Redeemers: users}, nil
}
