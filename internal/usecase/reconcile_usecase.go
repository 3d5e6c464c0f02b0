package usecase

import (
	"context"
	"time"

	repo "storefront/internal/repository"

	"go.uber.org/zap"
)

// Verifier is the slice of CheckoutUsecase the reconciler replays.
type Verifier interface {
	VerifyCheckout(ctx context.Context, userID string, reference string) (VerifyCheckoutOutput, error)
}

// ReconcileUsecase cleans up checkout sessions nobody finished: expired STAGED
// rows are deleted, VERIFYING rows are verified again by reference.
type ReconcileUsecase struct {
	sessions   repo.CheckoutSessionRepository
	verifier   Verifier
	clock      Clock
	stuckAfter time.Duration
	batch      int
	log        *zap.Logger
}

func NewReconcileUsecase(sessions repo.CheckoutSessionRepository, verifier Verifier, clock Clock, stuckAfter time.Duration, logger *zap.Logger) *ReconcileUsecase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReconcileUsecase{
		sessions:   sessions,
		verifier:   verifier,
		clock:      clock,
		stuckAfter: stuckAfter,
		batch:      100,
		log:        logger.With(zap.String("component", "reconcile")),
	}
}

type ReconcileReport struct {
	Expired  int64 `json:"expired"`
	Resumed  int   `json:"resumed"`
	Failed   int   `json:"failed"`
	Dropped  int   `json:"dropped"`
	Examined int   `json:"examined"`
}

func (u *ReconcileUsecase) SweepExpiredSessions(ctx context.Context) (int64, error) {
	n, err := u.sessions.DeleteExpiredStaged(ctx, u.clock.Now())
	if err != nil {
		return 0, dbError(err)
	}
	if n > 0 {
		u.log.Info("expired checkout sessions removed", zap.Int64("count", n))
	}
	return n, nil
}

// ResumeStuckVerifications replays VerifyCheckout for sessions left in
// VERIFYING. A session whose payment the gateway reports as not successful is
// dropped once it is past its expiry.
func (u *ReconcileUsecase) ResumeStuckVerifications(ctx context.Context) (ReconcileReport, error) {
	now := u.clock.Now()
	rows, err := u.sessions.ListVerifyingBefore(ctx, now.Add(-u.stuckAfter), u.batch)
	if err != nil {
		return ReconcileReport{}, dbError(err)
	}

	var rep ReconcileReport
	for _, s := range rows {
		if ctx.Err() != nil {
			return rep, ctx.Err()
		}
		rep.Examined++

		_, err := u.verifier.VerifyCheckout(ctx, "", s.Reference)
		if err == nil {
			rep.Resumed++
			continue
		}

		if ae, ok := AsAppError(err); ok && ae.Reason == ReasonPaymentNotSuccessful && now.After(s.ExpiresAt) {
			if derr := u.sessions.Delete(ctx, s.ID); derr == nil {
				rep.Dropped++
				continue
			}
		}

		rep.Failed++
		u.log.Error("stuck verification not resumed",
			zap.String("session_id", s.ID),
			zap.String("user_id", s.PayersID),
			zap.String("reference", s.Reference),
			zap.Error(err),
		)
	}
	return rep, nil
}

// Run does one full pass: sweep then resume.
func (u *ReconcileUsecase) Run(ctx context.Context) (ReconcileReport, error) {
	expired, err := u.SweepExpiredSessions(ctx)
	if err != nil {
		return ReconcileReport{}, err
	}
	rep, err := u.ResumeStuckVerifications(ctx)
	rep.Expired = expired
	return rep, err
}
