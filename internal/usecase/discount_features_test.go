package usecase_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
	"storefront/internal/usecase"

	"github.com/cucumber/godog"
	"github.com/shopspring/decimal"
)

type discountTestContext struct {
	store *memStore
	uc    *usecase.DiscountUsecase
}

func (c *discountTestContext) reset() {
	c.store = newMemStore()
	repos := memRepos{c.store}
	clock := &fixedClock{t: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)}
	c.uc = usecase.NewDiscountUsecase(memTx{c.store}, repos.Users(), repos.Discounts(), clock)
}

func (c *discountTestContext) aDiscount(code string, pct, limit, used int) error {
	c.store.discounts[code] = model.Discount{
		Code:            code,
		Percentage:      decimal.NewFromInt(int64(pct)),
		Limit:           int64(limit),
		CurrentUseCount: int64(used),
	}
	return nil
}

func (c *discountTestContext) aUser(id string) error {
	c.store.addUser(id, id+"@example.com", id)
	return nil
}

func (c *discountTestContext) applies(userID, code string) error {
	_, err := c.uc.Apply(context.Background(), userID, code)
	return err
}

func (c *discountTestContext) usageCommitted(code, userID string) error {
	return memTx{c.store}.WithinTx(context.Background(), func(r repo.TxRepos) error {
		_, err := usecase.CommitUsage(context.Background(), r, code, userID)
		return err
	})
}

func (c *discountTestContext) codeOfUserIs(userID, code string) error {
	if got := c.store.users[userID].DiscountCode; got != code {
		return fmt.Errorf("expected code %q, got %q", code, got)
	}
	return nil
}

func (c *discountTestContext) usedTimes(code string, n int) error {
	if got := c.store.discounts[code].CurrentUseCount; got != int64(n) {
		return fmt.Errorf("expected %s used %d times, got %d", code, n, got)
	}
	return nil
}

func (c *discountTestContext) recordedAsUsing(userID, code string) error {
	for _, u := range c.store.redemptions[code] {
		if u == userID {
			return nil
		}
	}
	return fmt.Errorf("%s has no redemption of %s", userID, code)
}

func (c *discountTestContext) applyRejected(userID, code, reason string) error {
	_, err := c.uc.Apply(context.Background(), userID, code)
	ae, ok := usecase.AsAppError(err)
	if !ok {
		return fmt.Errorf("expected rejection %s, got %v", reason, err)
	}
	if ae.Reason != reason {
		return fmt.Errorf("expected reason %s, got %s", reason, ae.Reason)
	}
	return nil
}

func InitializeDiscountScenario(ctx *godog.ScenarioContext) {
	tc := &discountTestContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})

	ctx.Step(`^a discount "([^"]*)" of (\d+) percent with limit (\d+) used (\d+) times$`, tc.aDiscount)
	ctx.Step(`^a user "([^"]*)"$`, tc.aUser)
	ctx.Step(`^"([^"]*)" applies "([^"]*)"$`, tc.applies)
	ctx.Step(`^the usage of "([^"]*)" by "([^"]*)" is committed$`, tc.usageCommitted)
	ctx.Step(`^the code of "([^"]*)" is "([^"]*)"$`, tc.codeOfUserIs)
	ctx.Step(`^"([^"]*)" has been used (\d+) times$`, tc.usedTimes)
	ctx.Step(`^"([^"]*)" is recorded as having used "([^"]*)"$`, tc.recordedAsUsing)
	ctx.Step(`^"([^"]*)" applying "([^"]*)" is rejected with "([^"]*)"$`, tc.applyRejected)
}

func TestDiscountFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeDiscountScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features/discount.feature"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
