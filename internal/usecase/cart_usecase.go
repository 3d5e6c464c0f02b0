package usecase

import (
	"context"
	"errors"
	"strings"

	"storefront/internal/domain/model"
	"storefront/internal/domain/pricing"
	repo "storefront/internal/repository"
)

// /cart and /me/purchases.
type CartUsecase struct {
	carts     repo.CartRepository
	purchases repo.PurchaseLineRepository
	products  repo.ProductRepository
	policy    pricing.Policy
}

func NewCartUsecase(
	carts repo.CartRepository,
	purchases repo.PurchaseLineRepository,
	products repo.ProductRepository,
	policy pricing.Policy,
) *CartUsecase {
	return &CartUsecase{
		carts:     carts,
		purchases: purchases,
		products:  products,
		policy:    policy,
	}
}

type CartResponse struct {
	Items   []model.CartLine  `json:"items"`
	ItemNum int64             `json:"itemNum"`
	Pricing pricing.Breakdown `json:"pricing"`
}

type AddCartInput struct {
	ProductID string
	Quantity  int64
}

type PurchasesResponse struct {
	State model.PurchaseState `json:"state"`
	Items []model.PurchaseLine `json:"items"`
}

func (u *CartUsecase) GetCart(ctx context.Context, userID string) (CartResponse, error) {
	if userID == "" {
		return CartResponse{}, UnauthorizedError()
	}
	return u.buildCartResponse(ctx, userID)
}

// AddToCart copies name, price and image from the catalog. The same product
// is merged into its existing line.
func (u *CartUsecase) AddToCart(ctx context.Context, userID string, in AddCartInput) (CartResponse, error) {
	if userID == "" {
		return CartResponse{}, UnauthorizedError()
	}
	productID := strings.TrimSpace(in.ProductID)
	if productID == "" {
		return CartResponse{}, ValidationError(ReasonInvalidInput, "invalid productId")
	}
	if in.Quantity < 1 {
		return CartResponse{}, ValidationError(ReasonInvalidInput, "invalid amount")
	}

	p, err := u.products.FindByID(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return CartResponse{}, NotFoundError(ReasonNotFound, "product not found")
	}
	if err != nil {
		return CartResponse{}, dbError(err)
	}
	if !p.IsActive {
		return CartResponse{}, NotFoundError(ReasonNotFound, "product not found")
	}

	if err := u.carts.AddLine(ctx, userID, model.CartLine{
		ProductID: p.ID,
		Name:      p.Name,
		Category:  p.Category,
		Amount:    in.Quantity,
		Image:     p.Image,
		UnitPrice: p.Price,
	}); err != nil {
		return CartResponse{}, dbError(err)
	}

	return u.buildCartResponse(ctx, userID)
}

func (u *CartUsecase) ListPurchases(ctx context.Context, userID string, state string) (PurchasesResponse, error) {
	if userID == "" {
		return PurchasesResponse{}, UnauthorizedError()
	}

	var s model.PurchaseState
	switch strings.ToLower(strings.TrimSpace(state)) {
	case "", "pending":
		s = model.PurchaseStatePending
	case "history":
		s = model.PurchaseStateHistory
	default:
		return PurchasesResponse{}, ValidationError(ReasonInvalidInput, "invalid state")
	}

	rows, err := u.purchases.ListByUser(ctx, userID, s)
	if err != nil {
		return PurchasesResponse{}, dbError(err)
	}
	return PurchasesResponse{State: s, Items: rows}, nil
}

func (u *CartUsecase) buildCartResponse(ctx context.Context, userID string) (CartResponse, error) {
	items, err := u.carts.ListByUserID(ctx, userID)
	if err != nil {
		return CartResponse{}, dbError(err)
	}

	lines := model.LinesFromItems(items)
	return CartResponse{
		Items:   lines,
		ItemNum: model.CountItems(lines),
		Pricing: u.policy.Quote(lines),
	}, nil
}
