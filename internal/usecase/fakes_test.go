package usecase_test

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"gorm.io/datatypes"
)

// memStore is an in-memory database. WithinTx restores a snapshot when fn
// fails, which is enough to test what a rollback leaves behind.
type memStore struct {
	users        map[string]model.User
	cart         map[string][]model.CartItem
	purchases    []model.PurchaseLine
	products     map[string]model.Product
	credits      map[string]bool
	discounts    map[string]model.Discount
	redemptions  map[string][]string
	sessions     map[string]model.CheckoutSession
	transactions map[string]model.Transaction
	receipts     map[string]model.Receipt
	orders       map[string]model.Order
	fulfilled    map[string]model.Fulfilled
	verified     map[string]model.VerifiedTransaction
	outbox       []model.OutboxEvent
	audits       []model.AuditLog

	// "<repo>.<method>" -> error returned by that call
	failures map[string]error
	txCount  int
}

func newMemStore() *memStore {
	return &memStore{
		users:        map[string]model.User{},
		cart:         map[string][]model.CartItem{},
		products:     map[string]model.Product{},
		credits:      map[string]bool{},
		discounts:    map[string]model.Discount{},
		redemptions:  map[string][]string{},
		sessions:     map[string]model.CheckoutSession{},
		transactions: map[string]model.Transaction{},
		receipts:     map[string]model.Receipt{},
		orders:       map[string]model.Order{},
		fulfilled:    map[string]model.Fulfilled{},
		verified:     map[string]model.VerifiedTransaction{},
		failures:     map[string]error{},
	}
}

func (s *memStore) fail(op string) error {
	return s.failures[op]
}

func (s *memStore) snapshot() *memStore {
	c := &memStore{
		users:        copyMap(s.users),
		cart:         map[string][]model.CartItem{},
		purchases:    append([]model.PurchaseLine(nil), s.purchases...),
		products:     copyMap(s.products),
		credits:      copyMap(s.credits),
		discounts:    copyMap(s.discounts),
		redemptions:  map[string][]string{},
		sessions:     copyMap(s.sessions),
		transactions: copyMap(s.transactions),
		receipts:     copyMap(s.receipts),
		orders:       copyMap(s.orders),
		fulfilled:    copyMap(s.fulfilled),
		verified:     copyMap(s.verified),
		outbox:       append([]model.OutboxEvent(nil), s.outbox...),
		audits:       append([]model.AuditLog(nil), s.audits...),
	}
	for k, v := range s.cart {
		c.cart[k] = append([]model.CartItem(nil), v...)
	}
	for k, v := range s.redemptions {
		c.redemptions[k] = append([]string(nil), v...)
	}
	return c
}

func (s *memStore) restore(c *memStore) {
	failures, txCount := s.failures, s.txCount
	*s = *c
	s.failures, s.txCount = failures, txCount
}

func copyMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// ---- seeding helpers

func (s *memStore) addUser(id, email, name string) {
	s.users[id] = model.User{ID: id, Email: email, Name: name, Role: model.RoleUser, DiscountCode: model.NoDiscountCode}
}

func (s *memStore) addProduct(p model.Product) {
	p.IsActive = true
	s.products[p.ID] = p
}

func (s *memStore) addToCart(userID string, l model.CartLine) {
	_ = (&fakeCarts{s}).AddLine(context.Background(), userID, l)
}

// ---- TransactionManager / TxRepos

type memTx struct{ s *memStore }

func (m memTx) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	m.s.txCount++
	snap := m.s.snapshot()
	if err := fn(memRepos{m.s}); err != nil {
		m.s.restore(snap)
		return err
	}
	return nil
}

type memRepos struct{ s *memStore }

func (r memRepos) Users() repo.UserRepository                   { return &fakeUsers{r.s} }
func (r memRepos) Carts() repo.CartRepository                   { return &fakeCarts{r.s} }
func (r memRepos) Purchases() repo.PurchaseLineRepository       { return &fakePurchases{r.s} }
func (r memRepos) Products() repo.ProductRepository             { return &fakeProducts{r.s} }
func (r memRepos) Inventory() repo.InventoryRepository          { return &fakeInventory{r.s} }
func (r memRepos) Discounts() repo.DiscountRepository           { return &fakeDiscounts{r.s} }
func (r memRepos) Sessions() repo.CheckoutSessionRepository     { return &fakeSessions{r.s} }
func (r memRepos) Transactions() repo.TransactionRepository     { return &fakeTransactions{r.s} }
func (r memRepos) Receipts() repo.ReceiptRepository             { return &fakeReceipts{r.s} }
func (r memRepos) Orders() repo.OrderRepository                 { return &fakeOrders{r.s} }
func (r memRepos) Fulfilled() repo.FulfilledRepository          { return &fakeFulfilled{r.s} }
func (r memRepos) Verified() repo.VerifiedTransactionRepository { return &fakeVerified{r.s} }
func (r memRepos) Outbox() repo.OutboxRepository                { return &fakeOutbox{r.s} }
func (r memRepos) AuditLogs() repo.AuditLogRepository           { return &fakeAudit{r.s} }

// ---- users

type fakeUsers struct{ s *memStore }

func (f *fakeUsers) FindByID(ctx context.Context, userID string) (model.User, error) {
	u, ok := f.s.users[userID]
	if !ok {
		return model.User{}, repo.ErrNotFound
	}
	return u, nil
}

func (f *fakeUsers) SetDiscountCode(ctx context.Context, userID string, code string) error {
	if err := f.s.fail("users.SetDiscountCode"); err != nil {
		return err
	}
	u, ok := f.s.users[userID]
	if !ok {
		return repo.ErrNotFound
	}
	u.DiscountCode = code
	f.s.users[userID] = u
	return nil
}

// ---- cart / purchases

type fakeCarts struct{ s *memStore }

func (f *fakeCarts) ListByUserID(ctx context.Context, userID string) ([]model.CartItem, error) {
	return append([]model.CartItem{}, f.s.cart[userID]...), nil
}

func (f *fakeCarts) AddLine(ctx context.Context, userID string, l model.CartLine) error {
	items := f.s.cart[userID]
	for i := range items {
		if items[i].ProductID == l.ProductID {
			items[i].Quantity += l.Amount
			return nil
		}
	}
	f.s.cart[userID] = append(items, model.CartItem{
		ID:        int64(len(items) + 1),
		UserID:    userID,
		ProductID: l.ProductID,
		Name:      l.Name,
		Category:  l.Category,
		Image:     l.Image,
		Quantity:  l.Amount,
		UnitPrice: l.UnitPrice,
	})
	return nil
}

func (f *fakeCarts) RemoveLines(ctx context.Context, userID string, lines []model.CartLine) error {
	if err := f.s.fail("carts.RemoveLines"); err != nil {
		return err
	}
	items := f.s.cart[userID]
	for _, l := range lines {
		for i := range items {
			if items[i].ProductID == l.ProductID {
				items[i].Quantity -= l.Amount
			}
		}
	}
	kept := items[:0]
	for _, it := range items {
		if it.Quantity > 0 {
			kept = append(kept, it)
		}
	}
	f.s.cart[userID] = kept
	return nil
}

type fakePurchases struct{ s *memStore }

func (f *fakePurchases) AddPending(ctx context.Context, userID string, orderID string, lines []model.CartLine) error {
	for _, l := range lines {
		f.s.purchases = append(f.s.purchases, model.PurchaseLine{
			ID:        int64(len(f.s.purchases) + 1),
			UserID:    userID,
			OrderID:   orderID,
			State:     model.PurchaseStatePending,
			ProductID: l.ProductID,
			Name:      l.Name,
			Amount:    l.Amount,
			UnitPrice: l.UnitPrice,
		})
	}
	return nil
}

func (f *fakePurchases) MoveToHistory(ctx context.Context, orderID string) (int64, error) {
	var n int64
	for i := range f.s.purchases {
		if f.s.purchases[i].OrderID == orderID && f.s.purchases[i].State == model.PurchaseStatePending {
			f.s.purchases[i].State = model.PurchaseStateHistory
			n++
		}
	}
	return n, nil
}

func (f *fakePurchases) ListByUser(ctx context.Context, userID string, state model.PurchaseState) ([]model.PurchaseLine, error) {
	out := []model.PurchaseLine{}
	for _, p := range f.s.purchases {
		if p.UserID == userID && p.State == state {
			out = append(out, p)
		}
	}
	return out, nil
}

// ---- catalog / inventory

type fakeProducts struct{ s *memStore }

func (f *fakeProducts) FindByID(ctx context.Context, id string) (model.Product, error) {
	p, ok := f.s.products[id]
	if !ok {
		return model.Product{}, repo.ErrNotFound
	}
	return p, nil
}

type fakeInventory struct{ s *memStore }

func (f *fakeInventory) CreditOnce(ctx context.Context, orderID string, productID string, qty int64) (bool, error) {
	key := orderID + "|" + productID
	if f.s.credits[key] {
		return false, nil
	}
	p, ok := f.s.products[productID]
	if !ok {
		return false, repo.ErrNotFound
	}
	p.Count += qty
	f.s.products[productID] = p
	f.s.credits[key] = true
	return true, nil
}

// ---- discounts

type fakeDiscounts struct{ s *memStore }

func (f *fakeDiscounts) FindByCode(ctx context.Context, code string) (model.Discount, error) {
	d, ok := f.s.discounts[code]
	if !ok {
		return model.Discount{}, repo.ErrNotFound
	}
	return d, nil
}

func (f *fakeDiscounts) Create(ctx context.Context, d model.Discount) (model.Discount, error) {
	if _, ok := f.s.discounts[d.Code]; ok {
		return model.Discount{}, repo.ErrDuplicate
	}
	d.ID = int64(len(f.s.discounts) + 1)
	f.s.discounts[d.Code] = d
	return d, nil
}

func (f *fakeDiscounts) HasRedeemed(ctx context.Context, code string, userID string) (bool, error) {
	for _, u := range f.s.redemptions[code] {
		if u == userID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeDiscounts) RecordRedemption(ctx context.Context, code string, userID string) error {
	if used, _ := f.HasRedeemed(ctx, code, userID); used {
		return repo.ErrDuplicate
	}
	f.s.redemptions[code] = append(f.s.redemptions[code], userID)
	return nil
}

func (f *fakeDiscounts) IncrementUsageIfBelowLimit(ctx context.Context, code string) (bool, error) {
	d, ok := f.s.discounts[code]
	if !ok || d.CurrentUseCount >= d.Limit {
		return false, nil
	}
	d.CurrentUseCount++
	f.s.discounts[code] = d
	return true, nil
}

func (f *fakeDiscounts) ListRedeemers(ctx context.Context, code string) ([]string, error) {
	return append([]string{}, f.s.redemptions[code]...), nil
}

// ---- checkout sessions

type fakeSessions struct{ s *memStore }

func (f *fakeSessions) Create(ctx context.Context, cs model.CheckoutSession) error {
	if err := f.s.fail("sessions.Create"); err != nil {
		return err
	}
	f.s.sessions[cs.ID] = cs
	return nil
}

func (f *fakeSessions) FindByID(ctx context.Context, id string) (model.CheckoutSession, error) {
	cs, ok := f.s.sessions[id]
	if !ok {
		return model.CheckoutSession{}, repo.ErrNotFound
	}
	return cs, nil
}

func (f *fakeSessions) FindLatestByEmail(ctx context.Context, email string) (model.CheckoutSession, error) {
	var (
		best  model.CheckoutSession
		found bool
	)
	for _, cs := range f.s.sessions {
		if strings.EqualFold(cs.Shipping.Email, email) && (!found || cs.CreatedAt.After(best.CreatedAt)) {
			best, found = cs, true
		}
	}
	if !found {
		return model.CheckoutSession{}, repo.ErrNotFound
	}
	return best, nil
}

func (f *fakeSessions) MarkVerifying(ctx context.Context, id string, reference string, now time.Time) error {
	cs, ok := f.s.sessions[id]
	if !ok {
		return repo.ErrNotFound
	}
	cs.Status = model.CheckoutStatusVerifying
	cs.Reference = reference
	cs.UpdatedAt = now
	f.s.sessions[id] = cs
	return nil
}

func (f *fakeSessions) Delete(ctx context.Context, id string) error {
	if _, ok := f.s.sessions[id]; !ok {
		return repo.ErrNotFound
	}
	delete(f.s.sessions, id)
	return nil
}

func (f *fakeSessions) DeleteExpiredStaged(ctx context.Context, now time.Time) (int64, error) {
	var n int64
	for id, cs := range f.s.sessions {
		if cs.Status == model.CheckoutStatusStaged && cs.ExpiresAt.Before(now) {
			delete(f.s.sessions, id)
			n++
		}
	}
	return n, nil
}

func (f *fakeSessions) ListVerifyingBefore(ctx context.Context, before time.Time, limit int) ([]model.CheckoutSession, error) {
	out := []model.CheckoutSession{}
	for _, cs := range f.s.sessions {
		if cs.Status == model.CheckoutStatusVerifying && cs.UpdatedAt.Before(before) {
			out = append(out, cs)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.Before(out[j].UpdatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ---- ledger

type fakeTransactions struct{ s *memStore }

func (f *fakeTransactions) Create(ctx context.Context, t model.Transaction) error {
	if err := f.s.fail("transactions.Create"); err != nil {
		return err
	}
	f.s.transactions[t.ID] = t
	return nil
}

func (f *fakeTransactions) FindByID(ctx context.Context, id string) (model.Transaction, error) {
	t, ok := f.s.transactions[id]
	if !ok {
		return model.Transaction{}, repo.ErrNotFound
	}
	return t, nil
}

func (f *fakeTransactions) UpdateStatus(ctx context.Context, id string, status model.LedgerStatus) error {
	t, ok := f.s.transactions[id]
	if !ok {
		return repo.ErrNotFound
	}
	t.Status = status
	f.s.transactions[id] = t
	return nil
}

type fakeReceipts struct{ s *memStore }

func (f *fakeReceipts) Create(ctx context.Context, r model.Receipt) error {
	f.s.receipts[r.ID] = r
	return nil
}

func (f *fakeReceipts) FindByID(ctx context.Context, id string) (model.Receipt, error) {
	r, ok := f.s.receipts[id]
	if !ok {
		return model.Receipt{}, repo.ErrNotFound
	}
	return r, nil
}

func (f *fakeReceipts) UpdateStatus(ctx context.Context, id string, status model.LedgerStatus) error {
	r, ok := f.s.receipts[id]
	if !ok {
		return repo.ErrNotFound
	}
	r.Status = status
	f.s.receipts[id] = r
	return nil
}

type fakeOrders struct{ s *memStore }

func (f *fakeOrders) Create(ctx context.Context, o model.Order) error {
	if err := f.s.fail("orders.Create"); err != nil {
		return err
	}
	f.s.orders[o.ID] = o
	return nil
}

func (f *fakeOrders) FindByIDForUpdate(ctx context.Context, id string) (model.Order, error) {
	o, ok := f.s.orders[id]
	if !ok {
		return model.Order{}, repo.ErrNotFound
	}
	return o, nil
}

func (f *fakeOrders) Delete(ctx context.Context, id string) error {
	if _, ok := f.s.orders[id]; !ok {
		return repo.ErrNotFound
	}
	delete(f.s.orders, id)
	return nil
}

type fakeFulfilled struct{ s *memStore }

func (f *fakeFulfilled) Create(ctx context.Context, x model.Fulfilled) error {
	if _, ok := f.s.fulfilled[x.OrderID]; ok {
		return repo.ErrDuplicate
	}
	f.s.fulfilled[x.OrderID] = x
	return nil
}

func (f *fakeFulfilled) FindByOrderID(ctx context.Context, orderID string) (model.Fulfilled, error) {
	x, ok := f.s.fulfilled[orderID]
	if !ok {
		return model.Fulfilled{}, repo.ErrNotFound
	}
	return x, nil
}

type fakeVerified struct{ s *memStore }

func (f *fakeVerified) FindByReference(ctx context.Context, reference string) (model.VerifiedTransaction, error) {
	v, ok := f.s.verified[reference]
	if !ok {
		return model.VerifiedTransaction{}, repo.ErrNotFound
	}
	return v, nil
}

func (f *fakeVerified) Create(ctx context.Context, v model.VerifiedTransaction) error {
	if _, ok := f.s.verified[v.Reference]; ok {
		return repo.ErrDuplicate
	}
	f.s.verified[v.Reference] = v
	return nil
}

// ---- outbox / audit

type fakeOutbox struct{ s *memStore }

func (f *fakeOutbox) Insert(ctx context.Context, topic string, key string, payload any) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	f.s.outbox = append(f.s.outbox, model.OutboxEvent{
		ID:      int64(len(f.s.outbox) + 1),
		EventID: fmt.Sprintf("evt-%d", len(f.s.outbox)+1),
		Topic:   topic,
		Key:     key,
		Payload: datatypes.JSON(b),
	})
	return nil
}

func (f *fakeOutbox) FetchPending(ctx context.Context, limit int) ([]model.OutboxEvent, error) {
	out := []model.OutboxEvent{}
	for _, e := range f.s.outbox {
		if e.SentAt == nil && len(out) < limit {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeOutbox) MarkSent(ctx context.Context, id int64) error {
	for i := range f.s.outbox {
		if f.s.outbox[i].ID == id {
			now := time.Now()
			f.s.outbox[i].SentAt = &now
			return nil
		}
	}
	return repo.ErrNotFound
}

type fakeAudit struct{ s *memStore }

func (f *fakeAudit) Create(ctx context.Context, l model.AuditLog) error {
	f.s.audits = append(f.s.audits, l)
	return nil
}

func (f *fakeAudit) List(ctx context.Context, filter repo.AuditLogFilter) ([]model.AuditLog, error) {
	out := []model.AuditLog{}
	for _, l := range f.s.audits {
		if filter.Action != nil && l.Action != *filter.Action {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

// ---- clock / ids

type fixedClock struct{ t time.Time }

func (c *fixedClock) Now() time.Time { return c.t }

type seqIDs struct{ n int }

func (g *seqIDs) NewID() string {
	g.n++
	return fmt.Sprintf("id-%03d", g.n)
}
