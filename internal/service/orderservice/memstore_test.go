package orderservice

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/GlebRadaev/gofood/internal/domain"
	"github.com/GlebRadaev/gofood/internal/pg"
	"github.com/GlebRadaev/gofood/internal/service/cartservice"
	"github.com/GlebRadaev/gofood/internal/service/settlement"
)

// memStore is an in-memory database whose transactions are serialized by one mutex
// and rolled back from a snapshot on error.
type memStore struct {
	mu sync.Mutex

	accounts map[domain.AccountRef]domain.Account
	menu     map[int]domain.MenuItem
	cart     map[int][]domain.CartLine
	orders   map[int]domain.Order
	lines    map[int][]domain.OrderLine
	postings []domain.Posting
	events   []domain.OrderEvent
	nextID   int

	failLines error
}

type memSnapshot struct {
	accounts map[domain.AccountRef]domain.Account
	cart     map[int][]domain.CartLine
	orders   map[int]domain.Order
	lines    map[int][]domain.OrderLine
	postings []domain.Posting
	events   []domain.OrderEvent
	nextID   int
}

func newMemStore() *memStore {
	return &memStore{
		accounts: map[domain.AccountRef]domain.Account{},
		menu:     map[int]domain.MenuItem{},
		cart:     map[int][]domain.CartLine{},
		orders:   map[int]domain.Order{},
		lines:    map[int][]domain.OrderLine{},
	}
}

func (s *memStore) snapshot() memSnapshot {
	cart := make(map[int][]domain.CartLine, len(s.cart))
	for k, v := range s.cart {
		cart[k] = slices.Clone(v)
	}
	return memSnapshot{
		accounts: maps.Clone(s.accounts),
		cart:     cart,
		orders:   maps.Clone(s.orders),
		lines:    maps.Clone(s.lines),
		postings: slices.Clone(s.postings),
		events:   slices.Clone(s.events),
		nextID:   s.nextID,
	}
}

func (s *memStore) restore(snap memSnapshot) {
	s.accounts = snap.accounts
	s.cart = snap.cart
	s.orders = snap.orders
	s.lines = snap.lines
	s.postings = snap.postings
	s.events = snap.events
	s.nextID = snap.nextID
}

func (s *memStore) id() int {
	s.nextID++
	return s.nextID
}

func (s *memStore) addAccount(ref domain.AccountRef, balance string) {
	s.accounts[ref] = domain.Account{ID: s.id(), Kind: ref.Kind, OwnerID: ref.OwnerID, Balance: decimal.RequireFromString(balance)}
}

func (s *memStore) balance(ref domain.AccountRef) domain.Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accounts[ref]
}

type inMemTx struct{}

type memTX struct{ s *memStore }

func (m memTX) Begin(ctx context.Context, fn pg.TransactionalFn) error {
	if ctx.Value(inMemTx{}) != nil {
		return fn(ctx)
	}
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	snap := m.s.snapshot()
	if err := fn(context.WithValue(ctx, inMemTx{}, true)); err != nil {
		m.s.restore(snap)
		return err
	}
	return nil
}

type memOrders struct{ s *memStore }

func (r memOrders) Create(_ context.Context, order *domain.Order) (*domain.Order, error) {
	order.ID = r.s.id()
	r.s.orders[order.ID] = *order
	return order, nil
}

func (r memOrders) InsertLines(_ context.Context, orderID int, lines []domain.OrderLine) ([]domain.OrderLine, error) {
	if r.s.failLines != nil {
		return nil, r.s.failLines
	}
	saved := make([]domain.OrderLine, 0, len(lines))
	for _, l := range lines {
		l.ID, l.OrderID = r.s.id(), orderID
		saved = append(saved, l)
	}
	r.s.lines[orderID] = saved
	return saved, nil
}

func (r memOrders) FindByID(_ context.Context, id int) (*domain.Order, error) {
	order, ok := r.s.orders[id]
	if !ok {
		return nil, nil
	}
	return &order, nil
}

func (r memOrders) LockByID(ctx context.Context, id int) (*domain.Order, error) {
	return r.FindByID(ctx, id)
}

func (r memOrders) FindLines(_ context.Context, orderID int) ([]domain.OrderLine, error) {
	return r.s.lines[orderID], nil
}

func (r memOrders) List(_ context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	var out []domain.Order
	for _, o := range r.s.orders {
		if (filter.CustomerID == 0 || o.CustomerID == filter.CustomerID) &&
			(filter.RestaurantID == 0 || o.RestaurantID == filter.RestaurantID) &&
			(filter.Status == "" || o.Status == filter.Status) {
			out = append(out, o)
		}
	}
	slices.SortFunc(out, func(a, b domain.Order) int { return b.ID - a.ID })
	return out, nil
}

func (r memOrders) UpdateStatus(_ context.Context, order *domain.Order, from domain.OrderStatus) error {
	stored, ok := r.s.orders[order.ID]
	if !ok || stored.Status != from {
		return domain.ErrInvalidTransition
	}
	r.s.orders[order.ID] = *order
	return nil
}

type memAccounts struct{ s *memStore }

func (r memAccounts) LockByOwner(_ context.Context, ref domain.AccountRef) (*domain.Account, error) {
	acc, ok := r.s.accounts[ref]
	if !ok {
		return nil, nil
	}
	return &acc, nil
}

func (r memAccounts) ApplyPosting(_ context.Context, p domain.Posting) (*domain.Account, error) {
	acc, ok := r.s.accounts[p.Account]
	if !ok || acc.ID != p.AccountID {
		return nil, domain.ErrAccountNotFound
	}
	acc.Balance = acc.Balance.Add(p.BalanceDelta)
	acc.Held = acc.Held.Add(p.HeldDelta)
	r.s.accounts[p.Account] = acc
	return &acc, nil
}

func (r memAccounts) InsertPostings(_ context.Context, _ int, postings []domain.Posting) error {
	r.s.postings = append(r.s.postings, postings...)
	return nil
}

type memEvents struct{ s *memStore }

func (r memEvents) Insert(_ context.Context, event *domain.OrderEvent) error {
	r.s.events = append(r.s.events, *event)
	return nil
}

type memCart struct{ s *memStore }

func (r memCart) FindLines(_ context.Context, customerID int) ([]domain.CartLine, error) {
	return slices.Clone(r.s.cart[customerID]), nil
}

func (r memCart) LockLines(ctx context.Context, customerID int) ([]domain.CartLine, error) {
	return r.FindLines(ctx, customerID)
}

func (r memCart) Add(_ context.Context, customerID, menuItemID, quantity int) (*domain.CartLine, error) {
	lines := r.s.cart[customerID]
	for i := range lines {
		if lines[i].MenuItemID == menuItemID {
			lines[i].Quantity += quantity
			line := lines[i]
			return &line, nil
		}
	}
	line := domain.CartLine{CustomerID: customerID, MenuItemID: menuItemID, Quantity: quantity}
	r.s.cart[customerID] = append(lines, line)
	return &line, nil
}

func (r memCart) Decrement(_ context.Context, customerID, menuItemID int) (int, error) {
	lines := r.s.cart[customerID]
	for i := range lines {
		if lines[i].MenuItemID != menuItemID {
			continue
		}
		if lines[i].Quantity > 1 {
			lines[i].Quantity--
			return lines[i].Quantity, nil
		}
		r.s.cart[customerID] = slices.Delete(lines, i, i+1)
		return 0, nil
	}
	return 0, nil
}

func (r memCart) Clear(_ context.Context, customerID int) error {
	delete(r.s.cart, customerID)
	return nil
}

type memCatalog struct{ s *memStore }

func (r memCatalog) FindByID(_ context.Context, id int) (*domain.MenuItem, error) {
	item, ok := r.s.menu[id]
	if !ok {
		return nil, nil
	}
	return &item, nil
}

func (r memCatalog) FindByIDs(_ context.Context, ids []int) ([]domain.MenuItem, error) {
	var items []domain.MenuItem
	for _, id := range ids {
		if item, ok := r.s.menu[id]; ok {
			items = append(items, item)
		}
	}
	return items, nil
}

// newMemService wires the real cart service and settlement engine over memStore.
func newMemService(s *memStore) *Service {
	tx := memTX{s: s}
	cart := cartservice.New(memCart{s: s}, memCatalog{s: s})
	engine := settlement.New(memAccounts{s: s}, memOrders{s: s}, memEvents{s: s}, tx)
	return New(memOrders{s: s}, memEvents{s: s}, cart, engine, tx, decimal.RequireFromString("0.15"))
}
