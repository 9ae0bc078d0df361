package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Role string

const (
	RoleCustomer   Role = "customer"
	RoleRestaurant Role = "restaurant"
)

func (r Role) Valid() bool {
	return r == RoleCustomer || r == RoleRestaurant
}

// Identity is the authenticated caller of a core operation.
type Identity struct {
	UserID int
	Role   Role
}

type User struct {
	ID           int       `db:"id"`
	Login        string    `db:"login"`
	PasswordHash string    `db:"password_hash"`
	Role         Role      `db:"role"`
	CreatedAt    time.Time `db:"created_at"`
}

type AccountKind string

const (
	AccountCustomer   AccountKind = "customer"
	AccountRestaurant AccountKind = "restaurant"
	AccountPlatform   AccountKind = "platform"
)

// PlatformOwnerID is the owner id of the single platform account.
const PlatformOwnerID = 0

// AccountRef addresses an account by owner rather than by row id.
type AccountRef struct {
	Kind    AccountKind
	OwnerID int
}

func CustomerAccount(customerID int) AccountRef {
	return AccountRef{Kind: AccountCustomer, OwnerID: customerID}
}

func RestaurantAccount(restaurantID int) AccountRef {
	return AccountRef{Kind: AccountRestaurant, OwnerID: restaurantID}
}

func PlatformAccount() AccountRef {
	return AccountRef{Kind: AccountPlatform, OwnerID: PlatformOwnerID}
}

// AccountKindFor maps a user role to the kind of ledger account it owns.
func AccountKindFor(role Role) AccountKind {
	if role == RoleRestaurant {
		return AccountRestaurant
	}
	return AccountCustomer
}

type Account struct {
	ID        int             `db:"id"`
	Kind      AccountKind     `db:"kind"`
	OwnerID   int             `db:"owner_id"`
	Balance   decimal.Decimal `db:"balance_cents"`
	Held      decimal.Decimal `db:"held_cents"`
	UpdatedAt time.Time       `db:"updated_at"`
}

func (a *Account) Ref() AccountRef {
	return AccountRef{Kind: a.Kind, OwnerID: a.OwnerID}
}

// Available is the part of the balance not reserved by holds.
func (a *Account) Available() decimal.Decimal {
	return a.Balance.Sub(a.Held)
}

type PostingReason string

const (
	ReasonHold        PostingReason = "hold"
	ReasonPlatformFee PostingReason = "platform_fee"
	ReasonCapture     PostingReason = "capture"
	ReasonPayout      PostingReason = "payout"
	ReasonRelease     PostingReason = "release"
	ReasonRefund      PostingReason = "refund"
)

// Posting is one balance adjustment of one account tied to an order event.
type Posting struct {
	Account      AccountRef
	AccountID    int
	BalanceDelta decimal.Decimal
	HeldDelta    decimal.Decimal
	Reason       PostingReason
}

type MenuItem struct {
	ID           int             `db:"id"`
	RestaurantID int             `db:"restaurant_id"`
	Name         string          `db:"name"`
	Description  string          `db:"description"`
	Price        decimal.Decimal `db:"price_cents"`
	Available    bool            `db:"available"`
}

type CartLine struct {
	CustomerID int `db:"customer_id"`
	MenuItemID int `db:"menu_item_id"`
	Quantity   int `db:"quantity"`
}

// PricedLine is a cart line joined with the live catalog entry.
type PricedLine struct {
	CartLine
	Item MenuItem
}

func (l PricedLine) Subtotal() decimal.Decimal {
	return l.Item.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart is the priced content of a customer's cart.
type Cart struct {
	CustomerID   int
	RestaurantID int
	Lines        []PricedLine
}

// Total is the sum of line subtotals rounded to cents.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.Lines {
		total = total.Add(l.Subtotal())
	}
	return Round2(total)
}

type Order struct {
	ID               int             `db:"id"`
	CustomerID       int             `db:"customer_id"`
	RestaurantID     int             `db:"restaurant_id"`
	Status           OrderStatus     `db:"status"`
	CustomerStatus   CustomerStatus  `db:"customer_status"`
	TotalAmount      decimal.Decimal `db:"total_cents"`
	PlatformFee      decimal.Decimal `db:"platform_fee_cents"`
	RestaurantAmount decimal.Decimal `db:"restaurant_amount_cents"`
	Notes            string          `db:"notes"`
	CreatedAt        time.Time       `db:"created_at"`
	UpdatedAt        time.Time       `db:"updated_at"`
	Lines            []OrderLine
}

// OrderLine freezes the catalog data of an item at order time.
type OrderLine struct {
	ID        int             `db:"id"`
	OrderID   int             `db:"order_id"`
	ItemName  string          `db:"item_name"`
	ItemPrice decimal.Decimal `db:"item_price_cents"`
	Quantity  int             `db:"quantity"`
}

func (l OrderLine) Subtotal() decimal.Decimal {
	return l.ItemPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// OwnedBy reports whether the identity is a party of the order.
func (o *Order) OwnedBy(actor Identity) bool {
	switch actor.Role {
	case RoleCustomer:
		return o.CustomerID == actor.UserID
	case RoleRestaurant:
		return o.RestaurantID == actor.UserID
	}
	return false
}

type OrderFilter struct {
	CustomerID   int
	RestaurantID int
	Status       OrderStatus
}

type EventType string

const (
	EventOrderCreated       EventType = "order_created"
	EventOrderStatusChanged EventType = "order_status_changed"
)

type OrderEvent struct {
	ID          uuid.UUID       `db:"id"`
	OrderID     int             `db:"order_id"`
	Type        EventType       `db:"type"`
	Payload     json.RawMessage `db:"payload"`
	CreatedAt   time.Time       `db:"created_at"`
	PublishedAt *time.Time      `db:"published_at"`
}
