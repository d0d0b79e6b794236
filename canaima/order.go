package canaima

import "github.com/cafecanaima/canaima/canaima/httperr"

// DateLayout is the layout orders store their date in.
const DateLayout = "2006-01-02"

type Order struct {
	ID            int64   `json:"id"             db:"id"`
	CustomerID    int64   `json:"customer_id"    db:"customer"`
	QuantityItems int     `json:"quantity_items" db:"quantity"`
	Date          string  `json:"date"           db:"date"`
	Total         float64 `json:"total"          db:"total"`
	// Items is queried separately.
	Items []OrderItem `json:"items" db:"-"`
}

type OrderItem struct {
	ProductID int64   `json:"product_id" db:"productid"`
	Quantity  int     `json:"quantity"   db:"quantity"`
	UnitPrice float64 `json:"unit_price" db:"unitprice"`
}

// OrderRequest is the body of a new order.
type OrderRequest struct {
	Items []OrderRequestItem `json:"items" schema:"items"`
}

type OrderRequestItem struct {
	ProductID int64 `json:"product_id" schema:"product_id"`
	Quantity  int   `json:"quantity"   schema:"quantity"`
}

// MaxOrderItems is the maximum number of lines in one order.
const MaxOrderItems = 50

// MaxItemQuantity is the maximum quantity of a single order line.
const MaxItemQuantity = 1000

func (o OrderRequest) Validate() error {
	if len(o.Items) == 0 {
		return ErrEmptyOrder
	}
	if len(o.Items) > MaxOrderItems {
		return ErrOrderTooLarge
	}
	for _, item := range o.Items {
		if item.Quantity < 1 {
			return ErrInvalidQuantity
		}
		if item.Quantity > MaxItemQuantity {
			return ErrQuantityTooLarge
		}
	}
	return nil
}

type Favorite struct {
	ID        int64  `json:"id"         db:"id"`
	UserID    int64  `json:"user_id"    db:"userid"`
	ProductID *int64 `json:"product_id" db:"productid"`
	OrderID   *int64 `json:"order_id"   db:"orderid"`
}

// FavoriteRequest is the body of a new favorite. At least one of the IDs must
// be set.
type FavoriteRequest struct {
	ProductID *int64 `json:"product_id" schema:"product_id"`
	OrderID   *int64 `json:"order_id"   schema:"order_id"`
}

func (f FavoriteRequest) Validate() error {
	if f.ProductID == nil && f.OrderID == nil {
		return ErrEmptyFavorite
	}
	return nil
}

var (
	ErrOrderNotFound    = httperr.New(404, "order not found")
	ErrEmptyOrder       = httperr.New(400, "order has no items")
	ErrOrderTooLarge    = httperr.New(400, "order has too many items")
	ErrInvalidQuantity  = httperr.New(400, "quantity must be positive")
	ErrQuantityTooLarge = httperr.New(400, "quantity is over 1000 limit")
	ErrFavoriteNotFound = httperr.New(404, "favorite not found")
	ErrEmptyFavorite    = httperr.New(400, "favorite needs a product or an order")
	ErrFavoriteExists   = httperr.New(409, "favorite already exists")
)
