package backend

import "time"

type UserStatus struct {
	Registered bool   `json:"registered"`
	LoggedIn   bool   `json:"loggedIn"`
	Name       string `json:"name,omitempty"`
}

func (s UserStatus) Authenticated() bool {
	return s.Registered && s.LoggedIn
}

type Registration struct {
	UserID int64  `json:"userId"`
	Name   string `json:"name"`
	Phone  string `json:"phone"`
	Email  string `json:"email"`
}

type RegistrationResult struct {
	Message   string `json:"message"`
	LoginCode string `json:"loginCode"`
}

type loginRequest struct {
	UserID int64  `json:"userId"`
	Code   string `json:"code"`
}

type LoginResult struct {
	Message string `json:"message"`
	Name    string `json:"name"`
}

type userRequest struct {
	UserID int64 `json:"userId"`
}

type Product struct {
	Barcode     string `json:"barcode"`
	Name        string `json:"name"`
	Price       int    `json:"price"`
	Category    string `json:"category,omitempty"`
	Description string `json:"description,omitempty"`
}

// CartItem is a product snapshot with a quantity. A line decremented to zero or below holds no units.
type CartItem struct {
	Product
	Quantity int `json:"quantity,omitempty"`
}

func (i CartItem) Units() int {
	if i.Quantity <= 0 {
		return 0
	}
	return i.Quantity
}

func (i CartItem) Subtotal() int {
	return i.Price * i.Units()
}

type addToCartRequest struct {
	UserID   int64  `json:"userId"`
	Barcode  string `json:"barcode"`
	Quantity int    `json:"quantity"`
}

type OrderRequest struct {
	UserID        int64      `json:"userId"`
	Items         []CartItem `json:"items"`
	TotalAmount   int        `json:"totalAmount"`
	PaymentMethod string     `json:"paymentMethod"`
	PaymentRef    string     `json:"paymentRef"`
}

type OrderResponse struct {
	OrderID string `json:"orderId"`
	Message string `json:"message"`
}

type Order struct {
	OrderID       string     `json:"orderId"`
	Items         []CartItem `json:"items"`
	Total         float64    `json:"total"`
	PaymentMethod string     `json:"paymentMethod"`
	PaymentRef    string     `json:"paymentRef"`
	Status        string     `json:"status"`
	CreatedAt     time.Time  `json:"createdAt"`
}

type StaffMember struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	Name     string `json:"name"`
}

type Analytics struct {
	TotalSales    float64 `json:"totalSales"`
	TotalOrders   int     `json:"totalOrders"`
	TotalProducts int     `json:"totalProducts"`
	TotalUsers    int     `json:"totalUsers"`
}

type BulkResult struct {
	Message string `json:"message"`
	Added   int    `json:"added"`
	Updated int    `json:"updated"`
}
