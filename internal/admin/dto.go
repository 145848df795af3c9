package admin

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/pharmacy-backend/internal/orders"
	"github.com/angelmondragon/pharmacy-backend/pkg/enums"
	"github.com/angelmondragon/pharmacy-backend/pkg/pagination"
)

type Overview struct {
	TotalUsers     int64   `json:"totalUsers"`
	TotalSellers   int64   `json:"totalSellers"`
	TotalMedicines int64   `json:"totalMedicines"`
	TotalOrders    int64   `json:"totalOrders"`
	TotalRevenue   float64 `json:"totalRevenue"`
	PaidTotal      float64 `json:"paidTotal"`
	PendingTotal   float64 `json:"pendingTotal"`
}

type RecentUser struct {
	ID        uuid.UUID      `json:"id"`
	Name      string         `json:"name"`
	Email     string         `json:"email"`
	Role      enums.UserRole `json:"role"`
	IsActive  bool           `json:"isActive"`
	CreatedAt time.Time      `json:"createdAt"`
}

type PendingPayment struct {
	ID       uuid.UUID `json:"id"`
	Amount   float64   `json:"amount"`
	Customer string    `json:"customer"`
	Email    string    `json:"email"`
	Date     time.Time `json:"date"`
}

type PaymentMedicine struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

type PaymentDetails struct {
	CardLast4     string `json:"cardLast4"`
	TransactionID string `json:"transactionId"`
}

type PaymentView struct {
	ID             uuid.UUID           `json:"id"`
	OrderID        string              `json:"orderId"`
	CustomerName   string              `json:"customerName"`
	CustomerEmail  string              `json:"customerEmail"`
	Amount         float64             `json:"amount"`
	PaymentMethod  string              `json:"paymentMethod"`
	Status         enums.PaymentStatus `json:"status"`
	CreatedAt      time.Time           `json:"createdAt"`
	AcceptedAt     *time.Time          `json:"acceptedAt"`
	RejectedAt     *time.Time          `json:"rejectedAt"`
	Medicines      []PaymentMedicine   `json:"medicines"`
	PaymentDetails PaymentDetails      `json:"paymentDetails"`
}

type PaymentViewList struct {
	Payments   []PaymentView   `json:"payments"`
	Pagination pagination.Page `json:"pagination"`
}

// Decision is the result of an admin payment accept or reject.
type Decision struct {
	Message string          `json:"message"`
	Order   orders.OrderDTO `json:"order"`
}

// Stats is the public storefront summary.
type Stats struct {
	Products  int64 `json:"products"`
	Customers int64 `json:"customers"`
	Support   int64 `json:"support"`
}
