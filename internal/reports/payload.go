package reports

import (
	"encoding/json"
	"time"

	"github.com/angelmondragon/pharmacy-backend/pkg/enums"
)

type Growth struct {
	Sales     float64 `json:"sales"`
	Orders    float64 `json:"orders"`
	Customers float64 `json:"customers"`
}

type Overview struct {
	Period            string  `json:"period"`
	TotalSales        float64 `json:"totalSales"`
	TotalOrders       int     `json:"totalOrders"`
	PaidOrders        int     `json:"paidOrders"`
	TotalCustomers    int     `json:"totalCustomers"`
	AverageOrderValue float64 `json:"averageOrderValue"`
	Growth            Growth  `json:"growth"`
}

type MedicineRow struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Category     string  `json:"category"`
	Seller       string  `json:"seller"`
	QuantitySold int     `json:"quantitySold"`
	Revenue      float64 `json:"revenue"`
	AvgPrice     float64 `json:"avgPrice"`
}

type SellerRow struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	Email             string  `json:"email"`
	TotalSales        float64 `json:"totalSales"`
	TotalOrders       int     `json:"totalOrders"`
	TotalMedicines    int     `json:"totalMedicines"`
	AverageOrderValue float64 `json:"averageOrderValue"`
	Commission        float64 `json:"commission"`
}

type CustomerRow struct {
	ID                string     `json:"id"`
	Name              string     `json:"name"`
	Email             string     `json:"email"`
	TotalSpent        float64    `json:"totalSpent"`
	TotalOrders       int        `json:"totalOrders"`
	AverageOrderValue float64    `json:"averageOrderValue"`
	LastOrderDate     *time.Time `json:"lastOrderDate"`
}

// Report is one built report. Only the section matching Type is encoded; an
// unknown type encodes as an empty object.
type Report struct {
	Type      enums.ReportType `json:"-"`
	Overview  *Overview        `json:"overview,omitempty"`
	Medicines []MedicineRow    `json:"medicines,omitempty"`
	Sellers   []SellerRow      `json:"sellers,omitempty"`
	Customers []CustomerRow    `json:"customers,omitempty"`
}

func (r Report) MarshalJSON() ([]byte, error) {
	switch r.Type {
	case enums.ReportTypeOverview:
		return json.Marshal(struct {
			Overview *Overview `json:"overview"`
		}{r.Overview})
	case enums.ReportTypeMedicines:
		return json.Marshal(struct {
			Medicines []MedicineRow `json:"medicines"`
		}{nonNil(r.Medicines)})
	case enums.ReportTypeSellers:
		return json.Marshal(struct {
			Sellers []SellerRow `json:"sellers"`
		}{nonNil(r.Sellers)})
	case enums.ReportTypeCustomers:
		return json.Marshal(struct {
			Customers []CustomerRow `json:"customers"`
		}{nonNil(r.Customers)})
	default:
		return []byte("{}"), nil
	}
}

func nonNil[T any](rows []T) []T {
	if rows == nil {
		return []T{}
	}
	return rows
}
