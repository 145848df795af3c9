package reports

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var today = time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC)

func TestRenderOverviewCSV(t *testing.T) {
	out, err := Render("csv", "overview", Report{Overview: &Overview{TotalSales: 300, TotalOrders: 2, TotalCustomers: 2, AverageOrderValue: 150}}, today)
	require.NoError(t, err)

	assert.Equal(t, "sales-report-overview-2025-02-01.csv", out.Filename)
	assert.Equal(t, "text/csv", out.ContentType)
	assert.Equal(t, "Report Data\nMetric,Value\nTotal Sales,300\nTotal Orders,2\nTotal Customers,2\nAverage Order Value,150\n", string(out.Body))
}

func TestRenderQuotesFields(t *testing.T) {
	last := time.Date(2025, 1, 20, 8, 0, 0, 0, time.UTC)
	out, err := Render("CSV", "customers", Report{Customers: []CustomerRow{
		{Name: "Doe, Jane", Email: "jane@x.com", TotalSpent: 12.5, TotalOrders: 1, AverageOrderValue: 12.5, LastOrderDate: &last},
	}}, today)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(out.Body)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Customer,Email,Total Spent,Orders,Avg. Order Value,Last Order", lines[1])
	assert.Equal(t, `"Doe, Jane",jane@x.com,12.5,1,12.5,2025-01-20T08:00:00Z`, lines[2])
}

func TestRenderSellersAndMedicinesHeaders(t *testing.T) {
	out, err := Render("csv", "sellers", Report{Sellers: []SellerRow{{Name: "Pharma", TotalSales: 38, TotalOrders: 2, TotalMedicines: 4, AverageOrderValue: 19, Commission: 3.8}}}, today)
	require.NoError(t, err)
	assert.Contains(t, string(out.Body), "Seller,Total Sales,Orders,Medicines,Avg. Order Value,Commission\nPharma,38,2,4,19,3.8\n")

	out, err = Render("csv", "medicines", Report{}, today)
	require.NoError(t, err)
	assert.Equal(t, "Report Data\nMedicine,Category,Quantity Sold,Revenue,Avg. Price,Seller\n", string(out.Body))
}

func TestRenderPDFPlaceholderAndUnsupported(t *testing.T) {
	out, err := Render("pdf", "sellers", Report{}, today)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", out.ContentType)
	assert.Equal(t, "sales-report-sellers-2025-02-01.pdf", out.Filename)
	assert.Equal(t, "PDF Report for sellers - This is a placeholder PDF content", string(out.Body))

	_, err = Render("xlsx", "sellers", Report{}, today)
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
}
