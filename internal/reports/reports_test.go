package reports

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/alfajarsadiq/admincontrol/pkg/models"
)

func sampleOrders() []*models.Order {
	return []*models.Order{
		{
			OrderID:          "ORD-10001",
			Salesperson:      "Asha",
			CompanyName:      "Harbor Foods",
			CompanyNumber:    "555-0101",
			DeliveryLocation: "Deira",
			DeliveryDate:     "2026-08-30",
			Status:           models.StatusDispatched,
			Items: []models.OrderItem{
				{ProductID: "p1", Name: "Basmati Rice 5kg", Quantity: 10},
				{ProductID: "p2", Name: "Sunflower Oil 1L", Quantity: 24},
			},
			CreatedAt: time.Now(),
		},
		{
			OrderID:          "ORD-10002",
			Salesperson:      "Ravi",
			CompanyName:      "Gulf Grocers",
			DeliveryLocation: "Al Quoz",
			DeliveryDate:     "2026-08-30",
			Status:           models.StatusConfirmed,
			Items: []models.OrderItem{
				{ProductID: "p1", Name: "Basmati Rice 5kg", Quantity: 5},
			},
		},
		{
			OrderID:      "ORD-10003",
			Salesperson:  "Ravi",
			CompanyName:  "No Location Trading",
			DeliveryDate: "2026-08-30",
			Status:       models.StatusConfirmed,
		},
	}
}

func TestLocationsDistinctSorted(t *testing.T) {
	orders := sampleOrders()
	orders = append(orders, &models.Order{OrderID: "ORD-10004", DeliveryLocation: "Deira"})

	got := Locations(orders)
	want := []string{"Al Quoz", "Deira"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("expected %v, got %v", want, got)
		}
	}
}

func TestFilename(t *testing.T) {
	if got := Filename("2026-08-30", ""); got != "deliveries-2026-08-30.csv" {
		t.Errorf("unexpected filename %q", got)
	}
	if got := Filename("2026-08-30", "Al Quoz"); got != "deliveries-2026-08-30-al-quoz.csv" {
		t.Errorf("unexpected filename %q", got)
	}
}

func TestWriteDeliveryCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteDeliveryCSV(&buf, sampleOrders()); err != nil {
		t.Fatalf("failed to write csv: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header plus 3 rows, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], "Order ID,") {
		t.Errorf("unexpected header: %s", lines[0])
	}
	if !strings.Contains(lines[1], "Basmati Rice 5kg x10; Sunflower Oil 1L x24") {
		t.Errorf("items summary missing from row: %s", lines[1])
	}
	if !strings.Contains(lines[1], "Dispatched") {
		t.Errorf("status missing from row: %s", lines[1])
	}
}
