// Package reports renders delivery schedules for download. The store exposes
// these as CSV because the warehouse team imports them into spreadsheets.
package reports

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/alfajarsadiq/admincontrol/pkg/models"
)

var csvHeader = []string{
	"Order ID", "Company", "Company Number", "Salesperson",
	"Delivery Location", "Delivery Date", "Status", "Items",
}

// Locations returns the distinct delivery locations across the given orders,
// sorted, with blanks skipped.
func Locations(orders []*models.Order) []string {
	seen := make(map[string]bool)
	var out []string
	for _, o := range orders {
		if o.DeliveryLocation == "" || seen[o.DeliveryLocation] {
			continue
		}
		seen[o.DeliveryLocation] = true
		out = append(out, o.DeliveryLocation)
	}
	sort.Strings(out)
	return out
}

// Filename names a delivery report download for a date and optional location.
func Filename(date, location string) string {
	if location == "" {
		return fmt.Sprintf("deliveries-%s.csv", date)
	}
	slug := strings.ToLower(strings.ReplaceAll(location, " ", "-"))
	return fmt.Sprintf("deliveries-%s-%s.csv", date, slug)
}

// WriteDeliveryCSV renders one row per order with its items collapsed into a
// single cell.
func WriteDeliveryCSV(w io.Writer, orders []*models.Order) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, o := range orders {
		row := []string{
			o.OrderID,
			o.CompanyName,
			o.CompanyNumber,
			o.Salesperson,
			o.DeliveryLocation,
			o.DeliveryDate,
			string(o.Status),
			itemsSummary(o.Items),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func itemsSummary(items []models.OrderItem) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		parts = append(parts, item.Name+" x"+strconv.Itoa(item.Quantity))
	}
	return strings.Join(parts, "; ")
}
