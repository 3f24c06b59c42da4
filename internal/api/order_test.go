package api

import (
	"testing"

	"github.com/agencydesk/agencydesk/internal/models"
)

func TestNormalizeOrderItems(t *testing.T) {
	items, amount := normalizeOrderItems([]models.OrderItem{
		{Name: "Design", Quantity: 2, Rate: 150, Total: 9999},
		{Name: "Hosting", Quantity: 12, Rate: 10},
	})

	if items[0].Total != 300 {
		t.Fatalf("first line total = %v, want client-sent total ignored", items[0].Total)
	}
	if items[1].Total != 120 {
		t.Fatalf("second line total = %v", items[1].Total)
	}
	if amount != 420 {
		t.Fatalf("amount = %v, want sum of recomputed lines", amount)
	}

	if _, amount := normalizeOrderItems(nil); amount != 0 {
		t.Fatalf("empty order amount = %v, want 0", amount)
	}
}
