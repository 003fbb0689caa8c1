package enum

// ── Order state machine (CHECK constrained in DB) ──

const (
	OrderStatusPending          = "PENDING"
	OrderStatusInProduction     = "IN_PRODUCTION"
	OrderStatusReadyForDelivery = "READY_FOR_DELIVERY"
	OrderStatusDelivered        = "DELIVERED"
	OrderStatusCompleted        = "COMPLETED"
	OrderStatusCancelled        = "CANCELLED"
)

const (
	OrderTypeSale       = "SALE"
	OrderTypeProduction = "PRODUCTION"
)

// ── Payment methods (sale orders only) ──

const (
	PaymentMethodCash     = "CASH"
	PaymentMethodPix      = "PIX"
	PaymentMethodCard     = "CARD"
	PaymentMethodTransfer = "TRANSFER"
)

// ── Catalog labels ──

const (
	CategoryShirts    = "SHIRTS"
	CategoryPants     = "PANTS"
	CategoryOuterwear = "OUTERWEAR"
)

// Size charts: numeric sizes for children, letter sizes for adults.
var (
	ChildSizes = []string{"2", "4", "6", "8", "10", "12"}
	AdultSizes = []string{"PP", "P", "M", "G", "GG"}
)

// IsValidStatus reports whether s is one of the order statuses.
func IsValidStatus(s string) bool {
	switch s {
	case OrderStatusPending, OrderStatusInProduction, OrderStatusReadyForDelivery,
		OrderStatusDelivered, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

// IsValidOrderType reports whether s is SALE or PRODUCTION.
func IsValidOrderType(s string) bool {
	return s == OrderTypeSale || s == OrderTypeProduction
}

// IsValidPaymentMethod reports whether s is a known payment method.
func IsValidPaymentMethod(s string) bool {
	switch s {
	case PaymentMethodCash, PaymentMethodPix, PaymentMethodCard, PaymentMethodTransfer:
		return true
	}
	return false
}

// IsValidCategory reports whether s is a known product category.
func IsValidCategory(s string) bool {
	switch s {
	case CategoryShirts, CategoryPants, CategoryOuterwear:
		return true
	}
	return false
}

// IsValidSize reports whether s appears in either size chart.
func IsValidSize(s string) bool {
	for _, v := range ChildSizes {
		if s == v {
			return true
		}
	}
	for _, v := range AdultSizes {
		if s == v {
			return true
		}
	}
	return false
}
