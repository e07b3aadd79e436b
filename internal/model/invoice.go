package model

import "time"

// Payment status values for invoices.
const (
	PaymentStatusUnpaid = "Unpaid"
	PaymentStatusPaid   = "Paid"
)

// Currencies lists the accepted invoice currencies.
var Currencies = []string{"USD", "EUR", "GEL"}

// ValidCurrency reports whether s is an accepted currency code.
func ValidCurrency(s string) bool {
	for _, c := range Currencies {
		if c == s {
			return true
		}
	}
	return false
}

// Invoice mirrors the `invoices` table.  Every service request gets an
// Unpaid invoice at creation; flipping it to Paid while the request is
// still in "Waiting for Payment" advances the request to "Pending" in
// the same transaction.
//
// Fields:
//  ID               – primary key identifier.
//  ServiceRequestID – request this invoice bills (nullable for legacy rows).
//  FirstName        – billed customer's given name.
//  LastName         – billed customer's family name.
//  Address          – billing address.
//  Email            – billing email.
//  Phone            – billing phone.
//  InvoiceDate      – issue timestamp.
//  Price            – free-form price text, set by the owner.
//  Currency         – one of Currencies.
//  PaymentStatus    – Unpaid or Paid.
//  UpdatedAt        – last edit timestamp (nullable).
type Invoice struct {
	ID               uint64     // invoices.id
	ServiceRequestID *uint64    // invoices.service_request_id (nullable)
	FirstName        string     // invoices.first_name
	LastName         string     // invoices.last_name
	Address          string     // invoices.address
	Email            string     // invoices.email
	Phone            string     // invoices.phone
	InvoiceDate      time.Time  // invoices.invoice_date
	Price            string     // invoices.price
	Currency         string     // invoices.currency
	PaymentStatus    string     // invoices.payment_status
	UpdatedAt        *time.Time // invoices.updated_at (nullable)
}

// Inventory mirrors the `inventory` table of spare parts kept by the
// owner.
//
// Fields:
//  ID           – primary key identifier.
//  ItemNumber   – unique stock keeping number.
//  ItemName     – display name.
//  ItemQuantity – units in stock.
//  ItemPrice    – unit price as decimal text.
type Inventory struct {
	ID           uint64 // inventory.id
	ItemNumber   string // inventory.item_number
	ItemName     string // inventory.item_name
	ItemQuantity uint32 // inventory.item_quantity
	ItemPrice    string // inventory.item_price
}
