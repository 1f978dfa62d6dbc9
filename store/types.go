package store

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// 1. ReferenceType points at another entity by id, e.g. the customer of an invoice.
type ReferenceType struct {
	Value string `json:"value"`
	Name  string `json:"name,omitempty"`
}

// 2. PhysicalAddress is a billing or shipping address.
type PhysicalAddress struct {
	Line1      string `json:"line1"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode,omitempty"`
	Country    string `json:"country,omitempty"`
}

// 3. ModificationMetaData is attached to every entity by the accounting backend.
type ModificationMetaData struct {
	CreateTime      time.Time  `json:"createTime"`
	LastUpdatedTime *time.Time `json:"lastUpdatedTime"`
}

// 4. Entity carries the fields shared by every entity, promoted into the embedding record.
type Entity struct {
	ID        uuid.UUID             `json:"id"`
	SyncToken string                `json:"syncToken"`
	MetaData  *ModificationMetaData `json:"metaData"`
}

// 5. Customer is a party invoices are issued to.
// Balance uses decimal.Decimal to avoid floating-point rounding of amounts.
type Customer struct {
	Entity

	DisplayName string           `json:"displayName"`
	Active      bool             `json:"active"`
	Balance     decimal.Decimal  `json:"balance"`
	BillAddr    *PhysicalAddress `json:"billAddr"`
	Notes       string           `tabular:"-"`
}

// 6. Invoice is a sale issued to a customer.
type Invoice struct {
	Entity

	DocNumber   string          `json:"docNumber"`
	TxnDate     time.Time       `json:"txnDate" tabular:",date"`
	Status      InvoiceStatus   `json:"status"`
	CustomerRef ReferenceType   `json:"customerRef"`
	Lines       []Line          `json:"line"`
	TotalAmt    decimal.Decimal `json:"totalAmt"`
	Tags        []string        `json:"tags"`
}

// 7. Line is one line of an invoice. Only sales lines carry an item detail.
type Line struct {
	LineNum     int32            `json:"lineNum"`
	Amount      decimal.Decimal  `json:"amount"`
	Description string           `json:"description,omitempty"`
	Detail      *SalesItemDetail `json:"salesItemLineDetail"`
}

// 8. SalesItemDetail describes the item sold on a line.
type SalesItemDetail struct {
	ItemRef   ReferenceType `json:"itemRef"`
	Qty       float64       `json:"qty"`
	UnitPrice float64       `json:"unitPrice"`
}

// 9. InvoiceStatus is a custom type for type-safe status handling.
type InvoiceStatus string

const (
	StatusDraft   InvoiceStatus = "DRAFT"
	StatusPending InvoiceStatus = "PENDING"
	StatusPaid    InvoiceStatus = "PAID"
	StatusVoided  InvoiceStatus = "VOIDED"
)
