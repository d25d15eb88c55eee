// Package billing queries the external billing provider for customers and
// duplicate invoices ("segunda via").
package billing

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrCustomerNotFound is returned by Lookup when no customer matches the tax id.
var ErrCustomerNotFound = errors.New("customer not found")

// ErrEmptyTaxID is returned by Lookup when the tax id is blank after normalisation.
var ErrEmptyTaxID = errors.New("tax id is empty")

// Customer is a record returned by the customer search.
type Customer struct {
	Code  int64  `json:"cod_cliente"`
	TaxID string `json:"cpfcnpj"`
	Name  string `json:"nome,omitempty"`
}

// Invoice is the duplicate invoice returned by the provider.
type Invoice struct {
	Message string `json:"msg"`
	PDFURL  string `json:"caminho_pdf"`
	Barcode string `json:"cod_barras"`
}

// Client is the billing provider contract.
type Client interface {
	FindCustomers(ctx context.Context, taxID string) ([]Customer, error)
	DuplicateInvoice(ctx context.Context, chargeCode, customerCode int64) (*Invoice, error)
}

// Result is a completed lookup.
type Result struct {
	TaxID    string
	Customer Customer
	Invoice  Invoice
}

// Lookup finds the customer for taxID and requests a duplicate invoice for
// chargeCode. The second call is made only when a customer is found.
func Lookup(ctx context.Context, c Client, taxID string, chargeCode int64) (*Result, error) {
	taxID = NormalizeTaxID(taxID)
	if taxID == "" {
		return nil, ErrEmptyTaxID
	}

	customers, err := c.FindCustomers(ctx, taxID)
	if err != nil {
		return nil, fmt.Errorf("find customer: %w", err)
	}
	if len(customers) == 0 {
		return nil, ErrCustomerNotFound
	}
	customer := customers[0]

	inv, err := c.DuplicateInvoice(ctx, chargeCode, customer.Code)
	if err != nil {
		return nil, fmt.Errorf("duplicate invoice: %w", err)
	}
	return &Result{TaxID: taxID, Customer: customer, Invoice: *inv}, nil
}

// NormalizeTaxID trims a CPF/CNPJ and strips the usual punctuation.
func NormalizeTaxID(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '.', '-', '/', ' ', '\t':
			return -1
		}
		return r
	}, strings.TrimSpace(s))
}
