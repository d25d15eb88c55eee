package store

import "time"

// RecordInvoice appends a lookup to the history.
func (db *DB) RecordInvoice(l *InvoiceLookup) error {
	if l.CreatedAt == 0 {
		l.CreatedAt = time.Now().UnixMilli()
	}
	res, err := db.Exec(`
		INSERT INTO invoice_lookups (ticket_id, tax_id, customer_code, charge_code, message, pdf_url, barcode, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		l.TicketID, l.TaxID, l.CustomerCode, l.ChargeCode, l.Message, l.PDFURL, l.Barcode, l.CreatedAt)
	if err != nil {
		return err
	}
	l.ID, err = res.LastInsertId()
	return err
}

// RecentInvoices returns the latest lookups, newest first. An empty taxID lists all.
func (db *DB) RecentInvoices(taxID string, limit int) ([]InvoiceLookup, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.Query(`
		SELECT id, ticket_id, tax_id, customer_code, charge_code, message, pdf_url, barcode, created_at
		FROM invoice_lookups
		WHERE ? = '' OR tax_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, taxID, taxID, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []InvoiceLookup
	for rows.Next() {
		var l InvoiceLookup
		if err := rows.Scan(&l.ID, &l.TicketID, &l.TaxID, &l.CustomerCode, &l.ChargeCode, &l.Message, &l.PDFURL, &l.Barcode, &l.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
