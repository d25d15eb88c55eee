package store

import (
	"path/filepath"
	"testing"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Migrate(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestMigrateIdempotent(t *testing.T) {
	db := testDB(t)

	// testDB already ran Migrate, so run it again to check idempotency.
	result, err := db.Migrate()
	if err != nil {
		t.Fatal(err)
	}
	if result.Changed {
		t.Error("second Migrate() should report Changed=false")
	}
	if result.Version != 1 {
		t.Errorf("version = %d, want 1", result.Version)
	}
}

func TestSettings(t *testing.T) {
	db := testDB(t)

	v, err := db.Setting(KeyToken)
	if err != nil {
		t.Fatal(err)
	}
	if v != "" {
		t.Errorf("unset setting = %q, want empty", v)
	}

	if err := db.SetSetting(KeyToken, "a"); err != nil {
		t.Fatal(err)
	}
	if err := db.SetSetting(KeyToken, "b"); err != nil {
		t.Fatal(err)
	}
	v, err = db.Setting(KeyToken)
	if err != nil {
		t.Fatal(err)
	}
	if v != "b" {
		t.Errorf("setting = %q, want b", v)
	}
}

func TestCompanyID(t *testing.T) {
	db := testDB(t)

	id, err := db.CompanyID()
	if err != nil {
		t.Fatal(err)
	}
	if id != 0 {
		t.Errorf("CompanyID() = %d before set, want 0", id)
	}

	if err := db.SetCompanyID(12); err != nil {
		t.Fatal(err)
	}
	id, err = db.CompanyID()
	if err != nil {
		t.Fatal(err)
	}
	if id != 12 {
		t.Errorf("CompanyID() = %d, want 12", id)
	}

	if err := db.SetSetting(KeyCompanyID, "x"); err != nil {
		t.Fatal(err)
	}
	if _, err := db.CompanyID(); err == nil {
		t.Error("CompanyID() expected error for non-numeric value")
	}
}

func TestInvoiceHistory(t *testing.T) {
	db := testDB(t)

	lookups := []*InvoiceLookup{
		{TicketID: 1, TaxID: "111", CustomerCode: 9, ChargeCode: 2, Message: "first", CreatedAt: 1000},
		{TicketID: 1, TaxID: "222", CustomerCode: 8, ChargeCode: 2, Message: "other", CreatedAt: 2000},
		{TicketID: 2, TaxID: "111", CustomerCode: 9, ChargeCode: 2, Message: "second", PDFURL: "http://x/a.pdf", Barcode: "123", CreatedAt: 3000},
	}
	for _, l := range lookups {
		if err := db.RecordInvoice(l); err != nil {
			t.Fatal(err)
		}
		if l.ID == 0 {
			t.Error("RecordInvoice did not set ID")
		}
	}

	got, err := db.RecentInvoices("111", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d lookups for 111, want 2", len(got))
	}
	if got[0].Message != "second" || got[0].PDFURL != "http://x/a.pdf" || got[0].Barcode != "123" {
		t.Errorf("newest lookup = %+v", got[0])
	}

	all, err := db.RecentInvoices("", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Errorf("got %d lookups with limit 2, want 2", len(all))
	}
}

func TestOutbox(t *testing.T) {
	db := testDB(t)

	if err := db.QueueOutbox("client1", 5, "first"); err != nil {
		t.Fatal(err)
	}
	if err := db.QueueOutbox("client2", 5, "second"); err != nil {
		t.Fatal(err)
	}
	if err := db.QueueOutbox("client1", 5, "dup"); err == nil {
		t.Error("duplicate client_msg_id accepted")
	}

	pending, err := db.PendingOutbox()
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 2 {
		t.Fatalf("got %d pending, want 2", len(pending))
	}
	if pending[0].ClientMsgID != "client1" || pending[0].TicketID != 5 {
		t.Errorf("first pending = %+v", pending[0])
	}

	if err := db.MarkOutboxSending("client1"); err != nil {
		t.Fatal(err)
	}
	if err := db.MarkOutboxSent("client1"); err != nil {
		t.Fatal(err)
	}
	if err := db.MarkOutboxSending("client2"); err != nil {
		t.Fatal(err)
	}
	if err := db.MarkOutboxFailed("client2", "boom"); err != nil {
		t.Fatal(err)
	}

	pending, err = db.PendingOutbox()
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 0 {
		t.Errorf("got %d pending after send, want 0", len(pending))
	}

	failed, err := db.FailedOutbox()
	if err != nil {
		t.Fatal(err)
	}
	if len(failed) != 1 || failed[0].ErrorMessage != "boom" || failed[0].Attempts != 1 {
		t.Fatalf("failed = %+v", failed)
	}

	if err := db.RequeueOutbox("client2"); err != nil {
		t.Fatal(err)
	}
	pending, err = db.PendingOutbox()
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 1 || pending[0].ClientMsgID != "client2" {
		t.Errorf("pending after requeue = %+v", pending)
	}
}

func TestOpenMissingDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "desk.db")
	if db, err := Open(path); err == nil {
		_ = db.Close()
		t.Fatal("Open() in a missing directory should fail")
	}
}
