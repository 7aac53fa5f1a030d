package store

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockledger/pkg/models"
)

func sampleDoc(id string, t models.DocumentType) models.Document {
	return models.Document{
		ID:             id,
		DocumentNumber: "F-" + id,
		Type:           t,
		Date:           "2024-03-01",
		Supplier:       "Orto Srl",
		TotalAmount:    10,
		Status:         models.StatusProcessed,
		ExtractedProducts: []models.Product{
			{ID: id + "-0", Name: "Mele", Quantity: 5, UnitOfMeasure: "KG", UnitPrice: 2, TotalPrice: 10},
		},
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	all, err := s.LoadAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	require.NoError(t, s.SaveCollection(ctx, models.TypeInvoice, []models.Document{
		sampleDoc("INV-1", models.TypeInvoice),
		sampleDoc("INV-2", models.TypeInvoice),
	}))
	require.NoError(t, s.Upsert(ctx, sampleDoc("DDT-1", models.TypeDeliveryNote)))

	all, err = s.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "INV-1", all[0].ID)
	assert.Equal(t, "DDT-1", all[2].ID)
	assert.Equal(t, 5.0, all[0].ExtractedProducts[0].Quantity)

	t.Run("upsert replaces in place", func(t *testing.T) {
		doc := sampleDoc("INV-2", models.TypeInvoice)
		doc.Supplier = "Nuovo"
		require.NoError(t, s.Upsert(ctx, doc))

		all, err := s.LoadAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, "Nuovo", all[1].Supplier)
	})

	t.Run("upsert prepends new ids", func(t *testing.T) {
		require.NoError(t, s.Upsert(ctx, sampleDoc("INV-3", models.TypeInvoice)))
		all, err := s.LoadAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, "INV-3", all[0].ID)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, s.Delete(ctx, "INV-1"))
		require.NoError(t, s.Delete(ctx, "missing"))

		all, err := s.LoadAll(ctx)
		require.NoError(t, err)
		ids := make([]string, 0, len(all))
		for _, d := range all {
			ids = append(ids, d.ID)
		}
		assert.Equal(t, []string{"INV-3", "INV-2", "DDT-1"}, ids)
	})
}

func TestFileStoreRejectsInvalid(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	err = s.Upsert(context.Background(), models.Document{ID: "x"})
	assert.ErrorIs(t, err, ErrInvalidDocument)

	err = s.SaveCollection(context.Background(), "bogus", nil)
	assert.ErrorIs(t, err, ErrInvalidDocument)

	_, err = NewFileStore("")
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
}

func TestFileStoreCorruptCollection(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "invoices.json"), []byte("{not json"), 0o644))

	s, err := NewFileStore(dir)
	require.NoError(t, err)

	_, err = s.LoadAll(context.Background())
	assert.ErrorIs(t, err, ErrCorrupt)

	var storeErr *StoreError
	require.True(t, errors.As(err, &storeErr))
	assert.Equal(t, "LoadAll", storeErr.Op)
	assert.Equal(t, BackendFile, storeErr.Backend)
}

func TestFileStoreFillsMissingType(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "reviewInvoices.json"), []byte(`[{"id":"REV-1","totalAmount":5}]`), 0o644))

	s, err := NewFileStore(dir)
	require.NoError(t, err)

	all, err := s.LoadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, models.TypeReviewInvoice, all[0].Type)
}

func TestSanitize(t *testing.T) {
	now := time.Date(2024, 7, 4, 10, 0, 0, 0, time.UTC)
	doc := models.Document{
		ID:          "REV-1",
		Type:        models.TypeReviewInvoice,
		TotalAmount: math.NaN(),
		ExtractedProducts: []models.Product{
			{ID: "p", Quantity: math.Inf(1)},
		},
	}

	out := Sanitize(doc, now)

	assert.Equal(t, RemoteDefaultNumber, out.DocumentNumber)
	assert.Equal(t, "2024-07-04", out.Date)
	assert.Equal(t, "2024-07-04", out.DueDate)
	assert.Equal(t, RemoteDefaultSupplier, out.Supplier)
	assert.Equal(t, models.PaymentUnpaid, out.PaymentStatus)
	assert.Equal(t, 0.0, out.TotalAmount)

	p := out.ExtractedProducts[0]
	assert.Equal(t, RemoteDefaultProductName, p.Name)
	assert.Equal(t, models.UnitPieces, p.UnitOfMeasure)
	assert.Equal(t, RemoteDefaultCategory, p.Category)
	assert.Equal(t, 0.0, p.Quantity)
	assert.Equal(t, "REV-1", p.InvoiceID)
	assert.Equal(t, RemoteDefaultSupplier, p.Supplier)
	assert.Equal(t, "2024-07-04", p.InvoiceDate)

	assert.Empty(t, doc.ExtractedProducts[0].Name, "input is not modified")
}

func TestRecordConversion(t *testing.T) {
	doc := sampleDoc("INV-9", models.TypeInvoice)
	doc.IsCreditNote = true

	rec, err := recordFromDocument(doc)
	require.NoError(t, err)
	assert.Equal(t, "invoice", rec.Type)
	assert.True(t, rec.IsCreditNote)

	back, err := rec.toDocument()
	require.NoError(t, err)
	assert.Equal(t, doc.ExtractedProducts, back.ExtractedProducts)
	assert.Equal(t, "2024-03-01", back.DueDate)
	assert.Equal(t, models.PaymentUnpaid, back.PaymentStatus)
	assert.Equal(t, models.StatusProcessed, back.Status)

	t.Run("unreadable products", func(t *testing.T) {
		rec := documentRecord{ID: "x", Date: "2024-01-01", ExtractedProducts: []byte(`{"a":1}`)}
		doc, err := rec.toDocument()
		assert.Error(t, err)
		assert.Equal(t, "x", doc.ID)
		assert.Empty(t, doc.ExtractedProducts)
	})
}

func TestClassifyRemoteError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"undefined column", &pgconn.PgError{Code: "42703", Message: `column "due_date" does not exist`}, ErrSchemaMismatch},
		{"other sqlstate", &pgconn.PgError{Code: "23505", Message: "duplicate key"}, ErrRemote},
		{"deadline", context.DeadlineExceeded, ErrTransient},
		{"message only", errors.New(`ERROR: column "paid_amount" of relation "documents" does not exist`), ErrSchemaMismatch},
		{"unknown", errors.New("boom"), ErrRemote},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifyRemoteError(tt.err)
			assert.ErrorIs(t, got, tt.want)
			assert.True(t, IsAdvisory(got))
		})
	}

	assert.NoError(t, classifyRemoteError(nil))
	assert.False(t, IsAdvisory(ErrCorrupt))
}

func TestWrapStoreError(t *testing.T) {
	assert.NoError(t, WrapStoreError("op", "file", nil, ""))

	first := WrapStoreError("Inner", "file", ErrCorrupt, "invoices")
	second := WrapStoreError("Outer", "file", first, "")
	assert.Same(t, first, second)
	assert.Equal(t, "store[file]: Inner failed: invoices: stored collection is corrupt", first.Error())
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, Config{Local: LocalFile, DataDir: "data"}.Validate())
	assert.ErrorIs(t, Config{Local: LocalFile}.Validate(), ErrInvalidConfiguration)
	assert.ErrorIs(t, Config{Local: LocalRedis}.Validate(), ErrInvalidConfiguration)
	assert.ErrorIs(t, Config{Local: "sqlite"}.Validate(), ErrInvalidConfiguration)
}

func TestOpenRemoteDisabled(t *testing.T) {
	remote, closeFn, err := OpenRemote(context.Background(), Config{})
	require.NoError(t, err)
	assert.Nil(t, remote)
	assert.NoError(t, closeFn())
}
