package warehouse

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"stockledger/internal/extraction"
	"stockledger/internal/intake"
	"stockledger/internal/locale"
	"stockledger/internal/payment"
	"stockledger/internal/reconciliation"
	"stockledger/internal/store"
	"stockledger/pkg/models"
	"stockledger/pkg/services"
)

// memStore is an in-memory services.CollectionStore.
type memStore struct {
	collections map[models.DocumentType][]models.Document
	saves       int
	saveErr     error
	// failOn makes SaveCollection fail for one collection only.
	failOn models.DocumentType
}

func newMemStore(docs ...models.Document) *memStore {
	m := &memStore{collections: make(map[models.DocumentType][]models.Document)}
	for _, d := range docs {
		m.collections[d.Type] = append(m.collections[d.Type], d)
	}
	return m
}

func (m *memStore) Name() string { return "memory" }

func (m *memStore) LoadAll(ctx context.Context) ([]models.Document, error) {
	var out []models.Document
	for _, t := range models.AllTypes {
		out = append(out, m.collections[t]...)
	}
	return out, nil
}

func (m *memStore) Upsert(ctx context.Context, doc models.Document) error {
	return errors.New("not used")
}

func (m *memStore) Delete(ctx context.Context, id string) error {
	return errors.New("not used")
}

func (m *memStore) SaveCollection(ctx context.Context, t models.DocumentType, docs []models.Document) error {
	if m.saveErr != nil && (m.failOn == "" || m.failOn == t) {
		return m.saveErr
	}
	m.saves++
	m.collections[t] = docs
	return nil
}

func (m *memStore) ids(t models.DocumentType) []string {
	var ids []string
	for _, d := range m.collections[t] {
		ids = append(ids, d.ID)
	}
	return ids
}

// fakeRemote is a services.DocumentStore that records calls.
type fakeRemote struct {
	docs      []models.Document
	loadErr   error
	upsertErr error
	upserted  []models.Document
	deleted   []string
}

func (f *fakeRemote) Name() string { return "fake-remote" }

func (f *fakeRemote) LoadAll(ctx context.Context) ([]models.Document, error) {
	return f.docs, f.loadErr
}

func (f *fakeRemote) Upsert(ctx context.Context, doc models.Document) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.upserted = append(f.upserted, doc)
	return nil
}

func (f *fakeRemote) Delete(ctx context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

// fakeExtractor answers by file content.
type fakeExtractor struct {
	results map[string][]extraction.RawDocument
	calls   []string
}

func (f *fakeExtractor) Extract(ctx context.Context, content []byte, mimeType string) ([]extraction.RawDocument, error) {
	key := string(content)
	f.calls = append(f.calls, key)
	docs, ok := f.results[key]
	if !ok {
		return nil, extraction.WrapExtractionError("Extract", "fake", extraction.ErrEmpty, key)
	}
	return docs, nil
}

type tableCapture struct {
	tables []services.Table
}

func (c *tableCapture) WriteTable(ctx context.Context, t services.Table) error {
	c.tables = append(c.tables, t)
	return nil
}

var testNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func testBuilder() *intake.Builder {
	n := 0
	return &intake.Builder{
		Now: func() time.Time { return testNow },
		NewID: func(prefix string) string {
			n++
			return fmt.Sprintf("%s-%d", prefix, n)
		},
	}
}

func newTestService(t *testing.T, local *memStore, remote services.DocumentStore, ex extraction.Extractor) *Service {
	t.Helper()
	opts := Options{
		Local:     local,
		Extractor: ex,
		Lang:      locale.Italian,
		Builder:   testBuilder(),
		Now:       func() time.Time { return testNow },
	}
	if remote != nil {
		opts.Remote = remote
	}
	svc := New(opts)
	require.NoError(t, svc.Load(context.Background()))
	return svc
}

func invoiceDoc(id, date string, products ...models.Product) models.Document {
	return models.Document{
		ID:                id,
		DocumentNumber:    "N-" + id,
		Type:              models.TypeInvoice,
		Date:              date,
		Supplier:          "Orto Srl",
		Status:            models.StatusProcessed,
		ExtractedProducts: products,
	}
}

func reviewDoc(id string, total float64, status models.PaymentStatus) models.Document {
	return models.Document{
		ID:            id,
		Type:          models.TypeReviewInvoice,
		Date:          "2024-05-01",
		Supplier:      "Fornitore",
		TotalAmount:   total,
		PaymentStatus: status,
	}
}

func TestLoadMergesRemote(t *testing.T) {
	local := newMemStore(reviewDoc("REV-1", 100, models.PaymentPaid))
	local.collections[models.TypeReviewInvoice][0].PaidAmount = 100

	remote := &fakeRemote{docs: []models.Document{
		reviewDoc("REV-1", 100, models.PaymentUnpaid),
		reviewDoc("REV-2", 50, models.PaymentUnpaid),
	}}

	svc := newTestService(t, local, remote, nil)

	docs := svc.Documents(models.TypeReviewInvoice)
	require.Len(t, docs, 2)

	got, err := svc.Find("REV-1")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPaid, got.PaymentStatus, "local paid copy outranks stale remote")

	assert.ElementsMatch(t, []string{"REV-1", "REV-2"}, local.ids(models.TypeReviewInvoice))
}

func TestLoadToleratesRemoteFailure(t *testing.T) {
	local := newMemStore(invoiceDoc("INV-1", "2024-01-01"))
	remote := &fakeRemote{loadErr: fmt.Errorf("%w: connection refused", store.ErrTransient)}

	svc := newTestService(t, local, remote, nil)
	assert.Len(t, svc.Documents(models.TypeInvoice), 1)

	n, err := svc.Sync(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestIngestFilesStopsAtFirstFailure(t *testing.T) {
	ex := &fakeExtractor{results: map[string][]extraction.RawDocument{
		"a": {
			{Supplier: "Orto", DocumentNumber: "F1", Date: "2024-01-10", Products: []extraction.RawProduct{{Name: "Mele", Quantity: 10, Unit: "kg", UnitPrice: 5}}},
			{Supplier: "Orto", DocumentNumber: "F2", Date: "2024-01-11", IsCreditNote: true, Products: []extraction.RawProduct{{Name: "Mele", Quantity: 2, Unit: "kg", UnitPrice: 5}}},
		},
		"c": {{Supplier: "Late"}},
	}}
	local := newMemStore()
	remote := &fakeRemote{}
	svc := newTestService(t, local, remote, ex)

	added, err := svc.IngestFiles(context.Background(), models.TypeInvoice, []File{
		{Name: "a.pdf", Content: []byte("a")},
		{Name: "b.pdf", Content: []byte("b")},
		{Name: "c.pdf", Content: []byte("c")},
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "b.pdf")
	assert.ErrorIs(t, err, extraction.ErrEmpty)
	assert.Len(t, added, 2)
	assert.Equal(t, []string{"a", "b"}, ex.calls, "files after the failure are not processed")

	assert.Len(t, local.collections[models.TypeInvoice], 2)
	assert.Len(t, remote.upserted, 2)

	inv := svc.Inventory()
	require.Len(t, inv, 1)
	assert.Equal(t, 8.0, inv[0].Quantity)
	assert.Equal(t, 40.0, inv[0].TotalPrice)
}

func TestIngestFilesWithoutExtractor(t *testing.T) {
	svc := newTestService(t, newMemStore(), nil, nil)
	_, err := svc.IngestFiles(context.Background(), models.TypeDeliveryNote, []File{{Name: "x.pdf", Content: []byte("x")}})
	assert.ErrorIs(t, err, ErrNoExtractor)

	_, err = svc.IngestFiles(context.Background(), "receipt", nil)
	assert.ErrorIs(t, err, ErrWrongType)
}

func TestRemoteFailureKeepsLocalWrite(t *testing.T) {
	local := newMemStore()
	remote := &fakeRemote{upsertErr: fmt.Errorf("%w: column missing", store.ErrSchemaMismatch)}
	svc := newTestService(t, local, remote, nil)

	err := svc.AddDocument(context.Background(), invoiceDoc("INV-9", "2024-02-02"))
	require.NoError(t, err)
	assert.Equal(t, []string{"INV-9"}, local.ids(models.TypeInvoice))
}

func TestLocalFailureIsReturned(t *testing.T) {
	local := newMemStore()
	svc := newTestService(t, local, nil, nil)
	local.saveErr = errors.New("disk full")

	err := svc.AddDocument(context.Background(), invoiceDoc("INV-9", "2024-02-02",
		models.Product{ID: "p1", Name: "Mele", Quantity: 10, UnitOfMeasure: "KG", UnitPrice: 5, TotalPrice: 50},
	))
	assert.ErrorContains(t, err, "disk full")

	assert.Empty(t, svc.Documents(models.TypeInvoice))
	assert.Empty(t, local.ids(models.TypeInvoice))
	assert.Empty(t, svc.Inventory())
	_, err = svc.Find("INV-9")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSyncLocalFailureRestoresSavedCollections(t *testing.T) {
	local := newMemStore(invoiceDoc("INV-1", "2024-01-01"))
	svc := newTestService(t, local, nil, nil)

	remoteInvoice := invoiceDoc("INV-2", "2024-01-02")
	remoteCount := invoiceDoc("PC-1", "2024-01-03")
	remoteCount.Type = models.TypePhysicalCount
	svc.remote = &fakeRemote{docs: []models.Document{remoteInvoice, remoteCount}}

	local.failOn = models.TypePhysicalCount
	local.saveErr = errors.New("disk full")

	_, err := svc.Sync(context.Background())
	assert.ErrorContains(t, err, "disk full")

	assert.Equal(t, []string{"INV-1"}, local.ids(models.TypeInvoice))
	assert.Empty(t, local.ids(models.TypePhysicalCount))
	require.Len(t, svc.Documents(models.TypeInvoice), 1)
	assert.Empty(t, svc.Documents(models.TypePhysicalCount))
}

func TestPayments(t *testing.T) {
	local := newMemStore(
		reviewDoc("REV-1", 100, models.PaymentUnpaid),
		invoiceDoc("INV-1", "2024-01-01"),
	)
	remote := &fakeRemote{}
	svc := newTestService(t, local, remote, nil)
	ctx := context.Background()

	doc, err := svc.AddInstallment(ctx, "REV-1", 40)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPartial, doc.PaymentStatus)
	assert.Equal(t, 40.0, doc.PaidAmount)

	doc, err = svc.AddInstallment(ctx, "REV-1", 70)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPaid, doc.PaymentStatus)
	assert.Equal(t, 100.0, doc.PaidAmount)

	doc, err = svc.SetPaymentStatus(ctx, "REV-1", models.PaymentUnpaid)
	require.NoError(t, err)
	assert.Equal(t, 0.0, doc.PaidAmount)

	require.Len(t, remote.upserted, 3)
	stored, err := svc.Find("REV-1")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentUnpaid, stored.PaymentStatus)

	t.Run("errors", func(t *testing.T) {
		upserts := len(remote.upserted)
		doc, err := svc.AddInstallment(ctx, "REV-1", 0)
		require.NoError(t, err)
		assert.Equal(t, 0.0, doc.PaidAmount)
		assert.Equal(t, models.PaymentUnpaid, doc.PaymentStatus)

		_, err = svc.AddInstallment(ctx, "REV-1", -20)
		require.NoError(t, err)
		assert.Len(t, remote.upserted, upserts)

		_, err = svc.AddInstallment(ctx, "INV-1", 10)
		assert.ErrorIs(t, err, ErrWrongType)

		_, err = svc.SetPaymentStatus(ctx, "nope", models.PaymentPaid)
		assert.ErrorIs(t, err, ErrNotFound)

		_, err = svc.SetPaymentStatus(ctx, "REV-1", "refunded")
		assert.ErrorIs(t, err, ErrUnsupportedStatus)
	})
}

func TestPaymentStatsAndBrowse(t *testing.T) {
	credit := reviewDoc("REV-3", 30, models.PaymentPaid)
	credit.IsCreditNote = true
	credit.Supplier = "Alfa"

	partial := reviewDoc("REV-2", 80, models.PaymentPartial)
	partial.PaidAmount = 20
	partial.Date = "2024-06-15"

	svc := newTestService(t, newMemStore(
		reviewDoc("REV-1", 100, models.PaymentPaid),
		partial,
		credit,
	), nil, nil)

	stats := svc.PaymentStats(payment.Filter{})
	assert.Equal(t, 120.0, stats.Paid)
	assert.Equal(t, 60.0, stats.Unpaid)
	assert.Equal(t, 30.0, stats.ReceivedCredits)
	assert.Equal(t, 60.0, stats.PartialResidue)

	groups := svc.BrowsePayments(BrowseQuery{
		Filter:  payment.Filter{Status: models.PaymentUnpaid},
		GroupBy: payment.GroupDay,
	})
	require.Len(t, groups, 1)
	assert.Equal(t, "Oggi", groups[0].Label)
	assert.Equal(t, "REV-2", groups[0].Documents[0].ID)

	bySupplier := svc.BrowsePayments(BrowseQuery{SortBy: payment.SortBySupplier, Order: payment.Ascending})
	require.Len(t, bySupplier, 1)
	assert.Equal(t, "REV-3", bySupplier[0].Documents[0].ID)
}

func TestResetWarehouseByYear(t *testing.T) {
	ddt := invoiceDoc("DDT-1", "2024-03-01")
	ddt.Type = models.TypeDeliveryNote
	count := invoiceDoc("PC-1", "2024-03-02")
	count.Type = models.TypePhysicalCount

	local := newMemStore(
		invoiceDoc("INV-23", "2023-12-30"),
		invoiceDoc("INV-24", "2024-01-05"),
		ddt,
		count,
		reviewDoc("REV-1", 10, models.PaymentUnpaid),
	)
	remote := &fakeRemote{}
	svc := newTestService(t, local, remote, nil)

	assert.Equal(t, []int{2024, 2023}, svc.AvailableYears())

	year := 2024
	n, err := svc.ResetWarehouse(context.Background(), &year)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.ElementsMatch(t, []string{"INV-24", "DDT-1"}, remote.deleted)

	assert.Equal(t, []string{"INV-23"}, local.ids(models.TypeInvoice))
	assert.Empty(t, local.ids(models.TypeDeliveryNote))
	assert.Equal(t, []string{"PC-1"}, local.ids(models.TypePhysicalCount))
	assert.Equal(t, []string{"REV-1"}, local.ids(models.TypeReviewInvoice))

	n, err = svc.ResetWarehouse(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Empty(t, svc.AvailableYears())
}

func TestEditSupplierAndDelete(t *testing.T) {
	local := newMemStore(invoiceDoc("INV-1", "2024-01-01", models.Product{ID: "p", Name: "Mele", Supplier: "Orto Srl"}))
	remote := &fakeRemote{}
	svc := newTestService(t, local, remote, nil)
	ctx := context.Background()

	doc, err := svc.EditSupplier(ctx, "INV-1", "Frutta Bio")
	require.NoError(t, err)
	assert.Equal(t, "Frutta Bio", doc.Supplier)
	assert.Equal(t, "Frutta Bio", doc.ExtractedProducts[0].Supplier)
	assert.Equal(t, "Frutta Bio", local.collections[models.TypeInvoice][0].ExtractedProducts[0].Supplier)

	require.NoError(t, svc.DeleteDocument(ctx, "INV-1"))
	assert.Empty(t, local.ids(models.TypeInvoice))
	assert.Equal(t, []string{"INV-1"}, remote.deleted)

	assert.ErrorIs(t, svc.DeleteDocument(ctx, "INV-1"), ErrNotFound)
	_, err = svc.EditSupplier(ctx, "INV-1", "x")
	assert.ErrorIs(t, err, ErrNotFound)
}

func countSheet(t *testing.T, rows ...[]interface{}) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	header := []interface{}{"Descrizione", "Quantita", "UM"}
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &header))
	for i, r := range rows {
		row := r
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestImportCountAndReconcile(t *testing.T) {
	local := newMemStore(invoiceDoc("INV-1", "2024-01-01",
		models.Product{ID: "p1", Name: "Mele", Quantity: 10, UnitOfMeasure: "KG", UnitPrice: 5, TotalPrice: 50, Category: "Frutta"},
		models.Product{ID: "p2", Name: "Pere", Quantity: 10, UnitOfMeasure: "KG", UnitPrice: 3, TotalPrice: 30, Category: "Frutta"},
	))
	svc := newTestService(t, local, nil, nil)
	ctx := context.Background()

	content := countSheet(t,
		[]interface{}{"Mele", "12", "kg"},
		[]interface{}{"Pere", "8", "kg"},
		[]interface{}{"Kiwi", "1", "kg"},
	)

	doc, err := svc.ImportCount(ctx, File{Name: "conta.xlsx", Content: content})
	require.NoError(t, err)
	assert.Equal(t, models.TypePhysicalCount, doc.Type)
	require.Len(t, doc.ExtractedProducts, 3)
	assert.Equal(t, 5.0, doc.ExtractedProducts[0].UnitPrice)
	assert.Equal(t, "Frutta", doc.ExtractedProducts[0].Category)

	res, err := svc.Reconcile(doc.ID)
	require.NoError(t, err)
	assert.Equal(t, 10.0, res.Summary.SurplusValue)
	assert.Equal(t, 6.0, res.Summary.DeficitValue)
	assert.Equal(t, 4.0, res.Summary.NetValue)
	assert.Equal(t, 2, res.Summary.MatchedCount)

	capture := &tableCapture{}
	_, err = svc.ExportReconciliation(ctx, doc.ID, capture, true)
	require.NoError(t, err)
	require.Len(t, capture.tables, 1)
	assert.Equal(t, reconciliation.ReportSheetName, capture.tables[0].Name)
	assert.Len(t, capture.tables[0].Rows, 3)

	_, err = svc.Reconcile("INV-1")
	assert.ErrorIs(t, err, ErrWrongType)
}

func TestImportCountFromExtraction(t *testing.T) {
	ex := &fakeExtractor{results: map[string][]extraction.RawDocument{
		"scan": {{Products: []extraction.RawProduct{{Name: "Mele", Quantity: 3, Unit: "kg"}}}},
	}}
	svc := newTestService(t, newMemStore(), nil, ex)

	added, err := svc.IngestFiles(context.Background(), models.TypePhysicalCount, []File{{Name: "scan.jpg", Content: []byte("scan")}})
	require.NoError(t, err)
	require.Len(t, added, 1)
	assert.Equal(t, intake.DefaultCountSupplier, added[0].Supplier)
	assert.Len(t, svc.Documents(models.TypePhysicalCount), 1)
}

type fakeRanges [][]interface{}

func (f fakeRanges) ReadRange(ctx context.Context, rangeSpec string) ([][]interface{}, error) {
	return f, nil
}

func TestImportCountFromSheet(t *testing.T) {
	svc := newTestService(t, newMemStore(), nil, nil)
	reader := reconciliation.NewCountReader(fakeRanges{
		{"Nome", "Qta"},
		{"Uova", "30"},
	})

	doc, err := svc.ImportCountFromSheet(context.Background(), reader, "Conta")
	require.NoError(t, err)
	assert.Equal(t, "Conta", doc.FileName)
	assert.Equal(t, 30.0, doc.ExtractedProducts[0].Quantity)
}

func TestExportInventoryAndDashboard(t *testing.T) {
	svc := newTestService(t, newMemStore(invoiceDoc("INV-1", "2024-01-01",
		models.Product{ID: "p1", Name: "Mele", Quantity: 10, UnitOfMeasure: "KG", UnitPrice: 5, TotalPrice: 50},
	)), nil, nil)

	capture := &tableCapture{}
	require.NoError(t, svc.ExportInventory(context.Background(), capture))
	require.Len(t, capture.tables, 1)
	assert.Len(t, capture.tables[0].Rows, 1)

	dash := svc.Dashboard()
	assert.Equal(t, 50.0, dash.TotalValue)
	assert.Equal(t, 10.0, dash.QuantityByUnit[models.UnitWeight])

	groups := svc.InventoryView("mele", "none")
	require.Len(t, groups, 1)
	assert.Len(t, groups[0].Items, 1)

	empty := newTestService(t, newMemStore(), nil, nil)
	assert.Error(t, empty.ExportInventory(context.Background(), capture))
}
