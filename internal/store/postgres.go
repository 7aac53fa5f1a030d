package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"stockledger/internal/logger"
	"stockledger/pkg/models"
)

// BackendPostgres names the remote relational store.
const BackendPostgres = "postgres"

// documentRecord is one row of the documents table. Products are embedded
// as a JSON array.
type documentRecord struct {
	ID                string         `gorm:"primaryKey;column:id"`
	DocumentNumber    string         `gorm:"column:document_number"`
	Date              string         `gorm:"column:date;index"`
	DueDate           string         `gorm:"column:due_date"`
	Supplier          string         `gorm:"column:supplier"`
	TotalAmount       float64        `gorm:"column:total_amount"`
	PaidAmount        float64        `gorm:"column:paid_amount"`
	FileName          string         `gorm:"column:file_name"`
	Type              string         `gorm:"column:type;index"`
	PaymentStatus     string         `gorm:"column:payment_status"`
	IsCreditNote      bool           `gorm:"column:is_credit_note"`
	ExtractedProducts datatypes.JSON `gorm:"column:extracted_products;type:jsonb"`
}

func (documentRecord) TableName() string { return "documents" }

// coreColumns are present in every deployed schema. The remaining columns
// (due_date, payment_status, paid_amount, is_credit_note) are optional.
var coreColumns = []string{
	"id", "document_number", "date", "supplier", "total_amount",
	"file_name", "type", "extracted_products",
}

// PostgresStore replicates documents to a Postgres table through gorm.
type PostgresStore struct {
	db  *gorm.DB
	now func() time.Time
	log zerolog.Logger
}

// NewPostgresStore opens a connection pool for dsn.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	const op = "NewPostgresStore"

	if dsn == "" {
		return nil, NewStoreError(op, BackendPostgres, ErrInvalidConfiguration, "DATABASE_URL is empty")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, WrapStoreError(op, BackendPostgres, classifyRemoteError(err), "failed to connect")
	}

	return NewPostgresStoreWithDB(db), nil
}

// NewPostgresStoreWithDB wraps an open gorm handle.
func NewPostgresStoreWithDB(db *gorm.DB) *PostgresStore {
	return &PostgresStore{
		db:  db,
		now: time.Now,
		log: logger.WithComponent("store").With().Str("backend", BackendPostgres).Logger(),
	}
}

// Name implements services.DocumentStore.
func (s *PostgresStore) Name() string {
	return BackendPostgres
}

// Migrate creates or extends the documents table with every column.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	const op = "Migrate"
	err := s.db.WithContext(ctx).AutoMigrate(&documentRecord{})
	return WrapStoreError(op, BackendPostgres, classifyRemoteError(err), "")
}

// LoadAll implements services.DocumentStore. Documents come back newest first
// with fetch defaults applied.
func (s *PostgresStore) LoadAll(ctx context.Context) ([]models.Document, error) {
	const op = "LoadAll"

	var records []documentRecord
	if err := s.db.WithContext(ctx).Order("date desc").Find(&records).Error; err != nil {
		return nil, WrapStoreError(op, BackendPostgres, classifyRemoteError(err), "")
	}

	docs := make([]models.Document, 0, len(records))
	for _, r := range records {
		doc, err := r.toDocument()
		if err != nil {
			s.log.Warn().Err(err).Str("document_id", r.ID).Msg("Remote document has unreadable products, loading it without them")
		}
		docs = append(docs, doc)
	}

	s.log.Debug().Int("documents", len(docs)).Msg("Fetched remote documents")
	return docs, nil
}

// Upsert implements services.DocumentStore. When the table lacks the optional
// columns the write is retried once with only the core columns.
func (s *PostgresStore) Upsert(ctx context.Context, doc models.Document) error {
	const op = "Upsert"

	if doc.ID == "" || !doc.Type.Valid() {
		return NewStoreError(op, BackendPostgres, ErrInvalidDocument, "document needs an id and a known type")
	}

	rec, err := recordFromDocument(Sanitize(doc, s.now()))
	if err != nil {
		return WrapStoreError(op, BackendPostgres, err, "failed to encode products")
	}

	err = classifyRemoteError(s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(&rec).Error)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrSchemaMismatch) {
		return WrapStoreError(op, BackendPostgres, err, doc.ID)
	}

	s.log.Warn().
		Err(err).
		Str("document_id", doc.ID).
		Msg("Remote schema lacks optional columns, retrying with core columns only")

	err = classifyRemoteError(s.db.WithContext(ctx).
		Select(coreColumns).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns(coreColumns[1:]),
		}).Create(&rec).Error)
	return WrapStoreError(op, BackendPostgres, err, doc.ID+" (core columns only)")
}

// Delete implements services.DocumentStore.
func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	const op = "Delete"
	err := s.db.WithContext(ctx).Where("id = ?", id).Delete(&documentRecord{}).Error
	return WrapStoreError(op, BackendPostgres, classifyRemoteError(err), id)
}

// Close closes the connection pool.
func (s *PostgresStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func recordFromDocument(doc models.Document) (documentRecord, error) {
	products := doc.ExtractedProducts
	if products == nil {
		products = []models.Product{}
	}
	raw, err := json.Marshal(products)
	if err != nil {
		return documentRecord{}, err
	}

	return documentRecord{
		ID:                doc.ID,
		DocumentNumber:    doc.DocumentNumber,
		Date:              doc.Date,
		DueDate:           doc.DueDate,
		Supplier:          doc.Supplier,
		TotalAmount:       doc.TotalAmount,
		PaidAmount:        doc.PaidAmount,
		FileName:          doc.FileName,
		Type:              string(doc.Type),
		PaymentStatus:     string(doc.PaymentStatus),
		IsCreditNote:      doc.IsCreditNote,
		ExtractedProducts: datatypes.JSON(raw),
	}, nil
}

// toDocument converts a row. Products that are not a JSON array decode as
// none, and the decoding error is returned alongside the document.
func (r documentRecord) toDocument() (models.Document, error) {
	var products []models.Product
	var err error
	if len(r.ExtractedProducts) > 0 {
		if err = json.Unmarshal(r.ExtractedProducts, &products); err != nil {
			products = nil
		}
	}

	return FillFetched(models.Document{
		ID:                r.ID,
		DocumentNumber:    r.DocumentNumber,
		Type:              models.DocumentType(r.Type),
		Date:              r.Date,
		DueDate:           r.DueDate,
		Supplier:          r.Supplier,
		FileName:          r.FileName,
		TotalAmount:       r.TotalAmount,
		PaidAmount:        r.PaidAmount,
		PaymentStatus:     models.PaymentStatus(r.PaymentStatus),
		IsCreditNote:      r.IsCreditNote,
		ExtractedProducts: products,
	}), err
}
