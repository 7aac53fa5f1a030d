package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockledger/pkg/models"
)

func TestAddPrependsWithoutMutating(t *testing.T) {
	s0 := New([]models.Document{{ID: "INV-1", Type: models.TypeInvoice, Date: "2024-01-01"}})
	s1 := s0.Add(models.Document{ID: "INV-2", Type: models.TypeInvoice, Date: "2024-01-02"})

	require.Len(t, s0.Collection(models.TypeInvoice), 1)
	got := s1.Collection(models.TypeInvoice)
	require.Len(t, got, 2)
	assert.Equal(t, "INV-2", got[0].ID)
}

func TestReplaceAndRemove(t *testing.T) {
	s := New([]models.Document{
		{ID: "REV-1", Type: models.TypeReviewInvoice, Supplier: "Acme"},
		{ID: "DDT-1", Type: models.TypeDeliveryNote},
	})

	s2, ok := s.Replace(models.Document{ID: "REV-1", Type: models.TypeReviewInvoice, Supplier: "Beta"})
	require.True(t, ok)
	d, _ := s2.Find("REV-1")
	assert.Equal(t, "Beta", d.Supplier)
	d, _ = s.Find("REV-1")
	assert.Equal(t, "Acme", d.Supplier)

	_, ok = s.Replace(models.Document{ID: "missing", Type: models.TypeInvoice})
	assert.False(t, ok)

	s3, removed, ok := s2.Remove("DDT-1")
	require.True(t, ok)
	assert.Equal(t, models.TypeDeliveryNote, removed.Type)
	assert.Empty(t, s3.Collection(models.TypeDeliveryNote))
	assert.Len(t, s2.Collection(models.TypeDeliveryNote), 1)
}

func TestRemoveWhere(t *testing.T) {
	s := New([]models.Document{
		{ID: "INV-1", Type: models.TypeInvoice, Date: "2023-05-01"},
		{ID: "INV-2", Type: models.TypeInvoice, Date: "2024-05-01"},
	})

	next, removed := s.RemoveWhere(models.TypeInvoice, func(d models.Document) bool { return d.Date < "2024" })
	require.Len(t, removed, 1)
	assert.Equal(t, "INV-1", removed[0].ID)
	assert.Len(t, next.Collection(models.TypeInvoice), 1)
}

func TestMergeState(t *testing.T) {
	s := New([]models.Document{
		{ID: "REV-1", Type: models.TypeReviewInvoice, PaymentStatus: models.PaymentPaid, Date: "2024-01-01"},
	})

	merged := s.Merge([]models.Document{
		{ID: "REV-1", Type: models.TypeReviewInvoice, PaymentStatus: models.PaymentUnpaid, Date: "2024-01-01"},
		{ID: "INV-9", Type: models.TypeInvoice, Date: "2024-02-01"},
	})

	d, ok := merged.Find("REV-1")
	require.True(t, ok)
	assert.Equal(t, models.PaymentPaid, d.PaymentStatus)
	assert.Len(t, merged.Collection(models.TypeInvoice), 1)
	assert.Len(t, merged.All(), 2)
}
