package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockledger/pkg/models"
)

func doc(id, date string, status models.PaymentStatus, supplier string) models.Document {
	return models.Document{ID: id, Date: date, PaymentStatus: status, Supplier: supplier}
}

func TestMergePriority(t *testing.T) {
	tests := []struct {
		name      string
		local     models.PaymentStatus
		remote    models.PaymentStatus
		wantLocal bool
	}{
		{"local paid beats remote unpaid", models.PaymentPaid, models.PaymentUnpaid, true},
		{"local partial beats remote unpaid", models.PaymentPartial, models.PaymentUnpaid, true},
		{"remote paid beats local partial", models.PaymentPartial, models.PaymentPaid, false},
		{"tie goes to remote", models.PaymentUnpaid, models.PaymentUnpaid, false},
		{"absent counts as unpaid", "", models.PaymentUnpaid, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Merge(
				[]models.Document{doc("X", "2024-01-01", tt.local, "local")},
				[]models.Document{doc("X", "2024-01-01", tt.remote, "remote")},
			)
			require.Len(t, out, 1)
			if tt.wantLocal {
				assert.Equal(t, "local", out[0].Supplier)
			} else {
				assert.Equal(t, "remote", out[0].Supplier)
			}
		})
	}
}

func TestMergeUnionSorted(t *testing.T) {
	local := []models.Document{
		doc("A", "2024-01-01", "", "a"),
		doc("B", "2024-03-01", "", "b"),
	}
	remote := []models.Document{
		doc("C", "2024-02-01", "", "c"),
		doc("B", "2024-03-01", "", "b-remote"),
	}

	out := Merge(local, remote)
	require.Len(t, out, 3)
	assert.Equal(t, "B", out[0].ID)
	assert.Equal(t, "b-remote", out[0].Supplier)
	assert.Equal(t, "C", out[1].ID)
	assert.Equal(t, "A", out[2].ID)
}

func TestMergeEmpty(t *testing.T) {
	assert.Empty(t, Merge(nil, nil))
	assert.Len(t, Merge(nil, []models.Document{doc("A", "2024-01-01", "", "")}), 1)
}
