package payment_test

import (
	"fmt"

	"stockledger/internal/payment"
	"stockledger/pkg/models"
)

func ExampleAddInstallment() {
	doc := models.Document{ID: "REV-1", TotalAmount: 100, PaymentStatus: models.PaymentUnpaid}

	doc, _ = payment.AddInstallment(doc, 40)
	fmt.Println(doc.PaymentStatus, doc.PaidAmount, payment.Remaining(doc))

	// Overpayment is clamped to the total.
	doc, _ = payment.AddInstallment(doc, 75)
	fmt.Println(doc.PaymentStatus, doc.PaidAmount, payment.Remaining(doc))
	// Output:
	// partial 40 60
	// paid 100 0
}
