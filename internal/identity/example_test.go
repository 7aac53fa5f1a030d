package identity_test

import (
	"fmt"

	"stockledger/internal/identity"
)

// Names fall back to name and unit; SKUs ignore both.
func ExampleProductKey() {
	fmt.Println(identity.ProductKey("Pomodori", "", "kg"))
	fmt.Println(identity.ProductKey("POMODORI", "", "KG"))
	fmt.Println(identity.ProductKey("X", "ABC-1", "pz"))
	fmt.Println(identity.ProductKey("Caffè Crema", "", "confezione"))
	// Output:
	// NAME-pomodori-KG
	// NAME-pomodori-KG
	// SKU-abc1
	// NAME-caffecrema-UD
}
