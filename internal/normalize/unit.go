package normalize

import "stockledger/pkg/models"

var unitBuckets = map[string]string{}

func init() {
	for _, u := range []string{"pz", "un", "unit", "each", "pezzo", "pezzi", "ud", "unita", "u", "pieces"} {
		unitBuckets[u] = models.UnitPieces
	}
	for _, u := range []string{"kg", "kilo", "kilogrammi", "gr", "grammi", "g", "kilogram", "kilos"} {
		unitBuckets[u] = models.UnitWeight
	}
	for _, u := range []string{"cj", "ct", "cs", "cassa", "casse", "box", "collo", "conf", "caisse", "bt", "bott", "case"} {
		unitBuckets[u] = models.UnitCase
	}
}

// NormalizeUnit classifies a unit of measure into UD, KG or CJ.
//
// Unrecognized units fall back to UD. The fallback is lossy: a weight or
// case unit written with an unknown abbreviation is counted as pieces.
func NormalizeUnit(unit string) string {
	if bucket, ok := unitBuckets[lettersOnly(unit)]; ok {
		return bucket
	}
	return models.UnitPieces
}
