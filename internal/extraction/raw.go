package extraction

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"stockledger/internal/normalize"
)

// RawDocument is one document as returned by an extractor, before it is
// coerced into a models.Document. Field types accept the loose shapes models
// produce (numbers as strings, booleans as "true", nulls).
type RawDocument struct {
	Supplier       Text         `json:"supplier"`
	DocumentNumber Text         `json:"documentNumber"`
	Date           Text         `json:"date"`
	DueDate        Text         `json:"dueDate"`
	IsCreditNote   Flag         `json:"isCreditNote"`
	TotalAmount    Number       `json:"totalAmount"`
	Products       []RawProduct `json:"products"`
}

// RawProduct is one extracted line item.
type RawProduct struct {
	Code       Text     `json:"code"`
	Name       Text     `json:"name"`
	Quantity   Quantity `json:"quantity"`
	Unit       Text     `json:"unit"`
	UnitPrice  Number   `json:"unitPrice"`
	TotalPrice Number   `json:"totalPrice"`
	Category   Text     `json:"category"`
}

// Number decodes a monetary JSON number or numeric string, such as
// "1.234,50". Anything else is 0.
type Number float64

// UnmarshalJSON implements json.Unmarshaler.
func (n *Number) UnmarshalJSON(b []byte) error {
	*n = Number(decodeNumber(b, normalize.ParseAmount))
	return nil
}

// Float returns the value as float64.
func (n Number) Float() float64 {
	return float64(n)
}

// Quantity decodes a quantity. Strings follow normalize.ParseQuantity, so
// only the first comma is read as a decimal point.
type Quantity float64

// UnmarshalJSON implements json.Unmarshaler.
func (q *Quantity) UnmarshalJSON(b []byte) error {
	*q = Quantity(decodeNumber(b, normalize.ParseQuantity))
	return nil
}

// Float returns the value as float64.
func (q Quantity) Float() float64 {
	return float64(q)
}

func decodeNumber(b []byte, parse func(interface{}) float64) float64 {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0, string(b) == "null":
		return 0
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return 0
		}
		return parse(s)
	default:
		f, err := strconv.ParseFloat(string(b), 64)
		if err != nil {
			return 0
		}
		return normalize.RoundTo(f, 6)
	}
}

// Text decodes a JSON string, number or boolean as trimmed text; null is "".
type Text string

// UnmarshalJSON implements json.Unmarshaler.
func (t *Text) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*t = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = Text(strings.TrimSpace(s))
		return nil
	}
	if b[0] == '{' || b[0] == '[' {
		*t = ""
		return nil
	}
	*t = Text(string(b))
	return nil
}

// String returns the text.
func (t Text) String() string {
	return string(t)
}

// Or returns t, or def when t is empty.
func (t Text) Or(def string) string {
	if t == "" {
		return def
	}
	return string(t)
}

// Flag decodes a JSON boolean or a "true"/"false"/"1"/"si" string.
type Flag bool

// UnmarshalJSON implements json.Unmarshaler.
func (f *Flag) UnmarshalJSON(b []byte) error {
	s := strings.ToLower(strings.Trim(string(bytes.TrimSpace(b)), `"`))
	switch s {
	case "true", "1", "yes", "si", "sì":
		*f = true
	default:
		*f = false
	}
	return nil
}

// envelope is the response schema root.
type envelope struct {
	Documents []RawDocument `json:"documents"`
}

// ParseResponse decodes extractor output. It accepts the {"documents": [...]}
// envelope, a bare array or a single object, optionally inside a markdown
// code fence.
func ParseResponse(text string) ([]RawDocument, error) {
	const op = "ParseResponse"

	cleaned := stripCodeFence(text)
	if cleaned == "" {
		return nil, WrapExtractionError(op, "", ErrEmpty, "empty response")
	}

	var docs []RawDocument
	switch cleaned[0] {
	case '[':
		if err := json.Unmarshal([]byte(cleaned), &docs); err != nil {
			return nil, WrapExtractionError(op, "", ErrInvalidResponse, err.Error())
		}
	case '{':
		var env envelope
		if err := json.Unmarshal([]byte(cleaned), &env); err != nil {
			return nil, WrapExtractionError(op, "", ErrInvalidResponse, err.Error())
		}
		docs = env.Documents
		if docs == nil && !strings.Contains(cleaned, `"documents"`) {
			var single RawDocument
			if err := json.Unmarshal([]byte(cleaned), &single); err == nil {
				docs = []RawDocument{single}
			}
		}
	default:
		return nil, WrapExtractionError(op, "", ErrInvalidResponse, "response is not JSON")
	}

	if len(docs) == 0 {
		return nil, WrapExtractionError(op, "", ErrEmpty, "no documents in response")
	}
	return docs, nil
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// NormalizeDates rewrites every date to YYYY-MM-DD. A missing due date takes
// the document date. Unparseable dates become now.
func NormalizeDates(docs []RawDocument, now time.Time) []RawDocument {
	out := make([]RawDocument, len(docs))
	for i, d := range docs {
		due := d.DueDate
		if due == "" {
			due = d.Date
		}
		d.Date = Text(normalize.NormalizeDateAt(d.Date.String(), now))
		d.DueDate = Text(normalize.NormalizeDateAt(due.String(), now))
		out[i] = d
	}
	return out
}
