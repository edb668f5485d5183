package expense

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/shopspring/decimal"
)

// Payload is a raw create or edit request body keyed by field name. A key
// whose value is JSON null is treated exactly like a missing key.
type Payload map[string]json.RawMessage

var errNotObject = errors.New("request body must be a JSON object")

// ParsePayload decodes a JSON object into a Payload.
func ParsePayload(data []byte) (Payload, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return nil, errNotObject
	}
	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	if p == nil {
		p = Payload{}
	}
	return p, nil
}

// Has reports whether key is present with a non-null value.
func (p Payload) Has(key string) bool {
	raw, ok := p[key]
	return ok && !bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// Missing returns the keys from fields that are not present, in order.
func (p Payload) Missing(fields ...string) []string {
	var missing []string
	for _, f := range fields {
		if !p.Has(f) {
			missing = append(missing, f)
		}
	}
	return missing
}

func (p Payload) String(key string) (string, error) {
	var s string
	if err := json.Unmarshal(p[key], &s); err != nil {
		return "", ErrInvalidFieldValue.forField(key).withMessage("Field " + key + " must be a string")
	}
	return s, nil
}

func (p Payload) Bool(key string) (bool, error) {
	var b bool
	if err := json.Unmarshal(p[key], &b); err != nil {
		return false, ErrInvalidFieldValue.forField(key).withMessage("Field " + key + " must be true or false")
	}
	return b, nil
}

// Decimal accepts a JSON number or a numeric string.
func (p Payload) Decimal(key string) (decimal.Decimal, error) {
	var d decimal.Decimal
	if err := json.Unmarshal(p[key], &d); err != nil {
		return decimal.Zero, ErrInvalidFieldValue.forField(key).withMessage("Field " + key + " must be a number")
	}
	return d, nil
}

// Int accepts a JSON integer or a string holding one.
func (p Payload) Int(key string) (int, error) {
	var n json.Number
	if err := json.Unmarshal(p[key], &n); err != nil {
		return 0, err
	}
	return strconv.Atoi(n.String())
}
