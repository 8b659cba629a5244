// Package validation checks incoming payloads against JSON Schemas.
package validation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/qri-io/jsonschema"
)

// registrationSchema describes POST /v1/auth/register.  The password
// must contain at least one letter and one digit, expressed as two
// unanchored patterns.
const registrationSchema = `{
	"type": "object",
	"required": ["name", "email", "registrationNumber", "password"],
	"properties": {
		"name": {"type": "string", "minLength": 1, "maxLength": 100, "pattern": "\\S"},
		"email": {"type": "string", "format": "email", "maxLength": 190},
		"registrationNumber": {"type": "string", "minLength": 3, "maxLength": 50, "pattern": "^[A-Za-z0-9_-]+$"},
		"password": {
			"type": "string",
			"minLength": 8,
			"maxLength": 100,
			"allOf": [{"pattern": "[A-Za-z]"}, {"pattern": "[0-9]"}]
		}
	}
}`

// fieldMessages are the client-facing messages per invalid property.
var fieldMessages = map[string]string{
	"name":               "Name is required and must be at most 100 characters",
	"email":              "Email must be a valid address of at most 190 characters",
	"registrationNumber": "Registration number must be 3-50 letters, digits, '-' or '_'",
	"password":           "Password must be 8-100 characters and contain a letter and a digit",
}

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func registration() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		rs := &jsonschema.Schema{}
		if err := json.Unmarshal([]byte(registrationSchema), rs); err != nil {
			schemaErr = fmt.Errorf("compile registration schema: %w", err)
			return
		}
		schema = rs
	})
	return schema, schemaErr
}

// Error reports the first invalid field of a payload.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string { return e.Message }

// ValidateRegistration checks a raw registration body.  It returns an
// *Error for schema violations and a plain error if the schema itself
// could not be used.
func ValidateRegistration(ctx context.Context, body []byte) error {
	rs, err := registration()
	if err != nil {
		return err
	}
	if !json.Valid(body) {
		return &Error{Message: "Request body must be valid JSON"}
	}
	keyErrs, err := rs.ValidateBytes(ctx, body)
	if err != nil {
		return fmt.Errorf("validate registration: %w", err)
	}
	if len(keyErrs) == 0 {
		return nil
	}
	return toError(keyErrs[0])
}

func toError(ke jsonschema.KeyError) *Error {
	field := strings.TrimPrefix(ke.PropertyPath, "/")
	if i := strings.Index(field, "/"); i >= 0 {
		field = field[:i]
	}
	if msg, ok := fieldMessages[field]; ok {
		return &Error{Field: field, Message: msg}
	}
	// Missing required properties are reported on the object itself.
	for name, msg := range fieldMessages {
		if strings.Contains(ke.Message, `"`+name+`"`) {
			return &Error{Field: name, Message: msg}
		}
	}
	return &Error{Field: field, Message: ke.Message}
}

// TrimFields trims surrounding whitespace from the named top-level string
// properties of a JSON object.  Bodies that are not JSON objects are
// returned unchanged so that validation reports them.
func TrimFields(body []byte, keys ...string) []byte {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err != nil || obj == nil {
		return body
	}
	changed := false
	for _, k := range keys {
		raw, ok := obj[k]
		if !ok {
			continue
		}
		var s string
		if json.Unmarshal(raw, &s) != nil {
			continue
		}
		if t := strings.TrimSpace(s); t != s {
			b, err := json.Marshal(t)
			if err != nil {
				return body
			}
			obj[k] = b
			changed = true
		}
	}
	if !changed {
		return body
	}
	out, err := json.Marshal(obj)
	if err != nil {
		return body
	}
	return out
}
