package utils

import (
	"strings"

	"github.com/google/uuid"
)

var newUUIDv7 = uuid.NewV7

// GenerateUUIDv7 generates a new UUID v7
func GenerateUUIDv7() uuid.UUID {
	id, err := newUUIDv7()
	if err != nil {
		return uuid.New()
	}
	return id
}

// NewReferenceID builds a gateway-correlatable order id such as
// "DEP-0190f0c4a9b27c3e8d6f1a2b3c4d5e6f". The prefix is upper-cased.
func NewReferenceID(prefix string) string {
	id := strings.ReplaceAll(GenerateUUIDv7().String(), "-", "")
	if prefix == "" {
		return id
	}
	return strings.ToUpper(prefix) + "-" + id
}

// ParseUUIDs parses every string, stopping at the first invalid value
func ParseUUIDs(values []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(values))
	for _, v := range values {
		id, err := uuid.Parse(strings.TrimSpace(v))
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
