package validate

import (
	"fmt"
	"regexp"
)

// collectionRx keeps collection names safe for use as directory names:
// letters, digits, hyphen and underscore, 1-64 chars.
var collectionRx = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// CollectionName validates a collection name. Names become directories under
// the data root, so path separators and dots are rejected outright.
func CollectionName(v string) error {
	if v == "" {
		return fmt.Errorf("collection is required")
	}
	if !collectionRx.MatchString(v) {
		return fmt.Errorf("invalid collection name %q; allowed letters, digits, hyphen, underscore", v)
	}
	return nil
}

// RecordID validates a record id parameter.
func RecordID(v string) error {
	if v == "" {
		return fmt.Errorf("id is required")
	}
	if len(v) > 128 {
		return fmt.Errorf("id exceeds 128 characters")
	}
	return nil
}

// Fields validates the field map of an add or update request.
func Fields(fields map[string]interface{}) error {
	if len(fields) == 0 {
		return fmt.Errorf("fields are required")
	}
	for k := range fields {
		if k == "" {
			return fmt.Errorf("field names must be non-empty")
		}
		if len(k) > 128 {
			return fmt.Errorf("field name %q exceeds 128 characters", k)
		}
	}
	return nil
}
