package services

import "github.com/google/uuid"

// isUUID guards queries against ids that cannot match a uuid column.
func isUUID(s string) bool {
	return uuid.Validate(s) == nil
}
