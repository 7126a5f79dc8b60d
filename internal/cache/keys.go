package cache

import "strings"

// Key namespaces for ephemeral entities. Keys have the form prefix:field1[:field2].
const (
	stagedRegistrationPrefix = "registration"
	tokenGrantPrefix         = "token"
)

// StagedRegistrationKey derives the key of a staged registration from the
// issuing code's identity and value.
func StagedRegistrationKey(authCodeID, code string) string {
	return join(stagedRegistrationPrefix, authCodeID, code)
}

// TokenGrantKey derives the key of the grant recorded for a token id.
func TokenGrantKey(tokenID string) string {
	return join(tokenGrantPrefix, tokenID)
}

func join(prefix string, fields ...string) string {
	return prefix + ":" + strings.Join(fields, ":")
}
