package client

import "strings"

// Error codes the backend uses to mark a 403 that invalidates the session.
const (
	CodePermissionDenied = "permission_denied"
	CodeSessionInvalid   = "session_invalid"
)

// ForbiddenPolicy decides which 403 answers end the session. Other 403s are returned
// as ordinary errors.
type ForbiddenPolicy struct {
	Codes []string
	// LegacyMessageMatch also ends the session when the message mentions "permission",
	// for backends that send no code.
	LegacyMessageMatch bool
}

func DefaultForbiddenPolicy() ForbiddenPolicy {
	return ForbiddenPolicy{
		Codes:              []string{CodePermissionDenied, CodeSessionInvalid},
		LegacyMessageMatch: true,
	}
}

func (p ForbiddenPolicy) EndsSession(apiErr *APIError) bool {
	if apiErr == nil {
		return false
	}
	for _, code := range p.Codes {
		if apiErr.Code != "" && strings.EqualFold(apiErr.Code, code) {
			return true
		}
	}
	if p.LegacyMessageMatch && apiErr.Code == "" {
		return strings.Contains(strings.ToLower(apiErr.Message), "permission")
	}
	return false
}
