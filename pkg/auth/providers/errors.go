package providers

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

var (
	ErrMissingIDToken  = errors.New("missing id_token in token")
	ErrInvalidAudience = errors.New("id_token audience does not match client id")
)

// maxErrorBody bounds how much of a failed response is kept for diagnostics.
const maxErrorBody = 1024

// TransportError reports a network failure, a non-2xx status or a response
// body that could not be decoded.
type TransportError struct {
	Endpoint   string
	StatusCode int    // 0 when no response was received
	Body       string // truncated response body
	Malformed  bool   // response was received but was not a JSON object
	Err        error
}

func (e *TransportError) Error() string {
	switch {
	case e.Malformed:
		return fmt.Sprintf("malformed response from %s: %v", e.Endpoint, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("request to %s failed: status %d %s: %s",
			e.Endpoint, e.StatusCode, http.StatusText(e.StatusCode), e.Body)
	default:
		return fmt.Sprintf("request to %s failed: %v", e.Endpoint, e.Err)
	}
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IdentityMappingError is returned when a profile was decoded but lacks a
// usable user identifier or email. Profile holds the decoded object; Error
// only names its keys since the values are personal data.
type IdentityMappingError struct {
	Profile map[string]interface{}
}

func (e *IdentityMappingError) Error() string {
	return fmt.Sprintf("unable to get user ID or email from profile with claims [%s]",
		strings.Join(profileKeys(e.Profile), ", "))
}

// profileKeys returns the sorted claim names of profile.
func profileKeys(profile map[string]interface{}) []string {
	keys := make([]string, 0, len(profile))
	for k := range profile {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
