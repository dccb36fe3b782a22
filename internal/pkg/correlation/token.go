package correlation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/storepulse/storepulse/internal/pkg/apperrors"
)

// Separator joins the app user handle and the store domain inside the token.
// Natural identifiers on either side never contain a double underscore.
const Separator = "__"

var (
	// trailingDomainRe matches a domain glued to the end of a token whose
	// separator was stripped by the upstream redirect (label(.label)+ with a
	// TLD of at least two characters).
	trailingDomainRe = regexp.MustCompile(`([a-zA-Z0-9-]+\.)+[a-zA-Z]{2,}$`)
	handleCleanupRe  = regexp.MustCompile(`[^A-Za-z0-9_-]`)
)

// Encode builds the composite token that survives the round trip through the
// third-party authorization redirect, which preserves only one opaque field.
func Encode(appUserID, domain string) string {
	return appUserID + Separator + domain
}

// Decode splits a token into the correlation handle and the store domain.
// Malformed tokens (separator stripped by the upstream) fall back to
// recovering a trailing domain; if no domain can be recovered the handshake
// must be aborted, never guessed.
func Decode(token string) (appUserID, domain string, err error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", "", apperrors.Validationf("correlation token is empty")
	}

	if idx := strings.Index(token, Separator); idx >= 0 {
		appUserID = token[:idx]
		domain = token[idx+len(Separator):]
		if appUserID == "" || domain == "" {
			return "", "", apperrors.Validationf("correlation token %q has empty parts", token)
		}
		return appUserID, domain, nil
	}

	// Separator absent: try to peel a domain off the tail.
	domain = trailingDomainRe.FindString(token)
	if domain == "" {
		return "", "", fmt.Errorf("cannot recover store domain from token %q: %w", token, apperrors.ErrValidation)
	}
	appUserID = handleCleanupRe.ReplaceAllString(strings.TrimSuffix(token, domain), "")
	if appUserID == "" {
		return "", "", fmt.Errorf("cannot recover handle from token %q: %w", token, apperrors.ErrValidation)
	}
	return appUserID, domain, nil
}
