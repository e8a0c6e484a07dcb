package validators

import (
	"net/http"
	"strings"

	pkgerrors "github.com/rednammadhavi/laptopcare-erp/pkg/errors"
)

// BearerToken extracts the raw token from the Authorization header.
func BearerToken(r *http.Request) (string, error) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "missing authorization header")
	}
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "authorization header must use bearer scheme")
	}
	token := strings.TrimSpace(header[7:])
	if token == "" {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "missing bearer token")
	}
	return token, nil
}
