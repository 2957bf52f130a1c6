// Package api exposes the storefront over HTTP.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/errors"

	"goflare.io/storefront"
	"goflare.io/storefront/account"
	"goflare.io/storefront/catalog"
	"goflare.io/storefront/models"
	"goflare.io/storefront/order"
)

// jsonError represents a JSON error payload.
type jsonError struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// WriteJSONError writes a JSON error payload with the given status code.
func WriteJSONError(w http.ResponseWriter, status int, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(jsonError{Error: message, Details: details})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorMapping struct {
	target error
	status int
	code   string
}

var errorMappings = []errorMapping{
	{storefront.ErrInvalidQuantity, http.StatusBadRequest, "invalid_quantity"},
	{models.ErrMissingShipping, http.StatusBadRequest, "validation_error"},
	{models.ErrUnknownPaymentMethod, http.StatusBadRequest, "validation_error"},
	{account.ErrMissingFields, http.StatusBadRequest, "validation_error"},
	{account.ErrInvalidEmail, http.StatusBadRequest, "validation_error"},
	{account.ErrPasswordTooShort, http.StatusBadRequest, "validation_error"},
	{account.ErrPasswordTooLong, http.StatusBadRequest, "validation_error"},
	{account.ErrPasswordMismatch, http.StatusBadRequest, "validation_error"},
	{storefront.ErrNotLoggedIn, http.StatusUnauthorized, "login_required"},
	{account.ErrUserNotFound, http.StatusUnauthorized, "invalid_login"},
	{account.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_login"},
	{catalog.ErrProductNotFound, http.StatusNotFound, "not_found"},
	{order.ErrOrderNotFound, http.StatusNotFound, "not_found"},
	{storefront.ErrOrderNotOwned, http.StatusNotFound, "not_found"},
	{account.ErrEmailTaken, http.StatusConflict, "email_taken"},
	{storefront.ErrEmptyCart, http.StatusConflict, "empty_cart"},
	{catalog.ErrInsufficientStock, http.StatusConflict, "insufficient_stock"},
	{storefront.ErrPaymentUnavailable, http.StatusServiceUnavailable, "payment_unavailable"},
}

// statusFor maps a service error to its HTTP status and error code.
func statusFor(err error) (int, string) {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return m.status, m.code
		}
	}
	return http.StatusInternalServerError, "internal_error"
}
