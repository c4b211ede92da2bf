package checkout

import (
	"net/http"

	checkoutdto "github.com/angelmondragon/cartreserve-backend/api/controllers/checkout/dto"
	"github.com/angelmondragon/cartreserve-backend/api/middleware"
	"github.com/angelmondragon/cartreserve-backend/api/responses"
	"github.com/angelmondragon/cartreserve-backend/api/validators"
	cartsvc "github.com/angelmondragon/cartreserve-backend/internal/cart"
	pkgerrors "github.com/angelmondragon/cartreserve-backend/pkg/errors"
	"github.com/angelmondragon/cartreserve-backend/pkg/logger"
)

const maxAddressIDLen = 64

func sessionFromRequest(r *http.Request) (string, error) {
	key := middleware.CartSessionFromContext(r.Context())
	if key == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "cart session is required")
	}
	return key, nil
}

func serviceUnavailable() error {
	return pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable")
}

// DeliveryOptions enters checkout: holds are stretched to the checkout
// window, any previous delivery choice is dropped and the active options
// are listed.
func DeliveryOptions(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable())
			return
		}
		sessionKey, err := sessionFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		expiresAt, err := svc.ExtendForCheckout(r.Context(), sessionKey)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		options, err := svc.ListDeliveryOptions(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newDeliveryOptions(options, expiresAt))
	}
}

func SelectDelivery(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable())
			return
		}
		sessionKey, err := sessionFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload checkoutdto.SelectDeliveryRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		quote, err := svc.UpdateDelivery(r.Context(), sessionKey, payload.DeliveryOptionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newDeliveryQuote(quote))
	}
}

func SelectAddress(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable())
			return
		}
		sessionKey, err := sessionFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload checkoutdto.SelectAddressRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		addressID := validators.SanitizeString(payload.AddressID, maxAddressIDLen)
		if err := svc.SelectAddress(r.Context(), sessionKey, addressID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// Confirm turns the session's holds into a sale.
func Confirm(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable())
			return
		}
		sessionKey, err := sessionFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		confirmation, err := svc.Confirm(r.Context(), sessionKey)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newConfirmation(confirmation))
	}
}
