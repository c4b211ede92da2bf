package cart

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	cartdto "github.com/angelmondragon/cartreserve-backend/api/controllers/cart/dto"
	"github.com/angelmondragon/cartreserve-backend/api/middleware"
	cartsvc "github.com/angelmondragon/cartreserve-backend/internal/cart"
	pkgerrors "github.com/angelmondragon/cartreserve-backend/pkg/errors"
)

func toAddInput(payload cartdto.AddItemRequest) cartsvc.AddInput {
	return cartsvc.AddInput{
		ProductID:   payload.ProductID,
		InventoryID: payload.InventoryID,
		Quantity:    payload.Quantity,
		Override:    payload.Override,
	}
}

func sessionFromRequest(r *http.Request) (string, error) {
	key := middleware.CartSessionFromContext(r.Context())
	if key == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "cart session is required")
	}
	return key, nil
}

func inventoryIDParam(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "inventoryId")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid inventory id")
	}
	return id, nil
}
