package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/angelmondragon/cartreserve-backend/api/responses"
	"github.com/angelmondragon/cartreserve-backend/pkg/auth"
	"github.com/angelmondragon/cartreserve-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/cartreserve-backend/pkg/errors"
	"github.com/angelmondragon/cartreserve-backend/pkg/logger"
)

// CartSessionHeader carries the signed cart session token both ways.
const CartSessionHeader = "X-Cart-Session"

// CartSession resolves the anonymous shopper's cart. A missing, expired or
// forged token starts a new session whose token is returned in the response
// header; a valid token is echoed back unchanged.
func CartSession(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			token := strings.TrimSpace(r.Header.Get(CartSessionHeader))

			sessionKey := ""
			if token != "" {
				claims, err := auth.ParseSessionToken(cfg, token)
				if err == nil {
					sessionKey = claims.SessionKey()
				} else if logg != nil {
					logg.Debug(logg.WithField(ctx, "reason", err.Error()), "cart session token rejected")
				}
			}

			if sessionKey == "" {
				key, err := auth.NewSessionKey()
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "start cart session"))
					return
				}
				minted, err := auth.MintSessionToken(cfg, time.Now().UTC(), key)
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "start cart session"))
					return
				}
				sessionKey, token = key, minted
			}

			w.Header().Set(CartSessionHeader, token)
			ctx = WithCartSession(ctx, sessionKey)
			if logg != nil {
				ctx = logg.WithSessionKey(ctx, sessionKey)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
