package controllers

import (
	"net/http"
	"strings"

	"github.com/fidgetclicks/fidgetclicks-backend/api/responses"
	inventorysvc "github.com/fidgetclicks/fidgetclicks-backend/internal/inventory"
	"github.com/fidgetclicks/fidgetclicks-backend/pkg/enums"
	pkgerrors "github.com/fidgetclicks/fidgetclicks-backend/pkg/errors"
	"github.com/fidgetclicks/fidgetclicks-backend/pkg/logger"
)

// InventorySnapshot returns the current stock position across active
// components, with low-stock and out-of-stock flags.
func InventorySnapshot(svc inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		var kind *enums.ComponentKind
		if raw := strings.TrimSpace(r.URL.Query().Get("kind")); raw != "" {
			parsed, err := enums.ParseComponentKind(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid kind"))
				return
			}
			kind = &parsed
		}

		snapshot, err := svc.Snapshot(r.Context(), kind)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, snapshot)
	}
}
