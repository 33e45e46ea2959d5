package controllers

import (
	"net/http"
	"strconv"

	"github.com/taskerway/dawat-storefront/api/responses"
	orderssvc "github.com/taskerway/dawat-storefront/internal/orders"
	"github.com/taskerway/dawat-storefront/pkg/logger"
	"github.com/taskerway/dawat-storefront/pkg/pagination"
)

// OrdersList exposes the local backup archive, most recent first. It is the
// reconciliation view for when a remote sink dropped an order.
func OrdersList(svc *orderssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

		page, err := svc.ListBackups(r.Context(), pagination.Params{
			Limit:  limit,
			Cursor: r.URL.Query().Get("cursor"),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}
