package controllers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/taskerway/dawat-storefront/api/responses"
	"github.com/taskerway/dawat-storefront/internal/catalog"
	pkgerrors "github.com/taskerway/dawat-storefront/pkg/errors"
	"github.com/taskerway/dawat-storefront/pkg/logger"
)

// Menu lists the catalog.
func Menu() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, catalog.List())
	}
}

// MenuItem returns one product by id.
func MenuItem(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.Atoi(chi.URLParam(r, "productId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id"))
			return
		}

		product, err := catalog.Find(id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}
