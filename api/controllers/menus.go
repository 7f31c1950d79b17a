package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/restaus/restaus-backend/api/responses"
	"github.com/restaus/restaus-backend/api/validators"
	"github.com/restaus/restaus-backend/internal/menus"
	pkgerrors "github.com/restaus/restaus-backend/pkg/errors"
	"github.com/restaus/restaus-backend/pkg/logger"
)

type menuCreateRequest struct {
	CategoryID  string  `json:"category_id" validate:"required"`
	Name        string  `json:"name" validate:"required,min=1"`
	Description *string `json:"description,omitempty"`
	Price       string  `json:"price" validate:"required"`
	ImageURL    *string `json:"image_url,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
	DailyStock  int     `json:"daily_stock" validate:"gte=0"`
}

type menuUpdateRequest struct {
	CategoryID  *string `json:"category_id,omitempty"`
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1"`
	Description *string `json:"description,omitempty"`
	Price       *string `json:"price,omitempty"`
	ImageURL    *string `json:"image_url,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
	DailyStock  *int    `json:"daily_stock,omitempty" validate:"omitempty,gte=0"`
}

type categoryCreateRequest struct {
	Name      string  `json:"name" validate:"required,min=1"`
	Icon      *string `json:"icon,omitempty"`
	SortOrder int     `json:"sort_order" validate:"gte=0"`
}

func parsePrice(raw string) (decimal.Decimal, error) {
	price, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid price")
	}
	if price.IsNegative() {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
	}
	return price, nil
}

// MenuList returns the catalog filtered by category, active flag, remaining
// stock and a case-insensitive name search.
func MenuList(svc menus.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "menus service unavailable"))
			return
		}

		categoryID, err := validators.ParseQueryUUID(r, "category_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		isActive, err := validators.ParseQueryBool(r, "is_active")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		inStock, err := validators.ParseQueryBool(r, "in_stock")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filters := menus.ListFilters{
			CategoryID: categoryID,
			IsActive:   isActive,
			InStock:    inStock != nil && *inStock,
			Search:     strings.TrimSpace(r.URL.Query().Get("search")),
		}

		list, err := svc.ListMenus(r.Context(), filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// MenuDetail returns one catalog entry.
func MenuDetail(svc menus.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "menus service unavailable"))
			return
		}

		id, err := parsePathUUID(r, "menuId", "menu id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		menu, err := svc.GetMenu(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, menu)
	}
}

// MenuCreate adds a catalog entry under an existing category.
func MenuCreate(svc menus.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "menus service unavailable"))
			return
		}

		var req menuCreateRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		categoryID, err := uuid.Parse(req.CategoryID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category id"))
			return
		}
		price, err := parsePrice(req.Price)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := menus.CreateMenuInput{
			CategoryID:  categoryID,
			Name:        req.Name,
			Description: req.Description,
			Price:       price,
			ImageURL:    req.ImageURL,
			IsActive:    req.IsActive == nil || *req.IsActive,
			DailyStock:  req.DailyStock,
		}

		menu, err := svc.CreateMenu(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, menu)
	}
}

// MenuUpdate mutates catalog fields; changing daily_stock also resets the
// remaining counter.
func MenuUpdate(svc menus.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "menus service unavailable"))
			return
		}

		id, err := parsePathUUID(r, "menuId", "menu id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req menuUpdateRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := menus.UpdateMenuInput{
			Name:        req.Name,
			Description: req.Description,
			ImageURL:    req.ImageURL,
			IsActive:    req.IsActive,
			DailyStock:  req.DailyStock,
		}
		if req.CategoryID != nil {
			categoryID, perr := uuid.Parse(*req.CategoryID)
			if perr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, perr, "invalid category id"))
				return
			}
			input.CategoryID = &categoryID
		}
		if req.Price != nil {
			price, perr := parsePrice(*req.Price)
			if perr != nil {
				responses.WriteError(r.Context(), logg, w, perr)
				return
			}
			input.Price = &price
		}

		menu, err := svc.UpdateMenu(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, menu)
	}
}

// MenuDelete removes a menu item and its stock row. Items referenced by
// existing orders stay put so order history keeps its lines.
func MenuDelete(svc menus.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "menus service unavailable"))
			return
		}

		id, err := parsePathUUID(r, "menuId", "menu id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteMenu(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// CategoryList returns all categories in sort order.
func CategoryList(svc menus.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "menus service unavailable"))
			return
		}

		list, err := svc.ListCategories(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// CategoryCreate adds a menu category.
func CategoryCreate(svc menus.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "menus service unavailable"))
			return
		}

		var req categoryCreateRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		category, err := svc.CreateCategory(r.Context(), menus.CreateCategoryInput{
			Name:      req.Name,
			Icon:      req.Icon,
			SortOrder: req.SortOrder,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, category)
	}
}
