package controllers

import (
	"net/http"

	"github.com/restaus/restaus-backend/api/responses"
	"github.com/restaus/restaus-backend/api/validators"
	"github.com/restaus/restaus-backend/internal/tables"
	"github.com/restaus/restaus-backend/pkg/enums"
	pkgerrors "github.com/restaus/restaus-backend/pkg/errors"
	"github.com/restaus/restaus-backend/pkg/logger"
)

type tableCreateRequest struct {
	TableNumber string `json:"table_number" validate:"required,min=1"`
	Capacity    int    `json:"capacity" validate:"required,gt=0"`
}

type tableUpdateRequest struct {
	TableNumber *string `json:"table_number,omitempty" validate:"omitempty,min=1"`
	Capacity    *int    `json:"capacity,omitempty" validate:"omitempty,gt=0"`
	Status      *string `json:"status,omitempty"`
}

// TableList returns the full floor plan with derived occupancy and unpaid
// warnings.
func TableList(svc tables.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "tables service unavailable"))
			return
		}

		list, err := svc.ListTables(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// TableDetail returns one table by id.
func TableDetail(svc tables.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "tables service unavailable"))
			return
		}

		id, err := parsePathUUID(r, "tableId", "table id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		table, err := svc.GetTable(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, table)
	}
}

// TableCreate registers a new table on the floor plan.
func TableCreate(svc tables.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "tables service unavailable"))
			return
		}

		var req tableCreateRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		table, err := svc.CreateTable(r.Context(), tables.CreateTableInput{
			TableNumber: req.TableNumber,
			Capacity:    req.Capacity,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, table)
	}
}

// TableUpdate mutates table number, capacity or the admin-ownable statuses.
func TableUpdate(svc tables.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "tables service unavailable"))
			return
		}

		id, err := parsePathUUID(r, "tableId", "table id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req tableUpdateRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := tables.UpdateTableInput{
			TableNumber: req.TableNumber,
			Capacity:    req.Capacity,
		}
		if req.Status != nil {
			status, perr := enums.ParseTableStatus(*req.Status)
			if perr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, perr, "invalid table status"))
				return
			}
			input.Status = &status
		}

		table, err := svc.UpdateTable(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, table)
	}
}

// TableDelete removes a table that is not currently occupied.
func TableDelete(svc tables.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "tables service unavailable"))
			return
		}

		id, err := parsePathUUID(r, "tableId", "table id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteTable(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
