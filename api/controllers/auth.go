package controllers

import (
	"net/http"

	"github.com/restaus/restaus-backend/api/responses"
	"github.com/restaus/restaus-backend/api/validators"
	"github.com/restaus/restaus-backend/internal/auth"
	pkgerrors "github.com/restaus/restaus-backend/pkg/errors"
	"github.com/restaus/restaus-backend/pkg/logger"
)

// Login exchanges staff credentials for an access token.
func Login(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		var req auth.LoginRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp, err := svc.Login(r.Context(), req)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, resp)
	}
}
