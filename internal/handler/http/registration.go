package http

import (
	"net/http"

	"github.com/attendly/attendly-backend-go/internal/domain/registration"
	"github.com/attendly/attendly-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type RegistrationCodeHandler interface {
	Generate(w http.ResponseWriter, r *http.Request)
	Validate(w http.ResponseWriter, r *http.Request)
	Consume(w http.ResponseWriter, r *http.Request)
}

type registrationCodeHandlerImpl struct {
	codeService registration.RegistrationCodeService
}

func NewRegistrationCodeHandler(codeService registration.RegistrationCodeService) RegistrationCodeHandler {
	return &registrationCodeHandlerImpl{codeService: codeService}
}

func (h *registrationCodeHandlerImpl) Generate(w http.ResponseWriter, r *http.Request) {
	var req registration.GenerateRequest
	if r.ContentLength != 0 && !decodeJSON(w, r, "GenerateRegistrationCode", &req) {
		return
	}

	resp, err := h.codeService.Generate(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Registration code generated", resp)
}

// Validate is public so the registration form can check a code before submitting.
func (h *registrationCodeHandlerImpl) Validate(w http.ResponseWriter, r *http.Request) {
	resp, err := h.codeService.IsValid(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, resp)
}

func (h *registrationCodeHandlerImpl) Consume(w http.ResponseWriter, r *http.Request) {
	resp, err := h.codeService.Consume(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Registration code marked as used", resp)
}
