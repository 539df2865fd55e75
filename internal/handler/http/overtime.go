package http

import (
	"net/http"

	"github.com/attendly/attendly-backend-go/internal/domain/overtime"
	"github.com/attendly/attendly-backend-go/internal/handler/http/response"
)

type OvertimeHandler interface {
	Submit(w http.ResponseWriter, r *http.Request)
	Decide(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	GetMy(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
}

type OvertimeHandlerImpl struct {
	overtimeService overtime.OvertimeService
}

func NewOvertimeHandler(overtimeService overtime.OvertimeService) OvertimeHandler {
	return &OvertimeHandlerImpl{overtimeService: overtimeService}
}

func (h *OvertimeHandlerImpl) Submit(w http.ResponseWriter, r *http.Request) {
	var req overtime.SubmitOvertimeRequest
	if !decodeJSON(w, r, "SubmitOvertime", &req) {
		return
	}

	resp, err := h.overtimeService.SubmitOvertime(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Overtime submitted", resp)
}

func (h *OvertimeHandlerImpl) Decide(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}

	var req overtime.DecideOvertimeRequest
	if !decodeJSON(w, r, "DecideOvertime", &req) {
		return
	}
	req.ID = id

	resp, err := h.overtimeService.DecideOvertime(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Overtime "+resp.Status, resp)
}

func (h *OvertimeHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}

	resp, err := h.overtimeService.GetOvertime(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, resp)
}

func (h *OvertimeHandlerImpl) GetMy(w http.ResponseWriter, r *http.Request) {
	resp, err := h.overtimeService.GetMyOvertime(r.Context(), overtimeFilter(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, resp)
}

func (h *OvertimeHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	filter := overtimeFilter(r)
	filter.EmployeeID = queryInt64Ptr(r, "employee_id")

	resp, err := h.overtimeService.ListOvertime(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, resp)
}

func overtimeFilter(r *http.Request) overtime.OvertimeFilter {
	return overtime.OvertimeFilter{
		Status:    queryString(r, "status"),
		StartDate: queryString(r, "start_date"),
		EndDate:   queryString(r, "end_date"),
		Page:      queryInt(r, "page"),
		Limit:     queryInt(r, "limit"),
	}
}
