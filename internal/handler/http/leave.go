package http

import (
	"net/http"

	"github.com/attendly/attendly-backend-go/internal/domain/leave"
	"github.com/attendly/attendly-backend-go/internal/handler/http/response"
)

type LeaveHandler interface {
	Submit(w http.ResponseWriter, r *http.Request)
	Decide(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	GetMy(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
}

type LeaveHandlerImpl struct {
	leaveService leave.LeaveService
}

func NewLeaveHandler(leaveService leave.LeaveService) LeaveHandler {
	return &LeaveHandlerImpl{
		leaveService: leaveService,
	}
}

func (h *LeaveHandlerImpl) Submit(w http.ResponseWriter, r *http.Request) {
	var req leave.SubmitLeaveRequest
	if !decodeJSON(w, r, "SubmitLeave", &req) {
		return
	}

	resp, err := h.leaveService.SubmitLeave(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Leave request submitted", resp)
}

func (h *LeaveHandlerImpl) Decide(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}

	var req leave.DecideLeaveRequest
	if !decodeJSON(w, r, "DecideLeave", &req) {
		return
	}
	req.ID = id

	resp, err := h.leaveService.DecideLeave(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Leave request "+resp.Status, resp)
}

func (h *LeaveHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}

	resp, err := h.leaveService.GetLeaveRequest(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, resp)
}

func (h *LeaveHandlerImpl) GetMy(w http.ResponseWriter, r *http.Request) {
	resp, err := h.leaveService.GetMyLeaveRequests(r.Context(), leaveFilter(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, resp)
}

func (h *LeaveHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	filter := leaveFilter(r)
	filter.EmployeeID = queryInt64Ptr(r, "employee_id")

	resp, err := h.leaveService.ListLeaveRequests(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, resp)
}

func leaveFilter(r *http.Request) leave.LeaveRequestFilter {
	return leave.LeaveRequestFilter{
		Status:    queryString(r, "status"),
		LeaveType: queryString(r, "leave_type"),
		StartDate: queryString(r, "start_date"),
		EndDate:   queryString(r, "end_date"),
		Page:      queryInt(r, "page"),
		Limit:     queryInt(r, "limit"),
	}
}
