package http

import (
	"net/http"

	"github.com/attendly/attendly-backend-go/internal/domain/payroll"
	"github.com/attendly/attendly-backend-go/internal/handler/http/response"
)

type PayrollHandler interface {
	Process(w http.ResponseWriter, r *http.Request)
	CreateDraft(w http.ResponseWriter, r *http.Request)
	MarkPaid(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	GetMy(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Summary(w http.ResponseWriter, r *http.Request)
	Export(w http.ResponseWriter, r *http.Request)
}

type payrollHandlerImpl struct {
	payrollService payroll.PayrollService
}

func NewPayrollHandler(payrollService payroll.PayrollService) PayrollHandler {
	return &payrollHandlerImpl{payrollService: payrollService}
}

// Process computes (or recomputes) one employee's month.
func (h *payrollHandlerImpl) Process(w http.ResponseWriter, r *http.Request) {
	var req payroll.ProcessPayrollRequest
	if !decodeJSON(w, r, "ProcessPayroll", &req) {
		return
	}

	resp, err := h.payrollService.ProcessPayroll(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payroll processed", resp)
}

func (h *payrollHandlerImpl) CreateDraft(w http.ResponseWriter, r *http.Request) {
	var req payroll.CreateDraftRequest
	if !decodeJSON(w, r, "CreatePayrollDraft", &req) {
		return
	}

	resp, err := h.payrollService.CreateDraft(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Payroll draft created", resp)
}

func (h *payrollHandlerImpl) MarkPaid(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}

	resp, err := h.payrollService.MarkPaid(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payroll marked as paid", resp)
}

func (h *payrollHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}

	resp, err := h.payrollService.GetPayrollRecord(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, resp)
}

func (h *payrollHandlerImpl) GetMy(w http.ResponseWriter, r *http.Request) {
	resp, err := h.payrollService.GetMyPayrollRecords(r.Context(), payrollFilter(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, resp)
}

func (h *payrollHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	filter := payrollFilter(r)
	filter.EmployeeID = queryInt64Ptr(r, "employee_id")

	resp, err := h.payrollService.ListPayrollRecords(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, resp)
}

func (h *payrollHandlerImpl) Summary(w http.ResponseWriter, r *http.Request) {
	resp, err := h.payrollService.GetPayrollSummary(r.Context(), periodRequest(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, resp)
}

// Export streams the month's records as an XLSX attachment.
func (h *payrollHandlerImpl) Export(w http.ResponseWriter, r *http.Request) {
	file, err := h.payrollService.ExportPayroll(r.Context(), periodRequest(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.File(w, file.Filename, file.ContentType, file.Content)
}

func payrollFilter(r *http.Request) payroll.PayrollFilter {
	return payroll.PayrollFilter{
		PeriodMonth: queryIntPtr(r, "period_month"),
		PeriodYear:  queryIntPtr(r, "period_year"),
		Status:      queryString(r, "status"),
		Page:        queryInt(r, "page"),
		Limit:       queryInt(r, "limit"),
		SortOrder:   r.URL.Query().Get("sort_order"),
	}
}

func periodRequest(r *http.Request) payroll.PeriodRequest {
	return payroll.PeriodRequest{
		PeriodMonth: queryInt(r, "period_month"),
		PeriodYear:  queryInt(r, "period_year"),
	}
}
