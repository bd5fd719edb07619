package http

import (
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
)

type AttendanceHandler interface {
	WorkingDays(w http.ResponseWriter, r *http.Request)
	EmployeeSummary(w http.ResponseWriter, r *http.Request)
	Departments(w http.ResponseWriter, r *http.Request)
	Company(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService) AttendanceHandler {
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
	}
}

// WorkingDays implements AttendanceHandler.
func (h *attendanceHandlerImpl) WorkingDays(w http.ResponseWriter, r *http.Request) {
	req := attendance.WorkingDaysRequest{
		StartDate: r.URL.Query().Get("start"),
		EndDate:   r.URL.Query().Get("end"),
	}

	result, err := h.attendanceService.CountWorkingDays(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// EmployeeSummary implements AttendanceHandler.
func (h *attendanceHandlerImpl) EmployeeSummary(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		response.HandleError(w, user.ErrInvalidPrincipal)
		return
	}

	employeeID := chi.URLParam(r, "employeeID")
	if employeeID == "" {
		response.BadRequest(w, "Employee ID is required", nil)
		return
	}

	req := attendance.EmployeeSummaryRequest{
		EmployeeID: employeeID,
		StartDate:  r.URL.Query().Get("start"),
		EndDate:    r.URL.Query().Get("end"),
		Scope:      principal.Scope(),
	}

	summary, err := h.attendanceService.GetEmployeeSummary(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, summary)
}

// Departments implements AttendanceHandler.
// Managers only ever see their own department; owners may narrow with ?department_id=.
func (h *attendanceHandlerImpl) Departments(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		response.HandleError(w, user.ErrInvalidPrincipal)
		return
	}

	req, err := periodRequest(r, principal)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	if principal.IsOwner() {
		req.DepartmentID = r.URL.Query().Get("department_id")
	} else {
		req.DepartmentID = principal.DepartmentID
	}

	report, err := h.attendanceService.GetDepartmentAttendance(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, report)
}

// Company implements AttendanceHandler.
func (h *attendanceHandlerImpl) Company(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		response.HandleError(w, user.ErrInvalidPrincipal)
		return
	}

	req, err := periodRequest(r, principal)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	summary, err := h.attendanceService.GetCompanyAttendance(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, summary)
}

// periodRequest reads ?month=&year= for the caller's company.
func periodRequest(r *http.Request, principal user.Principal) (attendance.PeriodRequest, error) {
	var errs validator.ValidationErrors

	month, err := strconv.Atoi(r.URL.Query().Get("month"))
	if err != nil {
		errs = append(errs, validator.ValidationError{Field: "month", Message: "month must be a number"})
	}
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		errs = append(errs, validator.ValidationError{Field: "year", Message: "year must be a number"})
	}
	if len(errs) > 0 {
		return attendance.PeriodRequest{}, errs
	}

	return attendance.PeriodRequest{
		CompanyID: principal.CompanyID,
		Month:     month,
		Year:      year,
	}, nil
}
