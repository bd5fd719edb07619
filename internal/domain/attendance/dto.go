package attendance

import (
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/calendar"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/validator"
)

// PeriodRequest selects a company month. DepartmentID narrows a department report to one
// department.
type PeriodRequest struct {
	CompanyID    string `json:"company_id" validate:"required"`
	DepartmentID string `json:"department_id,omitempty"`
	Month        int    `json:"month" validate:"min=1,max=12"`
	Year         int    `json:"year" validate:"min=2000,max=9999"`
}

func (r *PeriodRequest) Validate() error {
	return validator.Struct(r)
}

type EmployeeSummaryRequest struct {
	EmployeeID string `json:"employee_id" validate:"required"`
	StartDate  string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate    string `json:"end_date" validate:"required,datetime=2006-01-02"`

	Scope employee.Scope `json:"-"`
}

func (r *EmployeeSummaryRequest) Validate() error {
	if err := validator.Struct(r); err != nil {
		return err
	}

	start, _ := calendar.ParseDate(r.StartDate)
	end, _ := calendar.ParseDate(r.EndDate)
	if end.Before(start) {
		return validator.New("end_date", "end_date must not be before start_date")
	}
	return nil
}

type WorkingDaysRequest struct {
	StartDate string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"end_date" validate:"required,datetime=2006-01-02"`
}

func (r *WorkingDaysRequest) Validate() error {
	return validator.Struct(r)
}

type WorkingDaysResponse struct {
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	WorkingDays int    `json:"working_days"`
}
