package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/config"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/calendar"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/database"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/logger"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/repository/postgresql"
	attendanceService "github.com/cmlabs-hris/hris-attendance-engine/internal/service/attendance"
	"github.com/spf13/cobra"
)

// env is what every store-backed command needs.
type env struct {
	cfg *config.Config
	log *slog.Logger
	db  *database.DB
}

func connect(cmd *cobra.Command) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log := logger.New(cmd.ErrOrStderr(), cfg.App.Env, cfg.App.LogLevel)

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return &env{cfg: cfg, log: log, db: db}, nil
}

func (e *env) rollup() *attendanceService.Rollup {
	return attendanceService.NewRollup(
		postgresql.NewDepartmentRepository(e.db),
		postgresql.NewEmployeeRepository(e.db),
		postgresql.NewAttendanceRepository(e.db),
		postgresql.NewRollupRepository(e.db),
		e.cfg.Rollup.FallbackConcurrency,
		e.log,
	)
}

func (e *env) attendanceService() attendance.AttendanceService {
	return attendanceService.NewAttendanceService(
		postgresql.NewAttendanceRepository(e.db),
		postgresql.NewEmployeeRepository(e.db),
		postgresql.NewDepartmentRepository(e.db),
		e.rollup(),
		e.log,
	)
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "hrisctl",
		Short:        "Operate the attendance and leave engine",
		SilenceUsage: true,
	}
	root.AddCommand(
		newRollupCmd(),
		newCompanyCmd(),
		newWorkingDaysCmd(),
		newReconcileCmd(),
	)
	return root
}

type periodFlags struct {
	company    string
	department string
	month      int
	year       int
}

func (p *periodFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&p.company, "company", "", "company ID")
	cmd.Flags().IntVar(&p.month, "month", 0, "month (1-12)")
	cmd.Flags().IntVar(&p.year, "year", 0, "year")
	_ = cmd.MarkFlagRequired("company")
	_ = cmd.MarkFlagRequired("month")
	_ = cmd.MarkFlagRequired("year")
}

func (p *periodFlags) request() attendance.PeriodRequest {
	return attendance.PeriodRequest{
		CompanyID:    p.company,
		DepartmentID: p.department,
		Month:        p.month,
		Year:         p.year,
	}
}

func newRollupCmd() *cobra.Command {
	var period periodFlags
	cmd := &cobra.Command{
		Use:   "rollup",
		Short: "Print the department attendance report for a month as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := connect(cmd)
			if err != nil {
				return err
			}
			defer e.db.Close()

			report, err := e.attendanceService().GetDepartmentAttendance(cmd.Context(), period.request())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), report)
		},
	}
	period.bind(cmd)
	cmd.Flags().StringVar(&period.department, "department", "", "restrict to one department ID")
	return cmd
}

func newCompanyCmd() *cobra.Command {
	var period periodFlags
	cmd := &cobra.Command{
		Use:   "company",
		Short: "Print the pooled company attendance for a month as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := connect(cmd)
			if err != nil {
				return err
			}
			defer e.db.Close()

			summary, err := e.attendanceService().GetCompanyAttendance(cmd.Context(), period.request())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), summary)
		},
	}
	period.bind(cmd)
	return cmd
}

func newWorkingDaysCmd() *cobra.Command {
	var start, end string
	cmd := &cobra.Command{
		Use:   "working-days",
		Short: "Count Monday-Friday dates in an inclusive range",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := attendance.WorkingDaysRequest{StartDate: start, EndDate: end}
			if err := req.Validate(); err != nil {
				return err
			}
			from, _ := calendar.ParseDate(start)
			to, _ := calendar.ParseDate(end)

			return printJSON(cmd.OutOrStdout(), attendance.WorkingDaysResponse{
				StartDate:   start,
				EndDate:     end,
				WorkingDays: calendar.WorkingDays(from, to),
			})
		},
	}
	cmd.Flags().StringVar(&start, "start", "", "first date, YYYY-MM-DD")
	cmd.Flags().StringVar(&end, "end", "", "last date, YYYY-MM-DD")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
	return cmd
}

func newReconcileCmd() *cobra.Command {
	var period periodFlags
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Compare aggregated and recomputed department attendance for a month",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := period.request()
			if err := req.Validate(); err != nil {
				return err
			}

			e, err := connect(cmd)
			if err != nil {
				return err
			}
			defer e.db.Close()

			result, err := e.rollup().Reconcile(cmd.Context(), period.company, period.year, period.month)
			if err != nil {
				return err
			}
			if err := printJSON(cmd.OutOrStdout(), result); err != nil {
				return err
			}
			if len(result.Drifted) > 0 {
				return fmt.Errorf("%d department(s) drifted", len(result.Drifted))
			}
			return nil
		},
	}
	period.bind(cmd)
	return cmd
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// executeContext runs the CLI with args, writing command output to stdout.
func executeContext(ctx context.Context, args []string, stdout io.Writer) error {
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(os.Stderr)
	return root.ExecuteContext(ctx)
}
