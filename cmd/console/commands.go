package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/jwalitptl/clinic-console/internal/app"
	"github.com/jwalitptl/clinic-console/internal/config"
	"github.com/jwalitptl/clinic-console/internal/model"
	"github.com/jwalitptl/clinic-console/pkg/httputil"
)

const commandTimeout = 30 * time.Second

// withConsole loads config, builds a Console for one command and closes it.
func withConsole(configPath string, fn func(ctx context.Context, c *app.Console) error) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	c, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer c.Close()
	return fn(ctx, c)
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printEnvelope prints a successful payload or turns a failed envelope into
// a command error.
func printEnvelope[T any](env httputil.Envelope[T]) error {
	if !env.OK() {
		return fmt.Errorf("%d: %s", env.Code, env.Message)
	}
	return printJSON(env.Data)
}

func loginCmd(configPath *string) *cobra.Command {
	var username, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and persist the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withConsole(*configPath, func(ctx context.Context, c *app.Console) error {
				if err := c.SignIn(ctx, model.LoginRequest{Username: username, Password: password}); err != nil {
					return err
				}
				return printJSON(map[string]interface{}{"role": c.Session.Role(), "user": c.Session.User()})
			})
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "username")
	cmd.Flags().StringVarP(&password, "password", "P", "", "password")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func logoutCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the persisted session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withConsole(*configPath, func(ctx context.Context, c *app.Console) error {
				return c.Session.Logout(ctx)
			})
		},
	}
}

func whoamiCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withConsole(*configPath, func(ctx context.Context, c *app.Console) error {
				if !c.Session.IsAuthenticated() {
					return fmt.Errorf("not signed in")
				}
				return printJSON(map[string]interface{}{"role": c.Session.Role(), "user": c.Session.User()})
			})
		},
	}
}

func appointmentsCmd(configPath *string) *cobra.Command {
	var (
		filters model.AppointmentFilters
		status  string
	)
	cmd := &cobra.Command{
		Use:   "appointments",
		Short: "List appointments",
		RunE: func(cmd *cobra.Command, args []string) error {
			filters.Status = model.AppointmentStatus(status)
			return withConsole(*configPath, func(ctx context.Context, c *app.Console) error {
				return printEnvelope(c.Appointments.ListAppointments(ctx, filters))
			})
		},
	}
	cmd.Flags().Int64Var(&filters.PatientID, "patient", 0, "patient id")
	cmd.Flags().Int64Var(&filters.DoctorID, "doctor", 0, "doctor id")
	cmd.Flags().StringVar(&status, "status", "", "pending, completed or cancelled")
	cmd.Flags().IntVar(&filters.Page, "page", 1, "page number")
	cmd.Flags().IntVar(&filters.PageSize, "page-size", model.DefaultPageSize, "page size")

	var target string
	statusCmd := &cobra.Command{
		Use:   "status <apptId>",
		Short: "Move an appointment to another status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid appointment id %q", args[0])
			}
			return withConsole(*configPath, func(ctx context.Context, c *app.Console) error {
				req := model.UpdateAppointmentStatusRequest{Status: model.AppointmentStatus(target)}
				return printEnvelope(c.Appointments.UpdateAppointmentStatus(ctx, id, req))
			})
		},
	}
	statusCmd.Flags().StringVar(&target, "to", "", "target status")
	_ = statusCmd.MarkFlagRequired("to")
	cmd.AddCommand(statusCmd)
	return cmd
}

func prescriptionsCmd(configPath *string) *cobra.Command {
	var status string
	cmd := &cobra.Command{
		Use:   "prescriptions",
		Short: "List prescriptions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withConsole(*configPath, func(ctx context.Context, c *app.Console) error {
				return printEnvelope(c.Pharmacy.ListPrescriptions(ctx, model.PrescriptionStatus(status)))
			})
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "pending, approved or dispensed")

	var target string
	statusCmd := &cobra.Command{
		Use:   "status <id>",
		Short: "Approve or dispense a prescription",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withConsole(*configPath, func(ctx context.Context, c *app.Console) error {
				req := model.UpdatePrescriptionStatusRequest{Status: model.PrescriptionStatus(target)}
				return printEnvelope(c.Pharmacy.UpdatePrescriptionStatus(ctx, args[0], req))
			})
		},
	}
	statusCmd.Flags().StringVar(&target, "to", "", "target status")
	_ = statusCmd.MarkFlagRequired("to")
	cmd.AddCommand(statusCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "low-stock",
		Short: "List medicines at or below their warning stock",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withConsole(*configPath, func(ctx context.Context, c *app.Console) error {
				return printEnvelope(c.Pharmacy.LowStockMedicines(ctx))
			})
		},
	})
	return cmd
}

func reportsCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reports",
		Short: "Visit and dispensing reports",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "daily <YYYY-MM-DD>",
		Short: "Visits on one day",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withConsole(*configPath, func(ctx context.Context, c *app.Console) error {
				return printEnvelope(c.Reports.DailyVisits(ctx, args[0]))
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "drugs <YYYY-MM-DD>",
		Short: "Drugs dispensed on one day",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withConsole(*configPath, func(ctx context.Context, c *app.Console) error {
				return printEnvelope(c.Reports.DailyDrugs(ctx, args[0]))
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "monthly <YYYY-MM>",
		Short: "Visits per day over a month",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withConsole(*configPath, func(ctx context.Context, c *app.Console) error {
				return printEnvelope(c.Reports.MonthlyVisits(ctx, args[0]))
			})
		},
	})
	return cmd
}
