package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"visit_tracker/internal/directory"
	"visit_tracker/internal/models"
	"visit_tracker/internal/visits"
)

type driverView struct {
	DriverID      string     `json:"driver_id" yaml:"driver_id"`
	Name          string     `json:"name" yaml:"name"`
	PhoneNumber   string     `json:"phone_number" yaml:"phone_number"`
	DLNumber      string     `json:"dl_number" yaml:"dl_number"`
	VehicleNumber string     `json:"vehicle_number" yaml:"vehicle_number"`
	VisitCount    int        `json:"visit_count" yaml:"visit_count"`
	LastPaidAt    *time.Time `json:"last_paid_at" yaml:"last_paid_at"`
}

func newDriverView(d models.Driver) driverView {
	return driverView{
		DriverID:      d.DriverID,
		Name:          d.Name,
		PhoneNumber:   d.PhoneNumber,
		DLNumber:      d.DLNumber,
		VehicleNumber: d.VehicleNumber,
		VisitCount:    d.VisitCount,
		LastPaidAt:    d.LastPaidAt,
	}
}

func driverTable(drivers []driverView) table {
	t := table{header: []string{"DRIVER ID", "NAME", "VEHICLE", "VISITS", "LAST PAID"}}
	for _, d := range drivers {
		paid := "-"
		if d.LastPaidAt != nil {
			paid = d.LastPaidAt.UTC().Format(time.RFC3339)
		}
		t.rows = append(t.rows, []string{d.DriverID, d.Name, d.VehicleNumber, strconv.Itoa(d.VisitCount), paid})
	}
	return t
}

type eventView struct {
	Kind       models.VisitKind `json:"kind" yaml:"kind"`
	VisitCount int              `json:"visit_count" yaml:"visit_count"`
	RecordedBy string           `json:"recorded_by" yaml:"recorded_by"`
	At         time.Time        `json:"at" yaml:"at"`
}

// NewDriversCommand creates the drivers command group.
func NewDriversCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "drivers",
		Short: "Inspect driver visit counters",
	}
	cmd.AddCommand(newDriversListCommand(opts))
	cmd.AddCommand(newDriversSearchCommand(opts))
	cmd.AddCommand(newDriversHistoryCommand(opts))
	return cmd
}

func newDriversListCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every driver in registration order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := opts.DB()
			if err != nil {
				return err
			}
			drivers, err := directory.New(db).ListAll(cmd.Context())
			if err != nil {
				return err
			}
			views := make([]driverView, 0, len(drivers))
			for _, d := range drivers {
				views = append(views, newDriverView(d))
			}
			return render(cmd.OutOrStdout(), opts.Format, views, driverTable(views))
		},
	}
}

// findDriver looks a driver up by vehicle number or driver id.
func findDriver(cmd *cobra.Command, opts *RootOptions, query string) (directory.Directory, *models.Driver, error) {
	db, err := opts.DB()
	if err != nil {
		return nil, nil, err
	}
	dir := directory.New(db)
	driver, found, err := visits.Search(cmd.Context(), dir, query)
	if err != nil {
		return nil, nil, err
	}
	if !found {
		return nil, nil, fmt.Errorf("driver not found: %s", query)
	}
	return dir, driver, nil
}

func newDriversSearchCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "search <vehicle-number|driver-id>",
		Short: "Show one driver",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, driver, err := findDriver(cmd, opts, args[0])
			if err != nil {
				return err
			}
			view := newDriverView(*driver)
			return render(cmd.OutOrStdout(), opts.Format, view, driverTable([]driverView{view}))
		},
	}
}

func newDriversHistoryCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "history <vehicle-number|driver-id>",
		Short: "Show the visit history of one driver",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, driver, err := findDriver(cmd, opts, args[0])
			if err != nil {
				return err
			}
			events, err := dir.ListEvents(cmd.Context(), driver.ID)
			if err != nil {
				return err
			}

			views := make([]eventView, 0, len(events))
			t := table{header: []string{"AT", "KIND", "COUNT", "BY"}}
			for _, e := range events {
				views = append(views, eventView{Kind: e.Kind, VisitCount: e.VisitCount, RecordedBy: e.RecordedBy, At: e.CreatedAt})
				t.rows = append(t.rows, []string{e.CreatedAt.UTC().Format(time.RFC3339), string(e.Kind), strconv.Itoa(e.VisitCount), e.RecordedBy})
			}
			return render(cmd.OutOrStdout(), opts.Format, views, t)
		},
	}
}
