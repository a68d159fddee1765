package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/Shivanand-hulikatti/fitness-class-booking/internal/model"
	"github.com/spf13/cobra"
)

var classesCmd = &cobra.Command{
	Use:   "classes",
	Short: "Inspect and edit the class schedule",
}

var classesListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the schedule",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		return printClasses(cmd.OutOrStdout(), a.svc.ListClasses(cmd.Context()))
	},
}

var classesAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a class to the schedule",
	RunE: func(cmd *cobra.Command, _ []string) error {
		flags := cmd.Flags()
		name, _ := flags.GetString("name")
		instructor, _ := flags.GetString("instructor")
		start, _ := flags.GetString("start")
		capacity, _ := flags.GetInt("capacity")

		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		class, err := a.svc.AddClass(cmd.Context(), model.CreateClassRequest{
			Name:       name,
			Instructor: instructor,
			StartTime:  start,
			Capacity:   capacity,
		})
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), class)
	},
}

var registrationsCmd = &cobra.Command{
	Use:   "registrations",
	Short: "Inspect the registration log",
}

var registrationsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print registrations, optionally for one class",
	RunE: func(cmd *cobra.Command, _ []string) error {
		classID, _ := cmd.Flags().GetInt("class")

		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		regs, err := a.svc.ListRegistrations(cmd.Context(), classID)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), regs)
	},
}

func init() {
	classesAddCmd.Flags().String("name", "", "class name")
	classesAddCmd.Flags().String("instructor", "", "instructor name")
	classesAddCmd.Flags().String("start", "", "ISO-8601 start time, e.g. 2024-05-01T10:00:00")
	classesAddCmd.Flags().Int("capacity", 0, "number of seats")
	classesCmd.AddCommand(classesListCmd, classesAddCmd)

	registrationsListCmd.Flags().Int("class", 0, "only show registrations for this class id")
	registrationsCmd.AddCommand(registrationsListCmd)
}

func printClasses(w io.Writer, classes []model.FitnessClass) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tINSTRUCTOR\tSTART\tBOOKED")
	for _, c := range classes {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d/%d\n",
			c.ID, c.Name, c.Instructor, c.StartTime.Format(time.RFC3339), c.Registered, c.Capacity)
	}
	return tw.Flush()
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
