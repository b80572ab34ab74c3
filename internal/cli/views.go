package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dineshrk2005/medical-records-and-appoinment-tracker/internal/calendar"
	"github.com/dineshrk2005/medical-records-and-appoinment-tracker/internal/catalog"
	"github.com/dineshrk2005/medical-records-and-appoinment-tracker/internal/filter"
	"github.com/dineshrk2005/medical-records-and-appoinment-tracker/internal/model"
	"github.com/dineshrk2005/medical-records-and-appoinment-tracker/internal/route"
)

func filterFlags(cmd *cobra.Command, q *filter.Query) {
	cmd.Flags().StringVarP(&q.Term, "search", "s", "", "case-insensitive search")
	cmd.Flags().StringVar(&q.Status, "status", model.StatusAll, "status to show, or all")
}

func (a *app) dashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Summary of upcoming appointments, medications and health metrics",
		Args:  cobra.NoArgs,
		RunE: a.run(func(ctx context.Context, _ *cobra.Command, _ []string) error {
			u, err := a.user(route.Dashboard)
			if err != nil {
				return err
			}
			var d catalog.Dashboard
			if a.client != nil {
				d, err = a.client.Dashboard(ctx)
			} else {
				d, err = catalog.BuildDashboard(ctx, a.src, u, a.opts.Now())
			}
			if err != nil {
				return err
			}
			a.printDashboard(d)
			return nil
		}),
	}
}

func (a *app) printDashboard(d catalog.Dashboard) {
	s := newStyles(a.out)
	fmt.Fprintln(a.out, s.title.Render("Welcome back, "+d.User.Name))
	fmt.Fprintln(a.out, s.muted.Render(d.Today.Format("Monday, January 2, 2006")))
	fmt.Fprintf(a.out, "\n%d upcoming appointments, %d active medications, %d refills due this week\n\n",
		len(d.Upcoming), d.Summary.Active, d.Summary.RefillsDue)

	rows := make([][]string, 0, len(d.Upcoming))
	for _, ap := range d.Upcoming {
		rows = append(rows, []string{ap.Date, ap.Time, ap.Doctor, ap.Specialty})
	}
	fmt.Fprintln(a.out, s.table([]string{"Date", "Time", "Doctor", "Specialty"}, rows))

	rows = rows[:0]
	for _, m := range d.Medications {
		rows = append(rows, []string{m.Name, m.Dosage, m.Frequency, m.Time})
	}
	fmt.Fprintln(a.out, s.table([]string{"Medication", "Dosage", "Frequency", "Time"}, rows))

	rows = rows[:0]
	for _, r := range d.Recent {
		rows = append(rows, []string{r.Date, r.Type, r.Provider, s.status(string(r.Status))})
	}
	fmt.Fprintln(a.out, s.title.Render("Recent Medical Records"))
	fmt.Fprintln(a.out, s.table([]string{"Date", "Type", "Provider", "Status"}, rows))

	rows = rows[:0]
	for _, m := range d.Metrics {
		rows = append(rows, []string{m.Name, m.Value, s.status(m.Status)})
	}
	fmt.Fprintln(a.out, s.table([]string{"Metric", "Value", "Status"}, rows))
}

func (a *app) appointmentsCmd() *cobra.Command {
	var q filter.Query
	cmd := &cobra.Command{
		Use:     "appointments",
		Aliases: []string{"appts"},
		Short:   "List appointments",
		Args:    cobra.NoArgs,
	}
	filterFlags(cmd, &q)
	cmd.RunE = a.run(func(ctx context.Context, _ *cobra.Command, _ []string) error {
		if _, err := a.user(route.Appointments); err != nil {
			return err
		}
		if err := filter.Check("appointments", q); err != nil {
			return err
		}
		var list []model.Appointment
		var err error
		if a.client != nil {
			list, err = a.client.ListAppointments(ctx, q)
		} else {
			list, err = a.src.Appointments(ctx)
			list = filter.Appointments(list, q)
		}
		if err != nil {
			return err
		}
		s := newStyles(a.out)
		rows := make([][]string, 0, len(list))
		for _, ap := range list {
			rows = append(rows, []string{ap.Date, ap.Time, ap.Doctor, ap.Specialty, ap.Location, s.status(string(ap.Status))})
		}
		fmt.Fprintln(a.out, s.table([]string{"Date", "Time", "Doctor", "Specialty", "Location", "Status"}, rows))
		fmt.Fprintf(a.out, "%d appointments\n", len(list))
		return nil
	})
	return cmd
}

func (a *app) calendarCmd() *cobra.Command {
	var (
		year, month int
		next, prev  bool
	)
	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Show a month with its appointment days marked",
		Args:  cobra.NoArgs,
	}
	cmd.Flags().IntVar(&year, "year", 0, "year (default: this year)")
	cmd.Flags().IntVar(&month, "month", 0, "month 1-12 (default: this month)")
	cmd.Flags().BoolVar(&next, "next", false, "show the month after")
	cmd.Flags().BoolVar(&prev, "prev", false, "show the month before")
	cmd.MarkFlagsMutuallyExclusive("next", "prev")
	cmd.RunE = a.run(func(ctx context.Context, _ *cobra.Command, _ []string) error {
		if _, err := a.user(route.Appointments); err != nil {
			return err
		}
		m := calendar.FromTime(a.opts.Now())
		if year != 0 {
			m.Year = year
		}
		if month != 0 {
			m.Month = month - 1
		}
		if !m.Valid() {
			return fmt.Errorf("invalid month %d/%d", year, month)
		}
		switch {
		case next:
			m = m.Next()
		case prev:
			m = m.Prev()
		}

		var v calendar.View
		if a.client != nil {
			var err error
			if v, err = a.client.Calendar(ctx, m); err != nil {
				return err
			}
		} else {
			appts, err := a.src.Appointments(ctx)
			if err != nil {
				return err
			}
			v = calendar.NewView(m, appts)
		}

		s := newStyles(a.out)
		fmt.Fprintln(a.out, s.calendar(v))
		for _, week := range v.Weeks {
			for _, c := range week {
				for _, ap := range c.Appointments {
					fmt.Fprintf(a.out, "%s %s  %s, %s\n", c.Date, ap.Time, ap.Doctor, ap.Specialty)
				}
			}
		}
		return nil
	})
	return cmd
}

func (a *app) recordsCmd() *cobra.Command {
	var q filter.Query
	cmd := &cobra.Command{
		Use:   "records",
		Short: "List medical records",
		Args:  cobra.NoArgs,
	}
	filterFlags(cmd, &q)
	cmd.RunE = a.run(func(ctx context.Context, _ *cobra.Command, _ []string) error {
		if _, err := a.user(route.Records); err != nil {
			return err
		}
		if err := filter.Check("records", q); err != nil {
			return err
		}
		var list []model.MedicalRecord
		var err error
		if a.client != nil {
			list, err = a.client.ListRecords(ctx, q)
		} else {
			list, err = a.src.Records(ctx)
			list = filter.Records(list, q)
		}
		if err != nil {
			return err
		}
		s := newStyles(a.out)
		rows := make([][]string, 0, len(list))
		for _, r := range list {
			rows = append(rows, []string{r.Date, r.Type, r.Provider, r.Description, s.status(string(r.Status))})
		}
		fmt.Fprintln(a.out, s.table([]string{"Date", "Type", "Provider", "Description", "Status"}, rows))
		fmt.Fprintf(a.out, "%d records\n", len(list))
		return nil
	})
	return cmd
}

func (a *app) medicationsCmd() *cobra.Command {
	var q filter.Query
	cmd := &cobra.Command{
		Use:     "medications",
		Aliases: []string{"meds"},
		Short:   "List medications",
		Args:    cobra.NoArgs,
	}
	filterFlags(cmd, &q)
	cmd.RunE = a.run(func(ctx context.Context, _ *cobra.Command, _ []string) error {
		if _, err := a.user(route.Medications); err != nil {
			return err
		}
		if err := filter.Check("medications", q); err != nil {
			return err
		}
		all, err := a.src.Medications(ctx)
		if err != nil {
			return err
		}
		list := filter.Medications(all, q)
		s := newStyles(a.out)
		rows := make([][]string, 0, len(list))
		for _, m := range list {
			rows = append(rows, []string{m.Name, m.Dosage, m.Frequency, m.RefillDate, s.status(string(m.Status))})
		}
		fmt.Fprintln(a.out, s.table([]string{"Name", "Dosage", "Frequency", "Refill", "Status"}, rows))
		sum := catalog.SummarizeMedications(all, a.opts.Now())
		fmt.Fprintf(a.out, "%d active, %d completed, %d refills due soon\n\n", sum.Active, sum.Completed, sum.RefillsDue)
		a.printSchedule(catalog.Schedule(all))
		return nil
	})
	return cmd
}

func (a *app) printSchedule(sched map[string][]model.Medication) {
	s := newStyles(a.out)
	lines := []string{s.title.Render("Today's Schedule")}
	for _, slot := range catalog.ScheduleSlots {
		var names []string
		for _, m := range sched[slot] {
			names = append(names, m.Name+" "+m.Dosage)
		}
		v := "No medications scheduled"
		if len(names) > 0 {
			v = strings.Join(names, ", ")
		}
		lines = append(lines, s.field(slot, v))
	}
	fmt.Fprintln(a.out, strings.Join(lines, "\n"))
}

func (a *app) profileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show your profile",
		Args:  cobra.NoArgs,
		RunE: a.run(func(ctx context.Context, _ *cobra.Command, _ []string) error {
			u, err := a.user(route.Profile)
			if err != nil {
				return err
			}
			p, err := a.src.Profile(ctx, u)
			if err != nil {
				return err
			}
			a.printProfile(p)
			return nil
		}),
	}
	cmd.AddCommand(a.profileEditCmd())
	return cmd
}

func (a *app) printProfile(p model.Profile) {
	s := newStyles(a.out)
	lines := []string{
		s.title.Render("Personal information"),
		s.field("Name", p.Personal.Name),
		s.field("Email", p.Personal.Email),
		s.field("Phone", p.Personal.Phone),
		s.field("Date of birth", p.Personal.DateOfBirth),
		s.field("Address", p.Personal.Address),
		s.field("Emergency contact", p.Personal.EmergencyContact),
		"",
		s.title.Render("Medical information"),
		s.field("Blood type", p.Medical.BloodType),
		s.field("Allergies", p.Medical.Allergies),
		s.field("Conditions", p.Medical.Conditions),
		s.field("Primary care", p.Medical.PrimaryCare),
		s.field("Last physical", p.Medical.LastPhysical),
		s.field("Insurance", p.Medical.Insurance),
	}
	fmt.Fprintln(a.out, strings.Join(lines, "\n"))
}

// profileFields maps edit flags to the profile field they set.
func profileFields(p *model.Profile) map[string]*string {
	return map[string]*string{
		"name":              &p.Personal.Name,
		"email":             &p.Personal.Email,
		"phone":             &p.Personal.Phone,
		"date-of-birth":     &p.Personal.DateOfBirth,
		"address":           &p.Personal.Address,
		"emergency-contact": &p.Personal.EmergencyContact,
		"blood-type":        &p.Medical.BloodType,
		"allergies":         &p.Medical.Allergies,
		"conditions":        &p.Medical.Conditions,
		"primary-care":      &p.Medical.PrimaryCare,
		"last-physical":     &p.Medical.LastPhysical,
		"insurance":         &p.Medical.Insurance,
	}
}

func (a *app) profileEditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Change profile fields; unset flags keep their value",
		Args:  cobra.NoArgs,
	}
	for name := range profileFields(new(model.Profile)) {
		cmd.Flags().String(name, "", strings.ReplaceAll(name, "-", " "))
	}
	cmd.RunE = a.run(func(ctx context.Context, cmd *cobra.Command, _ []string) error {
		u, err := a.user(route.Profile)
		if err != nil {
			return err
		}
		p, err := a.src.Profile(ctx, u)
		if err != nil {
			return err
		}
		changed := 0
		for name, dst := range profileFields(&p) {
			if cmd.Flags().Changed(name) {
				v, _ := cmd.Flags().GetString(name)
				*dst = strings.TrimSpace(v)
				changed++
			}
		}
		if changed == 0 {
			return fmt.Errorf("nothing to change (see --help)")
		}
		p.UserID = u.ID
		if err := a.src.SaveProfile(ctx, u, p); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "Profile saved")
		a.printProfile(p)
		return nil
	})
	return cmd
}
