package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/mkrupp/disastermap/internal/domain"
	"github.com/mkrupp/disastermap/internal/svc/disastersvc"
)

func (c *cli) newDisastersCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "disasters",
		Aliases: []string{"d"},
		Short:   "List, show and edit disaster reports",
	}

	cmd.AddCommand(
		c.newListCommand(),
		c.newGetCommand(),
		c.newReportCommand(),
		c.newCreateCommand(),
		c.newUpdateCommand(),
		c.newDeleteCommand(),
	)

	return cmd
}

func (c *cli) newListCommand() *cobra.Command {
	var (
		q      disastersvc.Query
		sortBy string
		status string
		sev    string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List disasters",
		Example: `  disasterctl disasters list --search flood --sort severity --desc
  disasterctl disasters list --status ongoing -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			key, err := disastersvc.ParseSortKey(sortBy)
			if err != nil {
				return err //nolint:wrapcheck
			}

			q.SortBy = key
			q.Status = domain.Status(status)
			q.Severity = domain.Severity(sev)

			res := c.app.Disasters.List(cmd.Context(), q)
			if !res.Success {
				return &ResultError{Result: res.Result}
			}

			return c.print(cmd, res, func() string { return disasterTable(res.Disasters, res.Total) })
		},
	}

	cmd.Flags().StringVar(&q.Search, "search", "", "Match title, type, location or description")
	cmd.Flags().StringVar(&q.Type, "type", "", "Only this type")
	cmd.Flags().StringVar(&status, "status", "", "Only this status")
	cmd.Flags().StringVar(&sev, "severity", "", "Only this severity")
	cmd.Flags().StringVar(&sortBy, "sort", "", "Sort by title, severity, created or casualties")
	cmd.Flags().BoolVar(&q.Descending, "desc", false, "Sort descending")

	return cmd
}

func (c *cli) newGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get ID",
		Short: "Show one disaster",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res := c.app.Disasters.Get(cmd.Context(), domain.ID(args[0]))
			if !res.Success {
				return &ResultError{Result: res.Result}
			}

			return c.print(cmd, res.Disaster, func() string { return disasterDetail(*res.Disaster) })
		},
	}
}

func (c *cli) newReportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Summarize disasters by type, severity, status and month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res := c.app.Disasters.List(cmd.Context(), disastersvc.Query{}) //nolint:exhaustruct
			if !res.Success {
				return &ResultError{Result: res.Result}
			}

			summary := disastersvc.Summarize(res.Disasters)

			return c.print(cmd, summary, func() string { return summaryTable(summary) })
		},
	}
}

// disasterFlags binds the editable fields of a disaster to flags.
type disasterFlags struct {
	input domain.DisasterInput

	status, severity    string
	latitude, longitude float64
	damage              float64
	casualties          int
}

func (f *disasterFlags) register(flags *pflag.FlagSet) {
	flags.StringVar(&f.input.Title, "title", "", "Title")
	flags.StringVar(&f.input.Type, "type", "", "Type, e.g. flood")
	flags.StringVar(&f.status, "status", "", "reported, verified, ongoing or resolved")
	flags.StringVar(&f.severity, "severity", "", "low, medium, high or critical")
	flags.StringVar(&f.input.LocationName, "location", "", "Location name")
	flags.Float64Var(&f.latitude, "lat", 0, "Latitude")
	flags.Float64Var(&f.longitude, "lon", 0, "Longitude")
	flags.StringVar(&f.input.Description, "description", "", "Description")
	flags.IntVar(&f.casualties, "casualties", 0, "Casualties")
	flags.Float64Var(&f.damage, "damage", 0, "Damage estimate")
	flags.StringVar(&f.input.ResourcesNeeded, "resources", "", "Resources needed")
	flags.StringVar(&f.input.NegativeEffects, "effects", "", "Negative effects")
	flags.StringVar(&f.input.PotentialSolutions, "solutions", "", "Potential solutions")
}

// apply copies the flags the user set over base.
//
//nolint:cyclop
func (f *disasterFlags) apply(flags *pflag.FlagSet, base domain.DisasterInput) domain.DisasterInput {
	out := base

	flags.Visit(func(fl *pflag.Flag) {
		switch fl.Name {
		case "title":
			out.Title = f.input.Title
		case "type":
			out.Type = f.input.Type
		case "status":
			out.Status = domain.Status(f.status)
		case "severity":
			out.Severity = domain.Severity(f.severity)
		case "location":
			out.LocationName = f.input.LocationName
		case "lat":
			out.Latitude = &f.latitude
		case "lon":
			out.Longitude = &f.longitude
		case "description":
			out.Description = f.input.Description
		case "casualties":
			out.Casualties = &f.casualties
		case "damage":
			out.DamageEstimate = &f.damage
		case "resources":
			out.ResourcesNeeded = f.input.ResourcesNeeded
		case "effects":
			out.NegativeEffects = f.input.NegativeEffects
		case "solutions":
			out.PotentialSolutions = f.input.PotentialSolutions
		}
	})

	return out
}

func (c *cli) newCreateCommand() *cobra.Command {
	var (
		fields disasterFlags
		image  string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Report a disaster",
		Example: `  disasterctl disasters create --title "River flood" --type flood \
    --severity high --lat 45.5 --lon -73.6 --image photo.jpg`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			//nolint:exhaustruct
			input := fields.apply(cmd.Flags(), domain.DisasterInput{Status: domain.StatusReported})

			var upload *disastersvc.Upload

			if image != "" {
				data, err := os.ReadFile(image)
				if err != nil {
					return fmt.Errorf("read image: %w", err)
				}

				upload = &disastersvc.Upload{Name: filepath.Base(image), Data: data}
			}

			res := c.app.Disasters.Create(cmd.Context(), input, upload)
			warnings(cmd.ErrOrStderr(), res.Warnings)

			if !res.Success {
				return &ResultError{Result: res.Result}
			}

			return c.print(cmd, res, func() string {
				out := successStyle.Render("✓ " + res.Message)
				if res.Disaster != nil {
					out += "\n" + disasterDetail(*res.Disaster)
				}

				return out
			})
		},
	}

	fields.register(cmd.Flags())
	cmd.Flags().StringVar(&image, "image", "", "JPEG or PNG photo to attach")

	return cmd
}

func (c *cli) newUpdateCommand() *cobra.Command {
	var fields disasterFlags

	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Edit a disaster; fields without a flag keep their value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := domain.ID(args[0])

			current := c.app.Disasters.Get(cmd.Context(), id)
			if !current.Success {
				return &ResultError{Result: current.Result}
			}

			input := fields.apply(cmd.Flags(), domain.InputFromRecord(*current.Disaster))

			return c.finish(cmd, c.app.Disasters.Update(cmd.Context(), id, input))
		},
	}

	fields.register(cmd.Flags())

	return cmd
}

func (c *cli) newDeleteCommand() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a disaster",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				if err := c.opts.Prompter.Confirm("Delete disaster "+args[0]+"?", &yes); err != nil {
					return err
				}

				if !yes {
					return c.finish(cmd, domain.Succeeded("Nothing deleted"))
				}
			}

			return c.finish(cmd, c.app.Disasters.Delete(cmd.Context(), domain.ID(args[0])))
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")

	return cmd
}
