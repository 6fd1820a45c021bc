package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"outage-checker/internal/models"
	"outage-checker/internal/outage"
	"outage-checker/internal/ping"
	"outage-checker/internal/render"
)

// errAborted ends a command early without printing an error.
var errAborted = errors.New("aborted")

func newCheckCmd(e *env) *cobra.Command {
	var (
		probe  string
		asJSON bool
		native bool
	)
	cmd := &cobra.Command{
		Use:   "check [ADDRESS]",
		Short: "Check the outage schedule for an address",
		Long: "Check the outage schedule for an address given as \"city, street, house\".\n" +
			"Without ADDRESS the saved default address is used.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			addr, ok, err := e.addressArg(args)
			if err != nil {
				return err
			}
			if !ok {
				if asJSON {
					return errors.New("no address given and no default address configured")
				}
				addr, err = e.firstRun(cmd)
				if errors.Is(err, errAborted) {
					return nil
				}
				if err != nil {
					return err
				}
			}
			if !asJSON {
				fmt.Fprintf(out, "%s %s\n\n", dimColor.Sprint("Checking schedule for:"), boldColor.Sprint(addr.String()))
			}

			ctx := cmd.Context()
			var (
				days   []models.DaySchedule
				preset models.SchedulePreset
			)
			err = outage.WithClient(e.options("cli"), func(c *outage.Client) error {
				var err error
				if days, err = c.GetScheduleForAddress(ctx, addr); err != nil {
					return err
				}
				page, err := c.FetchSchedulePage(ctx)
				if err != nil {
					return err
				}
				preset = page.Preset
				return nil
			})
			if err != nil {
				return err
			}

			if asJSON {
				report := map[string]any{"address": addr, "days": outage.Reports(days)}
				if probe != "" {
					res, err := ping.PingHost(probe, ping.Options{})
					if err != nil {
						report["probe_error"] = err.Error()
					} else {
						report["probe"] = res
					}
				}
				return writeJSON(out, report)
			}
			if len(days) == 0 {
				warnColor.Fprintln(out, "No schedule data available.")
			} else {
				var translations map[string]string
				if native {
					translations = preset.TimeTypes
				}
				if err := render.New(out, translations).Days(days); err != nil {
					return err
				}
			}
			if probe != "" {
				printProbe(out, probe)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&probe, "probe", "", "ping a host at the address to see if power is on right now")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print schedules as JSON")
	cmd.Flags().BoolVar(&native, "native", false, "use the provider's own status texts")
	return cmd
}

// firstRun offers to save a default address when none is configured.
func (e *env) firstRun(cmd *cobra.Command) (models.Address, error) {
	out := cmd.OutOrStdout()
	warnColor.Fprintln(out, "No default address configured.")
	fmt.Fprintln(out, "Would you like to set a default address now?")
	dimColor.Fprintln(out, "This will save the address so you don't have to type it every time.")

	yes, err := e.confirm(out, "Set default address?", true)
	if err != nil {
		return models.Address{}, err
	}
	if !yes {
		fmt.Fprintf(out, "\n%s You can check any address by providing it as an argument:\n", warnColor.Sprint("No problem!"))
		hintColor.Fprintln(out, "  outage-checker check 'city, street, house'")
		return models.Address{}, errAborted
	}

	fmt.Fprintf(out, "\n%s You can use these commands to find your address:\n", hintColor.Sprint("Tip:"))
	dimColor.Fprintln(out, "  outage-checker list-cities")
	dimColor.Fprintln(out, "  outage-checker list-streets CITY")
	dimColor.Fprintln(out, "  outage-checker list-houses CITY STREET")

	input, err := e.prompt(out, "\nEnter your address (city, street, house): ")
	if err != nil {
		return models.Address{}, err
	}
	addr, err := models.ParseAddress(input)
	if err != nil {
		return models.Address{}, err
	}

	dimColor.Fprintln(out, "Verifying address...")
	group, err := e.verifyAddress(cmd.Context(), addr)
	if err != nil {
		return models.Address{}, err
	}
	if err := e.store.SetDefaultAddress(addr); err != nil {
		return models.Address{}, err
	}
	fmt.Fprintf(out, "%s (power group: %s)\n\n", okColor.Sprint("Default address saved!"), group)
	return addr, nil
}

func printProbe(w io.Writer, host string) {
	res, err := ping.PingHost(host, ping.Options{})
	if err != nil {
		warnColor.Fprintf(w, "Probe failed: %v\n", err)
		return
	}
	if res.Reachable {
		okColor.Fprintf(w, "%s answers (%d/%d, avg %s): power looks ON\n", res.Target, res.Received, res.Sent, res.AvgRTT.Round(time.Millisecond))
		return
	}
	offColor.Fprintf(w, "%s does not answer (0/%d): power looks OFF\n", res.Target, res.Sent)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
