package render

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"

	"outage-checker/internal/models"
)

var (
	powerColor     = color.New(color.FgGreen)
	offColor       = color.New(color.FgRed, color.Bold)
	uncertainColor = color.New(color.FgYellow)
	partialColor   = color.New(color.FgRed)
	titleColor     = color.New(color.FgCyan, color.Bold)
	dimColor       = color.New(color.Faint)
)

// StatusColor picks the colour a status is printed in.
func StatusColor(s models.PowerStatus) *color.Color {
	switch {
	case s.HasPower():
		return powerColor
	case s.NoPower():
		return offColor
	case s.IsUncertain():
		return uncertainColor
	}
	return partialColor
}

// Renderer prints schedules as terminal tables.
type Renderer struct {
	w            io.Writer
	translations map[string]string
}

// New returns a Renderer. translations overrides status texts; nil keeps the
// English defaults.
func New(w io.Writer, translations map[string]string) *Renderer {
	return &Renderer{w: w, translations: translations}
}

// Days prints every day followed by a blank line.
func (r *Renderer) Days(days []models.DaySchedule) error {
	for _, d := range days {
		if err := r.Day(d); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(r.w); err != nil {
			return err
		}
	}
	return nil
}

// Day prints one day's hour table and its outage summary.
func (r *Renderer) Day(d models.DaySchedule) error {
	title := fmt.Sprintf("%s (%s) - %s", d.DayName, d.DateString(), d.Group)
	if d.DayName == "" {
		title = fmt.Sprintf("%s - %s", d.DateString(), d.Group)
	}
	if _, err := titleColor.Fprintln(r.w, title); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(r.w, 0, 0, 3, ' ', 0)
	fmt.Fprintln(tw, "Hour\tStatus")
	for _, h := range d.Hours {
		text := h.Status.DisplayText(r.translations)
		fmt.Fprintf(tw, "%s\t%s\n", dimColor.Sprint(h.TimeRange), StatusColor(h.Status).Sprint(text))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	_, err := fmt.Fprintln(r.w, r.Summary(d))
	return err
}

// Summary is a one-line list of the day's outage periods.
func (r *Renderer) Summary(d models.DaySchedule) string {
	periods := d.OutagePeriods()
	if len(periods) == 0 {
		return powerColor.Sprint("No outages planned")
	}
	parts := make([]string, 0, len(periods))
	for _, p := range periods {
		parts = append(parts, StatusColor(p.Status).Sprintf("%s-%s %s", p.Start, p.End, p.Status.DisplayText(r.translations)))
	}
	return "Outages: " + strings.Join(parts, ", ")
}

// List prints a heading and one indented item per line.
func List(w io.Writer, heading string, items []string) error {
	if _, err := color.New(color.Bold).Fprintln(w, heading); err != nil {
		return err
	}
	for _, it := range items {
		if _, err := fmt.Fprintf(w, "  %s\n", it); err != nil {
			return err
		}
	}
	return nil
}
