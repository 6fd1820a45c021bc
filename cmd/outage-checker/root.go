package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"outage-checker/internal/config"
	"outage-checker/internal/logger"
	"outage-checker/internal/models"
	"outage-checker/internal/outage"
)

var (
	okColor   = color.New(color.FgGreen)
	warnColor = color.New(color.FgYellow)
	hintColor = color.New(color.FgCyan)
	dimColor  = color.New(color.Faint)
	boldColor = color.New(color.Bold)
	offColor  = color.New(color.FgRed, color.Bold)
)

// env carries what every command needs. Tests build one around a fake provider.
type env struct {
	cfg     *config.Config
	store   *config.Store
	in      *bufio.Reader
	metrics *outage.Metrics // set by serve only
}

func newEnv(cfg *config.Config, in io.Reader) *env {
	return &env{
		cfg:   cfg,
		store: config.NewStore(cfg.ConfigPath),
		in:    bufio.NewReader(in),
	}
}

func (e *env) options(component string) outage.Options {
	return outage.Options{
		ScheduleURL: e.cfg.ScheduleURL,
		AjaxURL:     e.cfg.AjaxURL,
		Timeout:     e.cfg.RequestTimeout,
		Location:    e.cfg.Location(),
		Logger:      logger.New(component),
		Metrics:     e.metrics,
	}
}

func newRootCmd(e *env) *cobra.Command {
	root := &cobra.Command{
		Use:           "outage-checker",
		Short:         "Check DTEK electricity outage schedules",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := e.cfg.LogLevel
			if level == "" && cmd.Name() == "serve" {
				level = "info"
			}
			logger.SetLevel(level)
		},
	}
	root.SetVersionTemplate("outage-checker version {{.Version}}\n")

	root.AddCommand(
		newCheckCmd(e),
		newSetAddressCmd(e),
		newShowAddressCmd(e),
		newClearAddressCmd(e),
		newListCitiesCmd(e),
		newListStreetsCmd(e),
		newListHousesCmd(e),
		newServeCmd(e),
		newNotifyCmd(e),
	)
	return root
}

// verifyAddress resolves addr's power group, failing when the provider has none.
func (e *env) verifyAddress(ctx context.Context, addr models.Address) (string, error) {
	var (
		group string
		found bool
	)
	err := outage.WithClient(e.options("cli"), func(c *outage.Client) error {
		var err error
		group, found, err = c.FetchAddressGroup(ctx, addr.City, addr.Street, addr.House)
		return err
	})
	if err != nil {
		return "", err
	}
	if !found {
		return "", &outage.AddressNotFoundError{Address: addr}
	}
	return group, nil
}

// addressArg parses the optional ADDRESS argument, falling back to the saved
// default. ok is false when neither is available.
func (e *env) addressArg(args []string) (addr models.Address, ok bool, err error) {
	if len(args) > 0 {
		addr, err = models.ParseAddress(args[0])
		if err != nil {
			return models.Address{}, false, err
		}
		return addr, true, nil
	}
	addr, ok = e.store.DefaultAddress()
	return addr, ok, nil
}

func (e *env) prompt(w io.Writer, question string) (string, error) {
	fmt.Fprint(w, question)
	line, err := e.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("read answer: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func (e *env) confirm(w io.Writer, question string, def bool) (bool, error) {
	suffix := " [y/N]: "
	if def {
		suffix = " [Y/n]: "
	}
	answer, err := e.prompt(w, question+suffix)
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "":
		return def, nil
	case "y", "yes":
		return true, nil
	}
	return false, nil
}
