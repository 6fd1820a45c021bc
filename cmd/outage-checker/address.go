package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"outage-checker/internal/models"
)

func newSetAddressCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "set-address ADDRESS",
		Short: "Verify an address and save it as the default",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			addr, err := models.ParseAddress(args[0])
			if err != nil {
				return err
			}
			dimColor.Fprintln(out, "Verifying address...")
			group, err := e.verifyAddress(cmd.Context(), addr)
			if err != nil {
				return err
			}
			if err := e.store.SetDefaultAddress(addr); err != nil {
				return err
			}
			fmt.Fprintf(out, "%s %s\n", okColor.Sprint("Default address set to:"), addr)
			fmt.Fprintf(out, "%s %s\n", dimColor.Sprint("Power group:"), group)
			return nil
		},
	}
}

func newShowAddressCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "show-address",
		Short: "Show the saved default address",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			addr, ok := e.store.DefaultAddress()
			if !ok {
				warnColor.Fprintln(out, "No default address configured.")
				fmt.Fprintf(out, "Use %s to set one.\n", hintColor.Sprint("outage-checker set-address"))
				return nil
			}
			fmt.Fprintf(out, "%s %s\n", boldColor.Sprint("Default address:"), addr)
			fmt.Fprintf(out, "%s %s\n", dimColor.Sprint("Stored in:"), e.store.Path())
			return nil
		},
	}
}

func newClearAddressCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "clear-address",
		Short: "Forget the saved default address",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := e.store.ClearDefaultAddress(); err != nil {
				return err
			}
			okColor.Fprintln(cmd.OutOrStdout(), "Default address cleared.")
			return nil
		},
	}
}
