package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"outage-checker/internal/outage"
	"outage-checker/internal/render"
)

func newListCitiesCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "list-cities",
		Short: "List the cities and settlements the provider serves",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var cities []string
			err := outage.WithClient(e.options("cli"), func(c *outage.Client) error {
				var err error
				cities, err = c.FetchCities(cmd.Context())
				return err
			})
			if err != nil {
				return err
			}
			return render.List(cmd.OutOrStdout(), "Available cities/settlements:", cities)
		},
	}
}

func newListStreetsCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "list-streets CITY",
		Short: "List the streets of a city",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			city := args[0]
			var (
				streets []string
				found   bool
			)
			err := outage.WithClient(e.options("cli"), func(c *outage.Client) error {
				var err error
				streets, found, err = c.FetchStreets(cmd.Context(), city)
				return err
			})
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("city not found: %s (see list-cities)", city)
			}
			return render.List(cmd.OutOrStdout(), "Streets in "+city+":", streets)
		},
	}
}

func newListHousesCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "list-houses CITY STREET",
		Short: "List the house numbers of a street",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			city, street := args[0], args[1]
			var houses []string
			err := outage.WithClient(e.options("cli"), func(c *outage.Client) error {
				var err error
				houses, err = c.FetchHouses(cmd.Context(), city, street)
				return err
			})
			if err != nil {
				return err
			}
			if len(houses) == 0 {
				return fmt.Errorf("no houses found for: %s, %s", city, street)
			}
			return render.List(cmd.OutOrStdout(), fmt.Sprintf("Houses on %s, %s:", street, city), houses)
		},
	}
}
