package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jsamuelsen/daily-quote/internal/adapters/http/dto"
	"github.com/jsamuelsen/daily-quote/internal/bootstrap"
	"github.com/jsamuelsen/daily-quote/internal/domain"
)

func newGetCmd(c *cli) *cobra.Command {
	var (
		date        string
		acrossYears bool
	)

	cmd := &cobra.Command{
		Use:   "get",
		Short: "Print the quote for a date",
		Long: `get looks the quote up in the store, fetches it from the upstream site on a
miss and caches it. Output is the JSON body the service would return.`,
		Example: "  quotectl get --date 2023-03-21\n  quotectl get --date 2023-03-21 --across-years",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			day, err := domain.ParseDate(date)
			if err != nil {
				return err
			}

			return c.withPipeline(cmd.Context(), func(p *bootstrap.Pipeline) error {
				if acrossYears {
					quotes, err := p.Service.GetQuotesAcrossYears(cmd.Context(), day)
					if err != nil {
						return err
					}

					return writeJSON(cmd.OutOrStdout(), dto.NewQuotesResponse(quotes))
				}

				quote, err := p.Service.GetQuote(cmd.Context(), day)
				if err != nil {
					return err
				}

				return writeJSON(cmd.OutOrStdout(), dto.NewQuoteResponse(quote))
			})
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "calendar date, e.g. 2023-03-21")
	cmd.Flags().BoolVar(&acrossYears, "across-years", false, "return the quote for this month and day in every covered year")
	_ = cmd.MarkFlagRequired("date")

	return cmd
}

func newMigrateCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the store table or indexes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c.cfg.Store.EnsureSchema = false

			return c.withPipeline(cmd.Context(), func(p *bootstrap.Pipeline) error {
				if err := p.Store.EnsureSchema(cmd.Context()); err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "%s schema is up to date\n", c.cfg.Store.Backend())

				return nil
			})
		},
	}
}

// locateOutput is printed by locate.
type locateOutput struct {
	Month string `json:"month"`
	Day   string `json:"day"`
	Year  int    `json:"year"`
	URL   string `json:"url"`
}

func newLocateCmd(c *cli) *cobra.Command {
	var (
		date string
		year int
	)

	cmd := &cobra.Command{
		Use:   "locate",
		Short: "Print the upstream page address for a date",
		Long:  "locate prints the store key and upstream URL for a date. It needs neither the store nor the network.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			day, err := domain.ParseDate(date)
			if err != nil {
				return err
			}

			if !cmd.Flags().Changed("year") {
				year = day.Year()
			}

			loc := domain.NewLocator(c.cfg.Upstream.BaseURL).Locate(day, year)

			return writeJSON(cmd.OutOrStdout(), locateOutput{
				Month: loc.Key.Month,
				Day:   loc.Key.Day,
				Year:  loc.Key.Year,
				URL:   loc.URL,
			})
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "calendar date, e.g. 2023-03-21")
	cmd.Flags().IntVar(&year, "year", 0, "year to locate instead of the date's own")
	_ = cmd.MarkFlagRequired("date")

	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(v)
}
