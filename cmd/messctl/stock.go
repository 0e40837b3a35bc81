package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func init() {
	var typeFilter string
	stockCmd := &cobra.Command{
		Use:   "stock",
		Short: "Show current stock levels",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := newClient().R().SetQueryParam("collection", "stockItems")
			if typeFilter != "" {
				req.SetQueryParam("type", typeFilter)
			}
			resp, err := checkStatus(req.Get("/api/collections"))
			if err != nil {
				return err
			}
			var out struct {
				Data []struct {
					ItemName          string  `json:"itemName"`
					CurrentQuantity   float64 `json:"currentQuantity"`
					UnitOfMeasurement string  `json:"unitOfMeasurement"`
					LastUnitCost      float64 `json:"lastUnitCost"`
					TotalCost         float64 `json:"totalCost"`
					Type              string  `json:"type"`
				} `json:"data"`
			}
			if err := json.Unmarshal(resp.Body(), &out); err != nil {
				return fmt.Errorf("decode response: %w", err)
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "ITEM\tQTY\tUNIT\tUNIT COST\tTOTAL COST\tTYPE")
			for _, it := range out.Data {
				_, _ = fmt.Fprintf(w, "%s\t%g\t%s\t%.2f\t%.2f\t%s\n",
					it.ItemName, it.CurrentQuantity, it.UnitOfMeasurement, it.LastUnitCost, it.TotalCost, it.Type)
			}
			return w.Flush()
		},
	}
	stockCmd.Flags().StringVarP(&typeFilter, "type", "t", "", "Filter on the stock item's type tag")
	rootCmd.AddCommand(stockCmd)
}
