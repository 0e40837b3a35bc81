package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func init() {
	intentsCmd := &cobra.Command{
		Use:   "intents",
		Short: "List unresolved ledger intents (pending or failed two-phase writes)",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := checkStatus(newClient().R().Get("/api/intents"))
			if err != nil {
				return err
			}
			var out struct {
				Intents []struct {
					ID           string    `json:"id"`
					Collection   string    `json:"collection"`
					Status       string    `json:"status"`
					Payload      string    `json:"payload"`
					CreationTime time.Time `json:"creationTime"`
				} `json:"intents"`
				Count int `json:"count"`
			}
			if err := json.Unmarshal(resp.Body(), &out); err != nil {
				return fmt.Errorf("decode response: %w", err)
			}
			if out.Count == 0 {
				_, _ = fmt.Fprintln(os.Stdout, "no unresolved intents")
				return nil
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "INTENT\tCOLLECTION\tSTATUS\tCREATED\tPAYLOAD")
			for _, it := range out.Intents {
				_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					it.ID, it.Collection, it.Status, it.CreationTime.Format(time.RFC3339), it.Payload)
			}
			return w.Flush()
		},
	}
	rootCmd.AddCommand(intentsCmd)
}
