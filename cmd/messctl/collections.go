package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	// list
	var from, to string
	var filters []string
	listCmd := &cobra.Command{
		Use:   "list COLLECTION",
		Short: "List records in a collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := newClient().R().SetQueryParam("collection", args[0])
			if from != "" {
				req.SetQueryParam("from", from)
			}
			if to != "" {
				req.SetQueryParam("to", to)
			}
			for _, f := range filters {
				k, v, ok := strings.Cut(f, "=")
				if !ok {
					return fmt.Errorf("invalid filter %q; expected field=value", f)
				}
				req.SetQueryParam(k, v)
			}
			resp, err := checkStatus(req.Get("/api/collections"))
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, resp.String())
			return nil
		},
	}
	listCmd.Flags().StringVar(&from, "from", "", "Lower date bound (inclusive)")
	listCmd.Flags().StringVar(&to, "to", "", "Upper date bound (inclusive)")
	listCmd.Flags().StringArrayVarP(&filters, "filter", "f", nil, "Equality filter field=value (repeatable)")
	rootCmd.AddCommand(listCmd)

	// add
	var addJSON string
	addCmd := &cobra.Command{
		Use:   "add COLLECTION",
		Short: "Add a record to a collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fields, err := parseFields(addJSON)
			if err != nil {
				return err
			}
			body := map[string]interface{}{"collection": args[0], "fields": fields}
			resp, err := checkStatus(newClient().R().SetBody(body).Post("/api/collections"))
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, resp.String())
			return nil
		},
	}
	addCmd.Flags().StringVarP(&addJSON, "json", "j", "", "Record fields as a JSON object (required)")
	_ = addCmd.MarkFlagRequired("json")
	rootCmd.AddCommand(addCmd)

	// update
	var updateJSON string
	updateCmd := &cobra.Command{
		Use:   "update COLLECTION ID",
		Short: "Merge fields into an existing record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			fields, err := parseFields(updateJSON)
			if err != nil {
				return err
			}
			body := map[string]interface{}{"collection": args[0], "id": args[1], "fields": fields}
			resp, err := checkStatus(newClient().R().SetBody(body).Put("/api/collections"))
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, resp.String())
			return nil
		},
	}
	updateCmd.Flags().StringVarP(&updateJSON, "json", "j", "", "Fields to merge as a JSON object (required)")
	_ = updateCmd.MarkFlagRequired("json")
	rootCmd.AddCommand(updateCmd)

	// delete
	deleteCmd := &cobra.Command{
		Use:   "delete COLLECTION ID",
		Short: "Delete a record by id",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := checkStatus(newClient().R().
				SetQueryParam("collection", args[0]).
				SetQueryParam("id", args[1]).
				Delete("/api/collections"))
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, resp.String())
			return nil
		},
	}
	rootCmd.AddCommand(deleteCmd)
}

func parseFields(raw string) (map[string]interface{}, error) {
	var fields map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return nil, fmt.Errorf("--json must be a JSON object: %w", err)
	}
	return fields, nil
}
