package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/leofalp/genai-go/genai"
)

func newModelsCmd(sess *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "models",
		Short: "Inspect the available models",
	}
	cmd.AddCommand(newModelsListCmd(sess), newModelsGetCmd(sess))
	return cmd
}

func newModelsListCmd(sess *session) *cobra.Command {
	var asJSON bool
	var method string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the models available to the API key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			model, err := sess.newModel()
			if err != nil {
				return err
			}

			ctx, cancel := sess.requestContext(cmd)
			defer cancel()

			var models []*genai.Model
			for listed, err := range model.ListModels(ctx) {
				if err != nil {
					return err
				}
				if method != "" && !supports(listed, method) {
					continue
				}
				models = append(models, listed)
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), models)
			}
			table := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(table, "NAME\tDISPLAY NAME\tINPUT\tOUTPUT")
			for _, listed := range models {
				fmt.Fprintf(table, "%s\t%s\t%d\t%d\n", listed.Name, listed.DisplayName, listed.InputTokenLimit, listed.OutputTokenLimit)
			}
			return table.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the models as JSON")
	cmd.Flags().StringVar(&method, "method", "", "only list models supporting this method, e.g. generateContent")
	return cmd
}

func newModelsGetCmd(sess *session) *cobra.Command {
	return &cobra.Command{
		Use:   "get [name]",
		Short: "Describe a model, the configured one by default",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			model, err := sess.newModel()
			if err != nil {
				return err
			}

			ctx, cancel := sess.requestContext(cmd)
			defer cancel()

			var described *genai.Model
			if len(args) == 1 {
				described, err = model.GetModel(ctx, args[0])
			} else {
				described, err = model.Info(ctx)
			}
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), described)
		},
	}
}

func supports(model *genai.Model, method string) bool {
	for _, supported := range model.SupportedGenerationMethods {
		if strings.EqualFold(supported, method) {
			return true
		}
	}
	return false
}
