package main

import (
	"fmt"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/reglet-dev/machinist/internal/application/dto"
	"github.com/reglet-dev/machinist/internal/application/ports"
)

var (
	extraDocuments []string
	setValues      []string
	saveRecords    bool
)

// makeCmd builds fixtures from a blueprint document.
var makeCmd = &cobra.Command{
	Use:   "make <blueprints.yaml> <model> [blueprint]",
	Short: "Build fixture records from a blueprint",
	Long: `Build records of a model using one of its blueprints. Without a blueprint
name the model's master blueprint is used.

Examples:
  machinist make users.yaml User
  machinist make users.yaml Admin --count 3 --format json
  machinist make users.yaml User guest --set name=Ann --set age=30
  machinist make admins.yaml Admin --doc users.yaml --save`,
	Args: cobra.RangeArgs(2, 3),
	RunE: withContainer(func(cc *CommandContext, cmd *cobra.Command, args []string) error {
		overrides, err := parseSetValues(setValues)
		if err != nil {
			return err
		}

		req := dto.MakeRequest{
			Documents: append([]string{args[0]}, extraDocuments...),
			Model:     args[1],
			Count:     viper.GetInt("count"),
			Overrides: overrides,
			Save:      saveRecords,
		}
		if len(args) == 3 {
			req.Blueprint = args[2]
		}

		resp, err := cc.Container.FixtureService().Make(cc.Context, req)
		if err != nil {
			return err
		}

		formatter, err := cc.Container.FormatterFactory().Create(
			viper.GetString("format"),
			cmd.OutOrStdout(),
			ports.FormatterOptions{Indent: true},
		)
		if err != nil {
			return err
		}
		return formatter.Format(resp.Records)
	}),
}

func init() {
	rootCmd.AddCommand(makeCmd)

	makeCmd.Flags().Int("count", 1, "Number of records to build")
	makeCmd.Flags().String("format", "table", "Output format: table, json, yaml")
	makeCmd.Flags().StringArrayVar(&setValues, "set", nil, "Override an attribute (key=value, repeatable)")
	makeCmd.Flags().StringSliceVar(&extraDocuments, "doc", nil, "Additional blueprint documents to load (comma-separated)")
	makeCmd.Flags().BoolVar(&saveRecords, "save", false, "Save the built records")

	_ = viper.BindPFlag("count", makeCmd.Flags().Lookup("count"))
	_ = viper.BindPFlag("format", makeCmd.Flags().Lookup("format"))
}

// parseSetValues turns key=value pairs into overrides. Values are read as
// YAML scalars, so numbers and booleans keep their type.
func parseSetValues(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}

	overrides := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, raw, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --set value %q: expected key=value", pair)
		}

		var value any
		if err := yaml.Unmarshal([]byte(raw), &value); err != nil {
			return nil, fmt.Errorf("invalid --set value for %s: %w", key, err)
		}
		if value == nil && raw != "" && raw != "null" && raw != "~" {
			value = raw
		}
		overrides[key] = value
	}
	return overrides, nil
}
