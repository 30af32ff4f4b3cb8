package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/datacleaner/internal/core"
	"github.com/JonMunkholm/datacleaner/internal/core/regions"
	"github.com/JonMunkholm/datacleaner/internal/service"
)

var ruleHelp = map[core.RuleKind]string{
	core.RuleTrim:                "quita espacios al inicio y al final",
	core.RuleNormalizeWhitespace: "reduce espacios repetidos a uno",
	core.RuleToUpper:             "convierte a MAYÚSCULAS",
	core.RuleToLower:             "convierte a minúsculas",
	core.RuleToTitleCase:         "Primera Letra De Cada Palabra En Mayúscula",
	core.RuleRemoveAccents:       "elimina tildes y diacríticos",
	core.RuleNormalizeRut:        "formatea RUT/RUN como 12.345.678-K",
	core.RuleNormalizeRegion:     "nombre oficial de la región chilena",
}

func newRulesCmd() *cobra.Command {
	var (
		apply       []string
		listRegions bool
	)

	cmd := &cobra.Command{
		Use:   "rules [value...]",
		Short: "List cleaning rules, or apply a rule chain to values",
		Example: `  datacleaner rules
  datacleaner rules --apply trim,normalizeRut " 12345678-5 "
  datacleaner rules --regions`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			if listRegions {
				return printRegions(out)
			}

			if len(apply) == 0 {
				for _, r := range core.RuleKinds {
					fmt.Fprintf(out, "%-20s %s\n", r, ruleHelp[r])
				}
				return nil
			}

			chain := make([]core.RuleKind, len(apply))
			for i, name := range apply {
				chain[i] = core.RuleKind(strings.TrimSpace(name))
			}
			if unknown := service.ValidateRules(core.CleaningConfig{ColumnRules: []core.ColumnRule{{Rules: chain}}}); len(unknown) > 0 {
				return fmt.Errorf("unknown rules: %s", strings.Join(unknown, ", "))
			}

			for _, v := range args {
				fmt.Fprintln(out, core.ApplyRules(v, chain))
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&apply, "apply", nil, "comma-separated rules to apply to the arguments")
	cmd.Flags().BoolVar(&listRegions, "regions", false, "list the aliases normalizeRegion recognizes")
	return cmd
}

// printRegions lists every recognized alias next to the official name it
// resolves to.
func printRegions(w io.Writer) error {
	const aliasCol, nameCol = "Alias", "Región"

	aliases := regions.Aliases()
	rows := make([]core.Row, len(aliases))
	for i, a := range aliases {
		name, _ := regions.Lookup(a)
		rows[i] = core.Row{aliasCol: a, nameCol: name}
	}
	return renderTable(w, []string{aliasCol, nameCol}, rows)
}
