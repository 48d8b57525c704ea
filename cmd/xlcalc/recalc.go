package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/javajack/xlcalc"
)

var recalcOutput string

var recalcCmd = &cobra.Command{
	Use:   "recalc <workbook.xlsx>",
	Short: "Recalculate every formula in a workbook",
	Args:  cobra.ExactArgs(1),
	RunE:  runRecalc,
}

func init() {
	recalcCmd.Flags().StringVarP(&recalcOutput, "output", "o", "", "Write the recalculated workbook to this path")
	rootCmd.AddCommand(recalcCmd)
}

func runRecalc(cmd *cobra.Command, args []string) error {
	sheet, err := loadSheet(args[0])
	if err != nil {
		return err
	}
	stats := sheet.Recalculate()
	fmt.Fprintf(cmd.OutOrStdout(), "evaluated %d formulas (%d cells cleared)\n", stats.Evaluated, stats.Cleared)

	if recalcOutput != "" {
		if err := xlcalc.SaveWorkbook(sheet, recalcOutput); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", recalcOutput)
	}
	return nil
}
