package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var getCmd = &cobra.Command{
	Use:   "get <workbook.xlsx> <cell>...",
	Short: "Print recalculated cell values",
	Long: `Load a workbook, recalculate it, and print the value of each named
cell in A1 notation, one per line.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runGet,
}

func init() {
	rootCmd.AddCommand(getCmd)
}

func runGet(cmd *cobra.Command, args []string) error {
	sheet, err := loadSheet(args[0])
	if err != nil {
		return err
	}
	sheet.Recalculate()

	for _, addr := range args[1:] {
		v, err := sheet.GetA1(addr)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", addr, v)
	}
	return nil
}
