package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/javajack/xlcalc"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "xlcalc",
	Short: "Recalculate xlsx workbooks",
	Long: `xlcalc loads the first worksheet of an xlsx workbook, rebuilds its
formula dependency graph, and recalculates every formula in dependency
order. Results can be printed per cell or written back to a workbook.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "TOML config file with engine settings and custom operations")
}

func execute() int {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "xlcalc:", err)
		return 1
	}
	return 0
}

// loadSheet opens the workbook applying the config file's engine
// settings and custom operations.
func loadSheet(path string) (*xlcalc.Sheet, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, err
	}
	reg := xlcalc.NewRegistry()
	for _, op := range cfg.Operations {
		if err := reg.RegisterExpr(op.Name, op.Expr); err != nil {
			return nil, fmt.Errorf("operation %s: %w", op.Name, err)
		}
	}
	opts := []xlcalc.Option{xlcalc.WithRegistry(reg)}
	if cfg.Engine.AutoRecalc {
		opts = append(opts, xlcalc.WithAutoRecalc(true))
	}
	return xlcalc.LoadWorkbook(path, opts...)
}
