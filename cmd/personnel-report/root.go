package main

import "github.com/spf13/cobra"

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "personnel-report",
		Short: "Point-in-time and month-matrix personnel status reports",
	}
	cmd.AddCommand(newAsOfCmd())
	cmd.AddCommand(newMatrixCmd())
	return cmd
}

func execute() {
	_ = newRootCmd().Execute()
}
