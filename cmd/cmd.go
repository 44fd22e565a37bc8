package cmd

import (
	"github.com/spf13/cobra"
)

var RootCmd = &cobra.Command{
	Use:   "tripkit",
	Short: "plan trips and split their expenses",
	Long:  `tripkit keeps trip plans, packing lists and shared expenses in sync across devices, and settles who owes whom at the end`,
}

func init() {
	RootCmd.AddCommand(serverCommand())
	RootCmd.AddCommand(migrateCommand())
	RootCmd.AddCommand(settleCommand())
}
