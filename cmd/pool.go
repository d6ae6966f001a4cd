package cmd

import (
	"net/http"

	"github.com/spf13/cobra"
)

var poolCmd = &cobra.Command{
	Use:   "pool <command>",
	Short: "fairlaunch pools",
}

var poolListCmd = &cobra.Command{
	Use:   "list",
	Short: "list fairlaunch settings and pools",
	RunE: func(cmd *cobra.Command, args []string) error {
		return call(cmd, http.MethodGet, "/pools", nil)
	},
}

var poolUserCmd = &cobra.Command{
	Use:   "user <pid> <address>",
	Short: "show a staker with the pending reward",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return call(cmd, http.MethodGet, "/pools/"+args[0]+"/users/"+args[1], nil)
	},
}

var poolHarvestCmd = &cobra.Command{
	Use:   "harvest <pid>",
	Short: "harvest the pending reward of the signing account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return call(cmd, http.MethodPost, "/pools/"+args[0]+"/harvest", nil)
	},
}

func init() {
	poolCmd.AddCommand(poolListCmd, poolUserCmd, poolHarvestCmd)
	rootCmd.AddCommand(poolCmd)
}
