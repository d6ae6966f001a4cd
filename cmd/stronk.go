package cmd

import (
	"net/http"

	"github.com/spf13/cobra"
)

var stronkCmd = &cobra.Command{
	Use:   "stronk <command>",
	Short: "stronk token",
}

var stronkInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "show the stronk settings and total hodl",
	RunE: func(cmd *cobra.Command, args []string) error {
		return call(cmd, http.MethodGet, "/stronk", nil)
	},
}

var stronkHodlCmd = &cobra.Command{
	Use:   "hodl",
	Short: "swap every reward token of the signing account, locked ones included",
	RunE: func(cmd *cobra.Command, args []string) error {
		return call(cmd, http.MethodPost, "/stronk/hodl", nil)
	},
}

var stronkUnhodlCmd = &cobra.Command{
	Use:   "unhodl",
	Short: "swap the stronk balance of the signing account back",
	RunE: func(cmd *cobra.Command, args []string) error {
		return call(cmd, http.MethodPost, "/stronk/unhodl", nil)
	},
}

func init() {
	stronkCmd.AddCommand(stronkInfoCmd, stronkHodlCmd, stronkUnhodlCmd)
	rootCmd.AddCommand(stronkCmd)
}
