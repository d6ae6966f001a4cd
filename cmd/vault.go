package cmd

import (
	"net/http"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var vaultCmd = &cobra.Command{
	Use:     "vault <command>",
	Aliases: []string{"v"},
	Short:   "inspect and use vaults",
}

var vaultListCmd = &cobra.Command{
	Use:   "list [symbol]",
	Short: "list vaults or show one",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 {
			return call(cmd, http.MethodGet, "/vaults/"+args[0], nil)
		}

		return call(cmd, http.MethodGet, "/vaults", nil)
	},
}

var vaultDepositCmd = &cobra.Command{
	Use:   "deposit <symbol> <amount>",
	Short: "deposit base tokens for shares",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, err := decimal.NewFromString(args[1])
		if err != nil {
			return err
		}

		return call(cmd, http.MethodPost, "/vaults/"+args[0]+"/deposit", map[string]interface{}{"amount": amount})
	},
}

var vaultWithdrawCmd = &cobra.Command{
	Use:   "withdraw <symbol> <shares>",
	Short: "burn shares for base tokens",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		shares, err := decimal.NewFromString(args[1])
		if err != nil {
			return err
		}

		return call(cmd, http.MethodPost, "/vaults/"+args[0]+"/withdraw", map[string]interface{}{"shares": shares})
	},
}

var vaultPositionCmd = &cobra.Command{
	Use:   "position <symbol> <id>",
	Short: "show a position with its health and debt",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return call(cmd, http.MethodGet, "/vaults/"+args[0]+"/positions/"+args[1], nil)
	},
}

var vaultKillCmd = &cobra.Command{
	Use:   "kill <symbol> <id>",
	Short: "liquidate an unhealthy position",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return call(cmd, http.MethodPost, "/vaults/"+args[0]+"/positions/"+args[1]+"/kill", nil)
	},
}

func init() {
	vaultCmd.AddCommand(vaultListCmd, vaultDepositCmd, vaultWithdrawCmd, vaultPositionCmd, vaultKillCmd)
	rootCmd.AddCommand(vaultCmd)
}
