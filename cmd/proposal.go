package cmd

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"huski/core"

	"github.com/spf13/cobra"
)

// proposalCmd represents the proposal command
var proposalCmd = &cobra.Command{
	Use:     "proposal <command>",
	Aliases: []string{"pp"},
	Short:   "Manage timelock proposals",
}

var proposalListCmd = &cobra.Command{
	Use:   "list",
	Short: "list queued proposals",
	RunE: func(cmd *cobra.Command, args []string) error {
		return call(cmd, http.MethodGet, "/proposals", nil)
	},
}

var proposalQueueCmd = &cobra.Command{
	Use:   "queue <action> <content>",
	Short: "queue an admin command, content is json",
	Example: `  huski pp queue set_pool '{"pool_id":0,"alloc_point":2}' --key $ADMIN_KEY
  huski pp queue set_worker '{"vault":"ibBUSD","worker":"farm-busd","risk":{"work_factor":7000}}'`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		action, ok := core.ParseActionType(args[0])
		if !ok || !action.IsProposal() {
			return fmt.Errorf("unknown proposal action %q", args[0])
		}

		if !json.Valid([]byte(args[1])) {
			return fmt.Errorf("content must be json")
		}

		delay, _ := cmd.Flags().GetDuration("eta")
		if delay <= 0 {
			delay = time.Duration(cfg.Timelock.Delay)*time.Second + time.Minute
		}

		return call(cmd, http.MethodPost, "/proposals", map[string]interface{}{
			"action":  action.String(),
			"content": json.RawMessage(args[1]),
			"eta":     time.Now().Add(delay).UTC().Format(time.RFC3339),
		})
	},
}

var proposalExecuteCmd = &cobra.Command{
	Use:   "execute <hash>",
	Short: "execute a ready proposal",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return call(cmd, http.MethodPost, "/proposals/"+args[0]+"/execute", nil)
	},
}

var proposalCancelCmd = &cobra.Command{
	Use:   "cancel <hash>",
	Short: "cancel a queued proposal",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return call(cmd, http.MethodPost, "/proposals/"+args[0]+"/cancel", nil)
	},
}

func init() {
	proposalQueueCmd.Flags().Duration("eta", 0, "execute after, default is the timelock delay plus a minute")

	proposalCmd.AddCommand(proposalListCmd, proposalQueueCmd, proposalExecuteCmd, proposalCancelCmd)
	rootCmd.AddCommand(proposalCmd)
}
