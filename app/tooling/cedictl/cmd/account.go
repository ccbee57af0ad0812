package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
)

var accountRole string

var accountCmd = &cobra.Command{
	Use:   "account [id]",
	Short: "Print an account, or register one with --role.",
	Args:  cobra.ExactArgs(1),
	Run:   accountRun,
}

func init() {
	rootCmd.AddCommand(accountCmd)
	accountCmd.Flags().StringVarP(&accountRole, "role", "r", "", "Register the account with this role.")
}

func accountRun(cmd *cobra.Command, args []string) {
	accountID := args[0]

	if accountRole != "" {
		body := struct {
			AccountID string `json:"account_id"`
			Role      string `json:"role"`
		}{
			AccountID: accountID,
			Role:      accountRole,
		}

		var created struct {
			AccountID string `json:"account_id"`
		}
		if err := post("/v1/accounts", body, &created); err != nil {
			log.Fatal(err)
		}

		fmt.Println("registered account:", created.AccountID)
		return
	}

	var account map[string]any
	if err := get("/v1/accounts/"+accountID, &account); err != nil {
		log.Fatal(err)
	}

	display(account)
}
