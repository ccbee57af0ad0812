package cmd

import (
	"log"

	"github.com/spf13/cobra"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print the aggregate reserve and instrument position.",
	Run:   summaryRun,
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}

func summaryRun(cmd *cobra.Command, args []string) {
	var summary map[string]any
	if err := get("/v1/summary", &summary); err != nil {
		log.Fatal(err)
	}

	display(summary)
}
