package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
)

var (
	issueFarmer  string
	issueLBC     string
	issueWeight  string
	issuePrice   string
	issueReceipt string
	issueSeason  int
)

var issueCmd = &cobra.Command{
	Use:   "issue",
	Short: "Issue a cocoa receipt note to a farmer.",
	Run:   issueRun,
}

func init() {
	rootCmd.AddCommand(issueCmd)
	issueCmd.Flags().StringVar(&issueFarmer, "farmer", "", "Farmer account id.")
	issueCmd.Flags().StringVar(&issueLBC, "lbc", "", "Licensed buying company account id.")
	issueCmd.Flags().StringVar(&issueWeight, "weight", "", "Cocoa weight in kilograms.")
	issueCmd.Flags().StringVar(&issuePrice, "price", "", "Producer price per kilogram in GHS.")
	issueCmd.Flags().StringVar(&issueReceipt, "receipt", "", "Warehouse receipt id.")
	issueCmd.Flags().IntVar(&issueSeason, "season", 2025, "Season year.")
	issueCmd.MarkFlagRequired("farmer")
	issueCmd.MarkFlagRequired("lbc")
	issueCmd.MarkFlagRequired("weight")
	issueCmd.MarkFlagRequired("price")
	issueCmd.MarkFlagRequired("receipt")
}

func issueRun(cmd *cobra.Command, args []string) {
	body := struct {
		FarmerID           string `json:"farmer_id"`
		LBCID              string `json:"lbc_id"`
		CocoaWeightKg      string `json:"cocoa_weight_kg"`
		PricePerKgGHS      string `json:"price_per_kg_ghs"`
		WarehouseReceiptID string `json:"warehouse_receipt_id"`
		SeasonYear         int    `json:"season_year"`
	}{
		FarmerID:           issueFarmer,
		LBCID:              issueLBC,
		CocoaWeightKg:      issueWeight,
		PricePerKgGHS:      issuePrice,
		WarehouseReceiptID: issueReceipt,
		SeasonYear:         issueSeason,
	}

	var result struct {
		InstrumentID string `json:"instrument_id"`
		Status       string `json:"status"`
	}
	if err := post("/v1/crdn/issue", body, &result); err != nil {
		log.Fatal(err)
	}

	fmt.Println("issued note:", result.InstrumentID, result.Status)
}
