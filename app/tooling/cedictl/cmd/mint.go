package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
)

var (
	mintAmount     string
	mintBacking    string
	mintGoldPrice  string
	mintFXRate     string
	mintIssuanceID string
	mintIssuedBy   string
)

var mintCmd = &cobra.Command{
	Use:   "mint",
	Short: "Mint a gold-backed instrument held by the treasury.",
	Run:   mintRun,
}

func init() {
	rootCmd.AddCommand(mintCmd)
	mintCmd.Flags().StringVar(&mintAmount, "amount", "", "Cedi amount to mint.")
	mintCmd.Flags().StringVar(&mintBacking, "backing", "", "Gold backing in grams.")
	mintCmd.Flags().StringVar(&mintGoldPrice, "gold-price", "", "Gold price per gram in USD.")
	mintCmd.Flags().StringVar(&mintFXRate, "fx-rate", "", "USD to GHS exchange rate.")
	mintCmd.Flags().StringVar(&mintIssuanceID, "issuance", "", "Issuance id.")
	mintCmd.Flags().StringVar(&mintIssuedBy, "issued-by", "treasury-main", "Issuing account.")
	mintCmd.MarkFlagRequired("amount")
	mintCmd.MarkFlagRequired("backing")
	mintCmd.MarkFlagRequired("gold-price")
	mintCmd.MarkFlagRequired("fx-rate")
	mintCmd.MarkFlagRequired("issuance")
}

func mintRun(cmd *cobra.Command, args []string) {
	body := struct {
		AmountCedi          string `json:"amount_cedi"`
		GoldBackingGrams    string `json:"gold_backing_grams"`
		GoldPricePerGramUSD string `json:"gold_price_per_gram_usd"`
		ExchangeRateUSDGHS  string `json:"exchange_rate_usd_ghs"`
		IssuanceID          string `json:"issuance_id"`
		IssuedBy            string `json:"issued_by"`
	}{
		AmountCedi:          mintAmount,
		GoldBackingGrams:    mintBacking,
		GoldPricePerGramUSD: mintGoldPrice,
		ExchangeRateUSDGHS:  mintFXRate,
		IssuanceID:          mintIssuanceID,
		IssuedBy:            mintIssuedBy,
	}

	var result struct {
		InstrumentID string `json:"instrument_id"`
		Status       string `json:"status"`
	}
	if err := post("/v1/gbdc/mint", body, &result); err != nil {
		log.Fatal(err)
	}

	fmt.Println("minted instrument:", result.InstrumentID, result.Status)
}
