package ledgergrp

import (
	"github.com/shopspring/decimal"
)

type newAccount struct {
	AccountID string `json:"account_id" validate:"required"`
	Role      string `json:"role" validate:"required"`
}

type mintGBDC struct {
	AmountCedi          decimal.Decimal `json:"amount_cedi" validate:"required"`
	GoldBackingGrams    decimal.Decimal `json:"gold_backing_grams" validate:"required"`
	GoldPricePerGramUSD decimal.Decimal `json:"gold_price_per_gram_usd" validate:"required"`
	ExchangeRateUSDGHS  decimal.Decimal `json:"exchange_rate_usd_ghs" validate:"required"`
	IssuanceID          string          `json:"issuance_id" validate:"required"`
	IssuedBy            string          `json:"issued_by" validate:"required"`
}

type transferGBDC struct {
	InstrumentID string          `json:"instrument_id" validate:"required"`
	FromAccount  string          `json:"from_account" validate:"required"`
	ToAccount    string          `json:"to_account" validate:"required"`
	AmountCedi   decimal.Decimal `json:"amount_cedi" validate:"required"`
	Description  string          `json:"description"`
}

type redeemGBDC struct {
	InstrumentID  string `json:"instrument_id" validate:"required"`
	BankAccountID string `json:"bank_account_id" validate:"required"`
}

type issueCRDN struct {
	FarmerID           string          `json:"farmer_id" validate:"required"`
	LBCID              string          `json:"lbc_id" validate:"required"`
	CocoaWeightKg      decimal.Decimal `json:"cocoa_weight_kg" validate:"required"`
	PricePerKgGHS      decimal.Decimal `json:"price_per_kg_ghs" validate:"required"`
	WarehouseReceiptID string          `json:"warehouse_receipt_id" validate:"required"`
	SeasonYear         int             `json:"season_year" validate:"required"`
	AttestationHash    string          `json:"attestation_hash"`
}

type convertCRDN struct {
	InstrumentID     string `json:"instrument_id" validate:"required"`
	FarmerID         string `json:"farmer_id" validate:"required"`
	TargetInstrument string `json:"target_instrument" validate:"required"`
}

type instrumentResult struct {
	InstrumentID string `json:"instrument_id"`
	Status       string `json:"status"`
}
