package oraclegrp

import (
	"time"

	"github.com/shopspring/decimal"
)

type registerSensor struct {
	SensorID     string          `json:"sensor_id" validate:"required"`
	VaultID      string          `json:"vault_id" validate:"required"`
	Location     string          `json:"location"`
	TolerancePct decimal.Decimal `json:"tolerance_pct" validate:"required"`
}

type registerBar struct {
	SerialNumber  string          `json:"serial_number" validate:"required"`
	VaultID       string          `json:"vault_id" validate:"required"`
	WeightGrams   decimal.Decimal `json:"weight_grams" validate:"required"`
	PurityPct     decimal.Decimal `json:"purity_pct" validate:"required"`
	AssayReportID string          `json:"assay_report_id" validate:"required"`
}

type sensorReading struct {
	SensorID       string          `json:"sensor_id" validate:"required"`
	VaultID        string          `json:"vault_id" validate:"required"`
	WeightGrams    decimal.Decimal `json:"weight_grams" validate:"required"`
	TamperDetected bool            `json:"tamper_detected"`
	IntegrityHash  string          `json:"integrity_hash" validate:"required"`
	TakenAt        time.Time       `json:"taken_at" validate:"required"`
}

type newDelivery struct {
	FarmerID           string          `json:"farmer_id" validate:"required"`
	LBCID              string          `json:"lbc_id" validate:"required"`
	Region             string          `json:"region" validate:"required"`
	BagsCount          int             `json:"bags_count" validate:"required,gt=0"`
	WeightKg           decimal.Decimal `json:"weight_kg" validate:"required"`
	MoistureContentPct decimal.Decimal `json:"moisture_content_pct"`
	QualityGrade       string          `json:"quality_grade" validate:"required"`
	SeasonYear         int             `json:"season_year" validate:"required"`
}

type warehouseEntry struct {
	WarehouseID string          `json:"warehouse_id" validate:"required"`
	ReceiptID   string          `json:"receipt_id" validate:"required"`
	WeightKg    decimal.Decimal `json:"weight_kg" validate:"required"`
}

type productionReport struct {
	CompanyID       string          `json:"company_id" validate:"required"`
	Region          string          `json:"region" validate:"required"`
	Period          string          `json:"period" validate:"required"`
	GrossRevenueGHS decimal.Decimal `json:"gross_revenue_ghs" validate:"required"`
	RoyaltyPaidGHS  decimal.Decimal `json:"royalty_paid_ghs" validate:"required"`
}

type registerGoldReserve struct {
	Grams         decimal.Decimal `json:"grams" validate:"required"`
	AttestationID string          `json:"attestation_id" validate:"required"`
}

type registerCocoaReserve struct {
	Kg            decimal.Decimal `json:"kg" validate:"required"`
	AttestationID string          `json:"attestation_id" validate:"required"`
}
