package state_test

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/cedichain/cedichain/foundation/ledger/database"
	"github.com/cedichain/cedichain/foundation/ledger/database/storage/memory"
	"github.com/cedichain/cedichain/foundation/ledger/genesis"
	"github.com/cedichain/cedichain/foundation/ledger/state"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

func newState(t *testing.T) *state.State {
	strg, err := memory.New()
	if err != nil {
		t.Fatalf("\t%s\tShould be able to construct storage: %v", failed, err)
	}

	st, err := state.New(state.Config{
		Genesis: genesis.Default(),
		Storage: strg,
	})
	if err != nil {
		t.Fatalf("\t%s\tShould be able to construct the engine: %v", failed, err)
	}

	return st
}

func Test_MintCeiling(t *testing.T) {
	t.Log("Given the need to enforce the gold backing ceiling across mints.")
	{
		st := newState(t)

		if err := st.RegisterGoldReserve(decimal.NewFromInt(10_000), "0xattest-gold-1"); err != nil {
			t.Fatalf("\t%s\tShould be able to register the gold reserve: %v", failed, err)
		}
		t.Logf("\t%s\tShould be able to register the gold reserve.", success)

		t.Logf("\tTest 0:\tWhen minting within the ceiling.")
		{
			id, err := st.MintGBDC(decimal.NewFromInt(1_000_000), decimal.NewFromInt(900), decimal.NewFromFloat(75.50), decimal.NewFromFloat(15.80), "ISS-2025-001", "treasury-main")
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to mint with 900g of 1000g capacity: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to mint with 900g of 1000g capacity.", success)

			g, err := st.GBDCRecord(id)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to look the instrument up: %v", failed, err)
			}
			if g.Status != database.GBDCMinted {
				t.Fatalf("\t%s\tTest 0:\tShould start in the MINTED status, got %s.", failed, g.Status)
			}
			t.Logf("\t%s\tTest 0:\tShould start in the MINTED status.", success)

			if g.Holder != database.AccountID("treasury-main") {
				t.Fatalf("\t%s\tTest 0:\tShould be held by the treasury, got %s.", failed, g.Holder)
			}
			t.Logf("\t%s\tTest 0:\tShould be held by the treasury.", success)
		}

		t.Logf("\tTest 1:\tWhen minting beyond the ceiling.")
		{
			before := st.TotalGBDCOutstanding()

			_, err := st.MintGBDC(decimal.NewFromInt(250_000), decimal.NewFromInt(200), decimal.NewFromFloat(75.50), decimal.NewFromFloat(15.80), "ISS-2025-002", "treasury-main")
			if err == nil {
				t.Fatalf("\t%s\tTest 1:\tShould not be able to mint 200g with only 100g of capacity left.", failed)
			}
			if !database.IsReserveCeiling(err) {
				t.Fatalf("\t%s\tTest 1:\tShould get a reserve ceiling error, got: %v", failed, err)
			}
			t.Logf("\t%s\tTest 1:\tShould get a reserve ceiling error.", success)

			if !st.TotalGBDCOutstanding().Equal(before) {
				t.Fatalf("\t%s\tTest 1:\tShould leave the outstanding total unchanged after a rejected mint.", failed)
			}
			t.Logf("\t%s\tTest 1:\tShould leave the outstanding total unchanged after a rejected mint.", success)
		}

		t.Logf("\tTest 2:\tWhen new attestations raise the reserve.")
		{
			if err := st.RegisterGoldReserve(decimal.NewFromInt(5_000), "0xattest-gold-2"); err != nil {
				t.Fatalf("\t%s\tTest 2:\tShould be able to raise the gold reserve: %v", failed, err)
			}

			// Capacity is now 1500g with 900g backed.
			if _, err := st.MintGBDC(decimal.NewFromInt(250_000), decimal.NewFromInt(200), decimal.NewFromFloat(75.50), decimal.NewFromFloat(15.80), "ISS-2025-003", "treasury-main"); err != nil {
				t.Fatalf("\t%s\tTest 2:\tShould be able to mint the same 200g after the reserve grew: %v", failed, err)
			}
			t.Logf("\t%s\tTest 2:\tShould be able to mint the same 200g after the reserve grew.", success)
		}
	}
}

func Test_GBDCLifecycle(t *testing.T) {
	t.Log("Given the need to move GBDC through its lifecycle.")
	{
		st := newState(t)

		if err := st.RegisterGoldReserve(decimal.NewFromInt(50_000), "0xattest-gold-1"); err != nil {
			t.Fatalf("\t%s\tShould be able to register the gold reserve: %v", failed, err)
		}
		if _, err := st.RegisterAccount("gcb-bank", "BANK"); err != nil {
			t.Fatalf("\t%s\tShould be able to register the bank: %v", failed, err)
		}
		if _, err := st.RegisterAccount("contractor-kwame", "CONTRACTOR"); err != nil {
			t.Fatalf("\t%s\tShould be able to register the contractor: %v", failed, err)
		}

		id, err := st.MintGBDC(decimal.NewFromInt(500_000), decimal.NewFromInt(420), decimal.NewFromFloat(75.50), decimal.NewFromFloat(15.80), "ISS-2025-010", "treasury-main")
		if err != nil {
			t.Fatalf("\t%s\tShould be able to mint: %v", failed, err)
		}

		t.Logf("\tTest 0:\tWhen transferring to a contractor.")
		{
			if _, err := st.TransferGBDC(id, "treasury-main", "contractor-kwame", decimal.NewFromInt(500_000), "road project tranche 1"); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to transfer: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to transfer.", success)

			g, err := st.GBDCRecord(id)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to look the instrument up: %v", failed, err)
			}
			if g.Status != database.GBDCCirculating || g.Holder != database.AccountID("contractor-kwame") {
				t.Fatalf("\t%s\tTest 0:\tShould be CIRCULATING with the contractor, got %s/%s.", failed, g.Status, g.Holder)
			}
			t.Logf("\t%s\tTest 0:\tShould be CIRCULATING with the contractor.", success)
		}

		t.Logf("\tTest 1:\tWhen redeeming at a bank.")
		{
			if _, err := st.RedeemGBDC(id, "gcb-bank"); err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould be able to redeem: %v", failed, err)
			}
			t.Logf("\t%s\tTest 1:\tShould be able to redeem.", success)

			if _, err := st.TransferGBDC(id, "contractor-kwame", "gcb-bank", decimal.NewFromInt(1), ""); err == nil {
				t.Fatalf("\t%s\tTest 1:\tShould not be able to transfer a redeemed instrument.", failed)
			}
			t.Logf("\t%s\tTest 1:\tShould not be able to transfer a redeemed instrument.", success)

			if !st.TotalGBDCOutstanding().Equal(decimal.Zero) {
				t.Fatalf("\t%s\tTest 1:\tShould have zero GBDC outstanding after redemption.", failed)
			}
			t.Logf("\t%s\tTest 1:\tShould have zero GBDC outstanding after redemption.", success)
		}
	}
}

func Test_CRDNIssueAndConvert(t *testing.T) {
	t.Log("Given the need to issue cocoa notes and convert them to GBDC value.")
	{
		st := newState(t)

		if _, err := st.RegisterAccount("farmer-ama", "FARMER"); err != nil {
			t.Fatalf("\t%s\tShould be able to register the farmer: %v", failed, err)
		}
		if _, err := st.RegisterAccount("lbc-pbcl", "LBC"); err != nil {
			t.Fatalf("\t%s\tShould be able to register the licensed buying company: %v", failed, err)
		}

		weight := decimal.NewFromInt(640)
		price := decimal.NewFromFloat(99.89)
		want := decimal.NewFromFloat(63_929.60)

		var id string

		t.Logf("\tTest 0:\tWhen issuing a note for a 640kg delivery at 99.89 GHS/kg.")
		{
			var err error
			id, err = st.IssueCRDN("farmer-ama", "lbc-pbcl", weight, price, "WR-ASH-2025-0001", 2025, "0xattest-cocoa-1")
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to issue the note: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to issue the note.", success)

			c, err := st.CRDNRecord(id)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to look the note up: %v", failed, err)
			}
			if !c.AmountCedi.Equal(want) {
				t.Fatalf("\t%s\tTest 0:\tShould fix the amount at weight times price, got %s want %s.", failed, c.AmountCedi, want)
			}
			t.Logf("\t%s\tTest 0:\tShould fix the amount at weight times price.", success)

			farmer, err := st.AccountBalance("farmer-ama")
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to read the farmer balance: %v", failed, err)
			}
			if !farmer.CRDNBalance.Equal(want) {
				t.Fatalf("\t%s\tTest 0:\tShould credit the farmer's CRDN balance, got %s.", failed, farmer.CRDNBalance)
			}
			t.Logf("\t%s\tTest 0:\tShould credit the farmer's CRDN balance.", success)
		}

		t.Logf("\tTest 1:\tWhen converting the note to GBDC.")
		{
			if _, err := st.ConvertCRDN(id, "farmer-ama", "GBDC"); err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould be able to convert: %v", failed, err)
			}
			t.Logf("\t%s\tTest 1:\tShould be able to convert.", success)

			farmer, err := st.AccountBalance("farmer-ama")
			if err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould be able to read the farmer balance: %v", failed, err)
			}
			if !farmer.CRDNBalance.Equal(decimal.Zero) || !farmer.GBDCBalance.Equal(want) {
				t.Fatalf("\t%s\tTest 1:\tShould move the full value across balances, got crdn %s gbdc %s.", failed, farmer.CRDNBalance, farmer.GBDCBalance)
			}
			t.Logf("\t%s\tTest 1:\tShould move the full value across balances.", success)
		}

		t.Logf("\tTest 2:\tWhen converting the same note again.")
		{
			_, err := st.ConvertCRDN(id, "farmer-ama", "GBDC")
			if err == nil {
				t.Fatalf("\t%s\tTest 2:\tShould not be able to convert twice.", failed)
			}
			t.Logf("\t%s\tTest 2:\tShould not be able to convert twice: %v", success, err)

			farmer, err := st.AccountBalance("farmer-ama")
			if err != nil {
				t.Fatalf("\t%s\tTest 2:\tShould be able to read the farmer balance: %v", failed, err)
			}
			if !farmer.GBDCBalance.Equal(want) {
				t.Fatalf("\t%s\tTest 2:\tShould leave the balance unchanged after a rejected convert.", failed)
			}
			t.Logf("\t%s\tTest 2:\tShould leave the balance unchanged after a rejected convert.", success)
		}
	}
}

func Test_SealAndValidate(t *testing.T) {
	t.Log("Given the need to seal pending transactions into a verifiable chain.")
	{
		st := newState(t)

		if err := st.RegisterGoldReserve(decimal.NewFromInt(100_000), "0xattest-gold-1"); err != nil {
			t.Fatalf("\t%s\tShould be able to register the gold reserve: %v", failed, err)
		}
		if _, err := st.RegisterAccount("gcb-bank", "BANK"); err != nil {
			t.Fatalf("\t%s\tShould be able to register the bank: %v", failed, err)
		}

		for i := 0; i < 3; i++ {
			if _, err := st.MintGBDC(decimal.NewFromInt(10_000), decimal.NewFromInt(10), decimal.NewFromFloat(75.50), decimal.NewFromFloat(15.80), "ISS-2025-1"+string(rune('0'+i)), "treasury-main"); err != nil {
				t.Fatalf("\t%s\tShould be able to mint: %v", failed, err)
			}
		}

		if st.PendingCount() != 3 {
			t.Fatalf("\t%s\tShould have 3 pending transactions, got %d.", failed, st.PendingCount())
		}
		t.Logf("\t%s\tShould have 3 pending transactions.", success)

		t.Logf("\tTest 0:\tWhen sealing the pending set.")
		{
			block, err := st.SealBlock()
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to seal a block: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to seal a block.", success)

			if block.Header.Number != 1 {
				t.Fatalf("\t%s\tTest 0:\tShould seal block number 1, got %d.", failed, block.Header.Number)
			}
			if block.Header.TxCount != 3 {
				t.Fatalf("\t%s\tTest 0:\tShould seal 3 transactions, got %d.", failed, block.Header.TxCount)
			}
			t.Logf("\t%s\tTest 0:\tShould seal 3 transactions into block 1.", success)

			if st.PendingCount() != 0 {
				t.Fatalf("\t%s\tTest 0:\tShould drain the pending set.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould drain the pending set.", success)

			if _, err := st.SealBlock(); err != state.ErrNoPendingTransactions {
				t.Fatalf("\t%s\tTest 0:\tShould report no pending transactions on an empty seal, got: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould report no pending transactions on an empty seal.", success)
		}

		t.Logf("\tTest 1:\tWhen validating the chain end to end.")
		{
			if _, err := st.MintGBDC(decimal.NewFromInt(5_000), decimal.NewFromInt(5), decimal.NewFromFloat(75.50), decimal.NewFromFloat(15.80), "ISS-2025-020", "treasury-main"); err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould be able to mint: %v", failed, err)
			}
			if _, err := st.SealBlock(); err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould be able to seal a second block: %v", failed, err)
			}

			if err := st.ValidateChain(); err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould validate the sealed chain: %v", failed, err)
			}
			t.Logf("\t%s\tTest 1:\tShould validate the sealed chain.", success)

			if st.LatestBlock().Header.Number != 2 {
				t.Fatalf("\t%s\tTest 1:\tShould be at height 2, got %d.", failed, st.LatestBlock().Header.Number)
			}
			t.Logf("\t%s\tTest 1:\tShould be at height 2.", success)
		}
	}
}

func Test_ReserveSummary(t *testing.T) {
	t.Log("Given the need to report the aggregate reserve position.")
	{
		st := newState(t)

		if err := st.RegisterGoldReserve(decimal.NewFromInt(10_000), "0xattest-gold-1"); err != nil {
			t.Fatalf("\t%s\tShould be able to register the gold reserve: %v", failed, err)
		}
		if err := st.RegisterCocoaReserve(decimal.NewFromInt(2_000), "0xattest-cocoa-1"); err != nil {
			t.Fatalf("\t%s\tShould be able to register the cocoa reserve: %v", failed, err)
		}

		summary := st.ReserveSummary()
		if !summary.BackingRatio.Equal(decimal.Zero) {
			t.Fatalf("\t%s\tShould report a zero ratio with nothing outstanding, got %s.", failed, summary.BackingRatio)
		}
		t.Logf("\t%s\tShould report a zero ratio with nothing outstanding.", success)

		if _, err := st.MintGBDC(decimal.NewFromInt(1_000_000), decimal.NewFromInt(800), decimal.NewFromInt(75), decimal.NewFromInt(16), "ISS-2025-030", "treasury-main"); err != nil {
			t.Fatalf("\t%s\tShould be able to mint: %v", failed, err)
		}

		summary = st.ReserveSummary()
		if !summary.GBDCOutstanding.Equal(decimal.NewFromInt(1_000_000)) {
			t.Fatalf("\t%s\tShould report 1,000,000 GBDC outstanding, got %s.", failed, summary.GBDCOutstanding)
		}
		t.Logf("\t%s\tShould report 1,000,000 GBDC outstanding.", success)

		// 10,000g * 75 USD * 16 GHS = 12,000,000 GHS of gold against
		// 1,000,000 outstanding.
		if !summary.BackingRatio.Equal(decimal.NewFromInt(12)) {
			t.Fatalf("\t%s\tShould report a backing ratio of 12, got %s.", failed, summary.BackingRatio)
		}
		t.Logf("\t%s\tShould report a backing ratio of 12.", success)

		if summary.PendingTransactions != 1 {
			t.Fatalf("\t%s\tShould report 1 pending transaction, got %d.", failed, summary.PendingTransactions)
		}
		t.Logf("\t%s\tShould report 1 pending transaction.", success)
	}
}

func Test_SnapshotRestore(t *testing.T) {
	t.Log("Given the need to snapshot and restore the full engine state.")
	{
		st := newState(t)

		if err := st.RegisterGoldReserve(decimal.NewFromInt(50_000), "0xattest-gold-1"); err != nil {
			t.Fatalf("\t%s\tShould be able to register the gold reserve: %v", failed, err)
		}
		if _, err := st.RegisterAccount("farmer-ama", "FARMER"); err != nil {
			t.Fatalf("\t%s\tShould be able to register the farmer: %v", failed, err)
		}
		if _, err := st.RegisterAccount("lbc-pbcl", "LBC"); err != nil {
			t.Fatalf("\t%s\tShould be able to register the licensed buying company: %v", failed, err)
		}

		if _, err := st.MintGBDC(decimal.NewFromInt(100_000), decimal.NewFromInt(90), decimal.NewFromFloat(75.50), decimal.NewFromFloat(15.80), "ISS-2025-040", "treasury-main"); err != nil {
			t.Fatalf("\t%s\tShould be able to mint: %v", failed, err)
		}
		if _, err := st.SealBlock(); err != nil {
			t.Fatalf("\t%s\tShould be able to seal: %v", failed, err)
		}
		if _, err := st.IssueCRDN("farmer-ama", "lbc-pbcl", decimal.NewFromInt(320), decimal.NewFromFloat(99.89), "WR-ASH-2025-0002", 2025, "0xattest-cocoa-1"); err != nil {
			t.Fatalf("\t%s\tShould be able to issue a note: %v", failed, err)
		}

		snap, err := st.Snapshot()
		if err != nil {
			t.Fatalf("\t%s\tShould be able to snapshot the engine: %v", failed, err)
		}
		t.Logf("\t%s\tShould be able to snapshot the engine.", success)

		restored := newState(t)
		if err := restored.Restore(snap); err != nil {
			t.Fatalf("\t%s\tShould be able to restore into a fresh engine: %v", failed, err)
		}
		t.Logf("\t%s\tShould be able to restore into a fresh engine.", success)

		if restored.LatestBlock().Hash() != st.LatestBlock().Hash() {
			t.Fatalf("\t%s\tShould restore the identical chain tip.", failed)
		}
		t.Logf("\t%s\tShould restore the identical chain tip.", success)

		if restored.PendingCount() != st.PendingCount() {
			t.Fatalf("\t%s\tShould restore the pending set, got %d want %d.", failed, restored.PendingCount(), st.PendingCount())
		}
		t.Logf("\t%s\tShould restore the pending set.", success)

		farmer, err := restored.AccountBalance("farmer-ama")
		if err != nil {
			t.Fatalf("\t%s\tShould be able to read the restored farmer balance: %v", failed, err)
		}
		if !farmer.CRDNBalance.Equal(decimal.NewFromFloat(99.89).Mul(decimal.NewFromInt(320))) {
			t.Fatalf("\t%s\tShould restore the farmer's CRDN balance, got %s.", failed, farmer.CRDNBalance)
		}
		t.Logf("\t%s\tShould restore the farmer's CRDN balance.", success)

		if err := restored.ValidateChain(); err != nil {
			t.Fatalf("\t%s\tShould validate the restored chain: %v", failed, err)
		}
		t.Logf("\t%s\tShould validate the restored chain.", success)
	}
}
