package database_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cedichain/cedichain/foundation/ledger/database"
	"github.com/cedichain/cedichain/foundation/ledger/database/storage/memory"
	"github.com/cedichain/cedichain/foundation/ledger/genesis"
	"github.com/cedichain/cedichain/foundation/ledger/signature"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

func newDB(t *testing.T) *database.Database {
	strg, err := memory.New()
	if err != nil {
		t.Fatalf("\t%s\tShould be able to construct storage: %v", failed, err)
	}

	db, err := database.New(genesis.Default(), strg, nil)
	if err != nil {
		t.Fatalf("\t%s\tShould be able to construct database: %v", failed, err)
	}

	return db
}

func Test_GenesisBlock(t *testing.T) {
	t.Log("Given the need to seed a new chain with a genesis block.")
	{
		db := newDB(t)

		latest := db.LatestBlock()
		if latest.Header.Number != 0 {
			t.Fatalf("\t%s\tShould have a genesis block at height 0, got %d.", failed, latest.Header.Number)
		}
		t.Logf("\t%s\tShould have a genesis block at height 0.", success)

		if latest.Header.PrevBlockHash != signature.ZeroHash {
			t.Fatalf("\t%s\tShould have an all-zero previous hash, got %s.", failed, latest.Header.PrevBlockHash)
		}
		t.Logf("\t%s\tShould have an all-zero previous hash.", success)

		if latest.Header.TransRoot != signature.EmptyRootHash() {
			t.Fatalf("\t%s\tShould have the empty merkle root sentinel.", failed)
		}
		t.Logf("\t%s\tShould have the empty merkle root sentinel.", success)

		if latest.Header.TxCount != 0 {
			t.Fatalf("\t%s\tShould have zero transactions.", failed)
		}
		t.Logf("\t%s\tShould have zero transactions.", success)
	}
}

func Test_Accounts(t *testing.T) {
	now := time.Now().UTC()

	t.Log("Given the need to manage the account registry.")
	{
		db := newDB(t)

		t.Logf("\tTest 0:\tWhen registering a new account.")
		{
			if err := db.RegisterAccount("farmer-ama", database.RoleFarmer, now); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to register the account: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to register the account.", success)

			account, err := db.Account("farmer-ama")
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to look the account up: %v", failed, err)
			}
			if !account.GBDCBalance.IsZero() || !account.CRDNBalance.IsZero() {
				t.Fatalf("\t%s\tTest 0:\tShould start with zero balances.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould start with zero balances.", success)
		}

		t.Logf("\tTest 1:\tWhen registering the same account twice.")
		{
			err := db.RegisterAccount("farmer-ama", database.RoleFarmer, now)
			if !errors.Is(err, database.ErrDuplicateAccount) {
				t.Fatalf("\t%s\tTest 1:\tShould fail with ErrDuplicateAccount: %v", failed, err)
			}
			t.Logf("\t%s\tTest 1:\tShould fail with ErrDuplicateAccount.", success)
		}

		t.Logf("\tTest 2:\tWhen archiving an account.")
		{
			if err := db.ArchiveAccount("farmer-ama"); err != nil {
				t.Fatalf("\t%s\tTest 2:\tShould be able to archive: %v", failed, err)
			}

			account, err := db.Account("farmer-ama")
			if err != nil {
				t.Fatalf("\t%s\tTest 2:\tShould still be able to look the account up: %v", failed, err)
			}
			if !account.Archived {
				t.Fatalf("\t%s\tTest 2:\tShould be marked archived.", failed)
			}
			t.Logf("\t%s\tTest 2:\tShould be marked archived, not deleted.", success)
		}
	}
}

func Test_ReserveCeiling(t *testing.T) {
	now := time.Now().UTC()

	t.Log("Given the need to cap GBDC backing at 10% of the gold reserve.")
	{
		db := newDB(t)

		if err := db.AddGoldReserve(decimal.NewFromInt(10_000), signature.Hash("attestation-1"), now); err != nil {
			t.Fatalf("\t%s\tShould be able to register a gold reserve: %v", failed, err)
		}
		t.Logf("\t%s\tShould be able to register a gold reserve of 10,000 grams.", success)

		t.Logf("\tTest 0:\tWhen minting within the ceiling.")
		{
			g := database.GBDC{
				ID:               "gbdc-1",
				AmountCedi:       decimal.NewFromInt(500_000),
				GoldBackingGrams: decimal.NewFromInt(900),
				Holder:           "treasury-main",
				Status:           database.GBDCMinted,
				IssuedAt:         now,
			}
			if err := db.CreateGBDC(g); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to mint 900 grams of backing: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to mint 900 grams of backing.", success)
		}

		t.Logf("\tTest 1:\tWhen a mint would breach the ceiling.")
		{
			g := database.GBDC{
				ID:               "gbdc-2",
				AmountCedi:       decimal.NewFromInt(200_000),
				GoldBackingGrams: decimal.NewFromInt(200),
				Holder:           "treasury-main",
				Status:           database.GBDCMinted,
				IssuedAt:         now,
			}
			err := db.CreateGBDC(g)
			if !database.IsReserveCeiling(err) {
				t.Fatalf("\t%s\tTest 1:\tShould fail with a reserve ceiling error: %v", failed, err)
			}
			t.Logf("\t%s\tTest 1:\tShould fail with a reserve ceiling error.", success)

			if !db.GBDCBackedGrams().Equal(decimal.NewFromInt(900)) {
				t.Fatalf("\t%s\tTest 1:\tShould leave the backed total unchanged, got %s.", failed, db.GBDCBackedGrams())
			}
			t.Logf("\t%s\tTest 1:\tShould leave the backed total unchanged.", success)

			if _, err := db.GBDCRecord("gbdc-2"); !errors.Is(err, database.ErrInstrumentNotFound) {
				t.Fatalf("\t%s\tTest 1:\tShould not have created the instrument.", failed)
			}
			t.Logf("\t%s\tTest 1:\tShould not have created the instrument.", success)
		}

		t.Logf("\tTest 2:\tWhen a redeemed instrument frees backing.")
		{
			if err := db.SetGBDCStatus("gbdc-1", database.GBDCRedeemed, now); err != nil {
				t.Fatalf("\t%s\tTest 2:\tShould be able to redeem: %v", failed, err)
			}

			g := database.GBDC{
				ID:               "gbdc-3",
				AmountCedi:       decimal.NewFromInt(200_000),
				GoldBackingGrams: decimal.NewFromInt(1000),
				Holder:           "treasury-main",
				Status:           database.GBDCMinted,
				IssuedAt:         now,
			}
			if err := db.CreateGBDC(g); err != nil {
				t.Fatalf("\t%s\tTest 2:\tShould be able to mint against the freed backing: %v", failed, err)
			}
			t.Logf("\t%s\tTest 2:\tShould be able to mint against the freed backing.", success)
		}
	}
}

func Test_StatusMachines(t *testing.T) {
	now := time.Now().UTC()

	t.Log("Given the need to honor the instrument status machines.")
	{
		db := newDB(t)

		if err := db.AddGoldReserve(decimal.NewFromInt(100_000), signature.Hash("attestation-1"), now); err != nil {
			t.Fatalf("\t%s\tShould be able to register a gold reserve: %v", failed, err)
		}

		g := database.GBDC{
			ID:               "gbdc-1",
			AmountCedi:       decimal.NewFromInt(100),
			GoldBackingGrams: decimal.NewFromInt(10),
			Holder:           "treasury-main",
			Status:           database.GBDCMinted,
			IssuedAt:         now,
		}
		if err := db.CreateGBDC(g); err != nil {
			t.Fatalf("\t%s\tShould be able to mint: %v", failed, err)
		}

		t.Logf("\tTest 0:\tWhen redeeming a minted instrument.")
		{
			if err := db.SetGBDCStatus("gbdc-1", database.GBDCRedeemed, now); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to redeem: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to redeem.", success)
		}

		t.Logf("\tTest 1:\tWhen operating on a terminal instrument.")
		{
			err := db.TransferGBDC("gbdc-1", "bank-gcb", now)
			if !database.IsInvalidTransition(err) {
				t.Fatalf("\t%s\tTest 1:\tShould fail with an invalid transition error: %v", failed, err)
			}
			t.Logf("\t%s\tTest 1:\tShould fail with an invalid transition error.", success)
		}

		t.Logf("\tTest 2:\tWhen transferring an unknown instrument.")
		{
			err := db.TransferGBDC("gbdc-missing", "bank-gcb", now)
			if !errors.Is(err, database.ErrInstrumentNotFound) {
				t.Fatalf("\t%s\tTest 2:\tShould fail with ErrInstrumentNotFound: %v", failed, err)
			}
			t.Logf("\t%s\tTest 2:\tShould fail with ErrInstrumentNotFound.", success)
		}
	}
}

func Test_ConvertCRDN(t *testing.T) {
	now := time.Now().UTC()

	t.Log("Given the need to convert a CRDN and conserve balances.")
	{
		db := newDB(t)

		if err := db.RegisterAccount("farmer-ama", database.RoleFarmer, now); err != nil {
			t.Fatalf("\t%s\tShould be able to register the farmer: %v", failed, err)
		}

		amount := decimal.NewFromInt(640).Mul(decimal.NewFromFloat(99.89))
		c := database.CRDN{
			ID:            "crdn-1",
			AmountCedi:    amount,
			CocoaWeightKg: decimal.NewFromInt(640),
			FarmerID:      "farmer-ama",
			LBCID:         "lbc-pbc",
			SeasonYear:    2025,
			Status:        database.CRDNIssued,
			IssuedAt:      now,
		}
		if err := db.CreateCRDN(c); err != nil {
			t.Fatalf("\t%s\tShould be able to issue the CRDN: %v", failed, err)
		}
		t.Logf("\t%s\tShould be able to issue the CRDN.", success)

		t.Logf("\tTest 0:\tWhen converting the CRDN.")
		{
			before, _ := db.Account("farmer-ama")

			credited, err := db.ConvertCRDN("crdn-1", "farmer-ama", now)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to convert: %v", failed, err)
			}
			if !credited.Equal(amount) {
				t.Fatalf("\t%s\tTest 0:\tShould credit the full cedi amount, got %s.", failed, credited)
			}
			t.Logf("\t%s\tTest 0:\tShould credit the full cedi amount.", success)

			after, _ := db.Account("farmer-ama")
			if !after.GBDCBalance.Equal(before.GBDCBalance.Add(amount)) {
				t.Fatalf("\t%s\tTest 0:\tShould conserve value into the GBDC balance.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould conserve value into the GBDC balance.", success)

			record, err := db.CRDNRecord("crdn-1")
			if err != nil || record.Status != database.CRDNConverted {
				t.Fatalf("\t%s\tTest 0:\tShould leave the instrument CONVERTED.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould leave the instrument CONVERTED.", success)
		}

		t.Logf("\tTest 1:\tWhen converting a second time.")
		{
			_, err := db.ConvertCRDN("crdn-1", "farmer-ama", now)
			if !errors.Is(err, database.ErrAlreadyConverted) {
				t.Fatalf("\t%s\tTest 1:\tShould fail with ErrAlreadyConverted: %v", failed, err)
			}
			t.Logf("\t%s\tTest 1:\tShould fail with ErrAlreadyConverted.", success)
		}
	}
}

func Test_ChainRoundTrip(t *testing.T) {
	now := time.Now().UTC()

	t.Log("Given the need to validate sealed blocks round-trip through storage.")
	{
		db := newDB(t)

		prev := db.LatestBlock()
		var txs []database.Tx
		prevHash := signature.ZeroHash
		for i, id := range []string{"tx-1", "tx-2", "tx-3"} {
			tx := database.NewTx(id, database.InstrumentGBDC, "gbdc-1", "reserve-vault", "treasury-main",
				decimal.NewFromInt(int64(100*(i+1))), database.TxMint, "treasury", "", prevHash, now)
			prevHash = tx.HashHex()
			txs = append(txs, tx)
		}

		block, err := database.NewBlock("validator-bog-01", prev, txs, now.Add(time.Second))
		if err != nil {
			t.Fatalf("\t%s\tShould be able to build the next block: %v", failed, err)
		}
		t.Logf("\t%s\tShould be able to build the next block.", success)

		if err := block.ValidateBlock(prev, nil); err != nil {
			t.Fatalf("\t%s\tShould validate against the genesis block: %v", failed, err)
		}
		t.Logf("\t%s\tShould validate against the genesis block.", success)

		if err := db.Write(block); err != nil {
			t.Fatalf("\t%s\tShould be able to write the block: %v", failed, err)
		}
		db.UpdateLatestBlock(block)

		stored, err := db.GetBlock(1)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to read the block back: %v", failed, err)
		}
		if stored.Hash() != block.Hash() {
			t.Fatalf("\t%s\tShould reproduce the stored hash exactly.", failed)
		}
		t.Logf("\t%s\tShould reproduce the stored hash exactly.", success)

		if stored.Header.TransRoot != block.Trans.RootHex() {
			t.Fatalf("\t%s\tShould reproduce the merkle root exactly.", failed)
		}
		t.Logf("\t%s\tShould reproduce the merkle root exactly.", success)

		t.Logf("\tTest 0:\tWhen a stored block is tampered with.")
		{
			blockData := database.NewBlockData(block)
			blockData.Header.TxCount++
			if _, err := database.ToBlock(blockData); err == nil {
				t.Fatalf("\t%s\tTest 0:\tShould reject a tampered header.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould reject a tampered header.", success)
		}
	}
}

func Test_SnapshotRestore(t *testing.T) {
	now := time.Now().UTC()

	t.Log("Given the need to snapshot and restore the full ledger state.")
	{
		db := newDB(t)

		if err := db.RegisterAccount("farmer-ama", database.RoleFarmer, now); err != nil {
			t.Fatalf("\t%s\tShould be able to register an account: %v", failed, err)
		}
		if err := db.AddGoldReserve(decimal.NewFromInt(5_000), signature.Hash("attestation-1"), now); err != nil {
			t.Fatalf("\t%s\tShould be able to add gold reserve: %v", failed, err)
		}

		snap, err := db.Snapshot()
		if err != nil {
			t.Fatalf("\t%s\tShould be able to snapshot: %v", failed, err)
		}
		t.Logf("\t%s\tShould be able to snapshot.", success)

		db2 := newDB(t)
		if err := db2.Restore(snap); err != nil {
			t.Fatalf("\t%s\tShould be able to restore into a fresh database: %v", failed, err)
		}
		t.Logf("\t%s\tShould be able to restore into a fresh database.", success)

		if _, err := db2.Account("farmer-ama"); err != nil {
			t.Fatalf("\t%s\tShould find the account after restore: %v", failed, err)
		}
		t.Logf("\t%s\tShould find the account after restore.", success)

		if !db2.GoldReserve().Total.Equal(decimal.NewFromInt(5_000)) {
			t.Fatalf("\t%s\tShould restore the gold reserve total.", failed)
		}
		t.Logf("\t%s\tShould restore the gold reserve total.", success)

		if db2.LatestBlock().Hash() != db.LatestBlock().Hash() {
			t.Fatalf("\t%s\tShould restore the latest block.", failed)
		}
		t.Logf("\t%s\tShould restore the latest block.", success)
	}
}
