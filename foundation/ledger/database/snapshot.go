package database

// Snapshot is the full serializable shape of the ledger state. A caller may
// capture it, persist it to any structured store, and later restore an
// engine from it.
type Snapshot struct {
	Accounts []Account   `json:"accounts"`
	Gold     Reserve     `json:"gold_reserve"`
	Cocoa    Reserve     `json:"cocoa_reserve"`
	GBDC     []GBDC      `json:"gbdc_instruments"`
	CRDN     []CRDN      `json:"crdn_instruments"`
	Blocks   []BlockData `json:"ledger_blocks"`
}

// Snapshot captures the current ledger state, including every sealed block
// read back from storage.
func (db *Database) Snapshot() (Snapshot, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	snap := Snapshot{
		Gold:  db.gold,
		Cocoa: db.cocoa,
	}

	for _, account := range db.accounts {
		snap.Accounts = append(snap.Accounts, account)
	}
	sortAccounts(snap.Accounts)

	for _, g := range db.gbdc {
		snap.GBDC = append(snap.GBDC, g)
	}
	for _, c := range db.crdn {
		snap.CRDN = append(snap.CRDN, c)
	}

	iter := db.storage.ForEach()
	for blockData, err := iter.Next(); !iter.Done(); blockData, err = iter.Next() {
		if err != nil {
			return Snapshot{}, err
		}
		snap.Blocks = append(snap.Blocks, blockData)
	}

	return snap, nil
}

// Restore replaces the current ledger state with the snapshot. The block
// storage is reset and rewritten so the restored chain is iterable again.
func (db *Database) Restore(snap Snapshot) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	accounts := make(map[AccountID]Account, len(snap.Accounts))
	for _, account := range snap.Accounts {
		accounts[account.AccountID] = account
	}

	gbdc := make(map[string]GBDC, len(snap.GBDC))
	for _, g := range snap.GBDC {
		gbdc[g.ID] = g
	}

	crdn := make(map[string]CRDN, len(snap.CRDN))
	for _, c := range snap.CRDN {
		crdn[c.ID] = c
	}

	var latestBlock Block
	for _, blockData := range snap.Blocks {
		block, err := ToBlock(blockData)
		if err != nil {
			return err
		}
		if block.Header.Number > 0 {
			if err := block.ValidateBlock(latestBlock, nil); err != nil {
				return err
			}
		}
		latestBlock = block
	}

	if err := db.storage.Reset(); err != nil {
		return err
	}
	for _, blockData := range snap.Blocks {
		if err := db.storage.Write(blockData); err != nil {
			return err
		}
	}

	db.accounts = accounts
	db.gold = snap.Gold
	db.cocoa = snap.Cocoa
	db.gbdc = gbdc
	db.crdn = crdn
	db.latestBlock = latestBlock

	return nil
}
