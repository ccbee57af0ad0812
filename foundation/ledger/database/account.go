package database

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// AccountID uniquely identifies a participant on the ledger. Identifiers are
// assigned by the registering authority, not derived from key material.
type AccountID string

// ToAccountID validates the raw string and converts it to an account id.
func ToAccountID(s string) (AccountID, error) {
	a := AccountID(strings.TrimSpace(s))
	if a == "" {
		return "", &ValidationError{Field: "account id", Reason: "must not be empty"}
	}

	return a, nil
}

// =============================================================================

// Role classifies an account by the part it plays in the instrument
// lifecycle.
type Role string

// Set of known account roles.
const (
	RoleTreasury   Role = "TREASURY"
	RoleBank       Role = "BANK"
	RoleAgency     Role = "AGENCY"
	RoleContractor Role = "CONTRACTOR"
	RoleFarmer     Role = "FARMER"
	RoleLBC        Role = "LBC"
	RoleDiaspora   Role = "DIASPORA"
	RoleAuditor    Role = "AUDITOR"
)

var roles = map[Role]bool{
	RoleTreasury:   true,
	RoleBank:       true,
	RoleAgency:     true,
	RoleContractor: true,
	RoleFarmer:     true,
	RoleLBC:        true,
	RoleDiaspora:   true,
	RoleAuditor:    true,
}

// ParseRole validates the raw string represents a known role.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	if !roles[r] {
		return "", &ValidationError{Field: "role", Reason: fmt.Sprintf("unknown role %q", s)}
	}

	return r, nil
}

// =============================================================================

// Account represents information stored in the database for an individual
// participant. Accounts are never deleted, only archived.
type Account struct {
	AccountID   AccountID       `json:"account_id"`
	Role        Role            `json:"role"`
	GBDCBalance decimal.Decimal `json:"gbdc_balance"`
	CRDNBalance decimal.Decimal `json:"crdn_balance"`
	CreatedAt   time.Time       `json:"created_at"`
	Archived    bool            `json:"archived"`
}

func newAccount(accountID AccountID, role Role, now time.Time) Account {
	return Account{
		AccountID:   accountID,
		Role:        role,
		GBDCBalance: decimal.Zero,
		CRDNBalance: decimal.Zero,
		CreatedAt:   now,
	}
}

// =============================================================================

// byAccount provides sorting support by the account id value so copies of
// the registry are returned in a stable order.
type byAccount []Account

func (ba byAccount) Len() int           { return len(ba) }
func (ba byAccount) Less(i, j int) bool { return ba[i].AccountID < ba[j].AccountID }
func (ba byAccount) Swap(i, j int)      { ba[i], ba[j] = ba[j], ba[i] }

func sortAccounts(accounts []Account) {
	sort.Sort(byAccount(accounts))
}
