package model

import (
	"crypto/sha256"
	"fmt"
	"time"
)

// TransactionKind classifies a transaction by direction.
type TransactionKind string

// Transaction kinds. Only credits are considered for income detection.
const (
	KindCredit TransactionKind = "credit"
	KindDebit  TransactionKind = "debit"
	KindOther  TransactionKind = "other"
)

// Transaction is a read-only projection of a single financial transaction
// from any source (OFX file, aggregator, storage).
type Transaction struct {
	Date       time.Time
	ID         string
	Name       string // Raw transaction description
	AccountID  string
	CategoryID string // Optional external category reference
	Hash       string
	Kind       TransactionKind
	Amount     float64 // Signed: positive credit, negative debit
}

// GenerateHash creates a unique hash for duplicate detection.
func (t *Transaction) GenerateHash() string {
	data := fmt.Sprintf("%s:%.2f:%s:%s",
		t.Date.Format("2006-01-02"),
		t.Amount,
		t.Name,
		t.AccountID)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}

// KindForAmount derives the transaction kind from the amount's sign.
func KindForAmount(amount float64) TransactionKind {
	switch {
	case amount > 0:
		return KindCredit
	case amount < 0:
		return KindDebit
	default:
		return KindOther
	}
}
