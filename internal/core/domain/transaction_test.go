package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTransactionStatusCanTransition(t *testing.T) {
	testCases := []struct {
		from    TransactionStatus
		to      TransactionStatus
		allowed bool
	}{
		{StatusRequested, StatusConfirmed, true},
		{StatusRequested, StatusRejected, true},
		{StatusRequested, StatusCancelled, true},
		{StatusRequested, StatusPickedUp, false},
		{StatusRequested, StatusCompleted, false},
		{StatusConfirmed, StatusPickedUp, true},
		{StatusConfirmed, StatusCancelled, true},
		{StatusConfirmed, StatusRejected, false},
		{StatusConfirmed, StatusReturned, false},
		{StatusPickedUp, StatusReturned, true},
		{StatusPickedUp, StatusCompleted, true},
		{StatusPickedUp, StatusCancelled, false},
		{StatusReturned, StatusCompleted, true},
		{StatusReturned, StatusCancelled, false},
		{StatusCompleted, StatusRequested, false},
		{StatusRejected, StatusConfirmed, false},
		{StatusCancelled, StatusRequested, false},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.allowed, tc.from.CanTransition(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestTransactionStatusIsTerminal(t *testing.T) {
	assert.False(t, StatusRequested.IsTerminal())
	assert.False(t, StatusConfirmed.IsTerminal())
	assert.False(t, StatusPickedUp.IsTerminal())
	assert.False(t, StatusReturned.IsTerminal())
	assert.True(t, StatusRejected.IsTerminal())
	assert.True(t, StatusCompleted.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())
}

func TestReturnConditionNeedsEvidence(t *testing.T) {
	assert.False(t, ReturnGood.NeedsEvidence())
	assert.False(t, ReturnMinorWear.NeedsEvidence())
	assert.True(t, ReturnDamaged.NeedsEvidence())
	assert.True(t, ReturnBroken.NeedsEvidence())
}

func TestReturnConditionIsValid(t *testing.T) {
	assert.True(t, ReturnGood.IsValid())
	assert.True(t, ReturnBroken.IsValid())
	assert.False(t, ReturnCondition("pristine").IsValid())
	assert.False(t, ReturnCondition("").IsValid())
}

func TestTransactionIsOverdue(t *testing.T) {
	now := time.Date(2025, time.March, 10, 15, 0, 0, 0, time.UTC)

	dueYesterday := now.Add(-24 * time.Hour)
	dueEarlierToday := now.Add(-5 * time.Hour)
	dueTomorrow := now.Add(24 * time.Hour)

	txn := Transaction{Status: StatusPickedUp, ExpectedReturnDate: &dueYesterday}
	assert.True(t, txn.IsOverdue(now))

	// Due earlier today is not overdue yet; the grace runs to midnight.
	txn.ExpectedReturnDate = &dueEarlierToday
	assert.False(t, txn.IsOverdue(now))

	txn.ExpectedReturnDate = &dueTomorrow
	assert.False(t, txn.IsOverdue(now))

	// Only picked_up transactions can be overdue.
	txn = Transaction{Status: StatusConfirmed, ExpectedReturnDate: &dueYesterday}
	assert.False(t, txn.IsOverdue(now))

	txn = Transaction{Status: StatusPickedUp}
	assert.False(t, txn.IsOverdue(now), "no expected return date means never overdue")
}

func TestTransactionIsDueSoon(t *testing.T) {
	now := time.Date(2025, time.March, 10, 15, 0, 0, 0, time.UTC)

	within := now.Add(36 * time.Hour)
	atBoundary := now.Add(48 * time.Hour)
	beyond := now.Add(72 * time.Hour)
	past := now.Add(-48 * time.Hour)

	txn := Transaction{Status: StatusPickedUp, ExpectedReturnDate: &within}
	assert.True(t, txn.IsDueSoon(now))

	txn.ExpectedReturnDate = &atBoundary
	assert.True(t, txn.IsDueSoon(now), "48h boundary is inclusive")

	txn.ExpectedReturnDate = &beyond
	assert.False(t, txn.IsDueSoon(now))

	// Overdue transactions are not due soon; the overdue notice takes over.
	txn.ExpectedReturnDate = &past
	assert.False(t, txn.IsDueSoon(now))

	txn = Transaction{Status: StatusReturned, ExpectedReturnDate: &within}
	assert.False(t, txn.IsDueSoon(now))
}

func TestTransactionParties(t *testing.T) {
	txn := Transaction{BorrowerID: "borrower-1", LenderID: "lender-1"}

	assert.True(t, txn.IsParty("borrower-1"))
	assert.True(t, txn.IsParty("lender-1"))
	assert.False(t, txn.IsParty("someone-else"))

	assert.Equal(t, "lender-1", txn.OtherParty("borrower-1"))
	assert.Equal(t, "borrower-1", txn.OtherParty("lender-1"))
}
