package domain

import "time"

// TransactionStatus is the lifecycle state of an exchange transaction.
type TransactionStatus string

const (
	StatusRequested TransactionStatus = "requested"
	StatusConfirmed TransactionStatus = "confirmed"
	StatusRejected  TransactionStatus = "rejected"
	StatusPickedUp  TransactionStatus = "picked_up"
	StatusReturned  TransactionStatus = "returned"
	StatusCompleted TransactionStatus = "completed"
	StatusCancelled TransactionStatus = "cancelled"
)

// transitions is the closed set of directed edges of the lifecycle graph.
// Every status flip in the engine travels exactly one of these edges; the
// persistence layer additionally guards each flip with the expected prior
// status so a race collapses to one winner.
var transitions = map[TransactionStatus][]TransactionStatus{
	StatusRequested: {StatusConfirmed, StatusRejected, StatusCancelled},
	StatusConfirmed: {StatusPickedUp, StatusCancelled},
	StatusPickedUp:  {StatusReturned, StatusCompleted},
	StatusReturned:  {StatusCompleted},
}

// CanTransition reports whether moving from s to next is a valid edge.
func (s TransactionStatus) CanTransition(next TransactionStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition is possible from s.
func (s TransactionStatus) IsTerminal() bool {
	return len(transitions[s]) == 0
}

// IsValid reports whether s is one of the known statuses.
func (s TransactionStatus) IsValid() bool {
	switch s {
	case StatusRequested, StatusConfirmed, StatusRejected, StatusPickedUp,
		StatusReturned, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// ReturnCondition captures the physical state of an item at return time.
type ReturnCondition string

const (
	ReturnGood      ReturnCondition = "good"
	ReturnMinorWear ReturnCondition = "minor_wear"
	ReturnDamaged   ReturnCondition = "damaged"
	ReturnBroken    ReturnCondition = "broken"
)

// IsValid reports whether c is one of the known conditions.
func (c ReturnCondition) IsValid() bool {
	switch c {
	case ReturnGood, ReturnMinorWear, ReturnDamaged, ReturnBroken:
		return true
	}
	return false
}

// NeedsEvidence reports whether this condition requires notes and a damage
// photo when the lender records the return.
func (c ReturnCondition) NeedsEvidence() bool {
	return c == ReturnDamaged || c == ReturnBroken
}

// Transaction is a single borrow/lend exchange between a borrower and the
// lender who owns the listing. Rows are never deleted; a transaction is the
// permanent audit record of the exchange.
type Transaction struct {
	TransactionID string `json:"transactionID"` // Primary Key (e.g., UUID)
	TenantID      string `json:"tenantID"`
	ListingID     string `json:"listingID"`
	BorrowerID    string `json:"borrowerID"`
	LenderID      string `json:"lenderID"`

	Quantity int               `json:"quantity"`
	Status   TransactionStatus `json:"status"`

	// Borrower-proposed schedule, captured at request time.
	ProposedPickupDate *time.Time `json:"proposedPickupDate,omitempty"`
	ProposedReturnDate *time.Time `json:"proposedReturnDate,omitempty"`
	// Lender-confirmed schedule, captured at confirmation.
	ConfirmedPickupDate *time.Time `json:"confirmedPickupDate,omitempty"`
	ExpectedReturnDate  *time.Time `json:"expectedReturnDate,omitempty"`
	// System-stamped actuals.
	ActualPickupDate *time.Time `json:"actualPickupDate,omitempty"`
	ActualReturnDate *time.Time `json:"actualReturnDate,omitempty"`

	BorrowerMessage *string `json:"borrowerMessage,omitempty"`
	LenderMessage   *string `json:"lenderMessage,omitempty"`
	RejectionReason *string `json:"rejectionReason,omitempty"`

	// Outstanding return-date extension request, if any.
	ExtensionRequested bool       `json:"extensionRequested"`
	ExtensionNewDate   *time.Time `json:"extensionNewDate,omitempty"`
	ExtensionMessage   *string    `json:"extensionMessage,omitempty"`

	// Populated only when the item physically came back.
	ReturnCondition      *ReturnCondition `json:"returnCondition,omitempty"`
	ReturnNotes          *string          `json:"returnNotes,omitempty"`
	ReturnDamagePhotoURL *string          `json:"returnDamagePhotoURL,omitempty"`

	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	ConfirmedAt *time.Time `json:"confirmedAt,omitempty"`
	RejectedAt  *time.Time `json:"rejectedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// IsParty reports whether userID is the borrower or the lender.
func (t *Transaction) IsParty(userID string) bool {
	return userID == t.BorrowerID || userID == t.LenderID
}

// OtherParty returns the counterparty of userID in this transaction.
func (t *Transaction) OtherParty(userID string) string {
	if userID == t.BorrowerID {
		return t.LenderID
	}
	return t.BorrowerID
}

// dueSoonWindow is how far ahead of the expected return date a transaction
// counts as due soon.
const dueSoonWindow = 48 * time.Hour

// IsOverdue reports whether the item is out past its expected return date.
// The comparison ignores the time of day: an item due today is not overdue
// until tomorrow.
func (t *Transaction) IsOverdue(now time.Time) bool {
	if t.Status != StatusPickedUp || t.ExpectedReturnDate == nil {
		return false
	}
	due := t.ExpectedReturnDate.In(now.Location())
	dueDay := time.Date(due.Year(), due.Month(), due.Day(), 0, 0, 0, 0, now.Location())
	nowDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return nowDay.After(dueDay)
}

// IsDueSoon reports whether the expected return date falls within the next
// two days (inclusive) and the item is not already overdue.
func (t *Transaction) IsDueSoon(now time.Time) bool {
	if t.Status != StatusPickedUp || t.ExpectedReturnDate == nil || t.IsOverdue(now) {
		return false
	}
	return !t.ExpectedReturnDate.After(now.Add(dueSoonWindow))
}
