package domain

// ReturnPolicy classifies how a category's items flow back to the listing
// after a completed exchange.
type ReturnPolicy string

const (
	// ReturnRequired items (tools, books, ...) must physically come back;
	// the transaction passes through the returned status and the reserved
	// quantity is restocked at completion.
	ReturnRequired ReturnPolicy = "RETURN_REQUIRED"
	// Reusable items (services, skills, rides) have no physical return; the
	// capacity is restocked as soon as the exchange auto-completes at pickup.
	Reusable ReturnPolicy = "REUSABLE"
	// Consumable items (food, produce) are handed over one-way; like every
	// other policy the reserved quantity flows back to the listing when the
	// exchange completes, keeping the listing's count an offer capacity
	// rather than a stock level.
	Consumable ReturnPolicy = "CONSUMABLE"
)

// RequiresReturn reports whether transactions for this policy route through
// the returned status before completion.
func (p ReturnPolicy) RequiresReturn() bool {
	return p == ReturnRequired
}

// IsValid reports whether p is one of the known policies.
func (p ReturnPolicy) IsValid() bool {
	switch p {
	case ReturnRequired, Reusable, Consumable:
		return true
	}
	return false
}

// Category classifies exchange listings within a tenant.
type Category struct {
	CategoryID   string       `json:"categoryID"` // Primary Key (e.g., UUID)
	TenantID     string       `json:"tenantID"`   // FK -> tenants.tenant_id
	Name         string       `json:"name"`
	Description  string       `json:"description"`
	ReturnPolicy ReturnPolicy `json:"returnPolicy"`
	AuditFields
}

// DefaultCategories is the seed set created for every new tenant.
var DefaultCategories = []struct {
	Name         string
	ReturnPolicy ReturnPolicy
}{
	{Name: "Tools & Equipment", ReturnPolicy: ReturnRequired},
	{Name: "Books & Media", ReturnPolicy: ReturnRequired},
	{Name: "Sports & Outdoors", ReturnPolicy: ReturnRequired},
	{Name: "Home & Garden", ReturnPolicy: ReturnRequired},
	{Name: "Kids & Toys", ReturnPolicy: ReturnRequired},
	{Name: "Services & Skills", ReturnPolicy: Reusable},
	{Name: "Rides & Carpooling", ReturnPolicy: Reusable},
	{Name: "Food & Produce", ReturnPolicy: Consumable},
}
