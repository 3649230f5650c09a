package organizations

// Plan describes the limits attached to an organization. Plans are a static
// in-code registry; billing and subscription state live outside this service.
type Plan struct {
	ID                   string
	Name                 string
	MaxDocumentsCount    int64
	MaxStorageBytes      int64
	MaxIntakeEmailsCount int
}

const (
	PlanFree = "free"
	PlanPlus = "plus"
	PlanPro  = "pro"
)

var plans = map[string]Plan{
	PlanFree: {
		ID:                   PlanFree,
		Name:                 "Free",
		MaxDocumentsCount:    100,
		MaxStorageBytes:      512 << 20, // 512MB
		MaxIntakeEmailsCount: 1,
	},
	PlanPlus: {
		ID:                   PlanPlus,
		Name:                 "Plus",
		MaxDocumentsCount:    5000,
		MaxStorageBytes:      5 << 30, // 5GB
		MaxIntakeEmailsCount: 5,
	},
	PlanPro: {
		ID:                   PlanPro,
		Name:                 "Pro",
		MaxDocumentsCount:    0, // unlimited
		MaxStorageBytes:      50 << 30,
		MaxIntakeEmailsCount: 20,
	},
}

// PlanByID returns the plan for the given ID, falling back to the free plan.
func PlanByID(id string) Plan {
	if p, ok := plans[id]; ok {
		return p
	}
	return plans[PlanFree]
}
