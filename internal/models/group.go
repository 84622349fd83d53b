package models

// GroupType selects the cost allocation policy of a group.
type GroupType string

const (
	// GroupTypeSmartMeal charges groceries per meal eaten and splits rent and
	// utilities equally.
	GroupTypeSmartMeal GroupType = "smart_meal"

	// GroupTypeMonthlyAvg ignores meals and splits every expense equally.
	GroupTypeMonthlyAvg GroupType = "monthly_avg"
)

// Valid reports whether t is a known group type.
func (t GroupType) Valid() bool {
	return t == GroupTypeSmartMeal || t == GroupTypeMonthlyAvg
}

// OrDefault maps empty or unknown types to smart_meal, the default for new groups.
func (t GroupType) OrDefault() GroupType {
	if t.Valid() {
		return t
	}
	return GroupTypeSmartMeal
}

// Group represents a mess: a set of people sharing costs.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// UniqueName is the handle other users join with.
	UniqueName string

	// DisplayName is the human-readable name (e.g., "Hall 4 Mess").
	DisplayName string

	// Type is the allocation policy. It never changes during a computation.
	Type GroupType

	// ManagerID is the member who physically holds and spends the fund.
	ManagerID string

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64
}

// Default role titles.
const (
	TitleManager = "Manager"
	TitleMember  = "Member"
)

// Member is a user's membership in a group.
type Member struct {
	UserID    string
	Name      string
	IsManager bool
	Title     string
}

// MemberNames indexes member display names by user ID.
func MemberNames(members []Member) map[string]string {
	names := make(map[string]string, len(members))
	for _, m := range members {
		names[m.UserID] = m.Name
	}
	return names
}
