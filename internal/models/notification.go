package models

// Notification is a message addressed to one user.
type Notification struct {
	ID        string
	UserID    string
	Message   string
	IsRead    bool
	CreatedAt int64
}

// MealRequestStatus is the lifecycle state of a MealRequest.
type MealRequestStatus string

const (
	MealRequestPending  MealRequestStatus = "pending"
	MealRequestApproved MealRequestStatus = "approved"
	MealRequestRejected MealRequestStatus = "rejected"
)

// Valid reports whether s is a known status.
func (s MealRequestStatus) Valid() bool {
	switch s {
	case MealRequestPending, MealRequestApproved, MealRequestRejected:
		return true
	}
	return false
}

// MealRequest asks the manager to change a member's meals for a day.
type MealRequest struct {
	ID       string
	GroupID  string
	UserID   string
	UserName string // filled on reads
	Date     Date
	Status   MealRequestStatus
	Message  string
}
