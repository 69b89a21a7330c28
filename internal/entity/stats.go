package entity

// UserStats summarises a learner's ledger for reporting: how many cards sit
// at each confidence level and how many were ever assigned.
type UserStats struct {
	UserID        int64
	CountsByLevel map[int]int64
	TotalAssigned int64
}
