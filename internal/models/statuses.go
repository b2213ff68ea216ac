package models

type UserRole string
type GigStatus string
type InterestStatus string

const (
	UserRoleProfessional UserRole = "professional"
	UserRoleInstitution  UserRole = "institution"
	UserRoleAdmin        UserRole = "admin"

	GigStatusOpen     GigStatus = "open"
	GigStatusAssigned GigStatus = "assigned"
	GigStatusPaid     GigStatus = "paid"
	GigStatusClosed   GigStatus = "closed"

	InterestStatusPending  InterestStatus = "pending"
	InterestStatusAccepted InterestStatus = "accepted"
	InterestStatusDeclined InterestStatus = "declined"
)
