package services

// ServiceContainer holds all application services.
type ServiceContainer struct {
	GigService          *GigService
	NotificationService NotificationService
}
