package handlers

// AppHandlers holds all HTTP handlers.
type AppHandlers struct {
	GigHandler          *GigHandler
	NotificationHandler *NotificationHandler
}
