package service

import "context"

// Permission is the host's consent state for user-visible alerts.
type Permission string

const (
	PermissionDefault Permission = "default"
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
)

// Notification is one user-visible alert.
type Notification struct {
	Title string
	Body  string
	Icon  string
	// Tag lets the host collapse repeated alerts; payments use their id.
	Tag string
}

// Notifier shows alerts. Notify reports whether the alert was actually shown;
// it returns false while permission is not granted.
type Notifier interface {
	Notify(ctx context.Context, n Notification) bool
	Permission() Permission
}

// PermissionRequester asks the user for alert permission.
type PermissionRequester interface {
	RequestPermission(ctx context.Context) Permission
}
