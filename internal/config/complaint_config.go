package config

import "time"

const (
	// Complaint
	DescriptionMinLength = 10
	DescriptionMaxLength = 1000

	// Messages
	DefaultMaxMessageLength = 2000

	// Notifications
	NotificationPageSize = 10
	BadgeCap             = 9

	// Retention
	DefaultRetentionWindow = 7 * 24 * time.Hour
	DefaultSweepCron       = "0 * * * *"
	SweepJobName           = "cleanup-resolved-complaints"

	// Live view
	DefaultLiveResyncInterval = 60 * time.Second
	ChangesChannel            = "complaintdesk:changes"

	// Registration
	NameMinLength      = 2
	NameMaxLength      = 100
	StudentIDMinLength = 3
	StudentIDMaxLength = 50
	BatchMaxLength     = 50
	PhoneMinLength     = 10
	PhoneMaxLength     = 15
	EmailMaxLength     = 255
	PasswordMinLength  = 8
	PasswordMaxLength  = 100

	// Auth
	DefaultJWTTTL = 72 * time.Hour
	JWTIssuer     = "complaintdesk-service"
)
