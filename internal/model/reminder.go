package model

import "time"

// ScheduledReminder is a pending local notification held by the device gateway.
type ScheduledReminder struct {
	ID        string `gorm:"primaryKey;size:36"`
	ChannelID string `gorm:"size:64;not null"`
	Title     string `gorm:"size:256;not null"`
	Body      string `gorm:"size:512;not null"`
	Kind      string `gorm:"size:16;not null"`
	Hour      *int
	Minute    *int
	Seconds   *int
	Repeats   bool      `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null;index"`
}

// NotificationChannel is the delivery channel reminders are posted to.
type NotificationChannel struct {
	ID               string `gorm:"primaryKey;size:64"`
	Name             string `gorm:"size:128;not null"`
	Importance       int    `gorm:"not null"`
	VibrationPattern string `gorm:"size:128"`
	LightColor       string `gorm:"size:16"`
	UpdatedAt        time.Time
}
