package api

import (
	"github.com/SherClockHolmes/webpush-go"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"officehours-backend/internal/catalog"
	"officehours-backend/internal/reminder"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	reminders *reminder.Service
	catalog   *catalog.Catalog
	db        *gorm.DB
	webpush   *webpush.Options
	log       *zap.Logger
}

// NewHandler creates a new API handler.
func NewHandler(svc *reminder.Service, cat *catalog.Catalog, db *gorm.DB, webpushOptions *webpush.Options, log *zap.Logger) *Handler {
	return &Handler{
		reminders: svc,
		catalog:   cat,
		db:        db,
		webpush:   webpushOptions,
		log:       log.Named("api"),
	}
}
