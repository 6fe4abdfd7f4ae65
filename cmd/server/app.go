package main

import (
	"fmt"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"vehicle-ticket-service/internal/config"
	"vehicle-ticket-service/internal/db"
	"vehicle-ticket-service/internal/pricing"
	"vehicle-ticket-service/internal/repository"
	"vehicle-ticket-service/internal/service"
)

type app struct {
	db        *gorm.DB
	tickets   *service.TicketService
	captures  *service.CaptureService
	history   *service.HistoryService
	reconcile *service.ReconcileService
	staff     *service.StaffService
}

func newApp(cfg *config.Config, log zerolog.Logger) (*app, error) {
	gdb, err := db.New(cfg.DB, log)
	if err != nil {
		return nil, err
	}

	loc, err := cfg.Reconcile.Location()
	if err != nil {
		return nil, fmt.Errorf("reconcile timezone: %w", err)
	}

	ticketRepo := repository.NewTicketRepository(gdb)
	captureRepo := repository.NewCaptureRepository(gdb)

	tickets := service.NewTicketService(
		ticketRepo,
		repository.NewRateRepository(gdb),
		repository.NewPaymentAccountRepository(gdb),
		service.NewSubmitGuard(cfg.Tickets.SubmitCooldown),
		pricing.NewFallbackTable(cfg.Tickets.FallbackPrices),
		log.With().Str("component", "tickets").Logger(),
	)
	reconcile := service.NewReconcileService(ticketRepo, captureRepo, service.ReconcileConfig{
		NearDuplicateWindow: cfg.Reconcile.NearDuplicateWindow,
		MatchTolerance:      cfg.Reconcile.MatchTolerance,
		Location:            loc,
		MaxDayRows:          cfg.Reconcile.MaxDayRows,
	}, log.With().Str("component", "reconcile").Logger())

	return &app{
		db:        gdb,
		tickets:   tickets,
		captures:  service.NewCaptureService(captureRepo, log.With().Str("component", "captures").Logger()),
		history:   service.NewHistoryService(ticketRepo, log.With().Str("component", "history").Logger()),
		reconcile: reconcile,
		staff:     service.NewStaffService(repository.NewStaffRepository(gdb), log.With().Str("component", "staff").Logger()),
	}, nil
}

func (a *app) close() {
	if sqlDB, err := a.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
