package cron

import (
	"context"
	"fmt"

	"github.com/restaus/restaus-backend/pkg/logger"
)

type stockResetRepo interface {
	ResetAll(ctx context.Context) (int64, error)
}

// StockResetJobParams configure the daily replenishment job.
type StockResetJobParams struct {
	Logger     *logger.Logger
	Repository stockResetRepo
}

// NewStockResetJob restores every tracked menu's remaining stock to its daily
// allotment. The ledger only ever decrements during service; this job is the
// sole source of replenishment.
func NewStockResetJob(params StockResetJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	return &stockResetJob{logg: params.Logger, repo: params.Repository}, nil
}

type stockResetJob struct {
	logg *logger.Logger
	repo stockResetRepo
}

func (j *stockResetJob) Name() string { return "daily-stock-reset" }

func (j *stockResetJob) Run(ctx context.Context) error {
	reset, err := j.repo.ResetAll(ctx)
	if err != nil {
		return fmt.Errorf("stock reset: %w", err)
	}
	logCtx := j.logg.WithField(ctx, "rows_reset", reset)
	j.logg.Info(logCtx, "daily stock reset complete")
	return nil
}
