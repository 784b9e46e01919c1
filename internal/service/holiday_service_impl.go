package service

import (
	"context"
	"fmt"
	"time"

	"github.com/micromata/projectforge-sub017/internal/calendar"
	"github.com/micromata/projectforge-sub017/internal/domain"
	"github.com/micromata/projectforge-sub017/internal/repository"
)

type holidayService struct {
	repo    repository.HolidayRepo
	weekend []time.Weekday
	seed    []domain.Holiday
}

// NewHolidayService creates the holiday service. weekend nil means Saturday
// and Sunday; seed holidays come from the config file and are never stored.
func NewHolidayService(repo repository.HolidayRepo, weekend []time.Weekday, seed ...domain.Holiday) HolidayService {
	return &holidayService{repo: repo, weekend: weekend, seed: seed}
}

func (s *holidayService) Add(ctx context.Context, date time.Time, name string) error {
	if date.IsZero() {
		return fmt.Errorf("holiday date is required")
	}
	return s.repo.Upsert(ctx, domain.Holiday{Date: domain.Day(date), Name: name})
}

func (s *holidayService) Remove(ctx context.Context, date time.Time) error {
	return s.repo.Delete(ctx, domain.Day(date))
}

func (s *holidayService) List(ctx context.Context) ([]domain.Holiday, error) {
	return s.repo.List(ctx)
}

func (s *holidayService) Calendar(ctx context.Context) (*calendar.Calendar, error) {
	stored, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading holidays: %w", err)
	}
	cal := calendar.New(s.weekend, s.seed...)
	for _, h := range stored {
		cal.AddHoliday(h.Date, h.Name)
	}
	return cal, nil
}
