package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"bookdesk/internal/models"
	"bookdesk/internal/slots"
)

// EventLister reads calendar events for a time range.
type EventLister interface {
	EventsBetween(ctx context.Context, from, to time.Time) ([]models.Event, error)
}

// SlotsService computes the occupied slots for a date, with an optional
// short-lived Redis cache in front of the calendar API.
type SlotsService struct {
	calendar EventLister
	schedule ScheduleProvider
	location *time.Location
	logger   zerolog.Logger

	redis    *redis.Client
	cacheTTL time.Duration
}

// NewSlotsService wires the slot reporting service.
func NewSlotsService(calendar EventLister, schedule ScheduleProvider, loc *time.Location, logger *zerolog.Logger) *SlotsService {
	return &SlotsService{
		calendar: calendar,
		schedule: schedule,
		location: loc,
		logger:   logger.With().Str("component", "slots_service").Logger(),
	}
}

// UseRedisCache configures optional Redis caching of per-date results.
func (s *SlotsService) UseRedisCache(redisClient *redis.Client, ttl time.Duration) {
	s.redis = redisClient
	s.cacheTTL = ttl
}

// BookedForDate returns the occupied (hour, minute) slots of the given
// YYYY-MM-DD date, unique and sorted.
func (s *SlotsService) BookedForDate(ctx context.Context, dateStr string) ([]models.Slot, error) {
	date, err := time.ParseInLocation("2006-01-02", dateStr, s.location)
	if err != nil {
		return nil, &ValidationError{Field: "date", Reason: "expected YYYY-MM-DD"}
	}

	cacheKey := fmt.Sprintf("booked_slots:%s", dateStr)
	var cached []models.Slot
	if s.readCache(ctx, cacheKey, &cached) {
		return cached, nil
	}

	dayStart := date
	dayEnd := date.AddDate(0, 0, 1)

	events, err := s.calendar.EventsBetween(ctx, dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("list events for %s: %w", dateStr, err)
	}

	booked := slots.Booked(events, s.schedule.Current().Duration(), s.location)
	s.writeCache(ctx, cacheKey, booked)
	return booked, nil
}

func (s *SlotsService) readCache(ctx context.Context, key string, out *[]models.Slot) bool {
	if s.redis == nil {
		return false
	}
	data, err := s.redis.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	var pairs [][2]int
	if err := json.Unmarshal(data, &pairs); err != nil {
		return false
	}
	result := make([]models.Slot, 0, len(pairs))
	for _, p := range pairs {
		result = append(result, models.Slot{Hour: p[0], Minute: p[1]})
	}
	*out = result
	return true
}

func (s *SlotsService) writeCache(ctx context.Context, key string, booked []models.Slot) {
	if s.redis == nil {
		return
	}
	pairs := make([][2]int, 0, len(booked))
	for _, slot := range booked {
		pairs = append(pairs, [2]int{slot.Hour, slot.Minute})
	}
	data, err := json.Marshal(pairs)
	if err != nil {
		return
	}
	if err := s.redis.Set(ctx, key, data, s.cacheTTL).Err(); err != nil {
		s.logger.Debug().Err(err).Str("key", key).Msg("cache write failed")
	}
}
