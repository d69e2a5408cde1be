// Package schedule derives the weekly availability configuration from the
// free-text description of the booking calendar and caches the last
// successfully parsed value for request handlers.
package schedule

import (
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"bookdesk/internal/models"
)

const durationPrefix = "DURATION:"

// Parser turns a calendar description into a ScheduleConfig.
type Parser struct {
	logger zerolog.Logger
}

// NewParser creates a parser. Malformed availability blocks are skipped and
// logged rather than failing the whole description.
func NewParser(logger zerolog.Logger) *Parser {
	return &Parser{logger: logger.With().Str("component", "schedule_parser").Logger()}
}

// Parse extracts the weekly availability and appointment duration from the
// description text.
func (p *Parser) Parse(text string) models.ScheduleConfig {
	return models.ScheduleConfig{
		DurationMinutes: p.ParseDuration(text),
		Week:            p.ParseWeek(text),
	}
}

// ParseWeek scans the description line by line. For every recognized day key
// the first line whose upper-cased prefix matches the key is used:
//
//	MONDAY: 9-12, 13-17   -> two blocks
//	MONDAY:               -> explicitly no availability (empty list)
//	(no MONDAY line)      -> key absent from the result
//
// The distinction between an empty list and an absent key is deliberate;
// consumers decide whether absent days fall back to the DEFAULT block.
func (p *Parser) ParseWeek(text string) map[models.Weekday][]models.TimeBlock {
	lines := strings.Split(text, "\n")
	week := make(map[models.Weekday][]models.TimeBlock)

	for _, day := range models.Weekdays {
		line, ok := findDayLine(lines, day)
		if !ok {
			continue
		}
		colon := strings.Index(line, ":")
		if colon < 0 {
			continue
		}
		week[day] = p.parseBlocks(day, line[colon+1:])
	}

	return week
}

// ParseDuration reads the "DURATION: <minutes>" line. Missing or malformed
// lines yield the default of 60 minutes.
func (p *Parser) ParseDuration(text string) int {
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(strings.ToUpper(trimmed), durationPrefix) {
			continue
		}
		value := strings.TrimSpace(trimmed[len(durationPrefix):])
		minutes, err := strconv.Atoi(value)
		if err != nil || minutes <= 0 {
			p.logger.Warn().Str("value", value).Msg("invalid duration line, using default")
			return models.DefaultDurationMinutes
		}
		return minutes
	}
	return models.DefaultDurationMinutes
}

func findDayLine(lines []string, day models.Weekday) (string, bool) {
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(strings.ToUpper(trimmed), string(day)) {
			return trimmed, true
		}
	}
	return "", false
}

// parseBlocks splits "9-12, 13-17" into time blocks. An empty tail means the
// day is explicitly closed. Blocks that do not parse as "<start>-<end>" with
// integer bounds are skipped.
func (p *Parser) parseBlocks(day models.Weekday, tail string) []models.TimeBlock {
	tail = strings.TrimSpace(tail)
	blocks := make([]models.TimeBlock, 0)
	if tail == "" {
		return blocks
	}

	for _, raw := range strings.Split(tail, ",") {
		parts := strings.Split(strings.TrimSpace(raw), "-")
		if len(parts) != 2 {
			p.logger.Warn().Str("day", string(day)).Str("block", raw).Msg("skipping malformed block")
			continue
		}
		start, errStart := strconv.Atoi(strings.TrimSpace(parts[0]))
		end, errEnd := strconv.Atoi(strings.TrimSpace(parts[1]))
		if errStart != nil || errEnd != nil {
			p.logger.Warn().Str("day", string(day)).Str("block", raw).Msg("skipping non-numeric block")
			continue
		}
		blocks = append(blocks, models.TimeBlock{StartHour: start, EndHour: end})
	}

	return blocks
}
