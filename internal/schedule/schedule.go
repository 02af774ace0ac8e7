// Package schedule turns the poll interval setting into a Schedule.
package schedule

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// SpecKind describes the normalized kind of an interval string.
type SpecKind int

const (
	SpecInterval SpecKind = iota
	SpecCron
)

func (k SpecKind) String() string {
	if k == SpecCron {
		return "cron"
	}
	return "interval"
}

// ParsedSpec represents a parsed interval string.
//
// Supported forms:
//   - Interval duration: "600s", "10m"
//   - Interval HH:MM: "00:10" (10 minutes), "02:30" (2 hours 30 minutes)
//   - Cron: "*/10 * * * *", "@hourly", "@every 10m"
//
// Optional prefixes:
//   - "cron:" forces cron parsing
//   - "interval:" or "every:" forces interval parsing
type ParsedSpec struct {
	Kind   SpecKind
	Cron   string
	Every  time.Duration
	Source string // "cron" | "duration" | "hhmm"
}

var reHHMM = regexp.MustCompile(`^\s*(\d{1,3}):(\d{2})\s*$`)

var cronParser = cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// ParseSpec parses an interval string into either a fixed interval or a
// cron expression.
func ParseSpec(raw string) (ParsedSpec, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ParsedSpec{}, fmt.Errorf("poll interval required")
	}

	low := strings.ToLower(s)
	if strings.HasPrefix(low, "cron:") {
		expr := strings.TrimSpace(s[len("cron:"):])
		if expr == "" {
			return ParsedSpec{}, fmt.Errorf("cron schedule required after 'cron:'")
		}
		return ParsedSpec{Kind: SpecCron, Cron: expr, Source: "cron"}, nil
	}
	for _, prefix := range []string{"interval:", "every:"} {
		if strings.HasPrefix(low, prefix) {
			d, src, err := parseInterval(s[len(prefix):])
			if err != nil {
				return ParsedSpec{}, err
			}
			return ParsedSpec{Kind: SpecInterval, Every: d, Source: src}, nil
		}
	}

	// Whitespace or a leading '@' means cron.
	if strings.ContainsAny(s, " \t\n\r") || strings.HasPrefix(s, "@") {
		return ParsedSpec{Kind: SpecCron, Cron: s, Source: "cron"}, nil
	}

	d, src, err := parseInterval(s)
	if err != nil {
		return ParsedSpec{}, fmt.Errorf(
			"invalid poll interval %q (use a duration like '600s', HH:MM like '00:10', or cron like '*/10 * * * *')",
			raw,
		)
	}
	return ParsedSpec{Kind: SpecInterval, Every: d, Source: src}, nil
}

func parseInterval(v string) (time.Duration, string, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, "", fmt.Errorf("interval required")
	}
	if m := reHHMM.FindStringSubmatch(v); m != nil {
		hh, _ := strconv.Atoi(m[1])
		mm, _ := strconv.Atoi(m[2])
		if mm > 59 {
			return 0, "", fmt.Errorf("invalid minutes in %q", v)
		}
		d := time.Duration(hh)*time.Hour + time.Duration(mm)*time.Minute
		if d <= 0 {
			return 0, "", fmt.Errorf("interval must be > 0")
		}
		return d, "hhmm", nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, "", fmt.Errorf("invalid interval %q (use HH:MM or Go duration like '10m')", v)
	}
	if d <= 0 {
		return 0, "", fmt.Errorf("interval must be > 0")
	}
	return d, "duration", nil
}

// Schedule reports when the next cycle should start.
type Schedule interface {
	Next(now time.Time) time.Time
}

// Fixed is a constant delay between cycles.
type Fixed time.Duration

func (f Fixed) Next(now time.Time) time.Time { return now.Add(time.Duration(f)) }

// Build turns a parsed spec into a Schedule. loc is used for cron specs;
// nil means time.Local.
func (p ParsedSpec) Build(loc *time.Location) (Schedule, error) {
	switch p.Kind {
	case SpecInterval:
		if p.Every <= 0 {
			return nil, fmt.Errorf("interval must be > 0")
		}
		return Fixed(p.Every), nil
	case SpecCron:
		cs, err := cronParser.Parse(p.Cron)
		if err != nil {
			return nil, fmt.Errorf("invalid cron %q: %w", p.Cron, err)
		}
		if loc == nil {
			loc = time.Local
		}
		return inLocation{s: cs, loc: loc}, nil
	default:
		return nil, fmt.Errorf("unknown spec kind %d", p.Kind)
	}
}

// Parse is ParseSpec followed by Build in the local timezone.
func Parse(raw string) (Schedule, ParsedSpec, error) {
	spec, err := ParseSpec(raw)
	if err != nil {
		return nil, ParsedSpec{}, err
	}
	s, err := spec.Build(nil)
	if err != nil {
		return nil, ParsedSpec{}, err
	}
	return s, spec, nil
}

// Delay is how long to wait from now until s next fires. It never returns
// a negative duration.
func Delay(s Schedule, now time.Time) time.Duration {
	d := s.Next(now).Sub(now)
	if d < 0 {
		return 0
	}
	return d
}

type inLocation struct {
	s   cron.Schedule
	loc *time.Location
}

func (l inLocation) Next(now time.Time) time.Time { return l.s.Next(now.In(l.loc)) }
