// File: internal/services/chat/context.go
package chat

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/healthadvisor/advisor-server/internal/domain"
	"github.com/healthadvisor/advisor-server/internal/services/health"
)

// ContextAssembler renders a user's recent health records into the textual
// context block embedded in the system prompt. It queries the provider fresh
// on every build; health data may change between turns.
type ContextAssembler struct {
	config   *Config
	provider health.Provider
	logger   Logger
}

func NewContextAssembler(config *Config, provider health.Provider, logger Logger) *ContextAssembler {
	return &ContextAssembler{
		config:   config,
		provider: provider,
		logger:   logger,
	}
}

var categoryHeadings = map[domain.RecordCategory]string{
	domain.CategoryMeal:      "Recent meals",
	domain.CategoryLabResult: "Recent lab results",
	domain.CategorySymptom:   "Recent symptoms",
}

// Build returns the rendered context block for the user, or an empty string
// when the provider fails or has nothing. A degraded block never fails the
// chat turn; losing personalization beats losing availability.
func (a *ContextAssembler) Build(ctx context.Context, userID uint) string {
	now := time.Now().UTC()
	var b strings.Builder

	for _, category := range domain.Categories {
		records, err := a.provider.GetRecent(ctx, userID, category, a.config.ContextCapPerCategory)
		if err != nil {
			a.logger.Warn("health context unavailable, continuing without personalization",
				"user_id", userID,
				"category", string(category),
				"error", err.Error())
			return ""
		}
		if len(records) > a.config.ContextCapPerCategory {
			records = records[:a.config.ContextCapPerCategory]
		}
		if len(records) == 0 {
			continue
		}

		fmt.Fprintf(&b, "%s:\n", categoryHeadings[category])
		for _, record := range records {
			b.WriteString("- ")
			b.WriteString(renderRecord(&record, now))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	block := strings.TrimRight(b.String(), "\n")
	if block == "" {
		return ""
	}
	return "The user's recent health data:\n\n" + block
}

// renderRecord formats one record as a single summary line with a relative
// recency label and the variant's salient fields. A record whose category tag
// does not match its populated variant renders as a placeholder; an external
// provider must not be able to panic a chat turn.
func renderRecord(record *domain.HealthRecord, now time.Time) string {
	label := relativeRecency(record.RecordedAt, now)

	switch record.Category {
	case domain.CategoryMeal:
		if m := record.Meal; m != nil {
			var details []string
			if m.Calories > 0 {
				details = append(details, fmt.Sprintf("%d kcal", m.Calories))
			}
			if m.MealTime != "" {
				details = append(details, m.MealTime)
			}
			return withDetails(fmt.Sprintf("[%s] %s", label, m.Description), details)
		}
	case domain.CategoryLabResult:
		if l := record.LabResult; l != nil {
			line := fmt.Sprintf("[%s] %s: %s", label, l.TestName, l.Value)
			if l.Unit != "" {
				line += " " + l.Unit
			}
			if l.ReferenceRange != "" {
				line += fmt.Sprintf(" (ref %s)", l.ReferenceRange)
			}
			return line
		}
	case domain.CategorySymptom:
		if s := record.Symptom; s != nil {
			var details []string
			if s.Severity > 0 {
				details = append(details, fmt.Sprintf("severity %d/10", s.Severity))
			}
			if s.Duration != "" {
				details = append(details, s.Duration)
			}
			return withDetails(fmt.Sprintf("[%s] %s", label, s.Description), details)
		}
	}
	return fmt.Sprintf("[%s] (unrecognized record)", label)
}

func withDetails(line string, details []string) string {
	if len(details) == 0 {
		return line
	}
	return line + " (" + strings.Join(details, ", ") + ")"
}

// relativeRecency renders how long ago a record was logged, in coarse,
// LLM-friendly buckets.
func relativeRecency(recordedAt, now time.Time) string {
	days := int(now.Sub(recordedAt).Hours() / 24)
	switch {
	case days <= 0:
		return "today"
	case days == 1:
		return "yesterday"
	case days < 7:
		return fmt.Sprintf("%d days ago", days)
	case days < 30:
		weeks := days / 7
		if weeks == 1 {
			return "1 week ago"
		}
		return fmt.Sprintf("%d weeks ago", weeks)
	default:
		months := days / 30
		if months == 1 {
			return "1 month ago"
		}
		return fmt.Sprintf("%d months ago", months)
	}
}

// TruncateText safely truncates a UTF-8 string to maxLen runes, preserving
// character integrity. Used when deriving conversation titles.
func TruncateText(input string, maxLen int) string {
	if input == "" || maxLen <= 0 {
		return ""
	}
	if utf8.RuneCountInString(input) <= maxLen {
		return input
	}

	var b strings.Builder
	count := 0
	for _, r := range input {
		if count >= maxLen {
			break
		}
		b.WriteRune(r)
		count++
	}
	return b.String()
}
