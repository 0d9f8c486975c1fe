package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/josephgoksu/SprintReview/models"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ReviewView is everything shown for one generated review.
type ReviewView struct {
	Result  models.PerformanceResult
	Sprint  models.Sprint
	Meeting models.Meeting
}

type section struct {
	key   string
	value models.OneOrMany
}

func (v ReviewView) sections() []section {
	r := v.Result
	return []section{
		{"performance_summary", r.PerformanceSummary},
		{"high_lighting", r.HighLighting},
		{"strengths_areas_for_improvement", r.StrengthsAreasForImprovement},
		{"can_be_laid_off", r.CanBeLaidOff},
	}
}

// SectionHeading turns a result key such as "can_be_laid_off" into "Can Be Laid Off".
func SectionHeading(key string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(key, "_", " "))
}

// RenderReview writes v as text. With styled unset no escape codes are emitted,
// which keeps piped output clean.
func RenderReview(w io.Writer, v ReviewView, styled bool) error {
	style := func(s lipgloss.Style, text string) string {
		if !styled {
			return text
		}
		return s.Render(text)
	}

	var sb strings.Builder
	sb.WriteString(style(StyleHeader, fmt.Sprintf("Performance Review: sprint %s", v.Result.SprintID)))
	sb.WriteString("\n")

	meta := fmt.Sprintf("Employee %s, 1 on 1 on %s. %d tasks, %d points completed.",
		v.Meeting.EmployeeID, v.Meeting.Date, len(v.Sprint.Tasks), v.Sprint.CompletedPoints())
	sb.WriteString(style(StyleSubtle, meta))
	sb.WriteString("\n")

	if v.Sprint.ID != "" && v.Result.SprintID != v.Sprint.ID {
		sb.WriteString(style(StyleWarning, fmt.Sprintf("Note: review names sprint %q, input was %q", v.Result.SprintID, v.Sprint.ID)))
		sb.WriteString("\n")
	}

	for _, s := range v.sections() {
		sb.WriteString("\n")
		sb.WriteString(style(StyleSectionTitle, SectionHeading(s.key)))
		sb.WriteString("\n")
		if !s.value.IsList() {
			sb.WriteString(s.value.String())
			sb.WriteString("\n")
			continue
		}
		for _, item := range s.value.Values() {
			sb.WriteString(style(StyleBullet, "•"))
			sb.WriteString(" ")
			sb.WriteString(item)
			sb.WriteString("\n")
		}
	}

	_, err := io.WriteString(w, sb.String())
	return err
}
