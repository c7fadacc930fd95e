// Package parser turns loosely formatted LLM replies into StructuredAnswer
// values. Parsing never fails: a reply without the expected markers becomes a
// summary with no key points.
package parser

import (
	"strings"

	"github.com/nijaru/videovoyager/models"
)

const (
	summaryLabel   = "Summary:"
	keyPointsLabel = "Key Points:"
)

// ParseSummary splits a summarize reply on its first blank line. The text
// before it is the summary, with a leading "Summary:" label removed; the rest
// is kept verbatim as KeyPointsText and its bullet lines become KeyPoints.
func ParseSummary(raw string) models.StructuredAnswer {
	head, rest, found := strings.Cut(raw, "\n\n")

	answer := models.StructuredAnswer{
		Summary:   stripSummaryLabel(head),
		KeyPoints: []string{},
	}
	if !found {
		return answer
	}

	answer.KeyPointsText = strings.TrimSpace(rest)
	answer.KeyPoints = Bullets(answer.KeyPointsText)
	return answer
}

// ParseAnswer splits a question reply on the "Key Points:" marker.
func ParseAnswer(raw string) models.StructuredAnswer {
	head, rest, found := strings.Cut(raw, keyPointsLabel)

	answer := models.StructuredAnswer{
		Summary:   stripSummaryLabel(head),
		KeyPoints: []string{},
	}
	if !found {
		return answer
	}

	answer.KeyPointsText = strings.TrimSpace(rest)
	answer.KeyPoints = Bullets(answer.KeyPointsText)
	return answer
}

// Bullets collects lines starting with "-" in order, without the marker.
// Other lines are dropped.
func Bullets(block string) []string {
	points := []string{}
	for _, line := range strings.Split(block, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "-") {
			continue
		}
		if point := strings.TrimSpace(strings.TrimLeft(line, "- ")); point != "" {
			points = append(points, point)
		}
	}
	return points
}

func stripSummaryLabel(s string) string {
	s = strings.TrimSpace(s)
	return strings.TrimSpace(strings.TrimPrefix(s, summaryLabel))
}
