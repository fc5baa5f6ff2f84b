package localgen

import (
	"context"
	"fmt"
	"math"

	"git.home.luguber.info/inful/sitegen/internal/pipeline"
)

// ReviewHandler aggregates the earlier quality signals into a single
// publish-or-not verdict. Failed checks with a score under 50 become
// blockers; anything between 50 and 70 stays a warning.
func ReviewHandler(_ context.Context, input any) (any, error) {
	in, err := decode[pipeline.ReviewInput](input)
	if err != nil {
		return nil, err
	}

	var checks []pipeline.ReviewCheck

	checks = append(checks, scoreCheck("content", "Icerik kapsami",
		contentScore(in.Content),
		fmt.Sprintf("%d sayfa, toplam %d kelime", len(in.Content.Pages), in.Content.TotalWordCount)))

	checks = append(checks, scoreCheck("content", "Okunabilirlik",
		in.Content.AverageReadabilityScore,
		"Ortalama okunabilirlik puani"))

	buildScore := 0.0
	if in.Build.Lighthouse != nil {
		lh := in.Build.Lighthouse
		buildScore = (lh.Performance + lh.Accessibility + lh.BestPractices + lh.Seo) / 4
	}
	checks = append(checks, scoreCheck("build", "Lighthouse ortalamasi", buildScore,
		"Performans, erisilebilirlik, en iyi uygulamalar ve SEO ortalamasi"))

	checks = append(checks, scoreCheck("build", "Derleme durumu",
		statusScore(in.Build.Status),
		"Derleme cikti durumu: "+in.Build.Status))

	checks = append(checks, scoreCheck("ui_ux", "UI/UX denetimi",
		in.UiUx.OverallScore,
		fmt.Sprintf("%d denetim kontrolu degerlendirildi", len(in.UiUx.Checks))))

	out := &pipeline.ReviewOutput{
		ProjectID:   in.ProjectID,
		Checks:      checks,
		TotalChecks: len(checks),
	}

	var total float64
	for _, c := range checks {
		total += c.Score
		switch {
		case c.Status == "pass":
			out.PassedChecks++
		case c.Score < 50:
			out.Blockers = append(out.Blockers, c)
		default:
			out.Warnings = append(out.Warnings, c)
		}
	}

	out.OverallScore = math.Round(total / float64(len(checks)))
	out.Grade = grade(out.OverallScore)
	out.ReadyForPublish = len(out.Blockers) == 0 && out.OverallScore >= 70
	if out.ReadyForPublish {
		out.Summary = fmt.Sprintf("%s sitesi yayina hazir. Genel puan: %.0f (%s).",
			in.Company.Name, out.OverallScore, out.Grade)
	} else {
		out.Summary = fmt.Sprintf("%d engel giderilmeden yayina cikilamaz.", len(out.Blockers))
	}

	return out, nil
}

func contentScore(c pipeline.ContentOutput) float64 {
	if len(c.Pages) == 0 {
		return 0
	}
	avgWords := float64(c.TotalWordCount) / float64(len(c.Pages))
	// 150 words per page is treated as full marks.
	return math.Min(100, math.Round(avgWords/1.5))
}

func statusScore(status string) float64 {
	switch status {
	case "ready_for_review", "completed":
		return 100
	case "needs_iteration":
		return 60
	default:
		return 30
	}
}

func scoreCheck(category, name string, score float64, details string) pipeline.ReviewCheck {
	status := "pass"
	switch {
	case score < 50:
		status = "fail"
	case score < 70:
		status = "warning"
	}
	return pipeline.ReviewCheck{
		Category: category,
		Name:     name,
		Status:   status,
		Score:    score,
		Details:  details,
	}
}

func grade(score float64) string {
	switch {
	case score >= 90:
		return "A"
	case score >= 80:
		return "B"
	case score >= 70:
		return "C"
	case score >= 60:
		return "D"
	default:
		return "F"
	}
}
