package localgen

import (
	"context"
	"fmt"
	"strings"

	"git.home.luguber.info/inful/sitegen/internal/pipeline"
	"git.home.luguber.info/inful/sitegen/internal/slug"
)

// ResearchHandler derives keywords and industry context from the project
// profile alone. Competitor counts are deliberately conservative so the
// design direction stays "modern ve profesyonel" unless real research data
// is supplied by an external handler.
func ResearchHandler(_ context.Context, input any) (any, error) {
	in, err := decode[pipeline.ResearchInput](input)
	if err != nil {
		return nil, err
	}

	company := in.Company
	nameSlug := slug.Make(company.Name)

	primary := []string{company.Name}
	if company.Industry != "" {
		primary = append(primary, company.Industry,
			fmt.Sprintf("%s hizmetleri", company.Industry))
	}

	var secondary, longTail []string
	for _, p := range in.Pages {
		if p.Type == "services" || p.Type == "about" {
			secondary = append(secondary, strings.ToLower(p.Name))
		}
	}
	if company.Industry != "" {
		longTail = append(longTail,
			fmt.Sprintf("en iyi %s firmasi", strings.ToLower(company.Industry)),
			fmt.Sprintf("%s %s", nameSlug, strings.ToLower(company.Industry)))
	}

	out := &pipeline.ResearchOutput{
		ProjectID: in.ProjectID,
		Keywords: pipeline.Keywords{
			Primary:   primary,
			Secondary: secondary,
			LongTail:  longTail,
		},
	}
	if company.Industry != "" {
		industrySlug := slug.Make(company.Industry)
		out.IndustryData = &pipeline.IndustryData{
			Name:        company.Industry,
			Trends:      []string{"dijitallesme", "yerel SEO"},
			Competitors: 5,
		}
		out.CompetitorAnalysis = []pipeline.Competitor{
			{
				Name:      fmt.Sprintf("%s sektoru lideri", company.Industry),
				URL:       fmt.Sprintf("https://%s-lideri.example.com", industrySlug),
				Strengths: []string{"marka bilinirligi"},
			},
			{
				Name:       "Yerel rakip",
				Weaknesses: []string{"zayif cevrimici gorunurluk"},
			},
		}
	}
	out.Insights.Notes = []string{"Yerel arama trafigi oncelikli"}
	out.Insights.Recommendations = []string{"Hizmet sayfalarini anahtar kelimelerle guclendir"}

	return out, nil
}
