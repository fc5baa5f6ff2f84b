package localgen

import (
	"context"
	"strings"

	"git.home.luguber.info/inful/sitegen/internal/pipeline"
)

// industryPalettes picks a primary/secondary pair by industry-name
// substring. First match wins; table order is significant.
var industryPalettes = []struct {
	keyword   string
	primary   string
	secondary string
}{
	{"saglik", "#0891B2", "#059669"},
	{"teknoloji", "#4F46E5", "#6366F1"},
	{"finans", "#1E40AF", "#047857"},
	{"egitim", "#2563EB", "#7C3AED"},
	{"hukuk", "#1E293B", "#0F172A"},
	{"insaat", "#EA580C", "#0369A1"},
	{"gida", "#16A34A", "#CA8A04"},
}

// DesignHandler produces a deterministic design system from the company
// profile and optional research findings.
func DesignHandler(_ context.Context, input any) (any, error) {
	in, err := decode[pipeline.DesignInput](input)
	if err != nil {
		return nil, err
	}

	primary, secondary := "#1E40AF", "#059669"
	industry := strings.ToLower(in.Company.Industry)
	for _, p := range industryPalettes {
		if industry != "" && strings.Contains(industry, p.keyword) {
			primary, secondary = p.primary, p.secondary
			break
		}
	}
	if in.Company.ColorPreference != "" && strings.HasPrefix(in.Company.ColorPreference, "#") {
		primary = in.Company.ColorPreference
	}

	style := "modern"
	if in.Research != nil && in.Research.IndustryData != nil &&
		in.Research.IndustryData.Competitors > 10 {
		style = "bold"
	}

	out := &pipeline.DesignOutput{
		ProjectID: in.ProjectID,
		Colors: pipeline.DesignColors{
			Primary:      primary,
			PrimaryLight: primary,
			PrimaryDark:  primary,
			Secondary:    secondary,
			Accent:       secondary,
			Background:   "#FFFFFF",
			Text:         "#0F172A",
		},
		Typography: pipeline.DesignTypography{
			HeadingFont: "Inter",
			BodyFont:    "Inter",
			Scale:       "normal",
		},
		Layout: pipeline.DesignLayout{
			Style:           style,
			HeroType:        "gradient",
			NavigationStyle: "sticky",
			FooterStyle:     "columns",
			BorderRadius:    "medium",
		},
	}
	out.Components.CardStyle = "elevated"
	out.Components.ButtonStyle = "solid"
	out.Components.IconSet = "lucide"

	return out, nil
}
