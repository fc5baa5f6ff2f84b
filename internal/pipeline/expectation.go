package pipeline

import (
	"fmt"
	"math"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"git.home.luguber.info/inful/sitegen/internal/errors"
)

// Expectation is a deterministic forecast of the next stage's scope, derived
// from the just-produced output. NextStage is empty only for the terminal
// stage. It is a UX/planning aid, not a correctness mechanism.
type Expectation struct {
	NextStage       Stage          `json:"nextStage,omitempty"`
	ExpectedOutputs map[string]any `json:"expectedOutputs"`
}

// ExpectationGenerator synthesizes per-stage forecasts. It performs no I/O
// and uses no randomness; the same output always yields the same forecast.
type ExpectationGenerator struct {
	platform Platform
}

// NewExpectationGenerator returns a generator that forecasts deployments on
// the given platform.
func NewExpectationGenerator(platform Platform) *ExpectationGenerator {
	if platform == "" {
		platform = PlatformVercel
	}
	return &ExpectationGenerator{platform: platform}
}

// Generate maps a completed stage's typed output to the forecast for the
// next stage. The closed switch is exhaustive over the stage enumeration.
func (g *ExpectationGenerator) Generate(stage Stage, output any) (*Expectation, error) {
	switch stage {
	case StageInput:
		if out, ok := output.(*InputOutput); ok {
			return g.fromInput(out), nil
		}
	case StageResearch:
		if out, ok := output.(*ResearchOutput); ok {
			return g.fromResearch(out), nil
		}
	case StageDesign:
		if out, ok := output.(*DesignOutput); ok {
			return g.fromDesign(out), nil
		}
	case StageImages:
		if out, ok := output.(*ImagesOutput); ok {
			return g.fromImages(out), nil
		}
	case StageContent:
		if out, ok := output.(*ContentOutput); ok {
			return g.fromContent(out), nil
		}
	case StageSeo:
		if out, ok := output.(*SeoOutput); ok {
			return g.fromSeo(out), nil
		}
	case StageBuild:
		if out, ok := output.(*BuildOutput); ok {
			return g.fromBuild(out), nil
		}
	case StageUiUx:
		if out, ok := output.(*UiUxOutput); ok {
			return g.fromUiUx(out), nil
		}
	case StageReview:
		if out, ok := output.(*ReviewOutput); ok {
			return g.fromReview(out), nil
		}
	case StagePublish:
		if out, ok := output.(*PublishOutput); ok {
			return g.fromPublish(out), nil
		}
	default:
		return nil, errors.Newf(errors.CategoryOrchestration, errors.SeverityError,
			"unknown stage: %s", stage)
	}
	return nil, errors.Newf(errors.CategoryOrchestration, errors.SeverityError,
		"unexpected output type for stage %s", stage)
}

func (g *ExpectationGenerator) fromInput(out *InputOutput) *Expectation {
	var topics []string
	if out.Company.Industry != "" {
		topics = append(topics,
			fmt.Sprintf("%s sektoru analizi", out.Company.Industry),
			fmt.Sprintf("%s rakip analizi", out.Company.Industry))
	}
	if len(out.Company.TargetAudience) > 0 {
		topics = append(topics, "Hedef kitle analizi")
	}
	topics = append(topics, "Anahtar kelime arastirmasi")

	estimatedMinutes := math.Max(2, float64(len(topics))*0.5)

	return &Expectation{
		NextStage: StageResearch,
		ExpectedOutputs: map[string]any{
			"researchTopics": topics,
			"estimatedDuration": fmt.Sprintf("%d-%d dakika",
				int(math.Round(estimatedMinutes)), int(math.Round(estimatedMinutes+1))),
		},
	}
}

// industryColors maps industry-name substrings to suggested color pairs.
// Matches are unioned in table order and deduplicated.
var industryColors = []struct {
	keyword string
	colors  []string
}{
	{"saglik", []string{"#0891B2", "#059669"}},
	{"teknoloji", []string{"#4F46E5", "#6366F1"}},
	{"finans", []string{"#1E40AF", "#047857"}},
	{"egitim", []string{"#2563EB", "#7C3AED"}},
	{"hukuk", []string{"#1E293B", "#0F172A"}},
	{"insaat", []string{"#EA580C", "#0369A1"}},
	{"gida", []string{"#16A34A", "#CA8A04"}},
}

func (g *ExpectationGenerator) fromResearch(out *ResearchOutput) *Expectation {
	var suggested []string
	if out.IndustryData != nil && out.IndustryData.Name != "" {
		industryLower := strings.ToLower(out.IndustryData.Name)
		for _, entry := range industryColors {
			if strings.Contains(industryLower, entry.keyword) {
				suggested = append(suggested, entry.colors...)
			}
		}
	}
	if len(suggested) == 0 {
		suggested = []string{"#1E40AF", "#059669"}
	}

	direction := "modern ve profesyonel"
	if out.IndustryData != nil && out.IndustryData.Competitors > 10 {
		direction = "diferansiye edici ve dikkat cekici"
	}

	return &Expectation{
		NextStage: StageDesign,
		ExpectedOutputs: map[string]any{
			"suggestedColors": dedupe(suggested),
			"suggestedFonts":  []string{"Inter", "Poppins", "Montserrat"},
			"designDirection": direction,
		},
	}
}

func (g *ExpectationGenerator) fromDesign(out *DesignOutput) *Expectation {
	// Base: hero plus 3 feature icons
	imageCount := 4
	if out.Layout.HeroType == "image" || out.Layout.HeroType == "video" {
		imageCount += 2
	}
	if out.Layout.Style == "bold" {
		imageCount += 3
	}

	imageTypes := []string{"hero", "feature-icons"}
	if out.Layout.HeroType == "gradient" {
		imageTypes = append(imageTypes, "background-pattern")
	}
	if out.Layout.Style != "minimal" {
		imageTypes = append(imageTypes, "illustrations")
	}

	estimatedSeconds := imageCount * 2
	generationTime := fmt.Sprintf("%d saniye", estimatedSeconds)
	if estimatedSeconds > 60 {
		generationTime = fmt.Sprintf("%d dakika", int(math.Ceil(float64(estimatedSeconds)/60)))
	}

	return &Expectation{
		NextStage: StageImages,
		ExpectedOutputs: map[string]any{
			"imageCount":              imageCount,
			"imageTypes":              imageTypes,
			"estimatedGenerationTime": generationTime,
		},
	}
}

func (g *ExpectationGenerator) fromImages(out *ImagesOutput) *Expectation {
	pageCount := int(math.Max(4, math.Ceil(float64(out.TotalImages)/3)))

	contentTypes := []string{"hero", "features", "cta"}
	if len(out.Illustrations) > 0 {
		contentTypes = append(contentTypes, "about-section")
	}
	if len(out.BackgroundImages) > 0 {
		contentTypes = append(contentTypes, "testimonials")
	}

	return &Expectation{
		NextStage: StageContent,
		ExpectedOutputs: map[string]any{
			"pageCount":          pageCount,
			"contentTypes":       contentTypes,
			"estimatedWordCount": pageCount * 500,
		},
	}
}

func (g *ExpectationGenerator) fromContent(out *ContentOutput) *Expectation {
	schemaTypes := []string{"Organization", "WebSite"}
	for _, p := range out.Pages {
		if p.Type == "faq" {
			schemaTypes = append(schemaTypes, "FAQPage")
			break
		}
	}
	for _, p := range out.Pages {
		if p.Type == "services" {
			schemaTypes = append(schemaTypes, "Service")
			break
		}
	}

	avgReadability := out.AverageReadabilityScore
	if avgReadability == 0 {
		avgReadability = 70
	}
	pageBonus := 40.0
	if len(out.Pages) >= 4 {
		pageBonus = 60
	}
	score := math.Min(100, math.Round(avgReadability*0.4+pageBonus))

	return &Expectation{
		NextStage: StageSeo,
		ExpectedOutputs: map[string]any{
			"seoFiles":          []string{"robots.txt", "sitemap.xml", "manifest.json"},
			"schemaTypes":       schemaTypes,
			"estimatedSeoScore": int(score),
		},
	}
}

func (g *ExpectationGenerator) fromSeo(out *SeoOutput) *Expectation {
	outputFiles := []string{"index.html"}
	for _, raw := range out.SitemapURLs {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			outputFiles = append(outputFiles, "page.html")
			continue
		}
		if u.Path == "/" || u.Path == "" {
			outputFiles = append(outputFiles, "index.html")
		} else {
			path := strings.TrimSuffix(u.Path, "/")
			outputFiles = append(outputFiles, fmt.Sprintf("%s/index.html", path))
		}
	}
	for _, f := range out.Files {
		outputFiles = append(outputFiles, f.Filename)
	}

	pageCount := len(out.SitemapURLs)
	estimatedSeconds := 60 + pageCount*5
	minutes := estimatedSeconds / 60
	seconds := estimatedSeconds % 60
	buildDuration := fmt.Sprintf("%d sn", seconds)
	if minutes > 0 {
		buildDuration = fmt.Sprintf("%d dk %d sn", minutes, seconds)
	}

	optimizationLevel := "standard"
	switch {
	case pageCount > 20:
		optimizationLevel = "aggressive"
	case pageCount < 10:
		optimizationLevel = "full"
	}

	return &Expectation{
		NextStage: StageBuild,
		ExpectedOutputs: map[string]any{
			"outputFiles":       dedupe(outputFiles),
			"buildDuration":     buildDuration,
			"optimizationLevel": optimizationLevel,
		},
	}
}

func (g *ExpectationGenerator) fromBuild(out *BuildOutput) *Expectation {
	uiuxChecks := []string{
		"Lighthouse performans",
		"Erisilebilirlik (a11y)",
		"Responsive tasarim",
		"Renk kontrast kontrolu",
		"Typography hiyerarsisi",
		"Form UX",
		"Loading state'ler",
	}

	var potentialIssues []string
	if out.BuildStats != nil && out.BuildStats.BundleSize > 500000 {
		potentialIssues = append(potentialIssues, "Bundle boyutu yuksek - optimizasyon gerekebilir")
	}
	if out.Lighthouse != nil {
		if out.Lighthouse.Performance < 80 {
			potentialIssues = append(potentialIssues, "Performans skoru dusuk")
		}
		if out.Lighthouse.Accessibility < 90 {
			potentialIssues = append(potentialIssues, "Erisilebilirlik iyilestirmesi gerekebilir")
		}
		if out.Lighthouse.Seo < 90 {
			potentialIssues = append(potentialIssues, "SEO optimizasyonu gerekebilir")
		}
	}

	qualityScore := 85.0
	if out.Lighthouse != nil {
		qualityScore = math.Round((out.Lighthouse.Performance + out.Lighthouse.Accessibility +
			out.Lighthouse.BestPractices + out.Lighthouse.Seo) / 4)
	}
	qualityScore -= float64(len(potentialIssues)) * 5
	qualityScore = math.Max(0, math.Min(100, qualityScore))

	return &Expectation{
		NextStage: StageUiUx,
		ExpectedOutputs: map[string]any{
			"uiuxChecks":      uiuxChecks,
			"potentialIssues": potentialIssues,
			"qualityScore":    int(qualityScore),
		},
	}
}

func (g *ExpectationGenerator) fromUiUx(out *UiUxOutput) *Expectation {
	var criticalChecks []string
	for _, c := range out.Checks {
		if c.Status == "fail" {
			criticalChecks = append(criticalChecks, c.Name)
		}
	}

	return &Expectation{
		NextStage: StageReview,
		ExpectedOutputs: map[string]any{
			"estimatedScore": out.OverallScore,
			"criticalChecks": criticalChecks,
		},
	}
}

func (g *ExpectationGenerator) fromReview(out *ReviewOutput) *Expectation {
	var requiredActions []string
	if !out.ReadyForPublish {
		requiredActions = append(requiredActions, "Blocker sorunlari coz")
	}
	for _, blocker := range out.Blockers {
		requiredActions = append(requiredActions, fmt.Sprintf("Duzelt: %s", blocker.Name))
	}
	if len(requiredActions) == 0 {
		requiredActions = append(requiredActions, "Yayin onayi ver")
	}

	return &Expectation{
		NextStage: StagePublish,
		ExpectedOutputs: map[string]any{
			"deploymentPlatform":  string(g.platform),
			"estimatedDeployTime": "1-2 dakika",
			"requiredActions":     requiredActions,
		},
	}
}

func (g *ExpectationGenerator) fromPublish(out *PublishOutput) *Expectation {
	return &Expectation{
		NextStage: "",
		ExpectedOutputs: map[string]any{
			"liveUrl":         out.URL,
			"monitoringSetup": true,
			"analyticsSetup":  true,
		},
	}
}

// Summary renders a pipe-joined "key: value" digest of an expectation for
// display. Arrays render as item counts; booleans are omitted. Keys are
// sorted for deterministic output.
func (g *ExpectationGenerator) Summary(exp *Expectation) string {
	if exp == nil || exp.NextStage == "" {
		return "Pipeline tamamlandi. Site yayinda!"
	}

	keys := make([]string, 0, len(exp.ExpectedOutputs))
	for k := range exp.ExpectedOutputs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var parts []string
	for _, key := range keys {
		label := displayKey(key)
		switch v := exp.ExpectedOutputs[key].(type) {
		case []string:
			parts = append(parts, fmt.Sprintf("%s: %d oge", label, len(v)))
		case []any:
			parts = append(parts, fmt.Sprintf("%s: %d oge", label, len(v)))
		case int:
			parts = append(parts, fmt.Sprintf("%s: %d", label, v))
		case float64:
			parts = append(parts, fmt.Sprintf("%s: %s", label, strconv.FormatFloat(v, 'f', -1, 64)))
		case string:
			parts = append(parts, fmt.Sprintf("%s: %s", label, v))
		}
	}

	return strings.Join(parts, " | ")
}

var displayKeys = map[string]string{
	"researchTopics":          "Arastirma konulari",
	"estimatedDuration":       "Tahmini sure",
	"suggestedColors":         "Onerilen renkler",
	"suggestedFonts":          "Onerilen fontlar",
	"designDirection":         "Tasarim yonu",
	"imageCount":              "Gorsel sayisi",
	"imageTypes":              "Gorsel turleri",
	"estimatedGenerationTime": "Tahmini uretim suresi",
	"pageCount":               "Sayfa sayisi",
	"contentTypes":            "Icerik turleri",
	"estimatedWordCount":      "Tahmini kelime",
	"seoFiles":                "SEO dosyalari",
	"schemaTypes":             "Schema turleri",
	"estimatedSeoScore":       "Tahmini SEO skoru",
	"outputFiles":             "Cikti dosyalari",
	"buildDuration":           "Derleme suresi",
	"optimizationLevel":       "Optimizasyon",
	"uiuxChecks":              "Inceleme kontrolleri",
	"potentialIssues":         "Olasi sorunlar",
	"qualityScore":            "Kalite skoru",
	"estimatedScore":          "Tahmini skor",
	"criticalChecks":          "Kritik kontroller",
	"deploymentPlatform":      "Deploy platformu",
	"estimatedDeployTime":     "Deploy suresi",
	"requiredActions":         "Gerekli aksiyonlar",
	"liveUrl":                 "Canli URL",
}

func displayKey(key string) string {
	if label, ok := displayKeys[key]; ok {
		return label
	}
	return key
}

func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
