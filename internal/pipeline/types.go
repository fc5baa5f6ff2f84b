package pipeline

import (
	"encoding/json"
	"time"
)

// StageStatus is the lifecycle state of one stage.
type StageStatus string

const (
	StatusPending   StageStatus = "pending"
	StatusRunning   StageStatus = "running"
	StatusCompleted StageStatus = "completed"
	StatusFailed    StageStatus = "failed"
	StatusSkipped   StageStatus = "skipped"
)

// Platform is a supported deployment target.
type Platform string

const (
	PlatformVercel     Platform = "vercel"
	PlatformNetlify    Platform = "netlify"
	PlatformCloudflare Platform = "cloudflare"
	PlatformCustom     Platform = "custom"
)

// Company describes the business the site is generated for.
type Company struct {
	Name            string   `json:"name"`
	Industry        string   `json:"industry,omitempty"`
	Description     string   `json:"description,omitempty"`
	Tone            string   `json:"tone,omitempty"`
	TargetAudience  []string `json:"targetAudience,omitempty"`
	ColorPreference string   `json:"colorPreference,omitempty"`
	AvoidColors     []string `json:"avoidColors,omitempty"`
}

// Page is one page requested for the generated site.
type Page struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
	Type string `json:"type"` // homepage, about, services, contact, blog, faq, custom
}

// --- stage 1: input ---

type InputInput struct {
	ProjectID   string `json:"projectId"`
	CompanyName string `json:"companyName"`
	Domain      string `json:"domain,omitempty"`
	Industry    string `json:"industry,omitempty"`
	Description string `json:"description,omitempty"`
}

type InputOutput struct {
	ProjectID string  `json:"projectId"`
	Slug      string  `json:"slug"`
	Company   Company `json:"company"`
	Pages     []Page  `json:"pages"`
}

// --- stage 2: research ---

type ResearchInput struct {
	ProjectID string  `json:"projectId"`
	Company   Company `json:"company"`
	Pages     []Page  `json:"pages,omitempty"`
}

type IndustryData struct {
	Name          string   `json:"name"`
	Trends        []string `json:"trends,omitempty"`
	Competitors   int      `json:"competitors"`
	Opportunities []string `json:"opportunities,omitempty"`
}

type Competitor struct {
	Name       string   `json:"name"`
	URL        string   `json:"url,omitempty"`
	Strengths  []string `json:"strengths,omitempty"`
	Weaknesses []string `json:"weaknesses,omitempty"`
}

type Keywords struct {
	Primary   []string `json:"primary"`
	Secondary []string `json:"secondary,omitempty"`
	LongTail  []string `json:"longTail,omitempty"`
}

type ResearchOutput struct {
	ProjectID          string        `json:"projectId"`
	IndustryData       *IndustryData `json:"industryData,omitempty"`
	CompetitorAnalysis []Competitor  `json:"competitorAnalysis,omitempty"`
	Keywords           Keywords      `json:"keywords"`
	Insights           struct {
		Notes           []string `json:"notes,omitempty"`
		Recommendations []string `json:"recommendations,omitempty"`
	} `json:"insights"`
}

// --- stage 3: design ---

type DesignInput struct {
	ProjectID string          `json:"projectId"`
	Company   Company         `json:"company"`
	Research  *ResearchOutput `json:"research,omitempty"`
	// Vibe mode additions supplied out-of-band
	DesignNotes   string   `json:"designNotes,omitempty"`
	ReferenceURLs []string `json:"referenceUrls,omitempty"`
}

type DesignColors struct {
	Primary      string `json:"primary"`
	PrimaryLight string `json:"primaryLight,omitempty"`
	PrimaryDark  string `json:"primaryDark,omitempty"`
	Secondary    string `json:"secondary,omitempty"`
	Accent       string `json:"accent,omitempty"`
	Background   string `json:"background,omitempty"`
	Text         string `json:"text,omitempty"`
}

type DesignTypography struct {
	HeadingFont string `json:"headingFont"`
	BodyFont    string `json:"bodyFont"`
	Scale       string `json:"scale,omitempty"` // compact, normal, spacious
}

type DesignLayout struct {
	Style           string `json:"style"`    // modern, classic, minimal, bold, custom
	HeroType        string `json:"heroType"` // gradient, image, video, split, custom
	NavigationStyle string `json:"navigationStyle,omitempty"`
	FooterStyle     string `json:"footerStyle,omitempty"`
	BorderRadius    string `json:"borderRadius,omitempty"`
}

type DesignOutput struct {
	ProjectID  string           `json:"projectId"`
	Colors     DesignColors     `json:"colors"`
	Typography DesignTypography `json:"typography"`
	Layout     DesignLayout     `json:"layout"`
	Components struct {
		CardStyle   string `json:"cardStyle,omitempty"`
		ButtonStyle string `json:"buttonStyle,omitempty"`
		IconSet     string `json:"iconSet,omitempty"`
	} `json:"components"`
}

// --- stage 4: images ---

type ImagesInput struct {
	ProjectID string       `json:"projectId"`
	Company   Company      `json:"company"`
	Design    DesignOutput `json:"design"`
	Pages     []Page       `json:"pages"`
}

type GeneratedImage struct {
	ID      string `json:"id"`
	Type    string `json:"type"` // hero, feature, background, icon, illustration, photo
	Prompt  string `json:"prompt,omitempty"`
	URL     string `json:"url"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	Format  string `json:"format,omitempty"`
	AltText string `json:"altText"`
	Page    string `json:"page,omitempty"`
	Section string `json:"section,omitempty"`
}

type ImagesOutput struct {
	ProjectID       string           `json:"projectId"`
	Images          []GeneratedImage `json:"images"`
	TotalImages     int              `json:"totalImages"`
	GenerationStats struct {
		Model        string `json:"model,omitempty"`
		SuccessCount int    `json:"successCount"`
		FailedCount  int    `json:"failedCount"`
		Duration     int64  `json:"duration"`
	} `json:"generationStats"`
	HeroImages       []GeneratedImage `json:"heroImages"`
	FeatureIcons     []GeneratedImage `json:"featureIcons"`
	BackgroundImages []GeneratedImage `json:"backgroundImages"`
	Illustrations    []GeneratedImage `json:"illustrations"`
}

// --- stage 5: content ---

type ContentInput struct {
	ProjectID string          `json:"projectId"`
	Company   Company         `json:"company"`
	Pages     []Page          `json:"pages"`
	Research  *ResearchOutput `json:"research,omitempty"`
	Design    DesignOutput    `json:"design"`
	Images    *ImagesOutput   `json:"images,omitempty"`
}

type PageSection struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Title   string `json:"title,omitempty"`
	Content string `json:"content"`
}

type PageContent struct {
	Slug             string        `json:"slug"`
	Type             string        `json:"type"`
	Title            string        `json:"title"`
	MetaTitle        string        `json:"metaTitle,omitempty"`
	MetaDescription  string        `json:"metaDescription,omitempty"`
	Sections         []PageSection `json:"sections"`
	Keywords         []string      `json:"keywords,omitempty"`
	WordCount        int           `json:"wordCount"`
	ReadabilityScore float64       `json:"readabilityScore,omitempty"`
}

type ContentOutput struct {
	ProjectID               string        `json:"projectId"`
	Pages                   []PageContent `json:"pages"`
	TotalWordCount          int           `json:"totalWordCount"`
	AverageReadabilityScore float64       `json:"averageReadabilityScore"`
}

// --- stage 6: seo ---

type SeoInput struct {
	ProjectID string        `json:"projectId"`
	Company   Company       `json:"company"`
	Pages     []Page        `json:"pages"`
	Content   ContentOutput `json:"content"`
	Domain    string        `json:"domain"`
}

type SeoFile struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
	Purpose  string `json:"purpose,omitempty"`
}

type MetaTags struct {
	Page        string   `json:"page"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Keywords    []string `json:"keywords,omitempty"`
}

type SeoOutput struct {
	ProjectID string    `json:"projectId"`
	Files     []SeoFile `json:"files"`
	Schemas   []struct {
		Type string         `json:"type"`
		Data map[string]any `json:"data,omitempty"`
	} `json:"schemas,omitempty"`
	SitemapURLs []string   `json:"sitemapUrls"`
	MetaTags    []MetaTags `json:"metaTags,omitempty"`
}

// --- stage 7: build ---

type BuildConfig struct {
	Company Company      `json:"company"`
	Pages   []Page       `json:"pages"`
	Design  DesignOutput `json:"design"`
	Seo     struct {
		Title       string   `json:"title"`
		Description string   `json:"description"`
		Keywords    []string `json:"keywords,omitempty"`
	} `json:"seo"`
	Domain string `json:"domain"`
}

type BuildInput struct {
	ProjectID string        `json:"projectId"`
	Slug      string        `json:"slug"`
	Config    BuildConfig   `json:"config"`
	Content   ContentOutput `json:"content"`
	SeoFiles  []SeoFile     `json:"seoFiles,omitempty"`
}

type BuildStats struct {
	Duration    int64 `json:"duration"`
	TotalPages  int   `json:"totalPages"`
	TotalAssets int   `json:"totalAssets"`
	BundleSize  int64 `json:"bundleSize"`
}

type LighthouseScores struct {
	Performance   float64 `json:"performance"`
	Accessibility float64 `json:"accessibility"`
	BestPractices float64 `json:"bestPractices"`
	Seo           float64 `json:"seo"`
}

type BuiltPage struct {
	Path string `json:"path"`
	Size int64  `json:"size"`
	Type string `json:"type,omitempty"`
	HTML string `json:"html,omitempty"`
}

type BuildOutput struct {
	ProjectID  string            `json:"projectId"`
	OutputPath string            `json:"outputPath,omitempty"`
	PreviewURL string            `json:"previewUrl,omitempty"`
	BuildStats *BuildStats       `json:"buildStats,omitempty"`
	Pages      []BuiltPage       `json:"pages,omitempty"`
	Lighthouse *LighthouseScores `json:"lighthouse,omitempty"`
	Status     string            `json:"status"` // ready_for_review, needs_iteration, completed
}

// --- stage 8: ui_ux ---

type UiUxInput struct {
	ProjectID  string       `json:"projectId"`
	Build      BuildOutput  `json:"build"`
	Design     DesignOutput `json:"design"`
	PreviewURL string       `json:"previewUrl,omitempty"`
}

type UiUxCheck struct {
	Category       string  `json:"category"`
	Name           string  `json:"name"`
	Status         string  `json:"status"` // pass, warning, fail
	Score          float64 `json:"score"`
	Details        string  `json:"details,omitempty"`
	Recommendation string  `json:"recommendation,omitempty"`
}

type UiUxOutput struct {
	ProjectID      string           `json:"projectId"`
	OverallScore   float64          `json:"overallScore"`
	Lighthouse     LighthouseScores `json:"lighthouse"`
	Checks         []UiUxCheck      `json:"checks"`
	ReadyForReview bool             `json:"readyForReview"`
}

// --- stage 9: review ---

type ReviewInput struct {
	ProjectID string        `json:"projectId"`
	Company   Company       `json:"company"`
	Content   ContentOutput `json:"content"`
	Build     BuildOutput   `json:"build"`
	UiUx      UiUxOutput    `json:"uiUx"`
}

type ReviewCheck struct {
	Category    string   `json:"category"`
	Name        string   `json:"name"`
	Status      string   `json:"status"`
	Score       float64  `json:"score"`
	Details     string   `json:"details,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
}

type ReviewOutput struct {
	ProjectID       string        `json:"projectId"`
	OverallScore    float64       `json:"overallScore"`
	Grade           string        `json:"grade,omitempty"`
	Checks          []ReviewCheck `json:"checks"`
	Blockers        []ReviewCheck `json:"blockers,omitempty"`
	Warnings        []ReviewCheck `json:"warnings,omitempty"`
	PassedChecks    int           `json:"passedChecks"`
	TotalChecks     int           `json:"totalChecks"`
	ReadyForPublish bool          `json:"readyForPublish"`
	Summary         string        `json:"summary,omitempty"`
}

// --- stage 10: publish ---

type PublishInput struct {
	ProjectID  string   `json:"projectId"`
	Slug       string   `json:"slug"`
	OutputPath string   `json:"outputPath,omitempty"`
	PreviewURL string   `json:"previewUrl,omitempty"`
	Domain     string   `json:"domain"`
	Platform   Platform `json:"platform"`
}

type PublishOutput struct {
	ProjectID       string `json:"projectId"`
	DeploymentID    string `json:"deploymentId"`
	URL             string `json:"url"`
	CustomDomain    string `json:"customDomain,omitempty"`
	SSL             bool   `json:"ssl"`
	CDN             bool   `json:"cdn"`
	DeploymentStats struct {
		Duration      int64 `json:"duration"`
		FilesUploaded int   `json:"filesUploaded"`
		TotalSize     int64 `json:"totalSize"`
	} `json:"deploymentStats"`
}

// --- aggregate state ---

// StageError records why a stage failed.
type StageError struct {
	Message     string `json:"message"`
	Code        string `json:"code"`
	Recoverable bool   `json:"recoverable"`
}

// StageState is the mutable record for one stage. Output and Expectation are
// set together, atomically, only on the transition into completed.
type StageState struct {
	Status      StageStatus  `json:"status"`
	StartedAt   *time.Time   `json:"startedAt,omitempty"`
	CompletedAt *time.Time   `json:"completedAt,omitempty"`
	Duration    int64        `json:"duration,omitempty"` // milliseconds
	Output      any          `json:"output,omitempty"`
	Expectation *Expectation `json:"expectation,omitempty"`
	Error       *StageError  `json:"error,omitempty"`
}

// Progress summarizes pipeline completion.
type Progress struct {
	Completed  int `json:"completed"`
	Total      int `json:"total"`
	Percentage int `json:"percentage"`
}

// PipelineState is the aggregate root for one generation run. It is owned by
// exactly one Runner instance and mutated only through Runner operations.
type PipelineState struct {
	ProjectID    string                `json:"projectId"`
	CurrentStage Stage                 `json:"currentStage"`
	StartedAt    time.Time             `json:"startedAt"`
	UpdatedAt    time.Time             `json:"updatedAt"`
	Stages       map[Stage]*StageState `json:"stages"`
	Progress     Progress              `json:"progress"`
	VibeMode     bool                  `json:"vibeMode"`
}

// outputPrototype returns a fresh pointer to the typed output record for a
// stage. The closed switch keeps JSON re-decoding in lockstep with the stage
// enumeration.
func outputPrototype(stage Stage) any {
	switch stage {
	case StageInput:
		return &InputOutput{}
	case StageResearch:
		return &ResearchOutput{}
	case StageDesign:
		return &DesignOutput{}
	case StageImages:
		return &ImagesOutput{}
	case StageContent:
		return &ContentOutput{}
	case StageSeo:
		return &SeoOutput{}
	case StageBuild:
		return &BuildOutput{}
	case StageUiUx:
		return &UiUxOutput{}
	case StageReview:
		return &ReviewOutput{}
	case StagePublish:
		return &PublishOutput{}
	}
	return nil
}

// decodeOutput converts a generically unmarshaled output value back into the
// stage's typed record.
func decodeOutput(stage Stage, raw any) (any, error) {
	if raw == nil {
		return nil, nil
	}
	proto := outputPrototype(stage)
	if proto == nil {
		return raw, nil
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, proto); err != nil {
		return nil, err
	}
	return proto, nil
}
