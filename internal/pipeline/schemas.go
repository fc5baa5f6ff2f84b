package pipeline

import "regexp"

var (
	slugPattern = regexp.MustCompile(`^[a-z0-9-]+$`)
	hexPattern  = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)
)

// inputSchemas declares the contract every stage input must satisfy before
// its handler runs. One entry per stage, keyed by the closed enumeration.
var inputSchemas = map[Stage][]Rule{
	StageInput: {
		{Field: "projectId", Required: true, Type: TypeString},
		{Field: "companyName", Required: true, Type: TypeString, MinLen: intp(2)},
	},
	StageResearch: {
		{Field: "projectId", Required: true, Type: TypeString},
		{Field: "company", Required: true, Type: TypeObject},
	},
	StageDesign: {
		{Field: "projectId", Required: true, Type: TypeString},
		{Field: "company", Required: true, Type: TypeObject},
		{Field: "research", Required: false, Type: TypeObject},
	},
	StageImages: {
		{Field: "projectId", Required: true, Type: TypeString},
		{Field: "company", Required: true, Type: TypeObject},
		{Field: "design", Required: true, Type: TypeObject},
		{Field: "pages", Required: true, Type: TypeArray},
	},
	StageContent: {
		{Field: "projectId", Required: true, Type: TypeString},
		{Field: "company", Required: true, Type: TypeObject},
		{Field: "pages", Required: true, Type: TypeArray},
		{Field: "design", Required: true, Type: TypeObject},
	},
	StageSeo: {
		{Field: "projectId", Required: true, Type: TypeString},
		{Field: "content", Required: true, Type: TypeObject},
		{Field: "domain", Required: true, Type: TypeString},
	},
	StageBuild: {
		{Field: "projectId", Required: true, Type: TypeString},
		{Field: "slug", Required: true, Type: TypeString},
		{Field: "config", Required: true, Type: TypeObject},
		{Field: "content", Required: true, Type: TypeObject},
	},
	StageUiUx: {
		{Field: "projectId", Required: true, Type: TypeString},
		{Field: "build", Required: true, Type: TypeObject},
		{Field: "design", Required: true, Type: TypeObject},
	},
	StageReview: {
		{Field: "projectId", Required: true, Type: TypeString},
		{Field: "company", Required: true, Type: TypeObject},
		{Field: "content", Required: true, Type: TypeObject},
		{Field: "build", Required: true, Type: TypeObject},
		{Field: "uiUx", Required: true, Type: TypeObject},
	},
	StagePublish: {
		{Field: "projectId", Required: true, Type: TypeString},
		{Field: "slug", Required: true, Type: TypeString},
		{Field: "domain", Required: true, Type: TypeString},
		{Field: "platform", Required: true, Type: TypeString},
	},
}

// outputSchemas declares what a handler must produce for the stage to be
// considered completed.
var outputSchemas = map[Stage][]Rule{
	StageInput: {
		{Field: "projectId", Required: true, Type: TypeString},
		{Field: "slug", Required: true, Type: TypeString, Pattern: slugPattern},
		{Field: "company", Required: true, Type: TypeObject},
		{Field: "company.name", Required: true, Type: TypeString},
	},
	StageResearch: {
		{Field: "projectId", Required: true, Type: TypeString},
		{Field: "keywords", Required: true, Type: TypeObject},
	},
	StageDesign: {
		{Field: "projectId", Required: true, Type: TypeString},
		{Field: "colors", Required: true, Type: TypeObject},
		{Field: "colors.primary", Required: true, Type: TypeString, Pattern: hexPattern},
		{Field: "typography", Required: true, Type: TypeObject},
		{Field: "layout", Required: true, Type: TypeObject},
	},
	StageImages: {
		{Field: "projectId", Required: true, Type: TypeString},
		{Field: "images", Required: true, Type: TypeArray},
		{Field: "totalImages", Required: true, Type: TypeNumber, Min: floatp(0)},
		{Field: "heroImages", Required: true, Type: TypeArray},
		{Field: "featureIcons", Required: true, Type: TypeArray},
	},
	StageContent: {
		{Field: "projectId", Required: true, Type: TypeString},
		{Field: "pages", Required: true, Type: TypeArray, MinLen: intp(1)},
		{Field: "totalWordCount", Required: true, Type: TypeNumber, Min: floatp(100)},
	},
	StageSeo: {
		{Field: "projectId", Required: true, Type: TypeString},
		{Field: "files", Required: true, Type: TypeArray, MinLen: intp(1)},
		{Field: "sitemapUrls", Required: true, Type: TypeArray},
	},
	StageBuild: {
		{Field: "projectId", Required: true, Type: TypeString},
		{Field: "status", Required: true, Type: TypeString},
	},
	StageUiUx: {
		{Field: "projectId", Required: true, Type: TypeString},
		{Field: "overallScore", Required: true, Type: TypeNumber, Min: floatp(0), Max: floatp(100)},
		{Field: "lighthouse", Required: true, Type: TypeObject},
		{Field: "checks", Required: true, Type: TypeArray},
		{Field: "readyForReview", Required: true, Type: TypeBoolean},
	},
	StageReview: {
		{Field: "projectId", Required: true, Type: TypeString},
		{Field: "overallScore", Required: true, Type: TypeNumber, Min: floatp(0), Max: floatp(100)},
		{Field: "checks", Required: true, Type: TypeArray},
		{Field: "readyForPublish", Required: true, Type: TypeBoolean},
	},
	StagePublish: {
		{Field: "projectId", Required: true, Type: TypeString},
		{Field: "deploymentId", Required: true, Type: TypeString},
		{Field: "url", Required: true, Type: TypeString},
	},
}
