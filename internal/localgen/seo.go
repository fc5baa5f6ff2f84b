package localgen

import (
	"context"
	"fmt"
	"strings"
	"time"

	"git.home.luguber.info/inful/sitegen/internal/pipeline"
)

// SeoHandler produces the technical SEO artifacts for the site: robots.txt,
// sitemap.xml, a web manifest, per-page meta tags and schema.org payloads.
func SeoHandler(_ context.Context, input any) (any, error) {
	in, err := decode[pipeline.SeoInput](input)
	if err != nil {
		return nil, err
	}

	base := "https://" + in.Domain

	out := &pipeline.SeoOutput{ProjectID: in.ProjectID}

	for _, page := range in.Pages {
		url := base + "/"
		if page.Slug != "homepage" && page.Slug != "" {
			url = base + "/" + page.Slug + "/"
		}
		out.SitemapURLs = append(out.SitemapURLs, url)
	}

	out.Files = []pipeline.SeoFile{
		{Filename: "robots.txt", Content: robotsTxt(base), Purpose: "crawler directives"},
		{Filename: "sitemap.xml", Content: sitemapXML(out.SitemapURLs), Purpose: "sitemap"},
		{Filename: "manifest.json", Content: manifestJSON(in.Company.Name), Purpose: "web manifest"},
	}

	for _, pc := range in.Content.Pages {
		out.MetaTags = append(out.MetaTags, pipeline.MetaTags{
			Page:        pc.Slug,
			Title:       pc.MetaTitle,
			Description: pc.MetaDescription,
			Keywords:    pc.Keywords,
		})
	}

	out.Schemas = append(out.Schemas,
		seoSchema("Organization", map[string]any{
			"name": in.Company.Name,
			"url":  base,
		}),
		seoSchema("WebSite", map[string]any{
			"name": in.Company.Name,
			"url":  base,
		}),
	)

	return out, nil
}

func seoSchema(typ string, data map[string]any) struct {
	Type string         `json:"type"`
	Data map[string]any `json:"data,omitempty"`
} {
	return struct {
		Type string         `json:"type"`
		Data map[string]any `json:"data,omitempty"`
	}{Type: typ, Data: data}
}

func robotsTxt(base string) string {
	return fmt.Sprintf("User-agent: *\nAllow: /\n\nSitemap: %s/sitemap.xml\n", base)
}

func sitemapXML(urls []string) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString(`<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">` + "\n")
	today := time.Now().UTC().Format("2006-01-02")
	for _, u := range urls {
		fmt.Fprintf(&b, "  <url><loc>%s</loc><lastmod>%s</lastmod></url>\n", u, today)
	}
	b.WriteString("</urlset>\n")
	return b.String()
}

func manifestJSON(name string) string {
	return fmt.Sprintf(`{
  "name": %q,
  "short_name": %q,
  "start_url": "/",
  "display": "standalone",
  "background_color": "#ffffff"
}
`, name, name)
}
