package localgen

import (
	"context"

	"git.home.luguber.info/inful/sitegen/internal/pipeline"
	"git.home.luguber.info/inful/sitegen/internal/slug"
)

// defaultPages is the page set every generated site starts from.
var defaultPages = []pipeline.Page{
	{Name: "Ana Sayfa", Slug: "homepage", Type: "homepage"},
	{Name: "Hakkimizda", Slug: "hakkimizda", Type: "about"},
	{Name: "Hizmetler", Slug: "hizmetler", Type: "services"},
	{Name: "Iletisim", Slug: "iletisim", Type: "contact"},
}

// InputHandler normalizes the externally supplied project data into the
// structured project profile the rest of the pipeline consumes.
func InputHandler(_ context.Context, input any) (any, error) {
	in, err := decode[pipeline.InputInput](input)
	if err != nil {
		return nil, err
	}

	tone := "professional"
	pages := make([]pipeline.Page, len(defaultPages))
	copy(pages, defaultPages)

	return &pipeline.InputOutput{
		ProjectID: in.ProjectID,
		Slug:      slug.Make(in.CompanyName),
		Company: pipeline.Company{
			Name:        in.CompanyName,
			Industry:    in.Industry,
			Description: in.Description,
			Tone:        tone,
		},
		Pages: pages,
	}, nil
}
