package localgen

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/sitegen/internal/pipeline"
)

// ImagesHandler produces placeholder image records instead of calling an
// image-generation service: one hero, one icon per page, and a background
// pattern for gradient heroes.
func ImagesHandler(_ context.Context, input any) (any, error) {
	in, err := decode[pipeline.ImagesInput](input)
	if err != nil {
		return nil, err
	}

	newImage := func(kind, page, section string, w, h int) pipeline.GeneratedImage {
		return pipeline.GeneratedImage{
			ID:      uuid.NewString(),
			Type:    kind,
			URL:     fmt.Sprintf("https://placehold.co/%dx%d", w, h),
			Width:   w,
			Height:  h,
			Format:  "webp",
			AltText: fmt.Sprintf("%s - %s", in.Company.Name, kind),
			Page:    page,
			Section: section,
		}
	}

	out := &pipeline.ImagesOutput{ProjectID: in.ProjectID}

	hero := newImage("hero", "homepage", "hero", 1920, 1080)
	out.HeroImages = append(out.HeroImages, hero)
	out.Images = append(out.Images, hero)

	for _, p := range in.Pages {
		icon := newImage("icon", p.Slug, "features", 128, 128)
		out.FeatureIcons = append(out.FeatureIcons, icon)
		out.Images = append(out.Images, icon)
	}

	if in.Design.Layout.HeroType == "gradient" {
		bg := newImage("background", "homepage", "hero", 1920, 600)
		out.BackgroundImages = append(out.BackgroundImages, bg)
		out.Images = append(out.Images, bg)
	}

	out.TotalImages = len(out.Images)
	out.GenerationStats.Model = "placeholder"
	out.GenerationStats.SuccessCount = out.TotalImages

	return out, nil
}
