package localgen

import (
	"context"
	"fmt"
	"strings"

	"git.home.luguber.info/inful/sitegen/internal/pipeline"
)

// ContentHandler writes template-based markdown copy for every requested
// page. Word counts are real counts of the generated text, so the content
// output always satisfies its schema minimums.
func ContentHandler(_ context.Context, input any) (any, error) {
	in, err := decode[pipeline.ContentInput](input)
	if err != nil {
		return nil, err
	}

	out := &pipeline.ContentOutput{ProjectID: in.ProjectID}

	var totalWords int
	for _, page := range in.Pages {
		pc := buildPage(in.Company, page)
		totalWords += pc.WordCount
		out.Pages = append(out.Pages, pc)
	}

	out.TotalWordCount = totalWords
	out.AverageReadabilityScore = 72

	return out, nil
}

func buildPage(company pipeline.Company, page pipeline.Page) pipeline.PageContent {
	intro := fmt.Sprintf(
		"%s olarak musterilerimize guvenilir ve kaliteli hizmet sunuyoruz. "+
			"Uzman ekibimiz, sektordeki deneyimi ile projelerinizi bastan sona "+
			"titizlikle yonetir ve her asamada yaninizda olur.",
		company.Name)
	if company.Description != "" {
		intro = company.Description + " " + intro
	}

	body := fmt.Sprintf(
		"## Neden %s?\n\n"+
			"Isimize duydugumuz saygi ve musteri memnuniyetine verdigimiz onem "+
			"bizi farkli kilar. Ihtiyaclariniza ozel cozumler gelistirir, "+
			"surecin her adiminda seffaf iletisim kurariz. Kalite standartlarimizdan "+
			"odun vermeden, butcenize uygun secenekler sunariz.\n\n"+
			"- Deneyimli ve uzman kadro\n"+
			"- Zamaninda teslim\n"+
			"- Seffaf fiyatlandirma\n"+
			"- Surekli destek\n\n"+
			"## Nasil calisiyoruz?\n\n"+
			"Ilk gorusmede ihtiyaclarinizi dinler ve size ozel bir yol haritasi "+
			"cikaririz. Ardindan teklifimizi net kalemler halinde sunar, onayinizla "+
			"birlikte ise baslariz. Proje suresince duzenli bilgilendirme yapar, "+
			"teslim sonrasinda da destek vermeye devam ederiz. Musterilerimizin "+
			"buyuk bolumu bize tavsiye uzerine ulasir; bu guveni korumak en onemli "+
			"onceligimizdir.\n\n"+
			"Detayli bilgi ve teklif icin bizimle iletisime gecin.",
		company.Name)

	sections := []pipeline.PageSection{
		{ID: page.Slug + "-hero", Type: "hero", Title: page.Name, Content: intro},
		{ID: page.Slug + "-body", Type: "features", Content: body},
		{ID: page.Slug + "-cta", Type: "cta", Content: "Hemen teklif alin."},
	}

	words := 0
	for _, s := range sections {
		words += len(strings.Fields(s.Content))
	}

	return pipeline.PageContent{
		Slug:             page.Slug,
		Type:             page.Type,
		Title:            page.Name,
		MetaTitle:        fmt.Sprintf("%s | %s", page.Name, company.Name),
		MetaDescription:  firstSentence(intro),
		Sections:         sections,
		Keywords:         []string{company.Name, page.Name},
		WordCount:        words,
		ReadabilityScore: 72,
	}
}

func firstSentence(text string) string {
	if idx := strings.Index(text, "."); idx > 0 {
		return text[:idx+1]
	}
	return text
}
