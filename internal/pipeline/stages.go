package pipeline

// Stage identifies one step in the fixed website-generation sequence.
type Stage string

const (
	StageInput    Stage = "input"
	StageResearch Stage = "research"
	StageDesign   Stage = "design"
	StageImages   Stage = "images"
	StageContent  Stage = "content"
	StageSeo      Stage = "seo"
	StageBuild    Stage = "build"
	StageUiUx     Stage = "ui_ux"
	StageReview   Stage = "review"
	StagePublish  Stage = "publish"
)

// stageOrder defines the canonical execution order. Index position is
// significant: it is the default transition graph and the basis for skip
// detection.
var stageOrder = []Stage{
	StageInput,
	StageResearch,
	StageDesign,
	StageImages,
	StageContent,
	StageSeo,
	StageBuild,
	StageUiUx,
	StageReview,
	StagePublish,
}

// StageMetadata carries static per-stage attributes.
type StageMetadata struct {
	Name              string
	Description       string
	EstimatedDuration string
	CanSkip           bool
	CanRetry          bool
	// IsInteractive stages pause for external input when vibe mode is on.
	IsInteractive bool
}

var stageMetadata = map[Stage]StageMetadata{
	StageInput: {
		Name:              "Proje Girisi",
		Description:       "Temel proje bilgilerinin girilmesi",
		EstimatedDuration: "Manuel giris",
		CanSkip:           false,
		CanRetry:          true,
		IsInteractive:     true,
	},
	StageResearch: {
		Name:              "Arastirma",
		Description:       "Sektor ve rakip analizi",
		EstimatedDuration: "2-3 dakika",
		CanSkip:           true,
		CanRetry:          true,
		IsInteractive:     false,
	},
	StageDesign: {
		Name:              "Tasarim",
		Description:       "Renk, font ve layout secimi",
		EstimatedDuration: "30-60 saniye",
		CanSkip:           false,
		CanRetry:          true,
		IsInteractive:     true,
	},
	StageImages: {
		Name:              "Gorseller",
		Description:       "Hero, ikon ve arkaplan gorselleri uretimi",
		EstimatedDuration: "2-4 dakika",
		CanSkip:           true,
		CanRetry:          true,
		IsInteractive:     false,
	},
	StageContent: {
		Name:              "Icerik",
		Description:       "Sayfa iceriklerinin uretimi",
		EstimatedDuration: "3-5 dakika",
		CanSkip:           false,
		CanRetry:          true,
		IsInteractive:     false,
	},
	StageSeo: {
		Name:              "SEO",
		Description:       "Teknik SEO dosyalarinin uretimi",
		EstimatedDuration: "10-20 saniye",
		CanSkip:           false,
		CanRetry:          true,
		IsInteractive:     false,
	},
	StageBuild: {
		Name:              "Derleme",
		Description:       "Sitenin derlenmesi",
		EstimatedDuration: "2-4 dakika",
		CanSkip:           false,
		CanRetry:          true,
		IsInteractive:     true,
	},
	StageUiUx: {
		Name:              "UI/UX Kontrol",
		Description:       "Gorsel tutarlilik, erisilebilirlik ve kullanici deneyimi kontrolu",
		EstimatedDuration: "2-3 dakika",
		CanSkip:           false,
		CanRetry:          true,
		IsInteractive:     false,
	},
	StageReview: {
		Name:              "Inceleme",
		Description:       "Kalite kontrol ve onay",
		EstimatedDuration: "1-2 dakika",
		CanSkip:           false,
		CanRetry:          true,
		IsInteractive:     true,
	},
	StagePublish: {
		Name:              "Yayinlama",
		Description:       "Sitenin deploy edilmesi",
		EstimatedDuration: "1-2 dakika",
		CanSkip:           false,
		CanRetry:          true,
		IsInteractive:     false,
	},
}

// Stages returns the canonical stage order. The returned slice is a copy.
func Stages() []Stage {
	out := make([]Stage, len(stageOrder))
	copy(out, stageOrder)
	return out
}

// StageCount is the number of stages in the pipeline.
func StageCount() int {
	return len(stageOrder)
}

// IsValidStage reports whether s names a known stage.
func IsValidStage(s string) bool {
	_, ok := stageMetadata[Stage(s)]
	return ok
}

// IndexOf returns the position of stage in the canonical order, or -1.
func IndexOf(stage Stage) int {
	for i, s := range stageOrder {
		if s == stage {
			return i
		}
	}
	return -1
}

// NextOf returns the stage after the given one, or "" for the last stage.
func NextOf(stage Stage) Stage {
	idx := IndexOf(stage)
	if idx == -1 || idx == len(stageOrder)-1 {
		return ""
	}
	return stageOrder[idx+1]
}

// PreviousOf returns the stage before the given one, or "" for the first stage.
func PreviousOf(stage Stage) Stage {
	idx := IndexOf(stage)
	if idx <= 0 {
		return ""
	}
	return stageOrder[idx-1]
}

// Metadata returns the static metadata for a stage. Unknown stages return
// the zero value.
func Metadata(stage Stage) StageMetadata {
	return stageMetadata[stage]
}
