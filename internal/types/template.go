package types

// ParseResult is produced by the C6 parsing stage and stored at
// parsed/{jobId}/parse-result.json.
type ParseResult struct {
	TemplateJson    TemplateJson     `json:"templateJson"`
	ContentSections []ContentSection `json:"contentSections"`
}

// ContentSection is one extracted body-content block, keyed by PlaceholderId.
type ContentSection struct {
	PlaceholderId string `json:"placeholderId"`
	SectionTitle  string `json:"sectionTitle"`
	SampleText    string `json:"sampleText"`
	WordCount     int    `json:"wordCount"`
}

// TemplateJson describes the document's visual theme, section hierarchy,
// and embedded image/logo assets.
type TemplateJson struct {
	VisualTheme      VisualTheme     `json:"visualTheme"`
	SectionHierarchy SectionHierarchy `json:"sectionHierarchy"`
	LogoMap          []LogoAsset     `json:"logoMap"`
}

// SectionHierarchy wraps the top-level section list.
type SectionHierarchy struct {
	Sections []Section `json:"sections"`
}

// Section is one node of the (strict-tree) section hierarchy.
type Section struct {
	SectionTitle  string    `json:"sectionTitle"`
	PlaceholderId string    `json:"placeholderId"`
	SubSections   []Section `json:"subSections,omitempty"`
}

// VisualTheme captures colors, fonts, and page layout.
type VisualTheme struct {
	ColorPalette []ColorSwatch           `json:"colorPalette"`
	FontMap      map[string]FontDefinition `json:"fontMap"`
	LayoutRules  LayoutRules             `json:"layoutRules"`
}

// ColorSwatch is a named entry in the color palette.
type ColorSwatch struct {
	Name    string `json:"name"`
	HexCode string `json:"hexCode"`
}

// FontDefinition describes a resolved run-properties font.
type FontDefinition struct {
	Family string  `json:"family"`
	SizePt float64 `json:"size_pt"`
	Weight string  `json:"weight"` // "normal" | "bold"
	Color  string  `json:"color"`
}

// Orientation enumerates page orientation.
type Orientation string

const (
	OrientationPortrait  Orientation = "portrait"
	OrientationLandscape Orientation = "landscape"
)

// Margins are page margins in millimetres.
type Margins struct {
	Top    float64 `json:"top"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
	Right  float64 `json:"right"`
}

// LayoutRules describes page geometry in millimetres.
type LayoutRules struct {
	PageWidthMM  float64     `json:"pageWidth_mm"`
	PageHeightMM float64     `json:"pageHeight_mm"`
	Orientation  Orientation `json:"orientation"`
	Margins      Margins     `json:"margins"`
}

// AssetType enumerates the classification of a LogoAsset.
type AssetType string

const (
	AssetTypeLogo      AssetType = "logo"
	AssetTypeImage     AssetType = "image"
	AssetTypeWatermark AssetType = "watermark"
)

// BoundingBox places an asset on a page, in pixels.
type BoundingBox struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	PageNumber int     `json:"pageNumber"`
}

// LogoAsset is one embedded image/logo/watermark asset.
type LogoAsset struct {
	AssetId     string      `json:"assetId"`
	AssetType   AssetType   `json:"assetType"`
	BoundingBox BoundingBox `json:"boundingBox"`
	SecureUrl   string      `json:"secureUrl,omitempty"`
	StorageKey  string      `json:"storageKey,omitempty"`
}

// ContextJson captures extracted content blocks and linguistic-style metadata.
type ContextJson struct {
	LinguisticStyle        LinguisticStyle        `json:"linguisticStyle"`
	ContentBlocks          []ContentBlock         `json:"contentBlocks"`
	AdministrativeMetadata map[string]interface{} `json:"administrativeMetadata,omitempty"`
}

// LinguisticStyle is the scored output of the style analyzer.
type LinguisticStyle struct {
	OverallFormality        string    `json:"overallFormality"`
	FormalityConfidenceScore float64   `json:"formalityConfidenceScore"`
	DominantTone             string    `json:"dominantTone"`
	ToneConfidenceScore      float64   `json:"toneConfidenceScore"`
	WritingStyleVector       []float64 `json:"writingStyleVector"`
}

// ContentBlock mirrors a ContentSection into the Context artifact.
type ContentBlock struct {
	PlaceholderId      string `json:"placeholderId"`
	SectionSampleText  string `json:"sectionSampleText"`
	WordCount          int    `json:"wordCount"`
}
