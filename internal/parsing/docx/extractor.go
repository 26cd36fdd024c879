package docx

import (
	"context"

	"github.com/brillob/dtce/internal/apierrors"
	"github.com/brillob/dtce/internal/fetch"
	"github.com/brillob/dtce/internal/types"
	"github.com/brillob/dtce/internal/types/interfaces"
)

// Handler implements interfaces.DocumentHandler for DocumentTypeDocx.
type Handler struct{}

// Parse reads a .docx package from either FilePath or DocumentUrl, runs the
// four-pass statistical structural extractor of spec §4.5, and returns the
// assembled ParseResult.
func (Handler) Parse(ctx context.Context, jobReq types.JobRequest, store interfaces.ObjectStore) (*types.ParseResult, error) {
	data, err := fetch.Document(ctx, jobReq, store)
	if err != nil {
		return nil, err
	}

	pkg, err := openPackage(data)
	if err != nil {
		return nil, apierrors.NewMalformedDocument("%v", err)
	}
	if !pkg.has("word/document.xml") {
		return nil, apierrors.NewMalformedDocument("missing word/document.xml")
	}

	docRoot, err := pkg.readXML("word/document.xml")
	if err != nil {
		return nil, apierrors.NewMalformedDocument("%v", err)
	}
	body := docRoot.find("body")
	if body == nil {
		return nil, apierrors.NewMalformedDocument("missing document body")
	}

	styles, styleOrder, err := parseStyles(pkg)
	if err != nil {
		return nil, apierrors.NewMalformedDocument("%v", err)
	}

	theme, err := extractTheme(styles, styleOrder, body)
	if err != nil {
		return nil, apierrors.NewMalformedDocument("%v", err)
	}

	paras := extractParagraphFeatures(body, styles)
	headings := detectHeadings(paras)
	hierarchy, contentSections := buildSections(paras, headings)

	logos, err := extractImages(ctx, store, pkg, body, jobReq.JobId)
	if err != nil {
		return nil, err
	}

	return &types.ParseResult{
		TemplateJson: types.TemplateJson{
			VisualTheme:      theme,
			SectionHierarchy: hierarchy,
			LogoMap:          logos,
		},
		ContentSections: contentSections,
	}, nil
}

