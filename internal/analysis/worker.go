package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/brillob/dtce/internal/apierrors"
	"github.com/brillob/dtce/internal/logger"
	"github.com/brillob/dtce/internal/types"
	"github.com/brillob/dtce/internal/types/interfaces"
)

const resultContentType = "application/json"

// Worker runs the C7 stage: NLP + CV analysis over a parsed document,
// producing the final template.json and context.json artifacts (spec
// §4.4.3).
type Worker struct {
	Store       interfaces.ObjectStore
	StatusStore interfaces.JobStatusStore
}

// Handle implements pipeline.Stage for the analysis-jobs topic.
func (w *Worker) Handle(ctx context.Context, jobID string, body []byte) error {
	var job types.AnalysisJob
	if err := json.Unmarshal(body, &job); err != nil {
		return fmt.Errorf("analysis: decode AnalysisJob: %w", err)
	}

	if err := w.StatusStore.UpdateStatus(ctx, jobID, types.JobStatusAnalysisInProgress, "Performing NLP and CV analysis"); err != nil {
		return fmt.Errorf("analysis: update status: %w", err)
	}

	result, err := w.loadParseResult(ctx, job.ParseResultKey)
	if err != nil {
		return fmt.Errorf("analysis: %w", err)
	}

	style := w.analyzeContent(result.ContentSections)

	for i := range result.TemplateJson.LogoMap {
		asset := &result.TemplateJson.LogoMap[i]
		if asset.StorageKey == "" {
			continue
		}
		assetType, url, err := classifyLogo(ctx, w.Store, asset.StorageKey)
		if err != nil {
			logger.Warnf(ctx, "analysis: job %s: classify %s: %v", jobID, asset.AssetId, err)
			continue
		}
		if assetType == types.AssetTypeLogo || asset.AssetType == "" {
			asset.AssetType = assetType
		}
		asset.SecureUrl = url
	}

	contextJson := types.ContextJson{
		LinguisticStyle: style,
		ContentBlocks:   blocksFrom(result.ContentSections),
	}

	templateKey := "results/" + jobID + "/template.json"
	contextKey := "results/" + jobID + "/context.json"

	if err := w.storeJSON(ctx, templateKey, result.TemplateJson); err != nil {
		return fmt.Errorf("analysis: store template.json: %w", err)
	}
	if err := w.storeJSON(ctx, contextKey, contextJson); err != nil {
		return fmt.Errorf("analysis: store context.json: %w", err)
	}

	if err := w.StatusStore.UpdateCompletion(ctx, jobID, templateKey, contextKey); err != nil {
		return fmt.Errorf("analysis: update completion: %w", err)
	}
	return nil
}

func (w *Worker) loadParseResult(ctx context.Context, key string) (*types.ParseResult, error) {
	r, err := w.Store.Download(ctx, key)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var result types.ParseResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, apierrors.NewMalformedDocument("parse-result.json: %v", err)
	}
	return &result, nil
}

func (w *Worker) storeJSON(ctx context.Context, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return w.Store.Upload(ctx, key, bytes.NewReader(data), resultContentType)
}

// analyzeContent concatenates every ContentSection's SampleText with
// single-space separators and runs the linguistic style analyzer.
func (w *Worker) analyzeContent(sections []types.ContentSection) types.LinguisticStyle {
	texts := make([]string, 0, len(sections))
	for _, s := range sections {
		texts = append(texts, s.SampleText)
	}
	joined := strings.Join(texts, " ")

	formality := analyzeFormality(joined)
	tone := analyzeTone(joined)
	vector := styleVector(joined)

	return types.LinguisticStyle{
		OverallFormality:         formality.Label,
		FormalityConfidenceScore: formality.Confidence,
		DominantTone:             tone.Label,
		ToneConfidenceScore:      tone.Confidence,
		WritingStyleVector:       vector,
	}
}

func blocksFrom(sections []types.ContentSection) []types.ContentBlock {
	blocks := make([]types.ContentBlock, 0, len(sections))
	for _, s := range sections {
		blocks = append(blocks, types.ContentBlock{
			PlaceholderId:     s.PlaceholderId,
			SectionSampleText: s.SampleText,
			WordCount:         s.WordCount,
		})
	}
	return blocks
}
