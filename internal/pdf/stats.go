package pdf

import (
	"fmt"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// Stats inspects a PDF with pdfcpu and reports structural information:
// page count, file size and whether the document carries image streams.
// Documents with many image streams and little native text are usually
// scanned and need OCR.
func Stats(filePath string) (*DocumentStats, error) {
	fileInfo, err := os.Stat(filePath)
	if err != nil {
		return nil, fmt.Errorf("cannot access file: %w", err)
	}

	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF file: %w", err)
	}
	defer file.Close()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(file, conf)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF context: %w", err)
	}

	if err := ctx.EnsurePageCount(); err != nil {
		return nil, fmt.Errorf("failed to ensure page count: %w", err)
	}

	imageCount := countImageStreams(ctx)

	return &DocumentStats{
		Path:       filePath,
		PageCount:  ctx.PageCount,
		HasImages:  imageCount > 0,
		ImageCount: imageCount,
		Size:       fileInfo.Size(),
	}, nil
}

// countImageStreams counts image XObjects in the document.
func countImageStreams(ctx *model.Context) int {
	if ctx.Optimize != nil {
		count := 0
		for pageNr := 1; pageNr <= ctx.PageCount; pageNr++ {
			count += len(pdfcpu.ImageObjNrs(ctx, pageNr))
		}
		if count > 0 {
			return count
		}
	}

	// Fallback: scan the xref table for image subtype stream dicts.
	count := 0
	for _, entry := range ctx.Table {
		if entry == nil || entry.Free || entry.Compressed {
			continue
		}
		sd, ok := entry.Object.(types.StreamDict)
		if !ok {
			continue
		}
		if subtype, found := sd.Find("Subtype"); found {
			if name, isName := subtype.(types.Name); isName && name == "Image" {
				count++
			}
		}
	}
	return count
}
