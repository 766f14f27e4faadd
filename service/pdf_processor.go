package service

import (
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// minPDFTextLength is the embedded-text length below which a PDF is treated
// as a scan and its page images are OCR'd instead.
const minPDFTextLength = 20

// PDFProcessor reads ledger sheets that arrive as PDF files on disk.
type PDFProcessor interface {
	// ExtractText returns the embedded text layer, one line per text row.
	ExtractText(path string) (string, error)
	// ExtractPageImages writes every embedded image as a PNG into outDir and
	// returns the paths in page order. The caller removes them.
	ExtractPageImages(path, outDir string) ([]string, error)
}

type pdfProcessor struct{}

func NewPDFProcessor() PDFProcessor {
	return &pdfProcessor{}
}

func (p *pdfProcessor) ExtractText(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	var sb strings.Builder
	for pageIndex := 1; pageIndex <= r.NumPage(); pageIndex++ {
		page := r.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		rows, err := page.GetTextByRow()
		if err != nil {
			return "", fmt.Errorf("failed to read text of page %d: %w", pageIndex, err)
		}
		for _, row := range rows {
			for _, word := range row.Content {
				sb.WriteString(word.S)
			}
			sb.WriteString("\n")
		}
	}
	return sb.String(), nil
}

func (p *pdfProcessor) ExtractPageImages(path, outDir string) ([]string, error) {
	rawDir, err := os.MkdirTemp("", "ledger-pdf-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(rawDir)

	// nil selectedPages extracts from all pages
	if err := api.ExtractImagesFile(path, rawDir, nil, model.NewDefaultConfiguration()); err != nil {
		return nil, fmt.Errorf("failed to extract images: %w", err)
	}

	entries, err := os.ReadDir(rawDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read extracted images: %w", err)
	}

	// pdfcpu names files <base>_<page>_<id>.<ext>
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var pages []string
	for _, name := range names {
		img, err := decodeImage(filepath.Join(rawDir, name))
		if err != nil {
			// tiff and other formats the OCR engines cannot read are skipped
			continue
		}

		out, err := writePNG(outDir, img)
		if err != nil {
			removeAll(pages)
			return nil, err
		}
		pages = append(pages, out)
	}

	return pages, nil
}

func decodeImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	return img, err
}

// writePNG stores img as a PNG in dir so an OCR engine can read it.
func writePNG(dir string, img image.Image) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create page image dir: %w", err)
	}

	f, err := os.CreateTemp(dir, "ocr-page-*.png")
	if err != nil {
		return "", fmt.Errorf("failed to create page image file: %w", err)
	}

	if err := png.Encode(f, img); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to encode page image: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to write page image: %w", err)
	}

	return f.Name(), nil
}

func removeAll(paths []string) {
	for _, p := range paths {
		os.Remove(p)
	}
}
