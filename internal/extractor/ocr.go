package extractor

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const ocrTimeout = 2 * time.Minute

// OCRAvailable reports whether pdftoppm and tesseract are both installed.
func OCRAvailable() bool {
	_, err1 := exec.LookPath("pdftoppm")
	_, err2 := exec.LookPath("tesseract")
	return err1 == nil && err2 == nil
}

// OpenOCR rasterises each page with pdftoppm and reads it back with
// tesseract, for scanned statements that carry no text layer. Cells are
// split like pdftotext -layout output.
func OpenOCR(data []byte) (TableExtractor, error) {
	if !OCRAvailable() {
		return nil, fmt.Errorf("OCR not available (install poppler-utils and tesseract-ocr)")
	}

	tmpDir, err := os.MkdirTemp("", "statement-ocr-*")
	if err != nil {
		return nil, fmt.Errorf("creating temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	src := filepath.Join(tmpDir, "statement.pdf")
	if err := os.WriteFile(src, data, 0o600); err != nil {
		return nil, fmt.Errorf("writing temp file: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), ocrTimeout)
	defer cancel()

	// 300 DPI keeps digits legible
	prefix := filepath.Join(tmpDir, "page")
	if out, err := exec.CommandContext(ctx, "pdftoppm", "-r", "300", "-png", src, prefix).CombinedOutput(); err != nil {
		return nil, fmt.Errorf("pdftoppm failed: %v (output: %s)", err, strings.TrimSpace(string(out)))
	}

	images, err := filepath.Glob(prefix + "*.png")
	if err != nil {
		return nil, err
	}
	if len(images) == 0 {
		return nil, fmt.Errorf("pdftoppm produced no page images")
	}
	sort.Strings(images)

	var pages []string
	for _, img := range images {
		// psm 6 reads a uniform block and keeps column spacing
		out, err := exec.CommandContext(ctx, "tesseract", img, "stdout", "-l", "eng", "--psm", "6",
			"-c", "preserve_interword_spaces=1").Output()
		if err != nil {
			return nil, fmt.Errorf("tesseract failed on %s: %v", filepath.Base(img), err)
		}
		pages = append(pages, string(out))
	}
	return &layoutText{pages: pages}, nil
}
