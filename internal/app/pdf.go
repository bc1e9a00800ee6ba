package app

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"slack-pdf-uploader/internal/logging"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
)

const pdfMIME = "application/pdf"

var (
	errEmptyPath  = errors.New("no file path given")
	errNotRegular = errors.New("path is not a regular file")
	errNotPDF     = errors.New("only PDF files are accepted (use a .pdf)")
	errEmptyFile  = errors.New("file is empty")
)

type pdfFile struct {
	Path string
	Name string
	Size int64
}

func inspectPDF(rawPath string, logger *logging.Logger) (pdfFile, error) {
	path, err := expandPath(rawPath)
	if err != nil {
		return pdfFile{}, &FileError{Path: rawPath, Err: err}
	}
	info, err := os.Stat(path)
	if err != nil {
		return pdfFile{}, &FileError{Path: path, Err: err}
	}
	if !info.Mode().IsRegular() {
		return pdfFile{}, &FileError{Path: path, Err: errNotRegular}
	}
	if !strings.EqualFold(filepath.Ext(path), ".pdf") {
		return pdfFile{}, &FileError{Path: path, Err: errNotPDF}
	}
	if info.Size() == 0 {
		return pdfFile{}, &FileError{Path: path, Err: errEmptyFile}
	}

	if detected, err := mimetype.DetectFile(path); err == nil && !detected.Is(pdfMIME) {
		logger.Warn("file content does not look like a PDF",
			logging.Field("path", path),
			logging.Field("detected", detected.String()),
		)
	}

	pdf := pdfFile{Path: path, Name: filepath.Base(path), Size: info.Size()}
	logger.Info("uploading file",
		logging.Field("name", pdf.Name),
		logging.Field("size", humanize.Bytes(uint64(pdf.Size))),
	)
	return pdf, nil
}

func expandPath(raw string) (string, error) {
	path := strings.TrimSpace(raw)
	if path == "" {
		return "", errEmptyPath
	}
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return filepath.Abs(path)
}
