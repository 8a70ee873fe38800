package upload

import (
	"path/filepath"
	"strings"
)

type Slot string

const (
	SlotResume              Slot = "resume"
	SlotPortfolio           Slot = "portfolio"
	SlotAdditionalDocuments Slot = "additionalDocuments"
)

const (
	DirResumes    = "resumes"
	DirPortfolios = "portfolios"
	DirDocuments  = "documents"
)

type rule struct {
	dir        string
	maxCount   int
	extensions map[string]struct{}
	mimeTypes  map[string]struct{}
}

var (
	documentExtensions = []string{".pdf", ".doc", ".docx"}
	documentMimeTypes  = []string{
		"application/pdf",
		"application/msword",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	}
	imageExtensions = []string{".jpg", ".jpeg", ".png"}
	imageMimeTypes  = []string{"image/jpeg", "image/png"}
	zipMimeTypes    = []string{"application/zip", "application/x-zip-compressed"}
)

var rules = map[Slot]rule{
	SlotResume: {
		dir:        DirResumes,
		maxCount:   1,
		extensions: set(documentExtensions),
		mimeTypes:  set(documentMimeTypes),
	},
	SlotPortfolio: {
		dir:        DirPortfolios,
		maxCount:   1,
		extensions: set([]string{".pdf", ".zip"}, imageExtensions),
		mimeTypes:  set([]string{"application/pdf"}, zipMimeTypes, imageMimeTypes),
	},
	SlotAdditionalDocuments: {
		dir:        DirDocuments,
		maxCount:   5,
		extensions: set(documentExtensions, imageExtensions, []string{".txt"}),
		mimeTypes:  set(documentMimeTypes, imageMimeTypes, []string{"text/plain"}),
	},
}

// servable lists the extensions the uploads endpoint will hand back.
var servable = set(documentExtensions, imageExtensions, []string{".zip", ".txt"})

var servableDirs = set([]string{DirResumes, DirPortfolios, DirDocuments})

func lookupSlot(field string) (Slot, rule, bool) {
	slot := Slot(field)
	r, ok := rules[slot]
	return slot, r, ok
}

func (r rule) allows(filename, mimeType string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := r.extensions[ext]; !ok {
		return false
	}
	_, ok := r.mimeTypes[normalizeMediaType(mimeType)]
	return ok
}

// IsServable reports whether dir/name may be returned by the uploads
// endpoint.
func IsServable(dir, name string) bool {
	if _, ok := servableDirs[dir]; !ok {
		return false
	}
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return false
	}
	_, ok := servable[strings.ToLower(filepath.Ext(name))]
	return ok
}

func normalizeMediaType(value string) string {
	if i := strings.Index(value, ";"); i >= 0 {
		value = value[:i]
	}
	return strings.ToLower(strings.TrimSpace(value))
}

func set(groups ...[]string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, group := range groups {
		for _, value := range group {
			out[value] = struct{}{}
		}
	}
	return out
}
