package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// NormalizedDocument is the reader-produced view of a source file. It is
// immutable once built; the classification pipeline only reads from it.
type NormalizedDocument struct {
	Path             string
	Name             string
	Stem             string
	Extension        string
	SizeBytes        int64
	CreationTime     time.Time
	ModificationTime time.Time
	Content          string
	Metadata         map[string]string
}

// DateSource identifies where an extracted date came from.
type DateSource string

const (
	DateSourceContent      DateSource = "content"
	DateSourceCreation     DateSource = "creation"
	DateSourceModification DateSource = "modification"
	DateSourceCurrent      DateSource = "current"
	DateSourceFallback     DateSource = "fallback"
)

// DateExtractionResult carries the best-effort date for a document together
// with how much the source of that date can be trusted.
type DateExtractionResult struct {
	Date       string
	Source     DateSource
	Confidence float64
	RawMatch   string
}

// VersionTag is a parsed v<major>.<minor>[.<patch>] filename marker.
type VersionTag struct {
	Major int
	Minor int
	Patch int
	// HasPatch distinguishes v1.2 from v1.2.0 when re-serializing.
	HasPatch bool
}

// String renders the tag back into its filename form.
func (v VersionTag) String() string {
	if v.HasPatch {
		return fmt.Sprintf("v%d.%d.%d", v.Major, v.Minor, v.Patch)
	}
	return fmt.Sprintf("v%d.%d", v.Major, v.Minor)
}

// Compare orders version tags lexicographically by (major, minor, patch).
func (v VersionTag) Compare(o VersionTag) int {
	if v.Major != o.Major {
		if v.Major < o.Major {
			return -1
		}
		return 1
	}
	if v.Minor != o.Minor {
		if v.Minor < o.Minor {
			return -1
		}
		return 1
	}
	if v.Patch != o.Patch {
		if v.Patch < o.Patch {
			return -1
		}
		return 1
	}
	return 0
}

// ClassificationDecision is the sole output of the folder resolution engine.
// When CreateNew is false, SuggestedPath is a member of the folder catalog
// that was current at decision time.
type ClassificationDecision struct {
	SuggestedPath string
	CreateNew     bool
	Reasoning     string
}

// ProcessPlan is the fully-derived placement decision for one document,
// ready to be executed or shown as a dry-run preview.
type ProcessPlan struct {
	ID             uuid.UUID
	SourcePath     string
	OriginalName   string
	Subject        string
	Date           string
	DateSource     DateSource
	DateConfidence float64
	Version        VersionTag
	NewName        string
	TargetFolder   string
	TargetPath     string
	CreateFolder   bool
	Reasoning      string
	Warning        string
}

// MoveResult reports the outcome of executing a ProcessPlan.
type MoveResult struct {
	PlanID     uuid.UUID
	SourcePath string
	TargetPath string
	BackupPath string
	Err        error
}
