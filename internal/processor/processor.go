// Package processor runs the per-document pipeline: read, extract subject
// and date, derive version and filename, resolve the target folder, then
// execute the move. Documents are processed strictly one at a time; the
// folder catalog is rescanned from disk before every placement decision.
package processor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"archivist/internal/catalog"
	"archivist/internal/config"
	"archivist/internal/dates"
	"archivist/internal/models"
	"archivist/internal/naming"
	"archivist/internal/oracle"
	"archivist/internal/reader"
	"archivist/internal/resolve"
	"archivist/internal/rules"
)

// Processor wires the classification components around one knowledge base.
type Processor struct {
	cfg     *config.Config
	rules   *rules.Catalog
	readers *reader.Registry
	dates   *dates.Extractor
	engine  *resolve.Engine
	oracle  oracle.Oracle
	kb      *catalog.Scanner
}

// New assembles a processor from the loaded configuration and rule catalog.
func New(cfg *config.Config, ruleCatalog *rules.Catalog, readers *reader.Registry, orc oracle.Oracle) *Processor {
	return &Processor{
		cfg:     cfg,
		rules:   ruleCatalog,
		readers: readers,
		dates:   dates.New(cfg.FileProcessing.DateFormat, cfg.DateExtraction.Priority),
		engine:  resolve.New(ruleCatalog, orc),
		oracle:  orc,
		kb:      catalog.NewScannerWithDepth(cfg.KnowledgeBase.RootPath, cfg.KnowledgeBase.MaxFolderDepth),
	}
}

// KnowledgeBase exposes the scanner for commands that only inspect the tree.
func (p *Processor) KnowledgeBase() *catalog.Scanner { return p.kb }

// Engine exposes the resolution engine for preview surfaces.
func (p *Processor) Engine() *resolve.Engine { return p.engine }

// Dates exposes the date extractor for preview surfaces.
func (p *Processor) Dates() *dates.Extractor { return p.dates }

// Supported reports whether the extension has a registered reader and is
// enabled in configuration.
func (p *Processor) Supported(ext string) bool {
	if !p.readers.Supported(ext) {
		return false
	}
	allowed := p.cfg.FileProcessing.SupportedExtensions
	if len(allowed) == 0 {
		return true
	}
	for _, a := range allowed {
		if strings.EqualFold(a, ext) {
			return true
		}
	}
	return false
}

// Plan derives the full placement decision for one document without touching
// the filesystem beyond reads. The folder catalog is scanned fresh here so
// the decision reflects any manual edits.
func (p *Processor) Plan(ctx context.Context, path string) (*models.ProcessPlan, error) {
	doc, err := p.readers.Read(path)
	if err != nil {
		return nil, err
	}

	subject := p.extractSubject(ctx, doc)
	dateRes := p.dates.Extract(doc)
	version := p.determineVersion(ctx, subject, doc.Content)
	newName := naming.BuildFilename(subject, dateRes.Date, version, doc.Extension, p.cfg.FileProcessing.MaxFilenameLength)

	folders, err := p.kb.Scan()
	if err != nil {
		return nil, err
	}
	decision := p.engine.Resolve(ctx, subject, folders)

	plan := &models.ProcessPlan{
		ID:             uuid.New(),
		SourcePath:     path,
		OriginalName:   doc.Name,
		Subject:        subject,
		Date:           dateRes.Date,
		DateSource:     dateRes.Source,
		DateConfidence: dateRes.Confidence,
		Version:        version,
		NewName:        newName,
		TargetFolder:   decision.SuggestedPath,
		TargetPath:     filepath.Join(p.kb.AbsPath(decision.SuggestedPath), newName),
		CreateFolder:   decision.CreateNew,
		Reasoning:      decision.Reasoning,
	}
	if _, err := os.Stat(plan.TargetPath); err == nil {
		plan.Warning = fmt.Sprintf("target file already exists: %s", plan.TargetPath)
	}
	return plan, nil
}

// Execute applies a plan: create the target folder if the decision asked for
// one, back up any pre-existing target, and move the source into place.
// Folder creation is synchronous, so the next document's catalog scan sees
// it.
func (p *Processor) Execute(plan *models.ProcessPlan) *models.MoveResult {
	res := &models.MoveResult{
		PlanID:     plan.ID,
		SourcePath: plan.SourcePath,
		TargetPath: plan.TargetPath,
	}

	if plan.CreateFolder {
		log.Infof("creating folder: %s", plan.TargetFolder)
		if err := p.kb.EnsureFolder(plan.TargetFolder); err != nil {
			res.Err = err
			return res
		}
	} else if err := os.MkdirAll(filepath.Dir(plan.TargetPath), 0o755); err != nil {
		res.Err = fmt.Errorf("ensure target folder: %w", err)
		return res
	}

	if _, err := os.Stat(plan.TargetPath); err == nil {
		backup := backupPath(plan.TargetPath)
		log.Warnf("target exists, backing up to %s", backup)
		if err := moveFile(plan.TargetPath, backup); err != nil {
			res.Err = fmt.Errorf("back up existing target: %w", err)
			return res
		}
		res.BackupPath = backup
	}

	log.Infof("moving %s -> %s", plan.SourcePath, plan.TargetPath)
	if err := moveFile(plan.SourcePath, plan.TargetPath); err != nil {
		res.Err = fmt.Errorf("move file: %w", err)
	}
	return res
}

// ProcessOne plans and executes a single document, then refreshes the
// knowledge-base structure summary. Used by watch mode.
func (p *Processor) ProcessOne(ctx context.Context, path string) (*models.MoveResult, error) {
	plan, err := p.Plan(ctx, path)
	if err != nil {
		return nil, err
	}
	res := p.Execute(plan)
	if res.Err != nil {
		return res, res.Err
	}
	if err := p.kb.WriteStructure(p.rules); err != nil {
		log.Warnf("failed to refresh structure summary: %v", err)
	}
	return res, nil
}

// extractSubject asks the oracle first and falls back to document metadata,
// then the filename stem, then the configured placeholder. It never fails.
func (p *Processor) extractSubject(ctx context.Context, doc *models.NormalizedDocument) string {
	if p.oracle != nil && p.oracle.Enabled() {
		res, err := p.oracle.ExtractSubject(ctx, doc)
		if err != nil {
			if !errors.Is(err, oracle.ErrDisabled) {
				log.Warnf("oracle subject extraction failed, using fallback: %v", err)
			}
		} else if res.Subject != "" {
			log.Infof("oracle extracted subject: %s (confidence %.2f)", res.Subject, res.Confidence)
			return res.Subject
		}
	}
	if title := doc.Metadata["title"]; title != "" {
		return title
	}
	if doc.Stem != "" {
		return doc.Stem
	}
	return p.cfg.Defaults.FallbackSubject
}

func backupPath(target string) string {
	ext := filepath.Ext(target)
	stem := target[:len(target)-len(ext)]
	stamp := time.Now().Format("20060102_150405")
	return fmt.Sprintf("%s_backup_%s%s", stem, stamp, ext)
}

// moveFile renames, falling back to copy+remove across filesystems.
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Remove(src)
}
