package processor

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"archivist/internal/config"
	"archivist/internal/models"
	"archivist/internal/oracle"
	"archivist/internal/reader"
	"archivist/internal/rules"
)

type fakeOracle struct {
	enabled      bool
	subject      oracle.SubjectResult
	subjectErr   error
	folder       oracle.FolderSuggestion
	folderErr    error
	similar      oracle.SimilarityResult
	similarErr   error
	simCalls     int
	subjectCalls int
}

func (f *fakeOracle) Enabled() bool { return f.enabled }

func (f *fakeOracle) ExtractSubject(ctx context.Context, doc *models.NormalizedDocument) (oracle.SubjectResult, error) {
	f.subjectCalls++
	return f.subject, f.subjectErr
}

func (f *fakeOracle) SuggestFolder(ctx context.Context, subject string, folders []string) (oracle.FolderSuggestion, error) {
	return f.folder, f.folderErr
}

func (f *fakeOracle) CheckSimilarity(ctx context.Context, a, b string) (oracle.SimilarityResult, error) {
	f.simCalls++
	return f.similar, f.similarErr
}

func testConfig(root string) *config.Config {
	cfg := &config.Config{}
	cfg.KnowledgeBase.RootPath = root
	cfg.FileProcessing.SupportedExtensions = []string{".txt", ".md"}
	cfg.FileProcessing.MaxFilenameLength = 200
	cfg.FileProcessing.VersionFormat = "simple"
	cfg.FileProcessing.DateFormat = "20060102"
	cfg.DateExtraction.Priority = []string{"content", "modification", "current"}
	cfg.Defaults.InitialVersion = "v1.0"
	cfg.Defaults.FallbackSubject = "untitled"
	return cfg
}

func newTestProcessor(t *testing.T, root string, orc oracle.Oracle) *Processor {
	t.Helper()
	if orc == nil {
		orc = &fakeOracle{}
	}
	return New(testConfig(root), rules.Defaults(), reader.DefaultRegistry(), orc)
}

func writeKB(t *testing.T, root string, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func writeDoc(t *testing.T, dir, name, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestPlanRuleBasedPlacement(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "技术方案", "DevOps运维"), 0o755))

	p := newTestProcessor(t, root, nil)
	src := writeDoc(t, t.TempDir(), "运维部署方案.txt", "部署说明\n日期: 2024-03-15\n正文内容")

	plan, err := p.Plan(context.Background(), src)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, plan.ID)
	assert.Equal(t, "运维部署方案", plan.Subject)
	assert.Equal(t, "20240315", plan.Date)
	assert.Equal(t, models.DateSourceContent, plan.DateSource)
	assert.Equal(t, "v1.0", plan.Version.String())
	assert.Equal(t, "运维部署方案_20240315_v1.0.txt", plan.NewName)
	assert.Equal(t, "技术方案/DevOps运维", plan.TargetFolder)
	assert.False(t, plan.CreateFolder)
	assert.Equal(t, filepath.Join(root, "技术方案", "DevOps运维", plan.NewName), plan.TargetPath)
	assert.Empty(t, plan.Warning)
}

func TestPlanUsesOracleSubject(t *testing.T) {
	root := t.TempDir()
	orc := &fakeOracle{
		enabled: true,
		subject: oracle.SubjectResult{Subject: "微服务架构设计", Confidence: 0.9},
	}
	p := newTestProcessor(t, root, orc)
	src := writeDoc(t, t.TempDir(), "draft-final-v2 (1).txt", "一些正文")

	plan, err := p.Plan(context.Background(), src)
	require.NoError(t, err)

	assert.Equal(t, 1, orc.subjectCalls)
	assert.Equal(t, "微服务架构设计", plan.Subject)
}

func TestPlanFallsBackToStemOnOracleError(t *testing.T) {
	root := t.TempDir()
	orc := &fakeOracle{enabled: true, subjectErr: assert.AnError}
	p := newTestProcessor(t, root, orc)
	src := writeDoc(t, t.TempDir(), "季度总结.txt", "正文")

	plan, err := p.Plan(context.Background(), src)
	require.NoError(t, err)

	assert.Equal(t, "季度总结", plan.Subject)
}

func TestPlanPrefersMarkdownTitleOverStem(t *testing.T) {
	root := t.TempDir()
	p := newTestProcessor(t, root, nil)
	src := writeDoc(t, t.TempDir(), "download(3).md", "# 数据库迁移方案\n\n正文")

	plan, err := p.Plan(context.Background(), src)
	require.NoError(t, err)

	assert.Equal(t, "数据库迁移方案", plan.Subject)
}

func TestPlanWarnsWhenTargetExists(t *testing.T) {
	root := t.TempDir()
	// Single-letter tokens yield no version-scan keywords, so the plan
	// cannot sidestep the collision by bumping the version.
	writeKB(t, root, "文档/A B C_20240315_v1.0.txt", "old")

	p := newTestProcessor(t, root, nil)
	src := writeDoc(t, t.TempDir(), "A B C.txt", "日期: 2024-03-15")

	plan, err := p.Plan(context.Background(), src)
	require.NoError(t, err)

	assert.Equal(t, "文档", plan.TargetFolder)
	assert.NotEmpty(t, plan.Warning)
}

func TestPlanRejectsUnsupportedFile(t *testing.T) {
	p := newTestProcessor(t, t.TempDir(), nil)
	src := writeDoc(t, t.TempDir(), "image.png", "binary-ish")

	_, err := p.Plan(context.Background(), src)
	assert.Error(t, err)
}

func TestExecuteMovesAndCreatesFolder(t *testing.T) {
	root := t.TempDir()
	p := newTestProcessor(t, root, nil)
	src := writeDoc(t, t.TempDir(), "Q3 Outlook.txt", "plain notes")

	plan, err := p.Plan(context.Background(), src)
	require.NoError(t, err)
	require.True(t, plan.CreateFolder)

	res := p.Execute(plan)
	require.NoError(t, res.Err)

	assert.NoFileExists(t, src)
	assert.FileExists(t, plan.TargetPath)

	// The freshly created folder is visible to the next catalog scan.
	folders, err := p.KnowledgeBase().Scan()
	require.NoError(t, err)
	assert.Contains(t, folders, plan.TargetFolder)
}

func TestExecuteBacksUpExistingTarget(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "技术方案", "DevOps运维"), 0o755))

	p := newTestProcessor(t, root, nil)
	src := writeDoc(t, t.TempDir(), "运维部署方案.txt", "new body\n日期: 2024-03-15")

	plan, err := p.Plan(context.Background(), src)
	require.NoError(t, err)
	writeKB(t, root, "技术方案/DevOps运维/"+plan.NewName, "old body")

	res := p.Execute(plan)
	require.NoError(t, res.Err)
	require.NotEmpty(t, res.BackupPath)
	assert.Contains(t, filepath.Base(res.BackupPath), "_backup_")

	oldData, err := os.ReadFile(res.BackupPath)
	require.NoError(t, err)
	assert.Equal(t, "old body", string(oldData))

	newData, err := os.ReadFile(plan.TargetPath)
	require.NoError(t, err)
	assert.Contains(t, string(newData), "new body")
}

func TestDetermineVersionIncrementsPastArchive(t *testing.T) {
	root := t.TempDir()
	writeKB(t, root, "技术/项目计划_20240101_v1.2.txt", "earlier revision")

	p := newTestProcessor(t, root, nil)
	src := writeDoc(t, t.TempDir(), "项目计划.txt", "更新后的内容")

	plan, err := p.Plan(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, "v1.3", plan.Version.String())
}

func TestDetermineVersionStartsFreshWithoutRelatedFiles(t *testing.T) {
	root := t.TempDir()
	writeKB(t, root, "技术/完全不同的文档_v3.0.txt", "unrelated")

	p := newTestProcessor(t, root, nil)
	src := writeDoc(t, t.TempDir(), "项目计划.txt", "内容")

	plan, err := p.Plan(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, "v1.0", plan.Version.String())
}

func TestDetermineVersionRespectsSimilarityVeto(t *testing.T) {
	root := t.TempDir()
	writeKB(t, root, "技术/项目计划_v2.0.txt", "同名但不同主题")

	orc := &fakeOracle{
		enabled: true,
		subject: oracle.SubjectResult{Subject: "项目计划"},
		similar: oracle.SimilarityResult{IsSimilar: false},
	}
	p := newTestProcessor(t, root, orc)
	src := writeDoc(t, t.TempDir(), "项目计划.txt", "新文档")

	plan, err := p.Plan(context.Background(), src)
	require.NoError(t, err)

	assert.Equal(t, 1, orc.simCalls)
	assert.Equal(t, "v1.0", plan.Version.String())
}

func TestDetermineVersionAcceptsSimilarityConfirmation(t *testing.T) {
	root := t.TempDir()
	writeKB(t, root, "技术/项目计划_v2.0.txt", "同一文档的旧版")

	orc := &fakeOracle{
		enabled: true,
		subject: oracle.SubjectResult{Subject: "项目计划"},
		similar: oracle.SimilarityResult{IsSimilar: true, Score: 0.9},
	}
	p := newTestProcessor(t, root, orc)
	src := writeDoc(t, t.TempDir(), "项目计划.txt", "新版本")

	plan, err := p.Plan(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, "v2.1", plan.Version.String())
}

func TestProcessOneWritesStructure(t *testing.T) {
	root := t.TempDir()
	p := newTestProcessor(t, root, nil)
	src := writeDoc(t, t.TempDir(), "会议纪要整理.txt", "日期: 2024-03-15")

	res, err := p.ProcessOne(context.Background(), src)
	require.NoError(t, err)

	assert.FileExists(t, res.TargetPath)
	assert.FileExists(t, filepath.Join(root, "structure.md"))
}

func TestEnsureInboxWritesReadme(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "inbox")
	require.NoError(t, EnsureInbox(dir))
	assert.FileExists(t, filepath.Join(dir, "README.md"))

	// Idempotent.
	require.NoError(t, EnsureInbox(dir))
}

func TestListPendingFiltersInbox(t *testing.T) {
	dir := t.TempDir()
	p := newTestProcessor(t, t.TempDir(), nil)

	writeDoc(t, dir, "b.txt", "x")
	writeDoc(t, dir, "a.md", "x")
	writeDoc(t, dir, "README.md", "ignored")
	writeDoc(t, dir, ".hidden.txt", "ignored")
	writeDoc(t, dir, "photo.png", "ignored")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0o755))

	paths, err := p.ListPending(dir)
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(dir, "a.md"),
		filepath.Join(dir, "b.txt"),
	}, paths)
}
