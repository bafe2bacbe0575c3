// Package rules holds the classification rule catalog: named categories with
// keywords, target folder patterns and priorities, loaded once per run from
// config/classification_rules.yaml (or built-in defaults) and treated as
// read-only afterwards.
package rules

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Category is one named classification rule. Lower Priority wins ties.
type Category struct {
	Name           string
	Keywords       []string
	TargetPatterns []string
	Priority       int
}

// Strategy tunes how the folder resolution engine applies the catalog.
type Strategy struct {
	SemanticThreshold float64 `yaml:"semantic_threshold"`
	AllowNewFolders   bool    `yaml:"allow_new_folders"`
	ForceExisting     bool    `yaml:"force_existing"`
}

// Catalog is the loaded rule set. Categories keep the file's declaration
// order so that resolution stays deterministic.
type Catalog struct {
	Categories      []Category
	FallbackFolders []string
	Strategy        Strategy
}

type categoryYAML struct {
	Keywords       []string `yaml:"keywords"`
	TargetPatterns []string `yaml:"target_patterns"`
	Priority       int      `yaml:"priority"`
}

type fileYAML struct {
	ClassificationRules yaml.Node `yaml:"classification_rules"`
	FallbackFolders     []string  `yaml:"fallback_folders"`
	Strategy            Strategy  `yaml:"strategy"`
}

// Load reads the rule file at path. A missing file yields the built-in
// default catalog; a malformed file is an error.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Warnf("rule file %s not found, using built-in defaults", path)
			return Defaults(), nil
		}
		return nil, fmt.Errorf("read rule file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a rule file, preserving category declaration order.
func Parse(data []byte) (*Catalog, error) {
	var f fileYAML
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse rule file: %w", err)
	}

	cat := &Catalog{
		FallbackFolders: f.FallbackFolders,
		Strategy:        f.Strategy,
	}
	if cat.Strategy.SemanticThreshold == 0 {
		cat.Strategy.SemanticThreshold = 0.3
	}
	if len(cat.FallbackFolders) == 0 {
		cat.FallbackFolders = Defaults().FallbackFolders
	}

	// classification_rules is a mapping node; walking its content pairs
	// keeps the order the file declares.
	if f.ClassificationRules.Kind == yaml.MappingNode {
		content := f.ClassificationRules.Content
		for i := 0; i+1 < len(content); i += 2 {
			name := content[i].Value
			var c categoryYAML
			if err := content[i+1].Decode(&c); err != nil {
				return nil, fmt.Errorf("parse category %q: %w", name, err)
			}
			cat.Categories = append(cat.Categories, Category{
				Name:           name,
				Keywords:       c.Keywords,
				TargetPatterns: c.TargetPatterns,
				Priority:       c.Priority,
			})
		}
	}
	if len(cat.Categories) == 0 {
		return nil, fmt.Errorf("rule file defines no classification_rules")
	}
	return cat, nil
}

// Defaults is the built-in rule set used when no rule file is present.
func Defaults() *Catalog {
	return &Catalog{
		Categories: []Category{
			{
				Name:           "技术开发",
				Keywords:       []string{"技术", "开发", "系统", "软件", "架构", "tech", "dev"},
				TargetPatterns: []string{"技术", "开发"},
				Priority:       1,
			},
			{
				Name:           "运维管理",
				Keywords:       []string{"运维", "部署", "监控", "服务器", "devops", "ops"},
				TargetPatterns: []string{"运维", "部署", "devops"},
				Priority:       2,
			},
			{
				Name:           "项目管理",
				Keywords:       []string{"项目", "管理", "计划", "project", "plan"},
				TargetPatterns: []string{"项目", "管理"},
				Priority:       3,
			},
			{
				Name:           "业务流程",
				Keywords:       []string{"业务", "流程", "规范", "需求", "business"},
				TargetPatterns: []string{"业务", "流程"},
				Priority:       4,
			},
			{
				Name:           "人力资源",
				Keywords:       []string{"人力", "招聘", "培训", "面试", "员工", "hr"},
				TargetPatterns: []string{"人力资源", "人事", "培训"},
				Priority:       5,
			},
			{
				Name:           "财务管理",
				Keywords:       []string{"财务", "预算", "成本", "费用", "finance"},
				TargetPatterns: []string{"财务", "报告"},
				Priority:       6,
			},
			{
				Name:           "会议沟通",
				Keywords:       []string{"会议", "纪要", "讨论", "meeting"},
				TargetPatterns: []string{"会议", "沟通"},
				Priority:       7,
			},
			{
				Name:           "学习成长",
				Keywords:       []string{"学习", "成长", "知识", "教育", "读书"},
				TargetPatterns: []string{"学习", "成长", "知识"},
				Priority:       8,
			},
		},
		FallbackFolders: []string{
			"文档", "资料", "其他", "未分类", "通用",
			"documents", "files", "misc", "uncategorized",
		},
		Strategy: Strategy{
			SemanticThreshold: 0.3,
			AllowNewFolders:   false,
			ForceExisting:     true,
		},
	}
}

// GenericRule is a broad keyword grouping used only by forced resolution,
// independent of the configured categories.
type GenericRule struct {
	Keywords       []string
	TargetPatterns []string
}

// GenericRules is the ordered generic classification table applied when all
// earlier stages failed and the document still has to land somewhere.
func GenericRules() []GenericRule {
	return []GenericRule{
		{
			Keywords:       []string{"技术", "开发", "系统", "软件", "代码", "程序", "工程", "tech", "dev"},
			TargetPatterns: []string{"技术", "开发", "工程", "tech"},
		},
		{
			Keywords:       []string{"管理", "项目", "计划", "规划", "策略", "management", "project"},
			TargetPatterns: []string{"项目", "管理", "project"},
		},
		{
			Keywords:       []string{"业务", "流程", "规范", "标准", "需求", "business"},
			TargetPatterns: []string{"业务", "流程", "business"},
		},
		{
			Keywords:       []string{"人事", "人力", "员工", "招聘", "培训", "面试", "hr"},
			TargetPatterns: []string{"人力资源", "人事", "hr", "培训"},
		},
		{
			Keywords:       []string{"财务", "预算", "成本", "费用", "报告", "finance"},
			TargetPatterns: []string{"财务", "finance", "报告"},
		},
		{
			Keywords:       []string{"会议", "纪要", "讨论", "沟通", "meeting"},
			TargetPatterns: []string{"会议", "meeting", "沟通"},
		},
		{
			Keywords:       []string{"学习", "成长", "知识", "教育", "哲学", "思考"},
			TargetPatterns: []string{"学习", "成长", "知识", "教育"},
		},
	}
}
