// Package dates extracts a best-effort date for a document from its content,
// its file timestamps, or the clock, with a confidence score per source.
package dates

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"archivist/internal/models"
)

// Recognized in-content date patterns, in precedence order. Confidence is
// fixed per pattern shape.
type datePattern struct {
	re         *regexp.Regexp
	confidence float64
	parse      func(groups []string) (time.Time, bool)
}

var patterns = []datePattern{
	{
		// YYYY-MM-DD and YYYY/MM/DD
		re:         regexp.MustCompile(`(\d{4})[/-](\d{1,2})[/-](\d{1,2})`),
		confidence: 0.9,
		parse:      parseYMD(0, 1, 2),
	},
	{
		// YYYY年MM月DD日
		re:         regexp.MustCompile(`(\d{4})年(\d{1,2})月(\d{1,2})日`),
		confidence: 0.9,
		parse:      parseYMD(0, 1, 2),
	},
	{
		// MM/DD/YYYY
		re:         regexp.MustCompile(`(\d{1,2})[/-](\d{1,2})[/-](\d{4})`),
		confidence: 0.7,
		parse:      parseYMD(2, 0, 1),
	},
	{
		// DD.MM.YYYY
		re:         regexp.MustCompile(`(\d{1,2})\.(\d{1,2})\.(\d{4})`),
		confidence: 0.7,
		parse:      parseYMD(2, 1, 0),
	},
	{
		// YYYYMMDD
		re:         regexp.MustCompile(`(\d{8})`),
		confidence: 0.8,
		parse: func(groups []string) (time.Time, bool) {
			s := groups[0]
			return makeDate(s[:4], s[4:6], s[6:8])
		},
	},
}

// Lines carrying one of these markers get a confidence bonus for any date
// found on the same line.
var dateKeywords = []string{
	"日期", "时间", "创建时间", "修改时间", "撰写时间",
	"会议时间", "报告时间", "记录时间", "发布时间",
	"date", "created", "updated", "meeting time",
}

const (
	keywordBonus     = 0.3
	contentScanLimit = 1000
	creationConf     = 0.7
	modificationConf = 0.6
	currentConf      = 0.5
	lastResortConf   = 0.1
)

func parseYMD(yi, mi, di int) func([]string) (time.Time, bool) {
	return func(groups []string) (time.Time, bool) {
		return makeDate(groups[yi], groups[mi], groups[di])
	}
}

// makeDate builds a calendar-valid date or reports failure. time.Date
// normalizes out-of-range components, so the result is checked against the
// inputs.
func makeDate(ys, ms, ds string) (time.Time, bool) {
	y, _ := strconv.Atoi(ys)
	m, _ := strconv.Atoi(ms)
	d, _ := strconv.Atoi(ds)
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	if t.Year() != y || int(t.Month()) != m || t.Day() != d {
		return time.Time{}, false
	}
	return t, true
}

// Extractor resolves document dates using a configured source priority and
// output layout.
type Extractor struct {
	layout   string
	priority []models.DateSource
	now      func() time.Time
}

// New builds an extractor. priority entries are the models.DateSource names;
// unknown entries are skipped at extraction time.
func New(layout string, priority []string) *Extractor {
	srcs := make([]models.DateSource, 0, len(priority))
	for _, p := range priority {
		srcs = append(srcs, models.DateSource(p))
	}
	if len(srcs) == 0 {
		srcs = []models.DateSource{
			models.DateSourceContent,
			models.DateSourceCreation,
			models.DateSourceModification,
			models.DateSourceCurrent,
		}
	}
	return &Extractor{layout: layout, priority: srcs, now: time.Now}
}

// Extract never fails: it walks the configured sources in priority order and
// stops at the first one producing a date. If every source comes up empty
// the current date is used with last-resort confidence.
func (e *Extractor) Extract(doc *models.NormalizedDocument) models.DateExtractionResult {
	for _, src := range e.priority {
		var res models.DateExtractionResult
		switch src {
		case models.DateSourceContent:
			res = e.fromContent(doc.Content)
		case models.DateSourceCreation:
			res = e.fromTimestamp(doc.CreationTime, creationConf)
		case models.DateSourceModification:
			res = e.fromTimestamp(doc.ModificationTime, modificationConf)
		case models.DateSourceCurrent:
			res = e.fromCurrent()
		default:
			log.Debugf("unknown date source %q in priority list", src)
			continue
		}
		if res.Date != "" {
			res.Source = src
			return res
		}
	}

	res := e.fromCurrent()
	res.Source = models.DateSourceFallback
	res.Confidence = lastResortConf
	return res
}

// Validate reports whether s parses under the extractor's output layout.
func (e *Extractor) Validate(s string) bool {
	_, err := time.Parse(e.layout, s)
	return err == nil
}

// Format renders t under the extractor's output layout.
func (e *Extractor) Format(t time.Time) string {
	return t.Format(e.layout)
}

type match struct {
	t    time.Time
	conf float64
	raw  string
}

func (e *Extractor) fromContent(content string) models.DateExtractionResult {
	if content == "" {
		return models.DateExtractionResult{}
	}

	var best *match
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		hasKeyword := lineHasKeyword(line)
		for _, m := range findDates(line) {
			conf := m.conf
			if hasKeyword {
				conf += keywordBonus
			}
			if conf > 1.0 {
				conf = 1.0
			}
			if best == nil || conf > best.conf {
				best = &match{t: m.t, conf: conf, raw: m.raw}
			}
		}
	}

	// No keyword-adjacent date anywhere: scan the head of the document and
	// take the strongest match there.
	if best == nil {
		head := content
		if len(head) > contentScanLimit {
			head = head[:contentScanLimit]
		}
		if ms := findDates(head); len(ms) > 0 {
			best = &ms[0]
		}
	}

	if best == nil {
		return models.DateExtractionResult{}
	}
	return models.DateExtractionResult{
		Date:       best.t.Format(e.layout),
		Confidence: best.conf,
		RawMatch:   best.raw,
	}
}

func lineHasKeyword(line string) bool {
	lower := strings.ToLower(line)
	for _, kw := range dateKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// findDates returns every parseable date in text, strongest pattern first.
func findDates(text string) []match {
	var out []match
	for _, p := range patterns {
		for _, groups := range p.re.FindAllStringSubmatch(text, -1) {
			t, ok := p.parse(groups[1:])
			if !ok {
				continue
			}
			out = append(out, match{t: t, conf: p.confidence, raw: groups[0]})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].conf > out[j].conf })
	return out
}

func (e *Extractor) fromTimestamp(t time.Time, conf float64) models.DateExtractionResult {
	if t.IsZero() {
		return models.DateExtractionResult{}
	}
	return models.DateExtractionResult{
		Date:       t.Format(e.layout),
		Confidence: conf,
		RawMatch:   t.Format(time.RFC3339),
	}
}

func (e *Extractor) fromCurrent() models.DateExtractionResult {
	now := e.now()
	return models.DateExtractionResult{
		Date:       now.Format(e.layout),
		Source:     models.DateSourceCurrent,
		Confidence: currentConf,
		RawMatch:   now.Format(time.RFC3339),
	}
}
