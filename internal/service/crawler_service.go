package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"exam_bank_backend/internal/config"
	"exam_bank_backend/internal/util"
	"exam_bank_backend/pkg/logger"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

// ExamMetadata holds whatever the first table of the page yielded; zero
// values mean the pattern did not match and a default applies downstream.
type ExamMetadata struct {
	Subject        string
	Year           int
	Semester       string
	Grade          string
	TotalQuestions int
}

type ExtractedChoice struct {
	Number int
	Text   string
}

// ExtractedQuestion is the transient parse result for one question row.
// CorrectAnswer stays nil until the answer-key merge assigns a digit.
type ExtractedQuestion struct {
	Number        int
	QuestionText  string
	Choices       []ExtractedChoice
	Images        []string
	CorrectAnswer *int
	Explanation   string
}

type ExtractedExam struct {
	Metadata  ExamMetadata
	Questions []ExtractedQuestion

	// RawHTML keeps the fetched page for the optional snapshot archive.
	RawHTML []byte
}

var (
	yearRe      = regexp.MustCompile(`(\d{4})\s*학년도`)
	semesterRe  = regexp.MustCompile(`(\S+)\s*학기`)
	gradeRe     = regexp.MustCompile(`(\d+|N)\s*학년`)
	itemsRe     = regexp.MustCompile(`(\d+)\s*문항`)
	subjectRe   = regexp.MustCompile(`\S+학(개론)?$`)
	answerRunRe = regexp.MustCompile(`\d{30,}`)
)

// CrawlerService fetches one exam page and parses it into an ExtractedExam.
// Fetch and parse failures are deliberately indistinguishable to callers:
// both surface as ErrCrawlFailed.
type CrawlerService struct {
	mu     sync.RWMutex
	cfg    config.CrawlerConfig
	client *http.Client
}

func NewCrawlerService(cfg *config.Config) *CrawlerService {
	crawler := cfg.Crawler
	crawler.ApplyDefaults()
	return &CrawlerService{
		cfg:    crawler,
		client: &http.Client{Timeout: crawler.FetchTimeout},
	}
}

// UpdateConfig applies reloaded crawler settings to subsequent fetches.
func (s *CrawlerService) UpdateConfig(crawler config.CrawlerConfig) {
	crawler.ApplyDefaults()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = crawler
	s.client = &http.Client{Timeout: crawler.FetchTimeout}
}

func (s *CrawlerService) Config() config.CrawlerConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// CrawlExam fetches the page at url and parses it.
func (s *CrawlerService) CrawlExam(ctx context.Context, url string) (*ExtractedExam, error) {
	s.mu.RLock()
	client, userAgent := s.client, s.cfg.UserAgent
	s.mu.RUnlock()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrCrawlFailed, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		logger.Log.Error("exam page fetch failed", zap.String("url", url), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", util.ErrCrawlFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.Log.Error("exam page fetch returned bad status", zap.String("url", url), zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("%w: unexpected status %d", util.ErrCrawlFailed, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrCrawlFailed, err)
	}

	return s.ParseExam(body)
}

// ParseExam parses an already-fetched page. Exposed separately so the page
// body can come from anywhere (tests, archived snapshots).
func (s *CrawlerService) ParseExam(page []byte) (*ExtractedExam, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrCrawlFailed, err)
	}

	metadata := extractMetadata(doc)
	questions := extractQuestions(doc)
	if len(questions) == 0 {
		return nil, fmt.Errorf("%w: 문제를 찾을 수 없습니다", util.ErrCrawlFailed)
	}

	mergeAnswerKey(doc, questions)

	return &ExtractedExam{
		Metadata:  metadata,
		Questions: questions,
		RawHTML:   page,
	}, nil
}

// leadingInt converts the leading digit run of s, so lenient page markers
// like "12." or "3)" still parse. No digits yields 0.
func leadingInt(s string) int {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	n, _ := strconv.Atoi(s[:end])
	return n
}

// extractMetadata applies independent best-effort patterns against the
// flattened text of the first table. Every miss leaves the field at its zero
// value.
func extractMetadata(doc *goquery.Document) ExamMetadata {
	var md ExamMetadata

	firstTable := doc.Find("table").First()
	text := firstTable.Text()

	if m := yearRe.FindStringSubmatch(text); m != nil {
		md.Year, _ = strconv.Atoi(m[1])
	}
	if m := semesterRe.FindStringSubmatch(text); m != nil {
		md.Semester = m[1]
	}
	if m := gradeRe.FindStringSubmatch(text); m != nil {
		md.Grade = m[1]
	}
	if m := itemsRe.FindStringSubmatch(text); m != nil {
		md.TotalQuestions, _ = strconv.Atoi(m[1])
	}

	// 과목명: the length bound keeps long free-text cells from matching.
	firstTable.Find("tr").Each(func(_ int, row *goquery.Selection) {
		row.Find("td").Each(func(_ int, cell *goquery.Selection) {
			cellText := strings.TrimSpace(cell.Text())
			if subjectRe.MatchString(cellText) && utf8.RuneCountInString(cellText) < 30 {
				md.Subject = cellText
			}
		})
	})

	return md
}

// extractQuestions walks every question row in document order. Question
// numbers are taken verbatim from the page. A question with zero choices is
// still emitted; data-quality handling is the caller's call.
func extractQuestions(doc *goquery.Document) []ExtractedQuestion {
	var questions []ExtractedQuestion

	doc.Find(".alla6QuestionTr").Each(func(_ int, qRow *goquery.Selection) {
		td := qRow.Find("td").First()
		if td.Length() == 0 {
			return
		}

		numSpan := td.Find(".alla6QuestionNo")
		if numSpan.Length() == 0 {
			return
		}

		number := leadingInt(numSpan.Text())

		// The number marker is removed so the remaining cell text is the body.
		numSpan.Remove()
		questionText := strings.TrimSpace(td.Text())

		var images []string
		td.Find("img").Each(func(_ int, img *goquery.Selection) {
			if src, ok := img.Attr("src"); ok && src != "" {
				images = append(images, src)
			}
		})

		q := ExtractedQuestion{
			Number:       number,
			QuestionText: questionText,
			Images:       images,
		}

	siblings:
		for row := qRow.Next(); row.Length() > 0; row = row.Next() {
			switch {
			case row.HasClass("alla6AnswerTr"):
				label := row.Find("label").First()
				if label.Length() == 0 {
					continue
				}
				input := label.Find("input").First()
				value, _ := input.Attr("value")
				input.Remove()
				choiceText := strings.TrimSpace(label.Text())

				num := leadingInt(value)
				if num == 0 {
					num = len(q.Choices) + 1
				}
				q.Choices = append(q.Choices, ExtractedChoice{Number: num, Text: choiceText})

			case row.HasClass("alla6SolveTr"):
				solveTd := row.Find("td").First()
				explanation := strings.TrimSpace(strings.Replace(strings.TrimSpace(solveTd.Text()), "해설)", "", 1))
				if explanation != "" {
					q.Explanation = explanation
				}
				// An explanation row ends the question block.
				break siblings

			case row.HasClass("alla6QuestionTr"):
				break siblings
			}
		}

		questions = append(questions, q)
	})

	return questions
}

// mergeAnswerKey assigns answer digits by position in extraction order, not
// by question number. The answer table is the first one containing the
// "문제답안" marker; a run shorter than the question list leaves the tail
// unanswered. Digits are not validated against each question's choice count.
func mergeAnswerKey(doc *goquery.Document, questions []ExtractedQuestion) {
	var digits string
	doc.Find("table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		text := table.Text()
		if !strings.Contains(text, "문제답안") {
			return true
		}
		digits = answerRunRe.FindString(text)
		return false
	})
	if digits == "" {
		return
	}

	for i := range questions {
		if i >= len(digits) {
			break
		}
		answer := int(digits[i] - '0')
		questions[i].CorrectAnswer = &answer
	}
}
