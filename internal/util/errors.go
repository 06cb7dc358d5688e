package util

import (
	"errors"
	"fmt"
)

var (
	// ErrCrawlFailed covers both fetch and parse failures; callers cannot
	// distinguish the two.
	ErrCrawlFailed     = errors.New("크롤링 실패")
	ErrExamNotFound    = errors.New("시험을 찾을 수 없습니다")
	ErrSubjectNotFound = errors.New("과목을 찾을 수 없습니다")
)

// ExamExistsError is returned when a complete exam already exists for the
// same (subject, year, examType) key.
type ExamExistsError struct {
	ExamID uint
	Title  string
}

func (e *ExamExistsError) Error() string {
	return fmt.Sprintf("이미 존재하는 시험입니다: %s (ID: %d)", e.Title, e.ExamID)
}

// PartialExamError is returned when the stored question count does not match
// the incoming import and forceRetry was not requested.
type PartialExamError struct {
	ExamID        uint
	Title         string
	StoredCount   int
	ExpectedCount int
}

func (e *PartialExamError) Error() string {
	return fmt.Sprintf(
		"부분적으로 저장된 시험이 있습니다: %s (ID: %d, 저장된 문제: %d/%d)\n다시 시도하려면 forceRetry 옵션을 사용하세요.",
		e.Title, e.ExamID, e.StoredCount, e.ExpectedCount,
	)
}
