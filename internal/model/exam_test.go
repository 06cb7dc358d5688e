package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExamTypeForSemester(t *testing.T) {
	cases := []struct {
		semester string
		want     int
	}{
		{"하계", ExamTypeSummer},
		{"동계", ExamTypeWinter},
		{"1학기", ExamTypeFirstTermFinal},
		{"2학기", ExamTypeSecondTermFinal},
		{"2024 동계 계절수업", ExamTypeWinter},
		{"", ExamTypeSummer},
		{"봄", ExamTypeSummer},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, ExamTypeForSemester(tc.semester), "semester=%q", tc.semester)
	}
}
