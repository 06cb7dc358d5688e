package service

import (
	"errors"
	"strings"
	"testing"

	"exam_bank_backend/internal/util"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func docFromHTML(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

const metadataTable = `
<table>
  <tr><td>간호학</td><td>3학년</td></tr>
  <tr><td>2024학년도 하계학기 시험</td><td>30문항</td></tr>
</table>`

func TestExtractMetadata(t *testing.T) {
	doc := docFromHTML(t, metadataTable)

	md := extractMetadata(doc)

	assert.Equal(t, "간호학", md.Subject)
	assert.Equal(t, 2024, md.Year)
	assert.Equal(t, "하계", md.Semester)
	assert.Equal(t, "3", md.Grade)
	assert.Equal(t, 30, md.TotalQuestions)
}

func TestExtractMetadataMissingFields(t *testing.T) {
	doc := docFromHTML(t, `<table><tr><td>안내문</td></tr></table>`)

	md := extractMetadata(doc)

	assert.Empty(t, md.Subject)
	assert.Zero(t, md.Year)
	assert.Empty(t, md.Semester)
	assert.Empty(t, md.Grade)
	assert.Zero(t, md.TotalQuestions)
}

func TestExtractMetadataLongCellIsNotSubject(t *testing.T) {
	long := strings.Repeat("아주긴설명문장입니다", 5) + "간호학"
	doc := docFromHTML(t, `<table><tr><td>`+long+`</td></tr></table>`)

	md := extractMetadata(doc)

	assert.Empty(t, md.Subject)
}

const questionRows = `
<table>
  <tr class="alla6QuestionTr"><td><span class="alla6QuestionNo">1</span>다음 중 옳은 것은?</td></tr>
  <tr class="alla6AnswerTr"><td><label><input type="radio" value="1">첫 번째 보기</label></td></tr>
  <tr class="alla6AnswerTr"><td><label><input type="radio" value="2">두 번째 보기</label></td></tr>
  <tr class="alla6AnswerTr"><td><label><input type="radio" value="3">세 번째 보기</label></td></tr>
  <tr class="alla6SolveTr"><td>해설) 두 번째 보기가 옳다.</td></tr>
  <tr class="alla6QuestionTr"><td><span class="alla6QuestionNo">2</span>틀린 것을 고르시오. <img src="/img/q2.png"></td></tr>
  <tr class="alla6AnswerTr"><td><label><input type="radio">보기 하나</label></td></tr>
  <tr class="alla6AnswerTr"><td><label><input type="radio">보기 둘</label></td></tr>
  <tr class="alla6QuestionTr"><td><span class="alla6QuestionNo">3</span>마지막 문제</td></tr>
</table>`

func TestExtractQuestions(t *testing.T) {
	doc := docFromHTML(t, questionRows)

	questions := extractQuestions(doc)
	require.Len(t, questions, 3)

	q1 := questions[0]
	assert.Equal(t, 1, q1.Number)
	assert.Equal(t, "다음 중 옳은 것은?", q1.QuestionText)
	require.Len(t, q1.Choices, 3)
	assert.Equal(t, 1, q1.Choices[0].Number)
	assert.Equal(t, "첫 번째 보기", q1.Choices[0].Text)
	assert.Equal(t, 3, q1.Choices[2].Number)
	assert.Equal(t, "두 번째 보기가 옳다.", q1.Explanation)

	// 라디오에 value가 없으면 위치 기반으로 번호를 매긴다
	q2 := questions[1]
	assert.Equal(t, 2, q2.Number)
	require.Len(t, q2.Choices, 2)
	assert.Equal(t, 1, q2.Choices[0].Number)
	assert.Equal(t, 2, q2.Choices[1].Number)
	require.Len(t, q2.Images, 1)
	assert.Equal(t, "/img/q2.png", q2.Images[0])

	// 보기 없는 문제도 그대로 수집된다
	q3 := questions[2]
	assert.Equal(t, 3, q3.Number)
	assert.Empty(t, q3.Choices)
}

func TestExtractQuestionsLenientNumberMarkers(t *testing.T) {
	doc := docFromHTML(t, `
<table>
  <tr class="alla6QuestionTr"><td><span class="alla6QuestionNo">12.</span>느슨한 번호 표기</td></tr>
  <tr class="alla6AnswerTr"><td><label><input type="radio" value="2)">괄호 붙은 보기</label></td></tr>
  <tr class="alla6AnswerTr"><td><label><input type="radio" value="x3">숫자로 시작하지 않는 값</label></td></tr>
</table>`)

	questions := extractQuestions(doc)
	require.Len(t, questions, 1)

	// 선행 숫자만 취한다; 숫자로 시작하지 않으면 위치 기반으로 대체한다
	assert.Equal(t, 12, questions[0].Number)
	require.Len(t, questions[0].Choices, 2)
	assert.Equal(t, 2, questions[0].Choices[0].Number)
	assert.Equal(t, 2, questions[0].Choices[1].Number)
}

func TestLeadingInt(t *testing.T) {
	cases := []struct {
		input string
		want  int
	}{
		{"12", 12},
		{"12.", 12},
		{" 3) ", 3},
		{"x3", 0},
		{"", 0},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, leadingInt(tc.input), "input=%q", tc.input)
	}
}

func TestMergeAnswerKey(t *testing.T) {
	run := "121" + strings.Repeat("3", 27)
	doc := docFromHTML(t, questionRows+`
<table><tr><td>문제답안</td></tr><tr><td>`+run+`</td></tr></table>
<table><tr><td>문제답안</td></tr><tr><td>`+strings.Repeat("4", 30)+`</td></tr></table>`)

	questions := extractQuestions(doc)
	require.Len(t, questions, 3)

	mergeAnswerKey(doc, questions)

	// 문제 번호가 아니라 추출 순서대로 자릿수를 배정한다
	require.NotNil(t, questions[0].CorrectAnswer)
	assert.Equal(t, 1, *questions[0].CorrectAnswer)
	require.NotNil(t, questions[1].CorrectAnswer)
	assert.Equal(t, 2, *questions[1].CorrectAnswer)
	require.NotNil(t, questions[2].CorrectAnswer)
	assert.Equal(t, 1, *questions[2].CorrectAnswer)
}

func TestMergeAnswerKeyShortRun(t *testing.T) {
	doc := docFromHTML(t, questionRows+`
<table><tr><td>문제답안</td></tr><tr><td>12132</td></tr></table>`)

	questions := extractQuestions(doc)
	mergeAnswerKey(doc, questions)

	// 30자리 미만의 숫자 열은 답안 런으로 인정하지 않는다
	for _, q := range questions {
		assert.Nil(t, q.CorrectAnswer)
	}
}

func TestMergeAnswerKeyNoMarkerTable(t *testing.T) {
	doc := docFromHTML(t, questionRows)

	questions := extractQuestions(doc)
	mergeAnswerKey(doc, questions)

	for _, q := range questions {
		assert.Nil(t, q.CorrectAnswer)
	}
}

func TestParseExamNoQuestions(t *testing.T) {
	svc := NewCrawlerService(testConfig())

	_, err := svc.ParseExam([]byte(metadataTable))

	require.Error(t, err)
	assert.True(t, errors.Is(err, util.ErrCrawlFailed))
}

func TestParseExamFullPage(t *testing.T) {
	svc := NewCrawlerService(testConfig())

	page := metadataTable + questionRows + `
<table><tr><td>문제답안</td></tr><tr><td>` + strings.Repeat("2", 30) + `</td></tr></table>`

	extracted, err := svc.ParseExam([]byte(page))
	require.NoError(t, err)

	assert.Equal(t, "간호학", extracted.Metadata.Subject)
	require.Len(t, extracted.Questions, 3)
	require.NotNil(t, extracted.Questions[0].CorrectAnswer)
	assert.Equal(t, 2, *extracted.Questions[0].CorrectAnswer)
	assert.Equal(t, []byte(page), extracted.RawHTML)
}
