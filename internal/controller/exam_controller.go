package controller

import (
	"errors"
	"strconv"

	"exam_bank_backend/internal/service"
	"exam_bank_backend/internal/util"
	"exam_bank_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
)

type ExamController struct {
	QuestionService *service.QuestionService
	ExamService     *service.ExamService
}

func NewExamController(questionService *service.QuestionService, examService *service.ExamService) *ExamController {
	return &ExamController{
		QuestionService: questionService,
		ExamService:     examService,
	}
}

type crawlRequest struct {
	URL        string `json:"url"`
	ForceRetry bool   `json:"forceRetry"`
}

type batchCrawlRequest struct {
	URLs       []string `json:"urls"`
	ForceRetry bool     `json:"forceRetry"`
}

type batchCrawlItem struct {
	URL    string                  `json:"url"`
	Result *service.SaveExamResult `json:"result,omitempty"`
	Error  string                  `json:"error,omitempty"`
}

// CrawlAndSave 시험 페이지 크롤링 및 저장
// @Summary 시험 페이지를 크롤링하여 저장
// @Tags exams
// @Accept json
// @Produce json
// @Param request body crawlRequest true "크롤링 요청"
// @Success 201 {object} util.Response
// @Failure 400 {object} util.Response
// @Failure 409 {object} util.Response
// @Router /crawl [post]
func (ctl *ExamController) CrawlAndSave(c *gin.Context) {
	var req crawlRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.URL == "" {
		util.BadRequest(c, "URL이 필요합니다")
		return
	}

	result, err := ctl.QuestionService.SaveExamFromURL(c.Request.Context(), req.URL, req.ForceRetry)
	if err != nil {
		handleSaveError(c, err)
		return
	}

	monitoring.CrawlCounter.WithLabelValues("success").Inc()
	util.Created(c, result)
}

// CrawlBatch 여러 시험 페이지 일괄 크롤링
// @Summary 여러 시험 페이지를 순차 크롤링하여 저장
// @Tags exams
// @Accept json
// @Produce json
// @Param request body batchCrawlRequest true "일괄 크롤링 요청"
// @Success 200 {object} util.Response
// @Failure 400 {object} util.Response
// @Router /crawl/batch [post]
func (ctl *ExamController) CrawlBatch(c *gin.Context) {
	var req batchCrawlRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.URLs) == 0 {
		util.BadRequest(c, "URL 목록이 필요합니다")
		return
	}

	// Pages are fetched one at a time; the write path serializes on the exam
	// key anyway, so parallel fetches would only hammer the source site.
	items := make([]batchCrawlItem, len(req.URLs))
	for i, url := range req.URLs {
		items[i].URL = url
		result, err := ctl.QuestionService.SaveExamFromURL(c.Request.Context(), url, req.ForceRetry)
		if err != nil {
			monitoring.CrawlCounter.WithLabelValues("failure").Inc()
			items[i].Error = err.Error()
			continue
		}
		monitoring.CrawlCounter.WithLabelValues("success").Inc()
		items[i].Result = result
	}

	util.Success(c, items)
}

// GetExamQuestions 시험 문제 조회
// @Summary 시험 문제 목록 조회 (study 모드는 정답 포함)
// @Tags exams
// @Produce json
// @Param id path int true "시험 ID"
// @Param mode query string false "study 모드"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /exams/{id}/questions [get]
func (ctl *ExamController) GetExamQuestions(c *gin.Context) {
	examID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		util.BadRequest(c, "유효하지 않은 시험 ID입니다")
		return
	}

	includeAnswers := c.Query("mode") == "study"
	resp, err := ctl.ExamService.GetExamQuestions(c.Request.Context(), uint(examID), includeAnswers)
	if err != nil {
		if errors.Is(err, util.ErrExamNotFound) {
			util.NotFound(c, util.ErrExamNotFound.Error())
			return
		}
		util.LogInternalError(c, err)
		return
	}

	util.Success(c, resp)
}

type submitRequest struct {
	Answers *[]service.SubmittedAnswer `json:"answers"`
}

// SubmitExam 답안 제출 및 채점
// @Summary 답안을 제출하여 채점 결과 조회
// @Tags exams
// @Accept json
// @Produce json
// @Param id path int true "시험 ID"
// @Param request body submitRequest true "답안 제출"
// @Success 200 {object} util.Response
// @Failure 400 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /exams/{id}/submit [post]
func (ctl *ExamController) SubmitExam(c *gin.Context) {
	examID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		util.BadRequest(c, "유효하지 않은 시험 ID입니다")
		return
	}

	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Answers == nil {
		util.BadRequest(c, "답안이 필요합니다 (배열 형식)")
		return
	}

	result, err := ctl.ExamService.SubmitExam(c.Request.Context(), uint(examID), *req.Answers)
	if err != nil {
		if errors.Is(err, util.ErrExamNotFound) {
			util.NotFound(c, util.ErrExamNotFound.Error())
			return
		}
		util.LogInternalError(c, err)
		return
	}

	util.Success(c, result)
}

// handleSaveError maps ingestion failures to HTTP statuses: conflicts for the
// dedup errors, 500 with the message for crawl failures.
func handleSaveError(c *gin.Context, err error) {
	monitoring.CrawlCounter.WithLabelValues("failure").Inc()

	var existsErr *util.ExamExistsError
	if errors.As(err, &existsErr) {
		util.Conflict(c, existsErr.Error())
		return
	}

	var partialErr *util.PartialExamError
	if errors.As(err, &partialErr) {
		util.Conflict(c, partialErr.Error())
		return
	}

	if errors.Is(err, util.ErrCrawlFailed) {
		util.Error(c, 500, err.Error())
		return
	}

	util.LogInternalError(c, err)
}
