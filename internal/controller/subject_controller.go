package controller

import (
	"errors"
	"strconv"

	"exam_bank_backend/internal/service"
	"exam_bank_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type SubjectController struct {
	SubjectService *service.SubjectService
}

func NewSubjectController(subjectService *service.SubjectService) *SubjectController {
	return &SubjectController{SubjectService: subjectService}
}

// List 과목 목록 조회
// @Summary 과목 목록 조회 (시험 수 포함)
// @Tags subjects
// @Produce json
// @Param search query string false "과목명 검색어"
// @Param page query int false "페이지 번호"
// @Param limit query int false "페이지 크기"
// @Success 200 {object} util.Response
// @Router /subjects [get]
func (ctl *SubjectController) List(c *gin.Context) {
	search := c.Query("search")
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	items, total, err := ctl.SubjectService.List(search, page, limit)
	if err != nil {
		util.LogInternalError(c, err)
		return
	}

	util.Success(c, util.PageResponse{
		List:  items,
		Total: total,
		Page:  page,
		Limit: limit,
	})
}

// Detail 과목 상세 조회
// @Summary 과목 상세 조회 (시험 목록 포함)
// @Tags subjects
// @Produce json
// @Param id path int true "과목 ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /subjects/{id} [get]
func (ctl *SubjectController) Detail(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		util.BadRequest(c, "유효하지 않은 과목 ID입니다")
		return
	}

	detail, err := ctl.SubjectService.Detail(uint(id))
	if err != nil {
		if errors.Is(err, util.ErrSubjectNotFound) {
			util.NotFound(c, util.ErrSubjectNotFound.Error())
			return
		}
		util.LogInternalError(c, err)
		return
	}

	util.Success(c, detail)
}

// Exams 과목별 시험 목록 조회
// @Summary 과목의 시험 목록 조회 (최신순)
// @Tags subjects
// @Produce json
// @Param id path int true "과목 ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /subjects/{id}/exams [get]
func (ctl *SubjectController) Exams(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		util.BadRequest(c, "유효하지 않은 과목 ID입니다")
		return
	}

	exams, err := ctl.SubjectService.ExamsBySubject(uint(id))
	if err != nil {
		if errors.Is(err, util.ErrSubjectNotFound) {
			util.NotFound(c, util.ErrSubjectNotFound.Error())
			return
		}
		util.LogInternalError(c, err)
		return
	}

	util.Success(c, exams)
}
