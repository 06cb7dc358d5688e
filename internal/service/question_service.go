package service

import (
	"bytes"
	"context"
	"fmt"

	"exam_bank_backend/internal/config"
	"exam_bank_backend/internal/model"
	"exam_bank_backend/internal/repository"
	"exam_bank_backend/internal/util"
	"exam_bank_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Defaults for metadata the extractor could not recover.
const (
	defaultSubjectName = "과목명미상"
	defaultYear        = 2024
	defaultSemester    = "하계"
)

type SaveExamResult struct {
	ExamID        uint   `json:"examId"`
	Title         string `json:"title"`
	QuestionCount int    `json:"questionCount"`
}

// QuestionService is the single write path for exam data. Ingestions of the
// same exam key serialize inside one transaction; nothing else writes
// subject/exam/question/choice rows.
type QuestionService struct {
	Crawler     *CrawlerService
	SubjectRepo *repository.SubjectRepository
	ExamRepo    *repository.ExamRepository
	Storage     *StorageService
	Redis       *redis.Client
	Config      *config.Config
	DB          *gorm.DB
}

func NewQuestionService(
	crawler *CrawlerService,
	subjectRepo *repository.SubjectRepository,
	examRepo *repository.ExamRepository,
	storage *StorageService,
	rdb *redis.Client,
	cfg *config.Config,
	db *gorm.DB,
) *QuestionService {
	return &QuestionService{
		Crawler:     crawler,
		SubjectRepo: subjectRepo,
		ExamRepo:    examRepo,
		Storage:     storage,
		Redis:       rdb,
		Config:      cfg,
		DB:          db,
	}
}

// SaveExamFromURL crawls one page and persists it. forceRetry deletes a
// stale partial import before re-inserting.
func (s *QuestionService) SaveExamFromURL(ctx context.Context, url string, forceRetry bool) (*SaveExamResult, error) {
	extracted, err := s.Crawler.CrawlExam(ctx, url)
	if err != nil {
		return nil, err
	}

	result, err := s.SaveExam(ctx, extracted, forceRetry)
	if err != nil {
		return nil, err
	}

	if s.Storage != nil && s.Crawler.Config().SnapshotPages {
		s.archiveSnapshot(ctx, result.ExamID, extracted.RawHTML)
	}

	return result, nil
}

// SaveExam persists one extracted exam as a single all-or-nothing unit:
// subject upsert, duplicate/partial detection against the exam key, and the
// exam/question/choice inserts all commit or roll back together.
func (s *QuestionService) SaveExam(ctx context.Context, extracted *ExtractedExam, forceRetry bool) (*SaveExamResult, error) {
	md := extracted.Metadata

	subjectName := md.Subject
	if subjectName == "" {
		subjectName = defaultSubjectName
	}
	year := md.Year
	if year == 0 {
		year = defaultYear
	}
	semester := md.Semester
	if semester == "" {
		semester = defaultSemester
	}
	examType := model.ExamTypeForSemester(semester)

	title := fmt.Sprintf("%s %d학년도 %s학기", subjectName, year, semester)
	if md.Grade != "" {
		title += fmt.Sprintf(" (%s학년)", md.Grade)
	}

	crawlerCfg := s.Crawler.Config()
	txCtx, cancel := context.WithTimeout(ctx, crawlerCfg.TxTimeout)
	defer cancel()

	var result *SaveExamResult
	var deletedExamID uint

	err := s.DB.WithContext(txCtx).Transaction(func(tx *gorm.DB) error {
		subjectRepo := s.SubjectRepo.WithTx(tx)
		examRepo := s.ExamRepo.WithTx(tx)

		subject, err := subjectRepo.UpsertByName(subjectName)
		if err != nil {
			return err
		}

		// The lock wait gets its own, shorter bound than the transaction.
		lockCtx, cancelLock := context.WithTimeout(txCtx, crawlerCfg.TxMaxWait)
		existing, err := examRepo.FindByKeyForUpdate(lockCtx, subject.ID, year, examType)
		cancelLock()
		if err != nil {
			return err
		}

		if existing != nil {
			isPartial := len(existing.Questions) != len(extracted.Questions)
			switch {
			case isPartial && forceRetry:
				logger.Log.Warn("partially saved exam found, deleting before retry",
					zap.Uint("examId", existing.ID),
					zap.Int("storedQuestions", len(existing.Questions)),
					zap.Int("expectedQuestions", len(extracted.Questions)))
				if err := examRepo.DeleteExam(existing.ID); err != nil {
					return err
				}
				deletedExamID = existing.ID
			case isPartial:
				return &util.PartialExamError{
					ExamID:        existing.ID,
					Title:         existing.Title,
					StoredCount:   len(existing.Questions),
					ExpectedCount: len(extracted.Questions),
				}
			default:
				return &util.ExamExistsError{ExamID: existing.ID, Title: existing.Title}
			}
		}

		exam := &model.Exam{
			SubjectID:      subject.ID,
			Year:           year,
			ExamType:       examType,
			Title:          title,
			TotalQuestions: len(extracted.Questions),
		}
		if err := examRepo.CreateExam(exam); err != nil {
			return err
		}

		questions := make([]model.Question, len(extracted.Questions))
		for i, qd := range extracted.Questions {
			correct := 1
			if qd.CorrectAnswer != nil {
				correct = *qd.CorrectAnswer
			}
			var imageURL *string
			if len(qd.Images) > 0 {
				imageURL = &qd.Images[0]
			}
			questions[i] = model.Question{
				ExamID:           exam.ID,
				QuestionNumber:   qd.Number,
				QuestionText:     qd.QuestionText,
				QuestionImageURL: imageURL,
				CorrectAnswer:    correct,
			}
		}
		if err := examRepo.CreateQuestions(questions); err != nil {
			return err
		}

		var choices []model.Choice
		for i, qd := range extracted.Questions {
			for _, cd := range qd.Choices {
				choices = append(choices, model.Choice{
					QuestionID:   questions[i].ID,
					ChoiceNumber: cd.Number,
					ChoiceText:   cd.Text,
				})
			}
		}
		if len(choices) > 0 {
			if err := examRepo.CreateChoices(choices); err != nil {
				return err
			}
		}

		result = &SaveExamResult{
			ExamID:        exam.ID,
			Title:         exam.Title,
			QuestionCount: len(extracted.Questions),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Log.Info("exam saved",
		zap.Uint("examId", result.ExamID),
		zap.String("title", result.Title),
		zap.Int("questionCount", result.QuestionCount))

	// A forced retry replaced the exam; its cached question set is stale.
	if deletedExamID != 0 {
		s.invalidateExamCache(ctx, deletedExamID)
	}

	return result, nil
}

func (s *QuestionService) invalidateExamCache(ctx context.Context, examID uint) {
	if s.Redis == nil {
		return
	}
	keys := []string{
		examQuestionsCacheKey(examID, true),
		examQuestionsCacheKey(examID, false),
	}
	if err := s.Redis.Del(ctx, keys...).Err(); err != nil && err != redis.Nil {
		logger.Log.Warn("failed to invalidate exam cache", zap.Uint("examId", examID), zap.Error(err))
	}
}

// archiveSnapshot stores the raw crawled page, best effort, after commit.
func (s *QuestionService) archiveSnapshot(ctx context.Context, examID uint, page []byte) {
	name := fmt.Sprintf("snapshots/exam_%d.html", examID)
	if _, err := s.Storage.Upload(ctx, name, bytes.NewReader(page), int64(len(page)), "text/html; charset=utf-8"); err != nil {
		logger.Log.Warn("failed to archive crawled page", zap.Uint("examId", examID), zap.Error(err))
		return
	}
	logger.Log.Info("crawled page archived", zap.Uint("examId", examID), zap.String("object", name))
}
