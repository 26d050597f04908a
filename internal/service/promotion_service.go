package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/sekolah-go-api/internal/apperr"
	"github.com/noah-isme/sekolah-go-api/internal/dto"
	"github.com/noah-isme/sekolah-go-api/internal/models"
	"github.com/noah-isme/sekolah-go-api/internal/observability"
	"github.com/noah-isme/sekolah-go-api/internal/repository"
)

// PromotionService moves batches of students between classes.
type PromotionService interface {
	Promote(ctx context.Context, actor Actor, req dto.PromotionRequest) (dto.PromotionResponse, error)
	History(ctx context.Context, schoolID, studentID uint) ([]dto.PromotionHistoryItem, error)
}

type promotionService struct {
	store     *repository.Store
	validator *validator.Validate
	activity  ActivityService
	cache     *ReportCache
	logger    zerolog.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

// NewPromotionService constructs the promotion service.
func NewPromotionService(store *repository.Store, validate *validator.Validate, activity ActivityService, cache *ReportCache, logger zerolog.Logger) PromotionService {
	return &promotionService{
		store:     store,
		validator: validate,
		activity:  activity,
		cache:     cache,
		logger:    logger.With().Str("component", "promotion_service").Logger(),
		tracer:    otel.Tracer("github.com/noah-isme/sekolah-go-api/internal/service/promotion"),
		now:       time.Now,
	}
}

type promotionTarget struct {
	classID      *uint
	sectionID    *uint
	academicYear string
	notes        string
	promotedBy   uint
}

// Promote runs the whole batch in one transaction. Each student runs behind
// its own savepoint: a student that cannot be promoted is rolled back to it,
// reported and skipped. Failures outside the per-student step (savepoints,
// the batch audit row) roll back every student of the batch.
func (s *promotionService) Promote(ctx context.Context, actor Actor, req dto.PromotionRequest) (dto.PromotionResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.PromotionResponse{}, err
	}
	if !req.ToClassID.IsSet() {
		return dto.PromotionResponse{}, apperr.Validation("to_class_id is required")
	}

	target := promotionTarget{
		academicYear: strings.TrimSpace(req.ToAcademicYear),
		notes:        sanitizeText(req.Notes),
		promotedBy:   actor.UserID,
	}
	if req.ToClassID.Vacant {
		if req.ToSectionID != nil {
			return dto.PromotionResponse{}, apperr.Validation("to_section_id must be empty for a vacant target")
		}
	} else {
		if target.academicYear == "" {
			return dto.PromotionResponse{}, apperr.Validation("to_academic_year is required")
		}
		classID := req.ToClassID.ClassID
		target.classID = &classID
		target.sectionID = req.ToSectionID
		if err := validatePlacement(ctx, s.store.Classes, actor.SchoolID, target.classID, target.sectionID); err != nil {
			return dto.PromotionResponse{}, err
		}
	}

	ids := uniqueIDs(req.StudentIDs)
	spanCtx, span := s.tracer.Start(ctx, "promotion.promote", trace.WithAttributes(
		attribute.Int64("school.id", int64(actor.SchoolID)),
		attribute.Int("promotion.batch_size", len(ids)),
		attribute.Bool("promotion.vacant", req.ToClassID.Vacant),
	))
	defer span.End()

	response := dto.PromotionResponse{
		Promoted: make([]dto.PromotedStudent, 0, len(ids)),
		Errors:   make([]dto.PromotionError, 0),
	}

	err := s.store.Transaction(spanCtx, func(tx *repository.Store) error {
		for _, id := range ids {
			savepoint := fmt.Sprintf("promote_%d", id)
			if err := tx.SavePoint(savepoint); err != nil {
				return err
			}

			promoted, err := s.promoteOne(spanCtx, tx, actor.SchoolID, id, target)
			if err != nil {
				if rollbackErr := tx.RollbackTo(savepoint); rollbackErr != nil {
					return errors.Join(err, rollbackErr)
				}
				response.Errors = append(response.Errors, s.itemFailure(spanCtx, id, err))
				continue
			}
			response.Promoted = append(response.Promoted, promoted)
		}

		response.PromotedCount = len(response.Promoted)
		// The audit row is part of the batch: losing it aborts every student.
		return s.recordBatch(spanCtx, tx, actor, req, response)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "promotion aborted")
		observability.Promotions().WithLabelValues("aborted").Add(float64(len(ids)))
		return dto.PromotionResponse{}, apperr.Internal("promotion aborted, no students were changed", err)
	}

	observability.Promotions().WithLabelValues("promoted").Add(float64(response.PromotedCount))
	observability.Promotions().WithLabelValues("skipped").Add(float64(len(response.Errors)))
	if response.PromotedCount > 0 {
		s.cache.Invalidate(spanCtx, actor.SchoolID)
	}

	return response, nil
}

// itemFailure turns a per-student error into a reported entry. Expected
// failures keep their reason; anything else is logged and reported generically.
func (s *promotionService) itemFailure(ctx context.Context, id uint, err error) dto.PromotionError {
	var itemErr apperr.ItemError
	if errors.As(err, &itemErr) {
		return dto.PromotionError{StudentID: itemErr.ID, Error: itemErr.Reason}
	}
	trace.SpanFromContext(ctx).RecordError(err)
	s.logger.Error().Err(err).Uint("student_id", id).Msg("student promotion failed")
	return dto.PromotionError{StudentID: id, Error: "failed to promote student"}
}

func (s *promotionService) recordBatch(ctx context.Context, tx *repository.Store, actor Actor, req dto.PromotionRequest, response dto.PromotionResponse) error {
	if s.activity == nil {
		return nil
	}
	_, err := s.activity.Within(tx).Record(ctx, ActivityEntry{
		Actor:      actor,
		Action:     "student.promoted",
		EntityType: "promotion",
		Metadata: map[string]interface{}{
			"promoted": response.PromotedCount,
			"skipped":  len(response.Errors),
			"vacant":   req.ToClassID.Vacant,
		},
	})
	return err
}

func (s *promotionService) promoteOne(ctx context.Context, tx *repository.Store, schoolID, id uint, target promotionTarget) (dto.PromotedStudent, error) {
	student, err := tx.Students.GetByID(ctx, schoolID, id)
	if err != nil {
		if isNotFound(err) {
			return dto.PromotedStudent{}, apperr.ItemError{ID: id, Reason: "student not found"}
		}
		return dto.PromotedStudent{}, err
	}
	if student.IsDeleted() {
		return dto.PromotedStudent{}, apperr.ItemError{ID: id, Reason: "student is deleted"}
	}

	academicYear := target.academicYear
	if academicYear == "" {
		academicYear = student.AcademicYear
	}

	record := models.StudentPromotion{
		SchoolID:         schoolID,
		StudentID:        student.ID,
		FromClassID:      student.ClassID,
		FromSectionID:    student.SectionID,
		FromAcademicYear: student.AcademicYear,
		ToClassID:        target.classID,
		ToSectionID:      target.sectionID,
		ToAcademicYear:   academicYear,
		PromotedBy:       target.promotedBy,
		Notes:            target.notes,
		PromotedAt:       s.now().UTC(),
	}
	if err := tx.Promotions.Append(ctx, &record); err != nil {
		return dto.PromotedStudent{}, err
	}

	status := models.StudentStatusActive
	if target.classID == nil {
		status = models.StudentStatusUnassigned
	}
	updates := map[string]interface{}{
		"class_id":      target.classID,
		"section_id":    target.sectionID,
		"academic_year": academicYear,
		"status":        status,
	}
	classChanged := !sameUint(student.ClassID, target.classID)
	if classChanged || !sameUint(student.SectionID, target.sectionID) {
		updates["roll_number"] = nil
	}
	if _, err := tx.Students.Update(ctx, schoolID, student.ID, updates); err != nil {
		return dto.PromotedStudent{}, err
	}

	var cleared int64
	if classChanged {
		cleared, err = tx.Fees.DeleteByStudent(ctx, schoolID, student.ID)
		if err != nil {
			return dto.PromotedStudent{}, err
		}
	}

	return dto.PromotedStudent{
		StudentID:     student.ID,
		FromClassID:   student.ClassID,
		FromSectionID: student.SectionID,
		ToClassID:     target.classID,
		ToSectionID:   target.sectionID,
		FeesCleared:   cleared,
	}, nil
}

func (s *promotionService) History(ctx context.Context, schoolID, studentID uint) ([]dto.PromotionHistoryItem, error) {
	if _, err := s.store.Students.GetByID(ctx, schoolID, studentID); err != nil {
		if isNotFound(err) {
			return nil, apperr.NotFound("student not found")
		}
		return nil, err
	}

	records, err := s.store.Promotions.History(ctx, schoolID, studentID)
	if err != nil {
		return nil, err
	}

	items := make([]dto.PromotionHistoryItem, 0, len(records))
	for _, record := range records {
		items = append(items, dto.NewPromotionHistoryItem(record))
	}
	return items, nil
}
