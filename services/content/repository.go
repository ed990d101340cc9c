package content

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/NehaTanti-afk/Neha-Notes/services/logging"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrSubjectNotFound = errors.New("subject not found")
	ErrPaperNotFound   = errors.New("paper not found")
)

// listColumns leaves out question and answer bodies.
var listColumns = []string{"id", "subject_id", "title", "type", "year", "metadata", "created_at"}

type Repository struct {
	db     *gorm.DB
	logger *logging.Service
}

func NewRepository(db *gorm.DB, logger *logging.Service) *Repository {
	return &Repository{
		db:     db,
		logger: logger.Named("content"),
	}
}

func (r *Repository) ListSubjects(ctx context.Context) ([]Subject, error) {
	var subjects []Subject
	err := r.db.WithContext(ctx).
		Order("semester ASC").
		Order("code ASC").
		Find(&subjects).Error
	if err != nil {
		r.logger.Error("failed to list subjects", zap.Error(err))
		return nil, fmt.Errorf("failed to list subjects: %w", err)
	}
	return subjects, nil
}

// SubjectByCode matches codes case-insensitively; codes are stored upper-case.
func (r *Repository) SubjectByCode(ctx context.Context, code string) (*Subject, error) {
	var subject Subject
	err := r.db.WithContext(ctx).
		Where("code = ?", strings.ToUpper(strings.TrimSpace(code))).
		First(&subject).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubjectNotFound
		}
		return nil, fmt.Errorf("failed to load subject: %w", err)
	}
	return &subject, nil
}

// PapersForSubject lists papers newest year first, without their questions
// and answers.
func (r *Repository) PapersForSubject(ctx context.Context, subjectID string) ([]Paper, error) {
	var papers []Paper
	err := r.db.WithContext(ctx).
		Select(listColumns).
		Where("subject_id = ?", subjectID).
		Order("year DESC").
		Find(&papers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list papers: %w", err)
	}
	return papers, nil
}

func (r *Repository) Paper(ctx context.Context, subjectID, paperID string) (*Paper, error) {
	var paper Paper
	err := r.db.WithContext(ctx).
		Where("id = ? AND subject_id = ?", paperID, subjectID).
		First(&paper).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaperNotFound
		}
		return nil, fmt.Errorf("failed to load paper: %w", err)
	}
	return &paper, nil
}

// View loads a paper by subject code and gates it for the reader.
func (r *Repository) View(ctx context.Context, code, paperID string, signedIn bool) (*PaperView, error) {
	subject, err := r.SubjectByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	paper, err := r.Paper(ctx, subject.ID, paperID)
	if err != nil {
		return nil, err
	}

	return BuildView(paper, subject, signedIn), nil
}
