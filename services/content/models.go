package content

import (
	"time"
)

type PaperType string

const (
	PaperEndSem   PaperType = "end_sem"
	PaperMidSem1  PaperType = "mid_sem_1"
	PaperMidSem2  PaperType = "mid_sem_2"
	PaperPractice PaperType = "practice"
)

type QuestionType string

const (
	QuestionMCQ   QuestionType = "mcq"
	QuestionShort QuestionType = "short"
	QuestionLong  QuestionType = "long"
)

type Subject struct {
	ID            string      `json:"id" gorm:"primaryKey;size:36"`
	Code          string      `json:"code" gorm:"uniqueIndex;size:32;not null"`
	Name          string      `json:"name" gorm:"size:255;not null"`
	ShortName     string      `json:"short_name" gorm:"size:64"`
	Regulation    string      `json:"regulation" gorm:"size:32"`
	Semester      int         `json:"semester" gorm:"index"`
	Department    string      `json:"department" gorm:"size:255"`
	College       string      `json:"college" gorm:"size:255"`
	ExamPattern   ExamPattern `json:"exam_pattern" gorm:"serializer:json;type:text"`
	FeaturedUntil *time.Time  `json:"featured_until"`
	CreatedAt     time.Time   `json:"created_at"`
}

func (Subject) TableName() string {
	return "subjects"
}

type ExamPattern struct {
	Groups          []Group `json:"groups"`
	TotalMarks      float64 `json:"total_marks"`
	DurationMinutes int     `json:"duration_minutes"`
}

type Group struct {
	Name             string       `json:"name"`
	Label            string       `json:"label"`
	Instructions     string       `json:"instructions"`
	QuestionsCount   int          `json:"questions_count"`
	AttemptCount     int          `json:"attempt_count"`
	MarksPerQuestion float64      `json:"marks_per_question"`
	QuestionType     QuestionType `json:"question_type"`
}

// Paper holds questions and answers keyed by question key. Answers is nil
// when the paper has none or all of them were withheld.
type Paper struct {
	ID        string              `json:"id" gorm:"primaryKey;size:36"`
	SubjectID string              `json:"subject_id" gorm:"size:36;not null;index"`
	Title     string              `json:"title" gorm:"size:255;not null"`
	Type      PaperType           `json:"type" gorm:"size:16;not null"`
	Year      string              `json:"year" gorm:"size:16;index"`
	Questions map[string]Question `json:"questions,omitempty" gorm:"serializer:json;type:text"`
	Answers   map[string]Answer   `json:"answers" gorm:"serializer:json;type:text"`
	Metadata  PaperMetadata       `json:"metadata" gorm:"serializer:json;type:text"`
	CreatedAt time.Time           `json:"created_at"`
}

func (Paper) TableName() string {
	return "papers"
}

// Question fields other than Group, Number, Marks, CO and BL are empty for
// questions withheld from visitors.
type Question struct {
	Group     string      `json:"group"`
	Number    string      `json:"number"`
	Text      string      `json:"text,omitempty"`
	Marks     float64     `json:"marks"`
	CO        string      `json:"co,omitempty"`
	BL        string      `json:"bl,omitempty"`
	Options   []McqOption `json:"options,omitempty"`
	SubParts  []SubPart   `json:"sub_parts,omitempty"`
	IsPreview bool        `json:"is_preview,omitempty"`
}

type McqOption struct {
	Key  string `json:"key"`
	Text string `json:"text"`
}

type SubPart struct {
	Part  string  `json:"part"`
	Text  string  `json:"text"`
	Marks float64 `json:"marks"`
}

type Answer struct {
	QuestionNumber string   `json:"question_number"`
	Solution       string   `json:"solution"`
	CorrectOption  string   `json:"correct_option,omitempty"`
	KeyPoints      []string `json:"key_points,omitempty"`
}

type PaperMetadata struct {
	Difficulty     string   `json:"difficulty,omitempty"`
	ModulesCovered []string `json:"modules_covered,omitempty"`
}

func Models() []any {
	return []any{&Subject{}, &Paper{}}
}
