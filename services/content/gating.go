package content

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// RedactForVisitor withholds everything a signed-out visitor may not read.
// Preview questions pass through with their answers. Other questions keep
// only their group, number, marks, CO and BL, and lose their answers.
func RedactForVisitor(p *Paper) {
	if p.Answers != nil {
		kept := make(map[string]Answer)
		for key, answer := range p.Answers {
			if q, ok := p.Questions[key]; ok && q.IsPreview {
				kept[key] = answer
			}
		}
		if len(kept) == 0 {
			kept = nil
		}
		p.Answers = kept
	}

	for key, q := range p.Questions {
		if q.IsPreview {
			continue
		}
		p.Questions[key] = Question{
			Group:  q.Group,
			Number: q.Number,
			Marks:  q.Marks,
			CO:     q.CO,
			BL:     q.BL,
		}
	}
}

// GroupConfig maps group names to their configuration. Practice papers derive
// it from their own questions; other papers use the subject's exam pattern.
func GroupConfig(p *Paper, subject *Subject) map[string]Group {
	groups := make(map[string]Group)

	if p.Type != PaperPractice {
		for _, g := range subject.ExamPattern.Groups {
			groups[g.Name] = g
		}
		return groups
	}

	type tally struct {
		marks  float64
		count  int
		hasMCQ bool
	}
	tallies := make(map[string]*tally)
	for _, q := range p.Questions {
		t, ok := tallies[q.Group]
		if !ok {
			t = &tally{}
			tallies[q.Group] = t
		}
		t.marks += q.Marks
		t.count++
		if len(q.Options) > 0 {
			t.hasMCQ = true
		}
	}

	for name, t := range tallies {
		perQuestion := t.marks / float64(t.count)

		qt := QuestionShort
		switch {
		case t.hasMCQ:
			qt = QuestionMCQ
		case perQuestion >= 10:
			qt = QuestionLong
		}

		groups[name] = Group{
			Name:             name,
			Label:            groupLabel(name),
			Instructions:     fmt.Sprintf("Attempt all %d questions", t.count),
			QuestionsCount:   t.count,
			AttemptCount:     t.count,
			MarksPerQuestion: perQuestion,
			QuestionType:     qt,
		}
	}
	return groups
}

func groupLabel(name string) string {
	return "Group " + strings.ToUpper(name)
}

type Entry struct {
	Key      string   `json:"key"`
	Question Question `json:"question"`
	Answer   *Answer  `json:"answer"`
}

type Section struct {
	Group         Group    `json:"group"`
	Questions     []Entry  `json:"questions"`
	LockedNumbers []string `json:"locked_numbers"`
}

// PaperView is a paper as one reader sees it.
type PaperView struct {
	Subject  *Subject  `json:"subject"`
	Paper    *Paper    `json:"paper"`
	Sections []Section `json:"sections"`
	SignedIn bool      `json:"signed_in"`
}

// BuildView gates p for the reader and groups its questions into sections
// ordered by group name. p is modified in place for visitors.
func BuildView(p *Paper, subject *Subject, signedIn bool) *PaperView {
	if !signedIn {
		RedactForVisitor(p)
	}

	config := GroupConfig(p, subject)

	byGroup := make(map[string][]string)
	for key, q := range p.Questions {
		byGroup[q.Group] = append(byGroup[q.Group], key)
	}

	names := make([]string, 0, len(byGroup))
	for name := range byGroup {
		names = append(names, name)
	}
	sort.Strings(names)

	sections := make([]Section, 0, len(names))
	for _, name := range names {
		keys := byGroup[name]
		sort.Slice(keys, func(i, j int) bool { return questionKeyLess(keys[i], keys[j]) })

		group, ok := config[name]
		if !ok {
			group = Group{
				Name:           name,
				Label:          groupLabel(name),
				QuestionsCount: len(keys),
				AttemptCount:   len(keys),
				QuestionType:   QuestionShort,
			}
		}

		section := Section{Group: group, Questions: []Entry{}, LockedNumbers: []string{}}
		for _, key := range keys {
			q := p.Questions[key]
			if !signedIn && !q.IsPreview {
				section.LockedNumbers = append(section.LockedNumbers, q.Number)
				continue
			}

			entry := Entry{Key: key, Question: q}
			if answer, ok := p.Answers[key]; ok {
				entry.Answer = &answer
			}
			section.Questions = append(section.Questions, entry)
		}
		sections = append(sections, section)
	}

	return &PaperView{
		Subject:  subject,
		Paper:    p,
		Sections: sections,
		SignedIn: signedIn,
	}
}

// questionKeyLess orders numeric keys numerically and everything else lexically.
func questionKeyLess(a, b string) bool {
	an, aerr := strconv.Atoi(a)
	bn, berr := strconv.Atoi(b)
	if aerr == nil && berr == nil {
		return an < bn
	}
	return a < b
}
