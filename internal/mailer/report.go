// Package mailer builds and delivers the quiz results email.
package mailer

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strconv"
	"strings"

	"github.com/singhsimarjot13/Aptuquest-2025/internal/model"
	"github.com/singhsimarjot13/Aptuquest-2025/internal/quiz"
)

//go:embed templates/*.html
var templatesFS embed.FS

var reportTmpl = template.Must(template.ParseFS(templatesFS, "templates/*.html"))

// AnswerDelimiter joins multiple submitted or correct answers in the report.
const AnswerDelimiter = ", "

type reportQuestion struct {
	ID      int64
	Text    string
	Given   string
	Answer  string
	Correct bool
}

type reportCategory struct {
	Name      string
	Questions []reportQuestion
}

type reportData struct {
	Name       string
	Score      int
	Total      int
	Percentage string
	Categories []reportCategory
}

// BuildResultsEmail renders the HTML results report from the persisted served
// questions, answers, and score. Correctness is recomputed with the same
// matching rule the quiz scorer uses, so the report always agrees with the
// stored score.
func BuildResultsEmail(p *model.Participant) (string, error) {
	if len(p.Questions) == 0 {
		return "", fmt.Errorf("participant %d has no served questions", p.ID)
	}

	data := reportData{
		Name:  p.Name,
		Score: p.Score,
		Total: len(p.Questions),
	}
	data.Percentage = fmt.Sprintf("%.1f", float64(p.Score)/float64(data.Total)*100)

	// The served set is already grouped by category in serve order.
	var current *reportCategory
	for _, q := range p.Questions {
		if current == nil || current.Name != q.Category {
			data.Categories = append(data.Categories, reportCategory{Name: q.Category})
			current = &data.Categories[len(data.Categories)-1]
		}
		given := p.Answers[strconv.FormatInt(q.ID, 10)]
		givenText := "No answer"
		if len(given) > 0 {
			givenText = strings.Join(given, AnswerDelimiter)
		}
		current.Questions = append(current.Questions, reportQuestion{
			ID:      q.ID,
			Text:    q.Text,
			Given:   givenText,
			Answer:  strings.Join(q.Answer, AnswerDelimiter),
			Correct: quiz.Matches(q, given),
		})
	}

	var buf bytes.Buffer
	if err := reportTmpl.ExecuteTemplate(&buf, "results.html", data); err != nil {
		return "", fmt.Errorf("render results email: %w", err)
	}
	return buf.String(), nil
}
