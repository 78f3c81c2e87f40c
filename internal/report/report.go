// Package report turns a snapshot of graded quizzes into the bucketed score
// distribution used by class reports.
package report

import (
	"fmt"
	"io"
	"sort"

	"github.com/xuri/excelize/v2"

	"github.com/noah-isme/gema-tutor-cli/internal/models"
)

// ScoreBucket is one fixed inclusive marks range and the number of graded
// quizzes that fell into it.
type ScoreBucket struct {
	Label string
	Lo    int
	Hi    int
	Count int
}

// ranges are fixed; a mark outside every range contributes to no bucket.
var ranges = []ScoreBucket{
	{Label: "0-2", Lo: 0, Hi: 2},
	{Label: "3-5", Lo: 3, Hi: 5},
	{Label: "6-8", Lo: 6, Hi: 8},
	{Label: "9-10", Lo: 9, Hi: 10},
}

// Graded filters the quizzes that have been scored.
func Graded(quizzes []models.Quiz) []models.Quiz {
	out := make([]models.Quiz, 0, len(quizzes))
	for _, quiz := range quizzes {
		if quiz.Graded() {
			out = append(out, quiz)
		}
	}
	return out
}

// Aggregate partitions graded quizzes into the fixed score ranges and
// returns the non-empty buckets in range order. Ungraded quizzes contribute
// nothing; so do marks that fall outside every range.
func Aggregate(quizzes []models.Quiz) []ScoreBucket {
	buckets := make([]ScoreBucket, len(ranges))
	copy(buckets, ranges)

	for _, quiz := range quizzes {
		if !quiz.Graded() {
			continue
		}
		mark := *quiz.Marks
		for i := range buckets {
			if mark >= buckets[i].Lo && mark <= buckets[i].Hi {
				buckets[i].Count++
				break
			}
		}
	}

	out := make([]ScoreBucket, 0, len(buckets))
	for _, bucket := range buckets {
		if bucket.Count > 0 {
			out = append(out, bucket)
		}
	}
	return out
}

// SortByMarks returns a copy of the graded set ordered ascending by marks.
// The sort is stable, so equal marks keep their original order.
func SortByMarks(quizzes []models.Quiz) []models.Quiz {
	out := make([]models.Quiz, len(quizzes))
	copy(out, quizzes)
	sort.SliceStable(out, func(i, j int) bool {
		return markOf(out[i]) < markOf(out[j])
	})
	return out
}

func markOf(q models.Quiz) int {
	if q.Marks == nil {
		return 0
	}
	return *q.Marks
}

// WriteXLSX exports the graded quizzes and their score distribution as a
// two-sheet workbook.
func WriteXLSX(w io.Writer, quizzes []models.Quiz) error {
	f := excelize.NewFile()
	defer f.Close()

	const scoresSheet = "Scores"
	if err := f.SetSheetName(f.GetSheetName(0), scoresSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	setRow := func(sheet string, row int, values ...any) error {
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		return f.SetSheetRow(sheet, cell, &values)
	}

	if err := setRow(scoresSheet, 1, "Student ID", "Username", "Marks"); err != nil {
		return err
	}
	graded := SortByMarks(Graded(quizzes))
	for i, quiz := range graded {
		if err := setRow(scoresSheet, i+2, quiz.StudentID, quiz.Username, *quiz.Marks); err != nil {
			return err
		}
	}

	const distSheet = "Distribution"
	if _, err := f.NewSheet(distSheet); err != nil {
		return fmt.Errorf("add sheet: %w", err)
	}
	if err := setRow(distSheet, 1, "Range", "Quizzes"); err != nil {
		return err
	}
	for i, bucket := range Aggregate(quizzes) {
		if err := setRow(distSheet, i+2, bucket.Label, bucket.Count); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
