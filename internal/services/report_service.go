package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/SAP-F-2025/attempt-engine/internal/models"
)

const (
	sheetSummary    = "Summary"
	sheetSubjects   = "Subjects"
	sheetTimeDist   = "Time Distribution"
	sheetNavigation = "Navigation"
)

type reportService struct {
	logger *slog.Logger
}

func NewReportService(logger *slog.Logger) ReportService {
	return &reportService{logger: logger}
}

func (s *reportService) Export(ctx context.Context, paper *models.TestPaper, result *SubmitResult, w io.Writer) error {
	f, err := s.BuildWorkbook(ctx, paper, result)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func (s *reportService) BuildWorkbook(ctx context.Context, paper *models.TestPaper, result *SubmitResult) (*excelize.File, error) {
	if paper == nil || result == nil || result.Submission == nil {
		return nil, fmt.Errorf("paper and submit result are required")
	}
	if result.Score == nil || result.Analysis == nil {
		return nil, fmt.Errorf("submit result is incomplete: score and analysis are required")
	}

	s.logger.Info("Building report workbook",
		"submission_id", result.Submission.ID,
		"test_id", paper.ID)

	f := excelize.NewFile()

	if err := s.writeSummarySheet(f, paper, result); err != nil {
		f.Close()
		return nil, err
	}
	if err := s.writeSubjectsSheet(f, result.Analysis); err != nil {
		f.Close()
		return nil, err
	}
	if err := s.writeTimeSheet(f, result.Analysis); err != nil {
		f.Close()
		return nil, err
	}
	if err := s.writeNavigationSheet(f, result.Submission); err != nil {
		f.Close()
		return nil, err
	}

	return f, nil
}

// ===== SHEET BUILDERS =====

func (s *reportService) writeSummarySheet(f *excelize.File, paper *models.TestPaper, result *SubmitResult) error {
	if err := f.SetSheetName("Sheet1", sheetSummary); err != nil {
		return fmt.Errorf("failed to rename summary sheet: %w", err)
	}
	if err := f.SetColWidth(sheetSummary, "A", "A", 26); err != nil {
		return err
	}
	if err := f.SetColWidth(sheetSummary, "B", "B", 36); err != nil {
		return err
	}

	sub := result.Submission
	score := result.Score

	rows := []struct {
		key   string
		value interface{}
	}{
		{"Test", paper.ID},
		{"Title", paper.Title},
		{"Candidate", sub.CandidateID},
		{"Attempt", sub.AttemptID},
		{"Submission", sub.ID},
		{"Started At", sub.StartTime.Format(time.RFC3339)},
		{"Submitted At", sub.EndTime.Format(time.RFC3339)},
		{"Total Time (s)", sub.TotalTimeTaken.Seconds()},
		{"Score", score.Score},
		{"Total Possible Marks", score.TotalPossibleMarks},
		{"Percentage", score.Percentage},
		{"Correct", score.CorrectCount},
		{"Incorrect", score.IncorrectCount},
		{"Unattempted", score.UnattemptedCount},
	}

	counts := sub.QuestionStates.Counts()
	for _, state := range models.AllQuestionStates() {
		rows = append(rows, struct {
			key   string
			value interface{}
		}{fmt.Sprintf("State %s", state), counts[state]})
	}

	if sub.TimeCheck != nil {
		rows = append(rows, struct {
			key   string
			value interface{}
		}{"Time Check", fmt.Sprintf("accrued %.0fs exceeds elapsed %.0fs (tolerance %.0fs)",
			sub.TimeCheck.AccruedTime.Seconds(),
			sub.TimeCheck.ElapsedTime.Seconds(),
			sub.TimeCheck.Tolerance.Seconds())})
	}

	for i, row := range rows {
		if err := f.SetCellValue(sheetSummary, fmt.Sprintf("A%d", i+1), row.key); err != nil {
			return err
		}
		if err := f.SetCellValue(sheetSummary, fmt.Sprintf("B%d", i+1), row.value); err != nil {
			return err
		}
	}

	return s.boldRange(f, sheetSummary, "A1", fmt.Sprintf("A%d", len(rows)))
}

func (s *reportService) writeSubjectsSheet(f *excelize.File, analysis *models.AnalysisReport) error {
	if _, err := f.NewSheet(sheetSubjects); err != nil {
		return fmt.Errorf("failed to create subjects sheet: %w", err)
	}

	headers := []string{"Subject", "Total", "Attempted", "Correct", "Time Spent (s)"}
	for col, h := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheetSubjects, cell, h); err != nil {
			return err
		}
	}

	subjects := make([]string, 0, len(analysis.SubjectWise))
	for subject := range analysis.SubjectWise {
		subjects = append(subjects, subject)
	}
	sort.Strings(subjects)

	row := 2
	for _, subject := range subjects {
		stats := analysis.SubjectWise[subject]
		if err := writeStatsRow(f, sheetSubjects, row, subject, stats); err != nil {
			return err
		}
		row++
	}

	// Difficulty rollup below the subject table.
	row++
	if err := f.SetCellValue(sheetSubjects, fmt.Sprintf("A%d", row), "Difficulty"); err != nil {
		return err
	}
	row++

	difficulties := make([]string, 0, len(analysis.DifficultyWise))
	for difficulty := range analysis.DifficultyWise {
		difficulties = append(difficulties, string(difficulty))
	}
	sort.Strings(difficulties)

	for _, difficulty := range difficulties {
		stats := analysis.DifficultyWise[models.DifficultyLevel(difficulty)]
		if err := writeStatsRow(f, sheetSubjects, row, difficulty, stats); err != nil {
			return err
		}
		row++
	}

	return s.boldRange(f, sheetSubjects, "A1", "E1")
}

func (s *reportService) writeTimeSheet(f *excelize.File, analysis *models.AnalysisReport) error {
	if _, err := f.NewSheet(sheetTimeDist); err != nil {
		return fmt.Errorf("failed to create time sheet: %w", err)
	}

	dist := analysis.TimeDistribution
	rows := []struct {
		bucket string
		count  int
	}{
		{"Under 30s", dist.Under30s},
		{"30s to 60s", dist.Sec30To60},
		{"60s to 120s", dist.Sec60To120},
		{"Over 120s", dist.Over120s},
		{"Attempted Total", dist.Total()},
	}

	if err := f.SetCellValue(sheetTimeDist, "A1", "Bucket"); err != nil {
		return err
	}
	if err := f.SetCellValue(sheetTimeDist, "B1", "Questions"); err != nil {
		return err
	}
	for i, row := range rows {
		if err := f.SetCellValue(sheetTimeDist, fmt.Sprintf("A%d", i+2), row.bucket); err != nil {
			return err
		}
		if err := f.SetCellValue(sheetTimeDist, fmt.Sprintf("B%d", i+2), row.count); err != nil {
			return err
		}
	}

	return s.boldRange(f, sheetTimeDist, "A1", "B1")
}

func (s *reportService) writeNavigationSheet(f *excelize.File, sub *models.Submission) error {
	if _, err := f.NewSheet(sheetNavigation); err != nil {
		return fmt.Errorf("failed to create navigation sheet: %w", err)
	}

	headers := []string{"Seq", "Timestamp", "Question", "Action", "Since Last (s)"}
	for col, h := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheetNavigation, cell, h); err != nil {
			return err
		}
	}

	for i, event := range sub.NavigationHistory {
		row := i + 2
		values := []interface{}{
			event.Seq,
			event.Timestamp.Format(time.RFC3339),
			string(event.QuestionID),
			string(event.Action),
			event.TimeSinceLast.Seconds(),
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheetNavigation, cell, v); err != nil {
				return err
			}
		}
	}

	return s.boldRange(f, sheetNavigation, "A1", "E1")
}

func (s *reportService) boldRange(f *excelize.File, sheet, from, to string) error {
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	return f.SetCellStyle(sheet, from, to, style)
}

func writeStatsRow(f *excelize.File, sheet string, row int, label string, stats models.GroupStats) error {
	values := []interface{}{label, stats.Total, stats.Attempted, stats.Correct, stats.TimeSpent.Seconds()}
	for col, v := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return err
		}
	}
	return nil
}
