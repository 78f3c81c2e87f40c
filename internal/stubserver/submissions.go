package stubserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-tutor-cli/internal/models"
)

type submitRequest struct {
	ProgramID    int    `json:"program_id"`
	UserID       int    `json:"user_id"`
	Code         string `json:"code"`
	LanguageID   int    `json:"language_id"`
	QuizLanguage string `json:"quiz_language"`
}

// submitCode fabricates a deterministic evaluation: code is "correct"
// unless it is empty or still carries a TODO marker. A correct submission
// gets a generated quiz whose answer key is stored alongside it.
func (s *Server) submitCode(c *fiber.Ctx) error {
	var req submitRequest
	if err := c.BodyParser(&req); err != nil {
		return sendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	program, err := s.store.ProgramByID(req.ProgramID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return sendError(c, fiber.StatusNotFound, "Program not found")
		}
		return sendError(c, fiber.StatusInternalServerError, "load program")
	}

	trimmed := strings.TrimSpace(req.Code)
	codeCorrect := trimmed != "" && !strings.Contains(strings.ToLower(trimmed), "todo")

	var codeErrors []models.CodeError
	if !codeCorrect {
		codeErrors = append(codeErrors, models.CodeError{
			ErrorType:     "IncompleteImplementation",
			Description:   "The submission does not implement the exercise yet.",
			IncorrectCode: firstLine(req.Code),
			CorrectCode:   firstLine(program.Code),
		})
	}

	questions, answerKey := generatedQuiz(program)

	results := []models.TestResult{
		{Stdin: "1 2", Stdout: pick(codeCorrect, "3", ""), Stderr: pick(codeCorrect, "", "no output"), CompileOutput: ""},
		{Stdin: "10 5", Stdout: pick(codeCorrect, "15", ""), Stderr: pick(codeCorrect, "", "no output"), CompileOutput: ""},
	}

	questionsJSON, _ := json.Marshal(questions)
	keyJSON, _ := json.Marshal(answerKey)
	quiz := Quiz{
		ProgramID: req.ProgramID,
		StudentID: req.UserID,
		ClassID:   program.ClassID,
		Questions: questionsJSON,
		AnswerKey: keyJSON,
	}
	if err := s.store.CreateQuiz(&quiz); err != nil {
		return sendError(c, fiber.StatusInternalServerError, "create quiz")
	}

	feedback, _ := json.Marshal(codeErrors)
	submission := Submission{
		ProgramID: req.ProgramID,
		StudentID: req.UserID,
		Code:      req.Code,
		HasError:  !codeCorrect,
		Feedback:  datatypes.JSON(feedback),
	}
	if err := s.store.CreateSubmission(&submission); err != nil {
		return sendError(c, fiber.StatusInternalServerError, "create submission")
	}

	return c.JSON(models.SubmissionResult{
		ID:      submission.ID,
		Results: results,
		Quiz: models.Evaluation{
			CodeCorrect: codeCorrect,
			CodeErrors:  codeErrors,
			Questions:   questions,
		},
		QuizID: quiz.ID,
	})
}

func (s *Server) submissionsForProgramUser(c *fiber.Ctx) error {
	programID, err := c.ParamsInt("pid")
	userID, err2 := c.ParamsInt("uid")
	if err != nil || err2 != nil {
		return sendError(c, fiber.StatusBadRequest, "invalid ids")
	}

	submissions, err := s.store.SubmissionsForProgramUser(programID, userID)
	if err != nil {
		return sendError(c, fiber.StatusInternalServerError, "list submissions")
	}

	out := make([]models.Submission, 0, len(submissions))
	for _, submission := range submissions {
		out = append(out, models.Submission{
			ID:        submission.ID,
			ProgramID: submission.ProgramID,
			StudentID: submission.StudentID,
			Code:      submission.Code,
			HasError:  submission.HasError,
			Feedback:  string(submission.Feedback),
		})
	}
	return c.JSON(out)
}

// generatedQuiz derives a fixed two-question quiz from the program. The
// correct option is always the first one listed in the key, not in the
// shuffled display order.
func generatedQuiz(program Program) ([]models.Question, map[string]string) {
	questions := []models.Question{
		{
			Question: fmt.Sprintf("What does %q primarily demonstrate?", program.Title),
			Options:  []string{"Iteration", "Recursion", "Concurrency", "Parsing"},
		},
		{
			Question: "Which input would exercise the boundary condition?",
			Options:  []string{"An empty input", "A sorted input", "A random input", "A repeated input"},
		},
	}
	answerKey := map[string]string{}
	for i, question := range questions {
		answerKey[strconv.Itoa(i)] = question.Options[0]
	}
	return questions, answerKey
}

func firstLine(code string) string {
	if idx := strings.IndexByte(code, '\n'); idx >= 0 {
		return code[:idx]
	}
	return code
}

func pick(ok bool, yes, no string) string {
	if ok {
		return yes
	}
	return no
}
