package models

import "strings"

// Role values returned by the /me endpoint.
const (
	RoleStudent   = "student"
	RoleProfessor = "professor"
)

// User is the authenticated account as reported by the session endpoint.
type User struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	ClassID  int    `json:"class_id,omitempty"`
}

// Program is a coding exercise published to a classroom.
type Program struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Code        string `json:"code"`
	ClassID     int    `json:"class_id"`
}

// TestCase holds the sample inputs and outputs attached to a summary.
type TestCase struct {
	Input  []any `json:"input"`
	Output []any `json:"output"`
}

// Summary is a per-language narrated explanation of a program.
type Summary struct {
	ID        int        `json:"id"`
	ProgramID int        `json:"program_id"`
	AudioLink string     `json:"audio_link,omitempty"`
	Language  string     `json:"language"`
	Summary   string     `json:"summary"`
	Algorithm string     `json:"algorithm,omitempty"`
	TestCases []TestCase `json:"test_cases,omitempty"`
}

// ProgramDetail is a program together with its summaries.
type ProgramDetail struct {
	Program   Program   `json:"program"`
	Summaries []Summary `json:"summaries"`
}

// Question is a single multiple-choice quiz question.
type Question struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

// Quiz is a server-generated question set tied to one program and student.
// Answers is keyed by the question index rendered as a string ("0", "1", ...);
// an absent key means the question is unanswered. Marks stays nil until the
// quiz has been graded.
type Quiz struct {
	ID        int               `json:"id"`
	StudentID int               `json:"student_id"`
	ProgramID int               `json:"program_id"`
	ClassID   int               `json:"class_id,omitempty"`
	Questions []Question        `json:"questions"`
	Answers   map[string]string `json:"answers"`
	Marks     *int              `json:"marks"`
	Username  string            `json:"username,omitempty"`
}

// Graded reports whether the quiz has been scored.
func (q Quiz) Graded() bool {
	return q.Marks != nil
}

// MarkResult is the grading outcome returned by POST /quiz/mark.
type MarkResult struct {
	QuizID int `json:"quiz_id"`
	Marks  int `json:"marks"`
	Total  int `json:"total"`
}

// CodeError describes one mistake found in a submitted program.
type CodeError struct {
	ErrorType     string `json:"error_type"`
	Description   string `json:"description"`
	IncorrectCode string `json:"incorrect_code"`
	CorrectCode   string `json:"correct_code"`
}

// TestResult is the outcome of running the submission against one test input.
type TestResult struct {
	Stdin         string `json:"stdin"`
	Stdout        string `json:"stdout"`
	Stderr        string `json:"stderr"`
	CompileOutput string `json:"compile_output"`
}

// Evaluation is the generated assessment bundled into a submission result.
// The remote service nests the freshly generated question set under "quiz".
type Evaluation struct {
	CodeCorrect bool        `json:"code_correct"`
	CodeErrors  []CodeError `json:"code_errors"`
	Questions   []Question  `json:"quiz"`
}

// SubmissionResult is the full response to POST /submissions. It lives only
// in the submitting view's memory and is never persisted client side.
type SubmissionResult struct {
	ID      int          `json:"id"`
	Results []TestResult `json:"results"`
	Quiz    Evaluation   `json:"quiz"`
	QuizID  int          `json:"quiz_id"`
}

// Submission is a stored submission row as listed by the history endpoints.
type Submission struct {
	ID        int    `json:"id"`
	ProgramID int    `json:"program_id"`
	StudentID int    `json:"student_id"`
	Code      string `json:"code"`
	HasError  bool   `json:"has_error"`
	Feedback  string `json:"feedback"`
}

const (
	// pendingUploadPrefix marks message content that is still a raw upload
	// path on the server rather than transcribed text.
	pendingUploadPrefix = "temp/"
	// mediaPrefix marks audio links that point at a server-generated
	// artifact, as opposed to a user-uploaded temp file.
	mediaPrefix = "media/"
)

// Message is one entry in the polled chat timeline. UserID is nil for bot
// messages. SentAt is kept as the raw server string; ordering comes from the
// timeline itself.
type Message struct {
	ID        int    `json:"id"`
	ProgramID int    `json:"program_id"`
	UserID    *int   `json:"user_id"`
	AudioLink string `json:"audio_link,omitempty"`
	Content   string `json:"content"`
	From      string `json:"from"`
	SentAt    string `json:"sent_at"`
}

// FromBot reports whether the message was produced by the tutor bot.
func (m Message) FromBot() bool {
	return m.From == "bot"
}

// PendingAudioUpload reports whether the content is an upload placeholder
// that must never be rendered as plain text.
func (m Message) PendingAudioUpload() bool {
	return strings.HasPrefix(m.Content, pendingUploadPrefix)
}

// HasServerAudio reports whether the audio link points at a server-generated
// media artifact suitable for playback.
func (m Message) HasServerAudio() bool {
	return strings.HasPrefix(m.AudioLink, mediaPrefix)
}
