package stubserver

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-tutor-cli/internal/models"
)

// User is a stored account. Passwords are bcrypt hashes.
type User struct {
	ID       int    `gorm:"primaryKey"`
	Username string `gorm:"size:64;uniqueIndex"`
	Password string `gorm:"size:128"`
	Role     string `gorm:"size:32"`
	ClassID  int
}

// Program is a stored exercise.
type Program struct {
	ID          int    `gorm:"primaryKey"`
	Title       string `gorm:"size:255"`
	Description string `gorm:"type:text"`
	Code        string `gorm:"type:text"`
	ClassID     int    `gorm:"index"`
}

// Summary is a narrated program explanation for one language.
type Summary struct {
	ID        int    `gorm:"primaryKey"`
	ProgramID int    `gorm:"index"`
	AudioLink string `gorm:"size:255"`
	Language  string `gorm:"size:16"`
	Summary   string `gorm:"type:text"`
	Algorithm string `gorm:"type:text"`
}

// Quiz is a generated question set plus its hidden answer key.
type Quiz struct {
	ID        int            `gorm:"primaryKey"`
	ProgramID int            `gorm:"index"`
	StudentID int            `gorm:"index"`
	ClassID   int            `gorm:"index"`
	Questions datatypes.JSON `gorm:"type:json"`
	AnswerKey datatypes.JSON `gorm:"type:json"`
	Answers   datatypes.JSON `gorm:"type:json"`
	Marks     *int
}

// Submission is a stored code submission.
type Submission struct {
	ID        int `gorm:"primaryKey"`
	ProgramID int `gorm:"index"`
	StudentID int `gorm:"index"`
	Code      string
	HasError  bool
	Feedback  datatypes.JSON `gorm:"type:json"`
}

// Message is one chat timeline entry.
type Message struct {
	ID        int  `gorm:"primaryKey"`
	ProgramID int  `gorm:"index"`
	UserID    *int `gorm:"index"`
	AudioLink string
	Content   string `gorm:"type:text"`
	From      string `gorm:"size:16"`
	SentAt    time.Time
}

// Audio is a stored media artifact addressed by its link.
type Audio struct {
	Link string `gorm:"primaryKey;size:255"`
	Data []byte
}

// Store wraps the sqlite database behind the handlers.
type Store struct {
	db *gorm.DB
}

// Open connects to the sqlite database and migrates the schema.
func Open(dsn string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.AutoMigrate(&User{}, &Program{}, &Summary{}, &Quiz{}, &Submission{}, &Message{}, &Audio{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) CreateUser(user *User) error {
	return s.db.Create(user).Error
}

func (s *Store) UserByUsername(username string) (User, error) {
	var user User
	err := s.db.Where("username = ?", username).First(&user).Error
	return user, err
}

func (s *Store) UserByID(id int) (User, error) {
	var user User
	err := s.db.First(&user, id).Error
	return user, err
}

func (s *Store) CreateProgram(program *Program) error {
	return s.db.Create(program).Error
}

func (s *Store) DeleteProgram(id int) error {
	return s.db.Delete(&Program{}, id).Error
}

func (s *Store) Programs() ([]Program, error) {
	var programs []Program
	err := s.db.Order("id").Find(&programs).Error
	return programs, err
}

func (s *Store) ProgramByID(id int) (Program, error) {
	var program Program
	err := s.db.First(&program, id).Error
	return program, err
}

func (s *Store) ProgramsByClass(classID int) ([]Program, error) {
	var programs []Program
	err := s.db.Where("class_id = ?", classID).Order("id").Find(&programs).Error
	return programs, err
}

func (s *Store) SummariesByProgram(programID int) ([]Summary, error) {
	var summaries []Summary
	err := s.db.Where("program_id = ?", programID).Find(&summaries).Error
	return summaries, err
}

func (s *Store) CreateSummary(summary *Summary) error {
	return s.db.Create(summary).Error
}

func (s *Store) CreateQuiz(quiz *Quiz) error {
	return s.db.Create(quiz).Error
}

func (s *Store) QuizByID(id int) (Quiz, error) {
	var quiz Quiz
	err := s.db.First(&quiz, id).Error
	return quiz, err
}

func (s *Store) QuizByProgramUser(programID, userID int) (Quiz, error) {
	var quiz Quiz
	err := s.db.Where("program_id = ? AND student_id = ?", programID, userID).First(&quiz).Error
	return quiz, err
}

func (s *Store) QuizzesByProgram(programID int) ([]Quiz, error) {
	var quizzes []Quiz
	err := s.db.Where("program_id = ?", programID).Order("id").Find(&quizzes).Error
	return quizzes, err
}

func (s *Store) QuizzesByClass(classID int) ([]Quiz, error) {
	var quizzes []Quiz
	err := s.db.Where("class_id = ?", classID).Order("id").Find(&quizzes).Error
	return quizzes, err
}

func (s *Store) QuizByStudent(userID int) (Quiz, error) {
	var quiz Quiz
	err := s.db.Where("student_id = ?", userID).First(&quiz).Error
	return quiz, err
}

func (s *Store) GradeQuiz(id int, answers map[string]string, marks int) error {
	encoded, err := json.Marshal(answers)
	if err != nil {
		return err
	}
	return s.db.Model(&Quiz{}).Where("id = ?", id).Updates(map[string]any{
		"answers": datatypes.JSON(encoded),
		"marks":   marks,
	}).Error
}

func (s *Store) CreateSubmission(submission *Submission) error {
	return s.db.Create(submission).Error
}

func (s *Store) SubmissionsForProgramUser(programID, userID int) ([]Submission, error) {
	var submissions []Submission
	err := s.db.Where("program_id = ? AND student_id = ?", programID, userID).Order("id").Find(&submissions).Error
	return submissions, err
}

func (s *Store) CreateMessage(message *Message) error {
	return s.db.Create(message).Error
}

func (s *Store) MessagesFor(programID, userID int) ([]Message, error) {
	var messages []Message
	err := s.db.Where("program_id = ? AND user_id = ?", programID, userID).
		Order("sent_at, id").Find(&messages).Error
	return messages, err
}

func (s *Store) SaveAudio(audio *Audio) error {
	return s.db.Save(audio).Error
}

func (s *Store) AudioByLink(link string) (Audio, error) {
	var audio Audio
	err := s.db.Where("link = ?", link).First(&audio).Error
	return audio, err
}

// decodeQuestions unpacks a stored question column.
func decodeQuestions(raw datatypes.JSON) []models.Question {
	var questions []models.Question
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &questions)
	}
	return questions
}

// decodeAnswers unpacks a stored answers or answer-key column.
func decodeAnswers(raw datatypes.JSON) map[string]string {
	answers := map[string]string{}
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &answers)
	}
	return answers
}
