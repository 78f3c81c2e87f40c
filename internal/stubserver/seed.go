package stubserver

import (
	"golang.org/x/crypto/bcrypt"
)

// Seed inserts a demo classroom when the database is empty: one professor,
// one student (password "password" for both) and a starter program with an
// English summary.
func (s *Store) Seed() error {
	var count int64
	if err := s.db.Model(&Program{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	users := []User{
		{Username: "prof", Password: string(hashed), Role: "professor", ClassID: 1},
		{Username: "student", Password: string(hashed), Role: "student", ClassID: 1},
	}
	for i := range users {
		if err := s.db.Create(&users[i]).Error; err != nil {
			return err
		}
	}

	program := Program{
		Title:       "Sum of Two Numbers",
		Description: "Read two integers and print their sum.",
		Code:        "#include <stdio.h>\nint main() { int a, b; scanf(\"%d %d\", &a, &b); printf(\"%d\\n\", a + b); return 0; }",
		ClassID:     1,
	}
	if err := s.db.Create(&program).Error; err != nil {
		return err
	}

	summary := Summary{
		ProgramID: program.ID,
		AudioLink: "media/summary-sum.mp3",
		Language:  "en",
		Summary:   "The program reads two integers from standard input and prints their sum.",
		Algorithm: "1. Read a and b.\n2. Add them.\n3. Print the result.",
	}
	if err := s.db.Create(&summary).Error; err != nil {
		return err
	}

	return s.SaveAudio(&Audio{Link: summary.AudioLink, Data: []byte("stub summary audio")})
}
