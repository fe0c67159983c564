package models

import "time"

type Post struct {
	ID          ID        `json:"id"`
	Title       string    `json:"titulo"`
	Summary     string    `json:"resumo,omitempty"`
	Body        string    `json:"conteudo"`
	ProfessorID ID        `json:"professor_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// PostInput is the payload for create and update calls.
// ProfessorID is only sent on create.
type PostInput struct {
	Title       string `json:"titulo"`
	Summary     string `json:"resumo"`
	Body        string `json:"conteudo"`
	ProfessorID ID     `json:"professor_id,omitempty"`
}
