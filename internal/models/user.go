package models

import "encoding/json"

// User is the signed-in user as cached next to the bearer token.
type User struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	ProfessorName string `json:"professorName,omitempty"`
	IsProfessor   bool   `json:"isProfessor"`
	ProfessorID   ID     `json:"professorId,omitempty"`
}

type Professor struct {
	ID   ID     `json:"id"`
	Name string `json:"-"`
}

func (p *Professor) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID            ID     `json:"id"`
		Name          string `json:"name"`
		Nome          string `json:"nome"`
		ProfessorName string `json:"professorName"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	p.ID = raw.ID
	switch {
	case raw.Name != "":
		p.Name = raw.Name
	case raw.Nome != "":
		p.Name = raw.Nome
	default:
		p.Name = raw.ProfessorName
	}
	return nil
}
