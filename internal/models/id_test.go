package models

import (
	"encoding/json"
	"testing"
)

func TestIDUnmarshal(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want ID
	}{
		{"number", `42`, "42"},
		{"string", `"abc-1"`, "abc-1"},
		{"numeric string", `"7"`, "7"},
		{"null", `null`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got ID
			if err := json.Unmarshal([]byte(tt.in), &got); err != nil {
				t.Fatalf("Unmarshal(%s) error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("Unmarshal(%s) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestIDMarshal(t *testing.T) {
	tests := []struct {
		in   ID
		want string
	}{
		{"12", `12`},
		{"uuid-x", `"uuid-x"`},
		{"", `null`},
		{"-3", `-3`},
		{"007", `"007"`},
		{"+5", `"+5"`},
	}

	for _, tt := range tests {
		got, err := json.Marshal(tt.in)
		if err != nil {
			t.Fatalf("Marshal(%q) error: %v", tt.in, err)
		}
		if string(got) != tt.want {
			t.Errorf("Marshal(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestUserMarshalNonCanonicalID(t *testing.T) {
	var id ID
	if err := json.Unmarshal([]byte(`"007"`), &id); err != nil {
		t.Fatal(err)
	}

	data, err := json.Marshal(User{ID: "u1", ProfessorID: id})
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}

	var back User
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	if back.ProfessorID != "007" {
		t.Errorf("ProfessorID = %q, want 007", back.ProfessorID)
	}
}

func TestPostDecodesBackendFields(t *testing.T) {
	raw := `{"id":3,"titulo":"Átomos","resumo":"intro","conteudo":"texto","professor_id":9,
		"created_at":"2024-03-01T10:00:00Z","updated_at":"2024-03-02T10:00:00Z"}`

	var p Post
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	if p.ID != "3" || p.ProfessorID != "9" {
		t.Errorf("ids = %q/%q, want 3/9", p.ID, p.ProfessorID)
	}
	if p.Title != "Átomos" || p.Summary != "intro" || p.Body != "texto" {
		t.Errorf("unexpected post fields: %+v", p)
	}
	if p.CreatedAt.IsZero() || !p.UpdatedAt.After(p.CreatedAt) {
		t.Errorf("timestamps not decoded: %v %v", p.CreatedAt, p.UpdatedAt)
	}
}

func TestProfessorNameFallbacks(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`{"id":1,"name":"Ana"}`, "Ana"},
		{`{"id":1,"nome":"Bruno"}`, "Bruno"},
		{`{"id":1,"professorName":"Carla"}`, "Carla"},
		{`{"id":1}`, ""},
	}

	for _, tt := range tests {
		var p Professor
		if err := json.Unmarshal([]byte(tt.in), &p); err != nil {
			t.Fatalf("Unmarshal(%s) error: %v", tt.in, err)
		}
		if p.Name != tt.want {
			t.Errorf("Unmarshal(%s).Name = %q, want %q", tt.in, p.Name, tt.want)
		}
	}
}
