package dto

import "github.com/noah-isme/sekolah-go-api/internal/models"

// ClassCreateRequest creates a class.
type ClassCreateRequest struct {
	Name    string `json:"name" validate:"required,max=64"`
	Ordinal int    `json:"ordinal" validate:"min=0"`
}

// SectionCreateRequest adds a section to a class.
type SectionCreateRequest struct {
	Name string `json:"name" validate:"required,max=32"`
}

// SectionResponse serializes a section.
type SectionResponse struct {
	ID      uint   `json:"id"`
	ClassID uint   `json:"class_id"`
	Name    string `json:"name"`
}

// ClassResponse serializes a class with its sections.
type ClassResponse struct {
	ID       uint              `json:"id"`
	Name     string            `json:"name"`
	Ordinal  int               `json:"ordinal"`
	Sections []SectionResponse `json:"sections"`
}

// NewSectionResponse converts a section model into a DTO.
func NewSectionResponse(section models.Section) SectionResponse {
	return SectionResponse{ID: section.ID, ClassID: section.ClassID, Name: section.Name}
}

// NewClassResponse converts a class model into a DTO.
func NewClassResponse(class models.Class) ClassResponse {
	sections := make([]SectionResponse, 0, len(class.Sections))
	for _, section := range class.Sections {
		sections = append(sections, NewSectionResponse(section))
	}
	return ClassResponse{ID: class.ID, Name: class.Name, Ordinal: class.Ordinal, Sections: sections}
}
