package dto

// SeedUserRequest provisions one staff login for a new school.
type SeedUserRequest struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Role     string `json:"role" validate:"required,oneof=admin teacher"`
}

// SeedClassRequest creates a class and its sections.
type SeedClassRequest struct {
	Name     string   `json:"name" validate:"required,max=64"`
	Ordinal  int      `json:"ordinal" validate:"min=0"`
	Sections []string `json:"sections" validate:"dive,required,max=32"`
}

// SchoolSeedRequest bootstraps a tenant with its staff and class layout.
type SchoolSeedRequest struct {
	Name    string             `json:"name" validate:"required,max=255"`
	Code    string             `json:"code" validate:"required,max=64"`
	Users   []SeedUserRequest  `json:"users" validate:"required,min=1,dive"`
	Classes []SeedClassRequest `json:"classes" validate:"dive"`
}

// SeededUser describes a provisioned login.
type SeededUser struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// SchoolSeedResponse reports what the bootstrap created.
type SchoolSeedResponse struct {
	SchoolID uint            `json:"school_id"`
	Name     string          `json:"name"`
	Code     string          `json:"code"`
	Users    []SeededUser    `json:"users"`
	Classes  []ClassResponse `json:"classes"`
}
