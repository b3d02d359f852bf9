package dto

type CreateCategoryInput struct {
	Name string `json:"name" binding:"required,min=1"`
}

type CategoryFilters struct {
	Page  int `form:"page"`
	Limit int `form:"limit"`
}
