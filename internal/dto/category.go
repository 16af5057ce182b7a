package dto

import "swipespend/internal/models"

type CreateCategoryRequest struct {
	Name  string `json:"name" validate:"required,max=50"`
	Color string `json:"color,omitempty"`
}

type UpdateCategoryRequest struct {
	Name  string `json:"name" validate:"required,max=50"`
	Color string `json:"color,omitempty"`
}

type CategoryResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Color     string `json:"color"`
	CreatedAt string `json:"created_at"`
}

type CategoryListResponse struct {
	Categories    []CategoryResponse `json:"categories"`
	MaxCategories int                `json:"max_categories"`
	CurrentCount  int                `json:"current_count"`
}

func FromCategory(cat *models.Category) CategoryResponse {
	return CategoryResponse{
		ID:        cat.ID.String(),
		Name:      cat.Name,
		Color:     cat.Color,
		CreatedAt: cat.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

func FromCategories(cats []*models.Category) []CategoryResponse {
	out := make([]CategoryResponse, 0, len(cats))
	for _, cat := range cats {
		out = append(out, FromCategory(cat))
	}
	return out
}
