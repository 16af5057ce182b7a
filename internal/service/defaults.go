package service

import "swipespend/internal/models"

// DefaultCategory is one entry of the starter set every user gets at link
// time.
type DefaultCategory struct {
	Name   string
	Color  string
	Hidden bool
	Kind   models.CategoryKind
}

// DefaultCategories is created, in order, for each newly linked user. Exactly
// one hidden Uncategorized and one visible Income entry; everything else is
// an ordinary starter category.
var DefaultCategories = []DefaultCategory{
	{Name: "Food & Dining", Color: "#FF6B6B", Kind: models.KindNormal},
	{Name: "Shopping", Color: "#4ECDC4", Kind: models.KindNormal},
	{Name: "Transportation", Color: "#45B7D1", Kind: models.KindNormal},
	{Name: "Entertainment", Color: "#FFA726", Kind: models.KindNormal},
	{Name: "Bills & Utilities", Color: "#AB47BC", Kind: models.KindNormal},
	{Name: "Healthcare", Color: "#66BB6A", Kind: models.KindNormal},
	{Name: "Income", Color: "#26A69A", Kind: models.KindIncome},
	{Name: "Uncategorized", Color: "#9E9E9E", Hidden: true, Kind: models.KindUncategorized},
}

// CategoryColors is the palette cycled through when a new category is created
// without an explicit color.
var CategoryColors = []string{
	"#ff4444", "#ff8800", "#ffcc00", "#88dd44", "#44dd88",
	"#44dddd", "#4488dd", "#8844dd", "#dd44dd", "#dd4488",
	"#ff6b6b", "#ffa500", "#32cd32", "#1e90ff", "#9932cc",
	"#ff1493", "#00ced1", "#ff6347", "#adff2f", "#ba55d3",
}

// MaxCategories caps the user's visible categories, excluding system ones.
const MaxCategories = 20
