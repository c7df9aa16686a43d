package storage

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"

	"github.com/pageza/recipeshare/backend/internal/model"
)

// jsonColumn stores a value as JSON: jsonb on Postgres, text elsewhere.
type jsonColumn[T any] struct {
	Data T
}

func newJSON[T any](v T) jsonColumn[T] {
	return jsonColumn[T]{Data: v}
}

// Value implements the driver.Valuer interface
func (j jsonColumn[T]) Value() (driver.Value, error) {
	b, err := json.Marshal(j.Data)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface
func (j *jsonColumn[T]) Scan(value interface{}) error {
	var bytes []byte
	switch v := value.(type) {
	case nil:
		var zero T
		j.Data = zero
		return nil
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("unsupported json column type %T", value)
	}
	return json.Unmarshal(bytes, &j.Data)
}

func (jsonColumn[T]) GormDataType() string {
	return "json"
}

func (jsonColumn[T]) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "jsonb"
	}
	return "text"
}

type accountRow struct {
	ID           string    `gorm:"type:varchar(128);primaryKey"`
	Email        string    `gorm:"size:255;not null;uniqueIndex"`
	PasswordHash string    `gorm:"size:255"`
	DisplayName  string    `gorm:"size:100;not null"`
	PhotoURL     string    `gorm:"size:512"`
	Provider     string    `gorm:"size:32;not null"`
	CreatedAt    time.Time `gorm:"autoCreateTime:false"`
}

func (accountRow) TableName() string {
	return "users"
}

type profileRow struct {
	UserID      string    `gorm:"type:varchar(128);primaryKey"`
	DisplayName string    `gorm:"size:100;not null"`
	Email       string    `gorm:"size:255"`
	PhotoURL    string    `gorm:"size:512"`
	CreatedAt   time.Time `gorm:"autoCreateTime:false"`
}

func (profileRow) TableName() string {
	return "profiles"
}

// savedRecipeRow is the profile back-reference of a save.
type savedRecipeRow struct {
	UserID    string    `gorm:"type:varchar(128);primaryKey"`
	RecipeID  string    `gorm:"type:varchar(36);primaryKey;index"`
	CreatedAt time.Time `gorm:"autoCreateTime:false"`
}

func (savedRecipeRow) TableName() string {
	return "saved_recipes"
}

type recipeTagRow struct {
	RecipeID string `gorm:"type:varchar(36);primaryKey"`
	Tag      string `gorm:"size:40;primaryKey;index"`
}

func (recipeTagRow) TableName() string {
	return "recipe_tags"
}

// recipeRow keeps the columns used for filtering and sorting as scalars and the
// embedded collections as JSON.
type recipeRow struct {
	ID           string                          `gorm:"type:varchar(36);primaryKey"`
	Title        string                          `gorm:"size:200;not null"`
	Description  string                          `gorm:"type:text;not null"`
	Category     string                          `gorm:"size:50;not null;index"`
	Difficulty   string                          `gorm:"size:10;not null"`
	PrepTime     int                             `gorm:"not null"`
	CookTime     int                             `gorm:"not null"`
	Servings     int                             `gorm:"not null"`
	Tags         jsonColumn[[]string]            `gorm:"not null"`
	Ingredients  jsonColumn[[]model.Ingredient]  `gorm:"not null"`
	Instructions jsonColumn[[]model.Instruction] `gorm:"not null"`
	Tips         jsonColumn[[]string]            `gorm:"not null"`
	Nutrition    jsonColumn[*model.Nutrition]
	Images       jsonColumn[[]string]            `gorm:"not null"`
	UserID       string                          `gorm:"type:varchar(128);not null;index"`
	UserName     string                          `gorm:"size:100;not null"`
	UserPhotoURL string                          `gorm:"size:512"`
	CreatedAt    time.Time                       `gorm:"not null;index;autoCreateTime:false"`
	UpdatedAt    time.Time                       `gorm:"not null;autoUpdateTime:false"`
	IsFeatured   bool                            `gorm:"not null;index"`
	ViewCount    int64                           `gorm:"not null;index"`
	Likes        jsonColumn[[]string]            `gorm:"not null"`
	LikesCount   int                             `gorm:"not null;index"`
	Saves        jsonColumn[[]string]            `gorm:"not null"`
	SavesCount   int                             `gorm:"not null"`
	Ratings      jsonColumn[map[string]int]      `gorm:"not null"`
	RatingSum    int                             `gorm:"not null"`
	RatingCount  int                             `gorm:"not null"`
	Comments     jsonColumn[[]model.Comment]     `gorm:"not null"`
}

func (recipeRow) TableName() string {
	return "recipes"
}

// Models lists the row types for gorm auto-migration.
func Models() []interface{} {
	return []interface{}{
		&accountRow{},
		&profileRow{},
		&recipeRow{},
		&recipeTagRow{},
		&savedRecipeRow{},
	}
}

func toRecipeRow(r *model.Recipe) *recipeRow {
	return &recipeRow{
		ID:           r.ID,
		Title:        r.Title,
		Description:  r.Description,
		Category:     r.Category,
		Difficulty:   string(r.Difficulty),
		PrepTime:     r.PrepTime,
		CookTime:     r.CookTime,
		Servings:     r.Servings,
		Tags:         newJSON(r.Tags),
		Ingredients:  newJSON(r.Ingredients),
		Instructions: newJSON(r.Instructions),
		Tips:         newJSON(r.Tips),
		Nutrition:    newJSON(r.Nutrition),
		Images:       newJSON(r.Images),
		UserID:       r.UserID,
		UserName:     r.UserName,
		UserPhotoURL: r.UserPhotoURL,
		CreatedAt:    r.CreatedAt.UTC(),
		UpdatedAt:    r.UpdatedAt.UTC(),
		IsFeatured:   r.IsFeatured,
		ViewCount:    r.ViewCount,
		Likes:        newJSON(r.Likes),
		LikesCount:   r.LikesCount,
		Saves:        newJSON(r.Saves),
		SavesCount:   r.SavesCount,
		Ratings:      newJSON(r.Ratings),
		RatingSum:    r.RatingSum,
		RatingCount:  r.RatingCount,
		Comments:     newJSON(r.Comments),
	}
}

func (row *recipeRow) toModel() *model.Recipe {
	r := &model.Recipe{
		ID:           row.ID,
		Title:        row.Title,
		Description:  row.Description,
		Category:     row.Category,
		Difficulty:   model.Difficulty(row.Difficulty),
		PrepTime:     row.PrepTime,
		CookTime:     row.CookTime,
		Servings:     row.Servings,
		Tags:         row.Tags.Data,
		Ingredients:  row.Ingredients.Data,
		Instructions: row.Instructions.Data,
		Tips:         row.Tips.Data,
		Nutrition:    row.Nutrition.Data,
		Images:       row.Images.Data,
		UserID:       row.UserID,
		UserName:     row.UserName,
		UserPhotoURL: row.UserPhotoURL,
		CreatedAt:    row.CreatedAt.UTC(),
		UpdatedAt:    row.UpdatedAt.UTC(),
		IsFeatured:   row.IsFeatured,
		ViewCount:    row.ViewCount,
		Likes:        row.Likes.Data,
		Saves:        row.Saves.Data,
		Ratings:      row.Ratings.Data,
		Comments:     row.Comments.Data,
	}
	r.Normalize()
	return r
}

func toAccountRow(a *model.Account) *accountRow {
	return &accountRow{
		ID:           a.ID,
		Email:        a.Email,
		PasswordHash: a.PasswordHash,
		DisplayName:  a.DisplayName,
		PhotoURL:     a.PhotoURL,
		Provider:     a.Provider,
		CreatedAt:    a.CreatedAt.UTC(),
	}
}

func (row *accountRow) toModel() *model.Account {
	return &model.Account{
		ID:           row.ID,
		Email:        row.Email,
		PasswordHash: row.PasswordHash,
		DisplayName:  row.DisplayName,
		PhotoURL:     row.PhotoURL,
		Provider:     row.Provider,
		CreatedAt:    row.CreatedAt.UTC(),
	}
}
