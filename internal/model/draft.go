package model

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// WholeNumber is a numeric form value. It accepts both JSON numbers and strings so
// that form posts ("4") and API clients (4) can submit the same payload.
type WholeNumber string

// UnmarshalJSON accepts a JSON string, number or null.
func (n *WholeNumber) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*n = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = WholeNumber(s)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return err
	}
	*n = WholeNumber(num.String())
	return nil
}

// Int parses the value. Callers validate with the wholenumber rule first.
func (n WholeNumber) Int() int {
	v, _ := strconv.Atoi(strings.TrimSpace(string(n)))
	return v
}

// RecipeDraft is the input for creating a recipe.
type RecipeDraft struct {
	Title        string        `json:"title" validate:"notblank,max=200"`
	Description  string        `json:"description" validate:"notblank,max=5000"`
	Category     string        `json:"category" validate:"notblank,max=50"`
	Difficulty   Difficulty    `json:"difficulty" validate:"omitempty,oneof=Easy Medium Hard"`
	PrepTime     WholeNumber   `json:"prepTime" validate:"notblank,wholenumber"`
	CookTime     WholeNumber   `json:"cookTime" validate:"notblank,wholenumber"`
	Servings     WholeNumber   `json:"servings" validate:"notblank,wholenumber=1"`
	Tags         []string      `json:"tags" validate:"max=20,dive,max=40"`
	Ingredients  []Ingredient  `json:"ingredients" validate:"required,min=1,dive"`
	Instructions []Instruction `json:"instructions" validate:"required,min=1,dive"`
	Tips         []string      `json:"tips" validate:"max=50,dive,max=1000"`
	Nutrition    *Nutrition    `json:"nutrition" validate:"omitempty"`
	Images       []string      `json:"images" validate:"max=10,dive,url"`
}

// Clean trims free text, lower-cases and deduplicates tags and drops blank tips.
func (d *RecipeDraft) Clean() {
	d.Title = strings.TrimSpace(d.Title)
	d.Description = strings.TrimSpace(d.Description)
	d.Category = strings.TrimSpace(d.Category)
	d.Tags = NormalizeTags(d.Tags)
	d.Tips = cleanTips(d.Tips)
	d.Ingredients = cleanIngredients(d.Ingredients)
	d.Instructions = cleanInstructions(d.Instructions)
}

// Recipe builds a new recipe document owned by owner with zeroed aggregates.
func (d *RecipeDraft) Recipe(owner UserRef, now time.Time) *Recipe {
	r := &Recipe{
		Title:        d.Title,
		Description:  d.Description,
		Category:     CanonicalCategory(d.Category),
		Difficulty:   d.Difficulty,
		PrepTime:     d.PrepTime.Int(),
		CookTime:     d.CookTime.Int(),
		Servings:     d.Servings.Int(),
		Tags:         d.Tags,
		Ingredients:  d.Ingredients,
		Instructions: d.Instructions,
		Tips:         d.Tips,
		Nutrition:    d.Nutrition,
		Images:       d.Images,
		UserID:       owner.ID,
		UserName:     owner.DisplayName(),
		UserPhotoURL: owner.PhotoURL,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	r.Normalize()
	return r
}

// RecipePatch holds the content fields of an update. Nil fields are left unchanged.
type RecipePatch struct {
	Title        *string       `json:"title" validate:"omitempty,notblank,max=200"`
	Description  *string       `json:"description" validate:"omitempty,notblank,max=5000"`
	Category     *string       `json:"category" validate:"omitempty,notblank,max=50"`
	Difficulty   *Difficulty   `json:"difficulty" validate:"omitempty,oneof=Easy Medium Hard"`
	PrepTime     *WholeNumber  `json:"prepTime" validate:"omitempty,notblank,wholenumber"`
	CookTime     *WholeNumber  `json:"cookTime" validate:"omitempty,notblank,wholenumber"`
	Servings     *WholeNumber  `json:"servings" validate:"omitempty,notblank,wholenumber=1"`
	Tags         []string      `json:"tags" validate:"omitempty,max=20,dive,max=40"`
	Ingredients  []Ingredient  `json:"ingredients" validate:"omitempty,dive"`
	Instructions []Instruction `json:"instructions" validate:"omitempty,dive"`
	Tips         []string      `json:"tips" validate:"omitempty,max=50,dive,max=1000"`
	Nutrition    *Nutrition    `json:"nutrition" validate:"omitempty"`
	Images       []string      `json:"images" validate:"omitempty,max=10,dive,url"`
}

// IsEmpty reports whether the patch changes nothing.
func (p *RecipePatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Category == nil && p.Difficulty == nil &&
		p.PrepTime == nil && p.CookTime == nil && p.Servings == nil && p.Tags == nil &&
		p.Ingredients == nil && p.Instructions == nil && p.Tips == nil && p.Nutrition == nil &&
		p.Images == nil
}

// Clean applies the same normalization as RecipeDraft.Clean to the provided fields.
func (p *RecipePatch) Clean() {
	trim := func(s *string) {
		if s != nil {
			*s = strings.TrimSpace(*s)
		}
	}
	trim(p.Title)
	trim(p.Description)
	trim(p.Category)
	if p.Tags != nil {
		p.Tags = NormalizeTags(p.Tags)
	}
	if p.Tips != nil {
		p.Tips = cleanTips(p.Tips)
	}
	if p.Ingredients != nil {
		p.Ingredients = cleanIngredients(p.Ingredients)
	}
	if p.Instructions != nil {
		p.Instructions = cleanInstructions(p.Instructions)
	}
}

// EmptyLists returns the JSON names of list fields that were provided but empty.
func (p *RecipePatch) EmptyLists() []string {
	var fields []string
	if p.Ingredients != nil && len(p.Ingredients) == 0 {
		fields = append(fields, "ingredients")
	}
	if p.Instructions != nil && len(p.Instructions) == 0 {
		fields = append(fields, "instructions")
	}
	return fields
}

// Apply merges the provided fields into r and stamps UpdatedAt. Aggregates are
// never touched.
func (p *RecipePatch) Apply(r *Recipe, now time.Time) {
	if p.Title != nil {
		r.Title = *p.Title
	}
	if p.Description != nil {
		r.Description = *p.Description
	}
	if p.Category != nil {
		r.Category = CanonicalCategory(*p.Category)
	}
	if p.Difficulty != nil {
		r.Difficulty = *p.Difficulty
	}
	if p.PrepTime != nil {
		r.PrepTime = p.PrepTime.Int()
	}
	if p.CookTime != nil {
		r.CookTime = p.CookTime.Int()
	}
	if p.Servings != nil {
		r.Servings = p.Servings.Int()
	}
	if p.Tags != nil {
		r.Tags = p.Tags
	}
	if p.Ingredients != nil {
		r.Ingredients = p.Ingredients
	}
	if p.Instructions != nil {
		r.Instructions = p.Instructions
	}
	if p.Tips != nil {
		r.Tips = p.Tips
	}
	if p.Nutrition != nil {
		r.Nutrition = p.Nutrition
	}
	if p.Images != nil {
		r.Images = p.Images
	}
	r.UpdatedAt = now
}

// CanonicalCategory title-cases a category so "main course" and "Main Course"
// filter the same way.
func CanonicalCategory(category string) string {
	category = strings.Join(strings.Fields(category), " ")
	return cases.Title(language.English).String(category)
}

// NormalizeTags lower-cases, trims and deduplicates tags, dropping blanks.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

func cleanTips(tips []string) []string {
	out := make([]string, 0, len(tips))
	for _, t := range tips {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func cleanIngredients(in []Ingredient) []Ingredient {
	out := make([]Ingredient, len(in))
	for i, ing := range in {
		out[i] = Ingredient{Name: strings.TrimSpace(ing.Name), Amount: strings.TrimSpace(ing.Amount)}
	}
	return out
}

func cleanInstructions(in []Instruction) []Instruction {
	out := make([]Instruction, len(in))
	for i, ins := range in {
		out[i] = Instruction{Step: strings.TrimSpace(ins.Step)}
	}
	return out
}
