package storage

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/recipeshare/backend/internal/apperror"
	"github.com/pageza/recipeshare/backend/internal/clock"
	"github.com/pageza/recipeshare/backend/internal/model"
)

// GormStore implements Store on a SQL database through gorm. Postgres is used in
// production and SQLite in development and tests.
type GormStore struct {
	db    *gorm.DB
	clock clock.Clock
}

// NewGormStore creates a store on an already migrated database.
func NewGormStore(db *gorm.DB, clk clock.Clock) *GormStore {
	if clk == nil {
		clk = clock.Real{}
	}
	return &GormStore{db: db, clock: clk}
}

// AutoMigrate creates the tables with gorm. Postgres deployments use the SQL
// migrations instead.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}

func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return apperror.Unavailable("reach database", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return apperror.Unavailable("reach database", err)
	}
	return nil
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// forUpdate locks the selected rows on databases that support row locks. SQLite
// serializes writers on its own.
func (s *GormStore) forUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

// translate maps driver errors to application errors. Application errors pass
// through unchanged so MutateFunc results reach the caller intact.
func translate(op string, err error, resource, id string) error {
	if err == nil {
		return nil
	}
	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.NotFound(resource, id)
	}
	return apperror.Unavailable(op, err)
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}

// Recipes

func (s *GormStore) CreateRecipe(ctx context.Context, r *model.Recipe) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	r.Normalize()
	row := toRecipeRow(r)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(row).Error; err != nil {
			return err
		}
		return replaceTags(tx, r.ID, r.Tags)
	})
	return translate("create recipe", err, "recipe", r.ID)
}

func (s *GormStore) GetRecipe(ctx context.Context, id string) (*model.Recipe, error) {
	var row recipeRow
	if err := s.db.WithContext(ctx).Where("id = ?", id).Take(&row).Error; err != nil {
		return nil, translate("get recipe", err, "recipe", id)
	}
	return row.toModel(), nil
}

func (s *GormStore) UpdateRecipe(ctx context.Context, id string, fn MutateFunc) (*model.Recipe, error) {
	var updated *model.Recipe
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r, err := s.lockRecipe(tx, id)
		if err != nil {
			return err
		}
		oldTags := strings.Join(r.Tags, "\x00")
		if err := fn(r); err != nil {
			return err
		}
		r.ID = id
		r.Normalize()
		if err := tx.Save(toRecipeRow(r)).Error; err != nil {
			return err
		}
		if strings.Join(r.Tags, "\x00") != oldTags {
			if err := replaceTags(tx, id, r.Tags); err != nil {
				return err
			}
		}
		updated = r
		return nil
	})
	if err != nil {
		return nil, translate("update recipe", err, "recipe", id)
	}
	return updated, nil
}

func (s *GormStore) DeleteRecipe(ctx context.Context, id string, guard MutateFunc) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r, err := s.lockRecipe(tx, id)
		if err != nil {
			return err
		}
		if guard != nil {
			if err := guard(r); err != nil {
				return err
			}
		}
		if err := tx.Where("recipe_id = ?", id).Delete(&savedRecipeRow{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", id).Delete(&recipeTagRow{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&recipeRow{}).Error
	})
	return translate("delete recipe", err, "recipe", id)
}

func (s *GormStore) lockRecipe(tx *gorm.DB, id string) (*model.Recipe, error) {
	var row recipeRow
	if err := s.forUpdate(tx).Where("id = ?", id).Take(&row).Error; err != nil {
		return nil, err
	}
	return row.toModel(), nil
}

func replaceTags(tx *gorm.DB, recipeID string, tags []string) error {
	if err := tx.Where("recipe_id = ?", recipeID).Delete(&recipeTagRow{}).Error; err != nil {
		return err
	}
	if len(tags) == 0 {
		return nil
	}
	rows := make([]recipeTagRow, len(tags))
	for i, tag := range tags {
		rows[i] = recipeTagRow{RecipeID: recipeID, Tag: tag}
	}
	return tx.Create(&rows).Error
}

func (s *GormStore) ListRecipes(ctx context.Context, q model.ListQuery) (*model.Page, error) {
	q = q.Normalized()
	db := s.db.WithContext(ctx)
	query := db.Model(&recipeRow{})

	if q.Category != "" {
		query = query.Where("category = ?", q.Category)
	}
	if q.OwnerID != "" {
		query = query.Where("user_id = ?", q.OwnerID)
	}
	if q.FeaturedOnly {
		query = query.Where("is_featured = ?", true)
	}
	if q.Tag != "" {
		tagged := db.Model(&recipeTagRow{}).Select("recipe_id").Where("tag = ?", q.Tag)
		query = query.Where("id IN (?)", tagged)
	}

	column := sortColumn(q.Sort)
	if q.Cursor != "" {
		c, err := model.DecodeCursor(q.Cursor, q.Sort)
		if err != nil {
			return nil, err
		}
		var value interface{} = c.Count
		if q.Sort == model.SortNewest {
			value = c.CreatedAt
		}
		query = query.Where(
			column+" < ? OR ("+column+" = ? AND id < ?)",
			value, value, c.ID,
		)
	}

	var rows []recipeRow
	err := query.
		Order(column + " DESC").
		Order("id DESC").
		Limit(q.PageSize + 1).
		Find(&rows).Error
	if err != nil {
		return nil, translate("list recipes", err, "", "")
	}
	return buildPage(rows, q), nil
}

func sortColumn(sort model.SortOrder) string {
	switch sort {
	case model.SortPopular:
		return "likes_count"
	case model.SortViews:
		return "view_count"
	default:
		return "created_at"
	}
}

func buildPage(rows []recipeRow, q model.ListQuery) *model.Page {
	page := &model.Page{Items: make([]*model.Recipe, 0, len(rows))}
	more := len(rows) > q.PageSize
	if more {
		rows = rows[:q.PageSize]
	}
	for i := range rows {
		page.Items = append(page.Items, rows[i].toModel())
	}
	if more && len(page.Items) > 0 {
		page.NextCursor = model.CursorAfter(page.Items[len(page.Items)-1], q.Sort).Encode()
	}
	return page
}

func (s *GormStore) RecipesByIDs(ctx context.Context, ids []string) ([]*model.Recipe, error) {
	if len(ids) == 0 {
		return []*model.Recipe{}, nil
	}
	var rows []recipeRow
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, translate("get recipes", err, "", "")
	}
	byID := make(map[string]*model.Recipe, len(rows))
	for i := range rows {
		byID[rows[i].ID] = rows[i].toModel()
	}
	out := make([]*model.Recipe, 0, len(rows))
	for _, id := range ids {
		if r, ok := byID[id]; ok {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *GormStore) IncrementViewCount(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).
		Model(&recipeRow{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + ?", 1))
	if res.Error != nil {
		return translate("record view", res.Error, "recipe", id)
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound("recipe", id)
	}
	return nil
}

func (s *GormStore) ToggleSave(ctx context.Context, recipeID, userID string) (*model.Recipe, model.InteractionState, error) {
	var (
		updated *model.Recipe
		state   model.InteractionState
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r, err := s.lockRecipe(tx, recipeID)
		if err != nil {
			return err
		}
		state = r.ToggleSave(userID)
		if err := tx.Save(toRecipeRow(r)).Error; err != nil {
			return err
		}
		if state.Active {
			ref := savedRecipeRow{UserID: userID, RecipeID: recipeID, CreatedAt: s.clock.Now().UTC()}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&ref).Error; err != nil {
				return err
			}
		} else {
			if err := tx.Where("user_id = ? AND recipe_id = ?", userID, recipeID).Delete(&savedRecipeRow{}).Error; err != nil {
				return err
			}
		}
		updated = r
		return nil
	})
	if err != nil {
		return nil, model.InteractionState{}, translate("save recipe", err, "recipe", recipeID)
	}
	return updated, state, nil
}

// Profiles

func (s *GormStore) GetProfile(ctx context.Context, userID string) (*model.Profile, error) {
	db := s.db.WithContext(ctx)
	var row profileRow
	if err := db.Where("user_id = ?", userID).Take(&row).Error; err != nil {
		return nil, translate("get profile", err, "profile", userID)
	}
	var saved []savedRecipeRow
	if err := db.Where("user_id = ?", userID).Order("created_at DESC").Find(&saved).Error; err != nil {
		return nil, translate("get profile", err, "profile", userID)
	}
	p := &model.Profile{
		UserID:       row.UserID,
		DisplayName:  row.DisplayName,
		Email:        row.Email,
		PhotoURL:     row.PhotoURL,
		CreatedAt:    row.CreatedAt.UTC(),
		SavedRecipes: make([]string, 0, len(saved)),
	}
	for _, ref := range saved {
		p.SavedRecipes = append(p.SavedRecipes, ref.RecipeID)
	}
	return p, nil
}

func (s *GormStore) UpsertProfile(ctx context.Context, p *model.Profile) error {
	row := profileRow{
		UserID:      p.UserID,
		DisplayName: p.DisplayName,
		Email:       p.Email,
		PhotoURL:    p.PhotoURL,
		CreatedAt:   p.CreatedAt.UTC(),
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = s.clock.Now().UTC()
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"display_name", "email", "photo_url"}),
	}).Create(&row).Error
	return translate("save profile", err, "profile", p.UserID)
}

// Accounts

func (s *GormStore) CreateAccount(ctx context.Context, a *model.Account, p *model.Profile) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	a.Email = strings.ToLower(strings.TrimSpace(a.Email))
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(toAccountRow(a)).Error; err != nil {
			if isUniqueViolation(err) {
				return apperror.Conflict("an account with this email already exists")
			}
			return err
		}
		if p == nil {
			return nil
		}
		p.UserID = a.ID
		return tx.Create(&profileRow{
			UserID:      p.UserID,
			DisplayName: p.DisplayName,
			Email:       p.Email,
			PhotoURL:    p.PhotoURL,
			CreatedAt:   p.CreatedAt.UTC(),
		}).Error
	})
	return translate("create account", err, "account", a.ID)
}

func (s *GormStore) AccountByEmail(ctx context.Context, email string) (*model.Account, error) {
	var row accountRow
	email = strings.ToLower(strings.TrimSpace(email))
	if err := s.db.WithContext(ctx).Where("email = ?", email).Take(&row).Error; err != nil {
		return nil, translate("get account", err, "account", "")
	}
	return row.toModel(), nil
}

func (s *GormStore) AccountByID(ctx context.Context, id string) (*model.Account, error) {
	var row accountRow
	if err := s.db.WithContext(ctx).Where("id = ?", id).Take(&row).Error; err != nil {
		return nil, translate("get account", err, "account", id)
	}
	return row.toModel(), nil
}

func (s *GormStore) SetPasswordHash(ctx context.Context, id, hash string) error {
	res := s.db.WithContext(ctx).Model(&accountRow{}).Where("id = ?", id).Update("password_hash", hash)
	if res.Error != nil {
		return translate("update password", res.Error, "account", id)
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound("account", id)
	}
	return nil
}
