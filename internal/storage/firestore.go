package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/pageza/recipeshare/backend/internal/apperror"
	"github.com/pageza/recipeshare/backend/internal/clock"
	"github.com/pageza/recipeshare/backend/internal/model"
)

const (
	recipesCollection       = "recipes"
	usersCollection         = "users"
	accountsCollection      = "accounts"
	accountEmailsCollection = "accountEmails"
)

// FirestoreStore implements Store on Cloud Firestore. Recipes live in "recipes"
// with comments embedded; profiles live in "users".
type FirestoreStore struct {
	client *firestore.Client
	clock  clock.Clock
}

// NewFirestoreStore connects to the project. The emulator is used when
// FIRESTORE_EMULATOR_HOST is set.
func NewFirestoreStore(ctx context.Context, projectID string, clk clock.Clock) (*FirestoreStore, error) {
	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("firestore.NewClient: %w", err)
	}
	return NewFirestoreStoreWithClient(client, clk), nil
}

// NewFirestoreStoreWithClient wraps an existing client.
func NewFirestoreStoreWithClient(client *firestore.Client, clk clock.Clock) *FirestoreStore {
	if clk == nil {
		clk = clock.Real{}
	}
	return &FirestoreStore{client: client, clock: clk}
}

func (s *FirestoreStore) Close() error {
	return s.client.Close()
}

func (s *FirestoreStore) Ping(ctx context.Context) error {
	iter := s.client.Collection(recipesCollection).Limit(1).Documents(ctx)
	defer iter.Stop()
	if _, err := iter.Next(); err != nil && err != iterator.Done {
		return apperror.Unavailable("reach firestore", err)
	}
	return nil
}

func (s *FirestoreStore) recipes() *firestore.CollectionRef {
	return s.client.Collection(recipesCollection)
}

func (s *FirestoreStore) users() *firestore.CollectionRef {
	return s.client.Collection(usersCollection)
}

// translateFirestore maps gRPC status codes to application errors.
func translateFirestore(op string, err error, resource, id string) error {
	if err == nil {
		return nil
	}
	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	if status.Code(err) == codes.NotFound {
		return apperror.NotFound(resource, id)
	}
	return apperror.Unavailable(op, err)
}

func decodeRecipe(snap *firestore.DocumentSnapshot) (*model.Recipe, error) {
	var r model.Recipe
	if err := snap.DataTo(&r); err != nil {
		return nil, apperror.Internal("decode recipe", err)
	}
	r.ID = snap.Ref.ID
	r.Normalize()
	return &r, nil
}

// Recipes

func (s *FirestoreStore) CreateRecipe(ctx context.Context, r *model.Recipe) error {
	ref := s.recipes().NewDoc()
	if r.ID != "" {
		ref = s.recipes().Doc(r.ID)
	}
	r.ID = ref.ID
	r.Normalize()
	_, err := ref.Create(ctx, r)
	if status.Code(err) == codes.AlreadyExists {
		return apperror.Conflict("recipe already exists")
	}
	return translateFirestore("create recipe", err, "recipe", r.ID)
}

func (s *FirestoreStore) GetRecipe(ctx context.Context, id string) (*model.Recipe, error) {
	snap, err := s.recipes().Doc(id).Get(ctx)
	if err != nil {
		return nil, translateFirestore("get recipe", err, "recipe", id)
	}
	return decodeRecipe(snap)
}

func (s *FirestoreStore) UpdateRecipe(ctx context.Context, id string, fn MutateFunc) (*model.Recipe, error) {
	ref := s.recipes().Doc(id)
	var updated *model.Recipe
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			return err
		}
		r, err := decodeRecipe(snap)
		if err != nil {
			return err
		}
		if err := fn(r); err != nil {
			return err
		}
		r.ID = id
		r.Normalize()
		updated = r
		return tx.Set(ref, r)
	})
	if err != nil {
		return nil, translateFirestore("update recipe", err, "recipe", id)
	}
	return updated, nil
}

func (s *FirestoreStore) DeleteRecipe(ctx context.Context, id string, guard MutateFunc) error {
	ref := s.recipes().Doc(id)
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			return err
		}
		r, err := decodeRecipe(snap)
		if err != nil {
			return err
		}
		if guard != nil {
			if err := guard(r); err != nil {
				return err
			}
		}
		if err := tx.Delete(ref); err != nil {
			return err
		}
		for _, uid := range r.Saves {
			err := tx.Set(s.users().Doc(uid), map[string]interface{}{
				"savedRecipes": firestore.ArrayRemove(id),
			}, firestore.MergeAll)
			if err != nil {
				return err
			}
		}
		return nil
	})
	return translateFirestore("delete recipe", err, "recipe", id)
}

func firestoreSortField(sort model.SortOrder) string {
	switch sort {
	case model.SortPopular:
		return "likesCount"
	case model.SortViews:
		return "viewCount"
	default:
		return "createdAt"
	}
}

func (s *FirestoreStore) ListRecipes(ctx context.Context, q model.ListQuery) (*model.Page, error) {
	q = q.Normalized()
	query := s.recipes().Query
	if q.Category != "" {
		query = query.Where("category", "==", q.Category)
	}
	if q.OwnerID != "" {
		query = query.Where("userId", "==", q.OwnerID)
	}
	if q.FeaturedOnly {
		query = query.Where("isFeatured", "==", true)
	}
	if q.Tag != "" {
		query = query.Where("tags", "array-contains", q.Tag)
	}

	field := firestoreSortField(q.Sort)
	query = query.OrderBy(field, firestore.Desc).OrderBy(firestore.DocumentID, firestore.Desc)
	if q.Cursor != "" {
		c, err := model.DecodeCursor(q.Cursor, q.Sort)
		if err != nil {
			return nil, err
		}
		var value interface{} = c.Count
		if q.Sort == model.SortNewest {
			value = c.CreatedAt
		}
		query = query.StartAfter(value, c.ID)
	}

	iter := query.Limit(q.PageSize + 1).Documents(ctx)
	defer iter.Stop()

	var items []*model.Recipe
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, translateFirestore("list recipes", err, "", "")
		}
		r, err := decodeRecipe(snap)
		if err != nil {
			return nil, err
		}
		items = append(items, r)
	}

	page := &model.Page{Items: items}
	if page.Items == nil {
		page.Items = []*model.Recipe{}
	}
	if len(items) > q.PageSize {
		page.Items = items[:q.PageSize]
		page.NextCursor = model.CursorAfter(page.Items[q.PageSize-1], q.Sort).Encode()
	}
	return page, nil
}

func (s *FirestoreStore) RecipesByIDs(ctx context.Context, ids []string) ([]*model.Recipe, error) {
	out := make([]*model.Recipe, 0, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	refs := make([]*firestore.DocumentRef, len(ids))
	for i, id := range ids {
		refs[i] = s.recipes().Doc(id)
	}
	snaps, err := s.client.GetAll(ctx, refs)
	if err != nil {
		return nil, translateFirestore("get recipes", err, "", "")
	}
	for _, snap := range snaps {
		if !snap.Exists() {
			continue
		}
		r, err := decodeRecipe(snap)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

func (s *FirestoreStore) IncrementViewCount(ctx context.Context, id string) error {
	_, err := s.recipes().Doc(id).Update(ctx, []firestore.Update{
		{Path: "viewCount", Value: firestore.Increment(1)},
	})
	return translateFirestore("record view", err, "recipe", id)
}

func (s *FirestoreStore) ToggleSave(ctx context.Context, recipeID, userID string) (*model.Recipe, model.InteractionState, error) {
	ref := s.recipes().Doc(recipeID)
	userRef := s.users().Doc(userID)
	var (
		updated *model.Recipe
		state   model.InteractionState
	)
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			return err
		}
		r, err := decodeRecipe(snap)
		if err != nil {
			return err
		}
		state = r.ToggleSave(userID)
		if err := tx.Set(ref, r); err != nil {
			return err
		}
		var change interface{} = firestore.ArrayRemove(recipeID)
		if state.Active {
			change = firestore.ArrayUnion(recipeID)
		}
		updated = r
		return tx.Set(userRef, map[string]interface{}{"savedRecipes": change}, firestore.MergeAll)
	})
	if err != nil {
		return nil, model.InteractionState{}, translateFirestore("save recipe", err, "recipe", recipeID)
	}
	return updated, state, nil
}

// Profiles

func (s *FirestoreStore) GetProfile(ctx context.Context, userID string) (*model.Profile, error) {
	snap, err := s.users().Doc(userID).Get(ctx)
	if err != nil {
		return nil, translateFirestore("get profile", err, "profile", userID)
	}
	var p model.Profile
	if err := snap.DataTo(&p); err != nil {
		return nil, apperror.Internal("decode profile", err)
	}
	p.UserID = snap.Ref.ID
	if p.SavedRecipes == nil {
		p.SavedRecipes = []string{}
	}
	return &p, nil
}

func (s *FirestoreStore) UpsertProfile(ctx context.Context, p *model.Profile) error {
	ref := s.users().Doc(p.UserID)
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		_, err := tx.Get(ref)
		switch {
		case status.Code(err) == codes.NotFound:
			created := p.CreatedAt
			if created.IsZero() {
				created = s.clock.Now()
			}
			return tx.Set(ref, model.Profile{
				DisplayName:  p.DisplayName,
				Email:        p.Email,
				PhotoURL:     p.PhotoURL,
				CreatedAt:    created,
				SavedRecipes: []string{},
			})
		case err != nil:
			return err
		}
		return tx.Set(ref, map[string]interface{}{
			"displayName": p.DisplayName,
			"email":       p.Email,
			"photoURL":    p.PhotoURL,
		}, firestore.MergeAll)
	})
	return translateFirestore("save profile", err, "profile", p.UserID)
}

// Accounts

type accountDoc struct {
	Email        string    `firestore:"email"`
	PasswordHash string    `firestore:"passwordHash"`
	DisplayName  string    `firestore:"displayName"`
	PhotoURL     string    `firestore:"photoURL"`
	Provider     string    `firestore:"provider"`
	CreatedAt    time.Time `firestore:"createdAt"`
}

func emailKey(email string) string {
	return url.PathEscape(strings.ToLower(strings.TrimSpace(email)))
}

func (s *FirestoreStore) CreateAccount(ctx context.Context, a *model.Account, p *model.Profile) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	a.Email = strings.ToLower(strings.TrimSpace(a.Email))
	emailRef := s.client.Collection(accountEmailsCollection).Doc(emailKey(a.Email))
	accountRef := s.client.Collection(accountsCollection).Doc(a.ID)

	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		_, err := tx.Get(emailRef)
		if err == nil {
			return apperror.Conflict("an account with this email already exists")
		}
		if status.Code(err) != codes.NotFound {
			return err
		}
		if err := tx.Create(emailRef, map[string]interface{}{"uid": a.ID}); err != nil {
			return err
		}
		err = tx.Create(accountRef, accountDoc{
			Email:        a.Email,
			PasswordHash: a.PasswordHash,
			DisplayName:  a.DisplayName,
			PhotoURL:     a.PhotoURL,
			Provider:     a.Provider,
			CreatedAt:    a.CreatedAt,
		})
		if err != nil || p == nil {
			return err
		}
		p.UserID = a.ID
		return tx.Set(s.users().Doc(a.ID), model.Profile{
			DisplayName:  p.DisplayName,
			Email:        p.Email,
			PhotoURL:     p.PhotoURL,
			CreatedAt:    p.CreatedAt,
			SavedRecipes: []string{},
		})
	})
	return translateFirestore("create account", err, "account", a.ID)
}

func (s *FirestoreStore) AccountByEmail(ctx context.Context, email string) (*model.Account, error) {
	snap, err := s.client.Collection(accountEmailsCollection).Doc(emailKey(email)).Get(ctx)
	if err != nil {
		return nil, translateFirestore("get account", err, "account", "")
	}
	uid, ok := snap.Data()["uid"].(string)
	if !ok {
		return nil, apperror.NotFound("account", "")
	}
	return s.AccountByID(ctx, uid)
}

func (s *FirestoreStore) AccountByID(ctx context.Context, id string) (*model.Account, error) {
	snap, err := s.client.Collection(accountsCollection).Doc(id).Get(ctx)
	if err != nil {
		return nil, translateFirestore("get account", err, "account", id)
	}
	var doc accountDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, apperror.Internal("decode account", err)
	}
	return &model.Account{
		ID:           snap.Ref.ID,
		Email:        doc.Email,
		PasswordHash: doc.PasswordHash,
		DisplayName:  doc.DisplayName,
		PhotoURL:     doc.PhotoURL,
		Provider:     doc.Provider,
		CreatedAt:    doc.CreatedAt,
	}, nil
}

func (s *FirestoreStore) SetPasswordHash(ctx context.Context, id, hash string) error {
	_, err := s.client.Collection(accountsCollection).Doc(id).Update(ctx, []firestore.Update{
		{Path: "passwordHash", Value: hash},
	})
	return translateFirestore("update password", err, "account", id)
}
