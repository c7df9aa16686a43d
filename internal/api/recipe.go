package api

import (
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/recipeshare/backend/internal/apperror"
	"github.com/pageza/recipeshare/backend/internal/middleware"
	"github.com/pageza/recipeshare/backend/internal/model"
	"github.com/pageza/recipeshare/backend/internal/service"
)

// saveTimeout bounds the store write of a submitted recipe. The write runs on
// a context detached from the request so a client disconnect cannot abort it.
const saveTimeout = 15 * time.Second

// ImageUploadWarning is returned alongside a recipe saved without its images.
const ImageUploadWarning = "images could not be uploaded; the recipe was saved without them"

type RateRequest struct {
	Value int `json:"value"`
}

// CreateRecipeResponse is the body of a successful create.
type CreateRecipeResponse struct {
	Recipe  *model.Recipe `json:"recipe"`
	Warning string        `json:"warning,omitempty"`
}

type RecipeHandler struct {
	recipes      service.IRecipeService
	interactions service.IInteractionService
	images       service.IImageService
	log          *zap.Logger
}

func NewRecipeHandler(recipes service.IRecipeService, interactions service.IInteractionService, images service.IImageService, log *zap.Logger) *RecipeHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &RecipeHandler{
		recipes:      recipes,
		interactions: interactions,
		images:       images,
		log:          log,
	}
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup, requireAuth gin.HandlerFunc) {
	recipes := router.Group("/recipes")
	{
		recipes.GET("", h.ListRecipes)
		recipes.GET("/:id", h.GetRecipe)
		recipes.GET("/:id/similar", h.SimilarRecipes)
		recipes.POST("", requireAuth, h.CreateRecipe)
		recipes.PATCH("/:id", requireAuth, h.UpdateRecipe)
		recipes.DELETE("/:id", requireAuth, h.DeleteRecipe)
		recipes.POST("/:id/like", requireAuth, h.ToggleLike)
		recipes.POST("/:id/save", requireAuth, h.ToggleSave)
		recipes.PUT("/:id/rating", requireAuth, h.Rate)
		recipes.GET("/:id/interactions", requireAuth, h.ViewerState)
	}
}

func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	q, err := listQuery(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	page, err := h.recipes.List(c.Request.Context(), q)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func listQuery(c *gin.Context) (model.ListQuery, error) {
	sort, err := model.ParseSortOrder(c.Query("sort"))
	if err != nil {
		return model.ListQuery{}, err
	}
	q := model.ListQuery{
		Category: c.Query("category"),
		OwnerID:  c.Query("owner"),
		Tag:      c.Query("tag"),
		Sort:     sort,
		Cursor:   c.Query("cursor"),
	}
	if v := c.Query("featured"); v != "" {
		featured, err := strconv.ParseBool(v)
		if err != nil {
			return model.ListQuery{}, apperror.InvalidArgument("featured must be true or false")
		}
		q.FeaturedOnly = featured
	}
	if v := c.Query("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 {
			return model.ListQuery{}, apperror.InvalidArgument("limit must be a positive integer")
		}
		q.PageSize = limit
	}
	return q, nil
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	recipe, err := h.recipes.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) SimilarRecipes(c *gin.Context) {
	limit := service.DefaultSimilarLimit
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			_ = c.Error(apperror.InvalidArgument("limit must be a positive integer"))
			return
		}
		limit = n
	}
	recipes, err := h.recipes.Similar(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipes": recipes})
}

// CreateRecipe accepts a JSON draft, or a multipart form with the draft in the
// "recipe" field and image files under "images". Images are uploaded before the
// recipe is saved; if any upload fails the recipe is saved without them.
func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	var draft model.RecipeDraft
	var files []*multipart.FileHeader

	if c.ContentType() == gin.MIMEMultipartPOSTForm {
		form, err := c.MultipartForm()
		if err != nil {
			_ = c.Error(apperror.InvalidArgument("invalid multipart form: %v", err))
			return
		}
		raw := form.Value["recipe"]
		if len(raw) == 0 {
			_ = c.Error(apperror.InvalidArgument("missing recipe field"))
			return
		}
		if err := json.Unmarshal([]byte(raw[0]), &draft); err != nil {
			_ = c.Error(apperror.InvalidArgument("invalid recipe field: %v", err))
			return
		}
		files = form.File["images"]
	} else if !bindJSON(c, &draft) {
		return
	}

	if err := h.recipes.Validate(&draft); err != nil {
		_ = c.Error(err)
		return
	}
	if len(draft.Images)+len(files) > service.MaxImagesPerRecipe {
		_ = c.Error(apperror.InvalidArgument("at most %d images are allowed", service.MaxImagesPerRecipe))
		return
	}

	owner := currentUser(c)
	var warning string
	if len(files) > 0 {
		urls, err := h.uploadFiles(c.Request.Context(), owner.ID, files)
		if err != nil {
			h.log.Warn("saving recipe without images",
				zap.String("user_id", owner.ID),
				zap.Error(err),
			)
			warning = ImageUploadWarning
		} else {
			draft.Images = append(draft.Images, urls...)
		}
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Request.Context()), saveTimeout)
	defer cancel()
	recipe, err := h.recipes.Create(ctx, &draft, owner)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, CreateRecipeResponse{Recipe: recipe, Warning: warning})
}

func (h *RecipeHandler) uploadFiles(ctx context.Context, ownerID string, headers []*multipart.FileHeader) ([]string, error) {
	files, closeAll, err := openFiles(headers)
	if err != nil {
		return nil, err
	}
	defer closeAll()
	return h.images.UploadAll(ctx, ownerID, files)
}

// openFiles opens the uploaded parts. The returned func closes every opened file.
func openFiles(headers []*multipart.FileHeader) ([]service.ImageFile, func(), error) {
	files := make([]service.ImageFile, 0, len(headers))
	var opened []multipart.File
	closeAll := func() {
		for _, f := range opened {
			f.Close()
		}
	}
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			closeAll()
			return nil, func() {}, apperror.InvalidArgument("could not read %q", fh.Filename)
		}
		opened = append(opened, f)
		files = append(files, service.ImageFile{Name: fh.Filename, Size: fh.Size, Body: f})
	}
	return files, closeAll, nil
}

func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	var patch model.RecipePatch
	if !bindJSON(c, &patch) {
		return
	}
	recipe, err := h.recipes.Update(c.Request.Context(), c.Param("id"), middleware.UserID(c), &patch)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	if err := h.recipes.Delete(c.Request.Context(), c.Param("id"), middleware.UserID(c)); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) ToggleLike(c *gin.Context) {
	state, err := h.interactions.ToggleLike(c.Request.Context(), c.Param("id"), middleware.UserID(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, state)
}

func (h *RecipeHandler) ToggleSave(c *gin.Context) {
	state, err := h.interactions.ToggleSave(c.Request.Context(), c.Param("id"), middleware.UserID(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, state)
}

// ViewerState reports whether the caller has liked, saved or rated the recipe.
func (h *RecipeHandler) ViewerState(c *gin.Context) {
	state, err := h.interactions.State(c.Request.Context(), c.Param("id"), middleware.UserID(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, state)
}

func (h *RecipeHandler) Rate(c *gin.Context) {
	var req RateRequest
	if !bindJSON(c, &req) {
		return
	}
	state, err := h.interactions.Rate(c.Request.Context(), c.Param("id"), middleware.UserID(c), req.Value)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, state)
}
