package handler

import (
	"net/http"

	"charforge/internal/domain/model"
	"charforge/internal/middleware"
	"charforge/internal/usecase"

	"github.com/labstack/echo/v4"
)

type appearanceRequest struct {
	SkinColor  string `json:"skin_color" validate:"required,hexcolor6"`
	HairColor  string `json:"hair_color" validate:"required,hexcolor6"`
	EyeColor   string `json:"eye_color" validate:"required,hexcolor6"`
	FaceShape  int    `json:"face_shape" validate:"min=0,max=20"`
	HairStyle  int    `json:"hair_style" validate:"min=0,max=20"`
	BeardStyle int    `json:"beard_style" validate:"min=0,max=20"`
	BodyType   int    `json:"body_type" validate:"min=0,max=20"`
	NoseShape  int    `json:"nose_shape" validate:"min=0,max=20"`
	EarShape   int    `json:"ear_shape" validate:"min=0,max=20"`
}

// キャラクター作成・編集のリクエストボディ
type characterRequest struct {
	Name       string            `json:"name" validate:"required"`
	ClassID    int64             `json:"class_id" validate:"required,min=1"`
	Gender     string            `json:"gender" validate:"required"`
	Appearance appearanceRequest `json:"appearance"`
}

func (r characterRequest) toInput() usecase.CharacterInput {
	return usecase.CharacterInput{
		Name:    r.Name,
		ClassID: r.ClassID,
		Gender:  r.Gender,
		Appearance: model.Appearance{
			SkinColor:  r.Appearance.SkinColor,
			HairColor:  r.Appearance.HairColor,
			EyeColor:   r.Appearance.EyeColor,
			FaceShape:  r.Appearance.FaceShape,
			HairStyle:  r.Appearance.HairStyle,
			BeardStyle: r.Appearance.BeardStyle,
			BodyType:   r.Appearance.BodyType,
			NoseShape:  r.Appearance.NoseShape,
			EarShape:   r.Appearance.EarShape,
		},
	}
}

type duplicateRequest struct {
	Name string `json:"name" validate:"required"`
}

// ギャラリー（公開）と /me/characters（本人）
type CharacterHandler struct {
	uc *usecase.CharacterUsecase
}

// DI
func NewCharacterHandler(uc *usecase.CharacterUsecase) *CharacterHandler {
	return &CharacterHandler{uc: uc}
}

func (h *CharacterHandler) RegisterRoutes(e *echo.Echo, mw Middlewares) {
	e.GET("/gallery", h.gallery)
	e.GET("/classes", h.classes)
	e.GET("/characters/:id", h.detail, mw.Optional...)

	me := e.Group("/me/characters", mw.Member...)
	me.GET("", h.listMine)
	me.POST("", h.create)
	me.PUT("/:id", h.update)
	me.DELETE("/:id", h.delete)
	me.POST("/:id/submit", h.submit)
	me.POST("/:id/duplicate", h.duplicate)
	me.POST("/:id/share", h.toggleShare)
}

func (h *CharacterHandler) gallery(c echo.Context) error {
	page, err := queryPage(c)
	if err != nil {
		return writeError(c, err)
	}
	res, err := h.uc.ListGallery(c.Request().Context(), page)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *CharacterHandler) classes(c echo.Context) error {
	items, err := h.uc.ListClasses(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"items": items})
}

// 本人以外には承認済み・共有中のものだけ見える
func (h *CharacterHandler) detail(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	ch, err := h.uc.Get(c.Request().Context(), middleware.PrincipalFrom(c), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, ch)
}

func (h *CharacterHandler) listMine(c echo.Context) error {
	page, err := queryPage(c)
	if err != nil {
		return writeError(c, err)
	}
	res, err := h.uc.ListMine(c.Request().Context(), middleware.PrincipalFrom(c), page)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *CharacterHandler) create(c echo.Context) error {
	var req characterRequest
	if err := bind(c, &req); err != nil {
		return writeError(c, err)
	}
	ch, err := h.uc.Create(c.Request().Context(), middleware.PrincipalFrom(c), req.toInput())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, ch)
}

func (h *CharacterHandler) update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	var req characterRequest
	if err := bind(c, &req); err != nil {
		return writeError(c, err)
	}
	ch, err := h.uc.Update(c.Request().Context(), middleware.PrincipalFrom(c), id, req.toInput())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, ch)
}

func (h *CharacterHandler) delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	if err := h.uc.Delete(c.Request().Context(), middleware.PrincipalFrom(c), id); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *CharacterHandler) submit(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	ch, err := h.uc.SubmitForReview(c.Request().Context(), middleware.PrincipalFrom(c), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, ch)
}

func (h *CharacterHandler) duplicate(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	var req duplicateRequest
	if err := bind(c, &req); err != nil {
		return writeError(c, err)
	}
	ch, err := h.uc.Duplicate(c.Request().Context(), middleware.PrincipalFrom(c), id, req.Name)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, ch)
}

func (h *CharacterHandler) toggleShare(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	ch, err := h.uc.ToggleShare(c.Request().Context(), middleware.PrincipalFrom(c), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, ch)
}
