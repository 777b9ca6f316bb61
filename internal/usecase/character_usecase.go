package usecase

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"

	"charforge/internal/domain/model"
	repo "charforge/internal/repository"

	"go.uber.org/zap"
)

const (
	MinCharacterNameLength = 2
	MaxCharacterNameLength = 50
	MaxShapeSelector       = 20
)

var hexColorRe = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// キャラクター作成・編集の入力
type CharacterInput struct {
	Name       string
	ClassID    int64
	Gender     string
	Appearance model.Appearance
}

// 持ち主向けの操作（作成・編集・申請・複製・共有・削除）
type CharacterUsecase struct {
	characters repo.CharacterRepository
	classes    repo.CharacterClassRepository
	pager      Pager
	logger     *zap.Logger
}

func NewCharacterUsecase(
	characters repo.CharacterRepository,
	classes repo.CharacterClassRepository,
	pager Pager,
	logger *zap.Logger,
) *CharacterUsecase {
	return &CharacterUsecase{
		characters: characters,
		classes:    classes,
		pager:      pager,
		logger:     logger,
	}
}

func (u *CharacterUsecase) Create(ctx context.Context, actor model.Principal, in CharacterInput) (model.Character, error) {
	if err := requireAuthenticated(actor); err != nil {
		return model.Character{}, err
	}

	name, err := normalizeCharacterName(in.Name)
	if err != nil {
		return model.Character{}, err
	}
	gender := model.Gender(strings.ToUpper(strings.TrimSpace(in.Gender)))
	if !gender.Valid() {
		return model.Character{}, Validation("invalid gender")
	}
	if err := validateAppearance(in.Appearance); err != nil {
		return model.Character{}, err
	}
	if err := u.ensureClass(ctx, in.ClassID); err != nil {
		return model.Character{}, err
	}
	if err := u.ensureNameFree(ctx, actor.UserID, name, 0); err != nil {
		return model.Character{}, err
	}

	c, err := u.characters.Create(ctx, model.Character{
		Name:       name,
		ClassID:    in.ClassID,
		Gender:     gender,
		Appearance: in.Appearance,
		Status:     model.CharacterStatusDraft,
		IsShared:   false,
		OwnerID:    actor.UserID,
	})
	if errors.Is(err, repo.ErrDuplicate) {
		return model.Character{}, Conflict("character name already used")
	}
	if err != nil {
		return model.Character{}, u.dbError("character create failed", err)
	}
	return c, nil
}

func (u *CharacterUsecase) Update(ctx context.Context, actor model.Principal, characterID int64, in CharacterInput) (model.Character, error) {
	c, err := u.loadOwned(ctx, actor, characterID)
	if err != nil {
		return model.Character{}, err
	}
	if !c.Status.CanEdit() {
		return model.Character{}, Validation("cannot edit while pending")
	}

	name, err := normalizeCharacterName(in.Name)
	if err != nil {
		return model.Character{}, err
	}
	gender := model.Gender(strings.ToUpper(strings.TrimSpace(in.Gender)))
	if !gender.Valid() {
		return model.Character{}, Validation("invalid gender")
	}
	if err := validateAppearance(in.Appearance); err != nil {
		return model.Character{}, err
	}
	if in.ClassID != c.ClassID {
		if err := u.ensureClass(ctx, in.ClassID); err != nil {
			return model.Character{}, err
		}
	}
	if name != c.Name {
		if err := u.ensureNameFree(ctx, actor.UserID, name, c.ID); err != nil {
			return model.Character{}, err
		}
	}

	// 承認済みで名前が変わったら審査待ちへ戻る（共有も解除）
	c.Rename(name)
	c.ClassID = in.ClassID
	c.Gender = gender
	c.Appearance = in.Appearance

	if err := u.characters.Update(ctx, c); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return model.Character{}, Conflict("character name already used")
		}
		return model.Character{}, u.mapRepoError("character update failed", err)
	}
	return c, nil
}

func (u *CharacterUsecase) SubmitForReview(ctx context.Context, actor model.Principal, characterID int64) (model.Character, error) {
	c, err := u.loadOwned(ctx, actor, characterID)
	if err != nil {
		return model.Character{}, err
	}
	if !c.Status.CanSubmit() {
		return model.Character{}, Validation("character cannot be submitted from status " + string(c.Status))
	}

	c.Status = model.CharacterStatusPending
	c.RejectionReason = ""
	c.IsShared = false

	if err := u.characters.Update(ctx, c); err != nil {
		return model.Character{}, u.mapRepoError("character submit failed", err)
	}
	return c, nil
}

// Duplicate は承認済みキャラクターの外見をコピーした下書きを作る。
// status / isShared はコピーしない。
func (u *CharacterUsecase) Duplicate(ctx context.Context, actor model.Principal, characterID int64, newName string) (model.Character, error) {
	src, err := u.loadOwned(ctx, actor, characterID)
	if err != nil {
		return model.Character{}, err
	}
	if src.Status != model.CharacterStatusApproved {
		return model.Character{}, Validation("only approved characters can be duplicated")
	}

	name, err := normalizeCharacterName(newName)
	if err != nil {
		return model.Character{}, err
	}
	if err := u.ensureNameFree(ctx, actor.UserID, name, 0); err != nil {
		return model.Character{}, err
	}

	dup, err := u.characters.Create(ctx, model.Character{
		Name:       name,
		ClassID:    src.ClassID,
		Gender:     src.Gender,
		Appearance: src.Appearance,
		Status:     model.CharacterStatusDraft,
		IsShared:   false,
		OwnerID:    actor.UserID,
	})
	if errors.Is(err, repo.ErrDuplicate) {
		return model.Character{}, Conflict("character name already used")
	}
	if err != nil {
		return model.Character{}, u.dbError("character duplicate failed", err)
	}
	return dup, nil
}

func (u *CharacterUsecase) ToggleShare(ctx context.Context, actor model.Principal, characterID int64) (model.Character, error) {
	c, err := u.loadOwned(ctx, actor, characterID)
	if err != nil {
		return model.Character{}, err
	}
	if c.Status != model.CharacterStatusApproved {
		return model.Character{}, Validation("only approved characters can be shared")
	}

	c.IsShared = !c.IsShared
	if err := u.characters.Update(ctx, c); err != nil {
		return model.Character{}, u.mapRepoError("character share failed", err)
	}
	return c, nil
}

func (u *CharacterUsecase) Delete(ctx context.Context, actor model.Principal, characterID int64) error {
	c, err := u.loadOwned(ctx, actor, characterID)
	if err != nil {
		return err
	}
	if err := u.characters.Delete(ctx, c.ID); err != nil {
		return u.mapRepoError("character delete failed", err)
	}
	return nil
}

// 選択できるクラスの一覧（参照データ）
func (u *CharacterUsecase) ListClasses(ctx context.Context) ([]model.CharacterClass, error) {
	items, err := u.classes.List(ctx)
	if err != nil {
		return nil, u.dbError("class list failed", err)
	}
	return items, nil
}

// Get は公開詳細。本人以外は承認済みかつ共有中のみ見える。
// 見えない場合は存在を漏らさないため常にNOT_FOUND。
func (u *CharacterUsecase) Get(ctx context.Context, viewer model.Principal, characterID int64) (model.Character, error) {
	if characterID <= 0 {
		return model.Character{}, NotFound("character not found")
	}
	c, err := u.characters.FindByID(ctx, characterID)
	if err != nil {
		return model.Character{}, u.mapRepoError("character lookup failed", err)
	}
	if !c.VisibleTo(viewer.UserID) {
		return model.Character{}, NotFound("character not found")
	}
	return c, nil
}

func (u *CharacterUsecase) ListMine(ctx context.Context, actor model.Principal, page int) (Page[model.Character], error) {
	if err := requireAuthenticated(actor); err != nil {
		return Page[model.Character]{}, err
	}
	if err := u.pager.Validate(page); err != nil {
		return Page[model.Character]{}, err
	}
	owner := actor.UserID
	items, total, err := u.characters.List(ctx, repo.CharacterListFilter{
		OwnerID: &owner,
		Page:    page,
		Limit:   u.pager.PageSize,
	})
	if err != nil {
		return Page[model.Character]{}, u.dbError("character list failed", err)
	}
	return Page[model.Character]{Items: items, Total: total, Page: page, Limit: u.pager.PageSize}, nil
}

// 公開ギャラリー（承認済み + 共有中）
func (u *CharacterUsecase) ListGallery(ctx context.Context, page int) (Page[model.Character], error) {
	if err := u.pager.Validate(page); err != nil {
		return Page[model.Character]{}, err
	}
	status := model.CharacterStatusApproved
	shared := true
	items, total, err := u.characters.List(ctx, repo.CharacterListFilter{
		Status:   &status,
		IsShared: &shared,
		Page:     page,
		Limit:    u.pager.PageSize,
	})
	if err != nil {
		return Page[model.Character]{}, u.dbError("gallery list failed", err)
	}
	return Page[model.Character]{Items: items, Total: total, Page: page, Limit: u.pager.PageSize}, nil
}

// 持ち主本人のキャラクターを取得する
func (u *CharacterUsecase) loadOwned(ctx context.Context, actor model.Principal, characterID int64) (model.Character, error) {
	if err := requireAuthenticated(actor); err != nil {
		return model.Character{}, err
	}
	if characterID <= 0 {
		return model.Character{}, Validation("invalid character id")
	}
	c, err := u.characters.FindByID(ctx, characterID)
	if err != nil {
		return model.Character{}, u.mapRepoError("character lookup failed", err)
	}
	if c.OwnerID != actor.UserID {
		return model.Character{}, Forbidden("not the owner of this character")
	}
	return c, nil
}

func (u *CharacterUsecase) ensureClass(ctx context.Context, classID int64) error {
	if classID <= 0 {
		return Validation("invalid class id")
	}
	ok, err := u.classes.Exists(ctx, classID)
	if err != nil {
		return u.dbError("class lookup failed", err)
	}
	if !ok {
		return Validation("invalid class id")
	}
	return nil
}

func (u *CharacterUsecase) ensureNameFree(ctx context.Context, ownerID int64, name string, excludeID int64) error {
	taken, err := u.characters.ExistsByOwnerAndName(ctx, ownerID, name, excludeID)
	if err != nil {
		return u.dbError("character name lookup failed", err)
	}
	if taken {
		return Conflict("character name already used")
	}
	return nil
}

func (u *CharacterUsecase) mapRepoError(msg string, err error) error {
	if errors.Is(err, repo.ErrNotFound) {
		return NotFound("character not found")
	}
	return u.dbError(msg, err)
}

func (u *CharacterUsecase) dbError(msg string, err error) error {
	u.logger.Error(msg, zap.Error(err))
	return Internal("db error", err)
}

func normalizeCharacterName(name string) (string, error) {
	n := strings.TrimSpace(name)
	l := utf8.RuneCountInString(n)
	if l < MinCharacterNameLength {
		return "", Validation("name must be at least 2 characters")
	}
	if l > MaxCharacterNameLength {
		return "", Validation("name must be at most 50 characters")
	}
	return n, nil
}

func validateAppearance(a model.Appearance) error {
	for _, c := range []string{a.SkinColor, a.HairColor, a.EyeColor} {
		if !hexColorRe.MatchString(c) {
			return Validation("colors must be #RRGGBB")
		}
	}
	for _, s := range []int{a.FaceShape, a.HairStyle, a.BeardStyle, a.BodyType, a.NoseShape, a.EarShape} {
		if s < 0 || s > MaxShapeSelector {
			return Validation("shape selectors must be between 0 and 20")
		}
	}
	return nil
}
