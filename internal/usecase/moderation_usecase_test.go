package usecase_test

import (
	"context"
	"errors"
	"testing"

	"charforge/internal/domain/model"
	repo "charforge/internal/repository"
	"charforge/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const rejectReason = "Inappropriate character name."

func pendingCharacter() model.Character {
	c := approvedCharacter()
	c.Status = model.CharacterStatusPending
	c.IsShared = false
	return c
}

func ownerUser() *model.User {
	return &model.User{ID: owner.UserID, Pseudo: owner.Pseudo, Email: "aria@example.com", Role: model.RoleUser}
}

func newModerationUsecase(d *deps) *usecase.ModerationUsecase {
	return usecase.NewModerationUsecase(d.tx, d.characters, d.users, d.notifier, d.audit, d.pager, d.logger)
}

func TestModerationUsecase_Reject_Success(t *testing.T) {
	d := newDeps()
	uc := newModerationUsecase(d)
	ctx := context.Background()

	d.tx.On("WithinTx", ctx).Return(nil).Once()
	d.characters.On("FindByIDForUpdate", ctx, int64(5)).Return(pendingCharacter(), nil)
	d.characters.On("Update", ctx, mock.MatchedBy(func(c model.Character) bool {
		return c.Status == model.CharacterStatusRejected && c.RejectionReason == rejectReason
	})).Return(nil).Once()
	d.logs.On("Create", ctx, mock.MatchedBy(func(l model.ActivityLog) bool {
		return l.Action == model.ActivityCharacterRejected &&
			l.ActorUserID == reviewer.UserID &&
			l.ActorPseudo == reviewer.Pseudo &&
			l.TargetType == model.ActivityTargetCharacter &&
			l.TargetID == 5 &&
			l.TargetName == "Lyra" &&
			l.Details["reason"] == rejectReason &&
			l.CreatedAt.Equal(testNow)
	})).Return(nil).Once()
	d.users.On("FindByID", ctx, owner.UserID).Return(ownerUser(), nil)
	d.notifier.On("CharacterRejected", ctx, usecase.Recipient{Email: "aria@example.com", Name: "aria"}, "Lyra", rejectReason).Return(nil).Once()

	// 前後の空白は落とす
	c, err := uc.Reject(ctx, reviewer, 5, "  "+rejectReason+"  ")
	require.NoError(t, err)
	assert.Equal(t, model.CharacterStatusRejected, c.Status)
	assert.Equal(t, rejectReason, c.RejectionReason)
	d.assertExpectations(t)
}

func TestModerationUsecase_Approve_Success(t *testing.T) {
	d := newDeps()
	uc := newModerationUsecase(d)
	ctx := context.Background()

	d.tx.On("WithinTx", ctx).Return(nil)
	d.characters.On("FindByIDForUpdate", ctx, int64(5)).Return(pendingCharacter(), nil)
	d.characters.On("Update", ctx, mock.MatchedBy(func(c model.Character) bool {
		return c.Status == model.CharacterStatusApproved && !c.IsShared
	})).Return(nil)
	d.logs.On("Create", ctx, mock.MatchedBy(func(l model.ActivityLog) bool {
		return l.Action == model.ActivityCharacterApproved && l.TargetID == 5
	})).Return(nil)
	d.users.On("FindByID", ctx, owner.UserID).Return(ownerUser(), nil)
	d.notifier.On("CharacterApproved", ctx, mock.Anything, "Lyra").Return(nil)

	c, err := uc.Approve(ctx, reviewer, 5)
	require.NoError(t, err)
	assert.Equal(t, model.CharacterStatusApproved, c.Status)
	d.assertExpectations(t)
}

// 2回目の承認は審査待ちではないのでVALIDATION、監査ログも通知もなし
func TestModerationUsecase_Approve_NotPending(t *testing.T) {
	d := newDeps()
	uc := newModerationUsecase(d)
	ctx := context.Background()

	d.tx.On("WithinTx", ctx).Return(nil)
	d.characters.On("FindByIDForUpdate", ctx, int64(5)).Return(approvedCharacter(), nil)

	_, err := uc.Approve(ctx, reviewer, 5)
	assert.Equal(t, usecase.CodeValidation, codeOf(err))
	d.logs.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	d.notifier.AssertNotCalled(t, "CharacterApproved", mock.Anything, mock.Anything, mock.Anything)
}

func TestModerationUsecase_Reject_ReasonTooShort(t *testing.T) {
	d := newDeps()
	uc := newModerationUsecase(d)

	_, err := uc.Reject(context.Background(), reviewer, 5, "   too bad   ")
	assert.Equal(t, usecase.CodeValidation, codeOf(err))
	d.tx.AssertNotCalled(t, "WithinTx", mock.Anything)
}

func TestModerationUsecase_RequiresReviewer(t *testing.T) {
	d := newDeps()
	uc := newModerationUsecase(d)
	ctx := context.Background()

	_, err := uc.Approve(ctx, owner, 5)
	assert.Equal(t, usecase.CodeForbidden, codeOf(err))

	_, err = uc.Approve(ctx, model.Principal{}, 5)
	assert.Equal(t, usecase.CodeUnauthenticated, codeOf(err))
}

func TestModerationUsecase_Approve_NotFound(t *testing.T) {
	d := newDeps()
	uc := newModerationUsecase(d)
	ctx := context.Background()

	d.tx.On("WithinTx", ctx).Return(nil)
	d.characters.On("FindByIDForUpdate", ctx, int64(404)).Return(model.Character{}, repo.ErrNotFound)

	_, err := uc.Approve(ctx, reviewer, 404)
	assert.Equal(t, usecase.CodeNotFound, codeOf(err))
}

// 監査ログが書けなければ操作全体が失敗（Txごとロールバック）
func TestModerationUsecase_Approve_AuditFailure_IsInternal(t *testing.T) {
	d := newDeps()
	uc := newModerationUsecase(d)
	ctx := context.Background()

	d.tx.On("WithinTx", ctx).Return(nil)
	d.characters.On("FindByIDForUpdate", ctx, int64(5)).Return(pendingCharacter(), nil)
	d.characters.On("Update", ctx, mock.Anything).Return(nil)
	d.logs.On("Create", ctx, mock.Anything).Return(errors.New("disk full"))

	_, err := uc.Approve(ctx, reviewer, 5)
	assert.Equal(t, usecase.CodeInternal, codeOf(err))
	d.notifier.AssertNotCalled(t, "CharacterApproved", mock.Anything, mock.Anything, mock.Anything)
}

// 通知が失敗しても審査結果は確定する
func TestModerationUsecase_Approve_NotificationFailureIgnored(t *testing.T) {
	d := newDeps()
	uc := newModerationUsecase(d)
	ctx := context.Background()

	d.tx.On("WithinTx", ctx).Return(nil)
	d.characters.On("FindByIDForUpdate", ctx, int64(5)).Return(pendingCharacter(), nil)
	d.characters.On("Update", ctx, mock.Anything).Return(nil)
	d.logs.On("Create", ctx, mock.Anything).Return(nil)
	d.users.On("FindByID", ctx, owner.UserID).Return(ownerUser(), nil)
	d.notifier.On("CharacterApproved", ctx, mock.Anything, "Lyra").Return(errors.New("smtp down"))

	c, err := uc.Approve(ctx, reviewer, 5)
	require.NoError(t, err)
	assert.Equal(t, model.CharacterStatusApproved, c.Status)
}

func TestModerationUsecase_ListPending_InvalidPage_NoRepoCall(t *testing.T) {
	d := newDeps()
	uc := newModerationUsecase(d)

	_, err := uc.ListPending(context.Background(), reviewer, 0)
	assert.Equal(t, usecase.CodeValidation, codeOf(err))
	d.characters.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

func TestModerationUsecase_ListPending(t *testing.T) {
	d := newDeps()
	uc := newModerationUsecase(d)
	ctx := context.Background()

	d.characters.On("List", ctx, mock.MatchedBy(func(f repo.CharacterListFilter) bool {
		return f.Status != nil && *f.Status == model.CharacterStatusPending && f.Page == 1
	})).Return([]model.Character{pendingCharacter()}, int64(1), nil)

	res, err := uc.ListPending(ctx, reviewer, 1)
	require.NoError(t, err)
	assert.Len(t, res.Items, 1)
}

// 承認と却下がほぼ同時に来た場合、後の側はロック解放後の（承認済みの）状態を読むので弾かれる。
// 更新・監査ログ・通知は先に確定した1回分だけ。
func TestModerationUsecase_SecondDecisionSeesCommittedState(t *testing.T) {
	d := newDeps()
	uc := newModerationUsecase(d)
	ctx := context.Background()

	d.tx.On("WithinTx", ctx).Return(nil)
	d.characters.On("FindByIDForUpdate", ctx, int64(5)).Return(pendingCharacter(), nil).Once()
	d.characters.On("FindByIDForUpdate", ctx, int64(5)).Return(approvedCharacter(), nil).Once()
	d.characters.On("Update", ctx, mock.Anything).Return(nil).Once()
	d.logs.On("Create", ctx, mock.Anything).Return(nil).Once()
	d.users.On("FindByID", ctx, owner.UserID).Return(ownerUser(), nil).Once()
	d.notifier.On("CharacterApproved", ctx, mock.Anything, "Lyra").Return(nil).Once()

	_, err := uc.Approve(ctx, reviewer, 5)
	require.NoError(t, err)

	_, err = uc.Reject(ctx, reviewer, 5, rejectReason)
	assert.Equal(t, usecase.CodeValidation, codeOf(err))

	d.notifier.AssertNotCalled(t, "CharacterRejected", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	d.characters.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	d.assertExpectations(t)
}

func TestModerationUsecase_Reject_Twice(t *testing.T) {
	d := newDeps()
	uc := newModerationUsecase(d)
	ctx := context.Background()

	rejected := pendingCharacter()
	rejected.Status = model.CharacterStatusRejected
	rejected.RejectionReason = rejectReason
	d.tx.On("WithinTx", ctx).Return(nil)
	d.characters.On("FindByIDForUpdate", ctx, int64(5)).Return(rejected, nil)

	_, err := uc.Reject(ctx, reviewer, 5, rejectReason)
	assert.Equal(t, usecase.CodeValidation, codeOf(err))
	d.characters.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	d.logs.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	d.notifier.AssertNotCalled(t, "CharacterRejected", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
