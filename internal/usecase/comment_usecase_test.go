package usecase_test

import (
	"context"
	"strings"
	"testing"

	"charforge/internal/domain/model"
	repo "charforge/internal/repository"
	"charforge/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const commentText = "Love the hair color, very heroic!"

func newCommentUsecase(d *deps) *usecase.CommentUsecase {
	return usecase.NewCommentUsecase(d.comments, d.characters, d.logger)
}

func TestCommentUsecase_Create_Success_IsPending(t *testing.T) {
	d := newDeps()
	uc := newCommentUsecase(d)
	ctx := context.Background()

	d.characters.On("FindByID", ctx, int64(5)).Return(approvedCharacter(), nil)
	d.comments.On("ExistsByCharacterAndAuthor", ctx, int64(5), stranger.UserID).Return(false, nil)
	d.comments.On("Create", ctx, mock.MatchedBy(func(c model.Comment) bool {
		return c.Status == model.CommentStatusPending &&
			c.Rating == 4 &&
			c.Text == commentText &&
			c.AuthorID == stranger.UserID &&
			c.CharacterID == 5
	})).Return(model.Comment{ID: 1, Status: model.CommentStatusPending}, nil)

	c, err := uc.Create(ctx, stranger, 5, usecase.CreateCommentInput{Rating: 4, Text: "  " + commentText + "  "})
	require.NoError(t, err)
	assert.Equal(t, model.CommentStatusPending, c.Status)
	d.assertExpectations(t)
}

func TestCommentUsecase_Create_RatingOutOfRange(t *testing.T) {
	for _, rating := range []int{0, 6} {
		d := newDeps()
		uc := newCommentUsecase(d)

		_, err := uc.Create(context.Background(), stranger, 5, usecase.CreateCommentInput{Rating: rating, Text: commentText})
		assert.Equal(t, usecase.CodeValidation, codeOf(err), "rating %d", rating)
		d.characters.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	}
}

func TestCommentUsecase_Create_TextLength(t *testing.T) {
	d := newDeps()
	uc := newCommentUsecase(d)

	_, err := uc.Create(context.Background(), stranger, 5, usecase.CreateCommentInput{Rating: 3, Text: "   short   "})
	assert.Equal(t, usecase.CodeValidation, codeOf(err))
}

func TestCommentUsecase_Create_OwnCharacter(t *testing.T) {
	d := newDeps()
	uc := newCommentUsecase(d)
	ctx := context.Background()

	d.characters.On("FindByID", ctx, int64(5)).Return(approvedCharacter(), nil)

	_, err := uc.Create(ctx, owner, 5, usecase.CreateCommentInput{Rating: 5, Text: commentText})
	assert.Equal(t, usecase.CodeForbidden, codeOf(err))
}

func TestCommentUsecase_Create_CharacterNotApproved(t *testing.T) {
	d := newDeps()
	uc := newCommentUsecase(d)
	ctx := context.Background()

	d.characters.On("FindByID", ctx, int64(5)).Return(pendingCharacter(), nil)

	_, err := uc.Create(ctx, stranger, 5, usecase.CreateCommentInput{Rating: 5, Text: commentText})
	assert.Equal(t, usecase.CodeValidation, codeOf(err))
}

func TestCommentUsecase_Create_SecondCommentConflicts(t *testing.T) {
	d := newDeps()
	uc := newCommentUsecase(d)
	ctx := context.Background()

	d.characters.On("FindByID", ctx, int64(5)).Return(approvedCharacter(), nil)
	d.comments.On("ExistsByCharacterAndAuthor", ctx, int64(5), stranger.UserID).Return(true, nil)

	_, err := uc.Create(ctx, stranger, 5, usecase.CreateCommentInput{Rating: 5, Text: commentText})
	assert.Equal(t, usecase.CodeConflict, codeOf(err))
	d.comments.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCommentUsecase_Create_CharacterNotFound(t *testing.T) {
	d := newDeps()
	uc := newCommentUsecase(d)
	ctx := context.Background()

	d.characters.On("FindByID", ctx, int64(9)).Return(model.Character{}, repo.ErrNotFound)

	_, err := uc.Create(ctx, stranger, 9, usecase.CreateCommentInput{Rating: 5, Text: commentText})
	assert.Equal(t, usecase.CodeNotFound, codeOf(err))
}

func TestCommentUsecase_ListApproved_HiddenCharacter(t *testing.T) {
	d := newDeps()
	uc := newCommentUsecase(d)
	ctx := context.Background()

	d.characters.On("FindByID", ctx, int64(5)).Return(pendingCharacter(), nil)

	_, err := uc.ListApprovedForCharacter(ctx, stranger, 5)
	assert.Equal(t, usecase.CodeNotFound, codeOf(err))
	d.comments.AssertNotCalled(t, "ListApprovedByCharacter", mock.Anything, mock.Anything)
}

func TestCommentUsecase_ListApproved(t *testing.T) {
	d := newDeps()
	uc := newCommentUsecase(d)
	ctx := context.Background()

	d.characters.On("FindByID", ctx, int64(5)).Return(approvedCharacter(), nil)
	d.comments.On("ListApprovedByCharacter", ctx, int64(5)).Return([]model.Comment{{ID: 1}, {ID: 2}}, nil)

	items, err := uc.ListApprovedForCharacter(ctx, model.Principal{}, 5)
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestCommentUsecase_Delete_OnlyAuthor(t *testing.T) {
	d := newDeps()
	uc := newCommentUsecase(d)
	ctx := context.Background()

	d.comments.On("FindByID", ctx, int64(1)).Return(model.Comment{ID: 1, AuthorID: stranger.UserID}, nil)

	err := uc.Delete(ctx, owner, 1)
	assert.Equal(t, usecase.CodeForbidden, codeOf(err))

	d.comments.On("Delete", ctx, int64(1)).Return(nil)
	require.NoError(t, uc.Delete(ctx, stranger, 1))
}

// =====================
// CommentModerationUsecase
// =====================

func newCommentModerationUsecase(d *deps) *usecase.CommentModerationUsecase {
	return usecase.NewCommentModerationUsecase(d.tx, d.comments, d.users, d.notifier, d.audit, d.clock, d.pager, d.logger)
}

func pendingComment() model.Comment {
	return model.Comment{
		ID:          7,
		Rating:      2,
		Text:        commentText,
		Status:      model.CommentStatusPending,
		CharacterID: 5,
		AuthorID:    stranger.UserID,
	}
}

func TestCommentModeration_Reject_RecordsReviewAndNotifies(t *testing.T) {
	d := newDeps()
	uc := newCommentModerationUsecase(d)
	ctx := context.Background()

	d.tx.On("WithinTx", ctx).Return(nil)
	d.comments.On("FindByIDForUpdate", ctx, int64(7)).Return(pendingComment(), nil)
	d.characters.On("FindByID", ctx, int64(5)).Return(approvedCharacter(), nil)
	d.comments.On("Update", ctx, mock.MatchedBy(func(c model.Comment) bool {
		return c.Status == model.CommentStatusRejected &&
			c.RejectionReason == "Contains offensive language." &&
			c.ReviewedByID != nil && *c.ReviewedByID == reviewer.UserID &&
			c.ReviewedAt != nil && c.ReviewedAt.Equal(testNow)
	})).Return(nil).Once()
	d.logs.On("Create", ctx, mock.MatchedBy(func(l model.ActivityLog) bool {
		return l.Action == model.ActivityCommentRejected &&
			l.TargetType == model.ActivityTargetComment &&
			l.TargetID == 7 &&
			l.TargetName == "Lyra"
	})).Return(nil)
	d.users.On("FindByID", ctx, stranger.UserID).Return(&model.User{ID: stranger.UserID, Pseudo: "bram", Email: "bram@example.com"}, nil)
	d.notifier.On("CommentRejected", ctx, usecase.Recipient{Email: "bram@example.com", Name: "bram"}, "Lyra", "Contains offensive language.").Return(nil)

	c, err := uc.Reject(ctx, reviewer, 7, "Contains offensive language.")
	require.NoError(t, err)
	assert.Equal(t, model.CommentStatusRejected, c.Status)
	d.assertExpectations(t)
}

func TestCommentModeration_Approve_AlreadyApproved(t *testing.T) {
	d := newDeps()
	uc := newCommentModerationUsecase(d)
	ctx := context.Background()

	c := pendingComment()
	c.Status = model.CommentStatusApproved
	d.tx.On("WithinTx", ctx).Return(nil)
	d.comments.On("FindByIDForUpdate", ctx, int64(7)).Return(c, nil)

	_, err := uc.Approve(ctx, reviewer, 7)
	assert.Equal(t, usecase.CodeValidation, codeOf(err))
	d.comments.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestCommentModeration_ListPending_InvalidPage(t *testing.T) {
	d := newDeps()
	uc := newCommentModerationUsecase(d)

	_, err := uc.ListPending(context.Background(), reviewer, 1001)
	assert.Equal(t, usecase.CodeValidation, codeOf(err))
	d.comments.AssertNotCalled(t, "ListPending", mock.Anything, mock.Anything, mock.Anything)
}

func TestCommentModeration_Reject_InvalidReason(t *testing.T) {
	cases := []struct {
		name   string
		reason string
	}{
		{"empty", ""},
		{"nine chars", "too rude."},
		{"short after trim", "   rude!!   "},
		{"over 500", strings.Repeat("x", 501)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := newDeps()
			uc := newCommentModerationUsecase(d)

			_, err := uc.Reject(context.Background(), reviewer, 7, tc.reason)
			assert.Equal(t, usecase.CodeValidation, codeOf(err))
			d.tx.AssertNotCalled(t, "WithinTx", mock.Anything)
		})
	}
}

// 境界値（10文字・500文字）は通る
func TestCommentModeration_Reject_ReasonBoundaries(t *testing.T) {
	for _, reason := range []string{"Off-topic.", strings.Repeat("y", 500)} {
		d := newDeps()
		uc := newCommentModerationUsecase(d)
		ctx := context.Background()

		d.tx.On("WithinTx", ctx).Return(nil)
		d.comments.On("FindByIDForUpdate", ctx, int64(7)).Return(pendingComment(), nil)
		d.characters.On("FindByID", ctx, int64(5)).Return(approvedCharacter(), nil)
		d.comments.On("Update", ctx, mock.MatchedBy(func(c model.Comment) bool {
			return c.RejectionReason == reason
		})).Return(nil)
		d.logs.On("Create", ctx, mock.Anything).Return(nil)
		d.users.On("FindByID", ctx, stranger.UserID).Return(&model.User{ID: stranger.UserID, Pseudo: "bram", Email: "bram@example.com"}, nil)
		d.notifier.On("CommentRejected", ctx, mock.Anything, "Lyra", reason).Return(nil)

		_, err := uc.Reject(ctx, reviewer, 7, reason)
		require.NoError(t, err)
	}
}

// 審査待ち以外（承認済み・却下済み）の却下はVALIDATION。ロック付きで読んだ状態で判定する。
func TestCommentModeration_Reject_NotPending(t *testing.T) {
	for _, status := range []model.CommentStatus{model.CommentStatusApproved, model.CommentStatusRejected} {
		t.Run(string(status), func(t *testing.T) {
			d := newDeps()
			uc := newCommentModerationUsecase(d)
			ctx := context.Background()

			c := pendingComment()
			c.Status = status
			d.tx.On("WithinTx", ctx).Return(nil)
			d.comments.On("FindByIDForUpdate", ctx, int64(7)).Return(c, nil)

			_, err := uc.Reject(ctx, reviewer, 7, "Contains offensive language.")
			assert.Equal(t, usecase.CodeValidation, codeOf(err))
			d.comments.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
			d.comments.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
			d.logs.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
			d.notifier.AssertNotCalled(t, "CommentRejected", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}
