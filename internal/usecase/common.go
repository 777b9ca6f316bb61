package usecase

import (
	"strings"
	"time"
	"unicode/utf8"

	"charforge/internal/domain/model"
)

// 現在の時間
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// Pager はページ番号の上限と一覧ごとの件数を持つ。
type Pager struct {
	MaxPage  int
	PageSize int
}

const (
	DefaultMaxPage  = 1000
	DefaultPageSize = 20
)

func NewPager(maxPage, pageSize int) Pager {
	if maxPage <= 0 {
		maxPage = DefaultMaxPage
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return Pager{MaxPage: maxPage, PageSize: pageSize}
}

// ページ番号は1始まりで [1, MaxPage]
func (p Pager) Validate(page int) error {
	if page < 1 || page > p.MaxPage {
		return Validation("invalid page")
	}
	return nil
}

// 一覧の返却形
type Page[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
}

const (
	MinReasonLength = 10
	MaxReasonLength = 500
)

// 却下・停止の理由（前後空白を除いて10〜500文字）
func normalizeReason(reason string) (string, error) {
	r := strings.TrimSpace(reason)
	n := utf8.RuneCountInString(r)
	if n < MinReasonLength {
		return "", Validation("reason must be at least 10 characters")
	}
	if n > MaxReasonLength {
		return "", Validation("reason must be at most 500 characters")
	}
	return r, nil
}

func requireAuthenticated(actor model.Principal) error {
	if !actor.Authenticated() {
		return Unauthenticated("unauthorized")
	}
	return nil
}

func requireReviewer(actor model.Principal) error {
	if err := requireAuthenticated(actor); err != nil {
		return err
	}
	if !actor.Role.IsReviewer() {
		return Forbidden("reviewer only")
	}
	return nil
}

func requireAdmin(actor model.Principal) error {
	if err := requireAuthenticated(actor); err != nil {
		return err
	}
	if actor.Role != model.RoleAdmin {
		return Forbidden("admin only")
	}
	return nil
}
