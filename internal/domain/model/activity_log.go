package model

import (
	"time"

	"gorm.io/datatypes"
)

// 特権操作の種類。
type ActivityAction string

const (
	ActivityCharacterApproved   ActivityAction = "CHARACTER_APPROVED"
	ActivityCharacterRejected   ActivityAction = "CHARACTER_REJECTED"
	ActivityCommentApproved     ActivityAction = "COMMENT_APPROVED"
	ActivityCommentRejected     ActivityAction = "COMMENT_REJECTED"
	ActivityUserSuspended       ActivityAction = "USER_SUSPENDED"
	ActivityUserReactivated     ActivityAction = "USER_REACTIVATED"
	ActivityUserDeleted         ActivityAction = "USER_DELETED"
	ActivityUserPasswordReset   ActivityAction = "USER_PASSWORD_RESET"
	ActivityEmployeeCreated     ActivityAction = "EMPLOYEE_CREATED"
	ActivityEmployeeSuspended   ActivityAction = "EMPLOYEE_SUSPENDED"
	ActivityEmployeeReactivated ActivityAction = "EMPLOYEE_REACTIVATED"
	ActivityEmployeeDeleted     ActivityAction = "EMPLOYEE_DELETED"
)

var activityActions = map[ActivityAction]struct{}{
	ActivityCharacterApproved:   {},
	ActivityCharacterRejected:   {},
	ActivityCommentApproved:     {},
	ActivityCommentRejected:     {},
	ActivityUserSuspended:       {},
	ActivityUserReactivated:     {},
	ActivityUserDeleted:         {},
	ActivityUserPasswordReset:   {},
	ActivityEmployeeCreated:     {},
	ActivityEmployeeSuspended:   {},
	ActivityEmployeeReactivated: {},
	ActivityEmployeeDeleted:     {},
}

func (a ActivityAction) Valid() bool {
	_, ok := activityActions[a]
	return ok
}

// 何に対する操作か
type ActivityTargetType string

const (
	ActivityTargetCharacter ActivityTargetType = "CHARACTER"
	ActivityTargetComment   ActivityTargetType = "COMMENT"
	ActivityTargetUser      ActivityTargetType = "USER"
)

// 監査ログ（特権操作ログ）。書き込みのみで、更新・削除はしない。
// 操作者のpseudoは書き込み時点の値を非正規化して持つ。
type ActivityLog struct {
	ID          int64              `gorm:"primaryKey;autoIncrement" json:"id"`
	ActorUserID int64              `gorm:"not null;index" json:"actor_user_id"`
	ActorPseudo string             `gorm:"type:varchar(50);not null" json:"actor_pseudo"`
	Action      ActivityAction     `gorm:"type:varchar(50);not null;index" json:"action"`
	TargetType  ActivityTargetType `gorm:"type:varchar(20);not null" json:"target_type"`
	TargetID    int64              `gorm:"not null;index" json:"target_id"`
	TargetName  string             `gorm:"type:varchar(255)" json:"target_name,omitempty"`
	Details     datatypes.JSONMap  `gorm:"type:jsonb" json:"details,omitempty"`
	CreatedAt   time.Time          `gorm:"not null;index" json:"created_at"`
}
