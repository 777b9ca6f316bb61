package model

import "time"

type CharacterStatus string

const (
	CharacterStatusDraft    CharacterStatus = "DRAFT"
	CharacterStatusPending  CharacterStatus = "PENDING"
	CharacterStatusApproved CharacterStatus = "APPROVED"
	CharacterStatusRejected CharacterStatus = "REJECTED"
)

// 状態遷移表。
// Approved -> Pending は名前変更による自動差し戻しのみ。
var characterTransitions = map[CharacterStatus][]CharacterStatus{
	CharacterStatusDraft:    {CharacterStatusPending},
	CharacterStatusPending:  {CharacterStatusApproved, CharacterStatusRejected},
	CharacterStatusApproved: {CharacterStatusPending},
	CharacterStatusRejected: {CharacterStatusPending},
}

func (s CharacterStatus) Valid() bool {
	_, ok := characterTransitions[s]
	return ok
}

func (s CharacterStatus) CanTransitionTo(next CharacterStatus) bool {
	for _, to := range characterTransitions[s] {
		if to == next {
			return true
		}
	}
	return false
}

// 本人による審査申請が可能か（Draft / Rejected のみ）
func (s CharacterStatus) CanSubmit() bool {
	return s == CharacterStatusDraft || s == CharacterStatusRejected
}

// 編集可能か（審査中は不可）
func (s CharacterStatus) CanEdit() bool {
	return s != CharacterStatusPending
}

type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
	GenderOther  Gender = "OTHER"
)

func (g Gender) Valid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther:
		return true
	}
	return false
}

// 外見パラメータ。色3つ + 形状セレクタ6つ。
type Appearance struct {
	SkinColor  string `gorm:"type:varchar(7);not null" json:"skin_color"`
	HairColor  string `gorm:"type:varchar(7);not null" json:"hair_color"`
	EyeColor   string `gorm:"type:varchar(7);not null" json:"eye_color"`
	FaceShape  int    `gorm:"not null;default:0" json:"face_shape"`
	HairStyle  int    `gorm:"not null;default:0" json:"hair_style"`
	BeardStyle int    `gorm:"not null;default:0" json:"beard_style"`
	BodyType   int    `gorm:"not null;default:0" json:"body_type"`
	NoseShape  int    `gorm:"not null;default:0" json:"nose_shape"`
	EarShape   int    `gorm:"not null;default:0" json:"ear_shape"`
}

// 名前は持ち主ごとに大文字小文字を区別せず一意（LOWER(name) の一意インデックス）
type Character struct {
	ID              int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	Name            string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_characters_owner_lower_name,priority:2,expression:LOWER(name)" json:"name"`
	ClassID         int64           `gorm:"not null;index" json:"class_id"`
	Gender          Gender          `gorm:"type:varchar(10);not null" json:"gender"`
	Appearance      Appearance      `gorm:"embedded" json:"appearance"`
	Status          CharacterStatus `gorm:"type:varchar(20);not null;default:'DRAFT';index" json:"status"`
	IsShared        bool            `gorm:"not null;default:false;index" json:"is_shared"`
	RejectionReason string          `gorm:"type:varchar(500)" json:"rejection_reason,omitempty"`
	OwnerID         int64           `gorm:"not null;index;uniqueIndex:idx_characters_owner_lower_name,priority:1" json:"owner_id"`
	CreatedAt       time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// 公開ギャラリーで他人に見せてよいか
func (c Character) IsPublic() bool {
	return c.Status == CharacterStatusApproved && c.IsShared
}

// 閲覧者からこのキャラクターが見えるか（本人は常に見える）
func (c Character) VisibleTo(viewerID int64) bool {
	if viewerID > 0 && c.OwnerID == viewerID {
		return true
	}
	return c.IsPublic()
}

// Rename は名前を変更する。承認済みで名前が変わった場合は審査待ちに戻し、共有を解除する。
func (c *Character) Rename(name string) {
	if name == c.Name {
		return
	}
	c.Name = name
	if c.Status == CharacterStatusApproved {
		c.Status = CharacterStatusPending
		c.IsShared = false
	}
}

// 職業（クラス）の参照データ
type CharacterClass struct {
	ID   int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Name string `gorm:"type:varchar(50);uniqueIndex;not null" json:"name"`
}
