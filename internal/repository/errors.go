package repository

import "errors"

// 対象が見つからないことを統一して表す。
// 実装は nil エンティティを返さず、必ずこれを返す。
var ErrNotFound = errors.New("not found")

// 一意制約違反（同じ名前・同じコメントなど）
var ErrDuplicate = errors.New("duplicate")
