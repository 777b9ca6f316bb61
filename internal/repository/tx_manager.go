package repository

import "context"

// トランザクション内で使う約束
type TxRepos interface {
	Characters() CharacterRepository
	Comments() CommentRepository
	Users() UserRepository
	ActivityLogs() ActivityLogRepository
}

// UsecaseからTxの開始/commit/rollbackを隠す。
// 状態変更と監査ログは同じTxで書く。
type TransactionManager interface {
	WithinTx(ctx context.Context, fn func(r TxRepos) error) error
}
