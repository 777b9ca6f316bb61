package model

// Principal は操作を行う認証済みユーザー（操作者）。
// 認証ミドルウェアが作り、各usecaseへ明示的に渡す。
type Principal struct {
	UserID int64
	Pseudo string
	Role   Role
}

func (p Principal) Authenticated() bool {
	return p.UserID > 0
}
