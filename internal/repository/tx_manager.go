package repository

import "context"

// トランザクション内で使う約束
type TxRepos interface {
	Orders() OrderRepository
	OrderItems() OrderItemRepository
	Cart() CartRepository
	Products() ProductRepository
}

// UsecaseからTxの開始/commit/rollbackを隠す。
// fnがエラーを返したら全部ロールバック、nilのときだけcommit。
type TransactionManager interface {
	WithinTx(ctx context.Context, fn func(r TxRepos) error) error
}
