package badger

const (
	// defaultPath 默认数据目录
	defaultPath = "./data/badger"

	// defaultSyncWrites 状态数据要求每次提交落盘
	defaultSyncWrites = true

	// defaultMemTableSize 64MB
	defaultMemTableSize = 64 << 20

	// defaultEnableAutoCompaction 默认启用自动压缩
	defaultEnableAutoCompaction = true
)
