package chain

const (
	// defaultBlockIntervalMs 6 秒一个区块
	defaultBlockIntervalMs = 6000

	defaultProducerEnabled = true

	defaultGenesisMoment = 0
)
