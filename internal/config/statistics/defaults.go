package statistics

const (
	defaultMaxStatsPerAsset              = 10
	defaultMaxTransferConditionsPerAsset = 4
)
