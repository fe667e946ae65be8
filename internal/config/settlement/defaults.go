package settlement

const (
	defaultMaxLegsPerInstruction = 10
	defaultMaxVenueSigners       = 50
)
