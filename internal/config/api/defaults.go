package api

const (
	defaultEnabled       = true
	defaultListenAddr    = "127.0.0.1:9944"
	defaultEnableMetrics = true
)
