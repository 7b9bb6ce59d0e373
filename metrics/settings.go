package metrics

type Settings struct {
	MetricsAddr string `toml:"metricsAddr"`
	MetricsPath string `toml:"metricsPath"`
}

const (
	DefaultMetricsAddr = ":9627"
	DefaultMetricsPath = "/metrics"
)

func DefaultSettings() *Settings {
	return &Settings{
		MetricsAddr: DefaultMetricsAddr,
		MetricsPath: DefaultMetricsPath,
	}
}
