package config

import "flag"

var (
	flagConfig    = flag.String("config", "", "Path to config file")
	flagDebug     = flag.Bool("debug", false, "Enable debug logging")
	flagListen    = flag.String("listen", "", "HTTP listen address")
	flagTemplates = flag.String("templates", "", "Template directory")
	flagPack      = flag.String("pack", "", "Template pack file")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagListen != "" {
		cfg.Server.Listen = *flagListen
	}
	if *flagTemplates != "" {
		cfg.Data.TemplateDir = *flagTemplates
	}
	if *flagPack != "" {
		cfg.Data.TemplatePack = *flagPack
	}
}
