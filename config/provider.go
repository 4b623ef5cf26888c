package config

import "go.uber.org/fx"

// NewProvider wires the configuration into the fx graph. Tests and the main
// entrypoint hand in an already-loaded *Config; passing nil makes the
// container load it from the environment itself, which is how auxiliary
// commands without their own bootstrap get settings. A broken environment at
// that point is unrecoverable, hence the panic.
func NewProvider(cfg *Config) fx.Option {
	if cfg != nil {
		return fx.Supply(cfg)
	}

	return fx.Provide(func() *Config {
		loaded := &Config{}
		if err := LoadConfig(loaded); err != nil {
			panic(err)
		}
		return loaded
	})
}
