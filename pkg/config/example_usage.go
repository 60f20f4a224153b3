package config

// Example usage of the configuration system:
//
// 1. Load configuration with all sources:
//
//     cfg, err := config.Load("", nil)
//     if err != nil {
//         log.Fatal(err)
//     }
//
// 2. Load with a custom config file:
//
//     cfg, err := config.Load("/path/to/retryer.yaml", nil)
//
// 3. Load with command line flags:
//
//     flags := map[string]interface{}{
//         "max-attempts":         5,
//         "backoff":              "linear",
//         "base":                 2 * time.Second,
//         "cap":                  30 * time.Second,
//         "log-level":            "debug",
//     }
//     cfg, err := config.Load("", flags)
//
// 4. Environment variables:
//
//     export RETRYER_MAX_ATTEMPTS=-1
//     export RETRYER_BACKOFF=exponential
//     export RETRYER_BACKOFF_BASE=500ms
//     export RETRYER_BACKOFF_CAP=10s
//     export RETRYER_RANDOMIZATION_FACTOR=0.25
//     export RETRYER_LOG_LEVEL=debug
//     export RETRYER_LOG_FILE=/var/log/retryer.log
//
// 5. Configuration file format (YAML):
//
//     retry:
//       max_attempts: 5
//       no_retry_exit_codes: [2, 126, 127]
//       backoff:
//         kind: composite_jitter
//         randomization_factor: 0.3
//         inner:
//           kind: linear
//           base: 2s
//           cap: 30s
//
//     logging:
//       level: info
//       file: ""
//       max_size: 100
//       max_backups: 3
//       max_age: 7
//       compress: false
//
// The configuration file is searched in the following locations (in order):
//   - ./retryer.yaml
//   - ./retryer.yml
//   - ./.retryer.yaml
//   - ./.retryer.yml
//   - ~/.config/retryer/config.yaml
//   - ~/.config/retryer/config.yml
//   - ~/.retryer.yaml
